package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type names map[string]string

func (n names) Lookup(id string) (string, bool) {
	v, ok := n[id]
	return v, ok
}

var dir = names{"U123": "Ann Lee", "U9": "bob"}

func TestText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain text", "just some words, nothing else", "just some words, nothing else"},
		{"link", "see <https://x/y|label> now", "see [label](https://x/y) now"},
		{"http link", "<http://example.com/a?b=c|docs>", "[docs](http://example.com/a?b=c)"},
		{"link without label", "see <https://x/y> now", "see <https://x/y> now"},
		{"link with other scheme", "<ftp://x/y|label>", "<ftp://x/y|label>"},
		{"mention", "hey <@U123>!", "hey @Ann Lee!"},
		{"unknown mention keeps id", "cc <@U777>", "cc @U777"},
		{"lowercase mention untouched", "cc <@u123>", "cc <@u123>"},
		{"known emoji", "nice :tada: :thumbsup:", "nice 🎉 👍"},
		{"unknown emoji", "so :partyparrot:", "so [emoji:partyparrot]"},
		{"emoji inside link label", "<https://x/y|ship it :fire:>", "[ship it 🔥](https://x/y)"},
		{"trims", "   padded \n", "padded"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Text(tt.in, dir))
		})
	}
}

func TestTextPlainIsFixedPoint(t *testing.T) {
	for _, s := range []string{"hello world", "a: b", "10:30 meeting", "x | y > z"} {
		once := Text(s, dir)
		assert.Equal(t, s, once)
		assert.Equal(t, once, Text(once, dir))
	}
}

func TestTextCodeFence(t *testing.T) {
	in := "run this <@U123> :fire:```  echo <@U123> :fire: <https://x|y>  ```after :wave:"
	want := "run this @Ann Lee 🔥\n```\necho <@U123> :fire: <https://x|y>\n```\nafter 👋"
	assert.Equal(t, want, Text(in, dir))
}

func TestTextUnclosedFence(t *testing.T) {
	got := Text("```:fire:", dir)
	assert.Equal(t, "```\n:fire:\n```", got)
}

func TestTextNilResolver(t *testing.T) {
	assert.Equal(t, "@U123", Text("<@U123>", nil))
}

func TestEmoji(t *testing.T) {
	g, ok := Emoji("heart")
	assert.True(t, ok)
	assert.Equal(t, "❤️", g)

	_, ok = Emoji("nope")
	assert.False(t, ok)
}
