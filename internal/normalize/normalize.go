// Package normalize rewrites Slack message markup into Markdown display text.
package normalize

import (
	"regexp"
	"strings"
)

// Resolver resolves a user id to a display name.
type Resolver interface {
	Lookup(id string) (string, bool)
}

const fence = "```"

var (
	linkRe    = regexp.MustCompile(`<(https?://[^|>]+)\|([^>]+)>`)
	mentionRe = regexp.MustCompile(`<@([A-Z0-9]+)>`)
	emojiRe   = regexp.MustCompile(`:([a-zA-Z0-9_+]+):`)
)

var emoji = map[string]string{
	"smile":                         "😄",
	"laughing":                      "😆",
	"rolling_on_the_floor_laughing": "🤣",
	"wink":                          "😉",
	"thumbsup":                      "👍",
	"thumbsdown":                    "👎",
	"thinking_face":                 "🤔",
	"heart":                         "❤️",
	"fire":                          "🔥",
	"eyes":                          "👀",
	"wave":                          "👋",
	"tada":                          "🎉",
	"clap":                          "👏",
	"poop":                          "💩",
}

// Emoji returns the glyph for a known shortcode name.
func Emoji(name string) (string, bool) {
	g, ok := emoji[name]
	return g, ok
}

// Text converts a raw message body to display text. Text inside code
// fences is never rewritten.
func Text(raw string, users Resolver) string {
	if !strings.Contains(raw, fence) {
		return markup(raw, users)
	}

	var b strings.Builder
	for i, part := range strings.Split(raw, fence) {
		if i%2 == 0 {
			b.WriteString(markup(part, users))
			continue
		}
		b.WriteString("\n" + fence + "\n")
		b.WriteString(strings.TrimSpace(part))
		b.WriteString("\n" + fence + "\n")
	}
	return strings.TrimSpace(b.String())
}

// markup applies link, mention and emoji rewriting, in that order.
func markup(text string, users Resolver) string {
	text = linkRe.ReplaceAllString(text, "[$2]($1)")

	text = mentionRe.ReplaceAllStringFunc(text, func(m string) string {
		id := mentionRe.FindStringSubmatch(m)[1]
		if users != nil {
			if name, ok := users.Lookup(id); ok {
				return "@" + name
			}
		}
		return "@" + id
	})

	text = emojiRe.ReplaceAllStringFunc(text, func(m string) string {
		name := m[1 : len(m)-1]
		if g, ok := emoji[name]; ok {
			return g
		}
		return "[emoji:" + name + "]"
	})

	return strings.TrimSpace(text)
}
