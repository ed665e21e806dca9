package conversation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		dir  string
		kind Kind
		name string
	}{
		{"general", Channel, "general"},
		{"#random", Channel, "random"},
		{"mpdm-ann--bob--cy-1", GroupMessage, "ann, bob, cy"},
		{"mpdm-ann.lee--bob-12", GroupMessage, "ann.lee, bob"},
		{"mpdm-", GroupMessage, "mpdm-"},
		{"D01ABCDEF23", DirectMessage, "D01ABCDEF23"},
		{"dm-ann", DirectMessage, "ann"},
		{"Design", Channel, "Design"},
	}
	for _, tt := range tests {
		kind, name := Classify(tt.dir)
		assert.Equal(t, tt.kind, kind, tt.dir)
		assert.Equal(t, tt.name, name, tt.dir)
	}
}

func TestKindLabels(t *testing.T) {
	assert.Equal(t, "Channel", Channel.String())
	assert.Equal(t, "Direct Messages", DirectMessage.Plural())
	assert.Equal(t, "Group Messages", GroupMessage.Plural())

	for _, k := range Kinds {
		got, ok := ParseKey(k.Key())
		assert.True(t, ok)
		assert.Equal(t, k, got)
	}
	_, ok := ParseKey("thread")
	assert.False(t, ok)
}
