package filter

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zuo-Peng/slackprep/internal/parse"
)

func msg(user, text string) parse.RawMessage {
	return parse.RawMessage{User: user, Text: text}
}

func TestNewDisabled(t *testing.T) {
	s, err := New(Options{}, nil)
	require.NoError(t, err)

	_, dropped := s.DropSection("ci-alerts")
	assert.False(t, dropped)
	_, dropped = s.DropMessage(msg("B1", "Deployment failed"))
	assert.False(t, dropped)
}

func TestBotFilterRequiresBotSet(t *testing.T) {
	_, err := New(Options{SkipBots: true}, nil)
	var cfgErr *ConfigError
	require.True(t, errors.As(err, &cfgErr))

	_, err = New(Options{HumanOnly: true}, nil)
	assert.True(t, errors.As(err, &cfgErr))

	_, err = New(Options{SkipBots: true}, map[string]struct{}{})
	assert.NoError(t, err)
}

func TestBotFilter(t *testing.T) {
	s, err := New(Options{SkipBots: true}, map[string]struct{}{"U1": {}})
	require.NoError(t, err)

	kept := 0
	for _, m := range []parse.RawMessage{msg("U1", "a"), msg("U2", "b"), msg("U1", "c")} {
		reason, dropped := s.DropMessage(m)
		if dropped {
			assert.Equal(t, ReasonBot, reason)
			continue
		}
		kept++
	}
	assert.Equal(t, 1, kept)
}

func TestAutomationChannel(t *testing.T) {
	s, err := New(Options{SkipAutomationChannels: true}, nil)
	require.NoError(t, err)

	for _, name := range []string{"prod-ALERTS", "nightly-runs", "Deploys", "team-status", "circle"} {
		reason, dropped := s.DropSection(name)
		assert.True(t, dropped, name)
		assert.Equal(t, ReasonAutomationChannel, reason)
	}
	_, dropped := s.DropSection("general")
	assert.False(t, dropped)
}

func TestAutomatedContent(t *testing.T) {
	s, err := New(Options{SkipAutomatedContent: true}, nil)
	require.NoError(t, err)

	_, dropped := s.DropMessage(msg("U1", "BUILD FAILED on main"))
	assert.True(t, dropped)

	_, dropped = s.DropMessage(msg("U1", "lunch?"))
	assert.False(t, dropped)
}

func TestAutomatedContentUsesRawText(t *testing.T) {
	f := AutomatedContent{}
	// The raw shortcode never equals its rendered artifact.
	assert.False(t, f.DropMessage(msg("U1", ":rotating_light: heads up")))
	assert.True(t, f.DropMessage(msg("U1", "[emoji:rotating_light] literal")))
}

func TestHumanOnlyIsUnion(t *testing.T) {
	bots := map[string]struct{}{"B1": {}}
	human, err := New(Options{HumanOnly: true}, bots)
	require.NoError(t, err)
	all, err := New(Options{SkipBots: true, SkipAutomationChannels: true, SkipAutomatedContent: true}, bots)
	require.NoError(t, err)

	assert.Equal(t, all, human)
}

func TestNilSet(t *testing.T) {
	var s *Set
	_, dropped := s.DropSection("alerts")
	assert.False(t, dropped)
	_, dropped = s.DropMessage(msg("U1", "build failed"))
	assert.False(t, dropped)
}
