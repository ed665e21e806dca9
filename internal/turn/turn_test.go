package turn

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type msg struct{ author, ts, body string }

func run(grouping bool, msgs ...msg) []Turn {
	a := NewAggregator(grouping)
	for _, m := range msgs {
		a.Advance(m.author, m.ts, m.body)
	}
	a.Flush()
	return a.Turns()
}

func TestGrouping(t *testing.T) {
	msgs := []msg{
		{"A", "2024-01-02", "one"},
		{"A", "2024-01-03", "two"},
		{"B", "2024-01-03", "three"},
	}

	grouped := run(true, msgs...)
	require.Len(t, grouped, 2)
	assert.Equal(t, "A", grouped[0].Author)
	assert.Equal(t, "2024-01-02", grouped[0].Timestamp)
	assert.Equal(t, []string{"one", "two"}, grouped[0].Bodies)
	assert.Equal(t, "one\n\ntwo", grouped[0].Body())
	assert.Equal(t, "B", grouped[1].Author)

	assert.Len(t, run(false, msgs...), 3)
}

func TestAlternatingAuthors(t *testing.T) {
	turns := run(true,
		msg{"A", "d1", "1"},
		msg{"B", "d1", "2"},
		msg{"A", "d1", "3"},
	)
	assert.Len(t, turns, 3)
}

func TestDegenerateBlocksAreDiscarded(t *testing.T) {
	turns := run(true,
		msg{"", "d1", "no author"},
		msg{"A", "", "no timestamp"},
		msg{"B", "d2", "kept"},
	)
	require.Len(t, turns, 1)
	assert.Equal(t, "B", turns[0].Author)
}

func TestFlushIsIdempotent(t *testing.T) {
	a := NewAggregator(true)
	a.Advance("A", "d1", "x")
	a.Flush()
	a.Flush()
	assert.Len(t, a.Turns(), 1)
}

func TestFlushStartsFreshRun(t *testing.T) {
	a := NewAggregator(true)
	a.Advance("A", "d1", "x")
	a.Flush()
	a.Advance("A", "d2", "y")
	a.Flush()
	assert.Len(t, a.Turns(), 2)
}

func TestEmptyStream(t *testing.T) {
	assert.Empty(t, run(true))
}
