// Package turn groups consecutive messages from the same author into
// display turns.
package turn

import "strings"

// Turn is a run of consecutive messages by one author.
type Turn struct {
	Author    string
	Timestamp string // of the first message in the run
	Bodies    []string
}

// Body joins the turn's messages with a blank line between them.
func (t Turn) Body() string {
	return strings.Join(t.Bodies, "\n\n")
}

// Aggregator is a reducer over one conversation's message stream. Call
// Advance per message in order and Flush at the end of the conversation.
type Aggregator struct {
	Grouping bool

	author  string
	start   string
	block   []string
	started bool
	turns   []Turn
}

func NewAggregator(grouping bool) *Aggregator {
	return &Aggregator{Grouping: grouping}
}

// Advance feeds one message into the aggregator.
func (a *Aggregator) Advance(author, timestamp, body string) {
	if a.Grouping && a.started && author == a.author {
		a.block = append(a.block, body)
		return
	}
	a.Flush()
	a.author = author
	a.start = timestamp
	a.block = []string{body}
	a.started = true
}

// Flush emits the pending block. A block without author or timestamp is
// discarded.
func (a *Aggregator) Flush() {
	if a.started && a.author != "" && a.start != "" {
		a.turns = append(a.turns, Turn{
			Author:    a.author,
			Timestamp: a.start,
			Bodies:    a.block,
		})
	}
	a.author, a.start, a.block, a.started = "", "", nil, false
}

// Turns returns the turns emitted so far.
func (a *Aggregator) Turns() []Turn {
	return a.turns
}
