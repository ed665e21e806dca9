package pipeline

import (
	"fmt"

	"github.com/Zuo-Peng/slackprep/internal/conversation"
	"github.com/Zuo-Peng/slackprep/internal/filter"
)

// Stats are run-wide counters, complete once Run returns.
type Stats struct {
	Channels       int
	DirectMessages int
	GroupMessages  int

	SkippedChannels    int
	DroppedBots        int
	DroppedAutomated   int
	DroppedAttachments int

	Messages int
}

func (s Stats) String() string {
	return fmt.Sprintf("channels=%d dms=%d groups=%d messages=%d skipped_channels=%d bot_dropped=%d automated_dropped=%d attachments_dropped=%d",
		s.Channels, s.DirectMessages, s.GroupMessages, s.Messages,
		s.SkippedChannels, s.DroppedBots, s.DroppedAutomated, s.DroppedAttachments)
}

// Count returns the number of kept conversations of kind k.
func (s Stats) Count(k conversation.Kind) int {
	switch k {
	case conversation.DirectMessage:
		return s.DirectMessages
	case conversation.GroupMessage:
		return s.GroupMessages
	default:
		return s.Channels
	}
}

func (s *Stats) addKind(k conversation.Kind) {
	switch k {
	case conversation.DirectMessage:
		s.DirectMessages++
	case conversation.GroupMessage:
		s.GroupMessages++
	default:
		s.Channels++
	}
}

func (s *Stats) addDrop(r filter.Reason) {
	switch r {
	case filter.ReasonAutomationChannel:
		s.SkippedChannels++
	case filter.ReasonBot:
		s.DroppedBots++
	case filter.ReasonAutomatedContent:
		s.DroppedAutomated++
	}
}
