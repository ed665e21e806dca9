// Package conversation infers what kind of conversation an export
// directory holds and how to label it.
package conversation

import (
	"regexp"
	"strings"
)

type Kind int

const (
	Channel Kind = iota
	DirectMessage
	GroupMessage
)

// Kinds lists every kind in table-of-contents order.
var Kinds = []Kind{Channel, DirectMessage, GroupMessage}

const (
	groupPrefix = "mpdm-"
	dmPrefix    = "dm-"
)

var (
	dmIDRe        = regexp.MustCompile(`^D[A-Z0-9]{8,}$`)
	groupSuffixRe = regexp.MustCompile(`-\d+$`)
)

// Classify returns the kind of the conversation stored in dirName and its
// cleaned display name.
func Classify(dirName string) (Kind, string) {
	switch {
	case strings.HasPrefix(dirName, groupPrefix):
		return GroupMessage, groupName(dirName)
	case strings.HasPrefix(dirName, dmPrefix):
		return DirectMessage, strings.TrimPrefix(dirName, dmPrefix)
	case dmIDRe.MatchString(dirName):
		return DirectMessage, dirName
	default:
		return Channel, strings.TrimPrefix(dirName, "#")
	}
}

// groupName unpacks "mpdm-ann--bob--cy-1" into "ann, bob, cy".
func groupName(dirName string) string {
	s := strings.TrimPrefix(dirName, groupPrefix)
	s = groupSuffixRe.ReplaceAllString(s, "")
	var members []string
	for _, m := range strings.Split(s, "--") {
		if m = strings.Trim(m, "-"); m != "" {
			members = append(members, m)
		}
	}
	if len(members) == 0 {
		return dirName
	}
	return strings.Join(members, ", ")
}

func (k Kind) String() string {
	switch k {
	case DirectMessage:
		return "Direct Message"
	case GroupMessage:
		return "Group Message"
	default:
		return "Channel"
	}
}

// Plural is the table-of-contents group heading.
func (k Kind) Plural() string {
	return k.String() + "s"
}

// Key is the short identifier used in the index and on the command line.
func (k Kind) Key() string {
	switch k {
	case DirectMessage:
		return "dm"
	case GroupMessage:
		return "group"
	default:
		return "channel"
	}
}

// ParseKey is the inverse of Key.
func ParseKey(s string) (Kind, bool) {
	for _, k := range Kinds {
		if k.Key() == s {
			return k, true
		}
	}
	return Channel, false
}
