package routing

import (
	"regexp"

	"github.com/chatroute-io/chatroute/event"
	"github.com/chatroute-io/chatroute/keyfunc"
	"github.com/chatroute-io/chatroute/keystore"
)

// IsMessage matches any message-bearing event type.
func IsMessage() Graph {
	return graphOfEventTypes(event.GroupMessage, event.FriendMessage, event.TempMessage)
}

// IsGroup matches group messages.
func IsGroup() Graph { return graphOfEventTypes(event.GroupMessage) }

// IsFriend matches friend messages.
func IsFriend() Graph { return graphOfEventTypes(event.FriendMessage) }

// IsTemp matches temporary-session messages.
func IsTemp() Graph { return graphOfEventTypes(event.TempMessage) }

// IsPrivate matches friend and temporary-session messages.
func IsPrivate() Graph { return IsFriend().Or(IsTemp()) }

// EventTypeIs matches events of any of the given types.
func EventTypeIs(types ...event.Type) Graph { return graphOfEventTypes(types...) }

func graphOfEventTypes(types ...event.Type) Graph {
	vals := make([]interface{}, len(types))
	for i, t := range types {
		vals[i] = t
	}
	n := NewEqualNode(keyfunc.EventTypeOf, vals...)
	return single(n, n)
}

// QQFrom matches messages sent by any of the given QQ ids.
func QQFrom(qqs ...int64) Graph {
	vals := make([]interface{}, len(qqs))
	for i, q := range qqs {
		vals[i] = q
	}
	n := NewEqualNode(keyfunc.MessageQQ, vals...)
	return single(n, n)
}

// GroupFrom matches messages sent in any of the given groups.
func GroupFrom(groups ...int64) Graph {
	vals := make([]interface{}, len(groups))
	for i, g := range groups {
		vals[i] = g
	}
	n := NewEqualNode(keyfunc.MessageGroup, vals...)
	return single(n, n)
}

// PermissionIs matches messages whose sender holds any of the given
// permissions.
func PermissionIs(perms ...event.Permission) Graph {
	vals := make([]interface{}, len(perms))
	for i, p := range perms {
		vals[i] = p
	}
	n := NewEqualNode(keyfunc.MessagePermission, vals...)
	return single(n, n)
}

// Equals matches messages whose plain-text content equals one of text.
// With strip set, surrounding whitespace is ignored.
func Equals(strip bool, text string, texts ...string) Graph {
	vals := toIfaces(append([]string{text}, texts...))
	key := keyfunc.MessageContent
	if strip {
		key = keyfunc.MessageContentStripped
	}
	n := NewEqualNode(key, vals...)
	return single(n, n)
}

// StartsWith matches messages whose content starts with one of the
// given prefixes, longest prefix winning. The matched prefix, its
// length, and the remainder are captured into the store.
func StartsWith(strip bool, prefixes ...string) Graph {
	key := keyfunc.MessageContent
	if strip {
		key = keyfunc.MessageContentLStripped
	}
	n := NewPrefixNode(key, prefixes...)
	return single(n, n)
}

// EndsWith matches messages whose content ends with one of the given
// suffixes — both the input and the configured suffixes are reversed so
// the prefix trie can be reused.
func EndsWith(strip bool, suffixes ...string) Graph {
	key := keyfunc.MessageContentReversed
	if strip {
		key = keyfunc.MessageContentReversedLStripped
	}
	reversed := make([]string, len(suffixes))
	for i, s := range suffixes {
		reversed[i] = reverseString(s)
	}
	n := NewPrefixNode(key, reversed...)
	return single(n, n)
}

// Match matches messages whose plain-text content contains a match for
// pattern, capturing submatch groups as positional args.
func Match(pattern string) Graph {
	re := regexp.MustCompile(pattern)
	key := keyfunc.NewNamed(func(ev event.Event) interface{} {
		loc := re.FindStringSubmatch(ev.AsPlain())
		if loc == nil {
			return nil
		}
		return loc
	}, "match")
	n := NewPredicateNode(key)
	return single(n, n)
}

// FullMatch matches when pattern matches the entire plain-text content.
func FullMatch(pattern string) Graph {
	re := regexp.MustCompile("^(?:" + pattern + ")$")
	key := keyfunc.NewNamed(func(ev event.Event) interface{} {
		loc := re.FindStringSubmatch(ev.AsPlain())
		if loc == nil {
			return nil
		}
		return loc
	}, "match")
	n := NewPredicateNode(key)
	return single(n, n)
}

// If matches when key projects a truthy value — the generic predicate
// combinator the named text matchers are built from.
func If(key keyfunc.KeyFunction) Graph {
	n := NewPredicateNode(key)
	return single(n, n)
}

// Process applies fn to the RouteState and continues unconditionally —
// the side-effect combinator for recording derived values into the
// store before further matching.
func Process(fn func(keystore.RouteState) keystore.RouteState) Graph {
	n := NewProcessNode(fn)
	return single(n, n)
}

// Has matches message events carrying an element of any of the given
// types.
func Has(types ...string) Graph {
	n := NewMessageTypeNode(types...)
	return single(n, n)
}

// SameEventAs builds the graph fragment matching the next event from
// the same conversation as ev: same group and sender for group
// messages, same sender for friend and temporary-session messages.
func SameEventAs(ev event.Event) Graph {
	switch ev.Type {
	case event.GroupMessage:
		return IsGroup().Then(GroupFrom(ev.Group)).Then(QQFrom(ev.Sender.QQ))
	case event.FriendMessage:
		return IsFriend().Then(QQFrom(ev.Sender.QQ))
	case event.TempMessage:
		return IsTemp().Then(QQFrom(ev.Sender.QQ))
	default:
		// No Vals configured: matches nothing.
		n := NewEqualNode(keyfunc.EventTypeOf)
		return single(n, n)
	}
}

// QuotesMessage matches message events that carry a Quote element
// referencing messageID.
func QuotesMessage(messageID int64) Graph {
	key := keyfunc.NewNamed(func(ev event.Event) interface{} {
		for _, el := range ev.Message {
			if q, ok := el.(event.Quote); ok && q.ReplyTo == messageID {
				return true
			}
		}
		return nil
	}, "quotes")
	n := NewPredicateNode(key)
	return single(n, n)
}

func reverseString(s string) string {
	r := []rune(s)
	for i, j := 0, len(r)-1; i < j; i, j = i+1, j-1 {
		r[i], r[j] = r[j], r[i]
	}
	return string(r)
}

func toIfaces(ss []string) []interface{} {
	out := make([]interface{}, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

// MetaTypeIs matches Meta events carrying any of the given meta_type
// attributes.
func MetaTypeIs(types ...string) Graph {
	n := NewEqualNode(keyfunc.MetaType, toIfaces(types)...)
	return EventTypeIs(event.Meta).Then(single(n, n))
}

// ChannelIs matches Custom events published on any of the given
// channels.
func ChannelIs(channels ...string) Graph {
	n := NewEqualNode(keyfunc.Channel, toIfaces(channels)...)
	return EventTypeIs(event.Custom).Then(single(n, n))
}

// ProtocolIs matches Protocol events for any of the given protocol
// names.
func ProtocolIs(protocols ...string) Graph {
	n := NewEqualNode(keyfunc.ProtocolName, toIfaces(protocols)...)
	return EventTypeIs(event.Protocol).Then(single(n, n))
}
