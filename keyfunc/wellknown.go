package keyfunc

import (
	"strings"

	"github.com/chatroute-io/chatroute/event"
)

// EventTypeOf projects an Event onto its Type.
var EventTypeOf = NewNamed(func(ev event.Event) interface{} { return ev.Type }, "event_type")

// MessageContent projects onto the raw plain-text content of a message
// event.
var MessageContent = NewNamed(func(ev event.Event) interface{} { return ev.AsPlain() }, "message_content")

// MessageContentStripped projects onto the plain-text content with
// surrounding whitespace removed.
var MessageContentStripped = NewNamed(func(ev event.Event) interface{} {
	return strings.TrimSpace(ev.AsPlain())
}, "message_content_stripped")

// MessageContentLStripped projects onto the plain-text content with
// leading whitespace removed.
var MessageContentLStripped = NewNamed(func(ev event.Event) interface{} {
	return strings.TrimLeft(ev.AsPlain(), " \t\n\r")
}, "message_content_lstripped")

func reverseString(s string) string {
	r := []rune(s)
	for i, j := 0, len(r)-1; i < j; i, j = i+1, j-1 {
		r[i], r[j] = r[j], r[i]
	}
	return string(r)
}

// MessageContentReversed projects onto the reversed plain-text content —
// the trick that turns suffix matching into a prefix match.
var MessageContentReversed = NewNamed(func(ev event.Event) interface{} {
	return reverseString(ev.AsPlain())
}, "message_content_reversed")

// MessageContentReversedLStripped projects onto the reversed content of
// a trailing-whitespace-stripped message.
var MessageContentReversedLStripped = NewNamed(func(ev event.Event) interface{} {
	return strings.TrimLeft(reverseString(ev.AsPlain()), " \t\n\r")
}, "message_content_reversed_lstripped")

// MessageQQ projects onto the sender's QQ id.
var MessageQQ = NewNamed(func(ev event.Event) interface{} { return ev.Sender.QQ }, "qq")

// MessageGroup projects onto the group id.
var MessageGroup = NewNamed(func(ev event.Event) interface{} { return ev.Group }, "group")

// MessagePermission projects onto the sender's permission.
var MessagePermission = NewNamed(func(ev event.Event) interface{} { return ev.Sender.Permission }, "permission")

// MetaType projects onto a Meta event's "meta_type" attribute.
var MetaType = NewNamed(func(ev event.Event) interface{} { return ev.Attrs.Get("meta_type").Value() }, "meta_type")

// Channel projects onto a Custom event's "channel" attribute.
var Channel = NewNamed(func(ev event.Event) interface{} { return ev.Attrs.Get("channel").Value() }, "channel")

// ProtocolName projects onto a Protocol event's "protocol" attribute.
var ProtocolName = NewNamed(func(ev event.Event) interface{} { return ev.Attrs.Get("protocol").Value() }, "protocol")
