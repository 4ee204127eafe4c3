package event

import "strings"

// Element is one segment of a Message chain: plain text, an image, an
// at-mention, or any other transport-defined element. Full element
// serialization is out of scope for this module; Element only exposes
// what the routing graph needs to key on.
type Element interface {
	// Type identifies the element's kind, e.g. "text", "image", "at".
	Type() string

	// AsPlain returns the element's plain-text representation, empty
	// for non-text elements.
	AsPlain() string
}

// Text is the common plain-text Element.
type Text string

func (t Text) Type() string    { return "text" }
func (t Text) AsPlain() string { return string(t) }

// Message is an ordered chain of Elements, mirroring a chat platform's
// rich-message representation.
type Message []Element

// AsPlain concatenates every element's plain-text representation.
func (m Message) AsPlain() string {
	var sb strings.Builder
	for _, el := range m {
		sb.WriteString(el.AsPlain())
	}
	return sb.String()
}

// NewText builds a single-element plain-text Message.
func NewText(s string) Message {
	return Message{Text(s)}
}

// Quote is a message element referencing an earlier message by ID —
// what a reply-with-quote carries alongside its text.
type Quote struct {
	ReplyTo int64
}

func (q Quote) Type() string    { return "quote" }
func (q Quote) AsPlain() string { return "" }

// WithQuote returns the message with a Quote element appended.
func (m Message) WithQuote(q Quote) Message {
	return append(m, q)
}
