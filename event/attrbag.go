package event

import (
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// AttrBag is the open, dotted-path-addressable attribute bag carried by
// Meta, Protocol, and Custom events — the escape hatch for event shapes
// this module does not model directly.
type AttrBag struct {
	raw string
}

// NewAttrBag builds an AttrBag from a JSON object. An empty or invalid
// input yields an empty bag.
func NewAttrBag(json string) AttrBag {
	if json == "" || !gjson.Valid(json) {
		json = "{}"
	}
	return AttrBag{raw: json}
}

// Get retrieves the value at a dotted gjson path ("foo.bar.0").
func (b AttrBag) Get(path string) gjson.Result {
	return gjson.Get(b.raw, path)
}

// Set returns a new AttrBag with value written at path. AttrBag is
// immutable; Set never mutates the receiver.
func (b AttrBag) Set(path string, value interface{}) (AttrBag, error) {
	raw := b.raw
	if raw == "" {
		raw = "{}"
	}
	out, err := sjson.Set(raw, path, value)
	if err != nil {
		return b, err
	}
	return AttrBag{raw: out}, nil
}

// String returns the bag's underlying JSON document.
func (b AttrBag) String() string {
	if b.raw == "" {
		return "{}"
	}
	return b.raw
}
