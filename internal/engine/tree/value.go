// Package tree models schema-less JSON payloads as an explicit tagged union
// (map, sequence, scalar) and provides key search over it.
//
// Maps keep their entries in document order; YouTube payload consumers rely
// on that order when they ask for "the first" match of a key.
package tree

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Kind tags the variant held by a Value.
type Kind uint8

const (
	KindScalar Kind = iota
	KindMap
	KindSeq
)

func (k Kind) String() string {
	switch k {
	case KindMap:
		return "map"
	case KindSeq:
		return "seq"
	}
	return "scalar"
}

// Entry is one key/value pair of a map node.
type Entry struct {
	Key   string
	Value *Value
}

// Value is a node of an opaque tree. The zero value is a null scalar.
type Value struct {
	kind    Kind
	entries []Entry
	items   []*Value
	scalar  any // string, float64, bool or nil
}

// NewMap builds a map node from entries, keeping their order.
func NewMap(entries ...Entry) *Value {
	return &Value{kind: KindMap, entries: entries}
}

// NewSeq builds a sequence node.
func NewSeq(items ...*Value) *Value {
	return &Value{kind: KindSeq, items: items}
}

// NewScalar wraps a string, float64, bool or nil.
func NewScalar(v any) *Value {
	return &Value{kind: KindScalar, scalar: v}
}

// String is shorthand for NewScalar with a string.
func String(s string) *Value { return NewScalar(s) }

// E builds an Entry; handy for literal trees in tests and request bodies.
func E(key string, v *Value) Entry { return Entry{Key: key, Value: v} }

// Kind returns the variant tag. A nil Value reports KindScalar.
func (v *Value) Kind() Kind {
	if v == nil {
		return KindScalar
	}
	return v.kind
}

// IsContainer reports whether v is a map or a sequence.
func (v *Value) IsContainer() bool {
	k := v.Kind()
	return k == KindMap || k == KindSeq
}

// Entries returns the map entries in stored order (nil for non-maps).
func (v *Value) Entries() []Entry {
	if v.Kind() != KindMap {
		return nil
	}
	return v.entries
}

// Items returns the sequence elements (nil for non-sequences).
func (v *Value) Items() []*Value {
	if v.Kind() != KindSeq {
		return nil
	}
	return v.items
}

// Len is the number of entries or items; 0 for scalars.
func (v *Value) Len() int {
	switch v.Kind() {
	case KindMap:
		return len(v.entries)
	case KindSeq:
		return len(v.items)
	}
	return 0
}

// Get returns the value stored under key in a map node.
func (v *Value) Get(key string) (*Value, bool) {
	if v.Kind() != KindMap {
		return nil, false
	}
	for _, e := range v.entries {
		if e.Key == key {
			return e.Value, true
		}
	}
	return nil, false
}

// Has reports whether a map node carries key.
func (v *Value) Has(key string) bool {
	_, ok := v.Get(key)
	return ok
}

// Path follows a chain of map keys. Missing links yield nil.
func (v *Value) Path(keys ...string) *Value {
	cur := v
	for _, k := range keys {
		next, ok := cur.Get(k)
		if !ok {
			return nil
		}
		cur = next
	}
	return cur
}

// Index returns the i-th sequence element or nil.
func (v *Value) Index(i int) *Value {
	items := v.Items()
	if i < 0 || i >= len(items) {
		return nil
	}
	return items[i]
}

// Set replaces the value under key, appending a new entry if absent.
func (v *Value) Set(key string, val *Value) {
	if v == nil || v.kind != KindMap {
		return
	}
	for i := range v.entries {
		if v.entries[i].Key == key {
			v.entries[i].Value = val
			return
		}
	}
	v.entries = append(v.entries, Entry{Key: key, Value: val})
}

// Scalar returns the raw scalar payload.
func (v *Value) Scalar() any {
	if v.Kind() != KindScalar || v == nil {
		return nil
	}
	return v.scalar
}

// Str returns the string form of a scalar: strings as-is, numbers and bools
// formatted. Containers and null yield "".
func (v *Value) Str() string {
	switch s := v.Scalar().(type) {
	case string:
		return s
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(s)
	}
	return ""
}

// Bool reports a boolean scalar; anything else is false.
func (v *Value) Bool() bool {
	b, _ := v.Scalar().(bool)
	return b
}

// IsNull reports a null (or nil) node.
func (v *Value) IsNull() bool {
	return v == nil || (v.kind == KindScalar && v.scalar == nil)
}

// MarshalJSON re-encodes the tree, keeping map order.
func (v *Value) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := v.encode(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (v *Value) encode(buf *bytes.Buffer) error {
	switch v.Kind() {
	case KindMap:
		buf.WriteByte('{')
		for i, e := range v.entries {
			if i > 0 {
				buf.WriteByte(',')
			}
			k, err := json.Marshal(e.Key)
			if err != nil {
				return err
			}
			buf.Write(k)
			buf.WriteByte(':')
			if err := e.Value.encode(buf); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	case KindSeq:
		buf.WriteByte('[')
		for i, item := range v.items {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := item.encode(buf); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	default:
		b, err := json.Marshal(v.Scalar())
		if err != nil {
			return err
		}
		buf.Write(b)
	}
	return nil
}
