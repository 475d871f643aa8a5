package payload

import (
	"iter"
	"slices"
	"strconv"
)

// Kind identifies which variant a Value holds.
type Kind int

const (
	// KindNull is the zero Value.
	KindNull Kind = iota
	// KindString holds text.
	KindString
	// KindNumber holds a number kept as its decimal text.
	KindNumber
	// KindBool holds true or false.
	KindBool
	// KindSeq holds an ordered sequence of values.
	KindSeq
	// KindMap holds an ordered mapping with unique string keys.
	KindMap
)

// String returns the kind's name as used in error messages.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindSeq:
		return "sequence"
	case KindMap:
		return "mapping"
	default:
		return "unknown"
	}
}

// Value is an immutable node of a plugin result tree.
// The zero Value is null.
type Value struct {
	kind Kind

	// text holds the string, the number's decimal text, or "true"/"false".
	text string

	// items holds sequence elements.
	items []Value

	// keys holds mapping keys in insertion order; fields holds their values.
	keys   []string
	fields map[string]Value
}

// Entry is one key/value pair of a mapping.
type Entry struct {
	Key   string
	Value Value
}

// Kind returns the variant held by v.
func (v Value) Kind() Kind {
	return v.kind
}

// IsNull reports whether v is null.
func (v Value) IsNull() bool {
	return v.kind == KindNull
}

// IsScalar reports whether v is a string, number or bool.
func (v Value) IsScalar() bool {
	return v.kind == KindString || v.kind == KindNumber || v.kind == KindBool
}

// Len returns the number of sequence items or mapping entries.
// Scalars and null have length 0.
func (v Value) Len() int {
	switch v.kind {
	case KindSeq:
		return len(v.items)
	case KindMap:
		return len(v.keys)
	default:
		return 0
	}
}

// Keys returns a copy of the mapping keys in insertion order.
func (v Value) Keys() []string {
	if v.kind != KindMap {
		return nil
	}
	return slices.Clone(v.keys)
}

// Get returns the value stored under key.
func (v Value) Get(key string) (Value, bool) {
	if v.kind != KindMap {
		return Value{}, false
	}
	child, ok := v.fields[key]
	return child, ok
}

// Index returns the i-th sequence item, or null when out of range.
func (v Value) Index(i int) Value {
	if v.kind != KindSeq || i < 0 || i >= len(v.items) {
		return Value{}
	}
	return v.items[i]
}

// All iterates sequence items in order.
func (v Value) All() iter.Seq2[int, Value] {
	return func(yield func(int, Value) bool) {
		if v.kind != KindSeq {
			return
		}
		for i, item := range v.items {
			if !yield(i, item) {
				return
			}
		}
	}
}

// Entries iterates mapping entries in insertion order.
func (v Value) Entries() iter.Seq2[string, Value] {
	return func(yield func(string, Value) bool) {
		if v.kind != KindMap {
			return
		}
		for _, k := range v.keys {
			if !yield(k, v.fields[k]) {
				return
			}
		}
	}
}

// Field returns the value under key, failing when v is not a mapping or the
// key is absent.
func (v Value) Field(key string) (Value, error) {
	if v.kind != KindMap {
		return Value{}, &ShapeError{Path: key, Want: KindMap, Got: v.kind}
	}
	child, ok := v.fields[key]
	if !ok {
		return Value{}, &ShapeError{Path: key, Missing: true, Want: KindNull, Got: KindNull}
	}
	return child, nil
}

// AsString returns the text of a string value.
func (v Value) AsString() (string, error) {
	if v.kind != KindString {
		return "", &ShapeError{Want: KindString, Got: v.kind}
	}
	return v.text, nil
}

// Scalar returns the text of any scalar: the string itself, the number's
// digits as given, or "true"/"false". Null yields an empty string.
func (v Value) Scalar() (string, error) {
	switch v.kind {
	case KindString, KindNumber, KindBool:
		return v.text, nil
	case KindNull:
		return "", nil
	default:
		return "", &ShapeError{Want: KindString, Got: v.kind}
	}
}

// AsBool returns the value of a bool.
func (v Value) AsBool() (bool, error) {
	if v.kind != KindBool {
		return false, &ShapeError{Want: KindBool, Got: v.kind}
	}
	return v.text == "true", nil
}

// AsInt parses a number as a base-10 integer.
func (v Value) AsInt() (int64, error) {
	if v.kind != KindNumber {
		return 0, &ShapeError{Want: KindNumber, Got: v.kind}
	}
	n, err := strconv.ParseInt(v.text, 10, 64)
	if err != nil {
		return 0, &ShapeError{Want: KindNumber, Got: KindString}
	}
	return n, nil
}

// Items returns a copy of the sequence items, failing when v is not a sequence.
func (v Value) Items() ([]Value, error) {
	if v.kind != KindSeq {
		return nil, &ShapeError{Want: KindSeq, Got: v.kind}
	}
	return slices.Clone(v.items), nil
}

// Pairs returns the mapping entries in order, failing when v is not a mapping.
func (v Value) Pairs() ([]Entry, error) {
	if v.kind != KindMap {
		return nil, &ShapeError{Want: KindMap, Got: v.kind}
	}
	entries := make([]Entry, 0, len(v.keys))
	for _, k := range v.keys {
		entries = append(entries, Entry{Key: k, Value: v.fields[k]})
	}
	return entries, nil
}

// String returns the compact JSON form of v, for debugging and logs.
func (v Value) String() string {
	data, err := v.MarshalJSON()
	if err != nil {
		return "<" + v.kind.String() + ">"
	}
	return string(data)
}

// Equal reports whether a and b hold the same tree, including mapping order.
func Equal(a, b Value) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindNull:
		return true
	case KindString, KindNumber, KindBool:
		return a.text == b.text
	case KindSeq:
		if len(a.items) != len(b.items) {
			return false
		}
		for i := range a.items {
			if !Equal(a.items[i], b.items[i]) {
				return false
			}
		}
		return true
	case KindMap:
		if !slices.Equal(a.keys, b.keys) {
			return false
		}
		for _, k := range a.keys {
			if !Equal(a.fields[k], b.fields[k]) {
				return false
			}
		}
		return true
	default:
		return false
	}
}
