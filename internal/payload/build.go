package payload

import (
	"encoding/json"
	"fmt"
	"reflect"
	"slices"
	"strconv"
)

// Null returns the null value.
func Null() Value {
	return Value{}
}

// String returns a string value.
func String(s string) Value {
	return Value{kind: KindString, text: s}
}

// Number returns a number value holding text exactly as given.
// The caller is responsible for passing a numeric literal.
func Number(text string) Value {
	return Value{kind: KindNumber, text: text}
}

// Int returns a number value for n.
func Int(n int64) Value {
	return Number(strconv.FormatInt(n, 10))
}

// Float returns a number value for f using the shortest representation
// that round-trips.
func Float(f float64) Value {
	return Number(strconv.FormatFloat(f, 'f', -1, 64))
}

// Bool returns a boolean value.
func Bool(b bool) Value {
	return Value{kind: KindBool, text: strconv.FormatBool(b)}
}

// Seq returns a sequence holding a copy of items.
func Seq(items ...Value) Value {
	return Value{kind: KindSeq, items: slices.Clone(items)}
}

// Map returns a mapping of the given entries in order.
// A repeated key keeps its first position and takes the last value.
func Map(entries ...Entry) Value {
	b := NewMapBuilder()
	for _, e := range entries {
		b.Set(e.Key, e.Value)
	}
	return b.Build()
}

// Pair is shorthand for building an Entry.
func Pair(key string, v Value) Entry {
	return Entry{Key: key, Value: v}
}

// MapBuilder accumulates mapping entries in insertion order.
// The zero MapBuilder is not usable; call NewMapBuilder.
type MapBuilder struct {
	keys   []string
	fields map[string]Value
}

// NewMapBuilder returns an empty builder.
func NewMapBuilder() *MapBuilder {
	return &MapBuilder{fields: make(map[string]Value)}
}

// Set stores v under key. Setting an existing key replaces the value but
// keeps the key's original position.
func (b *MapBuilder) Set(key string, v Value) *MapBuilder {
	if _, exists := b.fields[key]; !exists {
		b.keys = append(b.keys, key)
	}
	b.fields[key] = v
	return b
}

// Len returns the number of keys set so far.
func (b *MapBuilder) Len() int {
	return len(b.keys)
}

// Build returns the mapping. The builder may keep being used; later calls
// to Set do not affect values already built.
func (b *MapBuilder) Build() Value {
	fields := make(map[string]Value, len(b.fields))
	for k, v := range b.fields {
		fields[k] = v
	}
	return Value{kind: KindMap, keys: slices.Clone(b.keys), fields: fields}
}

// From converts a plain Go value into a Value.
//
// Supported inputs are nil, Value, strings, booleans, integer and float
// kinds, json.Number, slices and arrays of supported values, and maps with
// string keys. Go maps carry no order, so their keys are sorted to keep
// rendering deterministic; use MapBuilder when order matters.
func From(x any) (Value, error) {
	switch t := x.(type) {
	case nil:
		return Null(), nil
	case Value:
		return t, nil
	case json.Number:
		return Number(t.String()), nil
	}
	return fromReflect(reflect.ValueOf(x))
}

// MustFrom is like From but panics on unsupported input. It is intended for
// literals in tests and built-in plugin code.
func MustFrom(x any) Value {
	v, err := From(x)
	if err != nil {
		panic(err)
	}
	return v
}

func fromReflect(rv reflect.Value) (Value, error) {
	switch rv.Kind() {
	case reflect.Invalid:
		return Null(), nil
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return Null(), nil
		}
		return From(rv.Elem().Interface())
	case reflect.String:
		return String(rv.String()), nil
	case reflect.Bool:
		return Bool(rv.Bool()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Int(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return Number(strconv.FormatUint(rv.Uint(), 10)), nil
	case reflect.Float32:
		return Number(strconv.FormatFloat(rv.Float(), 'f', -1, 32)), nil
	case reflect.Float64:
		return Float(rv.Float()), nil
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return Seq(), nil
		}
		items := make([]Value, 0, rv.Len())
		for i := range rv.Len() {
			item, err := From(rv.Index(i).Interface())
			if err != nil {
				return Value{}, fmt.Errorf("[%d]: %w", i, err)
			}
			items = append(items, item)
		}
		return Value{kind: KindSeq, items: items}, nil
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return Value{}, fmt.Errorf("%w: map key %s", ErrUnsupported, rv.Type().Key())
		}
		keys := make([]string, 0, rv.Len())
		for _, k := range rv.MapKeys() {
			keys = append(keys, k.String())
		}
		slices.Sort(keys)

		b := NewMapBuilder()
		for _, k := range keys {
			child, err := From(rv.MapIndex(reflect.ValueOf(k).Convert(rv.Type().Key())).Interface())
			if err != nil {
				return Value{}, fmt.Errorf("%s: %w", k, err)
			}
			b.Set(k, child)
		}
		return b.Build(), nil
	default:
		return Value{}, fmt.Errorf("%w: %s", ErrUnsupported, rv.Type())
	}
}
