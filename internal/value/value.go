// Package value provides a tagged representation of tool arguments and
// schema fragments so converters can switch exhaustively over kinds instead
// of type-asserting on interface{} trees.
package value

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strconv"
)

// Kind identifies which field of a Value is populated.
type Kind uint8

const (
	Null Kind = iota
	String
	Number
	Bool
	List
	Map
)

func (k Kind) String() string {
	switch k {
	case Null:
		return "null"
	case String:
		return "string"
	case Number:
		return "number"
	case Bool:
		return "bool"
	case List:
		return "list"
	case Map:
		return "map"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// Value is an immutable tagged union. The zero Value is null.
type Value struct {
	kind Kind
	str  string // string payload, or the literal text of a number
	b    bool
	list []Value
	obj  Object
}

// Object is a string-keyed argument map.
type Object map[string]Value

// NullValue returns the null value.
func NullValue() Value { return Value{} }

// Str builds a string value.
func Str(s string) Value { return Value{kind: String, str: s} }

// Num builds a number value from a float.
func Num(f float64) Value {
	return Value{kind: Number, str: strconv.FormatFloat(f, 'f', -1, 64)}
}

// Int builds a number value from an integer.
func Int(i int64) Value { return Value{kind: Number, str: strconv.FormatInt(i, 10)} }

// NumLiteral builds a number value keeping its JSON literal text verbatim.
func NumLiteral(n json.Number) Value { return Value{kind: Number, str: n.String()} }

// Boolean builds a bool value.
func Boolean(b bool) Value { return Value{kind: Bool, b: b} }

// ListOf builds a list value.
func ListOf(items ...Value) Value {
	return Value{kind: List, list: slices.Clone(items)}
}

// MapOf builds a map value.
func MapOf(o Object) Value {
	if o == nil {
		o = Object{}
	}
	return Value{kind: Map, obj: maps.Clone(o)}
}

func (v Value) Kind() Kind    { return v.kind }
func (v Value) IsNull() bool  { return v.kind == Null }
func (v Value) List() []Value { return v.list }
func (v Value) Map() Object   { return v.obj }

// AsString returns the string payload and whether v is a string.
func (v Value) AsString() (string, bool) {
	return v.str, v.kind == String
}

// AsBool returns the bool payload and whether v is a bool.
func (v Value) AsBool() (bool, bool) {
	return v.b, v.kind == Bool
}

// AsFloat returns the numeric payload as a float64.
func (v Value) AsFloat() (float64, bool) {
	if v.kind != Number {
		return 0, false
	}
	f, err := strconv.ParseFloat(v.str, 64)
	return f, err == nil
}

// AsInt returns the numeric payload as an int64 when it is integral.
func (v Value) AsInt() (int64, bool) {
	if v.kind != Number {
		return 0, false
	}
	if i, err := strconv.ParseInt(v.str, 10, 64); err == nil {
		return i, true
	}
	f, ok := v.AsFloat()
	if !ok || f != float64(int64(f)) {
		return 0, false
	}
	return int64(f), true
}

// Get returns the member named key of a map value.
func (v Value) Get(key string) (Value, bool) {
	if v.kind != Map {
		return Value{}, false
	}
	m, ok := v.obj[key]
	return m, ok
}

// String renders v for display: strings are returned unquoted, every other
// kind is rendered as compact JSON.
func (v Value) String() string {
	if v.kind == String {
		return v.str
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("<invalid %s>", v.kind)
	}
	return string(b)
}

// Equal reports deep equality. Numbers compare by numeric value.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case Null:
		return true
	case String:
		return v.str == o.str
	case Number:
		a, _ := v.AsFloat()
		b, _ := o.AsFloat()
		return a == b
	case Bool:
		return v.b == o.b
	case List:
		return slices.EqualFunc(v.list, o.list, Value.Equal)
	case Map:
		return v.obj.Equal(o.obj)
	}
	return false
}

// Equal reports whether both objects hold the same keys with equal values.
func (o Object) Equal(other Object) bool {
	return maps.EqualFunc(o, other, Value.Equal)
}

// Keys returns the object's keys in sorted order.
func (o Object) Keys() []string {
	return slices.Sorted(maps.Keys(o))
}

// MarshalJSON implements json.Marshaler.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case Null:
		return []byte("null"), nil
	case String:
		return json.Marshal(v.str)
	case Number:
		return []byte(v.str), nil
	case Bool:
		return strconv.AppendBool(nil, v.b), nil
	case List:
		if v.list == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(v.list)
	case Map:
		if v.obj == nil {
			return []byte("{}"), nil
		}
		return json.Marshal(map[string]Value(v.obj))
	}
	return nil, fmt.Errorf("value: unknown kind %d", v.kind)
}

// UnmarshalJSON implements json.Unmarshaler. Numbers keep their literal text.
func (v *Value) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	parsed, err := FromAny(raw)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// Parse decodes a JSON document into a Value.
func Parse(data []byte) (Value, error) {
	var v Value
	if err := v.UnmarshalJSON(data); err != nil {
		return Value{}, err
	}
	return v, nil
}

// ParseObject decodes a JSON object into an Object. Non-object documents are
// rejected.
func ParseObject(data []byte) (Object, error) {
	v, err := Parse(data)
	if err != nil {
		return nil, err
	}
	if v.kind != Map {
		return nil, fmt.Errorf("expected JSON object, got %s", v.kind)
	}
	return v.obj, nil
}

// FromAny converts untyped Go data (as produced by encoding/json or written
// by hand) into a Value.
func FromAny(x any) (Value, error) {
	switch t := x.(type) {
	case nil:
		return Value{}, nil
	case Value:
		return t, nil
	case Object:
		return MapOf(t), nil
	case string:
		return Str(t), nil
	case bool:
		return Boolean(t), nil
	case json.Number:
		return NumLiteral(t), nil
	case float64:
		return Num(t), nil
	case float32:
		return Num(float64(t)), nil
	case int:
		return Int(int64(t)), nil
	case int32:
		return Int(int64(t)), nil
	case int64:
		return Int(t), nil
	case uint:
		return Value{kind: Number, str: strconv.FormatUint(uint64(t), 10)}, nil
	case uint64:
		return Value{kind: Number, str: strconv.FormatUint(t, 10)}, nil
	case []any:
		items := make([]Value, len(t))
		for i, item := range t {
			v, err := FromAny(item)
			if err != nil {
				return Value{}, fmt.Errorf("index %d: %w", i, err)
			}
			items[i] = v
		}
		return Value{kind: List, list: items}, nil
	case []string:
		items := make([]Value, len(t))
		for i, s := range t {
			items[i] = Str(s)
		}
		return Value{kind: List, list: items}, nil
	case map[string]any:
		obj := make(Object, len(t))
		for k, item := range t {
			v, err := FromAny(item)
			if err != nil {
				return Value{}, fmt.Errorf("key %q: %w", k, err)
			}
			obj[k] = v
		}
		return Value{kind: Map, obj: obj}, nil
	case map[string]string:
		obj := make(Object, len(t))
		for k, s := range t {
			obj[k] = Str(s)
		}
		return Value{kind: Map, obj: obj}, nil
	case json.RawMessage:
		return Parse(t)
	default:
		// Structs and other named types go through their JSON encoding.
		data, err := json.Marshal(t)
		if err != nil {
			return Value{}, fmt.Errorf("unsupported value of type %T: %w", x, err)
		}
		return Parse(data)
	}
}

// ObjectFromAny converts a map[string]any into an Object.
func ObjectFromAny(m map[string]any) (Object, error) {
	v, err := FromAny(m)
	if err != nil {
		return nil, err
	}
	if v.obj == nil {
		return Object{}, nil
	}
	return v.obj, nil
}

// Any converts v back into untyped Go data. Numbers become float64 when
// they carry a fraction or exponent and int64 otherwise.
func (v Value) Any() any {
	switch v.kind {
	case String:
		return v.str
	case Number:
		if i, err := strconv.ParseInt(v.str, 10, 64); err == nil {
			return i
		}
		f, _ := strconv.ParseFloat(v.str, 64)
		return f
	case Bool:
		return v.b
	case List:
		out := make([]any, len(v.list))
		for i, item := range v.list {
			out[i] = item.Any()
		}
		return out
	case Map:
		return v.obj.Any()
	}
	return nil
}

// Any converts the object into a map[string]any.
func (o Object) Any() map[string]any {
	out := make(map[string]any, len(o))
	for k, item := range o {
		out[k] = item.Any()
	}
	return out
}

// MarshalJSON keeps a nil Object encoding as {} rather than null.
func (o Object) MarshalJSON() ([]byte, error) {
	if o == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(map[string]Value(o))
}
