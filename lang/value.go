package lang

import (
	"fmt"
	"math"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Type indicates the runtime type of a [Value].
type Type int

const (
	// TypeUnit is the absence of a value.
	TypeUnit Type = iota // Unit

	// TypeInteger is a signed 64-bit integer.
	TypeInteger // Integer

	// TypeFloat is a 64-bit floating-point number.
	TypeFloat // Float

	// TypeBoolean is true or false.
	TypeBoolean // Boolean

	// TypeString is a UTF-8 string.
	TypeString // String

	// TypeList is an ordered sequence of values.
	TypeList // List

	// TypeMap is an ordered string-keyed mapping of values.
	TypeMap // Map

	// TypeRef is an opaque host object, such as a record repository.
	TypeRef // Ref
)

// Value is a runtime value produced by evaluation. The zero Value is unit.
//
// Values are immutable once constructed; list and map payloads must not be
// modified after they are wrapped.
type Value struct {
	Type Type

	num  float64
	int  int64
	str  string
	bool bool
	list []Value
	keys []string
	dict map[string]Value
	ref  any
}

// Unit returns the unit value.
func Unit() Value { return Value{} }

// NewInteger creates an Integer value.
func NewInteger(n int64) Value { return Value{Type: TypeInteger, int: n} }

// NewFloat creates a Float value.
func NewFloat(f float64) Value { return Value{Type: TypeFloat, num: f} }

// NewBoolean creates a Boolean value.
func NewBoolean(b bool) Value { return Value{Type: TypeBoolean, bool: b} }

// NewString creates a String value.
func NewString(s string) Value { return Value{Type: TypeString, str: s} }

// NewList creates a List value holding elems.
func NewList(elems ...Value) Value {
	if elems == nil {
		elems = []Value{}
	}

	return Value{Type: TypeList, list: elems}
}

// NewMap creates a Map value. Keys are kept in the given order; keys missing
// from fields map to unit.
func NewMap(keys []string, fields map[string]Value) Value {
	if fields == nil {
		fields = map[string]Value{}
	}

	return Value{Type: TypeMap, keys: keys, dict: fields}
}

// NewRef wraps an opaque host object.
func NewRef(ref any) Value { return Value{Type: TypeRef, ref: ref} }

// IsUnit reports whether v is unit.
func (v Value) IsUnit() bool { return v.Type == TypeUnit }

// IsNumeric reports whether v is an Integer or a Float.
func (v Value) IsNumeric() bool {
	return v.Type == TypeInteger || v.Type == TypeFloat
}

// Int returns the Integer payload.
func (v Value) Int() (int64, bool) { return v.int, v.Type == TypeInteger }

// Float returns v as a float64 when v is numeric.
func (v Value) Float() (float64, bool) {
	switch v.Type {
	case TypeInteger:
		return float64(v.int), true

	case TypeFloat:
		return v.num, true

	default:
		return 0, false
	}
}

// Bool returns the Boolean payload.
func (v Value) Bool() (bool, bool) { return v.bool, v.Type == TypeBoolean }

// Str returns the String payload.
func (v Value) Str() (string, bool) { return v.str, v.Type == TypeString }

// List returns the List payload. The returned slice must not be modified.
func (v Value) List() ([]Value, bool) { return v.list, v.Type == TypeList }

// Keys returns the Map keys in order.
func (v Value) Keys() []string { return v.keys }

// Field returns the value stored under key in a Map.
func (v Value) Field(key string) (Value, bool) {
	if v.Type != TypeMap {
		return Value{}, false
	}

	f, ok := v.dict[key]

	return f, ok
}

// Ref returns the opaque host object of a Ref value.
func (v Value) Ref() (any, bool) { return v.ref, v.Type == TypeRef }

// Len returns the element count of a List or Map, or the rune count of a
// String. Other types have length 0.
func (v Value) Len() int {
	switch v.Type {
	case TypeList:
		return len(v.list)

	case TypeMap:
		return len(v.keys)

	case TypeString:
		return len([]rune(v.str))

	default:
		return 0
	}
}

// Equal reports whether v and o are equal. Numbers compare by value across
// Integer and Float.
func (v Value) Equal(o Value) bool {
	if v.IsNumeric() && o.IsNumeric() {
		if v.Type == TypeInteger && o.Type == TypeInteger {
			return v.int == o.int
		}

		a, _ := v.Float()
		b, _ := o.Float()

		return a == b
	}

	if v.Type != o.Type {
		return false
	}

	switch v.Type {
	case TypeUnit:
		return true

	case TypeBoolean:
		return v.bool == o.bool

	case TypeString:
		return v.str == o.str

	case TypeList:
		if len(v.list) != len(o.list) {
			return false
		}

		for i := range v.list {
			if !v.list[i].Equal(o.list[i]) {
				return false
			}
		}

		return true

	case TypeMap:
		if len(v.dict) != len(o.dict) {
			return false
		}

		for k, a := range v.dict {
			b, ok := o.dict[k]
			if !ok || !a.Equal(b) {
				return false
			}
		}

		return true

	case TypeRef:
		if v.ref == nil || o.ref == nil {
			return v.ref == o.ref
		}

		return reflect.TypeOf(v.ref).Comparable() && v.ref == o.ref

	default:
		return false
	}
}

// ValueOf converts a Go value into a Value.
//
// Supported inputs are nil, bool, the integer and float kinds, string,
// time.Time (rendered as YYYY-MM-DD), Value, and slices and string-keyed maps
// of those. Map keys are ordered lexically. Any other input becomes a Ref.
func ValueOf(x any) (Value, error) {
	switch val := x.(type) {
	case nil:
		return Unit(), nil

	case Value:
		return val, nil

	case bool:
		return NewBoolean(val), nil

	case int:
		return NewInteger(int64(val)), nil

	case int8:
		return NewInteger(int64(val)), nil

	case int16:
		return NewInteger(int64(val)), nil

	case int32:
		return NewInteger(int64(val)), nil

	case int64:
		return NewInteger(val), nil

	case uint8:
		return NewInteger(int64(val)), nil

	case uint16:
		return NewInteger(int64(val)), nil

	case uint32:
		return NewInteger(int64(val)), nil

	case uint:
		if uint64(val) > math.MaxInt64 {
			return Value{}, ErrTypeMismatch.Detailf("integer %d overflows", val)
		}

		return NewInteger(int64(val)), nil

	case uint64:
		if val > math.MaxInt64 {
			return Value{}, ErrTypeMismatch.Detailf("integer %d overflows", val)
		}

		return NewInteger(int64(val)), nil

	case float32:
		return NewFloat(float64(val)), nil

	case float64:
		return NewFloat(val), nil

	case string:
		return NewString(val), nil

	case time.Time:
		return NewString(val.Format(time.DateOnly)), nil

	case []string:
		elems := make([]Value, len(val))
		for i, s := range val {
			elems[i] = NewString(s)
		}

		return NewList(elems...), nil

	case []any:
		elems := make([]Value, len(val))

		for i, e := range val {
			ev, err := ValueOf(e)
			if err != nil {
				return Value{}, err
			}

			elems[i] = ev
		}

		return NewList(elems...), nil

	case map[string]any:
		fields := make(map[string]Value, len(val))

		for k, e := range val {
			ev, err := ValueOf(e)
			if err != nil {
				return Value{}, err
			}

			fields[k] = ev
		}

		return NewMap(sortedKeys(fields), fields), nil

	default:
		return valueOfReflect(x)
	}
}

// valueOfReflect handles typed slices and maps that the type switch in
// [ValueOf] does not name, falling back to a Ref.
func valueOfReflect(x any) (Value, error) {
	rv := reflect.ValueOf(x)

	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		elems := make([]Value, rv.Len())

		for i := range rv.Len() {
			ev, err := ValueOf(rv.Index(i).Interface())
			if err != nil {
				return Value{}, err
			}

			elems[i] = ev
		}

		return NewList(elems...), nil

	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return NewRef(x), nil
		}

		fields := make(map[string]Value, rv.Len())

		iter := rv.MapRange()
		for iter.Next() {
			ev, err := ValueOf(iter.Value().Interface())
			if err != nil {
				return Value{}, err
			}

			fields[iter.Key().String()] = ev
		}

		return NewMap(sortedKeys(fields), fields), nil

	default:
		return NewRef(x), nil
	}
}

// Native converts v back into a plain Go value: nil, int64, float64, bool,
// string, []any, map[string]any, or the wrapped Ref object.
func (v Value) Native() any {
	switch v.Type {
	case TypeInteger:
		return v.int

	case TypeFloat:
		return v.num

	case TypeBoolean:
		return v.bool

	case TypeString:
		return v.str

	case TypeList:
		out := make([]any, len(v.list))
		for i, e := range v.list {
			out[i] = e.Native()
		}

		return out

	case TypeMap:
		out := make(map[string]any, len(v.dict))
		for k, e := range v.dict {
			out[k] = e.Native()
		}

		return out

	case TypeRef:
		return v.ref

	default:
		return nil
	}
}

// String renders v in formula syntax: strings are quoted, floats always carry
// a fractional part, and unit renders as "()".
func (v Value) String() string {
	var sb strings.Builder

	v.format(&sb)

	return sb.String()
}

// Display renders v like [Value.String] except that a top-level String is
// written without quotes.
func (v Value) Display() string {
	if v.Type == TypeString {
		return v.str
	}

	return v.String()
}

func (v Value) format(sb *strings.Builder) {
	switch v.Type {
	case TypeUnit:
		sb.WriteString("()")

	case TypeInteger:
		sb.WriteString(strconv.FormatInt(v.int, 10))

	case TypeFloat:
		sb.WriteString(formatFloat(v.num))

	case TypeBoolean:
		sb.WriteString(strconv.FormatBool(v.bool))

	case TypeString:
		sb.WriteString(strconv.Quote(v.str))

	case TypeList:
		sb.WriteByte('[')

		for i, e := range v.list {
			if i > 0 {
				sb.WriteString(", ")
			}

			e.format(sb)
		}

		sb.WriteByte(']')

	case TypeMap:
		sb.WriteByte('{')

		for i, k := range v.keys {
			if i > 0 {
				sb.WriteString(", ")
			}

			if IsIdentifier(k) {
				sb.WriteString(k)
			} else {
				sb.WriteString(strconv.Quote(k))
			}

			sb.WriteString(": ")
			v.dict[k].format(sb)
		}

		sb.WriteByte('}')

	case TypeRef:
		fmt.Fprintf(sb, "<%T>", v.ref)
	}
}

// formatFloat renders integral floats with a single trailing zero ("800.0")
// and everything else with the shortest exact representation.
func formatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"

	case math.IsInf(f, 1):
		return "Infinity"

	case math.IsInf(f, -1):
		return "-Infinity"

	case f == math.Trunc(f) && math.Abs(f) < 1e15:
		return strconv.FormatFloat(f, 'f', 1, 64)

	default:
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
}

// IsIdentifier reports whether s can name a variable or function.
func IsIdentifier(s string) bool {
	if s == "" || IsKeyword(s) {
		return false
	}

	for i, r := range s {
		if i == 0 && !isIdentifierStart(r) {
			return false
		}

		if !isIdentifierContinue(r) {
			return false
		}
	}

	return true
}

func sortedKeys[T any](m map[string]T) []string {
	if len(m) == 0 {
		return nil
	}

	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	return keys
}
