// Package value implements the condition-expression value model: the seven
// value kinds, construction, equality, ordering and the coercion rules that
// move a value from one kind to another.
package value

import (
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/shopspring/decimal"
)

// Kind is the closed enumeration of value kinds.
type Kind int

const (
	Boolean Kind = iota
	Number
	String
	VersionKind
	Array
	Object
	Null
)

func (k Kind) String() string {
	switch k {
	case Boolean:
		return "Boolean"
	case Number:
		return "Number"
	case String:
		return "String"
	case VersionKind:
		return "Version"
	case Array:
		return "Array"
	case Object:
		return "Object"
	default:
		return "Null"
	}
}

// Version is an ordered tuple of 2-4 non-negative 32-bit integer components.
// Count is the number of components supplied (2-4); slots of Parts beyond
// Count are unused and never take part in equality or ordering as zeros.
type Version struct {
	Parts [4]int64
	Count int
}

func (v Version) String() string {
	s := fmt.Sprintf("%d.%d", v.Parts[0], v.Parts[1])
	for i := 2; i < v.Count; i++ {
		s += fmt.Sprintf(".%d", v.Parts[i])
	}
	return s
}

// Value is a tagged (kind, payload) pair. The zero Value is Boolean false;
// NewNull returns the Null singleton.
type Value struct {
	kind Kind
	b    bool
	n    decimal.Decimal
	s    string
	ver  Version
	arr  []interface{}
	obj  map[string]interface{}
}

func NewBoolean(b bool) Value { return Value{kind: Boolean, b: b} }
func NewNumber(d decimal.Decimal) Value { return Value{kind: Number, n: d} }
func NewString(s string) Value { return Value{kind: String, s: s} }
func NewVersion(v Version) Value { return Value{kind: VersionKind, ver: v} }
func NewArray(a []interface{}) Value { return Value{kind: Array, arr: a} }
func NewObject(o map[string]interface{}) Value { return Value{kind: Object, obj: o} }
func NewNull() Value { return Value{kind: Null} }

func (v Value) Kind() Kind                { return v.kind }
func (v Value) AsBoolean() bool           { return v.b }
func (v Value) AsNumber() decimal.Decimal { return v.n }
func (v Value) AsString() string          { return v.s }
func (v Value) AsVersion() Version        { return v.ver }
func (v Value) AsArray() []interface{}    { return v.arr }
func (v Value) AsObject() map[string]interface{} { return v.obj }

// FromRaw projects a caller-supplied JSON-like document fragment (as produced
// by encoding/json: map[string]interface{}, []interface{}, string, float64 /
// json.Number, bool, nil) into a Value. Arrays and Objects keep the original
// backing slice/map so that ReferenceEqual continues to observe identity.
func FromRaw(raw interface{}) Value {
	switch v := raw.(type) {
	case nil:
		return NewNull()
	case bool:
		return NewBoolean(v)
	case string:
		return NewString(v)
	case float64:
		return NewNumber(decimal.NewFromFloat(v))
	case json.Number:
		d, err := decimal.NewFromString(v.String())
		if err != nil {
			return NewNull()
		}
		return NewNumber(d)
	case int:
		return NewNumber(decimal.NewFromInt(int64(v)))
	case int64:
		return NewNumber(decimal.NewFromInt(v))
	case decimal.Decimal:
		return NewNumber(v)
	case []interface{}:
		return NewArray(v)
	case map[string]interface{}:
		return NewObject(v)
	default:
		return NewNull()
	}
}

// ReferenceEqual implements Array/Object equality: same kind and the same
// backing slice/map instance. Slices and maps are not comparable with ==, so
// identity is observed through the data pointer reflect exposes.
func ReferenceEqual(a, b Value) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case Array:
		if a.arr == nil || b.arr == nil {
			return a.arr == nil && b.arr == nil
		}
		return reflect.ValueOf(a.arr).Pointer() == reflect.ValueOf(b.arr).Pointer()
	case Object:
		if a.obj == nil || b.obj == nil {
			return a.obj == nil && b.obj == nil
		}
		return reflect.ValueOf(a.obj).Pointer() == reflect.ValueOf(b.obj).Pointer()
	default:
		return false
	}
}

// ConvertError is raised by the demand-conversions (ToNumber/ToString/
// ToVersion as used by ordering and by extensions that require a specific
// kind) when the source value cannot be coerced to the target kind.
type ConvertError struct {
	Value Value
	From  Kind
	To    Kind
}

func (e *ConvertError) Error() string {
	return fmt.Sprintf("Unable to coerce %s to %s.", e.From, e.To)
}
