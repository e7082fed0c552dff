// Package value implements the machine's value domain: integers,
// booleans, null, void, and object references.
package value

import (
	"fmt"

	"avenir/internal/addr"
)

// Kind is the type of a value at runtime.
type Kind int

const (
	KindInvalid Kind = iota
	KindInt
	KindBool
	KindNull
	KindVoid
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindInt:
		return "Int"
	case KindBool:
		return "Bool"
	case KindNull:
		return "Null"
	case KindVoid:
		return "Void"
	case KindObject:
		return "Object"
	default:
		return "Invalid"
	}
}

// Value is the universal value carried by registers, fields, and
// expression results. Bool has exactly two instances (true and false),
// Null and Void exactly one each; Int and Object carry payloads.
type Value struct {
	Kind Kind

	Int int32

	Bool bool

	// ClassName and Ptr are only meaningful when Kind == KindObject.
	ClassName string
	Ptr       addr.ObjectPointer
}

func (v Value) String() string {
	switch v.Kind {
	case KindInt:
		return fmt.Sprintf("%d", v.Int)
	case KindBool:
		if v.Bool {
			return "true"
		}
		return "false"
	case KindNull:
		return "null"
	case KindVoid:
		return "void"
	case KindObject:
		return fmt.Sprintf("%s@%s", v.ClassName, v.Ptr)
	default:
		return "<invalid>"
	}
}

// Int makes an integer value.
func Int(i int32) Value {
	return Value{Kind: KindInt, Int: i}
}

var (
	trueValue  = Value{Kind: KindBool, Bool: true}
	falseValue = Value{Kind: KindBool, Bool: false}
	nullValue  = Value{Kind: KindNull}
	voidValue  = Value{Kind: KindVoid}
)

// Bool returns the shared true/false singleton for b.
func Bool(b bool) Value {
	if b {
		return trueValue
	}
	return falseValue
}

// Null returns the singleton null value.
func Null() Value { return nullValue }

// Void returns the singleton void value, produced by statements and
// methods that have nothing meaningful to return.
func Void() Value { return voidValue }

// Object makes a reference to an allocated instance of class.
func Object(class string, ptr addr.ObjectPointer) Value {
	return Value{Kind: KindObject, ClassName: class, Ptr: ptr}
}

// ToBoolean is true for every value except the false singleton,
// including null, void, the integer 0, and all objects. This matches
// the original interpreter's truthiness rule rather than a C-like
// zero-is-false convention.
func (v Value) ToBoolean() bool {
	return !(v.Kind == KindBool && !v.Bool)
}

// ToInt returns v's integer payload. Only defined when v.Kind ==
// KindInt; callers must check Kind themselves or go through the
// evaluator, which raises TypeMismatch on a bad Kind.
func (v Value) ToInt() (int32, bool) {
	if v.Kind != KindInt {
		return 0, false
	}
	return v.Int, true
}

// IsNull reports whether v is the null singleton.
func (v Value) IsNull() bool {
	return v.Kind == KindNull
}
