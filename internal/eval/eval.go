// Package eval evaluates the machine's atomic, side-effect-free
// expressions against a frame pointer and a store.
package eval

import (
	"avenir/internal/addr"
	"avenir/internal/ast"
	"avenir/internal/state"
	"avenir/internal/store"
	"avenir/internal/value"
)

// Eval reduces an expression to a value. fp names the activation whose
// registers Register/This expressions read from; reg resolves field
// membership and This's class.
func Eval(reg *ast.Registry, st *store.Store, fp addr.FramePointer, e ast.Expr) (value.Value, error) {
	switch n := e.(type) {
	case *ast.ThisExpr:
		return readRegister(st, fp, "$this")

	case *ast.RegisterExpr:
		return readRegister(st, fp, n.Name)

	case *ast.IntExpr:
		return value.Int(n.Value), nil

	case *ast.BoolExpr:
		return value.Bool(n.Value), nil

	case *ast.NullExpr:
		return value.Null(), nil

	case *ast.VoidExpr:
		return value.Void(), nil

	case *ast.FieldExpr:
		objVal, err := Eval(reg, st, fp, n.Obj)
		if err != nil {
			return value.Value{}, err
		}
		return readField(reg, st, objVal, n.Field)

	case *ast.InstanceOfExpr:
		objVal, err := Eval(reg, st, fp, n.Obj)
		if err != nil {
			return value.Value{}, err
		}
		if objVal.Kind != value.KindObject {
			return value.Value{}, state.Newf(state.TypeMismatch, "instanceof on non-object %s", objVal.Kind)
		}
		class, ok := reg.Class(objVal.ClassName)
		if !ok {
			return value.Value{}, state.Newf(state.NoSuchMember, "instanceof: unknown class %s", objVal.ClassName)
		}
		return value.Bool(class.IsInstanceOf(reg, n.Class)), nil

	case *ast.AtomicOpExpr:
		return evalAtomicOp(reg, st, fp, n)

	default:
		return value.Value{}, state.Newf(state.KontMisuse, "eval: unhandled expression %T", e)
	}
}

func readRegister(st *store.Store, fp addr.FramePointer, name string) (value.Value, error) {
	a := addr.FrameAddr{FP: fp, Reg: name}
	v, ok := st.Lookup(a)
	if !ok {
		return value.Value{}, state.Newf(state.UnboundAddr, "unbound register %s", a)
	}
	return v, nil
}

func readField(reg *ast.Registry, st *store.Store, objVal value.Value, field string) (value.Value, error) {
	if objVal.Kind != value.KindObject {
		return value.Value{}, state.Newf(state.TypeMismatch, "field dereference on non-object %s", objVal.Kind)
	}
	class, ok := reg.Class(objVal.ClassName)
	if !ok {
		return value.Value{}, state.Newf(state.NoSuchMember, "unknown class %s", objVal.ClassName)
	}
	if _, err := class.LookupField(reg, field); err != nil {
		return value.Value{}, state.Newf(state.NoSuchMember, "%s", err)
	}
	a := addr.FieldAddr{Obj: objVal.Ptr, Field: field}
	v, ok := st.Lookup(a)
	if !ok {
		return value.Value{}, state.Newf(state.UnboundAddr, "unbound field %s", a)
	}
	return v, nil
}

func evalAtomicOp(reg *ast.Registry, st *store.Store, fp addr.FramePointer, n *ast.AtomicOpExpr) (value.Value, error) {
	ints := make([]int32, len(n.Args))
	for i, arg := range n.Args {
		v, err := Eval(reg, st, fp, arg)
		if err != nil {
			return value.Value{}, err
		}
		iv, ok := v.ToInt()
		if !ok {
			return value.Value{}, state.Newf(state.TypeMismatch, "%s operand is not an Int: %s", n.Op, v.Kind)
		}
		ints[i] = iv
	}

	switch n.Op {
	case ast.ADD:
		var sum int32
		for _, iv := range ints {
			sum += iv
		}
		return value.Int(sum), nil

	case ast.MUL:
		product := int32(1)
		for _, iv := range ints {
			product *= iv
		}
		return value.Int(product), nil

	case ast.SUB:
		if len(ints) != 2 {
			return value.Value{}, state.Newf(state.TypeMismatch, "SUB requires exactly 2 operands, got %d", len(ints))
		}
		return value.Int(ints[0] - ints[1]), nil

	case ast.EQ:
		if len(ints) != 2 {
			return value.Value{}, state.Newf(state.TypeMismatch, "EQ requires exactly 2 operands, got %d", len(ints))
		}
		return value.Bool(ints[0] == ints[1]), nil

	default:
		return value.Value{}, state.Newf(state.KontMisuse, "unknown operator %s", n.Op)
	}
}
