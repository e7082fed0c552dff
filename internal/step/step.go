// Package step implements the machine's statement stepper: the
// transition relation that turns one control statement, under a frame
// pointer, store, and continuation, into the next State.
package step

import (
	"avenir/internal/addr"
	"avenir/internal/ast"
	"avenir/internal/eval"
	"avenir/internal/kont"
	"avenir/internal/state"
	"avenir/internal/value"
)

// Sink receives the arguments of a print statement, in order, one call
// per argument, in the machine's evaluation order.
type Sink interface {
	Print(v value.Value)
}

// Step advances s by exactly one statement. It returns the next state,
// or a non-nil error: either a *state.Fault (a bug in the program or the
// machine), a *kont.Halted (normal termination), or a
// *kont.UncaughtException (an exception that escaped every handler).
//
// A nil Stmt means the current activation fell off the end of its
// method body without an explicit return; that is itself a Fault,
// since every method body must end in a ReturnStmt (spec.md §6.1).
func Step(reg *ast.Registry, ctr *addr.Counter, out Sink, s *kont.State) (*kont.State, error) {
	if s.Stmt == nil {
		return nil, state.Newf(state.KontMisuse, "control fell off the end of a method body")
	}

	switch n := s.Stmt.(type) {
	case *ast.SkipStmt:
		return &kont.State{Stmt: n.Next(), FP: s.FP, Store: s.Store, Kont: s.Kont}, nil

	case *ast.LabelStmt:
		return &kont.State{Stmt: n.Next(), FP: s.FP, Store: s.Store, Kont: s.Kont}, nil

	case *ast.GotoStmt:
		target, err := reg.Label(n.Label)
		if err != nil {
			return nil, state.Newf(state.UnresolvedLabel, "%s", err)
		}
		return &kont.State{Stmt: target, FP: s.FP, Store: s.Store, Kont: s.Kont}, nil

	case *ast.IfStmt:
		cond, err := eval.Eval(reg, s.Store, s.FP, n.Cond)
		if err != nil {
			return nil, err
		}
		if cond.ToBoolean() {
			target, err := reg.Label(n.Label)
			if err != nil {
				return nil, state.Newf(state.UnresolvedLabel, "%s", err)
			}
			return &kont.State{Stmt: target, FP: s.FP, Store: s.Store, Kont: s.Kont}, nil
		}
		return &kont.State{Stmt: n.Next(), FP: s.FP, Store: s.Store, Kont: s.Kont}, nil

	case *ast.AssignStmt:
		val, err := eval.Eval(reg, s.Store, s.FP, n.Rhs)
		if err != nil {
			return nil, err
		}
		st_ := s.Store.Extend(addr.FrameAddr{FP: s.FP, Reg: n.Reg}, val)
		return &kont.State{Stmt: n.Next(), FP: s.FP, Store: st_, Kont: s.Kont}, nil

	case *ast.FieldAssignStmt:
		objVal, err := eval.Eval(reg, s.Store, s.FP, n.Obj)
		if err != nil {
			return nil, err
		}
		if objVal.Kind != value.KindObject {
			return nil, state.Newf(state.TypeMismatch, "field assignment target is not an object: %s", objVal.Kind)
		}
		rhsVal, err := eval.Eval(reg, s.Store, s.FP, n.Rhs)
		if err != nil {
			return nil, err
		}
		st_ := s.Store.Extend(addr.FieldAddr{Obj: objVal.Ptr, Field: n.Field}, rhsVal)
		return &kont.State{Stmt: n.Next(), FP: s.FP, Store: st_, Kont: s.Kont}, nil

	case *ast.NewStmt:
		op := ctr.FreshObjectPointer()
		obj := value.Object(n.Class, op)
		st_ := s.Store.Extend(addr.FrameAddr{FP: s.FP, Reg: n.Reg}, obj)
		return &kont.State{Stmt: n.Next(), FP: s.FP, Store: st_, Kont: s.Kont}, nil

	case *ast.InvokeStmt:
		objVal, err := eval.Eval(reg, s.Store, s.FP, n.Obj)
		if err != nil {
			return nil, err
		}
		if objVal.Kind != value.KindObject {
			return nil, state.Newf(state.TypeMismatch, "invoke target is not an object: %s", objVal.Kind)
		}
		class, ok := reg.Class(objVal.ClassName)
		if !ok {
			return nil, state.Newf(state.NoSuchMember, "unknown class %s", objVal.ClassName)
		}
		method, err := class.LookupMethod(reg, n.Method)
		if err != nil {
			return nil, state.Newf(state.NoSuchMember, "%s", err)
		}
		return applyMethod(reg, ctr, s, method, objVal, n.Reg, n.Args, n.Next())

	case *ast.InvokeSuperStmt:
		thisVal, err := eval.Eval(reg, s.Store, s.FP, ast.NewThisExpr(n.Pos()))
		if err != nil {
			return nil, err
		}
		if thisVal.Kind != value.KindObject {
			return nil, state.Newf(state.TypeMismatch, "$this is not an object: %s", thisVal.Kind)
		}
		class, ok := reg.Class(thisVal.ClassName)
		if !ok {
			return nil, state.Newf(state.NoSuchMember, "unknown class %s", thisVal.ClassName)
		}
		parentName := class.ParentName
		if parentName == "" {
			return nil, state.Newf(state.NoSuchMember, "class %s has no parent for super invocation", class.Name)
		}
		parent, ok := reg.Class(parentName)
		if !ok {
			return nil, state.Newf(state.NoSuchMember, "unknown class %s", parentName)
		}
		method, err := parent.LookupMethod(reg, n.Method)
		if err != nil {
			return nil, state.Newf(state.NoSuchMember, "%s", err)
		}
		return applyMethod(reg, ctr, s, method, thisVal, n.Reg, n.Args, n.Next())

	case *ast.ReturnStmt:
		val, err := eval.Eval(reg, s.Store, s.FP, n.Result)
		if err != nil {
			return nil, err
		}
		return s.Kont.Apply(val, s.Store)

	case *ast.PrintStmt:
		for _, a := range n.Args {
			val, err := eval.Eval(reg, s.Store, s.FP, a)
			if err != nil {
				return nil, err
			}
			if out != nil {
				out.Print(val)
			}
		}
		return &kont.State{Stmt: n.Next(), FP: s.FP, Store: s.Store, Kont: s.Kont}, nil

	case *ast.PushHandlerStmt:
		k := kont.NewHandler(n.CatchClass, n.Label, s.Kont)
		return &kont.State{Stmt: n.Next(), FP: s.FP, Store: s.Store, Kont: k}, nil

	case *ast.PopHandlerStmt:
		k, err := s.Kont.PopHandler()
		if err != nil {
			return nil, err
		}
		return &kont.State{Stmt: n.Next(), FP: s.FP, Store: s.Store, Kont: k}, nil

	case *ast.ThrowStmt:
		excVal, err := eval.Eval(reg, s.Store, s.FP, n.Exc)
		if err != nil {
			return nil, err
		}
		return s.Kont.Handle(reg, excVal, s.FP, s.Store)

	case *ast.MoveExceptionStmt:
		exc, err := eval.Eval(reg, s.Store, s.FP, ast.NewRegisterExpr("$ex", n.Pos()))
		if err != nil {
			return nil, err
		}
		st_ := s.Store.Extend(addr.FrameAddr{FP: s.FP, Reg: n.Reg}, exc)
		return &kont.State{Stmt: n.Next(), FP: s.FP, Store: st_, Kont: s.Kont}, nil

	default:
		return nil, state.Newf(state.KontMisuse, "step: unhandled statement %T", n)
	}
}

// applyMethod binds a fresh activation for method, evaluating args under
// the caller's frame pointer and store, and captures the call site as an
// Assign continuation so that a later ReturnStmt resumes here.
func applyMethod(reg *ast.Registry, ctr *addr.Counter, s *kont.State, method *ast.MethodDef, receiver value.Value, resultReg string, args []ast.Expr, resume ast.Stmt) (*kont.State, error) {
	if len(args) != len(method.Formals) {
		return nil, state.Newf(state.KontMisuse, "method %s expects %d args, got %d", method.Name, len(method.Formals), len(args))
	}

	argVals := make([]value.Value, len(args))
	for i, a := range args {
		v, err := eval.Eval(reg, s.Store, s.FP, a)
		if err != nil {
			return nil, err
		}
		argVals[i] = v
	}

	fp_ := ctr.FreshFramePointer()
	kont_ := kont.NewAssign(resultReg, resume, s.FP, s.Kont)

	st_ := s.Store.Extend(addr.FrameAddr{FP: fp_, Reg: "$this"}, receiver)
	for i, formal := range method.Formals {
		st_ = st_.Extend(addr.FrameAddr{FP: fp_, Reg: formal}, argVals[i])
	}

	return &kont.State{Stmt: method.Body, FP: fp_, Store: st_, Kont: kont_}, nil
}
