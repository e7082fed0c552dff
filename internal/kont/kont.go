// Package kont implements the machine's continuation stack: the "K" in
// CESK. A continuation is either the halt continuation, a pending
// register assignment (procedure return), or an installed exception
// handler. Continuations compose the way call frames and try/catch
// blocks do in a conventional stack machine, except each one is an
// ordinary immutable Go value rather than a mutable stack slot.
package kont

import (
	"fmt"

	"avenir/internal/addr"
	"avenir/internal/ast"
	"avenir/internal/state"
	"avenir/internal/store"
	"avenir/internal/value"
)

// State is the machine's full configuration: the control statement, the
// active frame pointer, the store, and the continuation stack.
type State struct {
	Stmt  ast.Stmt
	FP    addr.FramePointer
	Store *store.Store
	Kont  Kont
}

// Halted signals that the computation ran to completion: a plain return
// reached the bottom of the continuation stack. It is not a Fault — it
// is the expected way a program ends.
type Halted struct {
	Value value.Value
}

func (h *Halted) Error() string {
	return fmt.Sprintf("terminated: %s", h.Value)
}

// UncaughtException signals that a thrown exception reached the bottom
// of the continuation stack without being matched by any handler. This
// is a legitimate, observable outcome of running a program, distinct
// from a Fault, which indicates a bug in the program or the machine.
type UncaughtException struct {
	Value value.Value
}

func (u *UncaughtException) Error() string {
	return fmt.Sprintf("uncaught exception: %s", u.Value)
}

// Kont is a continuation: the rest of the computation, represented as
// data rather than as a native call stack.
type Kont interface {
	// Apply resumes the computation with returnValue as the result of
	// whatever procedure call (or statement) captured this
	// continuation.
	Apply(returnValue value.Value, st *store.Store) (*State, error)

	// Handle searches this continuation (and everything beneath it) for
	// an exception handler whose catch class matches exc, unwinding any
	// return points in the way. fp is the frame pointer active at the
	// throw site; each Kont that passes the search further down is
	// responsible for supplying the frame pointer under which its own
	// Apply would have resumed, per its own semantics.
	Handle(reg *ast.Registry, exc value.Value, fp addr.FramePointer, st *store.Store) (*State, error)

	// PopHandler returns the continuation beneath the top-most handler.
	// It is a Fault (KontMisuse) to pop when the top of the stack is not
	// a Handler.
	PopHandler() (Kont, error)
}

// halt is the unique terminal continuation. Every continuation chain
// bottoms out at Halt.
type halt struct{}

// Halt is the terminal continuation: applying or handling through it
// ends the run.
var Halt Kont = halt{}

func (halt) Apply(returnValue value.Value, st *store.Store) (*State, error) {
	return nil, &Halted{Value: returnValue}
}

func (halt) Handle(reg *ast.Registry, exc value.Value, fp addr.FramePointer, st *store.Store) (*State, error) {
	return nil, &UncaughtException{Value: exc}
}

func (halt) PopHandler() (Kont, error) {
	return nil, state.Newf(state.KontMisuse, "popHandler: no handler installed")
}

// Assign awaits a return value to store into Register, then resumes at
// Resume under FP with Next as the continuation. It is installed by a
// method invocation to capture the call site.
type Assign struct {
	Register string
	Resume   ast.Stmt
	FP       addr.FramePointer
	Next     Kont
}

func NewAssign(register string, resume ast.Stmt, fp addr.FramePointer, next Kont) *Assign {
	return &Assign{Register: register, Resume: resume, FP: fp, Next: next}
}

func (a *Assign) Apply(returnValue value.Value, st *store.Store) (*State, error) {
	st_ := st.Extend(addr.FrameAddr{FP: a.FP, Reg: a.Register}, returnValue)
	return &State{Stmt: a.Resume, FP: a.FP, Store: st_, Kont: a.Next}, nil
}

// Handle passes the exception through to Next, but under a.FP — the
// frame pointer captured at the call site this Assign represents, not
// the frame pointer active where the exception was thrown. This is what
// lets a handler resume in the same activation that installed it even
// though the exception propagated up through intervening calls.
func (a *Assign) Handle(reg *ast.Registry, exc value.Value, fp addr.FramePointer, st *store.Store) (*State, error) {
	return a.Next.Handle(reg, exc, a.FP, st)
}

func (a *Assign) PopHandler() (Kont, error) {
	return nil, state.Newf(state.KontMisuse, "popHandler: topmost continuation is a return point, not a handler")
}

// Handler is an installed exception handler: catch exceptions that are
// instances of CatchClass by resuming at Label, with the propagated
// frame pointer, under Next.
type Handler struct {
	CatchClass string
	Label      string
	Next       Kont
}

func NewHandler(catchClass, label string, next Kont) *Handler {
	return &Handler{CatchClass: catchClass, Label: label, Next: next}
}

// Apply is transparent: a handler frame never intercepts a normal
// return, only a thrown exception.
func (h *Handler) Apply(returnValue value.Value, st *store.Store) (*State, error) {
	return h.Next.Apply(returnValue, st)
}

func (h *Handler) Handle(reg *ast.Registry, exc value.Value, fp addr.FramePointer, st *store.Store) (*State, error) {
	if exc.Kind != value.KindObject {
		return nil, state.Newf(state.TypeMismatch, "thrown value is not an object: %s", exc.Kind)
	}

	class, ok := reg.Class(exc.ClassName)
	if !ok {
		return nil, state.Newf(state.NoSuchMember, "unknown class %s", exc.ClassName)
	}

	if !class.IsInstanceOf(reg, h.CatchClass) {
		return h.Next.Handle(reg, exc, fp, st)
	}

	target, err := reg.Label(h.Label)
	if err != nil {
		return nil, state.Newf(state.UnresolvedLabel, "%s", err)
	}

	st_ := st.Extend(addr.FrameAddr{FP: fp, Reg: "$ex"}, exc)
	return &State{Stmt: target, FP: fp, Store: st_, Kont: h.Next}, nil
}

func (h *Handler) PopHandler() (Kont, error) {
	return h.Next, nil
}
