// Package runtime bundles the machine's explicit global state — class
// registry, pointer counter, and output sink — into one value threaded
// through eval/step, instead of true package-level globals (spec.md §9
// design note), the same bundling idiom as the teacher's
// internal/runtime.Env for its IO/Net/FS/HTTP services.
package runtime

import (
	"fmt"
	"io"

	"avenir/internal/addr"
	"avenir/internal/ast"
	"avenir/internal/digest"
	"avenir/internal/kont"
	"avenir/internal/state"
	"avenir/internal/step"
	"avenir/internal/store"
	"avenir/internal/trace"
	"avenir/internal/value"
)

// Context is the machine context: everything eval/step need beyond the
// State itself.
type Context struct {
	Registry *ast.Registry
	Counter  *addr.Counter
	Sink     step.Sink

	// Trace, when non-nil, receives one journal row per step (-trace).
	Trace *trace.Journal
}

// NewContext builds a Context around reg, printing to w.
func NewContext(reg *ast.Registry, w io.Writer) *Context {
	return &Context{
		Registry: reg,
		Counter:  addr.NewCounter(),
		Sink:     writerSink{w: w},
	}
}

type writerSink struct{ w io.Writer }

func (s writerSink) Print(v value.Value) {
	fmt.Fprintln(s.w, v.String())
}

// NewMainState builds the initial State for running class's main method,
// per spec.md §4.9: a fresh object and frame pointer, the object bound
// at the frame's "this" offset — note the literal register name "this",
// not "$this"; ThisExpr reads "$this", and this mismatch is a verbatim
// historical quirk (spec.md §9 Open Question), not a bug to fix — and
// Halt as the initial continuation.
func NewMainState(ctx *Context, class *ast.ClassDef) (*kont.State, error) {
	method, err := class.LookupMethod(ctx.Registry, "main")
	if err != nil {
		return nil, state.Newf(state.NoSuchMember, "%s", err)
	}
	if len(method.Formals) != 0 {
		return nil, state.Newf(state.KontMisuse, "main must take no arguments, got %d", len(method.Formals))
	}

	op := ctx.Counter.FreshObjectPointer()
	fp := ctx.Counter.FreshFramePointer()
	obj := value.Object(class.Name, op)

	st := store.Empty().Extend(addr.FrameAddr{FP: fp, Reg: "this"}, obj)

	return &kont.State{Stmt: method.Body, FP: fp, Store: st, Kont: kont.Halt}, nil
}

// Outcome summarizes how a Run ended.
type Outcome struct {
	// Halted is true on normal termination (a return reached Halt).
	Halted bool
	// Returned is the value passed to Halt.Apply; valid only if Halted.
	Returned value.Value
	// Uncaught is the exception value that escaped every handler; valid
	// only if Halted is false.
	Uncaught value.Value
	// Steps counts how many transitions Run performed.
	Steps int
	// Digest fingerprints the terminal (stmt, store-size, result) summary
	// (spec.md §5's bit-identical-determinism property).
	Digest digest.Sum
}

// Run drives s to completion, calling step.Step repeatedly. It returns a
// non-nil error only for a *state.Fault (a bug in the program or the
// machine) or for a failure to write a trace row, as opposed to
// Halted/Uncaught termination, which are reported through Outcome.
func Run(ctx *Context, s *kont.State) (*Outcome, error) {
	steps := 0
	for {
		if ctx.Trace != nil {
			if err := ctx.Trace.Record(stmtID(s), kontDepth(s.Kont), s.Store.Len()); err != nil {
				return nil, err
			}
		}

		next, err := step.Step(ctx.Registry, ctx.Counter, ctx.Sink, s)
		steps++

		if err != nil {
			switch e := err.(type) {
			case *kont.Halted:
				sum := digest.Summary(stmtID(s), s.Store.Len(), e.Value.String())
				return &Outcome{Halted: true, Returned: e.Value, Steps: steps, Digest: sum}, nil
			case *kont.UncaughtException:
				sum := digest.Summary(stmtID(s), s.Store.Len(), e.Value.String())
				return &Outcome{Uncaught: e.Value, Steps: steps, Digest: sum}, nil
			default:
				return nil, err
			}
		}

		s = next
	}
}

// stmtID names a statement by its pointer identity, since statements
// carry no canonical name; used only for -verbose/-trace diagnostics.
func stmtID(s *kont.State) string {
	return fmt.Sprintf("%p", s.Stmt)
}

// kontDepth counts the frames on k's continuation stack.
func kontDepth(k kont.Kont) int {
	depth := 0
	for {
		switch n := k.(type) {
		case *kont.Assign:
			depth++
			k = n.Next
		case *kont.Handler:
			depth++
			k = n.Next
		default:
			return depth
		}
	}
}
