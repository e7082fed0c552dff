// Package state defines the faults a step can raise. The machine's
// control state itself (kont.State) lives in package kont.
package state

import "fmt"

// FaultKind classifies a non-recoverable interpreter fault: a bug in the
// program being run, or in the machine itself, as opposed to an
// UncaughtException, which is a legitimate terminal outcome.
type FaultKind int

const (
	UnresolvedLabel FaultKind = iota
	UnboundAddr
	TypeMismatch
	NoSuchMember
	KontMisuse
)

func (k FaultKind) String() string {
	switch k {
	case UnresolvedLabel:
		return "UnresolvedLabel"
	case UnboundAddr:
		return "UnboundAddr"
	case TypeMismatch:
		return "TypeMismatch"
	case NoSuchMember:
		return "NoSuchMember"
	case KontMisuse:
		return "KontMisuse"
	default:
		return fmt.Sprintf("FaultKind(%d)", int(k))
	}
}

// Fault is a typed, non-recovered error raised by a step. It always
// bubbles out of the machine; nothing in the program can catch it, which
// is what separates it from an UncaughtException (see Halted).
type Fault struct {
	Kind FaultKind
	Msg  string
}

func (f *Fault) Error() string {
	return fmt.Sprintf("%s: %s", f.Kind, f.Msg)
}

// Newf builds a Fault of the given kind with a formatted message.
func Newf(kind FaultKind, format string, args ...interface{}) *Fault {
	return &Fault{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}
