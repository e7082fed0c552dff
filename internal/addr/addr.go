// Package addr implements the machine's address algebra: frame pointers,
// object pointers, and the two addressable locations they key into the
// store, register slots and object fields.
package addr

import "fmt"

// FramePointer names one activation of a method body. It is minted fresh
// on every invocation so that recursive and re-entrant calls never alias
// each other's registers.
type FramePointer struct {
	id uint64
}

// ObjectPointer names one allocated object. Minted fresh on every `new`.
type ObjectPointer struct {
	id uint64
}

func (fp FramePointer) String() string { return fmt.Sprintf("fp%d", fp.id) }
func (op ObjectPointer) String() string { return fmt.Sprintf("obj%d", op.id) }

// Counter mints fresh pointers from one shared monotonic sequence, so
// that frame pointers and object pointers never collide and their
// relative minting order is recoverable from the numeric id alone.
//
// A machine context owns exactly one Counter; it is never a package-level
// global, per the driver's requirement that all mutable machine state
// live in an explicit, constructible value.
type Counter struct {
	next uint64
}

// NewCounter returns a counter starting at 1; 0 is reserved so the zero
// value of FramePointer/ObjectPointer is recognizably "no pointer".
func NewCounter() *Counter {
	return &Counter{next: 1}
}

func (c *Counter) FreshFramePointer() FramePointer {
	id := c.next
	c.next++
	return FramePointer{id: id}
}

func (c *Counter) FreshObjectPointer() ObjectPointer {
	id := c.next
	c.next++
	return ObjectPointer{id: id}
}

// FrameAddr addresses a register within one activation.
type FrameAddr struct {
	FP  FramePointer
	Reg string
}

func (a FrameAddr) String() string { return fmt.Sprintf("%s.%s", a.FP, a.Reg) }

// FieldAddr addresses a field within one allocated object.
type FieldAddr struct {
	Obj   ObjectPointer
	Field string
}

func (a FieldAddr) String() string { return fmt.Sprintf("%s.%s", a.Obj, a.Field) }

// Addr is either a FrameAddr or a FieldAddr. The store is keyed on Addr.
type Addr interface {
	isAddr()
	// order reports this address's sort rank relative to other, for the
	// deterministic total order the store relies on when it needs to
	// enumerate its bindings (journal replay, -verbose dumps).
	Less(other Addr) bool
	String() string
}

func (FrameAddr) isAddr() {}
func (FieldAddr) isAddr() {}

// tag gives FrameAddr a lower sort rank than FieldAddr, so the order is
// total across the two kinds and not just within each.
func tag(a Addr) int {
	switch a.(type) {
	case FrameAddr:
		return 0
	case FieldAddr:
		return 1
	default:
		return 2
	}
}

// Less orders addresses first by kind (frame addresses before field
// addresses), then by pointer id, then by offset name. It exists so a
// Store can produce a deterministic enumeration of its bindings even
// though Go maps do not iterate in insertion order.
func (a FrameAddr) Less(other Addr) bool {
	if tag(a) != tag(other) {
		return tag(a) < tag(other)
	}
	o := other.(FrameAddr)
	if a.FP.id != o.FP.id {
		return a.FP.id < o.FP.id
	}
	return a.Reg < o.Reg
}

func (a FieldAddr) Less(other Addr) bool {
	if tag(a) != tag(other) {
		return tag(a) < tag(other)
	}
	o := other.(FieldAddr)
	if a.Obj.id != o.Obj.id {
		return a.Obj.id < o.Obj.id
	}
	return a.Field < o.Field
}
