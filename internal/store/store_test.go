package store

import (
	"testing"

	"avenir/internal/addr"
	"avenir/internal/value"
)

func TestExtendPreservesPriorBindings(t *testing.T) {
	c := addr.NewCounter()
	fp := c.FreshFramePointer()
	a := addr.FrameAddr{FP: fp, Reg: "$a"}
	b := addr.FrameAddr{FP: fp, Reg: "$b"}

	s0 := Empty()
	s1 := s0.Extend(a, value.Int(1))
	s2 := s1.Extend(b, value.Int(2))

	// spec.md §8 invariant 3: extension preserves all prior bindings
	// except the extended key, and the prior Store is untouched.
	if _, ok := s0.Lookup(a); ok {
		t.Fatal("expected s0 to remain empty")
	}
	if v, ok := s1.Lookup(a); !ok || v.Int != 1 {
		t.Fatalf("expected s1[a] = 1, got %v, %v", v, ok)
	}
	if _, ok := s1.Lookup(b); ok {
		t.Fatal("expected s1 to not see s2's extension")
	}
	if v, ok := s2.Lookup(a); !ok || v.Int != 1 {
		t.Fatalf("expected s2 to still see a = 1, got %v, %v", v, ok)
	}
	if v, ok := s2.Lookup(b); !ok || v.Int != 2 {
		t.Fatalf("expected s2[b] = 2, got %v, %v", v, ok)
	}
}

func TestExtendShadowsPriorValueAtSameAddress(t *testing.T) {
	c := addr.NewCounter()
	fp := c.FreshFramePointer()
	a := addr.FrameAddr{FP: fp, Reg: "$a"}

	s0 := Empty().Extend(a, value.Int(1))
	s1 := s0.Extend(a, value.Int(2))

	if v, _ := s0.Lookup(a); v.Int != 1 {
		t.Fatalf("expected s0[a] to remain 1, got %d", v.Int)
	}
	if v, _ := s1.Lookup(a); v.Int != 2 {
		t.Fatalf("expected s1[a] = 2, got %d", v.Int)
	}
}

func TestLookupUnboundReportsFalse(t *testing.T) {
	c := addr.NewCounter()
	fp := c.FreshFramePointer()
	if _, ok := Empty().Lookup(addr.FrameAddr{FP: fp, Reg: "$missing"}); ok {
		t.Fatal("expected an unbound lookup to report ok=false")
	}
}

func TestAddrsReturnsDeterministicOrder(t *testing.T) {
	c := addr.NewCounter()
	fp := c.FreshFramePointer()

	s := Empty().
		Extend(addr.FrameAddr{FP: fp, Reg: "$z"}, value.Int(1)).
		Extend(addr.FrameAddr{FP: fp, Reg: "$a"}, value.Int(2))

	addrs := s.Addrs()
	if len(addrs) != 2 {
		t.Fatalf("expected 2 addresses, got %d", len(addrs))
	}
	if addrs[0].String() != "fp1.$a" {
		t.Fatalf("expected $a to sort first, got %s", addrs[0])
	}
}

func TestLen(t *testing.T) {
	c := addr.NewCounter()
	fp := c.FreshFramePointer()
	s := Empty()
	if s.Len() != 0 {
		t.Fatalf("expected empty store to have len 0, got %d", s.Len())
	}
	s = s.Extend(addr.FrameAddr{FP: fp, Reg: "$a"}, value.Int(1))
	if s.Len() != 1 {
		t.Fatalf("expected len 1 after one extend, got %d", s.Len())
	}
}
