// Package digest fingerprints loaded source text and terminal machine
// states with blake2b, so -verbose output and tests can pin the
// bit-identical-determinism property of spec.md §5 without diffing
// entire stores.
package digest

import (
	"fmt"

	"golang.org/x/crypto/blake2b"
)

// Sum is a 256-bit blake2b digest, printed as lowercase hex.
type Sum [32]byte

func (s Sum) String() string { return fmt.Sprintf("%x", s[:]) }

// Source fingerprints the concatenated text of a loaded program's files,
// in load order, so two runs over identical sources always agree.
func Source(contents ...[]byte) Sum {
	h, _ := blake2b.New256(nil)
	for _, c := range contents {
		h.Write(c)
		h.Write([]byte{0})
	}
	var s Sum
	copy(s[:], h.Sum(nil))
	return s
}

// Summary fingerprints the terminal machine state a run produced: the
// statement it stopped at (by its %p-style identity string, since
// statements have no canonical name), the number of live store bindings,
// and the stringified result or exception. Two runs of a deterministic
// program with identical input classes must agree.
func Summary(stmtID string, storeLen int, result string) Sum {
	h, _ := blake2b.New256(nil)
	fmt.Fprintf(h, "%s\n%d\n%s", stmtID, storeLen, result)
	var s Sum
	copy(s[:], h.Sum(nil))
	return s
}
