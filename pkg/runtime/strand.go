// Package runtime models the mutable state of a running Rui program: strands
// and the ordered pool that schedules them.
package runtime

import "fmt"

// Strand is a cooperatively scheduled execution context with a program
// counter and a single integer register.
type Strand struct {
	PC    int
	Value int64
	// Fresh marks a strand spawned during the current sweep; it is skipped
	// once and then becomes eligible.
	Fresh bool
}

// NewStrand returns a freshly spawned strand at pc with a zero register.
func NewStrand(pc int) Strand {
	return Strand{PC: pc, Fresh: true}
}

// Seed returns the strand a program starts with.
func Seed() Strand {
	return Strand{}
}

func (s Strand) String() string {
	if s.Fresh {
		return fmt.Sprintf("strand(pc=%d value=%d fresh)", s.PC, s.Value)
	}
	return fmt.Sprintf("strand(pc=%d value=%d)", s.PC, s.Value)
}
