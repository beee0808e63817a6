package ioport

import "fmt"

// Scripted is an in-memory port with a fixed input list that records every
// written value.
type Scripted struct {
	inputs  []int64
	outputs []int64
}

func NewScripted(inputs ...int64) *Scripted {
	return &Scripted{inputs: append([]int64(nil), inputs...)}
}

func (s *Scripted) Read() (int64, error) {
	if len(s.inputs) == 0 {
		return 0, fmt.Errorf("scripted port: %w", ErrEndOfInput)
	}
	value := s.inputs[0]
	s.inputs = s.inputs[1:]
	return value, nil
}

func (s *Scripted) Write(value int64) error {
	s.outputs = append(s.outputs, value)
	return nil
}

// Outputs returns a copy of the values written so far.
func (s *Scripted) Outputs() []int64 {
	return append([]int64(nil), s.outputs...)
}

// Remaining reports how many inputs are left.
func (s *Scripted) Remaining() int {
	return len(s.inputs)
}
