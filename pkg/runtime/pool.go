package runtime

// Pool is the ordered strand collection. Order is insertion order; strands
// appended during a sweep are visited when the sweep cursor reaches them.
//
// Cursors are plain indices owned by the caller. RemoveAt shifts every
// cursor passed to it so that each keeps addressing the same strand.
type Pool struct {
	strands []Strand
}

// NewPool returns a pool holding the given strands in order.
func NewPool(strands ...Strand) *Pool {
	p := &Pool{strands: make([]Strand, 0, len(strands))}
	p.strands = append(p.strands, strands...)
	return p
}

func (p *Pool) Len() int {
	return len(p.strands)
}

func (p *Pool) Empty() bool {
	return len(p.strands) == 0
}

// At returns the strand at idx for in-place mutation. The pointer is only
// valid until the next Append or RemoveAt.
func (p *Pool) At(idx int) *Strand {
	return &p.strands[idx]
}

// Append adds a strand at the tail.
func (p *Pool) Append(s Strand) {
	p.strands = append(p.strands, s)
}

// Spawn appends count fresh strands starting at pc. Non-positive counts
// append nothing.
func (p *Pool) Spawn(pc int, count int64) int {
	if count <= 0 {
		return 0
	}
	for n := int64(0); n < count; n++ {
		p.strands = append(p.strands, NewStrand(pc))
	}
	return int(count)
}

// RemoveAt deletes the strand at idx, preserving the order of the rest, and
// decrements every cursor that pointed past idx. A cursor equal to idx is
// left alone: it now addresses the strand that followed the removed one.
func (p *Pool) RemoveAt(idx int, cursors ...*int) {
	copy(p.strands[idx:], p.strands[idx+1:])
	p.strands[len(p.strands)-1] = Strand{}
	p.strands = p.strands[:len(p.strands)-1]
	for _, cursor := range cursors {
		if cursor != nil && *cursor > idx {
			*cursor--
		}
	}
}

// Snapshot copies the current strands, mainly for inspection and tests.
func (p *Pool) Snapshot() []Strand {
	out := make([]Strand, len(p.strands))
	copy(out, p.strands)
	return out
}

// Values lists every strand's register in pool order.
func (p *Pool) Values() []int64 {
	out := make([]int64, len(p.strands))
	for idx, s := range p.strands {
		out[idx] = s.Value
	}
	return out
}
