package fireworks

// Pool is a fixed-capacity particle pool with an explicit free list.
// Allocation pops a slot index from the free stack and reclaim pushes it
// back, both O(1). The active list is a compact index view of the slots in
// use; dead slots are swap-removed during iteration. The pool never grows:
// Alloc returns nil once capacity is exhausted and callers degrade silently.
type Pool struct {
	particles []Particle
	free      []int // stack of available slot indices
	active    []int // compact list of in-use slot indices
}

// NewPool creates a pool with the given fixed capacity.
func NewPool(capacity int) *Pool {
	if capacity <= 0 {
		capacity = 1
	}

	p := &Pool{
		particles: make([]Particle, capacity),
		free:      make([]int, 0, capacity),
		active:    make([]int, 0, capacity),
	}
	for i := capacity - 1; i >= 0; i-- {
		p.particles[i].slot = i
		p.free = append(p.free, i)
	}
	return p
}

// Capacity returns the fixed pool size.
func (p *Pool) Capacity() int {
	return len(p.particles)
}

// ActiveCount returns the number of slots currently in use.
func (p *Pool) ActiveCount() int {
	return len(p.active)
}

// Alloc takes a slot from the free list and returns its particle, zeroed
// except for its slot index. Returns nil when the pool is exhausted.
func (p *Pool) Alloc() *Particle {
	if len(p.free) == 0 {
		return nil
	}

	slot := p.free[len(p.free)-1]
	p.free = p.free[:len(p.free)-1]
	p.active = append(p.active, slot)

	pt := &p.particles[slot]
	*pt = Particle{slot: slot}
	return pt
}

// activeAt returns the particle at position i of the active list.
func (p *Pool) activeAt(i int) *Particle {
	return &p.particles[p.active[i]]
}

// releaseAt reclaims the particle at position i of the active list,
// swap-removing it so iteration can continue at the same index.
func (p *Pool) releaseAt(i int) {
	slot := p.active[i]
	p.particles[slot].Phase = PhaseInactive

	last := len(p.active) - 1
	p.active[i] = p.active[last]
	p.active = p.active[:last]
	p.free = append(p.free, slot)
}

// ReleaseAll reclaims every active slot at once.
func (p *Pool) ReleaseAll() {
	for _, slot := range p.active {
		p.particles[slot].Phase = PhaseInactive
		p.free = append(p.free, slot)
	}
	p.active = p.active[:0]
}
