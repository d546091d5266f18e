package ecs

import "math"

// EntityId encodes the slot index (lower 32 bits) and the slot generation (upper 32 bits).
// The generation increments every time a slot is released, so ids held after a delete
// are detected as stale instead of aliasing whatever entity reuses the slot.
type EntityId uint64

// NewEntityId creates an EntityId from a slot index and generation
func NewEntityId(index uint32, generation uint32) EntityId {
	return EntityId(uint64(generation)<<32 | uint64(index))
}

// Index extracts the slot index from the entity ID
func (e EntityId) Index() uint32 {
	return uint32(e & 0xFFFFFFFF)
}

// Generation extracts the slot generation from the entity ID
func (e EntityId) Generation() uint32 {
	return uint32(e >> 32)
}

// IsZero reports whether the id is the zero id, which is never live
func (e EntityId) IsZero() bool {
	return e == 0
}

// entityPool allocates entity slots with generational indices and a free list.
// Slot 0 is reserved so the zero EntityId never refers to a live entity.
type entityPool struct {
	generations []uint32
	alive       []bool
	freeList    []uint32
	live        int
}

func newEntityPool() *entityPool {
	return &entityPool{
		generations: make([]uint32, 1, 1024),
		alive:       make([]bool, 1, 1024),
		freeList:    make([]uint32, 0, 256),
	}
}

func (p *entityPool) create() EntityId {
	if n := len(p.freeList); n > 0 {
		idx := p.freeList[n-1]
		p.freeList = p.freeList[:n-1]
		p.alive[idx] = true
		p.live++
		return NewEntityId(idx, p.generations[idx])
	}

	if uint64(len(p.generations)) > math.MaxUint32 {
		panic("entity slots exhausted")
	}

	idx := uint32(len(p.generations))
	p.generations = append(p.generations, 0)
	p.alive = append(p.alive, true)
	p.live++
	return NewEntityId(idx, 0)
}

func (p *entityPool) isLive(id EntityId) bool {
	idx := id.Index()
	if idx == 0 || int(idx) >= len(p.generations) {
		return false
	}
	return p.alive[idx] && p.generations[idx] == id.Generation()
}

// retire marks the entity not live without freeing its slot, so the slot cannot
// be handed out again while the entity's attributes are still being removed.
// Returns false for ids that are already not live.
func (p *entityPool) retire(id EntityId) bool {
	if !p.isLive(id) {
		return false
	}
	p.alive[id.Index()] = false
	p.live--
	return true
}

// recycle bumps the generation of a retired slot and returns it to the free list.
func (p *entityPool) recycle(id EntityId) {
	idx := id.Index()
	if p.alive[idx] || p.generations[idx] != id.Generation() {
		return
	}
	p.generations[idx]++
	p.freeList = append(p.freeList, idx)
}

func (p *entityPool) count() int {
	return p.live
}

// each yields every live entity in slot order
func (p *entityPool) each(yield func(EntityId) bool) {
	for idx := 1; idx < len(p.generations); idx++ {
		if !p.alive[idx] {
			continue
		}
		if !yield(NewEntityId(uint32(idx), p.generations[idx])) {
			return
		}
	}
}
