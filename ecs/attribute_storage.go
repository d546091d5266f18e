package ecs

import "iter"

const (
	slotBlockSize = 64
)

type slotBlock[T any] struct {
	values [slotBlockSize]T
	owners [slotBlockSize]EntityId
}

// slotStorage stores values of a specific type `T` in fixed-size blocks.
// Blocks are never moved once allocated, so a pointer to a value stays valid
// until its slot is deleted. Deleted slots are recycled through freeSlots.
type slotStorage[T any] struct {
	blocks    []*slotBlock[T]
	freeSlots []int
	nextIndex int
	count     int
}

// append stores the value for the owner entity and returns its slot.
func (s *slotStorage[T]) append(owner EntityId, item T) int {
	var index int
	if n := len(s.freeSlots); n > 0 {
		index = s.freeSlots[n-1]
		s.freeSlots = s.freeSlots[:n-1]
	} else {
		index = s.nextIndex
		s.nextIndex++
		if index/slotBlockSize >= len(s.blocks) {
			s.blocks = append(s.blocks, &slotBlock[T]{})
		}
	}

	block := s.blocks[index/slotBlockSize]
	block.values[index%slotBlockSize] = item
	block.owners[index%slotBlockSize] = owner
	s.count++
	return index
}

// get returns a pointer to the value at the given slot, or nil when the slot is empty.
func (s *slotStorage[T]) get(index int) *T {
	if index < 0 || index >= s.nextIndex {
		return nil
	}
	block := s.blocks[index/slotBlockSize]
	if block.owners[index%slotBlockSize] == 0 {
		return nil
	}
	return &block.values[index%slotBlockSize]
}

// owner returns the entity stored at the slot, zero when empty.
func (s *slotStorage[T]) owner(index int) EntityId {
	if index < 0 || index >= s.nextIndex {
		return 0
	}
	return s.blocks[index/slotBlockSize].owners[index%slotBlockSize]
}

// delete empties a slot and zeroes the value so it does not pin memory.
func (s *slotStorage[T]) delete(index int) {
	if index < 0 || index >= s.nextIndex {
		return
	}
	block := s.blocks[index/slotBlockSize]
	if block.owners[index%slotBlockSize] == 0 {
		return
	}
	var zero T
	block.values[index%slotBlockSize] = zero
	block.owners[index%slotBlockSize] = 0
	s.freeSlots = append(s.freeSlots, index)
	s.count--
}

func (s *slotStorage[T]) len() int {
	return s.count
}

// iter yields occupied slots in slot order together with their owner.
func (s *slotStorage[T]) iter() iter.Seq2[int, EntityId] {
	return func(yield func(int, EntityId) bool) {
		for i := 0; i < s.nextIndex; i++ {
			owner := s.blocks[i/slotBlockSize].owners[i%slotBlockSize]
			if owner == 0 {
				continue
			}
			if !yield(i, owner) {
				return
			}
		}
	}
}

// owners copies the occupied slots' entities in slot order.
func (s *slotStorage[T]) owners() []EntityId {
	ids := make([]EntityId, 0, s.count)
	for _, id := range s.iter() {
		ids = append(ids, id)
	}
	return ids
}
