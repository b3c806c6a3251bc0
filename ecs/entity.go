package ecs

import "math"

// Entity identifies an entity by slot index (lower 32 bits) and generation (upper 32 bits).
// The generation is bumped every time a slot is reused, so a stale Entity never aliases a
// newer one. Generations start at 1, which keeps the zero Entity permanently invalid.
type Entity uint64

// NewEntity creates an Entity from a slot index and a generation
func NewEntity(index uint32, generation uint32) Entity {
	return Entity(uint64(generation)<<32 | uint64(index))
}

// EntityFromBits reinterprets raw bits as an Entity
func EntityFromBits(bits uint64) Entity {
	return Entity(bits)
}

// Index extracts the slot index
func (e Entity) Index() uint32 {
	return uint32(e & 0xFFFFFFFF)
}

// Generation extracts the generation counter
func (e Entity) Generation() uint32 {
	return uint32(e >> 32)
}

// Bits returns the raw representation
func (e Entity) Bits() uint64 {
	return uint64(e)
}

// entityMeta locates a live entity inside its archetype
type entityMeta struct {
	archetype  *Archetype
	row        uint32
	generation uint32
	alive      bool
}

// entityAllocator hands out slot indices and tracks generations.
type entityAllocator struct {
	metas []entityMeta
	free  []uint32
}

func (a *entityAllocator) alloc() Entity {
	if n := len(a.free); n > 0 {
		index := a.free[n-1]
		a.free = a.free[:n-1]
		meta := &a.metas[index]
		meta.alive = true
		return NewEntity(index, meta.generation)
	}

	if uint64(len(a.metas)) >= math.MaxUint32 {
		panic("entity index space exhausted")
	}
	index := uint32(len(a.metas))
	a.metas = append(a.metas, entityMeta{generation: 1, alive: true})
	return NewEntity(index, 1)
}

// lookup returns the meta for a live entity, or nil if the entity is stale or unknown
func (a *entityAllocator) lookup(e Entity) *entityMeta {
	index := e.Index()
	if int(index) >= len(a.metas) {
		return nil
	}
	meta := &a.metas[index]
	if !meta.alive || meta.generation != e.Generation() {
		return nil
	}
	return meta
}

func (a *entityAllocator) release(e Entity) {
	meta := &a.metas[e.Index()]
	meta.alive = false
	meta.archetype = nil
	meta.row = 0
	meta.generation++
	if meta.generation == 0 {
		meta.generation = 1
	}
	a.free = append(a.free, e.Index())
}

func (a *entityAllocator) liveCount() int {
	return len(a.metas) - len(a.free)
}
