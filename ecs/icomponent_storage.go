package ecs

import "iter"

// iComponentStorage is an interface for a type-erased component storage.
type iComponentStorage interface {
	Append(item any, ticks ComponentTicks) int
	Delete(index int)
	Get(index int) any
	Set(index int, item any) bool
	Ticks(index int) *ComponentTicks
	Has(index int) bool
	Compact() map[int]int
	Iter() iter.Seq[int]
}
