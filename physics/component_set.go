package physics

import (
	"reflect"

	"github.com/plus3/physbridge/ecs"
)

// ComponentSetOption gives point lookups into components that may be absent.
type ComponentSetOption[T any] interface {
	// Get returns a copy of the component. The bool is false when the entity is gone or
	// does not carry T.
	Get(i Index) (T, bool)
}

// ComponentSet adds iteration over every entity carrying T.
type ComponentSet[T any] interface {
	ComponentSetOption[T]
	// SizeHint is an upper bound on the number of entities ForEach visits.
	SizeHint() int
	// ForEach visits every live entity carrying T exactly once, in no particular order.
	// The set may not be written to from inside f.
	ForEach(f func(Index, T))
}

// ComponentSetMut adds point updates. Both are no-ops when T is absent, and both mark the
// component changed in the store.
type ComponentSetMut[T any] interface {
	ComponentSet[T]
	Set(i Index, value T)
	// Mutate applies f in place and reports whether the component existed.
	Mutate(i Index, f func(*T)) bool
}

// cloner is implemented by components holding slices, so copies handed out by a set never
// share backing arrays with the store.
type cloner[T any] interface {
	Clone() T
}

// detacher returns the deep copy function for T, or nil when a plain copy is enough.
func detacher[T any]() func(T) T {
	if _, ok := any((*T)(nil)).(cloner[T]); !ok {
		return nil
	}
	return func(v T) T {
		return any(&v).(cloner[T]).Clone()
	}
}

// readAdapter exposes one field of a view struct V as a ComponentSet[T].
type readAdapter[V, T any] struct {
	view   *ecs.View[V]
	access *ecs.Access
	pick   func(*V) *T
	clone  func(T) T
}

func newReadAdapter[V, T any](view *ecs.View[V], access *ecs.Access, pick func(*V) *T) *readAdapter[V, T] {
	return &readAdapter[V, T]{view: view, access: access, pick: pick, clone: detacher[T]()}
}

func (a *readAdapter[V, T]) copyOf(ptr *T) T {
	if a.clone != nil {
		return a.clone(*ptr)
	}
	return *ptr
}

func (a *readAdapter[V, T]) Get(i Index) (T, bool) {
	a.access.AcquireShared()
	defer a.access.ReleaseShared()

	var zero T
	var row V
	if !a.view.Fill(i.Entity(), &row) {
		return zero, false
	}
	ptr := a.pick(&row)
	if ptr == nil {
		return zero, false
	}
	return a.copyOf(ptr), true
}

func (a *readAdapter[V, T]) SizeHint() int {
	return a.view.Len()
}

func (a *readAdapter[V, T]) ForEach(f func(Index, T)) {
	a.access.AcquireShared()
	defer a.access.ReleaseShared()

	for entity, row := range a.view.Iter() {
		if ptr := a.pick(&row); ptr != nil {
			f(EntityToHandle[Index](entity), a.copyOf(ptr))
		}
	}
}

// mutAdapter reads through view R and writes through view W.
type mutAdapter[R, W, T any] struct {
	*readAdapter[R, T]
	write     *ecs.View[W]
	pickWrite func(*W) *T
}

func newMutAdapter[R, W, T any](read *ecs.View[R], write *ecs.View[W], access *ecs.Access, pickRead func(*R) *T, pickWrite func(*W) *T) *mutAdapter[R, W, T] {
	return &mutAdapter[R, W, T]{
		readAdapter: newReadAdapter(read, access, pickRead),
		write:       write,
		pickWrite:   pickWrite,
	}
}

func (a *mutAdapter[R, W, T]) Set(i Index, value T) {
	a.access.AcquireExclusive()
	defer a.access.ReleaseExclusive()

	if ptr := a.target(i); ptr != nil {
		*ptr = a.copyOf(&value)
		ecs.SetChanged[T](a.write.Storage(), i.Entity())
	}
}

func (a *mutAdapter[R, W, T]) Mutate(i Index, f func(*T)) bool {
	a.access.AcquireExclusive()
	defer a.access.ReleaseExclusive()

	ptr := a.target(i)
	if ptr == nil {
		return false
	}
	f(ptr)
	ecs.SetChanged[T](a.write.Storage(), i.Entity())
	return true
}

func (a *mutAdapter[R, W, T]) target(i Index) *T {
	var row W
	if !a.write.Fill(i.Entity(), &row) {
		return nil
	}
	return a.pickWrite(&row)
}

type single[T any] struct {
	Value *T
}

func pickSingle[T any](row *single[T]) *T { return row.Value }

// QueryComponentSet exposes any single component type as a mutable set. It suits data the
// pipeline does not own, such as user tags read by hooks or joint data.
type QueryComponentSet[T any] struct {
	*mutAdapter[single[T], single[T], T]
}

// NewQueryComponentSet builds a set over every entity carrying T.
func NewQueryComponentSet[T any](storage *ecs.Storage) *QueryComponentSet[T] {
	view := ecs.NewView[single[T]](storage)
	access := ecs.NewAccess(reflect.TypeFor[T]().String())
	return &QueryComponentSet[T]{
		mutAdapter: newMutAdapter(view, view, access, pickSingle[T], pickSingle[T]),
	}
}
