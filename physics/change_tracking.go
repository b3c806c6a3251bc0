package physics

import (
	"reflect"

	"github.com/plus3/physbridge/ecs"
	"go.uber.org/zap"
)

var rigidBodyType = reflect.TypeFor[RigidBodyType]()

func changedSince[T any](storage *ecs.Storage, e ecs.Entity, since uint32) bool {
	ticks, ok := ecs.TicksOf[T](storage, e)
	return ok && ticks.IsChanged(since)
}

func addedSince[T any](storage *ecs.Storage, e ecs.Entity, since uint32) bool {
	ticks, ok := ecs.TicksOf[T](storage, e)
	return ok && ticks.IsAdded(since)
}

// ComputeChanges ORs into every body's Changes the categories written since the given tick.
// Bodies spawned since then report every category. A user write to the pose, velocity,
// forces or type of a sleeping body wakes it up.
func (s *RigidBodyComponentsSet) ComputeChanges(since uint32) {
	s.access.AcquireExclusive()
	defer s.access.ReleaseExclusive()

	for e, row := range s.change.Iter() {
		if addedSince[RigidBodyChanges](s.storage, e, since) {
			*row.Changes |= RigidBodyChangeAll
			continue
		}

		var flags RigidBodyChanges
		if changedSince[RigidBodyPosition](s.storage, e, since) {
			flags |= RigidBodyChangePosition
		}
		if changedSince[RigidBodyVelocity](s.storage, e, since) {
			flags |= RigidBodyChangeVelocity
		}
		if changedSince[RigidBodyForces](s.storage, e, since) {
			flags |= RigidBodyChangeForces
		}
		if changedSince[RigidBodyType](s.storage, e, since) {
			flags |= RigidBodyChangeType
		}
		if changedSince[RigidBodyColliders](s.storage, e, since) {
			flags |= RigidBodyChangeColliders
		}
		if flags == 0 {
			continue
		}

		wakes := RigidBodyChangePosition | RigidBodyChangeVelocity | RigidBodyChangeForces | RigidBodyChangeType
		if flags&wakes != 0 && row.Activation.Sleeping {
			row.Activation.WakeUp()
			flags |= RigidBodyChangeSleep
		}
		*row.Changes |= flags | RigidBodyChangeModified
	}
}

// UpdateActivation flags Sleep on bodies whose activation was written since the given tick.
func (s *RigidBodyComponentsSet) UpdateActivation(since uint32) {
	s.access.AcquireExclusive()
	defer s.access.ReleaseExclusive()

	for e, row := range s.activation.Iter() {
		if changedSince[RigidBodyActivation](s.storage, e, since) {
			*row.Changes |= RigidBodyChangeSleep | RigidBodyChangeModified
		}
	}
}

// ComputeChanges ORs into every collider's Changes the categories written since the given
// tick. Colliders that lost their ColliderParent since the last ecs.Storage.ClearTrackers
// report a Parent change.
func (s *ColliderComponentsSet) ComputeChanges(since uint32) {
	s.access.AcquireExclusive()
	defer s.access.ReleaseExclusive()

	for e, row := range s.change.Iter() {
		if addedSince[ColliderChanges](s.storage, e, since) {
			*row.Changes |= ColliderChangeAll
			continue
		}

		var flags ColliderChanges
		if changedSince[ColliderPosition](s.storage, e, since) {
			flags |= ColliderChangePosition
		}
		if changedSince[ColliderFlags](s.storage, e, since) {
			flags |= ColliderChangeFlags
		}
		if changedSince[ColliderShape](s.storage, e, since) {
			flags |= ColliderChangeShape
		}
		if changedSince[ColliderType](s.storage, e, since) {
			flags |= ColliderChangeType
		}
		if changedSince[ColliderMaterial](s.storage, e, since) {
			flags |= ColliderChangeMaterial
		}
		if row.Parent != nil && changedSince[ColliderParent](s.storage, e, since) {
			flags |= ColliderChangeParent
		}
		if flags != 0 {
			*row.Changes |= flags | ColliderChangeModified
		}
	}

	var row colliderChange
	for _, e := range ecs.Removed[ColliderParent](s.storage) {
		if s.change.Fill(e, &row) && row.Parent == nil {
			*row.Changes |= ColliderChangeParent | ColliderChangeModified
		}
	}
}

// attachment links colliders into the RigidBodyColliders of their parent body.
type attachment struct {
	pending []ecs.Entity
}

type colliderAttach struct {
	Entity ecs.Entity
	Shape  *ColliderShape
	Parent *ColliderParent `ecs:"optional"`
}

type bodyColliders struct {
	Entity    ecs.Entity
	Colliders *RigidBodyColliders
}

// run attaches colliders spawned or re-parented since the given tick. A collider without a
// ColliderParent that shares its entity with a rigid body is given a parent pointing at that
// body. Colliders that were removed or re-parented are detached from their old body.
func (a *attachment) run(storage *ecs.Storage, colliders *ecs.View[colliderAttach], bodies *ecs.View[bodyColliders], since uint32) {
	removed := ecs.Removed[ColliderShape](storage)
	if len(removed) > 0 {
		for _, body := range bodies.Iter() {
			for _, e := range removed {
				if body.Colliders.Detach(ColliderHandleOf(e)) {
					ecs.SetChanged[RigidBodyColliders](storage, body.Entity)
				}
			}
		}
	}

	a.pending = a.pending[:0]
	for e, row := range colliders.Iter() {
		if addedSince[ColliderShape](storage, e, since) ||
			(row.Parent != nil && changedSince[ColliderParent](storage, e, since)) ||
			(row.Parent == nil && storage.HasComponent(e, rigidBodyType)) {
			a.pending = append(a.pending, e)
		}
	}

	for _, e := range a.pending {
		parent := ecs.ReadComponent[ColliderParent](storage, e)
		if parent == nil {
			if !storage.HasComponent(e, rigidBodyType) {
				continue
			}
			storage.Insert(e, ColliderParent{Handle: RigidBodyHandleOf(e), PosWrtParent: IdentityIsometry()})
			parent = ecs.ReadComponent[ColliderParent](storage, e)
		}

		handle := ColliderHandleOf(e)
		target := parent.Handle.Entity()
		for _, body := range bodies.Iter() {
			if body.Entity != target && body.Colliders.Detach(handle) {
				ecs.SetChanged[RigidBodyColliders](storage, body.Entity)
			}
		}

		attached := ecs.Mutate(storage, target, func(c *RigidBodyColliders) {
			c.Attach(handle)
		})
		if !attached {
			Logger().Debug("collider parent is not a rigid body",
				zap.Uint64("collider", uint64(handle)),
				zap.Uint64("parent", uint64(parent.Handle)))
			continue
		}
		Logger().Debug("collider attached",
			zap.Uint64("collider", uint64(handle)),
			zap.Uint64("body", uint64(parent.Handle)))
	}
}
