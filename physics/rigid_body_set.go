package physics

import (
	"github.com/plus3/physbridge/ecs"
)

// rigidBodyRead is everything the pipeline reads during setup.
type rigidBodyRead struct {
	Position   *RigidBodyPosition
	Velocity   *RigidBodyVelocity
	MassProps  *RigidBodyMassProps
	Ids        *RigidBodyIds
	Forces     *RigidBodyForces
	Activation *RigidBodyActivation
	Changes    *RigidBodyChanges
	Ccd        *RigidBodyCcd
	Colliders  *RigidBodyColliders
	Damping    *RigidBodyDamping
	Dominance  *RigidBodyDominance
	Type       *RigidBodyType
}

// rigidBodyWrite is exactly what the pipeline writes back.
type rigidBodyWrite struct {
	Position   *RigidBodyPosition
	Velocity   *RigidBodyVelocity
	MassProps  *RigidBodyMassProps
	Ids        *RigidBodyIds
	Forces     *RigidBodyForces
	Activation *RigidBodyActivation
	Changes    *RigidBodyChanges
	Ccd        *RigidBodyCcd
	Colliders  *RigidBodyColliders
}

// rigidBodyChange holds the flags and activation the change pass writes. The remaining fields
// only restrict matching to complete bodies; their change ticks are what the pass inspects.
type rigidBodyChange struct {
	Entity     ecs.Entity
	Changes    *RigidBodyChanges
	Activation *RigidBodyActivation
	Position   *RigidBodyPosition
	Velocity   *RigidBodyVelocity
	Forces     *RigidBodyForces
	Type       *RigidBodyType
	Colliders  *RigidBodyColliders
}

type rigidBodyActivation struct {
	Entity     ecs.Entity
	Changes    *RigidBodyChanges
	Activation *RigidBodyActivation
}

// RigidBodyComponentsSet is the pipeline's view of every rigid body in a storage.
// All of its adapters share one Access, so a write from inside any ForEach panics.
type RigidBodyComponentsSet struct {
	storage    *ecs.Storage
	access     *ecs.Access
	read       *ecs.View[rigidBodyRead]
	write      *ecs.View[rigidBodyWrite]
	change     *ecs.View[rigidBodyChange]
	activation *ecs.View[rigidBodyActivation]

	Position   ComponentSetMut[RigidBodyPosition]
	Velocity   ComponentSetMut[RigidBodyVelocity]
	MassProps  ComponentSetMut[RigidBodyMassProps]
	Ids        ComponentSetMut[RigidBodyIds]
	Forces     ComponentSetMut[RigidBodyForces]
	Activation ComponentSetMut[RigidBodyActivation]
	Changes    ComponentSetMut[RigidBodyChanges]
	Ccd        ComponentSetMut[RigidBodyCcd]
	Colliders  ComponentSetMut[RigidBodyColliders]
	Damping    ComponentSet[RigidBodyDamping]
	Dominance  ComponentSet[RigidBodyDominance]
	Type       ComponentSet[RigidBodyType]
}

// NewRigidBodyComponentsSet builds the views and adapters once; they are reused every step.
func NewRigidBodyComponentsSet(storage *ecs.Storage) *RigidBodyComponentsSet {
	s := &RigidBodyComponentsSet{
		storage:    storage,
		access:     ecs.NewAccess("rigid bodies"),
		read:       ecs.NewView[rigidBodyRead](storage),
		write:      ecs.NewView[rigidBodyWrite](storage),
		change:     ecs.NewView[rigidBodyChange](storage),
		activation: ecs.NewView[rigidBodyActivation](storage),
	}

	s.Position = newMutAdapter(s.read, s.write, s.access,
		func(r *rigidBodyRead) *RigidBodyPosition { return r.Position },
		func(w *rigidBodyWrite) *RigidBodyPosition { return w.Position })
	s.Velocity = newMutAdapter(s.read, s.write, s.access,
		func(r *rigidBodyRead) *RigidBodyVelocity { return r.Velocity },
		func(w *rigidBodyWrite) *RigidBodyVelocity { return w.Velocity })
	s.MassProps = newMutAdapter(s.read, s.write, s.access,
		func(r *rigidBodyRead) *RigidBodyMassProps { return r.MassProps },
		func(w *rigidBodyWrite) *RigidBodyMassProps { return w.MassProps })
	s.Ids = newMutAdapter(s.read, s.write, s.access,
		func(r *rigidBodyRead) *RigidBodyIds { return r.Ids },
		func(w *rigidBodyWrite) *RigidBodyIds { return w.Ids })
	s.Forces = newMutAdapter(s.read, s.write, s.access,
		func(r *rigidBodyRead) *RigidBodyForces { return r.Forces },
		func(w *rigidBodyWrite) *RigidBodyForces { return w.Forces })
	s.Activation = newMutAdapter(s.read, s.write, s.access,
		func(r *rigidBodyRead) *RigidBodyActivation { return r.Activation },
		func(w *rigidBodyWrite) *RigidBodyActivation { return w.Activation })
	s.Changes = newMutAdapter(s.read, s.write, s.access,
		func(r *rigidBodyRead) *RigidBodyChanges { return r.Changes },
		func(w *rigidBodyWrite) *RigidBodyChanges { return w.Changes })
	s.Ccd = newMutAdapter(s.read, s.write, s.access,
		func(r *rigidBodyRead) *RigidBodyCcd { return r.Ccd },
		func(w *rigidBodyWrite) *RigidBodyCcd { return w.Ccd })
	s.Colliders = newMutAdapter(s.read, s.write, s.access,
		func(r *rigidBodyRead) *RigidBodyColliders { return r.Colliders },
		func(w *rigidBodyWrite) *RigidBodyColliders { return w.Colliders })

	s.Damping = newReadAdapter(s.read, s.access,
		func(r *rigidBodyRead) *RigidBodyDamping { return r.Damping })
	s.Dominance = newReadAdapter(s.read, s.access,
		func(r *rigidBodyRead) *RigidBodyDominance { return r.Dominance })
	s.Type = newReadAdapter(s.read, s.access,
		func(r *rigidBodyRead) *RigidBodyType { return r.Type })

	return s
}

// Storage returns the store the set reads from.
func (s *RigidBodyComponentsSet) Storage() *ecs.Storage {
	return s.storage
}

// Contains reports whether h is a live, complete rigid body.
func (s *RigidBodyComponentsSet) Contains(h RigidBodyHandle) bool {
	s.access.AcquireShared()
	defer s.access.ReleaseShared()
	return s.read.Has(h.Entity())
}

// Len returns the number of rigid bodies.
func (s *RigidBodyComponentsSet) Len() int {
	return s.read.Len()
}
