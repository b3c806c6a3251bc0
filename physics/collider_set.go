package physics

import (
	"github.com/plus3/physbridge/ecs"
)

type colliderRead struct {
	Changes        *ColliderChanges
	Position       *ColliderPosition
	BroadPhaseData *ColliderBroadPhaseData
	Shape          *ColliderShape
	Type           *ColliderType
	Material       *ColliderMaterial
	Flags          *ColliderFlags
	MassProps      *ColliderMassProps
	Parent         *ColliderParent `ecs:"optional"`
}

type colliderWrite struct {
	Changes        *ColliderChanges
	Position       *ColliderPosition
	BroadPhaseData *ColliderBroadPhaseData
}

type colliderChange struct {
	Entity   ecs.Entity
	Changes  *ColliderChanges
	Position *ColliderPosition
	Flags    *ColliderFlags
	Shape    *ColliderShape
	Type     *ColliderType
	Material *ColliderMaterial
	Parent   *ColliderParent `ecs:"optional"`
}

// ColliderComponentsSet is the pipeline's view of every collider in a storage.
type ColliderComponentsSet struct {
	storage *ecs.Storage
	access  *ecs.Access
	read    *ecs.View[colliderRead]
	write   *ecs.View[colliderWrite]
	change  *ecs.View[colliderChange]

	Changes        ComponentSetMut[ColliderChanges]
	Position       ComponentSetMut[ColliderPosition]
	BroadPhaseData ComponentSetMut[ColliderBroadPhaseData]
	Shape          ComponentSet[ColliderShape]
	Type           ComponentSet[ColliderType]
	Material       ComponentSet[ColliderMaterial]
	Flags          ComponentSet[ColliderFlags]
	MassProps      ComponentSet[ColliderMassProps]
	Parent         ComponentSetOption[ColliderParent]
}

// NewColliderComponentsSet builds the collider set over every complete collider in storage.
func NewColliderComponentsSet(storage *ecs.Storage) *ColliderComponentsSet {
	s := &ColliderComponentsSet{
		storage: storage,
		access:  ecs.NewAccess("colliders"),
		read:    ecs.NewView[colliderRead](storage),
		write:   ecs.NewView[colliderWrite](storage),
		change:  ecs.NewView[colliderChange](storage),
	}

	s.Changes = newMutAdapter(s.read, s.write, s.access,
		func(r *colliderRead) *ColliderChanges { return r.Changes },
		func(w *colliderWrite) *ColliderChanges { return w.Changes })
	s.Position = newMutAdapter(s.read, s.write, s.access,
		func(r *colliderRead) *ColliderPosition { return r.Position },
		func(w *colliderWrite) *ColliderPosition { return w.Position })
	s.BroadPhaseData = newMutAdapter(s.read, s.write, s.access,
		func(r *colliderRead) *ColliderBroadPhaseData { return r.BroadPhaseData },
		func(w *colliderWrite) *ColliderBroadPhaseData { return w.BroadPhaseData })

	s.Shape = newReadAdapter(s.read, s.access,
		func(r *colliderRead) *ColliderShape { return r.Shape })
	s.Type = newReadAdapter(s.read, s.access,
		func(r *colliderRead) *ColliderType { return r.Type })
	s.Material = newReadAdapter(s.read, s.access,
		func(r *colliderRead) *ColliderMaterial { return r.Material })
	s.Flags = newReadAdapter(s.read, s.access,
		func(r *colliderRead) *ColliderFlags { return r.Flags })
	s.MassProps = newReadAdapter(s.read, s.access,
		func(r *colliderRead) *ColliderMassProps { return r.MassProps })
	s.Parent = newReadAdapter(s.read, s.access,
		func(r *colliderRead) *ColliderParent { return r.Parent })

	return s
}

// Storage returns the store the set reads and writes.
func (s *ColliderComponentsSet) Storage() *ecs.Storage {
	return s.storage
}

// ParentOf returns the body a collider is attached to, or InvalidRigidBodyHandle.
func (s *ColliderComponentsSet) ParentOf(h ColliderHandle) RigidBodyHandle {
	if parent, ok := s.Parent.Get(h.Index()); ok {
		return parent.Handle
	}
	return InvalidRigidBodyHandle
}

// Len returns the number of complete colliders.
func (s *ColliderComponentsSet) Len() int {
	return s.read.Len()
}

type queryCollider struct {
	Position *ColliderPosition
	Shape    *ColliderShape
	Flags    *ColliderFlags
}

// QueryPipelineColliderComponentsSet is the read-only collider subset used by scene queries.
type QueryPipelineColliderComponentsSet struct {
	view *ecs.View[queryCollider]

	Position ComponentSet[ColliderPosition]
	Shape    ComponentSet[ColliderShape]
	Flags    ComponentSet[ColliderFlags]
}

// NewQueryPipelineColliderComponentsSet builds the scene query set over storage.
func NewQueryPipelineColliderComponentsSet(storage *ecs.Storage) *QueryPipelineColliderComponentsSet {
	view := ecs.NewView[queryCollider](storage)
	access := ecs.NewAccess("query pipeline colliders")
	return &QueryPipelineColliderComponentsSet{
		view: view,
		Position: newReadAdapter(view, access,
			func(r *queryCollider) *ColliderPosition { return r.Position }),
		Shape: newReadAdapter(view, access,
			func(r *queryCollider) *ColliderShape { return r.Shape }),
		Flags: newReadAdapter(view, access,
			func(r *queryCollider) *ColliderFlags { return r.Flags }),
	}
}

// Len returns the number of queryable colliders.
func (s *QueryPipelineColliderComponentsSet) Len() int {
	return s.view.Len()
}
