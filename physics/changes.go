package physics

// RigidBodyChanges records which categories of a rigid body changed since the pipeline
// last consumed them. Flags accumulate until the pipeline clears them.
type RigidBodyChanges uint32

const (
	RigidBodyChangeModified RigidBodyChanges = 1 << iota
	RigidBodyChangePosition
	RigidBodyChangeVelocity
	RigidBodyChangeForces
	RigidBodyChangeSleep
	RigidBodyChangeColliders
	RigidBodyChangeType

	RigidBodyChangeAll = RigidBodyChangeModified | RigidBodyChangePosition | RigidBodyChangeVelocity |
		RigidBodyChangeForces | RigidBodyChangeSleep | RigidBodyChangeColliders | RigidBodyChangeType
)

// Has reports whether every flag in f is set.
func (c RigidBodyChanges) Has(f RigidBodyChanges) bool {
	return c&f == f
}

// ColliderChanges records which categories of a collider changed since the pipeline last
// consumed them.
type ColliderChanges uint32

const (
	ColliderChangeModified ColliderChanges = 1 << iota
	ColliderChangeParent
	ColliderChangePosition
	ColliderChangeFlags
	ColliderChangeShape
	ColliderChangeType
	ColliderChangeMaterial

	ColliderChangeAll = ColliderChangeModified | ColliderChangeParent | ColliderChangePosition |
		ColliderChangeFlags | ColliderChangeShape | ColliderChangeType | ColliderChangeMaterial
)

// Has reports whether every flag in f is set.
func (c ColliderChanges) Has(f ColliderChanges) bool {
	return c&f == f
}
