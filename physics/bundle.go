package physics

// RigidBodyBundle is every component a rigid body needs. Spawn or Insert it as a whole.
type RigidBodyBundle struct {
	Type       RigidBodyType
	Position   RigidBodyPosition
	Velocity   RigidBodyVelocity
	MassProps  RigidBodyMassProps
	Forces     RigidBodyForces
	Activation RigidBodyActivation
	Changes    RigidBodyChanges
	Ccd        RigidBodyCcd
	Ids        RigidBodyIds
	Colliders  RigidBodyColliders
	Damping    RigidBodyDamping
	Dominance  RigidBodyDominance
}

// DefaultRigidBodyBundle returns an awake dynamic body at the origin.
func DefaultRigidBodyBundle() RigidBodyBundle {
	return RigidBodyBundle{
		Type: Dynamic,
		Position: RigidBodyPosition{
			Position:     IdentityIsometry(),
			NextPosition: IdentityIsometry(),
		},
		Forces:     RigidBodyForces{GravityScale: 1},
		Activation: DefaultActivation(),
		Changes:    RigidBodyChangeAll,
		Ids:        DefaultRigidBodyIds(),
	}
}

// At returns a copy of the bundle placed at pose.
func (b RigidBodyBundle) At(pose Isometry) RigidBodyBundle {
	b.Position = RigidBodyPosition{Position: pose, NextPosition: pose}
	return b
}

// WithType returns a copy of the bundle with the given body type.
func (b RigidBodyBundle) WithType(t RigidBodyType) RigidBodyBundle {
	b.Type = t
	return b
}

func (b RigidBodyBundle) Components() []any {
	return []any{
		b.Type, b.Position, b.Velocity, b.MassProps, b.Forces, b.Activation,
		b.Changes, b.Ccd, b.Ids, b.Colliders, b.Damping, b.Dominance,
	}
}

// ColliderBundle is every component a collider needs. Parent is optional; a collider spawned
// on a rigid-body entity without one is attached to that body.
type ColliderBundle struct {
	Type           ColliderType
	Shape          ColliderShape
	Position       ColliderPosition
	Material       ColliderMaterial
	Flags          ColliderFlags
	MassProps      ColliderMassProps
	Changes        ColliderChanges
	BroadPhaseData ColliderBroadPhaseData
	Parent         *ColliderParent
}

// DefaultColliderBundle returns a solid half-unit ball with density 1.
func DefaultColliderBundle() ColliderBundle {
	return ColliderBundle{
		Type:           Solid,
		Shape:          Ball(0.5),
		Position:       ColliderPosition{Isometry: IdentityIsometry()},
		Material:       ColliderMaterial{Friction: DefaultFriction},
		Flags:          ColliderFlags{CollisionGroups: AllGroups},
		MassProps:      ColliderMassProps{Density: 1},
		Changes:        ColliderChangeAll,
		BroadPhaseData: ColliderBroadPhaseData{ProxyIndex: noSlot},
	}
}

// WithShape returns a copy of the bundle using shape.
func (b ColliderBundle) WithShape(shape ColliderShape) ColliderBundle {
	b.Shape = shape
	return b
}

// AttachedTo returns a copy of the bundle parented to body at the relative pose.
func (b ColliderBundle) AttachedTo(body RigidBodyHandle, rel Isometry) ColliderBundle {
	b.Parent = &ColliderParent{Handle: body, PosWrtParent: rel}
	return b
}

func (b ColliderBundle) Components() []any {
	components := []any{
		b.Type, b.Shape, b.Position, b.Material, b.Flags, b.MassProps, b.Changes, b.BroadPhaseData,
	}
	if b.Parent != nil {
		components = append(components, *b.Parent)
	}
	return components
}
