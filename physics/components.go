package physics

import (
	"math"
	"slices"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/plus3/physbridge/ecs"
)

// RigidBodyType selects how the pipeline moves a body.
type RigidBodyType uint8

const (
	// Dynamic bodies are moved by forces, gravity and contacts.
	Dynamic RigidBodyType = iota
	// Static bodies never move.
	Static
	// KinematicPositionBased bodies move to their NextPosition every step.
	KinematicPositionBased
	// KinematicVelocityBased bodies move by their velocity, ignoring forces.
	KinematicVelocityBased
)

func (t RigidBodyType) String() string {
	switch t {
	case Dynamic:
		return "dynamic"
	case Static:
		return "static"
	case KinematicPositionBased:
		return "kinematic-position"
	case KinematicVelocityBased:
		return "kinematic-velocity"
	}
	return "unknown"
}

// IsDynamic reports whether forces affect the body.
func (t RigidBodyType) IsDynamic() bool { return t == Dynamic }

// IsKinematic reports whether the body is user-driven.
func (t RigidBodyType) IsKinematic() bool {
	return t == KinematicPositionBased || t == KinematicVelocityBased
}

// RigidBodyPosition holds the current pose and, for position-based kinematic bodies,
// the pose to reach at the next step.
type RigidBodyPosition struct {
	Position     Isometry
	NextPosition Isometry
}

type RigidBodyVelocity struct {
	Linvel mgl32.Vec3
	Angvel mgl32.Vec3
}

// RigidBodyMassProps is derived by the pipeline from the attached colliders.
type RigidBodyMassProps struct {
	Mass       float32
	InvMass    float32
	LocalCom   mgl32.Vec3
	WorldCom   mgl32.Vec3
	InvInertia mgl32.Vec3
}

// RigidBodyForces are user-applied and persist until changed.
type RigidBodyForces struct {
	Force        mgl32.Vec3
	Torque       mgl32.Vec3
	GravityScale float32
}

// RigidBodyActivation drives sleeping. A negative LinearThreshold keeps the body awake.
type RigidBodyActivation struct {
	LinearThreshold   float32
	AngularThreshold  float32
	TimeSinceCanSleep float32
	Sleeping          bool
}

const (
	DefaultLinearSleepThreshold  = 0.4
	DefaultAngularSleepThreshold = 0.5
	// TimeUntilSleep is how long a body must stay below its thresholds before it sleeps.
	TimeUntilSleep = 2.0
)

// DefaultActivation returns an awake body with the default thresholds.
func DefaultActivation() RigidBodyActivation {
	return RigidBodyActivation{
		LinearThreshold:  DefaultLinearSleepThreshold,
		AngularThreshold: DefaultAngularSleepThreshold,
	}
}

// CanSleep reports whether sleeping is enabled for the body.
func (a RigidBodyActivation) CanSleep() bool {
	return a.LinearThreshold >= 0
}

// WakeUp clears the sleep state.
func (a *RigidBodyActivation) WakeUp() {
	a.Sleeping = false
	a.TimeSinceCanSleep = 0
}

// RigidBodyCcd configures continuous collision detection.
type RigidBodyCcd struct {
	Enabled   bool
	Active    bool
	Thickness float32
}

// noSlot marks an unassigned pipeline slot.
const noSlot = math.MaxUint32

// RigidBodyIds are the pipeline's bookkeeping slots for a body.
type RigidBodyIds struct {
	ActiveSetIndex uint32
	IslandId       uint32
}

// DefaultRigidBodyIds returns ids not assigned to any slot.
func DefaultRigidBodyIds() RigidBodyIds {
	return RigidBodyIds{ActiveSetIndex: noSlot, IslandId: noSlot}
}

// RigidBodyColliders lists the colliders attached to a body.
type RigidBodyColliders struct {
	Handles []ColliderHandle
}

// Contains reports whether h is attached.
func (c *RigidBodyColliders) Contains(h ColliderHandle) bool {
	for _, existing := range c.Handles {
		if existing == h {
			return true
		}
	}
	return false
}

// Clone returns a copy that does not share the handle list.
func (c *RigidBodyColliders) Clone() RigidBodyColliders {
	return RigidBodyColliders{Handles: slices.Clone(c.Handles)}
}

// Attach adds h unless it is already present. Reports whether the list changed.
func (c *RigidBodyColliders) Attach(h ColliderHandle) bool {
	if c.Contains(h) {
		return false
	}
	c.Handles = append(c.Handles, h)
	return true
}

// Detach removes h. Reports whether the list changed.
func (c *RigidBodyColliders) Detach(h ColliderHandle) bool {
	for i, existing := range c.Handles {
		if existing == h {
			c.Handles = append(c.Handles[:i], c.Handles[i+1:]...)
			return true
		}
	}
	return false
}

type RigidBodyDamping struct {
	Linear  float32
	Angular float32
}

// RigidBodyDominance lets higher groups push lower groups without being pushed back.
type RigidBodyDominance struct {
	Group int8
}

// ColliderType selects whether a collider generates contacts or only intersections.
type ColliderType uint8

const (
	Solid ColliderType = iota
	Sensor
)

// ColliderPosition is the world pose of a collider.
type ColliderPosition struct {
	Isometry
}

type ColliderMaterial struct {
	Friction    float32
	Restitution float32
}

const DefaultFriction = 0.5

// ActiveHooks selects which PhysicsHooks callbacks run for a collider.
type ActiveHooks uint32

const (
	FilterContactPairs ActiveHooks = 1 << iota
	FilterIntersectionPair
)

// ActiveEvents selects which events a collider reports.
type ActiveEvents uint32

const (
	CollisionEvents ActiveEvents = 1 << iota
)

// InteractionGroups decide which colliders may interact. Two colliders interact when each
// one's memberships intersect the other's filter.
type InteractionGroups struct {
	Memberships uint32
	Filter      uint32
}

// AllGroups interacts with everything.
var AllGroups = InteractionGroups{Memberships: math.MaxUint32, Filter: math.MaxUint32}

// Test reports whether g and o may interact.
func (g InteractionGroups) Test(o InteractionGroups) bool {
	return g.Memberships&o.Filter != 0 && o.Memberships&g.Filter != 0
}

type ColliderFlags struct {
	ActiveHooks     ActiveHooks
	ActiveEvents    ActiveEvents
	CollisionGroups InteractionGroups
}

// ColliderMassProps gives the density used to derive the parent body's mass.
type ColliderMassProps struct {
	Density float32
}

// ColliderBroadPhaseData is written by the pipeline.
type ColliderBroadPhaseData struct {
	ProxyIndex uint32
}

// ColliderParent attaches a collider to a rigid body at a fixed relative pose.
type ColliderParent struct {
	Handle       RigidBodyHandle
	PosWrtParent Isometry
}

// RegisterComponents registers every physics component type with the registry.
func RegisterComponents(registry *ecs.ComponentRegistry) {
	ecs.RegisterComponent[RigidBodyType](registry)
	ecs.RegisterComponent[RigidBodyPosition](registry)
	ecs.RegisterComponent[RigidBodyVelocity](registry)
	ecs.RegisterComponent[RigidBodyMassProps](registry)
	ecs.RegisterComponent[RigidBodyForces](registry)
	ecs.RegisterComponent[RigidBodyActivation](registry)
	ecs.RegisterComponent[RigidBodyChanges](registry)
	ecs.RegisterComponent[RigidBodyCcd](registry)
	ecs.RegisterComponent[RigidBodyIds](registry)
	ecs.RegisterComponent[RigidBodyColliders](registry)
	ecs.RegisterComponent[RigidBodyDamping](registry)
	ecs.RegisterComponent[RigidBodyDominance](registry)

	ecs.RegisterComponent[ColliderType](registry)
	ecs.RegisterComponent[ColliderShape](registry)
	ecs.RegisterComponent[ColliderPosition](registry)
	ecs.RegisterComponent[ColliderMaterial](registry)
	ecs.RegisterComponent[ColliderFlags](registry)
	ecs.RegisterComponent[ColliderMassProps](registry)
	ecs.RegisterComponent[ColliderChanges](registry)
	ecs.RegisterComponent[ColliderBroadPhaseData](registry)
	ecs.RegisterComponent[ColliderParent](registry)
}
