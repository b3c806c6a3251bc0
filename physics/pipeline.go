package physics

import "github.com/go-gl/mathgl/mgl32"

// Pipeline advances the simulation by one step. It reads and writes bodies and colliders only
// through the component sets in ctx and must not write anything when it returns an error.
type Pipeline interface {
	Step(ctx *StepContext) error
}

// StepContext is everything a Pipeline sees during one step.
type StepContext struct {
	Dt        float32
	Gravity   mgl32.Vec3
	Bodies    *RigidBodyComponentsSet
	Colliders *ColliderComponentsSet
	// Hooks may be nil.
	Hooks PhysicsHooks

	// Entities that lost their collider or rigid body since the previous step.
	RemovedColliders []ColliderHandle
	RemovedBodies    []RigidBodyHandle

	// Contacts is set by the pipeline to the number of active pairs after the step.
	Contacts int
}
