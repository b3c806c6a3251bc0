package main

import (
	"math/rand"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/plus3/physbridge/ecs"
	"github.com/plus3/physbridge/physics"
)

// Team tags colliders; only bodies of the same team collide.
type Team uint8

const (
	TeamA Team = iota + 1
	TeamB
)

const gridWidth = 64

// teamFilter lets untagged colliders such as the floor touch everything, and tagged colliders
// only their own team.
type teamFilter struct {
	physics.SameTagFilter[Team]
}

func (f teamFilter) FilterContactPair(ctx *physics.PairFilterContext, teams physics.ComponentSetOption[Team]) (physics.SolverFlags, bool) {
	_, tagged1 := teams.Get(ctx.Collider1.Index())
	_, tagged2 := teams.Get(ctx.Collider2.Index())
	if !tagged1 || !tagged2 {
		return physics.ComputeImpulses, true
	}
	return f.SameTagFilter.FilterContactPair(ctx, teams)
}

// SpawnGround adds a large static floor.
func SpawnGround(storage *ecs.Storage) ecs.Entity {
	floor := physics.DefaultColliderBundle().WithShape(physics.Cuboid(gridWidth, 0.5, gridWidth))
	return storage.Spawn(
		physics.DefaultRigidBodyBundle().WithType(physics.Static).At(physics.Translation(0, -0.5, 0)),
		floor,
	)
}

func bodyBundle(i int) (physics.RigidBodyBundle, physics.ColliderBundle, Team) {
	x := float32(i%gridWidth) - gridWidth/2
	z := float32((i/gridWidth)%gridWidth) - gridWidth/2
	y := 2 + float32(i/(gridWidth*gridWidth))*1.5 + rand.Float32()

	body := physics.DefaultRigidBodyBundle().At(physics.Translation(x, y, z))
	body.Damping = physics.RigidBodyDamping{Linear: 0.1, Angular: 0.1}

	shape := physics.Ball(0.4)
	if i%3 == 0 {
		shape = physics.Cuboid(0.35, 0.35, 0.35)
	}
	collider := physics.DefaultColliderBundle().WithShape(shape)
	collider.Flags.ActiveHooks = physics.FilterContactPairs

	team := TeamA
	if i%2 == 1 {
		team = TeamB
	}
	return body, collider, team
}

// SpawnBody spawns the i-th body of the grid.
func SpawnBody(storage *ecs.Storage, i int) ecs.Entity {
	body, collider, team := bodyBundle(i)
	return storage.Spawn(body, collider, team)
}

// ChurnSystem despawns a fraction of the tagged bodies every frame and respawns as many,
// exercising removal tracking and contact eviction.
type ChurnSystem struct {
	Bodies ecs.Query[struct {
		Id   ecs.Entity
		Team *Team
	}]
	Fraction float64

	spawned int
}

func (s *ChurnSystem) Execute(frame *ecs.UpdateFrame) {
	if s.Fraction <= 0 {
		return
	}
	for body := range s.Bodies.Iter() {
		if rand.Float64() >= s.Fraction {
			continue
		}
		frame.Commands.Delete(body.Id)

		b, c, team := bodyBundle(s.spawned)
		s.spawned++
		frame.Commands.Spawn(b, c, team)
	}
}

// KickSystem throws sleeping bodies back up every few frames. The velocity is written
// through the component pointer and then marked changed, which wakes the body.
type KickSystem struct {
	Sleeping ecs.Query[struct {
		Id         ecs.Entity
		Activation *physics.RigidBodyActivation
		Velocity   *physics.RigidBodyVelocity
	}]
	Every int

	frames int
}

func (s *KickSystem) Execute(frame *ecs.UpdateFrame) {
	s.frames++
	if s.Every <= 0 || s.frames%s.Every != 0 {
		return
	}
	for body := range s.Sleeping.Iter() {
		if !body.Activation.Sleeping {
			continue
		}
		body.Velocity.Linvel = mgl32.Vec3{rand.Float32() - 0.5, 5 + rand.Float32()*5, rand.Float32() - 0.5}
		ecs.SetChanged[physics.RigidBodyVelocity](frame.Storage, body.Id)
	}
}

// countAwake returns how many bodies are awake. bodies is nil before the first frame.
func countAwake(bodies *physics.RigidBodyComponentsSet) int {
	if bodies == nil {
		return 0
	}
	awake := 0
	bodies.Activation.ForEach(func(_ physics.Index, a physics.RigidBodyActivation) {
		if !a.Sleeping {
			awake++
		}
	})
	return awake
}
