package physics_test

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/plus3/physbridge/ecs"
	"github.com/plus3/physbridge/physics"
	"github.com/stretchr/testify/assert"
)

// tracked runs the change passes by hand, the way StepSystem does around a step.
type tracked struct {
	storage   *ecs.Storage
	bodies    *physics.RigidBodyComponentsSet
	colliders *physics.ColliderComponentsSet
	tracker   ecs.ChangeTracker
}

func newTracked() *tracked {
	storage := newStorage()
	return &tracked{
		storage:   storage,
		bodies:    physics.NewRigidBodyComponentsSet(storage),
		colliders: physics.NewColliderComponentsSet(storage),
	}
}

func (tr *tracked) pass() {
	since := tr.tracker.Begin(tr.storage)
	tr.bodies.ComputeChanges(since)
	tr.colliders.ComputeChanges(since)
	tr.bodies.UpdateActivation(since)
}

// consume clears every flag the way a pipeline does and acknowledges the write.
func (tr *tracked) consume() {
	view := ecs.NewView[struct{ Changes *physics.RigidBodyChanges }](tr.storage)
	for row := range view.Values() {
		*row.Changes = 0
	}
	colliders := ecs.NewView[struct{ Changes *physics.ColliderChanges }](tr.storage)
	for row := range colliders.Values() {
		*row.Changes = 0
	}
	tr.tracker.Begin(tr.storage)
}

func (tr *tracked) bodyChanges(e ecs.Entity) physics.RigidBodyChanges {
	return *ecs.ReadComponent[physics.RigidBodyChanges](tr.storage, e)
}

func (tr *tracked) colliderChanges(e ecs.Entity) physics.ColliderChanges {
	return *ecs.ReadComponent[physics.ColliderChanges](tr.storage, e)
}

func TestFreshSpawnFlagsEverything(t *testing.T) {
	tr := newTracked()

	body := physics.DefaultRigidBodyBundle()
	body.Changes = 0
	collider := physics.DefaultColliderBundle()
	collider.Changes = 0
	e := tr.storage.Spawn(body, collider)

	tr.pass()
	assert.Equal(t, physics.RigidBodyChangeAll, tr.bodyChanges(e))
	assert.Equal(t, physics.ColliderChangeAll, tr.colliderChanges(e))
}

func TestChangePropagation(t *testing.T) {
	tests := []struct {
		name  string
		write func(*ecs.Storage, ecs.Entity)
		want  physics.RigidBodyChanges
	}{
		{
			name: "position",
			write: func(s *ecs.Storage, e ecs.Entity) {
				ecs.Mutate(s, e, func(p *physics.RigidBodyPosition) { p.Position = physics.Translation(1, 0, 0) })
			},
			want: physics.RigidBodyChangePosition,
		},
		{
			name: "velocity",
			write: func(s *ecs.Storage, e ecs.Entity) {
				s.SetComponent(e, physics.RigidBodyVelocity{Linvel: mgl32.Vec3{1, 0, 0}})
			},
			want: physics.RigidBodyChangeVelocity,
		},
		{
			name: "forces",
			write: func(s *ecs.Storage, e ecs.Entity) {
				ecs.Mutate(s, e, func(f *physics.RigidBodyForces) { f.Force = mgl32.Vec3{0, 1, 0} })
			},
			want: physics.RigidBodyChangeForces,
		},
		{
			name: "type",
			write: func(s *ecs.Storage, e ecs.Entity) {
				s.SetComponent(e, physics.Static)
			},
			want: physics.RigidBodyChangeType,
		},
		{
			name: "colliders",
			write: func(s *ecs.Storage, e ecs.Entity) {
				ecs.SetChanged[physics.RigidBodyColliders](s, e)
			},
			want: physics.RigidBodyChangeColliders,
		},
		{
			name: "activation",
			write: func(s *ecs.Storage, e ecs.Entity) {
				ecs.Mutate(s, e, func(a *physics.RigidBodyActivation) { a.LinearThreshold = -1 })
			},
			want: physics.RigidBodyChangeSleep,
		},
		{
			name: "untracked field",
			write: func(s *ecs.Storage, e ecs.Entity) {
				ecs.Mutate(s, e, func(d *physics.RigidBodyDamping) { d.Linear = 1 })
			},
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := newTracked()
			e := tr.storage.Spawn(physics.DefaultRigidBodyBundle())
			tr.pass()
			tr.consume()

			tt.write(tr.storage, e)
			tr.pass()

			want := tt.want
			if want != 0 {
				want |= physics.RigidBodyChangeModified
			}
			assert.Equal(t, want, tr.bodyChanges(e))
		})
	}
}

func TestIdleTickFlagsNothing(t *testing.T) {
	tr := newTracked()
	e := tr.storage.Spawn(physics.DefaultRigidBodyBundle(), physics.DefaultColliderBundle())
	tr.pass()
	tr.consume()

	for range 3 {
		tr.pass()
		assert.Zero(t, tr.bodyChanges(e))
		assert.Zero(t, tr.colliderChanges(e))
	}
}

func TestRawPointerWritesAreInvisible(t *testing.T) {
	tr := newTracked()
	e := tr.storage.Spawn(physics.DefaultRigidBodyBundle())
	tr.pass()
	tr.consume()

	ecs.ReadComponent[physics.RigidBodyVelocity](tr.storage, e).Linvel = mgl32.Vec3{5, 0, 0}
	tr.pass()
	assert.Zero(t, tr.bodyChanges(e))

	ecs.SetChanged[physics.RigidBodyVelocity](tr.storage, e)
	tr.pass()
	assert.Equal(t, physics.RigidBodyChangeVelocity|physics.RigidBodyChangeModified, tr.bodyChanges(e))
}

func TestFlagsAccumulateUntilConsumed(t *testing.T) {
	tr := newTracked()
	e := tr.storage.Spawn(physics.DefaultRigidBodyBundle())
	tr.pass()
	tr.consume()

	tr.storage.SetComponent(e, physics.RigidBodyVelocity{Linvel: mgl32.Vec3{1, 0, 0}})
	tr.pass()
	ecs.Mutate(tr.storage, e, func(f *physics.RigidBodyForces) { f.GravityScale = 0 })
	tr.pass()

	want := physics.RigidBodyChangeVelocity | physics.RigidBodyChangeForces | physics.RigidBodyChangeModified
	assert.Equal(t, want, tr.bodyChanges(e))
}

func TestChangeWakesSleepingBody(t *testing.T) {
	tr := newTracked()
	e := tr.storage.Spawn(physics.DefaultRigidBodyBundle())
	tr.pass()
	ecs.ReadComponent[physics.RigidBodyActivation](tr.storage, e).Sleeping = true
	tr.consume()

	tr.pass()
	assert.True(t, ecs.ReadComponent[physics.RigidBodyActivation](tr.storage, e).Sleeping)

	tr.storage.SetComponent(e, physics.RigidBodyVelocity{Linvel: mgl32.Vec3{0, 3, 0}})
	tr.pass()

	activation := ecs.ReadComponent[physics.RigidBodyActivation](tr.storage, e)
	assert.False(t, activation.Sleeping)
	assert.Zero(t, activation.TimeSinceCanSleep)
	assert.True(t, tr.bodyChanges(e).Has(physics.RigidBodyChangeSleep|physics.RigidBodyChangeVelocity|physics.RigidBodyChangeModified))
}

func TestColliderChangePropagation(t *testing.T) {
	tests := []struct {
		name  string
		write func(*ecs.Storage, ecs.Entity)
		want  physics.ColliderChanges
	}{
		{
			name: "shape",
			write: func(s *ecs.Storage, e ecs.Entity) {
				s.SetComponent(e, physics.Cuboid(1, 1, 1))
			},
			want: physics.ColliderChangeShape,
		},
		{
			name: "material",
			write: func(s *ecs.Storage, e ecs.Entity) {
				ecs.Mutate(s, e, func(m *physics.ColliderMaterial) { m.Restitution = 0.5 })
			},
			want: physics.ColliderChangeMaterial,
		},
		{
			name: "flags",
			write: func(s *ecs.Storage, e ecs.Entity) {
				ecs.Mutate(s, e, func(f *physics.ColliderFlags) { f.ActiveHooks = physics.FilterContactPairs })
			},
			want: physics.ColliderChangeFlags,
		},
		{
			name: "type",
			write: func(s *ecs.Storage, e ecs.Entity) {
				s.SetComponent(e, physics.Sensor)
			},
			want: physics.ColliderChangeType,
		},
		{
			name: "position",
			write: func(s *ecs.Storage, e ecs.Entity) {
				s.SetComponent(e, physics.ColliderPosition{Isometry: physics.Translation(0, 1, 0)})
			},
			want: physics.ColliderChangePosition,
		},
		{
			name: "parent added",
			write: func(s *ecs.Storage, e ecs.Entity) {
				s.Insert(e, physics.ColliderParent{Handle: physics.RigidBodyHandle(7)})
			},
			want: physics.ColliderChangeParent,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := newTracked()
			e := tr.storage.Spawn(physics.DefaultColliderBundle())
			tr.pass()
			tr.consume()

			tt.write(tr.storage, e)
			tr.pass()
			assert.Equal(t, tt.want|physics.ColliderChangeModified, tr.colliderChanges(e))
		})
	}
}

func TestColliderParentRemoval(t *testing.T) {
	tr := newTracked()
	body := tr.storage.Spawn(physics.DefaultRigidBodyBundle())
	e := tr.storage.Spawn(physics.DefaultColliderBundle().AttachedTo(physics.RigidBodyHandleOf(body), physics.IdentityIsometry()))
	tr.pass()
	tr.consume()

	tr.storage.RemoveComponent(e, reflectType[physics.ColliderParent]())
	tr.pass()
	assert.Equal(t, physics.ColliderChangeParent|physics.ColliderChangeModified, tr.colliderChanges(e))
}
