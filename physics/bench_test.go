package physics_test

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/plus3/physbridge/ecs"
	"github.com/plus3/physbridge/physics"
)

func spawnGrid(storage *ecs.Storage, n int) []ecs.Entity {
	entities := make([]ecs.Entity, 0, n)
	for i := range n {
		x, z := float32(i%32)*2, float32(i/32)*2
		entities = append(entities, storage.Spawn(
			physics.DefaultRigidBodyBundle().At(physics.Translation(x, 0, z)),
			physics.DefaultColliderBundle(),
		))
	}
	return entities
}

func BenchmarkComponentSetGet(b *testing.B) {
	storage := newStorage()
	entities := spawnGrid(storage, 1000)
	bodies := physics.NewRigidBodyComponentsSet(storage)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		e := entities[i%len(entities)]
		_, _ = bodies.Velocity.Get(physics.RigidBodyHandleOf(e).Index())
	}
}

func BenchmarkComponentSetSet(b *testing.B) {
	storage := newStorage()
	entities := spawnGrid(storage, 1000)
	bodies := physics.NewRigidBodyComponentsSet(storage)
	vel := physics.RigidBodyVelocity{Linvel: mgl32.Vec3{1, 0, 0}}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		e := entities[i%len(entities)]
		bodies.Velocity.Set(physics.RigidBodyHandleOf(e).Index(), vel)
	}
}

func BenchmarkComponentSetForEach(b *testing.B) {
	storage := newStorage()
	spawnGrid(storage, 1000)
	bodies := physics.NewRigidBodyComponentsSet(storage)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		var sum float32
		bodies.Position.ForEach(func(_ physics.Index, p physics.RigidBodyPosition) {
			sum += p.Position.Translation.X()
		})
	}
}

func BenchmarkComputeChanges(b *testing.B) {
	storage := newStorage()
	entities := spawnGrid(storage, 1000)
	bodies := physics.NewRigidBodyComponentsSet(storage)
	var tracker ecs.ChangeTracker

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		storage.SetComponent(entities[i%len(entities)], physics.RigidBodyVelocity{})
		bodies.ComputeChanges(tracker.Begin(storage))
	}
}

func BenchmarkStepSystem(b *testing.B) {
	w := newWorld(gravity, nil)
	spawnGrid(w.storage, 1000)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		w.scheduler.Once(float64(dt))
	}
}
