package ecs_test

import (
	"testing"

	"github.com/plus3/physbridge/ecs"
)

func BenchmarkSpawn(b *testing.B) {
	registry := newTestRegistry()
	storage := ecs.NewStorage(registry)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		storage.Spawn(Position{X: 1.0, Y: 2.0}, Velocity{DX: 0.5, DY: 0.5})
	}
}

func BenchmarkGetComponent(b *testing.B) {
	registry := newTestRegistry()
	storage := ecs.NewStorage(registry)

	id := storage.Spawn(Position{X: 1.0, Y: 2.0}, Velocity{DX: 0.5, DY: 0.5})

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = ecs.ReadComponent[Position](storage, id)
	}
}

func BenchmarkSetComponent(b *testing.B) {
	registry := newTestRegistry()
	storage := ecs.NewStorage(registry)

	id := storage.Spawn(Position{X: 1.0, Y: 2.0})

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		storage.SetComponent(id, Position{X: float32(i)})
	}
}

func BenchmarkViewGet(b *testing.B) {
	registry := newTestRegistry()
	storage := ecs.NewStorage(registry)

	type PosVel struct {
		*Position
		*Velocity
	}

	view := ecs.NewView[PosVel](storage)
	id := storage.Spawn(Position{X: 1.0, Y: 2.0}, Velocity{DX: 0.5, DY: 0.5})

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = view.Get(id)
	}
}

func BenchmarkViewIter(b *testing.B) {
	registry := newTestRegistry()
	storage := ecs.NewStorage(registry)

	type PosVel struct {
		*Position
		*Velocity
	}

	for i := 0; i < 1000; i++ {
		storage.Spawn(Position{X: float32(i), Y: float32(i)}, Velocity{DX: 0.5, DY: 0.5})
	}

	view := ecs.NewView[PosVel](storage)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for _, pv := range view.Iter() {
			_ = pv
		}
	}
}

func BenchmarkQueryIter(b *testing.B) {
	registry := newTestRegistry()
	storage := ecs.NewStorage(registry)

	type PosVel struct {
		*Position
		*Velocity
	}

	for i := 0; i < 1000; i++ {
		storage.Spawn(Position{X: float32(i), Y: float32(i)}, Velocity{DX: 0.5, DY: 0.5})
	}

	query := ecs.NewQuery[PosVel](storage)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		query.Execute()
		for _, pv := range query.All() {
			_ = pv
		}
	}
}

type benchMovementSystem struct {
	Entities ecs.Query[struct {
		*Position
		*Velocity
	}]
}

func (s *benchMovementSystem) Execute(frame *ecs.UpdateFrame) {
	for item := range s.Entities.Values() {
		item.Position.X += item.Velocity.DX * float32(frame.DeltaTime)
		item.Position.Y += item.Velocity.DY * float32(frame.DeltaTime)
	}
}

func BenchmarkChangeScan(b *testing.B) {
	registry := newTestRegistry()
	storage := ecs.NewStorage(registry)

	entities := make([]ecs.Entity, 1000)
	for i := range entities {
		entities[i] = storage.Spawn(Position{X: float32(i)})
	}

	var tracker ecs.ChangeTracker
	tracker.Begin(storage)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		ecs.SetChanged[Position](storage, entities[i%len(entities)])
		since := tracker.Begin(storage)
		changed := 0
		for _, e := range entities {
			if ticks, _ := ecs.TicksOf[Position](storage, e); ticks.IsChanged(since) {
				changed++
			}
		}
		_ = changed
	}
}

func BenchmarkSchedulerOnce(b *testing.B) {
	registry := newTestRegistry()
	storage := ecs.NewStorage(registry)

	for i := 0; i < 1000; i++ {
		storage.Spawn(Position{X: float32(i), Y: float32(i)}, Velocity{DX: 0.5, DY: 0.5})
	}

	scheduler := ecs.NewScheduler(storage)
	scheduler.Register(&benchMovementSystem{})

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		scheduler.Once(0.016)
	}
}
