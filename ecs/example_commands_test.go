package ecs_test

import (
	"fmt"
	"reflect"
	"slices"

	"github.com/plus3/physbridge/ecs"
)

type reaperSystem struct {
	Living ecs.Query[struct {
		Id ecs.Entity
		*Health
	}]
}

func (s *reaperSystem) Execute(frame *ecs.UpdateFrame) {
	dead := 0
	for item := range s.Living.Iter() {
		if item.Health.Current <= 0 {
			frame.Commands.Delete(item.Id)
			dead++
		}
	}
	fmt.Printf("queued %d deletions, %d entities still alive\n", dead, frame.Storage.EntityCount())
}

// ExampleCommands defers deletions found during iteration. The scheduler applies them once
// every system has run.
func ExampleCommands() {
	registry := ecs.NewComponentRegistry()
	ecs.RegisterComponent[Position](registry)
	ecs.RegisterComponent[Health](registry)
	storage := ecs.NewStorage(registry)

	storage.Spawn(Position{X: 0}, Health{Current: 0, Max: 100})
	storage.Spawn(Position{X: 10}, Health{Current: 50, Max: 100})
	storage.Spawn(Position{X: 20}, Health{Current: -5, Max: 100})

	scheduler := ecs.NewScheduler(storage)
	scheduler.Register(&reaperSystem{})
	scheduler.Once(1.0)

	fmt.Println("alive after frame:", storage.EntityCount())

	// Output:
	// queued 2 deletions, 3 entities still alive
	// alive after frame: 1
}

type emitterSystem struct {
	Emitters ecs.Query[struct {
		Id ecs.Entity
		*Position
		*Velocity
	}]
}

func (s *emitterSystem) Execute(frame *ecs.UpdateFrame) {
	for item := range s.Emitters.Iter() {
		if item.Velocity.DX == 0 {
			continue
		}
		frame.Commands.Spawn(
			Position{X: item.Position.X},
			Velocity{DX: item.Velocity.DX * 2},
		)
		frame.Commands.RemoveComponent(item.Id, reflect.TypeFor[Velocity]())
	}
}

// ExampleCommands_spawning spawns from inside a query loop and strips the component that
// triggered the spawn, all applied at the end of the frame.
func ExampleCommands_spawning() {
	registry := ecs.NewComponentRegistry()
	ecs.RegisterComponent[Position](registry)
	ecs.RegisterComponent[Velocity](registry)
	storage := ecs.NewStorage(registry)

	storage.Spawn(Position{X: 10}, Velocity{DX: 1})
	storage.Spawn(Position{X: 20}, Velocity{})

	scheduler := ecs.NewScheduler(storage)
	scheduler.Register(&emitterSystem{})
	scheduler.Once(1.0)

	view := ecs.NewView[struct {
		*Position
		*Velocity
	}](storage)
	var speeds []float32
	for item := range view.Values() {
		speeds = append(speeds, item.Velocity.DX)
	}
	slices.Sort(speeds)
	fmt.Println("mover speeds:", speeds)
	fmt.Println("entities:", storage.EntityCount())

	// Output:
	// mover speeds: [0 2]
	// entities: 3
}
