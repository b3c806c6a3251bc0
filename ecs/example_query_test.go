package ecs_test

import (
	"fmt"

	"github.com/plus3/physbridge/ecs"
)

// ExampleQuery shows the per-frame cache a Query keeps. Execute snapshots the matching
// entities; archetypes created later are picked up by the next Execute.
func ExampleQuery() {
	registry := ecs.NewComponentRegistry()
	ecs.RegisterComponent[Position](registry)
	ecs.RegisterComponent[Velocity](registry)
	ecs.RegisterComponent[Name](registry)
	storage := ecs.NewStorage(registry)

	first := storage.Spawn(Position{X: 0}, Velocity{DX: 1})
	storage.Spawn(Position{X: 10}, Velocity{DY: 1})
	storage.Spawn(Position{X: 20})

	movers := ecs.NewQuery[struct {
		*Position
		*Velocity
	}](storage)
	movers.Execute()
	fmt.Println("movers:", movers.Len())

	storage.Spawn(Position{X: 30}, Velocity{DX: -1}, Name{Value: "late"})
	fmt.Println("before execute:", movers.Len())
	movers.Execute()
	fmt.Println("after execute:", movers.Len())

	for e, m := range movers.All() {
		if e == first {
			fmt.Printf("first mover heads to %.0f\n", m.Position.X+m.Velocity.DX)
		}
	}

	// Output:
	// movers: 2
	// before execute: 2
	// after execute: 3
	// first mover heads to 1
}
