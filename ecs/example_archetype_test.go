package ecs_test

import (
	"fmt"

	"github.com/plus3/physbridge/ecs"
)

// ExampleStorage_Compact closes the gaps deletions leave in archetype storage. Rows move but
// entity ids do not, so ids taken before compaction still resolve.
func ExampleStorage_Compact() {
	registry := ecs.NewComponentRegistry()
	ecs.RegisterComponent[Position](registry)
	ecs.RegisterComponent[Health](registry)
	storage := ecs.NewStorage(registry)

	entities := make([]ecs.Entity, 5)
	for i := range entities {
		entities[i] = storage.Spawn(Position{X: float32(i * 10)}, Health{Current: 100, Max: 100})
	}
	storage.Delete(entities[1])
	storage.Delete(entities[3])

	archetype := storage.GetArchetype(Position{}, Health{})
	fmt.Println("live rows:", archetype.Len())

	storage.Compact()

	view := ecs.NewView[struct {
		*Position
		*Health
	}](storage)
	for item := range view.Values() {
		fmt.Printf("position: %.0f\n", item.Position.X)
	}
	fmt.Println("last entity still at:", ecs.ReadComponent[Position](storage, entities[4]).X)

	// Output:
	// live rows: 3
	// position: 0
	// position: 20
	// position: 40
	// last entity still at: 40
}
