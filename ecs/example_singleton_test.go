package ecs_test

import (
	"fmt"

	"github.com/plus3/physbridge/ecs"
)

type worldSettings struct {
	Gravity  float32
	Substeps int
}

type gameClock struct {
	Frames int
}

// ExampleNewSingleton creates a store-wide value on first use. Later accessors of the same
// type share it.
func ExampleNewSingleton() {
	storage := ecs.NewStorage(ecs.NewComponentRegistry())

	settings := ecs.NewSingleton(storage, worldSettings{Gravity: -9.81, Substeps: 1})
	fmt.Printf("gravity %.2f, %d substep\n", settings.Get().Gravity, settings.Get().Substeps)

	// The initializer is ignored once the singleton exists
	other := ecs.NewSingleton(storage, worldSettings{Substeps: 8})
	other.Get().Substeps = 4
	fmt.Printf("substeps seen by the first accessor: %d\n", settings.Get().Substeps)

	// Output:
	// gravity -9.81, 1 substep
	// substeps seen by the first accessor: 4
}

// ExampleSingleton_Exists shows a Singleton field bound before its value is added. Get
// returns nil until then and resolves lazily afterwards.
func ExampleSingleton_Exists() {
	storage := ecs.NewStorage(ecs.NewComponentRegistry())

	var clock ecs.Singleton[gameClock]
	clock.Init(storage)
	fmt.Println("exists:", clock.Exists(), clock.Get() == nil)

	storage.AddSingleton(gameClock{Frames: 7})
	fmt.Println("exists:", clock.Exists(), clock.Get().Frames)

	// Output:
	// exists: false true
	// exists: true 7
}

// ExampleStorage_ReadSingleton reads a singleton outside of any system.
func ExampleStorage_ReadSingleton() {
	storage := ecs.NewStorage(ecs.NewComponentRegistry())

	var clock *gameClock
	fmt.Println("before:", storage.ReadSingleton(&clock))

	storage.AddSingleton(gameClock{})
	ecs.NewSingleton[gameClock](storage).Get().Frames += 3

	storage.ReadSingleton(&clock)
	fmt.Println("frames:", clock.Frames)

	// Output:
	// before: false
	// frames: 3
}
