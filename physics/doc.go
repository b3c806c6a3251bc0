// Package physics connects an ecs.Storage to a physics pipeline.
//
// Rigid bodies and colliders are plain components on entities. The pipeline never owns that
// state: it reads and writes it each step through typed component sets, which are thin
// adapters over split ecs views. Handles used by the pipeline are entity IDs under another
// name, so no second allocator exists.
//
// A typical setup registers the components, spawns bundles and runs a StepSystem:
//
//	registry := ecs.NewComponentRegistry()
//	physics.RegisterComponents(registry)
//	storage := ecs.NewStorage(registry)
//
//	body := physics.DefaultRigidBodyBundle()
//	storage.Spawn(body, physics.DefaultColliderBundle())
//
//	scheduler := ecs.NewScheduler(storage)
//	scheduler.Register(physics.NewStepSystem(physics.NewBasicPipeline(), nil))
//	scheduler.Once(1.0 / 60)
package physics
