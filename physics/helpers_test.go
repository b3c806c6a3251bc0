package physics_test

import (
	"reflect"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/plus3/physbridge/ecs"
	"github.com/plus3/physbridge/physics"
)

// Team is a user component read by collision hooks.
type Team int

const (
	Red Team = iota + 1
	Blue
)

const dt = float32(1.0 / 60)

// sleepFrames is how many steps of dt a still body needs to fall asleep.
const sleepFrames = int(physics.TimeUntilSleep * 60)

func newStorage() *ecs.Storage {
	registry := ecs.NewComponentRegistry()
	physics.RegisterComponents(registry)
	ecs.RegisterComponent[Team](registry)
	return ecs.NewStorage(registry)
}

type world struct {
	storage   *ecs.Storage
	scheduler *ecs.Scheduler
	system    *physics.StepSystem
	pipeline  *physics.BasicPipeline
}

func newWorld(gravity mgl32.Vec3, hooks physics.PhysicsHooks) *world {
	storage := newStorage()
	storage.AddSingleton(physics.Config{Gravity: gravity, Timestep: dt, Enabled: true})

	pipeline := physics.NewBasicPipeline()
	system := physics.NewStepSystem(pipeline, hooks)
	scheduler := ecs.NewScheduler(storage)
	scheduler.Register(system)

	return &world{storage: storage, scheduler: scheduler, system: system, pipeline: pipeline}
}

func (w *world) step(frames int) {
	for range frames {
		w.scheduler.Once(float64(dt))
	}
}

func (w *world) stats() physics.Stats {
	return *w.system.Stats.Get()
}

// spawnBall spawns a body carrying a half-unit ball collider on the same entity.
func (w *world) spawnBall(typ physics.RigidBodyType, x, y, z float32, extra ...any) ecs.Entity {
	components := []any{
		physics.DefaultRigidBodyBundle().WithType(typ).At(physics.Translation(x, y, z)),
		physics.DefaultColliderBundle(),
	}
	return w.storage.Spawn(append(components, extra...)...)
}

func bodyPosition(storage *ecs.Storage, e ecs.Entity) mgl32.Vec3 {
	return ecs.ReadComponent[physics.RigidBodyPosition](storage, e).Position.Translation
}

func reflectType[T any]() reflect.Type {
	return reflect.TypeFor[T]()
}

func reflectTypeOf(v any) reflect.Type {
	return reflect.TypeOf(v)
}
