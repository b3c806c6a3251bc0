package physics

import (
	"github.com/plus3/physbridge/ecs"
	"go.uber.org/zap"
)

// StepSystem runs one physics step per frame. Every frame it links new colliders to their
// bodies, translates component writes into change flags, steps the pipeline and acknowledges
// the pipeline's own writes so they are not reported back to it.
//
// Removal trackers are cleared by the scheduler once all systems ran, so removals made by
// systems registered after a StepSystem are only seen when they go through Commands.
type StepSystem struct {
	Config ecs.Singleton[Config]
	Stats  ecs.Singleton[Stats]

	Pipeline Pipeline
	// Hooks may be nil.
	Hooks PhysicsHooks

	storage   *ecs.Storage
	bodies    *RigidBodyComponentsSet
	colliders *ColliderComponentsSet
	queries   *QueryPipelineColliderComponentsSet

	attach          attachment
	attachColliders *ecs.View[colliderAttach]
	attachBodies    *ecs.View[bodyColliders]
	tracker         ecs.ChangeTracker

	removedColliders []ColliderHandle
	removedBodies    []RigidBodyHandle
}

// NewStepSystem builds a step system driving pipeline. hooks may be nil.
func NewStepSystem(pipeline Pipeline, hooks PhysicsHooks) *StepSystem {
	return &StepSystem{Pipeline: pipeline, Hooks: hooks}
}

func (s *StepSystem) bind(storage *ecs.Storage) {
	if s.storage == storage {
		return
	}
	s.storage = storage
	s.bodies = NewRigidBodyComponentsSet(storage)
	s.colliders = NewColliderComponentsSet(storage)
	s.queries = NewQueryPipelineColliderComponentsSet(storage)
	s.attachColliders = ecs.NewView[colliderAttach](storage)
	s.attachBodies = ecs.NewView[bodyColliders](storage)
	s.tracker = ecs.ChangeTracker{}
	s.Config.Init(storage)
	s.Stats.Init(storage)
}

// Bodies returns the rigid-body set of the bound storage, or nil before the first frame.
func (s *StepSystem) Bodies() *RigidBodyComponentsSet { return s.bodies }

// Colliders returns the collider set of the bound storage, or nil before the first frame.
func (s *StepSystem) Colliders() *ColliderComponentsSet { return s.colliders }

// QueryPipeline returns the scene-query collider set, or nil before the first frame.
func (s *StepSystem) QueryPipeline() *QueryPipelineColliderComponentsSet { return s.queries }

// Execute runs one physics frame.
func (s *StepSystem) Execute(frame *ecs.UpdateFrame) {
	storage := frame.Storage
	s.bind(storage)

	if s.Config.Get() == nil {
		storage.AddSingleton(DefaultConfig())
	}
	if s.Stats.Get() == nil {
		storage.AddSingleton(Stats{})
	}
	cfg := s.Config.Get()
	stats := s.Stats.Get()

	since := s.tracker.Begin(storage)
	s.attach.run(storage, s.attachColliders, s.attachBodies, since)
	s.bodies.ComputeChanges(since)
	s.colliders.ComputeChanges(since)
	s.bodies.UpdateActivation(since)

	s.removedColliders = s.removedColliders[:0]
	for _, e := range ecs.Removed[ColliderShape](storage) {
		s.removedColliders = append(s.removedColliders, ColliderHandleOf(e))
	}
	s.removedBodies = s.removedBodies[:0]
	for _, e := range ecs.Removed[RigidBodyType](storage) {
		s.removedBodies = append(s.removedBodies, RigidBodyHandleOf(e))
	}

	if cfg.Enabled && s.Pipeline != nil {
		dt := cfg.Timestep
		if dt == 0 {
			dt = float32(frame.DeltaTime)
		}
		ctx := &StepContext{
			Dt:               dt,
			Gravity:          cfg.Gravity,
			Bodies:           s.bodies,
			Colliders:        s.colliders,
			Hooks:            s.Hooks,
			RemovedColliders: s.removedColliders,
			RemovedBodies:    s.removedBodies,
		}
		if err := s.Pipeline.Step(ctx); err != nil {
			stats.FailedSteps++
			Logger().Warn("physics step failed", zap.Uint64("step", stats.Steps), zap.Error(err))
		} else {
			stats.Steps++
			stats.ContactPairs = ctx.Contacts
		}
	}

	stats.Bodies = s.bodies.Len()
	stats.Colliders = s.colliders.Len()

	s.tracker.Begin(storage)
}
