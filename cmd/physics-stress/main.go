package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/pkg/profile"
	"github.com/plus3/physbridge/ecs"
	"github.com/plus3/physbridge/physics"
	"go.uber.org/zap"
)

func main() {
	duration := flag.Duration("duration", 10*time.Second, "The total duration the test should run for.")
	bodyCount := flag.Int("bodies", 2000, "The initial number of dynamic bodies to create.")
	churn := flag.Float64("churn", 0.01, "Fraction of bodies despawned and respawned every frame.")
	timestep := flag.Duration("timestep", 0, "Fixed physics step; zero steps by the frame time.")
	gcPauseMetrics := flag.Bool("gc-pause-metrics", false, "Enable detailed GC pause metrics in the report.")
	profileMode := flag.String("profile", "", "Write a profile: cpu or mem.")
	profilePath := flag.String("profile-path", ".", "Directory profiles are written to.")
	verbose := flag.Bool("verbose", false, "Log physics internals at debug level.")
	flag.Parse()

	logger, err := newLogger(*verbose)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()
	physics.SetLogger(logger.Named("physics"))

	switch *profileMode {
	case "":
	case "cpu":
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(*profilePath), profile.NoShutdownHook).Stop()
	case "mem":
		defer profile.Start(profile.MemProfileAllocs, profile.ProfilePath(*profilePath), profile.NoShutdownHook).Stop()
	default:
		logger.Fatal("unknown profile mode", zap.String("profile", *profileMode))
	}

	logger.Info("starting physics stress test")

	// 1. Setup Registry, Storage, and Scheduler
	registry := ecs.NewComponentRegistry()
	physics.RegisterComponents(registry)
	ecs.RegisterComponent[Team](registry)
	storage := ecs.NewStorage(registry)

	cfg := physics.DefaultConfig()
	cfg.Timestep = float32(timestep.Seconds())
	storage.AddSingleton(cfg)

	pipeline := physics.NewBasicPipeline()
	step := physics.NewStepSystem(pipeline, physics.WithQuery[Team](storage, teamFilter{}))

	scheduler := ecs.NewScheduler(storage)
	scheduler.Register(&ChurnSystem{Fraction: *churn})
	scheduler.Register(&KickSystem{Every: 120})
	scheduler.Register(step)

	// 2. Populate Storage with the scene
	logger.Info("populating storage", zap.Int("bodies", *bodyCount))
	SpawnGround(storage)
	for i := 0; i < *bodyCount; i++ {
		SpawnBody(storage, i)
	}
	logger.Info("population complete", zap.Int("entities", storage.EntityCount()))

	// 3. Run the simulation loop
	report := &Report{
		Duration:       *duration,
		Bodies:         *bodyCount,
		Churn:          *churn,
		Timestep:       *timestep,
		GCPauseMetrics: *gcPauseMetrics,
		UpdateTime: Stats{
			Samples: make([]time.Duration, 0),
		},
	}

	runtime.ReadMemStats(&report.MemStatsStart)

	logger.Info("running simulation", zap.Duration("duration", *duration))
	ctx, cancel := context.WithTimeout(context.Background(), *duration)
	defer cancel()

	startTime := time.Now()
	var totalUpdates int64
	lastFrameTime := time.Now()

Loop:
	for {
		select {
		case <-ctx.Done():
			break Loop
		default:
			deltaTime := time.Since(lastFrameTime)
			lastFrameTime = time.Now()

			updateStart := time.Now()
			scheduler.Once(float64(deltaTime) / float64(time.Second))
			updateDuration := time.Since(updateStart)

			report.UpdateTime.Samples = append(report.UpdateTime.Samples, updateDuration)
			totalUpdates++
		}
	}

	report.TotalTime = time.Since(startTime)
	report.TotalUpdates = totalUpdates
	report.UpdateTime.Finalize()
	runtime.ReadMemStats(&report.MemStatsEnd)

	if stats := step.Stats.Get(); stats != nil {
		report.Physics = *stats
	}
	report.Storage = storage.CollectStats()
	report.Scheduler = scheduler.GetStats()
	report.Awake = countAwake(step.Bodies())

	logger.Info("simulation finished",
		zap.Int64("updates", totalUpdates),
		zap.Uint64("steps", report.Physics.Steps),
		zap.Uint64("failed_steps", report.Physics.FailedSteps))

	// 4. Generate Report to Console
	fmt.Println("\n\n--- Physics Stress Test Report ---")
	if err := report.Generate(os.Stdout); err != nil {
		logger.Fatal("failed to generate report", zap.Error(err))
	}
	fmt.Println("--- End of Report ---")
}

func newLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	if !verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	return cfg.Build()
}
