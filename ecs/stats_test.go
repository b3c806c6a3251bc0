package ecs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type statsMass float64
type statsLabel string

func TestCollectStats(t *testing.T) {
	registry := NewComponentRegistry()
	RegisterComponent[statsMass](registry)
	RegisterComponent[statsLabel](registry)
	storage := NewStorage(registry)

	empty := storage.CollectStats()
	assert.Zero(t, empty.ArchetypeCount)
	assert.Zero(t, empty.TotalEntityCount)
	assert.Zero(t, empty.SingletonCount)

	storage.Spawn(statsMass(1), statsLabel("a"))
	storage.Spawn(statsMass(2), statsLabel("b"))
	lone := storage.Spawn(statsMass(3))
	storage.AddSingleton(statsLabel("world"))
	storage.AddSingleton(statsMass(9.81))

	stats := storage.CollectStats()
	assert.Equal(t, 2, stats.ArchetypeCount)
	assert.Equal(t, 3, stats.TotalEntityCount)
	assert.Equal(t, 2, stats.SingletonCount)
	assert.Equal(t, []string{"ecs.statsLabel", "ecs.statsMass"}, stats.SingletonTypes)

	counts := map[int]int{}
	for _, arch := range stats.ArchetypeBreakdown {
		counts[len(arch.ComponentTypes)] = arch.EntityCount
	}
	assert.Equal(t, map[int]int{1: 1, 2: 2}, counts)

	t.Run("empty archetypes are skipped", func(t *testing.T) {
		storage.Delete(lone)
		stats := storage.CollectStats()
		require.Len(t, stats.ArchetypeBreakdown, 1)
		assert.Equal(t, 2, stats.ArchetypeBreakdown[0].EntityCount)
		assert.Equal(t, 2, stats.TotalEntityCount)
	})
}

type sleepySystem struct {
	runs  int
	sleep time.Duration
}

func (s *sleepySystem) Execute(frame *UpdateFrame) {
	s.runs++
	time.Sleep(s.sleep)
}

func TestSchedulerStats(t *testing.T) {
	storage := NewStorage(NewComponentRegistry())
	scheduler := NewScheduler(storage)

	stats := scheduler.GetStats()
	assert.Zero(t, stats.SystemCount)
	assert.Zero(t, stats.TotalExecutions)

	fast := &sleepySystem{}
	slow := &sleepySystem{sleep: 2 * time.Millisecond}
	scheduler.Register(fast)
	scheduler.Register(slow)

	for range 3 {
		scheduler.Once(0.016)
	}

	stats = scheduler.GetStats()
	assert.Equal(t, 2, stats.SystemCount)
	assert.Equal(t, int64(6), stats.TotalExecutions)
	assert.Equal(t, 3, fast.runs)

	require.Len(t, stats.Systems, 2)
	for _, sys := range stats.Systems {
		assert.Equal(t, "sleepySystem", sys.Name)
		assert.Equal(t, int64(3), sys.ExecutionCount)
		assert.LessOrEqual(t, sys.MinDuration, sys.AvgDuration)
		assert.LessOrEqual(t, sys.AvgDuration, sys.MaxDuration)
		assert.Equal(t, sys.TotalDuration/3, sys.AvgDuration)
	}
	assert.GreaterOrEqual(t, stats.Systems[1].MinDuration, 2*time.Millisecond)
}
