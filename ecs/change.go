package ecs

// ComponentTicks records the store tick at which a component was added and last changed.
type ComponentTicks struct {
	Added   uint32
	Changed uint32
}

// IsAdded reports whether the component was added after the given tick
func (t ComponentTicks) IsAdded(since uint32) bool {
	return t.Added > since
}

// IsChanged reports whether the component was added or written after the given tick.
func (t ComponentTicks) IsChanged(since uint32) bool {
	return t.Changed > since || t.Added > since
}

// ChangeTracker remembers when its owner last observed the store.
// Each observer (a system, a change-detection pass) keeps its own tracker.
type ChangeTracker struct {
	lastRun uint32
}

// Begin starts an observation. It returns the tick of the previous observation, which callers
// compare against with ComponentTicks.IsChanged. Writes made after Begin returns are stamped
// with a strictly newer tick and will be seen by the next observation.
func (c *ChangeTracker) Begin(s *Storage) uint32 {
	since := c.lastRun
	c.lastRun = s.tick
	s.tick++
	return since
}

// LastRun returns the tick recorded by the most recent Begin
func (c *ChangeTracker) LastRun() uint32 {
	return c.lastRun
}

// ChangeTick returns the tick new writes are currently stamped with
func (s *Storage) ChangeTick() uint32 {
	return s.tick
}
