package physics

import "github.com/go-gl/mathgl/mgl32"

// Config is the storage-wide physics configuration. It lives in the store as a singleton; a
// StepSystem inserts DefaultConfig when none exists.
type Config struct {
	Gravity mgl32.Vec3
	// Timestep is the fixed step length in seconds. Zero steps by the frame's delta time.
	Timestep float32
	// Enabled pauses the pipeline when false. Change flags keep accumulating meanwhile.
	Enabled bool
}

// DefaultConfig returns an enabled world with earth gravity stepped by the frame time.
func DefaultConfig() Config {
	return Config{
		Gravity: mgl32.Vec3{0, -9.81, 0},
		Enabled: true,
	}
}

// Stats is updated by the StepSystem every frame.
type Stats struct {
	Steps        uint64
	FailedSteps  uint64
	ContactPairs int
	Bodies       int
	Colliders    int
}
