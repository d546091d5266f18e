package ecs

import (
	"errors"
	"math"
)

// SystemId identifies a system within its Scheduler.
type SystemId uint32

// System represents a struct-based behavior run once per due tick.
// User-defined systems can include View and Resource fields, which the
// Scheduler initializes at registration, as well as custom state fields
// that persist between ticks. A Resource field also makes the system wait
// until that resource is set.
type System interface {
	Execute(ctx *TickContext) error
}

// Callbacks holds the behavior of a system created from a Query.
// At least one must be set. Once runs first, then ForEach for every match.
type Callbacks struct {
	ForEach func(view EntityView, ctx *TickContext) error
	Once    func(ctx *TickContext) error
}

type systemConfig struct {
	name        string
	frequencyHz float64
	err         error
}

// SystemOption configures a system at creation.
type SystemOption func(*systemConfig)

// WithFrequency throttles the system to run at most hz times per second of
// accumulated tick time. Without it the system runs every tick.
func WithFrequency(hz float64) SystemOption {
	return func(c *systemConfig) {
		if hz <= 0 || math.IsInf(hz, 0) || math.IsNaN(hz) {
			c.err = errors.Join(c.err, ErrInvalidFrequency)
			return
		}
		c.frequencyHz = hz
	}
}

// WithName sets the name used in logs, errors and stats.
func WithName(name string) SystemOption {
	return func(c *systemConfig) {
		c.name = name
	}
}

func buildSystemConfig(opts []SystemOption) systemConfig {
	var config systemConfig
	for _, opt := range opts {
		opt(&config)
	}
	return config
}
