package main

import (
	"fmt"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"github.com/plus3/zen/ecs"
)

var frequencies = []float64{0, 0, 0, 10, 20, 30}

// RegisterRandomSystems adds count ForEach systems, each requiring one or two
// payload types and sometimes excluding a third.
func RegisterRandomSystems(s *ecs.Scheduler, rng *rand.Rand, types []attributeType, count int) error {
	for i := range count {
		perm := rng.Perm(len(types))
		required := perm[:min(rng.Intn(2)+1, len(perm))]

		var q ecs.Query
		for _, idx := range required {
			q.Required = append(q.Required, types[idx].key)
		}
		if len(perm) > len(required) && rng.Intn(3) == 0 {
			q.Excluded = append(q.Excluded, types[perm[len(required)]].key)
		}
		if rng.Intn(2) == 0 {
			q.Pivot = ecs.PivotSmallest
		}

		bumps := make([]func(ecs.EntityView, float64) bool, len(required))
		for j, idx := range required {
			bumps[j] = types[idx].bump
		}

		opts := []ecs.SystemOption{ecs.WithName(fmt.Sprintf("payload-%02d", i))}
		if hz := frequencies[rng.Intn(len(frequencies))]; hz > 0 {
			opts = append(opts, ecs.WithFrequency(hz))
		}

		_, err := s.CreateSystem(q, ecs.Callbacks{
			ForEach: func(view ecs.EntityView, ctx *ecs.TickContext) error {
				for _, bump := range bumps {
					bump(view, ctx.DeltaTime)
				}
				return nil
			},
		}, opts...)
		if err != nil {
			return err
		}
	}
	return nil
}

// churnSystem deletes a few random entities and spawns replacements through
// the command buffer every run, so stores keep recycling slots.
type churnSystem struct {
	rng   *rand.Rand
	types []attributeType
	rate  int
}

func (c *churnSystem) Execute(ctx *ecs.TickContext) error {
	w := ctx.World
	victims := make([]ecs.EntityId, 0, c.rate)
	for id := range w.Entities() {
		if len(victims) == c.rate {
			break
		}
		if c.rng.Intn(8) == 0 {
			victims = append(victims, id)
		}
	}

	for _, id := range victims {
		ctx.Commands.Delete(id)
	}
	ctx.Commands.Defer(func() {
		for range victims {
			SpawnRandomEntity(w, c.rng, c.types, 4)
		}
	})
	return nil
}

// TickTiming is a resource written by the probe systems that bracket a tick.
type TickTiming struct {
	start   time.Time
	Samples []time.Duration
}

type tickStart struct {
	Timing ecs.Resource[TickTiming]
}

func (t *tickStart) Execute(ctx *ecs.TickContext) error {
	t.Timing.Ref().start = time.Now()
	return nil
}

type tickEnd struct {
	Timing ecs.Resource[TickTiming]
}

func (t *tickEnd) Execute(ctx *ecs.TickContext) error {
	timing := t.Timing.Ref()
	timing.Samples = append(timing.Samples, time.Since(timing.start))
	return nil
}

// progressSystem logs a heartbeat, throttled to once per second of simulated time.
type progressSystem struct{}

func (progressSystem) Execute(ctx *ecs.TickContext) error {
	ctx.World.Logger().Debug("progress",
		zap.Int("entities", ctx.World.EntityCount()),
		zap.Int("pending_commands", ctx.Commands.Len()),
	)
	return nil
}
