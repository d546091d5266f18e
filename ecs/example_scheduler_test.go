package ecs_test

import (
	"context"
	"fmt"
	"time"

	"github.com/plus3/zen/ecs"
)

type Transform struct {
	X, Y float32
}

type Speed struct {
	DX, DY float32
}

type Hitpoints struct {
	Current, Max int
}

type PhysicsSystem struct {
	Entities ecs.View[struct {
		*Transform
		*Speed
	}]
}

func (s *PhysicsSystem) Execute(ctx *ecs.TickContext) error {
	for entity := range s.Entities.Values() {
		entity.Transform.X += entity.Speed.DX * float32(ctx.DeltaTime)
		entity.Transform.Y += entity.Speed.DY * float32(ctx.DeltaTime)
	}
	return nil
}

// ExampleScheduler demonstrates building a simulation loop from a query based
// system and a struct system. Systems run in registration order, every tick,
// and each one sees the writes of the systems before it.
func ExampleScheduler() {
	w := ecs.NewWorld()
	ecs.MustRegisterAttribute[Transform](w)
	ecs.MustRegisterAttribute[Speed](w)
	hitpoints := ecs.MustRegisterAttribute[Hitpoints](w)

	w.Spawn(Transform{X: 0, Y: 0}, Speed{DX: 10, DY: 5}, Hitpoints{Current: 80, Max: 100})
	w.Spawn(Transform{X: 100, Y: 100}, Speed{DX: -5, DY: -5}, Hitpoints{Current: 95, Max: 100})

	scheduler := ecs.NewScheduler(w)
	scheduler.MustRegister(&PhysicsSystem{})
	scheduler.CreateSystem(
		ecs.Query{Required: []ecs.AttributeKey{hitpoints}},
		ecs.Callbacks{ForEach: func(view ecs.EntityView, ctx *ecs.TickContext) error {
			hp := ecs.ViewRef(view, hitpoints)
			hp.Current = min(hp.Current+int(10*ctx.DeltaTime), hp.Max)
			return nil
		}},
		ecs.WithName("healing"),
	)

	scheduler.RunTick(1.0)

	view := ecs.NewView[struct {
		*Transform
		*Hitpoints
	}](w)

	fmt.Println("After one tick:")
	for item := range view.Values() {
		fmt.Printf("Position: (%.0f, %.0f), Health: %d/%d\n",
			item.Transform.X, item.Transform.Y,
			item.Hitpoints.Current, item.Hitpoints.Max)
	}

	// Output:
	// After one tick:
	// Position: (10, 5), Health: 90/100
	// Position: (95, 95), Health: 100/100
}

// ExampleScheduler_Run demonstrates running a continuous loop.
// Run blocks and ticks all systems at a fixed interval until the context is
// cancelled, passing the measured time between ticks as the delta time.
func ExampleScheduler_Run() {
	w := ecs.NewWorld()
	ecs.MustRegisterAttribute[Transform](w)
	ecs.MustRegisterAttribute[Speed](w)

	w.Spawn(Transform{X: 0, Y: 0}, Speed{DX: 1, DY: 1})

	scheduler := ecs.NewScheduler(w)
	scheduler.MustRegister(&PhysicsSystem{})

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	if err := scheduler.Run(ctx, 16*time.Millisecond); err != nil {
		fmt.Println(err)
	}

	fmt.Println("Scheduler stopped")
	// Output:
	// Scheduler stopped
}

type GameTime struct {
	TotalTicks int
	TotalTime  float64
}

type TimeTracker struct {
	GameTime ecs.Resource[GameTime]
}

func (s *TimeTracker) Execute(ctx *ecs.TickContext) error {
	gameTime := s.GameTime.Ref()
	gameTime.TotalTicks++
	gameTime.TotalTime += ctx.DeltaTime
	return nil
}

// ExampleScheduler_withResources demonstrates resources in systems.
// Resource fields of struct systems are initialized by the Scheduler, and a
// system declaring a resource is skipped until that resource has a value.
func ExampleScheduler_withResources() {
	w := ecs.NewWorld()

	scheduler := ecs.NewScheduler(w)
	scheduler.MustRegister(&TimeTracker{})

	// not set yet: the tracker is skipped
	scheduler.RunTick(0.016)

	ecs.SetResource(w, GameTime{})
	scheduler.RunTick(0.016)
	scheduler.RunTick(0.016)
	scheduler.RunTick(0.016)

	gameTime, _ := ecs.GetResource[GameTime](w)
	fmt.Printf("Ticks: %d, Time: %.3f\n", gameTime.TotalTicks, gameTime.TotalTime)

	stats := scheduler.GetStats().Systems[0]
	fmt.Printf("%s: %d runs, %d skipped\n", stats.Name, stats.ExecutionCount, stats.SkipCount)

	// Output:
	// Ticks: 3, Time: 0.048
	// TimeTracker: 3 runs, 1 skipped
}

// ExampleWithFrequency demonstrates throttling a system. A 2 Hz system ticked
// every 0.3 seconds runs once its accumulated time reaches 0.5 seconds, then
// starts accumulating from zero again.
func ExampleWithFrequency() {
	w := ecs.NewWorld()
	scheduler := ecs.NewScheduler(w)

	elapsed := 0.0
	scheduler.CreateSystem(ecs.Query{}, ecs.Callbacks{
		Once: func(ctx *ecs.TickContext) error {
			fmt.Printf("ran at t=%.1f\n", elapsed)
			return nil
		},
	}, ecs.WithFrequency(2))

	for i := 0; i < 4; i++ {
		elapsed += 0.3
		scheduler.RunTick(0.3)
	}

	// Output:
	// ran at t=0.6
	// ran at t=1.2
}
