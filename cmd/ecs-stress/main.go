package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/plus3/zen/ecs"
	"github.com/plus3/zen/internal/config"
	"github.com/plus3/zen/internal/logging"
)

func main() {
	configPath := flag.String("config", "", "TOML or YAML config file. Built-in defaults are used when empty.")
	duration := flag.Duration("duration", 0, "Overrides simulation.duration when set.")
	entityCount := flag.Int("entities", -1, "Overrides simulation.entities when set.")
	gcPauseMetrics := flag.Bool("gc-pause-metrics", false, "Enable detailed GC pause metrics in the report.")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		cfg = loaded
	}
	if *duration > 0 {
		cfg.Simulation.Duration = *duration
	}
	if *entityCount >= 0 {
		cfg.Simulation.Entities = *entityCount
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "build logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	report, err := run(cfg, logger)
	if err != nil {
		logger.Error("stress test failed", zap.Error(err))
	}
	if report == nil {
		os.Exit(1)
	}
	report.GCPauseMetrics = *gcPauseMetrics

	fmt.Println("\n\n--- Stress Test Report ---")
	if err := report.Generate(os.Stdout); err != nil {
		logger.Fatal("generate report", zap.Error(err))
	}
	fmt.Println("--- End of Report ---")
}

type simulation struct {
	world     *ecs.World
	scheduler *ecs.Scheduler
	timing    *ecs.Resource[TickTiming]
}

func parsePolicy(name string) (ecs.FailurePolicy, error) {
	switch name {
	case ecs.ContinueOnError.String():
		return ecs.ContinueOnError, nil
	case ecs.AbortOnError.String():
		return ecs.AbortOnError, nil
	}
	return 0, fmt.Errorf("unknown failure policy %q", name)
}

// newSimulation builds and populates one world with its scheduler.
func newSimulation(u *ecs.Universe, name string, cfg *config.Config, policy ecs.FailurePolicy, seed int64, logger *zap.Logger) (*simulation, error) {
	rng := rand.New(rand.NewSource(seed))
	w := u.Create(name, ecs.WithLogger(logger))

	types, err := RegisterAttributeTypes(w, cfg.Simulation.AttributeTypes)
	if err != nil {
		return nil, fmt.Errorf("register attributes: %w", err)
	}
	timing := ecs.ProvideResource(w, TickTiming{})

	s := ecs.NewScheduler(w, ecs.WithFailurePolicy(policy))
	s.MustRegister(&tickStart{}, ecs.WithName("tick-start"))
	if err := RegisterRandomSystems(s, rng, types, cfg.Simulation.Systems); err != nil {
		return nil, fmt.Errorf("register systems: %w", err)
	}
	s.MustRegister(&churnSystem{rng: rng, types: types, rate: max(1, cfg.Simulation.Entities/1000)},
		ecs.WithName("churn"), ecs.WithFrequency(10))
	s.MustRegister(progressSystem{}, ecs.WithName("progress"), ecs.WithFrequency(1))
	s.MustRegister(&tickEnd{}, ecs.WithName("tick-end"))

	for range cfg.Simulation.Entities {
		SpawnRandomEntity(w, rng, types, 5)
	}

	return &simulation{world: w, scheduler: s, timing: timing}, nil
}

func run(cfg *config.Config, logger *zap.Logger) (*Report, error) {
	policy, err := parsePolicy(cfg.Scheduler.FailurePolicy)
	if err != nil {
		return nil, err
	}

	seed := cfg.Simulation.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	logger.Info("starting ECS stress test",
		zap.Int("worlds", cfg.Simulation.Worlds),
		zap.Int("entities", cfg.Simulation.Entities),
		zap.Int("attribute_types", cfg.Simulation.AttributeTypes),
		zap.Int("systems", cfg.Simulation.Systems),
		zap.Int64("seed", seed),
	)

	universe := ecs.NewUniverse()
	sims := make([]*simulation, 0, cfg.Simulation.Worlds)
	for i := range cfg.Simulation.Worlds {
		sim, err := newSimulation(universe, fmt.Sprintf("world-%d", i), cfg, policy, seed+int64(i), logger)
		if err != nil {
			return nil, err
		}
		sims = append(sims, sim)
	}
	logger.Info("population complete", zap.Strings("worlds", universe.Names()))

	report := &Report{
		Duration:       cfg.Simulation.Duration,
		TickRate:       cfg.Simulation.TickRate,
		Entities:       cfg.Simulation.Entities,
		AttributeTypes: cfg.Simulation.AttributeTypes,
		Systems:        cfg.Simulation.Systems,
		Policy:         policy.String(),
		Seed:           seed,
	}
	runtime.ReadMemStats(&report.MemStatsStart)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, cfg.Simulation.Duration)
	defer cancel()

	// worlds share nothing, so each one ticks on its own goroutine
	g, gctx := errgroup.WithContext(ctx)
	startTime := time.Now()
	for _, sim := range sims {
		g.Go(func() error {
			return sim.drive(gctx, cfg.Simulation.TickRate)
		})
	}
	runErr := g.Wait()

	report.TotalTime = time.Since(startTime)
	runtime.ReadMemStats(&report.MemStatsEnd)
	for _, sim := range sims {
		report.AddWorld(sim)
	}
	logger.Info("simulation finished", zap.Duration("elapsed", report.TotalTime))

	return report, runErr
}

// drive ticks at rate Hz, or as fast as possible when rate is 0.
func (s *simulation) drive(ctx context.Context, rate float64) error {
	if rate > 0 {
		return s.scheduler.Run(ctx, time.Duration(float64(time.Second)/rate))
	}

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		now := time.Now()
		err := s.scheduler.RunTick(now.Sub(last).Seconds())
		last = now
		if err != nil && s.scheduler.Policy() == ecs.AbortOnError {
			return err
		}
	}
}
