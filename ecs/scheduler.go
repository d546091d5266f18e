package ecs

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// ErrReentrantTick is returned when RunTick is called from inside a running tick.
var ErrReentrantTick = errors.New("scheduler tick already in progress")

// FailurePolicy decides what a tick does after a system fails.
// The zero value, ContinueOnError, isolates systems from each other.
type FailurePolicy int

const (
	// ContinueOnError logs the failure, records it and moves on to the next system.
	ContinueOnError FailurePolicy = iota
	// AbortOnError stops the tick at the failing system and returns its error.
	// Systems after it are not run and their accumulators do not advance.
	// This is the classic behavior where any failure aborts the tick; callers
	// that rely on it must opt in with WithFailurePolicy(AbortOnError).
	AbortOnError
)

func (p FailurePolicy) String() string {
	switch p {
	case ContinueOnError:
		return "continue"
	case AbortOnError:
		return "abort"
	default:
		return fmt.Sprintf("FailurePolicy(%d)", int(p))
	}
}

// SchedulerStats provides statistics about scheduler execution.
type SchedulerStats struct {
	SystemCount     int
	Ticks           int64
	TotalExecutions int64
	Systems         []SystemStats
}

// SystemStats provides execution statistics for a single system.
type SystemStats struct {
	Id              SystemId
	Name            string
	FrequencyHz     float64
	ExecutionCount  int64
	SkipCount       int64
	ErrorCount      int64
	EntitiesVisited int64
	LastError       error
	MinDuration     time.Duration
	MaxDuration     time.Duration
	AvgDuration     time.Duration
	LastDuration    time.Duration
	TotalDuration   time.Duration
}

type systemStatsInternal struct {
	executionCount  int64
	skipCount       int64
	errorCount      int64
	entitiesVisited int64
	lastError       error
	minDuration     time.Duration
	maxDuration     time.Duration
	totalDuration   time.Duration
	lastDuration    time.Duration
}

type systemEntry struct {
	id          SystemId
	name        string
	query       Query
	forEach     func(EntityView, *TickContext) error
	once        func(*TickContext) error
	frequencyHz float64
	period      float64
	elapsed     float64
	stats       systemStatsInternal
}

// due adds dt to the accumulator and reports whether the system should run.
func (e *systemEntry) due(dt float64) bool {
	e.elapsed += dt
	return e.period == 0 || e.elapsed >= e.period
}

// SchedulerOption configures a Scheduler.
type SchedulerOption func(*Scheduler)

// WithFailurePolicy sets how a tick reacts to a failing system. Defaults to ContinueOnError.
func WithFailurePolicy(policy FailurePolicy) SchedulerOption {
	return func(s *Scheduler) {
		s.policy = policy
	}
}

// Scheduler manages and executes systems in registration order.
type Scheduler struct {
	world    *World
	logger   *zap.Logger
	policy   FailurePolicy
	systems  []*systemEntry
	commands *Commands
	ticks    int64
	running  bool
}

// NewScheduler creates a new scheduler for the given world.
func NewScheduler(w *World, opts ...SchedulerOption) *Scheduler {
	s := &Scheduler{
		world:    w,
		logger:   w.Logger().Named("scheduler"),
		commands: NewCommands(w),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// World returns the world the scheduler drives.
func (s *Scheduler) World() *World { return s.world }

// Policy returns the configured failure policy.
func (s *Scheduler) Policy() FailurePolicy { return s.policy }

// CreateSystem adds a system built from a query and callbacks.
//
// ForEach requires a query with at least one required attribute. A system with
// only a Once callback may use a query that declares resources alone.
func (s *Scheduler) CreateSystem(q Query, cb Callbacks, opts ...SystemOption) (SystemId, error) {
	if cb.ForEach == nil && cb.Once == nil {
		return 0, ErrNoCallbacks
	}
	if cb.ForEach != nil && len(q.Required) == 0 {
		return 0, ErrEmptyQuery
	}
	if err := q.validateKeys(s.world); err != nil {
		return 0, err
	}

	config := buildSystemConfig(opts)
	if config.err != nil {
		return 0, config.err
	}

	entry := s.add(q, config)
	entry.forEach = cb.ForEach
	entry.once = cb.Once
	return entry.id, nil
}

// Register adds a struct-based system to the scheduler and initializes its
// View and Resource fields. Every Resource field is declared as a resource the
// system waits for.
func (s *Scheduler) Register(system System, opts ...SystemOption) (id SystemId, err error) {
	config := buildSystemConfig(opts)
	if config.err != nil {
		return 0, config.err
	}
	if config.name == "" {
		systemType := reflect.TypeOf(system)
		if systemType.Kind() == reflect.Ptr {
			systemType = systemType.Elem()
		}
		config.name = systemType.Name()
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("register system %q: %w", config.name, recoveredError(r))
		}
	}()

	resources := s.initializeFields(system)
	entry := s.add(Query{Resources: resources}, config)
	entry.once = system.Execute
	return entry.id, nil
}

// MustRegister is like Register but panics on error.
func (s *Scheduler) MustRegister(system System, opts ...SystemOption) SystemId {
	id, err := s.Register(system, opts...)
	if err != nil {
		panic(err)
	}
	return id
}

func (s *Scheduler) add(q Query, config systemConfig) *systemEntry {
	entry := &systemEntry{
		id:          SystemId(len(s.systems) + 1),
		name:        config.name,
		query:       q,
		frequencyHz: config.frequencyHz,
		stats: systemStatsInternal{
			minDuration: time.Duration(1<<63 - 1),
		},
	}
	if entry.name == "" {
		entry.name = fmt.Sprintf("system-%d", entry.id)
	}
	if config.frequencyHz > 0 {
		entry.period = 1 / config.frequencyHz
	}
	s.systems = append(s.systems, entry)

	s.logger.Debug("system registered",
		zap.String("system", entry.name),
		zap.Uint32("id", uint32(entry.id)),
		zap.Float64("frequency_hz", entry.frequencyHz),
		zap.Uint64("query", q.Fingerprint()),
	)
	return entry
}

func (s *Scheduler) initializeFields(system System) []ResourceKey {
	systemValue := reflect.ValueOf(system)
	if systemValue.Kind() == reflect.Ptr {
		systemValue = systemValue.Elem()
	}

	if systemValue.Kind() != reflect.Struct {
		return nil
	}

	systemType := systemValue.Type()
	var resources []ResourceKey

	for i := 0; i < systemValue.NumField(); i++ {
		field := systemValue.Field(i)
		fieldType := systemType.Field(i)

		if !field.CanSet() || field.Kind() != reflect.Struct {
			continue
		}

		typeName := field.Type().Name()
		isView := strings.HasPrefix(typeName, "View[")
		isResource := strings.HasPrefix(typeName, "Resource[")
		if !isView && !isResource {
			continue
		}

		initMethod := field.Addr().MethodByName("Init")
		if !initMethod.IsValid() {
			panic("Init method not found on field: " + fieldType.Name)
		}
		initMethod.Call([]reflect.Value{reflect.ValueOf(s.world)})

		if isResource {
			if key, ok := field.Addr().Interface().(ResourceKey); ok {
				resources = append(resources, key)
			}
		}
	}
	return resources
}

// RunTick runs every due system once, in registration order, advancing each
// accumulator by dt. Commands queued by a system are applied right after it.
//
// With ContinueOnError the returned error combines every failure of the tick;
// with AbortOnError it is the first failure. Failures are *SystemError values.
func (s *Scheduler) RunTick(dt float64) error {
	if s.running {
		return ErrReentrantTick
	}
	s.running = true
	defer func() { s.running = false }()

	s.ticks++
	var errs error

	for _, entry := range s.systems {
		if !entry.due(dt) {
			continue
		}
		if !entry.query.ResourcesReady() {
			entry.stats.skipCount++
			s.logger.Debug("system skipped, resources not ready", zap.String("system", entry.name))
			continue
		}

		err := s.execute(entry, dt)
		entry.elapsed = 0
		if err == nil {
			continue
		}

		entry.stats.errorCount++
		entry.stats.lastError = err
		s.logger.Error("system failed",
			zap.String("system", entry.name),
			zap.Int64("tick", s.ticks),
			zap.Error(err),
		)

		if s.policy == AbortOnError {
			return err
		}
		errs = multierr.Append(errs, err)
	}

	return errs
}

func (s *Scheduler) execute(entry *systemEntry, dt float64) error {
	ctx := &TickContext{
		DeltaTime: dt,
		World:     s.world,
		Commands:  s.commands,
		System:    entry.id,
		Name:      entry.name,
		resources: entry.query.Resources,
	}

	start := time.Now()
	var current EntityId
	err := s.guard(entry, &current, func() error {
		return s.runCallbacks(entry, ctx, &current)
	})
	flushErr := s.guard(entry, nil, func() error {
		s.commands.Flush()
		return nil
	})
	duration := time.Since(start)

	stats := &entry.stats
	stats.executionCount++
	stats.lastDuration = duration
	stats.totalDuration += duration
	if duration < stats.minDuration {
		stats.minDuration = duration
	}
	if duration > stats.maxDuration {
		stats.maxDuration = duration
	}

	return multierr.Append(err, flushErr)
}

// guard turns errors and panics raised by fn into a *SystemError.
func (s *Scheduler) guard(entry *systemEntry, current *EntityId, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = recoveredError(r)
		}
		if err != nil {
			systemErr := &SystemError{System: entry.id, Name: entry.name, Err: err}
			if current != nil {
				systemErr.Entity = *current
			}
			err = systemErr
		}
	}()
	return fn()
}

func (s *Scheduler) runCallbacks(entry *systemEntry, ctx *TickContext, current *EntityId) error {
	if len(entry.query.Required) > 0 {
		ctx.Entities = s.world.evaluate(entry.query, entry.query.pivot())
	}

	if entry.once != nil {
		if err := entry.once(ctx); err != nil {
			return err
		}
	}

	if entry.forEach == nil {
		return nil
	}
	for _, snapshot := range ctx.Entities {
		// earlier callbacks may have changed the entity since the snapshot
		view, ok := entry.query.refresh(s.world, snapshot.Id)
		if !ok {
			continue
		}
		*current = view.Id
		entry.stats.entitiesVisited++
		if err := entry.forEach(view, ctx); err != nil {
			return err
		}
	}
	*current = 0
	return nil
}

// Run executes ticks at the given interval until the context is cancelled,
// passing the measured wall time between ticks as the delta time.
// Under AbortOnError the first failing tick ends the loop with its error.
func (s *Scheduler) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	lastTime := time.Now()

	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			dt := now.Sub(lastTime).Seconds()
			lastTime = now
			if err := s.RunTick(dt); err != nil && s.policy == AbortOnError {
				return err
			}
		}
	}
}

// GetStats returns statistics about system execution.
func (s *Scheduler) GetStats() *SchedulerStats {
	stats := &SchedulerStats{
		SystemCount: len(s.systems),
		Ticks:       s.ticks,
		Systems:     make([]SystemStats, len(s.systems)),
	}

	var totalExecs int64
	for i, entry := range s.systems {
		internal := entry.stats
		avgDuration := time.Duration(0)
		minDuration := internal.minDuration
		if internal.executionCount > 0 {
			avgDuration = internal.totalDuration / time.Duration(internal.executionCount)
		} else {
			minDuration = 0
		}

		stats.Systems[i] = SystemStats{
			Id:              entry.id,
			Name:            entry.name,
			FrequencyHz:     entry.frequencyHz,
			ExecutionCount:  internal.executionCount,
			SkipCount:       internal.skipCount,
			ErrorCount:      internal.errorCount,
			EntitiesVisited: internal.entitiesVisited,
			LastError:       internal.lastError,
			MinDuration:     minDuration,
			MaxDuration:     internal.maxDuration,
			AvgDuration:     avgDuration,
			LastDuration:    internal.lastDuration,
			TotalDuration:   internal.totalDuration,
		}
		totalExecs += internal.executionCount
	}

	stats.TotalExecutions = totalExecs
	return stats
}
