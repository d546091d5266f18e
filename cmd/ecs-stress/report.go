package main

import (
	"fmt"
	"io"
	"runtime"
	"text/template"
	"time"

	"github.com/plus3/zen/ecs"
)

type Report struct {
	// Configuration
	Duration       time.Duration
	TickRate       float64
	Entities       int
	AttributeTypes int
	Systems        int
	Policy         string
	Seed           int64

	// Results
	TotalTime      time.Duration
	Worlds         []WorldReport
	GCPauseMetrics bool
	MemStatsStart  runtime.MemStats
	MemStatsEnd    runtime.MemStats
}

type WorldReport struct {
	Name      string
	TickTime  Stats
	World     ecs.WorldStats
	Scheduler *ecs.SchedulerStats
	Failures  int64
}

type Stats struct {
	Min     time.Duration
	Max     time.Duration
	Avg     time.Duration
	Samples []time.Duration
}

func (s *Stats) Finalize() {
	if len(s.Samples) == 0 {
		return
	}

	var total time.Duration
	s.Min = s.Samples[0]
	s.Max = s.Samples[0]

	for _, sample := range s.Samples {
		if sample < s.Min {
			s.Min = sample
		}
		if sample > s.Max {
			s.Max = sample
		}
		total += sample
	}
	s.Avg = total / time.Duration(len(s.Samples))
}

// AddWorld snapshots the stats of a finished simulation.
func (r *Report) AddWorld(sim *simulation) {
	wr := WorldReport{
		Name:      sim.world.Name(),
		World:     sim.world.CollectStats(),
		Scheduler: sim.scheduler.GetStats(),
	}
	if timing, ok := sim.timing.Get(); ok {
		wr.TickTime.Samples = timing.Samples
	}
	wr.TickTime.Finalize()
	for _, system := range wr.Scheduler.Systems {
		wr.Failures += system.ErrorCount
	}
	r.Worlds = append(r.Worlds, wr)
}

func (r *Report) Generate(w io.Writer) error {
	const reportTemplate = `
# ECS Stress Test Report

## Test Configuration
- **Run Duration:** {{.Duration}}
- **Tick Rate:** {{if .TickRate}}{{.TickRate}} Hz{{else}}unthrottled{{end}}
- **Initial Entities per World:** {{.Entities}}
- **Attribute Types:** {{.AttributeTypes}}
- **Random Systems:** {{.Systems}}
- **Failure Policy:** {{.Policy}}
- **Seed:** {{.Seed}}
- **Total Test Time:** {{.TotalTime}}
{{range .Worlds}}
## World {{.Name}}
- **Ticks:** {{.Scheduler.Ticks}}
- **System Executions:** {{.Scheduler.TotalExecutions}}
- **Failures:** {{.Failures}}
- **Entities:** {{.World.EntityCount}} live, {{.World.NamedEntityCount}} named
- **Tick Time:**
  - **Avg:** {{.TickTime.Avg}}
  - **Min:** {{.TickTime.Min}}
  - **Max:** {{.TickTime.Max}}

| System | Hz | Runs | Skips | Errors | Entities | Avg | Max |
|---|---|---|---|---|---|---|---|
{{- range .Scheduler.Systems}}
| {{.Name}} | {{hz .FrequencyHz}} | {{.ExecutionCount}} | {{.SkipCount}} | {{.ErrorCount}} | {{.EntitiesVisited}} | {{.AvgDuration}} | {{.MaxDuration}} |
{{- end}}

| Attribute | Count |
|---|---|
{{- range .World.Attributes}}
| {{.Name}} | {{.Count}} |
{{- end}}
{{end}}
## Memory Usage (MiB)
- Heap Alloc:     {{mb .MemStatsStart.HeapAlloc}} (start) -> {{mb .MemStatsEnd.HeapAlloc}} (end) -> delta: {{mb (bsub .MemStatsEnd.HeapAlloc .MemStatsStart.HeapAlloc)}}
- Total Alloc:    {{mb .MemStatsStart.TotalAlloc}} (start) -> {{mb .MemStatsEnd.TotalAlloc}} (end) -> delta: {{mb (bsub .MemStatsEnd.TotalAlloc .MemStatsStart.TotalAlloc)}}
- Sys Memory:     {{mb .MemStatsStart.Sys}} (start) -> {{mb .MemStatsEnd.Sys}} (end) -> delta: {{mb (bsub .MemStatsEnd.Sys .MemStatsStart.Sys)}}
- Num GC:         {{.MemStatsStart.NumGC}} (start) -> {{.MemStatsEnd.NumGC}} (end) -> delta: {{usub .MemStatsEnd.NumGC .MemStatsStart.NumGC}}

{{if .GCPauseMetrics}}
## GC Pause Durations
- **Total GC Pause:** {{.MemStatsEnd.PauseTotalNs | ns}}
- **Num GC Cycles:** {{ usub .MemStatsEnd.NumGC .MemStatsStart.NumGC }}
{{end}}
`

	fm := template.FuncMap{
		"mb": func(v any) string {
			switch val := v.(type) {
			case uint64:
				return fmt.Sprintf("%.2f", float64(val)/1024/1024)
			case int64:
				return fmt.Sprintf("%.2f", float64(val)/1024/1024)
			default:
				return "N/A"
			}
		},
		"bsub": func(a, b uint64) int64 {
			return int64(a) - int64(b)
		},
		"usub": func(a, b uint32) uint32 {
			return a - b
		},
		"ns": func(ns uint64) string {
			return time.Duration(ns).String()
		},
		"hz": func(hz float64) string {
			if hz == 0 {
				return "every tick"
			}
			return fmt.Sprintf("%g", hz)
		},
	}

	tmpl, err := template.New("report").Funcs(fm).Parse(reportTemplate)
	if err != nil {
		return err
	}

	return tmpl.Execute(w, r)
}
