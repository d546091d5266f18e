package debugui

import (
	"fmt"
	"time"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/zen/ecs"
)

func NewPerformanceStatsPanel(historyFrames int) PerformanceStatsPanel {
	return PerformanceStatsPanel{
		historyFrames: historyFrames,
		frameHistory:  make([]float32, historyFrames),
		frameIndex:    0,
	}
}

// Record adds a frame time sample in seconds to the history ring.
func (ps *PerformanceStatsPanel) Record(deltaTime float32) {
	ps.frameHistory[ps.frameIndex] = deltaTime * 1000.0
	ps.frameIndex = (ps.frameIndex + 1) % ps.historyFrames
}

// AverageFrameTime returns the mean of the recorded history in milliseconds.
func (ps *PerformanceStatsPanel) AverageFrameTime() float32 {
	var avgFrameTime float32
	for _, ft := range ps.frameHistory {
		avgFrameTime += ft
	}
	return avgFrameTime / float32(ps.historyFrames)
}

// Render draws world and scheduler statistics. scheduler may be nil.
func (ps *PerformanceStatsPanel) Render(w *ecs.World, scheduler *ecs.Scheduler, deltaTime float32) {
	if !imgui.BeginV("Performance Stats", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return
	}

	ps.Record(deltaTime)

	stats := w.CollectStats()

	imgui.Text(fmt.Sprintf("World: %s", w.ID()))
	imgui.Text(fmt.Sprintf("Total Entities: %d (%d named)", stats.EntityCount, stats.NamedEntityCount))
	imgui.Text(fmt.Sprintf("Attribute Types: %d", stats.AttributeCount))
	imgui.Text(fmt.Sprintf("Resources: %d (%d set)", stats.ResourceCount, stats.ResourcesSet))

	avgFrameTime := ps.AverageFrameTime()
	if avgFrameTime > 0 {
		imgui.Text(fmt.Sprintf("Avg Frame Time: %.2f ms (%.0f FPS)", avgFrameTime, 1000.0/avgFrameTime))
	}

	imgui.Separator()
	imgui.Text("Frame Time Graph (ms)")
	imgui.PlotLinesFloatPtr("##frametime", &ps.frameHistory[0], int32(len(ps.frameHistory)))

	if imgui.TreeNodeStr("Attribute Details") {
		const tableFlags = imgui.TableFlagsBorders | imgui.TableFlagsRowBg
		if imgui.BeginTableV("AttrStatsTable", 2, tableFlags, imgui.NewVec2(0, 0), 0) {
			imgui.TableSetupColumn("Attribute")
			imgui.TableSetupColumn("Entity Count")
			imgui.TableHeadersRow()

			for _, attr := range stats.Attributes {
				imgui.TableNextRow()
				imgui.TableNextColumn()
				imgui.Text(attr.Name)
				imgui.TableNextColumn()
				imgui.Text(fmt.Sprintf("%d", attr.Count))
			}

			imgui.EndTable()
		}
		imgui.TreePop()
	}

	if imgui.TreeNodeStr("Resource Details") {
		for _, resourceType := range stats.ResourceTypes {
			imgui.BulletText(resourceType)
		}
		imgui.TreePop()
	}

	if scheduler != nil && imgui.TreeNodeStr("System Details") {
		ps.renderSystems(scheduler.GetStats())
		imgui.TreePop()
	}

	imgui.End()
}

func (ps *PerformanceStatsPanel) renderSystems(stats *ecs.SchedulerStats) {
	imgui.Text(fmt.Sprintf("Ticks: %d, Executions: %d", stats.Ticks, stats.TotalExecutions))

	const tableFlags = imgui.TableFlagsBorders | imgui.TableFlagsRowBg
	if !imgui.BeginTableV("SystemStatsTable", 6, tableFlags, imgui.NewVec2(0, 0), 0) {
		return
	}
	imgui.TableSetupColumn("System")
	imgui.TableSetupColumn("Runs")
	imgui.TableSetupColumn("Skips")
	imgui.TableSetupColumn("Errors")
	imgui.TableSetupColumn("Avg")
	imgui.TableSetupColumn("Max")
	imgui.TableHeadersRow()

	for _, system := range stats.Systems {
		imgui.TableNextRow()
		imgui.TableNextColumn()
		imgui.Text(system.Name)
		imgui.TableNextColumn()
		imgui.Text(fmt.Sprintf("%d", system.ExecutionCount))
		imgui.TableNextColumn()
		imgui.Text(fmt.Sprintf("%d", system.SkipCount))
		imgui.TableNextColumn()
		if system.ErrorCount > 0 {
			imgui.TextColored(imgui.NewVec4(1.0, 0.3, 0.3, 1.0), fmt.Sprintf("%d", system.ErrorCount))
		} else {
			imgui.Text("0")
		}
		imgui.TableNextColumn()
		imgui.Text(system.AvgDuration.String())
		imgui.TableNextColumn()
		imgui.Text(system.MaxDuration.String())
	}

	imgui.EndTable()

	for _, system := range stats.Systems {
		if system.LastError != nil {
			imgui.TextColored(imgui.NewVec4(1.0, 0.3, 0.3, 1.0), fmt.Sprintf("%s: %v", system.Name, system.LastError))
		}
	}
}

type FrameTimer struct {
	lastFrameTime time.Time
}

func NewFrameTimer() *FrameTimer {
	return &FrameTimer{
		lastFrameTime: time.Now(),
	}
}

func (ft *FrameTimer) GetDeltaTime() float32 {
	now := time.Now()
	delta := float32(now.Sub(ft.lastFrameTime).Seconds())
	ft.lastFrameTime = now
	return delta
}
