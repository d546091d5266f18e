package debugui

import (
	"github.com/plus3/zen/ecs"
)

// PanelsSystem renders every spawned debug panel. Entity selection in the
// browser feeds the inspector, and clicking an attribute in the viewer filters
// the browser. Scheduler is optional and only used by the performance panel.
type PanelsSystem struct {
	Browsers   ecs.View[struct{ *EntityBrowserPanel }]
	Inspectors ecs.View[struct{ *AttributeInspectorPanel }]
	Viewers    ecs.View[struct{ *AttributeViewerPanel }]
	Stats      ecs.View[struct{ *PerformanceStatsPanel }]
	Queries    ecs.View[struct{ *QueryDebuggerPanel }]

	Scheduler *ecs.Scheduler

	timer *FrameTimer
}

func (p *PanelsSystem) Execute(ctx *ecs.TickContext) error {
	if p.timer == nil {
		p.timer = NewFrameTimer()
	}
	dt := p.timer.GetDeltaTime()
	w := ctx.World

	var browser *EntityBrowserPanel
	for panel := range p.Browsers.Values() {
		browser = panel.EntityBrowserPanel
	}

	ctx.Commands.Defer(func() {
		selected := ecs.EntityId(0)
		if browser != nil {
			browser.Render(w)
			selected = browser.GetSelectedEntity()
		}

		for panel := range p.Inspectors.Values() {
			panel.AttributeInspectorPanel.Render(w, selected)
		}

		for panel := range p.Viewers.Values() {
			if clicked := panel.AttributeViewerPanel.Render(w); clicked != "" && browser != nil {
				browser.SetAttributeFilter(clicked)
			}
		}

		for panel := range p.Stats.Values() {
			panel.PerformanceStatsPanel.Render(w, p.Scheduler, dt)
		}

		for panel := range p.Queries.Values() {
			panel.QueryDebuggerPanel.Render(w)
		}
	})
	return nil
}
