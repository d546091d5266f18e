package debugui

import (
	"errors"

	"github.com/plus3/zen/ecs"
)

// RegisterAttributes registers the debug UI attribute types on the world and
// provides the ImguiInputState resource.
func RegisterAttributes(w *ecs.World) error {
	_, errItem := ecs.RegisterAttribute[ImguiItem](w)
	_, errBrowser := ecs.RegisterAttribute[EntityBrowserPanel](w)
	_, errInspector := ecs.RegisterAttribute[AttributeInspectorPanel](w)
	_, errViewer := ecs.RegisterAttribute[AttributeViewerPanel](w)
	_, errStats := ecs.RegisterAttribute[PerformanceStatsPanel](w)
	_, errQuery := ecs.RegisterAttribute[QueryDebuggerPanel](w)
	ecs.ProvideResource(w, ImguiInputState{})
	return errors.Join(errItem, errBrowser, errInspector, errViewer, errStats, errQuery)
}

// SpawnPanels creates one entity per debug panel.
func SpawnPanels(w *ecs.World) {
	w.SpawnNamed("debugui.entity_browser", NewEntityBrowserPanel(100))
	w.SpawnNamed("debugui.attribute_inspector", NewAttributeInspectorPanel())
	w.SpawnNamed("debugui.attribute_viewer", NewAttributeViewerPanel())
	w.SpawnNamed("debugui.performance_stats", NewPerformanceStatsPanel(120))
	w.SpawnNamed("debugui.query_debugger", NewQueryDebuggerPanel())
}
