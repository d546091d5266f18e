package debugui

import (
	"github.com/plus3/zen/ecs"
)

// Debug panels are attributes: spawning an entity with one opens its window.

type EntityBrowserPanel struct {
	cache              *EntityBrowserCache
	selectedEntityId   ecs.EntityId
	filterText         string
	filterAttribute    string
	maxEntitiesPerPage int
	currentPage        int
}

type AttributeInspectorPanel struct {
	selectedEntityId ecs.EntityId
}

type AttributeViewerPanel struct {
	cache             *AttributeViewerCache
	selectedAttribute string
}

type PerformanceStatsPanel struct {
	historyFrames int
	frameHistory  []float32
	frameIndex    int
}

type QueryDebuggerPanel struct {
	roles map[string]QueryRole
	cache *QueryDebuggerCache
}
