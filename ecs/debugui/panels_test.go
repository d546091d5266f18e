package debugui

import (
	"reflect"
	"testing"

	"github.com/plus3/zen/ecs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type position struct {
	X, Y float32
}

type label struct {
	Text string
}

type hidden struct {
	Items []int
	Tags  map[string]int
}

func newPanelWorld(t *testing.T) *ecs.World {
	t.Helper()
	w := ecs.NewWorld()
	ecs.MustRegisterAttribute[position](w)
	ecs.MustRegisterAttribute[label](w)
	ecs.MustRegisterAttribute[hidden](w)
	require.NoError(t, RegisterAttributes(w))
	return w
}

func TestRegisterAttributes(t *testing.T) {
	w := newPanelWorld(t)

	_, ok := ecs.GetResource[ImguiInputState](w)
	assert.True(t, ok, "input state resource is provided")

	SpawnPanels(w)
	for _, name := range []string{
		"debugui.entity_browser",
		"debugui.attribute_inspector",
		"debugui.attribute_viewer",
		"debugui.performance_stats",
		"debugui.query_debugger",
	} {
		_, ok := w.EntityByName(name)
		assert.True(t, ok, name)
	}

	assert.Error(t, RegisterAttributes(w), "second registration reports duplicates")
}

func TestEntityBrowserFilters(t *testing.T) {
	w := newPanelWorld(t)
	player := w.SpawnNamed("player", position{X: 1}, label{Text: "hero"})
	rock := w.Spawn(position{X: 2})
	w.Spawn(label{Text: "sign"})

	browser := NewEntityBrowserPanel(10)
	browser.rebuildCacheIfNeeded(w)
	require.Len(t, browser.FilteredEntities(), 3)

	browser.SetFilterText("PLAY")
	filtered := browser.FilteredEntities()
	require.Len(t, filtered, 1)
	assert.Equal(t, player, filtered[0].ID)
	assert.Equal(t, "player", filtered[0].Name)
	assert.Equal(t, 2, filtered[0].AttributeCount)

	browser.SetFilterText("")
	browser.SetAttributeFilter(ecs.AttributeOf[position](w).Name())
	var ids []ecs.EntityId
	for _, info := range browser.FilteredEntities() {
		ids = append(ids, info.ID)
	}
	assert.Equal(t, []ecs.EntityId{player, rock}, ids)

	browser.SetAttributeFilter("")
	assert.Len(t, browser.FilteredEntities(), 3)
}

func TestEntityBrowserRebuildsOnChange(t *testing.T) {
	w := newPanelWorld(t)
	w.Spawn(position{})

	browser := NewEntityBrowserPanel(10)
	browser.rebuildCacheIfNeeded(w)
	require.Len(t, browser.FilteredEntities(), 1)

	e := w.Spawn(position{})
	browser.rebuildCacheIfNeeded(w)
	require.Len(t, browser.FilteredEntities(), 2)

	ecs.SetAttribute(w, e, label{Text: "late"})
	browser.rebuildCacheIfNeeded(w)
	for _, info := range browser.FilteredEntities() {
		if info.ID == e {
			assert.Equal(t, 2, info.AttributeCount)
		}
	}

	w.DeleteEntity(e)
	browser.rebuildCacheIfNeeded(w)
	assert.Len(t, browser.FilteredEntities(), 1)
}

func TestEntityBrowserSortDescending(t *testing.T) {
	w := newPanelWorld(t)
	first := w.Spawn(position{})
	second := w.Spawn(position{})

	browser := NewEntityBrowserPanel(10)
	browser.cache.sortAscending = false
	browser.rebuildCacheIfNeeded(w)

	entities := browser.FilteredEntities()
	require.Len(t, entities, 2)
	assert.Equal(t, second, entities[0].ID)
	assert.Equal(t, first, entities[1].ID)
}

func TestAttributeViewerCounts(t *testing.T) {
	w := newPanelWorld(t)
	w.Spawn(position{}, label{})
	w.Spawn(position{})

	viewer := NewAttributeViewerPanel()
	viewer.rebuildCacheIfNeeded(w)

	require.Len(t, viewer.cache.attributes, len(w.Attributes()))
	top := viewer.cache.attributes[0]
	assert.Equal(t, ecs.AttributeOf[position](w).Name(), top.Name)
	assert.Equal(t, 2, top.Count)

	w.Spawn(label{})
	w.Spawn(label{})
	viewer.rebuildCacheIfNeeded(w)
	top = viewer.cache.attributes[0]
	assert.Equal(t, ecs.AttributeOf[label](w).Name(), top.Name)
	assert.Equal(t, 3, top.Count)
}

func TestQueryDebuggerBuildQuery(t *testing.T) {
	w := newPanelWorld(t)
	a := w.Spawn(position{}, label{})
	b := w.Spawn(position{})
	w.Spawn(label{})

	posName := ecs.AttributeOf[position](w).Name()
	labelName := ecs.AttributeOf[label](w).Name()

	qd := NewQueryDebuggerPanel()
	q := qd.BuildQuery(w)
	assert.Empty(t, q.Required)

	qd.SetRole(posName, RoleRequired)
	q = qd.BuildQuery(w)
	matches, err := w.Evaluate(q)
	require.NoError(t, err)
	assert.Len(t, matches, 2)

	qd.SetRole(labelName, RoleExcluded)
	matches, err = w.Evaluate(qd.BuildQuery(w))
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, b, matches[0].Id)

	qd.SetRole(labelName, RoleOptional)
	q = qd.BuildQuery(w)
	assert.Len(t, q.Optional, 1)
	matches, err = w.Evaluate(q)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, a, matches[0].Id)

	qd.SetRole(labelName, RoleNone)
	assert.Empty(t, qd.BuildQuery(w).Optional)
}

func TestQueryDebuggerZeroValue(t *testing.T) {
	var qd QueryDebuggerPanel
	qd.SetRole("anything", RoleRequired)
	assert.Equal(t, RoleRequired, qd.roles["anything"])
}

func TestPerformanceStatsAverage(t *testing.T) {
	ps := NewPerformanceStatsPanel(4)
	assert.Zero(t, ps.AverageFrameTime())

	for range 4 {
		ps.Record(0.016)
	}
	assert.InDelta(t, 16.0, ps.AverageFrameTime(), 0.001)

	ps.Record(0.032)
	assert.InDelta(t, 20.0, ps.AverageFrameTime(), 0.001)
}

func TestFieldCache(t *testing.T) {
	fields := inspectorFields.fieldsOf(reflect.TypeFor[position]())
	require.Len(t, fields, 2)
	assert.Equal(t, "X", fields[0].Name)
	assert.True(t, fields[0].Editable)

	assert.False(t, readOnly(reflect.TypeFor[label]()))
	assert.True(t, readOnly(reflect.TypeFor[hidden]()))
	assert.False(t, readOnly(reflect.TypeFor[int]()))
}
