package debugui

import (
	"fmt"
	"sort"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/zen/ecs"
)

// QueryRole is the section of a query an attribute is placed in.
type QueryRole int

const (
	RoleNone QueryRole = iota
	RoleRequired
	RoleExcluded
	RoleOptional
)

var roleLabels = [...]string{"-", "with", "without", "maybe"}

type QueryDebuggerCache struct {
	attributeNames []string
	lastStoreCount int
}

func NewQueryDebuggerPanel() QueryDebuggerPanel {
	return QueryDebuggerPanel{
		roles: make(map[string]QueryRole),
		cache: &QueryDebuggerCache{
			lastStoreCount: -1,
		},
	}
}

// SetRole places the named attribute in a section of the query being built.
func (qd *QueryDebuggerPanel) SetRole(name string, role QueryRole) {
	if role == RoleNone {
		delete(qd.roles, name)
		return
	}
	if qd.roles == nil {
		qd.roles = make(map[string]QueryRole)
	}
	qd.roles[name] = role
}

// BuildQuery turns the current selection into a query. Attributes are added in
// world registration order so the pivot is stable between frames.
func (qd *QueryDebuggerPanel) BuildQuery(w *ecs.World) ecs.Query {
	var q ecs.Query
	for _, key := range w.Attributes() {
		switch qd.roles[key.Name()] {
		case RoleRequired:
			q.Required = append(q.Required, key)
		case RoleExcluded:
			q.Excluded = append(q.Excluded, key)
		case RoleOptional:
			q.Optional = append(q.Optional, key)
		}
	}
	return q
}

func (qd *QueryDebuggerPanel) Render(w *ecs.World) {
	if !imgui.BeginV("Query Debugger", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return
	}

	qd.rebuildCacheIfNeeded(w)

	imgui.Text("Select Attribute Roles:")
	imgui.Separator()

	if imgui.Button("Clear All") {
		qd.roles = make(map[string]QueryRole)
	}

	const tableFlags = imgui.TableFlagsBorders | imgui.TableFlagsRowBg
	if imgui.BeginTableV("QueryRoleTable", 1+len(roleLabels), tableFlags, imgui.NewVec2(0, 0), 0) {
		imgui.TableSetupColumn("Attribute")
		for _, label := range roleLabels {
			imgui.TableSetupColumn(label)
		}
		imgui.TableHeadersRow()

		for _, name := range qd.cache.attributeNames {
			imgui.TableNextRow()
			imgui.TableSetColumnIndex(0)
			imgui.Text(name)

			current := qd.roles[name]
			for i := range roleLabels {
				imgui.TableSetColumnIndex(int32(i + 1))
				selected := current == QueryRole(i)
				if imgui.Checkbox(fmt.Sprintf("##%s-%d", name, i), &selected) && selected {
					qd.SetRole(name, QueryRole(i))
				}
			}
		}

		imgui.EndTable()
	}

	imgui.Separator()

	q := qd.BuildQuery(w)
	views, err := w.Evaluate(q)
	if err != nil {
		imgui.Text(err.Error())
		imgui.End()
		return
	}

	imgui.Text(fmt.Sprintf("Fingerprint: %016x", q.Fingerprint()))
	imgui.Text(fmt.Sprintf("Matching Entities: %d", len(views)))

	if imgui.TreeNodeStr("Matches") {
		if imgui.BeginTableV("QueryMatchTable", 2, tableFlags, imgui.NewVec2(0, 0), 0) {
			imgui.TableSetupColumn("Entity")
			imgui.TableSetupColumn("Optional Present")
			imgui.TableHeadersRow()

			for i, view := range views {
				if i >= 200 {
					break
				}
				imgui.TableNextRow()

				imgui.TableSetColumnIndex(0)
				imgui.Text(fmt.Sprintf("%d:%d", view.Id.Index(), view.Id.Generation()))

				imgui.TableSetColumnIndex(1)
				present := 0
				for _, key := range q.Optional {
					if view.Has(key) {
						present++
					}
				}
				imgui.Text(fmt.Sprintf("%d/%d", present, len(q.Optional)))
			}

			imgui.EndTable()
		}
		imgui.TreePop()
	}

	imgui.End()
}

func (qd *QueryDebuggerPanel) rebuildCacheIfNeeded(w *ecs.World) {
	if qd.cache.lastStoreCount != len(w.Attributes()) {
		qd.cache.attributeNames = nil
		qd.cache.lastStoreCount = len(w.Attributes())
	}

	if qd.cache.attributeNames == nil {
		qd.rebuildCache(w)
	}
}

func (qd *QueryDebuggerPanel) rebuildCache(w *ecs.World) {
	qd.cache.attributeNames = make([]string, 0, len(w.Attributes()))
	for _, key := range w.Attributes() {
		qd.cache.attributeNames = append(qd.cache.attributeNames, key.Name())
	}

	sort.Strings(qd.cache.attributeNames)
}
