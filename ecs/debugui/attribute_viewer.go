package debugui

import (
	"fmt"
	"sort"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/zen/ecs"
)

type AttributeInfo struct {
	ID    int
	Name  string
	Type  string
	Count int
}

type AttributeViewerCache struct {
	attributes     []AttributeInfo
	lastStoreCount int
	sortColumn     int
	sortAscending  bool
}

func NewAttributeViewerPanel() AttributeViewerPanel {
	return AttributeViewerPanel{
		cache: &AttributeViewerCache{
			sortColumn:     3,
			sortAscending:  false,
			lastStoreCount: -1,
		},
	}
}

// Render lists the world's attribute stores. Clicking a row returns its name
// so the entity browser can be filtered by it; otherwise it returns "".
func (av *AttributeViewerPanel) Render(w *ecs.World) string {
	if !imgui.BeginV("Attribute Viewer", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return ""
	}

	av.rebuildCacheIfNeeded(w)

	maxCount := 0
	for _, attr := range av.cache.attributes {
		maxCount = max(maxCount, attr.Count)
	}

	var clicked string

	const tableFlags = imgui.TableFlagsBorders | imgui.TableFlagsRowBg | imgui.TableFlagsSortable | imgui.TableFlagsScrollY
	if imgui.BeginTableV("AttributeTable", 4, tableFlags, imgui.NewVec2(0, 0), 0) {
		imgui.TableSetupColumn("ID")
		imgui.TableSetupColumn("Name")
		imgui.TableSetupColumn("Go Type")
		imgui.TableSetupColumn("Entities")
		imgui.TableHeadersRow()

		sortSpecs := imgui.TableGetSortSpecs()
		if sortSpecs.SpecsDirty() && sortSpecs.SpecsCount() > 0 {
			spec := sortSpecs.Specs()
			av.cache.sortColumn = int(spec.ColumnIndex())
			av.cache.sortAscending = spec.SortDirection() == imgui.SortDirectionAscending
			av.sortAttributes()
			sortSpecs.SetSpecsDirty(false)
		}

		for _, attr := range av.cache.attributes {
			imgui.TableNextRow()

			imgui.TableNextColumn()
			isSelected := av.selectedAttribute == attr.Name
			if imgui.SelectableBoolV(fmt.Sprintf("%d", attr.ID), isSelected, imgui.SelectableFlagsSpanAllColumns, imgui.NewVec2(0, 0)) {
				av.selectedAttribute = attr.Name
				clicked = attr.Name
			}

			imgui.TableNextColumn()
			imgui.Text(attr.Name)

			imgui.TableNextColumn()
			imgui.Text(attr.Type)

			imgui.TableNextColumn()
			imgui.Text(fmt.Sprintf("%d", attr.Count))

			if maxCount > 0 {
				barWidth := float32(attr.Count) / float32(maxCount) * 80.0
				imgui.SameLine()
				drawList := imgui.WindowDrawList()
				pos := imgui.CursorScreenPos()
				color := imgui.ColorU32Vec4(imgui.NewVec4(0.2, 0.6, 0.8, 0.6))
				drawList.AddRectFilled(pos, imgui.NewVec2(pos.X+barWidth, pos.Y+10), color)
			}
		}

		imgui.EndTable()
	}

	imgui.End()
	return clicked
}

func (av *AttributeViewerPanel) rebuildCacheIfNeeded(w *ecs.World) {
	if av.cache.lastStoreCount != len(w.Attributes()) {
		av.cache.attributes = nil
		av.cache.lastStoreCount = len(w.Attributes())
	}

	if av.cache.attributes == nil {
		av.rebuildCache(w)
	} else {
		av.updateCounts(w)
	}
}

func (av *AttributeViewerPanel) rebuildCache(w *ecs.World) {
	av.cache.attributes = make([]AttributeInfo, 0, len(w.Attributes()))

	for _, key := range w.Attributes() {
		av.cache.attributes = append(av.cache.attributes, AttributeInfo{
			ID:    key.ID(),
			Name:  key.Name(),
			Type:  key.Type().String(),
			Count: key.Len(),
		})
	}

	av.sortAttributes()
}

func (av *AttributeViewerPanel) updateCounts(w *ecs.World) {
	stores := w.Attributes()
	for i := range av.cache.attributes {
		id := av.cache.attributes[i].ID
		if id < len(stores) {
			av.cache.attributes[i].Count = stores[id].Len()
		}
	}

	if av.cache.sortColumn == 3 {
		av.sortAttributes()
	}
}

func (av *AttributeViewerPanel) sortAttributes() {
	sort.SliceStable(av.cache.attributes, func(i, j int) bool {
		a, b := av.cache.attributes[i], av.cache.attributes[j]
		var less bool

		switch av.cache.sortColumn {
		case 0:
			less = a.ID < b.ID
		case 1:
			less = a.Name < b.Name
		case 2:
			less = a.Type < b.Type
		default:
			less = a.Count < b.Count
		}

		if !av.cache.sortAscending {
			return !less
		}
		return less
	})
}
