package debugui

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/zen/ecs"
)

type EntityInfo struct {
	ID             ecs.EntityId
	Name           string
	Attributes     []string
	AttributeCount int
}

type EntityBrowserCache struct {
	entities      []EntityInfo
	signature     worldSignature
	sortColumn    int
	sortAscending bool
}

// worldSignature changes whenever entities or attribute values are added or removed.
type worldSignature struct {
	entities int
	values   int
}

func signatureOf(w *ecs.World) worldSignature {
	sig := worldSignature{entities: w.EntityCount()}
	for _, key := range w.Attributes() {
		sig.values += key.Len()
	}
	return sig
}

func NewEntityBrowserPanel(maxEntitiesPerPage int) EntityBrowserPanel {
	return EntityBrowserPanel{
		cache: &EntityBrowserCache{
			sortColumn:    0,
			sortAscending: true,
			signature:     worldSignature{entities: -1},
		},
		maxEntitiesPerPage: maxEntitiesPerPage,
	}
}

func (eb *EntityBrowserPanel) Render(w *ecs.World) {
	if !imgui.BeginV("Entity Browser", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return
	}

	eb.rebuildCacheIfNeeded(w)

	imgui.InputTextWithHint("##search", "Search...", &eb.filterText, imgui.InputTextFlagsNone, nil)
	imgui.SameLine()
	if imgui.Button("Clear Filter") {
		eb.filterText = ""
		eb.filterAttribute = ""
	}
	if eb.filterAttribute != "" {
		imgui.Text(fmt.Sprintf("Having: %s", eb.filterAttribute))
	}

	filteredEntities := eb.FilteredEntities()

	const tableFlags = imgui.TableFlagsBorders | imgui.TableFlagsRowBg | imgui.TableFlagsSortable | imgui.TableFlagsScrollY
	if imgui.BeginTableV("EntityTable", 4, tableFlags, imgui.NewVec2(0, 0), 0) {
		imgui.TableSetupColumn("Entity ID")
		imgui.TableSetupColumn("Name")
		imgui.TableSetupColumn("Attributes")
		imgui.TableSetupColumn("Count")
		imgui.TableHeadersRow()

		sortSpecs := imgui.TableGetSortSpecs()
		if sortSpecs.SpecsDirty() && sortSpecs.SpecsCount() > 0 {
			spec := sortSpecs.Specs()
			eb.cache.sortColumn = int(spec.ColumnIndex())
			eb.cache.sortAscending = spec.SortDirection() == imgui.SortDirectionAscending
			eb.sortEntities()
			filteredEntities = eb.FilteredEntities()
			sortSpecs.SetSpecsDirty(false)
		}

		startIdx := eb.currentPage * eb.maxEntitiesPerPage
		endIdx := min(startIdx+eb.maxEntitiesPerPage, len(filteredEntities))

		for i := startIdx; i < endIdx; i++ {
			entity := filteredEntities[i]
			imgui.TableNextRow()

			imgui.TableNextColumn()
			isSelected := eb.selectedEntityId == entity.ID
			label := fmt.Sprintf("%d:%d", entity.ID.Index(), entity.ID.Generation())
			if imgui.SelectableBoolV(label, isSelected, imgui.SelectableFlagsSpanAllColumns, imgui.NewVec2(0, 0)) {
				eb.selectedEntityId = entity.ID
			}

			imgui.TableNextColumn()
			imgui.Text(entity.Name)

			imgui.TableNextColumn()
			imgui.Text(strings.Join(entity.Attributes, ", "))

			imgui.TableNextColumn()
			imgui.Text(fmt.Sprintf("%d", entity.AttributeCount))
		}

		imgui.EndTable()
	}

	if len(filteredEntities) > eb.maxEntitiesPerPage {
		totalPages := (len(filteredEntities) + eb.maxEntitiesPerPage - 1) / eb.maxEntitiesPerPage
		imgui.Text(fmt.Sprintf("Page %d / %d (%d entities)", eb.currentPage+1, totalPages, len(filteredEntities)))
		imgui.SameLine()
		if imgui.Button("Prev") && eb.currentPage > 0 {
			eb.currentPage--
		}
		imgui.SameLine()
		if imgui.Button("Next") && eb.currentPage < totalPages-1 {
			eb.currentPage++
		}
	} else {
		eb.currentPage = 0
		imgui.Text(fmt.Sprintf("Total: %d entities", len(filteredEntities)))
	}

	imgui.End()
}

func (eb *EntityBrowserPanel) rebuildCacheIfNeeded(w *ecs.World) {
	signature := signatureOf(w)
	if eb.cache.signature != signature {
		eb.cache.entities = nil
		eb.cache.signature = signature
	}

	if eb.cache.entities == nil {
		eb.rebuildCache(w)
	}
}

func (eb *EntityBrowserPanel) rebuildCache(w *ecs.World) {
	eb.cache.entities = make([]EntityInfo, 0, w.EntityCount())

	for id := range w.Entities() {
		keys := w.AttributesOf(id)
		names := make([]string, len(keys))
		for i, key := range keys {
			names[i] = key.Name()
		}
		name, _ := w.NameOf(id)

		eb.cache.entities = append(eb.cache.entities, EntityInfo{
			ID:             id,
			Name:           name,
			Attributes:     names,
			AttributeCount: len(names),
		})
	}

	eb.sortEntities()
}

func (eb *EntityBrowserPanel) sortEntities() {
	sort.SliceStable(eb.cache.entities, func(i, j int) bool {
		a, b := eb.cache.entities[i], eb.cache.entities[j]
		var less bool

		switch eb.cache.sortColumn {
		case 1:
			less = a.Name < b.Name
		case 2:
			less = strings.Join(a.Attributes, ",") < strings.Join(b.Attributes, ",")
		case 3:
			less = a.AttributeCount < b.AttributeCount
		default:
			less = a.ID.Index() < b.ID.Index()
		}

		if !eb.cache.sortAscending {
			return !less
		}
		return less
	})
}

// FilteredEntities returns the cached entities matching the search text and
// the attribute filter set from the attribute viewer.
func (eb *EntityBrowserPanel) FilteredEntities() []EntityInfo {
	if eb.filterText == "" && eb.filterAttribute == "" {
		return eb.cache.entities
	}

	filtered := make([]EntityInfo, 0, len(eb.cache.entities))
	filterLower := strings.ToLower(eb.filterText)

	for _, entity := range eb.cache.entities {
		if eb.filterAttribute != "" && !slices.Contains(entity.Attributes, eb.filterAttribute) {
			continue
		}

		if eb.filterText != "" {
			idStr := fmt.Sprintf("%d", entity.ID.Index())
			nameStr := strings.ToLower(entity.Name)
			attributesStr := strings.ToLower(strings.Join(entity.Attributes, " "))

			if !strings.Contains(idStr, filterLower) &&
				!strings.Contains(nameStr, filterLower) &&
				!strings.Contains(attributesStr, filterLower) {
				continue
			}
		}

		filtered = append(filtered, entity)
	}

	return filtered
}

// SetFilterText sets the search text, as typed into the search box.
func (eb *EntityBrowserPanel) SetFilterText(text string) {
	eb.filterText = text
	eb.currentPage = 0
}

// SetAttributeFilter limits the browser to entities holding the named attribute.
// An empty name clears the filter.
func (eb *EntityBrowserPanel) SetAttributeFilter(name string) {
	eb.filterAttribute = name
	eb.currentPage = 0
}

func (eb *EntityBrowserPanel) GetSelectedEntity() ecs.EntityId {
	return eb.selectedEntityId
}
