package debugui

import (
	"fmt"
	"reflect"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/zen/ecs"
)

func NewAttributeInspectorPanel() AttributeInspectorPanel {
	return AttributeInspectorPanel{}
}

// Render shows every attribute of the selected entity. Edits are applied
// through AttributeKey.SetValue, so attribute hooks observe them.
func (ai *AttributeInspectorPanel) Render(w *ecs.World, selectedEntityId ecs.EntityId) {
	if !imgui.BeginV("Attribute Inspector", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return
	}

	ai.selectedEntityId = selectedEntityId

	if ai.selectedEntityId == 0 {
		imgui.Text("No entity selected")
		imgui.End()
		return
	}

	if !w.IsLive(ai.selectedEntityId) {
		imgui.Text(fmt.Sprintf("Entity %d:%d is no longer live",
			ai.selectedEntityId.Index(), ai.selectedEntityId.Generation()))
		imgui.End()
		return
	}

	imgui.Text(fmt.Sprintf("Entity: %d (generation %d)", ai.selectedEntityId.Index(), ai.selectedEntityId.Generation()))
	if name, ok := w.NameOf(ai.selectedEntityId); ok {
		imgui.Text(fmt.Sprintf("Name: %s", name))
	}
	imgui.Separator()

	for _, key := range w.AttributesOf(ai.selectedEntityId) {
		label := key.Name()
		if readOnly(key.Type()) {
			label += " (read-only)"
		}
		if imgui.TreeNodeStr(label) {
			ai.renderAttribute(key, ai.selectedEntityId)
			imgui.TreePop()
		}
	}

	imgui.End()
}

func (ai *AttributeInspectorPanel) renderAttribute(key ecs.AttributeKey, entityId ecs.EntityId) {
	current, ok := key.Value(entityId)
	if !ok {
		return
	}

	// edit a copy, then write it back through the store
	edited := reflect.New(key.Type()).Elem()
	edited.Set(reflect.ValueOf(current))

	changed := false
	if edited.Kind() == reflect.Struct {
		for _, field := range inspectorFields.fieldsOf(key.Type()) {
			changed = ai.renderField(field.Name, edited.Field(field.Index), field) || changed
		}
	} else {
		changed = ai.renderField("value", edited, FieldInfo{Name: "value", Type: key.Type()})
	}

	if changed {
		key.SetValue(entityId, edited.Interface())
	}
}

// readOnly reports whether the inspector has no input widget for any part of t.
func readOnly(t reflect.Type) bool {
	if t.Kind() != reflect.Struct {
		return !editableKind(t.Kind())
	}
	for _, field := range inspectorFields.fieldsOf(t) {
		if field.Editable {
			return false
		}
	}
	return true
}

// renderField draws an editor for val and reports whether the user changed it.
func (ai *AttributeInspectorPanel) renderField(name string, val reflect.Value, field FieldInfo) bool {
	if !val.IsValid() {
		imgui.Text(fmt.Sprintf("%s: <invalid>", name))
		return false
	}

	if field.IsPointer {
		if val.IsNil() {
			imgui.Text(fmt.Sprintf("%s: nil", name))
			return false
		}
		// edits through a pointer change the shared target in place
		val = val.Elem()
	}

	switch val.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		v := int32(val.Int())
		imgui.Text(fmt.Sprintf("%s:", name))
		imgui.SameLine()
		imgui.SetNextItemWidth(150)
		if imgui.InputInt(fmt.Sprintf("##%s", name), &v) && val.CanSet() {
			val.SetInt(int64(v))
			return true
		}

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		v := int32(val.Uint())
		imgui.Text(fmt.Sprintf("%s:", name))
		imgui.SameLine()
		imgui.SetNextItemWidth(150)
		if imgui.InputInt(fmt.Sprintf("##%s", name), &v) && v >= 0 && val.CanSet() {
			val.SetUint(uint64(v))
			return true
		}

	case reflect.Float32, reflect.Float64:
		v := float32(val.Float())
		imgui.Text(fmt.Sprintf("%s:", name))
		imgui.SameLine()
		imgui.SetNextItemWidth(150)
		if imgui.InputFloat(fmt.Sprintf("##%s", name), &v) && val.CanSet() {
			val.SetFloat(float64(v))
			return true
		}

	case reflect.Bool:
		v := val.Bool()
		if imgui.Checkbox(name, &v) && val.CanSet() {
			val.SetBool(v)
			return true
		}

	case reflect.String:
		v := val.String()
		imgui.Text(fmt.Sprintf("%s:", name))
		imgui.SameLine()
		imgui.SetNextItemWidth(200)
		if imgui.InputTextWithHint(fmt.Sprintf("##%s", name), "", &v, imgui.InputTextFlagsNone, nil) && val.CanSet() {
			val.SetString(v)
			return true
		}

	case reflect.Struct:
		changed := false
		if imgui.TreeNodeStr(name) {
			for _, nf := range inspectorFields.fieldsOf(val.Type()) {
				changed = ai.renderField(nf.Name, val.Field(nf.Index), nf) || changed
			}
			imgui.TreePop()
		}
		return changed

	case reflect.Slice:
		imgui.Text(fmt.Sprintf("%s: [%d items]", name, val.Len()))

	case reflect.Map:
		imgui.Text(fmt.Sprintf("%s: map[%d items]", name, val.Len()))

	case reflect.Func:
		imgui.Text(fmt.Sprintf("%s: func", name))

	default:
		if val.CanInterface() {
			imgui.Text(fmt.Sprintf("%s: %v", name, val.Interface()))
		}
	}

	return false
}
