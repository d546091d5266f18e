// Package debugui provides immediate-mode GUI integration for ECS applications using Dear ImGui.
// It manages ImGui rendering and input state through ECS attributes, resources and systems.
package debugui

import (
	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/zen/ecs"
)

// ImguiItem is an attribute that holds a Dear ImGui render function.
// Attach this to entities that should render ImGui widgets each tick.
type ImguiItem struct {
	Render func()
}

// ImguiInputState tracks Dear ImGui's input capture state as a resource.
// Use this to determine if ImGui is consuming mouse or keyboard input.
type ImguiInputState struct {
	WantCaptureMouse    bool
	WantCaptureKeyboard bool
}

// ImguiSystem queries all ImguiItem attributes and defers their render functions.
// It also updates the ImguiInputState resource with current input capture state.
type ImguiSystem struct {
	Items      ecs.View[struct{ *ImguiItem }]
	InputState ecs.Resource[ImguiInputState]
}

// Execute updates input state and queues all ImGui render functions for execution.
func (i *ImguiSystem) Execute(ctx *ecs.TickContext) error {
	state := i.InputState.Ref()
	state.WantCaptureMouse = imgui.CurrentIO().WantCaptureMouse()
	state.WantCaptureKeyboard = imgui.CurrentIO().WantCaptureKeyboard()

	for item := range i.Items.Values() {
		if item.ImguiItem.Render != nil {
			ctx.Commands.Defer(item.ImguiItem.Render)
		}
	}
	return nil
}
