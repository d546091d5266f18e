// Package ebiten provides Dear ImGui backend integration for the Ebiten game engine.
package ebiten

import (
	ebitenbackend "github.com/AllenDang/cimgui-go/backend/ebiten-backend"
	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/hajimehoshi/ebiten/v2"

	"github.com/plus3/zen/ecs"
)

// ImguiBackend wraps the Ebiten-specific Dear ImGui backend implementation.
// It is stored as a world resource so the game loop and systems share it.
type ImguiBackend struct {
	*ebitenbackend.EbitenBackend
}

// Provide creates the backend window and stores the backend as a resource of w.
// ImGui's ini persistence is disabled.
func Provide(w *ecs.World, title string, width, height int) *ecs.Resource[ImguiBackend] {
	backend := ebitenbackend.NewEbitenBackend()
	backend.CreateWindow(title, width, height)
	imgui.CurrentIO().SetIniFilename("")
	return ecs.ProvideResource(w, ImguiBackend{EbitenBackend: backend})
}

// Game adapts a scheduler to ebiten.Game. Every Update runs one tick inside an
// ImGui frame, so render functions deferred by debug UI systems draw into it.
type Game struct {
	Scheduler *ecs.Scheduler
	Backend   *ecs.Resource[ImguiBackend]
	// DeltaTime is the fixed tick length in seconds. Defaults to 1/TPS.
	DeltaTime float64
	// DrawWorld draws game content below the ImGui overlay. Optional.
	DrawWorld func(screen *ebiten.Image)
}

var _ ebiten.Game = (*Game)(nil)

func (g *Game) Update() error {
	dt := g.DeltaTime
	if dt == 0 {
		dt = 1.0 / float64(ebiten.TPS())
	}

	backend := g.Backend.Ref()
	backend.BeginFrame()
	err := g.Scheduler.RunTick(dt)
	backend.EndFrame()
	return err
}

func (g *Game) Draw(screen *ebiten.Image) {
	if g.DrawWorld != nil {
		g.DrawWorld(screen)
	}
	g.Backend.Ref().Draw(screen)
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	g.Backend.Ref().Layout(outsideWidth, outsideHeight)
	return outsideWidth, outsideHeight
}
