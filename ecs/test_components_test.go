package ecs_test

import "github.com/plus3/zen/ecs"

// Common test attribute types
type Position struct {
	X, Y float32
}

type Velocity struct {
	DX, DY float32
}

type Name struct {
	Value string
}

type Health struct {
	Current int
	Max     int
}

type Frozen struct{}

type Marked struct{}

// Custom primitive types for testing non-struct attributes
type Score int32
type Tag string
type Temperature float64

type Inventory struct {
	Items []string
}

// Resources
type Counter int

type Clock struct {
	Elapsed float64
}

type testAttributes struct {
	Position    *ecs.Attribute[Position]
	Velocity    *ecs.Attribute[Velocity]
	Name        *ecs.Attribute[Name]
	Health      *ecs.Attribute[Health]
	Frozen      *ecs.Attribute[Frozen]
	Score       *ecs.Attribute[Score]
	Tag         *ecs.Attribute[Tag]
	Temperature *ecs.Attribute[Temperature]
	Inventory   *ecs.Attribute[Inventory]
}

func newTestWorld() (*ecs.World, testAttributes) {
	w := ecs.NewWorld()
	return w, testAttributes{
		Position:    ecs.MustRegisterAttribute[Position](w),
		Velocity:    ecs.MustRegisterAttribute[Velocity](w),
		Name:        ecs.MustRegisterAttribute[Name](w),
		Health:      ecs.MustRegisterAttribute[Health](w),
		Frozen:      ecs.MustRegisterAttribute[Frozen](w),
		Score:       ecs.MustRegisterAttribute[Score](w),
		Tag:         ecs.MustRegisterAttribute[Tag](w),
		Temperature: ecs.MustRegisterAttribute[Temperature](w),
		Inventory:   ecs.MustRegisterAttribute[Inventory](w),
	}
}
