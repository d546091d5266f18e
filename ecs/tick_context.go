package ecs

import "reflect"

// TickContext is handed to every callback of a system that runs in a tick.
type TickContext struct {
	DeltaTime float64
	World     *World
	Commands  *Commands
	System    SystemId
	Name      string

	// Entities is the snapshot of the system's query taken before its callbacks
	// ran. Nil when the query declares no required attributes.
	Entities []EntityView

	resources []ResourceKey
}

// Resource returns the resolved value of a resource declared by the system's query,
// or nil if the query did not declare it.
func (c *TickContext) Resource(typ reflect.Type) any {
	for _, key := range c.resources {
		if key.Type() == typ {
			return key.ptr()
		}
	}
	return nil
}

// TickResource returns a pointer to the declared resource T, or nil if the
// system's query did not declare it.
func TickResource[T any](c *TickContext) *T {
	value := c.Resource(reflect.TypeFor[T]())
	if value == nil {
		return nil
	}
	return value.(*T)
}
