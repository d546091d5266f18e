package ecs

import (
	"slices"
	"sort"
)

// Universe holds several independent, named worlds, for example one per zone
// or one per test case. It does not drive them; each World keeps its own Scheduler.
type Universe struct {
	worlds map[string]*World
}

// NewUniverse creates an empty universe.
func NewUniverse() *Universe {
	return &Universe{worlds: make(map[string]*World)}
}

// Add binds a world under name, replacing any world already bound to it.
func (u *Universe) Add(name string, w *World) {
	u.worlds[name] = w
}

// Create makes a new World named name, binds it and returns it.
func (u *Universe) Create(name string, opts ...WorldOption) *World {
	w := NewWorld(append(slices.Clone(opts), WithWorldName(name))...)
	u.worlds[name] = w
	return w
}

// World returns the world bound to name, or *UndefinedWorldError.
func (u *Universe) World(name string) (*World, error) {
	w, ok := u.worlds[name]
	if !ok {
		return nil, &UndefinedWorldError{Name: name}
	}
	return w, nil
}

// Remove unbinds name. It reports whether a world was bound.
func (u *Universe) Remove(name string) bool {
	if _, ok := u.worlds[name]; !ok {
		return false
	}
	delete(u.worlds, name)
	return true
}

// Names returns the bound world names, sorted.
func (u *Universe) Names() []string {
	names := make([]string, 0, len(u.worlds))
	for name := range u.worlds {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
