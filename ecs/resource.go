package ecs

import "reflect"

// ResourceKey is the type-erased view of a registered resource, used by queries.
type ResourceKey interface {
	Type() reflect.Type
	Exists() bool
	// Value returns a copy of the resource boxed in an interface.
	Value() (any, bool)

	owner() *World
	ptr() any
}

type resourceEntry[T any] struct {
	value T
	set   bool
}

// Resource provides access to a single value that is not associated with any entity.
// Use this for global simulation state, configuration, or other singleton data.
// A resource is either unset or holds exactly one value; Set replaces it wholesale.
//
// Resource fields of a struct system are initialized automatically by the Scheduler.
type Resource[T any] struct {
	world *World
	entry *resourceEntry[T]
	typ   reflect.Type
}

var _ ResourceKey = (*Resource[struct{}])(nil)

// RegisterResource declares T as a resource of the world. The resource starts unset.
// Registering an already registered type returns the existing handle.
func RegisterResource[T any](w *World) *Resource[T] {
	typ := reflect.TypeFor[T]()
	if existing, ok := w.resources[typ]; ok {
		return existing.(*Resource[T])
	}

	r := &Resource[T]{
		world: w,
		entry: &resourceEntry[T]{},
		typ:   typ,
	}
	w.resources[typ] = r
	w.resourceOrder = append(w.resourceOrder, r)
	return r
}

// ProvideResource registers T if needed and overwrites its value.
func ProvideResource[T any](w *World, value T) *Resource[T] {
	r := RegisterResource[T](w)
	r.Set(value)
	return r
}

// ResourceOf returns the handle registered for T.
// Panics with *UndefinedResourceError if T was never registered on w.
func ResourceOf[T any](w *World) *Resource[T] {
	typ := reflect.TypeFor[T]()
	r, ok := w.resources[typ]
	if !ok {
		panic(&UndefinedResourceError{Type: typ})
	}
	return r.(*Resource[T])
}

// SetResource overwrites the value of the registered resource T.
func SetResource[T any](w *World, value T) {
	ResourceOf[T](w).Set(value)
}

// GetResource returns a copy of the resource T and whether it is set.
func GetResource[T any](w *World) (T, bool) {
	return ResourceOf[T](w).Get()
}

// Init binds a zero Resource to the world's resource T, registering it unset if needed.
// This is called automatically by the Scheduler during system registration.
func (r *Resource[T]) Init(w *World) {
	*r = *RegisterResource[T](w)
}

// Set overwrites the value unconditionally. No hooks fire.
func (r *Resource[T]) Set(value T) {
	r.entry.value = value
	r.entry.set = true
}

// Get returns a copy of the value, or false if the resource is unset.
func (r *Resource[T]) Get() (T, bool) {
	if r.entry == nil || !r.entry.set {
		var zero T
		return zero, false
	}
	return r.entry.value, true
}

// Ref returns a pointer to the value, or nil if the resource is unset.
func (r *Resource[T]) Ref() *T {
	if r.entry == nil || !r.entry.set {
		return nil
	}
	return &r.entry.value
}

// Exists returns true if the resource currently holds a value
func (r *Resource[T]) Exists() bool {
	return r.entry != nil && r.entry.set
}

func (r *Resource[T]) Type() reflect.Type { return r.typ }
func (r *Resource[T]) owner() *World      { return r.world }

func (r *Resource[T]) Value() (any, bool) {
	v, ok := r.Get()
	if !ok {
		return nil, false
	}
	return v, true
}

func (r *Resource[T]) ptr() any {
	p := r.Ref()
	if p == nil {
		return nil
	}
	return p
}
