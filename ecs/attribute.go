package ecs

import (
	"iter"
	"reflect"

	"github.com/kamstrup/intmap"
)

// AttributeKey is the type-erased view of a registered attribute store.
// It is implemented only by *Attribute[T] and is what queries are built from.
type AttributeKey interface {
	Name() string
	Type() reflect.Type
	ID() int
	Len() int
	Has(id EntityId) bool
	// Value returns a copy of the entity's value boxed in an interface.
	Value(id EntityId) (any, bool)
	// SetValue stores a T or *T through Set, firing the same hooks.
	// Panics with *UndefinedAttributeError for any other type.
	SetValue(id EntityId, value any)

	owner() *World
	ptr(id EntityId) any
	removeEntity(id EntityId)
	entities() []EntityId
}

// AttributeOption configures an attribute type at registration.
type AttributeOption[T any] func(*Attribute[T])

// OnAdd sets the hook fired right after a value becomes present for an entity.
func OnAdd[T any](fn func(EntityId, T)) AttributeOption[T] {
	return func(a *Attribute[T]) {
		a.onAdd = fn
	}
}

// OnRemove sets the hook fired right before a present value is removed,
// either explicitly or because its entity is deleted.
func OnRemove[T any](fn func(EntityId, T)) AttributeOption[T] {
	return func(a *Attribute[T]) {
		a.onRemove = fn
	}
}

// OnChange sets the hook fired after every explicit Set (present=true) or
// Remove (present=false), including overwrites of an existing value.
func OnChange[T any](fn func(id EntityId, value T, present bool)) AttributeOption[T] {
	return func(a *Attribute[T]) {
		a.onChange = fn
	}
}

// WithAttributeName overrides the display name, which defaults to the Go type name.
func WithAttributeName[T any](name string) AttributeOption[T] {
	return func(a *Attribute[T]) {
		a.name = name
	}
}

// Attribute is the strongly typed handle to one attribute store of a World.
// At most one value exists per entity. Get returns copies; Ref and views hand
// out pointers for in-place mutation, which does not fire any hook.
type Attribute[T any] struct {
	world   *World
	id      int
	name    string
	typ     reflect.Type
	storage slotStorage[T]
	index   *intmap.Map[uint32, int]
	// entity indices whose OnRemove hook is running
	removing *intmap.Map[uint32, struct{}]

	onAdd    func(EntityId, T)
	onRemove func(EntityId, T)
	onChange func(EntityId, T, bool)
}

var _ AttributeKey = (*Attribute[struct{}])(nil)

// RegisterAttribute registers T as an attribute type of the world and returns its handle.
// Registering the same type or name twice fails with a *DuplicateAttributeError.
func RegisterAttribute[T any](w *World, opts ...AttributeOption[T]) (*Attribute[T], error) {
	typ := reflect.TypeFor[T]()
	a := &Attribute[T]{
		world: w,
		id:    len(w.attributeOrder),
		name:  typ.String(),
		typ:   typ,
		index: intmap.New[uint32, int](256),

		removing: intmap.New[uint32, struct{}](8),
	}
	for _, opt := range opts {
		opt(a)
	}

	if _, exists := w.attributes[typ]; exists {
		return nil, &DuplicateAttributeError{Type: typ, Name: a.name}
	}
	if _, exists := w.attributeNames[a.name]; exists {
		return nil, &DuplicateAttributeError{Type: typ, Name: a.name}
	}

	w.attributes[typ] = a
	w.attributeNames[a.name] = a
	w.attributeOrder = append(w.attributeOrder, a)
	return a, nil
}

// MustRegisterAttribute is like RegisterAttribute but panics on error.
func MustRegisterAttribute[T any](w *World, opts ...AttributeOption[T]) *Attribute[T] {
	a, err := RegisterAttribute(w, opts...)
	if err != nil {
		panic(err)
	}
	return a
}

// AttributeOf returns the handle registered for T.
// Panics with *UndefinedAttributeError if T was never registered on w.
func AttributeOf[T any](w *World) *Attribute[T] {
	typ := reflect.TypeFor[T]()
	key, ok := w.attributes[typ]
	if !ok {
		panic(&UndefinedAttributeError{Type: typ})
	}
	return key.(*Attribute[T])
}

// SetAttribute stores value for the entity in the store registered for T.
func SetAttribute[T any](w *World, id EntityId, value T) {
	AttributeOf[T](w).Set(id, value)
}

// GetAttribute returns a copy of the entity's T value.
func GetAttribute[T any](w *World, id EntityId) (T, bool) {
	return AttributeOf[T](w).Get(id)
}

// RemoveAttribute removes the entity's T value if present.
func RemoveAttribute[T any](w *World, id EntityId) {
	AttributeOf[T](w).Remove(id)
}

// HasAttribute reports whether the entity has a T value.
func HasAttribute[T any](w *World, id EntityId) bool {
	return AttributeOf[T](w).Has(id)
}

func (a *Attribute[T]) Name() string       { return a.name }
func (a *Attribute[T]) Type() reflect.Type { return a.typ }
func (a *Attribute[T]) ID() int            { return a.id }
func (a *Attribute[T]) Len() int           { return a.storage.len() }
func (a *Attribute[T]) owner() *World      { return a.world }

// slot finds the storage slot of a live entity's value.
func (a *Attribute[T]) slot(id EntityId) (int, bool) {
	if !a.world.pool.isLive(id) {
		return 0, false
	}
	return a.stored(id)
}

// stored finds the storage slot holding the id's value, even while the id is
// retired during a delete cascade.
func (a *Attribute[T]) stored(id EntityId) (int, bool) {
	if id == 0 {
		return 0, false
	}
	slot, ok := a.index.Get(id.Index())
	if !ok || a.storage.owner(slot) != id {
		return 0, false
	}
	return slot, true
}

// Set inserts or overwrites the entity's value. OnAdd fires only when no value
// was present before; overwriting fires OnChange alone.
// Panics with *StaleEntityError if the entity is not live.
func (a *Attribute[T]) Set(id EntityId, value T) {
	if !a.world.pool.isLive(id) {
		panic(&StaleEntityError{Entity: id})
	}

	if slot, ok := a.slot(id); ok {
		*a.storage.get(slot) = value
		if a.onChange != nil {
			a.onChange(id, value, true)
		}
		return
	}

	slot := a.storage.append(id, value)
	a.index.Put(id.Index(), slot)
	if a.onAdd != nil {
		a.onAdd(id, value)
	}
	if a.onChange != nil {
		// OnAdd may have removed or replaced the value
		if slot, ok := a.slot(id); ok {
			a.onChange(id, *a.storage.get(slot), true)
		}
	}
}

// Get returns a copy of the entity's value. Ids that are not live have no value.
func (a *Attribute[T]) Get(id EntityId) (T, bool) {
	slot, ok := a.slot(id)
	if !ok {
		var zero T
		return zero, false
	}
	return *a.storage.get(slot), true
}

// Ref returns a pointer to the stored value, or nil if absent.
// The pointer stays valid until the value is removed.
func (a *Attribute[T]) Ref(id EntityId) *T {
	slot, ok := a.slot(id)
	if !ok {
		return nil
	}
	return a.storage.get(slot)
}

// Has checks if the entity currently has a value
func (a *Attribute[T]) Has(id EntityId) bool {
	_, ok := a.slot(id)
	return ok
}

// Remove fires OnRemove with the current value and then deletes it.
// No-op when the entity is not live or has no value.
//
// OnRemove fires once per removal: removing the same value again from inside
// the hook, directly or by deleting the entity, is a no-op. A value the hook
// writes over the old one is removed as well, and OnChange reports it.
func (a *Attribute[T]) Remove(id EntityId) {
	if _, ok := a.slot(id); !ok {
		return
	}
	a.remove(id)
}

func (a *Attribute[T]) remove(id EntityId) {
	slot, ok := a.stored(id)
	if !ok {
		return
	}
	if _, busy := a.removing.Get(id.Index()); busy {
		return
	}

	if a.onRemove != nil {
		a.fireRemove(id, *a.storage.get(slot))
		// the hook may have removed the value itself
		if again, ok := a.stored(id); !ok || again != slot {
			return
		}
	}

	value := *a.storage.get(slot)
	a.storage.delete(slot)
	a.index.Del(id.Index())
	if a.onChange != nil {
		a.onChange(id, value, false)
	}
}

func (a *Attribute[T]) fireRemove(id EntityId, value T) {
	a.removing.Put(id.Index(), struct{}{})
	defer a.removing.Del(id.Index())
	a.onRemove(id, value)
}

// All iterates entities and pointers to their values in storage order.
func (a *Attribute[T]) All() iter.Seq2[EntityId, *T] {
	return func(yield func(EntityId, *T) bool) {
		for slot, id := range a.storage.iter() {
			if !yield(id, a.storage.get(slot)) {
				return
			}
		}
	}
}

func (a *Attribute[T]) Value(id EntityId) (any, bool) {
	v, ok := a.Get(id)
	if !ok {
		return nil, false
	}
	return v, true
}

func (a *Attribute[T]) ptr(id EntityId) any {
	p := a.Ref(id)
	if p == nil {
		return nil
	}
	return p
}

func (a *Attribute[T]) SetValue(id EntityId, value any) {
	switch v := value.(type) {
	case T:
		a.Set(id, v)
	case *T:
		a.Set(id, *v)
	default:
		panic(&UndefinedAttributeError{Type: reflect.TypeOf(value)})
	}
}

func (a *Attribute[T]) removeEntity(id EntityId) {
	a.remove(id)
}

func (a *Attribute[T]) entities() []EntityId {
	return a.storage.owners()
}
