package ecs

import (
	"iter"
	"reflect"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// World is the top-level container: it owns the entity registry, one attribute
// store per registered attribute type and the resource store. Worlds share no
// state, so several can coexist in one process (one per test case, per zone, ...).
//
// A World is not safe for concurrent use; it is driven from a single goroutine.
type World struct {
	id     uuid.UUID
	name   string
	logger *zap.Logger

	pool        *entityPool
	names       map[string]EntityId
	entityNames map[EntityId]string

	attributes     map[reflect.Type]AttributeKey
	attributeNames map[string]AttributeKey
	attributeOrder []AttributeKey

	resources     map[reflect.Type]ResourceKey
	resourceOrder []ResourceKey
}

// WorldOption configures a World.
type WorldOption func(*World)

// WithLogger sets the logger used for warnings and diagnostics. Defaults to a no-op logger.
func WithLogger(logger *zap.Logger) WorldOption {
	return func(w *World) {
		w.logger = logger
	}
}

// WithWorldName sets a human readable name used in logs and the Universe.
func WithWorldName(name string) WorldOption {
	return func(w *World) {
		w.name = name
	}
}

// NewWorld creates an empty world.
func NewWorld(opts ...WorldOption) *World {
	w := &World{
		id:             uuid.New(),
		logger:         zap.NewNop(),
		pool:           newEntityPool(),
		names:          make(map[string]EntityId),
		entityNames:    make(map[EntityId]string),
		attributes:     make(map[reflect.Type]AttributeKey),
		attributeNames: make(map[string]AttributeKey),
		resources:      make(map[reflect.Type]ResourceKey),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.logger = w.logger.With(zap.Stringer("world", w.id))
	if w.name != "" {
		w.logger = w.logger.With(zap.String("world_name", w.name))
	}
	return w
}

func (w *World) ID() uuid.UUID       { return w.id }
func (w *World) Name() string        { return w.name }
func (w *World) Logger() *zap.Logger { return w.logger }

// CreateEntity allocates a fresh live entity with no attributes.
func (w *World) CreateEntity() EntityId {
	return w.pool.create()
}

// CreateNamedEntity allocates an entity and binds name to it. If the name is
// already bound, a warning is logged and the binding moves to the new entity.
func (w *World) CreateNamedEntity(name string) EntityId {
	id := w.pool.create()
	w.bindName(id, name)
	return id
}

func (w *World) bindName(id EntityId, name string) {
	if previous, exists := w.names[name]; exists {
		w.logger.Warn("entity name already bound, overwriting",
			zap.String("name", name),
			zap.Uint64("previous", uint64(previous)),
			zap.Uint64("entity", uint64(id)))
		delete(w.entityNames, previous)
	}
	w.names[name] = id
	w.entityNames[id] = name
}

// Spawn creates an entity and sets one attribute per value. Values are matched
// to attribute stores by their Go type (pointers are dereferenced).
// Panics with *UndefinedAttributeError before creating anything if a value's
// type is not registered.
func (w *World) Spawn(values ...any) EntityId {
	keys := w.keysFor(values)
	id := w.pool.create()
	for i, key := range keys {
		key.SetValue(id, values[i])
	}
	return id
}

// SpawnNamed is Spawn with a name binding, see CreateNamedEntity.
func (w *World) SpawnNamed(name string, values ...any) EntityId {
	keys := w.keysFor(values)
	id := w.CreateNamedEntity(name)
	for i, key := range keys {
		key.SetValue(id, values[i])
	}
	return id
}

func (w *World) keysFor(values []any) []AttributeKey {
	keys := make([]AttributeKey, len(values))
	for i, value := range values {
		typ := reflect.TypeOf(value)
		if typ != nil && typ.Kind() == reflect.Ptr {
			typ = typ.Elem()
		}
		key, ok := w.attributes[typ]
		if !ok {
			panic(&UndefinedAttributeError{Type: typ})
		}
		keys[i] = key
	}
	return keys
}

// DeleteEntity marks the entity not live, then removes every attribute it has,
// firing OnRemove for each in attribute registration order, and finally frees
// its slot. No-op if the entity is not live.
func (w *World) DeleteEntity(id EntityId) {
	if !w.pool.retire(id) {
		return
	}

	if name, ok := w.entityNames[id]; ok {
		delete(w.entityNames, id)
		if w.names[name] == id {
			delete(w.names, name)
		}
	}

	for _, key := range w.attributeOrder {
		key.removeEntity(id)
	}
	w.pool.recycle(id)
}

// EntityByName looks up a live entity by its bound name
func (w *World) EntityByName(name string) (EntityId, bool) {
	id, ok := w.names[name]
	if !ok || !w.pool.isLive(id) {
		return 0, false
	}
	return id, true
}

// NameOf returns the name bound to the entity, if any
func (w *World) NameOf(id EntityId) (string, bool) {
	name, ok := w.entityNames[id]
	return name, ok
}

// IsLive reports whether id refers to an entity that has not been deleted
func (w *World) IsLive(id EntityId) bool {
	return w.pool.isLive(id)
}

// EntityCount returns the number of live entities
func (w *World) EntityCount() int {
	return w.pool.count()
}

// Entities iterates all live entities in slot order
func (w *World) Entities() iter.Seq[EntityId] {
	return w.pool.each
}

// Attributes returns the registered attribute stores in registration order
func (w *World) Attributes() []AttributeKey {
	return w.attributeOrder
}

// AttributeByName looks up a registered attribute store by its name
func (w *World) AttributeByName(name string) (AttributeKey, bool) {
	key, ok := w.attributeNames[name]
	return key, ok
}

// AttributesOf returns the stores that currently hold a value for the entity
func (w *World) AttributesOf(id EntityId) []AttributeKey {
	keys := make([]AttributeKey, 0, 4)
	for _, key := range w.attributeOrder {
		if key.Has(id) {
			keys = append(keys, key)
		}
	}
	return keys
}

// Resources returns the registered resources in registration order
func (w *World) Resources() []ResourceKey {
	return w.resourceOrder
}
