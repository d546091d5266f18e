package ecs

// Commands provides a buffer for deferred world operations that are applied
// after the current system finishes. Use it to create, delete or restructure
// entities from inside a callback without disturbing the pass in progress.
type Commands struct {
	world   *World
	spawns  []spawnCommand
	deletes []EntityId
	sets    []setCommand
	removes []removeCommand
	defers  []func()
}

// NewCommands creates an empty command buffer for the world
func NewCommands(w *World) *Commands {
	return &Commands{world: w}
}

type spawnCommand struct {
	name   string
	values []any
}

type setCommand struct {
	entity EntityId
	key    AttributeKey
	value  any
}

type removeCommand struct {
	entity EntityId
	key    AttributeKey
}

// Defer queues a function execution operation.
func (c *Commands) Defer(fn func()) {
	c.defers = append(c.defers, fn)
}

// Spawn queues an entity spawn operation with the given attribute values.
// Value types are checked immediately.
func (c *Commands) Spawn(values ...any) {
	c.world.keysFor(values)
	c.spawns = append(c.spawns, spawnCommand{values: values})
}

// SpawnNamed queues a spawn that also binds a name.
func (c *Commands) SpawnNamed(name string, values ...any) {
	c.world.keysFor(values)
	c.spawns = append(c.spawns, spawnCommand{name: name, values: values})
}

// Delete queues an entity deletion operation.
func (c *Commands) Delete(entity EntityId) {
	c.deletes = append(c.deletes, entity)
}

// Set queues setting an attribute value; the store is chosen by the value's type.
func (c *Commands) Set(entity EntityId, value any) {
	key := c.world.keysFor([]any{value})[0]
	c.sets = append(c.sets, setCommand{entity: entity, key: key, value: value})
}

// Remove queues removal of the entity's value from the given store.
func (c *Commands) Remove(entity EntityId, key AttributeKey) {
	c.removes = append(c.removes, removeCommand{entity: entity, key: key})
}

// Len returns the number of queued operations
func (c *Commands) Len() int {
	return len(c.spawns) + len(c.deletes) + len(c.sets) + len(c.removes) + len(c.defers)
}

// Flush applies all queued commands to the world, resetting the buffer state.
// Deletes run first; sets and removes aimed at entities that are no longer
// live are dropped.
func (c *Commands) Flush() {
	// take the queues first so hooks may enqueue follow-up commands
	spawns, deletes, sets, removes, defers := c.spawns, c.deletes, c.sets, c.removes, c.defers
	c.spawns, c.deletes, c.sets, c.removes, c.defers = nil, nil, nil, nil, nil

	for _, id := range deletes {
		c.world.DeleteEntity(id)
	}

	for _, cmd := range removes {
		if c.world.IsLive(cmd.entity) {
			cmd.key.removeEntity(cmd.entity)
		}
	}

	for _, cmd := range sets {
		if c.world.IsLive(cmd.entity) {
			cmd.key.SetValue(cmd.entity, cmd.value)
		}
	}

	for _, cmd := range spawns {
		if cmd.name != "" {
			c.world.SpawnNamed(cmd.name, cmd.values...)
		} else {
			c.world.Spawn(cmd.values...)
		}
	}

	for _, fn := range defers {
		fn()
	}
}
