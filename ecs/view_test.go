package ecs_test

import (
	"testing"

	"github.com/plus3/zen/ecs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestView(t *testing.T) {
	w, _ := newTestWorld()
	entityId := w.Spawn(Position{X: 1, Y: 2}, Temperature(32))

	view := ecs.NewView[struct {
		*Position
		*Temperature
	}](w)

	item := view.Get(entityId)
	require.NotNil(t, item)
	assert.Equal(t, Temperature(32), *item.Temperature)
	assert.Equal(t, float32(1), item.Position.X)
	assert.Equal(t, float32(2), item.Position.Y)
}

func TestViewMissingAttribute(t *testing.T) {
	w, _ := newTestWorld()
	entityId := w.Spawn(Position{X: 5, Y: 10})

	view := ecs.NewView[struct {
		*Position
		*Velocity
	}](w)

	assert.Nil(t, view.Get(entityId))
}

func TestViewFill(t *testing.T) {
	w, _ := newTestWorld()
	entityId := w.Spawn(Position{X: 1}, Velocity{DX: 2})

	view := ecs.NewView[struct {
		*Position
		*Velocity
	}](w)

	var item struct {
		*Position
		*Velocity
	}
	require.True(t, view.Fill(entityId, &item))
	assert.Equal(t, float32(1), item.Position.X)
	assert.Equal(t, float32(2), item.Velocity.DX)

	w.DeleteEntity(entityId)
	assert.False(t, view.Fill(entityId, &item))
}

func TestViewAttributeMutation(t *testing.T) {
	w, attrs := newTestWorld()
	entityId := w.Spawn(Position{X: 10}, Velocity{DX: 2})

	view := ecs.NewView[struct {
		*Position
		*Velocity
	}](w)

	item := view.Get(entityId)
	require.NotNil(t, item)
	item.Position.X += item.Velocity.DX

	pos, _ := attrs.Position.Get(entityId)
	assert.Equal(t, float32(12), pos.X)
}

func TestViewOptional(t *testing.T) {
	w, _ := newTestWorld()
	named := w.Spawn(Position{X: 1}, Name{Value: "named"})
	anonymous := w.Spawn(Position{X: 2})

	view := ecs.NewView[struct {
		*Position
		Name *Name `ecs:"optional"`
	}](w)

	item := view.Get(named)
	require.NotNil(t, item)
	require.NotNil(t, item.Name)
	assert.Equal(t, "named", item.Name.Value)

	item = view.Get(anonymous)
	require.NotNil(t, item)
	assert.Nil(t, item.Name)
	assert.Equal(t, 2, view.Count())
}

func TestViewExclude(t *testing.T) {
	w, _ := newTestWorld()
	active := w.Spawn(Position{X: 1})
	frozen := w.Spawn(Position{X: 2}, Frozen{})

	view := ecs.NewView[struct {
		*Position
		Frozen *Frozen `ecs:"exclude"`
	}](w)

	assert.NotNil(t, view.Get(active))
	assert.Nil(t, view.Get(frozen))

	var seen []ecs.EntityId
	for id, item := range view.Iter() {
		assert.Nil(t, item.Frozen)
		seen = append(seen, id)
	}
	assert.Equal(t, []ecs.EntityId{active}, seen)
}

func TestViewQuery(t *testing.T) {
	w, attrs := newTestWorld()

	view := ecs.NewView[struct {
		*Position
		Velocity *Velocity `ecs:"optional"`
		Frozen   *Frozen   `ecs:"exclude"`
	}](w)

	expected := ecs.Query{
		Required: []ecs.AttributeKey{attrs.Position},
		Optional: []ecs.AttributeKey{attrs.Velocity},
		Excluded: []ecs.AttributeKey{attrs.Frozen},
	}
	assert.Equal(t, expected.Fingerprint(), view.Query().Fingerprint())
}

func TestViewInitPanics(t *testing.T) {
	w, _ := newTestWorld()

	assert.Panics(t, func() { ecs.NewView[Score](w) })
	assert.Panics(t, func() {
		ecs.NewView[struct{ Position Position }](w)
	})
	assert.Panics(t, func() {
		ecs.NewView[struct {
			*Position
			Velocity *Velocity `ecs:"sometimes"`
		}](w)
	})
	assert.PanicsWithValue(t, ecs.ErrEmptyQuery, func() {
		ecs.NewView[struct {
			Position *Position `ecs:"optional"`
		}](w)
	})

	other := ecs.NewWorld()
	assert.Panics(t, func() {
		ecs.NewView[struct{ *Position }](other)
	})
}

func TestViewIter(t *testing.T) {
	w, _ := newTestWorld()

	id1 := w.Spawn(Position{X: 1, Y: 1}, Velocity{DX: 0.1, DY: 0.1})
	id2 := w.Spawn(Position{X: 2, Y: 2}, Velocity{DX: 0.2, DY: 0.2})
	id3 := w.Spawn(Position{X: 3, Y: 3}, Velocity{DX: 0.3, DY: 0.3})

	// Spawn an entity with only Position (should not be included)
	w.Spawn(Position{X: 99, Y: 99})

	view := ecs.NewView[struct {
		*Position
		*Velocity
	}](w)

	entities := make(map[ecs.EntityId]struct {
		*Position
		*Velocity
	})
	for id, item := range view.Iter() {
		entities[id] = item
	}

	assert.Equal(t, 3, len(entities))
	assert.Equal(t, float32(1), entities[id1].Position.X)
	assert.Equal(t, float32(0.2), entities[id2].Velocity.DX)
	assert.Equal(t, float32(3), entities[id3].Position.X)
}

func TestViewIterEarlyBreak(t *testing.T) {
	w, _ := newTestWorld()
	for i := 0; i < 10; i++ {
		w.Spawn(Score(i))
	}

	view := ecs.NewView[struct{ *Score }](w)

	count := 0
	for range view.Iter() {
		count++
		if count == 3 {
			break
		}
	}
	assert.Equal(t, 3, count)
}

func TestViewIterSkipsEntitiesDeletedByLoopBody(t *testing.T) {
	w, _ := newTestWorld()
	a := w.Spawn(Score(1))
	b := w.Spawn(Score(2))
	c := w.Spawn(Score(3))

	view := ecs.NewView[struct{ *Score }](w)

	var seen []ecs.EntityId
	for id := range view.Iter() {
		seen = append(seen, id)
		if id == a {
			w.DeleteEntity(b)
			// spawned during the pass, not visited
			w.Spawn(Score(4))
		}
	}
	assert.Equal(t, []ecs.EntityId{a, c}, seen)
}

func TestViewValues(t *testing.T) {
	w, _ := newTestWorld()
	w.Spawn(Score(1))
	w.Spawn(Score(2))

	view := ecs.NewView[struct{ *Score }](w)

	var total Score
	for item := range view.Values() {
		total += *item.Score
	}
	assert.Equal(t, Score(3), total)
}

func TestViewSpawn(t *testing.T) {
	w, attrs := newTestWorld()

	view := ecs.NewView[struct {
		*Position
		Name *Name `ecs:"optional"`
	}](w)

	id := view.Spawn(struct {
		*Position
		Name *Name `ecs:"optional"`
	}{Position: &Position{X: 7}})

	pos, ok := attrs.Position.Get(id)
	require.True(t, ok)
	assert.Equal(t, float32(7), pos.X)
	assert.False(t, attrs.Name.Has(id))

	assert.Panics(t, func() {
		view.Spawn(struct {
			*Position
			Name *Name `ecs:"optional"`
		}{})
	})
}
