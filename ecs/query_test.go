package ecs_test

import (
	"testing"

	"github.com/plus3/zen/ecs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ids(views []ecs.EntityView) []ecs.EntityId {
	result := make([]ecs.EntityId, len(views))
	for i, view := range views {
		result[i] = view.Id
	}
	return result
}

func TestQuery(t *testing.T) {
	w, attrs := newTestWorld()

	moving := w.Spawn(Position{X: 1}, Velocity{DX: 1})
	frozen := w.Spawn(Position{X: 2}, Velocity{DX: 1}, Frozen{})
	w.Spawn(Position{X: 3})
	w.Spawn(Velocity{DX: 4})

	t.Run("required", func(t *testing.T) {
		views, err := w.Evaluate(ecs.Query{Required: []ecs.AttributeKey{attrs.Position, attrs.Velocity}})
		require.NoError(t, err)
		assert.ElementsMatch(t, []ecs.EntityId{moving, frozen}, ids(views))
	})

	t.Run("excluded", func(t *testing.T) {
		views, err := w.Evaluate(ecs.Query{
			Required: []ecs.AttributeKey{attrs.Position, attrs.Velocity},
			Excluded: []ecs.AttributeKey{attrs.Frozen},
		})
		require.NoError(t, err)
		assert.Equal(t, []ecs.EntityId{moving}, ids(views))
	})

	t.Run("values resolve by pointer", func(t *testing.T) {
		views, err := w.Evaluate(ecs.Query{Required: []ecs.AttributeKey{attrs.Position, attrs.Velocity}})
		require.NoError(t, err)
		for _, view := range views {
			ecs.ViewRef(view, attrs.Position).X += 10
		}

		pos, _ := attrs.Position.Get(moving)
		assert.Equal(t, float32(11), pos.X)
	})

	t.Run("empty required", func(t *testing.T) {
		_, err := w.Evaluate(ecs.Query{Excluded: []ecs.AttributeKey{attrs.Frozen}})
		assert.ErrorIs(t, err, ecs.ErrEmptyQuery)
	})
}

func TestQueryCommutativity(t *testing.T) {
	w, attrs := newTestWorld()

	for i := 0; i < 50; i++ {
		values := []any{Position{X: float32(i)}}
		if i%2 == 0 {
			values = append(values, Velocity{DX: 1})
		}
		if i%3 == 0 {
			values = append(values, Frozen{})
		}
		w.Spawn(values...)
	}
	// make the stores differ in size so the pivots differ
	for i := 0; i < 20; i++ {
		w.Spawn(Velocity{})
	}

	queries := []ecs.Query{
		{Required: []ecs.AttributeKey{attrs.Position, attrs.Velocity}, Excluded: []ecs.AttributeKey{attrs.Frozen}},
		{Required: []ecs.AttributeKey{attrs.Velocity, attrs.Position}, Excluded: []ecs.AttributeKey{attrs.Frozen}},
		{Required: []ecs.AttributeKey{attrs.Position, attrs.Velocity}, Excluded: []ecs.AttributeKey{attrs.Frozen}, Pivot: ecs.PivotSmallest},
		{Required: []ecs.AttributeKey{attrs.Velocity, attrs.Position}, Excluded: []ecs.AttributeKey{attrs.Frozen}, Pivot: ecs.PivotSmallest},
	}

	expected, err := w.Evaluate(queries[0])
	require.NoError(t, err)
	// even and not a multiple of 3
	assert.Len(t, expected, 16)

	for _, q := range queries[1:] {
		views, err := w.Evaluate(q)
		require.NoError(t, err)
		assert.ElementsMatch(t, ids(expected), ids(views))
		assert.Equal(t, queries[0].Fingerprint(), q.Fingerprint())
	}
}

func TestQueryFingerprint(t *testing.T) {
	w, attrs := newTestWorld()
	clock := ecs.RegisterResource[Clock](w)
	counter := ecs.RegisterResource[Counter](w)

	a := ecs.Query{
		Required:  []ecs.AttributeKey{attrs.Position, attrs.Velocity},
		Resources: []ecs.ResourceKey{clock, counter},
	}
	b := ecs.Query{
		Required:  []ecs.AttributeKey{attrs.Velocity, attrs.Position},
		Resources: []ecs.ResourceKey{counter, clock},
	}
	assert.Equal(t, a.Fingerprint(), b.Fingerprint())

	// moving an attribute between sections changes the filter
	c := ecs.Query{Required: []ecs.AttributeKey{attrs.Position}, Excluded: []ecs.AttributeKey{attrs.Velocity}}
	d := ecs.Query{Required: []ecs.AttributeKey{attrs.Position}, Optional: []ecs.AttributeKey{attrs.Velocity}}
	assert.NotEqual(t, c.Fingerprint(), d.Fingerprint())
}

func TestQueryPivotFirstOrder(t *testing.T) {
	w, attrs := newTestWorld()

	a := w.Spawn(Position{}, Velocity{})
	b := w.Spawn(Position{}, Velocity{})
	c := w.Spawn(Position{}, Velocity{})

	views, err := w.Evaluate(ecs.Query{Required: []ecs.AttributeKey{attrs.Position, attrs.Velocity}})
	require.NoError(t, err)
	assert.Equal(t, []ecs.EntityId{a, b, c}, ids(views))
}

func TestQueryOptional(t *testing.T) {
	w, attrs := newTestWorld()

	tagged := w.Spawn(Position{X: 1}, Tag("boss"))
	plain := w.Spawn(Position{X: 2})

	views, err := w.Evaluate(ecs.Query{
		Required: []ecs.AttributeKey{attrs.Position},
		Optional: []ecs.AttributeKey{attrs.Tag},
	})
	require.NoError(t, err)
	require.Equal(t, []ecs.EntityId{tagged, plain}, ids(views))

	tag, ok := ecs.ViewValue(views[0], attrs.Tag)
	assert.True(t, ok)
	assert.Equal(t, Tag("boss"), tag)
	assert.True(t, views[0].Has(attrs.Tag))

	_, ok = ecs.ViewValue(views[1], attrs.Tag)
	assert.False(t, ok)
	assert.False(t, views[1].Has(attrs.Tag))
	assert.Nil(t, ecs.ViewRef(views[1], attrs.Tag))

	// an attribute the query did not declare is absent too
	assert.Nil(t, ecs.ViewRef(views[0], attrs.Velocity))
	assert.Len(t, views[0].Keys(), 2)
}

func TestQueryUndefinedKeys(t *testing.T) {
	w, _ := newTestWorld()
	other := ecs.NewWorld()
	foreign := ecs.MustRegisterAttribute[Position](other)

	_, err := w.Evaluate(ecs.Query{Required: []ecs.AttributeKey{foreign}})
	var undefined *ecs.UndefinedAttributeError
	require.ErrorAs(t, err, &undefined)

	_, err = w.Evaluate(ecs.Query{Required: []ecs.AttributeKey{nil}})
	require.ErrorAs(t, err, &undefined)

	foreignResource := ecs.RegisterResource[Clock](other)
	err = ecs.Query{
		Required:  []ecs.AttributeKey{ecs.AttributeOf[Position](w)},
		Resources: []ecs.ResourceKey{foreignResource},
	}.Validate(w)
	var undefinedResource *ecs.UndefinedResourceError
	require.ErrorAs(t, err, &undefinedResource)
}

func TestQuerySkipsDeletedEntities(t *testing.T) {
	w, attrs := newTestWorld()

	a := w.Spawn(Position{})
	b := w.Spawn(Position{})
	w.DeleteEntity(a)

	views, err := w.Evaluate(ecs.Query{Required: []ecs.AttributeKey{attrs.Position}})
	require.NoError(t, err)
	assert.Equal(t, []ecs.EntityId{b}, ids(views))
}

func TestQueryMatch(t *testing.T) {
	w, attrs := newTestWorld()
	q := ecs.Query{
		Required: []ecs.AttributeKey{attrs.Position},
		Excluded: []ecs.AttributeKey{attrs.Frozen},
	}

	id := w.Spawn(Position{})
	assert.True(t, q.Match(id))

	attrs.Frozen.Set(id, Frozen{})
	assert.False(t, q.Match(id))
}

func TestQueryResourcesReady(t *testing.T) {
	w, attrs := newTestWorld()
	clock := ecs.RegisterResource[Clock](w)
	q := ecs.Query{
		Required:  []ecs.AttributeKey{attrs.Position},
		Resources: []ecs.ResourceKey{clock},
	}

	assert.False(t, q.ResourcesReady())
	clock.Set(Clock{})
	assert.True(t, q.ResourcesReady())
}
