package ecs

import (
	"encoding/binary"
	"slices"

	"github.com/cespare/xxhash/v2"
)

// PivotStrategy picks the required attribute whose instances seed the candidate set.
// Result membership never depends on the pivot; only the order of results does.
type PivotStrategy int

const (
	// PivotFirst seeds candidates from the first declared required attribute.
	// Results come back in that store's slot order, which makes evaluation deterministic.
	PivotFirst PivotStrategy = iota
	// PivotSmallest seeds candidates from the required store with the fewest values.
	PivotSmallest
)

// Query is an immutable declarative filter over attribute presence.
//
// An entity matches when it has a value for every Required attribute and for
// none of the Excluded ones. Optional attributes are resolved into the
// resulting views when present but never affect membership. Resources must
// all be set for a system using the query to run in a given tick.
type Query struct {
	Required  []AttributeKey
	Excluded  []AttributeKey
	Optional  []AttributeKey
	Resources []ResourceKey
	Pivot     PivotStrategy
}

// Validate checks that the query can be evaluated against the world.
func (q Query) Validate(w *World) error {
	if len(q.Required) == 0 {
		return ErrEmptyQuery
	}
	return q.validateKeys(w)
}

func (q Query) validateKeys(w *World) error {
	for _, group := range [][]AttributeKey{q.Required, q.Excluded, q.Optional} {
		for _, key := range group {
			if key == nil {
				return &UndefinedAttributeError{Name: "<nil>"}
			}
			if key.owner() != w {
				return &UndefinedAttributeError{Type: key.Type(), Name: key.Name()}
			}
		}
	}
	for _, key := range q.Resources {
		if key == nil {
			return &UndefinedResourceError{}
		}
		if key.owner() != w {
			return &UndefinedResourceError{Type: key.Type()}
		}
	}
	return nil
}

// ResourcesReady reports whether every declared resource is currently set.
func (q Query) ResourcesReady() bool {
	for _, key := range q.Resources {
		if !key.Exists() {
			return false
		}
	}
	return true
}

// Fingerprint hashes the filter independently of the declaration order of its attributes.
func (q Query) Fingerprint() uint64 {
	h := xxhash.New()
	var buf [8]byte
	for section, group := range [][]AttributeKey{q.Required, q.Excluded, q.Optional} {
		ids := make([]int, 0, len(group))
		for _, key := range group {
			ids = append(ids, key.ID())
		}
		slices.Sort(ids)

		binary.LittleEndian.PutUint64(buf[:], uint64(section)<<32|uint64(len(ids)))
		_, _ = h.Write(buf[:])
		for _, id := range ids {
			binary.LittleEndian.PutUint64(buf[:], uint64(id))
			_, _ = h.Write(buf[:])
		}
	}
	names := make([]string, 0, len(q.Resources))
	for _, key := range q.Resources {
		names = append(names, key.Type().String())
	}
	slices.Sort(names)
	for _, name := range names {
		_, _ = h.WriteString(name)
	}
	return h.Sum64()
}

func (q Query) pivot() int {
	if q.Pivot != PivotSmallest {
		return 0
	}
	best := 0
	for i := 1; i < len(q.Required); i++ {
		if q.Required[i].Len() < q.Required[best].Len() {
			best = i
		}
	}
	return best
}

// Evaluate returns a view of every entity matching the query, in the iteration
// order of the pivot attribute's storage. The result is a snapshot: later store
// mutations do not change which entities it contains.
func (w *World) Evaluate(q Query) ([]EntityView, error) {
	if err := q.Validate(w); err != nil {
		return nil, err
	}
	return w.evaluate(q, q.pivot()), nil
}

// Match reports whether the live entity satisfies the query's attribute filters.
func (q Query) Match(id EntityId) bool {
	return q.matchExcept(id, -1)
}

func (q Query) matchExcept(id EntityId, skip int) bool {
	// reject entity if a required attribute is missing
	for i, key := range q.Required {
		if i != skip && !key.Has(id) {
			return false
		}
	}
	// reject entity if an excluded attribute is set
	for _, key := range q.Excluded {
		if key.Has(id) {
			return false
		}
	}
	return true
}

func (w *World) evaluate(q Query, pivot int) []EntityView {
	candidates := q.Required[pivot].entities()
	views := make([]EntityView, 0, len(candidates))
	for _, id := range candidates {
		if !w.pool.isLive(id) || !q.matchExcept(id, pivot) {
			continue
		}
		views = append(views, q.resolve(id))
	}
	return views
}

// resolve builds the view of an entity already known to match.
func (q Query) resolve(id EntityId) EntityView {
	view := EntityView{
		Id:     id,
		keys:   make([]AttributeKey, 0, len(q.Required)+len(q.Optional)),
		values: make([]any, 0, len(q.Required)+len(q.Optional)),
	}
	for _, key := range q.Required {
		view.keys = append(view.keys, key)
		view.values = append(view.values, key.ptr(id))
	}
	for _, key := range q.Optional {
		view.keys = append(view.keys, key)
		view.values = append(view.values, key.ptr(id))
	}
	return view
}

// refresh re-checks membership and re-resolves values for a snapshotted entity.
func (q Query) refresh(w *World, id EntityId) (EntityView, bool) {
	if !w.pool.isLive(id) || !q.Match(id) {
		return EntityView{}, false
	}
	return q.resolve(id), true
}
