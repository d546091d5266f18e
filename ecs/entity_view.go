package ecs

// EntityView is one query result: the entity plus the values of the query's
// required and optional attributes, resolved at evaluation time.
// Values are held by pointer into the attribute storage, so writes through
// ViewRef are visible to the store. A missing optional value is an explicit
// absence, never a zero default.
type EntityView struct {
	Id     EntityId
	keys   []AttributeKey
	values []any
}

func (v EntityView) lookup(key AttributeKey) any {
	for i, k := range v.keys {
		if k == key {
			return v.values[i]
		}
	}
	return nil
}

// Has reports whether the view resolved a value for key.
func (v EntityView) Has(key AttributeKey) bool {
	return v.lookup(key) != nil
}

// Keys returns the attributes the view was resolved against, required first
func (v EntityView) Keys() []AttributeKey {
	return v.keys
}

// ViewValue returns a copy of the attribute value held by the view.
// The second result is false for an absent optional attribute or an attribute
// the query did not declare.
func ViewValue[T any](v EntityView, attr *Attribute[T]) (T, bool) {
	if p := ViewRef(v, attr); p != nil {
		return *p, true
	}
	var zero T
	return zero, false
}

// ViewRef returns a pointer to the stored value, or nil when absent.
func ViewRef[T any](v EntityView, attr *Attribute[T]) *T {
	value := v.lookup(attr)
	if value == nil {
		return nil
	}
	return value.(*T)
}
