package ecs

import (
	"iter"
	"reflect"
	"unsafe"
)

// View is a typed query. The type T must be a struct whose fields are pointers
// to attribute types. Embedded fields are always required. Named fields are
// required unless tagged:
//
//	`ecs:"optional"` the field is nil when the entity lacks the attribute
//	`ecs:"exclude"`  entities having the attribute are filtered out; the field stays nil
type View[T any] struct {
	world       *World
	query       Query
	fieldOffset []uintptr
	fieldKeys   []AttributeKey
	fieldRole   []fieldRole
}

type fieldRole uint8

const (
	roleRequired fieldRole = iota
	roleOptional
	roleExcluded
)

// NewView creates a new view for the given struct type.
// Panics if T is not a struct of pointers or names an unregistered attribute type.
func NewView[T any](w *World) *View[T] {
	v := &View[T]{}
	v.Init(w)
	return v
}

// Init initializes or re-initializes the View against a world.
// Called by the Scheduler during system registration.
func (v *View[T]) Init(w *World) {
	structType := reflect.TypeFor[T]()
	if structType.Kind() != reflect.Struct {
		panic("View type parameter must be a struct")
	}

	v.world = w
	v.query = Query{}
	v.fieldOffset = v.fieldOffset[:0]
	v.fieldKeys = v.fieldKeys[:0]
	v.fieldRole = v.fieldRole[:0]

	for i := 0; i < structType.NumField(); i++ {
		field := structType.Field(i)
		if field.Type.Kind() != reflect.Ptr {
			panic("View struct fields must be pointer types")
		}

		attrType := field.Type.Elem()
		key, ok := w.attributes[attrType]
		if !ok {
			panic(&UndefinedAttributeError{Type: attrType})
		}

		// Embedded fields are always required
		role := roleRequired
		if !field.Anonymous {
			switch tag := field.Tag.Get("ecs"); tag {
			case "":
			case "optional":
				role = roleOptional
			case "exclude":
				role = roleExcluded
			default:
				panic("invalid ecs tag value: \"" + tag + "\" (only \"optional\" and \"exclude\" are supported)")
			}
		}

		switch role {
		case roleRequired:
			v.query.Required = append(v.query.Required, key)
		case roleOptional:
			v.query.Optional = append(v.query.Optional, key)
		case roleExcluded:
			v.query.Excluded = append(v.query.Excluded, key)
		}

		v.fieldOffset = append(v.fieldOffset, field.Offset)
		v.fieldKeys = append(v.fieldKeys, key)
		v.fieldRole = append(v.fieldRole, role)
	}

	if len(v.query.Required) == 0 {
		panic(ErrEmptyQuery)
	}
}

// Query returns the declarative filter equivalent to the view's struct layout.
func (v *View[T]) Query() Query {
	return v.query
}

// Fill populates the provided struct pointer with attribute data for the given entity.
// Returns false if the entity is not live or does not match the view.
// Optional attributes are set to nil if not present.
func (v *View[T]) Fill(id EntityId, ptr *T) bool {
	if !v.world.pool.isLive(id) || !v.query.Match(id) {
		return false
	}

	structPtr := unsafe.Pointer(ptr)

	for i, key := range v.fieldKeys {
		fieldPtr := unsafe.Pointer(uintptr(structPtr) + v.fieldOffset[i])
		if v.fieldRole[i] == roleExcluded {
			*(*unsafe.Pointer)(fieldPtr) = nil
			continue
		}

		value := key.ptr(id)
		if value == nil {
			*(*unsafe.Pointer)(fieldPtr) = nil
			continue
		}
		// every field is a pointer, so its slot holds exactly one unsafe.Pointer
		*(*unsafe.Pointer)(fieldPtr) = reflect.ValueOf(value).UnsafePointer()
	}

	return true
}

// Get returns a populated view struct for the given entity, or nil if the entity
// doesn't match the view
func (v *View[T]) Get(id EntityId) *T {
	var result T
	if !v.Fill(id, &result) {
		return nil
	}
	return &result
}

// Iter returns an iterator over all entities matching the view.
// Candidates are snapshotted when iteration starts; each one is re-checked just
// before it is yielded, so entities deleted or changed by the loop body are skipped.
func (v *View[T]) Iter() iter.Seq2[EntityId, T] {
	return func(yield func(EntityId, T) bool) {
		candidates := v.world.evaluate(v.query, 0)

		var result T
		for _, candidate := range candidates {
			if !v.Fill(candidate.Id, &result) {
				continue
			}
			if !yield(candidate.Id, result) {
				return
			}
		}
	}
}

// Values returns an iterator over just the view structs (without entity IDs)
func (v *View[T]) Values() iter.Seq[T] {
	return func(yield func(T) bool) {
		for _, value := range v.Iter() {
			if !yield(value) {
				return
			}
		}
	}
}

// Count returns the number of entities currently matching the view
func (v *View[T]) Count() int {
	return len(v.world.evaluate(v.query, v.query.pivot()))
}

// Spawn creates a new entity with attributes copied from the non-nil fields of data.
// Panics if a required field is nil.
func (v *View[T]) Spawn(data T) EntityId {
	structPtr := unsafe.Pointer(&data)

	values := make([]any, 0, len(v.fieldKeys))
	for i, key := range v.fieldKeys {
		fieldPtr := unsafe.Pointer(uintptr(structPtr) + v.fieldOffset[i])
		componentPtr := *(*unsafe.Pointer)(fieldPtr)

		if componentPtr == nil {
			if v.fieldRole[i] == roleRequired {
				panic("required attribute is nil in View.Spawn")
			}
			continue
		}
		if v.fieldRole[i] == roleExcluded {
			continue
		}

		values = append(values, reflect.NewAt(key.Type(), componentPtr).Interface())
	}

	return v.world.Spawn(values...)
}
