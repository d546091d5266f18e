package main

import (
	"math/rand"

	"github.com/plus3/zen/ecs"
)

// Sample is the layout shared by every generated attribute type.
type Sample struct {
	Value float64
	Ticks int64
}

type (
	Payload00 Sample
	Payload01 Sample
	Payload02 Sample
	Payload03 Sample
	Payload04 Sample
	Payload05 Sample
	Payload06 Sample
	Payload07 Sample
	Payload08 Sample
	Payload09 Sample
	Payload10 Sample
	Payload11 Sample
	Payload12 Sample
	Payload13 Sample
	Payload14 Sample
	Payload15 Sample
)

type payload interface {
	~struct {
		Value float64
		Ticks int64
	}
}

// attributeType erases one payload type so systems can be wired at random.
type attributeType struct {
	key  ecs.AttributeKey
	set  func(id ecs.EntityId, value float64)
	bump func(view ecs.EntityView, dt float64) bool
}

func newAttributeType[T payload](w *ecs.World) (attributeType, error) {
	attr, err := ecs.RegisterAttribute[T](w)
	if err != nil {
		return attributeType{}, err
	}
	return attributeType{
		key: attr,
		set: func(id ecs.EntityId, value float64) {
			attr.Set(id, T(Sample{Value: value}))
		},
		bump: func(view ecs.EntityView, dt float64) bool {
			ref := ecs.ViewRef(view, attr)
			if ref == nil {
				return false
			}
			s := Sample(*ref)
			s.Value += dt
			s.Ticks++
			*ref = T(s)
			return true
		},
	}, nil
}

var payloadTypes = []func(*ecs.World) (attributeType, error){
	newAttributeType[Payload00],
	newAttributeType[Payload01],
	newAttributeType[Payload02],
	newAttributeType[Payload03],
	newAttributeType[Payload04],
	newAttributeType[Payload05],
	newAttributeType[Payload06],
	newAttributeType[Payload07],
	newAttributeType[Payload08],
	newAttributeType[Payload09],
	newAttributeType[Payload10],
	newAttributeType[Payload11],
	newAttributeType[Payload12],
	newAttributeType[Payload13],
	newAttributeType[Payload14],
	newAttributeType[Payload15],
}

// RegisterAttributeTypes registers the first n payload types on w.
func RegisterAttributeTypes(w *ecs.World, n int) ([]attributeType, error) {
	n = min(n, len(payloadTypes))
	types := make([]attributeType, 0, n)
	for _, register := range payloadTypes[:n] {
		t, err := register(w)
		if err != nil {
			return nil, err
		}
		types = append(types, t)
	}
	return types, nil
}

// SpawnRandomEntity creates an entity holding 1 to maxAttributes distinct payloads.
func SpawnRandomEntity(w *ecs.World, rng *rand.Rand, types []attributeType, maxAttributes int) ecs.EntityId {
	id := w.CreateEntity()
	count := rng.Intn(min(maxAttributes, len(types))) + 1
	for _, i := range rng.Perm(len(types))[:count] {
		types[i].set(id, rng.Float64())
	}
	return id
}
