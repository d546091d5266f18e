package debugui

import (
	"reflect"
	"sync"
)

// FieldInfo describes one exported field of an attribute struct.
// Pointer fields report their element type in Type.
type FieldInfo struct {
	Name      string
	Type      reflect.Type
	Index     int
	IsPointer bool
	Editable  bool
}

// fieldCache memoizes the exported fields per attribute type, since the
// inspector walks them every frame.
type fieldCache struct {
	mu     sync.RWMutex
	fields map[reflect.Type][]FieldInfo
}

func newFieldCache() *fieldCache {
	return &fieldCache{
		fields: make(map[reflect.Type][]FieldInfo),
	}
}

func (fc *fieldCache) fieldsOf(t reflect.Type) []FieldInfo {
	fc.mu.RLock()
	cached, ok := fc.fields[t]
	fc.mu.RUnlock()
	if ok {
		return cached
	}

	fc.mu.Lock()
	defer fc.mu.Unlock()
	if cached, ok := fc.fields[t]; ok {
		return cached
	}

	var fields []FieldInfo
	if t.Kind() == reflect.Struct {
		for i := range t.NumField() {
			sf := t.Field(i)
			if !sf.IsExported() {
				continue
			}

			ft := sf.Type
			isPointer := ft.Kind() == reflect.Ptr
			if isPointer {
				ft = ft.Elem()
			}
			fields = append(fields, FieldInfo{
				Name:      sf.Name,
				Type:      ft,
				Index:     i,
				IsPointer: isPointer,
				Editable:  editableKind(ft.Kind()),
			})
		}
	}

	fc.fields[t] = fields
	return fields
}

// editableKind reports whether the inspector has an input widget for k.
func editableKind(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64, reflect.Bool, reflect.String, reflect.Struct:
		return true
	}
	return false
}

var inspectorFields = newFieldCache()
