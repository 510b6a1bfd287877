package ecs

import (
	"iter"
	"reflect"
	"sync"
)

// Type returns the key a component type is stored and declared under.
func Type[T any]() reflect.Type {
	return reflect.TypeFor[T]()
}

// Equaler lets a component define its own equality for diffing. Components
// without it are compared with reflect.DeepEqual, and anything that cannot
// be proven equal counts as modified.
type Equaler interface {
	Equal(other any) bool
}

func valuesEqual(a, b any) bool {
	if eq, ok := a.(Equaler); ok {
		return eq.Equal(b)
	}
	return reflect.DeepEqual(a, b)
}

// Cloner lets a component control how snapshots copy it. Components without
// it are cloned reflectively, following pointers, slices, and maps, so a
// value mutated in place never aliases the snapshot it is diffed against.
type Cloner interface {
	Clone() any
}

func cloneValue(v any) any {
	if v == nil {
		return nil
	}
	if c, ok := v.(Cloner); ok {
		return c.Clone()
	}
	return cloneReflect(reflect.ValueOf(v)).Interface()
}

func cloneReflect(v reflect.Value) reflect.Value {
	switch v.Kind() {
	case reflect.Pointer:
		if v.IsNil() {
			return v
		}
		out := reflect.New(v.Type().Elem())
		out.Elem().Set(cloneReflect(v.Elem()))
		return out
	case reflect.Slice:
		if v.IsNil() {
			return v
		}
		out := reflect.MakeSlice(v.Type(), v.Len(), v.Len())
		for i := 0; i < v.Len(); i++ {
			out.Index(i).Set(cloneReflect(v.Index(i)))
		}
		return out
	case reflect.Map:
		if v.IsNil() {
			return v
		}
		out := reflect.MakeMapWithSize(v.Type(), v.Len())
		for it := v.MapRange(); it.Next(); {
			out.SetMapIndex(cloneReflect(it.Key()), cloneReflect(it.Value()))
		}
		return out
	case reflect.Array:
		out := reflect.New(v.Type()).Elem()
		for i := 0; i < v.Len(); i++ {
			out.Index(i).Set(cloneReflect(v.Index(i)))
		}
		return out
	case reflect.Struct:
		// shallow copy first so unexported fields carry over, then clone
		// through the settable ones
		out := reflect.New(v.Type()).Elem()
		out.Set(v)
		for i := 0; i < v.NumField(); i++ {
			if f := out.Field(i); f.CanSet() {
				f.Set(cloneReflect(v.Field(i)))
			}
		}
		return out
	case reflect.Interface:
		if v.IsNil() {
			return v
		}
		out := reflect.New(v.Type()).Elem()
		out.Set(cloneReflect(v.Elem()))
		return out
	default:
		return v
	}
}

// store is the type-erased face of a component table, used by the diff and
// replay engines which only see reflect.Type keys and any values.
type store interface {
	componentType() reflect.Type
	getAny(e Entity) (any, bool)
	setAny(e Entity, v any)
	removeAny(e Entity) (any, bool)
	has(e Entity) bool
	drop(e Entity)
	size() int
	// snapshot returns the current contents: entity order plus value copies
	// that share no mutable state with the live storage.
	snapshot() ([]Entity, map[Entity]any)
}

// table holds one value per entity for a single component type. An
// insertion-order slice backs iteration so that repeated iterations of
// unchanged storage agree, which keeps diffing and replay deterministic.
type table[T any] struct {
	values map[Entity]*T
	order  []Entity
}

func newTable[T any]() *table[T] {
	return &table[T]{values: make(map[Entity]*T)}
}

// insert stores v for e, overwriting any previous value. The returned bool
// reports whether an existing value was replaced.
func (t *table[T]) insert(e Entity, v T) bool {
	if old, ok := t.values[e]; ok {
		*old = v
		return true
	}
	t.values[e] = &v
	t.order = append(t.order, e)
	return false
}

func (t *table[T]) get(e Entity) (T, bool) {
	if p, ok := t.values[e]; ok {
		return *p, true
	}
	var zero T
	return zero, false
}

func (t *table[T]) getMut(e Entity) (*T, bool) {
	p, ok := t.values[e]
	return p, ok
}

func (t *table[T]) remove(e Entity) (T, bool) {
	p, ok := t.values[e]
	if !ok {
		var zero T
		return zero, false
	}
	delete(t.values, e)
	for i, id := range t.order {
		if id == e {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
	return *p, true
}

// all iterates (entity, value) pairs in insertion order. The sequence is
// restartable and yields copies.
func (t *table[T]) all() iter.Seq2[Entity, T] {
	return func(yield func(Entity, T) bool) {
		for _, e := range t.order {
			if !yield(e, *t.values[e]) {
				return
			}
		}
	}
}

// allMut iterates (entity, pointer) pairs in insertion order.
func (t *table[T]) allMut() iter.Seq2[Entity, *T] {
	return func(yield func(Entity, *T) bool) {
		for _, e := range t.order {
			if !yield(e, t.values[e]) {
				return
			}
		}
	}
}

func (t *table[T]) componentType() reflect.Type { return reflect.TypeFor[T]() }

func (t *table[T]) getAny(e Entity) (any, bool) {
	if p, ok := t.values[e]; ok {
		return *p, true
	}
	return nil, false
}

func (t *table[T]) setAny(e Entity, v any) { t.insert(e, v.(T)) }

func (t *table[T]) removeAny(e Entity) (any, bool) {
	v, ok := t.remove(e)
	if !ok {
		return nil, false
	}
	return v, true
}

func (t *table[T]) has(e Entity) bool {
	_, ok := t.values[e]
	return ok
}

func (t *table[T]) drop(e Entity) { t.remove(e) }

func (t *table[T]) size() int { return len(t.order) }

func (t *table[T]) snapshot() ([]Entity, map[Entity]any) {
	order := make([]Entity, len(t.order))
	copy(order, t.order)
	values := make(map[Entity]any, len(t.values))
	for e, p := range t.values {
		values[e] = cloneValue(any(*p))
	}
	return order, values
}

// storeFactories maps component types to table constructors so that replay,
// which only has reflect.Type keys, can rebuild typed storage. tableOf seeds
// it as a side effect of first use; RegisterComponent seeds it explicitly for
// types that only ever appear in parsed histories.
var storeFactories sync.Map // reflect.Type -> func() store

// RegisterComponent makes T reconstructible by the replay engine even when
// the replaying process never stored it through the typed API.
func RegisterComponent[T any]() {
	storeFactories.LoadOrStore(reflect.TypeFor[T](), func() store { return newTable[T]() })
}

func tableOf[T any](w *World) *table[T] {
	t := reflect.TypeFor[T]()
	if s, ok := w.stores[t]; ok {
		return s.(*table[T])
	}
	storeFactories.LoadOrStore(t, func() store { return newTable[T]() })
	nt := newTable[T]()
	w.stores[t] = nt
	return nt
}

// storeFor resolves a store by reflected type, creating it from the factory
// registry when possible.
func (w *World) storeFor(t reflect.Type) (store, bool) {
	if s, ok := w.stores[t]; ok {
		return s, true
	}
	if f, ok := storeFactories.Load(t); ok {
		s := f.(func() store)()
		w.stores[t] = s
		return s, true
	}
	return nil, false
}
