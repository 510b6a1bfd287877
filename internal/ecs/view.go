package ecs

import (
	"fmt"
	"iter"
	"reflect"
)

// View is the capability a system operates through for one lifecycle call.
// Component access is checked against the system's declared sets; entity
// creation and removal are always allowed and recorded directly, while
// component effects are picked up by diffing the write set around the call.
// Views are built fresh per call and must not be retained.
type View struct {
	w       *World
	rs      *registeredSystem
	created []Event
	removed []Event
	mutOpen map[reflect.Type]bool
}

func newView(w *World, rs *registeredSystem) *View {
	return &View{w: w, rs: rs, mutOpen: make(map[reflect.Type]bool)}
}

func (v *View) accessErr(t reflect.Type, op string) error {
	return &AccessError{System: v.rs.sys.Name(), Type: t, Op: op}
}

// CreateEntity issues a new entity. Always permitted.
func (v *View) CreateEntity() Entity {
	e := v.w.newEntity()
	v.created = append(v.created, Event{Kind: EntityCreated, Entity: e})
	return e
}

// RemoveEntity removes e and all its components, reporting whether e was
// live. Always permitted.
func (v *View) RemoveEntity(e Entity) bool {
	if !v.w.live[e] {
		return false
	}
	v.w.dropEntity(e)
	v.removed = append(v.removed, Event{Kind: EntityRemoved, Entity: e})
	return true
}

// Alive reports whether e is live.
func (v *View) Alive(e Entity) bool { return v.w.live[e] }

// ViewGet looks up e's T. Requires T in the system's read or write set;
// absence of the component is a normal (zero, false) outcome.
func ViewGet[T any](v *View, e Entity) (T, bool, error) {
	t := Type[T]()
	if !v.rs.canRead(t) {
		var zero T
		return zero, false, v.accessErr(t, "undeclared read")
	}
	val, ok := tableOf[T](v.w).get(e)
	return val, ok, nil
}

// ViewGetMut returns a pointer to e's T. Requires T in the write set.
func ViewGetMut[T any](v *View, e Entity) (*T, bool, error) {
	t := Type[T]()
	if !v.rs.writes[t] {
		return nil, false, v.accessErr(t, "undeclared write")
	}
	p, ok := tableOf[T](v.w).getMut(e)
	return p, ok, nil
}

// ViewAdd attaches val to e. Requires T in the write set; overwriting an
// existing value is allowed and diffs as a modification.
func ViewAdd[T any](v *View, e Entity, val T) error {
	t := Type[T]()
	if !v.rs.writes[t] {
		return v.accessErr(t, "undeclared write")
	}
	if !v.w.live[e] {
		return fmt.Errorf("ecs: system %q: add %s: %v is not alive", v.rs.sys.Name(), typeName(t), e)
	}
	tableOf[T](v.w).insert(e, val)
	return nil
}

// ViewRemove detaches T from e, returning the removed value. Requires T in
// the write set.
func ViewRemove[T any](v *View, e Entity) (T, bool, error) {
	t := Type[T]()
	if !v.rs.writes[t] {
		var zero T
		return zero, false, v.accessErr(t, "undeclared write")
	}
	val, ok := tableOf[T](v.w).remove(e)
	return val, ok, nil
}

// ViewQuery iterates every (entity, T) pair in stable storage order.
// Requires T in the read or write set. The sequence is lazy and restartable.
func ViewQuery[T any](v *View) (iter.Seq2[Entity, T], error) {
	t := Type[T]()
	if !v.rs.canRead(t) {
		return nil, v.accessErr(t, "undeclared read")
	}
	return tableOf[T](v.w).all(), nil
}

// ViewQueryMut iterates with mutable access. Requires T in the write set,
// and at most one mutable sequence per type may be open per lifecycle call.
// The type is released only when a sequence runs to exhaustion; breaking out
// early keeps it held, since the consumer may still hold live pointers.
func ViewQueryMut[T any](v *View) (iter.Seq2[Entity, *T], error) {
	t := Type[T]()
	if !v.rs.writes[t] {
		return nil, v.accessErr(t, "undeclared write")
	}
	if v.mutOpen[t] {
		return nil, v.accessErr(t, "second mutable query")
	}
	v.mutOpen[t] = true
	inner := tableOf[T](v.w).allMut()
	return func(yield func(Entity, *T) bool) {
		exhausted := true
		inner(func(e Entity, p *T) bool {
			if !yield(e, p) {
				exhausted = false
				return false
			}
			return true
		})
		if exhausted {
			delete(v.mutOpen, t)
		}
	}, nil
}
