package ecs

import (
	"fmt"
	"iter"
	"reflect"
)

// TickObserver receives each tick record right after it is sealed. Observer
// failures must never alter world state; implementations report their own
// errors out of band.
type TickObserver interface {
	TickSealed(rec TickRecord)
}

// World owns the entity registry, one component table per type, the ordered
// system list, and the update history. All access happens on the calling
// goroutine; systems run strictly sequentially within Update.
type World struct {
	index     int
	nextID    int
	live      map[Entity]bool
	order     []Entity // live entities in creation order
	stores    map[reflect.Type]store
	systems   []*registeredSystem
	exec      []int // execution order over systems, rebuilt when stale
	execStale bool
	history   *History
	pending   ChangeRecord // driver-issued operations since the last seal
	observers []TickObserver
}

func NewWorld() *World { return NewWorldWithIndex(0) }

// NewWorldWithIndex creates a world that stamps its index into every entity
// it issues, keeping records attributable when multiple worlds share a log.
func NewWorldWithIndex(index int) *World {
	return &World{
		index:   index,
		live:    make(map[Entity]bool),
		stores:  make(map[reflect.Type]store),
		history: NewHistory(),
		pending: ChangeRecord{System: StructuralRecord},
	}
}

func (w *World) Index() int { return w.index }

// newEntity issues the next id without recording an event; callers attribute
// the creation to the right record.
func (w *World) newEntity() Entity {
	e := Entity{World: w.index, Index: w.nextID}
	w.nextID++
	w.live[e] = true
	w.order = append(w.order, e)
	return e
}

// dropEntity removes e and every component attached to it.
func (w *World) dropEntity(e Entity) {
	delete(w.live, e)
	for i, id := range w.order {
		if id == e {
			w.order = append(w.order[:i], w.order[i+1:]...)
			break
		}
	}
	for _, s := range w.stores {
		s.drop(e)
	}
}

// CreateEntity issues a new entity and records the creation in the pending
// structural record.
func (w *World) CreateEntity() Entity {
	e := w.newEntity()
	w.pending.Events = append(w.pending.Events, Event{Kind: EntityCreated, Entity: e})
	return e
}

// RemoveEntity removes e and all its components. It reports whether e was
// live.
func (w *World) RemoveEntity(e Entity) bool {
	if !w.live[e] {
		return false
	}
	w.dropEntity(e)
	w.pending.Events = append(w.pending.Events, Event{Kind: EntityRemoved, Entity: e})
	return true
}

func (w *World) Alive(e Entity) bool { return w.live[e] }

func (w *World) EntityCount() int { return len(w.order) }

// Entities returns the live entities in creation order.
func (w *World) Entities() []Entity {
	out := make([]Entity, len(w.order))
	copy(out, w.order)
	return out
}

// AddSystem registers a system. Its After dependencies are resolved lazily
// at the next InitSystems or Update; the addition itself is recorded in the
// pending structural record.
func (w *World) AddSystem(s System) {
	rs := newRegisteredSystem(s, len(w.systems))
	w.systems = append(w.systems, rs)
	w.execStale = true
	w.pending.Events = append(w.pending.Events, Event{
		Kind:    SystemAdded,
		System:  s.Name(),
		Ordinal: rs.ordinal,
	})
}

func (w *World) SystemCount() int { return len(w.systems) }

// ensureOrder rebuilds the execution order: a stable topological sort over
// the After dependencies, ties broken by registration order.
func (w *World) ensureOrder() error {
	if !w.execStale {
		return nil
	}
	byName := make(map[string]int, len(w.systems))
	for i, rs := range w.systems {
		byName[rs.sys.Name()] = i
	}
	deps := make([][]int, len(w.systems))
	indeg := make([]int, len(w.systems))
	for i, rs := range w.systems {
		for _, name := range rs.after {
			j, ok := byName[name]
			if !ok {
				return fmt.Errorf("ecs: system %q depends on unknown system %q", rs.sys.Name(), name)
			}
			deps[j] = append(deps[j], i)
			indeg[i]++
		}
	}
	var ready []int
	for i := range w.systems {
		if indeg[i] == 0 {
			ready = append(ready, i)
		}
	}
	exec := make([]int, 0, len(w.systems))
	for len(ready) > 0 {
		// lowest ordinal first keeps the sort stable
		min := 0
		for i := 1; i < len(ready); i++ {
			if ready[i] < ready[min] {
				min = i
			}
		}
		n := ready[min]
		ready = append(ready[:min], ready[min+1:]...)
		exec = append(exec, n)
		for _, m := range deps[n] {
			indeg[m]--
			if indeg[m] == 0 {
				ready = append(ready, m)
			}
		}
	}
	if len(exec) != len(w.systems) {
		return fmt.Errorf("ecs: dependency cycle among systems")
	}
	w.exec = exec
	w.execStale = false
	return nil
}

// InitSystems runs every system's Init once, in execution order. The diffs
// land in the pending structural record, so initialization effects replay
// before the first tick's system records.
func (w *World) InitSystems() error {
	if err := w.ensureOrder(); err != nil {
		return err
	}
	for _, idx := range w.exec {
		rs := w.systems[idx]
		if rs.placeholder {
			continue
		}
		rec, err := w.runSystem(rs, lcInit)
		if err != nil {
			return fmt.Errorf("ecs: init system %q: %w", rs.sys.Name(), err)
		}
		w.pending.Events = append(w.pending.Events, rec.Events...)
	}
	return nil
}

// DeinitSystems runs every system's Deinit in execution order; diffs land in
// the pending structural record like Init's.
func (w *World) DeinitSystems() error {
	if err := w.ensureOrder(); err != nil {
		return err
	}
	for _, idx := range w.exec {
		rs := w.systems[idx]
		if rs.placeholder {
			continue
		}
		rec, err := w.runSystem(rs, lcDeinit)
		if err != nil {
			return fmt.Errorf("ecs: deinit system %q: %w", rs.sys.Name(), err)
		}
		w.pending.Events = append(w.pending.Events, rec.Events...)
	}
	return nil
}

// Update advances one tick: every system executes once in order, each
// followed by its diff. A system error aborts the tick; the open tick is
// discarded, pending driver operations are retained for the next attempt,
// and the last sealed tick remains the latest valid state.
func (w *World) Update() error {
	if err := w.ensureOrder(); err != nil {
		return err
	}
	var structural *ChangeRecord
	if !w.pending.Empty() {
		s := w.pending
		structural = &s
		w.pending = ChangeRecord{System: StructuralRecord}
	}
	w.history.BeginTick(structural)
	for _, idx := range w.exec {
		rs := w.systems[idx]
		if rs.placeholder {
			w.history.Record(rs.ordinal, ChangeRecord{})
			continue
		}
		rec, err := w.runSystem(rs, lcUpdate)
		if err != nil {
			w.history.AbortTick()
			if structural != nil {
				// keep the driver operations for the next tick attempt
				w.pending.Events = append(structural.Events, w.pending.Events...)
			}
			return fmt.Errorf("ecs: tick %d: system %q: %w", w.history.Len(), rs.sys.Name(), err)
		}
		w.history.Record(rs.ordinal, rec)
	}
	w.history.EndTick()
	sealed := w.history.AllTicks()
	last := sealed[len(sealed)-1]
	for _, o := range w.observers {
		o.TickSealed(last)
	}
	return nil
}

// History exposes the world's update history. Callers may read sealed ticks
// between updates; records are immutable once appended.
func (w *World) History() *History { return w.history }

// AttachObserver registers a collaborator to receive sealed tick records.
func (w *World) AttachObserver(o TickObserver) {
	w.observers = append(w.observers, o)
}

// Add attaches v to e, recording an added (or modified, on overwrite) event
// in the pending structural record. Driver-facing; systems go through their
// view instead.
func Add[T any](w *World, e Entity, v T) error {
	if !w.live[e] {
		return fmt.Errorf("ecs: add %s: %v is not alive", typeName(Type[T]()), e)
	}
	tb := tableOf[T](w)
	ev := Event{Kind: ComponentAdded, Entity: e, Type: Type[T](), New: v}
	if old, ok := tb.get(e); ok {
		ev.Kind = ComponentModified
		ev.Old = old
	}
	tb.insert(e, v)
	w.pending.Events = append(w.pending.Events, ev)
	return nil
}

// Remove detaches T from e, returning the removed value.
func Remove[T any](w *World, e Entity) (T, bool) {
	v, ok := tableOf[T](w).remove(e)
	if ok {
		w.pending.Events = append(w.pending.Events, Event{
			Kind: ComponentRemoved, Entity: e, Type: Type[T](), Old: v,
		})
	}
	return v, ok
}

// Get looks up e's T. Absence is a normal outcome, not an error.
func Get[T any](w *World, e Entity) (T, bool) {
	return tableOf[T](w).get(e)
}

// GetMut returns a pointer into storage. Mutations made through it bypass
// change tracking; it exists for driver-side inspection and tests.
func GetMut[T any](w *World, e Entity) (*T, bool) {
	return tableOf[T](w).getMut(e)
}

// Query iterates every (entity, T) pair in stable storage order.
func Query[T any](w *World) iter.Seq2[Entity, T] {
	return tableOf[T](w).all()
}

// QueryMut iterates with mutable access. Untracked, like GetMut.
func QueryMut[T any](w *World) iter.Seq2[Entity, *T] {
	return tableOf[T](w).allMut()
}

// EntitiesWith returns the entities carrying T, in storage order.
func EntitiesWith[T any](w *World) []Entity {
	tb := tableOf[T](w)
	out := make([]Entity, len(tb.order))
	copy(out, tb.order)
	return out
}

// StatesEqual reports whether two worlds hold the same live entities and the
// same component values under each type's equality. System registration is
// not compared.
func StatesEqual(a, b *World) bool {
	if len(a.live) != len(b.live) {
		return false
	}
	for e := range a.live {
		if !b.live[e] {
			return false
		}
	}
	types := make(map[reflect.Type]bool)
	for t := range a.stores {
		types[t] = true
	}
	for t := range b.stores {
		types[t] = true
	}
	for t := range types {
		av := snapshotOf(a, t)
		bv := snapshotOf(b, t)
		if len(av) != len(bv) {
			return false
		}
		for e, v := range av {
			ov, ok := bv[e]
			if !ok || !valuesEqual(v, ov) {
				return false
			}
		}
	}
	return true
}

func snapshotOf(w *World, t reflect.Type) map[Entity]any {
	s, ok := w.stores[t]
	if !ok {
		return nil
	}
	_, values := s.snapshot()
	return values
}
