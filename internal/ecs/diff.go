package ecs

import "reflect"

type lifecycle int

const (
	lcInit lifecycle = iota
	lcUpdate
	lcDeinit
)

// typeSnapshot freezes one component table: entity order plus value copies.
type typeSnapshot struct {
	order  []Entity
	values map[Entity]any
}

// snapshotWrites copies the system's declared write tables, in declared
// order. Types with no storage yet snapshot as empty.
func (w *World) snapshotWrites(rs *registeredSystem) []typeSnapshot {
	snaps := make([]typeSnapshot, len(rs.writeOrder))
	for i, t := range rs.writeOrder {
		s, ok := w.stores[t]
		if !ok {
			snaps[i] = typeSnapshot{values: map[Entity]any{}}
			continue
		}
		order, values := s.snapshot()
		snaps[i] = typeSnapshot{order: order, values: values}
	}
	return snaps
}

// runSystem executes one lifecycle call and derives its change record:
// snapshot the write set, run the system against a fresh view, snapshot
// again, diff. Events are ordered for forward replay: entity creations,
// then component changes in declared-type and storage order, then entity
// removals.
func (w *World) runSystem(rs *registeredSystem, lc lifecycle) (ChangeRecord, error) {
	before := w.snapshotWrites(rs)
	v := newView(w, rs)
	var err error
	switch lc {
	case lcInit:
		err = rs.sys.Init(v)
	case lcUpdate:
		err = rs.sys.Update(v)
	case lcDeinit:
		err = rs.sys.Deinit(v)
	}
	if err != nil {
		return ChangeRecord{}, err
	}
	after := w.snapshotWrites(rs)

	events := append([]Event(nil), v.created...)
	for i, t := range rs.writeOrder {
		events = appendTypeDiff(events, t, before[i], after[i])
	}
	events = append(events, v.removed...)
	return ChangeRecord{Events: events}, nil
}

// appendTypeDiff emits the additions and modifications in after-snapshot
// order, then the removals in before-snapshot order. A value that cannot be
// proven equal counts as modified.
func appendTypeDiff(events []Event, t reflect.Type, before, after typeSnapshot) []Event {
	for _, e := range after.order {
		nv := after.values[e]
		if ov, ok := before.values[e]; ok {
			if !valuesEqual(ov, nv) {
				events = append(events, Event{
					Kind: ComponentModified, Entity: e, Type: t, Old: ov, New: nv,
				})
			}
			continue
		}
		events = append(events, Event{Kind: ComponentAdded, Entity: e, Type: t, New: nv})
	}
	for _, e := range before.order {
		if _, ok := after.values[e]; !ok {
			events = append(events, Event{
				Kind: ComponentRemoved, Entity: e, Type: t, Old: before.values[e],
			})
		}
	}
	return events
}
