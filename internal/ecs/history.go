package ecs

import "reflect"

// EventKind classifies a primitive change event.
type EventKind int

const (
	EntityCreated EventKind = iota
	EntityRemoved
	ComponentAdded
	ComponentModified
	ComponentRemoved
	SystemAdded
)

func (k EventKind) String() string {
	switch k {
	case EntityCreated:
		return "CREATE_ENTITY"
	case EntityRemoved:
		return "REMOVE_ENTITY"
	case ComponentAdded:
		return "ADD"
	case ComponentModified:
		return "MOD"
	case ComponentRemoved:
		return "REM"
	case SystemAdded:
		return "ADD_SYSTEM"
	}
	return "UNKNOWN"
}

// Event is one primitive change. Component events carry Type plus the value
// fields for their kind (New for adds, Old and New for modifications, Old
// for removals); system-added events carry System and Ordinal instead.
type Event struct {
	Kind    EventKind
	Entity  Entity
	Type    reflect.Type
	Old     any
	New     any
	System  string
	Ordinal int
}

// IsComponentChange reports whether the event touches a component value, as
// opposed to entity or system structure.
func (ev Event) IsComponentChange() bool {
	switch ev.Kind {
	case ComponentAdded, ComponentModified, ComponentRemoved:
		return true
	}
	return false
}

// StructuralRecord is the System index of a record holding driver-issued
// operations rather than the output of a system call.
const StructuralRecord = -1

// ChangeRecord is the ordered event list from one lifecycle call, or from
// driver-issued operations between ticks. Events are ordered so a record
// replays front to back without forward references: entity creations first,
// then component changes in snapshot-iteration order, then entity removals.
type ChangeRecord struct {
	System int
	Events []Event
}

func (r ChangeRecord) Empty() bool { return len(r.Events) == 0 }

// ComponentEvents returns the component-change subset, in order.
func (r ChangeRecord) ComponentEvents() []Event {
	var out []Event
	for _, ev := range r.Events {
		if ev.IsComponentChange() {
			out = append(out, ev)
		}
	}
	return out
}

// WorldOps returns the structural subset (entity and system events), in order.
func (r ChangeRecord) WorldOps() []Event {
	var out []Event
	for _, ev := range r.Events {
		if !ev.IsComponentChange() {
			out = append(out, ev)
		}
	}
	return out
}

// TickRecord is one sealed tick: the per-system records in execution order,
// optionally preceded by a structural record for driver-issued operations
// that happened since the previous tick.
type TickRecord struct {
	Tick       int
	Structural *ChangeRecord
	Systems    []ChangeRecord
}

// Records returns the tick's change records in application order.
func (t TickRecord) Records() []ChangeRecord {
	recs := make([]ChangeRecord, 0, len(t.Systems)+1)
	if t.Structural != nil {
		recs = append(recs, *t.Structural)
	}
	return append(recs, t.Systems...)
}

// History is the append-only log of tick records for one world. Sealed ticks
// are immutable; the open tick is invisible to readers until EndTick. The
// driver must not call AllTicks concurrently with a seal in progress.
type History struct {
	ticks []TickRecord
	open  *TickRecord
}

func NewHistory() *History { return &History{} }

// BeginTick opens the next tick record. structural may be nil.
func (h *History) BeginTick(structural *ChangeRecord) {
	h.open = &TickRecord{Tick: len(h.ticks), Structural: structural}
}

// Record appends one system's change record to the open tick.
func (h *History) Record(systemIndex int, rec ChangeRecord) {
	rec.System = systemIndex
	h.open.Systems = append(h.open.Systems, rec)
}

// EndTick seals and appends the open tick.
func (h *History) EndTick() {
	h.ticks = append(h.ticks, *h.open)
	h.open = nil
}

// AbortTick discards the open tick; the last sealed tick stays authoritative.
func (h *History) AbortTick() { h.open = nil }

// AllTicks returns the sealed prefix. The slice header is fresh but the
// records are shared; callers must treat them as read-only.
func (h *History) AllTicks() []TickRecord {
	return h.ticks[:len(h.ticks):len(h.ticks)]
}

// Len is the number of sealed ticks.
func (h *History) Len() int { return len(h.ticks) }
