package ecs

import (
	"fmt"
	"reflect"
)

// AccessError reports a capability violation: a system touched a component
// type outside its declared sets, or opened a second mutable query over a
// type it already holds one for. Violations surface immediately and never
// silently no-op.
type AccessError struct {
	System string
	Type   reflect.Type
	Op     string
}

func (e *AccessError) Error() string {
	return fmt.Sprintf("ecs: system %q: %s of component %s", e.System, e.Op, typeName(e.Type))
}

// ReplayError reports an event that could not be applied during replay,
// with enough context to locate it in the history.
type ReplayError struct {
	Tick   int
	Record int // system ordinal, or StructuralRecord
	Event  int
	Entity Entity
	Reason string
}

func (e *ReplayError) Error() string {
	return fmt.Sprintf("ecs: replay tick %d record %d event %d: %v: %s",
		e.Tick, e.Record, e.Event, e.Entity, e.Reason)
}

func typeName(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	if n := t.Name(); n != "" {
		return n
	}
	return t.String()
}
