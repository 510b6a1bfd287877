package ecs

import "reflect"

// Access declares the component types a system may touch. Writes are
// implicitly readable. After names systems that must execute earlier in the
// tick; the order is otherwise registration order.
type Access struct {
	Reads  []reflect.Type
	Writes []reflect.Type
	After  []string
}

// System is a unit of behavior executed once per tick. Its Access
// declaration is fixed at registration; the views passed to the lifecycle
// calls are scoped to it. State a system keeps outside its declared
// components is invisible to change tracking.
type System interface {
	Name() string
	Access() Access
	Init(v *View) error
	Update(v *View) error
	Deinit(v *View) error
}

// BaseSystem provides no-op Init and Deinit for systems that only need
// Update.
type BaseSystem struct{}

func (BaseSystem) Init(*View) error   { return nil }
func (BaseSystem) Deinit(*View) error { return nil }

// registeredSystem is the uniform handle a world keeps per system: the three
// lifecycle operations plus the declaration resolved into lookup sets.
type registeredSystem struct {
	sys        System
	ordinal    int
	reads      map[reflect.Type]bool
	writes     map[reflect.Type]bool
	writeOrder []reflect.Type // declared order, drives snapshot order
	after      []string
	// placeholder systems come from replaying system-added events; they
	// preserve ordinals and dependency bookkeeping but never execute logic.
	placeholder bool
}

func newRegisteredSystem(s System, ordinal int) *registeredSystem {
	acc := s.Access()
	rs := &registeredSystem{
		sys:     s,
		ordinal: ordinal,
		reads:   make(map[reflect.Type]bool, len(acc.Reads)),
		writes:  make(map[reflect.Type]bool, len(acc.Writes)),
		after:   acc.After,
	}
	for _, t := range acc.Reads {
		rs.reads[t] = true
	}
	for _, t := range acc.Writes {
		if !rs.writes[t] {
			rs.writes[t] = true
			rs.writeOrder = append(rs.writeOrder, t)
		}
	}
	return rs
}

func (rs *registeredSystem) canRead(t reflect.Type) bool {
	return rs.reads[t] || rs.writes[t]
}

// noopSystem stands in for a system reconstructed from history.
type noopSystem struct {
	BaseSystem
	name string
}

func (s *noopSystem) Name() string       { return s.name }
func (s *noopSystem) Access() Access     { return Access{} }
func (s *noopSystem) Update(*View) error { return nil }
