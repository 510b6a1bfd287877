package ecs

import (
	"errors"
	"reflect"
	"testing"
)

// probeSystem runs an arbitrary body against its view.
type probeSystem struct {
	BaseSystem
	access Access
	body   func(v *View) error
}

func (s *probeSystem) Name() string         { return "probe" }
func (s *probeSystem) Access() Access       { return s.access }
func (s *probeSystem) Update(v *View) error { return s.body(v) }

func runProbe(t *testing.T, access Access, body func(v *View) error) error {
	t.Helper()
	w := NewWorld()
	e := w.CreateEntity()
	Add(w, e, position{1, 1})
	Add(w, e, velocity{2, 2})
	w.AddSystem(&probeSystem{access: access, body: body})
	return w.Update()
}

func TestViewUndeclaredReadFails(t *testing.T) {
	err := runProbe(t, Access{}, func(v *View) error {
		_, err := ViewQuery[position](v)
		return err
	})
	var ae *AccessError
	if !errors.As(err, &ae) {
		t.Fatalf("expected AccessError, got %v", err)
	}
	if ae.System != "probe" || ae.Type != Type[position]() {
		t.Fatalf("wrong error context: %+v", ae)
	}
}

func TestViewReadDeclarationAllowsGet(t *testing.T) {
	err := runProbe(t, Access{Reads: []reflect.Type{Type[velocity]()}}, func(v *View) error {
		seq, err := ViewQuery[velocity](v)
		if err != nil {
			return err
		}
		n := 0
		for range seq {
			n++
		}
		if n != 1 {
			t.Fatalf("expected 1 velocity, saw %d", n)
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
}

func TestViewReadDoesNotGrantWrite(t *testing.T) {
	err := runProbe(t, Access{Reads: []reflect.Type{Type[position]()}}, func(v *View) error {
		_, err := ViewQueryMut[position](v)
		return err
	})
	var ae *AccessError
	if !errors.As(err, &ae) {
		t.Fatalf("expected AccessError, got %v", err)
	}
}

func TestViewWriteGrantsRead(t *testing.T) {
	err := runProbe(t, Access{Writes: []reflect.Type{Type[position]()}}, func(v *View) error {
		_, err := ViewQuery[position](v)
		return err
	})
	if err != nil {
		t.Fatal(err)
	}
}

func TestViewMissingComponentIsNotAnError(t *testing.T) {
	err := runProbe(t, Access{Reads: []reflect.Type{Type[health]()}}, func(v *View) error {
		_, ok, err := ViewGet[health](v, Entity{})
		if err != nil {
			return err
		}
		if ok {
			t.Fatal("expected missing component")
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
}

func TestViewSecondMutableQueryFails(t *testing.T) {
	access := Access{Writes: []reflect.Type{Type[position]()}}
	err := runProbe(t, access, func(v *View) error {
		seq, err := ViewQueryMut[position](v)
		if err != nil {
			return err
		}
		for range seq {
			break
		}
		// the first sequence never completed, so the type is still held
		_, err = ViewQueryMut[position](v)
		return err
	})
	var ae *AccessError
	if !errors.As(err, &ae) {
		t.Fatalf("expected AccessError for second mutable query, got %v", err)
	}
}

func TestViewMutableQueryReusableAfterCompletion(t *testing.T) {
	access := Access{Writes: []reflect.Type{Type[position]()}}
	err := runProbe(t, access, func(v *View) error {
		for i := 0; i < 2; i++ {
			seq, err := ViewQueryMut[position](v)
			if err != nil {
				return err
			}
			for range seq {
			}
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
}

func TestViewAddToUndeclaredTypeFails(t *testing.T) {
	err := runProbe(t, Access{Reads: []reflect.Type{Type[position]()}}, func(v *View) error {
		e := v.CreateEntity()
		return ViewAdd(v, e, position{9, 9})
	})
	var ae *AccessError
	if !errors.As(err, &ae) {
		t.Fatalf("expected AccessError, got %v", err)
	}
}

func TestViewEntityOpsAlwaysAllowed(t *testing.T) {
	err := runProbe(t, Access{}, func(v *View) error {
		e := v.CreateEntity()
		if !v.Alive(e) {
			t.Fatal("created entity should be alive")
		}
		if !v.RemoveEntity(e) {
			t.Fatal("remove should succeed")
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
}
