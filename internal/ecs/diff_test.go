package ecs

import (
	"reflect"
	"testing"
)

// spawnSystem creates an entity and populates it in the same call.
type spawnSystem struct {
	BaseSystem
	spawned Entity
}

func (s *spawnSystem) Name() string { return "spawn" }
func (s *spawnSystem) Access() Access {
	return Access{Writes: []reflect.Type{Type[position](), Type[health]()}}
}
func (s *spawnSystem) Update(v *View) error {
	e := v.CreateEntity()
	s.spawned = e
	if err := ViewAdd(v, e, position{0, 0}); err != nil {
		return err
	}
	// intermediate values must not surface in the record
	if err := ViewAdd(v, e, position{5, 5}); err != nil {
		return err
	}
	return ViewAdd(v, e, health{100})
}

func TestSpawnYieldsSingleAddPerComponent(t *testing.T) {
	w := NewWorld()
	s := &spawnSystem{}
	w.AddSystem(s)

	if err := w.Update(); err != nil {
		t.Fatal(err)
	}
	rec := w.History().AllTicks()[0].Systems[0]
	if len(rec.Events) != 3 {
		t.Fatalf("expected create + 2 adds, got %d events: %+v", len(rec.Events), rec.Events)
	}
	if rec.Events[0].Kind != EntityCreated || rec.Events[0].Entity != s.spawned {
		t.Fatalf("creation must come first, got %+v", rec.Events[0])
	}
	// component events follow declared write order: position, then health
	if rec.Events[1].Kind != ComponentAdded || rec.Events[1].Type != Type[position]() {
		t.Fatalf("expected position add, got %+v", rec.Events[1])
	}
	if rec.Events[1].New.(position) != (position{5, 5}) {
		t.Fatalf("add must carry the final value, got %+v", rec.Events[1].New)
	}
	if rec.Events[2].Type != Type[health]() {
		t.Fatalf("expected health add, got %+v", rec.Events[2])
	}
}

// killSystem removes every entity holding health.
type killSystem struct {
	BaseSystem
}

func (s *killSystem) Name() string { return "kill" }
func (s *killSystem) Access() Access {
	return Access{Writes: []reflect.Type{Type[health]()}}
}
func (s *killSystem) Update(v *View) error {
	seq, err := ViewQuery[health](v)
	if err != nil {
		return err
	}
	var doomed []Entity
	for e := range seq {
		doomed = append(doomed, e)
	}
	for _, e := range doomed {
		v.RemoveEntity(e)
	}
	return nil
}

func TestEntityRemovalOrdersComponentEventsFirst(t *testing.T) {
	w := NewWorld()
	w.AddSystem(&killSystem{})
	e := w.CreateEntity()
	Add(w, e, health{1})

	if err := w.Update(); err != nil {
		t.Fatal(err)
	}
	rec := w.History().AllTicks()[0].Systems[0]
	if len(rec.Events) != 2 {
		t.Fatalf("expected REM + REMOVE_ENTITY, got %+v", rec.Events)
	}
	if rec.Events[0].Kind != ComponentRemoved || rec.Events[0].Old.(health) != (health{1}) {
		t.Fatalf("component removal should precede entity removal, got %+v", rec.Events[0])
	}
	if rec.Events[1].Kind != EntityRemoved || rec.Events[1].Entity != e {
		t.Fatalf("entity removal must come last, got %+v", rec.Events[1])
	}
}

type fuzzyValue struct {
	N     int
	Noise int
}

func (f fuzzyValue) Equal(other any) bool {
	o, ok := other.(fuzzyValue)
	return ok && f.N == o.N
}

// noiseSystem bumps Noise but leaves N alone.
type noiseSystem struct {
	BaseSystem
}

func (s *noiseSystem) Name() string { return "noise" }
func (s *noiseSystem) Access() Access {
	return Access{Writes: []reflect.Type{Type[fuzzyValue]()}}
}
func (s *noiseSystem) Update(v *View) error {
	seq, err := ViewQueryMut[fuzzyValue](v)
	if err != nil {
		return err
	}
	for _, f := range seq {
		f.Noise++
	}
	return nil
}

func TestEqualerOverridesDeepEqual(t *testing.T) {
	w := NewWorld()
	w.AddSystem(&noiseSystem{})
	e := w.CreateEntity()
	Add(w, e, fuzzyValue{N: 1})

	if err := w.Update(); err != nil {
		t.Fatal(err)
	}
	rec := w.History().AllTicks()[0].Systems[0]
	if !rec.Empty() {
		t.Fatalf("Equal reported no change, but diff recorded %+v", rec.Events)
	}
}

type inventory struct {
	Items []string
}

// renameSystem rewrites the first item of every inventory in place.
type renameSystem struct {
	BaseSystem
}

func (s *renameSystem) Name() string { return "rename" }
func (s *renameSystem) Access() Access {
	return Access{Writes: []reflect.Type{Type[inventory]()}}
}
func (s *renameSystem) Update(v *View) error {
	seq, err := ViewQueryMut[inventory](v)
	if err != nil {
		return err
	}
	for _, inv := range seq {
		inv.Items[0] = "sword"
	}
	return nil
}

func TestInPlaceSliceMutationDiffs(t *testing.T) {
	w := NewWorld()
	w.AddSystem(&renameSystem{})
	e := w.CreateEntity()
	Add(w, e, inventory{Items: []string{"stick"}})

	if err := w.Update(); err != nil {
		t.Fatal(err)
	}
	rec := w.History().AllTicks()[0].Systems[0]
	if len(rec.Events) != 1 || rec.Events[0].Kind != ComponentModified {
		t.Fatalf("expected a single MOD, got %+v", rec.Events)
	}
	old := rec.Events[0].Old.(inventory)
	nv := rec.Events[0].New.(inventory)
	if old.Items[0] != "stick" {
		t.Fatalf("old value aliases live storage: %+v", old)
	}
	if nv.Items[0] != "sword" {
		t.Fatalf("new value lost the mutation: %+v", nv)
	}
	// the recorded values must stay stable if the live slice changes again
	live, _ := Get[inventory](w, e)
	live.Items[0] = "axe"
	if nv.Items[0] != "sword" {
		t.Fatalf("recorded value tracks live storage: %+v", nv)
	}
}

func TestInitDiffsLandInStructuralRecord(t *testing.T) {
	w := NewWorld()
	w.AddSystem(&spawnSystem{})
	if err := w.InitSystems(); err != nil {
		t.Fatal(err)
	}
	// spawnSystem has a no-op Init; seed through the driver instead and
	// verify the flush order on the first tick.
	e := w.CreateEntity()
	Add(w, e, position{2, 2})
	if err := w.Update(); err != nil {
		t.Fatal(err)
	}
	st := w.History().AllTicks()[0].Structural
	if st == nil {
		t.Fatal("expected structural record")
	}
	kinds := make([]EventKind, len(st.Events))
	for i, ev := range st.Events {
		kinds[i] = ev.Kind
	}
	want := []EventKind{SystemAdded, EntityCreated, ComponentAdded}
	if len(kinds) != len(want) {
		t.Fatalf("structural events %v, want kinds %v", st.Events, want)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Fatalf("structural event %d is %s, want %s", i, kinds[i], want[i])
		}
	}
}
