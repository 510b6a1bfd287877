package ecs_test

import (
	"reflect"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/ecsim/internal/ecs"
)

type Coord struct{ X, Y int }
type Heading struct{ DX, DY int }
type Fuel struct{ Units int }

// driftSystem moves every coordinate by its heading and burns fuel,
// removing entities that run dry.
type driftSystem struct {
	ecs.BaseSystem
}

func (s *driftSystem) Name() string { return "drift" }

func (s *driftSystem) Access() ecs.Access {
	return ecs.Access{
		Reads:  []reflect.Type{ecs.Type[Heading]()},
		Writes: []reflect.Type{ecs.Type[Coord](), ecs.Type[Fuel]()},
	}
}

func (s *driftSystem) Update(v *ecs.View) error {
	seq, err := ecs.ViewQueryMut[Coord](v)
	if err != nil {
		return err
	}
	var moved []ecs.Entity
	for e, c := range seq {
		h, ok, err := ecs.ViewGet[Heading](v, e)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		c.X += h.DX
		c.Y += h.DY
		moved = append(moved, e)
	}
	var dead []ecs.Entity
	for _, e := range moved {
		f, ok, err := ecs.ViewGetMut[Fuel](v, e)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		f.Units--
		if f.Units <= 0 {
			dead = append(dead, e)
		}
	}
	for _, e := range dead {
		v.RemoveEntity(e)
	}
	return nil
}

var _ = Describe("Replay", func() {
	newFleet := func(n, fuel int) *ecs.World {
		w := ecs.NewWorld()
		w.AddSystem(&driftSystem{})
		for i := 0; i < n; i++ {
			e := w.CreateEntity()
			Expect(ecs.Add(w, e, Coord{X: i, Y: 0})).To(Succeed())
			Expect(ecs.Add(w, e, Heading{DX: 1, DY: i % 2})).To(Succeed())
			Expect(ecs.Add(w, e, Fuel{Units: fuel + i})).To(Succeed())
		}
		return w
	}

	It("reconstructs the exact state of a multi-tick run", func() {
		w := newFleet(3, 3)
		for i := 0; i < 5; i++ {
			Expect(w.Update()).To(Succeed())
		}

		clone, err := ecs.Replay(w.History())
		Expect(err).NotTo(HaveOccurred())
		Expect(ecs.StatesEqual(w, clone)).To(BeTrue())
		Expect(clone.EntityCount()).To(Equal(w.EntityCount()))
	})

	It("reconstructs runs that include driver churn between ticks", func() {
		w := newFleet(2, 10)
		Expect(w.Update()).To(Succeed())

		// driver edits between ticks land in the structural record
		e := w.CreateEntity()
		Expect(ecs.Add(w, e, Coord{X: 9, Y: 9})).To(Succeed())
		survivor := w.Entities()[0]
		_, removed := ecs.Remove[Heading](w, survivor)
		Expect(removed).To(BeTrue())

		for i := 0; i < 3; i++ {
			Expect(w.Update()).To(Succeed())
		}

		clone, err := ecs.Replay(w.History())
		Expect(err).NotTo(HaveOccurred())
		Expect(ecs.StatesEqual(w, clone)).To(BeTrue())
	})

	It("registers replayed systems as placeholders that never execute", func() {
		w := newFleet(1, 2)
		Expect(w.Update()).To(Succeed())

		clone, err := ecs.Replay(w.History())
		Expect(err).NotTo(HaveOccurred())
		Expect(clone.SystemCount()).To(Equal(1))

		before := snapshotCoords(clone)
		Expect(clone.Update()).To(Succeed())
		Expect(snapshotCoords(clone)).To(Equal(before))
	})

	It("does not reissue entity ids used by the recorded run", func() {
		w := newFleet(1, 1)
		Expect(w.Update()).To(Succeed()) // the lone drifter burns out

		clone, err := ecs.Replay(w.History())
		Expect(err).NotTo(HaveOccurred())
		Expect(clone.EntityCount()).To(BeZero())

		fresh := clone.CreateEntity()
		Expect(fresh.Index).To(BeNumerically(">=", 1))
	})

	Context("when an event references a dead entity", func() {
		buildBroken := func() *ecs.History {
			h := ecs.NewHistory()
			h.BeginTick(nil)
			h.Record(0, ecs.ChangeRecord{Events: []ecs.Event{{
				Kind:   ecs.ComponentAdded,
				Entity: ecs.Entity{World: 0, Index: 7},
				Type:   ecs.Type[Coord](),
				New:    Coord{1, 1},
			}}})
			h.EndTick()
			return h
		}

		It("stops with a located ReplayError by default", func() {
			ecs.RegisterComponent[Coord]()
			_, err := ecs.Replay(buildBroken())
			var rerr *ecs.ReplayError
			Expect(err).To(BeAssignableToTypeOf(rerr))
			rerr = err.(*ecs.ReplayError)
			Expect(rerr.Tick).To(Equal(0))
			Expect(rerr.Record).To(Equal(0))
			Expect(rerr.Event).To(Equal(0))
			Expect(rerr.Entity).To(Equal(ecs.Entity{World: 0, Index: 7}))
		})

		It("skips and collects diagnostics with ContinueOnError", func() {
			ecs.RegisterComponent[Coord]()
			clone, diags, err := ecs.ReplayWithOptions(buildBroken(), ecs.ReplayOptions{ContinueOnError: true})
			Expect(err).NotTo(HaveOccurred())
			Expect(clone).NotTo(BeNil())
			Expect(diags).To(HaveLen(1))
			Expect(clone.EntityCount()).To(BeZero())
		})
	})
})

func snapshotCoords(w *ecs.World) map[ecs.Entity]Coord {
	out := make(map[ecs.Entity]Coord)
	for e, c := range ecs.Query[Coord](w) {
		out[e] = c
	}
	return out
}
