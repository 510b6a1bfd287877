package game

import (
	"fmt"
	"math/rand"

	"github.com/san-kum/ecsim/internal/ecs"
)

// Options configures the demo world. Zero values fall back to the
// defaults.
type Options struct {
	GridSize int
	Actors   int
	// RenderSink, when set, wires a RenderSystem that delivers each frame
	// to it.
	RenderSink func(frame string)
}

func (o Options) withDefaults() Options {
	if o.GridSize == 0 {
		o.GridSize = DefaultGridSize
	}
	if o.Actors == 0 {
		o.Actors = DefaultActors
	}
	return o
}

// NewDemoWorld builds the commuting demo: home and work entities on their
// fixed cells, actors scattered on seeded random free cells with work as
// their first target, and the movement/wait/render systems registered and
// initialized.
func NewDemoWorld(opts Options, seed int64) (*ecs.World, error) {
	opts = opts.withDefaults()
	if !ValidPos(HomePos, opts.GridSize) || !ValidPos(WorkPos, opts.GridSize) {
		return nil, fmt.Errorf("game: grid size %d cannot hold home %v and work %v",
			opts.GridSize, HomePos, WorkPos)
	}
	rng := rand.New(rand.NewSource(seed))
	w := ecs.NewWorld()

	home := w.CreateEntity()
	ecs.Add(w, home, Position{X: HomePos.X, Y: HomePos.Y})
	ecs.Add(w, home, Home{})
	ecs.Add(w, home, Obstacle{})

	work := w.CreateEntity()
	ecs.Add(w, work, Position{X: WorkPos.X, Y: WorkPos.Y})
	ecs.Add(w, work, Work{})
	ecs.Add(w, work, Obstacle{})

	for i := 0; i < opts.Actors; i++ {
		actor := w.CreateEntity()
		ecs.Add(w, actor, randomFreeCell(rng, opts.GridSize))
		ecs.Add(w, actor, Actor{})
		ecs.Add(w, actor, Target{X: WorkPos.X, Y: WorkPos.Y})
		ecs.Add(w, actor, WaitTimer{Ticks: 0})
	}

	w.AddSystem(&MovementSystem{GridSize: opts.GridSize})
	w.AddSystem(&WaitSystem{})
	if opts.RenderSink != nil {
		w.AddSystem(&RenderSystem{
			GridSize: opts.GridSize,
			Sink:     opts.RenderSink,
			After:    []string{"wait"},
		})
	}
	if err := w.InitSystems(); err != nil {
		return nil, err
	}
	return w, nil
}

// randomFreeCell picks a cell that is neither home nor work. Actors may
// start stacked; movement separates them.
func randomFreeCell(rng *rand.Rand, size int) Position {
	for {
		p := Position{X: rng.Intn(size), Y: rng.Intn(size)}
		if p != HomePos && p != WorkPos {
			return p
		}
	}
}
