package game

import (
	"iter"
	"reflect"
	"strings"

	"github.com/san-kum/ecsim/internal/ecs"
)

// MovementSystem walks each actor one step toward its target. Obstacle
// cells and other actors block; an actor already at or adjacent to its
// target stays put.
type MovementSystem struct {
	ecs.BaseSystem
	GridSize int
}

func (s *MovementSystem) Name() string { return "movement" }

func (s *MovementSystem) Access() ecs.Access {
	return ecs.Access{
		Reads:  []reflect.Type{ecs.Type[Actor](), ecs.Type[Target](), ecs.Type[Obstacle]()},
		Writes: []reflect.Type{ecs.Type[Position]()},
	}
}

func (s *MovementSystem) Update(v *ecs.View) error {
	blockedBase := make(map[Position]bool)
	obstacles, err := ecs.ViewQuery[Obstacle](v)
	if err != nil {
		return err
	}
	for e := range obstacles {
		if p, ok, err := ecs.ViewGet[Position](v, e); err != nil {
			return err
		} else if ok {
			blockedBase[p] = true
		}
	}

	actors, err := ecs.ViewQuery[Actor](v)
	if err != nil {
		return err
	}
	var ids []ecs.Entity
	for e := range actors {
		ids = append(ids, e)
	}

	for _, e := range ids {
		pos, ok, err := ecs.ViewGetMut[Position](v, e)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		target, ok, err := ecs.ViewGet[Target](v, e)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		tp := Position{X: target.X, Y: target.Y}
		if *pos == tp || Adjacent(*pos, tp) {
			continue
		}

		// other actors block at their current, possibly already moved,
		// positions
		blocked := make(map[Position]bool, len(blockedBase)+len(ids))
		for p := range blockedBase {
			blocked[p] = true
		}
		for _, other := range ids {
			if other == e {
				continue
			}
			if p, ok, err := ecs.ViewGet[Position](v, other); err != nil {
				return err
			} else if ok {
				blocked[p] = true
			}
		}

		next := NextStep(*pos, tp, blocked, s.GridSize)
		if next != *pos {
			*pos = next
		}
	}
	return nil
}

// WaitSystem runs the linger-and-turn-around behavior: once an actor is at
// or next to its target the timer counts down, and at zero the target
// flips between home and work with the timer rearmed.
type WaitSystem struct {
	ecs.BaseSystem
}

func (s *WaitSystem) Name() string { return "wait" }

func (s *WaitSystem) Access() ecs.Access {
	return ecs.Access{
		Reads:  []reflect.Type{ecs.Type[Actor](), ecs.Type[Position]()},
		Writes: []reflect.Type{ecs.Type[WaitTimer](), ecs.Type[Target]()},
		After:  []string{"movement"},
	}
}

func (s *WaitSystem) Update(v *ecs.View) error {
	actors, err := ecs.ViewQuery[Actor](v)
	if err != nil {
		return err
	}
	var ids []ecs.Entity
	for e := range actors {
		ids = append(ids, e)
	}
	for _, e := range ids {
		pos, ok, err := ecs.ViewGet[Position](v, e)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		target, ok, err := ecs.ViewGetMut[Target](v, e)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		timer, ok, err := ecs.ViewGetMut[WaitTimer](v, e)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}

		tp := Position{X: target.X, Y: target.Y}
		near := pos == tp || Adjacent(pos, tp)
		switch {
		case near && timer.Ticks > 0:
			timer.Ticks--
		case near && timer.Ticks == 0:
			if tp == HomePos {
				target.X, target.Y = WorkPos.X, WorkPos.Y
			} else {
				target.X, target.Y = HomePos.X, HomePos.Y
			}
			timer.Ticks = WaitTicks
		}
	}
	return nil
}

// RenderSystem draws the grid as text and hands it to the sink. The sink
// is injectable so headless runs print while the TUI captures. After names
// the systems rendering must follow; NewDemoWorld sets it so frames show
// the tick's final state, and a standalone RenderSystem orders freely.
type RenderSystem struct {
	ecs.BaseSystem
	GridSize int
	Sink     func(frame string)
	After    []string
}

func (s *RenderSystem) Name() string { return "render" }

func (s *RenderSystem) Access() ecs.Access {
	return ecs.Access{
		Reads: []reflect.Type{ecs.Type[Position]()},
		After: s.After,
	}
}

func (s *RenderSystem) Update(v *ecs.View) error {
	if s.Sink == nil {
		return nil
	}
	positions, err := ecs.ViewQuery[Position](v)
	if err != nil {
		return err
	}
	frame := RenderGrid(s.GridSize, positions)
	s.Sink(frame)
	return nil
}

// RenderGrid renders occupied cells over an empty grid: H and W for the
// fixed locations, A for anything else.
func RenderGrid(size int, positions iter.Seq2[ecs.Entity, Position]) string {
	grid := make([][]byte, size)
	for y := range grid {
		grid[y] = make([]byte, size)
		for x := range grid[y] {
			grid[y][x] = '.'
		}
	}
	for _, p := range positions {
		if !ValidPos(p, size) {
			continue
		}
		if grid[p.Y][p.X] == '.' {
			grid[p.Y][p.X] = 'A'
		}
	}
	if ValidPos(HomePos, size) {
		grid[HomePos.Y][HomePos.X] = 'H'
	}
	if ValidPos(WorkPos, size) {
		grid[WorkPos.Y][WorkPos.X] = 'W'
	}

	var b strings.Builder
	for _, row := range grid {
		for x, cell := range row {
			if x > 0 {
				b.WriteByte(' ')
			}
			b.WriteByte(cell)
		}
		b.WriteByte('\n')
	}
	return b.String()
}
