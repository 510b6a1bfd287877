package analysis

import (
	"sort"

	"github.com/san-kum/ecsim/internal/ecs"
)

// Stats aggregates one history.
type Stats struct {
	TotalTicks         int
	SystemExecutions   int
	ComponentChanges   int
	StructuralOps      int
	EntitiesCreated    int
	EntitiesRemoved    int
	BusiestTick        int
	BusiestTickChanges int
	ComponentTypes     []string
	AvgChangesPerTick  float64
}

// Analyze walks the sealed history once and returns its aggregate stats.
func Analyze(h *ecs.History) Stats {
	s := Stats{BusiestTick: -1}
	types := make(map[string]bool)

	for _, tick := range h.AllTicks() {
		s.TotalTicks++
		changes := 0
		for _, rec := range tick.Records() {
			if rec.System != ecs.StructuralRecord {
				s.SystemExecutions++
			}
			for _, ev := range rec.Events {
				switch ev.Kind {
				case ecs.EntityCreated:
					s.EntitiesCreated++
					s.StructuralOps++
				case ecs.EntityRemoved:
					s.EntitiesRemoved++
					s.StructuralOps++
				case ecs.SystemAdded:
					s.StructuralOps++
				default:
					changes++
					if ev.Type != nil {
						types[typeName(ev)] = true
					}
				}
			}
		}
		s.ComponentChanges += changes
		if changes > s.BusiestTickChanges || s.BusiestTick < 0 {
			s.BusiestTick = tick.Tick
			s.BusiestTickChanges = changes
		}
	}

	for name := range types {
		s.ComponentTypes = append(s.ComponentTypes, name)
	}
	sort.Strings(s.ComponentTypes)
	if s.TotalTicks > 0 {
		s.AvgChangesPerTick = float64(s.ComponentChanges) / float64(s.TotalTicks)
	}
	return s
}

// ChangesPerTick returns the component-change count of every tick, in
// order. The CLI feeds this to the activity plot.
func ChangesPerTick(h *ecs.History) []float64 {
	ticks := h.AllTicks()
	out := make([]float64, len(ticks))
	for i, tick := range ticks {
		out[i] = float64(tickChanges(tick))
	}
	return out
}

// AnomalousTicks flags ticks whose component-change count exceeds factor
// times the running average of the ticks before them. The first tick has
// no baseline and is never flagged.
func AnomalousTicks(h *ecs.History, factor float64) []int {
	var anomalous []int
	sum := 0
	for i, tick := range h.AllTicks() {
		changes := tickChanges(tick)
		if i > 0 {
			avg := float64(sum) / float64(i)
			if avg > 0 && float64(changes) > factor*avg {
				anomalous = append(anomalous, tick.Tick)
			}
		}
		sum += changes
	}
	return anomalous
}

func tickChanges(tick ecs.TickRecord) int {
	n := 0
	for _, rec := range tick.Records() {
		for _, ev := range rec.Events {
			if ev.IsComponentChange() {
				n++
			}
		}
	}
	return n
}

func typeName(ev ecs.Event) string {
	if n := ev.Type.Name(); n != "" {
		return n
	}
	return ev.Type.String()
}
