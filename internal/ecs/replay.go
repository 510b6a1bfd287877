package ecs

import "fmt"

// ReplayOptions tunes history reconstruction.
type ReplayOptions struct {
	// ContinueOnError skips events that cannot be applied instead of
	// stopping at the first one; the skipped events come back as
	// diagnostics.
	ContinueOnError bool
}

// Replay reconstructs the world state a history describes by applying its
// recorded events in order to a fresh world. No system logic executes; the
// replayed systems are no-op placeholders that preserve names and ordinals.
// It stops at the first event that cannot be applied.
func Replay(h *History) (*World, error) {
	w, _, err := ReplayWithOptions(h, ReplayOptions{})
	if err != nil {
		return nil, err
	}
	return w, nil
}

// ReplayWithOptions is Replay with control over error handling. With
// ContinueOnError set, the returned error is nil and every skipped event is
// reported as a diagnostic.
func ReplayWithOptions(h *History, opts ReplayOptions) (*World, []*ReplayError, error) {
	w := NewWorld()
	var diags []*ReplayError
	for _, tick := range h.AllTicks() {
		for _, rec := range tick.Records() {
			for i, ev := range rec.Events {
				err := w.applyEvent(ev)
				if err == nil {
					continue
				}
				rerr := &ReplayError{
					Tick:   tick.Tick,
					Record: rec.System,
					Event:  i,
					Entity: ev.Entity,
					Reason: err.Error(),
				}
				if !opts.ContinueOnError {
					return nil, nil, rerr
				}
				diags = append(diags, rerr)
			}
		}
	}
	return w, diags, nil
}

// applyEvent applies one recorded event without touching the pending record
// or the history; replayed worlds carry an empty history of their own.
func (w *World) applyEvent(ev Event) error {
	switch ev.Kind {
	case EntityCreated:
		if w.live[ev.Entity] {
			return fmt.Errorf("entity already live")
		}
		w.live[ev.Entity] = true
		w.order = append(w.order, ev.Entity)
		if ev.Entity.Index >= w.nextID {
			w.nextID = ev.Entity.Index + 1
		}
	case EntityRemoved:
		if !w.live[ev.Entity] {
			return fmt.Errorf("entity not live")
		}
		w.dropEntity(ev.Entity)
	case ComponentAdded, ComponentModified:
		if !w.live[ev.Entity] {
			return fmt.Errorf("entity not live")
		}
		if ev.New == nil {
			return fmt.Errorf("event carries no value for %s", typeName(ev.Type))
		}
		s, ok := w.storeFor(ev.Type)
		if !ok {
			return fmt.Errorf("component type %s not registered", typeName(ev.Type))
		}
		s.setAny(ev.Entity, ev.New)
	case ComponentRemoved:
		if !w.live[ev.Entity] {
			return fmt.Errorf("entity not live")
		}
		s, ok := w.storeFor(ev.Type)
		if !ok {
			return fmt.Errorf("component type %s not registered", typeName(ev.Type))
		}
		if _, had := s.removeAny(ev.Entity); !had {
			return fmt.Errorf("component %s not present", typeName(ev.Type))
		}
	case SystemAdded:
		w.addPlaceholder(ev.System)
	default:
		return fmt.Errorf("unknown event kind %d", ev.Kind)
	}
	return nil
}

// addPlaceholder registers a no-op stand-in for a system known only from
// history, keeping ordinals aligned with the recording world.
func (w *World) addPlaceholder(name string) {
	rs := newRegisteredSystem(&noopSystem{name: name}, len(w.systems))
	rs.placeholder = true
	w.systems = append(w.systems, rs)
	w.execStale = true
}
