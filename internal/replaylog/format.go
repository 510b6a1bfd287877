package replaylog

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/san-kum/ecsim/internal/ecs"
)

// Log grammar, one block per tick:
//
//	UPDATE <tick>
//	SYSTEMS: <record count>
//	  SYSTEM <index>            (-1 = driver operations)
//	    COMPONENT_CHANGES: <n>
//	      <ADD|MOD|REM> Entity(<world>,<index>) <TypeName> <value_json>
//	    WORLD_OPERATIONS: <n>
//	      <CREATE_ENTITY|REMOVE_ENTITY> Entity(<world>,<index>)
//	      ADD_SYSTEM <name> <ordinal>
//	END <tick>

func formatTick(b *strings.Builder, rec ecs.TickRecord, includeDetails bool) {
	records := rec.Records()
	fmt.Fprintf(b, "UPDATE %d\n", rec.Tick)
	fmt.Fprintf(b, "SYSTEMS: %d\n", len(records))
	for _, cr := range records {
		fmt.Fprintf(b, "  SYSTEM %d\n", cr.System)
		changes := cr.ComponentEvents()
		fmt.Fprintf(b, "    COMPONENT_CHANGES: %d\n", len(changes))
		for _, ev := range changes {
			fmt.Fprintf(b, "      %s %s %s %s\n",
				ev.Kind, ev.Entity, typeLabel(ev), valueLabel(ev, includeDetails))
		}
		ops := cr.WorldOps()
		fmt.Fprintf(b, "    WORLD_OPERATIONS: %d\n", len(ops))
		for _, ev := range ops {
			switch ev.Kind {
			case ecs.SystemAdded:
				fmt.Fprintf(b, "      %s %s %d\n", ev.Kind, ev.System, ev.Ordinal)
			default:
				fmt.Fprintf(b, "      %s %s\n", ev.Kind, ev.Entity)
			}
		}
	}
	fmt.Fprintf(b, "END %d\n\n", rec.Tick)
}

func typeLabel(ev ecs.Event) string {
	if ev.Type == nil {
		return "?"
	}
	if n := ev.Type.Name(); n != "" {
		return n
	}
	return ev.Type.String()
}

// valueLabel renders the event's payload: the new value for adds and
// modifications, the removed value for removals. Without component details
// the value is elided.
func valueLabel(ev ecs.Event, includeDetails bool) string {
	if !includeDetails {
		return "-"
	}
	v := ev.New
	if ev.Kind == ecs.ComponentRemoved {
		v = ev.Old
	}
	data, err := json.Marshal(v)
	if err != nil {
		return "-"
	}
	return string(data)
}
