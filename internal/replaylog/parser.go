package replaylog

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/san-kum/ecsim/internal/ecs"
)

// Session is a parsed log: the header metadata plus the rebuilt history.
type Session struct {
	ID      string
	Started time.Time
	History *ecs.History
	// HasDetails reports whether component values were logged; without
	// them the history supports analysis but not replay.
	HasDetails bool
}

type parser struct {
	scanner *bufio.Scanner
	line    int
	reg     *Registry
}

// ParseFile reads a session log and rebuilds its update history. Component
// lines are decoded through the registry; every component type present in
// the log must be registered.
//
// The on-disk format groups each record's component changes apart from its
// entity operations, so the original interleaving is gone. Events are
// reassembled in replay-safe order: creations and system additions first,
// component changes next, entity removals last.
func ParseFile(path string, reg *Registry) (*Session, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("replaylog: open log: %w", err)
	}
	defer f.Close()

	p := &parser{scanner: bufio.NewScanner(f), reg: reg}
	s := &Session{History: ecs.NewHistory(), HasDetails: true}

	for {
		line, ok := p.next()
		if !ok {
			break
		}
		switch {
		case line == "":
			continue
		case strings.HasPrefix(line, "SESSION "):
			s.ID = strings.TrimPrefix(line, "SESSION ")
		case strings.HasPrefix(line, "STARTED "):
			if t, err := time.Parse(time.RFC3339, strings.TrimPrefix(line, "STARTED ")); err == nil {
				s.Started = t
			}
		case strings.HasPrefix(line, "CONFIG "):
			s.HasDetails = strings.Contains(line, "include_component_details=true")
		case strings.HasPrefix(line, "UPDATE "):
			if err := p.parseUpdate(line, s); err != nil {
				return nil, err
			}
		default:
			return nil, p.errorf("unexpected line %q", line)
		}
	}
	if err := p.scanner.Err(); err != nil {
		return nil, fmt.Errorf("replaylog: read log: %w", err)
	}
	return s, nil
}

func (p *parser) next() (string, bool) {
	if !p.scanner.Scan() {
		return "", false
	}
	p.line++
	return strings.TrimRight(p.scanner.Text(), "\r"), true
}

func (p *parser) nextExpect() (string, error) {
	line, ok := p.next()
	if !ok {
		return "", p.errorf("unexpected end of file")
	}
	return line, nil
}

func (p *parser) errorf(format string, args ...any) error {
	return fmt.Errorf("replaylog: line %d: %s", p.line, fmt.Sprintf(format, args...))
}

func (p *parser) parseUpdate(header string, s *Session) error {
	tick, err := strconv.Atoi(strings.TrimPrefix(header, "UPDATE "))
	if err != nil {
		return p.errorf("bad tick number in %q", header)
	}
	if tick != s.History.Len() {
		return p.errorf("tick %d out of sequence, expected %d", tick, s.History.Len())
	}

	line, err := p.nextExpect()
	if err != nil {
		return err
	}
	count, err := strconv.Atoi(strings.TrimPrefix(strings.TrimSpace(line), "SYSTEMS: "))
	if err != nil {
		return p.errorf("bad record count in %q", line)
	}

	var structural *ecs.ChangeRecord
	type indexed struct {
		index  int
		record ecs.ChangeRecord
	}
	var systems []indexed
	for i := 0; i < count; i++ {
		index, rec, err := p.parseRecord()
		if err != nil {
			return err
		}
		if index == ecs.StructuralRecord {
			r := rec
			structural = &r
		} else {
			systems = append(systems, indexed{index, rec})
		}
	}

	line, err = p.nextExpect()
	if err != nil {
		return err
	}
	if line != fmt.Sprintf("END %d", tick) {
		return p.errorf("expected END %d, got %q", tick, line)
	}

	s.History.BeginTick(structural)
	for _, rec := range systems {
		s.History.Record(rec.index, rec.record)
	}
	s.History.EndTick()
	return nil
}

func (p *parser) parseRecord() (int, ecs.ChangeRecord, error) {
	var rec ecs.ChangeRecord
	line, err := p.nextExpect()
	if err != nil {
		return 0, rec, err
	}
	index, err := strconv.Atoi(strings.TrimPrefix(strings.TrimSpace(line), "SYSTEM "))
	if err != nil {
		return 0, rec, p.errorf("bad system index in %q", line)
	}

	changes, err := p.parseCounted("COMPONENT_CHANGES: ", p.parseChange)
	if err != nil {
		return 0, rec, err
	}
	ops, err := p.parseCounted("WORLD_OPERATIONS: ", p.parseOp)
	if err != nil {
		return 0, rec, err
	}

	// creations and system additions first, then values, then removals
	for _, ev := range ops {
		if ev.Kind == ecs.EntityCreated || ev.Kind == ecs.SystemAdded {
			rec.Events = append(rec.Events, ev)
		}
	}
	rec.Events = append(rec.Events, changes...)
	for _, ev := range ops {
		if ev.Kind == ecs.EntityRemoved {
			rec.Events = append(rec.Events, ev)
		}
	}
	return index, rec, nil
}

func (p *parser) parseCounted(prefix string, parse func(string) (ecs.Event, error)) ([]ecs.Event, error) {
	line, err := p.nextExpect()
	if err != nil {
		return nil, err
	}
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, prefix) {
		return nil, p.errorf("expected %q header, got %q", prefix, line)
	}
	n, err := strconv.Atoi(strings.TrimPrefix(trimmed, prefix))
	if err != nil {
		return nil, p.errorf("bad count in %q", line)
	}
	events := make([]ecs.Event, 0, n)
	for i := 0; i < n; i++ {
		line, err := p.nextExpect()
		if err != nil {
			return nil, err
		}
		ev, err := parse(strings.TrimSpace(line))
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	return events, nil
}

// parseChange decodes "<ADD|MOD|REM> Entity(w,i) <TypeName> <value_json>".
func (p *parser) parseChange(line string) (ecs.Event, error) {
	parts := strings.SplitN(line, " ", 4)
	if len(parts) != 4 {
		return ecs.Event{}, p.errorf("malformed component change %q", line)
	}
	e, err := parseEntity(parts[1])
	if err != nil {
		return ecs.Event{}, p.errorf("%v in %q", err, line)
	}
	name := parts[2]
	t, ok := p.reg.Lookup(name)
	if !ok {
		return ecs.Event{}, p.errorf("unregistered component type %q", name)
	}
	ev := ecs.Event{Entity: e, Type: t}
	var value any
	if parts[3] != "-" {
		value, err = p.reg.Decode(name, []byte(parts[3]))
		if err != nil {
			return ecs.Event{}, p.errorf("%v", err)
		}
	}
	switch parts[0] {
	case "ADD":
		ev.Kind = ecs.ComponentAdded
		ev.New = value
	case "MOD":
		ev.Kind = ecs.ComponentModified
		ev.New = value
	case "REM":
		ev.Kind = ecs.ComponentRemoved
		ev.Old = value
	default:
		return ecs.Event{}, p.errorf("unknown change kind %q", parts[0])
	}
	return ev, nil
}

// parseOp decodes entity and system operations.
func (p *parser) parseOp(line string) (ecs.Event, error) {
	parts := strings.Fields(line)
	if len(parts) < 2 {
		return ecs.Event{}, p.errorf("malformed operation %q", line)
	}
	switch parts[0] {
	case "CREATE_ENTITY", "REMOVE_ENTITY":
		e, err := parseEntity(parts[1])
		if err != nil {
			return ecs.Event{}, p.errorf("%v in %q", err, line)
		}
		kind := ecs.EntityCreated
		if parts[0] == "REMOVE_ENTITY" {
			kind = ecs.EntityRemoved
		}
		return ecs.Event{Kind: kind, Entity: e}, nil
	case "ADD_SYSTEM":
		if len(parts) != 3 {
			return ecs.Event{}, p.errorf("malformed ADD_SYSTEM %q", line)
		}
		ordinal, err := strconv.Atoi(parts[2])
		if err != nil {
			return ecs.Event{}, p.errorf("bad ordinal in %q", line)
		}
		return ecs.Event{Kind: ecs.SystemAdded, System: parts[1], Ordinal: ordinal}, nil
	}
	return ecs.Event{}, p.errorf("unknown operation %q", parts[0])
}

// parseEntity decodes "Entity(w,i)".
func parseEntity(s string) (ecs.Entity, error) {
	body, ok := strings.CutPrefix(s, "Entity(")
	if !ok || !strings.HasSuffix(body, ")") {
		return ecs.Entity{}, fmt.Errorf("malformed entity %q", s)
	}
	body = strings.TrimSuffix(body, ")")
	ws, is, ok := strings.Cut(body, ",")
	if !ok {
		return ecs.Entity{}, fmt.Errorf("malformed entity %q", s)
	}
	w, err := strconv.Atoi(ws)
	if err != nil {
		return ecs.Entity{}, fmt.Errorf("malformed entity %q", s)
	}
	i, err := strconv.Atoi(is)
	if err != nil {
		return ecs.Entity{}, fmt.Errorf("malformed entity %q", s)
	}
	return ecs.Entity{World: w, Index: i}, nil
}
