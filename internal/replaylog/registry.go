package replaylog

import (
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/san-kum/ecsim/internal/ecs"
)

// Registry maps component type names, as they appear on log lines, back to
// concrete Go types. A parser needs one entry per component type present
// in the log; writing needs none.
type Registry struct {
	types map[string]reflect.Type
}

func NewRegistry() *Registry {
	return &Registry{types: make(map[string]reflect.Type)}
}

// Register adds T under its type name and makes it reconstructible by the
// replay engine.
func Register[T any](r *Registry) {
	t := ecs.Type[T]()
	r.types[t.Name()] = t
	ecs.RegisterComponent[T]()
}

// Lookup resolves a logged type name.
func (r *Registry) Lookup(name string) (reflect.Type, bool) {
	t, ok := r.types[name]
	return t, ok
}

// Decode unmarshals a JSON value into a fresh component of the named type.
func (r *Registry) Decode(name string, data []byte) (any, error) {
	t, ok := r.types[name]
	if !ok {
		return nil, fmt.Errorf("replaylog: unregistered component type %q", name)
	}
	p := reflect.New(t)
	if err := json.Unmarshal(data, p.Interface()); err != nil {
		return nil, fmt.Errorf("replaylog: decode %s: %w", name, err)
	}
	return p.Elem().Interface(), nil
}
