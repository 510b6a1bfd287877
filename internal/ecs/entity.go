package ecs

import "fmt"

// Entity identifies a simulated object. World is the index of the world that
// issued it; Index increases monotonically within that world and is never
// reused, so every record in a retained history refers to a unique id.
type Entity struct {
	World int `json:"world"`
	Index int `json:"index"`
}

func (e Entity) String() string {
	return fmt.Sprintf("Entity(%d,%d)", e.World, e.Index)
}
