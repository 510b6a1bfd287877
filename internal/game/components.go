package game

// Position is a cell on the grid.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Target is the cell an actor is walking toward.
type Target struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// WaitTimer counts down the ticks an actor lingers once it reaches its
// target. At zero the target flips and the timer rearms.
type WaitTimer struct {
	Ticks int `json:"ticks"`
}

// Marker components.
type (
	Actor    struct{}
	Home     struct{}
	Work     struct{}
	Obstacle struct{}
)
