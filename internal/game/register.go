package game

import "github.com/san-kum/ecsim/internal/replaylog"

// RegisterComponents makes every demo component parseable from session
// logs and reconstructible by the replay engine.
func RegisterComponents(r *replaylog.Registry) {
	replaylog.Register[Position](r)
	replaylog.Register[Target](r)
	replaylog.Register[WaitTimer](r)
	replaylog.Register[Actor](r)
	replaylog.Register[Home](r)
	replaylog.Register[Work](r)
	replaylog.Register[Obstacle](r)
}
