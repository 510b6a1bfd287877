// Package ecs is an entity-component-system core built for debuggability
// rather than throughput.
//
// Every system declares up front which component types it reads and which it
// writes. Each lifecycle call runs against a capability [View] scoped to that
// declaration, and the engine diffs the declared write set before and after
// the call to produce an ordered [ChangeRecord]. Records accumulate per tick
// in an append-only [History] which [Replay] can apply to a fresh world,
// reproducing the exact entity population and component values without
// executing any system logic:
//
//	w := ecs.NewWorld()
//	w.AddSystem(&MovementSystem{})
//	w.InitSystems()
//	for i := 0; i < 60; i++ {
//	    w.Update()
//	}
//	clone, err := ecs.Replay(w.History())
//
// Access outside the declared sets fails with [*AccessError] before it can
// reach storage. Effects a system produces without going through its view
// (private fields, globals) are invisible to tracking by design.
package ecs
