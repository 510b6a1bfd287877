// Package replaylog persists update histories as plain-text session logs
// and parses them back into replayable form.
//
// A Writer observes sealed ticks and appends one UPDATE block per tick,
// buffering a configurable number of ticks between flushes. ParseFile
// reads a session log and rebuilds an ecs.History, using a Registry to
// turn component type names back into typed values, so a log written by
// one process can be replayed by another.
//
// Logging failures are never fatal to the simulation: the writer stashes
// the first IO error, logs it, and goes quiet.
package replaylog
