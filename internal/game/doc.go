// Package game is the demo simulation: actors commuting between home and
// work on a small grid, built on the ecs core so every tick produces a
// replayable change record.
//
// The world layout and movement rules are deliberately simple. Home and
// work occupy fixed cells, actors walk one step per tick preferring the
// diagonal, and anything an actor could collide with counts as an
// obstacle. The interesting output is not the simulation itself but the
// history it generates.
package game
