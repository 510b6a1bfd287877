// Package analysis summarizes update histories.
//
// The package answers the questions a debugging session starts with: how
// much changed, when, and what kind of thing was changing:
//
//   - [Analyze]: aggregate counters and the busiest tick
//   - [ChangesPerTick]: the per-tick activity curve for plotting
//   - [AnomalousTicks]: ticks with activity far above the running average
//
// # Anomaly Detection
//
// A tick is anomalous when its component-change count exceeds a factor
// times the running average of everything before it:
//
//	spikes := analysis.AnomalousTicks(world.History(), 2.0)
//	if len(spikes) > 0 {
//	    // Something unusual happened on those ticks
//	}
package analysis
