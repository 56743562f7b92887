// Package events defines the simulation events emitted on the event bus.
//
// Available event types:
//   - TechnologyChosenEvent: a plant's technology decision for a year
//   - PlantOpenedEvent / PlantClosedEvent: roster changes
//   - SwitchDeferredEvent: a switch pushed out by the turnover budget
//   - YearFinalizedEvent: a balanced, committed simulation year
package events
