// Package steel holds the technology reference data shared by the
// simulation: the technology archetypes, their furnace groups and phases,
// the directed switch allow-list and the constrained resource groupings.
package steel
