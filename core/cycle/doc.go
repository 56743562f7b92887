// Package cycle manages the per-plant investment schedules: the recurring
// main-cycle decision years at which a plant reconsiders its base
// technology, and the bounded transitional windows between them during
// which an off-cycle switch within the same furnace group is allowed.
package cycle
