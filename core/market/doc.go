// Package market holds the per-year capacity, utilization and trade-account
// state of the simulation. Capacity and utilization are keyed by flat
// (year, region) pairs; the trade accounts follow a small double-entry
// scheme of {regional demand minus imports, imports, exports} per region.
package market
