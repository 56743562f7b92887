// Package ledger tracks the constrained resources of the simulation
// (biomass, scrap, CCS and CO2 use) as transactional per-year balances.
// Only constrained resources are tracked; scrap is additionally broken down
// by region and can be accounted regionally or as a single global pool.
package ledger
