// Package sim runs the annual simulation loop: it partitions plants into
// switchers and non-switchers, charges material usage, balances regional
// supply against demand (with or without trade), opens and closes plants,
// resolves technology decisions and commits each year's state after
// consistency checks.
package sim
