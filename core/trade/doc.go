// Package trade balances regional steel production against demand through
// interregional trade. Each year runs up to three rounds: regional
// optimization (adjust utilization, close or open plants, or trade), surplus
// reduction across exporters, and deficit coverage across competitive
// producers. The final global trade balance must be exactly zero.
package trade
