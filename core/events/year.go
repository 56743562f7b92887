package events

// YearFinalizedEvent is published once a simulated year has passed all
// consistency checks and its state is committed.
type YearFinalizedEvent struct {
	Year         int
	Demand       float64
	Production   float64
	Capacity     float64
	TradeBalance float64
	ActivePlants int
	Switches     int
	Opened       int
	Closed       int
}
