package events

import "github.com/steelpath/engine/core/steel"

// PlantOpenedEvent is published when the lifecycle manager founds a plant.
type PlantOpenedEvent struct {
	Year     int
	Plant    string
	Region   string
	Tech     steel.Technology
	Capacity float64
}

// PlantClosedEvent is published when a plant is decommissioned.
type PlantClosedEvent struct {
	Year     int
	Plant    string
	Region   string
	Tech     steel.Technology
	Capacity float64
}
