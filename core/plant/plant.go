package plant

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/google/uuid"

	"github.com/steelpath/engine/core/steel"
)

// Status is a plant's lifecycle state.
type Status string

const (
	StatusOperating      Status = "operating"
	StatusNew            Status = "new model plant"
	StatusDecommissioned Status = "decommissioned"
)

// Plant is one steel plant record.
type Plant struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Region      string           `json:"region"`
	Country     string           `json:"country"`
	Capacity    float64          `json:"capacity_mt"`
	Status      Status           `json:"status"`
	StartYear   int              `json:"start_year"`
	EndYear     int              `json:"end_year,omitempty"`
	InitialTech steel.Technology `json:"initial_technology"`
	// Primary is false for secondary (scrap-fed) capacity, which is
	// pinned to EAF for the whole run.
	Primary bool `json:"primary"`
}

// Active reports whether the plant operates in the given year.
func (p *Plant) Active(year int) bool {
	return p.Status != StatusDecommissioned && p.StartYear <= year
}

// Roster is the mutable collection of all plant records, open and closed.
type Roster struct {
	plants map[string]*Plant
	order  []string
}

// NewRoster returns an empty roster.
func NewRoster() *Roster {
	return &Roster{plants: make(map[string]*Plant)}
}

// Add registers a plant. Duplicate names are rejected: every container in
// the simulation keys plants by name.
func (r *Roster) Add(p *Plant) error {
	if _, ok := r.plants[p.Name]; ok {
		return fmt.Errorf("duplicate plant name %q", p.Name)
	}
	r.plants[p.Name] = p
	r.order = append(r.order, p.Name)
	return nil
}

// Get returns the plant by name.
func (r *Roster) Get(name string) (*Plant, bool) {
	p, ok := r.plants[name]
	return p, ok
}

// ActiveNames returns the names of plants operating in the year, in
// insertion order.
func (r *Roster) ActiveNames(year int) []string {
	var names []string
	for _, name := range r.order {
		if r.plants[name].Active(year) {
			names = append(names, name)
		}
	}
	return names
}

// ActiveInRegion returns the operating plants of a region for the year.
func (r *Roster) ActiveInRegion(year int, region string) []string {
	var names []string
	for _, name := range r.order {
		p := r.plants[name]
		if p.Region == region && p.Active(year) {
			names = append(names, name)
		}
	}
	return names
}

// Capacities returns name -> capacity for the plants active in the year.
func (r *Roster) Capacities(year int) map[string]float64 {
	out := make(map[string]float64)
	for _, name := range r.ActiveNames(year) {
		out[name] = r.plants[name].Capacity
	}
	return out
}

// Regions returns name -> region for the plants active in the year.
func (r *Roster) Regions(year int) map[string]string {
	out := make(map[string]string)
	for _, name := range r.ActiveNames(year) {
		out[name] = r.plants[name].Region
	}
	return out
}

// CountriesInRegion returns the sorted distinct countries of the region's
// plants (open or closed; closed plants still witness viable locations).
func (r *Roster) CountriesInRegion(region string) []string {
	seen := make(map[string]bool)
	for _, name := range r.order {
		p := r.plants[name]
		if p.Region == region && p.Country != "" {
			seen[p.Country] = true
		}
	}
	countries := make([]string, 0, len(seen))
	for c := range seen {
		countries = append(countries, c)
	}
	sort.Strings(countries)
	return countries
}

// AverageCapacity returns the mean capacity across all records.
func (r *Roster) AverageCapacity() float64 {
	if len(r.order) == 0 {
		return 0
	}
	total := 0.0
	for _, name := range r.order {
		total += r.plants[name].Capacity
	}
	return total / float64(len(r.order))
}

// AverageActiveCapacity returns the mean capacity of the plants operating
// in the year.
func (r *Roster) AverageActiveCapacity(year int) float64 {
	total, n := 0.0, 0
	for _, name := range r.order {
		p := r.plants[name]
		if p.Active(year) {
			total += p.Capacity
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return total / float64(n)
}

// Snapshot returns copies of every record, in insertion order.
func (r *Roster) Snapshot() []Plant {
	out := make([]Plant, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, *r.plants[name])
	}
	return out
}

// Len returns the number of records, open and closed.
func (r *Roster) Len() int { return len(r.order) }

// Close decommissions the plant as of the given year.
func (r *Roster) Close(name string, year int) error {
	p, ok := r.plants[name]
	if !ok {
		return fmt.Errorf("unknown plant %q", name)
	}
	p.Status = StatusDecommissioned
	p.EndYear = year
	return nil
}

// countrySpecific pins new plants of single-country regions.
var countrySpecific = map[string]string{"China": "CHN", "India": "IND"}

// NewPlantInRegion builds the record for a plant opened during the run.
// The country is fixed for single-country regions, otherwise drawn from
// the countries already present in the region via the injected generator.
func (r *Roster) NewPlantInRegion(region string, capacity float64, year int, rng *rand.Rand) (*Plant, error) {
	country, ok := countrySpecific[region]
	if !ok {
		countries := r.CountriesInRegion(region)
		if len(countries) == 0 {
			return nil, fmt.Errorf("no reference countries for region %q", region)
		}
		country = countries[rng.Intn(len(countries))]
	}
	id := uuid.NewString()
	return &Plant{
		ID:        id,
		Name:      fmt.Sprintf("%s - %s", id[:8], country),
		Region:    region,
		Country:   country,
		Capacity:  capacity,
		Status:    StatusNew,
		StartYear: year,
		Primary:   true,
	}, nil
}
