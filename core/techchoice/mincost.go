package techchoice

import (
	"fmt"

	"github.com/steelpath/engine/core/ledger"
	"github.com/steelpath/engine/core/steel"
)

// MinCostTechForRegion picks the technology of a plant opening in the
// region: the lowest levelized cost among the archetypes that are available
// and whose projected resource draw fits the remaining balances. When every
// archetype fails the resource checks, a scrap-starved region falls back to
// the least scrap-consuming available technology, otherwise the plain
// cost minimum stands.
func (e *Engine) MinCostTechForRegion(year int, region, plantName string, capacity float64) (steel.Technology, error) {
	costs := make(map[steel.Technology]float64)
	for _, tech := range steel.All {
		if cost, ok := e.lcost[CostKey{Year: year, Region: region, Tech: tech}]; ok {
			costs[tech] = cost
		}
	}
	if len(costs) == 0 {
		return "", fmt.Errorf("no levelized cost entries for region %s in %d", region, year)
	}

	lowest := minCost(costs, steel.All)
	if !e.opts.EnforceConstraints {
		return lowest, nil
	}

	var available []steel.Technology
	for _, tech := range steel.All {
		if e.avail.Available(tech, year, e.opts.Moratorium) {
			available = append(available, tech)
		}
	}
	req := Request{Year: year, Plant: plantName, Region: region, Capacity: capacity}
	potential := e.constraintFiltered(req, available, "new plant")

	if len(potential) == 0 {
		scrapRegion := ""
		if e.opts.RegionalScrap {
			scrapRegion = region
		}
		if e.led.Balance(year, steel.ResourceScrap, scrapRegion) <= 0 {
			tech, err := e.LeastConsumingTech(steel.MaterialScrap, year)
			if err != nil {
				return "", err
			}
			potential = append(potential, tech)
		} else {
			potential = append(potential, lowest)
		}
	}

	filtered := make(map[steel.Technology]float64, len(potential))
	for _, tech := range potential {
		if cost, ok := costs[tech]; ok {
			filtered[tech] = cost
		}
	}
	if len(filtered) == 0 {
		return lowest, nil
	}
	return minCost(filtered, steel.All), nil
}

// LeastConsumingTech returns the available technology with the lowest
// consumption rate of the material.
func (e *Engine) LeastConsumingTech(material steel.Material, year int) (steel.Technology, error) {
	var best steel.Technology
	found := false
	for _, tech := range steel.All {
		if !e.avail.Available(tech, year, e.opts.Moratorium) {
			continue
		}
		rate := e.intensity[ledger.IntensityKey{Tech: tech, Material: material}]
		if !found || rate < e.intensity[ledger.IntensityKey{Tech: best, Material: material}] {
			best = tech
			found = true
		}
	}
	if !found {
		return "", fmt.Errorf("no technology available in %d", year)
	}
	return best, nil
}

// minCost returns the cheapest technology, iterating in reference order so
// ties resolve deterministically.
func minCost(costs map[steel.Technology]float64, order []steel.Technology) steel.Technology {
	var best steel.Technology
	found := false
	for _, tech := range order {
		cost, ok := costs[tech]
		if !ok {
			continue
		}
		if !found || cost < costs[best] {
			best = tech
			found = true
		}
	}
	return best
}
