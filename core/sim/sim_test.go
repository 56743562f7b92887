package sim

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/steelpath/engine/core/events"
	"github.com/steelpath/engine/core/ledger"
	"github.com/steelpath/engine/core/market"
	"github.com/steelpath/engine/core/plant"
	"github.com/steelpath/engine/core/steel"
	"github.com/steelpath/engine/core/techchoice"
	"github.com/steelpath/engine/internal/eventbus"
)

// fixtureRoster builds n identical primary plants in the region, founded
// well before the model horizon so no investment year lands in short runs.
func fixtureRoster(t *testing.T, region string, n int, capEach float64) *plant.Roster {
	t.Helper()
	r := plant.NewRoster()
	for i := 0; i < n; i++ {
		require.NoError(t, r.Add(&plant.Plant{
			Name:        fmt.Sprintf("%s Works %02d", region, i),
			Region:      region,
			Country:     "DEU",
			Capacity:    capEach,
			Status:      plant.StatusOperating,
			StartYear:   2005,
			InitialTech: steel.AvgBFBOF,
			Primary:     true,
		}))
	}
	return r
}

func fixtureInputs(roster *plant.Roster, regions []string, demand DemandTable, initialUtil map[string]float64) Inputs {
	return Inputs{
		Roster:             roster,
		Demand:             demand,
		Availability:       techchoice.NewAvailability(nil),
		Intensity:          ledger.IntensityRef{},
		InitialUtilization: initialUtil,
		Regions:            regions,
		VariableCost:       func(string, int, steel.Technology) float64 { return 300 },
		OtherOpex:          func(steel.Technology, int) float64 { return 50 },
	}
}

func demandFor(region string, perYear map[int]float64) DemandTable {
	dt := DemandTable{}
	for year, d := range perYear {
		dt[market.YearRegion{Year: year, Region: region}] = d
	}
	return dt
}

func TestRunAdjustsUtilizationWithinBand(t *testing.T) {
	roster := fixtureRoster(t, "Europe", 10, 10)
	in := fixtureInputs(roster, []string{"Europe"}, demandFor("Europe", map[int]float64{
		2020: 85, 2021: 85, 2022: 85,
	}), map[string]float64{"Europe": 0.85})

	s, err := New(Scenario{EndYear: 2022, Seed: 1}, in, nil, nil)
	require.NoError(t, err)
	res, err := s.Run(context.Background())
	require.NoError(t, err)

	// Demand fits the band, so capacity never moves.
	for _, year := range []int{2020, 2021, 2022} {
		assert.InDelta(t, 100.0, res.RegionalCapacity[year]["Europe"], 1e-9)
		assert.InDelta(t, 0.85, res.Utilization[year]["Europe"], 1e-9)
	}
	gap := res.TradeResults[2021]["Europe"]
	require.NotNil(t, gap)
	assert.Zero(t, gap.PlantsRequired)
	assert.Zero(t, gap.PlantsToClose)
	assert.Equal(t, 10, len(roster.ActiveNames(2022)))

	// Every plant keeps its technology in every year.
	for _, year := range []int{2020, 2021, 2022} {
		for name, tech := range res.Choices[year] {
			assert.Equal(t, steel.AvgBFBOF, tech, "%s in %d", name, year)
		}
	}
}

func TestRunClosesPlantsOnDemandCollapse(t *testing.T) {
	roster := fixtureRoster(t, "Europe", 40, 2.5)
	in := fixtureInputs(roster, []string{"Europe"}, demandFor("Europe", map[int]float64{
		2020: 85, 2021: 40,
	}), map[string]float64{"Europe": 0.85})

	bus := eventbus.New()
	sub := bus.Subscribe()
	s, err := New(Scenario{EndYear: 2021, Seed: 7}, in, bus, nil)
	require.NoError(t, err)
	res, err := s.Run(context.Background())
	require.NoError(t, err)

	// Shedding the surplus production at the floor takes eight average
	// plants: ceil((100*0.6 - 40) / 2.5).
	gap := res.TradeResults[2021]["Europe"]
	require.NotNil(t, gap)
	assert.Equal(t, 8, gap.PlantsToClose)
	assert.InDelta(t, 80.0, gap.NewTotalCapacity, 1e-9)
	assert.InDelta(t, 80.0, res.RegionalCapacity[2021]["Europe"], 1e-9)
	assert.InDelta(t, 0.6, res.Utilization[2021]["Europe"], 1e-9)
	assert.Equal(t, 32, len(roster.ActiveNames(2021)))

	closedEvents := 0
	for drained := false; !drained; {
		select {
		case e := <-sub:
			if _, ok := e.(events.PlantClosedEvent); ok {
				closedEvents++
			}
		default:
			drained = true
		}
	}
	assert.Equal(t, 8, closedEvents)

	closedChoices := 0
	for name, tech := range res.Choices[2021] {
		if tech == steel.CloseTechnology {
			closedChoices++
			p, ok := roster.Get(name)
			require.True(t, ok)
			assert.Equal(t, plant.StatusDecommissioned, p.Status)
			assert.False(t, res.ActiveCheck[name][2021])
		}
	}
	assert.Equal(t, 8, closedChoices)
}

func TestRunFoundingYearPlantKeepsInitialTech(t *testing.T) {
	roster := fixtureRoster(t, "Europe", 10, 10)
	require.NoError(t, roster.Add(&plant.Plant{
		Name:        "Europe Newcomer",
		Region:      "Europe",
		Country:     "DEU",
		Capacity:    10,
		Status:      plant.StatusOperating,
		StartYear:   2021,
		InitialTech: steel.DRIEAF,
		Primary:     true,
	}))
	in := fixtureInputs(roster, []string{"Europe"}, demandFor("Europe", map[int]float64{
		2020: 85, 2021: 88,
	}), map[string]float64{"Europe": 0.85})

	s, err := New(Scenario{EndYear: 2021, Seed: 3}, in, nil, nil)
	require.NoError(t, err)
	res, err := s.Run(context.Background())
	require.NoError(t, err)

	// Opening next year seeds the prior-year choice; the founding year
	// itself never reconsiders the technology.
	assert.Equal(t, steel.DRIEAF, res.Choices[2020]["Europe Newcomer"])
	assert.Equal(t, steel.DRIEAF, res.Choices[2021]["Europe Newcomer"])

	var record *ChoiceRecord
	for i := range res.ChoiceRecords {
		r := &res.ChoiceRecords[i]
		if r.Plant == "Europe Newcomer" && r.Year == 2021 {
			record = r
			break
		}
	}
	require.NotNil(t, record)
	assert.Equal(t, switchFoundingYear, record.SwitchType)
}

func TestRunIsDeterministicForASeed(t *testing.T) {
	run := func() *Results {
		roster := fixtureRoster(t, "Europe", 40, 2.5)
		in := fixtureInputs(roster, []string{"Europe"}, demandFor("Europe", map[int]float64{
			2020: 85, 2021: 40,
		}), map[string]float64{"Europe": 0.85})
		s, err := New(Scenario{EndYear: 2021, Seed: 42}, in, nil, nil)
		require.NoError(t, err)
		res, err := s.Run(context.Background())
		require.NoError(t, err)
		return res
	}

	a, b := run(), run()
	assert.Equal(t, a.Choices, b.Choices)
	assert.Equal(t, a.ChoiceRecords, b.ChoiceRecords)
	assert.Equal(t, a.RegionalCapacity, b.RegionalCapacity)
	assert.Equal(t, a.CycleLengths, b.CycleLengths)
}

func TestRunWithTradeBalancesRegions(t *testing.T) {
	roster := fixtureRoster(t, "Europe", 10, 10)
	for i := 0; i < 5; i++ {
		require.NoError(t, roster.Add(&plant.Plant{
			Name:        fmt.Sprintf("NAFTA Works %02d", i),
			Region:      "NAFTA",
			Country:     "USA",
			Capacity:    10,
			Status:      plant.StatusOperating,
			StartYear:   2005,
			InitialTech: steel.AvgBFBOF,
			Primary:     true,
		}))
	}
	demand := demandFor("Europe", map[int]float64{2020: 85, 2021: 85})
	for year, d := range map[int]float64{2020: 40, 2021: 40} {
		demand[market.YearRegion{Year: year, Region: "NAFTA"}] = d
	}
	in := fixtureInputs(roster, []string{"Europe", "NAFTA"}, demand,
		map[string]float64{"Europe": 0.85, "NAFTA": 0.8})

	s, err := New(Scenario{EndYear: 2021, Seed: 11, TradeActive: true}, in, nil, nil)
	require.NoError(t, err)
	res, err := s.Run(context.Background())
	require.NoError(t, err)

	// Both regions meet demand at an in-band rate; no plants move.
	require.NotNil(t, res.TradeResults[2021])
	assert.Equal(t, 15, len(roster.ActiveNames(2021)))
	production := 0.0
	for _, region := range []string{"Europe", "NAFTA"} {
		rate := res.Utilization[2021][region]
		assert.GreaterOrEqual(t, rate, 0.6)
		assert.LessOrEqual(t, rate, 0.95)
		production += res.RegionalCapacity[2021][region] * rate
	}
	assert.InDelta(t, 125.0, production, 1e-6)
	assert.NotNil(t, res.Assessments[2021])
}

func TestRunWithTradeClosesPlantsOnDemandCollapse(t *testing.T) {
	roster := fixtureRoster(t, "Europe", 40, 2.5)
	addRegion := func(region, country string, n int) {
		for i := 0; i < n; i++ {
			require.NoError(t, roster.Add(&plant.Plant{
				Name:        fmt.Sprintf("%s Works %02d", region, i),
				Region:      region,
				Country:     country,
				Capacity:    2.5,
				Status:      plant.StatusOperating,
				StartYear:   2005,
				InitialTech: steel.AvgBFBOF,
				Primary:     true,
			}))
		}
	}
	addRegion("NAFTA", "USA", 20)
	addRegion("China", "CHN", 40)

	demand := demandFor("Europe", map[int]float64{2020: 85, 2021: 40})
	for year, d := range map[int]float64{2020: 45, 2021: 55.5} {
		demand[market.YearRegion{Year: year, Region: "NAFTA"}] = d
	}
	for year, d := range map[int]float64{2020: 85, 2021: 85} {
		demand[market.YearRegion{Year: year, Region: "China"}] = d
	}
	in := fixtureInputs(roster, []string{"China", "Europe", "NAFTA"}, demand,
		map[string]float64{"China": 0.85, "Europe": 0.85, "NAFTA": 0.9})
	in.VariableCost = func(country string, _ int, _ steel.Technology) float64 {
		if country == "CHN" {
			return 50
		}
		return 150
	}

	bus := eventbus.New()
	sub := bus.Subscribe()
	s, err := New(Scenario{EndYear: 2021, Seed: 7, TradeActive: true}, in, bus, nil)
	require.NoError(t, err)
	res, err := s.Run(context.Background())
	require.NoError(t, err)

	// Europe holds 100 Mt against a collapsed demand of 40: the surplus
	// over the utilization floor is 100*0.6 - 40 = 20 Mt, shed as 8 whole
	// plants of 2.5 Mt. The floor leaves 8 Mt over demand, which NAFTA
	// imports.
	tr := res.TradeResults[2021]["Europe"]
	require.NotNil(t, tr)
	assert.Equal(t, 8, tr.PlantsToClose)
	assert.InDelta(t, 80.0, tr.NewTotalCapacity, 1e-9)
	assert.InDelta(t, 80.0, res.RegionalCapacity[2021]["Europe"], 1e-9)
	assert.InDelta(t, 0.6, res.Utilization[2021]["Europe"], 1e-9)
	assert.InDelta(t, 0.95, res.Utilization[2021]["NAFTA"], 1e-9)
	assert.Equal(t, 32, len(roster.ActiveInRegion(2021, "Europe")))

	production := 0.0
	for _, region := range []string{"China", "Europe", "NAFTA"} {
		production += res.RegionalCapacity[2021][region] * res.Utilization[2021][region]
	}
	assert.InDelta(t, 180.5, production, 1e-6)

	closedEvents := 0
	for drained := false; !drained; {
		select {
		case e := <-sub:
			if _, ok := e.(events.PlantClosedEvent); ok {
				closedEvents++
			}
		default:
			drained = true
		}
	}
	assert.Equal(t, 8, closedEvents)
}

func TestScenarioValidation(t *testing.T) {
	_, err := New(Scenario{StartYear: 2030, EndYear: 2020}, Inputs{}, nil, nil)
	assert.Error(t, err)

	in := fixtureInputs(fixtureRoster(t, "Europe", 1, 10), nil, nil, nil)
	_, err = New(Scenario{}, in, nil, nil)
	assert.Error(t, err)
}
