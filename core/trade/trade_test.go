package trade

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/steelpath/engine/core/market"
	"github.com/steelpath/engine/core/steel"
)

func TestStatusOf(t *testing.T) {
	assert.Equal(t, StatusExporter, StatusOf(true, 5))
	assert.Equal(t, StatusImporter, StatusOf(false, -5))
	assert.Equal(t, StatusDomestic, StatusOf(false, 5))
	assert.Equal(t, StatusDomestic, StatusOf(true, -5))
	assert.Equal(t, StatusImporter, StatusOf(false, 0))
}

func TestAssessRelativeCost(t *testing.T) {
	cos := map[string]float64{"A": 10, "B": 20, "C": 30}
	got := AssessRelativeCost(cos, nil, 0.1)

	// Mean 20, range 20, boundary 22.
	assert.InDelta(t, 22.0, got["A"].UpperBoundary, 1e-9)
	assert.True(t, got["A"].CloseToMean)
	assert.True(t, got["B"].CloseToMean)
	assert.False(t, got["C"].CloseToMean)
	assert.True(t, got["B"].BelowAverage)
	assert.False(t, got["C"].BelowAverage)
}

func TestRegionalCost(t *testing.T) {
	plants := []PlantCost{
		{Name: "p1", Region: "Europe", Country: "DEU", Capacity: 10},
		{Name: "p2", Region: "Europe", Country: "FRA", Capacity: 10},
	}
	in := CostInputs{
		VariableCost: func(string, int, steel.Technology) float64 { return 3 },
		OtherOpex:    func(steel.Technology, int) float64 { return 1 },
		TechChoice:   func(int, string) steel.Technology { return steel.AvgBFBOF },
	}
	util := market.NewUtilizationState([]int{2024, 2025}, []string{"Europe"})
	util.AssignYear(2024, map[string]float64{"Europe": 0.8})

	got := RegionalCost(2025, 2020, plants, in, util, map[string]float64{"Europe": 20})
	// Each plant: 10 * 0.8 * 4 = 32; utilized capacity 16 -> 64/16.
	assert.InDelta(t, 4.0, got["Europe"], 1e-9)
}

func TestMktBalance(t *testing.T) {
	entry, balance := mktBalance(90, 100)
	assert.Equal(t, 10.0, entry.Imports)
	assert.Equal(t, 90.0, entry.DemandMinusImports)
	assert.Equal(t, -10.0, balance)

	entry, balance = mktBalance(110, 100)
	assert.Equal(t, 10.0, entry.Exports)
	assert.Equal(t, 100.0, entry.DemandMinusImports)
	assert.Equal(t, 10.0, balance)
}

func TestPlanPlantClosures(t *testing.T) {
	plan := planPlantClosures(100, 10, 2.5, 54, 0.6, 0.95)
	assert.Equal(t, 4, plan.plantsToClose)
	assert.InDelta(t, 90.0, plan.newTotalCapacity, 1e-9)
	assert.InDelta(t, 0.6, plan.newUtilization, 1e-9)
	assert.InDelta(t, 54.0, plan.newUtilizedCapacity, 1e-9)

	// Whole-plant rounding can leave the region at the floor with a small
	// surplus over demand.
	plan = planPlantClosures(100, 20, 2.5, 40, 0.6, 0.95)
	assert.Equal(t, 8, plan.plantsToClose)
	assert.InDelta(t, 80.0, plan.newTotalCapacity, 1e-9)
	assert.InDelta(t, 0.6, plan.newUtilization, 1e-9)
	assert.InDelta(t, 48.0, plan.newUtilizedCapacity, 1e-9)
}

func TestPlanPlantOpenings(t *testing.T) {
	plan := planPlantOpenings(100, 5, 2.5, 2.375, 100, 0.6, 0.95)
	assert.Equal(t, 3, plan.plantsRequired)
	assert.InDelta(t, 107.5, plan.newTotalCapacity, 1e-9)
	assert.InDelta(t, 100.0/107.5, plan.newUtilization, 1e-9)
}

func newRun(t *testing.T, regions []string, priorUtil map[string]float64) (*market.Accounts, *market.UtilizationState) {
	t.Helper()
	accounts := market.NewAccounts([]int{2025}, regions)
	util := market.NewUtilizationState([]int{2024, 2025}, regions)
	util.AssignYear(2024, priorUtil)
	return accounts, util
}

func TestRunBalancedWorld(t *testing.T) {
	regions := []string{"A", "B"}
	accounts, util := newRun(t, regions, map[string]float64{"A": 0.8, "B": 0.8})
	f := NewFlow(Config{}, nil)

	out, err := f.Run(RunInputs{
		Year: 2025, StartYear: 2020, Regions: regions,
		Demand:            map[string]float64{"A": 80, "B": 40},
		CostOfSteelmaking: map[string]float64{"A": 10, "B": 12},
		AvgPlantCapacity:  2.5,
		Accounts:          accounts,
		Utilization:       util,
		Capacity:          map[string]float64{"A": 100, "B": 50},
	})
	require.NoError(t, err)

	assert.Zero(t, accounts.Aggregate(2025, market.AccountTrade))
	assert.InDelta(t, 120.0, accounts.Aggregate(2025, market.AccountProduction), 1e-9)
	assert.Equal(t, []string{caseBalanced}, out.Results["A"].Cases)
	assert.InDelta(t, 0.8, util.Value(2025, "A"), 1e-9)
	assert.InDelta(t, 100.0, out.RegionalCapacity["A"], 1e-9)
}

func TestRunExportCoversImport(t *testing.T) {
	regions := []string{"Cheap", "Costly"}
	accounts, util := newRun(t, regions, map[string]float64{"Cheap": 0.8, "Costly": 0.8})
	f := NewFlow(Config{}, nil)

	out, err := f.Run(RunInputs{
		Year: 2025, StartYear: 2020, Regions: regions,
		Demand:            map[string]float64{"Cheap": 70, "Costly": 90},
		CostOfSteelmaking: map[string]float64{"Cheap": 10, "Costly": 30},
		AvgPlantCapacity:  2.5,
		Accounts:          accounts,
		Utilization:       util,
		Capacity:          map[string]float64{"Cheap": 100, "Costly": 90},
	})
	require.NoError(t, err)

	assert.Equal(t, StatusExporter, out.Results["Cheap"].Status)
	assert.Equal(t, StatusImporter, out.Results["Costly"].Status)
	// Costly caps out at 0.95 and imports 4.5; Cheap sheds the excess
	// surplus by lowering utilization.
	assert.InDelta(t, 0.95, util.Value(2025, "Costly"), 1e-9)
	assert.InDelta(t, 0.745, util.Value(2025, "Cheap"), 1e-9)
	assert.Contains(t, out.Results["Cheap"].Cases, caseLowerUtil)
	assert.Zero(t, market.RoundTo(accounts.Aggregate(2025, market.AccountTrade), 3))
	assert.InDelta(t, 160.0, accounts.Aggregate(2025, market.AccountProduction), 1e-9)
}

func TestRunSurplusClosesExporterPlants(t *testing.T) {
	regions := []string{"Cheap", "Costly"}
	accounts, util := newRun(t, regions, map[string]float64{"Cheap": 0.95, "Costly": 0.9})
	f := NewFlow(Config{}, nil)

	out, err := f.Run(RunInputs{
		Year: 2025, StartYear: 2020, Regions: regions,
		Demand:            map[string]float64{"Cheap": 50, "Costly": 90},
		CostOfSteelmaking: map[string]float64{"Cheap": 10, "Costly": 30},
		AvgPlantCapacity:  2.5,
		Accounts:          accounts,
		Utilization:       util,
		Capacity:          map[string]float64{"Cheap": 100, "Costly": 100},
	})
	require.NoError(t, err)

	// Utilization can only shed 35 Mt of the 45 Mt surplus; the rest
	// closes plants.
	res := out.Results["Cheap"]
	assert.Contains(t, res.Cases, caseLowerUtil)
	assert.Contains(t, res.Cases, caseExporterClose)
	assert.Equal(t, 7, res.PlantsToClose)
	assert.InDelta(t, 82.5, out.RegionalCapacity["Cheap"], 1e-9)
	assert.InDelta(t, 50.0/82.5, util.Value(2025, "Cheap"), 1e-9)
	assert.Zero(t, market.RoundTo(accounts.Aggregate(2025, market.AccountTrade), 3))
	assert.InDelta(t, 140.0, accounts.Aggregate(2025, market.AccountProduction), 1e-9)
}

func TestRunDemandCollapseClosesWholePlants(t *testing.T) {
	regions := []string{"Cheap", "Costly", "Mid"}
	accounts, util := newRun(t, regions, map[string]float64{"Cheap": 0.85, "Costly": 0.85, "Mid": 0.9})
	f := NewFlow(Config{}, nil)

	out, err := f.Run(RunInputs{
		Year: 2025, StartYear: 2020, Regions: regions,
		Demand:            map[string]float64{"Cheap": 85, "Costly": 40, "Mid": 55.5},
		CostOfSteelmaking: map[string]float64{"Cheap": 100, "Costly": 200, "Mid": 200},
		AvgPlantCapacity:  2.5,
		Accounts:          accounts,
		Utilization:       util,
		Capacity:          map[string]float64{"Cheap": 100, "Costly": 100, "Mid": 50},
	})
	require.NoError(t, err)

	// Costly holds 100 Mt against a demand of 40: the excess over the
	// utilization floor is 100*0.6 - 40 = 20 Mt, shed as 8 whole plants of
	// 2.5 Mt. The floor then leaves 8 Mt of production over demand, which
	// Mid imports.
	res := out.Results["Costly"]
	assert.Equal(t, []string{caseClosePlant}, res.Cases)
	assert.Equal(t, 8, res.PlantsToClose)
	assert.InDelta(t, 80.0, res.NewTotalCapacity, 1e-9)
	assert.InDelta(t, 0.6, res.NewUtilization, 1e-9)
	assert.InDelta(t, 48.0, res.NewUtilizedCapacity, 1e-9)
	assert.InDelta(t, 80.0, out.RegionalCapacity["Costly"], 1e-9)
	assert.InDelta(t, 8.0, accounts.Balance(2025, "Costly", market.AccountTrade), 1e-9)
	assert.InDelta(t, -8.0, accounts.Balance(2025, "Mid", market.AccountTrade), 1e-9)
	assert.Zero(t, market.RoundTo(accounts.Aggregate(2025, market.AccountTrade), 3))
}

func TestRunDeficitAbsorbedCheapestFirst(t *testing.T) {
	regions := []string{"CheapA", "MidB", "Pricey"}
	accounts, util := newRun(t, regions, map[string]float64{"CheapA": 0.8, "MidB": 0.8, "Pricey": 0.9})
	f := NewFlow(Config{}, nil)

	out, err := f.Run(RunInputs{
		Year: 2025, StartYear: 2020, Regions: regions,
		Demand:            map[string]float64{"CheapA": 80, "MidB": 80, "Pricey": 55},
		CostOfSteelmaking: map[string]float64{"CheapA": 10, "MidB": 15, "Pricey": 40},
		AvgPlantCapacity:  2.5,
		Accounts:          accounts,
		Utilization:       util,
		Capacity:          map[string]float64{"CheapA": 100, "MidB": 100, "Pricey": 50},
	})
	require.NoError(t, err)

	// Pricey imports 7.5 Mt; the cheapest competitive region absorbs the
	// whole deficit before the next one is touched.
	assert.Contains(t, out.Results["CheapA"].Cases, caseAllImports)
	assert.NotContains(t, out.Results["MidB"].Cases, caseAllImports)
	assert.NotContains(t, out.Results["MidB"].Cases, casePartImports)
	assert.InDelta(t, 0.875, util.Value(2025, "CheapA"), 1e-9)
	assert.InDelta(t, 0.8, util.Value(2025, "MidB"), 1e-9)
	assert.Zero(t, market.RoundTo(accounts.Aggregate(2025, market.AccountTrade), 3))
}

func TestRunSurplusShedCheapestFirst(t *testing.T) {
	regions := []string{"CheapA", "MidB", "Pricey"}
	accounts, util := newRun(t, regions, map[string]float64{"CheapA": 0.8, "MidB": 0.8, "Pricey": 0.9})
	f := NewFlow(Config{}, nil)

	out, err := f.Run(RunInputs{
		Year: 2025, StartYear: 2020, Regions: regions,
		Demand:            map[string]float64{"CheapA": 75, "MidB": 75, "Pricey": 53.5},
		CostOfSteelmaking: map[string]float64{"CheapA": 10, "MidB": 15, "Pricey": 40},
		AvgPlantCapacity:  2.5,
		Accounts:          accounts,
		Utilization:       util,
		Capacity:          map[string]float64{"CheapA": 100, "MidB": 100, "Pricey": 50},
	})
	require.NoError(t, err)

	// Both exporters hold 5 Mt of surplus against a 4 Mt global overhang;
	// the cheapest one lowers utilization first and the other keeps its
	// exports.
	assert.Contains(t, out.Results["CheapA"].Cases, caseLowerUtil)
	assert.NotContains(t, out.Results["MidB"].Cases, caseLowerUtil)
	assert.InDelta(t, 0.76, util.Value(2025, "CheapA"), 1e-9)
	assert.InDelta(t, 0.8, util.Value(2025, "MidB"), 1e-9)
	assert.Zero(t, market.RoundTo(accounts.Aggregate(2025, market.AccountTrade), 3))
}

func TestRunDeficitOpensCheapestRegion(t *testing.T) {
	regions := []string{"Cheap", "Costly"}
	accounts, util := newRun(t, regions, map[string]float64{"Cheap": 0.95, "Costly": 0.9})
	f := NewFlow(Config{}, nil)

	out, err := f.Run(RunInputs{
		Year: 2025, StartYear: 2020, Regions: regions,
		Demand:            map[string]float64{"Cheap": 100, "Costly": 55},
		CostOfSteelmaking: map[string]float64{"Cheap": 10, "Costly": 30},
		AvgPlantCapacity:  2.5,
		Accounts:          accounts,
		Utilization:       util,
		Capacity:          map[string]float64{"Cheap": 100, "Costly": 50},
	})
	require.NoError(t, err)

	res := out.Results["Cheap"]
	assert.Contains(t, res.Cases, caseOpenPlant)
	assert.Contains(t, res.Cases, casePartImports)
	assert.Contains(t, res.Cases, caseCheapestOpen)
	assert.InDelta(t, 115.0, out.RegionalCapacity["Cheap"], 1e-9)
	assert.InDelta(t, 107.5/115.0, util.Value(2025, "Cheap"), 1e-9)
	assert.Zero(t, market.RoundTo(accounts.Aggregate(2025, market.AccountTrade), 3))
	assert.InDelta(t, 155.0, accounts.Aggregate(2025, market.AccountProduction), 1e-9)
}

func TestRunRejectsZeroInitialUtilization(t *testing.T) {
	regions := []string{"A"}
	accounts, util := newRun(t, regions, map[string]float64{"A": 0})
	f := NewFlow(Config{}, nil)

	_, err := f.Run(RunInputs{
		Year: 2025, StartYear: 2020, Regions: regions,
		Demand:            map[string]float64{"A": 80},
		CostOfSteelmaking: map[string]float64{"A": 10},
		AvgPlantCapacity:  2.5,
		Accounts:          accounts,
		Utilization:       util,
		Capacity:          map[string]float64{"A": 100},
	})
	var cerr *market.ConsistencyError
	require.ErrorAs(t, err, &cerr)
}
