package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/steelpath/engine/core/steel"
	"github.com/steelpath/engine/infra/logger"
)

func newTestLedger(regionalScrap bool) *Ledger {
	l := New(regionalScrap, logger.NopLogger{})
	l.InitYears([]int{2020, 2021}, []string{"Europe", "China"})
	l.LoadConstraint(steel.ResourceBiomass, map[int]float64{2020: 100, 2021: 120})
	l.LoadConstraint(steel.ResourceCCS, map[int]float64{2020: 50, 2021: 60})
	l.LoadConstraint(steel.ResourceCO2Use, map[int]float64{2020: 10, 2021: 10})
	l.LoadScrapConstraint(map[int]map[string]float64{
		2020: {"Europe": 30, "China": 70},
		2021: {"Europe": 35, "China": 75},
	})
	for _, res := range steel.Resources {
		l.SetYearBalance(2020, res)
	}
	return l
}

func TestTransactInsufficientBalanceNoMutation(t *testing.T) {
	l := New(false, logger.NopLogger{})
	l.InitYears([]int{2020}, []string{"Europe"})
	l.LoadConstraint(steel.ResourceBiomass, map[int]float64{2020: 5})
	l.SetYearBalance(2020, steel.ResourceBiomass)

	ok := l.Transact(2020, steel.ResourceBiomass, 10, "", false, true)
	assert.False(t, ok)
	assert.Equal(t, 5.0, l.Balance(2020, steel.ResourceBiomass, ""))
	assert.Equal(t, 0.0, l.UsageFor(2020, steel.ResourceBiomass))
}

func TestTransactCheckOnlyNeverMutates(t *testing.T) {
	l := newTestLedger(true)
	for i := 0; i < 3; i++ {
		ok := l.Transact(2020, steel.ResourceBiomass, 40, "", false, false)
		assert.True(t, ok)
	}
	assert.Equal(t, 100.0, l.Balance(2020, steel.ResourceBiomass, ""))

	ok := l.Transact(2020, steel.ResourceBiomass, 500, "", false, false)
	assert.False(t, ok)
	assert.Equal(t, 100.0, l.Balance(2020, steel.ResourceBiomass, ""))
}

func TestTransactOverrideGoesNegative(t *testing.T) {
	l := newTestLedger(true)
	ok := l.Transact(2020, steel.ResourceCCS, 80, "", true, true)
	require.True(t, ok)
	assert.Equal(t, -30.0, l.Balance(2020, steel.ResourceCCS, ""))
	assert.Equal(t, 80.0, l.UsageFor(2020, steel.ResourceCCS))
}

func TestScrapRegionalMode(t *testing.T) {
	l := newTestLedger(true)
	// Europe has 30; a 40 draw fails regionally even though the pool has 100.
	ok := l.Transact(2020, steel.ResourceScrap, 40, "Europe", false, true)
	assert.False(t, ok)

	ok = l.Transact(2020, steel.ResourceScrap, 20, "Europe", false, true)
	require.True(t, ok)
	assert.Equal(t, 10.0, l.Balance(2020, steel.ResourceScrap, "Europe"))
	assert.Equal(t, 80.0, l.Balance(2020, steel.ResourceScrap, ""))
}

func TestScrapPooledMode(t *testing.T) {
	l := newTestLedger(false)
	// The pooled balance is 100, so a 40 draw in Europe succeeds and is
	// still recorded against Europe's regional breakdown.
	ok := l.Transact(2020, steel.ResourceScrap, 40, "Europe", false, true)
	require.True(t, ok)
	assert.Equal(t, -10.0, l.Balance(2020, steel.ResourceScrap, "Europe"))
	assert.Equal(t, 60.0, l.Balance(2020, steel.ResourceScrap, ""))
	assert.Equal(t, 40.0, l.UsageFor(2020, steel.ResourceScrap))
}

func TestNegativeTransactionRestoresBalance(t *testing.T) {
	l := newTestLedger(true)
	require.True(t, l.Transact(2020, steel.ResourceScrap, 20, "China", false, true))
	require.True(t, l.Transact(2020, steel.ResourceScrap, -20, "China", true, true))
	assert.Equal(t, 70.0, l.Balance(2020, steel.ResourceScrap, "China"))
	assert.Equal(t, 0.0, l.UsageFor(2020, steel.ResourceScrap))
}

func TestProjectedUsage(t *testing.T) {
	ref := IntensityRef{
		{Tech: steel.EAF, Material: steel.MaterialScrap}: 1.1,
	}
	got := ProjectedUsage(ref, steel.EAF, []steel.Material{steel.MaterialScrap}, 2.0)
	assert.InDelta(t, 1.1*2.0*NewPlantUtilization, got, 1e-12)

	// Unknown (tech, material) pairs contribute zero.
	got = ProjectedUsage(ref, steel.DRIEAF, []steel.Material{steel.MaterialBiomass}, 2.0)
	assert.Zero(t, got)
}

func TestUsageChecksAllResources(t *testing.T) {
	l := newTestLedger(true)
	ref := IntensityRef{
		{Tech: steel.DRIEAFBioCH4, Material: steel.MaterialBiomass}: 4.0,
		{Tech: steel.DRIEAFBioCH4, Material: steel.MaterialScrap}:   0.2,
	}
	checks := l.UsageChecks(ref, 2020, steel.DRIEAFBioCH4, "Europe", 10, false, false, false)
	require.Len(t, checks, 4)
	for res, ok := range checks {
		assert.True(t, ok, "resource %s", res)
	}
	// Check-only mode must not have touched any balance.
	assert.Equal(t, 100.0, l.Balance(2020, steel.ResourceBiomass, ""))
	assert.Equal(t, 30.0, l.Balance(2020, steel.ResourceScrap, "Europe"))
}

func TestConstraintSummary(t *testing.T) {
	l := newTestLedger(true)
	require.True(t, l.Transact(2020, steel.ResourceBiomass, 25, "", false, true))
	rows := l.ConstraintSummary([]int{2020})
	require.Len(t, rows, 4)
	for _, row := range rows {
		if row.Resource == steel.ResourceBiomass {
			assert.Equal(t, 100.0, row.Constraint)
			assert.Equal(t, 25.0, row.Usage)
			assert.Equal(t, 75.0, row.Balance)
		}
	}
}
