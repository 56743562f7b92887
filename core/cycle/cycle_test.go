package cycle

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/steelpath/engine/infra/logger"
)

func testBounds() Bounds {
	return Bounds{
		StartYear:       2020,
		EndYear:         2050,
		NetZeroYear:     2050,
		NetZeroVariance: 3,
		CycleDuration:   20,
		CycleVariance:   3,
		BufferTop:       3,
		BufferTail:      8,
	}
}

func TestBringForward(t *testing.T) {
	b := testBounds()
	assert.Equal(t, 2049, b.BringForward(2050))
	assert.Equal(t, 2049, b.BringForward(2053))
	assert.Equal(t, 2054, b.BringForward(2054))
	assert.Equal(t, 2048, b.BringForward(2048))
}

func TestInvestmentYears(t *testing.T) {
	b := testBounds()
	// A 2010 plant reinvests in 2030 and again in 2050, brought forward
	// to 2049. Pre-model years are dropped.
	years := b.InvestmentYears(2010, 20)
	assert.Equal(t, []int{2030, 2049}, years)

	// A plant starting just before the net-zero band.
	years = b.InvestmentYears(2045, 20)
	assert.Equal(t, []int{2045}, years)

	// A start year inside the band is itself brought forward.
	years = b.InvestmentYears(2051, 20)
	assert.Equal(t, []int{2049}, years)
}

func TestWithTransitionalWindows(t *testing.T) {
	b := testBounds()
	s := b.WithTransitionalWindows([]int{2030, 2049})
	require.Len(t, s, 4)
	assert.Equal(t, TransitionalWindow{Start: 2020, End: 2022}, s[0])
	assert.Equal(t, MainCycle{Year: 2030}, s[1])
	assert.Equal(t, TransitionalWindow{Start: 2033, End: 2041}, s[2])
	assert.Equal(t, MainCycle{Year: 2049}, s[3])
}

func TestWindowTruncatedAtNetZero(t *testing.T) {
	b := testBounds()
	b.NetZeroYear = 2040
	s := b.WithTransitionalWindows([]int{2030, 2049})
	// [2033, 2041) straddles the 2040 target and is cut there.
	assert.Contains(t, s, TransitionalWindow{Start: 2033, End: 2040})
}

func TestSwitchTypeAt(t *testing.T) {
	s := Schedule{
		TransitionalWindow{Start: 2021, End: 2025},
		MainCycle{Year: 2030},
	}
	assert.Equal(t, SwitchTransitional, s.SwitchTypeAt(2021))
	assert.Equal(t, SwitchTransitional, s.SwitchTypeAt(2024))
	assert.Equal(t, SwitchNone, s.SwitchTypeAt(2025))
	assert.Equal(t, SwitchMainCycle, s.SwitchTypeAt(2030))
	assert.Equal(t, SwitchNone, s.SwitchTypeAt(2031))
}

func newTestScheduler(t *testing.T) *Scheduler {
	t.Helper()
	return NewScheduler(testBounds(), false, rand.New(rand.NewSource(42)), logger.NopLogger{})
}

func TestFirstModelYearNeverASwitchYear(t *testing.T) {
	s := newTestScheduler(t)
	s.InstantiatePlants(map[string]int{
		"plant-a": 2000, // main cycle would land on 2020
		"plant-b": 2010, // leading window covers 2020
	})
	for _, name := range []string{"plant-a", "plant-b"} {
		assert.Equal(t, SwitchNone, s.SwitchTypeOf(name, 2020), name)
	}
}

func TestAdjustForDeferredInvestment(t *testing.T) {
	s := newTestScheduler(t)
	s.InstantiatePlants(map[string]int{"plant-a": 2010})
	before := s.ScheduleOf("plant-a")
	require.Equal(t, []int{2030, 2049}, before.MainYears())

	s.AdjustForDeferredInvestment("plant-a", 2030)
	after := s.ScheduleOf("plant-a")
	// 2030 moves to 2031; 2049+1 lands in the net-zero band and is
	// brought back to 2049.
	assert.Equal(t, []int{2031, 2049}, after.MainYears())
	// The window before the rebase year is untouched; the later one shifts.
	ws := after.Windows()
	require.Len(t, ws, 2)
	assert.Equal(t, TransitionalWindow{Start: 2021, End: 2022}, ws[0])
	assert.Equal(t, TransitionalWindow{Start: 2034, End: 2042}, ws[1])

	// No decision point ever moves backward on deferral.
	for i, p := range after {
		assert.GreaterOrEqual(t, p.StartYear(), before[i].StartYear())
	}
	require.Len(t, s.Audit(), 1)
	assert.Equal(t, "deferred investment", s.Audit()[0].Reason)
}

func TestAdjustForTransitionalSwitch(t *testing.T) {
	s := newTestScheduler(t)
	s.InstantiatePlants(map[string]int{"plant-a": 2010})
	// Active window is [2033, 2041); switching in 2035 closes it there.
	s.AdjustForTransitionalSwitch("plant-a", 2035)
	assert.Equal(t, SwitchNone, s.SwitchTypeOf("plant-a", 2035))
	assert.Equal(t, SwitchNone, s.SwitchTypeOf("plant-a", 2036))
	assert.Equal(t, SwitchTransitional, s.SwitchTypeOf("plant-a", 2034))
	assert.Equal(t, SwitchMainCycle, s.SwitchTypeOf("plant-a", 2049))
}

func TestPlantSwitchersPartition(t *testing.T) {
	s := newTestScheduler(t)
	s.InstantiatePlants(map[string]int{
		"main-2030":  2010,
		"trans-2030": 2020,
	})
	// trans-2030 starts in 2020, main cycles 2040; window [2021, 2032).
	sw := s.PlantSwitchers([]string{"main-2030", "trans-2030"}, 2030)
	assert.Equal(t, []string{"main-2030"}, sw.MainCycle)
	assert.Equal(t, []string{"trans-2030"}, sw.Transitional)
	assert.Empty(t, sw.NonSwitchers)
	assert.ElementsMatch(t, []string{"main-2030", "trans-2030"}, sw.Combined)

	sw = s.PlantSwitchers([]string{"main-2030", "trans-2030"}, 2032)
	assert.Empty(t, sw.MainCycle)
	assert.ElementsMatch(t, []string{"main-2030", "trans-2030"}, sw.NonSwitchers)
}

func TestCycleLengthJitterIsSeeded(t *testing.T) {
	b := testBounds()
	s1 := NewScheduler(b, true, rand.New(rand.NewSource(7)), logger.NopLogger{})
	s2 := NewScheduler(b, true, rand.New(rand.NewSource(7)), logger.NopLogger{})
	s1.AddNewPlant("p", 2025)
	s2.AddNewPlant("p", 2025)
	assert.Equal(t, s1.CycleLengthOf("p"), s2.CycleLengthOf("p"))
	lo, hi := b.CycleDuration-b.CycleVariance, b.CycleDuration+b.CycleVariance
	assert.GreaterOrEqual(t, s1.CycleLengthOf("p"), lo)
	assert.LessOrEqual(t, s1.CycleLengthOf("p"), hi)
}
