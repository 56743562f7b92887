package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/steelpath/engine/core/sim"
)

func fixtureResults() *sim.Results {
	return &sim.Results{
		RegionalCapacity: map[int]map[string]float64{
			2021: {"Europe": 100, "NAFTA": 50},
			2020: {"Europe": 100},
		},
		Utilization: map[int]map[string]float64{
			2021: {"Europe": 0.9, "NAFTA": 0.8},
			2020: {"Europe": 0.85},
		},
	}
}

func TestRowsFromResultsSorted(t *testing.T) {
	rows := RowsFromResults(fixtureResults())
	require.Len(t, rows, 3)
	assert.Equal(t, YearRegionRow{Year: 2020, Region: "Europe", CapacityMt: 100, Utilization: 0.85, ProductionMt: 85}, rows[0])
	assert.Equal(t, 2021, rows[1].Year)
	assert.Equal(t, "Europe", rows[1].Region)
	assert.Equal(t, "NAFTA", rows[2].Region)
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, RowsFromResults(fixtureResults())))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "year,region,capacity_mt,utilization,production_mt", lines[0])
	assert.Equal(t, "2020,Europe,100,0.85,85", lines[1])
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, RowsFromResults(fixtureResults())))
	assert.Contains(t, buf.String(), `"region":"NAFTA"`)
}
