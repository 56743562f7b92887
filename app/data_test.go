package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/steelpath/engine/config"
	"github.com/steelpath/engine/core/steel"
)

func writeDataFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadInputs(t *testing.T) {
	dir := t.TempDir()
	cfg := config.DataConfig{
		Roster: writeDataFile(t, dir, "roster.yaml", `plants:
  - name: "EU Works 01"
    region: "Europe"
    country: "DEU"
    capacity_mt: 10
    start_year: 2005
    technology: "Avg BF-BOF"
    primary: true
  - name: "NA Works 01"
    region: "NAFTA"
    country: "USA"
    capacity_mt: 5
    start_year: 2010
    technology: "EAF"
    primary: false
`),
		Demand: writeDataFile(t, dir, "demand.yaml", `rows:
  - year: 2020
    region: "Europe"
    demand_mt: 8.5
  - year: 2020
    region: "NAFTA"
    demand_mt: 4.0
`),
		Availability: writeDataFile(t, dir, "availability.yaml", `"Avg BF-BOF": 2020
"EAF": 2020
"DRI-EAF": 2025
`),
		Utilization: writeDataFile(t, dir, "utilization.yaml", `Europe: 0.85
NAFTA: 0.8
`),
		VariableCost: writeDataFile(t, dir, "varcost.yaml", `rows:
  - year: 2020
    country: "DEU"
    technology: "EAF"
    cost: 310.5
`),
		OtherOpex: writeDataFile(t, dir, "opex.yaml", `rows:
  - year: 2020
    technology: "EAF"
    cost: 42.0
`),
	}

	in, err := LoadInputs(cfg)
	require.NoError(t, err)

	assert.Equal(t, 2, in.Roster.Len())
	p, ok := in.Roster.Get("EU Works 01")
	require.True(t, ok)
	assert.Equal(t, steel.AvgBFBOF, p.InitialTech)
	assert.True(t, p.Primary)

	assert.Equal(t, []string{"Europe", "NAFTA"}, in.Regions)
	assert.InDelta(t, 8.5, in.Demand.Get(2020, "Europe"), 1e-9)
	assert.Equal(t, 2025, in.Availability.AvailableFrom(steel.DRIEAF))
	assert.InDelta(t, 0.85, in.InitialUtilization["Europe"], 1e-9)
	assert.InDelta(t, 310.5, in.VariableCost("DEU", 2020, steel.EAF), 1e-9)
	assert.InDelta(t, 42.0, in.OtherOpex(steel.EAF, 2020), 1e-9)
}

func TestLoadInputsMissingRoster(t *testing.T) {
	_, err := LoadInputs(config.DataConfig{Roster: "missing.yaml"})
	assert.Error(t, err)
}

func TestLoadFileRejectsUnknownExtension(t *testing.T) {
	var out map[string]int
	assert.Error(t, loadFile("data.csv", &out))
}
