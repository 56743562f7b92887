package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"sort"
	"strconv"

	"github.com/steelpath/engine/core/sim"
)

// YearRegionRow is one line of the flat run summary.
type YearRegionRow struct {
	Year         int     `json:"year"`
	Region       string  `json:"region"`
	CapacityMt   float64 `json:"capacity_mt"`
	Utilization  float64 `json:"utilization"`
	ProductionMt float64 `json:"production_mt"`
}

// RowsFromResults flattens the per-year regional state into sorted rows.
func RowsFromResults(res *sim.Results) []YearRegionRow {
	var rows []YearRegionRow
	for year, capacities := range res.RegionalCapacity {
		for region, capacity := range capacities {
			util := res.Utilization[year][region]
			rows = append(rows, YearRegionRow{
				Year:         year,
				Region:       region,
				CapacityMt:   capacity,
				Utilization:  util,
				ProductionMt: capacity * util,
			})
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Year != rows[j].Year {
			return rows[i].Year < rows[j].Year
		}
		return rows[i].Region < rows[j].Region
	})
	return rows
}

// WriteJSON writes the summary rows to w in JSON format.
func WriteJSON(w io.Writer, rows []YearRegionRow) error {
	enc := json.NewEncoder(w)
	return enc.Encode(rows)
}

// WriteCSV writes the summary rows to w with a header line.
func WriteCSV(w io.Writer, rows []YearRegionRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"year", "region", "capacity_mt", "utilization", "production_mt"}); err != nil {
		return err
	}
	for _, r := range rows {
		rec := []string{
			strconv.Itoa(r.Year),
			r.Region,
			strconv.FormatFloat(r.CapacityMt, 'f', -1, 64),
			strconv.FormatFloat(r.Utilization, 'f', -1, 64),
			strconv.FormatFloat(r.ProductionMt, 'f', -1, 64),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
