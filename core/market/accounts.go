package market

import "math"

// Account names the derivable balances of a region's market account.
type Account string

const (
	// AccountTrade is exports - imports.
	AccountTrade Account = "trade"
	// AccountProduction is regional demand minus imports, plus exports.
	AccountProduction Account = "production"
	// AccountConsumption is regional demand minus imports, plus imports.
	AccountConsumption Account = "consumption"
	// AccountAll sums all three underlying entries.
	AccountAll Account = "all"
)

// Entry is one market movement for a region: production serving local
// demand (net of imports), plus the import and export legs. Surpluses are
// positive, deficits negative.
type Entry struct {
	DemandMinusImports float64
	Imports            float64
	Exports            float64
}

// Accounts maintains the cumulative market entries per (year, region).
type Accounts struct {
	entries map[YearRegion]*Entry
	regions []string
}

// NewAccounts returns zeroed accounts for every year and region.
func NewAccounts(years []int, regions []string) *Accounts {
	a := &Accounts{
		entries: make(map[YearRegion]*Entry, len(years)*len(regions)),
		regions: append([]string(nil), regions...),
	}
	for _, year := range years {
		for _, region := range regions {
			a.entries[YearRegion{Year: year, Region: region}] = &Entry{}
		}
	}
	return a
}

// Assign adds the entry's movements onto the region's running account.
func (a *Accounts) Assign(year int, region string, e Entry) {
	cur := a.entries[YearRegion{Year: year, Region: region}]
	cur.DemandMinusImports += e.DemandMinusImports
	cur.Imports += e.Imports
	cur.Exports += e.Exports
}

// EntryFor returns the cumulative movements of a region for the year.
func (a *Accounts) EntryFor(year int, region string) Entry {
	return *a.entries[YearRegion{Year: year, Region: region}]
}

// Balance derives the requested account balance for a region.
func (a *Accounts) Balance(year int, region string, account Account) float64 {
	e := a.entries[YearRegion{Year: year, Region: region}]
	switch account {
	case AccountTrade:
		return e.Exports - e.Imports
	case AccountProduction:
		return e.DemandMinusImports + e.Exports
	case AccountConsumption:
		return e.DemandMinusImports + e.Imports
	default:
		return e.DemandMinusImports + e.Exports + e.Imports
	}
}

// Aggregate sums an account balance across every region for the year.
func (a *Accounts) Aggregate(year int, account Account) float64 {
	total := 0.0
	for _, region := range a.regions {
		total += a.Balance(year, region, account)
	}
	return total
}

// Regions lists the account regions.
func (a *Accounts) Regions() []string { return a.regions }

// RoundTo truncates a value to the given number of decimal places, used
// when comparing balances against the trade rounding tolerance.
func RoundTo(value float64, places int) float64 {
	shift := math.Pow(10, float64(places))
	return math.Round(value*shift) / shift
}
