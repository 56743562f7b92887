package ledger

import (
	"sort"

	"github.com/steelpath/engine/core/steel"
	"github.com/steelpath/engine/infra/logger"
)

// NewPlantUtilization is the utilization assumed when projecting the
// resource draw of a (potential) technology choice.
const NewPlantUtilization = 0.95

// IntensityKey addresses the consumption rate of one material under one
// technology.
type IntensityKey struct {
	Tech     steel.Technology
	Material steel.Material
}

// IntensityRef maps (technology, material) to a consumption rate per Mt of
// utilized capacity.
type IntensityRef map[IntensityKey]float64

// Summary is one (resource, year) row of the constraint summary output.
type Summary struct {
	Resource   steel.Resource `json:"resource"`
	Year       int            `json:"year"`
	Constraint float64        `json:"constraint"`
	Usage      float64        `json:"usage"`
	Balance    float64        `json:"balance"`
}

// Ledger manages the constraint, usage and balance of every tracked
// resource. Usage may exceed a constraint only through an explicit override;
// such overshoots are logged, never silent.
type Ledger struct {
	constraint      map[steel.Resource]map[int]float64
	scrapConstraint map[int]map[string]float64

	usage        map[int]map[steel.Resource]float64
	balance      map[int]map[steel.Resource]float64
	scrapUsage   map[int]map[string]float64
	scrapBalance map[int]map[string]float64

	regionalScrap bool
	regions       []string
	log           logger.Logger
}

// New returns an empty Ledger. When regionalScrap is true, scrap
// transactions settle against the plant's regional balance; otherwise they
// settle against the pooled global balance (while still recording the
// regional breakdown).
func New(regionalScrap bool, log logger.Logger) *Ledger {
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Ledger{
		constraint:      make(map[steel.Resource]map[int]float64),
		scrapConstraint: make(map[int]map[string]float64),
		usage:           make(map[int]map[steel.Resource]float64),
		balance:         make(map[int]map[steel.Resource]float64),
		scrapUsage:      make(map[int]map[string]float64),
		scrapBalance:    make(map[int]map[string]float64),
		regionalScrap:   regionalScrap,
		log:             log,
	}
}

// InitYears allocates zeroed usage and balance entries for every year and
// region. Must be called before any transaction.
func (l *Ledger) InitYears(years []int, regions []string) {
	l.regions = append([]string(nil), regions...)
	for _, year := range years {
		l.usage[year] = make(map[steel.Resource]float64, len(steel.Resources))
		l.balance[year] = make(map[steel.Resource]float64, len(steel.Resources))
		for _, res := range steel.Resources {
			l.usage[year][res] = 0
			l.balance[year][res] = 0
		}
		l.scrapUsage[year] = make(map[string]float64, len(regions))
		l.scrapBalance[year] = make(map[string]float64, len(regions))
		for _, region := range regions {
			l.scrapUsage[year][region] = 0
			l.scrapBalance[year][region] = 0
		}
	}
}

// LoadConstraint sets the per-year ceiling of a non-scrap resource.
func (l *Ledger) LoadConstraint(resource steel.Resource, ceilings map[int]float64) {
	l.constraint[resource] = ceilings
}

// LoadScrapConstraint sets the per-year, per-region scrap ceiling.
func (l *Ledger) LoadScrapConstraint(ceilings map[int]map[string]float64) {
	l.scrapConstraint = ceilings
}

// SetYearBalance resets a resource's balance for the year to its ceiling.
// Called at the start of every simulated year.
func (l *Ledger) SetYearBalance(year int, resource steel.Resource) {
	if resource == steel.ResourceScrap {
		for _, region := range l.regions {
			l.scrapBalance[year][region] = l.scrapConstraint[year][region]
		}
		return
	}
	l.balance[year][resource] = l.constraint[resource][year]
}

// Balance returns the remaining amount of the resource for the year. For
// scrap, an empty region returns the sum across regions.
func (l *Ledger) Balance(year int, resource steel.Resource, region string) float64 {
	if resource == steel.ResourceScrap {
		if region != "" {
			return l.scrapBalance[year][region]
		}
		return sumValues(l.scrapBalance[year])
	}
	return l.balance[year][resource]
}

// UsageFor returns the consumed amount of the resource for the year.
func (l *Ledger) UsageFor(year int, resource steel.Resource) float64 {
	if resource == steel.ResourceScrap {
		return sumValues(l.scrapUsage[year])
	}
	return l.usage[year][resource]
}

// ConstraintFor returns the resource ceiling for the year (summed across
// regions for scrap).
func (l *Ledger) ConstraintFor(year int, resource steel.Resource) float64 {
	if resource == steel.ResourceScrap {
		return sumValues(l.scrapConstraint[year])
	}
	return l.constraint[resource][year]
}

// Transact checks, and optionally settles, a resource draw of amount for the
// year. Four cases:
//
//	apply && override:   always settles, balance may go negative.
//	apply && !override:  settles only if the balance covers the amount,
//	                     otherwise returns false without mutating.
//	!apply && override:  always true, never mutates.
//	!apply && !override: pure feasibility check, never mutates.
//
// region is required for scrap; ignored otherwise.
func (l *Ledger) Transact(year int, resource steel.Resource, amount float64, region string, override, apply bool) bool {
	var current float64
	switch {
	case resource == steel.ResourceScrap && l.regionalScrap:
		current = l.scrapBalance[year][region]
	case resource == steel.ResourceScrap:
		current = sumValues(l.scrapBalance[year])
	default:
		current = l.balance[year][resource]
	}

	settle := func() {
		if resource == steel.ResourceScrap {
			l.scrapBalance[year][region] -= amount
			l.scrapUsage[year][region] += amount
		} else {
			l.balance[year][resource] -= amount
			l.usage[year][resource] += amount
		}
	}

	switch {
	case apply && override:
		if amount > 0 && current < amount {
			l.log.Debugw("constraint overridden", map[string]any{
				"year": year, "resource": string(resource), "amount": amount, "balance": current,
			})
		}
		settle()
		return true
	case apply && !override:
		if amount > 0 && current < amount {
			return false
		}
		settle()
		return true
	case !apply && override:
		return true
	default:
		return !(amount > 0 && current < amount)
	}
}

// ConstraintSummary returns one row per (resource, year), sorted by resource
// then year.
func (l *Ledger) ConstraintSummary(years []int) []Summary {
	out := make([]Summary, 0, len(years)*len(steel.Resources))
	for _, res := range steel.Resources {
		for _, year := range years {
			out = append(out, Summary{
				Resource:   res,
				Year:       year,
				Constraint: l.ConstraintFor(year, res),
				Usage:      l.UsageFor(year, res),
				Balance:    l.Balance(year, res, ""),
			})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Resource != out[j].Resource {
			return out[i].Resource < out[j].Resource
		}
		return out[i].Year < out[j].Year
	})
	return out
}

// PrintYearSummary logs the usage of every resource for the year.
func (l *Ledger) PrintYearSummary(year int) {
	for _, res := range steel.Resources {
		constraint := l.ConstraintFor(year, res)
		usage := l.UsageFor(year, res)
		balance := l.Balance(year, res, "")
		pctUsed, pctLeft := 100.0, 0.0
		if constraint != 0 {
			pctUsed = usage / constraint * 100
			pctLeft = balance / constraint * 100
		}
		l.log.Infof("%s usage %d -> constraint: %.4f | usage: %.4f (%.1f%%) | balance: %.4f (%.1f%%)",
			res, year, constraint, usage, pctUsed, balance, pctLeft)
	}
}

// ProjectedUsage returns the resource draw a technology would make at the
// given capacity, summed over the listed materials.
func ProjectedUsage(ref IntensityRef, tech steel.Technology, materials []steel.Material, capacity float64) float64 {
	total := 0.0
	for _, m := range materials {
		total += ref[IntensityKey{Tech: tech, Material: m}] * (capacity * NewPlantUtilization)
	}
	return total
}

// CurrentUsage sums the projected draw of a set of plants given their
// technology choices and capacities.
func CurrentUsage(ref IntensityRef, choices map[string]steel.Technology, capacities map[string]float64, materials []steel.Material) float64 {
	total := 0.0
	for name, tech := range choices {
		total += ProjectedUsage(ref, tech, materials, capacities[name])
	}
	return total
}

// UsageChecks runs one Transact per constrained resource for a plant's
// (potential or committed) technology, returning the per-resource outcome.
// When negative is true the draw is reversed, as on plant closure.
func (l *Ledger) UsageChecks(ref IntensityRef, year int, tech steel.Technology, region string, capacity float64, override, apply, negative bool) map[steel.Resource]bool {
	checks := make(map[steel.Resource]bool, len(steel.Resources))
	for _, res := range steel.Resources {
		amount := ProjectedUsage(ref, tech, steel.ResourceMaterials[res], capacity)
		if negative {
			amount = -amount
		}
		checks[res] = l.Transact(year, res, amount, region, override, apply)
	}
	return checks
}

func sumValues(m map[string]float64) float64 {
	total := 0.0
	for _, v := range m {
		total += v
	}
	return total
}
