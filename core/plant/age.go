package plant

import (
	"math/rand"
	"sort"
)

// CycleAge returns how many years the plant has run since its last
// committed investment (main cycle or recorded transitional switch). A
// plant with no investment year behind it ages by its position within its
// nominal cycle, so a deferred plant looks younger than wall-clock age.
func CycleAge(mainYears, transSwitchYears []int, startYear, cycleLength, currentYear int) int {
	if currentYear <= startYear {
		return 0
	}
	last := 0
	found := false
	for _, y := range mainYears {
		if y <= currentYear && (!found || y > last) {
			last = y
			found = true
		}
	}
	for _, y := range transSwitchYears {
		if y <= currentYear && (!found || y > last) {
			last = y
			found = true
		}
	}
	if !found {
		if cycleLength <= 0 {
			return currentYear - startYear
		}
		return (currentYear - startYear) % cycleLength
	}
	return currentYear - last
}

// Oldest returns the plant with the highest age, breaking ties via the
// injected generator.
func Oldest(ages map[string]int, rng *rand.Rand) string {
	if len(ages) == 0 {
		return ""
	}
	maxAge := 0
	first := true
	for _, age := range ages {
		if first || age > maxAge {
			maxAge = age
			first = false
		}
	}
	var oldest []string
	for name, age := range ages {
		if age == maxAge {
			oldest = append(oldest, name)
		}
	}
	sort.Strings(oldest)
	return oldest[rng.Intn(len(oldest))]
}
