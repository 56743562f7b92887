package cycle

import "sort"

// Bounds carries the model-wide parameters that shape every schedule.
type Bounds struct {
	StartYear       int
	EndYear         int
	NetZeroYear     int
	NetZeroVariance int
	CycleDuration   int
	CycleVariance   int
	BufferTop       int
	BufferTail      int
}

// BringForward pulls a decision year that lands within the net-zero
// variance band back to the year before the net-zero target, so the plant
// still has a chance to decarbonize in time.
func (b Bounds) BringForward(year int) int {
	if year >= b.NetZeroYear && year <= b.NetZeroYear+b.NetZeroVariance {
		return b.NetZeroYear - 1
	}
	return year
}

// InvestmentYears generates the main-cycle decision years for a plant that
// started operating in startYear, spaced cycleLength apart and clipped to
// the model horizon.
func (b Bounds) InvestmentYears(startYear, cycleLength int) []int {
	var years []int
	x := startYear
	for b.BringForward(x) <= b.EndYear {
		x = b.BringForward(x)
		if x >= b.StartYear {
			years = append(years, x)
		}
		x += cycleLength
	}
	return years
}

// WithTransitionalWindows interleaves each main-cycle gap with a
// transitional window [prev+BufferTop, next-BufferTail), truncated at the
// net-zero target. A leading window covers the span before the first
// main-cycle year.
func (b Bounds) WithTransitionalWindows(mainYears []int) Schedule {
	if len(mainYears) == 0 {
		return nil
	}
	var s Schedule
	first := mainYears[0]
	if first-b.BufferTail > b.StartYear {
		s = append(s, TransitionalWindow{Start: b.StartYear, End: first - b.BufferTail})
	}
	s = append(s, MainCycle{Year: first})
	for i := 1; i < len(mainYears); i++ {
		start := mainYears[i-1] + b.BufferTop
		end := mainYears[i] - b.BufferTail
		if start < b.NetZeroYear && b.NetZeroYear < end {
			end = b.NetZeroYear
		}
		s = append(s, TransitionalWindow{Start: start, End: end})
		s = append(s, MainCycle{Year: mainYears[i]})
	}
	return s
}

// shiftFromYear postpones every decision point at or after rebaseYear by
// one year, re-applying the bring-forward rule. Windows straddling
// rebaseYear keep their start and stretch their end.
func (b Bounds) shiftFromYear(s Schedule, rebaseYear int) Schedule {
	out := make(Schedule, 0, len(s))
	for _, p := range s {
		switch v := p.(type) {
		case MainCycle:
			if v.Year >= rebaseYear {
				v.Year = b.BringForward(v.Year + 1)
			}
			out = append(out, v)
		case TransitionalWindow:
			last := v.End - 1
			switch {
			case last < rebaseYear:
				// Entirely in the past, untouched.
			case v.Start >= rebaseYear:
				v = TransitionalWindow{Start: b.BringForward(v.Start + 1), End: b.BringForward(v.End + 1)}
			default:
				v = TransitionalWindow{Start: v.Start, End: b.BringForward(v.End + 1)}
			}
			out = append(out, v)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].StartYear() < out[j].StartYear() })
	return out
}

// truncateWindowAt cuts the window containing rebaseYear so it ends at
// rebaseYear, removing the possibility of a second transitional switch
// before the next main cycle.
func truncateWindowAt(s Schedule, rebaseYear int) Schedule {
	out := make(Schedule, len(s))
	copy(out, s)
	for i, p := range out {
		if w, ok := p.(TransitionalWindow); ok && w.Contains(rebaseYear) {
			out[i] = TransitionalWindow{Start: w.Start, End: rebaseYear}
			return out
		}
	}
	return out
}

// clampFirstYear guarantees the first simulated year is never a switch
// year: a main cycle on the start year moves one year out, and a window
// covering the start year begins one year later.
func (b Bounds) clampFirstYear(s Schedule) Schedule {
	out := make(Schedule, 0, len(s))
	for _, p := range s {
		switch v := p.(type) {
		case MainCycle:
			if v.Year == b.StartYear {
				v.Year = b.StartYear + 1
			}
			out = append(out, v)
		case TransitionalWindow:
			if v.Contains(b.StartYear) {
				end := v.End
				if end > b.EndYear-1 {
					end = b.EndYear - 1
				}
				v = TransitionalWindow{Start: b.StartYear + 1, End: end}
			}
			out = append(out, v)
		}
	}
	return out
}
