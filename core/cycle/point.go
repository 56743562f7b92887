package cycle

// SwitchType classifies what kind of technology decision a plant may take
// in a given year.
type SwitchType string

const (
	SwitchMainCycle    SwitchType = "main cycle"
	SwitchTransitional SwitchType = "trans switch"
	SwitchNone         SwitchType = "no switch"
)

// Point is one entry of a plant's investment schedule: either a MainCycle
// year or a TransitionalWindow.
type Point interface {
	// StartYear orders points chronologically.
	StartYear() int
	point()
}

// MainCycle is a single main investment decision year.
type MainCycle struct {
	Year int
}

func (m MainCycle) StartYear() int { return m.Year }
func (MainCycle) point()           {}

// TransitionalWindow is a half-open year range [Start, End) during which a
// transitional switch may be taken. A window with Start >= End is empty.
type TransitionalWindow struct {
	Start int
	End   int
}

func (w TransitionalWindow) StartYear() int { return w.Start }
func (TransitionalWindow) point()           {}

// Contains reports whether the year falls inside the window.
func (w TransitionalWindow) Contains(year int) bool {
	return w.Start <= year && year < w.End
}

// Schedule is a plant's ordered investment schedule.
type Schedule []Point

// SwitchTypeAt returns the decision kind the schedule allows in the year.
// Main-cycle years win over overlapping windows.
func (s Schedule) SwitchTypeAt(year int) SwitchType {
	for _, p := range s {
		if m, ok := p.(MainCycle); ok && m.Year == year {
			return SwitchMainCycle
		}
	}
	for _, p := range s {
		if w, ok := p.(TransitionalWindow); ok && w.Contains(year) {
			return SwitchTransitional
		}
	}
	return SwitchNone
}

// MainYears returns the main-cycle years in order.
func (s Schedule) MainYears() []int {
	var years []int
	for _, p := range s {
		if m, ok := p.(MainCycle); ok {
			years = append(years, m.Year)
		}
	}
	return years
}

// Windows returns the transitional windows in order.
func (s Schedule) Windows() []TransitionalWindow {
	var ws []TransitionalWindow
	for _, p := range s {
		if w, ok := p.(TransitionalWindow); ok {
			ws = append(ws, w)
		}
	}
	return ws
}
