package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/steelpath/engine/core/cycle"
)

func TestFormatSchedule(t *testing.T) {
	s := cycle.Schedule{
		cycle.TransitionalWindow{Start: 2021, End: 2025},
		cycle.MainCycle{Year: 2030},
	}
	assert.Equal(t, "trans 2021-2024, main 2030", formatSchedule(s))
	assert.Equal(t, "no decision years in horizon", formatSchedule(nil))
}
