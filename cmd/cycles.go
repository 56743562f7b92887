package cmd

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/spf13/cobra"

	"github.com/steelpath/engine/app"
	"github.com/steelpath/engine/core/cycle"
	"github.com/steelpath/engine/infra/logger"
)

var cyclesCmd = &cobra.Command{
	Use:   "cycles",
	Short: "Preview the investment schedule of every plant",
	RunE:  runCycles,
}

func init() {
	rootCmd.AddCommand(cyclesCmd)
}

func runCycles(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	in, err := app.LoadInputs(cfg.Data)
	if err != nil {
		return fmt.Errorf("load inputs: %w", err)
	}

	scenario := cfg.Scenario
	bounds := cycle.Bounds{
		StartYear:       scenario.StartYear,
		EndYear:         scenario.EndYear,
		NetZeroYear:     scenario.NetZeroYear,
		NetZeroVariance: scenario.NetZeroVariance,
		CycleDuration:   scenario.CycleDuration,
		CycleVariance:   scenario.CycleVariance,
		BufferTop:       scenario.BufferTop,
		BufferTail:      scenario.BufferTail,
	}
	rng := rand.New(rand.NewSource(scenario.Seed))
	sched := cycle.NewScheduler(bounds, scenario.CycleRandomness, rng, logger.NopLogger{})
	startYears := make(map[string]int, in.Roster.Len())
	for _, p := range in.Roster.Snapshot() {
		startYears[p.Name] = p.StartYear
	}
	sched.InstantiatePlants(startYears)

	out := cmd.OutOrStdout()
	for _, p := range in.Roster.Snapshot() {
		s := sched.ScheduleOf(p.Name)
		fmt.Fprintf(out, "%s (%s, cycle %dy): %s\n",
			p.Name, p.Region, sched.CycleLengthOf(p.Name), formatSchedule(s))
	}
	return nil
}

func formatSchedule(s cycle.Schedule) string {
	if len(s) == 0 {
		return "no decision years in horizon"
	}
	parts := make([]string, 0, len(s))
	for _, p := range s {
		switch v := p.(type) {
		case cycle.MainCycle:
			parts = append(parts, fmt.Sprintf("main %d", v.Year))
		case cycle.TransitionalWindow:
			parts = append(parts, fmt.Sprintf("trans %d-%d", v.Start, v.End-1))
		}
	}
	return strings.Join(parts, ", ")
}
