package metrics

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/steelpath/engine/core/factory"
	"github.com/steelpath/engine/core/steel"
)

type recordingSink struct {
	years    []YearRecord
	switches []SwitchRecord
	fail     bool
}

func (r *recordingSink) RecordYear(rec YearRecord) error {
	if r.fail {
		return fmt.Errorf("sink failed")
	}
	r.years = append(r.years, rec)
	return nil
}

func (r *recordingSink) RecordSwitch(rec SwitchRecord) error {
	r.switches = append(r.switches, rec)
	return nil
}

func TestMultiSinkFansOut(t *testing.T) {
	a, b := &recordingSink{}, &recordingSink{}
	m := NewMultiSink(a, b)

	require.NoError(t, m.RecordYear(YearRecord{Year: 2030, Demand: 1800}))
	assert.Len(t, a.years, 1)
	assert.Len(t, b.years, 1)

	require.NoError(t, m.RecordSwitch(SwitchRecord{Year: 2030, From: steel.AvgBFBOF, To: steel.EAF}))
	assert.Len(t, a.switches, 1)
	assert.Len(t, b.switches, 1)
}

func TestMultiSinkReturnsFirstError(t *testing.T) {
	a := &recordingSink{fail: true}
	b := &recordingSink{}
	m := NewMultiSink(a, b)
	assert.Error(t, m.RecordYear(YearRecord{Year: 2030}))
	assert.Empty(t, b.years)
}

func TestMultiSinkSkipsUnsupportedRecorders(t *testing.T) {
	m := NewMultiSink(NopSink{})
	assert.NoError(t, m.RecordPlantChange(PlantChangeRecord{Year: 2030}))
	assert.NoError(t, m.RecordDeferral(DeferralRecord{Year: 2030}))
}

func TestNewSinkDefaultsToNop(t *testing.T) {
	s, err := NewSink(nil)
	require.NoError(t, err)
	assert.IsType(t, NopSink{}, s)
}

func TestNewSinkUnknownType(t *testing.T) {
	_, err := NewSink([]factory.ModuleConfig{{Type: "bogus"}})
	assert.Error(t, err)
}
