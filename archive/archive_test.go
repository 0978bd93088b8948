package archive

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	ppp "github.com/novacppp/novacppp"
)

func TestFlattenStringsProducesByteOffsetsTileDBExpects(t *testing.T) {
	flat, offsets := flattenStrings([]string{"D2J2008", "I2J2008", ""})

	assert.Equal(t, "D2J2008I2J2008", string(flat))
	assert.Equal(t, []uint64{0, 7, 14}, offsets)
}

func TestFlattenStringsEmptySlice(t *testing.T) {
	flat, offsets := flattenStrings(nil)

	assert.Empty(t, flat)
	assert.Empty(t, offsets)
}

func TestFromResultsTransposesRowsToColumns(t *testing.T) {
	t1 := time.Date(2026, 1, 15, 9, 0, 0, 0, time.UTC)
	t2 := t1.Add(10 * time.Minute)

	results := []ppp.FluxResult{
		{
			Serial:      "D2J2008",
			Value:       12.5,
			StartTime:   t1,
			Wind:        ppp.WindField{Speed: 4.2, Direction: 180},
			PlumeHeight: ppp.PlumeHeight{Altitude: 1200},
			Completeness: 0.95,
		},
		{
			Serial:      "I2J2008",
			Value:       8.1,
			StartTime:   t2,
			Wind:        ppp.WindField{Speed: 3.0, Direction: 90},
			PlumeHeight: ppp.PlumeHeight{Altitude: 1100},
			Completeness: 0.80,
		},
	}

	entries := FromResults(results)

	assert.Equal(t, []time.Time{t1, t2}, entries.Time)
	assert.Equal(t, []string{"D2J2008", "I2J2008"}, entries.Serial)
	assert.Equal(t, []float64{12.5, 8.1}, entries.Flux)
	assert.Equal(t, []float64{4.2, 3.0}, entries.WindSpeed)
	assert.Equal(t, []float64{180, 90}, entries.WindDirection)
	assert.Equal(t, []float64{1200, 1100}, entries.PlumeHeight)
	assert.Equal(t, []float64{0.95, 0.80}, entries.Completeness)
}

func TestFromResultsEmptyInput(t *testing.T) {
	entries := FromResults(nil)

	assert.Empty(t, entries.Time)
	assert.Empty(t, entries.Serial)
}
