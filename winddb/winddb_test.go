package winddb

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ppp "github.com/novacppp/novacppp"
)

func TestAtReturnsHighestRankAmongOverlapping(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	db := &DataBase{}
	db.Insert(Record{Field: ppp.WindField{Speed: 1, Source: ppp.WindDefault, From: base, To: base.Add(48 * time.Hour)}})
	db.Insert(Record{Field: ppp.WindField{Speed: 5, Source: ppp.WindEcmwfForecast, From: base, To: base.Add(24 * time.Hour)}})

	r, ok := db.At(base.Add(time.Hour))
	require.True(t, ok)
	assert.Equal(t, ppp.WindEcmwfForecast, r.Field.Source)
	assert.Equal(t, 5.0, r.Field.Speed)

	// Outside the better record's interval, the worse one still answers.
	r, ok = db.At(base.Add(30 * time.Hour))
	require.True(t, ok)
	assert.Equal(t, ppp.WindDefault, r.Field.Source)
}

func TestInsertingBetterSourceNeverWorsensAnEarlierAnswer(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	db := &DataBase{}
	db.Insert(Record{Field: ppp.WindField{Speed: 5, Source: ppp.WindEcmwfForecast, From: base, To: base.Add(24 * time.Hour)}})

	before, ok := db.At(base.Add(time.Hour))
	require.True(t, ok)

	db.Insert(Record{Field: ppp.WindField{Speed: 1, Source: ppp.WindDefault, From: base, To: base.Add(24 * time.Hour)}})

	after, ok := db.At(base.Add(time.Hour))
	require.True(t, ok)
	assert.Equal(t, before.Field.Source, after.Field.Source)
	assert.Equal(t, before.Field.Speed, after.Field.Speed)
}

func TestAtReturnsFalseOutsideAnyInterval(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	db := &DataBase{}
	db.Insert(Record{Field: ppp.WindField{Source: ppp.WindDefault, From: base, To: base.Add(time.Hour)}})

	_, ok := db.At(base.Add(2 * time.Hour))
	assert.False(t, ok)
}

func TestReadClampsOutOfRangeCoordinates(t *testing.T) {
	doc := `<Wind volcano="Villarrica">
  <windfield>
    <source>ecmwf_forecast</source>
    <valid_from>2026-01-01T00:00:00</valid_from>
    <valid_to>2026-01-02T00:00:00</valid_to>
    <item ws="5.0" wse="0.5" wd="270" wde="10" lat="95.0" lon="185.0" alt="1000"/>
  </windfield>
</Wind>`

	db, err := Read(strings.NewReader(doc))
	require.NoError(t, err)
	require.Equal(t, 1, db.Len())

	records := db.All()
	assert.Equal(t, 5.0, records[0].Field.Latitude)
	assert.Equal(t, -175.0, records[0].Field.Longitude)
	assert.Equal(t, 0.5, records[0].SpeedError)
	assert.Equal(t, "Villarrica", db.VolcanoName)
}

func TestWriteThenReadRoundTrips(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	db := &DataBase{VolcanoName: "Villarrica"}
	db.Insert(Record{
		Field: ppp.WindField{
			Speed: 4.2, Direction: 88, Source: ppp.WindEcmwfForecast,
			From: base, To: base.Add(24 * time.Hour),
			HasPoint: true, Latitude: 10, Longitude: 20,
		},
		SpeedError:     0.3,
		DirectionError: 5,
	})

	var b strings.Builder
	require.NoError(t, Write(&b, db))

	parsed, err := Read(strings.NewReader(b.String()))
	require.NoError(t, err)
	require.Equal(t, 1, parsed.Len())

	want := db.All()[0]
	got := parsed.All()[0]
	assert.Equal(t, want.Field.Source, got.Field.Source)
	assert.InDelta(t, want.Field.Speed, got.Field.Speed, 1e-6)
	assert.InDelta(t, want.Field.Direction, got.Field.Direction, 1e-6)
	assert.InDelta(t, want.SpeedError, got.SpeedError, 1e-6)
	assert.InDelta(t, want.DirectionError, got.DirectionError, 1e-6)
	assert.WithinDuration(t, want.Field.From, got.Field.From, time.Second)
	assert.WithinDuration(t, want.Field.To, got.Field.To, time.Second)
}
