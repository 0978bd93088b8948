package plumedb

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ppp "github.com/novacppp/novacppp"
)

func TestSeedInsertsDefaultEntry(t *testing.T) {
	db := &DataBase{}
	db.Seed(2860)

	h, ok := db.At(time.Now())
	require.True(t, ok)
	assert.Equal(t, 2860.0, h.Altitude)
	assert.Equal(t, ppp.WindDefault, h.Source)
}

func TestGeometryCalcSupersedesDefaultWithinItsInterval(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	db := &DataBase{}
	db.Seed(2860)
	db.Insert(ppp.PlumeHeight{Altitude: 1200, Source: ppp.WindGeometryCalc, From: base, To: base.Add(time.Hour)})

	h, ok := db.At(base.Add(30 * time.Minute))
	require.True(t, ok)
	assert.Equal(t, 1200.0, h.Altitude)
	assert.Equal(t, ppp.WindGeometryCalc, h.Source)

	// Outside the calculated record's interval, the seeded default answers.
	h, ok = db.At(base.Add(2 * time.Hour))
	require.True(t, ok)
	assert.Equal(t, 2860.0, h.Altitude)
}

func TestInsertingBetterSourceNeverWorsensAnEarlierAnswer(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	db := &DataBase{}
	db.Insert(ppp.PlumeHeight{Altitude: 1200, Source: ppp.WindGeometryCalc, From: base, To: base.Add(time.Hour)})

	before, _ := db.At(base.Add(time.Minute))

	db.Insert(ppp.PlumeHeight{Altitude: 999, Source: ppp.WindDefault, From: base, To: base.Add(time.Hour)})

	after, ok := db.At(base.Add(time.Minute))
	require.True(t, ok)
	assert.Equal(t, before.Altitude, after.Altitude)
	assert.Equal(t, before.Source, after.Source)
}

func TestAllReturnsInsertionOrder(t *testing.T) {
	db := &DataBase{}
	db.Insert(ppp.PlumeHeight{Altitude: 1})
	db.Insert(ppp.PlumeHeight{Altitude: 2})
	all := db.All()
	require.Len(t, all, 2)
	assert.Equal(t, 1.0, all[0].Altitude)
	assert.Equal(t, 2.0, all[1].Altitude)
}
