package config

import (
	"time"

	"github.com/soniakeys/meeus/v3/julian"
	"github.com/soniakeys/unit"
)

// LocalHour returns the hour-of-day (0-23) at instant t shifted by
// offsetHours (a volcano's ppp.Volcano.LocalTimeOffset): the original
// m_calibrationIntervalTimeOfDay gate compares against a site's local
// civil time rather than UTC. Routed through a Julian day round trip
// (julian.TimeToJD / julian.JDToCalendar) rather than plain
// time.Duration arithmetic so the offset composes correctly across a
// UTC midnight boundary; unit.AngleFromDeg*24/360 turns the offset into
// a day fraction the same way meeus itself converts a longitude into a
// time correction.
func LocalHour(t time.Time, offsetHours float64) int {
	offsetDays := unit.AngleFromDeg(offsetHours * 15.0).Deg() / 360.0

	jd := julian.TimeToJD(t.UTC()) + offsetDays
	_, _, day := julian.JDToCalendar(jd)
	frac := day - float64(int(day))

	hour := int(frac * 24.0)
	if hour < 0 {
		hour += 24
	}
	return hour % 24
}

// ValidateCalibrationWindow rejects an hour-of-day window outside [0,24],
// spec.md §7 taxonomy-1's "invalid interval of day for calibration".
func ValidateCalibrationWindow(w CalibrationWindow) error {
	if w.FromHour < 0 || w.FromHour > 24 || w.ToHour < 0 || w.ToHour > 24 {
		return ErrInvalidCalibrationDay
	}
	return nil
}
