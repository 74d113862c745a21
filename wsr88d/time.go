package wsr88d

import "time"

// Julian dates in both ICDs count days from 1 January 1970, which is day 1.
var epoch = time.Date(1970, time.January, 1, 0, 0, 0, 0, time.UTC)

// TimePoint returns the instant for a modified julian date and milliseconds
// past midnight GMT.
func TimePoint(julianDate uint32, millis uint32) time.Time {
	if julianDate == 0 {
		return epoch.Add(time.Duration(millis) * time.Millisecond)
	}
	return epoch.
		Add(time.Duration(julianDate-1) * 24 * time.Hour).
		Add(time.Duration(millis) * time.Millisecond)
}

// SecondsPoint is TimePoint for headers that carry seconds past midnight.
func SecondsPoint(julianDate uint32, seconds uint32) time.Time {
	return TimePoint(julianDate, 0).Add(time.Duration(seconds) * time.Second)
}
