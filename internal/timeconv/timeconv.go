// Package timeconv converts instrument epoch times into the serial date
// numbers used by the downstream retrieval environment.
//
// A serial date number counts days, with day fraction, from the proleptic
// day zero of that environment's calendar. Day zero sits 1721058.5 days
// before the Julian day origin, which places 1970-01-01T00:00:00Z at
// exactly 719529.0.
package timeconv

import (
	"math"
	"time"

	"github.com/soniakeys/meeus/v3/julian"
)

// Offset from the Julian day scale to the serial date number scale.
const serialJDOffset = 1721058.5

// EpochToTime converts seconds since the Unix epoch to UTC calendar time,
// preserving the fractional second.
func EpochToTime(epoch float64) time.Time {
	sec := math.Floor(epoch)
	nsec := math.Round((epoch - sec) * 1e9)
	return time.Unix(int64(sec), int64(nsec)).UTC()
}

// Serial converts a calendar time to a serial date number. All arithmetic
// is carried out in double precision.
func Serial(t time.Time) float64 {
	return julian.TimeToJD(t) - serialJDOffset
}

// SerialFromEpoch converts seconds since the Unix epoch to a serial
// date number.
func SerialFromEpoch(epoch float64) float64 {
	return Serial(EpochToTime(epoch))
}

// SerialSeries converts a base epoch plus per-observation offset seconds
// into one serial date number per observation.
func SerialSeries(baseEpoch float64, offsets []float64) []float64 {
	out := make([]float64, len(offsets))
	for i, off := range offsets {
		out[i] = SerialFromEpoch(baseEpoch + off)
	}
	return out
}

// TimeFromSerial converts a serial date number back to UTC calendar time.
func TimeFromSerial(serial float64) time.Time {
	return julian.JDToTime(serial + serialJDOffset).UTC()
}
