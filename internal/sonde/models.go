// Package sonde defines the virtual-radiosonde contract the first-guess
// path consumes, plus an HTTP-backed reference narrator. Profile
// acquisition stays behind the Narrator interface; callers never see how
// a profile was produced.
package sonde

import (
	"context"
	"errors"
	"time"
)

// ErrProfileShortfall reports that the narrator could not supply a
// usable profile for every requested point.
var ErrProfileShortfall = errors.New("radiosonde narrator returned fewer profiles than requested")

// Point is one space-time sample to narrate.
type Point struct {
	Time      time.Time
	Latitude  float64
	Longitude float64
}

// Profile is the modeled atmospheric state at one point, on the pressure
// levels that were requested. Slices are parallel, ordered as the levels
// were given.
type Profile struct {
	Point       Point
	Pressure    []float64
	Temperature []float64
	Dewpoint    []float64
}

// Levels returns the number of vertical samples in the profile.
func (p *Profile) Levels() int {
	return len(p.Pressure)
}

// Narrator supplies modeled atmospheric profiles for space-time points.
// Implementations return exactly one profile per input point, in input
// order, or fail the whole call.
type Narrator interface {
	Profiles(ctx context.Context, points []Point, levels []float64) ([]Profile, error)
}
