// Package shis loads Scanning HIS radiance granules into memory.
package shis

import "github.com/ctessum/sparse"

// Schema names the variables of a Scanning HIS granule. Granules from
// other processing chains can be read by overriding individual names.
type Schema struct {
	Wavenumber string `toml:"wavenumber"`
	FOVAngle   string `toml:"fov_angle"`
	Radiance   string `toml:"radiance"`
	Longitude  string `toml:"longitude"`
	Latitude   string `toml:"latitude"`
	BaseTime   string `toml:"base_time"`
	TimeOffset string `toml:"time_offset"`
}

// DefaultSchema returns the variable names written by the standard
// SHIS processing chain.
func DefaultSchema() Schema {
	return Schema{
		Wavenumber: "wavenumber",
		FOVAngle:   "FOVangle",
		Radiance:   "radiance",
		Longitude:  "Longitude",
		Latitude:   "Latitude",
		BaseTime:   "base_time",
		TimeOffset: "time_offset",
	}
}

// Scan is one granule held in memory. All per-observation slices share
// one length; row k of Radiance belongs to the same observation as
// element k of every slice.
type Scan struct {
	Source string

	Longitude  []float64
	Latitude   []float64
	FOVAngle   []float64
	BaseTime   float64
	TimeOffset []float64

	Wavenumber []float64
	Radiance   *sparse.DenseArray // observations x channels
}

// Observations returns the scan record count.
func (s *Scan) Observations() int {
	return len(s.FOVAngle)
}

// Channels returns the spectral channel count.
func (s *Scan) Channels() int {
	return len(s.Wavenumber)
}
