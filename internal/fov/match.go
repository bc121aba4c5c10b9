// Package fov turns a Scanning HIS granule into the field-of-view
// subset product: it matches requested wavenumbers onto the instrument
// channel grid, masks observations by viewing angle, and re-projects
// the selected radiances with their geolocation and time fields into a
// new product layout.
package fov

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/evas-ssec/shis2mirto/internal/ncio"
)

// ErrChannelsNotFound reports requested wavenumbers that have no home
// on the instrument grid. A conversion must abort on it; no product is
// written.
var ErrChannelsNotFound = errors.New("wavenumbers not found in channel grid")

// ErrNotAscending reports a sequence that violates the strictly
// ascending, duplicate-free precondition of the matching scan.
var ErrNotAscending = errors.New("sequence is not strictly ascending")

const unmatched = -1

// MatchOptions control channel matching policy.
type MatchOptions struct {
	// MaxDistance rejects a winning neighbor farther than this many
	// wavenumber units from the requested value. Zero accepts the
	// closest neighbor at any distance.
	MaxDistance float64
}

// MatchChannels maps each requested wavenumber to the index of its
// nearest neighbor on the instrument grid. Both sequences must be
// strictly ascending. The scan walks the grid once, forward only, so
// several requested values may resolve inside one grid interval but an
// earlier request can never claim a later index than a following one;
// the result is monotonically non-decreasing.
//
// A value falling exactly halfway between two grid points matches the
// lower index.
func MatchChannels(grid, desired []float64, opts MatchOptions) ([]int, error) {
	if err := checkAscending(grid); err != nil {
		return nil, fmt.Errorf("channel grid: %w", err)
	}
	if err := checkAscending(desired); err != nil {
		return nil, fmt.Errorf("desired wavenumbers: %w", err)
	}

	idx := make([]int, len(desired))
	for i := range idx {
		idx[i] = unmatched
	}

	t := 0
	for i := 0; i+1 < len(grid) && t < len(desired); i++ {
		lo, hi := grid[i], grid[i+1]
		for t < len(desired) {
			w := desired[t]
			if w < lo || w > hi {
				break
			}
			switch {
			case w == lo:
				idx[t] = i
			case w == hi:
				idx[t] = i + 1
			case w-lo <= hi-w:
				idx[t] = i
			default:
				idx[t] = i + 1
			}
			if opts.MaxDistance > 0 && math.Abs(grid[idx[t]]-w) > opts.MaxDistance {
				idx[t] = unmatched
			}
			t++
		}
	}

	var missing []float64
	for i, m := range idx {
		if m == unmatched {
			missing = append(missing, desired[i])
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %v", ErrChannelsNotFound, missing)
	}
	return idx, nil
}

func checkAscending(vals []float64) error {
	for i := 1; i < len(vals); i++ {
		if vals[i] <= vals[i-1] {
			return fmt.Errorf("%w: %g at position %d does not exceed %g",
				ErrNotAscending, vals[i], i, vals[i-1])
		}
	}
	return nil
}

// LoadDesired reads the requested wavenumber list from a channels file
// and sorts it ascending. An empty list is rejected; the product needs
// at least one selected channel.
func LoadDesired(path, varName string) ([]float64, error) {
	vals, err := ncio.ReadVector(path, varName)
	if err != nil {
		return nil, err
	}
	if len(vals) == 0 {
		return nil, fmt.Errorf("%s: variable %q lists no wavenumbers", path, varName)
	}
	out := make([]float64, len(vals))
	copy(out, vals)
	sort.Float64s(out)
	return out, nil
}
