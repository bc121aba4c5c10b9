package fov

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evas-ssec/shis2mirto/internal/ncio"
)

func TestMatchChannelsExactSubset(t *testing.T) {
	assert := assert.New(t)

	grid := []float64{100, 101, 102, 103, 104, 105, 106, 107, 108, 109}
	idx, err := MatchChannels(grid, []float64{102, 105, 109}, MatchOptions{})
	assert.NoError(err)
	assert.Equal([]int{2, 5, 9}, idx)

	idx, err = MatchChannels(grid, []float64{100}, MatchOptions{})
	assert.NoError(err)
	assert.Equal([]int{0}, idx)
}

func TestMatchChannelsNearestNeighbor(t *testing.T) {
	assert := assert.New(t)

	grid := []float64{670.0, 670.625, 671.25}

	idx, err := MatchChannels(grid, []float64{670.9}, MatchOptions{})
	assert.NoError(err)
	assert.Equal([]int{1}, idx, "670.9 sits 0.275 from 670.625 and 0.35 from 671.25")

	idx, err = MatchChannels(grid, []float64{670.1}, MatchOptions{})
	assert.NoError(err)
	assert.Equal([]int{0}, idx)
}

func TestMatchChannelsMidpointPrefersLowerIndex(t *testing.T) {
	assert := assert.New(t)

	idx, err := MatchChannels([]float64{670.0, 671.0}, []float64{670.5}, MatchOptions{})
	assert.NoError(err)
	assert.Equal([]int{0}, idx)
}

func TestMatchChannelsSeveralTargetsPerInterval(t *testing.T) {
	assert := assert.New(t)

	grid := []float64{0, 10}

	idx, err := MatchChannels(grid, []float64{1, 2, 3}, MatchOptions{})
	assert.NoError(err)
	assert.Equal([]int{0, 0, 0}, idx)

	idx, err = MatchChannels(grid, []float64{4, 6}, MatchOptions{})
	assert.NoError(err)
	assert.Equal([]int{0, 1}, idx)
}

func TestMatchChannelsUnmatched(t *testing.T) {
	assert := assert.New(t)

	grid := []float64{670.0, 671.0, 672.0}

	_, err := MatchChannels(grid, []float64{10.0, 670.5}, MatchOptions{})
	assert.ErrorIs(err, ErrChannelsNotFound)
	assert.Contains(err.Error(), "10")

	_, err = MatchChannels(grid, []float64{671.0, 900.0}, MatchOptions{})
	assert.ErrorIs(err, ErrChannelsNotFound)
	assert.Contains(err.Error(), "900")
}

func TestMatchChannelsRejectsUnsortedInput(t *testing.T) {
	assert := assert.New(t)

	_, err := MatchChannels([]float64{670.0, 669.0, 671.0}, []float64{670.0}, MatchOptions{})
	assert.ErrorIs(err, ErrNotAscending)

	_, err = MatchChannels([]float64{670.0, 671.0}, []float64{671.0, 670.0}, MatchOptions{})
	assert.ErrorIs(err, ErrNotAscending)

	// Repeats are not strictly ascending either.
	_, err = MatchChannels([]float64{670.0, 670.0, 671.0}, []float64{670.0}, MatchOptions{})
	assert.ErrorIs(err, ErrNotAscending)
}

func TestMatchChannelsMaxDistance(t *testing.T) {
	assert := assert.New(t)

	grid := []float64{100, 200}

	idx, err := MatchChannels(grid, []float64{149}, MatchOptions{})
	assert.NoError(err)
	assert.Equal([]int{0}, idx)

	_, err = MatchChannels(grid, []float64{149}, MatchOptions{MaxDistance: 10})
	assert.ErrorIs(err, ErrChannelsNotFound)

	idx, err = MatchChannels(grid, []float64{149}, MatchOptions{MaxDistance: 50})
	assert.NoError(err)
	assert.Equal([]int{0}, idx)
}

// Reapplying the selection to its own output must change nothing: the
// kept wavenumbers match themselves one to one and the kept angles all
// sit inside the window that kept them.
func TestReselectingOwnOutputIsIdentity(t *testing.T) {
	assert := assert.New(t)

	grid := []float64{669.8, 670.0, 670.625, 671.25, 672.0}
	angles := []float64{-2.0, -1.0, 0.5, 1.0, 3.0}

	idx, err := MatchChannels(grid, []float64{670.1, 671.25}, MatchOptions{})
	assert.NoError(err)
	mask := AngleMask(angles, 0.0, 1.5)

	selWavenumbers := ValuesAt(grid, idx)
	selAngles := FilterValues(angles, mask)

	again, err := MatchChannels(selWavenumbers, selWavenumbers, MatchOptions{})
	assert.NoError(err)
	assert.Equal([]int{0, 1}, again)

	for _, ok := range AngleMask(selAngles, 0.0, 1.5) {
		assert.True(ok)
	}
}

func TestLoadDesired(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "channels.nc")

	schema := ncio.Schema{
		Dims: []ncio.Dim{{Name: "channels", Len: 3}},
		Vars: []ncio.Var{{Name: "wavenumber", Dims: []string{"channels"}, Type: ncio.Float64}},
	}
	w, err := ncio.CreateFile(path, schema)
	require.NoError(err)
	require.NoError(w.PutDoubles("wavenumber", []float64{900.0, 670.0, 1200.0}))
	require.NoError(w.Close())

	desired, err := LoadDesired(path, "wavenumber")
	assert.NoError(err)
	assert.Equal([]float64{670.0, 900.0, 1200.0}, desired, "list is sorted on load")

	_, err = LoadDesired(path, "missing_var")
	assert.Error(err)

	empty := filepath.Join(dir, "empty.nc")
	w, err = ncio.CreateFile(empty, ncio.Schema{
		Dims: []ncio.Dim{{Name: "channels", Len: 0}},
		Vars: []ncio.Var{{Name: "wavenumber", Dims: []string{"channels"}, Type: ncio.Float64}},
	})
	require.NoError(err)
	require.NoError(w.Close())

	_, err = LoadDesired(empty, "wavenumber")
	assert.Error(err, "an empty channel list is not usable")
}

func TestMatchChannelsEmptyGrid(t *testing.T) {
	assert := assert.New(t)

	_, err := MatchChannels(nil, []float64{670.0}, MatchOptions{})
	assert.ErrorIs(err, ErrChannelsNotFound)
}
