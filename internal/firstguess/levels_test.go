package firstguess

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evas-ssec/shis2mirto/internal/ncio"
)

func writeLevelsFile(t *testing.T, name string, vals []float64) string {
	t.Helper()
	require := require.New(t)

	path := filepath.Join(t.TempDir(), name)
	w, err := ncio.CreateFile(path, ncio.Schema{
		Dims: []ncio.Dim{{Name: "levels", Len: len(vals)}},
		Vars: []ncio.Var{{Name: "plevels", Dims: []string{"levels"}, Type: ncio.Float64}},
	})
	require.NoError(err)
	require.NoError(w.PutDoubles("plevels", vals))
	require.NoError(w.Close())
	return path
}

func TestLoadPressureLevelsSortsDescending(t *testing.T) {
	assert := assert.New(t)

	path := writeLevelsFile(t, "plevels.nc", []float64{500.0, 1000.0, 850.0, 700.0})

	levels, err := LoadPressureLevels(path, "plevels")
	assert.NoError(err)
	assert.Equal([]float64{1000.0, 850.0, 700.0, 500.0}, levels)
}

func TestLoadPressureLevelsRejectsDuplicates(t *testing.T) {
	assert := assert.New(t)

	path := writeLevelsFile(t, "dup.nc", []float64{850.0, 850.0, 500.0})

	_, err := LoadPressureLevels(path, "plevels")
	assert.Error(err)
	assert.Contains(err.Error(), "850")
}

func TestLoadPressureLevelsMissingVariable(t *testing.T) {
	assert := assert.New(t)

	path := writeLevelsFile(t, "plevels.nc", []float64{1000.0})

	_, err := LoadPressureLevels(path, "no_such_var")
	assert.Error(err)
}
