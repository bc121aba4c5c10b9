package firstguess

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evas-ssec/shis2mirto/internal/fov"
	"github.com/evas-ssec/shis2mirto/internal/ncio"
	"github.com/evas-ssec/shis2mirto/internal/sonde"
	"github.com/evas-ssec/shis2mirto/pkg/logger"
)

type fakeNarrator struct {
	gotPoints []sonde.Point
	gotLevels []float64
	short     bool
	err       error
}

func (f *fakeNarrator) Profiles(ctx context.Context, points []sonde.Point, levels []float64) ([]sonde.Profile, error) {
	f.gotPoints = points
	f.gotLevels = levels
	if f.err != nil {
		return nil, f.err
	}
	n := len(points)
	if f.short && n > 0 {
		n--
	}
	profiles := make([]sonde.Profile, n)
	for i := range profiles {
		profiles[i] = sonde.Profile{
			Point:       points[i],
			Pressure:    levels,
			Temperature: make([]float64, len(levels)),
			Dewpoint:    make([]float64, len(levels)),
		}
	}
	return profiles, nil
}

func TestCreateHaltsAtStateMapping(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	dir := t.TempDir()
	fovPath := writeFovFixture(t, dir)
	levelsPath := writeLevelsFile(t, "plevels.nc", []float64{500.0, 1000.0, 850.0})

	narr := &fakeNarrator{}
	svc := NewService(logger.Nop(), fov.DefaultLayout(), DefaultLayout(), narr)

	_, err := svc.Create(context.Background(), Request{
		FovPath:    fovPath,
		LevelsPath: levelsPath,
		LevelsVar:  "plevels",
		OutputDir:  dir,
	})
	assert.ErrorIs(err, ErrStateMappingUndefined)

	// The narrator was still consulted, with sorted levels and one
	// point per observation.
	assert.Equal([]float64{1000.0, 850.0, 500.0}, narr.gotLevels)
	require.Len(narr.gotPoints, 2)
	assert.Equal(time.Date(2014, 9, 15, 6, 0, 0, 0, time.UTC), narr.gotPoints[0].Time)

	// Nothing was written, and the FOV product is untouched.
	_, statErr := os.Stat(filepath.Join(dir, DefaultLayout().FileName))
	assert.True(os.IsNotExist(statErr))

	f, err := ncio.OpenFile(fovPath)
	require.NoError(err)
	f.Close()
}

func TestCreateNarratorFailure(t *testing.T) {
	assert := assert.New(t)

	dir := t.TempDir()
	fovPath := writeFovFixture(t, dir)
	levelsPath := writeLevelsFile(t, "plevels.nc", []float64{1000.0, 850.0})

	narr := &fakeNarrator{err: sonde.ErrProfileShortfall}
	svc := NewService(logger.Nop(), fov.DefaultLayout(), DefaultLayout(), narr)

	_, err := svc.Create(context.Background(), Request{
		FovPath:    fovPath,
		LevelsPath: levelsPath,
		LevelsVar:  "plevels",
		OutputDir:  dir,
	})
	assert.ErrorIs(err, sonde.ErrProfileShortfall)

	_, statErr := os.Stat(filepath.Join(dir, DefaultLayout().FileName))
	assert.True(os.IsNotExist(statErr))
}

func TestCreateShortProfileList(t *testing.T) {
	assert := assert.New(t)

	dir := t.TempDir()
	fovPath := writeFovFixture(t, dir)
	levelsPath := writeLevelsFile(t, "plevels.nc", []float64{1000.0, 850.0})

	narr := &fakeNarrator{short: true}
	svc := NewService(logger.Nop(), fov.DefaultLayout(), DefaultLayout(), narr)

	_, err := svc.Create(context.Background(), Request{
		FovPath:    fovPath,
		LevelsPath: levelsPath,
		LevelsVar:  "plevels",
		OutputDir:  dir,
	})
	assert.ErrorIs(err, sonde.ErrProfileShortfall)
}
