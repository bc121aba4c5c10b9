package fov

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ctessum/sparse"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evas-ssec/shis2mirto/internal/ncio"
	"github.com/evas-ssec/shis2mirto/internal/shis"
	"github.com/evas-ssec/shis2mirto/pkg/logger"
)

func testScan() *shis.Scan {
	rad := sparse.ZerosDense(4, 3)
	for i := 0; i < 4; i++ {
		for j := 0; j < 3; j++ {
			rad.Set(float64(10*i+j), i, j)
		}
	}
	return &shis.Scan{
		Source:     "granule.nc",
		Longitude:  []float64{-89.1, -89.2, -89.3, -89.4},
		Latitude:   []float64{43.1, 43.2, 43.3, 43.4},
		FOVAngle:   []float64{-3.0, -1.0, 0.5, 4.0},
		TimeOffset: []float64{0.0, 21600.0, 43200.0, 64800.0},
		BaseTime:   1410760800.0, // 2014-09-15T06:00:00Z
		Wavenumber: []float64{670.0, 671.0, 672.0},
		Radiance:   rad,
	}
}

func TestAssemble(t *testing.T) {
	assert := assert.New(t)

	scan := testScan()
	mask := []bool{false, true, true, false}
	channels := []int{2, 0}

	p := Assemble(scan, mask, channels)

	assert.Equal(2, p.Observations())
	assert.Equal([]float64{-89.2, -89.3}, p.Longitude)
	assert.Equal([]float64{43.2, 43.3}, p.Latitude)
	assert.Equal([]float64{-1.0, 0.5}, p.FOVAngle)
	assert.Equal([]float64{21600.0, 43200.0}, p.TimeOffset)
	assert.Equal(scan.Wavenumber, p.Wavenumber)
	assert.Equal([]float64{672.0, 670.0}, p.SelWavenumber)
	assert.Equal([]int{2, 0}, p.ChannelIndex)

	// 2014-09-15T06:00Z is serial day 735857.25.
	assert.InDelta(735857.50, p.Time[0], 1e-9)
	assert.InDelta(735857.75, p.Time[1], 1e-9)

	assert.Equal([]int{2, 3}, p.Radiance.Shape)
	assert.Equal(10.0, p.Radiance.Get(0, 0))
	assert.Equal([]int{2, 2}, p.SelRadiance.Shape)
	assert.Equal(12.0, p.SelRadiance.Get(0, 0))
	assert.Equal(10.0, p.SelRadiance.Get(0, 1))
	assert.Equal(22.0, p.SelRadiance.Get(1, 0))
	assert.Equal(20.0, p.SelRadiance.Get(1, 1))

	assert.Panics(func() { Assemble(scan, []bool{true}, channels) })
}

func TestWriteFileRoundTrip(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	scan := testScan()
	p := Assemble(scan, []bool{true, true, false, true}, []int{1})

	layout := DefaultLayout()
	path := filepath.Join(t.TempDir(), layout.FileName)
	meta := Metadata{RunID: "run-42", History: "shis2mirto create_fov_file", Source: "granule.nc"}
	require.NoError(p.WriteFile(path, layout, meta))

	f, err := ncio.OpenFile(path)
	require.NoError(err)
	defer f.Close()

	lon, err := f.Vector(layout.Longitude)
	assert.NoError(err)
	assert.Equal([]float64{-89.1, -89.2, -89.4}, lon)

	base, err := f.Scalar(layout.BaseTime)
	assert.NoError(err)
	assert.Equal(1410760800.0, base)

	times, err := f.Vector(layout.Time)
	assert.NoError(err)
	assert.InDelta(735857.25, times[0], 1e-9)

	wn, err := f.Vector(layout.Wavenumber)
	assert.NoError(err)
	assert.Equal(scan.Wavenumber, wn)

	sel, err := f.Vector(layout.SelWavenumber)
	assert.NoError(err)
	assert.Equal([]float64{671.0}, sel)

	idx, err := f.Vector(layout.ChannelIndex)
	assert.NoError(err)
	assert.Equal([]float64{1.0}, idx)
	assert.Equal([]int32{0}, f.Attr(layout.ChannelIndex, "index_base"))

	rad, err := f.Matrix(layout.Radiance)
	assert.NoError(err)
	assert.Equal([]int{3, 3}, rad.Shape)
	assert.Equal(30.0, rad.Get(2, 0))

	selRad, err := f.Matrix(layout.SelRadiance)
	assert.NoError(err)
	assert.Equal([]int{3, 1}, selRad.Shape)
	assert.Equal(1.0, selRad.Get(0, 0))
	assert.Equal(11.0, selRad.Get(1, 0))
	assert.Equal(31.0, selRad.Get(2, 0))

	assert.Equal("run-42", f.Attr("", "run_id"))
	assert.Equal("granule.nc", f.Attr("", "source"))
}

func TestWriteFileFullSelectionIsIdentity(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	scan := testScan()
	p := Assemble(scan, []bool{true, true, true, true}, []int{0, 1, 2})

	layout := DefaultLayout()
	path := filepath.Join(t.TempDir(), layout.FileName)
	require.NoError(p.WriteFile(path, layout, Metadata{RunID: "id"}))

	f, err := ncio.OpenFile(path)
	require.NoError(err)
	defer f.Close()

	sel, err := f.Vector(layout.SelWavenumber)
	assert.NoError(err)
	assert.Equal(scan.Wavenumber, sel)

	selRad, err := f.Matrix(layout.SelRadiance)
	assert.NoError(err)
	assert.Equal(scan.Radiance.Elements, selRad.Elements)
	assert.Equal(scan.Radiance.Shape, selRad.Shape)
}

func TestWriteFileZeroObservations(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	scan := testScan()
	p := Assemble(scan, []bool{false, false, false, false}, []int{0, 2})
	require.Equal(0, p.Observations())

	layout := DefaultLayout()
	path := filepath.Join(t.TempDir(), layout.FileName)
	require.NoError(p.WriteFile(path, layout, Metadata{RunID: "id"}))

	f, err := ncio.OpenFile(path)
	require.NoError(err)
	defer f.Close()

	lon, err := f.Vector(layout.Longitude)
	assert.NoError(err)
	assert.Empty(lon)

	wn, err := f.Vector(layout.Wavenumber)
	assert.NoError(err)
	assert.Equal(scan.Wavenumber, wn, "channel grid survives an empty selection")

	sel, err := f.Vector(layout.SelWavenumber)
	assert.NoError(err)
	assert.Equal([]float64{670.0, 672.0}, sel)
}

func writeConvertFixtures(t *testing.T, dir string) (scanPath, chanPath string) {
	t.Helper()
	require := require.New(t)

	scan := testScan()
	scanPath = filepath.Join(dir, "granule.nc")
	schema := ncio.Schema{
		Dims: []ncio.Dim{{Name: "time", Len: 4}, {Name: "wnum", Len: 3}},
		Vars: []ncio.Var{
			{Name: "Longitude", Dims: []string{"time"}, Type: ncio.Float64},
			{Name: "Latitude", Dims: []string{"time"}, Type: ncio.Float64},
			{Name: "FOVangle", Dims: []string{"time"}, Type: ncio.Float64},
			{Name: "time_offset", Dims: []string{"time"}, Type: ncio.Float64},
			{Name: "base_time", Type: ncio.Float64},
			{Name: "wavenumber", Dims: []string{"wnum"}, Type: ncio.Float64},
			{Name: "radiance", Dims: []string{"time", "wnum"}, Type: ncio.Float64},
		},
	}
	w, err := ncio.CreateFile(scanPath, schema)
	require.NoError(err)
	require.NoError(w.PutDoubles("Longitude", scan.Longitude))
	require.NoError(w.PutDoubles("Latitude", scan.Latitude))
	require.NoError(w.PutDoubles("FOVangle", scan.FOVAngle))
	require.NoError(w.PutDoubles("time_offset", scan.TimeOffset))
	require.NoError(w.PutScalar("base_time", scan.BaseTime))
	require.NoError(w.PutDoubles("wavenumber", scan.Wavenumber))
	require.NoError(w.PutMatrix("radiance", scan.Radiance))
	require.NoError(w.Close())

	chanPath = filepath.Join(dir, "channels.nc")
	cw, err := ncio.CreateFile(chanPath, ncio.Schema{
		Dims: []ncio.Dim{{Name: "channels", Len: 2}},
		Vars: []ncio.Var{{Name: "wavenumber", Dims: []string{"channels"}, Type: ncio.Float64}},
	})
	require.NoError(err)
	require.NoError(cw.PutDoubles("wavenumber", []float64{672.0, 670.4}))
	require.NoError(cw.Close())
	return scanPath, chanPath
}

func TestServiceConvert(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	dir := t.TempDir()
	scanPath, chanPath := writeConvertFixtures(t, dir)

	outDir := filepath.Join(dir, "out")
	require.NoError(os.MkdirAll(outDir, 0o755))

	svc := NewService(logger.Nop(), shis.DefaultSchema(), DefaultLayout(), MatchOptions{})
	res, err := svc.Convert(ConvertRequest{
		ScanPath:     scanPath,
		ChannelsPath: chanPath,
		ChannelsVar:  "wavenumber",
		OutputDir:    outDir,
		CenterAngle:  0.0,
		AngleRange:   1.5,
		History:      "create_fov_file test",
	})
	require.NoError(err)

	assert.Equal(filepath.Join(outDir, "fov.nc"), res.Path)
	assert.Equal(2, res.Observations)
	assert.Equal(3, res.Channels)
	assert.Equal(2, res.SelChannels)

	f, err := ncio.OpenFile(res.Path)
	require.NoError(err)
	defer f.Close()

	angles, err := f.Vector("FOVangle")
	assert.NoError(err)
	assert.Equal([]float64{-1.0, 0.5}, angles)

	idx, err := f.Vector("indxselchannel")
	assert.NoError(err)
	assert.Equal([]float64{0.0, 2.0}, idx, "670.4 maps to channel 0, 672.0 to channel 2")

	run := f.Attr("", "run_id")
	assert.NotEmpty(run, "a run id is generated when the request omits one")
}

func TestServiceConvertUnmatchedChannels(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	dir := t.TempDir()
	scanPath, _ := writeConvertFixtures(t, dir)

	chanPath := filepath.Join(dir, "bad.nc")
	cw, err := ncio.CreateFile(chanPath, ncio.Schema{
		Dims: []ncio.Dim{{Name: "channels", Len: 1}},
		Vars: []ncio.Var{{Name: "wavenumber", Dims: []string{"channels"}, Type: ncio.Float64}},
	})
	require.NoError(err)
	require.NoError(cw.PutDoubles("wavenumber", []float64{9999.0}))
	require.NoError(cw.Close())

	svc := NewService(logger.Nop(), shis.DefaultSchema(), DefaultLayout(), MatchOptions{})
	_, err = svc.Convert(ConvertRequest{
		ScanPath:     scanPath,
		ChannelsPath: chanPath,
		ChannelsVar:  "wavenumber",
		OutputDir:    dir,
		AngleRange:   1.5,
	})
	assert.ErrorIs(err, ErrChannelsNotFound)

	_, statErr := os.Stat(filepath.Join(dir, "fov.nc"))
	assert.True(os.IsNotExist(statErr), "no product is written when matching fails")
}
