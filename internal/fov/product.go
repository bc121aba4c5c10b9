package fov

import (
	"fmt"

	"github.com/ctessum/sparse"

	"github.com/evas-ssec/shis2mirto/internal/ncio"
	"github.com/evas-ssec/shis2mirto/internal/shis"
	"github.com/evas-ssec/shis2mirto/internal/timeconv"
)

// Layout names the file, dimensions, and variables of a written FOV
// product. Writers receive it explicitly; nothing in this package keeps
// naming as shared state.
type Layout struct {
	FileName string

	ObsDim        string
	ChannelDim    string
	SelChannelDim string

	Longitude     string
	Latitude      string
	FOVAngle      string
	BaseTime      string
	TimeOffset    string
	Time          string
	Radiance      string
	Wavenumber    string
	SelWavenumber string
	ChannelIndex  string
	SelRadiance   string
}

// DefaultLayout returns the naming the Mirto retrieval expects.
func DefaultLayout() Layout {
	return Layout{
		FileName:      "fov.nc",
		ObsDim:        "obsnum",
		ChannelDim:    "channels",
		SelChannelDim: "selected_channels",
		Longitude:     "Longitude",
		Latitude:      "Latitude",
		FOVAngle:      "FOVangle",
		BaseTime:      "base_time",
		TimeOffset:    "time_offset",
		Time:          "Time",
		Radiance:      "Radiance",
		Wavenumber:    "Wavenumber",
		SelWavenumber: "SelWavenumber",
		ChannelIndex:  "indxselchannel",
		SelRadiance:   "selradiances",
	}
}

// Metadata is stamped into the product's global attributes.
type Metadata struct {
	RunID   string
	History string
	Source  string
}

// Product is one assembled FOV subset ready to write. Row k refers to
// the same observation in every per-observation field; column j of
// SelRadiance is Radiance column ChannelIndex[j].
type Product struct {
	Longitude  []float64
	Latitude   []float64
	FOVAngle   []float64
	BaseTime   float64
	TimeOffset []float64
	Time       []float64

	Radiance      *sparse.DenseArray
	Wavenumber    []float64
	SelWavenumber []float64
	ChannelIndex  []int
	SelRadiance   *sparse.DenseArray
}

// Assemble applies the selection mask and matched channels to a scan
// and derives the serial times. The mask must cover every observation;
// anything else is a programming error and panics.
func Assemble(scan *shis.Scan, mask []bool, channels []int) *Product {
	if len(mask) != scan.Observations() {
		panic(fmt.Sprintf("fov: mask covers %d of %d observations", len(mask), scan.Observations()))
	}
	p := &Product{
		Longitude:     FilterValues(scan.Longitude, mask),
		Latitude:      FilterValues(scan.Latitude, mask),
		FOVAngle:      FilterValues(scan.FOVAngle, mask),
		BaseTime:      scan.BaseTime,
		TimeOffset:    FilterValues(scan.TimeOffset, mask),
		Wavenumber:    scan.Wavenumber,
		SelWavenumber: ValuesAt(scan.Wavenumber, channels),
		ChannelIndex:  channels,
		Radiance:      FilterRows(scan.Radiance, mask),
	}
	p.SelRadiance = PickColumns(p.Radiance, channels)
	p.Time = timeconv.SerialSeries(p.BaseTime, p.TimeOffset)
	return p
}

// Observations returns the selected observation count. Zero is legal.
func (p *Product) Observations() int {
	return len(p.FOVAngle)
}

// WriteFile lays the product out under the given layout and writes it.
// The destination appears only on success.
func (p *Product) WriteFile(path string, layout Layout, meta Metadata) error {
	obs := []string{layout.ObsDim}
	schema := ncio.Schema{
		Dims: []ncio.Dim{
			{Name: layout.ObsDim, Len: p.Observations()},
			{Name: layout.ChannelDim, Len: len(p.Wavenumber)},
			{Name: layout.SelChannelDim, Len: len(p.SelWavenumber)},
		},
		Vars: []ncio.Var{
			{Name: layout.Longitude, Dims: obs, Type: ncio.Float64,
				Attrs: []ncio.Attr{{Name: "units", Value: "degrees_east"}}},
			{Name: layout.Latitude, Dims: obs, Type: ncio.Float64,
				Attrs: []ncio.Attr{{Name: "units", Value: "degrees_north"}}},
			{Name: layout.FOVAngle, Dims: obs, Type: ncio.Float64,
				Attrs: []ncio.Attr{{Name: "units", Value: "degrees"}}},
			{Name: layout.BaseTime, Type: ncio.Float64,
				Attrs: []ncio.Attr{{Name: "units", Value: "seconds since 1970-01-01 00:00:00 UTC"}}},
			{Name: layout.TimeOffset, Dims: obs, Type: ncio.Float64,
				Attrs: []ncio.Attr{{Name: "units", Value: "seconds"}}},
			{Name: layout.Time, Dims: obs, Type: ncio.Float64,
				Attrs: []ncio.Attr{{Name: "units", Value: "serial day number"}}},
			{Name: layout.Radiance, Dims: []string{layout.ObsDim, layout.ChannelDim}, Type: ncio.Float64},
			{Name: layout.Wavenumber, Dims: []string{layout.ChannelDim}, Type: ncio.Float64,
				Attrs: []ncio.Attr{{Name: "units", Value: "cm-1"}}},
			{Name: layout.SelWavenumber, Dims: []string{layout.SelChannelDim}, Type: ncio.Float64,
				Attrs: []ncio.Attr{{Name: "units", Value: "cm-1"}}},
			{Name: layout.ChannelIndex, Dims: []string{layout.SelChannelDim}, Type: ncio.Float64,
				Attrs: []ncio.Attr{{Name: "index_base", Value: []int32{0}}}},
			{Name: layout.SelRadiance, Dims: []string{layout.ObsDim, layout.SelChannelDim}, Type: ncio.Float64},
		},
		GlobalAttrs: []ncio.Attr{
			{Name: "title", Value: "Scanning HIS field-of-view subset"},
			{Name: "source", Value: meta.Source},
			{Name: "history", Value: meta.History},
			{Name: "run_id", Value: meta.RunID},
		},
	}

	w, err := ncio.CreateFile(path, schema)
	if err != nil {
		return err
	}
	if err := p.put(w, layout); err != nil {
		w.Abort()
		return err
	}
	return w.Close()
}

func (p *Product) put(w *ncio.Writer, layout Layout) error {
	chanIdx := make([]float64, len(p.ChannelIndex))
	for i, c := range p.ChannelIndex {
		chanIdx[i] = float64(c)
	}

	puts := []struct {
		name string
		vals []float64
	}{
		{layout.Longitude, p.Longitude},
		{layout.Latitude, p.Latitude},
		{layout.FOVAngle, p.FOVAngle},
		{layout.BaseTime, []float64{p.BaseTime}},
		{layout.TimeOffset, p.TimeOffset},
		{layout.Time, p.Time},
		{layout.Wavenumber, p.Wavenumber},
		{layout.SelWavenumber, p.SelWavenumber},
		{layout.ChannelIndex, chanIdx},
	}
	for _, v := range puts {
		if err := w.PutDoubles(v.name, v.vals); err != nil {
			return err
		}
	}
	if err := w.PutMatrix(layout.Radiance, p.Radiance); err != nil {
		return err
	}
	return w.PutMatrix(layout.SelRadiance, p.SelRadiance)
}
