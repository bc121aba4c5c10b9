package firstguess

import (
	"fmt"

	"github.com/ctessum/sparse"

	"github.com/evas-ssec/shis2mirto/internal/ncio"
)

// Layout names the file, dimensions, and variables of a written
// first-guess product.
type Layout struct {
	FileName string

	ObsDim      string
	LevelDim    string
	StateDim    string
	SelStateDim string

	Pressure       string
	LinearPoint    string
	FirstGuess     string
	SelLinearPoint string
	SelFirstGuess  string
	VarIndex       string
}

// DefaultLayout returns the naming the Mirto retrieval expects.
func DefaultLayout() Layout {
	return Layout{
		FileName:       "firstguess.nc",
		ObsDim:         "obsnum",
		LevelDim:       "levels",
		StateDim:       "statevars",
		SelStateDim:    "selected_statevars",
		Pressure:       "Pressure",
		LinearPoint:    "LinearPoint",
		FirstGuess:     "FirstGuess",
		SelLinearPoint: "SelLinearPoint",
		SelFirstGuess:  "SelFirstGuess",
		VarIndex:       "indxselvar",
	}
}

// Metadata is stamped into the product's global attributes.
type Metadata struct {
	RunID   string
	History string
	Source  string
}

// Product is one assembled first-guess dataset. LinearPoint and
// FirstGuess are observations x levels x state variables; the Sel
// variants carry only the state variables named by VarIndex, in that
// order. VarIndex is 1-based, matching the retrieval's convention.
type Product struct {
	Pressure       []float64
	LinearPoint    *sparse.DenseArray
	FirstGuess     *sparse.DenseArray
	SelLinearPoint *sparse.DenseArray
	SelFirstGuess  *sparse.DenseArray
	VarIndex       []int
}

// Observations returns the observation count. Zero is legal.
func (p *Product) Observations() int {
	return p.FirstGuess.Shape[0]
}

func (p *Product) validate() error {
	for _, m := range []struct {
		name string
		arr  *sparse.DenseArray
	}{
		{"LinearPoint", p.LinearPoint},
		{"FirstGuess", p.FirstGuess},
		{"SelLinearPoint", p.SelLinearPoint},
		{"SelFirstGuess", p.SelFirstGuess},
	} {
		if m.arr == nil {
			return fmt.Errorf("%s is not populated", m.name)
		}
		if len(m.arr.Shape) != 3 {
			return fmt.Errorf("%s has rank %d, want 3", m.name, len(m.arr.Shape))
		}
	}

	nObs, nLev, nState := p.FirstGuess.Shape[0], p.FirstGuess.Shape[1], p.FirstGuess.Shape[2]
	if got := p.LinearPoint.Shape; got[0] != nObs || got[1] != nLev || got[2] != nState {
		return fmt.Errorf("LinearPoint shape %v does not match FirstGuess %v", got, p.FirstGuess.Shape)
	}
	if len(p.Pressure) != nLev {
		return fmt.Errorf("%d pressure levels for %d-level state arrays", len(p.Pressure), nLev)
	}

	nSel := len(p.VarIndex)
	for _, m := range []struct {
		name string
		arr  *sparse.DenseArray
	}{
		{"SelLinearPoint", p.SelLinearPoint},
		{"SelFirstGuess", p.SelFirstGuess},
	} {
		got := m.arr.Shape
		if got[0] != nObs || got[1] != nLev || got[2] != nSel {
			return fmt.Errorf("%s shape %v, want [%d %d %d]", m.name, got, nObs, nLev, nSel)
		}
	}
	for i, v := range p.VarIndex {
		if v < 1 || v > nState {
			return fmt.Errorf("VarIndex[%d] = %d is outside 1..%d", i, v, nState)
		}
	}
	return nil
}

// WriteFile lays the product out under the given layout and writes it.
// The destination appears only on success.
func (p *Product) WriteFile(path string, layout Layout, meta Metadata) error {
	if err := p.validate(); err != nil {
		return fmt.Errorf("first-guess product: %w", err)
	}

	stateDims := []string{layout.ObsDim, layout.LevelDim, layout.StateDim}
	selDims := []string{layout.ObsDim, layout.LevelDim, layout.SelStateDim}
	schema := ncio.Schema{
		Dims: []ncio.Dim{
			{Name: layout.ObsDim, Len: p.Observations()},
			{Name: layout.LevelDim, Len: len(p.Pressure)},
			{Name: layout.StateDim, Len: p.FirstGuess.Shape[2]},
			{Name: layout.SelStateDim, Len: len(p.VarIndex)},
		},
		Vars: []ncio.Var{
			{Name: layout.Pressure, Dims: []string{layout.LevelDim}, Type: ncio.Float64,
				Attrs: []ncio.Attr{
					{Name: "units", Value: "hPa"},
					{Name: "positive", Value: "down"},
				}},
			{Name: layout.LinearPoint, Dims: stateDims, Type: ncio.Float64},
			{Name: layout.FirstGuess, Dims: stateDims, Type: ncio.Float64},
			{Name: layout.SelLinearPoint, Dims: selDims, Type: ncio.Float64},
			{Name: layout.SelFirstGuess, Dims: selDims, Type: ncio.Float64},
			{Name: layout.VarIndex, Dims: []string{layout.SelStateDim}, Type: ncio.Float64,
				Attrs: []ncio.Attr{{Name: "index_base", Value: []int32{1}}}},
		},
		GlobalAttrs: []ncio.Attr{
			{Name: "title", Value: "Mirto first-guess atmospheric state"},
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
	if err := w.PutDoubles(layout.Pressure, p.Pressure); err != nil {
		return err
	}
	varIdx := make([]float64, len(p.VarIndex))
	for i, v := range p.VarIndex {
		varIdx[i] = float64(v)
	}
	if err := w.PutDoubles(layout.VarIndex, varIdx); err != nil {
		return err
	}

	for _, m := range []struct {
		name string
		arr  *sparse.DenseArray
	}{
		{layout.LinearPoint, p.LinearPoint},
		{layout.FirstGuess, p.FirstGuess},
		{layout.SelLinearPoint, p.SelLinearPoint},
		{layout.SelFirstGuess, p.SelFirstGuess},
	} {
		if err := w.PutMatrix(m.name, m.arr); err != nil {
			return err
		}
	}
	return nil
}
