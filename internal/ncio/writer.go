package ncio

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ctessum/cdf"
	"github.com/ctessum/sparse"
)

// Writer produces one NetCDF classic dataset. Data is staged in a
// temporary file next to the destination and renamed into place by
// Close, so a failed run never leaves a partial product behind.
type Writer struct {
	path string
	tmp  *os.File
	f    *cdf.File
	vars map[string]Var
	dims map[string]int
}

// CreateFile opens a writer for the dataset described by schema. The
// destination is replaced only when Close succeeds.
func CreateFile(path string, schema Schema) (*Writer, error) {
	if err := schema.Validate(); err != nil {
		return nil, fmt.Errorf("invalid schema for %s: %w", path, err)
	}

	names := make([]string, len(schema.Dims))
	lens := make([]int, len(schema.Dims))
	dims := make(map[string]int, len(schema.Dims))
	for i, d := range schema.Dims {
		names[i] = d.Name
		lens[i] = d.Len
		dims[d.Name] = d.Len
	}
	h := cdf.NewHeader(names, lens)

	for _, a := range schema.GlobalAttrs {
		h.AddAttribute("", a.Name, a.Value)
	}

	vars := make(map[string]Var, len(schema.Vars))
	for _, v := range schema.Vars {
		var proto interface{}
		switch v.Type {
		case Float64:
			proto = []float64{0}
		case Float32:
			proto = []float32{0}
		case Int32:
			proto = []int32{0}
		default:
			return nil, fmt.Errorf("variable %q has unknown type %d", v.Name, v.Type)
		}
		h.AddVariable(v.Name, v.Dims, proto)
		for _, a := range v.Attrs {
			h.AddAttribute(v.Name, a.Name, a.Value)
		}
		vars[v.Name] = v
	}
	h.Define()

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return nil, fmt.Errorf("creating staging file for %s: %w", path, err)
	}
	f, err := cdf.Create(tmp, h)
	if err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return nil, fmt.Errorf("writing header for %s: %w", path, err)
	}

	return &Writer{path: path, tmp: tmp, f: f, vars: vars, dims: dims}, nil
}

// PutDoubles writes a complete variable from float64 values, narrowing
// to the declared on-disk type as needed. The value count must match
// the variable's declared size; variables on the record dimension accept
// only an empty slice, which is a no-op.
func (w *Writer) PutDoubles(name string, vals []float64) error {
	v, ok := w.vars[name]
	if !ok {
		return fmt.Errorf("variable %q not declared in schema", name)
	}
	want := 1
	for _, dn := range v.Dims {
		want *= w.dims[dn]
	}
	if len(vals) != want {
		return fmt.Errorf("variable %q holds %d values, got %d", name, want, len(vals))
	}
	if len(vals) == 0 {
		return nil
	}

	var buf interface{}
	switch v.Type {
	case Float64:
		buf = vals
	case Float32:
		b := make([]float32, len(vals))
		for i, x := range vals {
			b[i] = float32(x)
		}
		buf = b
	case Int32:
		b := make([]int32, len(vals))
		for i, x := range vals {
			b[i] = int32(x)
		}
		buf = b
	}

	// The cdf strider reports io.EOF when a write ends exactly at the
	// variable's last byte; per the library's Writer contract an error
	// is only meaningful when n < len(values).
	if n, err := w.f.Writer(name, nil, nil).Write(buf); err != nil && n < len(vals) {
		return fmt.Errorf("writing variable %q: %w", name, err)
	}
	return nil
}

// PutScalar writes a zero-dimensional variable.
func (w *Writer) PutScalar(name string, val float64) error {
	return w.PutDoubles(name, []float64{val})
}

// PutMatrix writes a dense array into a variable of the same shape.
func (w *Writer) PutMatrix(name string, m *sparse.DenseArray) error {
	v, ok := w.vars[name]
	if !ok {
		return fmt.Errorf("variable %q not declared in schema", name)
	}
	if len(m.Shape) != len(v.Dims) {
		return fmt.Errorf("variable %q has rank %d, array has rank %d",
			name, len(v.Dims), len(m.Shape))
	}
	for i, dn := range v.Dims {
		if m.Shape[i] != w.dims[dn] {
			return fmt.Errorf("variable %q dimension %q is %d, array axis %d is %d",
				name, dn, w.dims[dn], i, m.Shape[i])
		}
	}
	return w.PutDoubles(name, m.Elements)
}

// Close finalizes the record count and moves the staged file into place.
func (w *Writer) Close() error {
	if err := cdf.UpdateNumRecs(w.tmp); err != nil {
		w.Abort()
		return fmt.Errorf("finalizing %s: %w", w.path, err)
	}
	if err := w.tmp.Close(); err != nil {
		os.Remove(w.tmp.Name())
		return fmt.Errorf("closing staging file for %s: %w", w.path, err)
	}
	if err := os.Rename(w.tmp.Name(), w.path); err != nil {
		os.Remove(w.tmp.Name())
		return fmt.Errorf("publishing %s: %w", w.path, err)
	}
	return nil
}

// Abort discards the staged file. Safe to call after a failed Close.
func (w *Writer) Abort() {
	w.tmp.Close()
	os.Remove(w.tmp.Name())
}
