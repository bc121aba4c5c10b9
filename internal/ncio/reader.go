package ncio

import (
	"fmt"
	"os"

	"github.com/ctessum/cdf"
	"github.com/ctessum/sparse"
)

// File is a NetCDF classic dataset opened for reading.
type File struct {
	path string
	osf  *os.File
	f    *cdf.File
}

// OpenFile opens an existing dataset.
func OpenFile(path string) (*File, error) {
	osf, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	f, err := cdf.Open(osf)
	if err != nil {
		osf.Close()
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	return &File{path: path, osf: osf, f: f}, nil
}

// Close releases the underlying file handle.
func (f *File) Close() error {
	return f.osf.Close()
}

// Path returns the path the dataset was opened from.
func (f *File) Path() string {
	return f.path
}

// Has reports whether the dataset declares the named variable.
func (f *File) Has(name string) bool {
	for _, v := range f.f.Header.Variables() {
		if v == name {
			return true
		}
	}
	return false
}

// Attr returns a global (varName "") or per-variable attribute value,
// or nil when absent.
func (f *File) Attr(varName, name string) interface{} {
	return f.f.Header.GetAttribute(varName, name)
}

// Doubles reads a complete variable, widening any numeric storage type
// to float64. The returned shape carries the resolved record count in
// its leading position for record variables.
func (f *File) Doubles(name string) ([]float64, []int, error) {
	if !f.Has(name) {
		return nil, nil, fmt.Errorf("%s: variable %q not present", f.path, name)
	}

	r := f.f.Reader(name, nil, nil)
	buf := r.Zero(-1)
	n, numeric := elemCount(buf)
	if !numeric {
		return nil, nil, fmt.Errorf("%s: variable %q is not numeric", f.path, name)
	}
	// Zero(-1) sizes the buffer as one record for record variables, even
	// when the file holds no records; resolve the real count from the
	// file size so an empty record variable reads as empty.
	if lengths := f.f.Header.Lengths(name); len(lengths) > 0 && lengths[0] == 0 {
		fi, err := f.osf.Stat()
		if err != nil {
			return nil, nil, fmt.Errorf("%s: sizing variable %q: %w", f.path, name, err)
		}
		if f.f.Header.NumRecs(fi.Size()) == 0 {
			buf = r.Zero(0)
			n = 0
		}
	}
	if n > 0 {
		// The cdf strider reports io.EOF when a read ends exactly at the
		// variable's last byte; per the library's Reader contract an error
		// is only meaningful when fewer than len(values) elements were read.
		if m, err := r.Read(buf); err != nil && m < n {
			return nil, nil, fmt.Errorf("%s: reading variable %q: %w", f.path, name, err)
		}
	}
	vals := widen(buf)

	shape := append([]int(nil), f.f.Header.Lengths(name)...)
	if len(shape) > 0 && shape[0] == 0 {
		row := 1
		for _, d := range shape[1:] {
			row *= d
		}
		if row > 0 {
			shape[0] = len(vals) / row
		}
	}
	return vals, shape, nil
}

func elemCount(buf interface{}) (int, bool) {
	switch b := buf.(type) {
	case []float64:
		return len(b), true
	case []float32:
		return len(b), true
	case []int32:
		return len(b), true
	case []int16:
		return len(b), true
	case []int8:
		return len(b), true
	}
	return 0, false
}

func widen(buf interface{}) []float64 {
	switch b := buf.(type) {
	case []float64:
		return b
	case []float32:
		out := make([]float64, len(b))
		for i, x := range b {
			out[i] = float64(x)
		}
		return out
	case []int32:
		out := make([]float64, len(b))
		for i, x := range b {
			out[i] = float64(x)
		}
		return out
	case []int16:
		out := make([]float64, len(b))
		for i, x := range b {
			out[i] = float64(x)
		}
		return out
	case []int8:
		out := make([]float64, len(b))
		for i, x := range b {
			out[i] = float64(x)
		}
		return out
	}
	return nil
}

// Scalar reads a zero-dimensional variable.
func (f *File) Scalar(name string) (float64, error) {
	vals, shape, err := f.Doubles(name)
	if err != nil {
		return 0, err
	}
	if len(shape) != 0 || len(vals) != 1 {
		return 0, fmt.Errorf("%s: variable %q is not scalar", f.path, name)
	}
	return vals[0], nil
}

// Vector reads a one-dimensional variable.
func (f *File) Vector(name string) ([]float64, error) {
	vals, shape, err := f.Doubles(name)
	if err != nil {
		return nil, err
	}
	if len(shape) != 1 {
		return nil, fmt.Errorf("%s: variable %q has rank %d, want 1", f.path, name, len(shape))
	}
	return vals, nil
}

// ReadVector opens path, reads one one-dimensional variable, and
// closes the dataset again.
func ReadVector(path, name string) ([]float64, error) {
	f, err := OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return f.Vector(name)
}

// Matrix reads a variable of any rank into a dense array.
func (f *File) Matrix(name string) (*sparse.DenseArray, error) {
	vals, shape, err := f.Doubles(name)
	if err != nil {
		return nil, err
	}
	if len(shape) == 0 {
		return nil, fmt.Errorf("%s: variable %q is scalar, want array", f.path, name)
	}
	m := sparse.ZerosDense(shape...)
	copy(m.Elements, vals)
	return m, nil
}
