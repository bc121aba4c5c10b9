package fov

import (
	"fmt"

	"github.com/ctessum/sparse"
)

// FilterValues keeps the entries of vals where mask is true, preserving
// order. Length disagreement between mask and data is a programming
// error and panics.
func FilterValues(vals []float64, mask []bool) []float64 {
	if len(vals) != len(mask) {
		panic(fmt.Sprintf("fov: mask length %d does not fit %d values", len(mask), len(vals)))
	}
	out := make([]float64, 0, CountSelected(mask))
	for i, keep := range mask {
		if keep {
			out = append(out, vals[i])
		}
	}
	return out
}

// FilterRows keeps the rows of a matrix where mask is true, preserving
// order. Row k of the result is the k-th masked-in row of the input.
func FilterRows(m *sparse.DenseArray, mask []bool) *sparse.DenseArray {
	if len(m.Shape) != 2 {
		panic(fmt.Sprintf("fov: FilterRows wants rank 2, got %d", len(m.Shape)))
	}
	if m.Shape[0] != len(mask) {
		panic(fmt.Sprintf("fov: mask length %d does not fit %d rows", len(mask), m.Shape[0]))
	}
	nc := m.Shape[1]
	out := sparse.ZerosDense(CountSelected(mask), nc)
	row := 0
	for i, keep := range mask {
		if !keep {
			continue
		}
		copy(out.Elements[row*nc:(row+1)*nc], m.Elements[i*nc:(i+1)*nc])
		row++
	}
	return out
}

// PickColumns projects a matrix onto the named columns, in exactly the
// given order. Column j of the result is input column cols[j] for every
// row.
func PickColumns(m *sparse.DenseArray, cols []int) *sparse.DenseArray {
	if len(m.Shape) != 2 {
		panic(fmt.Sprintf("fov: PickColumns wants rank 2, got %d", len(m.Shape)))
	}
	for _, c := range cols {
		if c < 0 || c >= m.Shape[1] {
			panic(fmt.Sprintf("fov: column %d outside %d channels", c, m.Shape[1]))
		}
	}
	out := sparse.ZerosDense(m.Shape[0], len(cols))
	for r := 0; r < m.Shape[0]; r++ {
		for j, c := range cols {
			out.Set(m.Get(r, c), r, j)
		}
	}
	return out
}

// ValuesAt gathers vals[idx[j]] for each j, in index order.
func ValuesAt(vals []float64, idx []int) []float64 {
	out := make([]float64, len(idx))
	for j, i := range idx {
		out[j] = vals[i]
	}
	return out
}
