// Package firstguess builds the first-guess atmospheric-state product
// consumed by the Mirto retrieval. It reads the geolocation and time of
// an already-written FOV product, collects modeled profiles from the
// radiosonde narrator, and lays out the first-guess file.
package firstguess

import (
	"fmt"
	"sort"

	"github.com/evas-ssec/shis2mirto/internal/ncio"
)

// LoadPressureLevels reads the requested pressure levels and sorts them
// descending, surface first. Empty and duplicate-carrying lists are
// rejected.
func LoadPressureLevels(path, varName string) ([]float64, error) {
	vals, err := ncio.ReadVector(path, varName)
	if err != nil {
		return nil, err
	}
	if len(vals) == 0 {
		return nil, fmt.Errorf("%s: variable %q lists no pressure levels", path, varName)
	}

	out := make([]float64, len(vals))
	copy(out, vals)
	sort.Sort(sort.Reverse(sort.Float64Slice(out)))

	for i := 1; i < len(out); i++ {
		if out[i] == out[i-1] {
			return nil, fmt.Errorf("%s: variable %q repeats pressure level %g", path, varName, out[i])
		}
	}
	return out, nil
}
