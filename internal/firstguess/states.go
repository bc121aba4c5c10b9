package firstguess

import (
	"errors"

	"github.com/evas-ssec/shis2mirto/internal/sonde"
)

// ErrStateMappingUndefined reports that the assignment of radiosonde
// profile fields to state-variable slots has not been settled with the
// retrieval side.
var ErrStateMappingUndefined = errors.New("mapping from radiosonde profiles to first-guess state variables is not defined")

// AssembleStates would populate a first-guess product from narrated
// profiles. The state-vector slot each profile field lands in is owned
// by the Mirto retrieval and has not been agreed, so this fails rather
// than pick an ordering the retrieval would misread.
func AssembleStates(profiles []sonde.Profile, levels []float64) (*Product, error) {
	return nil, ErrStateMappingUndefined
}
