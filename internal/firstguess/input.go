package firstguess

import (
	"fmt"

	"github.com/evas-ssec/shis2mirto/internal/fov"
	"github.com/evas-ssec/shis2mirto/internal/ncio"
	"github.com/evas-ssec/shis2mirto/internal/sonde"
	"github.com/evas-ssec/shis2mirto/internal/timeconv"
)

// ReadPoints derives one space-time point per observation from a written
// FOV product. The point order matches the product's observation order.
func ReadPoints(path string, layout fov.Layout) ([]sonde.Point, error) {
	f, err := ncio.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	lat, err := f.Vector(layout.Latitude)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", layout.Latitude, err)
	}
	lon, err := f.Vector(layout.Longitude)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", layout.Longitude, err)
	}
	base, err := f.Scalar(layout.BaseTime)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", layout.BaseTime, err)
	}
	offsets, err := f.Vector(layout.TimeOffset)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", layout.TimeOffset, err)
	}

	if len(lon) != len(lat) || len(offsets) != len(lat) {
		return nil, fmt.Errorf("%s: observation arrays disagree (%d longitude, %d latitude, %d time_offset)",
			path, len(lon), len(lat), len(offsets))
	}

	points := make([]sonde.Point, len(lat))
	for i := range points {
		points[i] = sonde.Point{
			Time:      timeconv.EpochToTime(base + offsets[i]),
			Latitude:  lat[i],
			Longitude: lon[i],
		}
	}
	return points, nil
}
