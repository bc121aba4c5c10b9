package shis

import (
	"fmt"

	"github.com/evas-ssec/shis2mirto/internal/ncio"
)

// ReadScan loads a granule and checks its internal consistency: every
// per-observation variable must share one leading length, and the
// radiance matrix must be observations by channels.
func ReadScan(path string, schema Schema) (*Scan, error) {
	f, err := ncio.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	scan := &Scan{Source: path}

	if scan.Wavenumber, err = f.Vector(schema.Wavenumber); err != nil {
		return nil, err
	}
	if scan.FOVAngle, err = f.Vector(schema.FOVAngle); err != nil {
		return nil, err
	}
	if scan.Longitude, err = f.Vector(schema.Longitude); err != nil {
		return nil, err
	}
	if scan.Latitude, err = f.Vector(schema.Latitude); err != nil {
		return nil, err
	}
	if scan.TimeOffset, err = f.Vector(schema.TimeOffset); err != nil {
		return nil, err
	}
	if scan.BaseTime, err = f.Scalar(schema.BaseTime); err != nil {
		return nil, err
	}
	if scan.Radiance, err = f.Matrix(schema.Radiance); err != nil {
		return nil, err
	}

	if len(scan.Radiance.Shape) != 2 {
		return nil, fmt.Errorf("%s: %s has rank %d, want observations x channels",
			path, schema.Radiance, len(scan.Radiance.Shape))
	}
	n := len(scan.FOVAngle)
	for name, l := range map[string]int{
		schema.Longitude:  len(scan.Longitude),
		schema.Latitude:   len(scan.Latitude),
		schema.TimeOffset: len(scan.TimeOffset),
	} {
		if l != n {
			return nil, fmt.Errorf("%s: %s has %d observations, %s has %d",
				path, schema.FOVAngle, n, name, l)
		}
	}
	if scan.Radiance.Shape[0] != n {
		return nil, fmt.Errorf("%s: %s has %d observation rows, %s has %d",
			path, schema.Radiance, scan.Radiance.Shape[0], schema.FOVAngle, n)
	}
	if scan.Radiance.Shape[1] != len(scan.Wavenumber) {
		return nil, fmt.Errorf("%s: %s has %d channel columns, %s has %d",
			path, schema.Radiance, scan.Radiance.Shape[1], schema.Wavenumber, len(scan.Wavenumber))
	}

	return scan, nil
}
