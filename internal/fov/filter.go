package fov

// AngleMask flags each observation whose viewing angle lies inside
// [center-halfRange, center+halfRange]. Both bounds are inclusive. A
// mask with no true entries is legal; the product is then written with
// a zero-length observation dimension.
func AngleMask(angles []float64, center, halfRange float64) []bool {
	lo, hi := center-halfRange, center+halfRange
	mask := make([]bool, len(angles))
	for i, a := range angles {
		mask[i] = a >= lo && a <= hi
	}
	return mask
}

// CountSelected returns the number of observations the mask keeps.
func CountSelected(mask []bool) int {
	n := 0
	for _, m := range mask {
		if m {
			n++
		}
	}
	return n
}
