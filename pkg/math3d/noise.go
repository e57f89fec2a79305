package math3d

import "math"

// hash2 maps an integer lattice point to [0, 1). Integer arithmetic keeps it
// bit-identical across platforms.
func hash2(ix, iy int64) float64 {
	h := uint32(ix)*0x8da6b343 ^ uint32(iy)*0xd8163841
	h ^= h >> 13
	h *= 0x85ebca6b
	h ^= h >> 16
	return float64(h&0x00ffffff) / float64(0x01000000)
}

// ValueNoise2D returns smooth value noise in [0, 1).
func ValueNoise2D(x, y float64) float64 {
	fx, fy := math.Floor(x), math.Floor(y)
	ix, iy := int64(fx), int64(fy)
	tx, ty := x-fx, y-fy
	tx = tx * tx * (3 - 2*tx)
	ty = ty * ty * (3 - 2*ty)

	a := hash2(ix, iy)
	b := hash2(ix+1, iy)
	c := hash2(ix, iy+1)
	d := hash2(ix+1, iy+1)
	return Lerp(Lerp(a, b, tx), Lerp(c, d, tx), ty)
}

// FBM2D sums octaves of value noise, normalized back into [0, 1).
func FBM2D(x, y float64, octaves int) float64 {
	var sum, norm float64
	amp, freq := 1.0, 1.0
	for range octaves {
		sum += amp * ValueNoise2D(x*freq, y*freq)
		norm += amp
		amp *= 0.5
		freq *= 2.03
	}
	if norm == 0 {
		return 0
	}
	return sum / norm
}
