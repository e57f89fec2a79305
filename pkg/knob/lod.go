package knob

import (
	"math"

	"github.com/taigrr/knobsmith/pkg/math3d"
	"github.com/taigrr/knobsmith/pkg/models"
)

// FlattenCap returns a copy of the mesh positions with the front cap pulled
// toward its smooth surface by amount in [0, 1]. The crown and the indicator
// are kept; only the spiral ridge is flattened away. Indicator walls follow
// the cap so their base stays on it.
func FlattenCap(mesh *models.Mesh, p KnobParameters, amount float64) []math3d.Vec3 {
	out := append([]math3d.Vec3(nil), mesh.Positions...)
	amount = math3d.Clamp01(amount)
	if amount == 0 || mesh.TopRadius <= math3d.Epsilon {
		return out
	}
	q := MeshKeyOf(p).Parameters()

	for i := mesh.FrontCap.Start; i < mesh.FrontCap.End; i++ {
		v := out[i]
		rNorm := math.Hypot(v.X, v.Y) / mesh.TopRadius
		_, ind := IndicatorField(q, v.X, v.Y, mesh.TopRadius)
		smooth := mesh.FrontZ + crownOffset(q, rNorm) + ind
		out[i].Z = math3d.Lerp(v.Z, smooth, amount)
	}
	// Walls are vertical, so base and top share the spiral offset of their
	// XY position.
	for i := mesh.Walls.Start; i < mesh.Walls.End; i++ {
		v := out[i]
		out[i].Z = v.Z - amount*spiralOffset(q, v.X, v.Y, mesh.TopRadius)
	}
	return out
}
