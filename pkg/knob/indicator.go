package knob

import (
	"math"

	"github.com/taigrr/knobsmith/pkg/math3d"
)

// The indicator runs along +Y from the cap centre. All indicator geometry is
// computed in coordinates normalized by the top radius.

const (
	indicatorDepthScale = 0.06
	dotContourPoints    = 32
	capsuleArcSegments  = 12
	sweptSideSamples    = 16
)

// halfWidthAt is the half-width law of the swept shapes at a in [0, 1] along
// the indicator length. w is the nominal half-width.
func halfWidthAt(shape IndicatorShape, w, a float64) float64 {
	switch shape {
	case ShapeTapered:
		return w * math3d.Lerp(1, 0.35, a)
	case ShapeNeedle:
		return w * max(0.05, 1-a)
	case ShapeTriangle:
		return w * (1 - a)
	case ShapeDiamond:
		return w * (1 - math.Abs(2*a-1))
	}
	return w
}

// capsuleAxis returns the centre segment of the capsule, inset so the rounded
// ends stay within [position, position+length].
func capsuleAxis(ind IndicatorParams, w float64) (a, b math3d.Vec2) {
	r := min(w, ind.Length*0.5)
	a = math3d.V2(0, ind.Position+r)
	b = math3d.V2(0, ind.Position+ind.Length-r)
	return a, b
}

func dotCentre(ind IndicatorParams) math3d.Vec2 {
	return math3d.V2(0, ind.Position+ind.Length*0.5)
}

// edgeDistance is the signed distance from (px, py) to the indicator outline,
// positive inside, in normalized units.
func edgeDistance(ind IndicatorParams, px, py float64) float64 {
	w := ind.Width * 0.5
	pt := math3d.V2(px, py)
	switch ind.Shape {
	case ShapeDot:
		return w - pt.Sub(dotCentre(ind)).Len()
	case ShapeCapsule:
		a, b := capsuleAxis(ind, w)
		ab := b.Sub(a)
		h := 0.0
		if l := ab.Dot(ab); l > 0 {
			h = math3d.Clamp01(pt.Sub(a).Dot(ab) / l)
		}
		return min(w, ind.Length*0.5) - pt.Sub(a.Add(ab.Scale(h))).Len()
	}

	if ind.Length <= math3d.Epsilon {
		return -1
	}
	a := (py - ind.Position) / ind.Length
	if a < 0 || a > 1 {
		return -1
	}
	side := halfWidthAt(ind.Shape, w, a) - math.Abs(px)
	ends := min(py-ind.Position, ind.Position+ind.Length-py)
	return min(side, ends)
}

// shapeProfile maps the normalized inside distance s in [0, 1] to a height.
func shapeProfile(prof IndicatorProfile, s float64) float64 {
	switch prof {
	case ProfileRounded:
		return math3d.SmoothStep(0, 1, s)
	case ProfileConvex:
		u := 1 - s
		return math.Sqrt(max(0, 1-u*u))
	case ProfileConcave:
		return s * s
	}
	if s > 0 {
		return 1
	}
	return 0
}

// IndicatorDepth is the signed full displacement of the indicator.
func IndicatorDepth(p KnobParameters) float64 {
	ind := p.Indicator
	return ind.Thickness * indicatorDepthScale * min(p.Radius, p.Height) * ind.Relief.Sign()
}

// IndicatorField returns the indicator coverage mask in [0, 1] and the cap
// displacement at cap position (x, y). The mask is reported even when the
// indicator is flat, so shading can still tint it.
func IndicatorField(p KnobParameters, x, y, topRadius float64) (mask, offset float64) {
	if !p.IndicatorEnabled() || topRadius <= math3d.Epsilon {
		return 0, 0
	}
	ind := p.Indicator
	w := ind.Width * 0.5
	e := edgeDistance(ind, x/topRadius, y/topRadius)
	if e <= 0 {
		return 0, 0
	}

	zone := (0.05 + 0.45*ind.Roundness) * w
	s := 1.0
	if zone > math3d.Epsilon {
		s = math3d.Clamp01(e / zone)
	}
	mask = shapeProfile(ind.Profile, s)
	return mask, mask * IndicatorDepth(p)
}

// IndicatorContour returns the indicator outline as a counter-clockwise
// polygon in normalized cap coordinates.
func IndicatorContour(ind IndicatorParams) []math3d.Vec2 {
	w := ind.Width * 0.5
	var pts []math3d.Vec2

	switch ind.Shape {
	case ShapeDot:
		c := dotCentre(ind)
		for i := range dotContourPoints {
			phi := 2 * math.Pi * float64(i) / dotContourPoints
			pts = append(pts, c.Add(math3d.V2(math.Cos(phi), math.Sin(phi)).Scale(w)))
		}
		return pts

	case ShapeDiamond:
		y0, y1 := ind.Position, ind.Position+ind.Length
		ym := (y0 + y1) * 0.5
		return []math3d.Vec2{{X: 0, Y: y0}, {X: w, Y: ym}, {X: 0, Y: y1}, {X: -w, Y: ym}}

	case ShapeCapsule:
		a, b := capsuleAxis(ind, w)
		r := min(w, ind.Length*0.5)
		for i := 0; i <= capsuleArcSegments; i++ {
			phi := math.Pi * float64(i) / capsuleArcSegments
			pts = appendDistinct(pts, b.Add(math3d.V2(math.Cos(phi), math.Sin(phi)).Scale(r)))
		}
		for i := 0; i <= capsuleArcSegments; i++ {
			phi := math.Pi + math.Pi*float64(i)/capsuleArcSegments
			pts = appendDistinct(pts, a.Add(math3d.V2(math.Cos(phi), math.Sin(phi)).Scale(r)))
		}
		return closeDistinct(pts)
	}

	// Swept shapes: up the right side, back down the left.
	for i := range sweptSideSamples {
		a := float64(i) / (sweptSideSamples - 1)
		y := ind.Position + a*ind.Length
		pts = appendDistinct(pts, math3d.V2(halfWidthAt(ind.Shape, w, a), y))
	}
	for i := sweptSideSamples - 1; i >= 0; i-- {
		a := float64(i) / (sweptSideSamples - 1)
		y := ind.Position + a*ind.Length
		pts = appendDistinct(pts, math3d.V2(-halfWidthAt(ind.Shape, w, a), y))
	}
	return closeDistinct(pts)
}

func appendDistinct(pts []math3d.Vec2, p math3d.Vec2) []math3d.Vec2 {
	if n := len(pts); n > 0 && pts[n-1].Sub(p).Len() < math3d.Epsilon {
		return pts
	}
	return append(pts, p)
}

// closeDistinct drops a trailing point that repeats the first.
func closeDistinct(pts []math3d.Vec2) []math3d.Vec2 {
	if n := len(pts); n > 1 && pts[n-1].Sub(pts[0]).Len() < math3d.Epsilon {
		return pts[:n-1]
	}
	return pts
}
