package paint

import (
	"math"

	"github.com/taigrr/knobsmith/pkg/math3d"
)

// Tool is the abrasion type of a stroke.
type Tool int

const (
	ToolBrush Tool = iota
	ToolScratch
	ToolSpray
)

// SpacingRatio is the stamp spacing as a fraction of the brush radius.
func (t Tool) SpacingRatio() float64 {
	switch t {
	case ToolScratch:
		return 0.1
	case ToolSpray:
		return 0.5
	}
	return 0.25
}

// hardness is the fraction of the radius painted at full strength.
func (t Tool) hardness() float64 {
	switch t {
	case ToolScratch:
		return 0.85
	case ToolSpray:
		return 0
	}
	return 0.2
}

// sprayDensity is the fraction of texels a spray stamp touches.
const sprayDensity = 0.45

// Stamp is one dab of paint in mask UV space.
type Stamp struct {
	U, V     float64
	Radius   float64 // UV units
	Channel  Channel
	Tool     Tool
	Strength float64 // Per-stamp coverage, 0-1
	Erase    bool
	Seed     int // Spray speckle pattern
}

// Queue adds stamps to the pending batch.
func (m *Mask) Queue(stamps ...Stamp) {
	m.pending = append(m.pending, stamps...)
}

// Pending returns the number of queued stamps.
func (m *Mask) Pending() int {
	return len(m.pending)
}

// Apply composites every queued stamp and empties the queue. It returns the
// number of stamps applied.
func (m *Mask) Apply() int {
	n := len(m.pending)
	for _, s := range m.pending {
		m.apply(s)
	}
	m.pending = m.pending[:0]
	return n
}

func (m *Mask) apply(s Stamp) {
	if s.Radius <= 0 || s.Strength <= 0 || s.Channel < 0 || s.Channel >= channelCount {
		return
	}
	size := float64(m.Size)
	cx, cy := s.U*size-0.5, s.V*size-0.5
	rad := s.Radius * size

	x0 := max(0, int(math.Floor(cx-rad)))
	x1 := min(m.Size-1, int(math.Ceil(cx+rad)))
	y0 := max(0, int(math.Floor(cy-rad)))
	y1 := min(m.Size-1, int(math.Ceil(cy+rad)))
	hard := s.Tool.hardness()
	strength := math3d.Clamp01(s.Strength)

	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			d := math.Hypot(float64(x)-cx, float64(y)-cy) / max(rad, math3d.Epsilon)
			if d > 1 {
				continue
			}
			f := 1 - math3d.SmoothStep(hard, 1, d)
			if s.Tool == ToolSpray {
				n := math3d.ValueNoise2D(float64(x)*0.9+float64(s.Seed)*7.31, float64(y)*0.9-float64(s.Seed)*3.17)
				if n > sprayDensity {
					continue
				}
			}
			t := &m.texels[y*m.Size+x][s.Channel]
			if s.Erase {
				*t = float32(float64(*t) * (1 - strength*f))
			} else {
				*t = float32(math3d.Clamp01(float64(*t) + strength*f*(1-float64(*t))))
			}
		}
	}
}

// Stroke turns pointer motion into evenly spaced stamps so coverage does not
// depend on how often motion events arrive.
type Stroke struct {
	Tool     Tool
	Channel  Channel
	Radius   float64
	Strength float64
	Erase    bool

	last    math3d.Vec2
	carry   float64 // Distance travelled since the last stamp
	started bool
	count   int
}

// Spacing returns the distance between stamps.
func (s *Stroke) Spacing() float64 {
	return max(s.Radius*s.Tool.SpacingRatio(), math3d.Epsilon)
}

// MoveTo extends the stroke to (u, v) and returns the stamps along the way.
// The first call places a stamp at its point.
func (s *Stroke) MoveTo(u, v float64) []Stamp {
	p := math3d.V2(u, v)
	if !s.started {
		s.started = true
		s.last = p
		s.carry = 0
		return []Stamp{s.stamp(p)}
	}

	step := s.Spacing()
	seg := p.Sub(s.last)
	length := seg.Len()
	if length <= 0 {
		return nil
	}
	dir := seg.Scale(1 / length)

	var out []Stamp
	dist := step - s.carry
	for dist <= length {
		out = append(out, s.stamp(s.last.Add(dir.Scale(dist))))
		dist += step
	}
	s.carry = length - (dist - step)
	s.last = p
	return out
}

// End finishes the stroke; the next MoveTo starts a new one.
func (s *Stroke) End() {
	s.started = false
	s.carry = 0
}

func (s *Stroke) stamp(p math3d.Vec2) Stamp {
	s.count++
	return Stamp{
		U:        p.X,
		V:        p.Y,
		Radius:   s.Radius,
		Channel:  s.Channel,
		Tool:     s.Tool,
		Strength: s.Strength,
		Erase:    s.Erase,
		Seed:     s.count,
	}
}
