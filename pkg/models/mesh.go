// Package models holds the triangle mesh container shared by the knob
// builder and the rasterizer backends, plus glTF import and export.
package models

import (
	"fmt"

	"github.com/taigrr/knobsmith/pkg/math3d"
)

// Range is a half-open span of vertex indices [Start, End).
type Range struct {
	Start, End int
}

// Len returns the number of vertices in the range.
func (r Range) Len() int {
	return r.End - r.Start
}

// Contains reports whether vertex i lies in the range.
func (r Range) Contains(i int) bool {
	return i >= r.Start && i < r.End
}

// Part identifies which section of a knob a vertex belongs to.
type Part int

const (
	PartSide     Part = iota // Side-wall rings
	PartChamfer              // Chamfer rings between side and cap
	PartFrontCap             // Front cap rings + apex
	PartBackCap              // Back cap ring + apex
	PartWall                 // Extruded indicator walls
	PartOther                // Anything else (collar meshes)
)

// Mesh is a triangulated surface stored as parallel arrays.
//
// A mesh returned by the knob builder is owned by the builder and shared
// with every consumer; consumers must treat it as read-only.
type Mesh struct {
	Name      string
	Positions []math3d.Vec3 // Object space
	Normals   []math3d.Vec3 // Unit, per vertex
	Indices   []uint32      // Flat triangle list

	// ReferenceRadius is the body radius used for UV and shadow
	// normalization. TopRadius is the front cap radius.
	ReferenceRadius float64
	TopRadius       float64
	// FrontZ is the cap plane height, used for level-of-detail flattening.
	FrontZ float64

	Side     Range
	Chamfer  Range // Subset of Side
	FrontCap Range
	BackCap  Range
	Walls    Range

	// Base material for meshes that carry their own (collar attachments).
	Material *Material

	BoundsMin math3d.Vec3
	BoundsMax math3d.Vec3
}

// Material is the PBR factor set read from a glTF material.
type Material struct {
	Name      string
	BaseColor [4]float64 // RGBA in 0-1 range
	Metallic  float64
	Roughness float64
}

// NewMesh creates an empty mesh.
func NewMesh(name string) *Mesh {
	return &Mesh{Name: name}
}

// AddVertex appends a vertex and returns its index.
func (m *Mesh) AddVertex(pos, normal math3d.Vec3) uint32 {
	m.Positions = append(m.Positions, pos)
	m.Normals = append(m.Normals, normal)
	return uint32(len(m.Positions) - 1)
}

// AddTriangle appends one triangle.
func (m *Mesh) AddTriangle(a, b, c uint32) {
	m.Indices = append(m.Indices, a, b, c)
}

// CalculateBounds computes the axis-aligned bounding box.
func (m *Mesh) CalculateBounds() {
	if len(m.Positions) == 0 {
		return
	}

	m.BoundsMin = m.Positions[0]
	m.BoundsMax = m.Positions[0]

	for _, p := range m.Positions[1:] {
		m.BoundsMin = m.BoundsMin.Min(p)
		m.BoundsMax = m.BoundsMax.Max(p)
	}
}

// Center returns the center of the bounding box.
func (m *Mesh) Center() math3d.Vec3 {
	return m.BoundsMin.Add(m.BoundsMax).Scale(0.5)
}

// Size returns the dimensions of the bounding box.
func (m *Mesh) Size() math3d.Vec3 {
	return m.BoundsMax.Sub(m.BoundsMin)
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Positions)
}

// Face returns the vertex indices of triangle i.
func (m *Mesh) Face(i int) [3]int {
	return [3]int{int(m.Indices[i*3]), int(m.Indices[i*3+1]), int(m.Indices[i*3+2])}
}

// PartOf reports which knob section vertex i belongs to.
func (m *Mesh) PartOf(i int) Part {
	switch {
	case m.Chamfer.Contains(i):
		return PartChamfer
	case m.Side.Contains(i):
		return PartSide
	case m.FrontCap.Contains(i):
		return PartFrontCap
	case m.BackCap.Contains(i):
		return PartBackCap
	case m.Walls.Contains(i):
		return PartWall
	}
	return PartOther
}

// Validate checks that the arrays are parallel and every index is in range.
func (m *Mesh) Validate() error {
	if len(m.Positions) != len(m.Normals) {
		return fmt.Errorf("mesh %q: %d positions but %d normals", m.Name, len(m.Positions), len(m.Normals))
	}
	if len(m.Indices)%3 != 0 {
		return fmt.Errorf("mesh %q: index count %d is not a multiple of 3", m.Name, len(m.Indices))
	}
	n := uint32(len(m.Positions))
	for i, idx := range m.Indices {
		if idx >= n {
			return fmt.Errorf("mesh %q: index %d at %d out of range (%d vertices)", m.Name, idx, i, n)
		}
	}
	return nil
}

// CalculateSmoothNormals computes area-weighted averaged vertex normals.
func (m *Mesh) CalculateSmoothNormals() {
	m.Normals = make([]math3d.Vec3, len(m.Positions))

	for i := 0; i+2 < len(m.Indices); i += 3 {
		a, b, c := m.Indices[i], m.Indices[i+1], m.Indices[i+2]
		p0, p1, p2 := m.Positions[a], m.Positions[b], m.Positions[c]
		// Unnormalized so larger faces weigh more.
		n := p1.Sub(p0).Cross(p2.Sub(p0))
		m.Normals[a] = m.Normals[a].Add(n)
		m.Normals[b] = m.Normals[b].Add(n)
		m.Normals[c] = m.Normals[c].Add(n)
	}

	for i := range m.Normals {
		m.Normals[i] = m.Normals[i].Normalize()
	}
}

// Transform applies a transformation matrix to all vertices. Normals use the
// rotation part only, so the matrix must not scale non-uniformly.
func (m *Mesh) Transform(mat math3d.Mat4) {
	for i := range m.Positions {
		m.Positions[i] = mat.MulVec3(m.Positions[i])
		m.Normals[i] = mat.MulVec3Dir(m.Normals[i]).Normalize()
	}
	m.CalculateBounds()
}

// Clone creates a deep copy of the mesh.
func (m *Mesh) Clone() *Mesh {
	clone := *m
	clone.Positions = append([]math3d.Vec3(nil), m.Positions...)
	clone.Normals = append([]math3d.Vec3(nil), m.Normals...)
	clone.Indices = append([]uint32(nil), m.Indices...)
	if m.Material != nil {
		mat := *m.Material
		clone.Material = &mat
	}
	return &clone
}
