package models

import (
	"math"
	"testing"

	"github.com/taigrr/knobsmith/pkg/math3d"
)

func TestMeshValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(m *Mesh)
		wantErr bool
	}{
		{"valid", func(m *Mesh) {}, false},
		{"missing normal", func(m *Mesh) { m.Normals = m.Normals[:1] }, true},
		{"partial triangle", func(m *Mesh) { m.Indices = append(m.Indices, 0) }, true},
		{"index out of range", func(m *Mesh) { m.Indices[2] = 99 }, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			m := testPrism(1, 1)
			tc.mutate(m)
			err := m.Validate()
			if (err != nil) != tc.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

func TestMeshPartOf(t *testing.T) {
	m := NewMesh("parts")
	m.Side = Range{0, 4}
	m.FrontCap = Range{4, 6}
	m.BackCap = Range{6, 8}

	tests := []struct {
		vertex int
		want   Part
	}{
		{0, PartSide},
		{3, PartSide},
		{4, PartFrontCap},
		{7, PartBackCap},
		{8, PartOther},
	}
	for _, tc := range tests {
		if got := m.PartOf(tc.vertex); got != tc.want {
			t.Errorf("PartOf(%d) = %v, want %v", tc.vertex, got, tc.want)
		}
	}
}

func TestCalculateSmoothNormals(t *testing.T) {
	m := NewMesh("quad")
	m.AddVertex(math3d.V3(0, 0, 0), math3d.Vec3{})
	m.AddVertex(math3d.V3(1, 0, 0), math3d.Vec3{})
	m.AddVertex(math3d.V3(1, 1, 0), math3d.Vec3{})
	m.AddVertex(math3d.V3(0, 1, 0), math3d.Vec3{})
	m.AddTriangle(0, 1, 2)
	m.AddTriangle(0, 2, 3)

	m.CalculateSmoothNormals()
	for i, n := range m.Normals {
		if math.Abs(n.Z-1) > 1e-12 {
			t.Errorf("normal %d = %v, want +Z", i, n)
		}
	}
}

func TestMeshCloneIsDeep(t *testing.T) {
	m := testPrism(1, 1)
	m.Material = &Material{Name: "steel"}
	c := m.Clone()

	c.Positions[0] = math3d.V3(9, 9, 9)
	c.Indices[0] = 5
	c.Material.Name = "brass"

	if m.Positions[0] == c.Positions[0] {
		t.Error("Clone shares positions")
	}
	if m.Indices[0] == 5 {
		t.Error("Clone shares indices")
	}
	if m.Material.Name != "steel" {
		t.Error("Clone shares material")
	}
}

func TestMeshBounds(t *testing.T) {
	m := testPrism(2, 3)
	if m.BoundsMax.Z != 3 || m.BoundsMin.Z != 0 {
		t.Errorf("z bounds = [%v, %v], want [0, 3]", m.BoundsMin.Z, m.BoundsMax.Z)
	}
	if c := m.Center(); math.Abs(c.Z-1.5) > 1e-12 {
		t.Errorf("Center().Z = %v, want 1.5", c.Z)
	}
}
