package models

import (
	"fmt"
	"math"
	"path/filepath"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/taigrr/knobsmith/pkg/math3d"
)

// GLTFLoader reads the triangle primitives of a glTF or GLB file.
type GLTFLoader struct {
	// CalculateNormals recomputes smooth normals when the file has none.
	CalculateNormals bool
}

// NewGLTFLoader returns a loader that fills in missing normals.
func NewGLTFLoader() *GLTFLoader {
	return &GLTFLoader{CalculateNormals: true}
}

// LoadGLB loads path with the default loader.
func LoadGLB(path string) (*Mesh, error) {
	return NewGLTFLoader().Load(path)
}

// Load loads a GLTF or GLB file and merges every triangle primitive into one
// Mesh. The first material found becomes the mesh material.
func (l *GLTFLoader) Load(path string) (*Mesh, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open gltf: %w", err)
	}

	mesh := NewMesh(filepath.Base(path))

	hasNormals := true
	for _, m := range doc.Meshes {
		ok, err := l.processMesh(doc, m, mesh)
		if err != nil {
			return nil, fmt.Errorf("process mesh %q: %w", m.Name, err)
		}
		hasNormals = hasNormals && ok
	}
	if mesh.VertexCount() == 0 {
		return nil, fmt.Errorf("%s: no triangle geometry", path)
	}
	if err := mesh.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	if l.CalculateNormals && !hasNormals {
		mesh.CalculateSmoothNormals()
	}
	mesh.CalculateBounds()

	return mesh, nil
}

// processMesh extracts geometry from a GLTF mesh. It reports whether every
// primitive carried normals.
func (l *GLTFLoader) processMesh(doc *gltf.Document, m *gltf.Mesh, mesh *Mesh) (bool, error) {
	hasNormals := true
	for _, prim := range m.Primitives {
		if prim.Mode != gltf.PrimitiveTriangles && prim.Mode != 0 {
			continue
		}

		posIdx, ok := prim.Attributes[gltf.POSITION]
		if !ok {
			continue
		}
		acr, err := accessor(doc, posIdx)
		if err != nil {
			return false, err
		}
		raw, err := modeler.ReadPosition(doc, acr, nil)
		if err != nil {
			return false, fmt.Errorf("read positions: %w", err)
		}
		positions := toVec3(raw)

		var normals []math3d.Vec3
		if normIdx, ok := prim.Attributes[gltf.NORMAL]; ok {
			acr, err := accessor(doc, normIdx)
			if err != nil {
				return false, err
			}
			raw, err := modeler.ReadNormal(doc, acr, nil)
			if err != nil {
				return false, fmt.Errorf("read normals: %w", err)
			}
			normals = toVec3(raw)
		}
		if len(normals) < len(positions) {
			hasNormals = false
		}

		if mesh.Material == nil && prim.Material != nil && *prim.Material < len(doc.Materials) {
			mesh.Material = materialFrom(doc.Materials[*prim.Material])
		}

		baseVertex := uint32(mesh.VertexCount())
		for i, p := range positions {
			var n math3d.Vec3
			if i < len(normals) {
				n = normals[i].Normalize()
			}
			mesh.AddVertex(p, n)
		}

		if prim.Indices != nil {
			acr, err := accessor(doc, *prim.Indices)
			if err != nil {
				return false, err
			}
			indices, err := modeler.ReadIndices(doc, acr, nil)
			if err != nil {
				return false, fmt.Errorf("read indices: %w", err)
			}
			for i := 0; i+2 < len(indices); i += 3 {
				mesh.AddTriangle(baseVertex+indices[i], baseVertex+indices[i+1], baseVertex+indices[i+2])
			}
		} else {
			// Unindexed: consecutive vertex triples.
			for i := 0; i+2 < len(positions); i += 3 {
				b := baseVertex + uint32(i)
				mesh.AddTriangle(b, b+1, b+2)
			}
		}
	}

	return hasNormals, nil
}

// materialFrom reads the PBR factors of a glTF material, falling back to the
// glTF defaults for missing factors.
func materialFrom(gm *gltf.Material) *Material {
	mat := &Material{
		Name:      gm.Name,
		BaseColor: [4]float64{1, 1, 1, 1},
		Metallic:  1,
		Roughness: 1,
	}
	pbr := gm.PBRMetallicRoughness
	if pbr == nil {
		return mat
	}
	if pbr.BaseColorFactor != nil {
		mat.BaseColor = *pbr.BaseColorFactor
	}
	if pbr.MetallicFactor != nil {
		mat.Metallic = *pbr.MetallicFactor
	}
	if pbr.RoughnessFactor != nil {
		mat.Roughness = *pbr.RoughnessFactor
	}
	return mat
}

// CollarFit places a collar attachment relative to the knob.
type CollarFit struct {
	Radius float64 // Outer XY radius after scaling
	TopZ   float64 // Height of the collar's top face
}

// LoadCollar loads a collar attachment and scales it uniformly so its widest
// XY extent matches fit.Radius, then moves its top to fit.TopZ.
func LoadCollar(path string, fit CollarFit) (*Mesh, error) {
	mesh, err := LoadGLB(path)
	if err != nil {
		return nil, fmt.Errorf("load collar: %w", err)
	}

	extent := 0.0
	for _, p := range mesh.Positions {
		extent = max(extent, math.Hypot(p.X, p.Y))
	}
	scale := 1.0
	if extent > math3d.Epsilon && fit.Radius > 0 {
		scale = fit.Radius / extent
	}
	for i, p := range mesh.Positions {
		mesh.Positions[i] = p.Scale(scale)
	}
	mesh.CalculateBounds()
	mesh.Transform(math3d.Translate(math3d.V3(0, 0, fit.TopZ-mesh.BoundsMax.Z)))
	mesh.Name = "collar"
	return mesh, nil
}

// accessor bounds-checks an accessor index.
func accessor(doc *gltf.Document, idx int) (*gltf.Accessor, error) {
	if idx < 0 || idx >= len(doc.Accessors) {
		return nil, fmt.Errorf("accessor %d out of range", idx)
	}
	return doc.Accessors[idx], nil
}

func toVec3(src [][3]float32) []math3d.Vec3 {
	out := make([]math3d.Vec3, len(src))
	for i, v := range src {
		out[i] = math3d.V3(float64(v[0]), float64(v[1]), float64(v[2]))
	}
	return out
}
