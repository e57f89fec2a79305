package models

import (
	"fmt"
	"io"
	"os"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

// ExportOptions controls GLB export.
type ExportOptions struct {
	// Colors holds optional baked RGBA vertex colours, one per vertex.
	Colors [][4]uint8
	// Generator is written into the asset header.
	Generator string
}

// Document converts the mesh to a single-node glTF document.
func Document(mesh *Mesh, opts ExportOptions) (*gltf.Document, error) {
	if err := mesh.Validate(); err != nil {
		return nil, err
	}
	if opts.Colors != nil && len(opts.Colors) != mesh.VertexCount() {
		return nil, fmt.Errorf("mesh %q: %d colours for %d vertices", mesh.Name, len(opts.Colors), mesh.VertexCount())
	}

	positions := make([][3]float32, len(mesh.Positions))
	normals := make([][3]float32, len(mesh.Normals))
	for i, p := range mesh.Positions {
		positions[i] = [3]float32{float32(p.X), float32(p.Y), float32(p.Z)}
		n := mesh.Normals[i]
		normals[i] = [3]float32{float32(n.X), float32(n.Y), float32(n.Z)}
	}

	doc := gltf.NewDocument()
	if opts.Generator != "" {
		doc.Asset.Generator = opts.Generator
	}

	attrs := gltf.PrimitiveAttributes{
		gltf.POSITION: modeler.WritePosition(doc, positions),
		gltf.NORMAL:   modeler.WriteNormal(doc, normals),
	}
	if opts.Colors != nil {
		attrs[gltf.COLOR_0] = modeler.WriteColor(doc, opts.Colors)
	}
	prim := &gltf.Primitive{
		Indices:    gltf.Index(modeler.WriteIndices(doc, mesh.Indices)),
		Attributes: attrs,
	}

	if mat := mesh.Material; mat != nil {
		bc := mat.BaseColor
		doc.Materials = []*gltf.Material{{
			Name: mat.Name,
			PBRMetallicRoughness: &gltf.PBRMetallicRoughness{
				BaseColorFactor: &bc,
				MetallicFactor:  gltf.Float(mat.Metallic),
				RoughnessFactor: gltf.Float(mat.Roughness),
			},
		}}
		prim.Material = gltf.Index(0)
	}

	doc.Meshes = []*gltf.Mesh{{Name: mesh.Name, Primitives: []*gltf.Primitive{prim}}}
	doc.Nodes = []*gltf.Node{{Name: mesh.Name, Mesh: gltf.Index(0)}}
	doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, 0)
	return doc, nil
}

// WriteGLB encodes the mesh as binary glTF.
func WriteGLB(w io.Writer, mesh *Mesh, opts ExportOptions) error {
	doc, err := Document(mesh, opts)
	if err != nil {
		return fmt.Errorf("build gltf document: %w", err)
	}
	enc := gltf.NewEncoder(w)
	enc.AsBinary = true
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode glb: %w", err)
	}
	return nil
}

// SaveGLB writes the mesh to a .glb file.
func SaveGLB(path string, mesh *Mesh, opts ExportOptions) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteGLB(f, mesh, opts); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
