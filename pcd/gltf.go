package pcd

import (
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"github.com/seqsense/pcgol/mat"

	"github.com/seqsense/pcdsurface/vec"
)

// SaveGLB writes the points as a single POINTS primitive, each vertex
// coloured by its direction from the centre of the bounding box.
func SaveGLB(path string, points []mat.Vec3) error {
	min, max, err := MinMaxVec3(points)
	if err != nil {
		return err
	}
	positions := make([][3]float32, len(points))
	for i, p := range points {
		positions[i] = [3]float32(p)
	}

	doc := gltf.NewDocument()
	doc.Asset.Generator = "pcdsurface"

	posAccessor := modeler.WritePosition(doc, positions)
	colorAccessor := modeler.WriteColor(doc, DirectionColors(points, min.Add(max).Mul(0.5)))

	prim := &gltf.Primitive{
		Mode: gltf.PrimitivePoints,
		Attributes: map[string]int{
			gltf.POSITION: posAccessor,
			gltf.COLOR_0:  colorAccessor,
		},
	}
	doc.Meshes = []*gltf.Mesh{{Name: "MeanPoints", Primitives: []*gltf.Primitive{prim}}}
	doc.Nodes = []*gltf.Node{{Mesh: gltf.Index(0)}}
	doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, 0)

	return gltf.SaveBinary(doc, path)
}

// DirectionColors maps the unit direction from center to each point
// into RGB. Points at the center are grey.
func DirectionColors(points []mat.Vec3, center mat.Vec3) [][4]float32 {
	colors := make([][4]float32, len(points))
	for i, p := range points {
		d, err := vec.Normalize(p.Sub(center))
		if err != nil {
			colors[i] = [4]float32{0.5, 0.5, 0.5, 1}
			continue
		}
		colors[i] = [4]float32{(d[0] + 1) / 2, (d[1] + 1) / 2, (d[2] + 1) / 2, 1}
	}
	return colors
}
