package physics

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/rotisserie/eris"
)

var (
	ErrVertexFormat                   = eris.New("invalid vertex buffer format: only Float32x3 or flat Float32 positions are allowed")
	ErrVertexPositionAttributeMissing = eris.New("vertex position attribute missing")
	ErrVertexIndicesMissing           = eris.New("vertex indices missing")
)

// AttributePosition names the vertex position attribute.
const AttributePosition = "Vertex_Position"

// VertexFormat is the element layout of a vertex attribute.
type VertexFormat uint8

const (
	Float32 VertexFormat = iota
	Float32x2
	Float32x3
	Float32x4
)

func (f VertexFormat) String() string {
	switch f {
	case Float32:
		return "Float32"
	case Float32x2:
		return "Float32x2"
	case Float32x3:
		return "Float32x3"
	case Float32x4:
		return "Float32x4"
	}
	return "unknown"
}

// VertexAttributeValues holds one attribute's data. Only the slice matching Format is used.
type VertexAttributeValues struct {
	Format    VertexFormat
	Float32   []float32
	Float32x2 [][2]float32
	Float32x3 [][3]float32
	Float32x4 [][4]float32
}

// Len returns the number of elements in the attribute.
func (v VertexAttributeValues) Len() int {
	switch v.Format {
	case Float32:
		return len(v.Float32)
	case Float32x2:
		return len(v.Float32x2)
	case Float32x3:
		return len(v.Float32x3)
	case Float32x4:
		return len(v.Float32x4)
	}
	return 0
}

// Indices is an index buffer of either width. U32 wins when both are set.
type Indices struct {
	U16 []uint16
	U32 []uint32
}

func (ix Indices) Len() int {
	if ix.U32 != nil {
		return len(ix.U32)
	}
	return len(ix.U16)
}

func (ix Indices) at(i int) uint32 {
	if ix.U32 != nil {
		return ix.U32[i]
	}
	return uint32(ix.U16[i])
}

// Mesh is render geometry: named vertex attributes and an optional index buffer.
type Mesh struct {
	attributes map[string]VertexAttributeValues
	indices    *Indices
}

// NewMesh returns a mesh with no attributes and no indices.
func NewMesh() *Mesh {
	return &Mesh{attributes: make(map[string]VertexAttributeValues)}
}

// SetAttribute stores values under name, replacing any previous data.
func (m *Mesh) SetAttribute(name string, values VertexAttributeValues) {
	m.attributes[name] = values
}

func (m *Mesh) Attribute(name string) (VertexAttributeValues, bool) {
	values, ok := m.attributes[name]
	return values, ok
}

func (m *Mesh) SetIndices(indices Indices) {
	m.indices = &indices
}

func (m *Mesh) Indices() (Indices, bool) {
	if m.indices == nil {
		return Indices{}, false
	}
	return *m.indices, true
}

// TrimeshFromMesh extracts triangle mesh geometry from m. Positions must be Float32x3, or
// flat Float32 read three at a time. Trailing elements that do not fill a whole vertex or
// triangle are ignored.
func TrimeshFromMesh(m *Mesh) ([]mgl32.Vec3, [][3]uint32, error) {
	positions, ok := m.Attribute(AttributePosition)
	if !ok {
		return nil, nil, eris.Wrapf(ErrVertexPositionAttributeMissing, "attribute %q", AttributePosition)
	}

	var vertices []mgl32.Vec3
	switch positions.Format {
	case Float32:
		flat := positions.Float32
		vertices = make([]mgl32.Vec3, 0, len(flat)/3)
		for i := 0; i+3 <= len(flat); i += 3 {
			vertices = append(vertices, mgl32.Vec3{flat[i], flat[i+1], flat[i+2]})
		}
	case Float32x3:
		vertices = make([]mgl32.Vec3, len(positions.Float32x3))
		for i, p := range positions.Float32x3 {
			vertices[i] = mgl32.Vec3(p)
		}
	default:
		return nil, nil, eris.Wrapf(ErrVertexFormat, "positions are %s", positions.Format)
	}

	indices, ok := m.Indices()
	if !ok {
		return nil, nil, eris.Wrap(ErrVertexIndicesMissing, "mesh has no index buffer")
	}

	n := indices.Len()
	triangles := make([][3]uint32, 0, n/3)
	for i := 0; i+3 <= n; i += 3 {
		triangles = append(triangles, [3]uint32{indices.at(i), indices.at(i + 1), indices.at(i + 2)})
	}

	return vertices, triangles, nil
}

// ColliderShapeFromMesh builds a trimesh collider shape from render geometry.
func ColliderShapeFromMesh(m *Mesh) (ColliderShape, error) {
	vertices, triangles, err := TrimeshFromMesh(m)
	if err != nil {
		return ColliderShape{}, err
	}
	return Trimesh(vertices, triangles), nil
}
