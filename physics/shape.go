package physics

import (
	"math"
	"slices"

	"github.com/go-gl/mathgl/mgl32"
)

// ShapeKind enumerates the supported collider geometries.
type ShapeKind uint8

const (
	ShapeBall ShapeKind = iota
	ShapeCuboid
	ShapeCapsule
	ShapeTrimesh
)

func (k ShapeKind) String() string {
	switch k {
	case ShapeBall:
		return "ball"
	case ShapeCuboid:
		return "cuboid"
	case ShapeCapsule:
		return "capsule"
	case ShapeTrimesh:
		return "trimesh"
	}
	return "unknown"
}

// ColliderShape is the geometry of a collider in its local frame.
// Capsules are aligned with the local Y axis.
type ColliderShape struct {
	Kind        ShapeKind
	Radius      float32
	HalfExtents mgl32.Vec3
	HalfHeight  float32
	Vertices    []mgl32.Vec3
	Triangles   [][3]uint32
}

// Clone returns a copy that does not share trimesh data.
func (s ColliderShape) Clone() ColliderShape {
	s.Vertices = slices.Clone(s.Vertices)
	s.Triangles = slices.Clone(s.Triangles)
	return s
}

// Ball builds a sphere.
func Ball(radius float32) ColliderShape {
	return ColliderShape{Kind: ShapeBall, Radius: radius}
}

// Cuboid builds a box from its half extents.
func Cuboid(hx, hy, hz float32) ColliderShape {
	return ColliderShape{Kind: ShapeCuboid, HalfExtents: mgl32.Vec3{hx, hy, hz}}
}

// Capsule builds a capsule along the local Y axis.
func Capsule(halfHeight, radius float32) ColliderShape {
	return ColliderShape{Kind: ShapeCapsule, HalfHeight: halfHeight, Radius: radius}
}

// Trimesh builds a triangle mesh shape. The slices are kept, not copied.
func Trimesh(vertices []mgl32.Vec3, triangles [][3]uint32) ColliderShape {
	return ColliderShape{Kind: ShapeTrimesh, Vertices: vertices, Triangles: triangles}
}

// LocalAABB returns the bounding box of the shape in its own frame.
func (s ColliderShape) LocalAABB() AABB {
	switch s.Kind {
	case ShapeBall:
		r := mgl32.Vec3{s.Radius, s.Radius, s.Radius}
		return AABB{Min: r.Mul(-1), Max: r}
	case ShapeCuboid:
		return AABB{Min: s.HalfExtents.Mul(-1), Max: s.HalfExtents}
	case ShapeCapsule:
		h := mgl32.Vec3{s.Radius, s.HalfHeight + s.Radius, s.Radius}
		return AABB{Min: h.Mul(-1), Max: h}
	case ShapeTrimesh:
		if len(s.Vertices) == 0 {
			return AABB{}
		}
		box := AABB{Min: s.Vertices[0], Max: s.Vertices[0]}
		for _, v := range s.Vertices[1:] {
			for k := 0; k < 3; k++ {
				box.Min[k] = min(box.Min[k], v[k])
				box.Max[k] = max(box.Max[k], v[k])
			}
		}
		return box
	}
	return AABB{}
}

// BoundingRadius is the radius of a sphere centered on the local origin enclosing the shape.
func (s ColliderShape) BoundingRadius() float32 {
	switch s.Kind {
	case ShapeBall:
		return s.Radius
	case ShapeCuboid:
		return s.HalfExtents.Len()
	case ShapeCapsule:
		return s.HalfHeight + s.Radius
	case ShapeTrimesh:
		var r float32
		for _, v := range s.Vertices {
			r = max(r, v.Len())
		}
		return r
	}
	return 0
}

// MassProperties returns the mass, local center of mass and principal angular inertia of the
// shape for the given density. Triangle meshes have no volume and report zero mass.
func (s ColliderShape) MassProperties(density float32) (mass float32, com mgl32.Vec3, inertia mgl32.Vec3) {
	switch s.Kind {
	case ShapeBall:
		mass = density * 4 / 3 * math.Pi * s.Radius * s.Radius * s.Radius
		i := 2.0 / 5.0 * mass * s.Radius * s.Radius
		inertia = mgl32.Vec3{i, i, i}
	case ShapeCuboid:
		he := s.HalfExtents
		mass = density * 8 * he[0] * he[1] * he[2]
		inertia = mgl32.Vec3{
			mass / 3 * (he[1]*he[1] + he[2]*he[2]),
			mass / 3 * (he[0]*he[0] + he[2]*he[2]),
			mass / 3 * (he[0]*he[0] + he[1]*he[1]),
		}
	case ShapeCapsule:
		r, hh := s.Radius, s.HalfHeight
		cylinder := density * math.Pi * r * r * 2 * hh
		caps := density * 4 / 3 * math.Pi * r * r * r
		mass = cylinder + caps
		axial := cylinder*r*r/2 + 2.0/5.0*caps*r*r
		lateral := cylinder*(3*r*r+4*hh*hh)/12 + caps*(2.0/5.0*r*r+hh*hh+3.0/4.0*hh*r)
		inertia = mgl32.Vec3{lateral, axial, lateral}
	}
	return mass, com, inertia
}

// ContainsLocalPoint reports whether a point given in the shape's frame lies inside it.
// Triangle meshes are tested against their bounding box.
func (s ColliderShape) ContainsLocalPoint(p mgl32.Vec3) bool {
	switch s.Kind {
	case ShapeBall:
		return p.Len() <= s.Radius
	case ShapeCuboid:
		return abs32(p[0]) <= s.HalfExtents[0] && abs32(p[1]) <= s.HalfExtents[1] && abs32(p[2]) <= s.HalfExtents[2]
	case ShapeCapsule:
		y := min(max(p[1], -s.HalfHeight), s.HalfHeight)
		return p.Sub(mgl32.Vec3{0, y, 0}).Len() <= s.Radius
	case ShapeTrimesh:
		return s.LocalAABB().Contains(p)
	}
	return false
}
