package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Isometry is a rigid transform: a rotation followed by a translation.
// The zero Rotation is treated as the identity, so the zero Isometry is the identity too.
type Isometry struct {
	Translation mgl32.Vec3
	Rotation    mgl32.Quat
}

// IdentityIsometry returns the identity transform with an explicit unit quaternion.
func IdentityIsometry() Isometry {
	return Isometry{Rotation: mgl32.QuatIdent()}
}

// Translation returns a pure translation.
func Translation(x, y, z float32) Isometry {
	return Isometry{Translation: mgl32.Vec3{x, y, z}, Rotation: mgl32.QuatIdent()}
}

// Rot returns the rotation with the zero quaternion mapped to the identity.
func (i Isometry) Rot() mgl32.Quat {
	if i.Rotation == (mgl32.Quat{}) {
		return mgl32.QuatIdent()
	}
	return i.Rotation
}

// Mul composes two transforms: the result applies o first, then i.
func (i Isometry) Mul(o Isometry) Isometry {
	r := i.Rot()
	return Isometry{
		Translation: i.Translation.Add(r.Rotate(o.Translation)),
		Rotation:    r.Mul(o.Rot()).Normalize(),
	}
}

// Inverse returns the transform undoing i.
func (i Isometry) Inverse() Isometry {
	inv := i.Rot().Inverse()
	return Isometry{
		Translation: inv.Rotate(i.Translation.Mul(-1)),
		Rotation:    inv,
	}
}

// TransformPoint maps a point from local to world space.
func (i Isometry) TransformPoint(p mgl32.Vec3) mgl32.Vec3 {
	return i.Translation.Add(i.Rot().Rotate(p))
}

// InverseTransformPoint maps a world point into local space.
func (i Isometry) InverseTransformPoint(p mgl32.Vec3) mgl32.Vec3 {
	return i.Rot().Inverse().Rotate(p.Sub(i.Translation))
}

// AABB is an axis-aligned bounding box.
type AABB struct {
	Min, Max mgl32.Vec3
}

// Intersects reports whether the two boxes overlap, touching counts.
func (a AABB) Intersects(b AABB) bool {
	for k := 0; k < 3; k++ {
		if a.Max[k] < b.Min[k] || b.Max[k] < a.Min[k] {
			return false
		}
	}
	return true
}

// Contains reports whether p lies inside the box.
func (a AABB) Contains(p mgl32.Vec3) bool {
	for k := 0; k < 3; k++ {
		if p[k] < a.Min[k] || p[k] > a.Max[k] {
			return false
		}
	}
	return true
}

// Transform returns the world-space box enclosing a transformed local box.
func (a AABB) Transform(iso Isometry) AABB {
	center := a.Min.Add(a.Max).Mul(0.5)
	half := a.Max.Sub(a.Min).Mul(0.5)

	r := iso.Rot()
	var extents mgl32.Vec3
	axes := [3]mgl32.Vec3{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
	for k, axis := range axes {
		col := r.Rotate(axis)
		extents = extents.Add(absVec(col).Mul(half[k]))
	}

	worldCenter := iso.TransformPoint(center)
	return AABB{Min: worldCenter.Sub(extents), Max: worldCenter.Add(extents)}
}

func absVec(v mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{abs32(v[0]), abs32(v[1]), abs32(v[2])}
}

func abs32(f float32) float32 {
	return float32(math.Abs(float64(f)))
}

func invOrZero(f float32) float32 {
	if f == 0 {
		return 0
	}
	return 1 / f
}
