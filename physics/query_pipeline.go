package physics

import "github.com/go-gl/mathgl/mgl32"

// QueryPoint appends to dst every collider containing the world-space point and returns the
// extended slice. Colliders are tested against their last written ColliderPosition.
func QueryPoint(set *QueryPipelineColliderComponentsSet, point mgl32.Vec3, dst []ColliderHandle) []ColliderHandle {
	set.Shape.ForEach(func(i Index, shape ColliderShape) {
		pos, _ := set.Position.Get(i)
		if shape.ContainsLocalPoint(pos.InverseTransformPoint(point)) {
			dst = append(dst, ColliderHandle(i))
		}
	})
	return dst
}

// QueryPointFiltered is QueryPoint restricted to colliders whose groups interact with groups.
func QueryPointFiltered(set *QueryPipelineColliderComponentsSet, point mgl32.Vec3, groups InteractionGroups, dst []ColliderHandle) []ColliderHandle {
	set.Shape.ForEach(func(i Index, shape ColliderShape) {
		flags, _ := set.Flags.Get(i)
		if !flags.CollisionGroups.Test(groups) {
			return
		}
		pos, _ := set.Position.Get(i)
		if shape.ContainsLocalPoint(pos.InverseTransformPoint(point)) {
			dst = append(dst, ColliderHandle(i))
		}
	})
	return dst
}
