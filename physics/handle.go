package physics

import (
	"math"

	"github.com/plus3/physbridge/ecs"
)

// Index is the key component sets are addressed by. It has the same bit layout as
// ecs.Entity: slot index in the low 32 bits, generation in the high 32 bits.
type Index uint64

// RigidBodyHandle identifies a rigid body, which is the entity carrying it.
type RigidBodyHandle uint64

// ColliderHandle identifies a collider, which is the entity carrying it.
type ColliderHandle uint64

// JointHandle identifies a joint, which is the entity carrying it.
type JointHandle uint64

// Handle is satisfied by every handle kind.
type Handle interface {
	~uint64
}

// InvalidIndex never refers to a live entity.
const InvalidIndex = Index(math.MaxUint64)

// InvalidRigidBodyHandle marks colliders without a parent body.
const InvalidRigidBodyHandle = RigidBodyHandle(InvalidIndex)

// InvalidColliderHandle never refers to a live collider.
const InvalidColliderHandle = ColliderHandle(InvalidIndex)

// EntityToHandle reinterprets an entity as a handle of kind H.
func EntityToHandle[H Handle](e ecs.Entity) H {
	return H(e.Bits())
}

// HandleToEntity reinterprets a handle as the entity it was made from.
func HandleToEntity[H Handle](h H) ecs.Entity {
	return ecs.EntityFromBits(uint64(h))
}

// RigidBodyHandleOf returns the rigid-body handle of e.
func RigidBodyHandleOf(e ecs.Entity) RigidBodyHandle { return EntityToHandle[RigidBodyHandle](e) }

// ColliderHandleOf returns the collider handle of e.
func ColliderHandleOf(e ecs.Entity) ColliderHandle { return EntityToHandle[ColliderHandle](e) }

// JointHandleOf returns the joint handle of e.
func JointHandleOf(e ecs.Entity) JointHandle { return EntityToHandle[JointHandle](e) }

// IndexFromRawParts builds an Index from a slot index and a generation.
func IndexFromRawParts(index, generation uint32) Index {
	return Index(uint64(generation)<<32 | uint64(index))
}

// IntoRawParts splits an Index into slot index and generation.
func (i Index) IntoRawParts() (index, generation uint32) {
	return uint32(i), uint32(i >> 32)
}

func (i Index) Entity() ecs.Entity { return HandleToEntity(i) }

func (h RigidBodyHandle) Index() Index       { return Index(h) }
func (h RigidBodyHandle) Entity() ecs.Entity { return HandleToEntity(h) }

// IsValid reports whether h may refer to a body. It does not check liveness.
func (h RigidBodyHandle) IsValid() bool { return h != InvalidRigidBodyHandle }

func (h ColliderHandle) Index() Index       { return Index(h) }
func (h ColliderHandle) Entity() ecs.Entity { return HandleToEntity(h) }

func (h JointHandle) Index() Index       { return Index(h) }
func (h JointHandle) Entity() ecs.Entity { return HandleToEntity(h) }
