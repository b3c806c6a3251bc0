package physics_test

import (
	"testing"

	"github.com/plus3/physbridge/ecs"
	"github.com/plus3/physbridge/physics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRigidBodyBundle(t *testing.T) {
	b := physics.DefaultRigidBodyBundle()

	assert.Equal(t, physics.Dynamic, b.Type)
	assert.Equal(t, physics.IdentityIsometry(), b.Position.Position)
	assert.Equal(t, float32(1), b.Forces.GravityScale)
	assert.Equal(t, physics.RigidBodyChangeAll, b.Changes)
	assert.Equal(t, physics.DefaultActivation(), b.Activation)
	assert.False(t, b.Activation.Sleeping)
	assert.Zero(t, b.Velocity)
	assert.Zero(t, b.Damping)
	assert.Len(t, b.Components(), 12)
}

func TestDefaultColliderBundle(t *testing.T) {
	b := physics.DefaultColliderBundle()

	assert.Equal(t, physics.Solid, b.Type)
	assert.Equal(t, physics.ShapeBall, b.Shape.Kind)
	assert.Equal(t, float32(0.5), b.Shape.Radius)
	assert.Equal(t, float32(0.5), b.Material.Friction)
	assert.Zero(t, b.Material.Restitution)
	assert.Equal(t, float32(1), b.MassProps.Density)
	assert.Equal(t, physics.ColliderChangeAll, b.Changes)
	assert.Nil(t, b.Parent)
	assert.Len(t, b.Components(), 8)

	attached := b.AttachedTo(physics.RigidBodyHandle(3), physics.Translation(0, 1, 0))
	assert.Len(t, attached.Components(), 9)
	assert.Nil(t, b.Parent, "builders return copies")
}

func TestSpawnBundles(t *testing.T) {
	storage := newStorage()

	e := storage.Spawn(physics.DefaultRigidBodyBundle(), physics.DefaultColliderBundle())
	for _, c := range physics.DefaultRigidBodyBundle().Components() {
		assert.True(t, storage.HasComponent(e, reflectTypeOf(c)), "%T", c)
	}
	for _, c := range physics.DefaultColliderBundle().Components() {
		assert.True(t, storage.HasComponent(e, reflectTypeOf(c)), "%T", c)
	}
	assert.False(t, storage.HasComponent(e, reflectType[physics.ColliderParent]()))

	assert.True(t, physics.NewRigidBodyComponentsSet(storage).Contains(physics.RigidBodyHandleOf(e)))
	assert.Equal(t, 1, physics.NewColliderComponentsSet(storage).Len())
}

func TestInsertBundle(t *testing.T) {
	storage := newStorage()
	body := storage.Spawn(physics.DefaultRigidBodyBundle())
	e := storage.Spawn(Red)

	parent := physics.RigidBodyHandleOf(body)
	ok := storage.Insert(e, physics.DefaultColliderBundle().AttachedTo(parent, physics.Translation(1, 0, 0)))
	require.True(t, ok)

	colliders := physics.NewColliderComponentsSet(storage)
	assert.Equal(t, parent, colliders.ParentOf(physics.ColliderHandleOf(e)))
	assert.Equal(t, Red, *ecs.ReadComponent[Team](storage, e))
	assert.Equal(t, 1, storage.GetArchetype(Red, physics.DefaultColliderBundle().AttachedTo(parent, physics.Isometry{})).Len())
}
