package physics

import (
	"fmt"

	"github.com/plus3/physbridge/ecs"
	"github.com/rotisserie/eris"
)

// ErrHookFailed wraps any panic raised by user hooks during a step.
var ErrHookFailed = eris.New("physics hook failed")

// SolverFlags tell the solver what to do with a contact pair that passed the filter.
type SolverFlags uint32

const (
	// ComputeImpulses makes the solver resolve the contact.
	ComputeImpulses SolverFlags = 1 << iota
)

// PairFilterContext describes one candidate pair. RigidBody1 and RigidBody2 are
// InvalidRigidBodyHandle for colliders without a parent.
type PairFilterContext struct {
	Bodies     *RigidBodyComponentsSet
	Colliders  *ColliderComponentsSet
	Collider1  ColliderHandle
	Collider2  ColliderHandle
	RigidBody1 RigidBodyHandle
	RigidBody2 RigidBodyHandle
}

// PhysicsHooks decides whether candidate contact pairs take part in the step. It is called
// once per candidate pair per step, and only for pairs where at least one collider enables
// FilterContactPairs. Returning false drops the pair.
type PhysicsHooks interface {
	FilterContactPair(ctx *PairFilterContext) (SolverFlags, bool)
}

// IntersectionFilter may additionally be implemented by a PhysicsHooks to filter sensor
// pairs. It is called only when a collider enables FilterIntersectionPair.
type IntersectionFilter interface {
	FilterIntersectionPair(ctx *PairFilterContext) bool
}

// PhysicsHooksWithQuery is a hook that also reads a user component of type T.
type PhysicsHooksWithQuery[T any] interface {
	FilterContactPair(ctx *PairFilterContext, user ComponentSetOption[T]) (SolverFlags, bool)
}

type queryHooks[T any] struct {
	hooks PhysicsHooksWithQuery[T]
	user  *QueryComponentSet[T]
}

func (q *queryHooks[T]) FilterContactPair(ctx *PairFilterContext) (SolverFlags, bool) {
	return q.hooks.FilterContactPair(ctx, q.user)
}

// WithQuery binds hooks to the T components of storage.
func WithQuery[T any](storage *ecs.Storage, hooks PhysicsHooksWithQuery[T]) PhysicsHooks {
	return &queryHooks[T]{hooks: hooks, user: NewQueryComponentSet[T](storage)}
}

// SameTagFilter lets two colliders interact only when they carry equal tags. Two colliders
// without a tag also interact.
type SameTagFilter[T comparable] struct{}

func (SameTagFilter[T]) FilterContactPair(ctx *PairFilterContext, tags ComponentSetOption[T]) (SolverFlags, bool) {
	tag1, ok1 := tags.Get(ctx.Collider1.Index())
	tag2, ok2 := tags.Get(ctx.Collider2.Index())
	if ok1 != ok2 || tag1 != tag2 {
		return 0, false
	}
	return ComputeImpulses, true
}

// callHook runs f and converts a panic into an error wrapping ErrHookFailed.
func callHook(ctx *PairFilterContext, f func() bool) (keep bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = eris.Wrapf(ErrHookFailed, "pair (%d, %d): %s", ctx.Collider1, ctx.Collider2, fmt.Sprint(r))
		}
	}()
	return f(), nil
}
