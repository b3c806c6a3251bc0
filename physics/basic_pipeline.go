package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/kamstrup/intmap"
	"go.uber.org/zap"
)

// ContactPair is a pair of colliders whose bounding boxes overlap and that passed filtering.
// Collider1 always has the lower slot index.
type ContactPair struct {
	Collider1 ColliderHandle
	Collider2 ColliderHandle
	Solver    SolverFlags
	// Intersection is set when either collider is a sensor.
	Intersection bool
	// Steps counts consecutive steps the pair has been active.
	Steps uint32
}

type bodyState struct {
	index      Index
	typ        RigidBodyType
	pos        RigidBodyPosition
	vel        RigidBodyVelocity
	mass       RigidBodyMassProps
	forces     RigidBodyForces
	activation RigidBodyActivation
	changes    RigidBodyChanges
	ccd        RigidBodyCcd
	ids        RigidBodyIds
	damping    RigidBodyDamping
	colliders  []ColliderHandle

	massDirty bool
	dirty     bool
}

// active reports whether the body takes part in the step.
func (b *bodyState) active() bool {
	return !b.activation.Sleeping && b.typ != Static
}

type colliderState struct {
	handle  ColliderHandle
	body    int
	rel     Isometry
	typ     ColliderType
	shape   ColliderShape
	flags   ColliderFlags
	density float32
	pos     Isometry
	changes ColliderChanges
	proxy   uint32
	aabb    AABB
}

// BasicPipeline is a small reference pipeline. It integrates dynamic and kinematic bodies,
// derives mass from attached colliders, puts resting bodies to sleep and reports overlapping
// collider pairs. It does not resolve contacts.
type BasicPipeline struct {
	contacts *intmap.Map[uint64, ContactPair]
	next     *intmap.Map[uint64, ContactPair]
	removed  *intmap.Set[ColliderHandle]

	bodies        []bodyState
	bodyIndex     *intmap.Map[Index, int]
	colliders     []colliderState
	colliderIndex *intmap.Map[Index, int]
	stale         []uint64
}

// NewBasicPipeline returns a pipeline with no active pairs.
func NewBasicPipeline() *BasicPipeline {
	return &BasicPipeline{
		contacts:      intmap.New[uint64, ContactPair](256),
		next:          intmap.New[uint64, ContactPair](256),
		removed:       intmap.NewSet[ColliderHandle](16),
		bodyIndex:     intmap.New[Index, int](256),
		colliderIndex: intmap.New[Index, int](256),
	}
}

func slotOf(h ColliderHandle) uint32 {
	slot, _ := h.Index().IntoRawParts()
	return slot
}

func pairKey(a, b ColliderHandle) uint64 {
	ia, ib := slotOf(a), slotOf(b)
	if ia > ib {
		ia, ib = ib, ia
	}
	return uint64(ia)<<32 | uint64(ib)
}

// ContactCount returns the number of active pairs after the last successful step.
func (p *BasicPipeline) ContactCount() int {
	return p.contacts.Len()
}

// Contact returns the pair formed by a and b, if active.
func (p *BasicPipeline) Contact(a, b ColliderHandle) (ContactPair, bool) {
	pair, ok := p.contacts.Get(pairKey(a, b))
	if !ok || !(pair.Collider1 == a && pair.Collider2 == b || pair.Collider1 == b && pair.Collider2 == a) {
		return ContactPair{}, false
	}
	return pair, true
}

// ForEachContact visits every active pair until f returns false.
func (p *BasicPipeline) ForEachContact(f func(ContactPair) bool) {
	p.contacts.ForEach(func(_ uint64, pair ContactPair) bool {
		return f(pair)
	})
}

// Step advances every body by ctx.Dt and recomputes the active pairs. When a hook fails the
// error wraps ErrHookFailed and nothing is written back to the store.
func (p *BasicPipeline) Step(ctx *StepContext) error {
	p.evict(ctx.RemovedColliders)
	p.collectBodies(ctx.Bodies)
	p.collectColliders(ctx.Colliders)

	for i := range p.bodies {
		b := &p.bodies[i]
		if b.massDirty || b.changes.Has(RigidBodyChangeColliders) {
			p.updateMass(b)
		}
		if b.active() {
			integrate(b, ctx.Dt, ctx.Gravity)
			updateSleep(b, ctx.Dt)
		}
		b.mass.WorldCom = b.pos.Position.TransformPoint(b.mass.LocalCom)
		b.ccd.Active = b.ccd.Enabled && b.vel.Linvel.Len()*ctx.Dt > b.ccd.Thickness
	}

	p.updateColliderPositions()
	if err := p.findPairs(ctx); err != nil {
		p.next.Clear()
		return err
	}

	p.writeBack(ctx)
	p.contacts, p.next = p.next, p.contacts
	p.next.Clear()
	ctx.Contacts = p.contacts.Len()
	return nil
}

// evict drops pairs involving colliders that no longer exist.
func (p *BasicPipeline) evict(removed []ColliderHandle) {
	if len(removed) == 0 {
		return
	}
	p.removed.Clear()
	for _, h := range removed {
		p.removed.Add(h)
	}

	p.stale = p.stale[:0]
	p.contacts.ForEach(func(key uint64, pair ContactPair) bool {
		if p.removed.Has(pair.Collider1) || p.removed.Has(pair.Collider2) {
			p.stale = append(p.stale, key)
		}
		return true
	})
	for _, key := range p.stale {
		p.contacts.Del(key)
	}
	Logger().Debug("evicted contacts", zap.Int("colliders", len(removed)), zap.Int("pairs", len(p.stale)))
}

func (p *BasicPipeline) body(i Index) *bodyState {
	if slot, ok := p.bodyIndex.Get(i); ok {
		return &p.bodies[slot]
	}
	return nil
}

func (p *BasicPipeline) collider(i Index) *colliderState {
	if slot, ok := p.colliderIndex.Get(i); ok {
		return &p.colliders[slot]
	}
	return nil
}

func (p *BasicPipeline) collectBodies(set *RigidBodyComponentsSet) {
	p.bodies = p.bodies[:0]
	p.bodyIndex.Clear()

	set.Type.ForEach(func(i Index, t RigidBodyType) {
		p.bodyIndex.Put(i, len(p.bodies))
		p.bodies = append(p.bodies, bodyState{index: i, typ: t})
	})
	set.Position.ForEach(func(i Index, v RigidBodyPosition) { p.body(i).pos = v })
	set.Velocity.ForEach(func(i Index, v RigidBodyVelocity) { p.body(i).vel = v })
	set.MassProps.ForEach(func(i Index, v RigidBodyMassProps) { p.body(i).mass = v })
	set.Forces.ForEach(func(i Index, v RigidBodyForces) { p.body(i).forces = v })
	set.Activation.ForEach(func(i Index, v RigidBodyActivation) { p.body(i).activation = v })
	set.Changes.ForEach(func(i Index, v RigidBodyChanges) { p.body(i).changes = v })
	set.Ccd.ForEach(func(i Index, v RigidBodyCcd) { p.body(i).ccd = v })
	set.Ids.ForEach(func(i Index, v RigidBodyIds) { p.body(i).ids = v })
	set.Damping.ForEach(func(i Index, v RigidBodyDamping) { p.body(i).damping = v })
	set.Colliders.ForEach(func(i Index, v RigidBodyColliders) { p.body(i).colliders = v.Handles })
}

func (p *BasicPipeline) collectColliders(set *ColliderComponentsSet) {
	p.colliders = p.colliders[:0]
	p.colliderIndex.Clear()

	set.Shape.ForEach(func(i Index, shape ColliderShape) {
		p.colliderIndex.Put(i, len(p.colliders))
		p.colliders = append(p.colliders, colliderState{handle: ColliderHandle(i), body: -1, shape: shape})
	})
	set.Position.ForEach(func(i Index, v ColliderPosition) { p.collider(i).pos = v.Isometry })
	set.Type.ForEach(func(i Index, v ColliderType) { p.collider(i).typ = v })
	set.Flags.ForEach(func(i Index, v ColliderFlags) { p.collider(i).flags = v })
	set.MassProps.ForEach(func(i Index, v ColliderMassProps) { p.collider(i).density = v.Density })
	set.BroadPhaseData.ForEach(func(i Index, v ColliderBroadPhaseData) { p.collider(i).proxy = v.ProxyIndex })
	set.Changes.ForEach(func(i Index, v ColliderChanges) { p.collider(i).changes = v })

	for slot := range p.colliders {
		c := &p.colliders[slot]
		parent, ok := set.Parent.Get(c.handle.Index())
		if !ok {
			continue
		}
		c.rel = parent.PosWrtParent
		bodySlot, ok := p.bodyIndex.Get(parent.Handle.Index())
		if !ok {
			continue
		}
		c.body = bodySlot
		if c.changes&(ColliderChangeShape|ColliderChangeParent) != 0 {
			p.bodies[bodySlot].massDirty = true
		}
	}
}

// updateMass sums the mass of every collider attached to b.
func (p *BasicPipeline) updateMass(b *bodyState) {
	var mass float32
	var com mgl32.Vec3
	for _, h := range b.colliders {
		c := p.collider(h.Index())
		if c == nil {
			continue
		}
		m, local, _ := c.shape.MassProperties(c.density)
		mass += m
		com = com.Add(c.rel.TransformPoint(local).Mul(m))
	}
	if mass > 0 {
		com = com.Mul(1 / mass)
	}

	var inertia mgl32.Vec3
	for _, h := range b.colliders {
		c := p.collider(h.Index())
		if c == nil {
			continue
		}
		m, local, principal := c.shape.MassProperties(c.density)
		d := c.rel.TransformPoint(local).Sub(com)
		inertia = inertia.Add(principal).Add(mgl32.Vec3{
			m * (d[1]*d[1] + d[2]*d[2]),
			m * (d[0]*d[0] + d[2]*d[2]),
			m * (d[0]*d[0] + d[1]*d[1]),
		})
	}

	b.mass.Mass = mass
	b.mass.LocalCom = com
	if b.typ.IsDynamic() {
		b.mass.InvMass = invOrZero(mass)
		b.mass.InvInertia = mgl32.Vec3{invOrZero(inertia[0]), invOrZero(inertia[1]), invOrZero(inertia[2])}
	} else {
		b.mass.InvMass = 0
		b.mass.InvInertia = mgl32.Vec3{}
	}
	b.dirty = true
}

func integrate(b *bodyState, dt float32, gravity mgl32.Vec3) {
	b.dirty = true
	switch b.typ {
	case Dynamic:
		acc := gravity.Mul(b.forces.GravityScale).Add(b.forces.Force.Mul(b.mass.InvMass))
		b.vel.Linvel = b.vel.Linvel.Add(acc.Mul(dt)).Mul(1 / (1 + dt*b.damping.Linear))
		angAcc := mgl32.Vec3{
			b.forces.Torque[0] * b.mass.InvInertia[0],
			b.forces.Torque[1] * b.mass.InvInertia[1],
			b.forces.Torque[2] * b.mass.InvInertia[2],
		}
		b.vel.Angvel = b.vel.Angvel.Add(angAcc.Mul(dt)).Mul(1 / (1 + dt*b.damping.Angular))
		b.pos.Position = advance(b.pos.Position, b.vel, dt)
		b.pos.NextPosition = b.pos.Position
	case KinematicVelocityBased:
		b.pos.Position = advance(b.pos.Position, b.vel, dt)
		b.pos.NextPosition = b.pos.Position
	case KinematicPositionBased:
		b.vel = velocityBetween(b.pos.Position, b.pos.NextPosition, dt)
		b.pos.Position = b.pos.NextPosition
	}
}

func advance(pose Isometry, vel RigidBodyVelocity, dt float32) Isometry {
	q := pose.Rot()
	spin := mgl32.Quat{V: vel.Angvel}.Mul(q).Scale(0.5 * dt)
	return Isometry{
		Translation: pose.Translation.Add(vel.Linvel.Mul(dt)),
		Rotation:    q.Add(spin).Normalize(),
	}
}

// velocityBetween returns the velocity that moves from to to in dt.
func velocityBetween(from, to Isometry, dt float32) RigidBodyVelocity {
	if dt <= 0 {
		return RigidBodyVelocity{}
	}
	vel := RigidBodyVelocity{Linvel: to.Translation.Sub(from.Translation).Mul(1 / dt)}

	dq := to.Rot().Mul(from.Rot().Inverse()).Normalize()
	if dq.W < 0 {
		dq = dq.Scale(-1)
	}
	s := dq.V.Len()
	if s > 1e-6 {
		angle := 2 * float32(math.Atan2(float64(s), float64(dq.W)))
		vel.Angvel = dq.V.Mul(angle / (s * dt))
	}
	return vel
}

func updateSleep(b *bodyState, dt float32) {
	if !b.typ.IsDynamic() || !b.activation.CanSleep() {
		return
	}
	if b.vel.Linvel.Len() < b.activation.LinearThreshold && b.vel.Angvel.Len() < b.activation.AngularThreshold {
		b.activation.TimeSinceCanSleep += dt
	} else {
		b.activation.TimeSinceCanSleep = 0
	}
	if b.activation.TimeSinceCanSleep >= TimeUntilSleep {
		b.activation.Sleeping = true
		b.vel = RigidBodyVelocity{}
	}
}

func (p *BasicPipeline) updateColliderPositions() {
	for slot := range p.colliders {
		c := &p.colliders[slot]
		if c.body >= 0 {
			pos := p.bodies[c.body].pos.Position.Mul(c.rel)
			if pos != c.pos {
				c.pos = pos
				c.changes |= ColliderChangePosition
			}
		}
		c.aabb = c.shape.LocalAABB().Transform(c.pos)
	}
}

// awakeDynamic reports whether the collider belongs to a moving dynamic body.
func (p *BasicPipeline) awakeDynamic(c *colliderState) bool {
	if c.body < 0 {
		return false
	}
	b := &p.bodies[c.body]
	return b.typ.IsDynamic() && !b.activation.Sleeping
}

func (p *BasicPipeline) findPairs(ctx *StepContext) error {
	filterCtx := PairFilterContext{Bodies: ctx.Bodies, Colliders: ctx.Colliders}
	intersections, _ := ctx.Hooks.(IntersectionFilter)

	for i := range p.colliders {
		c1 := &p.colliders[i]
		for j := i + 1; j < len(p.colliders); j++ {
			c2 := &p.colliders[j]
			if c1.body >= 0 && c1.body == c2.body {
				continue
			}
			key := pairKey(c1.handle, c2.handle)

			if !p.awakeDynamic(c1) && !p.awakeDynamic(c2) {
				if pair, ok := p.contacts.Get(key); ok {
					p.next.Put(key, pair)
				}
				continue
			}
			if !c1.flags.CollisionGroups.Test(c2.flags.CollisionGroups) || !c1.aabb.Intersects(c2.aabb) {
				continue
			}

			pair := ContactPair{Collider1: c1.handle, Collider2: c2.handle}
			if slotOf(c2.handle) < slotOf(c1.handle) {
				pair.Collider1, pair.Collider2 = c2.handle, c1.handle
			}
			filterCtx.Collider1, filterCtx.Collider2 = pair.Collider1, pair.Collider2
			filterCtx.RigidBody1, filterCtx.RigidBody2 = p.bodyHandle(pair.Collider1), p.bodyHandle(pair.Collider2)
			hooks := c1.flags.ActiveHooks | c2.flags.ActiveHooks

			if c1.typ == Sensor || c2.typ == Sensor {
				pair.Intersection = true
				if intersections != nil && hooks&FilterIntersectionPair != 0 {
					keep, err := callHook(&filterCtx, func() bool {
						return intersections.FilterIntersectionPair(&filterCtx)
					})
					if err != nil {
						return err
					}
					if !keep {
						continue
					}
				}
			} else {
				pair.Solver = ComputeImpulses
				if ctx.Hooks != nil && hooks&FilterContactPairs != 0 {
					keep, err := callHook(&filterCtx, func() bool {
						flags, ok := ctx.Hooks.FilterContactPair(&filterCtx)
						pair.Solver = flags
						return ok
					})
					if err != nil {
						return err
					}
					if !keep {
						continue
					}
				}
			}

			if previous, ok := p.contacts.Get(key); ok {
				pair.Steps = previous.Steps
			}
			pair.Steps++
			p.next.Put(key, pair)
			if !pair.Intersection {
				p.wakePair(c1, c2)
			}
		}
	}
	return nil
}

func (p *BasicPipeline) bodyHandle(h ColliderHandle) RigidBodyHandle {
	if c := p.collider(h.Index()); c != nil && c.body >= 0 {
		return RigidBodyHandle(p.bodies[c.body].index)
	}
	return InvalidRigidBodyHandle
}

// wakePair wakes a sleeping dynamic body touched by an awake one.
func (p *BasicPipeline) wakePair(c1, c2 *colliderState) {
	for _, c := range [2]*colliderState{c1, c2} {
		if c.body < 0 {
			continue
		}
		b := &p.bodies[c.body]
		if b.typ.IsDynamic() && b.activation.Sleeping {
			b.activation.WakeUp()
			b.dirty = true
		}
	}
}

func (p *BasicPipeline) writeBack(ctx *StepContext) {
	var activeSet uint32
	for i := range p.bodies {
		b := &p.bodies[i]
		slot := uint32(noSlot)
		if b.active() {
			slot = activeSet
			activeSet++
		}
		if b.ids.ActiveSetIndex != slot {
			b.ids.ActiveSetIndex = slot
			b.dirty = true
		}
		if !b.dirty && b.changes == 0 {
			continue
		}

		set := ctx.Bodies
		set.Position.Set(b.index, b.pos)
		set.Velocity.Set(b.index, b.vel)
		set.MassProps.Set(b.index, b.mass)
		set.Activation.Set(b.index, b.activation)
		set.Ccd.Set(b.index, b.ccd)
		set.Ids.Set(b.index, b.ids)
		set.Changes.Set(b.index, 0)
	}

	for slot := range p.colliders {
		c := &p.colliders[slot]
		index := c.handle.Index()
		if c.changes.Has(ColliderChangePosition) {
			ctx.Colliders.Position.Set(index, ColliderPosition{Isometry: c.pos})
		}
		if c.proxy != uint32(slot) {
			ctx.Colliders.BroadPhaseData.Set(index, ColliderBroadPhaseData{ProxyIndex: uint32(slot)})
		}
		if c.changes != 0 {
			ctx.Colliders.Changes.Set(index, 0)
		}
	}
}
