package ecs

import (
	"reflect"
	"sort"
	"unsafe"

	"github.com/kamstrup/intmap"
)

// Storage is the main ECS storage interface
type Storage struct {
	archetypes    *intmap.Map[uint32, *Archetype]
	archetypeList []*Archetype
	registry      *ComponentRegistry
	entities      entityAllocator
	singletons    map[reflect.Type]*singletonEntry
	removed       map[reflect.Type][]Entity
	tick          uint32
}

// NewStorage creates a new ECS storage system with the given component registry
func NewStorage(registry *ComponentRegistry) *Storage {
	return &Storage{
		archetypes: intmap.New[uint32, *Archetype](64),
		registry:   registry,
		singletons: make(map[reflect.Type]*singletonEntry),
		removed:    make(map[reflect.Type][]Entity),
		tick:       1,
	}
}

// Registry returns the component registry the storage was created with
func (s *Storage) Registry() *ComponentRegistry {
	return s.registry
}

// Alive reports whether the entity exists and has not been deleted
func (s *Storage) Alive(e Entity) bool {
	return s.entities.lookup(e) != nil
}

// EntityCount returns the number of live entities
func (s *Storage) EntityCount() int {
	return s.entities.liveCount()
}

// locate returns the archetype and row of a live entity
func (s *Storage) locate(e Entity) (*Archetype, uint32, bool) {
	meta := s.entities.lookup(e)
	if meta == nil || meta.archetype == nil {
		return nil, 0, false
	}
	return meta.archetype, meta.row, true
}

// GetArchetype returns an archetype storage (if one exists)
func (s *Storage) GetArchetype(components ...any) *Archetype {
	types, _ := sortComponents(flattenBundles(components))
	return s.lookupArchetype(types)
}

// GetArchetypeByTypes returns an archetype storage (if one exists) based on reflect.Type
func (s *Storage) GetArchetypeByTypes(types []reflect.Type) *Archetype {
	sorted := append([]reflect.Type(nil), types...)
	sort.Sort(byTypeName(sorted))
	return s.lookupArchetype(sorted)
}

// Archetypes returns every archetype in creation order
func (s *Storage) Archetypes() []*Archetype {
	return s.archetypeList
}

func (s *Storage) lookupArchetype(types []reflect.Type) *Archetype {
	archetype, ok := s.archetypes.Get(hashTypesToUint32(types))
	if !ok {
		return nil
	}
	return archetype
}

func (s *Storage) archetypeFor(types []reflect.Type) *Archetype {
	archetypeId := hashTypesToUint32(types)
	if archetype, ok := s.archetypes.Get(archetypeId); ok {
		if !equalTypes(archetype.types, types) {
			panic("archetype hash collision")
		}
		return archetype
	}

	archetype := NewArchetype(archetypeId, types, s.registry)
	s.archetypes.Put(archetypeId, archetype)
	s.archetypeList = append(s.archetypeList, archetype)
	return archetype
}

// Spawn creates a new entity with the provided components. Bundles are flattened, so
// Spawn(bundle) inserts every member component in a single step.
func (s *Storage) Spawn(components ...any) Entity {
	flat := flattenBundles(components)
	if len(flat) == 0 {
		panic("cannot spawn entity without components")
	}

	types, ordered := sortComponents(flat)
	archetype := s.archetypeFor(types)

	ticks := make([]ComponentTicks, len(types))
	for i := range ticks {
		ticks[i] = ComponentTicks{Added: s.tick, Changed: s.tick}
	}

	entity := s.entities.alloc()
	row := archetype.Spawn(entity, ordered, ticks)

	meta := &s.entities.metas[entity.Index()]
	meta.archetype = archetype
	meta.row = row
	return entity
}

// Insert adds or replaces components on an existing entity in one step: the entity is never
// observable with only part of the components applied. Components that already exist are
// overwritten and marked changed; new components are marked added. Returns false if the
// entity is not alive.
func (s *Storage) Insert(e Entity, components ...any) bool {
	meta := s.entities.lookup(e)
	if meta == nil {
		return false
	}

	flat := flattenBundles(components)
	if len(flat) == 0 {
		return true
	}
	newTypes, newComps := sortComponents(flat)
	old := meta.archetype

	inPlace := true
	for _, typ := range newTypes {
		if !old.HasComponent(typ) {
			inPlace = false
			break
		}
	}

	if inPlace {
		for i, typ := range newTypes {
			idx := old.typeIndex(typ)
			old.storages[idx].Set(int(meta.row), newComps[i])
			old.storages[idx].Ticks(int(meta.row)).Changed = s.tick
		}
		return true
	}

	merged := make([]reflect.Type, 0, len(old.types)+len(newTypes))
	merged = append(merged, old.types...)
	for _, typ := range newTypes {
		if !old.HasComponent(typ) {
			merged = append(merged, typ)
		}
	}
	sort.Sort(byTypeName(merged))

	comps := make([]any, len(merged))
	ticks := make([]ComponentTicks, len(merged))
	for i, typ := range merged {
		oldTicks := old.componentTicks(meta.row, typ)
		if j := indexOfType(newTypes, typ); j >= 0 {
			comps[i] = newComps[j]
			if oldTicks != nil {
				ticks[i] = ComponentTicks{Added: oldTicks.Added, Changed: s.tick}
			} else {
				ticks[i] = ComponentTicks{Added: s.tick, Changed: s.tick}
			}
			continue
		}
		comps[i] = old.GetComponent(meta.row, typ)
		ticks[i] = *oldTicks
	}

	s.move(e, meta, merged, comps, ticks)
	return true
}

// AddComponent adds (or replaces) a single component on the entity
func (s *Storage) AddComponent(e Entity, component any) bool {
	return s.Insert(e, component)
}

// RemoveComponent removes a component from the entity. Removing the last component deletes
// the entity. Returns false if the entity is dead or does not carry the component.
func (s *Storage) RemoveComponent(e Entity, compType reflect.Type) bool {
	meta := s.entities.lookup(e)
	if meta == nil || !meta.archetype.HasComponent(compType) {
		return false
	}
	old := meta.archetype

	if len(old.types) == 1 {
		s.Delete(e)
		return true
	}

	newTypes := make([]reflect.Type, 0, len(old.types)-1)
	for _, typ := range old.types {
		if typ != compType {
			newTypes = append(newTypes, typ)
		}
	}

	comps := make([]any, len(newTypes))
	ticks := make([]ComponentTicks, len(newTypes))
	for i, typ := range newTypes {
		comps[i] = old.GetComponent(meta.row, typ)
		ticks[i] = *old.componentTicks(meta.row, typ)
	}

	s.move(e, meta, newTypes, comps, ticks)
	s.removed[compType] = append(s.removed[compType], e)
	return true
}

// move relocates an entity to the archetype matching types
func (s *Storage) move(e Entity, meta *entityMeta, types []reflect.Type, comps []any, ticks []ComponentTicks) {
	old := meta.archetype
	oldRow := meta.row

	archetype := s.archetypeFor(types)
	row := archetype.Spawn(e, comps, ticks)
	old.Delete(oldRow)

	meta.archetype = archetype
	meta.row = row
}

// Delete removes all data related to the entity
func (s *Storage) Delete(e Entity) {
	meta := s.entities.lookup(e)
	if meta == nil {
		return
	}

	archetype := meta.archetype
	for _, typ := range archetype.types {
		s.removed[typ] = append(s.removed[typ], e)
	}
	archetype.Delete(meta.row)
	s.entities.release(e)
}

// GetComponent returns a pointer to the component for the given entity and component type
func (s *Storage) GetComponent(e Entity, compType reflect.Type) any {
	archetype, row, ok := s.locate(e)
	if !ok {
		return nil
	}

	return archetype.GetComponent(row, compType)
}

// HasComponent checks if an entity has a specific component type
func (s *Storage) HasComponent(e Entity, compType reflect.Type) bool {
	archetype, _, ok := s.locate(e)
	if !ok {
		return false
	}
	return archetype.HasComponent(compType)
}

// SetComponent overwrites an existing component and marks it changed.
// Returns false if the entity does not carry a component of that type.
func (s *Storage) SetComponent(e Entity, component any) bool {
	archetype, row, ok := s.locate(e)
	if !ok {
		return false
	}
	idx := archetype.typeIndex(componentType(component))
	if idx == -1 {
		return false
	}
	if !archetype.storages[idx].Set(int(row), component) {
		return false
	}
	archetype.storages[idx].Ticks(int(row)).Changed = s.tick
	return true
}

// MarkChanged stamps the component with the current change tick.
// Writes made through component pointers are invisible to change detection until marked.
func (s *Storage) MarkChanged(e Entity, compType reflect.Type) bool {
	archetype, row, ok := s.locate(e)
	if !ok {
		return false
	}
	ticks := archetype.componentTicks(row, compType)
	if ticks == nil {
		return false
	}
	ticks.Changed = s.tick
	return true
}

// Ticks returns the change ticks of an entity's component
func (s *Storage) Ticks(e Entity, compType reflect.Type) (ComponentTicks, bool) {
	archetype, row, ok := s.locate(e)
	if !ok {
		return ComponentTicks{}, false
	}
	ticks := archetype.componentTicks(row, compType)
	if ticks == nil {
		return ComponentTicks{}, false
	}
	return *ticks, true
}

// Removed lists the entities that lost a component of the given type (by removal or
// deletion) since the last ClearTrackers call
func (s *Storage) Removed(compType reflect.Type) []Entity {
	return s.removed[compType]
}

// ClearTrackers forgets recorded removals
func (s *Storage) ClearTrackers() {
	for typ, entities := range s.removed {
		s.removed[typ] = entities[:0]
	}
}

// Compact reorganizes every archetype to eliminate empty slots. Entities stay valid.
func (s *Storage) Compact() {
	for _, archetype := range s.archetypeList {
		archetype.compact()
		for row, e := range archetype.entities {
			if e == 0 {
				continue
			}
			s.entities.metas[e.Index()].row = uint32(row)
		}
	}
}

// Bundle is an aggregate of components inserted together.
type Bundle interface {
	Components() []any
}

func flattenBundles(components []any) []any {
	hasBundle := false
	for _, comp := range components {
		if _, ok := comp.(Bundle); ok {
			hasBundle = true
			break
		}
	}
	if !hasBundle {
		return components
	}

	flat := make([]any, 0, len(components)*4)
	for _, comp := range components {
		if bundle, ok := comp.(Bundle); ok {
			flat = append(flat, flattenBundles(bundle.Components())...)
			continue
		}
		flat = append(flat, comp)
	}
	return flat
}

func componentType(component any) reflect.Type {
	compType := reflect.TypeOf(component)
	if compType.Kind() == reflect.Ptr {
		compType = compType.Elem()
	}
	return compType
}

// sortComponents extracts component types and orders types and components by type name
func sortComponents(components []any) ([]reflect.Type, []any) {
	types := make([]reflect.Type, 0, len(components))
	for _, comp := range components {
		compType := componentType(comp)

		// Components can be structs or primitives (int, string, etc.)
		// But not pointers, maps, channels, or functions (those aren't value types)
		if compType.Kind() == reflect.Ptr || compType.Kind() == reflect.Map ||
			compType.Kind() == reflect.Chan || compType.Kind() == reflect.Func {
			panic("components cannot be pointers, maps, channels, or functions")
		}

		types = append(types, compType)
	}

	ordered := make([]any, len(components))
	copy(ordered, components)
	sort.Sort(typedComponents{types: types, components: ordered})

	for i := 1; i < len(types); i++ {
		if types[i] == types[i-1] {
			panic("duplicate component type " + types[i].String())
		}
	}
	return types, ordered
}

type typedComponents struct {
	types      []reflect.Type
	components []any
}

func (t typedComponents) Len() int { return len(t.types) }
func (t typedComponents) Swap(i, j int) {
	t.types[i], t.types[j] = t.types[j], t.types[i]
	t.components[i], t.components[j] = t.components[j], t.components[i]
}
func (t typedComponents) Less(i, j int) bool { return t.types[i].String() < t.types[j].String() }

func indexOfType(types []reflect.Type, typ reflect.Type) int {
	for i, t := range types {
		if t == typ {
			return i
		}
	}
	return -1
}

func equalTypes(a, b []reflect.Type) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// hashTypesToUint32 generates a uint32 hash for a sorted slice of types
func hashTypesToUint32(types []reflect.Type) uint32 {
	var h uint32 = 2166136261     // FNV-1a 32-bit offset basis
	const prime uint32 = 16777619 // FNV-1a 32-bit prime

	for _, t := range types {
		// Use the type's pointer as a unique identifier
		ptr := (*iface)(unsafe.Pointer(&t)).data
		val := uint32(uintptr(ptr))

		// Mix in all 4 bytes if on 64-bit system
		if unsafe.Sizeof(uintptr(0)) == 8 {
			val ^= uint32(uint64(uintptr(ptr)) >> 32)
		}

		h ^= val
		h *= prime
	}

	return h
}

type ComponentReader interface {
	GetComponent(Entity, reflect.Type) any
}

// ReadComponent returns a pointer to the entity's component, or nil if it has none
func ReadComponent[T any](reader ComponentReader, e Entity) *T {
	comp, _ := reader.GetComponent(e, reflect.TypeFor[T]()).(*T)
	return comp
}

// Mutate applies f to the entity's component and marks it changed.
// Returns false if the entity does not carry the component.
func Mutate[T any](s *Storage, e Entity, f func(*T)) bool {
	archetype, row, ok := s.locate(e)
	if !ok {
		return false
	}
	idx := archetype.typeIndex(reflect.TypeFor[T]())
	if idx == -1 {
		return false
	}
	f(archetype.storages[idx].Get(int(row)).(*T))
	archetype.storages[idx].Ticks(int(row)).Changed = s.tick
	return true
}

// SetChanged marks the entity's component of type T as changed
func SetChanged[T any](s *Storage, e Entity) bool {
	return s.MarkChanged(e, reflect.TypeFor[T]())
}

// TicksOf returns the change ticks of the entity's component of type T
func TicksOf[T any](s *Storage, e Entity) (ComponentTicks, bool) {
	return s.Ticks(e, reflect.TypeFor[T]())
}

// Removed lists entities that lost their component of type T since the last ClearTrackers
func Removed[T any](s *Storage) []Entity {
	return s.Removed(reflect.TypeFor[T]())
}
