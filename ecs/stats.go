package ecs

import "sort"

// StorageStats is a point-in-time summary of a Storage.
type StorageStats struct {
	ArchetypeCount     int
	TotalEntityCount   int
	SingletonCount     int
	ArchetypeBreakdown []ArchetypeStats
	SingletonTypes     []string
}

// ArchetypeStats describes one archetype.
type ArchetypeStats struct {
	ID             uint32
	ComponentTypes []string
	EntityCount    int
}

// CollectStats walks the storage and summarizes archetypes, entities and singletons.
// Empty archetypes are not reported.
func (s *Storage) CollectStats() StorageStats {
	stats := StorageStats{
		SingletonCount: len(s.singletons),
	}

	for _, archetype := range s.archetypeList {
		if archetype.count == 0 {
			continue
		}
		names := make([]string, len(archetype.types))
		for i, typ := range archetype.types {
			names[i] = typ.String()
		}
		stats.ArchetypeBreakdown = append(stats.ArchetypeBreakdown, ArchetypeStats{
			ID:             archetype.id,
			ComponentTypes: names,
			EntityCount:    archetype.count,
		})
		stats.TotalEntityCount += archetype.count
	}
	stats.ArchetypeCount = len(stats.ArchetypeBreakdown)

	for typ := range s.singletons {
		stats.SingletonTypes = append(stats.SingletonTypes, typ.String())
	}
	sort.Strings(stats.SingletonTypes)

	return stats
}
