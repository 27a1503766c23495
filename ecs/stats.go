package ecs

// StorageStats summarises the contents of a world.
type StorageStats struct {
	ComponentCount     int
	ArchetypeCount     int
	TotalEntityCount   int
	TotalCapacity      int
	ArchetypeBreakdown []ArchetypeStats
}

// ArchetypeStats describes one archetype.
type ArchetypeStats struct {
	ID          int
	Key         string
	Components  []string
	EntityCount int
	Capacity    int
}

// CollectStats walks every archetype in key order. Empty archetypes are
// included.
func (w *World) CollectStats() StorageStats {
	r := w.registry
	stats := StorageStats{
		ComponentCount:     r.ComponentCount(),
		ArchetypeCount:     len(r.sorted),
		ArchetypeBreakdown: make([]ArchetypeStats, 0, len(r.sorted)),
	}

	for _, a := range r.sorted {
		names := make([]string, 0, len(a.ids))
		for _, id := range a.ids {
			names = append(names, r.components[id].typ.String())
		}

		stats.TotalEntityCount += a.length
		stats.TotalCapacity += a.capacity
		stats.ArchetypeBreakdown = append(stats.ArchetypeBreakdown, ArchetypeStats{
			ID:          int(a.id),
			Key:         a.key.String(),
			Components:  names,
			EntityCount: a.length,
			Capacity:    a.capacity,
		})
	}
	return stats
}
