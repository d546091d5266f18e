package ecs

// WorldStats is a point-in-time summary of a world's contents.
type WorldStats struct {
	EntityCount      int
	NamedEntityCount int
	AttributeCount   int
	ResourceCount    int
	ResourcesSet     int
	Attributes       []AttributeStats
	ResourceTypes    []string
}

// AttributeStats describes one attribute store.
type AttributeStats struct {
	Name  string
	Count int
}

// CollectStats gathers statistics about the world. Attributes are listed in
// registration order.
func (w *World) CollectStats() WorldStats {
	stats := WorldStats{
		EntityCount:      w.pool.count(),
		NamedEntityCount: len(w.names),
		AttributeCount:   len(w.attributeOrder),
		ResourceCount:    len(w.resourceOrder),
		Attributes:       make([]AttributeStats, 0, len(w.attributeOrder)),
		ResourceTypes:    make([]string, 0, len(w.resourceOrder)),
	}

	for _, key := range w.attributeOrder {
		stats.Attributes = append(stats.Attributes, AttributeStats{
			Name:  key.Name(),
			Count: key.Len(),
		})
	}

	for _, key := range w.resourceOrder {
		stats.ResourceTypes = append(stats.ResourceTypes, key.Type().String())
		if key.Exists() {
			stats.ResourcesSet++
		}
	}

	return stats
}
