package snapshot

import (
	"sort"
	"time"

	"github.com/rs/zerolog"
)

// ContainerRecord is one container as observed in a single listing.
type ContainerRecord struct {
	Name    string
	Created time.Time // when the container was created
	Status  string    // raw status column, e.g. "Up 5 minutes"
}

// Snapshot indexes the containers of one listing by name, holding at
// most one record per name.
type Snapshot map[string]ContainerRecord

// FromRecords builds a snapshot from a container listing. Docker never
// reports the same name twice in one listing; if a duplicate shows up
// anyway, the first record wins.
func FromRecords(records []ContainerRecord, logger zerolog.Logger) Snapshot {
	snap := make(Snapshot, len(records))
	for _, rec := range records {
		if _, exists := snap[rec.Name]; exists {
			logger.Warn().Str("container", rec.Name).Msg("Duplicate container name in listing, keeping the first record")
			continue
		}
		snap[rec.Name] = rec
	}
	return snap
}

// Names returns all container names in sorted order.
func (s Snapshot) Names() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
