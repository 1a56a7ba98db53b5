package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	v1 "github.com/cdrlab/cdr-insights/internal/api/v1"
	"github.com/cdrlab/cdr-insights/internal/core/storage"
)

// Store is an in-memory implementation of storage.RecordStore.
// Used for development mode and tests. It deliberately does not implement
// storage.AggregateReader, so the insights engine takes the in-process
// group-by/reduce path over the snapshot.
type Store struct {
	mu      sync.RWMutex
	records map[string]*v1.CdrRecord
}

// NewStore creates an empty in-memory record store.
func NewStore() *Store {
	return &Store{
		records: make(map[string]*v1.CdrRecord),
	}
}

// SaveRecords appends a batch atomically. The batch is checked against the
// store and against itself before anything is written; a duplicate reference
// rejects the whole batch with storage.ErrDuplicate.
func (s *Store) SaveRecords(ctx context.Context, records []*v1.CdrRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[string]struct{}, len(records))
	for _, record := range records {
		if _, exists := s.records[record.Reference]; exists {
			return fmt.Errorf("reference %q: %w", record.Reference, storage.ErrDuplicate)
		}
		if _, dup := seen[record.Reference]; dup {
			return fmt.Errorf("reference %q: %w", record.Reference, storage.ErrDuplicate)
		}
		seen[record.Reference] = struct{}{}
	}

	for _, record := range records {
		clone := *record
		s.records[record.Reference] = &clone
	}
	return nil
}

// ListRecords returns a snapshot of all records ordered by reference, the
// same iteration order the postgres adapter produces. Copies are returned to
// prevent external modification.
func (s *Store) ListRecords(ctx context.Context) ([]*v1.CdrRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := make([]*v1.CdrRecord, 0, len(s.records))
	for _, record := range s.records {
		clone := *record
		records = append(records, &clone)
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].Reference < records[j].Reference
	})
	return records, nil
}
