package history

import (
	"encoding/json"
	"sync"

	"go.uber.org/zap"
)

// Store is the rolling local history: an append-only, capacity-bounded
// sequence of timestamped records, persisted on every mutation.
// Persistence failures are logged and swallowed; a storage quota error
// must never halt ingestion.
type Store struct {
	logger  *zap.Logger
	storage Storage
	cap     int

	mu      sync.Mutex
	records []Record
}

// NewStore creates a store and loads the persisted sequence. A missing,
// corrupt, or unparsable blob yields an empty history, never an error.
func NewStore(storage Storage, capacity int, logger *zap.Logger) *Store {
	s := &Store{
		logger:  logger,
		storage: storage,
		cap:     capacity,
	}
	s.records = s.load()
	return s
}

func (s *Store) load() []Record {
	data, err := s.storage.Load()
	if err != nil {
		s.logger.Warn("failed to read persisted history, starting empty", zap.Error(err))
		return nil
	}
	if len(data) == 0 {
		return nil
	}

	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		s.logger.Warn("persisted history is corrupt, starting empty", zap.Error(err))
		return nil
	}

	if s.cap > 0 && len(records) > s.cap {
		records = records[len(records)-s.cap:]
	}
	s.logger.Info("history loaded", zap.Int("records", len(records)))
	return records
}

// Append adds a record, evicts the oldest entries beyond the capacity,
// persists the sequence, and returns the new length.
func (s *Store) Append(rec Record) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = append(s.records, rec)
	if s.cap > 0 && len(s.records) > s.cap {
		s.records = append([]Record(nil), s.records[len(s.records)-s.cap:]...)
	}

	data, err := json.Marshal(s.records)
	if err != nil {
		s.logger.Warn("failed to serialize history", zap.Error(err))
		return len(s.records)
	}
	if err := s.storage.Save(data); err != nil {
		// One attempt, no retry: ingestion keeps running in memory.
		s.logger.Warn("failed to persist history", zap.Error(err))
	}

	return len(s.records)
}

// Len returns the number of stored records.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

// All returns a copy of the full sequence in insertion order.
func (s *Store) All() []Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Record(nil), s.records...)
}

// Query returns the records matching the filter, in insertion order.
func (s *Store) Query(f Filter) []Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []Record
	for _, rec := range s.records {
		if f.Matches(rec.TS) {
			out = append(out, rec)
		}
	}
	return out
}
