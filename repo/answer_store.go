package repo

import (
	"context"
	"sync"

	"CVForgeBot/model"
)

// AnswerStore persists each user's answers. Writes for one user are
// serialized by the implementation; different users are independent.
type AnswerStore interface {
	// Upsert creates the record if absent and sets field to value.
	Upsert(ctx context.Context, userID int64, field, value string) error
	// Read returns the full record or model.ErrRecordNotFound.
	Read(ctx context.Context, userID int64) (model.AnswerRecord, error)
	// Clear deletes the record. Clearing a missing record is not an error.
	Clear(ctx context.Context, userID int64) error
	Close() error
}

// MemoryAnswerStore keeps answers in process memory.
type MemoryAnswerStore struct {
	catalog *model.Catalog

	mu      sync.Mutex
	records map[int64]model.AnswerRecord
}

func NewMemoryAnswerStore(catalog *model.Catalog) *MemoryAnswerStore {
	return &MemoryAnswerStore{
		catalog: catalog,
		records: make(map[int64]model.AnswerRecord),
	}
}

func (s *MemoryAnswerStore) Upsert(_ context.Context, userID int64, field, value string) error {
	if err := s.catalog.Validate(field); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.records[userID]
	if !ok {
		record = model.NewAnswerRecord(userID)
		s.records[userID] = record
	}
	record.Values[field] = value
	return nil
}

func (s *MemoryAnswerStore) Read(_ context.Context, userID int64) (model.AnswerRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.records[userID]
	if !ok {
		return model.AnswerRecord{}, model.ErrRecordNotFound
	}
	return record.Clone(), nil
}

func (s *MemoryAnswerStore) Clear(_ context.Context, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.records, userID)
	return nil
}

func (s *MemoryAnswerStore) Close() error { return nil }
