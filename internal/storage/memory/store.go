package memory

import (
	"context"
	"sync"
	"time"

	"tokenLauncher/internal/model"
	"tokenLauncher/internal/storage"
)

// TokenStore is an in-memory implementation of storage.TokenStore.
type TokenStore struct {
	mu     sync.RWMutex
	nextID int64
	data   map[int64]*model.TokenRecord
	now    func() time.Time
}

var _ storage.TokenStore = (*TokenStore)(nil)

// NewTokenStore creates an empty store. IDs start at 1.
func NewTokenStore() *TokenStore {
	return &TokenStore{
		data: make(map[int64]*model.TokenRecord),
		now:  time.Now,
	}
}

// Insert stores a copy of record and returns its assigned ID.
func (s *TokenStore) Insert(_ context.Context, record *model.TokenRecord) (int64, error) {
	if err := storage.ValidateRecord(record); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	stored := cloneRecord(record)
	stored.ID = s.nextID
	stored.CreatedAt = s.now().UTC()
	s.data[stored.ID] = stored
	return stored.ID, nil
}

// GetByID returns a copy of the record. Returns ErrNotFound if absent.
func (s *TokenStore) GetByID(_ context.Context, id int64) (*model.TokenRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.data[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return cloneRecord(record), nil
}

// Len returns the number of stored records.
func (s *TokenStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

func cloneRecord(r *model.TokenRecord) *model.TokenRecord {
	out := *r
	out.Description = cloneString(r.Description)
	out.TokenAddress = cloneString(r.TokenAddress)
	out.Twitter = cloneString(r.Twitter)
	out.Telegram = cloneString(r.Telegram)
	out.Website = cloneString(r.Website)
	return &out
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
