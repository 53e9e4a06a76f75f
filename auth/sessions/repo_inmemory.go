package sessions

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// InMemoryRepo is the default, process-lifetime implementation of Repo.
// Expired records from abandoned handshakes are swept lazily on writes.
type InMemoryRepo struct {
	mu      sync.RWMutex
	records map[string]Record
	ttl     time.Duration
	now     func() time.Time
}

// NewInMemoryRepo creates an in-memory session repository whose records
// expire after ttl.
func NewInMemoryRepo(ttl time.Duration) *InMemoryRepo {
	return &InMemoryRepo{
		records: make(map[string]Record),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (r *InMemoryRepo) Upsert(_ context.Context, sessionID string, record Record) error {
	if sessionID == "" {
		return fmt.Errorf("sessionID is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Lazily clean up records from abandoned handshakes
	now := r.now()
	for id, rec := range r.records {
		if now.Sub(rec.CreatedAt) > r.ttl {
			delete(r.records, id)
		}
	}

	r.records[sessionID] = record
	return nil
}

func (r *InMemoryRepo) Get(_ context.Context, sessionID string) (Record, error) {
	if sessionID == "" {
		return Record{}, fmt.Errorf("sessionID is required")
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	record, ok := r.records[sessionID]
	if !ok {
		return Record{}, ErrNotFound
	}
	if r.now().Sub(record.CreatedAt) > r.ttl {
		return Record{}, ErrNotFound
	}
	return record, nil
}

func (r *InMemoryRepo) Delete(_ context.Context, sessionID string) error {
	if sessionID == "" {
		return fmt.Errorf("sessionID is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.records, sessionID)
	return nil
}
