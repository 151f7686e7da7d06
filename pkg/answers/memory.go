package answers

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps encoded snapshots in process memory. Payloads go through
// the same envelope codec as the persistent stores.
type MemoryStore struct {
	mu   sync.Mutex
	data []byte
	now  func() time.Time
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{now: time.Now}
}

func (s *MemoryStore) Load(ctx context.Context) (Answers, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return Decode(s.data)
}

func (s *MemoryStore) Save(ctx context.Context, a Answers) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := Encode(a, s.now())
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.data = data
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	s.data = nil
	s.mu.Unlock()
	return nil
}

// Raw returns the encoded snapshot.
func (s *MemoryStore) Raw() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]byte(nil), s.data...)
}

// SetRaw replaces the encoded snapshot, for seeding tests with arbitrary
// payloads.
func (s *MemoryStore) SetRaw(data []byte) {
	s.mu.Lock()
	s.data = append([]byte(nil), data...)
	s.mu.Unlock()
}
