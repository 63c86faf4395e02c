package auth

import (
	"context"
	"sync"
	"time"
)

// RevocationStore records sessions ended by sign-out before their natural
// expiry.
type RevocationStore interface {
	Revoke(ctx context.Context, jti, uid string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

type revocationEntry struct {
	ExpiresAt time.Time
	UID       string
}

// MemoryRevocationStore keeps revoked session ids in memory. Entries are
// dropped once the session would have expired anyway. Safe for concurrent
// use.
type MemoryRevocationStore struct {
	mu      sync.RWMutex
	entries map[string]revocationEntry // jti -> entry
	userJTI map[string][]string        // uid -> jtis
	done    chan struct{}
	once    sync.Once
}

// NewMemoryRevocationStore creates a store and starts a goroutine that
// removes expired entries every 5 minutes. Call Close to stop it.
func NewMemoryRevocationStore() *MemoryRevocationStore {
	s := &MemoryRevocationStore{
		entries: make(map[string]revocationEntry),
		userJTI: make(map[string][]string),
		done:    make(chan struct{}),
	}
	go s.cleanupLoop(5 * time.Minute)
	return s
}

func (s *MemoryRevocationStore) Revoke(_ context.Context, jti, uid string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.entries[jti]; !exists && uid != "" {
		s.userJTI[uid] = append(s.userJTI[uid], jti)
	}
	s.entries[jti] = revocationEntry{ExpiresAt: expiresAt, UID: uid}
	return nil
}

func (s *MemoryRevocationStore) IsRevoked(_ context.Context, jti string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.entries[jti]
	return ok, nil
}

// CountForUser returns how many of uid's sessions are currently revoked.
func (s *MemoryRevocationStore) CountForUser(uid string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.userJTI[uid])
}

// Count returns the number of currently revoked sessions.
func (s *MemoryRevocationStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Close stops the cleanup goroutine. Safe to call more than once.
func (s *MemoryRevocationStore) Close() {
	s.once.Do(func() { close(s.done) })
}

func (s *MemoryRevocationStore) cleanupLoop(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case now := <-ticker.C:
			s.cleanup(now)
		}
	}
}

func (s *MemoryRevocationStore) cleanup(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for jti, entry := range s.entries {
		if !now.After(entry.ExpiresAt) {
			continue
		}
		delete(s.entries, jti)

		if entry.UID == "" {
			continue
		}
		jtis := s.userJTI[entry.UID]
		for i, id := range jtis {
			if id == jti {
				jtis = append(jtis[:i], jtis[i+1:]...)
				break
			}
		}
		if len(jtis) == 0 {
			delete(s.userJTI, entry.UID)
		} else {
			s.userJTI[entry.UID] = jtis
		}
	}
}
