package access

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

type grantKey struct {
	viewerID  uuid.UUID
	profileID uuid.UUID
}

// GrantStore holds password grants in memory. A grant unlocks one profile for
// one viewer until it expires.
type GrantStore struct {
	mu     sync.Mutex
	grants map[grantKey]time.Time // expiry per viewer+profile
	ttl    time.Duration
	nowFn  func() time.Time
}

func NewGrantStore(ttl time.Duration) *GrantStore {
	return &GrantStore{
		grants: make(map[grantKey]time.Time),
		ttl:    ttl,
		nowFn:  time.Now,
	}
}

// Grant records a fresh grant and returns its expiry. Granting again resets
// the clock.
func (s *GrantStore) Grant(viewerID, profileID uuid.UUID) time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	expiry := s.nowFn().Add(s.ttl)
	s.grants[grantKey{viewerID, profileID}] = expiry
	return expiry
}

// ExpiresAt returns the expiry of an active grant, or the zero time when no
// unexpired grant exists.
func (s *GrantStore) ExpiresAt(viewerID, profileID uuid.UUID) time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := grantKey{viewerID, profileID}
	expiry, ok := s.grants[key]
	if !ok {
		return time.Time{}
	}
	if !expiry.After(s.nowFn()) {
		delete(s.grants, key)
		return time.Time{}
	}
	return expiry
}

// RevokeProfile drops every outstanding grant for a profile. A grant earned
// under an old password must not survive a rotation or removal of the gate.
func (s *GrantStore) RevokeProfile(profileID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key := range s.grants {
		if key.profileID == profileID {
			delete(s.grants, key)
		}
	}
}

func (s *GrantStore) sweep() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.nowFn()
	for key, expiry := range s.grants {
		if !expiry.After(now) {
			delete(s.grants, key)
		}
	}
}

// StartSweeper removes expired grants on the given interval until ctx is
// cancelled. Lookups already treat expired grants as absent; the sweeper
// only bounds memory.
func (s *GrantStore) StartSweeper(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.sweep()
			}
		}
	}()
}
