package access

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	qrcode "github.com/skip2/go-qrcode"
)

// ShareLink is a temporary token granting responder access to one profile.
type ShareLink struct {
	Token     string    `json:"token"`
	ProfileID uuid.UUID `json:"profile_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ShareStore holds share tokens in memory with a TTL.
type ShareStore struct {
	mu    sync.Mutex
	links map[string]ShareLink
	ttl   time.Duration
	nowFn func() time.Time
}

func NewShareStore(ttl time.Duration) *ShareStore {
	return &ShareStore{
		links: make(map[string]ShareLink),
		ttl:   ttl,
		nowFn: time.Now,
	}
}

// Create issues a new share token for a profile.
func (s *ShareStore) Create(profileID uuid.UUID) (ShareLink, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return ShareLink{}, fmt.Errorf("generating share token: %w", err)
	}
	link := ShareLink{
		Token:     hex.EncodeToString(buf),
		ProfileID: profileID,
		ExpiresAt: s.nowFn().Add(s.ttl),
	}
	s.mu.Lock()
	s.links[link.Token] = link
	s.mu.Unlock()
	return link, nil
}

// Resolve looks up an unexpired share token.
func (s *ShareStore) Resolve(token string) (ShareLink, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	link, ok := s.links[token]
	if !ok {
		return ShareLink{}, false
	}
	if !link.ExpiresAt.After(s.nowFn()) {
		delete(s.links, token)
		return ShareLink{}, false
	}
	return link, true
}

func (s *ShareStore) sweep() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.nowFn()
	for token, link := range s.links {
		if !link.ExpiresAt.After(now) {
			delete(s.links, token)
		}
	}
}

// StartSweeper removes expired tokens on the given interval until ctx is
// cancelled.
func (s *ShareStore) StartSweeper(ctx context.Context, interval time.Duration) {
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

const qrSize = 256

// EncodeShareQR renders a share URL as a PNG for scanning at the scene.
func EncodeShareQR(shareURL string) ([]byte, error) {
	png, err := qrcode.Encode(shareURL, qrcode.Medium, qrSize)
	if err != nil {
		return nil, fmt.Errorf("encoding share QR: %w", err)
	}
	return png, nil
}
