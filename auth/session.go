// Package auth holds the session state: the current identity and opaque
// credential, or absent. Exactly one session is live at a time.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"

	"orbit-social-client/models"
	"orbit-social-client/remote"
	"orbit-social-client/store"
)

// Remote is the slice of the remote client the session needs.
type Remote interface {
	Login(ctx context.Context, username, password string) (models.Identity, error)
}

// Session gates which cache entries count as "mine". An absent session
// means all liked flags are computed against the sentinel non-user (id 0).
type Session struct {
	mu       sync.RWMutex
	store    store.Store
	remote   Remote
	sealer   *Sealer
	identity *models.Identity
	status   models.Status
	errMsg   string
}

func NewSession(st store.Store, r Remote, sealer *Sealer) *Session {
	return &Session{store: st, remote: r, sealer: sealer, status: models.StatusIdle}
}

// Rehydrate probes the durable store once, before first use, so a
// returning user is not forced to re-authenticate. No network call is
// made. A missing or unreadable saved session simply leaves the session
// anonymous.
func (s *Session) Rehydrate() error {
	userJSON, haveUser, err := s.store.Get(store.KeyUser)
	if err != nil {
		return fmt.Errorf("failed to read saved identity: %w", err)
	}
	sealedToken, haveToken, err := s.store.Get(store.KeyToken)
	if err != nil {
		return fmt.Errorf("failed to read saved credential: %w", err)
	}
	if !haveUser || !haveToken {
		return nil
	}

	var identity models.Identity
	if err := json.Unmarshal([]byte(userJSON), &identity); err != nil {
		log.Printf("Discarding unreadable saved identity: %v", err)
		return nil
	}

	token := sealedToken
	if s.sealer != nil {
		token, err = s.sealer.Open(sealedToken)
		if err != nil {
			log.Printf("Discarding saved credential: %v", err)
			return nil
		}
	}
	identity.Token = token

	s.mu.Lock()
	s.identity = &identity
	s.mu.Unlock()
	log.Printf("Restored session for user %d (%s)", identity.ID, identity.Username)
	return nil
}

// SetCredentials establishes the identity/credential pair directly.
// Calling it again with the same pair is a no-op.
func (s *Session) SetCredentials(identity models.Identity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.identity = &identity
}

// Login authenticates against the remote endpoint. On success the
// identity and credential are stored in memory and durably; on failure
// the error message is recorded and the existing session is untouched.
func (s *Session) Login(ctx context.Context, username, password string) error {
	s.mu.Lock()
	s.status = models.StatusLoading
	s.errMsg = ""
	s.mu.Unlock()

	identity, err := s.remote.Login(ctx, username, password)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.status = models.StatusFailed
		s.errMsg = loginErrorMessage(err)
		return err
	}

	s.identity = &identity
	s.status = models.StatusSucceeded
	s.persistLocked(identity)
	return nil
}

// Logout clears memory and durable storage unconditionally.
func (s *Session) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.identity = nil
	s.status = models.StatusIdle
	s.errMsg = ""
	if err := s.store.Delete(store.KeyUser); err != nil {
		log.Printf("Failed to clear saved identity: %v", err)
	}
	if err := s.store.Delete(store.KeyToken); err != nil {
		log.Printf("Failed to clear saved credential: %v", err)
	}
}

// CurrentUserID returns the live identity's id, or 0 for anonymous.
func (s *Session) CurrentUserID() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.identity == nil {
		return 0
	}
	return s.identity.ID
}

// CurrentUser returns the identity's user summary, if a session is live.
func (s *Session) CurrentUser() (models.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.identity == nil {
		return models.User{}, false
	}
	return s.identity.Summary(), true
}

// Identity returns a copy of the live identity, if any. The copy's Token
// is blanked; callers that need the credential use Token.
func (s *Session) Identity() (models.Identity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.identity == nil {
		return models.Identity{}, false
	}
	identity := *s.identity
	identity.Token = ""
	return identity, true
}

// Token returns the opaque credential, or "" for anonymous.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.identity == nil {
		return ""
	}
	return s.identity.Token
}

// Status reports the last login attempt's state and error message.
func (s *Session) Status() (models.Status, string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status, s.errMsg
}

// persistLocked mirrors the identity and sealed credential to the store.
// The identity document is saved with its token blanked; the credential
// only ever lands in the store sealed.
func (s *Session) persistLocked(identity models.Identity) {
	token := identity.Token
	identity.Token = ""

	userJSON, err := json.Marshal(identity)
	if err != nil {
		log.Printf("Failed to encode identity for persistence: %v", err)
		return
	}
	if err := s.store.Set(store.KeyUser, string(userJSON)); err != nil {
		log.Printf("Failed to persist identity: %v", err)
	}

	if s.sealer != nil {
		sealed, err := s.sealer.Seal(token)
		if err != nil {
			log.Printf("Failed to seal credential: %v", err)
			return
		}
		token = sealed
	}
	if err := s.store.Set(store.KeyToken, token); err != nil {
		log.Printf("Failed to persist credential: %v", err)
	}
}

func loginErrorMessage(err error) string {
	var apiErr *remote.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return "Login failed. Please try again."
}
