package auth

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

const stateTTL = 10 * time.Minute

// StateManager issues and validates one-time OAuth state tokens. It is
// constructed at assembly and injected where needed; there is no package
// -level instance.
type StateManager struct {
	states map[string]stateEntry
	mutex  sync.RWMutex
}

type stateEntry struct {
	CreatedAt time.Time
	Provider  string
	UserAgent string
}

func NewStateManager() *StateManager {
	sm := &StateManager{
		states: make(map[string]stateEntry),
	}
	go sm.startCleanup()
	return sm
}

// GenerateState creates a new state token and stores it for validation
func (sm *StateManager) GenerateState(provider, userAgent string) (string, error) {
	logger := slog.With("component", "state_manager", "operation", "generate", "provider", provider)

	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		logger.Error("Failed to generate random bytes for state token", "error", err)
		return "", fmt.Errorf("failed to generate state token: %w", err)
	}

	state := base64.URLEncoding.EncodeToString(b)

	sm.mutex.Lock()
	sm.states[state] = stateEntry{
		CreatedAt: time.Now(),
		Provider:  provider,
		UserAgent: userAgent,
	}
	sm.mutex.Unlock()

	logger.Debug("OAuth state token generated and stored", "state_length", len(state))

	return state, nil
}

// ValidateState checks if the state token is valid and removes it (one-time use)
func (sm *StateManager) ValidateState(state, provider, userAgent string) error {
	logger := slog.With("component", "state_manager", "operation", "validate", "provider", provider)

	if state == "" {
		logger.Warn("Empty state token provided")
		return fmt.Errorf("state token is required")
	}

	sm.mutex.Lock()
	defer sm.mutex.Unlock()

	entry, exists := sm.states[state]
	if !exists {
		logger.Warn("Invalid or expired state token")
		return fmt.Errorf("invalid or expired state token")
	}

	// One-time use
	delete(sm.states, state)

	if time.Since(entry.CreatedAt) > stateTTL {
		logger.Warn("Expired state token",
			"created_at", entry.CreatedAt,
			"age_minutes", time.Since(entry.CreatedAt).Minutes())
		return fmt.Errorf("state token has expired")
	}

	if entry.Provider != provider {
		logger.Warn("State token provider mismatch",
			"expected_provider", entry.Provider,
			"received_provider", provider)
		return fmt.Errorf("state token provider mismatch")
	}

	if entry.UserAgent != userAgent {
		logger.Warn("State token user agent mismatch - possible session hijacking attempt")
	}

	logger.Debug("State token validated successfully",
		"token_age_seconds", time.Since(entry.CreatedAt).Seconds())

	return nil
}

func (sm *StateManager) startCleanup() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		sm.cleanupExpiredStates()
	}
}

func (sm *StateManager) cleanupExpiredStates() {
	logger := slog.With("component", "state_manager", "operation", "cleanup_expired")

	sm.mutex.Lock()
	defer sm.mutex.Unlock()

	now := time.Now()
	expiredCount := 0

	for state, entry := range sm.states {
		if now.Sub(entry.CreatedAt) > stateTTL {
			delete(sm.states, state)
			expiredCount++
		}
	}

	if expiredCount > 0 {
		logger.Debug("Cleaned up expired state tokens",
			"expired_count", expiredCount,
			"remaining_count", len(sm.states))
	}
}
