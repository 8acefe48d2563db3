package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	sharedredis "planets-api/internal/shared/redis"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Store persists sessions server-side. Absence and expiry both surface as a
// nil session with no error; callers treat that as "not authenticated".
type Store interface {
	Save(ctx context.Context, session *Session) error
	Get(ctx context.Context, id string) (*Session, error)
	Delete(ctx context.Context, id string) error
}

// Manager owns the session lifecycle: it mints ids, persists records, and
// translates between signed cookie tokens and identities.
type Manager struct {
	store  Store
	signer *TokenSigner
	ttl    time.Duration
	logger *slog.Logger
}

func NewManager(store Store, signer *TokenSigner, ttl time.Duration, logger *slog.Logger) *Manager {
	logger.Debug("Initializing session manager", "ttl", ttl)

	return &Manager{
		store:  store,
		signer: signer,
		ttl:    ttl,
		logger: logger,
	}
}

// Create persists a new session for the identity and returns the signed
// token destined for the cookie.
func (m *Manager) Create(ctx context.Context, identity Identity) (string, error) {
	logger := m.logger.With("component", "session_manager", "operation", "create", "username", identity.Username)

	now := time.Now()
	session := &Session{
		ID:        uuid.NewString(),
		Identity:  identity,
		CreatedAt: now,
		ExpiresAt: now.Add(m.ttl),
	}

	if err := m.store.Save(ctx, session); err != nil {
		logger.Error("Failed to save session", "error", err)
		return "", fmt.Errorf("failed to save session: %w", err)
	}

	token, err := m.signer.Sign(session.ID)
	if err != nil {
		logger.Error("Failed to sign session token", "error", err)
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}

	logger.Debug("Session created", "session_id", session.ID)
	return token, nil
}

// Resolve turns a cookie token back into an identity. An invalid token, an
// unknown id, and an expired record all yield (nil, nil).
func (m *Manager) Resolve(ctx context.Context, token string) (*Identity, error) {
	logger := m.logger.With("component", "session_manager", "operation", "resolve")

	sessionID, err := m.signer.Verify(token)
	if err != nil {
		logger.Debug("Session token failed verification", "error", err)
		return nil, nil
	}

	session, err := m.store.Get(ctx, sessionID)
	if err != nil {
		logger.Error("Failed to load session", "error", err, "session_id", sessionID)
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if session == nil {
		logger.Debug("Session not found or expired", "session_id", sessionID)
		return nil, nil
	}

	return &session.Identity, nil
}

// Destroy removes the server-side record for a cookie token, if any.
func (m *Manager) Destroy(ctx context.Context, token string) error {
	sessionID, err := m.signer.Verify(token)
	if err != nil {
		return nil
	}
	return m.store.Delete(ctx, sessionID)
}

const redisKeyPrefix = "session:"

// RedisStore keeps sessions in Redis with a TTL matching the session
// lifetime.
type RedisStore struct {
	client *sharedredis.Client
	ttl    time.Duration
}

func NewRedisStore(client *sharedredis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{
		client: client,
		ttl:    ttl,
	}
}

func (s *RedisStore) Save(ctx context.Context, session *Session) error {
	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	if err := s.client.Set(ctx, redisKeyPrefix+session.ID, payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store session in redis: %w", err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, id string) (*Session, error) {
	payload, err := s.client.Get(ctx, redisKeyPrefix+id).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session from redis: %w", err)
	}

	var session Session
	if err := json.Unmarshal(payload, &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &session, nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, redisKeyPrefix+id).Err(); err != nil {
		return fmt.Errorf("failed to delete session from redis: %w", err)
	}
	return nil
}

// MemoryStore keeps sessions in process memory. It serves as the fallback
// when Redis is disabled and as the test double.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]*Session),
	}
}

func (s *MemoryStore) Save(_ context.Context, session *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID] = session
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (*Session, error) {
	s.mu.RLock()
	session, ok := s.sessions[id]
	s.mu.RUnlock()

	if !ok {
		return nil, nil
	}

	if time.Now().After(session.ExpiresAt) {
		s.mu.Lock()
		delete(s.sessions, id)
		s.mu.Unlock()
		return nil, nil
	}

	return session, nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}
