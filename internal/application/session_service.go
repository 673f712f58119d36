package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/example/weather-todo/internal/persistence"
)

// SessionManager holds the login state of the workspace and mirrors the user record to storage.
// Any non-empty username/password pair is accepted; there is no credential store.
type SessionManager struct {
	store  persistence.KeyValueStore
	now    func() time.Time
	logger *slog.Logger

	mu            sync.RWMutex
	authenticated bool
	user          UserRecord
}

// NewSessionManager constructs a SessionManager with the provided dependencies.
func NewSessionManager(store persistence.KeyValueStore, now func() time.Time) *SessionManager {
	return NewSessionManagerWithLogger(store, now, nil)
}

// NewSessionManagerWithLogger constructs a SessionManager with a specified logger.
func NewSessionManagerWithLogger(store persistence.KeyValueStore, now func() time.Time, logger *slog.Logger) *SessionManager {
	if now == nil {
		now = time.Now
	}
	return &SessionManager{
		store:  store,
		now:    now,
		logger: defaultLogger(logger),
	}
}

func (s *SessionManager) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "SessionManager", operation, attrs...)
}

// Restore loads a previously persisted user record. A present record logs the user back in.
func (s *SessionManager) Restore(ctx context.Context) error {
	if s == nil {
		return fmt.Errorf("SessionManager is nil")
	}
	if s.store == nil {
		return nil
	}

	logger := s.loggerWith(ctx, "Restore")

	data, updatedAt, err := readDocument(ctx, s.store, persistence.KeyUser)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			logger.DebugContext(ctx, "no persisted user")
			return nil
		}
		logger.ErrorContext(ctx, "failed to read persisted user", "error", err)
		return err
	}

	var record UserRecord
	if err := json.Unmarshal(data, &record); err != nil {
		logger.WarnContext(ctx, "ignoring malformed persisted user", "error", err)
		return nil
	}
	if record.Username == "" {
		logger.WarnContext(ctx, "ignoring persisted user without a username")
		return nil
	}

	s.mu.Lock()
	s.authenticated = true
	s.user = record
	s.mu.Unlock()

	logger.InfoContext(ctx, "session restored", append([]any{"username", record.Username}, updatedAtAttrs(updatedAt)...)...)
	return nil
}

// Login accepts any non-empty username and password. It reports false without touching state when
// either is empty, and returns an error only when the user record cannot be persisted.
func (s *SessionManager) Login(ctx context.Context, username, password string) (ok bool, err error) {
	if s == nil {
		return false, fmt.Errorf("SessionManager is nil")
	}

	logger := s.loggerWith(ctx, "Login", "username", username)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "login failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		if !ok {
			logger.InfoContext(ctx, "login rejected", "error_kind", ErrorKind(ErrInvalidCredentials))
			return
		}
		logger.InfoContext(ctx, "login succeeded")
	}()

	if username == "" || password == "" {
		return false, nil
	}

	record := UserRecord{
		Username:  username,
		LastLogin: s.now().Format(TimestampLayout),
	}

	if s.store != nil {
		data, mErr := json.Marshal(record)
		if mErr != nil {
			return false, fmt.Errorf("encode user record: %w", mErr)
		}
		if err = s.store.Put(ctx, persistence.KeyUser, data); err != nil {
			return false, err
		}
	}

	s.mu.Lock()
	s.authenticated = true
	s.user = record
	s.mu.Unlock()

	return true, nil
}

// Logout clears the persisted user record and returns to the unauthenticated state.
// The in-memory state is cleared even when the storage delete fails.
func (s *SessionManager) Logout(ctx context.Context) error {
	if s == nil {
		return fmt.Errorf("SessionManager is nil")
	}

	s.mu.Lock()
	username := s.user.Username
	s.authenticated = false
	s.user = UserRecord{}
	s.mu.Unlock()

	logger := s.loggerWith(ctx, "Logout", "username", username)

	if s.store != nil {
		if err := s.store.Delete(ctx, persistence.KeyUser); err != nil {
			logger.ErrorContext(ctx, "failed to clear persisted user", "error", err)
			return err
		}
	}

	logger.InfoContext(ctx, "logged out")
	return nil
}

// Authenticated reports whether a user is logged in.
func (s *SessionManager) Authenticated() bool {
	if s == nil {
		return false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.authenticated
}

// User returns the current user record, if any.
func (s *SessionManager) User() (UserRecord, bool) {
	if s == nil {
		return UserRecord{}, false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user, s.authenticated
}
