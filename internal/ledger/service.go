// Package ledger implements the bookkeeping entry points: every call resolves the
// acting user, validates against a snapshot read inside a store transaction and
// writes atomically.
package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Veraticus/sharebook/internal/common"
	"github.com/Veraticus/sharebook/internal/service"
	"github.com/google/uuid"
)

// Service is the ledger's public surface.
type Service struct {
	store service.Storage
	auth  service.Authenticator
	now   func() time.Time
	newID func() string
	loc   *time.Location

	// Serialize read-validate-write on the aggregates whose invariants span rows.
	shareholderMu sync.Mutex
	categoryMu    sync.Mutex
}

// Option configures a Service.
type Option func(*Service)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIDGenerator replaces the random UUID generator.
func WithIDGenerator(newID func() string) Option {
	return func(s *Service) {
		if newID != nil {
			s.newID = newID
		}
	}
}

// WithLocation sets the time zone used to bucket transactions into months.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// New creates a ledger over store. A nil authenticator rejects every call.
func New(store service.Storage, auth service.Authenticator, opts ...Option) *Service {
	s := &Service{
		store: store,
		auth:  auth,
		now:   time.Now,
		newID: uuid.NewString,
		loc:   time.Local,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Location returns the time zone used for month buckets.
func (s *Service) Location() *time.Location {
	return s.loc
}

// requireUser must run before any store access.
func (s *Service) requireUser(ctx context.Context) (string, error) {
	if s.auth == nil {
		return "", common.ErrUnauthenticated
	}
	userID, ok := s.auth.CurrentUserID(ctx)
	if !ok {
		return "", common.ErrUnauthenticated
	}
	return userID, nil
}

// inTx runs fn in a store transaction. Only the tx may be used inside fn; the
// store holds a single connection.
func (s *Service) inTx(ctx context.Context, fn func(tx service.Tx) error) error {
	tx, err := s.store.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	committed := false
	defer func() {
		if committed {
			return
		}
		if rbErr := tx.Rollback(); rbErr != nil {
			slog.Debug("rollback failed", "error", rbErr)
		}
	}()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	committed = true
	return nil
}

// timestamp truncates to the millisecond precision the store keeps.
func (s *Service) timestamp() time.Time {
	return s.now().Truncate(time.Millisecond)
}
