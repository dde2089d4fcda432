// Package auth resolves the user acting on the ledger.
package auth

import (
	"context"
	"strings"

	"github.com/Veraticus/sharebook/internal/service"
)

type contextKey struct{}

// WithUserID returns a copy of ctx carrying userID.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, contextKey{}, userID)
}

// UserIDFromContext returns the user id stored by WithUserID.
func UserIDFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	id, ok := ctx.Value(contextKey{}).(string)
	if !ok || strings.TrimSpace(id) == "" {
		return "", false
	}
	return id, true
}

// Static always resolves the configured user. An empty UserID resolves nobody.
type Static struct {
	UserID string
}

// CurrentUserID implements service.Authenticator.
func (s Static) CurrentUserID(_ context.Context) (string, bool) {
	id := strings.TrimSpace(s.UserID)
	return id, id != ""
}

// FromContext resolves the user attached with WithUserID.
type FromContext struct{}

// CurrentUserID implements service.Authenticator.
func (FromContext) CurrentUserID(ctx context.Context) (string, bool) {
	return UserIDFromContext(ctx)
}

// Chain tries each authenticator in order and returns the first identity found.
type Chain []service.Authenticator

// CurrentUserID implements service.Authenticator.
func (c Chain) CurrentUserID(ctx context.Context) (string, bool) {
	for _, a := range c {
		if a == nil {
			continue
		}
		if id, ok := a.CurrentUserID(ctx); ok {
			return id, true
		}
	}
	return "", false
}

// Anonymous never resolves a user.
type Anonymous struct{}

// CurrentUserID implements service.Authenticator.
func (Anonymous) CurrentUserID(_ context.Context) (string, bool) {
	return "", false
}
