package session

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/hongminglow/rta-portal/internal/auth"
	"github.com/hongminglow/rta-portal/internal/logger"
	"github.com/hongminglow/rta-portal/internal/storage"
)

// CookieName is the cookie that may carry the access token instead of the Authorization header.
const CookieName = "token"

// Resolver rehydrates session state from the request token, the session store and the user table.
type Resolver struct {
	tokens   *auth.TokenManager
	sessions *Store
	users    storage.UserStore
}

var _ Provider = (*Resolver)(nil)

// NewResolver builds the request-scoped session provider.
func NewResolver(tokens *auth.TokenManager, sessions *Store, users storage.UserStore) *Resolver {
	return &Resolver{tokens: tokens, sessions: sessions, users: users}
}

// TokenFromRequest returns the bearer token or the token cookie, whichever is present.
func TokenFromRequest(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		if token, ok := strings.CutPrefix(header, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
		return ""
	}
	if c, err := r.Cookie(CookieName); err == nil {
		return c.Value
	}
	return ""
}

// Resolve never fails. Infrastructure errors yield a loading state, anything else yields logged out.
func (res *Resolver) Resolve(r *http.Request) State {
	raw := TokenFromRequest(r)
	if raw == "" {
		return State{}
	}
	claims, err := res.tokens.Parse(raw)
	if err != nil {
		return State{}
	}
	return res.resolveClaims(r.Context(), claims)
}

func (res *Resolver) resolveClaims(ctx context.Context, claims auth.Claims) State {
	log := logger.From(ctx)

	rec, ok, err := res.sessions.Get(ctx, claims.ID)
	switch {
	case errors.Is(err, ErrUnavailable):
		log.Warn().Err(err).Msg("session lookup failed")
		return State{Loading: true}
	case err != nil:
		log.Warn().Err(err).Msg("session lookup rejected")
		return State{}
	}
	if uid, err := claims.UserID(); !ok || err != nil || uid != rec.UserID {
		return State{}
	}

	user, err := res.users.FindByID(ctx, rec.UserID)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return State{}
	case err != nil:
		log.Warn().Err(err).Int64("user_id", rec.UserID).Msg("session user lookup failed")
		return State{Loading: true}
	}
	if !user.Active() {
		return State{}
	}
	return State{User: &user, SessionID: rec.ID}
}
