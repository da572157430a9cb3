package middleware

import (
	"context"
	"net/http"

	"github.com/hongminglow/rta-portal/internal/auth"
	"github.com/hongminglow/rta-portal/internal/guard"
	"github.com/hongminglow/rta-portal/internal/http/respond"
	"github.com/hongminglow/rta-portal/internal/metrics"
	"github.com/hongminglow/rta-portal/internal/session"
)

type stateKey struct{}

// WithState stores resolved session state on ctx.
func WithState(ctx context.Context, state session.State) context.Context {
	return context.WithValue(ctx, stateKey{}, state)
}

// StateFrom returns the session state stored by RequireSession or RequireArea.
func StateFrom(ctx context.Context) session.State {
	state, _ := ctx.Value(stateKey{}).(session.State)
	return state
}

// RequireSession admits any logged-in user, whatever the role.
func RequireSession(provider session.Provider, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		state := provider.Resolve(r)
		switch {
		case state.Loading:
			respond.Unavailable(w, "checking authentication")
			return
		case !state.LoggedIn():
			respond.Error(w, http.StatusUnauthorized, "authentication required")
			return
		}
		next.ServeHTTP(w, r.WithContext(WithState(r.Context(), state)))
	})
}

// RequireArea applies the route guard to an API route. Wait becomes 503, a redirect becomes 401 when
// logged out and 403 when the role belongs elsewhere.
func RequireArea(provider session.Provider, req guard.Requirement, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		state := provider.Resolve(r)
		decision := guard.Decide(state, req)
		metrics.RecordGuardDecision(req.String(), decision.Outcome.String())

		switch decision.Outcome {
		case guard.Wait:
			respond.Unavailable(w, "checking authentication")
		case guard.Redirect:
			if !state.LoggedIn() {
				respond.Error(w, http.StatusUnauthorized, "authentication required")
				return
			}
			respond.Error(w, http.StatusForbidden, "access restricted to the "+req.String()+" portal")
		default:
			next.ServeHTTP(w, r.WithContext(WithState(r.Context(), state)))
		}
	})
}

// RequirePermission admits admin users holding perm. It must run inside RequireArea(AdminArea).
func RequirePermission(perm string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		state := StateFrom(r.Context())
		if state.User == nil || !auth.HasPermission(*state.User, perm) {
			respond.Error(w, http.StatusForbidden, "missing permission "+perm)
			return
		}
		next.ServeHTTP(w, r)
	})
}
