package portal

import (
	"net/http"

	"github.com/hongminglow/rta-portal/internal/guard"
	"github.com/hongminglow/rta-portal/internal/http/respond"
	"github.com/hongminglow/rta-portal/internal/logger"
	"github.com/hongminglow/rta-portal/internal/metrics"
	"github.com/hongminglow/rta-portal/internal/models"
	"github.com/hongminglow/rta-portal/internal/session"
)

// View is the payload of a rendered page.
type View struct {
	Page   string            `json:"page"`
	Path   string            `json:"path"`
	Area   string            `json:"area"`
	Params map[string]string `json:"params,omitempty"`
	User   *models.User      `json:"user,omitempty"`
}

// Gate answers page requests with the guard decision for the current session.
type Gate struct {
	provider session.Provider
	pages    []Page
}

// NewGate builds a gate over the full page table.
func NewGate(provider session.Provider) *Gate {
	return &Gate{provider: provider, pages: Pages}
}

// Register mounts every page on mux as a GET route.
func (g *Gate) Register(mux *http.ServeMux) {
	for _, p := range g.pages {
		pattern := p.Path
		if pattern == "/" {
			pattern = "/{$}"
		}
		mux.Handle("GET "+pattern, g.handler(p))
	}
}

func (g *Gate) handler(p Page) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		view := View{Page: p.Name, Path: r.URL.Path, Area: "public", Params: params(r)}
		if p.Public {
			respond.JSON(w, http.StatusOK, "ok", view)
			return
		}

		state := g.provider.Resolve(r)
		decision := guard.Decide(state, p.Requirement)
		metrics.RecordGuardDecision(p.Requirement.String(), decision.Outcome.String())

		switch decision.Outcome {
		case guard.Wait:
			respond.Unavailable(w, "checking authentication")
		case guard.Redirect:
			logger.From(r.Context()).Debug().
				Str("page", p.Name).
				Str("role", string(state.Role())).
				Str("location", decision.Location).
				Msg("page redirected")
			http.Redirect(w, r, decision.Location, http.StatusFound)
		default:
			view.Area = p.Requirement.String()
			view.User = state.User
			respond.JSON(w, http.StatusOK, "ok", view)
		}
	})
}

func params(r *http.Request) map[string]string {
	if id := r.PathValue("id"); id != "" {
		return map[string]string{"id": id}
	}
	return nil
}
