package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/hongminglow/rta-portal/internal/auth"
	"github.com/hongminglow/rta-portal/internal/events"
	"github.com/hongminglow/rta-portal/internal/guard"
	"github.com/hongminglow/rta-portal/internal/http/respond"
	"github.com/hongminglow/rta-portal/internal/logger"
	"github.com/hongminglow/rta-portal/internal/middleware"
	"github.com/hongminglow/rta-portal/internal/models"
	"github.com/hongminglow/rta-portal/internal/models/dto"
	"github.com/hongminglow/rta-portal/internal/portfolio"
	"github.com/hongminglow/rta-portal/internal/session"
	"github.com/hongminglow/rta-portal/internal/storage"
)

// AdminHandler serves the RTA back-office area. Every route is permission-checked.
type AdminHandler struct {
	users     storage.UserStore
	svc       *portfolio.Service
	sessions  *session.Store
	publisher events.Publisher
	provider  session.Provider
}

// NewAdminHandler constructs the handler.
func NewAdminHandler(users storage.UserStore, svc *portfolio.Service, sessions *session.Store, publisher events.Publisher, provider session.Provider) *AdminHandler {
	return &AdminHandler{users: users, svc: svc, sessions: sessions, publisher: publisher, provider: provider}
}

// Register attaches admin routes to the mux.
func (h *AdminHandler) Register(mux *http.ServeMux) {
	h.handle(mux, "GET /api/admin/dashboard", auth.PermViewDashboard, h.handleDashboard)
	h.handle(mux, "GET /api/admin/transactions", auth.PermReadTransactions, h.handleTransactions)
	h.handle(mux, "GET /api/admin/users", auth.PermAdminUsers, h.handleUsers)
	h.handle(mux, "GET /api/admin/users/{id}/sessions", auth.PermAdminUsers, h.handleListSessions)
	h.handle(mux, "DELETE /api/admin/users/{id}/sessions", auth.PermAdminUsers, h.handleRevokeSessions)
	h.handle(mux, "PUT /api/admin/schemes/{scheme_id}/nav", auth.PermWriteOperations, h.handleUpdateNAV)
}

func (h *AdminHandler) handle(mux *http.ServeMux, pattern, perm string, fn http.HandlerFunc) {
	mux.Handle(pattern, middleware.RequireArea(h.provider, guard.AdminArea, middleware.RequirePermission(perm, fn)))
}

type dashboard struct {
	UsersByRole        map[string]int       `json:"users_by_role"`
	Schemes            int                  `json:"total_schemes"`
	RecentTransactions []models.Transaction `json:"recent_transactions"`
}

func (h *AdminHandler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.ListUsers(r.Context(), "")
	if err != nil {
		writeError(w, r, err)
		return
	}
	schemes, err := h.svc.Schemes(r.Context(), "")
	if err != nil {
		writeError(w, r, err)
		return
	}
	recent, err := h.svc.Transactions(r.Context(), storage.TransactionFilter{Limit: 10})
	if err != nil {
		writeError(w, r, err)
		return
	}

	byRole := map[string]int{}
	for _, u := range users {
		owner, _ := guard.RequirementForRole(u.Role)
		byRole[owner.String()]++
	}
	respond.JSON(w, http.StatusOK, "ok", dashboard{UsersByRole: byRole, Schemes: len(schemes), RecentTransactions: recent})
}

func (h *AdminHandler) handleTransactions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	txs, err := h.svc.Transactions(r.Context(), storage.TransactionFilter{
		InvestorID:  q.Get("investor_id"),
		AMCID:       q.Get("amc_id"),
		FolioNumber: q.Get("folio_number"),
		Limit:       queryInt(r, "limit", portfolio.DefaultHistoryLimit),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, "ok", txs)
}

func (h *AdminHandler) handleUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.ListUsers(r.Context(), models.ParseRole(r.URL.Query().Get("role")))
	if err != nil {
		writeError(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, "ok", users)
}

func (h *AdminHandler) targetUser(w http.ResponseWriter, r *http.Request) (models.User, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		respond.Error(w, http.StatusBadRequest, "invalid user id")
		return models.User{}, false
	}
	user, err := h.users.FindByID(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return models.User{}, false
	}
	return user, true
}

func (h *AdminHandler) handleListSessions(w http.ResponseWriter, r *http.Request) {
	user, ok := h.targetUser(w, r)
	if !ok {
		return
	}
	records, err := h.sessions.List(r.Context(), user.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, "ok", records)
}

func (h *AdminHandler) handleRevokeSessions(w http.ResponseWriter, r *http.Request) {
	user, ok := h.targetUser(w, r)
	if !ok {
		return
	}
	n, err := h.sessions.RevokeAll(r.Context(), user.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	actor := middleware.StateFrom(r.Context()).User
	log := logger.From(r.Context())
	log.Info().Int64("user_id", user.ID).Int64("revoked_by", actor.ID).Int("sessions", n).Msg("sessions revoked")
	payload := map[string]any{"user_id": user.ID, "revoked_by": actor.ID, "sessions": n}
	if evt, err := events.New(r.Context(), events.SessionsRevoked, payload); err == nil {
		if err := h.publisher.Publish(r.Context(), evt); err != nil {
			log.Error().Err(err).Str("event", events.SessionsRevoked).Msg("publish event failed")
		}
	}
	respond.JSON(w, http.StatusOK, "sessions revoked", map[string]int{"revoked": n})
}

func (h *AdminHandler) handleUpdateNAV(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateNAVRequest
	if !decode(w, r, &req) {
		return
	}
	var navDate time.Time
	if req.NAVDate != nil {
		navDate = req.NAVDate.UTC().Truncate(24 * time.Hour)
	}
	scheme, err := h.svc.UpdateNAV(r.Context(), r.PathValue("scheme_id"), req.NAV, navDate)
	if err != nil {
		writeError(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, "nav updated", scheme)
}
