package handlers

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/hongminglow/rta-portal/internal/auth"
	"github.com/hongminglow/rta-portal/internal/guard"
	"github.com/hongminglow/rta-portal/internal/http/respond"
	"github.com/hongminglow/rta-portal/internal/logger"
	"github.com/hongminglow/rta-portal/internal/metrics"
	"github.com/hongminglow/rta-portal/internal/middleware"
	"github.com/hongminglow/rta-portal/internal/models"
	"github.com/hongminglow/rta-portal/internal/models/dto"
	"github.com/hongminglow/rta-portal/internal/session"
	"github.com/hongminglow/rta-portal/internal/storage"
)

// AuthHandler owns login, registration, logout and identity endpoints.
type AuthHandler struct {
	store       storage.UserStore
	tokens      *auth.TokenManager
	sessions    *session.Store
	provider    session.Provider
	adminSecret string
	now         func() time.Time
}

// NewAuthHandler constructs the handler.
func NewAuthHandler(store storage.UserStore, tokens *auth.TokenManager, sessions *session.Store, provider session.Provider, adminSecret string) *AuthHandler {
	return &AuthHandler{
		store:       store,
		tokens:      tokens,
		sessions:    sessions,
		provider:    provider,
		adminSecret: adminSecret,
		now:         time.Now,
	}
}

// Register attaches auth routes to the mux. limit wraps the login endpoints.
func (h *AuthHandler) Register(mux *http.ServeMux, limit func(http.Handler) http.Handler) {
	for _, req := range guard.Requirements {
		mux.Handle("POST /api/"+req.String()+"/auth/login", limit(h.login(req)))
	}
	mux.HandleFunc("POST /api/investor/auth/register", h.handleRegisterInvestor)
	mux.HandleFunc("POST /api/admin/auth/register", h.handleRegisterAdmin)

	mux.Handle("GET /api/auth/me", middleware.RequireSession(h.provider, http.HandlerFunc(h.handleMe)))
	mux.Handle("POST /api/auth/logout", middleware.RequireSession(h.provider, http.HandlerFunc(h.handleLogout)))
	mux.Handle("GET /api/admin/auth/me", middleware.RequireArea(h.provider, guard.AdminArea, http.HandlerFunc(h.handleMe)))

	mux.Handle("PUT /api/investor/profile", middleware.RequireArea(h.provider, guard.Investor, http.HandlerFunc(h.handleUpdateProfile)))
	mux.Handle("POST /api/investor/auth/change-password", middleware.RequireArea(h.provider, guard.Investor, http.HandlerFunc(h.handleChangePassword)))
}

func (h *AuthHandler) login(area guard.Requirement) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req dto.LoginRequest
		if !decode(w, r, &req) {
			return
		}
		log := logger.From(r.Context()).With().Str("area", area.String()).Logger()

		user, err := h.store.FindByEmail(r.Context(), req.Email)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				metrics.RecordLogin(area.String(), "invalid_credentials")
				respond.Error(w, http.StatusUnauthorized, "invalid email or password")
				return
			}
			writeError(w, r, err)
			return
		}
		if user.Locked() {
			metrics.RecordLogin(area.String(), "locked")
			respond.Error(w, http.StatusForbidden, "account is locked")
			return
		}
		if !user.Active() {
			metrics.RecordLogin(area.String(), "inactive")
			respond.Error(w, http.StatusForbidden, "account is not active")
			return
		}

		if !auth.CheckPassword(user.PasswordHash, req.Password) {
			updated, err := h.store.RecordLoginFailure(r.Context(), user.ID)
			if err != nil {
				writeError(w, r, err)
				return
			}
			if updated.Locked() {
				log.Warn().Int64("user_id", user.ID).Msg("account locked after repeated login failures")
				metrics.RecordLogin(area.String(), "locked")
				respond.Error(w, http.StatusForbidden, "account locked after too many failed attempts")
				return
			}
			metrics.RecordLogin(area.String(), "invalid_credentials")
			respond.Error(w, http.StatusUnauthorized, "invalid email or password")
			return
		}

		if !area.Allows(user.Role) {
			metrics.RecordLogin(area.String(), "wrong_area")
			respond.Error(w, http.StatusForbidden, "this account cannot sign in to the "+area.String()+" portal")
			return
		}

		now := h.now().UTC()
		if err := h.store.RecordLoginSuccess(r.Context(), user.ID, now); err != nil {
			writeError(w, r, err)
			return
		}
		user.FailedLoginAttempts = 0
		user.LastLogin = &now

		token, claims, err := h.tokens.Generate(user)
		if err != nil {
			log.Error().Err(err).Msg("generate token")
			respond.Error(w, http.StatusInternalServerError, "failed to generate token")
			return
		}
		rec := session.Record{
			ID:        claims.ID,
			UserID:    user.ID,
			Role:      string(user.Role),
			UserAgent: r.UserAgent(),
			IP:        clientIP(r),
			CreatedAt: now,
		}
		if err := h.sessions.Create(r.Context(), rec, h.tokens.TTL()); err != nil {
			writeError(w, r, err)
			return
		}

		http.SetCookie(w, &http.Cookie{
			Name:     session.CookieName,
			Value:    token,
			Path:     "/",
			Expires:  claims.ExpiresAt.Time,
			HttpOnly: true,
			Secure:   r.TLS != nil,
			SameSite: http.SameSiteLaxMode,
		})
		metrics.RecordLogin(area.String(), "success")
		log.Info().Int64("user_id", user.ID).Msg("login succeeded")

		owner, _ := guard.RequirementForRole(user.Role)
		respond.JSON(w, http.StatusOK, "login successful", dto.LoginResponse{
			Token:       token,
			TokenType:   "Bearer",
			ExpiresIn:   int(h.tokens.TTL().Seconds()),
			User:        user,
			Permissions: auth.Permissions(user),
			Home:        owner.HomePath(),
		})
	})
}

func (h *AuthHandler) handleRegisterInvestor(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterInvestorRequest
	if !decode(w, r, &req) {
		return
	}
	investorID, err := h.store.NextInvestorID(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.create(w, r, models.User{
		Email:      req.Email,
		FullName:   strings.TrimSpace(req.FullName),
		Phone:      strings.TrimSpace(req.PhoneNumber),
		Role:       models.RoleInvestor,
		InvestorID: investorID,
	}, req.Password)
}

func (h *AuthHandler) handleRegisterAdmin(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterAdminRequest
	if !decode(w, r, &req) {
		return
	}
	if h.adminSecret == "" {
		respond.Error(w, http.StatusForbidden, "admin registration is disabled")
		return
	}
	if subtle.ConstantTimeCompare([]byte(req.RegistrationSecret), []byte(h.adminSecret)) != 1 {
		respond.Error(w, http.StatusForbidden, "invalid registration secret")
		return
	}
	if !auth.ValidSubRole(req.SubRole) {
		respond.Error(w, http.StatusBadRequest, "unknown sub_role "+req.SubRole)
		return
	}
	h.create(w, r, models.User{
		Email:       req.Email,
		FullName:    strings.TrimSpace(req.FullName),
		Role:        models.RoleAdmin,
		SubRole:     req.SubRole,
		Permissions: req.Permissions,
		EmployeeID:  strings.TrimSpace(req.EmployeeID),
	}, req.Password)
}

func (h *AuthHandler) create(w http.ResponseWriter, r *http.Request, user models.User, password string) {
	hash, err := auth.HashPassword(password)
	if err != nil {
		respond.Error(w, http.StatusInternalServerError, "failed to hash password")
		return
	}
	user.PasswordHash = hash

	created, err := h.store.CreateUser(r.Context(), user)
	if err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			respond.Error(w, http.StatusConflict, "user already exists")
			return
		}
		writeError(w, r, err)
		return
	}
	logger.From(r.Context()).Info().Int64("user_id", created.ID).Str("role", string(created.Role)).Msg("user registered")
	respond.JSON(w, http.StatusCreated, "User created successfully", created)
}

func (h *AuthHandler) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateProfileRequest
	if !decode(w, r, &req) {
		return
	}
	update := storage.ProfileUpdate{FullName: trimmed(req.FullName), Phone: trimmed(req.PhoneNumber)}
	user, err := h.store.UpdateProfile(r.Context(), middleware.StateFrom(r.Context()).User.ID, update)
	if err != nil {
		writeError(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, "profile updated", user)
}

func (h *AuthHandler) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	var req dto.ChangePasswordRequest
	if !decode(w, r, &req) {
		return
	}
	user, err := h.store.FindByID(r.Context(), middleware.StateFrom(r.Context()).User.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if !auth.CheckPassword(user.PasswordHash, req.CurrentPassword) {
		respond.Error(w, http.StatusBadRequest, "current password is incorrect")
		return
	}
	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		respond.Error(w, http.StatusInternalServerError, "failed to hash password")
		return
	}
	if err := h.store.UpdatePassword(r.Context(), user.ID, hash); err != nil {
		writeError(w, r, err)
		return
	}
	logger.From(r.Context()).Info().Int64("user_id", user.ID).Msg("password changed")
	respond.JSON(w, http.StatusOK, "password changed successfully", nil)
}

func trimmed(v *string) *string {
	if v == nil {
		return nil
	}
	t := strings.TrimSpace(*v)
	return &t
}

type meResponse struct {
	User        models.User `json:"user"`
	Permissions []string    `json:"permissions,omitempty"`
	Area        string      `json:"area"`
	Home        string      `json:"home"`
}

func (h *AuthHandler) handleMe(w http.ResponseWriter, r *http.Request) {
	user := *middleware.StateFrom(r.Context()).User
	owner, _ := guard.RequirementForRole(user.Role)
	respond.JSON(w, http.StatusOK, "ok", meResponse{
		User:        user,
		Permissions: auth.Permissions(user),
		Area:        owner.String(),
		Home:        owner.HomePath(),
	})
}

func (h *AuthHandler) handleLogout(w http.ResponseWriter, r *http.Request) {
	state := middleware.StateFrom(r.Context())
	if err := h.sessions.Revoke(r.Context(), state.User.ID, state.SessionID); err != nil {
		writeError(w, r, err)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     session.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	owner, _ := guard.RequirementForRole(state.Role())
	respond.JSON(w, http.StatusOK, "logged out", map[string]string{"redirect_to": owner.LoginPath()})
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		return strings.TrimSpace(first)
	}
	return r.RemoteAddr
}
