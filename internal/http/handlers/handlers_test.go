package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hongminglow/rta-portal/internal/auth"
	"github.com/hongminglow/rta-portal/internal/events"
	"github.com/hongminglow/rta-portal/internal/models"
	"github.com/hongminglow/rta-portal/internal/models/dto"
	"github.com/hongminglow/rta-portal/internal/portfolio"
	"github.com/hongminglow/rta-portal/internal/session"
	"github.com/hongminglow/rta-portal/internal/storage/memory"
)

const (
	password    = "Sup3rSecret!"
	adminSecret = "let-me-in"
)

type env struct {
	t         *testing.T
	mux       *http.ServeMux
	store     *memory.Store
	sessions  *session.Store
	publisher *events.Recorder
}

func newEnv(t *testing.T) *env {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store := memory.New()
	tokens := auth.NewTokenManager("handler-secret", "rta-test", time.Hour)
	sessions := session.NewStore(client)
	provider := session.NewResolver(tokens, sessions, store)
	rec := &events.Recorder{}
	svc := portfolio.NewService(store, rec, portfolio.Limits{Min: decimal.NewFromInt(100), Max: decimal.NewFromInt(1_000_000)})

	mux := http.NewServeMux()
	NewHealthHandler(time.Now(), map[string]Check{"database": store.Ping}).Register(mux)
	NewAuthHandler(store, tokens, sessions, provider, adminSecret).Register(mux, func(h http.Handler) http.Handler { return h })
	NewInvestorHandler(svc, provider).Register(mux)
	NewAdminHandler(store, svc, sessions, rec, provider).Register(mux)
	NewAreaHandler(svc, provider).Register(mux)

	return &env{t: t, mux: mux, store: store, sessions: sessions, publisher: rec}
}

func (e *env) do(method, path, token string, body any) *httptest.ResponseRecorder {
	e.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(e.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.mux.ServeHTTP(rec, req)
	return rec
}

type envelope[T any] struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    T      `json:"data"`
}

func data[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out envelope[T]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out.Data
}

func message(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var out envelope[json.RawMessage]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out.Message
}

func (e *env) seed(user models.User) models.User {
	e.t.Helper()
	hash, err := auth.HashPassword(password)
	require.NoError(e.t, err)
	user.PasswordHash = hash
	created, err := e.store.CreateUser(context.Background(), user)
	require.NoError(e.t, err)
	return created
}

func (e *env) login(area, email string) string {
	e.t.Helper()
	rec := e.do(http.MethodPost, "/api/"+area+"/auth/login", "", dto.LoginRequest{Email: email, Password: password})
	require.Equal(e.t, http.StatusOK, rec.Code, rec.Body.String())
	return data[dto.LoginResponse](e.t, rec).Token
}

func (e *env) registerInvestor(email string) models.User {
	e.t.Helper()
	rec := e.do(http.MethodPost, "/api/investor/auth/register", "", dto.RegisterInvestorRequest{
		Email: email, Password: password, FullName: "Asha Rao", PhoneNumber: "+919800000001",
	})
	require.Equal(e.t, http.StatusCreated, rec.Code, rec.Body.String())
	return data[models.User](e.t, rec)
}

func TestHealth(t *testing.T) {
	e := newEnv(t)
	rec := e.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	body := data[map[string]any](t, rec)
	assert.Equal(t, "ok", body["status"])
}

func TestInvestorRegisterAndLogin(t *testing.T) {
	e := newEnv(t)
	user := e.registerInvestor("Asha@Example.com")
	assert.Equal(t, "I001", user.InvestorID)
	assert.Equal(t, models.RoleInvestor, user.Role)
	assert.Equal(t, "asha@example.com", user.Email)

	rec := e.do(http.MethodPost, "/api/investor/auth/register", "", dto.RegisterInvestorRequest{
		Email: "asha@example.com", Password: password, FullName: "Dup",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = e.do(http.MethodPost, "/api/investor/auth/register", "", dto.RegisterInvestorRequest{Email: "bad", Password: "short"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, message(t, rec), "email must be a valid email address")

	rec = e.do(http.MethodPost, "/api/investor/auth/login", "", dto.LoginRequest{Email: "asha@example.com", Password: password})
	require.Equal(t, http.StatusOK, rec.Code)
	login := data[dto.LoginResponse](t, rec)
	assert.Equal(t, "Bearer", login.TokenType)
	assert.Equal(t, "/dashboard", login.Home)
	assert.NotNil(t, login.User.LastLogin)
	require.NotEmpty(t, rec.Result().Cookies())
	assert.Equal(t, session.CookieName, rec.Result().Cookies()[0].Name)

	me := e.do(http.MethodGet, "/api/auth/me", login.Token, nil)
	require.Equal(t, http.StatusOK, me.Code)
	assert.Equal(t, "investor", data[meResponse](t, me).Area)

	profile := e.do(http.MethodGet, "/api/investor/profile", login.Token, nil)
	require.Equal(t, http.StatusOK, profile.Code)
	assert.Equal(t, "Asha Rao", data[models.User](t, profile).FullName)
}

func TestLoginRejectsOtherAreas(t *testing.T) {
	e := newEnv(t)
	e.registerInvestor("inv@example.com")
	e.seed(models.User{Email: "amc@example.com", Role: models.RoleAMC, AMCID: "AMC001"})

	for _, area := range []string{"admin", "amc", "distributor", "sebi"} {
		rec := e.do(http.MethodPost, "/api/"+area+"/auth/login", "", dto.LoginRequest{Email: "inv@example.com", Password: password})
		assert.Equal(t, http.StatusForbidden, rec.Code, area)
	}
	rec := e.do(http.MethodPost, "/api/investor/auth/login", "", dto.LoginRequest{Email: "amc@example.com", Password: password})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	assert.NotEmpty(t, e.login("amc", "amc@example.com"))
}

func TestLoginLocksAfterRepeatedFailures(t *testing.T) {
	e := newEnv(t)
	e.registerInvestor("lock@example.com")

	wrong := dto.LoginRequest{Email: "lock@example.com", Password: "wrong-password"}
	for i := 1; i < models.MaxFailedLogins; i++ {
		assert.Equal(t, http.StatusUnauthorized, e.do(http.MethodPost, "/api/investor/auth/login", "", wrong).Code, "attempt %d", i)
	}
	rec := e.do(http.MethodPost, "/api/investor/auth/login", "", wrong)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = e.do(http.MethodPost, "/api/investor/auth/login", "", dto.LoginRequest{Email: "lock@example.com", Password: password})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "account is locked", message(t, rec))

	rec = e.do(http.MethodPost, "/api/investor/auth/login", "", dto.LoginRequest{Email: "nobody@example.com", Password: password})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLogoutEndsSession(t *testing.T) {
	e := newEnv(t)
	e.registerInvestor("out@example.com")
	token := e.login("investor", "out@example.com")

	rec := e.do(http.MethodPost, "/api/auth/logout", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "/login", data[map[string]string](t, rec)["redirect_to"])

	assert.Equal(t, http.StatusUnauthorized, e.do(http.MethodGet, "/api/auth/me", token, nil).Code)
	assert.Equal(t, http.StatusUnauthorized, e.do(http.MethodGet, "/api/investor/folios", token, nil).Code)
}

func TestInvestorTransactions(t *testing.T) {
	e := newEnv(t)
	e.registerInvestor("buyer@example.com")
	token := e.login("investor", "buyer@example.com")

	schemes := e.do(http.MethodGet, "/api/investor/transactions/schemes", "", nil)
	require.Equal(t, http.StatusOK, schemes.Code)
	assert.Len(t, data[[]models.Scheme](t, schemes), 3)

	rec := e.do(http.MethodPost, "/api/investor/transactions/purchase", token, map[string]any{
		"scheme_id": "SCH002", "amount": "1285", "plan": "Growth", "payment_mode": "upi",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	tx := data[models.Transaction](t, rec)
	assert.Equal(t, models.TxFreshPurchase, tx.Type)
	assert.Equal(t, "upi", tx.PaymentMode)
	folio := tx.FolioNumber

	rec = e.do(http.MethodPost, "/api/investor/transactions/purchase", token, map[string]any{
		"scheme_id": "SCH002", "amount": 50, "plan": "Growth",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = e.do(http.MethodPost, "/api/investor/transactions/redemption", token, map[string]any{
		"folio_number": folio, "units": "10", "all_units": true,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, message(t, rec), "exactly one")

	rec = e.do(http.MethodPost, "/api/investor/transactions/redemption", token, map[string]any{
		"folio_number": folio, "units": "10",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.True(t, data[models.Transaction](t, rec).Units.Equal(decimal.NewFromInt(-10)))

	rec = e.do(http.MethodGet, "/api/investor/transactions/history?limit=1", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	history := data[[]models.Transaction](t, rec)
	require.Len(t, history, 1)
	assert.Equal(t, models.TxRedemption, history[0].Type)

	rec = e.do(http.MethodGet, "/api/investor/transactions/portfolio", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	summary := data[portfolio.Summary](t, rec)
	assert.Equal(t, 1, summary.FolioCount)
	assert.True(t, summary.TotalInvestment.Equal(decimal.RequireFromString("1156.5")), summary.TotalInvestment.String())

	rec = e.do(http.MethodGet, "/api/investor/folios/"+folio, token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, data[models.Folio](t, rec).TotalUnits.Equal(decimal.NewFromInt(90)))

	e.registerInvestor("other@example.com")
	other := e.login("investor", "other@example.com")
	assert.Equal(t, http.StatusForbidden, e.do(http.MethodGet, "/api/investor/folios/"+folio, other, nil).Code)
	assert.Equal(t, http.StatusNotFound, e.do(http.MethodGet, "/api/investor/folios/F999", other, nil).Code)

	completed := 0
	for _, evt := range e.publisher.Events() {
		if evt.Type == events.TransactionCompleted {
			completed++
		}
	}
	assert.Equal(t, 2, completed)
}

func TestInvestorSwitch(t *testing.T) {
	e := newEnv(t)
	e.registerInvestor("switcher@example.com")
	token := e.login("investor", "switcher@example.com")

	rec := e.do(http.MethodPost, "/api/investor/transactions/purchase", token, map[string]any{
		"scheme_id": "SCH002", "amount": "1285", "plan": "Growth",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	folio := data[models.Transaction](t, rec).FolioNumber

	rec = e.do(http.MethodPost, "/api/investor/transactions/switch", token, map[string]any{
		"source_folio_number": folio, "all_units": true,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, message(t, rec), "target_scheme_id is required")

	rec = e.do(http.MethodPost, "/api/investor/transactions/switch", token, map[string]any{
		"source_folio_number": folio, "target_scheme_id": "SCH001", "all_units": true,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	res := data[dto.SwitchResponse](t, rec)
	assert.Equal(t, models.TxSwitchRedemption, res.Redemption.Type)
	assert.Equal(t, models.TxSwitchPurchase, res.Purchase.Type)
	assert.Equal(t, res.Purchase.TransactionID, res.Redemption.LinkedTransactionID)
	assert.Equal(t, res.Redemption.TransactionID, res.Purchase.LinkedTransactionID)
	assert.Equal(t, res.Redemption.TransactionID, res.RedemptionTxn)
	assert.Equal(t, res.Purchase.TransactionID, res.PurchaseTxn)
	assert.True(t, res.Purchase.Amount.Equal(decimal.NewFromInt(1285)), res.Purchase.Amount.String())

	rec = e.do(http.MethodGet, "/api/investor/folios", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, data[[]models.Folio](t, rec), 2)

	e.registerInvestor("nosy@example.com")
	other := e.login("investor", "nosy@example.com")
	rec = e.do(http.MethodPost, "/api/investor/transactions/switch", other, map[string]any{
		"source_folio_number": folio, "target_scheme_id": "SCH003", "all_units": true,
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestInvestorProfileUpdate(t *testing.T) {
	e := newEnv(t)
	e.registerInvestor("profile@example.com")
	token := e.login("investor", "profile@example.com")

	rec := e.do(http.MethodPut, "/api/investor/profile", token, map[string]any{"full_name": "  Asha R. Rao "})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	user := data[models.User](t, rec)
	assert.Equal(t, "Asha R. Rao", user.FullName)
	assert.Equal(t, "+919800000001", user.Phone)

	rec = e.do(http.MethodPut, "/api/investor/profile", token, map[string]any{"phone_number": "98-not-a-number"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = e.do(http.MethodGet, "/api/investor/profile", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Asha R. Rao", data[models.User](t, rec).FullName)

	assert.Equal(t, http.StatusUnauthorized, e.do(http.MethodPut, "/api/investor/profile", "", map[string]any{"full_name": "X"}).Code)
}

func TestInvestorChangePassword(t *testing.T) {
	e := newEnv(t)
	e.registerInvestor("rotate@example.com")
	token := e.login("investor", "rotate@example.com")
	const next = "An0therSecret!"

	rec := e.do(http.MethodPost, "/api/investor/auth/change-password", token, dto.ChangePasswordRequest{CurrentPassword: "wrong", NewPassword: next})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "current password is incorrect", message(t, rec))

	rec = e.do(http.MethodPost, "/api/investor/auth/change-password", token, dto.ChangePasswordRequest{CurrentPassword: password, NewPassword: "short"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = e.do(http.MethodPost, "/api/investor/auth/change-password", token, dto.ChangePasswordRequest{CurrentPassword: password, NewPassword: next})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = e.do(http.MethodPost, "/api/investor/auth/login", "", dto.LoginRequest{Email: "rotate@example.com", Password: password})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	rec = e.do(http.MethodPost, "/api/investor/auth/login", "", dto.LoginRequest{Email: "rotate@example.com", Password: next})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestInvestorRoutesRejectOtherRoles(t *testing.T) {
	e := newEnv(t)
	e.seed(models.User{Email: "sebi@example.com", Role: models.RoleSEBI})
	token := e.login("sebi", "sebi@example.com")

	assert.Equal(t, http.StatusForbidden, e.do(http.MethodGet, "/api/investor/folios", token, nil).Code)
	assert.Equal(t, http.StatusUnauthorized, e.do(http.MethodGet, "/api/investor/folios", "", nil).Code)
	assert.Equal(t, http.StatusOK, e.do(http.MethodGet, "/api/sebi/transactions", token, nil).Code)
}

func TestAdminRegistration(t *testing.T) {
	e := newEnv(t)
	req := dto.RegisterAdminRequest{
		Email: "ceo@rta.example", Password: password, FullName: "R. Iyer",
		EmployeeID: "EMP001", SubRole: models.SubRoleCEO, RegistrationSecret: "guess",
	}
	assert.Equal(t, http.StatusForbidden, e.do(http.MethodPost, "/api/admin/auth/register", "", req).Code)

	req.RegistrationSecret = adminSecret
	req.SubRole = "janitor"
	assert.Equal(t, http.StatusBadRequest, e.do(http.MethodPost, "/api/admin/auth/register", "", req).Code)

	req.SubRole = models.SubRoleCEO
	rec := e.do(http.MethodPost, "/api/admin/auth/register", "", req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, models.RoleAdmin, data[models.User](t, rec).Role)

	token := e.login("admin", "ceo@rta.example")
	rec = e.do(http.MethodGet, "/api/admin/auth/me", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	me := data[meResponse](t, rec)
	assert.Contains(t, me.Permissions, auth.PermAdminUsers)
	assert.Equal(t, "/admin/admindashboard", me.Home)
}

func TestAdminPermissions(t *testing.T) {
	e := newEnv(t)
	e.seed(models.User{Email: "ceo@rta.example", Role: models.RoleRTACEO})
	e.seed(models.User{Email: "cs@rta.example", Role: models.RoleAdmin, SubRole: models.SubRoleCustomerService})
	ceo := e.login("admin", "ceo@rta.example")
	cs := e.login("admin", "cs@rta.example")

	assert.Equal(t, http.StatusOK, e.do(http.MethodGet, "/api/admin/dashboard", cs, nil).Code)
	assert.Equal(t, http.StatusOK, e.do(http.MethodGet, "/api/admin/transactions", cs, nil).Code)
	assert.Equal(t, http.StatusForbidden, e.do(http.MethodGet, "/api/admin/users", cs, nil).Code)
	assert.Equal(t, http.StatusForbidden, e.do(http.MethodPut, "/api/admin/schemes/SCH001/nav", cs, map[string]any{"nav": "151"}).Code)

	rec := e.do(http.MethodGet, "/api/admin/users?role=admin", ceo, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, data[[]models.User](t, rec), 1)

	rec = e.do(http.MethodPut, "/api/admin/schemes/SCH001/nav", ceo, map[string]any{"nav": "151.5"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.True(t, data[models.Scheme](t, rec).CurrentNAV.Equal(decimal.RequireFromString("151.5")))
	assert.Equal(t, http.StatusNotFound, e.do(http.MethodPut, "/api/admin/schemes/SCH404/nav", ceo, map[string]any{"nav": "10"}).Code)
	assert.Equal(t, http.StatusBadRequest, e.do(http.MethodPut, "/api/admin/schemes/SCH001/nav", ceo, map[string]any{"nav": "0"}).Code)
}

func TestAdminSessionRevocation(t *testing.T) {
	e := newEnv(t)
	e.seed(models.User{Email: "ceo@rta.example", Role: models.RoleSuperAdmin})
	investor := e.registerInvestor("victim@example.com")
	admin := e.login("admin", "ceo@rta.example")
	first := e.login("investor", "victim@example.com")
	e.login("investor", "victim@example.com")

	path := "/api/admin/users/" + itoa(investor.ID) + "/sessions"
	rec := e.do(http.MethodGet, path, admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, data[[]session.Record](t, rec), 2)

	rec = e.do(http.MethodDelete, path, admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2, data[map[string]int](t, rec)["revoked"])
	assert.Equal(t, http.StatusUnauthorized, e.do(http.MethodGet, "/api/investor/profile", first, nil).Code)

	assert.Equal(t, http.StatusBadRequest, e.do(http.MethodGet, "/api/admin/users/abc/sessions", admin, nil).Code)
	assert.Equal(t, http.StatusNotFound, e.do(http.MethodGet, "/api/admin/users/999/sessions", admin, nil).Code)
}

func TestAMCAndSEBIViews(t *testing.T) {
	e := newEnv(t)
	e.registerInvestor("buyer@example.com")
	buyer := e.login("investor", "buyer@example.com")
	for _, scheme := range []string{"SCH001", "SCH003"} {
		rec := e.do(http.MethodPost, "/api/investor/transactions/purchase", buyer, map[string]any{"scheme_id": scheme, "amount": "5000", "plan": "Growth"})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}

	e.seed(models.User{Email: "amc@example.com", Role: models.RoleAMC, AMCID: "AMC002"})
	e.seed(models.User{Email: "orphan@example.com", Role: models.RoleAMC})
	e.seed(models.User{Email: "sebi@example.com", Role: models.RoleSEBI})
	e.seed(models.User{Email: "dist@example.com", Role: models.RoleDistributor, DistributorID: "D001"})

	amc := e.login("amc", "amc@example.com")
	rec := e.do(http.MethodGet, "/api/amc/transactions", amc, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	txs := data[[]models.Transaction](t, rec)
	require.Len(t, txs, 1)
	assert.Equal(t, "SCH003", txs[0].SchemeID)

	rec = e.do(http.MethodGet, "/api/amc/schemes", amc, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, data[[]models.Scheme](t, rec), 1)
	assert.Equal(t, http.StatusForbidden, e.do(http.MethodGet, "/api/amc/schemes", e.login("amc", "orphan@example.com"), nil).Code)

	sebi := e.login("sebi", "sebi@example.com")
	rec = e.do(http.MethodGet, "/api/sebi/summary", sebi, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	summary := data[[]amcSummary](t, rec)
	require.Len(t, summary, 2)
	assert.Equal(t, "AMC001", summary[0].AMCID)
	assert.Equal(t, 2, summary[0].Schemes)
	assert.Equal(t, 1, summary[0].Transactions)
	assert.True(t, summary[1].Purchases.Equal(decimal.NewFromInt(5000)))

	rec = e.do(http.MethodGet, "/api/distributor/profile", e.login("distributor", "dist@example.com"), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "D001", data[models.User](t, rec).DistributorID)
	assert.Equal(t, http.StatusForbidden, e.do(http.MethodGet, "/api/distributor/profile", sebi, nil).Code)
}

func itoa(n int64) string {
	b, _ := json.Marshal(n)
	return string(b)
}
