package handlers

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/hongminglow/rta-portal/internal/guard"
	"github.com/hongminglow/rta-portal/internal/http/respond"
	"github.com/hongminglow/rta-portal/internal/middleware"
	"github.com/hongminglow/rta-portal/internal/models"
	"github.com/hongminglow/rta-portal/internal/portfolio"
	"github.com/hongminglow/rta-portal/internal/session"
	"github.com/hongminglow/rta-portal/internal/storage"
)

// AreaHandler serves the AMC, distributor and SEBI areas.
type AreaHandler struct {
	svc      *portfolio.Service
	provider session.Provider
}

// NewAreaHandler constructs the handler.
func NewAreaHandler(svc *portfolio.Service, provider session.Provider) *AreaHandler {
	return &AreaHandler{svc: svc, provider: provider}
}

// Register attaches the AMC, distributor and SEBI routes to the mux.
func (h *AreaHandler) Register(mux *http.ServeMux) {
	mux.Handle("GET /api/amc/schemes", h.amc(h.handleAMCSchemes))
	mux.Handle("GET /api/amc/transactions", h.amc(h.handleAMCTransactions))
	mux.Handle("GET /api/distributor/profile", middleware.RequireArea(h.provider, guard.DistributorArea, http.HandlerFunc(h.handleProfile)))
	mux.Handle("GET /api/sebi/transactions", middleware.RequireArea(h.provider, guard.SEBIArea, http.HandlerFunc(h.handleSEBITransactions)))
	mux.Handle("GET /api/sebi/summary", middleware.RequireArea(h.provider, guard.SEBIArea, http.HandlerFunc(h.handleSEBISummary)))
}

// amc gates a route to AMC users that are linked to an AMC.
func (h *AreaHandler) amc(fn http.HandlerFunc) http.Handler {
	return middleware.RequireArea(h.provider, guard.AMCArea, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if amcID(r) == "" {
			respond.Error(w, http.StatusForbidden, "no AMC linked to this account")
			return
		}
		fn(w, r)
	}))
}

func amcID(r *http.Request) string {
	return middleware.StateFrom(r.Context()).User.AMCID
}

func (h *AreaHandler) handleAMCSchemes(w http.ResponseWriter, r *http.Request) {
	schemes, err := h.svc.Schemes(r.Context(), amcID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, "ok", schemes)
}

func (h *AreaHandler) handleAMCTransactions(w http.ResponseWriter, r *http.Request) {
	txs, err := h.svc.Transactions(r.Context(), storage.TransactionFilter{
		AMCID: amcID(r),
		Limit: queryInt(r, "limit", portfolio.DefaultHistoryLimit),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, "ok", txs)
}

func (h *AreaHandler) handleProfile(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, http.StatusOK, "ok", middleware.StateFrom(r.Context()).User)
}

func (h *AreaHandler) handleSEBITransactions(w http.ResponseWriter, r *http.Request) {
	txs, err := h.svc.Transactions(r.Context(), storage.TransactionFilter{
		AMCID: r.URL.Query().Get("amc_id"),
		Limit: queryInt(r, "limit", portfolio.DefaultHistoryLimit),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, "ok", txs)
}

type amcSummary struct {
	AMCID         string          `json:"amc_id"`
	Schemes       int             `json:"total_schemes"`
	Transactions  int             `json:"total_transactions"`
	Purchases     decimal.Decimal `json:"purchase_amount"`
	Redemptions   decimal.Decimal `json:"redemption_amount"`
	ExitLoadTaken decimal.Decimal `json:"exit_load_amount"`
}

// handleSEBISummary aggregates the most recent transactions per AMC.
func (h *AreaHandler) handleSEBISummary(w http.ResponseWriter, r *http.Request) {
	schemes, err := h.svc.Schemes(r.Context(), "")
	if err != nil {
		writeError(w, r, err)
		return
	}
	txs, err := h.svc.Transactions(r.Context(), storage.TransactionFilter{Limit: portfolio.MaxHistoryLimit})
	if err != nil {
		writeError(w, r, err)
		return
	}

	byAMC := map[string]*amcSummary{}
	order := []string{}
	entry := func(id string) *amcSummary {
		s, ok := byAMC[id]
		if !ok {
			s = &amcSummary{AMCID: id, Purchases: decimal.Zero, Redemptions: decimal.Zero, ExitLoadTaken: decimal.Zero}
			byAMC[id] = s
			order = append(order, id)
		}
		return s
	}
	for _, sc := range schemes {
		entry(sc.AMCID).Schemes++
	}
	for _, tx := range txs {
		s := entry(tx.AMCID)
		s.Transactions++
		switch tx.Type {
		case models.TxRedemption, models.TxSwitchRedemption:
			s.Redemptions = s.Redemptions.Add(tx.Amount)
			s.ExitLoadTaken = s.ExitLoadTaken.Add(tx.ExitLoadAmount)
		default:
			s.Purchases = s.Purchases.Add(tx.Amount)
		}
	}

	out := make([]amcSummary, 0, len(order))
	for _, id := range order {
		out = append(out, *byAMC[id])
	}
	respond.JSON(w, http.StatusOK, "ok", out)
}
