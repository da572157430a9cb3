package handlers

import (
	"net/http"

	"github.com/hongminglow/rta-portal/internal/guard"
	"github.com/hongminglow/rta-portal/internal/http/respond"
	"github.com/hongminglow/rta-portal/internal/middleware"
	"github.com/hongminglow/rta-portal/internal/models/dto"
	"github.com/hongminglow/rta-portal/internal/portfolio"
	"github.com/hongminglow/rta-portal/internal/session"
)

// InvestorHandler serves the investor area: profile, folios and transactions.
type InvestorHandler struct {
	svc      *portfolio.Service
	provider session.Provider
}

// NewInvestorHandler constructs the handler.
func NewInvestorHandler(svc *portfolio.Service, provider session.Provider) *InvestorHandler {
	return &InvestorHandler{svc: svc, provider: provider}
}

// Register attaches investor routes to the mux.
func (h *InvestorHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/investor/transactions/schemes", h.handleSchemes)

	routes := map[string]http.HandlerFunc{
		"GET /api/investor/profile":                  h.handleProfile,
		"GET /api/investor/folios":                   h.handleFolios,
		"GET /api/investor/folios/{folio_number}":    h.handleFolio,
		"GET /api/investor/transactions/history":     h.handleHistory,
		"GET /api/investor/transactions/portfolio":   h.handlePortfolio,
		"POST /api/investor/transactions/purchase":   h.handlePurchase,
		"POST /api/investor/transactions/redemption": h.handleRedemption,
		"POST /api/investor/transactions/switch":     h.handleSwitch,
	}
	for pattern, fn := range routes {
		mux.Handle(pattern, middleware.RequireArea(h.provider, guard.Investor, h.withInvestor(fn)))
	}
}

// withInvestor rejects investor-area users that carry no investor id.
func (h *InvestorHandler) withInvestor(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if middleware.StateFrom(r.Context()).User.InvestorID == "" {
			respond.Error(w, http.StatusForbidden, "no investor profile linked to this account")
			return
		}
		next(w, r)
	})
}

func investorID(r *http.Request) string {
	return middleware.StateFrom(r.Context()).User.InvestorID
}

func (h *InvestorHandler) handleSchemes(w http.ResponseWriter, r *http.Request) {
	schemes, err := h.svc.Schemes(r.Context(), r.URL.Query().Get("amc_id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, "ok", schemes)
}

func (h *InvestorHandler) handleProfile(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, http.StatusOK, "ok", middleware.StateFrom(r.Context()).User)
}

func (h *InvestorHandler) handleFolios(w http.ResponseWriter, r *http.Request) {
	folios, err := h.svc.Folios(r.Context(), investorID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, "ok", folios)
}

func (h *InvestorHandler) handleFolio(w http.ResponseWriter, r *http.Request) {
	folio, err := h.svc.Folio(r.Context(), investorID(r), r.PathValue("folio_number"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, "ok", folio)
}

func (h *InvestorHandler) handleHistory(w http.ResponseWriter, r *http.Request) {
	txs, err := h.svc.History(r.Context(), investorID(r), queryInt(r, "limit", portfolio.DefaultHistoryLimit))
	if err != nil {
		writeError(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, "ok", txs)
}

func (h *InvestorHandler) handlePortfolio(w http.ResponseWriter, r *http.Request) {
	summary, err := h.svc.Summary(r.Context(), investorID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, "ok", summary)
}

func (h *InvestorHandler) handlePurchase(w http.ResponseWriter, r *http.Request) {
	var req dto.PurchaseRequest
	if !decode(w, r, &req) {
		return
	}
	tx, err := h.svc.Purchase(r.Context(), investorID(r), portfolio.PurchaseRequest{
		SchemeID:    req.SchemeID,
		Amount:      req.Amount,
		Plan:        req.Plan,
		PaymentMode: req.PaymentMode,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	respond.JSON(w, http.StatusCreated, "purchase completed", tx)
}

func (h *InvestorHandler) handleRedemption(w http.ResponseWriter, r *http.Request) {
	var req dto.RedemptionRequest
	if !decode(w, r, &req) {
		return
	}
	tx, err := h.svc.Redeem(r.Context(), investorID(r), portfolio.RedemptionRequest{
		FolioNumber: req.FolioNumber,
		Units:       req.Units,
		Amount:      req.Amount,
		AllUnits:    req.AllUnits,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	respond.JSON(w, http.StatusCreated, "redemption completed", tx)
}

func (h *InvestorHandler) handleSwitch(w http.ResponseWriter, r *http.Request) {
	var req dto.SwitchRequest
	if !decode(w, r, &req) {
		return
	}
	res, err := h.svc.Switch(r.Context(), investorID(r), portfolio.SwitchRequest{
		SourceFolioNumber: req.SourceFolioNumber,
		TargetSchemeID:    req.TargetSchemeID,
		Units:             req.Units,
		Amount:            req.Amount,
		AllUnits:          req.AllUnits,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	respond.JSON(w, http.StatusCreated, "switch completed", dto.SwitchResponse{
		Redemption:    res.Redemption,
		Purchase:      res.Purchase,
		RedemptionTxn: res.Redemption.TransactionID,
		PurchaseTxn:   res.Purchase.TransactionID,
	})
}
