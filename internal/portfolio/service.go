// Package portfolio settles purchases and redemptions against investor folios.
package portfolio

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"github.com/hongminglow/rta-portal/internal/events"
	"github.com/hongminglow/rta-portal/internal/logger"
	"github.com/hongminglow/rta-portal/internal/metrics"
	"github.com/hongminglow/rta-portal/internal/models"
	"github.com/hongminglow/rta-portal/internal/storage"
)

// Plans accepted on purchase.
var Plans = []string{"Growth", "IDCW Payout", "IDCW Reinvestment"}

// PaymentModes accepted on purchase.
var PaymentModes = []string{"net_banking", "upi", "debit_mandate", "neft", "rtgs", "cheque"}

// DefaultPaymentMode applies when a purchase names none.
const DefaultPaymentMode = "net_banking"

// History limits.
const (
	DefaultHistoryLimit = 50
	MaxHistoryLimit     = 500
)

var hundred = decimal.NewFromInt(100)

// Limits bounds the amount of a single transaction.
type Limits struct {
	Min decimal.Decimal
	Max decimal.Decimal
}

// PurchaseRequest describes a lump-sum purchase.
type PurchaseRequest struct {
	SchemeID    string
	Amount      decimal.Decimal
	Plan        string
	PaymentMode string
}

// RedemptionRequest selects what to redeem. Exactly one of Units, Amount or AllUnits must be set.
type RedemptionRequest struct {
	FolioNumber string
	Units       *decimal.Decimal
	Amount      *decimal.Decimal
	AllUnits    bool
}

// Summary aggregates an investor's holdings.
type Summary struct {
	TotalInvestment decimal.Decimal `json:"total_investment"`
	CurrentValue    decimal.Decimal `json:"current_value"`
	GainLoss        decimal.Decimal `json:"gain_loss"`
	GainLossPercent decimal.Decimal `json:"gain_loss_percentage"`
	FolioCount      int             `json:"total_folios"`
	SchemeCount     int             `json:"total_schemes"`
	Folios          []models.Folio  `json:"folios"`
}

// Service applies the transaction rules on top of a PortfolioStore.
type Service struct {
	store     storage.PortfolioStore
	publisher events.Publisher
	limits    Limits
	now       func() time.Time
}

// NewService wires the rules to persistence and the event publisher.
func NewService(store storage.PortfolioStore, publisher events.Publisher, limits Limits) *Service {
	if publisher == nil {
		publisher = events.Noop{}
	}
	return &Service{store: store, publisher: publisher, limits: limits, now: time.Now}
}

func (s *Service) today() time.Time {
	return s.now().UTC().Truncate(24 * time.Hour)
}

// Schemes lists the schemes of one AMC, or all schemes when amcID is empty.
func (s *Service) Schemes(ctx context.Context, amcID string) ([]models.Scheme, error) {
	return s.store.ListSchemes(ctx, amcID)
}

// Folios lists an investor's folios.
func (s *Service) Folios(ctx context.Context, investorID string) ([]models.Folio, error) {
	return s.store.ListFolios(ctx, investorID)
}

// Folio returns one folio owned by the investor.
func (s *Service) Folio(ctx context.Context, investorID, folioNumber string) (models.Folio, error) {
	folio, err := s.store.FindFolio(ctx, folioNumber)
	if err != nil {
		return models.Folio{}, err
	}
	if folio.InvestorID != investorID {
		return models.Folio{}, ErrForbidden
	}
	return folio, nil
}

// Purchase buys units at the current NAV, opening a folio when the investor has none in the scheme.
func (s *Service) Purchase(ctx context.Context, investorID string, req PurchaseRequest) (models.Transaction, error) {
	if req.PaymentMode == "" {
		req.PaymentMode = DefaultPaymentMode
	}
	if err := s.checkPurchase(req); err != nil {
		s.rejected(models.TxAdditionalPurchase)
		return models.Transaction{}, err
	}

	date := s.today()
	tx, err := s.store.SettleByScheme(ctx, investorID, req.SchemeID, func(scheme models.Scheme, folio *models.Folio, isNew bool) (models.Transaction, error) {
		units, err := purchaseLeg(scheme, folio, req.Amount, date)
		if err != nil {
			return models.Transaction{}, err
		}
		nav := scheme.CurrentNAV

		txType := models.TxAdditionalPurchase
		if isNew {
			txType = models.TxFreshPurchase
		}
		return models.Transaction{
			InvestorID:     investorID,
			SchemeID:       scheme.SchemeID,
			AMCID:          scheme.AMCID,
			Type:           txType,
			Date:           date,
			Amount:         req.Amount,
			NAVPerUnit:     nav,
			Units:          units,
			Status:         models.TxCompleted,
			PaymentMode:    req.PaymentMode,
			Plan:           req.Plan,
			ExitLoadAmount: decimal.Zero,
		}, nil
	})
	if err != nil {
		if IsRuleError(err) {
			s.rejected(models.TxAdditionalPurchase)
		}
		return models.Transaction{}, err
	}
	s.completed(ctx, tx)
	return tx, nil
}

func (s *Service) checkPurchase(req PurchaseRequest) error {
	if req.SchemeID == "" {
		return reject("scheme_id is required")
	}
	if !req.Amount.IsPositive() {
		return reject("amount must be greater than zero")
	}
	if req.Amount.LessThan(s.limits.Min) {
		return reject(fmt.Sprintf("amount must be at least %s", s.limits.Min.StringFixed(2)))
	}
	if req.Amount.GreaterThan(s.limits.Max) {
		return reject(fmt.Sprintf("amount must not exceed %s", s.limits.Max.StringFixed(2)))
	}
	if !slices.Contains(Plans, req.Plan) {
		return reject(fmt.Sprintf("plan must be one of %v", Plans))
	}
	if !slices.Contains(PaymentModes, req.PaymentMode) {
		return reject(fmt.Sprintf("payment_mode must be one of %v", PaymentModes))
	}
	return nil
}

// purchaseLeg checks the purchase rules of scheme and credits amount to folio at the current NAV.
func purchaseLeg(scheme models.Scheme, folio *models.Folio, amount decimal.Decimal, date time.Time) (decimal.Decimal, error) {
	if !scheme.OpenForInvestment {
		return decimal.Zero, reject("scheme is not open for investment")
	}
	if amount.LessThan(scheme.MinimumInvestment) {
		return decimal.Zero, reject(fmt.Sprintf("minimum investment for %s is %s", scheme.SchemeID, scheme.MinimumInvestment.StringFixed(2)))
	}
	if !scheme.CurrentNAV.IsPositive() {
		return decimal.Zero, reject("scheme has no valid NAV")
	}
	if folio.Locked || folio.Status == models.FolioSuspended {
		return decimal.Zero, reject("folio is locked")
	}
	units := amount.Div(scheme.CurrentNAV).Round(4)
	applyPurchase(folio, scheme.CurrentNAV, amount, units, date)
	return units, nil
}

func applyPurchase(folio *models.Folio, nav, amount, units decimal.Decimal, date time.Time) {
	folio.TotalUnits = folio.TotalUnits.Add(units)
	folio.TotalInvestment = folio.TotalInvestment.Add(amount)
	folio.CurrentNAV = nav
	folio.TotalValue = folio.TotalUnits.Mul(nav).Round(2)
	if folio.TotalUnits.IsPositive() {
		folio.AverageCostPerUnit = folio.TotalInvestment.Div(folio.TotalUnits).Round(4)
	}
	folio.Status = models.FolioActive
	folio.TransactionCount++
	folio.LastTransactionDate = &date
}

// Redeem sells units from a folio the investor owns, deducting any exit load from the payout.
func (s *Service) Redeem(ctx context.Context, investorID string, req RedemptionRequest) (models.Transaction, error) {
	if err := checkSelector(req); err != nil {
		s.rejected(models.TxRedemption)
		return models.Transaction{}, err
	}
	if _, err := s.Folio(ctx, investorID, req.FolioNumber); err != nil {
		return models.Transaction{}, err
	}

	date := s.today()
	tx, err := s.store.SettleByFolio(ctx, req.FolioNumber, func(scheme models.Scheme, folio *models.Folio, _ bool) (models.Transaction, error) {
		if folio.InvestorID != investorID {
			return models.Transaction{}, ErrForbidden
		}
		units, gross, err := redemptionLeg(scheme, folio, req, date)
		if err != nil {
			return models.Transaction{}, err
		}
		nav := scheme.CurrentNAV
		exitLoad := ExitLoad(scheme, gross)

		return models.Transaction{
			InvestorID:     investorID,
			SchemeID:       scheme.SchemeID,
			AMCID:          scheme.AMCID,
			Type:           models.TxRedemption,
			Date:           date,
			Amount:         gross.Sub(exitLoad),
			NAVPerUnit:     nav,
			Units:          units.Neg(),
			Status:         models.TxCompleted,
			ExitLoadAmount: exitLoad,
		}, nil
	})
	if err != nil {
		if IsRuleError(err) {
			s.rejected(models.TxRedemption)
		}
		return models.Transaction{}, err
	}
	s.completed(ctx, tx)
	return tx, nil
}

// redemptionLeg checks the redemption rules of scheme, resolves the selected units and debits them from folio.
// It returns the units sold and their gross value.
func redemptionLeg(scheme models.Scheme, folio *models.Folio, sel RedemptionRequest, date time.Time) (units, gross decimal.Decimal, err error) {
	if !scheme.OpenForRedemption {
		return decimal.Zero, decimal.Zero, reject("scheme is not open for redemption")
	}
	if folio.Locked || folio.Status == models.FolioSuspended {
		return decimal.Zero, decimal.Zero, reject("folio is locked")
	}
	nav := scheme.CurrentNAV
	if !nav.IsPositive() {
		return decimal.Zero, decimal.Zero, reject("scheme has no valid NAV")
	}

	switch {
	case sel.AllUnits:
		units = folio.TotalUnits
	case sel.Units != nil:
		units = sel.Units.Round(4)
	default:
		units = sel.Amount.Div(nav).Round(4)
	}
	if !units.IsPositive() {
		return decimal.Zero, decimal.Zero, reject("units to redeem must be greater than zero")
	}
	if units.GreaterThan(folio.TotalUnits) {
		return decimal.Zero, decimal.Zero, reject(fmt.Sprintf("insufficient units: available %s", folio.TotalUnits.StringFixed(4)))
	}

	gross = units.Mul(nav).Round(2)
	applyRedemption(folio, nav, units, date)
	return units, gross, nil
}

func checkSelector(req RedemptionRequest) error {
	if req.FolioNumber == "" {
		return reject("folio_number is required")
	}
	set := 0
	if req.Units != nil {
		set++
	}
	if req.Amount != nil {
		set++
	}
	if req.AllUnits {
		set++
	}
	if set != 1 {
		return reject("specify exactly one of units, amount or all_units")
	}
	return nil
}

// ExitLoad is the charge on a gross redemption value. Schemes without both a percentage and a period charge nothing.
func ExitLoad(scheme models.Scheme, gross decimal.Decimal) decimal.Decimal {
	if !scheme.ExitLoadPercentage.IsPositive() || scheme.ExitLoadPeriodDays <= 0 {
		return decimal.Zero
	}
	return gross.Mul(scheme.ExitLoadPercentage).Div(hundred).Round(2)
}

func applyRedemption(folio *models.Folio, nav, units decimal.Decimal, date time.Time) {
	costBasis := units.Mul(folio.AverageCostPerUnit).Round(2)
	folio.TotalUnits = folio.TotalUnits.Sub(units)
	folio.TotalInvestment = decimal.Max(decimal.Zero, folio.TotalInvestment.Sub(costBasis))
	folio.CurrentNAV = nav
	folio.TotalValue = folio.TotalUnits.Mul(nav).Round(2)
	if folio.TotalUnits.IsZero() {
		folio.Status = models.FolioClosed
		folio.TotalInvestment = decimal.Zero
		folio.AverageCostPerUnit = decimal.Zero
	} else {
		folio.AverageCostPerUnit = folio.TotalInvestment.Div(folio.TotalUnits).Round(4)
	}
	folio.TransactionCount++
	folio.LastTransactionDate = &date
}

// Summary totals the investor's active folios.
func (s *Service) Summary(ctx context.Context, investorID string) (Summary, error) {
	folios, err := s.store.ListFolios(ctx, investorID)
	if err != nil {
		return Summary{}, err
	}
	sum := Summary{TotalInvestment: decimal.Zero, CurrentValue: decimal.Zero, Folios: []models.Folio{}}
	schemes := map[string]struct{}{}
	for _, f := range folios {
		if f.Status == models.FolioClosed {
			continue
		}
		sum.TotalInvestment = sum.TotalInvestment.Add(f.TotalInvestment)
		sum.CurrentValue = sum.CurrentValue.Add(f.TotalValue)
		schemes[f.SchemeID] = struct{}{}
		sum.Folios = append(sum.Folios, f)
	}
	sum.FolioCount = len(sum.Folios)
	sum.SchemeCount = len(schemes)
	sum.GainLoss = sum.CurrentValue.Sub(sum.TotalInvestment)
	sum.GainLossPercent = decimal.Zero
	if sum.TotalInvestment.IsPositive() {
		sum.GainLossPercent = sum.GainLoss.Div(sum.TotalInvestment).Mul(hundred).Round(2)
	}
	return sum, nil
}

// ClampLimit applies the history default and ceiling.
func ClampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultHistoryLimit
	case limit > MaxHistoryLimit:
		return MaxHistoryLimit
	}
	return limit
}

// History returns the investor's newest transactions first.
func (s *Service) History(ctx context.Context, investorID string, limit int) ([]models.Transaction, error) {
	return s.store.ListTransactions(ctx, storage.TransactionFilter{InvestorID: investorID, Limit: ClampLimit(limit)})
}

// Transactions lists transactions across investors for the administrative areas.
func (s *Service) Transactions(ctx context.Context, filter storage.TransactionFilter) ([]models.Transaction, error) {
	filter.Limit = ClampLimit(filter.Limit)
	return s.store.ListTransactions(ctx, filter)
}

// UpdateNAV publishes a new NAV for a scheme and revalues its folios.
func (s *Service) UpdateNAV(ctx context.Context, schemeID string, nav decimal.Decimal, navDate time.Time) (models.Scheme, error) {
	if !nav.IsPositive() {
		return models.Scheme{}, reject("nav must be greater than zero")
	}
	if navDate.IsZero() {
		navDate = s.today()
	}
	scheme, err := s.store.UpdateNAV(ctx, schemeID, nav.Round(4), navDate)
	if err != nil {
		return models.Scheme{}, err
	}
	s.publish(ctx, events.NAVUpdated, scheme)
	return scheme, nil
}

func (s *Service) completed(ctx context.Context, tx models.Transaction) {
	metrics.RecordTransaction(string(tx.Type), string(tx.Status), tx.Amount.InexactFloat64())
	logger.From(ctx).Info().
		Str("transaction_id", tx.TransactionID).
		Str("folio_number", tx.FolioNumber).
		Str("type", string(tx.Type)).
		Str("amount", tx.Amount.StringFixed(2)).
		Msg("transaction completed")
	s.publish(ctx, events.TransactionCompleted, tx)
}

func (s *Service) rejected(txType models.TransactionType) {
	metrics.RecordTransaction(string(txType), string(models.TxRejected), 0)
}

// publish never fails the caller; the ledger row is already committed.
func (s *Service) publish(ctx context.Context, eventType string, payload any) {
	evt, err := events.New(ctx, eventType, payload)
	if err == nil {
		err = s.publisher.Publish(ctx, evt)
	}
	if err != nil {
		logger.From(ctx).Error().Err(err).Str("event", eventType).Msg("publish event failed")
	}
}
