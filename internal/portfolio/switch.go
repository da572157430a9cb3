package portfolio

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/hongminglow/rta-portal/internal/models"
)

// Plan and payment mode recorded on the purchase leg of every switch.
const (
	SwitchPlan        = "Growth"
	SwitchPaymentMode = "net_banking"
)

// SwitchRequest moves units out of a folio into another scheme. Exactly one of Units, Amount or AllUnits must be set.
type SwitchRequest struct {
	SourceFolioNumber string
	TargetSchemeID    string
	Units             *decimal.Decimal
	Amount            *decimal.Decimal
	AllUnits          bool
}

// SwitchResult holds both legs of a settled switch.
type SwitchResult struct {
	Redemption models.Transaction
	Purchase   models.Transaction
}

// Switch redeems units from the source folio and invests their value in the target scheme at its current NAV.
// Both legs settle together or not at all.
func (s *Service) Switch(ctx context.Context, investorID string, req SwitchRequest) (SwitchResult, error) {
	sel := RedemptionRequest{FolioNumber: req.SourceFolioNumber, Units: req.Units, Amount: req.Amount, AllUnits: req.AllUnits}
	if err := checkSelector(sel); err != nil {
		s.rejected(models.TxSwitchRedemption)
		return SwitchResult{}, err
	}
	if req.TargetSchemeID == "" {
		s.rejected(models.TxSwitchRedemption)
		return SwitchResult{}, reject("target_scheme_id is required")
	}
	source, err := s.Folio(ctx, investorID, req.SourceFolioNumber)
	if err != nil {
		return SwitchResult{}, err
	}
	if source.SchemeID == req.TargetSchemeID {
		s.rejected(models.TxSwitchRedemption)
		return SwitchResult{}, reject("target scheme must differ from the source scheme")
	}

	date := s.today()
	out, in, err := s.store.SettleSwitch(ctx, req.SourceFolioNumber, req.TargetSchemeID,
		func(sourceScheme models.Scheme, from *models.Folio, targetScheme models.Scheme, to *models.Folio, _ bool) (models.Transaction, models.Transaction, error) {
			if from.InvestorID != investorID {
				return models.Transaction{}, models.Transaction{}, ErrForbidden
			}
			units, gross, err := redemptionLeg(sourceScheme, from, sel, date)
			if err != nil {
				return models.Transaction{}, models.Transaction{}, err
			}
			bought, err := purchaseLeg(targetScheme, to, gross, date)
			if err != nil {
				return models.Transaction{}, models.Transaction{}, err
			}
			exitLoad := ExitLoad(sourceScheme, gross)

			redemption := models.Transaction{
				InvestorID:     investorID,
				SchemeID:       sourceScheme.SchemeID,
				AMCID:          sourceScheme.AMCID,
				Type:           models.TxSwitchRedemption,
				Date:           date,
				Amount:         gross.Sub(exitLoad),
				NAVPerUnit:     sourceScheme.CurrentNAV,
				Units:          units.Neg(),
				Status:         models.TxCompleted,
				ExitLoadAmount: exitLoad,
			}
			purchase := models.Transaction{
				InvestorID:     investorID,
				SchemeID:       targetScheme.SchemeID,
				AMCID:          targetScheme.AMCID,
				Type:           models.TxSwitchPurchase,
				Date:           date,
				Amount:         gross,
				NAVPerUnit:     targetScheme.CurrentNAV,
				Units:          bought,
				Status:         models.TxCompleted,
				PaymentMode:    SwitchPaymentMode,
				Plan:           SwitchPlan,
				ExitLoadAmount: decimal.Zero,
			}
			return redemption, purchase, nil
		})
	if err != nil {
		if IsRuleError(err) {
			s.rejected(models.TxSwitchRedemption)
		}
		return SwitchResult{}, err
	}
	s.completed(ctx, out)
	s.completed(ctx, in)
	return SwitchResult{Redemption: out, Purchase: in}, nil
}
