package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/hongminglow/rta-portal/internal/models"
)

type PurchaseRequest struct {
	SchemeID    string          `json:"scheme_id" validate:"required"`
	Amount      decimal.Decimal `json:"amount"`
	Plan        string          `json:"plan" validate:"required"`
	PaymentMode string          `json:"payment_mode"`
}

type RedemptionRequest struct {
	FolioNumber string           `json:"folio_number" validate:"required"`
	Units       *decimal.Decimal `json:"units"`
	Amount      *decimal.Decimal `json:"amount"`
	AllUnits    bool             `json:"all_units"`
}

type SwitchRequest struct {
	SourceFolioNumber string           `json:"source_folio_number" validate:"required"`
	TargetSchemeID    string           `json:"target_scheme_id" validate:"required"`
	Units             *decimal.Decimal `json:"units"`
	Amount            *decimal.Decimal `json:"amount"`
	AllUnits          bool             `json:"all_units"`
}

type SwitchResponse struct {
	Redemption    models.Transaction `json:"redemption_transaction"`
	Purchase      models.Transaction `json:"purchase_transaction"`
	RedemptionTxn string             `json:"redemption_txn_id"`
	PurchaseTxn   string             `json:"purchase_txn_id"`
}

type UpdateNAVRequest struct {
	NAV     decimal.Decimal `json:"nav"`
	NAVDate *time.Time      `json:"nav_date"`
}
