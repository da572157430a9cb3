package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Scheme is a mutual fund scheme offered by an AMC.
type Scheme struct {
	SchemeID           string          `json:"scheme_id"`
	Name               string          `json:"scheme_name"`
	SchemeType         string          `json:"scheme_type"`
	PlanType           string          `json:"plan_type"`
	OptionType         string          `json:"option_type"`
	AMCID              string          `json:"amc_id"`
	CurrentNAV         decimal.Decimal `json:"current_nav"`
	NAVDate            time.Time       `json:"nav_date"`
	MinimumInvestment  decimal.Decimal `json:"minimum_investment"`
	ExitLoadPercentage decimal.Decimal `json:"exit_load_percentage"`
	ExitLoadPeriodDays int             `json:"exit_load_period_days"`
	OpenForInvestment  bool            `json:"is_open_for_investment"`
	OpenForRedemption  bool            `json:"is_open_for_redemption"`
	RiskCategory       string          `json:"risk_category,omitempty"`
}

// FolioStatus is the lifecycle state of a holding.
type FolioStatus string

const (
	FolioActive    FolioStatus = "active"
	FolioInactive  FolioStatus = "inactive"
	FolioSuspended FolioStatus = "suspended"
	FolioClosed    FolioStatus = "closed"
)

// Folio is an investor's holding in one scheme. One folio exists per (investor, AMC, scheme).
type Folio struct {
	FolioNumber         string          `json:"folio_number"`
	InvestorID          string          `json:"investor_id"`
	AMCID               string          `json:"amc_id"`
	SchemeID            string          `json:"scheme_id"`
	TotalUnits          decimal.Decimal `json:"total_units"`
	CurrentNAV          decimal.Decimal `json:"current_nav"`
	TotalValue          decimal.Decimal `json:"total_value"`
	TotalInvestment     decimal.Decimal `json:"total_investment"`
	AverageCostPerUnit  decimal.Decimal `json:"average_cost_per_unit"`
	Status              FolioStatus     `json:"status"`
	Locked              bool            `json:"is_locked"`
	TransactionCount    int             `json:"transaction_count"`
	LastTransactionDate *time.Time      `json:"last_transaction_date,omitempty"`
}

// TransactionType classifies a ledger entry.
type TransactionType string

const (
	TxFreshPurchase      TransactionType = "fresh_purchase"
	TxAdditionalPurchase TransactionType = "additional_purchase"
	TxRedemption         TransactionType = "redemption"
	TxSwitchRedemption   TransactionType = "switch_redemption"
	TxSwitchPurchase     TransactionType = "switch_purchase"
)

// TransactionStatus is the processing state of a transaction.
type TransactionStatus string

const (
	TxPending   TransactionStatus = "pending"
	TxCompleted TransactionStatus = "completed"
	TxFailed    TransactionStatus = "failed"
	TxRejected  TransactionStatus = "rejected"
)

// Transaction is one entry in the transaction history.
type Transaction struct {
	TransactionID       string            `json:"transaction_id"`
	InvestorID          string            `json:"investor_id"`
	FolioNumber         string            `json:"folio_number"`
	SchemeID            string            `json:"scheme_id"`
	AMCID               string            `json:"amc_id"`
	Type                TransactionType   `json:"transaction_type"`
	Date                time.Time         `json:"transaction_date"`
	Amount              decimal.Decimal   `json:"amount"`
	NAVPerUnit          decimal.Decimal   `json:"nav_per_unit"`
	Units               decimal.Decimal   `json:"units"`
	Status              TransactionStatus `json:"status"`
	PaymentMode         string            `json:"payment_mode,omitempty"`
	Plan                string            `json:"plan,omitempty"`
	ExitLoadAmount      decimal.Decimal   `json:"exit_load_amount"`
	// LinkedTransactionID pairs the two legs of a switch.
	LinkedTransactionID string            `json:"linked_transaction_id,omitempty"`
	CreatedAt           time.Time         `json:"created_at"`
}
