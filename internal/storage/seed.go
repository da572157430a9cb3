package storage

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/hongminglow/rta-portal/internal/models"
)

// SeedSchemes returns the master scheme data installed into an empty store.
func SeedSchemes(navDate time.Time) []models.Scheme {
	return []models.Scheme{
		{
			SchemeID:           "SCH001",
			Name:               "Quantum Equity Fund",
			SchemeType:         "equity",
			PlanType:           "direct",
			OptionType:         "growth",
			AMCID:              "AMC001",
			CurrentNAV:         decimal.RequireFromString("150.25"),
			NAVDate:            navDate,
			MinimumInvestment:  decimal.NewFromInt(500),
			ExitLoadPercentage: decimal.NewFromInt(1),
			ExitLoadPeriodDays: 365,
			OpenForInvestment:  true,
			OpenForRedemption:  true,
			RiskCategory:       "high",
		},
		{
			SchemeID:          "SCH002",
			Name:              "Quantum Debt Fund",
			SchemeType:        "debt",
			PlanType:          "direct",
			OptionType:        "growth",
			AMCID:             "AMC001",
			CurrentNAV:        decimal.RequireFromString("12.85"),
			NAVDate:           navDate,
			MinimumInvestment: decimal.NewFromInt(100),
			OpenForInvestment: true,
			OpenForRedemption: true,
			RiskCategory:      "low",
		},
		{
			SchemeID:           "SCH003",
			Name:               "Alpha Balanced Advantage",
			SchemeType:         "hybrid",
			PlanType:           "regular",
			OptionType:         "idcw_payout",
			AMCID:              "AMC002",
			CurrentNAV:         decimal.RequireFromString("25.40"),
			NAVDate:            navDate,
			MinimumInvestment:  decimal.NewFromInt(1000),
			ExitLoadPercentage: decimal.NewFromInt(1),
			ExitLoadPeriodDays: 365,
			OpenForInvestment:  true,
			OpenForRedemption:  true,
			RiskCategory:       "moderate",
		},
	}
}

// FolioNumber formats the n-th folio number.
func FolioNumber(n int64) string {
	return formatSeq("F", n)
}

// TransactionID formats the n-th transaction id.
func TransactionID(n int64) string {
	return formatSeq("T", n)
}

// InvestorID formats the n-th investor id.
func InvestorID(n int64) string {
	return formatSeq("I", n)
}

func formatSeq(prefix string, n int64) string {
	return fmt.Sprintf("%s%03d", prefix, n)
}
