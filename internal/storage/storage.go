package storage

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/hongminglow/rta-portal/internal/models"
)

// ErrNotFound indicates a record does not exist.
var ErrNotFound = errors.New("record not found")

// ErrAlreadyExists indicates a uniqueness conflict.
var ErrAlreadyExists = errors.New("record already exists")

// ErrUnavailable indicates the backing store could not be reached.
var ErrUnavailable = errors.New("storage unavailable")

// UserStore captures persistence operations on portal users.
type UserStore interface {
	CreateUser(ctx context.Context, user models.User) (models.User, error)
	FindByID(ctx context.Context, id int64) (models.User, error)
	FindByEmail(ctx context.Context, email string) (models.User, error)
	ListUsers(ctx context.Context, role models.Role) ([]models.User, error)
	// RecordLoginFailure bumps the failed-attempt counter and locks the account at the limit.
	RecordLoginFailure(ctx context.Context, id int64) (models.User, error)
	// RecordLoginSuccess clears the counter and stamps last_login.
	RecordLoginSuccess(ctx context.Context, id int64, at time.Time) error
	// NextInvestorID allocates an investor identifier (I001, I002, ...).
	NextInvestorID(ctx context.Context) (string, error)
	// UpdateProfile overwrites the fields of update that are set and returns the stored user.
	UpdateProfile(ctx context.Context, id int64, update ProfileUpdate) (models.User, error)
	UpdatePassword(ctx context.Context, id int64, hash string) error
}

// ProfileUpdate carries self-service profile edits. Nil fields are left unchanged.
type ProfileUpdate struct {
	FullName *string
	Phone    *string
}

// TransactionFilter narrows transaction listings. Empty fields match everything.
type TransactionFilter struct {
	InvestorID  string
	AMCID       string
	FolioNumber string
	Limit       int
}

// SettleFunc mutates a locked folio and returns the transaction to record with it.
// isNew reports whether the folio was created for this settlement.
type SettleFunc func(scheme models.Scheme, folio *models.Folio, isNew bool) (models.Transaction, error)

// SwitchFunc mutates both locked folios of a switch and returns the outgoing and incoming legs.
// isNew reports whether the target folio was created for this settlement.
type SwitchFunc func(source models.Scheme, from *models.Folio, target models.Scheme, to *models.Folio, isNew bool) (out, in models.Transaction, err error)

// PortfolioStore captures scheme, folio and transaction persistence.
type PortfolioStore interface {
	ListSchemes(ctx context.Context, amcID string) ([]models.Scheme, error)
	FindScheme(ctx context.Context, schemeID string) (models.Scheme, error)
	UpdateNAV(ctx context.Context, schemeID string, nav decimal.Decimal, navDate time.Time) (models.Scheme, error)

	ListFolios(ctx context.Context, investorID string) ([]models.Folio, error)
	FindFolio(ctx context.Context, folioNumber string) (models.Folio, error)
	ListTransactions(ctx context.Context, filter TransactionFilter) ([]models.Transaction, error)

	// SettleByScheme locks (creating when missing) the investor's folio in the scheme and
	// persists fn's folio mutation and transaction atomically.
	SettleByScheme(ctx context.Context, investorID, schemeID string, fn SettleFunc) (models.Transaction, error)
	// SettleByFolio locks an existing folio and persists fn's result atomically.
	SettleByFolio(ctx context.Context, folioNumber string, fn SettleFunc) (models.Transaction, error)
	// SettleSwitch locks the source folio and the owner's folio in the target scheme (creating it when
	// missing), persists both legs atomically and links them to each other.
	SettleSwitch(ctx context.Context, folioNumber, targetSchemeID string, fn SwitchFunc) (out, in models.Transaction, err error)
}

// Store is the full persistence surface used by the server.
type Store interface {
	UserStore
	PortfolioStore
	Ping(ctx context.Context) error
	Close()
}
