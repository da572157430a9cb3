package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/hongminglow/rta-portal/internal/models"
	"github.com/hongminglow/rta-portal/internal/storage"
)

const schemeColumns = `scheme_id, scheme_name, scheme_type, plan_type, option_type, amc_id, current_nav, nav_date,
	minimum_investment, exit_load_percentage, exit_load_period_days, is_open_for_investment, is_open_for_redemption, risk_category`

const folioColumns = `folio_number, investor_id, amc_id, scheme_id, total_units, current_nav, total_value, total_investment,
	average_cost_per_unit, status, is_locked, transaction_count, last_transaction_date`

const transactionColumns = `transaction_id, investor_id, folio_number, scheme_id, amc_id, transaction_type, transaction_date,
	amount, nav_per_unit, units, status, payment_mode, plan, exit_load_amount, linked_transaction_id, created_at`

func scanScheme(row pgx.Row) (models.Scheme, error) {
	var sc models.Scheme
	err := row.Scan(&sc.SchemeID, &sc.Name, &sc.SchemeType, &sc.PlanType, &sc.OptionType, &sc.AMCID, &sc.CurrentNAV, &sc.NAVDate,
		&sc.MinimumInvestment, &sc.ExitLoadPercentage, &sc.ExitLoadPeriodDays, &sc.OpenForInvestment, &sc.OpenForRedemption, &sc.RiskCategory)
	if err != nil {
		return models.Scheme{}, classify(err)
	}
	return sc, nil
}

func scanFolio(row pgx.Row) (models.Folio, error) {
	var f models.Folio
	err := row.Scan(&f.FolioNumber, &f.InvestorID, &f.AMCID, &f.SchemeID, &f.TotalUnits, &f.CurrentNAV, &f.TotalValue, &f.TotalInvestment,
		&f.AverageCostPerUnit, &f.Status, &f.Locked, &f.TransactionCount, &f.LastTransactionDate)
	if err != nil {
		return models.Folio{}, classify(err)
	}
	return f, nil
}

func scanTransaction(row pgx.Row) (models.Transaction, error) {
	var t models.Transaction
	err := row.Scan(&t.TransactionID, &t.InvestorID, &t.FolioNumber, &t.SchemeID, &t.AMCID, &t.Type, &t.Date,
		&t.Amount, &t.NAVPerUnit, &t.Units, &t.Status, &t.PaymentMode, &t.Plan, &t.ExitLoadAmount, &t.LinkedTransactionID, &t.CreatedAt)
	if err != nil {
		return models.Transaction{}, classify(err)
	}
	return t, nil
}

func collect[T any](rows pgx.Rows, scan func(pgx.Row) (T, error)) ([]T, error) {
	defer rows.Close()
	out := []T{}
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, classify(rows.Err())
}

// ListSchemes returns schemes, optionally restricted to one AMC.
func (s *Store) ListSchemes(ctx context.Context, amcID string) ([]models.Scheme, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+schemeColumns+` FROM schemes WHERE $1 = '' OR amc_id = $1 ORDER BY scheme_id`, amcID)
	if err != nil {
		return nil, classify(err)
	}
	return collect(rows, scanScheme)
}

// FindScheme fetches one scheme.
func (s *Store) FindScheme(ctx context.Context, schemeID string) (models.Scheme, error) {
	return scanScheme(s.pool.QueryRow(ctx, `SELECT `+schemeColumns+` FROM schemes WHERE scheme_id = $1`, schemeID))
}

// UpdateNAV publishes a new NAV and revalues every folio in the scheme.
func (s *Store) UpdateNAV(ctx context.Context, schemeID string, nav decimal.Decimal, navDate time.Time) (models.Scheme, error) {
	var updated models.Scheme
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		var err error
		updated, err = scanScheme(tx.QueryRow(ctx, `
			UPDATE schemes SET current_nav = $2, nav_date = $3 WHERE scheme_id = $1
			RETURNING `+schemeColumns, schemeID, nav, navDate))
		if err != nil {
			return err
		}
		_, err = tx.Exec(ctx, `
			UPDATE folios SET current_nav = $2, total_value = ROUND(total_units * $2, 2)
			WHERE scheme_id = $1`, schemeID, nav)
		return classify(err)
	})
	if err != nil {
		return models.Scheme{}, err
	}
	return updated, nil
}

// ListFolios returns an investor's folios.
func (s *Store) ListFolios(ctx context.Context, investorID string) ([]models.Folio, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+folioColumns+` FROM folios WHERE investor_id = $1 ORDER BY folio_number`, investorID)
	if err != nil {
		return nil, classify(err)
	}
	return collect(rows, scanFolio)
}

// FindFolio fetches one folio.
func (s *Store) FindFolio(ctx context.Context, folioNumber string) (models.Folio, error) {
	return scanFolio(s.pool.QueryRow(ctx, `SELECT `+folioColumns+` FROM folios WHERE folio_number = $1`, folioNumber))
}

// ListTransactions returns matching transactions, newest first.
func (s *Store) ListTransactions(ctx context.Context, filter storage.TransactionFilter) ([]models.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions
		WHERE ($1 = '' OR investor_id = $1)
		AND ($2 = '' OR amc_id = $2)
		AND ($3 = '' OR folio_number = $3)
		ORDER BY created_at DESC, transaction_id DESC`
	args := []any{filter.InvestorID, filter.AMCID, filter.FolioNumber}
	if filter.Limit > 0 {
		query += ` LIMIT $4`
		args = append(args, filter.Limit)
	}
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, classify(err)
	}
	return collect(rows, scanTransaction)
}

// SettleByScheme locks the investor's folio in the scheme, creating it inside the transaction when missing.
func (s *Store) SettleByScheme(ctx context.Context, investorID, schemeID string, fn storage.SettleFunc) (models.Transaction, error) {
	var recorded models.Transaction
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		sc, err := scanScheme(tx.QueryRow(ctx, `SELECT `+schemeColumns+` FROM schemes WHERE scheme_id = $1 FOR SHARE`, schemeID))
		if err != nil {
			return err
		}
		isNew, err := ensureFolio(ctx, tx, investorID, sc)
		if err != nil {
			return err
		}

		folio, err := scanFolio(tx.QueryRow(ctx, `
			SELECT `+folioColumns+` FROM folios
			WHERE investor_id = $1 AND amc_id = $2 AND scheme_id = $3
			FOR UPDATE`, investorID, sc.AMCID, schemeID))
		if err != nil {
			return err
		}

		recorded, err = s.apply(ctx, tx, sc, folio, isNew, fn)
		return err
	})
	if err != nil {
		return models.Transaction{}, err
	}
	return recorded, nil
}

// SettleByFolio locks an existing folio and applies fn to it.
func (s *Store) SettleByFolio(ctx context.Context, folioNumber string, fn storage.SettleFunc) (models.Transaction, error) {
	var recorded models.Transaction
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		folio, err := scanFolio(tx.QueryRow(ctx, `SELECT `+folioColumns+` FROM folios WHERE folio_number = $1 FOR UPDATE`, folioNumber))
		if err != nil {
			return err
		}
		sc, err := scanScheme(tx.QueryRow(ctx, `SELECT `+schemeColumns+` FROM schemes WHERE scheme_id = $1 FOR SHARE`, folio.SchemeID))
		if err != nil {
			return err
		}
		recorded, err = s.apply(ctx, tx, sc, folio, false, fn)
		return err
	})
	if err != nil {
		return models.Transaction{}, err
	}
	return recorded, nil
}

// SettleSwitch moves value between two folios of one investor. Both folios are locked in
// folio number order so opposing switches cannot deadlock.
func (s *Store) SettleSwitch(ctx context.Context, folioNumber, targetSchemeID string, fn storage.SwitchFunc) (models.Transaction, models.Transaction, error) {
	var out, in models.Transaction
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		peek, err := scanFolio(tx.QueryRow(ctx, `SELECT `+folioColumns+` FROM folios WHERE folio_number = $1`, folioNumber))
		if err != nil {
			return err
		}
		source, err := scanScheme(tx.QueryRow(ctx, `SELECT `+schemeColumns+` FROM schemes WHERE scheme_id = $1 FOR SHARE`, peek.SchemeID))
		if err != nil {
			return err
		}
		target, err := scanScheme(tx.QueryRow(ctx, `SELECT `+schemeColumns+` FROM schemes WHERE scheme_id = $1 FOR SHARE`, targetSchemeID))
		if err != nil {
			return err
		}
		isNew, err := ensureFolio(ctx, tx, peek.InvestorID, target)
		if err != nil {
			return err
		}

		rows, err := tx.Query(ctx, `
			SELECT `+folioColumns+` FROM folios
			WHERE folio_number = $1 OR (investor_id = $2 AND amc_id = $3 AND scheme_id = $4)
			ORDER BY folio_number
			FOR UPDATE`, folioNumber, peek.InvestorID, target.AMCID, target.SchemeID)
		if err != nil {
			return classify(err)
		}
		locked, err := collect(rows, scanFolio)
		if err != nil {
			return err
		}
		if len(locked) != 2 {
			return storage.ErrAlreadyExists
		}
		from, to := locked[0], locked[1]
		if to.FolioNumber == folioNumber {
			from, to = to, from
		}

		outEntry, inEntry, err := fn(source, &from, target, &to, isNew)
		if err != nil {
			return err
		}
		if err := updateFolio(ctx, tx, from); err != nil {
			return err
		}
		if err := updateFolio(ctx, tx, to); err != nil {
			return err
		}

		outID, err := nextTransactionID(ctx, tx)
		if err != nil {
			return err
		}
		inID, err := nextTransactionID(ctx, tx)
		if err != nil {
			return err
		}
		outEntry.FolioNumber, outEntry.LinkedTransactionID = from.FolioNumber, inID
		inEntry.FolioNumber, inEntry.LinkedTransactionID = to.FolioNumber, outID
		if out, err = insertTransaction(ctx, tx, outID, outEntry); err != nil {
			return err
		}
		in, err = insertTransaction(ctx, tx, inID, inEntry)
		return err
	})
	if err != nil {
		return models.Transaction{}, models.Transaction{}, err
	}
	return out, in, nil
}

// ensureFolio creates the investor's folio in sc when missing and reports whether this call created it.
func ensureFolio(ctx context.Context, tx pgx.Tx, investorID string, sc models.Scheme) (bool, error) {
	var seq int64
	err := tx.QueryRow(ctx, `
		SELECT nextval('folio_number_seq') WHERE NOT EXISTS (
			SELECT 1 FROM folios WHERE investor_id = $1 AND amc_id = $2 AND scheme_id = $3)`,
		investorID, sc.AMCID, sc.SchemeID).Scan(&seq)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, classify(err)
	}
	tag, err := tx.Exec(ctx, `
		INSERT INTO folios (folio_number, investor_id, amc_id, scheme_id, current_nav, status)
		VALUES ($1, $2, $3, $4, $5, 'active')
		ON CONFLICT (investor_id, amc_id, scheme_id) DO NOTHING`,
		storage.FolioNumber(seq), investorID, sc.AMCID, sc.SchemeID, sc.CurrentNAV)
	if err != nil {
		return false, classify(err)
	}
	return tag.RowsAffected() == 1, nil
}

// apply runs fn against the locked folio and writes both rows. Any error rolls the transaction back.
func (s *Store) apply(ctx context.Context, tx pgx.Tx, sc models.Scheme, folio models.Folio, isNew bool, fn storage.SettleFunc) (models.Transaction, error) {
	entry, err := fn(sc, &folio, isNew)
	if err != nil {
		return models.Transaction{}, err
	}
	if err := updateFolio(ctx, tx, folio); err != nil {
		return models.Transaction{}, err
	}
	id, err := nextTransactionID(ctx, tx)
	if err != nil {
		return models.Transaction{}, err
	}
	entry.FolioNumber = folio.FolioNumber
	return insertTransaction(ctx, tx, id, entry)
}

func updateFolio(ctx context.Context, tx pgx.Tx, folio models.Folio) error {
	_, err := tx.Exec(ctx, `
		UPDATE folios SET total_units = $2, current_nav = $3, total_value = $4, total_investment = $5,
			average_cost_per_unit = $6, status = $7, transaction_count = $8, last_transaction_date = $9
		WHERE folio_number = $1`,
		folio.FolioNumber, folio.TotalUnits, folio.CurrentNAV, folio.TotalValue, folio.TotalInvestment,
		folio.AverageCostPerUnit, folio.Status, folio.TransactionCount, folio.LastTransactionDate)
	if err != nil {
		return fmt.Errorf("update folio: %w", classify(err))
	}
	return nil
}

func nextTransactionID(ctx context.Context, tx pgx.Tx) (string, error) {
	var seq int64
	if err := tx.QueryRow(ctx, `SELECT nextval('transaction_id_seq')`).Scan(&seq); err != nil {
		return "", classify(err)
	}
	return storage.TransactionID(seq), nil
}

func insertTransaction(ctx context.Context, tx pgx.Tx, id string, entry models.Transaction) (models.Transaction, error) {
	recorded, err := scanTransaction(tx.QueryRow(ctx, `
		INSERT INTO transactions (transaction_id, investor_id, folio_number, scheme_id, amc_id, transaction_type, transaction_date,
			amount, nav_per_unit, units, status, payment_mode, plan, exit_load_amount, linked_transaction_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING `+transactionColumns,
		id, entry.InvestorID, entry.FolioNumber, entry.SchemeID, entry.AMCID, entry.Type, entry.Date,
		entry.Amount, entry.NAVPerUnit, entry.Units, entry.Status, entry.PaymentMode, entry.Plan, entry.ExitLoadAmount,
		entry.LinkedTransactionID))
	if err != nil {
		return models.Transaction{}, fmt.Errorf("insert transaction: %w", err)
	}
	return recorded, nil
}
