package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/hongminglow/rta-portal/internal/models"
	"github.com/hongminglow/rta-portal/internal/storage"
)

const userColumns = `id, email, full_name, phone_number, role, sub_role, permissions,
	COALESCE(investor_id, ''), amc_id, distributor_id, COALESCE(employee_id, ''),
	status, failed_login_attempts, last_login, password_hash, created_at`

func scanUser(row pgx.Row) (models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Email, &u.FullName, &u.Phone, &u.Role, &u.SubRole, &u.Permissions,
		&u.InvestorID, &u.AMCID, &u.DistributorID, &u.EmployeeID,
		&u.Status, &u.FailedLoginAttempts, &u.LastLogin, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		return models.User{}, classify(err)
	}
	return u, nil
}

// CreateUser inserts a user and returns the stored row.
func (s *Store) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	if user.Status == "" {
		user.Status = models.StatusActive
	}
	if user.Role == "" {
		user.Role = models.RoleInvestor
	}
	if user.Permissions == nil {
		user.Permissions = []string{}
	}
	query := `
		INSERT INTO users (email, full_name, phone_number, role, sub_role, permissions,
			investor_id, amc_id, distributor_id, employee_id, status, password_hash)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING ` + userColumns
	row := s.pool.QueryRow(ctx, query,
		strings.ToLower(strings.TrimSpace(user.Email)), user.FullName, user.Phone, user.Role, user.SubRole, user.Permissions,
		nullable(user.InvestorID), user.AMCID, user.DistributorID, nullable(user.EmployeeID), user.Status, user.PasswordHash)
	created, err := scanUser(row)
	if err != nil {
		return models.User{}, fmt.Errorf("create user: %w", err)
	}
	return created, nil
}

// FindByID fetches a user by primary key.
func (s *Store) FindByID(ctx context.Context, id int64) (models.User, error) {
	return scanUser(s.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

// FindByEmail fetches a user by email, case-insensitively.
func (s *Store) FindByEmail(ctx context.Context, email string) (models.User, error) {
	return scanUser(s.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = LOWER($1)`, strings.TrimSpace(email)))
}

// ListUsers returns users, optionally restricted to one role.
func (s *Store) ListUsers(ctx context.Context, role models.Role) ([]models.User, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+userColumns+` FROM users WHERE $1 = '' OR role = $1 ORDER BY id`, string(role))
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	out := []models.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, classify(rows.Err())
}

// RecordLoginFailure increments the failure counter and locks the account at the limit.
func (s *Store) RecordLoginFailure(ctx context.Context, id int64) (models.User, error) {
	query := `
		UPDATE users
		SET failed_login_attempts = failed_login_attempts + 1,
			status = CASE WHEN failed_login_attempts + 1 >= $2 THEN 'locked' ELSE status END
		WHERE id = $1
		RETURNING ` + userColumns
	return scanUser(s.pool.QueryRow(ctx, query, id, models.MaxFailedLogins))
}

// RecordLoginSuccess resets the failure counter and stamps last_login.
func (s *Store) RecordLoginSuccess(ctx context.Context, id int64, at time.Time) error {
	tag, err := s.pool.Exec(ctx, `UPDATE users SET failed_login_attempts = 0, last_login = $2 WHERE id = $1`, id, at)
	if err != nil {
		return classify(err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// UpdateProfile applies the non-nil fields of update.
func (s *Store) UpdateProfile(ctx context.Context, id int64, update storage.ProfileUpdate) (models.User, error) {
	query := `
		UPDATE users
		SET full_name = COALESCE($2::text, full_name),
			phone_number = COALESCE($3::text, phone_number)
		WHERE id = $1
		RETURNING ` + userColumns
	return scanUser(s.pool.QueryRow(ctx, query, id, update.FullName, update.Phone))
}

// UpdatePassword replaces the stored password hash.
func (s *Store) UpdatePassword(ctx context.Context, id int64, hash string) error {
	tag, err := s.pool.Exec(ctx, `UPDATE users SET password_hash = $2 WHERE id = $1`, id, hash)
	if err != nil {
		return classify(err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// NextInvestorID allocates the next investor identifier.
func (s *Store) NextInvestorID(ctx context.Context) (string, error) {
	var n int64
	if err := s.pool.QueryRow(ctx, `SELECT nextval('investor_id_seq')`).Scan(&n); err != nil {
		return "", classify(err)
	}
	return storage.InvestorID(n), nil
}
