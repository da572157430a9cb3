// Package memory is an in-process Store for tests and local runs.
package memory

import (
	"context"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/hongminglow/rta-portal/internal/models"
	"github.com/hongminglow/rta-portal/internal/storage"
)

var _ storage.Store = (*Store)(nil)

type folioKey struct {
	investorID string
	schemeID   string
}

// Store keeps every table in maps guarded by one mutex. Settlements hold the lock for their whole duration.
type Store struct {
	mu sync.Mutex

	users       map[int64]models.User
	userSeq     int64
	investorSeq int64

	schemes      map[string]models.Scheme
	folios       map[string]models.Folio
	folioIndex   map[folioKey]string
	folioSeq     int64
	transactions []models.Transaction
	txSeq        int64

	now func() time.Time
}

// New returns an empty store seeded with the master schemes.
func New() *Store {
	s := &Store{
		users:      make(map[int64]models.User),
		schemes:    make(map[string]models.Scheme),
		folios:     make(map[string]models.Folio),
		folioIndex: make(map[folioKey]string),
		now:        time.Now,
	}
	for _, sc := range storage.SeedSchemes(s.now().UTC().Truncate(24 * time.Hour)) {
		s.schemes[sc.SchemeID] = sc
	}
	return s
}

// PutScheme inserts or replaces a scheme.
func (s *Store) PutScheme(sc models.Scheme) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.schemes[sc.SchemeID] = sc
}

func (s *Store) Ping(context.Context) error { return nil }

func (s *Store) Close() {}

func (s *Store) CreateUser(_ context.Context, user models.User) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	email := strings.ToLower(strings.TrimSpace(user.Email))
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			return models.User{}, storage.ErrAlreadyExists
		}
		if user.InvestorID != "" && u.InvestorID == user.InvestorID {
			return models.User{}, storage.ErrAlreadyExists
		}
		if user.EmployeeID != "" && u.EmployeeID == user.EmployeeID {
			return models.User{}, storage.ErrAlreadyExists
		}
	}
	s.userSeq++
	user.ID = s.userSeq
	user.Email = email
	if user.Status == "" {
		user.Status = models.StatusActive
	}
	user.CreatedAt = s.now().UTC()
	user.Permissions = slices.Clone(user.Permissions)
	s.users[user.ID] = user
	return user, nil
}

func (s *Store) FindByID(_ context.Context, id int64) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return models.User{}, storage.ErrNotFound
	}
	return u, nil
}

func (s *Store) FindByEmail(_ context.Context, email string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Email, strings.TrimSpace(email)) {
			return u, nil
		}
	}
	return models.User{}, storage.ErrNotFound
}

func (s *Store) ListUsers(_ context.Context, role models.Role) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.User, 0, len(s.users))
	for _, u := range s.users {
		if role == "" || u.Role == role {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) RecordLoginFailure(_ context.Context, id int64) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return models.User{}, storage.ErrNotFound
	}
	u.FailedLoginAttempts++
	if u.FailedLoginAttempts >= models.MaxFailedLogins {
		u.Status = models.StatusLocked
	}
	s.users[id] = u
	return u, nil
}

func (s *Store) RecordLoginSuccess(_ context.Context, id int64, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return storage.ErrNotFound
	}
	u.FailedLoginAttempts = 0
	u.LastLogin = &at
	s.users[id] = u
	return nil
}

func (s *Store) NextInvestorID(context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.investorSeq++
	return storage.InvestorID(s.investorSeq), nil
}

func (s *Store) UpdateProfile(_ context.Context, id int64, update storage.ProfileUpdate) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return models.User{}, storage.ErrNotFound
	}
	if update.FullName != nil {
		u.FullName = *update.FullName
	}
	if update.Phone != nil {
		u.Phone = *update.Phone
	}
	s.users[id] = u
	return u, nil
}

func (s *Store) UpdatePassword(_ context.Context, id int64, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return storage.ErrNotFound
	}
	u.PasswordHash = hash
	s.users[id] = u
	return nil
}

func (s *Store) ListSchemes(_ context.Context, amcID string) ([]models.Scheme, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Scheme, 0, len(s.schemes))
	for _, sc := range s.schemes {
		if amcID == "" || sc.AMCID == amcID {
			out = append(out, sc)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SchemeID < out[j].SchemeID })
	return out, nil
}

func (s *Store) FindScheme(_ context.Context, schemeID string) (models.Scheme, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sc, ok := s.schemes[schemeID]
	if !ok {
		return models.Scheme{}, storage.ErrNotFound
	}
	return sc, nil
}

func (s *Store) UpdateNAV(_ context.Context, schemeID string, nav decimal.Decimal, navDate time.Time) (models.Scheme, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sc, ok := s.schemes[schemeID]
	if !ok {
		return models.Scheme{}, storage.ErrNotFound
	}
	sc.CurrentNAV = nav
	sc.NAVDate = navDate
	s.schemes[schemeID] = sc
	for num, f := range s.folios {
		if f.SchemeID == schemeID {
			f.CurrentNAV = nav
			f.TotalValue = f.TotalUnits.Mul(nav).Round(2)
			s.folios[num] = f
		}
	}
	return sc, nil
}

func (s *Store) ListFolios(_ context.Context, investorID string) ([]models.Folio, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Folio{}
	for _, f := range s.folios {
		if f.InvestorID == investorID {
			out = append(out, f)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FolioNumber < out[j].FolioNumber })
	return out, nil
}

func (s *Store) FindFolio(_ context.Context, folioNumber string) (models.Folio, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.folios[folioNumber]
	if !ok {
		return models.Folio{}, storage.ErrNotFound
	}
	return f, nil
}

func (s *Store) ListTransactions(_ context.Context, filter storage.TransactionFilter) ([]models.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Transaction{}
	for i := len(s.transactions) - 1; i >= 0; i-- {
		tx := s.transactions[i]
		if filter.InvestorID != "" && tx.InvestorID != filter.InvestorID {
			continue
		}
		if filter.AMCID != "" && tx.AMCID != filter.AMCID {
			continue
		}
		if filter.FolioNumber != "" && tx.FolioNumber != filter.FolioNumber {
			continue
		}
		out = append(out, tx)
		if filter.Limit > 0 && len(out) == filter.Limit {
			break
		}
	}
	return out, nil
}

func (s *Store) SettleByScheme(_ context.Context, investorID, schemeID string, fn storage.SettleFunc) (models.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sc, ok := s.schemes[schemeID]
	if !ok {
		return models.Transaction{}, storage.ErrNotFound
	}
	folio, isNew := s.openFolio(investorID, sc)
	return s.settle(sc, folio, isNew, fn)
}

func (s *Store) SettleByFolio(_ context.Context, folioNumber string, fn storage.SettleFunc) (models.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	folio, ok := s.folios[folioNumber]
	if !ok {
		return models.Transaction{}, storage.ErrNotFound
	}
	sc, ok := s.schemes[folio.SchemeID]
	if !ok {
		return models.Transaction{}, storage.ErrNotFound
	}
	return s.settle(sc, folio, false, fn)
}

func (s *Store) SettleSwitch(_ context.Context, folioNumber, targetSchemeID string, fn storage.SwitchFunc) (models.Transaction, models.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	from, ok := s.folios[folioNumber]
	if !ok {
		return models.Transaction{}, models.Transaction{}, storage.ErrNotFound
	}
	source, ok := s.schemes[from.SchemeID]
	if !ok {
		return models.Transaction{}, models.Transaction{}, storage.ErrNotFound
	}
	target, ok := s.schemes[targetSchemeID]
	if !ok {
		return models.Transaction{}, models.Transaction{}, storage.ErrNotFound
	}
	to, isNew := s.openFolio(from.InvestorID, target)
	if to.FolioNumber == from.FolioNumber {
		return models.Transaction{}, models.Transaction{}, storage.ErrAlreadyExists
	}

	out, in, err := fn(source, &from, target, &to, isNew)
	if err != nil {
		return models.Transaction{}, models.Transaction{}, err
	}
	s.commitFolio(from, false)
	s.commitFolio(to, isNew)

	out = s.stamp(out, from.FolioNumber)
	in = s.stamp(in, to.FolioNumber)
	out.LinkedTransactionID = in.TransactionID
	in.LinkedTransactionID = out.TransactionID
	s.transactions = append(s.transactions, out, in)
	return out, in, nil
}

// openFolio returns the investor's folio in sc, or an unsaved one carrying the next folio number. Caller holds s.mu.
func (s *Store) openFolio(investorID string, sc models.Scheme) (models.Folio, bool) {
	if num, ok := s.folioIndex[folioKey{investorID: investorID, schemeID: sc.SchemeID}]; ok {
		return s.folios[num], false
	}
	return models.Folio{
		FolioNumber: storage.FolioNumber(s.folioSeq + 1),
		InvestorID:  investorID,
		AMCID:       sc.AMCID,
		SchemeID:    sc.SchemeID,
		CurrentNAV:  sc.CurrentNAV,
		Status:      models.FolioActive,
	}, true
}

func (s *Store) commitFolio(folio models.Folio, isNew bool) {
	if isNew {
		s.folioSeq++
		s.folioIndex[folioKey{investorID: folio.InvestorID, schemeID: folio.SchemeID}] = folio.FolioNumber
	}
	s.folios[folio.FolioNumber] = folio
}

func (s *Store) stamp(tx models.Transaction, folioNumber string) models.Transaction {
	s.txSeq++
	tx.TransactionID = storage.TransactionID(s.txSeq)
	tx.FolioNumber = folioNumber
	tx.CreatedAt = s.now().UTC()
	return tx
}

// settle runs fn on a copy so a rejected settlement leaves no trace. Caller holds s.mu.
func (s *Store) settle(sc models.Scheme, folio models.Folio, isNew bool, fn storage.SettleFunc) (models.Transaction, error) {
	tx, err := fn(sc, &folio, isNew)
	if err != nil {
		return models.Transaction{}, err
	}
	s.commitFolio(folio, isNew)
	tx = s.stamp(tx, folio.FolioNumber)
	s.transactions = append(s.transactions, tx)
	return tx, nil
}
