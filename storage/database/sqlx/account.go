package sqlxrepos

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
	"github.com/pkg/errors"

	"github.com/rollcallhq/rollcall/core/account"
	"github.com/rollcallhq/rollcall/core/attendance"
)

type accountRepository struct {
	db *sqlx.DB
}

var _ account.Repository = (*accountRepository)(nil) // interface compliance check

func NewAccountRepository(db *sqlx.DB) *accountRepository {
	return &accountRepository{db: db}
}

// accountRow mirrors the account table.
type accountRow struct {
	ID             string         `db:"id"`
	Email          string         `db:"email"`
	PasswordHash   []byte         `db:"password_hash"`
	Roster         types.JSONText `db:"roster"`
	AttendanceData types.JSONText `db:"attendance_data"`
	CreatedAt      time.Time      `db:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at"`
}

func (repo accountRepository) row(acct account.Account) (accountRow, error) {
	roster, err := json.Marshal(acct.Document.Roster)
	if err != nil {
		return accountRow{}, errors.Wrap(err, "marshalling roster")
	}
	att, err := json.Marshal(acct.Document.Attendance)
	if err != nil {
		return accountRow{}, errors.Wrap(err, "marshalling attendance")
	}
	return accountRow{
		ID:             acct.ID,
		Email:          acct.Email,
		PasswordHash:   acct.PasswordHash,
		Roster:         roster,
		AttendanceData: att,
		CreatedAt:      acct.CreatedAt.UTC(),
		UpdatedAt:      acct.UpdatedAt.UTC(),
	}, nil
}

func (repo accountRepository) unrow(row accountRow) (account.Account, error) {
	acct := account.Account{
		ID:           row.ID,
		Email:        row.Email,
		PasswordHash: row.PasswordHash,
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
	}
	if len(row.Roster) > 0 {
		if err := json.Unmarshal(row.Roster, &acct.Document.Roster); err != nil {
			return account.Account{}, errors.Wrap(err, "unmarshalling roster")
		}
	}
	if len(row.AttendanceData) > 0 {
		// legacy string marks are normalized here, in one place
		if err := json.Unmarshal(row.AttendanceData, &acct.Document.Attendance); err != nil {
			return account.Account{}, errors.Wrap(err, "unmarshalling attendance")
		}
	}
	acct.Document.Normalize()
	return acct, nil
}

// trapErr maps driver errors: "no rows" becomes account.ErrNotFound,
// anything else surfaces as ErrStorageUnavailable.
func (repo accountRepository) trapErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return account.ErrNotFound
	}
	return errors.Wrapf(account.ErrStorageUnavailable, "%s: %v", msg, err)
}

func (repo accountRepository) CheckEmailUniqueness(ctx context.Context, email string) error {
	var exists bool
	err := repo.db.GetContext(ctx, &exists,
		`SELECT EXISTS (SELECT 1 FROM account WHERE lower(email) = lower($1))`, email)
	if err != nil {
		return repo.trapErr(err, "checking email uniqueness")
	}
	if exists {
		return account.ErrEmailExists
	}
	return nil
}

func (repo accountRepository) CreateAccount(ctx context.Context, acct account.Account) (account.Account, error) {
	if acct.ID == "" {
		acct.ID = account.NewSessionID()
	}
	row, err := repo.row(acct)
	if err != nil {
		return account.Account{}, err
	}

	_, err = repo.db.NamedExecContext(ctx,
		`INSERT INTO account (id, email, password_hash, roster, attendance_data, created_at, updated_at)
		 VALUES (:id, :email, :password_hash, :roster, :attendance_data, :created_at, :updated_at)`, row)
	if err != nil {
		return account.Account{}, repo.trapErr(err, "inserting account")
	}
	return acct, nil
}

func (repo accountRepository) GetAccountByID(ctx context.Context, id string) (account.Account, error) {
	if _, err := uuid.Parse(id); err != nil {
		return account.Account{}, account.ErrNotFound
	}
	var row accountRow
	err := repo.db.GetContext(ctx, &row, `SELECT * FROM account WHERE id = $1`, id)
	if err != nil {
		return account.Account{}, repo.trapErr(err, "finding account by ID")
	}
	return repo.unrow(row)
}

func (repo accountRepository) GetAccountByEmail(ctx context.Context, email string) (account.Account, error) {
	var row accountRow
	err := repo.db.GetContext(ctx, &row, `SELECT * FROM account WHERE lower(email) = lower($1)`, email)
	if err != nil {
		return account.Account{}, repo.trapErr(err, "finding account by email")
	}
	return repo.unrow(row)
}

func (repo accountRepository) SaveDocument(ctx context.Context, id string, doc attendance.Document) error {
	if _, err := uuid.Parse(id); err != nil {
		return account.ErrNotFound
	}
	row, err := repo.row(account.Account{ID: id, Document: doc})
	if err != nil {
		return err
	}

	res, err := repo.db.ExecContext(ctx,
		`UPDATE account SET roster = $2, attendance_data = $3, updated_at = $4 WHERE id = $1`,
		id, row.Roster, row.AttendanceData, time.Now().UTC())
	if err != nil {
		return repo.trapErr(err, "saving document")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return account.ErrNotFound
	}
	return nil
}
