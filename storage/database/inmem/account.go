package inmemdb

import (
	"context"
	"strings"
	"time"

	"github.com/rollcallhq/rollcall/core/account"
	"github.com/rollcallhq/rollcall/core/attendance"
)

type accountRepository struct {
	db *accountTable
}

var _ account.Repository = (*accountRepository)(nil) // interface compliance check

func NewAccountRepository(db *DB) account.Repository {
	return &accountRepository{db: db.account}
}

func (repo *accountRepository) CheckEmailUniqueness(ctx context.Context, email string) error {
	repo.db.RLock()
	defer repo.db.RUnlock()

	email = strings.ToLower(email)
	for _, acct := range repo.db.table {
		if strings.ToLower(acct.Email) == email {
			return account.ErrEmailExists
		}
	}
	return nil
}

func (repo *accountRepository) CreateAccount(ctx context.Context, acct account.Account) (account.Account, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if acct.ID == "" {
		acct.ID = account.NewSessionID()
	}
	repo.db.table[acct.ID] = &acct
	return acct, nil
}

func (repo *accountRepository) GetAccountByID(ctx context.Context, id string) (account.Account, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if acct, ok := repo.db.table[id]; ok {
		return *acct, nil
	}
	return account.Account{}, account.ErrNotFound
}

func (repo *accountRepository) GetAccountByEmail(ctx context.Context, email string) (account.Account, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	email = strings.ToLower(email)
	for _, acct := range repo.db.table {
		if strings.ToLower(acct.Email) == email {
			return *acct, nil
		}
	}
	return account.Account{}, account.ErrNotFound
}

func (repo *accountRepository) SaveDocument(ctx context.Context, id string, doc attendance.Document) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	acct, ok := repo.db.table[id]
	if !ok {
		return account.ErrNotFound
	}
	acct.Document = doc.Clone()
	acct.UpdatedAt = time.Now().UTC()
	return nil
}
