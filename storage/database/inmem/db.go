package inmemdb

import (
	"sync"

	"github.com/rollcallhq/rollcall/core/account"
)

type (
	DB struct {
		account *accountTable
	}

	accountTable struct {
		sync.RWMutex
		table map[string]*account.Account
	}
)

func Open() (*DB, error) {
	db := &DB{
		account: &accountTable{table: make(map[string]*account.Account)},
	}
	return db, nil
}
