package main

import (
	"context"
	"time"

	"github.com/rollcallhq/rollcall/core"
	"github.com/rollcallhq/rollcall/core/account"
	"github.com/rollcallhq/rollcall/core/attendance"
)

// createAccount registers a new account with an empty document.
func (cli *commandLine) createAccount(email, pwd string) error {
	ctx := context.Background()
	email = core.CleanString(email, true /* lower */)

	if err := cli.acctRepo.CheckEmailUniqueness(ctx, email); err != nil {
		return err
	}

	now := time.Now().UTC()
	acct := account.Account{
		ID:        account.NewSessionID(),
		Email:     email,
		Document:  attendance.NewDocument(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := acct.SetPassword(pwd); err != nil {
		return err
	}
	if _, err := cli.acctRepo.CreateAccount(ctx, acct); err != nil {
		return err
	}
	return nil
}
