package account_test

import (
	"context"
	"testing"

	"github.com/pkg/errors"

	"github.com/rollcallhq/rollcall/core"
	"github.com/rollcallhq/rollcall/core/account"
	"github.com/rollcallhq/rollcall/core/attendance"
	"github.com/rollcallhq/rollcall/services/email"
	"github.com/rollcallhq/rollcall/storage/database/inmem"
)

func setup(t *testing.T) (account.Service, account.Repository) {
	db, err := inmemdb.Open()
	if err != nil {
		t.Fatalf("setup() failed: %v", err)
	}
	repo := inmemdb.NewAccountRepository(db)
	conf := &core.Config{AppName: "Rollcall", DefaultFromEmail: "noreply@localhost"}
	svc := account.NewService(repo, emailsvc.NewConsoleServiceMock(conf), conf)
	return svc, repo
}

func createAccount(t *testing.T, svc account.Service, email, pwd string) account.Account {
	acct, err := svc.Create(context.Background(), account.NewAccount{Email: email, Password: pwd})
	if err != nil {
		t.Fatalf("createAccount() failed: %v", err)
	}
	return acct
}

func TestService_Create(t *testing.T) {
	svc, _ := setup(t)

	acct := createAccount(t, svc, "a@b.com", "secret1")
	if acct.ID == "" {
		t.Error("Create() returned an empty ID")
	}
	if acct.Email != "a@b.com" {
		t.Errorf("Email = %s, want a@b.com", acct.Email)
	}
	if len(acct.PasswordHash) == 0 {
		t.Error("Create() did not hash the password")
	}
	if len(acct.Document.Roster) != 0 || len(acct.Document.Attendance) != 0 {
		t.Errorf("new account document not empty: %+v", acct.Document)
	}
	if acct.CreatedAt.IsZero() || acct.UpdatedAt.IsZero() {
		t.Error("Create() left timestamps unset")
	}
}

func TestService_Create_emailTaken(t *testing.T) {
	svc, _ := setup(t)
	createAccount(t, svc, "a@b.com", "secret1")

	tests := []struct {
		name  string
		email string
	}{
		{name: "exact match", email: "a@b.com"},
		{name: "case-insensitive match", email: "A@B.COM"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), account.NewAccount{Email: tt.email, Password: "secret2"})
			if errors.Cause(err) != account.ErrEmailExists {
				t.Errorf("Create() error = %v, want %v", err, account.ErrEmailExists)
			}
		})
	}
}

func TestService_Authenticate(t *testing.T) {
	svc, _ := setup(t)
	createAccount(t, svc, "a@b.com", "secret1")

	tests := []struct {
		name    string
		email   string
		pwd     string
		wantErr error
	}{
		{name: "valid credentials", email: "a@b.com", pwd: "secret1"},
		{name: "email is case-insensitive", email: "A@B.com", pwd: "secret1"},
		{name: "wrong password", email: "a@b.com", pwd: "wrongpass", wantErr: account.ErrInvalidCredentials},
		{name: "unknown email", email: "nobody@b.com", pwd: "secret1", wantErr: account.ErrInvalidCredentials},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			acct, err := svc.Authenticate(context.Background(), tt.email, tt.pwd)
			if errors.Cause(err) != tt.wantErr {
				t.Fatalf("Authenticate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr == nil {
				if acct.ID == "" {
					t.Error("Authenticate() returned an empty ID")
				}
				// document comes back normalized, ready to mutate
				if acct.Document.Roster == nil || acct.Document.Attendance == nil {
					t.Errorf("Authenticate() returned unnormalized document: %+v", acct.Document)
				}
			}
		})
	}
}

func TestService_LoadDocument(t *testing.T) {
	svc, _ := setup(t)
	acct := createAccount(t, svc, "a@b.com", "secret1")

	doc, err := svc.LoadDocument(context.Background(), acct.ID)
	if err != nil {
		t.Fatalf("LoadDocument() failed: %v", err)
	}
	if len(doc.Roster) != 0 {
		t.Errorf("Roster = %v, want empty", doc.Roster)
	}

	if _, err = svc.LoadDocument(context.Background(), account.NewSessionID()); errors.Cause(err) != account.ErrNotFound {
		t.Errorf("LoadDocument() error = %v, want %v", err, account.ErrNotFound)
	}
}

func TestService_SaveDocument(t *testing.T) {
	svc, _ := setup(t)
	acct := createAccount(t, svc, "a@b.com", "secret1")

	doc := attendance.NewDocument()
	doc.AddNames("Alice\nBob")
	doc.SetMark("2020-09-01", "Alice", attendance.StatusPresent)
	doc.SetNote("2020-09-01", "Alice", "on time")

	if err := svc.SaveDocument(context.Background(), acct.ID, doc); err != nil {
		t.Fatalf("SaveDocument() failed: %v", err)
	}

	// the save is a whole replace; reload sees exactly what was pushed
	got, err := svc.LoadDocument(context.Background(), acct.ID)
	if err != nil {
		t.Fatalf("LoadDocument() failed: %v", err)
	}
	if len(got.Roster) != 2 {
		t.Errorf("Roster = %v, want both names", got.Roster)
	}
	if st := got.StatusOf("2020-09-01", "Alice"); st != attendance.StatusPresent {
		t.Errorf("StatusOf() = %v, want %v", st, attendance.StatusPresent)
	}
	if note := got.NoteOf("2020-09-01", "Alice"); note != "on time" {
		t.Errorf("NoteOf() = %q, want %q", note, "on time")
	}

	if err = svc.SaveDocument(context.Background(), account.NewSessionID(), doc); errors.Cause(err) != account.ErrNotFound {
		t.Errorf("SaveDocument() error = %v, want %v", err, account.ErrNotFound)
	}
}

func TestAccount_SetPassword_saltedHashes(t *testing.T) {
	var a1, a2 account.Account
	if err := a1.SetPassword("secret1"); err != nil {
		t.Fatalf("SetPassword() failed: %v", err)
	}
	if err := a2.SetPassword("secret1"); err != nil {
		t.Fatalf("SetPassword() failed: %v", err)
	}
	if string(a1.PasswordHash) == string(a2.PasswordHash) {
		t.Error("two hashes of the same password are identical; salt missing")
	}
	if err := a1.CheckPassword("secret1"); err != nil {
		t.Errorf("CheckPassword() failed: %v", err)
	}
	if err := a1.CheckPassword("secret2"); err == nil {
		t.Error("CheckPassword() accepted a wrong password")
	}
}

func TestAccount_CheckPassword_corruptHash(t *testing.T) {
	a := account.Account{PasswordHash: []byte("not-a-bcrypt-hash")}
	err := a.CheckPassword("whatever")
	if errors.Cause(err) != account.ErrCorruptCredential {
		t.Errorf("CheckPassword() error = %v, want %v", err, account.ErrCorruptCredential)
	}
}
