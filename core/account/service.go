package account

import (
	"context"
	"fmt"
	"net/mail"
	"time"

	"github.com/pkg/errors"

	"github.com/rollcallhq/rollcall/core"
	"github.com/rollcallhq/rollcall/core/attendance"
)

var (
	// errors
	ErrNotFound           = errors.New("account not found")
	ErrEmailExists        = errors.New("an account with this email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrStorageUnavailable = errors.New("storage unavailable")
	ErrCorruptCredential  = errors.New("corrupt credential record")
)

type (
	Repository interface {
		CheckEmailUniqueness(ctx context.Context, email string) error
		CreateAccount(ctx context.Context, acct Account) (Account, error)
		GetAccountByID(ctx context.Context, id string) (Account, error)
		GetAccountByEmail(ctx context.Context, email string) (Account, error)
		// SaveDocument wholly replaces the stored roster/attendance blob
		// and refreshes UpdatedAt. No field-level merge.
		SaveDocument(ctx context.Context, id string, doc attendance.Document) error
	}

	Service interface {
		Create(ctx context.Context, na NewAccount) (Account, error)
		Authenticate(ctx context.Context, email, pwd string) (Account, error)
		LoadDocument(ctx context.Context, id string) (attendance.Document, error)
		SaveDocument(ctx context.Context, id string, doc attendance.Document) error
	}

	service struct {
		repo    Repository
		mailSvc core.EmailService
		conf    *core.Config
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, mailSvc core.EmailService, conf *core.Config) Service {
	return &service{
		repo:    repo,
		mailSvc: mailSvc,
		conf:    conf,
	}
}

// Create registers a new account with an empty document. The email
// must not match an existing account, case-insensitively.
func (svc *service) Create(ctx context.Context, na NewAccount) (Account, error) {
	if err := svc.repo.CheckEmailUniqueness(ctx, na.Email); err != nil {
		if errors.Cause(err) == ErrEmailExists {
			return Account{}, err
		}
		return Account{}, errors.Wrap(err, "checking email uniqueness")
	}

	now := time.Now().UTC()
	acct := Account{
		ID:        NewSessionID(),
		Email:     na.Email,
		Document:  attendance.NewDocument(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := acct.SetPassword(na.Password); err != nil {
		return Account{}, err
	}

	acct, err := svc.repo.CreateAccount(ctx, acct)
	if err != nil {
		return Account{}, errors.Wrap(err, "creating account")
	}

	svc.sendWelcomeMail(acct)
	return acct, nil
}

// Authenticate looks the account up by email and verifies the
// password. Unknown email and wrong password are indistinguishable to
// the caller.
func (svc *service) Authenticate(ctx context.Context, email, pwd string) (Account, error) {
	acct, err := svc.repo.GetAccountByEmail(ctx, core.CleanString(email, true /* lower */))
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return Account{}, ErrInvalidCredentials
		}
		return Account{}, errors.Wrap(err, "finding account by email")
	}
	if err = acct.CheckPassword(pwd); err != nil {
		if errors.Cause(err) == ErrCorruptCredential {
			return Account{}, err
		}
		return Account{}, ErrInvalidCredentials
	}
	acct.Document.Normalize()
	return acct, nil
}

func (svc *service) LoadDocument(ctx context.Context, id string) (attendance.Document, error) {
	acct, err := svc.repo.GetAccountByID(ctx, id)
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return attendance.Document{}, err
		}
		return attendance.Document{}, errors.Wrap(err, "finding account by ID")
	}
	acct.Document.Normalize()
	return acct.Document, nil
}

func (svc *service) SaveDocument(ctx context.Context, id string, doc attendance.Document) error {
	doc.Normalize()
	if err := svc.repo.SaveDocument(ctx, id, doc); err != nil {
		if errors.Cause(err) == ErrNotFound {
			return err
		}
		return errors.Wrap(err, "saving document")
	}
	return nil
}

func (svc *service) sendWelcomeMail(acct Account) {
	svc.mailSvc.SendMessages(
		&core.EmailMessage{
			To:           []mail.Address{{Address: acct.Email}},
			Subject:      fmt.Sprintf("Welcome to %s", svc.conf.AppName),
			TemplateName: "welcome",
			TemplateData: struct{ Email string }{acct.Email},
		},
	)
}
