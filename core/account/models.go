package account

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"

	"github.com/rollcallhq/rollcall/core"
	"github.com/rollcallhq/rollcall/core/attendance"
)

// bcryptCost keeps a hash in the tens of milliseconds. Fixed here, not
// user input.
const bcryptCost = 12

// Account owns one roster + attendance document, keyed by a unique
// case-insensitive email. Its ID is opaque and doubles as the session
// identifier handed to clients.
type Account struct {
	ID           string              `json:"id"`
	Email        string              `json:"email"`
	PasswordHash []byte              `json:"-"`
	Document     attendance.Document `json:"document"`
	CreatedAt    time.Time           `json:"created_at"` // UTC
	UpdatedAt    time.Time           `json:"updated_at"` // UTC
}

// SetPassword hashes pwd with a per-call random salt; the stored hash
// differs across calls for the same input.
func (a *Account) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcryptCost)
	if err != nil {
		return errors.Wrap(err, "hashing password")
	}
	a.PasswordHash = hash
	return nil
}

// CheckPassword verifies pwd against the stored hash. A wrong password
// returns bcrypt.ErrMismatchedHashAndPassword; a malformed stored hash
// returns ErrCorruptCredential.
func (a *Account) CheckPassword(pwd string) error {
	err := bcrypt.CompareHashAndPassword(a.PasswordHash, []byte(pwd))
	if err != nil && err != bcrypt.ErrMismatchedHashAndPassword {
		return errors.Wrap(ErrCorruptCredential, err.Error())
	}
	return err
}

// NewSessionID produces an opaque session identifier. UUIDv4 carries
// 122 random bits, comfortably past unguessable for this use.
func NewSessionID() string {
	return uuid.New().String()
}

// NewAccount contains information needed to create a new Account.
type NewAccount struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

func (na *NewAccount) Validate(validate *validator.Validate) error {
	na.Email = core.CleanString(na.Email, true /* lower */)
	return validate.Struct(na)
}

// Credentials is a login request body.
type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (c *Credentials) Validate(validate *validator.Validate) error {
	c.Email = core.CleanString(c.Email, true /* lower */)
	return validate.Struct(c)
}
