package auth

import (
	"crypto/subtle"

	"golang.org/x/crypto/bcrypt"

	"github.com/imamaffandi/gloam-storefront/internal/apperrors"
)

// Credentials verifies admin logins against the configured username and
// bcrypt password hash. The plaintext password never lives in config.
type Credentials struct {
	username     string
	passwordHash []byte
}

// NewCredentials creates a credential checker.
func NewCredentials(username, passwordHash string) *Credentials {
	return &Credentials{
		username:     username,
		passwordHash: []byte(passwordHash),
	}
}

// Verify checks a username and password pair. Both checks always run so
// response timing does not reveal whether the username matched.
func (c *Credentials) Verify(username, password string) error {
	userMatch := subtle.ConstantTimeCompare([]byte(c.username), []byte(username)) == 1
	passErr := bcrypt.CompareHashAndPassword(c.passwordHash, []byte(password))

	if !userMatch || passErr != nil {
		return apperrors.Unauthorized("invalid credentials")
	}
	return nil
}

// HashPassword produces a bcrypt hash suitable for the password hash
// setting. Exposed for the hash generation tool.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
