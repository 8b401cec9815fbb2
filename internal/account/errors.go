package account

import (
	"errors"

	"github.com/nexusquery/auth-gateway/internal/identity"
)

var (
	ErrAccountAlreadyExists = errors.New("email already registered")
	ErrWeakSecret           = errors.New("password is too weak")
	ErrInvalidEmailFormat   = errors.New("invalid email format")
	ErrAccountNotFound      = errors.New("account not found")
	ErrProviderUnavailable  = errors.New("identity provider unavailable")
)

// fromProvider maps a provider error onto this package's errors. Errors
// with no specific meaning here are returned unchanged.
func fromProvider(err error) error {
	switch identity.CodeOf(err) {
	case identity.ErrCodeEmailExists:
		return errors.Join(ErrAccountAlreadyExists, err)
	case identity.ErrCodeWeakPassword:
		return errors.Join(ErrWeakSecret, err)
	case identity.ErrCodeInvalidEmail:
		return errors.Join(ErrInvalidEmailFormat, err)
	case identity.ErrCodeUserNotFound:
		return errors.Join(ErrAccountNotFound, err)
	case identity.ErrCodeUnavailable:
		return errors.Join(ErrProviderUnavailable, err)
	}
	return err
}
