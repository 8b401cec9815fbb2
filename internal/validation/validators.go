package validation

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

var (
	// Validate is a shared validator instance
	Validate *validator.Validate
)

func init() {
	Validate = validator.New()

	// Register custom validators
	// These should never fail in normal operation, but log if they do
	if err := Validate.RegisterValidation("no_control", validateNoControl); err != nil {
		panic(fmt.Sprintf("failed to register no_control validator: %v", err))
	}
}

// validateNoControl rejects strings carrying control characters.
func validateNoControl(fl validator.FieldLevel) bool {
	for _, r := range fl.Field().String() {
		if unicode.IsControl(r) {
			return false
		}
	}
	return true
}

// NormalizeEmail trims surrounding whitespace. Case is preserved; the
// identity provider compares addresses case-insensitively.
func NormalizeEmail(email string) string {
	return strings.TrimSpace(email)
}

// FieldErrors returns the field names that failed validation, in order.
func FieldErrors(err error) []validator.FieldError {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return verrs
	}
	return nil
}
