// Package validate provides shared validation functions.
package validate

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hay-kot/criterio"
)

// maxPasswordBytes is the bcrypt input limit.
const maxPasswordBytes = 72

// Required validates a value is non-empty after trimming whitespace.
func Required(s string) error {
	if strings.TrimSpace(s) == "" {
		return errors.New("is required")
	}
	return nil
}

// Password validates a password is present and fits bcrypt's input limit.
func Password(pw string) error {
	if pw == "" {
		return errors.New("is required")
	}
	if len(pw) > maxPasswordBytes {
		return fmt.Errorf("must be at most %d bytes", maxPasswordBytes)
	}
	return nil
}

// Credentials validates a username/password pair.
func Credentials(username, password string) error {
	return criterio.ValidateStruct(
		criterio.Run("username", username, Required),
		criterio.Run("password", password, Password),
	)
}

// TextField returns a criterio validator for free-text input.
func TextField(field, text string) error {
	return criterio.Run(field, text, Required)
}
