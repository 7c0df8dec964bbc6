package dispatch

import (
	"unicode/utf8"

	"github.com/mcoot/connectfour-go/internal/model"
)

// ValidateCredentials checks the registration fields. Lengths are counted in
// characters, not bytes.
func ValidateCredentials(username, displayName string) error {
	if username == "" {
		return model.NewValidationError("username", "Received empty username. Username cannot be empty.")
	}
	if displayName == "" {
		return model.NewValidationError("display_name", "Received empty display name. Display name cannot be empty.")
	}
	if utf8.RuneCountInString(username) > model.MaxNameLength {
		return model.NewValidationError("username", "Username cannot be longer than %d characters.", model.MaxNameLength)
	}
	if utf8.RuneCountInString(displayName) > model.MaxNameLength {
		return model.NewValidationError("display_name", "Display name cannot be longer than %d characters.", model.MaxNameLength)
	}
	return nil
}
