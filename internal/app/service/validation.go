package service

import (
	"errors"
	"regexp"

	"sahaya_api/internal/common"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

const (
	msgPasswordTooShort = "Password must be at least 6 characters long"
	msgPasswordTooLong  = "Password must be at most 72 bytes long"
	msgUsernameRequired = "Username is required"
	msgUsernameSpaces   = "Username must not contain spaces"
	msgUsernameAlnum    = "Username must only contain alphanumeric characters"
	msgEmailRequired    = "Email is required"
	msgEmailInvalid     = "Email must be a valid email address"
	msgInvalidRole      = "Invalid role"
)

var (
	noWhitespace = regexp.MustCompile(`^\S+$`)
	alphanumeric = regexp.MustCompile(`^[a-zA-Z0-9]+$`)
)

// bcrypt only reads the first 72 bytes of a password.
var passwordRules = []validation.Rule{
	validation.Required.Error(msgPasswordTooShort),
	validation.Length(6, 0).Error(msgPasswordTooShort),
	maxBytes(72, msgPasswordTooLong),
}

var usernameRules = []validation.Rule{
	validation.Required.Error(msgUsernameRequired),
	validation.Match(noWhitespace).Error(msgUsernameSpaces),
	validation.Match(alphanumeric).Error(msgUsernameAlnum),
}

var emailRules = []validation.Rule{
	validation.Required.Error(msgEmailRequired),
	is.Email.Error(msgEmailInvalid),
}

// maxBytes bounds the encoded length. Length counts runes.
func maxBytes(n int, message string) validation.Rule {
	return validation.By(func(value interface{}) error {
		if s, _ := value.(string); len(s) > n {
			return errors.New(message)
		}
		return nil
	})
}

// validateField runs rules in order and reports the first violated one as
// invalid input.
func validateField(value string, rules []validation.Rule) error {
	if err := validation.Validate(value, rules...); err != nil {
		return common.NewError(common.ErrBadRequest, err.Error())
	}
	return nil
}
