package services

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/dmitrijs2005/ghostnote/internal/common"
	"github.com/dmitrijs2005/ghostnote/internal/server/models"
	"github.com/go-playground/validator/v10"
)

const (
	minUsernameLength = 2
	maxUsernameLength = 10
	minPasswordLength = 8
	// bcrypt ignores input past 72 bytes.
	maxPasswordBytes = 72
	minMessageLength = 2
)

var handlePattern = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	RegisterValidators(v)
	return v
}

// RegisterValidators adds the "handle" and "category" tags to v.
func RegisterValidators(v *validator.Validate) {
	_ = v.RegisterValidation("handle", func(fl validator.FieldLevel) bool {
		return usernameProblem(fl.Field().String()) == ""
	})
	_ = v.RegisterValidation("category", func(fl validator.FieldLevel) bool {
		_, ok := models.ParseCategory(fl.Field().String())
		return ok
	})
}

func usernameProblem(username string) string {
	n := utf8.RuneCountInString(username)
	switch {
	case n == 0:
		return "Username is required"
	case n < minUsernameLength:
		return "Username must be at least 2 characters"
	case n > maxUsernameLength:
		return "Username must be no more than 10 characters"
	case !handlePattern.MatchString(username):
		return "Username must not contain special characters"
	}
	return ""
}

// ValidateUsername checks handle syntax: 2-10 letters, digits or underscores.
func ValidateUsername(username string) error {
	if msg := usernameProblem(username); msg != "" {
		return common.NewValidationError("username", msg)
	}
	return nil
}

func validateSignUp(username, email, password string) error {
	fields := map[string]string{}

	if msg := usernameProblem(username); msg != "" {
		fields["username"] = msg
	}
	if err := validate.Var(email, "required,email"); err != nil {
		fields["email"] = "Invalid email address"
	}
	switch {
	case len(password) < minPasswordLength:
		fields["password"] = "Password must be at least 8 characters"
	case len(password) > maxPasswordBytes:
		fields["password"] = "Password must be no more than 72 bytes"
	}

	if len(fields) > 0 {
		return &common.ValidationError{Fields: fields}
	}
	return nil
}

// normalizeContent trims content and checks its length against max.
func normalizeContent(content string, max int) (string, error) {
	content = strings.TrimSpace(content)
	n := utf8.RuneCountInString(content)
	switch {
	case n == 0:
		return "", common.NewValidationError("content", "Message content is required")
	case n < minMessageLength:
		return "", common.NewValidationError("content", "Content must be at least 2 characters")
	case n > max:
		return "", common.NewValidationError("content", fmt.Sprintf("Message is too long (max %d characters)", max))
	}
	return content, nil
}
