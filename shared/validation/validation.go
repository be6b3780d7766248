package validation

import (
	"errors"
	"regexp"

	"github.com/go-playground/validator/v10"
)

// mailboxPattern is deliberately loose: something@something.tld with no
// whitespace, so "foo@bar" is rejected.
var mailboxPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	if err := v.RegisterValidation("mailbox", func(fl validator.FieldLevel) bool {
		return IsEmail(fl.Field().String())
	}); err != nil {
		panic(err)
	}
	return v
}

// FieldError is a single failed constraint.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Type    string `json:"type"`
}

// Struct validates obj against its `validate` tags and returns nil when it passes.
func Struct(obj any) []FieldError {
	err := validate.Struct(obj)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []FieldError{{Message: err.Error(), Type: "invalid"}}
	}

	fieldErrors := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fieldErrors = append(fieldErrors, FieldError{
			Field:   fe.Field(),
			Message: getErrorMsg(fe),
			Type:    fe.Tag(),
		})
	}
	return fieldErrors
}

// HasTag reports whether any field failed the given constraint.
func HasTag(errs []FieldError, tag string) bool {
	for _, e := range errs {
		if e.Type == tag {
			return true
		}
	}
	return false
}

// IsEmail applies the mailbox rule to a bare string.
func IsEmail(s string) bool {
	return mailboxPattern.MatchString(s)
}

func getErrorMsg(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return "This field is required"
	case "mailbox", "email":
		return "Invalid email format"
	case "min":
		return "Value is too short"
	case "max":
		return "Value is too long"
	default:
		return "Invalid value"
	}
}
