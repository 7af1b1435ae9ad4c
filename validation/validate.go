package validation

import (
	stderrors "errors"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/kbukum/sessionkit/errors"
)

var (
	validate *validator.Validate
	once     sync.Once
)

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)

// FieldError describes one failed field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func getValidator() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())

		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})

		// username: letters, digits, underscore, dot and dash.
		_ = validate.RegisterValidation("username", func(fl validator.FieldLevel) bool {
			return usernamePattern.MatchString(fl.Field().String())
		})
	})
	return validate
}

// Validate checks s against its `validate` tags.
func Validate(s any) error {
	err := getValidator().Struct(s)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !stderrors.As(err, &validationErrors) {
		return errors.Validation("validation failed")
	}

	fields := make([]FieldError, 0, len(validationErrors))
	messages := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		fe := FieldError{Field: e.Field(), Message: formatValidationError(e)}
		fields = append(fields, fe)
		messages = append(messages, fe.Field+": "+fe.Message)
	}

	return errors.Validation(strings.Join(messages, "; ")).WithDetail("fields", fields)
}

func formatValidationError(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return "must be at least " + e.Param() + " characters"
	case "max":
		return "must be at most " + e.Param() + " characters"
	case "username":
		return "may contain only letters, digits, '_', '.' and '-'"
	default:
		return "is invalid"
	}
}
