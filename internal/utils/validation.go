package utils

import (
	"fmt"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// Validate performs validation on a struct.
func Validate(s interface{}) error {
	return validatorInstance().Struct(s)
}

// ValidateVar validates a single value against a tag such as "required,email".
func ValidateVar(field interface{}, tag string) error {
	return validatorInstance().Var(field, tag)
}

// FormatValidationError formats validation errors into a readable string.
func FormatValidationError(err error) string {
	if errs, ok := err.(validator.ValidationErrors); ok {
		messages := make([]string, 0, len(errs))
		for _, e := range errs {
			if e.Param() != "" {
				messages = append(messages, fmt.Sprintf("%s failed %s=%s", e.Field(), e.Tag(), e.Param()))
			} else {
				messages = append(messages, fmt.Sprintf("%s failed %s", e.Field(), e.Tag()))
			}
		}
		return strings.Join(messages, ", ")
	}
	return err.Error()
}

// BindAndValidate binds the request body to a struct and validates it.
// If validation fails, it sends a BadRequest response and returns false.
func BindAndValidate(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		BadRequest(c, "Invalid request payload: "+FormatValidationError(err))
		return false
	}
	if err := Validate(obj); err != nil {
		BadRequest(c, "Validation failed: "+FormatValidationError(err))
		return false
	}
	return true
}
