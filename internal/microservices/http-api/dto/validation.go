package dto

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

const InvalidBodyMessage = "Invalid request body"

// RegisterValidators adds the custom tags used by the request structs to
// gin's validator engine.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("unexpected validator engine")
	}
	return v.RegisterValidation("notblank", notBlank)
}

// notBlank rejects strings that are empty after trimming whitespace.
func notBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

// BindingMessage turns a ShouldBindJSON error into a client message. The
// first failing field picks the message; anything else is a malformed body.
func BindingMessage(err error, messages map[string]string) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		if msg, ok := messages[verrs[0].Field()]; ok {
			return msg
		}
	}
	return InvalidBodyMessage
}
