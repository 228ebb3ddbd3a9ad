package validator

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// ParseError flattens a binding error into a per-field message map for error
// response bodies. Non-validation errors land under a single "error" key.
func ParseError(err error) map[string]string {
	fields := make(map[string]string)
	ve, ok := err.(validator.ValidationErrors)
	if !ok {
		if err != nil {
			fields["error"] = err.Error()
		}
		return fields
	}
	for _, fe := range ve {
		fields[fe.Field()] = fmt.Sprintf("Field validation for '%s' failed on the '%s' tag", fe.Field(), fe.Tag())
	}
	return fields
}
