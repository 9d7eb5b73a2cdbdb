package validator

import (
	"fmt"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var paymentMethods = map[string]bool{
	"Cash":          true,
	"GCash":         true,
	"Bank Transfer": true,
	"Card":          true,
	"Other":         true,
}

// RegisterCustom registers domain validations with gin's binding engine.
// Must run before the router starts accepting requests.
func RegisterCustom() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected validator engine type")
	}

	if err := v.RegisterValidation("payment_method", func(fl validator.FieldLevel) bool {
		return paymentMethods[fl.Field().String()]
	}); err != nil {
		return fmt.Errorf("failed to register payment_method validation: %w", err)
	}

	if err := v.RegisterValidation("time_slot", func(fl validator.FieldLevel) bool {
		return validTimeSlot(fl.Field().String())
	}); err != nil {
		return fmt.Errorf("failed to register time_slot validation: %w", err)
	}

	return nil
}

// validTimeSlot accepts HH:MM in 24-hour time.
func validTimeSlot(s string) bool {
	if len(s) != 5 || s[2] != ':' {
		return false
	}
	hh := int(s[0]-'0')*10 + int(s[1]-'0')
	mm := int(s[3]-'0')*10 + int(s[4]-'0')
	for _, c := range []byte{s[0], s[1], s[3], s[4]} {
		if c < '0' || c > '9' {
			return false
		}
	}
	return hh < 24 && mm < 60
}
