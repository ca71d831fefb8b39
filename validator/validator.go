package validator

import (
	"github.com/go-playground/validator/v10"

	"github.com/boriskantorovich/nonprofit-donation-form/donations"
)

// Validator is a wrapper around the go-playground/validator package.
type Validator struct {
	validator *validator.Validate
}

// New creates a new Validator instance.
func New() *Validator {
	v := validator.New()

	// Register custom validation functions
	_ = v.RegisterValidation("donation_amount", validateDonationAmount)

	return &Validator{
		validator: v,
	}
}

// Validate validates a struct using the validator package.
func (v *Validator) Validate(s interface{}) error {
	return v.validator.Struct(s)
}

// validateDonationAmount checks that an amount in cents is within the
// accepted donation range.
func validateDonationAmount(fl validator.FieldLevel) bool {
	return donations.ValidateAmount(fl.Field().Int()) == nil
}
