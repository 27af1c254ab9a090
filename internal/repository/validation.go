package repository

import (
	"github.com/go-playground/validator/v10"

	"github.com/wangsirgan-jpg/fapiaobaoxiao/internal/models"
)

// NewValidator returns a validator aware of the "category" rule, which
// accepts only the closed set of reimbursement types.
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("category", func(fl validator.FieldLevel) bool {
		return models.Category(fl.Field().String()).IsValid()
	})
	return v
}
