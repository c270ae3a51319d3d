package auth

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"sign-relay/errors"
)

var validate = validator.New()

// RegisterRequest carries the registration payload. The phone number is the
// routing identifier for the whole system, so it is validated here once.
type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=1,max=64"`
	Phone    string `json:"phone" validate:"required,numeric,min=6,max=15"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Role     string `json:"role" validate:"required,oneof=deaf hearing"`
}

func ValidateRegister(req RegisterRequest) error {
	if err := validate.Struct(req); err != nil {
		return fmt.Errorf("%w: %v", errors.ErrInvalidRequest, err)
	}
	return nil
}
