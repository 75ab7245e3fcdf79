package dto

import (
	"errors"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// RegisterRequest payload for new accounts.
type RegisterRequest struct {
	Title    string `json:"title" validate:"required,min=1"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=1"`
}

// LoginRequest payload for login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=1"`
}

// UserResponse is the public projection of an account.
type UserResponse struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// ValidateStruct runs field validation and returns per-field failure detail.
func ValidateStruct(v any) (map[string]any, error) {
	if err := validate.Struct(v); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			details := make(map[string]any, len(verrs))
			for _, fe := range verrs {
				details[fe.Field()] = fe.Tag()
			}
			return details, err
		}
		return nil, err
	}
	return nil, nil
}
