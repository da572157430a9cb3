package dto

import "github.com/hongminglow/rta-portal/internal/models"

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Token       string      `json:"token"`
	TokenType   string      `json:"token_type"`
	ExpiresIn   int         `json:"expires_in"`
	User        models.User `json:"user"`
	Permissions []string    `json:"permissions,omitempty"`
	Home        string      `json:"redirect_to"`
}

type RegisterInvestorRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=8,max=72"`
	FullName    string `json:"full_name" validate:"required,max=255"`
	PhoneNumber string `json:"phone_number" validate:"omitempty,e164"`
}

type RegisterAdminRequest struct {
	Email              string   `json:"email" validate:"required,email"`
	Password           string   `json:"password" validate:"required,min=8,max=72"`
	FullName           string   `json:"full_name" validate:"required,max=255"`
	EmployeeID         string   `json:"employee_id" validate:"required,max=50"`
	SubRole            string   `json:"sub_role" validate:"required"`
	Permissions        []string `json:"permissions" validate:"omitempty,dive,required"`
	RegistrationSecret string   `json:"registration_secret" validate:"required"`
}

type UpdateProfileRequest struct {
	FullName    *string `json:"full_name" validate:"omitempty,min=1,max=255"`
	PhoneNumber *string `json:"phone_number" validate:"omitempty,e164"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8,max=72"`
}
