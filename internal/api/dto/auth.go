package dto

import (
	"github.com/google/uuid"
	"github.com/propdesk/propdesk/internal/api/validation"
	"github.com/propdesk/propdesk/internal/database/models"
)

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

func (r RegisterRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if r.Email == "" {
		errors["email"] = "Email is required"
	} else if !validation.IsValidEmail(r.Email) {
		errors["email"] = "Invalid email format"
	}
	if r.Password == "" {
		errors["password"] = "Password is required"
	} else if len(r.Password) < 8 {
		errors["password"] = "Password must be at least 8 characters"
	}
	if r.Name == "" {
		errors["name"] = "Name is required"
	}

	return errors
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r LoginRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if r.Email == "" {
		errors["email"] = "Email is required"
	}
	if r.Password == "" {
		errors["password"] = "Password is required"
	}

	return errors
}

type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

func (r ForgotPasswordRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if r.Email == "" {
		errors["email"] = "Email is required"
	}

	return errors
}

type AssignCompanyRequest struct {
	UserID    string `json:"user_id"`
	CompanyID string `json:"company_id"`
}

func (r AssignCompanyRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if r.UserID == "" {
		errors["user_id"] = "User ID is required"
	} else if _, err := uuid.Parse(r.UserID); err != nil {
		errors["user_id"] = "Invalid user ID format"
	}
	if r.CompanyID == "" {
		errors["company_id"] = "Company ID is required"
	}

	return errors
}

type AuthResponse struct {
	Token string  `json:"token"`
	User  UserDTO `json:"user"`
}

type UserDTO struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	Role      string `json:"role"`
	CompanyID string `json:"company_id,omitempty"`
	IsActive  bool   `json:"is_active"`
}

func NewUserDTO(u *models.User) UserDTO {
	out := UserDTO{
		ID:       u.ID.String(),
		Email:    u.Email,
		Name:     u.Name,
		Role:     string(u.Role),
		IsActive: u.IsActive,
	}
	if u.CompanyID != nil {
		out.CompanyID = *u.CompanyID
	}
	return out
}
