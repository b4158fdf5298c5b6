package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/propdesk/propdesk/internal/api/dto"
	"github.com/propdesk/propdesk/internal/api/middleware"
	"github.com/propdesk/propdesk/internal/auth"
	"github.com/propdesk/propdesk/internal/tenant"
)

type AuthHandler struct {
	base
	authService auth.Authenticator
	resolver    *tenant.Resolver
}

func NewAuthHandler(authService auth.Authenticator, resolver *tenant.Resolver, logger *slog.Logger, dev bool) *AuthHandler {
	return &AuthHandler{
		base:        base{logger: logger, dev: dev},
		authService: authService,
		resolver:    resolver,
	}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}

	if errs := req.Validate(); len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Validation failed", Details: errs})
		return
	}

	resp, err := h.authService.Register(r.Context(), auth.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
	})

	if err != nil {
		switch {
		case errors.Is(err, auth.ErrUserExists):
			writeJSON(w, http.StatusConflict, dto.ErrorResponse{Error: "Account already exists"})
		case errors.Is(err, auth.ErrNoAdminForDomain):
			writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "No admin registered for this email domain"})
		default:
			h.internalError(w, "Registration failed", err)
		}
		return
	}

	setTokenCookie(w, resp.Token)

	writeJSON(w, http.StatusCreated, dto.AuthResponse{
		Token: resp.Token,
		User:  dto.NewUserDTO(resp.User),
	})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}

	if errs := req.Validate(); len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Validation failed", Details: errs})
		return
	}

	resp, err := h.authService.Login(r.Context(), auth.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})

	if err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidCredentials):
			writeJSON(w, http.StatusUnauthorized, dto.ErrorResponse{Error: "Invalid credentials"})
		case errors.Is(err, auth.ErrInactiveUser):
			writeJSON(w, http.StatusForbidden, dto.ErrorResponse{Error: "Account is deactivated"})
		case errors.Is(err, auth.ErrCompanyNotAssigned):
			writeJSON(w, http.StatusForbidden, dto.ErrorResponse{Error: "No company assigned"})
		default:
			h.internalError(w, "Login failed", err)
		}
		return
	}

	setTokenCookie(w, resp.Token)

	writeJSON(w, http.StatusOK, dto.AuthResponse{
		Token: resp.Token,
		User:  dto.NewUserDTO(resp.User),
	})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})

	writeJSON(w, http.StatusOK, dto.SuccessResponse{Message: "Logged out"})
}

// ForgotPassword always answers the same way, whether or not the account
// exists.
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req dto.ForgotPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}

	if errs := req.Validate(); len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Validation failed", Details: errs})
		return
	}

	if err := h.authService.ForgotPassword(r.Context(), req.Email); err != nil {
		h.internalError(w, "Password reset failed", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.SuccessResponse{Message: "If the account exists, a reset email has been sent"})
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())
	if user == nil {
		writeJSON(w, http.StatusUnauthorized, dto.ErrorResponse{Error: "Unauthorized"})
		return
	}

	writeJSON(w, http.StatusOK, dto.NewUserDTO(user))
}

func (h *AuthHandler) AssignCompany(w http.ResponseWriter, r *http.Request) {
	caller := middleware.GetUser(r.Context())

	var req dto.AssignCompanyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}

	if errs := req.Validate(); len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Validation failed", Details: errs})
		return
	}

	targetID, _ := uuid.Parse(req.UserID)
	target, err := h.resolver.AssignCompany(r.Context(), caller, targetID, req.CompanyID)
	if err != nil {
		switch {
		case errors.Is(err, tenant.ErrUnauthorized):
			writeJSON(w, http.StatusForbidden, dto.ErrorResponse{Error: "Only an admin may assign users into their own company"})
		case errors.Is(err, tenant.ErrUserNotFound):
			writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "User not found"})
		default:
			h.internalError(w, "Company assignment failed", err)
		}
		return
	}

	writeJSON(w, http.StatusOK, dto.NewUserDTO(target))
}

func (h *AuthHandler) CompanyUsers(w http.ResponseWriter, r *http.Request) {
	caller := middleware.GetUser(r.Context())

	users, err := h.resolver.CompanyUsers(r.Context(), caller)
	if err != nil {
		switch {
		case errors.Is(err, tenant.ErrUnauthorized), errors.Is(err, tenant.ErrNoCompany):
			writeJSON(w, http.StatusForbidden, dto.ErrorResponse{Error: "Only a company admin may list company users"})
		default:
			h.internalError(w, "Failed to list company users", err)
		}
		return
	}

	out := make([]dto.UserDTO, len(users))
	for i := range users {
		out[i] = dto.NewUserDTO(&users[i])
	}

	writeJSON(w, http.StatusOK, out)
}

func setTokenCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   false, // Set to true in production with HTTPS
		SameSite: http.SameSiteLaxMode,
		MaxAge:   86400, // 24 hours
	})
}
