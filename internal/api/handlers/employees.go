package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/propdesk/propdesk/internal/api/dto"
	"github.com/propdesk/propdesk/internal/api/validation"
	"github.com/propdesk/propdesk/internal/database/models"
	"github.com/propdesk/propdesk/internal/tenant"
	"gorm.io/gorm"
)

type EmployeeHandler struct {
	base
	db       *gorm.DB
	resolver *tenant.Resolver
}

func NewEmployeeHandler(db *gorm.DB, resolver *tenant.Resolver, logger *slog.Logger, dev bool) *EmployeeHandler {
	return &EmployeeHandler{base: base{logger: logger, dev: dev}, db: db, resolver: resolver}
}

type EmployeeRequest struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Position    string `json:"position"`
	SalaryCents int64  `json:"salary_cents"`
	HiredAt     string `json:"hired_at,omitempty"` // RFC 3339
}

func (r EmployeeRequest) Validate() map[string]string {
	errs := make(map[string]string)
	if r.Name == "" {
		errs["name"] = "Name is required"
	}
	if r.Email != "" && !validation.IsValidEmail(r.Email) {
		errs["email"] = "Invalid email format"
	}
	if r.Phone != "" && !validation.IsValidPhone(r.Phone) {
		errs["phone"] = "Invalid phone format"
	}
	if r.SalaryCents < 0 {
		errs["salary_cents"] = "Salary must not be negative"
	}
	if r.HiredAt != "" {
		if _, err := time.Parse(time.RFC3339, r.HiredAt); err != nil {
			errs["hired_at"] = "Invalid timestamp, want RFC 3339"
		}
	}
	return errs
}

// List handles GET /api/v1/employees
func (h *EmployeeHandler) List(w http.ResponseWriter, r *http.Request) {
	scope, ok := companyScope(w, r, h.resolver)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))
	pagination := dto.PaginationParams{Page: page, PerPage: perPage}
	pagination.Normalize()

	query := h.db.WithContext(r.Context()).Model(&models.Employee{}).Where("company_id = ?", scope)

	if position := r.URL.Query().Get("position"); position != "" {
		query = query.Where("position = ?", position)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		h.internalError(w, "Failed to count employees", err)
		return
	}

	var employees []models.Employee
	if err := query.
		Order("created_at DESC").
		Offset(pagination.Offset()).
		Limit(pagination.PerPage).
		Find(&employees).Error; err != nil {
		h.internalError(w, "Failed to list employees", err)
		return
	}

	totalPages := int(total) / pagination.PerPage
	if int(total)%pagination.PerPage > 0 {
		totalPages++
	}

	writeJSON(w, http.StatusOK, dto.PaginatedResponse{
		Data:       employees,
		Total:      total,
		Page:       pagination.Page,
		PerPage:    pagination.PerPage,
		TotalPages: totalPages,
	})
}

// Create handles POST /api/v1/employees
func (h *EmployeeHandler) Create(w http.ResponseWriter, r *http.Request) {
	scope, ok := companyScope(w, r, h.resolver)
	if !ok {
		return
	}

	var req EmployeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}

	if errs := req.Validate(); len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Validation failed", Details: errs})
		return
	}

	hiredAt := time.Now()
	if req.HiredAt != "" {
		hiredAt, _ = time.Parse(time.RFC3339, req.HiredAt)
	}

	// Scope is stamped server-side; a company id in the payload is ignored.
	employee := models.Employee{
		CompanyID:   scope,
		Name:        req.Name,
		Email:       req.Email,
		Phone:       req.Phone,
		Position:    req.Position,
		SalaryCents: req.SalaryCents,
		HiredAt:     hiredAt,
	}

	if err := h.db.WithContext(r.Context()).Create(&employee).Error; err != nil {
		h.internalError(w, "Failed to create employee", err)
		return
	}

	writeJSON(w, http.StatusCreated, employee)
}

// Get handles GET /api/v1/employees/{id}
func (h *EmployeeHandler) Get(w http.ResponseWriter, r *http.Request) {
	scope, ok := companyScope(w, r, h.resolver)
	if !ok {
		return
	}

	employeeID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid employee ID"})
		return
	}

	var employee models.Employee
	if err := h.db.WithContext(r.Context()).
		Where("id = ? AND company_id = ?", employeeID, scope).
		First(&employee).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "Employee not found"})
			return
		}
		h.internalError(w, "Failed to get employee", err)
		return
	}

	writeJSON(w, http.StatusOK, employee)
}

// Update handles PUT /api/v1/employees/{id}
func (h *EmployeeHandler) Update(w http.ResponseWriter, r *http.Request) {
	scope, ok := companyScope(w, r, h.resolver)
	if !ok {
		return
	}

	employeeID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid employee ID"})
		return
	}

	var req EmployeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}

	if errs := req.Validate(); len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Validation failed", Details: errs})
		return
	}

	var employee models.Employee
	if err := h.db.WithContext(r.Context()).
		Where("id = ? AND company_id = ?", employeeID, scope).
		First(&employee).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "Employee not found"})
			return
		}
		h.internalError(w, "Failed to get employee", err)
		return
	}

	employee.Name = req.Name
	employee.Email = req.Email
	employee.Phone = req.Phone
	employee.Position = req.Position
	employee.SalaryCents = req.SalaryCents
	if req.HiredAt != "" {
		employee.HiredAt, _ = time.Parse(time.RFC3339, req.HiredAt)
	}

	if err := h.db.WithContext(r.Context()).Save(&employee).Error; err != nil {
		h.internalError(w, "Failed to update employee", err)
		return
	}

	writeJSON(w, http.StatusOK, employee)
}

// Delete handles DELETE /api/v1/employees/{id}
func (h *EmployeeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	scope, ok := companyScope(w, r, h.resolver)
	if !ok {
		return
	}

	employeeID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid employee ID"})
		return
	}

	result := h.db.WithContext(r.Context()).
		Where("id = ? AND company_id = ?", employeeID, scope).
		Delete(&models.Employee{})

	if result.Error != nil {
		h.internalError(w, "Failed to delete employee", result.Error)
		return
	}

	if result.RowsAffected == 0 {
		writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "Employee not found"})
		return
	}

	writeJSON(w, http.StatusOK, dto.SuccessResponse{Message: "Employee deleted"})
}
