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

type AppointmentHandler struct {
	base
	db       *gorm.DB
	resolver *tenant.Resolver
}

func NewAppointmentHandler(db *gorm.DB, resolver *tenant.Resolver, logger *slog.Logger, dev bool) *AppointmentHandler {
	return &AppointmentHandler{base: base{logger: logger, dev: dev}, db: db, resolver: resolver}
}

type AppointmentRequest struct {
	EmployeeID  *string `json:"employee_id,omitempty"`
	ClientName  string  `json:"client_name"`
	ClientPhone string  `json:"client_phone"`
	ScheduledAt string  `json:"scheduled_at"` // RFC 3339
	Notes       string  `json:"notes"`
}

func (r AppointmentRequest) Validate() map[string]string {
	errs := make(map[string]string)
	if r.ClientName == "" {
		errs["client_name"] = "Client name is required"
	}
	if r.ClientPhone != "" && !validation.IsValidPhone(r.ClientPhone) {
		errs["client_phone"] = "Invalid phone format"
	}
	if r.ScheduledAt == "" {
		errs["scheduled_at"] = "Scheduled time is required"
	} else if _, err := time.Parse(time.RFC3339, r.ScheduledAt); err != nil {
		errs["scheduled_at"] = "Invalid timestamp, want RFC 3339"
	}
	if r.EmployeeID != nil && *r.EmployeeID != "" {
		if _, err := uuid.Parse(*r.EmployeeID); err != nil {
			errs["employee_id"] = "Invalid employee ID format"
		}
	}
	return errs
}

type UpdateAppointmentStatusRequest struct {
	Status string `json:"status"`
}

// resolveEmployee verifies an optional assignee belongs to the same company.
func (h *AppointmentHandler) resolveEmployee(r *http.Request, scope string, employeeID string) (*uuid.UUID, error) {
	id, err := uuid.Parse(employeeID)
	if err != nil {
		return nil, err
	}

	var employee models.Employee
	if err := h.db.WithContext(r.Context()).
		Where("id = ? AND company_id = ?", id, scope).
		First(&employee).Error; err != nil {
		return nil, err
	}

	return &id, nil
}

// List handles GET /api/v1/appointments
func (h *AppointmentHandler) List(w http.ResponseWriter, r *http.Request) {
	scope, ok := companyScope(w, r, h.resolver)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))
	pagination := dto.PaginationParams{Page: page, PerPage: perPage}
	pagination.Normalize()

	query := h.db.WithContext(r.Context()).Model(&models.Appointment{}).Where("company_id = ?", scope)

	if status := r.URL.Query().Get("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if employeeID := r.URL.Query().Get("employee_id"); employeeID != "" {
		query = query.Where("employee_id = ?", employeeID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		h.internalError(w, "Failed to count appointments", err)
		return
	}

	var appointments []models.Appointment
	if err := query.
		Order("scheduled_at ASC").
		Offset(pagination.Offset()).
		Limit(pagination.PerPage).
		Find(&appointments).Error; err != nil {
		h.internalError(w, "Failed to list appointments", err)
		return
	}

	totalPages := int(total) / pagination.PerPage
	if int(total)%pagination.PerPage > 0 {
		totalPages++
	}

	writeJSON(w, http.StatusOK, dto.PaginatedResponse{
		Data:       appointments,
		Total:      total,
		Page:       pagination.Page,
		PerPage:    pagination.PerPage,
		TotalPages: totalPages,
	})
}

// Create handles POST /api/v1/appointments
func (h *AppointmentHandler) Create(w http.ResponseWriter, r *http.Request) {
	scope, ok := companyScope(w, r, h.resolver)
	if !ok {
		return
	}

	var req AppointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}

	if errs := req.Validate(); len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Validation failed", Details: errs})
		return
	}

	scheduledAt, _ := time.Parse(time.RFC3339, req.ScheduledAt)

	appointment := models.Appointment{
		CompanyID:   scope,
		ClientName:  req.ClientName,
		ClientPhone: req.ClientPhone,
		ScheduledAt: scheduledAt,
		Status:      models.AppointmentScheduled,
		Notes:       req.Notes,
	}

	if req.EmployeeID != nil && *req.EmployeeID != "" {
		employeeID, err := h.resolveEmployee(r, scope, *req.EmployeeID)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Employee not found in your company"})
			return
		}
		appointment.EmployeeID = employeeID
	}

	if err := h.db.WithContext(r.Context()).Create(&appointment).Error; err != nil {
		h.internalError(w, "Failed to create appointment", err)
		return
	}

	writeJSON(w, http.StatusCreated, appointment)
}

// Get handles GET /api/v1/appointments/{id}
func (h *AppointmentHandler) Get(w http.ResponseWriter, r *http.Request) {
	scope, ok := companyScope(w, r, h.resolver)
	if !ok {
		return
	}

	appointmentID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid appointment ID"})
		return
	}

	var appointment models.Appointment
	if err := h.db.WithContext(r.Context()).
		Preload("Employee").
		Where("id = ? AND company_id = ?", appointmentID, scope).
		First(&appointment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "Appointment not found"})
			return
		}
		h.internalError(w, "Failed to get appointment", err)
		return
	}

	writeJSON(w, http.StatusOK, appointment)
}

// Update handles PUT /api/v1/appointments/{id}
func (h *AppointmentHandler) Update(w http.ResponseWriter, r *http.Request) {
	scope, ok := companyScope(w, r, h.resolver)
	if !ok {
		return
	}

	appointmentID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid appointment ID"})
		return
	}

	var req AppointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}

	if errs := req.Validate(); len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Validation failed", Details: errs})
		return
	}

	var appointment models.Appointment
	if err := h.db.WithContext(r.Context()).
		Where("id = ? AND company_id = ?", appointmentID, scope).
		First(&appointment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "Appointment not found"})
			return
		}
		h.internalError(w, "Failed to get appointment", err)
		return
	}

	appointment.ClientName = req.ClientName
	appointment.ClientPhone = req.ClientPhone
	appointment.Notes = req.Notes
	appointment.ScheduledAt, _ = time.Parse(time.RFC3339, req.ScheduledAt)

	if req.EmployeeID != nil {
		if *req.EmployeeID == "" {
			appointment.EmployeeID = nil
		} else {
			employeeID, err := h.resolveEmployee(r, scope, *req.EmployeeID)
			if err != nil {
				writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Employee not found in your company"})
				return
			}
			appointment.EmployeeID = employeeID
		}
	}

	if err := h.db.WithContext(r.Context()).Save(&appointment).Error; err != nil {
		h.internalError(w, "Failed to update appointment", err)
		return
	}

	writeJSON(w, http.StatusOK, appointment)
}

// UpdateStatus handles PUT /api/v1/appointments/{id}/status
func (h *AppointmentHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	scope, ok := companyScope(w, r, h.resolver)
	if !ok {
		return
	}

	appointmentID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid appointment ID"})
		return
	}

	var req UpdateAppointmentStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}

	status := models.AppointmentStatus(req.Status)
	if !status.Valid() {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid status"})
		return
	}

	result := h.db.WithContext(r.Context()).
		Model(&models.Appointment{}).
		Where("id = ? AND company_id = ?", appointmentID, scope).
		Update("status", status)

	if result.Error != nil {
		h.internalError(w, "Failed to update appointment status", result.Error)
		return
	}

	if result.RowsAffected == 0 {
		writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "Appointment not found"})
		return
	}

	writeJSON(w, http.StatusOK, dto.SuccessResponse{Message: "Status updated"})
}

// Delete handles DELETE /api/v1/appointments/{id}
func (h *AppointmentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	scope, ok := companyScope(w, r, h.resolver)
	if !ok {
		return
	}

	appointmentID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid appointment ID"})
		return
	}

	result := h.db.WithContext(r.Context()).
		Where("id = ? AND company_id = ?", appointmentID, scope).
		Delete(&models.Appointment{})

	if result.Error != nil {
		h.internalError(w, "Failed to delete appointment", result.Error)
		return
	}

	if result.RowsAffected == 0 {
		writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "Appointment not found"})
		return
	}

	writeJSON(w, http.StatusOK, dto.SuccessResponse{Message: "Appointment deleted"})
}
