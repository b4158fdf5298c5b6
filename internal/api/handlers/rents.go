package handlers

import (
	"encoding/json"
	"errors"
	"io"
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

type RentHandler struct {
	base
	db       *gorm.DB
	resolver *tenant.Resolver
}

func NewRentHandler(db *gorm.DB, resolver *tenant.Resolver, logger *slog.Logger, dev bool) *RentHandler {
	return &RentHandler{base: base{logger: logger, dev: dev}, db: db, resolver: resolver}
}

type RentRecordRequest struct {
	ListingID   *string `json:"listing_id,omitempty"`
	TenantName  string  `json:"tenant_name"`
	AmountCents int64   `json:"amount_cents"`
	PeriodMonth string  `json:"period_month"` // "YYYY-MM"
	Notes       string  `json:"notes"`
}

func (r RentRecordRequest) Validate() map[string]string {
	errs := make(map[string]string)
	if r.TenantName == "" {
		errs["tenant_name"] = "Tenant name is required"
	}
	if r.AmountCents <= 0 {
		errs["amount_cents"] = "Amount must be positive"
	}
	if r.PeriodMonth == "" {
		errs["period_month"] = "Period is required"
	} else if !validation.IsValidPeriodMonth(r.PeriodMonth) {
		errs["period_month"] = "Period must be formatted YYYY-MM"
	}
	if r.ListingID != nil && *r.ListingID != "" {
		if _, err := uuid.Parse(*r.ListingID); err != nil {
			errs["listing_id"] = "Invalid listing ID format"
		}
	}
	return errs
}

type CollectRentRequest struct {
	Method string `json:"method"`
}

// List handles GET /api/v1/rents
func (h *RentHandler) List(w http.ResponseWriter, r *http.Request) {
	scope, ok := companyScope(w, r, h.resolver)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))
	pagination := dto.PaginationParams{Page: page, PerPage: perPage}
	pagination.Normalize()

	query := h.db.WithContext(r.Context()).Model(&models.RentRecord{}).Where("company_id = ?", scope)

	if period := r.URL.Query().Get("period"); period != "" {
		query = query.Where("period_month = ?", period)
	}
	if collected := r.URL.Query().Get("collected"); collected != "" {
		if collected == "true" {
			query = query.Where("collected_at IS NOT NULL")
		} else {
			query = query.Where("collected_at IS NULL")
		}
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		h.internalError(w, "Failed to count rent records", err)
		return
	}

	var records []models.RentRecord
	if err := query.
		Order("period_month DESC, created_at DESC").
		Offset(pagination.Offset()).
		Limit(pagination.PerPage).
		Find(&records).Error; err != nil {
		h.internalError(w, "Failed to list rent records", err)
		return
	}

	totalPages := int(total) / pagination.PerPage
	if int(total)%pagination.PerPage > 0 {
		totalPages++
	}

	writeJSON(w, http.StatusOK, dto.PaginatedResponse{
		Data:       records,
		Total:      total,
		Page:       pagination.Page,
		PerPage:    pagination.PerPage,
		TotalPages: totalPages,
	})
}

// Create handles POST /api/v1/rents
func (h *RentHandler) Create(w http.ResponseWriter, r *http.Request) {
	scope, ok := companyScope(w, r, h.resolver)
	if !ok {
		return
	}

	var req RentRecordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}

	if errs := req.Validate(); len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Validation failed", Details: errs})
		return
	}

	record := models.RentRecord{
		CompanyID:   scope,
		TenantName:  req.TenantName,
		AmountCents: req.AmountCents,
		PeriodMonth: req.PeriodMonth,
		Notes:       req.Notes,
	}

	if req.ListingID != nil && *req.ListingID != "" {
		listingID, _ := uuid.Parse(*req.ListingID)
		// The listing must belong to a user of this company.
		var listing models.Listing
		err := h.db.WithContext(r.Context()).
			Joins("JOIN users ON users.id = listings.user_id").
			Where("listings.id = ? AND users.company_id = ?", listingID, scope).
			First(&listing).Error
		if err != nil {
			writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Listing not found in your company"})
			return
		}
		record.ListingID = &listingID
	}

	if err := h.db.WithContext(r.Context()).Create(&record).Error; err != nil {
		h.internalError(w, "Failed to create rent record", err)
		return
	}

	writeJSON(w, http.StatusCreated, record)
}

// Get handles GET /api/v1/rents/{id}
func (h *RentHandler) Get(w http.ResponseWriter, r *http.Request) {
	scope, ok := companyScope(w, r, h.resolver)
	if !ok {
		return
	}

	recordID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid rent record ID"})
		return
	}

	var record models.RentRecord
	if err := h.db.WithContext(r.Context()).
		Where("id = ? AND company_id = ?", recordID, scope).
		First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "Rent record not found"})
			return
		}
		h.internalError(w, "Failed to get rent record", err)
		return
	}

	writeJSON(w, http.StatusOK, record)
}

// Collect handles POST /api/v1/rents/{id}/collect. Recording a payment on an
// already-collected record is rejected rather than overwritten.
func (h *RentHandler) Collect(w http.ResponseWriter, r *http.Request) {
	scope, ok := companyScope(w, r, h.resolver)
	if !ok {
		return
	}

	recordID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid rent record ID"})
		return
	}

	// Method is optional; an empty body means a cash payment.
	var req CollectRentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}
	if req.Method == "" {
		req.Method = "cash"
	}

	var record models.RentRecord
	if err := h.db.WithContext(r.Context()).
		Where("id = ? AND company_id = ?", recordID, scope).
		First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "Rent record not found"})
			return
		}
		h.internalError(w, "Failed to get rent record", err)
		return
	}

	if record.Collected() {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Rent already collected for this record"})
		return
	}

	now := time.Now()
	record.CollectedAt = &now
	record.Method = req.Method

	if err := h.db.WithContext(r.Context()).
		Model(&record).
		Updates(map[string]interface{}{"collected_at": now, "method": req.Method}).Error; err != nil {
		h.internalError(w, "Failed to record rent collection", err)
		return
	}

	writeJSON(w, http.StatusOK, record)
}

// Delete handles DELETE /api/v1/rents/{id}
func (h *RentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	scope, ok := companyScope(w, r, h.resolver)
	if !ok {
		return
	}

	recordID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid rent record ID"})
		return
	}

	result := h.db.WithContext(r.Context()).
		Where("id = ? AND company_id = ?", recordID, scope).
		Delete(&models.RentRecord{})

	if result.Error != nil {
		h.internalError(w, "Failed to delete rent record", result.Error)
		return
	}

	if result.RowsAffected == 0 {
		writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "Rent record not found"})
		return
	}

	writeJSON(w, http.StatusOK, dto.SuccessResponse{Message: "Rent record deleted"})
}
