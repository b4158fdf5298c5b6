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
	"github.com/propdesk/propdesk/internal/api/middleware"
	"github.com/propdesk/propdesk/internal/database/models"
	"gorm.io/gorm"
)

// ListingHandler serves the legacy single-owner listing resource: rows are
// scoped to the user who created them, never to a company.
type ListingHandler struct {
	base
	db *gorm.DB
}

func NewListingHandler(db *gorm.DB, logger *slog.Logger, dev bool) *ListingHandler {
	return &ListingHandler{base: base{logger: logger, dev: dev}, db: db}
}

type ListingRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Address     string `json:"address"`
	City        string `json:"city"`
	PriceCents  int64  `json:"price_cents"`
	Bedrooms    int    `json:"bedrooms"`
	Bathrooms   int    `json:"bathrooms"`
	Available   *bool  `json:"available,omitempty"`
	ImageURLs   string `json:"image_urls,omitempty"`
}

func (r ListingRequest) Validate() map[string]string {
	errs := make(map[string]string)
	if r.Title == "" {
		errs["title"] = "Title is required"
	}
	if r.PriceCents < 0 {
		errs["price_cents"] = "Price must not be negative"
	}
	if r.Bedrooms < 0 || r.Bathrooms < 0 {
		errs["rooms"] = "Room counts must not be negative"
	}
	if r.ImageURLs != "" && !json.Valid([]byte(r.ImageURLs)) {
		errs["image_urls"] = "Image URLs must be a JSON array"
	}
	return errs
}

type ListingResponse struct {
	ID          string `json:"id"`
	UserID      string `json:"user_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Address     string `json:"address"`
	City        string `json:"city"`
	PriceCents  int64  `json:"price_cents"`
	Bedrooms    int    `json:"bedrooms"`
	Bathrooms   int    `json:"bathrooms"`
	Available   bool   `json:"available"`
	ImageURLs   string `json:"image_urls"`
	CreatedAt   string `json:"created_at"`
}

func listingToResponse(l *models.Listing) ListingResponse {
	return ListingResponse{
		ID:          l.ID.String(),
		UserID:      l.UserID.String(),
		Title:       l.Title,
		Description: l.Description,
		Address:     l.Address,
		City:        l.City,
		PriceCents:  l.PriceCents,
		Bedrooms:    l.Bedrooms,
		Bathrooms:   l.Bathrooms,
		Available:   l.Available,
		ImageURLs:   l.ImageURLs,
		CreatedAt:   l.CreatedAt.Format(time.RFC3339),
	}
}

// List handles GET /api/v1/listings
func (h *ListingHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))
	pagination := dto.PaginationParams{Page: page, PerPage: perPage}
	pagination.Normalize()

	query := h.db.WithContext(r.Context()).Model(&models.Listing{}).Where("user_id = ?", userID)

	if city := r.URL.Query().Get("city"); city != "" {
		query = query.Where("city = ?", city)
	}
	if avail := r.URL.Query().Get("available"); avail != "" {
		query = query.Where("available = ?", avail == "true")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		h.internalError(w, "Failed to count listings", err)
		return
	}

	var listings []models.Listing
	if err := query.
		Order("created_at DESC").
		Offset(pagination.Offset()).
		Limit(pagination.PerPage).
		Find(&listings).Error; err != nil {
		h.internalError(w, "Failed to list listings", err)
		return
	}

	response := make([]ListingResponse, len(listings))
	for i := range listings {
		response[i] = listingToResponse(&listings[i])
	}

	totalPages := int(total) / pagination.PerPage
	if int(total)%pagination.PerPage > 0 {
		totalPages++
	}

	writeJSON(w, http.StatusOK, dto.PaginatedResponse{
		Data:       response,
		Total:      total,
		Page:       pagination.Page,
		PerPage:    pagination.PerPage,
		TotalPages: totalPages,
	})
}

// Create handles POST /api/v1/listings
func (h *ListingHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req ListingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}

	if errs := req.Validate(); len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Validation failed", Details: errs})
		return
	}

	imageURLs := req.ImageURLs
	if imageURLs == "" {
		imageURLs = "[]"
	}

	// Owner comes from the verified session, never from the payload.
	listing := models.Listing{
		UserID:      userID,
		Title:       req.Title,
		Description: req.Description,
		Address:     req.Address,
		City:        req.City,
		PriceCents:  req.PriceCents,
		Bedrooms:    req.Bedrooms,
		Bathrooms:   req.Bathrooms,
		Available:   true,
		ImageURLs:   imageURLs,
	}
	if req.Available != nil {
		listing.Available = *req.Available
	}

	if err := h.db.WithContext(r.Context()).Create(&listing).Error; err != nil {
		h.internalError(w, "Failed to create listing", err)
		return
	}

	writeJSON(w, http.StatusCreated, listingToResponse(&listing))
}

// Get handles GET /api/v1/listings/{id}
func (h *ListingHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	listingID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid listing ID"})
		return
	}

	var listing models.Listing
	if err := h.db.WithContext(r.Context()).
		Where("id = ? AND user_id = ?", listingID, userID).
		First(&listing).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "Listing not found"})
			return
		}
		h.internalError(w, "Failed to get listing", err)
		return
	}

	writeJSON(w, http.StatusOK, listingToResponse(&listing))
}

// Update handles PUT /api/v1/listings/{id}
func (h *ListingHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	listingID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid listing ID"})
		return
	}

	var req ListingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}

	if errs := req.Validate(); len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Validation failed", Details: errs})
		return
	}

	var listing models.Listing
	if err := h.db.WithContext(r.Context()).
		Where("id = ? AND user_id = ?", listingID, userID).
		First(&listing).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "Listing not found"})
			return
		}
		h.internalError(w, "Failed to get listing", err)
		return
	}

	listing.Title = req.Title
	listing.Description = req.Description
	listing.Address = req.Address
	listing.City = req.City
	listing.PriceCents = req.PriceCents
	listing.Bedrooms = req.Bedrooms
	listing.Bathrooms = req.Bathrooms
	if req.Available != nil {
		listing.Available = *req.Available
	}
	if req.ImageURLs != "" {
		listing.ImageURLs = req.ImageURLs
	}

	if err := h.db.WithContext(r.Context()).Save(&listing).Error; err != nil {
		h.internalError(w, "Failed to update listing", err)
		return
	}

	writeJSON(w, http.StatusOK, listingToResponse(&listing))
}

// Delete handles DELETE /api/v1/listings/{id}
func (h *ListingHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	listingID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid listing ID"})
		return
	}

	result := h.db.WithContext(r.Context()).
		Where("id = ? AND user_id = ?", listingID, userID).
		Delete(&models.Listing{})

	if result.Error != nil {
		h.internalError(w, "Failed to delete listing", result.Error)
		return
	}

	if result.RowsAffected == 0 {
		writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "Listing not found"})
		return
	}

	writeJSON(w, http.StatusOK, dto.SuccessResponse{Message: "Listing deleted"})
}
