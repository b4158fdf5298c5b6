// Package tenant decides which company's rows a request may touch. Every
// company-scoped read or write goes through a scope derived here; the checks
// in this package are the only boundary between tenants' data.
package tenant

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/propdesk/propdesk/internal/database/models"
	"gorm.io/gorm"
)

var (
	ErrNoCompany    = errors.New("caller has no company")
	ErrCrossTenant  = errors.New("company does not match caller's company")
	ErrUnauthorized = errors.New("caller may not manage this company")
	ErrUserNotFound = errors.New("user not found")
)

type Resolver struct {
	db *gorm.DB
}

func NewResolver(db *gorm.DB) *Resolver {
	return &Resolver{db: db}
}

// Scope returns the company id to filter company-scoped queries by. Callers
// without a company affiliation have no scope at all.
func (r *Resolver) Scope(caller *models.User) (string, error) {
	if caller.CompanyID == nil {
		return "", ErrNoCompany
	}
	return *caller.CompanyID, nil
}

// ValidateCompanyAccess permits a request against requestedCompanyID only
// when it is the caller's own company. An admin gets no wider reach: they
// administer their own company, nobody else's. When a path parameter and the
// caller's affiliation disagree, the path parameter loses.
func (r *Resolver) ValidateCompanyAccess(caller *models.User, requestedCompanyID string) error {
	if !caller.InCompany(requestedCompanyID) {
		return ErrCrossTenant
	}
	return nil
}

// AssignCompany moves targetUserID into companyID. Only an admin of that same
// company may do it.
func (r *Resolver) AssignCompany(ctx context.Context, caller *models.User, targetUserID uuid.UUID, companyID string) (*models.User, error) {
	if caller.Role != models.RoleAdmin || !caller.InCompany(companyID) {
		return nil, ErrUnauthorized
	}

	var target models.User
	if err := r.db.WithContext(ctx).First(&target, "id = ?", targetUserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	target.CompanyID = &companyID
	if err := r.db.WithContext(ctx).Model(&target).Update("company_id", companyID).Error; err != nil {
		return nil, err
	}

	return &target, nil
}

// CompanyUsers lists the accounts affiliated with the caller's company.
// Admin only.
func (r *Resolver) CompanyUsers(ctx context.Context, caller *models.User) ([]models.User, error) {
	if caller.Role != models.RoleAdmin {
		return nil, ErrUnauthorized
	}
	if caller.CompanyID == nil {
		return nil, ErrNoCompany
	}

	var users []models.User
	if err := r.db.WithContext(ctx).
		Where("company_id = ?", *caller.CompanyID).
		Order("created_at ASC").
		Find(&users).Error; err != nil {
		return nil, err
	}

	return users, nil
}
