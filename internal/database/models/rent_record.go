package models

import (
	"time"

	"github.com/google/uuid"
)

// RentRecord tracks an expected rent payment for a period. CollectedAt stays
// nil until the payment is recorded.
type RentRecord struct {
	Base
	CompanyID   string     `gorm:"index;not null" json:"company_id"`
	ListingID   *uuid.UUID `gorm:"type:uuid;index" json:"listing_id"` // optional link to a listing
	TenantName  string     `gorm:"not null" json:"tenant_name"`
	AmountCents int64      `json:"amount_cents"`
	PeriodMonth string     `gorm:"index;not null" json:"period_month"` // "YYYY-MM"
	CollectedAt *time.Time `json:"collected_at"`
	Method      string     `json:"method"` // cash, transfer, card
	Notes       string     `json:"notes"`
}

func (RentRecord) TableName() string {
	return "rent_records"
}

// Collected reports whether the rent for this record has been recorded.
func (r *RentRecord) Collected() bool {
	return r.CollectedAt != nil
}
