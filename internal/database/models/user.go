package models

// Role is the closed set of account roles.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleEmployee Role = "employee"
	RoleMember   Role = "member"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleEmployee, RoleMember:
		return true
	}
	return false
}

type User struct {
	Base
	Email        string  `gorm:"uniqueIndex;not null" json:"email"` // stored lowercase
	PasswordHash string  `gorm:"not null" json:"-"`
	Name         string  `json:"name"`
	Role         Role    `gorm:"type:varchar(16);default:'member'" json:"role"`
	CompanyID    *string `gorm:"index" json:"company_id"` // nil until assigned
	IsActive     bool    `gorm:"default:true" json:"is_active"`
}

func (User) TableName() string {
	return "users"
}

// InCompany reports whether the user belongs to the given company.
func (u *User) InCompany(companyID string) bool {
	return u.CompanyID != nil && *u.CompanyID == companyID
}
