package models

import "time"

type Employee struct {
	Base
	CompanyID   string    `gorm:"index;not null" json:"company_id"`
	Name        string    `gorm:"not null" json:"name"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone"`
	Position    string    `json:"position"`
	SalaryCents int64     `json:"salary_cents"`
	HiredAt     time.Time `json:"hired_at"`
}

func (Employee) TableName() string {
	return "employees"
}
