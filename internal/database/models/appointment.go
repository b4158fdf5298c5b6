package models

import (
	"time"

	"github.com/google/uuid"
)

type AppointmentStatus string

const (
	AppointmentScheduled AppointmentStatus = "scheduled"
	AppointmentCompleted AppointmentStatus = "completed"
	AppointmentCancelled AppointmentStatus = "cancelled"
)

func (s AppointmentStatus) Valid() bool {
	switch s {
	case AppointmentScheduled, AppointmentCompleted, AppointmentCancelled:
		return true
	}
	return false
}

type Appointment struct {
	Base
	CompanyID   string            `gorm:"index;not null" json:"company_id"`
	EmployeeID  *uuid.UUID        `gorm:"type:uuid;index" json:"employee_id"` // optional assignee
	ClientName  string            `gorm:"not null" json:"client_name"`
	ClientPhone string            `json:"client_phone"`
	ScheduledAt time.Time         `gorm:"index" json:"scheduled_at"`
	Status      AppointmentStatus `gorm:"type:varchar(16);default:'scheduled'" json:"status"`
	Notes       string            `json:"notes"`

	Employee *Employee `gorm:"foreignKey:EmployeeID" json:"employee,omitempty"`
}

func (Appointment) TableName() string {
	return "appointments"
}
