package entity

import (
	"time"
)

// Patient is the aggregate root for the patient domain.
// ID and CreatedAt are assigned once at creation and never change;
// the remaining fields are mutable through the provisioning service only.
type Patient struct {
	ID          string
	Name        string
	Email       string
	Address     string
	DateOfBirth time.Time
	CreatedAt   time.Time
}
