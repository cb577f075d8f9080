package repository

import "github.com/oksasatya/patient-provisioning/internal/domain/entity"

// UserRepository defines the interface for auth principal lookups.
type UserRepository interface {
	Create(u *entity.User) error
	GetByEmail(email string) (*entity.User, error)
}
