package repository

import (
	"errors"

	"github.com/oksasatya/patient-provisioning/internal/domain/entity"
)

var (
	// ErrNotFound is returned when no row matches the given identifier.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateEmail is returned when the storage layer's unique
	// constraint on email rejects a write. The constraint is the final
	// arbiter under concurrent creates; application-level pre-checks are
	// an optimization only.
	ErrDuplicateEmail = errors.New("duplicate email")
)

// PatientRepository defines the interface for patient-related database operations.
type PatientRepository interface {
	Create(p *entity.Patient) error
	GetByID(id string) (*entity.Patient, error)
	ExistsByEmail(email string) (bool, error)
	ExistsByEmailExcluding(email, id string) (bool, error)
	Update(p *entity.Patient) error
	Delete(id string) error
	List() ([]*entity.Patient, error)
}
