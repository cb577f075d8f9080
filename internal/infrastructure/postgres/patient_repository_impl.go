package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/patient-provisioning/internal/domain/entity"
	"github.com/oksasatya/patient-provisioning/internal/domain/repository"
)

const uniqueViolation = "23505"

type PatientRepository struct {
	pool *pgxpool.Pool
}

func NewPatientRepository(pool *pgxpool.Pool) *PatientRepository {
	return &PatientRepository{pool: pool}
}

// translateErr maps the unique-constraint rejection on patients.email to
// ErrDuplicateEmail so callers see the same outcome regardless of whether
// the pre-check or the constraint caught the collision.
func translateErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return repository.ErrDuplicateEmail
	}
	return err
}

func (r *PatientRepository) Create(p *entity.Patient) error {
	ctx := context.Background()
	row := r.pool.QueryRow(ctx, `
		INSERT INTO patients (name, email, address, date_of_birth, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, p.Name, p.Email, p.Address, p.DateOfBirth, p.CreatedAt)

	if err := row.Scan(&p.ID); err != nil {
		return translateErr(err)
	}
	return nil
}

func (r *PatientRepository) GetByID(id string) (*entity.Patient, error) {
	ctx := context.Background()
	p := &entity.Patient{}

	row := r.pool.QueryRow(ctx, `
		SELECT id, name, email, address, date_of_birth, created_at
		FROM patients
		WHERE id = $1
	`, id)

	if err := row.Scan(&p.ID, &p.Name, &p.Email, &p.Address,
		&p.DateOfBirth, &p.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return p, nil
}

func (r *PatientRepository) ExistsByEmail(email string) (bool, error) {
	ctx := context.Background()
	var exists bool

	row := r.pool.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM patients WHERE email = $1)
	`, email)

	if err := row.Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *PatientRepository) ExistsByEmailExcluding(email, id string) (bool, error) {
	ctx := context.Background()
	var exists bool

	row := r.pool.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM patients WHERE email = $1 AND id <> $2)
	`, email, id)

	if err := row.Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *PatientRepository) Update(p *entity.Patient) error {
	ctx := context.Background()

	res, err := r.pool.Exec(ctx, `
		UPDATE patients
		SET name = $1, email = $2, address = $3, date_of_birth = $4
		WHERE id = $5
	`, p.Name, p.Email, p.Address, p.DateOfBirth, p.ID)
	if err != nil {
		return translateErr(err)
	}

	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// Delete removes a patient by id. Deleting an unknown id is not an error;
// the operation is idempotent.
func (r *PatientRepository) Delete(id string) error {
	ctx := context.Background()
	_, err := r.pool.Exec(ctx, `DELETE FROM patients WHERE id = $1`, id)
	return err
}

func (r *PatientRepository) List() ([]*entity.Patient, error) {
	ctx := context.Background()

	rows, err := r.pool.Query(ctx, `
		SELECT id, name, email, address, date_of_birth, created_at
		FROM patients
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*entity.Patient
	for rows.Next() {
		p := &entity.Patient{}
		if err := rows.Scan(&p.ID, &p.Name, &p.Email, &p.Address,
			&p.DateOfBirth, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

var _ repository.PatientRepository = (*PatientRepository)(nil)
