package application

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/patient-provisioning/internal/domain/entity"
	repo "github.com/oksasatya/patient-provisioning/internal/domain/repository"
	"github.com/oksasatya/patient-provisioning/pkg/helpers"
)

var (
	ErrEmailExists      = errors.New("email address already exists")
	ErrPatientNotFound  = errors.New("patient not found")
	ErrInvalidBirthDate = errors.New("invalid date of birth")
)

const dateLayout = "2006-01-02"

// sideEffectTimeout bounds the billing call, the event publish, and the
// index request so a slow peer cannot hold the response path.
const sideEffectTimeout = 5 * time.Second

// BillingGateway opens a billing account on the remote billing system.
type BillingGateway interface {
	CreateAccount(ctx context.Context, patientID, name, email string) (*entity.BillingAccount, error)
}

// EventPublisher hands a domain event to the messaging layer. The
// messaging collaborator owns retry and durability.
type EventPublisher interface {
	PublishJSON(ctx context.Context, body any) error
}

// PatientService orchestrates provisioning: persist, then billing, then
// event emission. Once the persist step commits, nothing rolls it back;
// downstream failures surface only through the log side channel.
type PatientService struct {
	Repo            repo.PatientRepository
	Billing         BillingGateway
	Publisher       EventPublisher
	Redis           *redis.Client
	Logger          *logrus.Logger
	ES              *elasticsearch.Client
	ESPatientsIndex string
}

func NewPatientService(repository repo.PatientRepository, billing BillingGateway, publisher EventPublisher, rdb *redis.Client, logger *logrus.Logger, es *elasticsearch.Client, esPatientsIndex string) *PatientService {
	return &PatientService{
		Repo:            repository,
		Billing:         billing,
		Publisher:       publisher,
		Redis:           rdb,
		Logger:          logger,
		ES:              es,
		ESPatientsIndex: esPatientsIndex,
	}
}

type CreatePatientInput struct {
	Name        string
	Email       string
	Address     string
	DateOfBirth string
}

type UpdatePatientInput struct {
	Name        string
	Email       string
	Address     string
	DateOfBirth string
}

func billingKey(patientID string) string {
	return "patient:billing:" + patientID
}

// Create provisions a new patient. The uniqueness pre-check is an
// optimization: a concurrent create with the same email is still rejected
// by the storage constraint and reported as the same ErrEmailExists.
func (s *PatientService) Create(ctx context.Context, in CreatePatientInput) (*entity.Patient, error) {
	exists, err := s.Repo.ExistsByEmail(in.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrEmailExists
	}

	dob, err := time.Parse(dateLayout, in.DateOfBirth)
	if err != nil {
		return nil, ErrInvalidBirthDate
	}

	p := &entity.Patient{
		Name:        in.Name,
		Email:       in.Email,
		Address:     in.Address,
		DateOfBirth: dob,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.Repo.Create(p); err != nil {
		if errors.Is(err, repo.ErrDuplicateEmail) {
			return nil, ErrEmailExists
		}
		return nil, err
	}

	// The patient exists from here on. Billing and eventing are
	// best-effort and must not undo or fail the create.
	s.provisionBilling(ctx, p)
	s.publishCreated(ctx, p)
	s.indexPatient(ctx, p)

	return p, nil
}

// Update overwrites the mutable fields of an existing patient. An email
// collision with the patient's own record is not a conflict. No billing
// or event step runs on update.
func (s *PatientService) Update(ctx context.Context, id string, in UpdatePatientInput) (*entity.Patient, error) {
	p, err := s.Repo.GetByID(id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrPatientNotFound
		}
		return nil, err
	}

	taken, err := s.Repo.ExistsByEmailExcluding(in.Email, id)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrEmailExists
	}

	dob, err := time.Parse(dateLayout, in.DateOfBirth)
	if err != nil {
		return nil, ErrInvalidBirthDate
	}

	p.Name = in.Name
	p.Email = in.Email
	p.Address = in.Address
	p.DateOfBirth = dob

	if err := s.Repo.Update(p); err != nil {
		switch {
		case errors.Is(err, repo.ErrDuplicateEmail):
			return nil, ErrEmailExists
		case errors.Is(err, repo.ErrNotFound):
			return nil, ErrPatientNotFound
		}
		return nil, err
	}

	s.indexPatient(ctx, p)
	return p, nil
}

// Delete removes a patient by id. Deleting an id that does not exist
// succeeds; no compensating action is taken against billing or messaging.
func (s *PatientService) Delete(ctx context.Context, id string) error {
	if err := s.Repo.Delete(id); err != nil {
		return err
	}
	if s.ES != nil && s.ESPatientsIndex != "" {
		c, cancel := context.WithTimeout(ctx, sideEffectTimeout)
		defer cancel()
		req := esapi.DeleteRequest{Index: s.ESPatientsIndex, DocumentID: id}
		if res, err := req.Do(c, s.ES); err == nil {
			_ = res.Body.Close()
		}
	}
	return nil
}

func (s *PatientService) List(ctx context.Context) ([]*entity.Patient, error) {
	return s.Repo.List()
}

// provisionBilling performs the synchronous billing call. Failure is
// logged and never propagated; a successful observation is cached in
// Redis so operators can see what the remote system assigned.
func (s *PatientService) provisionBilling(ctx context.Context, p *entity.Patient) {
	if s.Billing == nil {
		return
	}
	c, cancel := context.WithTimeout(ctx, sideEffectTimeout)
	defer cancel()

	account, err := s.Billing.CreateAccount(c, p.ID, p.Name, p.Email)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("patient_id", p.ID).Warn("billing account creation failed")
		}
		return
	}
	if s.Redis != nil {
		if rErr := helpers.RedisSetJSON(c, s.Redis, billingKey(p.ID), account, 24*time.Hour); rErr != nil && s.Logger != nil {
			s.Logger.WithError(rErr).WithField("patient_id", p.ID).Warn("billing observation cache failed")
		}
	}
}

// publishCreated emits the PatientCreated event. Fire-and-forget: a
// publish failure is logged and the create still succeeds.
func (s *PatientService) publishCreated(ctx context.Context, p *entity.Patient) {
	if s.Publisher == nil {
		return
	}
	c, cancel := context.WithTimeout(ctx, sideEffectTimeout)
	defer cancel()

	evt := entity.NewPatientCreatedEvent(p)
	if err := s.Publisher.PublishJSON(c, evt); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("patient_id", p.ID).Warn("patient created event publish failed")
	}
}

func (s *PatientService) indexPatient(ctx context.Context, p *entity.Patient) {
	if s.ES == nil || s.ESPatientsIndex == "" {
		return
	}
	doc := map[string]any{
		"id":            p.ID,
		"name":          p.Name,
		"email":         p.Email,
		"address":       p.Address,
		"date_of_birth": p.DateOfBirth.Format(dateLayout),
		"created_at":    p.CreatedAt.Format(time.RFC3339Nano),
	}
	b, _ := json.Marshal(doc)
	req := esapi.IndexRequest{Index: s.ESPatientsIndex, DocumentID: p.ID, Body: strings.NewReader(string(b)), Refresh: "false"}
	c, cancel := context.WithTimeout(ctx, sideEffectTimeout)
	defer cancel()
	res, err := req.Do(c, s.ES)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("patient_id", p.ID).Warn("es index failed")
		}
		return
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && s.Logger != nil {
		s.Logger.WithField("status", res.Status()).WithField("patient_id", p.ID).Warn("es index response error")
	}
}

// Search performs a multi_match query over name and email.
func (s *PatientService) Search(ctx context.Context, q string, size int) ([]map[string]any, error) {
	if s.ES == nil || s.ESPatientsIndex == "" {
		return []map[string]any{}, nil
	}
	if size <= 0 || size > 50 {
		size = 10
	}
	query := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":  q,
				"fields": []string{"email^2", "name"},
			},
		},
		"size": size,
	}
	b, _ := json.Marshal(query)

	c, cancel := context.WithTimeout(ctx, sideEffectTimeout)
	defer cancel()

	res, err := s.ES.Search(s.ES.Search.WithContext(c), s.ES.Search.WithIndex(s.ESPatientsIndex), s.ES.Search.WithBody(strings.NewReader(string(b))))
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID     string         `json:"_id"`
				Source map[string]any `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}

	out := make([]map[string]any, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		out = append(out, h.Source)
	}
	return out, nil
}
