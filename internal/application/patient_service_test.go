package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/patient-provisioning/internal/domain/entity"
	"github.com/oksasatya/patient-provisioning/internal/domain/repository"
)

// MockPatientRepository is a mock implementation of repository.PatientRepository
type MockPatientRepository struct {
	mock.Mock
}

func (m *MockPatientRepository) Create(p *entity.Patient) error {
	args := m.Called(p)
	return args.Error(0)
}

func (m *MockPatientRepository) GetByID(id string) (*entity.Patient, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Patient), args.Error(1)
}

func (m *MockPatientRepository) ExistsByEmail(email string) (bool, error) {
	args := m.Called(email)
	return args.Bool(0), args.Error(1)
}

func (m *MockPatientRepository) ExistsByEmailExcluding(email, id string) (bool, error) {
	args := m.Called(email, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockPatientRepository) Update(p *entity.Patient) error {
	args := m.Called(p)
	return args.Error(0)
}

func (m *MockPatientRepository) Delete(id string) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *MockPatientRepository) List() ([]*entity.Patient, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Patient), args.Error(1)
}

// MockBillingGateway is a mock implementation of BillingGateway
type MockBillingGateway struct {
	mock.Mock
}

func (m *MockBillingGateway) CreateAccount(ctx context.Context, patientID, name, email string) (*entity.BillingAccount, error) {
	args := m.Called(ctx, patientID, name, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.BillingAccount), args.Error(1)
}

// MockEventPublisher is a mock implementation of EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) PublishJSON(ctx context.Context, body any) error {
	args := m.Called(ctx, body)
	return args.Error(0)
}

func newServiceUnderTest(repo *MockPatientRepository, billing *MockBillingGateway, pub *MockEventPublisher) (*PatientService, *logtest.Hook) {
	logger, hook := logtest.NewNullLogger()
	svc := NewPatientService(repo, billing, pub, nil, logger, nil, "")
	return svc, hook
}

func validInput() CreatePatientInput {
	return CreatePatientInput{
		Name:        "Ada",
		Email:       "ada@x.com",
		Address:     "1 Infinite Loop",
		DateOfBirth: "1990-01-01",
	}
}

func TestCreate_Success(t *testing.T) {
	repo := new(MockPatientRepository)
	billing := new(MockBillingGateway)
	pub := new(MockEventPublisher)
	svc, _ := newServiceUnderTest(repo, billing, pub)

	repo.On("ExistsByEmail", "ada@x.com").Return(false, nil)
	repo.On("Create", mock.AnythingOfType("*entity.Patient")).Run(func(args mock.Arguments) {
		args.Get(0).(*entity.Patient).ID = "p-1"
	}).Return(nil)
	billing.On("CreateAccount", mock.Anything, "p-1", "Ada", "ada@x.com").
		Return(&entity.BillingAccount{AccountID: "1233", Status: "ACTIVE"}, nil)
	pub.On("PublishJSON", mock.Anything, mock.AnythingOfType("entity.PatientCreatedEvent")).Return(nil)

	p, err := svc.Create(context.Background(), validInput())
	require.NoError(t, err)
	assert.Equal(t, "p-1", p.ID)
	assert.Equal(t, "ada@x.com", p.Email)
	assert.False(t, p.CreatedAt.IsZero())
	assert.Equal(t, time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC), p.DateOfBirth)

	// the event carries the post-persist snapshot
	pub.AssertCalled(t, "PublishJSON", mock.Anything, mock.MatchedBy(func(body any) bool {
		evt, ok := body.(entity.PatientCreatedEvent)
		return ok && evt.EventType == entity.EventPatientCreated &&
			evt.PatientID == "p-1" && evt.Email == "ada@x.com" && evt.CreatedAt.Equal(p.CreatedAt)
	}))
	billing.AssertExpectations(t)
	repo.AssertExpectations(t)
}

func TestCreate_DuplicateEmailPreCheck(t *testing.T) {
	repo := new(MockPatientRepository)
	billing := new(MockBillingGateway)
	pub := new(MockEventPublisher)
	svc, _ := newServiceUnderTest(repo, billing, pub)

	repo.On("ExistsByEmail", "ada@x.com").Return(true, nil)

	_, err := svc.Create(context.Background(), validInput())
	assert.ErrorIs(t, err, ErrEmailExists)

	repo.AssertNotCalled(t, "Create", mock.Anything)
	billing.AssertNotCalled(t, "CreateAccount", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	pub.AssertNotCalled(t, "PublishJSON", mock.Anything, mock.Anything)
}

func TestCreate_DuplicateEmailAtPersist(t *testing.T) {
	// a concurrent create slips past the pre-check; the storage
	// constraint rejects it and the caller sees the same outcome
	repo := new(MockPatientRepository)
	billing := new(MockBillingGateway)
	pub := new(MockEventPublisher)
	svc, _ := newServiceUnderTest(repo, billing, pub)

	repo.On("ExistsByEmail", "ada@x.com").Return(false, nil)
	repo.On("Create", mock.Anything).Return(repository.ErrDuplicateEmail)

	_, err := svc.Create(context.Background(), validInput())
	assert.ErrorIs(t, err, ErrEmailExists)

	billing.AssertNotCalled(t, "CreateAccount", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	pub.AssertNotCalled(t, "PublishJSON", mock.Anything, mock.Anything)
}

func TestCreate_InvalidBirthDate(t *testing.T) {
	repo := new(MockPatientRepository)
	billing := new(MockBillingGateway)
	pub := new(MockEventPublisher)
	svc, _ := newServiceUnderTest(repo, billing, pub)

	repo.On("ExistsByEmail", "ada@x.com").Return(false, nil)

	in := validInput()
	in.DateOfBirth = "01/01/1990"
	_, err := svc.Create(context.Background(), in)
	assert.ErrorIs(t, err, ErrInvalidBirthDate)

	repo.AssertNotCalled(t, "Create", mock.Anything)
	billing.AssertNotCalled(t, "CreateAccount", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	pub.AssertNotCalled(t, "PublishJSON", mock.Anything, mock.Anything)
}

func TestCreate_StorageFailure(t *testing.T) {
	repo := new(MockPatientRepository)
	billing := new(MockBillingGateway)
	pub := new(MockEventPublisher)
	svc, _ := newServiceUnderTest(repo, billing, pub)

	boom := errors.New("connection refused")
	repo.On("ExistsByEmail", "ada@x.com").Return(false, nil)
	repo.On("Create", mock.Anything).Return(boom)

	_, err := svc.Create(context.Background(), validInput())
	assert.ErrorIs(t, err, boom)
	billing.AssertNotCalled(t, "CreateAccount", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCreate_BillingFailureDoesNotFailCreate(t *testing.T) {
	repo := new(MockPatientRepository)
	billing := new(MockBillingGateway)
	pub := new(MockEventPublisher)
	svc, hook := newServiceUnderTest(repo, billing, pub)

	repo.On("ExistsByEmail", "ada@x.com").Return(false, nil)
	repo.On("Create", mock.Anything).Run(func(args mock.Arguments) {
		args.Get(0).(*entity.Patient).ID = "p-1"
	}).Return(nil)
	billing.On("CreateAccount", mock.Anything, "p-1", "Ada", "ada@x.com").
		Return(nil, context.DeadlineExceeded)
	pub.On("PublishJSON", mock.Anything, mock.Anything).Return(nil)

	p, err := svc.Create(context.Background(), validInput())
	require.NoError(t, err)
	assert.Equal(t, "p-1", p.ID)

	// the failure is observable only through the log side channel
	found := false
	for _, e := range hook.Entries {
		if e.Level == logrus.WarnLevel && e.Message == "billing account creation failed" {
			found = true
			assert.Equal(t, "p-1", e.Data["patient_id"])
		}
	}
	assert.True(t, found, "expected billing failure warning")

	// the event still goes out after persistence
	pub.AssertCalled(t, "PublishJSON", mock.Anything, mock.Anything)
}

func TestCreate_PublishFailureDoesNotFailCreate(t *testing.T) {
	repo := new(MockPatientRepository)
	billing := new(MockBillingGateway)
	pub := new(MockEventPublisher)
	svc, hook := newServiceUnderTest(repo, billing, pub)

	repo.On("ExistsByEmail", "ada@x.com").Return(false, nil)
	repo.On("Create", mock.Anything).Run(func(args mock.Arguments) {
		args.Get(0).(*entity.Patient).ID = "p-1"
	}).Return(nil)
	billing.On("CreateAccount", mock.Anything, "p-1", "Ada", "ada@x.com").
		Return(&entity.BillingAccount{AccountID: "1233", Status: "ACTIVE"}, nil)
	pub.On("PublishJSON", mock.Anything, mock.Anything).Return(errors.New("broker down"))

	p, err := svc.Create(context.Background(), validInput())
	require.NoError(t, err)
	assert.Equal(t, "p-1", p.ID)

	found := false
	for _, e := range hook.Entries {
		if e.Level == logrus.WarnLevel && e.Message == "patient created event publish failed" {
			found = true
		}
	}
	assert.True(t, found, "expected publish failure warning")
}

func existing() *entity.Patient {
	return &entity.Patient{
		ID:          "p-1",
		Name:        "Ada",
		Email:       "ada@x.com",
		Address:     "1 Infinite Loop",
		DateOfBirth: time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC),
		CreatedAt:   time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestUpdate_OwnEmailIsNotConflict(t *testing.T) {
	repo := new(MockPatientRepository)
	billing := new(MockBillingGateway)
	pub := new(MockEventPublisher)
	svc, _ := newServiceUnderTest(repo, billing, pub)

	repo.On("GetByID", "p-1").Return(existing(), nil)
	repo.On("ExistsByEmailExcluding", "ada@x.com", "p-1").Return(false, nil)
	repo.On("Update", mock.Anything).Return(nil)

	p, err := svc.Update(context.Background(), "p-1", UpdatePatientInput{
		Name:        "Ada Lovelace",
		Email:       "ada@x.com",
		Address:     "2 Analytical Way",
		DateOfBirth: "1990-01-01",
	})
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", p.Name)
	assert.Equal(t, "2 Analytical Way", p.Address)
	// identity and creation timestamp untouched
	assert.Equal(t, "p-1", p.ID)
	assert.Equal(t, existing().CreatedAt, p.CreatedAt)

	billing.AssertNotCalled(t, "CreateAccount", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	pub.AssertNotCalled(t, "PublishJSON", mock.Anything, mock.Anything)
}

func TestUpdate_OtherEmailConflicts(t *testing.T) {
	repo := new(MockPatientRepository)
	svc, _ := newServiceUnderTest(repo, new(MockBillingGateway), new(MockEventPublisher))

	repo.On("GetByID", "p-1").Return(existing(), nil)
	repo.On("ExistsByEmailExcluding", "grace@x.com", "p-1").Return(true, nil)

	_, err := svc.Update(context.Background(), "p-1", UpdatePatientInput{
		Name:        "Ada",
		Email:       "grace@x.com",
		Address:     "1 Infinite Loop",
		DateOfBirth: "1990-01-01",
	})
	assert.ErrorIs(t, err, ErrEmailExists)
	repo.AssertNotCalled(t, "Update", mock.Anything)
}

func TestUpdate_NotFound(t *testing.T) {
	repo := new(MockPatientRepository)
	svc, _ := newServiceUnderTest(repo, new(MockBillingGateway), new(MockEventPublisher))

	repo.On("GetByID", "missing").Return(nil, repository.ErrNotFound)

	_, err := svc.Update(context.Background(), "missing", UpdatePatientInput{
		Name:        "Ada",
		Email:       "ada@x.com",
		Address:     "1 Infinite Loop",
		DateOfBirth: "1990-01-01",
	})
	assert.ErrorIs(t, err, ErrPatientNotFound)
}

func TestDelete_UnknownIDSucceeds(t *testing.T) {
	repo := new(MockPatientRepository)
	svc, _ := newServiceUnderTest(repo, new(MockBillingGateway), new(MockEventPublisher))

	repo.On("Delete", "missing").Return(nil)

	err := svc.Delete(context.Background(), "missing")
	assert.NoError(t, err)
}
