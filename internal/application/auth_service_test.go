package application

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/patient-provisioning/internal/domain/entity"
	"github.com/oksasatya/patient-provisioning/internal/domain/repository"
	"github.com/oksasatya/patient-provisioning/pkg/helpers"
)

// MockUserRepository is a mock implementation of repository.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(u *entity.User) error {
	args := m.Called(u)
	return args.Error(0)
}

func (m *MockUserRepository) GetByEmail(email string) (*entity.User, error) {
	args := m.Called(email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func newAuthService(t *testing.T, users *MockUserRepository) *AuthService {
	t.Helper()
	jwt := helpers.NewJWTManager("test-secret", 10*time.Hour)
	return NewAuthService(users, jwt, nil)
}

func storedUser(t *testing.T, password string) *entity.User {
	t.Helper()
	hash, err := helpers.HashPassword(password)
	require.NoError(t, err)
	return &entity.User{ID: "u-1", Email: "admin@example.com", Password: hash, Role: "ADMIN"}
}

func TestAuthenticate_Success(t *testing.T) {
	users := new(MockUserRepository)
	users.On("GetByEmail", "admin@example.com").Return(storedUser(t, "password123"), nil)
	svc := newAuthService(t, users)

	token, exp, ok := svc.Authenticate(context.Background(), "admin@example.com", "password123")
	require.True(t, ok)
	require.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(10*time.Hour), exp, 5*time.Second)

	claims, err := svc.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "admin@example.com", claims.Subject)
	assert.Equal(t, "ADMIN", claims.Role)
}

// Unknown user and wrong password must be indistinguishable: both return
// no token with no error detail.
func TestAuthenticate_MissAndMismatchLookAlike(t *testing.T) {
	users := new(MockUserRepository)
	users.On("GetByEmail", "nobody@example.com").Return(nil, repository.ErrNotFound)
	users.On("GetByEmail", "admin@example.com").Return(storedUser(t, "password123"), nil)
	svc := newAuthService(t, users)

	tokenMiss, _, okMiss := svc.Authenticate(context.Background(), "nobody@example.com", "password123")
	tokenWrong, _, okWrong := svc.Authenticate(context.Background(), "admin@example.com", "hunter2hunter2")

	assert.False(t, okMiss)
	assert.False(t, okWrong)
	assert.Equal(t, tokenMiss, tokenWrong)
	assert.Empty(t, tokenMiss)
}

func TestValidate_RejectsGarbage(t *testing.T) {
	svc := newAuthService(t, new(MockUserRepository))

	_, err := svc.Validate("garbage")
	assert.ErrorIs(t, err, helpers.ErrInvalidToken)
}
