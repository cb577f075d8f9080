package application

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	repo "github.com/oksasatya/patient-provisioning/internal/domain/repository"
	"github.com/oksasatya/patient-provisioning/pkg/helpers"
)

// AuthService issues and validates bearer tokens for the API surface.
type AuthService struct {
	Users  repo.UserRepository
	JWT    *helpers.JWTManager
	Logger *logrus.Logger
}

func NewAuthService(users repo.UserRepository, jwt *helpers.JWTManager, logger *logrus.Logger) *AuthService {
	return &AuthService{Users: users, JWT: jwt, Logger: logger}
}

// Authenticate checks the credential pair and issues a token on success.
// A lookup miss and a hash mismatch both return ("", time, false): the
// caller cannot tell which happened, and the bcrypt compare keeps the
// timing profile flat for wrong secrets.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (string, time.Time, bool) {
	u, err := s.Users.GetByEmail(email)
	if err != nil || u == nil {
		return "", time.Time{}, false
	}
	if !helpers.CompareHashAndPassword(u.Password, password) {
		return "", time.Time{}, false
	}
	token, exp, err := s.JWT.Generate(u.Email, u.Role)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("email", email).Error("token generation failed")
		}
		return "", time.Time{}, false
	}
	return token, exp, true
}

// Validate verifies a bearer token. All verification failures collapse
// into helpers.ErrInvalidToken.
func (s *AuthService) Validate(token string) (*helpers.Claims, error) {
	return s.JWT.Parse(token)
}
