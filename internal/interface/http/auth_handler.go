package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/patient-provisioning/internal/application"
	"github.com/oksasatya/patient-provisioning/pkg/response"
	"github.com/oksasatya/patient-provisioning/pkg/validation"
)

type AuthHandler struct {
	Svc    *application.AuthService
	Logger *logrus.Logger
}

func NewAuthHandler(svc *application.AuthService, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{Svc: svc, Logger: logger}
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,pwd"`
}

// Login POST /api/login
// Unknown user and wrong password produce the same 401 with no detail.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	token, exp, ok := h.Svc.Authenticate(c.Request.Context(), req.Email, req.Password)
	if !ok {
		response.Error[any](c, http.StatusUnauthorized, "invalid credentials", nil)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"token": token}, "login successful", map[string]any{"expires_at": exp})
}

// Validate GET /api/validate
// Gateway-facing check of the Authorization bearer header.
func (h *AuthHandler) Validate(c *gin.Context) {
	header := c.GetHeader("Authorization")
	if header == "" || !strings.HasPrefix(header, "Bearer ") {
		response.Error[any](c, http.StatusUnauthorized, "missing bearer token", nil)
		return
	}
	claims, err := h.Svc.Validate(strings.TrimPrefix(header, "Bearer "))
	if err != nil {
		response.Error[any](c, http.StatusUnauthorized, "invalid token", nil)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"subject": claims.Subject, "role": claims.Role}, "token valid", nil)
}
