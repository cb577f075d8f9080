package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/patient-provisioning/internal/container"
	handlers "github.com/oksasatya/patient-provisioning/internal/interface/http"
	"github.com/oksasatya/patient-provisioning/internal/interface/middleware"
)

// AuthModule wires the token endpoints.
// Public: POST /api/login, GET /api/validate

type AuthModule struct {
	Handler *handlers.AuthHandler
}

func NewAuthModule(h *handlers.AuthHandler) *AuthModule {
	return &AuthModule{Handler: h}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	loginLimiter := middleware.RateLimit(container.GetRedis(), 10, time.Minute, middleware.KeyByIP(), nil) // 10 req/min per IP
	// the gateway validates on every request; private callers bypass the limit
	validateLimiter := middleware.RateLimit(container.GetRedis(), 600, time.Minute, middleware.KeyByIPAndPath(), middleware.AllowPrivateIP())

	rg.POST("/login", loginLimiter, m.Handler.Login)
	rg.GET("/validate", validateLimiter, m.Handler.Validate)
}
