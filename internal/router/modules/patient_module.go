package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/patient-provisioning/internal/container"
	handlers "github.com/oksasatya/patient-provisioning/internal/interface/http"
	"github.com/oksasatya/patient-provisioning/internal/interface/middleware"
	"github.com/oksasatya/patient-provisioning/pkg/helpers"
)

// PatientModule wires patient HTTP handlers behind bearer-token auth.
// Protected: GET/POST /api/patients, PUT/DELETE /api/patients/:id,
// GET /api/patients/search

type PatientModule struct {
	Handler *handlers.PatientHandler
	JWT     *helpers.JWTManager
}

func NewPatientModule(h *handlers.PatientHandler, jwt *helpers.JWTManager) *PatientModule {
	return &PatientModule{Handler: h, JWT: jwt}
}

func (m *PatientModule) Register(rg *gin.RouterGroup) {
	auth := rg.Group("/")
	auth.Use(middleware.Auth(m.JWT))
	auth.Use(
		middleware.RateLimit(container.GetRedis(), 300, time.Minute, middleware.KeyByIP(), nil),
		middleware.RateLimit(container.GetRedis(), 120, time.Minute, middleware.KeyByUser(), nil),
	)
	{
		auth.GET("/patients", m.Handler.List)
		auth.POST("/patients", m.Handler.Create)
		auth.GET("/patients/search", m.Handler.Search)
		auth.PUT("/patients/:id", m.Handler.Update)
		auth.DELETE("/patients/:id", m.Handler.Delete)
	}
}
