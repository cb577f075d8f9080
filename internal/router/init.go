package router

import (
	"github.com/oksasatya/patient-provisioning/internal/application"
	"github.com/oksasatya/patient-provisioning/internal/container"
	pginfra "github.com/oksasatya/patient-provisioning/internal/infrastructure/postgres"
	handlers "github.com/oksasatya/patient-provisioning/internal/interface/http"
	"github.com/oksasatya/patient-provisioning/internal/router/modules"
)

func buildPatientModule() Module {
	repo := pginfra.NewPatientRepository(container.GetPGPool())

	service := application.NewPatientService(
		repo,
		container.GetBilling(),
		container.GetRabbitPub(),
		container.GetRedis(),
		container.GetLogger(),
		container.GetES(),
		container.GetConfig().ESPatientsIndex,
	)

	handler := handlers.NewPatientHandler(service, container.GetLogger())
	return modules.NewPatientModule(handler, container.GetJWT())
}

func buildAuthModule() Module {
	users := pginfra.NewUserRepository(container.GetPGPool())
	service := application.NewAuthService(users, container.GetJWT(), container.GetLogger())
	handler := handlers.NewAuthHandler(service, container.GetLogger())
	return modules.NewAuthModule(handler)
}

// InitModules initializes all application modules and registers them with the router registry
// This function should be called once during application startup to wire up all modules
func InitModules(r *Registry) {
	r.Add(buildAuthModule())
	r.Add(buildPatientModule())
}
