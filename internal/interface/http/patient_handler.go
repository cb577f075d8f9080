package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/patient-provisioning/internal/application"
	"github.com/oksasatya/patient-provisioning/internal/domain/entity"
	"github.com/oksasatya/patient-provisioning/pkg/response"
	"github.com/oksasatya/patient-provisioning/pkg/validation"
)

type PatientHandler struct {
	Svc    *application.PatientService
	Logger *logrus.Logger
}

func NewPatientHandler(svc *application.PatientService, logger *logrus.Logger) *PatientHandler {
	return &PatientHandler{Svc: svc, Logger: logger}
}

type patientRequest struct {
	Name        string `json:"name" binding:"required,min=3,max=100"`
	Email       string `json:"email" binding:"required,email"`
	Address     string `json:"address" binding:"required"`
	DateOfBirth string `json:"date_of_birth" binding:"required,isodate"`
}

func patientJSON(p *entity.Patient) gin.H {
	return gin.H{
		"id":            p.ID,
		"name":          p.Name,
		"email":         p.Email,
		"address":       p.Address,
		"date_of_birth": p.DateOfBirth.Format("2006-01-02"),
		"created_at":    p.CreatedAt.Format(time.RFC3339),
	}
}

// fail maps service errors onto HTTP statuses. Anything outside the
// business taxonomy is treated as a storage failure.
func (h *PatientHandler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, application.ErrEmailExists):
		response.Error[any](c, http.StatusConflict, "email address already exists", nil)
	case errors.Is(err, application.ErrInvalidBirthDate):
		response.Error[any](c, http.StatusBadRequest, "invalid date of birth", nil)
	case errors.Is(err, application.ErrPatientNotFound):
		response.Error[any](c, http.StatusNotFound, "patient not found", nil)
	default:
		if h.Logger != nil {
			h.Logger.WithError(err).Error("patient storage failure")
		}
		response.Error[any](c, http.StatusInternalServerError, "storage unavailable", nil)
	}
}

// Create POST /api/patients
func (h *PatientHandler) Create(c *gin.Context) {
	var req patientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	p, err := h.Svc.Create(c.Request.Context(), application.CreatePatientInput{
		Name:        req.Name,
		Email:       req.Email,
		Address:     req.Address,
		DateOfBirth: req.DateOfBirth,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusCreated, patientJSON(p), "patient created", nil)
}

// Update PUT /api/patients/:id
func (h *PatientHandler) Update(c *gin.Context) {
	id := c.Param("id")
	var req patientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	p, err := h.Svc.Update(c.Request.Context(), id, application.UpdatePatientInput{
		Name:        req.Name,
		Email:       req.Email,
		Address:     req.Address,
		DateOfBirth: req.DateOfBirth,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, patientJSON(p), "patient updated", nil)
}

// Delete DELETE /api/patients/:id — idempotent, succeeds for unknown ids.
func (h *PatientHandler) Delete(c *gin.Context) {
	if err := h.Svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"deleted": true}, "patient deleted", nil)
}

// List GET /api/patients
func (h *PatientHandler) List(c *gin.Context) {
	patients, err := h.Svc.List(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	out := make([]gin.H, 0, len(patients))
	for _, p := range patients {
		out = append(out, patientJSON(p))
	}
	response.Success(c, http.StatusOK, out, "patients", map[string]any{"count": len(out)})
}

// Search GET /api/patients/search?q=...&size=...
func (h *PatientHandler) Search(c *gin.Context) {
	q := c.Query("q")
	if q == "" {
		response.Error[any](c, http.StatusBadRequest, "missing query", nil)
		return
	}
	size, _ := strconv.Atoi(c.DefaultQuery("size", "10"))
	hits, err := h.Svc.Search(c.Request.Context(), q, size)
	if err != nil {
		response.Error[any](c, http.StatusBadGateway, "search unavailable", nil)
		return
	}
	response.Success(c, http.StatusOK, hits, "search results", map[string]any{"count": len(hits)})
}
