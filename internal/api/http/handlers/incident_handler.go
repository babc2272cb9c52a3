package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/bart-incident-bot/internal/api/dto"
	"github.com/spec-kit/bart-incident-bot/internal/service"
	apperrors "github.com/spec-kit/bart-incident-bot/pkg/util/errorutil"
)

// IncidentHandler serves the IncidentApi controller.
type IncidentHandler struct {
	service IncidentService
}

// NewIncidentHandler constructs handler.
func NewIncidentHandler(incidents IncidentService) *IncidentHandler {
	return &IncidentHandler{service: incidents}
}

// Create POST /api/IncidentApi/CreateIncidentAsync.
func (h *IncidentHandler) Create(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	var req dto.CreateIncidentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Incident == nil {
		return apperrors.NewValidationError("incident required", nil)
	}

	created, err := h.service.CreateIncident(c.UserContext(), user, service.CreateIncidentInput{
		Incident:    *req.Incident,
		Workstreams: req.Workstreams,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(created)
}

// GetAll GET /api/IncidentApi/GetAllIncidents?weekDay=.
func (h *IncidentHandler) GetAll(c *fiber.Ctx) error {
	weekDay := c.QueryInt("weekDay", 0)
	incidents, err := h.service.GetAllIncidents(c.UserContext(), weekDay)
	if err != nil {
		return err
	}
	return c.JSON(incidents)
}

// Search GET /api/IncidentApi/SearchIncidents.
func (h *IncidentHandler) Search(c *fiber.Ctx) error {
	var q dto.IncidentSearchQuery
	if err := c.QueryParser(&q); err != nil {
		return apperrors.NewValidationError("invalid query", nil)
	}
	if q.Empty() {
		return apperrors.NewValidationError("at least one filter required", nil)
	}
	incidents, err := h.service.SearchIncidents(c.UserContext(), q.Filter())
	if err != nil {
		return err
	}
	return c.JSON(incidents)
}

// Get GET /api/IncidentApi/GetIncident?incidentNumber=.
func (h *IncidentHandler) Get(c *fiber.Ctx) error {
	incident, err := h.service.GetIncident(c.UserContext(), c.Query("incidentNumber"))
	if err != nil {
		return err
	}
	return c.JSON(incident)
}
