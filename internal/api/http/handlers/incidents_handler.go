package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/incident-service/internal/api/dto"
	"github.com/spec-kit/incident-service/internal/auth"
	"github.com/spec-kit/incident-service/internal/domain"
	"github.com/spec-kit/incident-service/internal/search"
	"github.com/spec-kit/incident-service/internal/service"
)

// IncidentsHandler exposes incident CRUD, search and lifecycle endpoints.
// Every route is scoped by the :domain path segment.
type IncidentsHandler struct {
	incidents *service.IncidentService
}

// NewIncidentsHandler constructs handler.
func NewIncidentsHandler(incidents *service.IncidentService) *IncidentsHandler {
	return &IncidentsHandler{incidents: incidents}
}

func pathDomain(c *fiber.Ctx) (domain.NetworkDomain, error) {
	d := domain.NetworkDomain(c.Params("domain"))
	if !d.Valid() {
		return "", fiber.NewError(http.StatusNotFound, "unknown network domain")
	}
	return d, nil
}

func actorUsername(c *fiber.Ctx) string {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return ""
	}
	return principal.Username()
}

// parseSearchParams maps query-string input onto the search parameter bag.
// Malformed values degrade to no filter rather than erroring.
func parseSearchParams(c *fiber.Ctx, d domain.NetworkDomain) search.Params {
	params := search.Params{
		Query:  c.Query("q"),
		Status: search.ParseStatusBucket(c.Query("status")),
		Cause:  c.Query("cause"),
		Origin: c.Query("origin"),
		Sort:   search.ParseSort(c.Query("sort")),
	}
	if from := parseQueryTime(c.Query("date_from")); from != nil {
		params.DateFrom = from
	}
	if to := parseQueryTime(c.Query("date_to")); to != nil {
		params.DateTo = to
	}
	if limit, err := strconv.Atoi(c.Query("limit")); err == nil {
		params.Limit = limit
	}
	if offset, err := strconv.Atoi(c.Query("offset")); err == nil {
		params.Offset = offset
	}

	fields := make(map[string]string)
	for _, field := range search.FilterableFields(d) {
		if v := c.Query(field); v != "" {
			fields[field] = v
		}
	}
	if len(fields) > 0 {
		params.Fields = fields
	}
	return params
}

func parseQueryTime(raw string) *time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t
		}
	}
	return nil
}

// List handles GET /domains/:domain/incidents.
func (h *IncidentsHandler) List(c *fiber.Ctx) error {
	d, err := pathDomain(c)
	if err != nil {
		return err
	}

	page, err := h.incidents.List(c.Context(), d, parseSearchParams(c, d))
	if err != nil {
		return err
	}

	now := time.Now()
	resp := dto.IncidentListResponse{
		Incidents:  make([]dto.IncidentResponse, 0, len(page.Incidents)),
		Statistics: page.Statistics,
		Limit:      page.Limit,
		Offset:     page.Offset,
	}
	for i := range page.Incidents {
		resp.Incidents = append(resp.Incidents, dto.FromIncident(&page.Incidents[i], page.Severities[i], now))
	}
	return c.JSON(fiber.Map{"data": resp})
}

// Get handles GET /domains/:domain/incidents/:id.
func (h *IncidentsHandler) Get(c *fiber.Ctx) error {
	d, err := pathDomain(c)
	if err != nil {
		return err
	}

	inc, err := h.incidents.Get(c.Context(), d, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": h.project(inc)})
}

// Create handles POST /domains/:domain/incidents.
func (h *IncidentsHandler) Create(c *fiber.Ctx) error {
	d, err := pathDomain(c)
	if err != nil {
		return err
	}

	input, err := parseIncidentRequest(c)
	if err != nil {
		return err
	}

	inc, err := h.incidents.Create(c.Context(), d, actorUsername(c), input)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": h.project(inc)})
}

// Update handles PUT /domains/:domain/incidents/:id.
func (h *IncidentsHandler) Update(c *fiber.Ctx) error {
	d, err := pathDomain(c)
	if err != nil {
		return err
	}

	input, err := parseIncidentRequest(c)
	if err != nil {
		return err
	}

	inc, err := h.incidents.Update(c.Context(), d, c.Params("id"), actorUsername(c), input)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": h.project(inc)})
}

// Archive handles POST /domains/:domain/incidents/:id/archive.
func (h *IncidentsHandler) Archive(c *fiber.Ctx) error {
	d, err := pathDomain(c)
	if err != nil {
		return err
	}

	inc, err := h.incidents.Archive(c.Context(), d, c.Params("id"), actorUsername(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": h.project(inc)})
}

// Restore handles POST /domains/:domain/incidents/:id/restore.
func (h *IncidentsHandler) Restore(c *fiber.Ctx) error {
	d, err := pathDomain(c)
	if err != nil {
		return err
	}

	inc, err := h.incidents.Restore(c.Context(), d, c.Params("id"), actorUsername(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": h.project(inc)})
}

// History handles GET /domains/:domain/incidents/:id/history.
func (h *IncidentsHandler) History(c *fiber.Ctx) error {
	d, err := pathDomain(c)
	if err != nil {
		return err
	}

	entries, err := h.incidents.History(c.Context(), d, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": entries})
}

// Filters handles GET /domains/:domain/filters and describes the search
// surface for UI construction.
func (h *IncidentsHandler) Filters(c *fiber.Ctx) error {
	d, err := pathDomain(c)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{
		"domain":       string(d),
		"display_name": d.DisplayName(),
		"fields":       search.FilterableFields(d),
		"statuses": []string{
			string(search.BucketActive), string(search.BucketNew),
			string(search.BucketLow), string(search.BucketMedium),
			string(search.BucketCritical), string(search.BucketResolved),
		},
	}})
}

func parseIncidentRequest(c *fiber.Ctx) (service.IncidentInput, error) {
	var req dto.IncidentRequest
	if err := c.BodyParser(&req); err != nil {
		return service.IncidentInput{}, fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	transport, fileAccess, radioAccess, core, backbone := req.DomainBags()
	return service.IncidentInput{
		OccurredAt:         req.OccurredAt,
		ResolvedAt:         req.ResolvedAt,
		Cause:              req.Cause,
		CauseOther:         req.CauseOther,
		Origin:             req.Origin,
		OriginOther:        req.OriginOther,
		Notes:              req.Notes,
		CorrectionRequired: req.CorrectionRequired,
		CorrectionNote:     req.CorrectionNote,
		Transport:          transport,
		FileAccess:         fileAccess,
		RadioAccess:        radioAccess,
		Core:               core,
		Backbone:           backbone,
	}, nil
}

func (h *IncidentsHandler) project(inc *domain.Incident) dto.IncidentResponse {
	now := time.Now()
	severity := h.incidents.Severity(inc, now)
	return dto.FromIncident(inc, severity, now)
}
