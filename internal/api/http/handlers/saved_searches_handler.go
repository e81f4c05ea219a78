package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/incident-service/internal/api/dto"
	"github.com/spec-kit/incident-service/internal/auth"
	"github.com/spec-kit/incident-service/internal/domain"
	"github.com/spec-kit/incident-service/internal/service"
)

// SavedSearchesHandler exposes per-user search preset endpoints.
type SavedSearchesHandler struct {
	searches *service.SavedSearchService
}

// NewSavedSearchesHandler constructs handler.
func NewSavedSearchesHandler(searches *service.SavedSearchService) *SavedSearchesHandler {
	return &SavedSearchesHandler{searches: searches}
}

func ownerID(c *fiber.Ctx) (string, error) {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return "", fiber.NewError(http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
	}
	return principal.User.ID, nil
}

// List handles GET /saved-searches?domain=...
func (h *SavedSearchesHandler) List(c *fiber.Ctx) error {
	owner, err := ownerID(c)
	if err != nil {
		return err
	}

	presets, err := h.searches.List(c.Context(), owner, domain.NetworkDomain(c.Query("domain")))
	if err != nil {
		return err
	}
	resp := make([]dto.SavedSearchResponse, 0, len(presets))
	for i := range presets {
		resp = append(resp, dto.FromSavedSearch(&presets[i]))
	}
	return c.JSON(fiber.Map{"data": resp})
}

// Create handles POST /saved-searches.
func (h *SavedSearchesHandler) Create(c *fiber.Ctx) error {
	owner, err := ownerID(c)
	if err != nil {
		return err
	}

	var req dto.SavedSearchRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}

	preset, err := h.searches.Create(c.Context(), owner, service.SavedSearchInput{
		Name:      req.Name,
		Domain:    domain.NetworkDomain(req.Domain),
		Params:    req.Params,
		IsDefault: req.IsDefault,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.FromSavedSearch(preset)})
}

// Update handles PUT /saved-searches/:id.
func (h *SavedSearchesHandler) Update(c *fiber.Ctx) error {
	owner, err := ownerID(c)
	if err != nil {
		return err
	}

	var req dto.SavedSearchRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}

	preset, err := h.searches.Update(c.Context(), owner, c.Params("id"), service.SavedSearchInput{
		Name:      req.Name,
		Domain:    domain.NetworkDomain(req.Domain),
		Params:    req.Params,
		IsDefault: req.IsDefault,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromSavedSearch(preset)})
}

// Delete handles DELETE /saved-searches/:id.
func (h *SavedSearchesHandler) Delete(c *fiber.Ctx) error {
	owner, err := ownerID(c)
	if err != nil {
		return err
	}
	if err := h.searches.Delete(c.Context(), owner, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// Use handles POST /saved-searches/:id/use, returning the preset after
// bumping its usage counter so the client can replay the params.
func (h *SavedSearchesHandler) Use(c *fiber.Ctx) error {
	owner, err := ownerID(c)
	if err != nil {
		return err
	}

	preset, err := h.searches.Use(c.Context(), owner, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromSavedSearch(preset)})
}
