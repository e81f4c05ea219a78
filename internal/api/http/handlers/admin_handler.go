package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/incident-service/internal/api/dto"
	"github.com/spec-kit/incident-service/internal/service"
)

// AdminHandler exposes vocabulary management and the manual sweep trigger.
type AdminHandler struct {
	vocab   *service.VocabularyService
	sweeper *service.Sweeper
}

// NewAdminHandler constructs handler.
func NewAdminHandler(vocab *service.VocabularyService, sweeper *service.Sweeper) *AdminHandler {
	return &AdminHandler{vocab: vocab, sweeper: sweeper}
}

// ListVocabulary handles GET /admin/vocabulary/:category.
func (h *AdminHandler) ListVocabulary(c *fiber.Ctx) error {
	entries, err := h.vocab.ListCategory(c.Context(), c.Params("category"))
	if err != nil {
		return err
	}
	resp := make([]dto.VocabularyEntryResponse, 0, len(entries))
	for i := range entries {
		resp = append(resp, dto.FromVocabularyEntry(&entries[i]))
	}
	return c.JSON(fiber.Map{"data": resp})
}

// CreateVocabulary handles POST /admin/vocabulary.
func (h *AdminHandler) CreateVocabulary(c *fiber.Ctx) error {
	var req dto.VocabularyEntryRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}

	entry, err := h.vocab.CreateEntry(c.Context(), service.VocabularyEntryInput{
		Category:  req.Category,
		Value:     req.Value,
		IsActive:  req.IsActive,
		SortOrder: req.SortOrder,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.FromVocabularyEntry(entry)})
}

// UpdateVocabulary handles PUT /admin/vocabulary/:id.
func (h *AdminHandler) UpdateVocabulary(c *fiber.Ctx) error {
	var req dto.VocabularyEntryRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}

	entry, err := h.vocab.UpdateEntry(c.Context(), c.Params("id"), service.VocabularyEntryInput{
		Category:  req.Category,
		Value:     req.Value,
		IsActive:  req.IsActive,
		SortOrder: req.SortOrder,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromVocabularyEntry(entry)})
}

// DeleteVocabulary handles DELETE /admin/vocabulary/:id.
func (h *AdminHandler) DeleteVocabulary(c *fiber.Ctx) error {
	if err := h.vocab.DeleteEntry(c.Context(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// TriggerSweep handles POST /admin/sweep and runs one archival sweep
// synchronously, returning its report.
func (h *AdminHandler) TriggerSweep(c *fiber.Ctx) error {
	report, err := h.sweeper.Run(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": report})
}
