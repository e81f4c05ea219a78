package service

import (
	"context"
	"strings"

	"github.com/spec-kit/incident-service/internal/domain"
	"github.com/spec-kit/incident-service/internal/repository"
	apperrors "github.com/spec-kit/incident-service/pkg/util"
)

// VocabularyProvider resolves the active dropdown values for a category.
// Incident validation consults it for cause and origin membership.
type VocabularyProvider interface {
	ActiveValues(ctx context.Context, category string) ([]string, error)
}

// VocabularyService manages admin-configured dropdown vocabularies.
type VocabularyService struct {
	entries repository.VocabularyRepository
}

// NewVocabularyService builds the service.
func NewVocabularyService(entries repository.VocabularyRepository) *VocabularyService {
	return &VocabularyService{entries: entries}
}

// VocabularyEntryInput describes a create/update payload.
type VocabularyEntryInput struct {
	Category  string
	Value     string
	IsActive  bool
	SortOrder int
}

func validCategory(category string) bool {
	switch category {
	case domain.VocabCauses, domain.VocabOrigins,
		domain.VocabTransportRegions, domain.VocabSystemCapacities,
		domain.VocabWilayas, domain.VocabPlatforms, domain.VocabRegionNodes,
		domain.VocabInterconnects, domain.VocabPlatformIGWs:
		return true
	}
	return false
}

// CreateEntry adds a dropdown value to a category.
func (s *VocabularyService) CreateEntry(ctx context.Context, input VocabularyEntryInput) (*domain.DropdownConfiguration, error) {
	category := strings.TrimSpace(input.Category)
	value := strings.TrimSpace(input.Value)
	if !validCategory(category) {
		return nil, apperrors.NewValidationError("unknown vocabulary category", map[string]any{"category": category})
	}
	if value == "" {
		return nil, apperrors.NewValidationError("value must not be empty", nil)
	}

	entry := &domain.DropdownConfiguration{
		Category:  category,
		Value:     value,
		IsActive:  input.IsActive,
		SortOrder: input.SortOrder,
	}
	if err := s.entries.Create(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// UpdateEntry modifies an existing dropdown value.
func (s *VocabularyService) UpdateEntry(ctx context.Context, id string, input VocabularyEntryInput) (*domain.DropdownConfiguration, error) {
	entry, err := s.entries.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	value := strings.TrimSpace(input.Value)
	if value == "" {
		return nil, apperrors.NewValidationError("value must not be empty", nil)
	}
	entry.Value = value
	entry.IsActive = input.IsActive
	entry.SortOrder = input.SortOrder

	if err := s.entries.Update(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// DeleteEntry removes a dropdown value.
func (s *VocabularyService) DeleteEntry(ctx context.Context, id string) error {
	return s.entries.Delete(ctx, id)
}

// ListCategory returns all values of a category, inactive included.
func (s *VocabularyService) ListCategory(ctx context.Context, category string) ([]domain.DropdownConfiguration, error) {
	if !validCategory(category) {
		return nil, apperrors.NewValidationError("unknown vocabulary category", map[string]any{"category": category})
	}
	return s.entries.ListByCategory(ctx, category, false)
}

// ActiveValues returns the active values of a category in display order.
func (s *VocabularyService) ActiveValues(ctx context.Context, category string) ([]string, error) {
	entries, err := s.entries.ListByCategory(ctx, category, true)
	if err != nil {
		return nil, err
	}
	values := make([]string, 0, len(entries))
	for _, entry := range entries {
		values = append(values, entry.Value)
	}
	return values, nil
}
