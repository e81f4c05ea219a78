package service

import (
	"context"
	"strings"

	"github.com/spec-kit/incident-service/internal/domain"
	"github.com/spec-kit/incident-service/internal/repository"
	apperrors "github.com/spec-kit/incident-service/pkg/util"
)

// SavedSearchService manages per-user search presets.
type SavedSearchService struct {
	searches repository.SavedSearchRepository
}

// NewSavedSearchService builds the service.
func NewSavedSearchService(searches repository.SavedSearchRepository) *SavedSearchService {
	return &SavedSearchService{searches: searches}
}

// SavedSearchInput describes a create/update payload.
type SavedSearchInput struct {
	Name      string
	Domain    domain.NetworkDomain
	Params    map[string]string
	IsDefault bool
}

// Create persists a new preset for the owner. Marking it default clears
// any previous default in the same domain.
func (s *SavedSearchService) Create(ctx context.Context, ownerID string, input SavedSearchInput) (*domain.SavedSearch, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.NewValidationError("name must not be empty", nil)
	}
	if !input.Domain.Valid() {
		return nil, apperrors.NewValidationError("unknown network domain", map[string]any{"domain": string(input.Domain)})
	}

	if input.IsDefault {
		if err := s.searches.ClearDefault(ctx, ownerID, input.Domain); err != nil {
			return nil, err
		}
	}

	preset := &domain.SavedSearch{
		OwnerID:   ownerID,
		Name:      name,
		Domain:    input.Domain,
		Params:    input.Params,
		IsDefault: input.IsDefault,
	}
	if err := s.searches.Create(ctx, preset); err != nil {
		return nil, err
	}
	return preset, nil
}

// Update modifies an existing preset owned by ownerID.
func (s *SavedSearchService) Update(ctx context.Context, ownerID, id string, input SavedSearchInput) (*domain.SavedSearch, error) {
	preset, err := s.searches.GetByID(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.NewValidationError("name must not be empty", nil)
	}
	if input.IsDefault && !preset.IsDefault {
		if err := s.searches.ClearDefault(ctx, ownerID, preset.Domain); err != nil {
			return nil, err
		}
	}

	preset.Name = name
	preset.Params = input.Params
	preset.IsDefault = input.IsDefault
	if err := s.searches.Update(ctx, preset); err != nil {
		return nil, err
	}
	return preset, nil
}

// Delete removes a preset owned by ownerID.
func (s *SavedSearchService) Delete(ctx context.Context, ownerID, id string) error {
	return s.searches.Delete(ctx, ownerID, id)
}

// List returns the owner's presets for one domain.
func (s *SavedSearchService) List(ctx context.Context, ownerID string, d domain.NetworkDomain) ([]domain.SavedSearch, error) {
	return s.searches.ListByOwner(ctx, ownerID, d)
}

// Use fetches a preset and bumps its usage counter.
func (s *SavedSearchService) Use(ctx context.Context, ownerID, id string) (*domain.SavedSearch, error) {
	preset, err := s.searches.GetByID(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	if err := s.searches.IncrementUseCount(ctx, preset.ID); err != nil {
		return nil, err
	}
	preset.UseCount++
	return preset, nil
}
