package dto

import "github.com/spec-kit/incident-service/internal/domain"

// SavedSearchRequest is the preset create/update payload.
type SavedSearchRequest struct {
	Name      string            `json:"name"`
	Domain    string            `json:"domain"`
	Params    map[string]string `json:"params"`
	IsDefault bool              `json:"is_default"`
}

// SavedSearchResponse is the API projection of one preset.
type SavedSearchResponse struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	Domain    string            `json:"domain"`
	Params    map[string]string `json:"params"`
	IsDefault bool              `json:"is_default"`
	UseCount  int               `json:"use_count"`
}

// FromSavedSearch projects a preset to its API shape.
func FromSavedSearch(preset *domain.SavedSearch) SavedSearchResponse {
	return SavedSearchResponse{
		ID:        preset.ID,
		Name:      preset.Name,
		Domain:    string(preset.Domain),
		Params:    preset.Params,
		IsDefault: preset.IsDefault,
		UseCount:  preset.UseCount,
	}
}
