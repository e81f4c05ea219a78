package dto

import "github.com/spec-kit/incident-service/internal/domain"

// VocabularyEntryRequest is the admin dropdown create/update payload.
type VocabularyEntryRequest struct {
	Category  string `json:"category"`
	Value     string `json:"value"`
	IsActive  bool   `json:"is_active"`
	SortOrder int    `json:"sort_order"`
}

// VocabularyEntryResponse is the API projection of one dropdown entry.
type VocabularyEntryResponse struct {
	ID        string `json:"id"`
	Category  string `json:"category"`
	Value     string `json:"value"`
	IsActive  bool   `json:"is_active"`
	SortOrder int    `json:"sort_order"`
}

// FromVocabularyEntry projects a dropdown entry to its API shape.
func FromVocabularyEntry(entry *domain.DropdownConfiguration) VocabularyEntryResponse {
	return VocabularyEntryResponse{
		ID:        entry.ID,
		Category:  entry.Category,
		Value:     entry.Value,
		IsActive:  entry.IsActive,
		SortOrder: entry.SortOrder,
	}
}
