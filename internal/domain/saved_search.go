package domain

import "time"

// SavedSearch is a persisted search preference owned by one user. Params is
// an opaque bag replayed through the search engine; the service only bumps
// UseCount when the search is executed.
type SavedSearch struct {
	ID        string
	OwnerID   string
	Name      string
	Domain    NetworkDomain
	Params    map[string]string
	IsDefault bool
	UseCount  int
	CreatedAt time.Time
	UpdatedAt time.Time
}
