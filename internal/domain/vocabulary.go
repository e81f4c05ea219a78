package domain

import "time"

// Vocabulary categories referenced by incident forms. Values under each
// category are admin-managed via DropdownConfiguration rows.
const (
	VocabCauses           = "causes"
	VocabOrigins          = "origins"
	VocabTransportRegions = "transport_regions"
	VocabSystemCapacities = "system_capacities"
	VocabWilayas          = "wilayas"
	VocabPlatforms        = "platforms"
	VocabRegionNodes      = "region_nodes"
	VocabInterconnects    = "interconnect_types"
	VocabPlatformIGWs     = "platform_igws"
)

// DropdownConfiguration is one admin-managed choice-list entry. The
// (Category, Value) pair is unique; inactive entries stay for historical
// incidents but are not offered for new input.
type DropdownConfiguration struct {
	ID        string
	Category  string
	Value     string
	IsActive  bool
	SortOrder int
	CreatedAt time.Time
	UpdatedAt time.Time
}
