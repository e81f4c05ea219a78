package dto

import (
	"time"

	"github.com/spec-kit/incident-service/internal/domain"
	"github.com/spec-kit/incident-service/internal/lifecycle"
	"github.com/spec-kit/incident-service/internal/search"
)

// TransportFieldsDTO mirrors domain.TransportFields on the wire.
type TransportFieldsDTO struct {
	RegionLoop     string `json:"region_loop,omitempty"`
	SystemCapacity string `json:"system_capacity,omitempty"`
	DotExtremityA  string `json:"dot_extremity_a,omitempty"`
	ExtremityA     string `json:"extremity_a"`
	DotExtremityB  string `json:"dot_extremity_b,omitempty"`
	ExtremityB     string `json:"extremity_b"`
	Responsibility string `json:"responsibility,omitempty"`
}

// FileAccessFieldsDTO mirrors domain.FileAccessFields on the wire.
type FileAccessFieldsDTO struct {
	DoWilaya  string `json:"do_wilaya,omitempty"`
	ZoneMetro string `json:"zone_metro,omitempty"`
	Site      string `json:"site"`
	IPAddress string `json:"ip_address,omitempty"`
}

// RadioAccessFieldsDTO mirrors domain.RadioAccessFields on the wire.
type RadioAccessFieldsDTO struct {
	DoWilaya  string `json:"do_wilaya,omitempty"`
	Site      string `json:"site"`
	IPAddress string `json:"ip_address,omitempty"`
}

// CoreFieldsDTO mirrors domain.CoreFields on the wire.
type CoreFieldsDTO struct {
	Platform      string `json:"platform"`
	RegionNode    string `json:"region_node,omitempty"`
	Site          string `json:"site,omitempty"`
	DotExtremityA string `json:"dot_extremity_a,omitempty"`
	ExtremityA    string `json:"extremity_a,omitempty"`
	DotExtremityB string `json:"dot_extremity_b,omitempty"`
	ExtremityB    string `json:"extremity_b,omitempty"`
}

// BackboneFieldsDTO mirrors domain.BackboneFields on the wire.
type BackboneFieldsDTO struct {
	InterconnectType string `json:"interconnect_type,omitempty"`
	PlatformIGW      string `json:"platform_igw"`
	LinkLabel        string `json:"link_label,omitempty"`
}

// IncidentRequest is the create/update payload. Exactly one field group
// must be present, matching the domain in the URL.
type IncidentRequest struct {
	OccurredAt time.Time  `json:"occurred_at"`
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`

	Cause       string `json:"cause,omitempty"`
	CauseOther  string `json:"cause_other,omitempty"`
	Origin      string `json:"origin,omitempty"`
	OriginOther string `json:"origin_other,omitempty"`
	Notes       string `json:"notes,omitempty"`

	CorrectionRequired bool   `json:"correction_required,omitempty"`
	CorrectionNote     string `json:"correction_note,omitempty"`

	Transport   *TransportFieldsDTO   `json:"transport,omitempty"`
	FileAccess  *FileAccessFieldsDTO  `json:"file_access,omitempty"`
	RadioAccess *RadioAccessFieldsDTO `json:"radio_access,omitempty"`
	Core        *CoreFieldsDTO        `json:"core,omitempty"`
	Backbone    *BackboneFieldsDTO    `json:"backbone,omitempty"`
}

// IncidentResponse is the API projection of one incident with its derived
// presentation fields.
type IncidentResponse struct {
	ID              string     `json:"id"`
	Domain          string     `json:"domain"`
	OccurredAt      time.Time  `json:"occurred_at"`
	ResolvedAt      *time.Time `json:"resolved_at,omitempty"`
	DurationMinutes *int       `json:"duration_minutes,omitempty"`
	DurationDisplay string     `json:"duration_display,omitempty"`
	Severity        string     `json:"severity"`
	Location        string     `json:"location"`

	Cause         string `json:"cause,omitempty"`
	CauseDisplay  string `json:"cause_display,omitempty"`
	Origin        string `json:"origin,omitempty"`
	OriginDisplay string `json:"origin_display,omitempty"`
	Notes         string `json:"notes,omitempty"`

	IsResolved bool       `json:"is_resolved"`
	IsArchived bool       `json:"is_archived"`
	ArchivedAt *time.Time `json:"archived_at,omitempty"`
	ArchivedBy *string    `json:"archived_by,omitempty"`

	CorrectionRequired bool   `json:"correction_required"`
	CorrectionNote     string `json:"correction_note,omitempty"`

	CreatedBy *string   `json:"created_by,omitempty"`
	UpdatedBy *string   `json:"updated_by,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Transport   *TransportFieldsDTO   `json:"transport,omitempty"`
	FileAccess  *FileAccessFieldsDTO  `json:"file_access,omitempty"`
	RadioAccess *RadioAccessFieldsDTO `json:"radio_access,omitempty"`
	Core        *CoreFieldsDTO        `json:"core,omitempty"`
	Backbone    *BackboneFieldsDTO    `json:"backbone,omitempty"`
}

// IncidentListResponse wraps a page of incidents with filter statistics.
type IncidentListResponse struct {
	Incidents  []IncidentResponse `json:"incidents"`
	Statistics search.Statistics  `json:"statistics"`
	Limit      int                `json:"limit"`
	Offset     int                `json:"offset"`
}

// FromIncident projects a domain incident to its API shape.
func FromIncident(inc *domain.Incident, severity domain.Severity, now time.Time) IncidentResponse {
	resp := IncidentResponse{
		ID:                 inc.ID,
		Domain:             string(inc.Domain),
		OccurredAt:         inc.OccurredAt,
		ResolvedAt:         inc.ResolvedAt,
		DurationMinutes:    inc.DurationMinutes,
		DurationDisplay:    lifecycle.DurationOf(inc, now).String(),
		Severity:           string(severity),
		Location:           inc.Location(),
		Cause:              inc.Cause,
		CauseDisplay:       inc.CauseDisplay(),
		Origin:             inc.Origin,
		OriginDisplay:      inc.OriginDisplay(),
		Notes:              inc.Notes,
		IsResolved:         inc.IsResolved,
		IsArchived:         inc.IsArchived,
		ArchivedAt:         inc.ArchivedAt,
		ArchivedBy:         inc.ArchivedBy,
		CorrectionRequired: inc.CorrectionRequired,
		CorrectionNote:     inc.CorrectionNote,
		CreatedBy:          inc.CreatedBy,
		UpdatedBy:          inc.UpdatedBy,
		CreatedAt:          inc.CreatedAt,
		UpdatedAt:          inc.UpdatedAt,
	}
	if inc.Transport != nil {
		resp.Transport = &TransportFieldsDTO{
			RegionLoop:     inc.Transport.RegionLoop,
			SystemCapacity: inc.Transport.SystemCapacity,
			DotExtremityA:  inc.Transport.DotExtremityA,
			ExtremityA:     inc.Transport.ExtremityA,
			DotExtremityB:  inc.Transport.DotExtremityB,
			ExtremityB:     inc.Transport.ExtremityB,
			Responsibility: inc.Transport.Responsibility,
		}
	}
	if inc.FileAccess != nil {
		resp.FileAccess = &FileAccessFieldsDTO{
			DoWilaya:  inc.FileAccess.DoWilaya,
			ZoneMetro: inc.FileAccess.ZoneMetro,
			Site:      inc.FileAccess.Site,
			IPAddress: inc.FileAccess.IPAddress,
		}
	}
	if inc.RadioAccess != nil {
		resp.RadioAccess = &RadioAccessFieldsDTO{
			DoWilaya:  inc.RadioAccess.DoWilaya,
			Site:      inc.RadioAccess.Site,
			IPAddress: inc.RadioAccess.IPAddress,
		}
	}
	if inc.Core != nil {
		resp.Core = &CoreFieldsDTO{
			Platform:      inc.Core.Platform,
			RegionNode:    inc.Core.RegionNode,
			Site:          inc.Core.Site,
			DotExtremityA: inc.Core.DotExtremityA,
			ExtremityA:    inc.Core.ExtremityA,
			DotExtremityB: inc.Core.DotExtremityB,
			ExtremityB:    inc.Core.ExtremityB,
		}
	}
	if inc.Backbone != nil {
		resp.Backbone = &BackboneFieldsDTO{
			InterconnectType: inc.Backbone.InterconnectType,
			PlatformIGW:      inc.Backbone.PlatformIGW,
			LinkLabel:        inc.Backbone.LinkLabel,
		}
	}
	return resp
}

// DomainBags converts the wire field groups to their domain counterparts.
// Absent groups stay nil.
func (r IncidentRequest) DomainBags() (*domain.TransportFields, *domain.FileAccessFields, *domain.RadioAccessFields, *domain.CoreFields, *domain.BackboneFields) {
	var (
		transport   *domain.TransportFields
		fileAccess  *domain.FileAccessFields
		radioAccess *domain.RadioAccessFields
		core        *domain.CoreFields
		backbone    *domain.BackboneFields
	)
	if r.Transport != nil {
		transport = &domain.TransportFields{
			RegionLoop:     r.Transport.RegionLoop,
			SystemCapacity: r.Transport.SystemCapacity,
			DotExtremityA:  r.Transport.DotExtremityA,
			ExtremityA:     r.Transport.ExtremityA,
			DotExtremityB:  r.Transport.DotExtremityB,
			ExtremityB:     r.Transport.ExtremityB,
			Responsibility: r.Transport.Responsibility,
		}
	}
	if r.FileAccess != nil {
		fileAccess = &domain.FileAccessFields{
			DoWilaya:  r.FileAccess.DoWilaya,
			ZoneMetro: r.FileAccess.ZoneMetro,
			Site:      r.FileAccess.Site,
			IPAddress: r.FileAccess.IPAddress,
		}
	}
	if r.RadioAccess != nil {
		radioAccess = &domain.RadioAccessFields{
			DoWilaya:  r.RadioAccess.DoWilaya,
			Site:      r.RadioAccess.Site,
			IPAddress: r.RadioAccess.IPAddress,
		}
	}
	if r.Core != nil {
		core = &domain.CoreFields{
			Platform:      r.Core.Platform,
			RegionNode:    r.Core.RegionNode,
			Site:          r.Core.Site,
			DotExtremityA: r.Core.DotExtremityA,
			ExtremityA:    r.Core.ExtremityA,
			DotExtremityB: r.Core.DotExtremityB,
			ExtremityB:    r.Core.ExtremityB,
		}
	}
	if r.Backbone != nil {
		backbone = &domain.BackboneFields{
			InterconnectType: r.Backbone.InterconnectType,
			PlatformIGW:      r.Backbone.PlatformIGW,
			LinkLabel:        r.Backbone.LinkLabel,
		}
	}
	return transport, fileAccess, radioAccess, core, backbone
}
