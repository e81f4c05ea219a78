package domain

import "time"

// NetworkDomain identifies which of the five monitored networks an incident
// belongs to. The tag drives which field bag is populated and how analytics
// bucket per-network results; lifecycle rules are identical across domains.
type NetworkDomain string

const (
	DomainTransport        NetworkDomain = "transport"
	DomainFileAccess       NetworkDomain = "file_access"
	DomainRadioAccess      NetworkDomain = "radio_access"
	DomainCore             NetworkDomain = "core"
	DomainBackboneInternet NetworkDomain = "backbone_internet"
)

// AllDomains returns the five network domains in canonical order.
func AllDomains() []NetworkDomain {
	return []NetworkDomain{
		DomainTransport,
		DomainFileAccess,
		DomainRadioAccess,
		DomainCore,
		DomainBackboneInternet,
	}
}

// Valid reports whether the domain tag is one of the five known networks.
func (d NetworkDomain) Valid() bool {
	switch d {
	case DomainTransport, DomainFileAccess, DomainRadioAccess, DomainCore, DomainBackboneInternet:
		return true
	}
	return false
}

// DisplayName returns the operator-facing network name.
func (d NetworkDomain) DisplayName() string {
	switch d {
	case DomainTransport:
		return "Transport Networks"
	case DomainFileAccess:
		return "File Access Networks"
	case DomainRadioAccess:
		return "Radio Access Networks"
	case DomainCore:
		return "Core Networks"
	case DomainBackboneInternet:
		return "Backbone Internet Networks"
	}
	return string(d)
}

// Severity is the age-derived urgency tier of an incident. Unresolved
// incidents escalate through New/Low/Medium/Critical as they age; resolution
// freezes the tier at Resolved regardless of how long the fault lasted.
type Severity string

const (
	SeverityNew      Severity = "NEW"
	SeverityLow      Severity = "LOW"
	SeverityMedium   Severity = "MEDIUM"
	SeverityCritical Severity = "CRITICAL"
	SeverityResolved Severity = "RESOLVED"
)

// TransportFields carries transport-network locations (section extremities).
type TransportFields struct {
	RegionLoop     string
	SystemCapacity string
	DotExtremityA  string
	ExtremityA     string
	DotExtremityB  string
	ExtremityB     string
	Responsibility string // "A", "B", "Both" or empty
}

// FileAccessFields carries file-access-network site identification.
type FileAccessFields struct {
	DoWilaya  string
	ZoneMetro string
	Site      string
	IPAddress string
}

// RadioAccessFields carries radio-site identification.
type RadioAccessFields struct {
	DoWilaya  string
	Site      string
	IPAddress string
}

// CoreFields carries core-network platform/node identification. Extremities
// are optional; when present they describe a section like transport incidents.
type CoreFields struct {
	Platform      string
	RegionNode    string
	Site          string
	DotExtremityA string
	ExtremityA    string
	DotExtremityB string
	ExtremityB    string
}

// BackboneFields carries backbone-internet interconnect identification.
type BackboneFields struct {
	InterconnectType string
	PlatformIGW      string
	LinkLabel        string
}

// Incident is the canonical ticket shared by all five networks. Exactly one
// of the domain field bags is non-nil, matching the Domain tag.
type Incident struct {
	ID     string
	Domain NetworkDomain

	// OccurredAt is required at creation; a zero value only appears on
	// corrupted persisted rows.
	OccurredAt time.Time
	ResolvedAt *time.Time

	// DurationMinutes is derived from OccurredAt and ResolvedAt (or "now")
	// on every save and is never independently authoritative.
	DurationMinutes *int

	Cause       string
	CauseOther  string
	Origin      string
	OriginOther string
	Notes       string

	IsResolved bool
	IsArchived bool
	ArchivedAt *time.Time
	ArchivedBy *string

	CorrectionRequired bool
	CorrectionNote     string

	CreatedBy *string
	UpdatedBy *string
	CreatedAt time.Time
	UpdatedAt time.Time

	Transport   *TransportFields
	FileAccess  *FileAccessFields
	RadioAccess *RadioAccessFields
	Core        *CoreFields
	Backbone    *BackboneFields
}

// Location returns the operator-facing location string for the incident's
// domain, mirroring how each network names its fault site.
func (i *Incident) Location() string {
	switch {
	case i.Transport != nil:
		return i.Transport.ExtremityA + " - " + i.Transport.ExtremityB
	case i.FileAccess != nil:
		return i.FileAccess.DoWilaya + " - " + i.FileAccess.Site
	case i.RadioAccess != nil:
		return i.RadioAccess.DoWilaya + " - " + i.RadioAccess.Site
	case i.Core != nil:
		if i.Core.ExtremityA != "" && i.Core.ExtremityB != "" {
			return i.Core.ExtremityA + " - " + i.Core.ExtremityB
		}
		if i.Core.Site != "" {
			return i.Core.RegionNode + " - " + i.Core.Site
		}
		return i.Core.RegionNode
	case i.Backbone != nil:
		return i.Backbone.PlatformIGW + " - " + i.Backbone.LinkLabel
	}
	return ""
}

// CauseDisplay returns the cause with its free-text detail when the
// categorical value is the literal "Other".
func (i *Incident) CauseDisplay() string {
	return displayWithOther(i.Cause, i.CauseOther)
}

// OriginDisplay returns the origin with its free-text detail when the
// categorical value is the literal "Other".
func (i *Incident) OriginDisplay() string {
	return displayWithOther(i.Origin, i.OriginOther)
}

func displayWithOther(value, other string) string {
	if value == "" {
		return ""
	}
	if equalsOther(value) && other != "" {
		return "Other: " + other
	}
	return value
}

func equalsOther(value string) bool {
	return value == "Other" || value == "other" || value == "OTHER"
}
