// Package search defines the filter parameter bag, the sort-key whitelist and
// the status-bucket cutoffs shared between list views and saved searches. The
// SQL realization of these predicates lives in the repository; this package
// only decides what the predicates mean.
package search

import (
	"strings"
	"time"

	"github.com/spec-kit/incident-service/internal/domain"
	"github.com/spec-kit/incident-service/internal/lifecycle"
)

// StatusBucket selects incidents by resolution state or by the same severity
// tiers the lifecycle classifier derives.
type StatusBucket string

const (
	BucketAny      StatusBucket = ""
	BucketActive   StatusBucket = "active"
	BucketResolved StatusBucket = "resolved"
	BucketNew      StatusBucket = "new"
	BucketLow      StatusBucket = "low"
	BucketMedium   StatusBucket = "medium"
	BucketCritical StatusBucket = "critical"
)

// ParseStatusBucket maps a user-supplied value to a bucket, failing closed to
// BucketAny on unknown input since the value arrives from URLs.
func ParseStatusBucket(raw string) StatusBucket {
	switch StatusBucket(strings.ToLower(strings.TrimSpace(raw))) {
	case BucketActive:
		return BucketActive
	case BucketResolved:
		return BucketResolved
	case BucketNew:
		return BucketNew
	case BucketLow:
		return BucketLow
	case BucketMedium:
		return BucketMedium
	case BucketCritical:
		return BucketCritical
	}
	return BucketAny
}

// Cutoffs expresses a status bucket as predicate pieces on
// (resolved_at, occurred_at). Resolved is the required resolution state when
// non-nil; OccurredAfter/OccurredBefore bound occurred_at when non-nil. The
// bounds reuse the lifecycle threshold constants so a bucket always selects
// exactly the incidents ClassifySeverity would place in that tier:
// occurred_at in (now-upper, now-lower] corresponds to age in [lower, upper).
type Cutoffs struct {
	Resolved       *bool
	OccurredAfter  *time.Time
	OccurredBefore *time.Time
}

// CutoffsAt resolves the bucket against a reference time.
func (b StatusBucket) CutoffsAt(now time.Time) Cutoffs {
	boolPtr := func(v bool) *bool { return &v }
	timePtr := func(t time.Time) *time.Time { return &t }
	active := boolPtr(false)

	switch b {
	case BucketActive:
		return Cutoffs{Resolved: active}
	case BucketResolved:
		return Cutoffs{Resolved: boolPtr(true)}
	case BucketNew:
		return Cutoffs{Resolved: active, OccurredAfter: timePtr(now.Add(-lifecycle.SeverityNewUpper))}
	case BucketLow:
		return Cutoffs{
			Resolved:       active,
			OccurredAfter:  timePtr(now.Add(-lifecycle.SeverityLowUpper)),
			OccurredBefore: timePtr(now.Add(-lifecycle.SeverityNewUpper)),
		}
	case BucketMedium:
		return Cutoffs{
			Resolved:       active,
			OccurredAfter:  timePtr(now.Add(-lifecycle.SeverityMediumUpper)),
			OccurredBefore: timePtr(now.Add(-lifecycle.SeverityLowUpper)),
		}
	case BucketCritical:
		return Cutoffs{Resolved: active, OccurredBefore: timePtr(now.Add(-lifecycle.SeverityMediumUpper))}
	}
	return Cutoffs{}
}

// Matches evaluates the cutoffs against a single incident, mirroring the SQL
// realization bit for bit. Exposed so tests can prove bucket membership and
// ClassifySeverity agree.
func (c Cutoffs) Matches(inc *domain.Incident) bool {
	if c.Resolved != nil && *c.Resolved != (inc.ResolvedAt != nil) {
		return false
	}
	// Half-open [lower, upper) age maps to (now-upper, now-lower] on
	// occurred_at: strictly after the older bound, at or before the newer.
	if c.OccurredAfter != nil && !inc.OccurredAt.After(*c.OccurredAfter) {
		return false
	}
	if c.OccurredBefore != nil && inc.OccurredAt.After(*c.OccurredBefore) {
		return false
	}
	return true
}

// Params is the search parameter bag accepted from query strings and saved
// searches. Zero values mean "no filter".
type Params struct {
	Query    string
	DateFrom *time.Time // inclusive lower bound on occurred_at
	DateTo   *time.Time // inclusive upper bound on occurred_at
	Status   StatusBucket
	Cause    string
	Origin   string

	// Fields carries domain-specific equality/substring filters keyed by
	// the whitelisted field names for the target domain.
	Fields map[string]string

	Sort   Sort
	Limit  int
	Offset int
}

// Sort is a whitelisted (field, direction) pair.
type Sort struct {
	Field      string
	Descending bool
}

// DefaultSort orders newest incidents first.
var DefaultSort = Sort{Field: "occurred_at", Descending: true}

var sortableFields = map[string]struct{}{
	"occurred_at":      {},
	"resolved_at":      {},
	"created_at":       {},
	"updated_at":       {},
	"duration_minutes": {},
	"cause":            {},
	"origin":           {},
}

// ParseSort parses a user-supplied sort key of the form "field" or "-field".
// Unknown fields fail closed to DefaultSort rather than erroring, since sort
// keys are URL-supplied.
func ParseSort(raw string) Sort {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return DefaultSort
	}
	desc := false
	if strings.HasPrefix(raw, "-") {
		desc = true
		raw = raw[1:]
	}
	if _, ok := sortableFields[raw]; !ok {
		return DefaultSort
	}
	return Sort{Field: raw, Descending: desc}
}

// domainFields whitelists the per-domain filter keys accepted in Params.Fields.
var domainFields = map[domain.NetworkDomain][]string{
	domain.DomainTransport:        {"region_loop", "system_capacity", "extremity_a", "extremity_b"},
	domain.DomainFileAccess:       {"do_wilaya", "zone_metro", "site", "ip_address"},
	domain.DomainRadioAccess:      {"do_wilaya", "site", "ip_address"},
	domain.DomainCore:             {"platform", "region_node", "site"},
	domain.DomainBackboneInternet: {"interconnect_type", "platform_igw", "link_label"},
}

// FilterableFields returns the whitelisted domain-specific filter keys.
func FilterableFields(d domain.NetworkDomain) []string {
	return domainFields[d]
}

// Normalize trims the free-text query, drops non-whitelisted field filters
// for the domain and clamps paging. It never errors: malformed input
// degrades to an unfiltered view.
func (p Params) Normalize(d domain.NetworkDomain) Params {
	p.Query = strings.TrimSpace(p.Query)
	if _, ok := sortableFields[p.Sort.Field]; !ok {
		// The sort field reaches SQL verbatim, so the whitelist holds even
		// for Params built in-process rather than through ParseSort.
		p.Sort = DefaultSort
	}
	if len(p.Fields) > 0 {
		allowed := make(map[string]struct{}, len(domainFields[d]))
		for _, f := range domainFields[d] {
			allowed[f] = struct{}{}
		}
		kept := make(map[string]string, len(p.Fields))
		for k, v := range p.Fields {
			if _, ok := allowed[k]; ok && strings.TrimSpace(v) != "" {
				kept[k] = strings.TrimSpace(v)
			}
		}
		p.Fields = kept
	}
	if p.Limit <= 0 {
		p.Limit = 50
	}
	if p.Limit > 500 {
		p.Limit = 500
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}

// Statistics summarizes a search result without materializing record lists.
type Statistics struct {
	Total    int `json:"total_incidents"`
	Filtered int `json:"filtered_incidents"`
	Active   int `json:"active_incidents"`
	Resolved int `json:"resolved_incidents"`
}
