package search

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/spec-kit/incident-service/internal/domain"
	"github.com/spec-kit/incident-service/internal/lifecycle"
)

var now = time.Date(2025, time.March, 10, 14, 0, 0, 0, time.UTC)

func TestParseStatusBucket(t *testing.T) {
	tests := []struct {
		raw  string
		want StatusBucket
	}{
		{"active", BucketActive},
		{" Resolved ", BucketResolved},
		{"NEW", BucketNew},
		{"critical", BucketCritical},
		{"", BucketAny},
		{"bogus", BucketAny},
	}
	for _, tt := range tests {
		if got := ParseStatusBucket(tt.raw); got != tt.want {
			t.Errorf("ParseStatusBucket(%q): got %q, want %q", tt.raw, got, tt.want)
		}
	}
}

// Bucket membership must agree with the lifecycle classifier for every age,
// including the exact 1h/2h/4h boundaries.
func TestBuckets_AgreeWithClassifier(t *testing.T) {
	buckets := map[domain.Severity]StatusBucket{
		domain.SeverityNew:      BucketNew,
		domain.SeverityLow:      BucketLow,
		domain.SeverityMedium:   BucketMedium,
		domain.SeverityCritical: BucketCritical,
	}

	ages := []time.Duration{
		0, time.Minute, time.Hour - time.Second, time.Hour, time.Hour + time.Second,
		2*time.Hour - time.Second, 2 * time.Hour, 3 * time.Hour,
		4*time.Hour - time.Second, 4 * time.Hour, 26 * time.Hour,
	}
	for _, age := range ages {
		inc := domain.Incident{OccurredAt: now.Add(-age)}
		sev := lifecycle.ClassifySeverity(inc.OccurredAt, nil, now)
		for wantSev, bucket := range buckets {
			got := bucket.CutoffsAt(now).Matches(&inc)
			want := sev == wantSev
			if got != want {
				t.Errorf("age %v: bucket %q matched=%v, classifier says %s", age, bucket, got, sev)
			}
		}
	}
}

func TestBuckets_ResolutionState(t *testing.T) {
	resolvedAt := now.Add(-time.Hour)
	resolved := domain.Incident{OccurredAt: now.Add(-26 * time.Hour), ResolvedAt: &resolvedAt}
	active := domain.Incident{OccurredAt: now.Add(-26 * time.Hour)}

	if !BucketResolved.CutoffsAt(now).Matches(&resolved) {
		t.Error("resolved bucket must match resolved incident")
	}
	if BucketResolved.CutoffsAt(now).Matches(&active) {
		t.Error("resolved bucket must not match active incident")
	}
	if !BucketActive.CutoffsAt(now).Matches(&active) {
		t.Error("active bucket must match active incident")
	}
	// A resolved incident never appears in a severity bucket, however old.
	if BucketCritical.CutoffsAt(now).Matches(&resolved) {
		t.Error("severity buckets must exclude resolved incidents")
	}
	// BucketAny matches everything.
	if !BucketAny.CutoffsAt(now).Matches(&resolved) || !BucketAny.CutoffsAt(now).Matches(&active) {
		t.Error("empty bucket must match all incidents")
	}
}

func TestParseSort(t *testing.T) {
	tests := []struct {
		raw  string
		want Sort
	}{
		{"", DefaultSort},
		{"occurred_at", Sort{Field: "occurred_at"}},
		{"-occurred_at", Sort{Field: "occurred_at", Descending: true}},
		{"-duration_minutes", Sort{Field: "duration_minutes", Descending: true}},
		{"cause", Sort{Field: "cause"}},
		{"password_hash", DefaultSort},              // not whitelisted: fail closed
		{"-id; DROP TABLE incidents", DefaultSort},  // hostile input falls back
	}
	for _, tt := range tests {
		if got := ParseSort(tt.raw); got != tt.want {
			t.Errorf("ParseSort(%q): got %+v, want %+v", tt.raw, got, tt.want)
		}
	}
}

func TestNormalize(t *testing.T) {
	p := Params{
		Query: "  fiber cut  ",
		Fields: map[string]string{
			"region_loop": " North Loop ",
			"site":        "ALG-07", // not a transport field
			"ip_address":  "",
		},
		Limit:  -3,
		Offset: -1,
	}
	got := p.Normalize(domain.DomainTransport)
	want := Params{
		Query:  "fiber cut",
		Fields: map[string]string{"region_loop": "North Loop"},
		Sort:   DefaultSort,
		Limit:  50,
		Offset: 0,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Normalize mismatch (-want +got):\n%s", diff)
	}
}

func TestNormalize_RejectsNonWhitelistedSortField(t *testing.T) {
	tests := []struct {
		name string
		sort Sort
		want Sort
	}{
		{"empty falls to default", Sort{}, DefaultSort},
		{"whitelisted field kept", Sort{Field: "cause", Descending: true}, Sort{Field: "cause", Descending: true}},
		{"arbitrary field rejected", Sort{Field: "id; DROP TABLE incidents"}, DefaultSort},
		{"near miss rejected", Sort{Field: "occurred_at "}, DefaultSort},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Params{Sort: tt.sort}.Normalize(domain.DomainTransport)
			if got.Sort != tt.want {
				t.Errorf("got %+v, want %+v", got.Sort, tt.want)
			}
		})
	}
}

func TestNormalize_ClampsLimit(t *testing.T) {
	got := Params{Limit: 100000}.Normalize(domain.DomainCore)
	if got.Limit != 500 {
		t.Errorf("limit clamp: got %d, want 500", got.Limit)
	}
}
