package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"golang-deal-scout/internal/entity"
	"golang-deal-scout/internal/pipeline/dto"
	"golang-deal-scout/internal/pipeline/schema"
)

// NamesOverlap reports whether two company names match under the duplicate
// rule: case-insensitive substring containment in either direction. "Acme"
// matches both "Acme Holdings" and "Acmeco".
func NamesOverlap(a, b string) bool {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	if a == "" || b == "" {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}

// FilterNew drops items whose name overlaps an existing name or an item kept
// earlier in the same batch. Items with an empty name are dropped too.
// Input order is preserved.
func FilterNew[T any](items []T, name func(T) string, existing []string) (kept, skipped []T) {
	var accepted []string
	for _, item := range items {
		n := strings.TrimSpace(name(item))
		if n == "" || overlapsAny(n, existing) || overlapsAny(n, accepted) {
			skipped = append(skipped, item)
			continue
		}
		accepted = append(accepted, n)
		kept = append(kept, item)
	}
	return kept, skipped
}

func overlapsAny(name string, names []string) bool {
	for _, other := range names {
		if NamesOverlap(name, other) {
			return true
		}
	}
	return false
}

// EnrichmentPlan is the set of column writes an enrichment payload may perform.
type EnrichmentPlan struct {
	Updates       map[string]any
	FieldsUpdated []string
	Rejected      []string
}

// PlanEnrichment decides which payload fields are written to a company. A
// field is written only if it is enrichable, the incoming value is non-null
// and valid for the column, and the existing value is missing. Present values
// are never overwritten.
func PlanEnrichment(existing, payload map[string]any) EnrichmentPlan {
	plan := EnrichmentPlan{Updates: map[string]any{}}
	for key, value := range payload {
		f, ok := schema.Lookup(key)
		if !ok || !f.Enrichable {
			plan.Rejected = append(plan.Rejected, key)
			continue
		}
		if value == nil || !isMissing(existing[key]) {
			continue
		}
		coerced, err := schema.Coerce(f, value)
		if err != nil {
			plan.Rejected = append(plan.Rejected, key)
			continue
		}
		plan.Updates[key] = coerced
		plan.FieldsUpdated = append(plan.FieldsUpdated, key)
	}
	sort.Strings(plan.FieldsUpdated)
	sort.Strings(plan.Rejected)
	return plan
}

func isMissing(v any) bool {
	if v == nil {
		return true
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s) == ""
	}
	return false
}

// candidateWriter is the part of the discovery repository used for inserts.
type candidateWriter interface {
	Create(ctx context.Context, result *entity.DiscoveryResult) error
}

// InsertCandidates writes each record on its own statement. A failed record
// is reported and the remaining records are still attempted.
func InsertCandidates(ctx context.Context, repo candidateWriter, records []*entity.DiscoveryResult, now time.Time) (inserted []string, failures []dto.RecordFailure) {
	inserted = []string{}
	failures = []dto.RecordFailure{}
	for i, record := range records {
		record.IsAddedToPipeline = false
		record.AddedCompanyID = nil
		record.DiscoveredAt = now
		if err := repo.Create(ctx, record); err != nil {
			failures = append(failures, dto.RecordFailure{Index: i, Name: record.CompanyName, Error: err.Error()})
			continue
		}
		inserted = append(inserted, record.CompanyName)
	}
	return inserted, failures
}
