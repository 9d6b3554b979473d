// Package schema describes the writable columns of the companies table.
//
// The descriptor drives three things: the field list rendered into prompts, the
// whitelist applied to agent and import payloads, and the subset of fields that
// enrichment is allowed to fill.
package schema

import (
	"fmt"
	"strings"

	"golang-deal-scout/pkg/llmjson"
)

// FieldType is the value kind of a column.
type FieldType string

const (
	TypeText   FieldType = "text"
	TypeNumber FieldType = "number"
)

// Field describes one company column.
type Field struct {
	Name        string
	Type        FieldType
	Description string
	Enrichable  bool
}

// Companies is the ordered descriptor of company data columns.
var Companies = []Field{
	{Name: "name", Type: TypeText, Description: "legal or trading name of the company"},
	{Name: "segment", Type: TypeText, Description: "industry segment", Enrichable: true},
	{Name: "segment_related_offerings", Type: TypeText, Description: "products and services in the segment", Enrichable: true},
	{Name: "company_focus", Type: TypeText, Description: "core business focus", Enrichable: true},
	{Name: "website", Type: TypeText, Description: "company website URL", Enrichable: true},
	{Name: "ownership", Type: TypeText, Description: "ownership type, e.g. founder-owned, PE-backed, public", Enrichable: true},
	{Name: "geography", Type: TypeText, Description: "headquarters country and main markets", Enrichable: true},
	{Name: "description", Type: TypeText, Description: "short business description", Enrichable: true},
	{Name: "revenue_2021_usd_mn", Type: TypeNumber, Description: "FY2021 revenue in USD millions", Enrichable: true},
	{Name: "revenue_2022_usd_mn", Type: TypeNumber, Description: "FY2022 revenue in USD millions", Enrichable: true},
	{Name: "revenue_2023_usd_mn", Type: TypeNumber, Description: "FY2023 revenue in USD millions", Enrichable: true},
	{Name: "revenue_2024_usd_mn", Type: TypeNumber, Description: "FY2024 revenue in USD millions", Enrichable: true},
	{Name: "ebitda_2021_usd_mn", Type: TypeNumber, Description: "FY2021 EBITDA in USD millions", Enrichable: true},
	{Name: "ebitda_2022_usd_mn", Type: TypeNumber, Description: "FY2022 EBITDA in USD millions", Enrichable: true},
	{Name: "ebitda_2023_usd_mn", Type: TypeNumber, Description: "FY2023 EBITDA in USD millions", Enrichable: true},
	{Name: "ebitda_2024_usd_mn", Type: TypeNumber, Description: "FY2024 EBITDA in USD millions", Enrichable: true},
	{Name: "ev_2024_usd_mn", Type: TypeNumber, Description: "enterprise value in USD millions", Enrichable: true},
}

var byName = func() map[string]Field {
	m := make(map[string]Field, len(Companies))
	for _, f := range Companies {
		m[f.Name] = f
	}
	return m
}()

// Lookup returns the field descriptor for name.
func Lookup(name string) (Field, bool) {
	f, ok := byName[name]
	return f, ok
}

// Writable reports whether name may be written from an external payload.
func Writable(name string) bool {
	_, ok := byName[name]
	return ok
}

// IsFinancial reports whether the field is a revenue, EBITDA or valuation figure.
func (f Field) IsFinancial() bool {
	return f.Type == TypeNumber
}

// FieldList renders the descriptor as a prompt bullet list.
func FieldList(fields []Field) string {
	var b strings.Builder
	for _, f := range fields {
		fmt.Fprintf(&b, "- %s (%s): %s\n", f.Name, f.Type, f.Description)
	}
	return strings.TrimRight(b.String(), "\n")
}

// EnrichableFields returns the fields enrichment may fill.
func EnrichableFields() []Field {
	var out []Field
	for _, f := range Companies {
		if f.Enrichable {
			out = append(out, f)
		}
	}
	return out
}

// Coerce converts a decoded JSON value to the column's Go type.
// Nil, empty strings and non-finite numbers are rejected.
func Coerce(f Field, v any) (any, error) {
	if v == nil {
		return nil, fmt.Errorf("%s: value is null", f.Name)
	}
	switch f.Type {
	case TypeNumber:
		n, err := llmjson.Number(v)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", f.Name, err)
		}
		return n, nil
	default:
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("%s: expected text, got %T", f.Name, v)
		}
		s = strings.TrimSpace(s)
		if s == "" {
			return nil, fmt.Errorf("%s: value is empty", f.Name)
		}
		return s, nil
	}
}

// Sanitize keeps only whitelisted keys of payload whose values coerce to the
// column type. Dropped keys are returned for logging.
func Sanitize(payload map[string]any) (clean map[string]any, dropped []string) {
	clean = make(map[string]any, len(payload))
	for key, value := range payload {
		f, ok := Lookup(key)
		if !ok {
			dropped = append(dropped, key)
			continue
		}
		if value == nil {
			continue
		}
		coerced, err := Coerce(f, value)
		if err != nil {
			dropped = append(dropped, key)
			continue
		}
		clean[key] = coerced
	}
	return clean, dropped
}
