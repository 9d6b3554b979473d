package prompt

import (
	"fmt"
	"strings"

	"golang-deal-scout/internal/entity"
	"golang-deal-scout/internal/pipeline/schema"
)

// Signature keys the response parser looks for when the agent wraps JSON in prose.
const (
	ScreeningKey  = "result"
	EnrichmentKey = "fields"
	DiscoveryKey  = "companies"
)

// NotAvailable fills optional sections that have no content.
const NotAvailable = "Not available."

var Screening = Template{
	Name: "screening",
	Text: `You are an M&A analyst screening an acquisition target against one criterion.

Company profile:
{{company_context}}

Recent news:
{{news}}

Criterion:
{{criterion}}

Decide whether the company passes the criterion. Answer "inconclusive" when the
profile does not contain enough information to decide.

Respond with a single JSON object and nothing else:
{"result": "pass" | "fail" | "inconclusive", "remarks": "<one or two sentences>"}`,
}

var Enrichment = Template{
	Name: "enrichment",
	Text: `You are an M&A research assistant filling gaps in a company record.

Company profile:
{{company_context}}

Website excerpt:
{{website_excerpt}}

The following fields are missing:
{{missing_fields}}

Field reference:
{{field_list}}

Return only fields you can support with public information. Financial figures
are in USD millions. Omit any field you cannot find; never guess.

Respond with a single JSON object and nothing else:
{"fields": {"<field name>": <value>, ...}}`,
}

var Discovery = Template{
	Name: "discovery",
	Text: `You are an M&A origination analyst searching for acquisition targets.

Investment thesis:
{{thesis}}

Find up to {{count}} companies that fit the thesis. Do not return any of these
companies, they are already known:
{{exclusions}}

Fields you may fill for each company:
{{field_list}}

Respond with a single JSON object and nothing else:
{"companies": [{"company_name": "...", "sector": "...", "description": "...",
"match_score": <0-100>, "match_reason": "...", "website": "...",
"estimated_revenue_usd_mn": <number>, "estimated_valuation_usd_mn": <number>}]}`,
}

var Chat = Template{
	Name: "chat",
	Text: `You are an M&A analyst assistant answering questions about one company in
the deal pipeline. Base your answers on the profile below and say so when the
profile does not cover a question.

Company profile:
{{company_context}}`,
}

// ScreeningPrompt renders the screening template for one company and criterion.
func ScreeningPrompt(c *entity.Company, criterion string, headlines []string) string {
	return Screening.MustRender(map[string]string{
		"company_context": BuildCompanyContext(c),
		"news":            bulletList(headlines),
		"criterion":       strings.TrimSpace(criterion),
	})
}

// EnrichmentPrompt renders the enrichment template. missing lists the
// enrichable fields that are empty on the company.
func EnrichmentPrompt(c *entity.Company, missing []schema.Field, websiteExcerpt string) string {
	excerpt := strings.TrimSpace(websiteExcerpt)
	if excerpt == "" {
		excerpt = NotAvailable
	}
	names := make([]string, 0, len(missing))
	for _, f := range missing {
		names = append(names, f.Name)
	}
	return Enrichment.MustRender(map[string]string{
		"company_context": BuildCompanyContext(c),
		"website_excerpt": excerpt,
		"missing_fields":  bulletList(names),
		"field_list":      schema.FieldList(missing),
	})
}

// DiscoveryPrompt renders the discovery template for a thesis.
func DiscoveryPrompt(thesis string, count int, exclusions []string) string {
	return Discovery.MustRender(map[string]string{
		"thesis":     strings.TrimSpace(thesis),
		"count":      fmt.Sprintf("%d", count),
		"exclusions": bulletList(exclusions),
		"field_list": schema.FieldList(schema.EnrichableFields()),
	})
}

// ChatSystemPrompt renders the system turn for a company chat.
func ChatSystemPrompt(c *entity.Company) string {
	return Chat.MustRender(map[string]string{
		"company_context": BuildCompanyContext(c),
	})
}

func bulletList(items []string) string {
	lines := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		lines = append(lines, "- "+item)
	}
	if len(lines) == 0 {
		return "None."
	}
	return strings.Join(lines, "\n")
}
