package dto

// Enrichment outcome statuses.
const (
	EnrichmentUpdated   = "updated"
	EnrichmentUnchanged = "unchanged"
	EnrichmentError     = "error"
)

// EnrichmentPayload is the object the enrichment prompt asks for.
type EnrichmentPayload struct {
	Fields map[string]any `json:"fields"`
}

// EnrichmentResult is the per-company enrichment summary.
type EnrichmentResult struct {
	CompanyID     string   `json:"company_id"`
	Name          string   `json:"name"`
	Status        string   `json:"status"`
	FieldsUpdated []string `json:"fields_updated"`
	Error         string   `json:"error,omitempty"`
}

// BatchEnrichRequest enriches several companies in order.
type BatchEnrichRequest struct {
	CompanyIDs []string `json:"company_ids" validate:"required,min=1,max=50,dive,uuid"`
}

// BatchEnrichResponse keeps the order of the request ids.
type BatchEnrichResponse struct {
	Results []EnrichmentResult `json:"results"`
	Updated int                `json:"updated"`
	Failed  int                `json:"failed"`
}
