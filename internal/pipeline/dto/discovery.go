package dto

// DiscoveredCompany is one entry of the "companies" array returned by the agent.
type DiscoveredCompany struct {
	CompanyName             string `json:"company_name"`
	Sector                  string `json:"sector"`
	Description             string `json:"description"`
	MatchScore              any    `json:"match_score"`
	MatchReason             string `json:"match_reason"`
	Website                 string `json:"website"`
	EstimatedRevenueUSDMn   any    `json:"estimated_revenue_usd_mn"`
	EstimatedValuationUSDMn any    `json:"estimated_valuation_usd_mn"`
}

// DiscoveryPayload is the object the discovery prompt asks for.
type DiscoveryPayload struct {
	Companies []DiscoveredCompany `json:"companies"`
}

// DiscoveryRunResponse summarises one discovery run.
type DiscoveryRunResponse struct {
	ThesisID  string          `json:"thesis_id,omitempty"`
	RunID     string          `json:"run_id,omitempty"`
	Count     int             `json:"count"`
	Companies []string        `json:"companies"`
	Skipped   []string        `json:"skipped"`
	Failures  []RecordFailure `json:"failures"`
}

// RunDiscoveryRequest runs discovery for an ad-hoc thesis text.
type RunDiscoveryRequest struct {
	Thesis string `json:"thesis" validate:"required"`
	Count  int    `json:"count" validate:"omitempty,min=1,max=50"`
}

// DiscoveryFilter narrows the discovery result list.
type DiscoveryFilter struct {
	Status   string `query:"status" validate:"omitempty,oneof=pending added all"`
	ThesisID string `query:"thesis_id" validate:"omitempty,uuid"`
}

// AddToPipelineRequest promotes a discovery result into a company.
type AddToPipelineRequest struct {
	Stage string `json:"stage" validate:"omitempty,stage"`
}
