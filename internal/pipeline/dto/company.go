package dto

import (
	"golang-deal-scout/internal/entity"
)

// CreateCompanyRequest is the DTO for manually creating a company.
type CreateCompanyRequest struct {
	Name                    string   `json:"name" validate:"required,max=255"`
	Segment                 *string  `json:"segment"`
	SegmentRelatedOfferings *string  `json:"segment_related_offerings"`
	CompanyFocus            *string  `json:"company_focus"`
	Website                 *string  `json:"website"`
	Ownership               *string  `json:"ownership"`
	Geography               *string  `json:"geography"`
	Description             *string  `json:"description"`
	Revenue2021USDMn        *float64 `json:"revenue_2021_usd_mn"`
	Revenue2022USDMn        *float64 `json:"revenue_2022_usd_mn"`
	Revenue2023USDMn        *float64 `json:"revenue_2023_usd_mn"`
	Revenue2024USDMn        *float64 `json:"revenue_2024_usd_mn"`
	EBITDA2021USDMn         *float64 `json:"ebitda_2021_usd_mn"`
	EBITDA2022USDMn         *float64 `json:"ebitda_2022_usd_mn"`
	EBITDA2023USDMn         *float64 `json:"ebitda_2023_usd_mn"`
	EBITDA2024USDMn         *float64 `json:"ebitda_2024_usd_mn"`
	EV2024USDMn             *float64 `json:"ev_2024_usd_mn"`
	PipelineStage           *string  `json:"pipeline_stage" validate:"omitempty,stage"`
}

// ToEntity maps the request onto a new company.
func (r *CreateCompanyRequest) ToEntity() *entity.Company {
	c := &entity.Company{
		Name:                    r.Name,
		Segment:                 r.Segment,
		SegmentRelatedOfferings: r.SegmentRelatedOfferings,
		CompanyFocus:            r.CompanyFocus,
		Website:                 r.Website,
		Ownership:               r.Ownership,
		Geography:               r.Geography,
		Description:             r.Description,
		Revenue2021USDMn:        r.Revenue2021USDMn,
		Revenue2022USDMn:        r.Revenue2022USDMn,
		Revenue2023USDMn:        r.Revenue2023USDMn,
		Revenue2024USDMn:        r.Revenue2024USDMn,
		EBITDA2021USDMn:         r.EBITDA2021USDMn,
		EBITDA2022USDMn:         r.EBITDA2022USDMn,
		EBITDA2023USDMn:         r.EBITDA2023USDMn,
		EBITDA2024USDMn:         r.EBITDA2024USDMn,
		EV2024USDMn:             r.EV2024USDMn,
		Source:                  entity.SourceManual,
	}
	if r.PipelineStage != nil {
		stage := entity.PipelineStage(*r.PipelineStage)
		c.PipelineStage = &stage
	}
	return c
}

// CompanyFilter narrows the company list.
type CompanyFilter struct {
	Stage  string `query:"stage" validate:"omitempty,stage|eq=none"`
	Search string `query:"search"`
	Limit  int    `query:"limit" validate:"omitempty,min=1,max=500"`
	Offset int    `query:"offset" validate:"omitempty,min=0"`
}

// ImportCompaniesRequest is the DTO for bulk import. Each record is a column
// map filtered through the schema whitelist.
type ImportCompaniesRequest struct {
	Companies []map[string]any `json:"companies" validate:"required,min=1,max=1000"`
}

// RecordFailure describes one record of a batch that could not be written.
type RecordFailure struct {
	Index int    `json:"index"`
	Name  string `json:"name,omitempty"`
	Error string `json:"error"`
}

// ImportSummary is the result of a bulk import.
type ImportSummary struct {
	Imported int             `json:"imported"`
	Names    []string        `json:"names"`
	Failures []RecordFailure `json:"failures"`
}

// PromoteStageRequest moves a company to a later pipeline stage.
type PromoteStageRequest struct {
	Stage string `json:"stage" validate:"required,stage"`
}

// CreateNoteRequest is the DTO for appending a company note.
type CreateNoteRequest struct {
	Body string `json:"body" validate:"required,max=10000"`
}
