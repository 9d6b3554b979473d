package dto

// Screening outcomes.
const (
	ScreeningPass         = "pass"
	ScreeningFail         = "fail"
	ScreeningInconclusive = "inconclusive"
	ScreeningError        = "error"
)

// ScreeningRequest evaluates one company against one criterion.
type ScreeningRequest struct {
	CompanyID       string `json:"company_id" validate:"required,uuid"`
	CriterionID     string `json:"criterion_id" validate:"required"`
	CriterionPrompt string `json:"criterion_prompt" validate:"required"`
}

// ScreeningResult is the evaluation outcome.
type ScreeningResult struct {
	Result  string `json:"result"`
	Remarks string `json:"remarks"`
}
