package dto

// RunBillingRequest triggers GenerateDue for one calendar date (default today).
type RunBillingRequest struct {
	Date string `json:"date" validate:"omitempty,datetime=2006-01-02"`
}

type BillingRunsFilter struct {
	Date string `form:"date" validate:"omitempty,datetime=2006-01-02"` // empty = today
}

// BillingResultItem is one contract's outcome of a billing pass.
type BillingResultItem struct {
	ContractID string               `json:"contract_id"`
	Created    bool                 `json:"created"`
	Run        *ContractRunResponse `json:"run"`
	Error      string               `json:"error,omitempty"`
}

type BillingRunResponse struct {
	Date     string              `json:"date"`
	Created  int                 `json:"created"`
	Existing int                 `json:"existing"`
	Failed   int                 `json:"failed"`
	Results  []BillingResultItem `json:"results"`
}
