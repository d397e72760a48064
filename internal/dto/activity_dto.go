package dto

type ActivityFilter struct {
	CompanyID string `form:"company_id" validate:"omitempty,uuid"`
	Domain    string `form:"domain"     validate:"omitempty,oneof=BILLING DOCUMENT CONTRACT"`
	Limit     int    `form:"limit,default=50" validate:"min=1,max=500"`
}

type ActivityResponse struct {
	ID          string  `json:"id"`
	CompanyID   *string `json:"company_id"`
	Domain      string  `json:"domain"`
	Type        string  `json:"type"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Actor       string  `json:"actor"`
	Severity    string  `json:"severity"`
	CreatedAt   string  `json:"created_at"`
}
