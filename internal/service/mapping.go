package service

import (
	"time"

	"github.com/gdsanger/KManager-sub000/internal/dto"
	"github.com/gdsanger/KManager-sub000/internal/model"

	"github.com/google/uuid"
)

func formatDate(t time.Time) string { return t.Format(model.DateLayout) }

func formatDatePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := formatDate(*t)
	return &s
}

func uuidPtrString(id *uuid.UUID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}

func parseOptionalUUID(field string, s *string) (*uuid.UUID, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	id, err := uuid.Parse(*s)
	if err != nil {
		return nil, model.NewValidationError(field, "ungültige ID")
	}
	return &id, nil
}

func parseUUID(field, s string) (uuid.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, model.NewValidationError(field, "ungültige ID")
	}
	return id, nil
}

func totalPages(total int64, limit int) int {
	if limit <= 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}

// ToContractRunResponse maps a run for the API.
func ToContractRunResponse(r *model.ContractRun) dto.ContractRunResponse {
	return dto.ContractRunResponse{
		ID:         r.ID.String(),
		ContractID: r.ContractID.String(),
		RunDate:    formatDate(r.RunDate),
		Status:     r.Status,
		Message:    r.Message,
		DocumentID: uuidPtrString(r.DocumentID),
		CreatedAt:  r.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func toContractResponse(c *model.Contract) dto.ContractResponse {
	resp := dto.ContractResponse{
		ID:            c.ID.String(),
		CompanyID:     c.CompanyID.String(),
		CustomerID:    c.CustomerID.String(),
		Name:          c.Name,
		DocumentType:  c.DocumentType,
		PaymentTermID: c.PaymentTermID.String(),
		Currency:      c.Currency,
		Interval:      string(c.Interval),
		StartDate:     formatDate(c.StartDate),
		EndDate:       formatDatePtr(c.EndDate),
		NextRunDate:   formatDate(c.NextRunDate),
		LastRunDate:   formatDatePtr(c.LastRunDate),
		IsActive:      c.IsActive,
	}
	for _, l := range c.Lines {
		resp.Lines = append(resp.Lines, dto.ContractLineResponse{
			ID:             l.ID.String(),
			PositionNo:     l.PositionNo,
			Description:    l.Description,
			Quantity:       l.Quantity,
			UnitPriceNet:   l.UnitPriceNet,
			TaxRateID:      l.TaxRateID.String(),
			IsDiscountable: l.IsDiscountable,
			Discount:       l.Discount,
			CostType1:      l.CostType1,
			CostType2:      l.CostType2,
		})
	}
	return resp
}

func toDocumentResponse(d *model.SalesDocument) dto.DocumentResponse {
	resp := dto.DocumentResponse{
		ID:           d.ID.String(),
		CompanyID:    d.CompanyID.String(),
		CustomerID:   d.CustomerID.String(),
		DocumentType: d.DocumentType,
		Number:       d.Number,
		Status:       d.Status,
		Subject:      d.Subject,
		IssueDate:    formatDate(d.IssueDate),
		DueDate:      formatDatePtr(d.DueDate),
		Currency:     d.Currency,
		ContractID:   uuidPtrString(d.ContractID),
		TotalNet:     d.TotalNet,
		TotalTax:     d.TotalTax,
		TotalGross:   d.TotalGross,
		PDFPath:      d.PDFPath,
		Lines:        make([]dto.DocumentLineResponse, 0, len(d.Lines)),
	}
	for _, l := range d.Lines {
		resp.Lines = append(resp.Lines, dto.DocumentLineResponse{
			ID:             l.ID.String(),
			PositionNo:     l.PositionNo,
			ItemID:         uuidPtrString(l.ItemID),
			Description:    l.Description,
			Quantity:       l.Quantity,
			UnitPriceNet:   l.UnitPriceNet,
			TaxRateID:      uuidPtrString(l.TaxRateID),
			TaxRate:        l.TaxRateValue,
			IsDiscountable: l.IsDiscountable,
			Discount:       l.Discount,
			LineNet:        l.LineNet,
			LineTax:        l.LineTax,
			LineGross:      l.LineGross,
		})
	}
	return resp
}

func toTotalsResponse(t Totals, persisted bool) *dto.TotalsResponse {
	return &dto.TotalsResponse{TotalNet: t.Net, TotalTax: t.Tax, TotalGross: t.Gross, Persisted: persisted}
}
