package service

import (
	"context"

	"github.com/gdsanger/KManager-sub000/internal/model"
	"github.com/gdsanger/KManager-sub000/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Totals is the aggregate of a document's lines.
type Totals struct {
	Net   decimal.Decimal
	Tax   decimal.Decimal
	Gross decimal.Decimal
}

var one = decimal.NewFromInt(1)

// round2 rounds half away from zero to cents (35.625 → 35.63).
func round2(d decimal.Decimal) decimal.Decimal { return d.Round(2) }

// CalculateLine computes LineNet, LineTax and LineGross from the line's
// snapshot values. Each amount is rounded to cents on its own; the discount
// only applies to discountable lines.
func CalculateLine(l *model.SalesDocumentLine) {
	factor := one
	if l.IsDiscountable && l.Discount.IsPositive() {
		factor = one.Sub(l.Discount)
	}
	l.LineNet = round2(l.Quantity.Mul(l.UnitPriceNet).Mul(factor))
	l.LineTax = round2(l.LineNet.Mul(l.TaxRateValue))
	l.LineGross = l.LineNet.Add(l.LineTax)
}

// CalculateDocument recomputes every line of doc in memory and sets the totals
// to the sum of the already rounded line values.
func CalculateDocument(doc *model.SalesDocument) Totals {
	t := Totals{Net: decimal.Zero, Tax: decimal.Zero}
	for i := range doc.Lines {
		CalculateLine(&doc.Lines[i])
		t.Net = t.Net.Add(doc.Lines[i].LineNet)
		t.Tax = t.Tax.Add(doc.Lines[i].LineTax)
	}
	t.Gross = t.Net.Add(t.Tax)
	doc.TotalNet, doc.TotalTax, doc.TotalGross = t.Net, t.Tax, t.Gross
	return t
}

type CalculationService interface {
	// Recalculate computes line amounts and totals of doc. With persist the
	// results are written in one transaction, otherwise only doc is updated.
	Recalculate(ctx context.Context, doc *model.SalesDocument, persist bool) (Totals, error)
	// RecalculateTx is Recalculate(persist=true) inside the caller's transaction.
	RecalculateTx(ctx context.Context, tx *gorm.DB, doc *model.SalesDocument) (Totals, error)
}

type calculationService struct {
	repo repository.DocumentRepository
}

func NewCalculationService(repo repository.DocumentRepository) CalculationService {
	return &calculationService{repo: repo}
}

func (s *calculationService) Recalculate(ctx context.Context, doc *model.SalesDocument, persist bool) (Totals, error) {
	if !persist {
		return CalculateDocument(doc), nil
	}
	var totals Totals
	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		var err error
		totals, err = s.RecalculateTx(ctx, tx, doc)
		return err
	})
	return totals, err
}

func (s *calculationService) RecalculateTx(ctx context.Context, tx *gorm.DB, doc *model.SalesDocument) (Totals, error) {
	totals := CalculateDocument(doc)
	if err := s.repo.SaveCalculationTx(ctx, tx, doc); err != nil {
		return Totals{}, err
	}
	return totals, nil
}
