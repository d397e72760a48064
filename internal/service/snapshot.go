package service

import (
	"github.com/gdsanger/KManager-sub000/internal/model"

	"github.com/shopspring/decimal"
)

// ApplyItemSnapshot copies price, tax rate and discountability of item onto
// line. It only mutates the in-memory line; a nil item leaves line untouched.
// item.TaxRate must be preloaded: without it the line is left without a tax
// rate, so reference and value never disagree.
func ApplyItemSnapshot(line *model.SalesDocumentLine, item *model.Item) {
	if item == nil || line == nil {
		return
	}
	id := item.ID
	line.ItemID = &id
	line.UnitPriceNet = item.NetPrice
	line.IsDiscountable = item.IsDiscountable
	if item.TaxRate != nil {
		ApplyTaxRate(line, item.TaxRate)
	} else {
		line.TaxRateID = nil
		line.TaxRateValue = decimal.Zero
	}
	if line.Description == "" {
		line.Description = item.Name
	}
}

// ApplyTaxRate stores rate by reference and by value on line.
func ApplyTaxRate(line *model.SalesDocumentLine, rate *model.TaxRate) {
	if rate == nil {
		return
	}
	id := rate.ID
	line.TaxRateID = &id
	line.TaxRateValue = rate.Rate
}

// ApplyItemToContractLine is the template-side counterpart of ApplyItemSnapshot.
func ApplyItemToContractLine(line *model.ContractLine, item *model.Item) {
	if item == nil || line == nil {
		return
	}
	line.UnitPriceNet = item.NetPrice
	line.TaxRateID = item.TaxRateID
	line.IsDiscountable = item.IsDiscountable
	if line.Description == "" {
		line.Description = item.Name
	}
}

// CopyContractLine materializes a document line from a contract template line.
// All values are copied; the document line keeps no reference to the template.
// rate is the template's tax rate, used for the value snapshot.
func CopyContractLine(src model.ContractLine, rate *model.TaxRate) model.SalesDocumentLine {
	taxID := src.TaxRateID
	line := model.SalesDocumentLine{
		PositionNo:     src.PositionNo,
		Description:    src.Description,
		Quantity:       src.Quantity,
		UnitPriceNet:   src.UnitPriceNet,
		TaxRateID:      &taxID,
		IsDiscountable: src.IsDiscountable,
		Discount:       src.Discount,
		CostType1:      copyString(src.CostType1),
		CostType2:      copyString(src.CostType2),
	}
	if rate != nil {
		line.TaxRateValue = rate.Rate
	}
	return line
}

func copyString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

// checkDiscount rejects a discount the calculation would ignore.
func checkDiscount(field string, discount decimal.Decimal, discountable bool) error {
	if !discount.IsZero() && !discountable {
		return model.NewValidationError(field, "Position ist nicht rabattfähig")
	}
	return nil
}
