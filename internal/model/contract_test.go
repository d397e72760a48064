package model

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validContract() *Contract {
	return &Contract{
		Name:         "Wartungsvertrag",
		DocumentType: DocumentTypeInvoice,
		Interval:     IntervalMonthly,
		StartDate:    date(2026, 1, 1),
		NextRunDate:  date(2026, 1, 1),
		IsActive:     true,
		Lines: []ContractLine{{
			PositionNo:   1,
			Description:  "Wartung",
			Quantity:     decimal.NewFromInt(1),
			UnitPriceNet: decimal.NewFromInt(1000),
			TaxRateID:    uuid.New(),
		}},
	}
}

func TestInterval_Months(t *testing.T) {
	assert.Equal(t, 1, IntervalMonthly.Months())
	assert.Equal(t, 3, IntervalQuarterly.Months())
	assert.Equal(t, 6, IntervalSemiAnnual.Months())
	assert.Equal(t, 12, IntervalAnnual.Months())
	assert.Equal(t, 0, Interval("WEEKLY").Months())
	assert.False(t, Interval("WEEKLY").Valid())
}

func TestContractValidate_OK(t *testing.T) {
	assert.NoError(t, validContract().Validate())
}

func TestContractValidate_Errors(t *testing.T) {
	end := date(2025, 12, 31)
	cases := []struct {
		name   string
		mutate func(c *Contract)
		field  string
	}{
		{"empty name", func(c *Contract) { c.Name = "" }, "name"},
		{"unknown interval", func(c *Contract) { c.Interval = "DAILY" }, "interval"},
		{"unknown document type", func(c *Contract) { c.DocumentType = "RECEIPT" }, "document_type"},
		{"end before start", func(c *Contract) { c.EndDate = &end }, "end_date"},
		{"next run before start", func(c *Contract) { c.NextRunDate = date(2025, 12, 1) }, "next_run_date"},
		{"zero quantity", func(c *Contract) { c.Lines[0].Quantity = decimal.Zero }, "lines.quantity"},
		{"discount above one", func(c *Contract) { c.Lines[0].Discount = decimal.NewFromFloat(1.5) }, "lines.discount"},
		{"missing tax rate", func(c *Contract) { c.Lines[0].TaxRateID = uuid.Nil }, "lines.tax_rate_id"},
		{"duplicate position", func(c *Contract) { c.Lines = append(c.Lines, c.Lines[0]) }, "lines.position_no"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := validContract()
			tc.mutate(c)
			err := c.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrValidation))
			var ve *ValidationError
			require.True(t, errors.As(err, &ve))
			assert.Equal(t, tc.field, ve.Field)
		})
	}
}

func TestContractIsDue(t *testing.T) {
	today := date(2026, 1, 1)

	c := validContract()
	assert.True(t, c.IsDue(today), "next run today")
	assert.True(t, c.IsDue(today.Add(15*time.Hour)), "time of day is ignored")

	c.NextRunDate = date(2025, 11, 1)
	assert.True(t, c.IsDue(today), "overdue contracts are due")

	c.NextRunDate = date(2026, 1, 2)
	assert.False(t, c.IsDue(today), "future run")

	c = validContract()
	c.IsActive = false
	assert.False(t, c.IsDue(today), "inactive")

	c = validContract()
	end := date(2026, 1, 1)
	c.EndDate = &end
	assert.True(t, c.IsDue(today), "ends today")

	c.NextRunDate = date(2025, 12, 1)
	end = date(2025, 12, 31)
	assert.False(t, c.IsDue(today), "ended yesterday")
}

func TestContractAdvanceNextRunDate(t *testing.T) {
	c := validContract()
	assert.Equal(t, date(2026, 2, 1), c.AdvanceNextRunDate())

	c.Interval = IntervalQuarterly
	c.NextRunDate = date(2026, 1, 15)
	assert.Equal(t, date(2026, 4, 15), c.AdvanceNextRunDate())

	c.Interval = IntervalMonthly
	c.NextRunDate = date(2026, 1, 31)
	assert.Equal(t, date(2026, 2, 28), c.AdvanceNextRunDate())
}

func TestPaymentTerm_DueDates(t *testing.T) {
	p := &PaymentTerm{NetDays: 14}
	assert.Equal(t, date(2026, 1, 15), p.CalculateDueDate(date(2026, 1, 1)))
	assert.Nil(t, p.DiscountDueDate(date(2026, 1, 1)))

	p.DiscountDays = 7
	p.DiscountPercent = decimal.NewFromInt(2)
	require.NotNil(t, p.DiscountDueDate(date(2026, 1, 1)))
	assert.Equal(t, date(2026, 1, 8), *p.DiscountDueDate(date(2026, 1, 1)))

	p.DiscountDays = 30
	assert.Error(t, p.Validate())
}

func TestDocumentPrefix(t *testing.T) {
	assert.Equal(t, "RE", DocumentPrefix(DocumentTypeInvoice))
	assert.Equal(t, "AN", DocumentPrefix(DocumentTypeQuote))
	assert.Equal(t, "AB", DocumentPrefix(DocumentTypeOrderConfirmation))
	assert.Equal(t, "GS", DocumentPrefix(DocumentTypeCreditNote))
	assert.False(t, IsDocumentType("DELIVERY_NOTE"))
}
