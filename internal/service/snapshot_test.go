package service

import (
	"testing"

	"github.com/gdsanger/KManager-sub000/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyItemSnapshot(t *testing.T) {
	rate := &model.TaxRate{ID: uuid.New(), Rate: dec("0.07")}
	item := &model.Item{ID: uuid.New(), Name: "Fachbuch", NetPrice: dec("49.90"), TaxRateID: rate.ID, TaxRate: rate, IsDiscountable: true}

	line := &model.SalesDocumentLine{Quantity: dec("2")}
	ApplyItemSnapshot(line, item)

	require.NotNil(t, line.ItemID)
	assert.Equal(t, item.ID, *line.ItemID)
	assert.Equal(t, "49.90", line.UnitPriceNet.StringFixed(2))
	require.NotNil(t, line.TaxRateID)
	assert.Equal(t, rate.ID, *line.TaxRateID)
	assert.Equal(t, "0.07", line.TaxRateValue.String())
	assert.True(t, line.IsDiscountable)
	assert.Equal(t, "Fachbuch", line.Description)

	// the snapshot is a copy; changing the item later leaves the line alone
	item.NetPrice = dec("59.90")
	rate.Rate = dec("0.19")
	assert.Equal(t, "49.90", line.UnitPriceNet.StringFixed(2))
	assert.Equal(t, "0.07", line.TaxRateValue.String())
}

func TestApplyItemSnapshot_KeepsDescription(t *testing.T) {
	rate := &model.TaxRate{ID: uuid.New(), Rate: dec("0.19")}
	item := &model.Item{ID: uuid.New(), Name: "Fachbuch", TaxRateID: rate.ID, TaxRate: rate}
	line := &model.SalesDocumentLine{Description: "Sonderausgabe"}
	ApplyItemSnapshot(line, item)
	assert.Equal(t, "Sonderausgabe", line.Description)
	require.NotNil(t, line.TaxRateID)
	assert.Equal(t, item.TaxRateID, *line.TaxRateID)
}

func TestApplyItemSnapshot_WithoutLoadedRateClearsTax(t *testing.T) {
	old := uuid.New()
	item := &model.Item{ID: uuid.New(), Name: "Fachbuch", NetPrice: dec("10"), TaxRateID: uuid.New()}
	line := &model.SalesDocumentLine{TaxRateID: &old, TaxRateValue: dec("0.07")}
	ApplyItemSnapshot(line, item)
	assert.Nil(t, line.TaxRateID)
	assert.True(t, line.TaxRateValue.IsZero())
	assert.Equal(t, "10", line.UnitPriceNet.String())
}

func TestCheckDiscount(t *testing.T) {
	assert.NoError(t, checkDiscount("discount", dec("0"), false))
	assert.NoError(t, checkDiscount("discount", dec("0.1"), true))
	err := checkDiscount("discount", dec("0.1"), false)
	var ve *model.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "discount", ve.Field)
}

func TestApplyItemSnapshot_NilItemIsNoop(t *testing.T) {
	line := &model.SalesDocumentLine{Description: "frei", UnitPriceNet: dec("10")}
	ApplyItemSnapshot(line, nil)
	assert.Nil(t, line.ItemID)
	assert.Equal(t, "10", line.UnitPriceNet.String())
}

func TestCopyContractLine(t *testing.T) {
	cost := "KST-100"
	src := model.ContractLine{
		ID: uuid.New(), PositionNo: 3, Description: "Hosting", Quantity: dec("2"),
		UnitPriceNet: dec("19.99"), TaxRateID: uuid.New(), IsDiscountable: true,
		Discount: dec("0.05"), CostType1: &cost,
	}
	rate := &model.TaxRate{ID: src.TaxRateID, Rate: dec("0.19")}

	line := CopyContractLine(src, rate)
	assert.Equal(t, 3, line.PositionNo)
	assert.Equal(t, "Hosting", line.Description)
	assert.Equal(t, "19.99", line.UnitPriceNet.StringFixed(2))
	assert.Equal(t, "0.19", line.TaxRateValue.String())
	assert.Equal(t, "0.05", line.Discount.String())
	assert.Equal(t, uuid.Nil, line.ID)
	assert.Nil(t, line.CostType2)

	// strings are copied, not shared with the template
	require.NotNil(t, line.CostType1)
	cost = "KST-200"
	assert.Equal(t, "KST-100", *line.CostType1)
}

func TestApplyItemToContractLine(t *testing.T) {
	item := &model.Item{Name: "Support", NetPrice: dec("120"), TaxRateID: uuid.New()}
	line := &model.ContractLine{}
	ApplyItemToContractLine(line, item)
	assert.Equal(t, "Support", line.Description)
	assert.Equal(t, item.TaxRateID, line.TaxRateID)
	assert.False(t, line.IsDiscountable)
}
