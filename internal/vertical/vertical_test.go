package vertical

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInfer_StructuredCategoryHighConfidence(t *testing.T) {
	d := Infer(SourceJSONLD, "Laptops & Notebooks", "/p/acer-nitro", "Acer Nitro 16", nil, "tech")
	assert.Equal(t, Tech, d.Vertical)
	assert.Equal(t, SourceJSONLD, d.Source)
	assert.Equal(t, 0.96, d.Confidence)
}

func TestInfer_NonStructuredCategoryLowerConfidence(t *testing.T) {
	d := Infer(SourceAdapterDefault, "dishwasher parts", "/p/1", "Some Dishwasher", nil, "tech")
	assert.Equal(t, HomeAppliances, d.Vertical)
	assert.Equal(t, 0.86, d.Confidence)
}

func TestInfer_FallsBackToURLPath(t *testing.T) {
	d := Infer(SourceAdapterDefault, "", "/shop/dog-food/premium", "Premium Blend", nil, "tech")
	assert.Equal(t, PetGoods, d.Vertical)
	assert.Equal(t, SourceURLPath, d.Source)
}

func TestInfer_FallsBackToTitleAttributes(t *testing.T) {
	d := Infer(SourceAdapterDefault, "", "", "Hydrating Face Serum", []string{"skincare", "50ml"}, "tech")
	assert.Equal(t, Beauty, d.Vertical)
	assert.Equal(t, SourceTitleAttributes, d.Source)
}

func TestInfer_FallsBackToAdapterDefault(t *testing.T) {
	d := Infer(SourceAdapterDefault, "", "", "Widget", nil, "tech")
	assert.Equal(t, Tech, d.Vertical)
	assert.Equal(t, SourceAdapterDefault, d.Source)
	assert.Equal(t, 0.55, d.Confidence)
}

func TestInfer_DogShampooIsPetGoodsNotBeauty(t *testing.T) {
	d := Infer(SourceAdapterDefault, "", "", "Premium Dog Shampoo Oatmeal Formula", nil, "tech")
	assert.Equal(t, PetGoods, d.Vertical)
}

func TestInfer_CatLitterIsPetGoods(t *testing.T) {
	d := Infer(SourceAdapterDefault, "", "", "Clumping Cat Litter 10L", nil, "tech")
	assert.Equal(t, PetGoods, d.Vertical)
}

func TestInfer_TieBreakPriorityHomeAppliancesOverBeauty(t *testing.T) {
	// One home-appliances token ("toaster") and one beauty token ("moisturizer"): an actual tie.
	d := Infer(SourceAdapterDefault, "", "", "moisturizer toaster", nil, "tech")
	assert.Equal(t, HomeAppliances, d.Vertical)
}
