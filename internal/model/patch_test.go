package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }
func intPtr(i int) *int       { return &i }

func TestApplyTo_ColorsAreMergedNotReplaced(t *testing.T) {
	rec := DefaultSettings("t-1")
	rec.Colors.BackgroundColor = "#AAA"
	rec.Colors.Bar = "#BBB"

	patch := &SettingsPatch{InstanceID: "t-1", Colors: &ColorsPatch{Bar: strPtr("#CCC")}}
	patch.ApplyTo(rec)

	assert.Equal(t, "#AAA", rec.Colors.BackgroundColor)
	assert.Equal(t, "#CCC", rec.Colors.Bar)
	assert.Equal(t, "#E5E7EB", rec.Colors.ProgressBg)
}

func TestApplyTo_EveryGroupIsAdditive(t *testing.T) {
	rec := DefaultSettings("t-1")
	before := rec.Clone()

	patch := &SettingsPatch{
		InstanceID:        "t-1",
		Border:            &BorderPatch{Thickness: intPtr(3)},
		ProgressBarBorder: &BorderPatch{Color: strPtr("#123456")},
		Text:              &TextPatch{SuccessText: strPtr("Done!")},
		Icon:              &IconPatch{Selection: strPtr("📦")},
		Visibility: &VisibilityPatch{
			Header: &DeviceVisibilityPatch{Mobile: boolPtr(true)},
		},
	}
	patch.ApplyTo(rec)

	assert.Equal(t, 3, rec.Border.Thickness)
	assert.Equal(t, before.Border.Color, rec.Border.Color)

	assert.Equal(t, "#123456", rec.ProgressBarBorder.Color)
	assert.Equal(t, before.ProgressBarBorder.Thickness, rec.ProgressBarBorder.Thickness)

	assert.Equal(t, "Done!", rec.Text.SuccessText)
	assert.Equal(t, before.Text.BarText, rec.Text.BarText)
	assert.Equal(t, before.Text.ShowInitialText, rec.Text.ShowInitialText)

	assert.Equal(t, "📦", rec.Icon.Selection)
	assert.Equal(t, before.Icon.Type, rec.Icon.Type)
	assert.Equal(t, before.Icon.Position, rec.Icon.Position)

	assert.True(t, rec.Visibility.Header.Mobile)
	assert.False(t, rec.Visibility.Header.Desktop)
	assert.Equal(t, before.Visibility.ProductPage, rec.Visibility.ProductPage)
	assert.Equal(t, before.Visibility.CartPage, rec.Visibility.CartPage)
	assert.Equal(t, before.Visibility.MiniCart, rec.Visibility.MiniCart)
}

func TestApplyTo_ScalarsReplaceAndAbsentFieldsStay(t *testing.T) {
	rec := DefaultSettings("t-1")
	threshold := int64(8000)
	style := BarStyleGradient

	patch := &SettingsPatch{InstanceID: "t-1", Threshold: &threshold, BarStyle: &style, Enabled: boolPtr(true)}
	patch.ApplyTo(rec)

	assert.Equal(t, int64(8000), rec.Threshold)
	assert.Equal(t, BarStyleGradient, rec.BarStyle)
	assert.True(t, rec.Enabled)
	assert.Equal(t, "$", rec.CurrencySymbol)
	assert.Equal(t, PositionTop, rec.Position)
}

func TestApplyTo_RecommendedProductsReplaceWholeList(t *testing.T) {
	rec := DefaultSettings("t-1")
	rec.RecommendedProducts = []Product{{ID: "p1", Name: "P1"}, {ID: "p2", Name: "P2"}}

	list := []Product{{ID: "p3", Name: "P3"}}
	patch := &SettingsPatch{InstanceID: "t-1", RecommendedProducts: &list}
	patch.ApplyTo(rec)

	require.Len(t, rec.RecommendedProducts, 1)
	assert.Equal(t, "p3", rec.RecommendedProducts[0].ID)

	// the record must not alias the caller's slice
	list[0].Name = "changed"
	assert.Equal(t, "P3", rec.RecommendedProducts[0].Name)
}

func TestApplyTo_EmptyProductListClears(t *testing.T) {
	rec := DefaultSettings("t-1")
	empty := []Product{}
	(&SettingsPatch{InstanceID: "t-1", RecommendedProducts: &empty}).ApplyTo(rec)

	assert.NotNil(t, rec.RecommendedProducts)
	assert.Empty(t, rec.RecommendedProducts)
}

func TestApplyTo_CredentialsPatchOnlyTouchesTokens(t *testing.T) {
	rec := DefaultSettings("t-1")
	before := rec.Clone()

	CredentialsPatch("t-1", "access", "refresh").ApplyTo(rec)

	assert.Equal(t, "access", rec.AccessToken)
	assert.Equal(t, "refresh", rec.RefreshToken)
	rec.AccessToken, rec.RefreshToken = "", ""
	assert.Equal(t, before, rec)
}

func TestCredentialsPatch_KeepsRefreshTokenWhenEmpty(t *testing.T) {
	rec := DefaultSettings("t-1")
	rec.RefreshToken = "old-refresh"

	CredentialsPatch("t-1", "new-access", "").ApplyTo(rec)

	assert.Equal(t, "new-access", rec.AccessToken)
	assert.Equal(t, "old-refresh", rec.RefreshToken)
}

func TestClone_IsDeep(t *testing.T) {
	rec := DefaultSettings("t-1")
	cp := rec.Clone()
	cp.RecommendedProducts[0].Name = "mutated"

	assert.NotEqual(t, "mutated", rec.RecommendedProducts[0].Name)
}

func TestDefaultSettings_FullyPopulated(t *testing.T) {
	rec := DefaultSettings("t-42")

	assert.Equal(t, "t-42", rec.InstanceID)
	assert.False(t, rec.Enabled)
	assert.Equal(t, int64(5000), rec.Threshold)
	assert.NotEmpty(t, rec.RecommendedProducts)
	assert.NotEmpty(t, rec.Colors.BackgroundColor)
	assert.NotEmpty(t, rec.Text.BarText)
	assert.False(t, rec.HasCredentials())

	seen := map[string]bool{}
	for _, p := range rec.RecommendedProducts {
		assert.False(t, seen[p.ID], "duplicate product id %s", p.ID)
		seen[p.ID] = true
	}
}
