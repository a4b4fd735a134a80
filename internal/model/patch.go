package model

// SettingsPatch is a partial update of a SettingsRecord.
//
// A nil field means "not mentioned". Nested groups are merged field by field,
// scalars replace, and RecommendedProducts replaces the whole list.
type SettingsPatch struct {
	InstanceID string `json:"instanceId" validate:"required,max=256"`

	// Set by the OAuth flow only; never decoded from a request body
	AccessToken  *string `json:"-" validate:"-"`
	RefreshToken *string `json:"-" validate:"-"`

	Enabled                 *bool             `json:"enabled"`
	Threshold               *int64            `json:"threshold" validate:"omitnil,gte=0"`
	CurrencySymbol          *string           `json:"currencySymbol" validate:"omitnil,min=1,max=8"`
	CurrencyCode            *string           `json:"currencyCode" validate:"omitnil,min=1,max=8"`
	ProductSuggestionMethod *SuggestionMethod `json:"productSuggestionMethod" validate:"omitnil,oneof=manual automatic bestselling related"`

	BarStyle          *BarStyle    `json:"barStyle" validate:"omitnil,oneof=simple gradient"`
	Colors            *ColorsPatch `json:"colors"`
	Border            *BorderPatch `json:"border"`
	ProgressBarBorder *BorderPatch `json:"progressBarBorder"`

	Text              *TextPatch     `json:"text"`
	TextAlignment     *TextAlignment `json:"textAlignment" validate:"omitnil,oneof=left center right"`
	TextDirection     *Direction     `json:"textDirection" validate:"omitnil,oneof=ltr rtl"`
	TextPosition      *TextPosition  `json:"textPosition" validate:"omitnil,oneof=above below"`
	ProgressDirection *Direction     `json:"progressDirection" validate:"omitnil,oneof=ltr rtl"`
	Icon              *IconPatch     `json:"icon"`

	Visibility *VisibilityPatch `json:"visibility"`
	Position   *Position        `json:"position" validate:"omitnil,oneof=top bottom"`

	RecommendedProducts *[]Product `json:"recommendedProducts" validate:"omitnil,max=50,unique=ID,dive"`
}

// ColorsPatch is a partial Colors group
type ColorsPatch struct {
	BackgroundColor *string `json:"backgroundColor" validate:"omitnil,max=64"`
	Bar             *string `json:"bar" validate:"omitnil,max=64"`
	ProgressBg      *string `json:"progressBg" validate:"omitnil,max=64"`
	Text            *string `json:"text" validate:"omitnil,max=64"`
	Accent          *string `json:"accent" validate:"omitnil,max=64"`
	Highlight       *string `json:"highlight" validate:"omitnil,max=64"`
	GradientEnd     *string `json:"gradientEnd" validate:"omitnil,max=64"`
}

// BorderPatch is a partial Border group
type BorderPatch struct {
	Color     *string `json:"color" validate:"omitnil,max=64"`
	Thickness *int    `json:"thickness" validate:"omitnil,gte=0,lte=20"`
}

// TextPatch is a partial Text group
type TextPatch struct {
	BarText         *string `json:"barText" validate:"omitnil,max=500,no_xss"`
	SuccessText     *string `json:"successText" validate:"omitnil,max=500,no_xss"`
	ButtonText      *string `json:"buttonText" validate:"omitnil,max=100,no_xss"`
	InitialText     *string `json:"initialText" validate:"omitnil,max=500,no_xss"`
	ShowInitialText *bool   `json:"showInitialText"`
}

// IconPatch is a partial Icon group
type IconPatch struct {
	Type      *IconType     `json:"type" validate:"omitnil,oneof=emoji lucide none"`
	Selection *string       `json:"selection" validate:"omitnil,max=64"`
	Position  *IconPosition `json:"position" validate:"omitnil,oneof=before after"`
}

// DeviceVisibilityPatch is a partial DeviceVisibility
type DeviceVisibilityPatch struct {
	Desktop *bool `json:"desktop"`
	Mobile  *bool `json:"mobile"`
}

// VisibilityPatch is a partial Visibility group
type VisibilityPatch struct {
	ProductPage *DeviceVisibilityPatch `json:"productPage"`
	CartPage    *DeviceVisibilityPatch `json:"cartPage"`
	MiniCart    *DeviceVisibilityPatch `json:"miniCart"`
	Header      *DeviceVisibilityPatch `json:"header"`
}

// CredentialsPatch builds a patch that only stores platform tokens
func CredentialsPatch(instanceID, accessToken, refreshToken string) *SettingsPatch {
	p := &SettingsPatch{InstanceID: instanceID, AccessToken: &accessToken}
	if refreshToken != "" {
		p.RefreshToken = &refreshToken
	}
	return p
}

// ApplyTo merges the patch onto rec in place. InstanceID and timestamps are
// never touched here.
func (p *SettingsPatch) ApplyTo(rec *SettingsRecord) {
	if p == nil || rec == nil {
		return
	}

	setString(&rec.AccessToken, p.AccessToken)
	setString(&rec.RefreshToken, p.RefreshToken)

	setBool(&rec.Enabled, p.Enabled)
	if p.Threshold != nil {
		rec.Threshold = *p.Threshold
	}
	setString(&rec.CurrencySymbol, p.CurrencySymbol)
	setString(&rec.CurrencyCode, p.CurrencyCode)
	if p.ProductSuggestionMethod != nil {
		rec.ProductSuggestionMethod = *p.ProductSuggestionMethod
	}

	if p.BarStyle != nil {
		rec.BarStyle = *p.BarStyle
	}
	mergeColors(&rec.Colors, p.Colors)
	mergeBorder(&rec.Border, p.Border)
	mergeBorder(&rec.ProgressBarBorder, p.ProgressBarBorder)

	mergeText(&rec.Text, p.Text)
	if p.TextAlignment != nil {
		rec.TextAlignment = *p.TextAlignment
	}
	if p.TextDirection != nil {
		rec.TextDirection = *p.TextDirection
	}
	if p.TextPosition != nil {
		rec.TextPosition = *p.TextPosition
	}
	if p.ProgressDirection != nil {
		rec.ProgressDirection = *p.ProgressDirection
	}
	mergeIcon(&rec.Icon, p.Icon)

	mergeVisibility(&rec.Visibility, p.Visibility)
	if p.Position != nil {
		rec.Position = *p.Position
	}

	// whole-list replace, curation is done client side
	if p.RecommendedProducts != nil {
		rec.RecommendedProducts = cloneProducts(*p.RecommendedProducts)
		if rec.RecommendedProducts == nil {
			rec.RecommendedProducts = []Product{}
		}
	}
}

func mergeColors(dst *Colors, p *ColorsPatch) {
	if p == nil {
		return
	}
	setString(&dst.BackgroundColor, p.BackgroundColor)
	setString(&dst.Bar, p.Bar)
	setString(&dst.ProgressBg, p.ProgressBg)
	setString(&dst.Text, p.Text)
	setString(&dst.Accent, p.Accent)
	setString(&dst.Highlight, p.Highlight)
	setString(&dst.GradientEnd, p.GradientEnd)
}

func mergeBorder(dst *Border, p *BorderPatch) {
	if p == nil {
		return
	}
	setString(&dst.Color, p.Color)
	if p.Thickness != nil {
		dst.Thickness = *p.Thickness
	}
}

func mergeText(dst *Text, p *TextPatch) {
	if p == nil {
		return
	}
	setString(&dst.BarText, p.BarText)
	setString(&dst.SuccessText, p.SuccessText)
	setString(&dst.ButtonText, p.ButtonText)
	setString(&dst.InitialText, p.InitialText)
	setBool(&dst.ShowInitialText, p.ShowInitialText)
}

func mergeIcon(dst *Icon, p *IconPatch) {
	if p == nil {
		return
	}
	if p.Type != nil {
		dst.Type = *p.Type
	}
	setString(&dst.Selection, p.Selection)
	if p.Position != nil {
		dst.Position = *p.Position
	}
}

func mergeVisibility(dst *Visibility, p *VisibilityPatch) {
	if p == nil {
		return
	}
	mergeDevice(&dst.ProductPage, p.ProductPage)
	mergeDevice(&dst.CartPage, p.CartPage)
	mergeDevice(&dst.MiniCart, p.MiniCart)
	mergeDevice(&dst.Header, p.Header)
}

func mergeDevice(dst *DeviceVisibility, p *DeviceVisibilityPatch) {
	if p == nil {
		return
	}
	setBool(&dst.Desktop, p.Desktop)
	setBool(&dst.Mobile, p.Mobile)
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}
