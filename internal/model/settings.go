package model

import (
	"time"
)

// BarStyle selects how the progress bar fill is painted
type BarStyle string

const (
	BarStyleSimple   BarStyle = "simple"
	BarStyleGradient BarStyle = "gradient"
)

// SuggestionMethod controls where recommended products come from
type SuggestionMethod string

const (
	SuggestionManual      SuggestionMethod = "manual"
	SuggestionAutomatic   SuggestionMethod = "automatic"
	SuggestionBestselling SuggestionMethod = "bestselling"
	SuggestionRelated     SuggestionMethod = "related"
)

// TextAlignment is the horizontal alignment of the bar message
type TextAlignment string

const (
	AlignLeft   TextAlignment = "left"
	AlignCenter TextAlignment = "center"
	AlignRight  TextAlignment = "right"
)

// Direction is a writing or fill direction
type Direction string

const (
	DirectionLTR Direction = "ltr"
	DirectionRTL Direction = "rtl"
)

// TextPosition places the message relative to the bar
type TextPosition string

const (
	TextAbove TextPosition = "above"
	TextBelow TextPosition = "below"
)

// Position places the widget on the page
type Position string

const (
	PositionTop    Position = "top"
	PositionBottom Position = "bottom"
)

// IconType is the kind of icon shown next to the message
type IconType string

const (
	IconEmoji  IconType = "emoji"
	IconLucide IconType = "lucide"
	IconNone   IconType = "none"
)

// IconPosition places the icon before or after the message
type IconPosition string

const (
	IconBefore IconPosition = "before"
	IconAfter  IconPosition = "after"
)

// Colors holds the visual theme colors of the bar
type Colors struct {
	BackgroundColor string `json:"backgroundColor"`
	Bar             string `json:"bar"`
	ProgressBg      string `json:"progressBg"`
	Text            string `json:"text"`
	Accent          string `json:"accent"`
	Highlight       string `json:"highlight"`
	GradientEnd     string `json:"gradientEnd"`
}

// Border describes a colored border of a given thickness in pixels
type Border struct {
	Color     string `json:"color"`
	Thickness int    `json:"thickness"`
}

// Text holds the textual content of the bar.
// BarText may contain the ${remaining} placeholder.
type Text struct {
	BarText         string `json:"barText"`
	SuccessText     string `json:"successText"`
	ButtonText      string `json:"buttonText"`
	InitialText     string `json:"initialText"`
	ShowInitialText bool   `json:"showInitialText"`
}

// Icon configures the icon rendered next to the message
type Icon struct {
	Type      IconType     `json:"type"`
	Selection string       `json:"selection"`
	Position  IconPosition `json:"position"`
}

// DeviceVisibility toggles the bar per device class
type DeviceVisibility struct {
	Desktop bool `json:"desktop"`
	Mobile  bool `json:"mobile"`
}

// Visibility toggles the bar per page type and device class
type Visibility struct {
	ProductPage DeviceVisibility `json:"productPage"`
	CartPage    DeviceVisibility `json:"cartPage"`
	MiniCart    DeviceVisibility `json:"miniCart"`
	Header      DeviceVisibility `json:"header"`
}

// Analytics is a read-only snapshot shown on the dashboard
type Analytics struct {
	ViewCount      int64  `json:"viewCount"`
	ConversionRate string `json:"conversionRate"`
	AOV            string `json:"aov"`
}

// Product is a recommended product. Price is in minor currency units.
type Product struct {
	ID       string `json:"id" validate:"required,max=128"`
	Name     string `json:"name" validate:"required,max=255,no_xss"`
	Price    int64  `json:"price" validate:"gte=0"`
	ImageURL string `json:"imageUrl" validate:"max=2048"`
}

// SettingsRecord is the full configuration document of one Wix instance
type SettingsRecord struct {
	InstanceID string `json:"instanceId"`

	// Never expose the platform credentials in JSON responses
	AccessToken  string `json:"-"`
	RefreshToken string `json:"-"`

	Enabled                 bool             `json:"enabled"`
	Threshold               int64            `json:"threshold"`
	CurrencySymbol          string           `json:"currencySymbol"`
	CurrencyCode            string           `json:"currencyCode"`
	ProductSuggestionMethod SuggestionMethod `json:"productSuggestionMethod"`

	BarStyle          BarStyle `json:"barStyle"`
	Colors            Colors   `json:"colors"`
	Border            Border   `json:"border"`
	ProgressBarBorder Border   `json:"progressBarBorder"`

	Text              Text          `json:"text"`
	TextAlignment     TextAlignment `json:"textAlignment"`
	TextDirection     Direction     `json:"textDirection"`
	TextPosition      TextPosition  `json:"textPosition"`
	ProgressDirection Direction     `json:"progressDirection"`
	Icon              Icon          `json:"icon"`

	Visibility Visibility `json:"visibility"`
	Position   Position   `json:"position"`

	RecommendedProducts []Product `json:"recommendedProducts"`
	Analytics           Analytics `json:"analytics"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// HasCredentials reports whether the record carries an access token
func (s *SettingsRecord) HasCredentials() bool {
	return s.AccessToken != ""
}

// Clone returns a deep copy so callers never share the product list
func (s *SettingsRecord) Clone() *SettingsRecord {
	if s == nil {
		return nil
	}
	out := *s
	out.RecommendedProducts = cloneProducts(s.RecommendedProducts)
	return &out
}

func cloneProducts(in []Product) []Product {
	if in == nil {
		return nil
	}
	out := make([]Product, len(in))
	copy(out, in)
	return out
}
