// Package preview computes what the shipping bar shows for a cart value,
// device and storefront location.
package preview

import (
	"errors"
	"fmt"
	"math/bits"
	"strings"

	"shippingbar-service/internal/model"
	"shippingbar-service/internal/validation"
)

// RemainingPlaceholder is substituted in the bar text
const RemainingPlaceholder = "${remaining}"

// ErrInvalidState is returned for a PreviewState that fails validation
var ErrInvalidState = errors.New("invalid preview state")

// StateError carries per-field messages for an invalid PreviewState
type StateError struct {
	Fields map[string]string
}

func (e *StateError) Error() string {
	return fmt.Sprintf("invalid preview state: %v", e.Fields)
}

func (e *StateError) Unwrap() error { return ErrInvalidState }

// Mode is the message the bar is in
type Mode string

const (
	ModeDisabled Mode = "disabled"
	ModeInitial  Mode = "initial"
	ModeProgress Mode = "progress"
	ModeSuccess  Mode = "success"
)

const disabledMessage = "Free Shipping Bar is currently disabled"

// IconView is the icon next to the message, absent when type is none
type IconView struct {
	Type      model.IconType     `json:"type"`
	Selection string             `json:"selection"`
	Position  model.IconPosition `json:"position"`
}

// ProductView is a recommended product with its display price
type ProductView struct {
	model.Product
	PriceFormatted string `json:"priceFormatted"`
}

// View is the rendered state of the bar
type View struct {
	Visible            bool               `json:"visible"`
	VisibleOnContext   bool               `json:"visibleOnContext"`
	Mode               Mode               `json:"mode"`
	ProgressPercent    int                `json:"progressPercent"`
	Remaining          int64              `json:"remaining"`
	RemainingFormatted string             `json:"remainingFormatted"`
	Message            string             `json:"message"`
	ShowProgressBar    bool               `json:"showProgressBar"`
	TextPosition       model.TextPosition `json:"textPosition"`
	ProgressDirection  model.Direction    `json:"progressDirection"`
	Icon               *IconView          `json:"icon,omitempty"`
	ButtonText         string             `json:"buttonText,omitempty"`
	Products           []ProductView      `json:"products"`
}

var validate = validation.New()

// Render computes the preview of rec for state
func Render(rec *model.SettingsRecord, state model.PreviewState) (*View, error) {
	if err := validate.Struct(state); err != nil {
		return nil, &StateError{Fields: validation.FieldErrors(err)}
	}

	cart := state.CurrentCartValue
	remaining := max(rec.Threshold-cart, 0)

	view := &View{
		VisibleOnContext:   visibleOn(rec.Visibility, state),
		ProgressPercent:    progressPercent(cart, rec.Threshold),
		Remaining:          remaining,
		RemainingFormatted: FormatMoney(rec.CurrencySymbol, remaining),
		TextPosition:       rec.TextPosition,
		ProgressDirection:  rec.ProgressDirection,
		Products:           []ProductView{},
	}

	if !rec.Enabled {
		view.Mode = ModeDisabled
		view.Message = disabledMessage
		return view, nil
	}
	view.Visible = view.VisibleOnContext

	if rec.Icon.Type != model.IconNone && rec.Icon.Type != "" && rec.Icon.Selection != "" {
		view.Icon = &IconView{Type: rec.Icon.Type, Selection: rec.Icon.Selection, Position: rec.Icon.Position}
	}

	switch {
	case cart >= rec.Threshold:
		view.Mode = ModeSuccess
		view.Message = rec.Text.SuccessText
	case cart == 0 && rec.Text.ShowInitialText:
		view.Mode = ModeInitial
		view.Message = rec.Text.InitialText
	default:
		view.Mode = ModeProgress
		view.Message = strings.Replace(rec.Text.BarText, RemainingPlaceholder, view.RemainingFormatted, 1)
	}

	if view.Mode != ModeSuccess {
		view.ShowProgressBar = true
		view.ButtonText = rec.Text.ButtonText
		for _, p := range rec.RecommendedProducts {
			view.Products = append(view.Products, ProductView{
				Product:        p,
				PriceFormatted: FormatMoney(rec.CurrencySymbol, p.Price),
			})
		}
	}
	return view, nil
}

// progressPercent is floor(cart/threshold*100) capped at 100.
// A zero threshold is always complete.
func progressPercent(cart, threshold int64) int {
	if threshold <= 0 || cart >= threshold {
		return 100
	}
	if cart <= 0 {
		return 0
	}
	// 128-bit product; cart*100 overflows int64 for large carts
	hi, lo := bits.Mul64(uint64(cart), 100)
	q, _ := bits.Div64(hi, lo, uint64(threshold))
	return int(q)
}

func visibleOn(v model.Visibility, state model.PreviewState) bool {
	var dv model.DeviceVisibility
	switch state.Context {
	case model.ContextProduct:
		dv = v.ProductPage
	case model.ContextCart:
		dv = v.CartPage
	case model.ContextMiniCart:
		dv = v.MiniCart
	}
	if state.Device == model.DeviceMobile {
		return dv.Mobile
	}
	return dv.Desktop
}

// FormatMoney renders minor units as symbol plus two decimals, "$" by default
func FormatMoney(symbol string, cents int64) string {
	if symbol == "" {
		symbol = "$"
	}
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%s%d.%02d", sign, symbol, cents/100, cents%100)
}
