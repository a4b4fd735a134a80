package model

// Device is the device class a preview is rendered for
type Device string

const (
	DeviceDesktop Device = "desktop"
	DeviceMobile  Device = "mobile"
)

// PreviewContext is the storefront location a preview is rendered for
type PreviewContext string

const (
	ContextProduct  PreviewContext = "product"
	ContextCart     PreviewContext = "cart"
	ContextMiniCart PreviewContext = "miniCart"
)

// PreviewState drives the live preview. It is never persisted.
type PreviewState struct {
	CurrentCartValue int64          `json:"currentCartValue" validate:"gte=0"`
	Device           Device         `json:"device" validate:"required,oneof=desktop mobile"`
	Context          PreviewContext `json:"context" validate:"required,oneof=product cart miniCart"`
}

// DefaultPreviewState is what the dashboard shows before the merchant touches the controls
func DefaultPreviewState() PreviewState {
	return PreviewState{
		CurrentCartValue: 3250,
		Device:           DeviceDesktop,
		Context:          ContextProduct,
	}
}
