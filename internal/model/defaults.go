package model

// DefaultThreshold is $50.00 in cents
const DefaultThreshold int64 = 5000

// DefaultSettings returns a fully populated record for an unseen instance.
// Timestamps are left zero; the store assigns them.
func DefaultSettings(instanceID string) *SettingsRecord {
	return &SettingsRecord{
		InstanceID:              instanceID,
		Enabled:                 false,
		Threshold:               DefaultThreshold,
		CurrencySymbol:          "$",
		CurrencyCode:            "USD",
		ProductSuggestionMethod: SuggestionManual,
		BarStyle:                BarStyleSimple,
		Colors: Colors{
			BackgroundColor: "#FFFFFF",
			Bar:             "#0070F3",
			ProgressBg:      "#E5E7EB",
			Text:            "#111827",
			Accent:          "#10B981",
			Highlight:       "#F59E0B",
			GradientEnd:     "#10B981",
		},
		Border: Border{
			Color:     "#E5E7EB",
			Thickness: 1,
		},
		ProgressBarBorder: Border{
			Color:     "#0070F3",
			Thickness: 1,
		},
		Text: Text{
			BarText:         "Add ${remaining} more to get FREE shipping!",
			SuccessText:     "Congratulations! You've qualified for FREE shipping!",
			ButtonText:      "Add to Cart",
			InitialText:     "Start shopping to get FREE shipping!",
			ShowInitialText: true,
		},
		TextAlignment:     AlignLeft,
		TextDirection:     DirectionLTR,
		TextPosition:      TextAbove,
		ProgressDirection: DirectionLTR,
		Icon: Icon{
			Type:      IconEmoji,
			Selection: "🚚",
			Position:  IconBefore,
		},
		Visibility: Visibility{
			ProductPage: DeviceVisibility{Desktop: true, Mobile: true},
			CartPage:    DeviceVisibility{Desktop: true, Mobile: true},
			MiniCart:    DeviceVisibility{Desktop: true, Mobile: true},
			Header:      DeviceVisibility{Desktop: false, Mobile: false},
		},
		Position:            PositionTop,
		RecommendedProducts: DefaultRecommendedProducts(),
		Analytics: Analytics{
			ViewCount:      0,
			ConversionRate: "0%",
			AOV:            "$0.00",
		},
	}
}

// DefaultRecommendedProducts is the starter list shown before the merchant curates one
func DefaultRecommendedProducts() []Product {
	return []Product{
		{
			ID:       "1",
			Name:     "Premium T-Shirt",
			Price:    2999,
			ImageURL: "https://images.unsplash.com/photo-1581655353564-df123a1eb820?w=100&h=100&fit=crop&auto=format",
		},
		{
			ID:       "2",
			Name:     "Travel Mug",
			Price:    1899,
			ImageURL: "https://images.unsplash.com/photo-1514228742587-6b1558fcca3d?w=100&h=100&fit=crop&auto=format",
		},
		{
			ID:       "3",
			Name:     "Leather Wallet",
			Price:    3499,
			ImageURL: "https://images.unsplash.com/photo-1604026053328-7fca346fcb26?w=100&h=100&fit=crop&auto=format",
		},
	}
}
