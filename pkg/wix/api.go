package wix

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"

	"shippingbar-service/internal/model"
)

// InstanceInfo is the subset of GET /apps/v1/instance the service reads
type InstanceInfo struct {
	InstanceID      string `json:"instanceId"`
	AppName         string `json:"appName"`
	SiteDisplayName string `json:"siteDisplayName"`
	SiteURL         string `json:"siteUrl"`
	Currency        string `json:"currency"`
}

// GetInstance looks up the instance an access token belongs to
func (c *Client) GetInstance(ctx context.Context, accessToken string) (*InstanceInfo, error) {
	body, err := c.CallAPI(ctx, "get_instance", http.MethodGet, "/apps/v1/instance", accessToken, nil)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Instance struct {
			InstanceID string `json:"instanceId"`
			AppName    string `json:"appName"`
		} `json:"instance"`
		Site struct {
			SiteDisplayName string `json:"siteDisplayName"`
			URL             string `json:"url"`
			Currency        string `json:"currency"`
		} `json:"site"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("get_instance: invalid response: %w", err)
	}

	return &InstanceInfo{
		InstanceID:      resp.Instance.InstanceID,
		AppName:         resp.Instance.AppName,
		SiteDisplayName: resp.Site.SiteDisplayName,
		SiteURL:         resp.Site.URL,
		Currency:        resp.Site.Currency,
	}, nil
}

type storeProduct struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Price struct {
		Price float64 `json:"price"`
	} `json:"price"`
	PriceData struct {
		Price float64 `json:"price"`
	} `json:"priceData"`
	Media struct {
		MainMedia struct {
			Image struct {
				URL string `json:"url"`
			} `json:"image"`
		} `json:"mainMedia"`
	} `json:"media"`
}

func (p storeProduct) toProduct() model.Product {
	price := p.PriceData.Price
	if price == 0 {
		price = p.Price.Price
	}
	return model.Product{
		ID:       p.ID,
		Name:     p.Name,
		Price:    int64(math.Round(price * 100)),
		ImageURL: p.Media.MainMedia.Image.URL,
	}
}

// QueryProducts searches the instance's Wix store by product name.
// Prices are converted to minor currency units.
func (c *Client) QueryProducts(ctx context.Context, creds Credentials, query string, limit int) ([]model.Product, error) {
	q := map[string]any{
		"paging": map[string]int{"limit": limit},
	}
	if query != "" {
		filter, err := json.Marshal(map[string]any{"name": map[string]string{"$startsWith": query}})
		if err != nil {
			return nil, err
		}
		q["filter"] = string(filter)
	}

	body, err := c.CallAPI(ctx, "query_products", http.MethodPost, "/stores/v1/products/query", creds.AccessToken,
		map[string]any{"query": q, "includeVariants": false})
	if err != nil {
		return nil, err
	}

	var resp struct {
		Products []storeProduct `json:"products"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("query_products: invalid response: %w", err)
	}

	products := make([]model.Product, 0, len(resp.Products))
	for _, p := range resp.Products {
		if p.ID == "" {
			continue
		}
		products = append(products, p.toProduct())
	}
	return products, nil
}

// dataItem is the wix-data shape of a settings snapshot. Groups are
// serialized as JSON strings since the collection stores them as text.
type dataItem struct {
	InstanceID              string `json:"instanceId"`
	Enabled                 bool   `json:"enabled"`
	Threshold               int64  `json:"threshold"`
	CurrencySymbol          string `json:"currencySymbol"`
	CurrencyCode            string `json:"currencyCode"`
	ProductSuggestionMethod string `json:"productSuggestionMethod"`
	BarStyle                string `json:"barStyle"`
	Position                string `json:"position"`
	TextAlignment           string `json:"textAlignment"`
	TextDirection           string `json:"textDirection"`
	Colors                  string `json:"colors"`
	Border                  string `json:"border"`
	Text                    string `json:"text"`
	Icon                    string `json:"icon"`
	Visibility              string `json:"visibility"`
	RecommendedProducts     string `json:"recommendedProducts"`
	Analytics               string `json:"analytics"`
}

func newDataItem(rec *model.SettingsRecord) (*dataItem, error) {
	item := &dataItem{
		InstanceID:              rec.InstanceID,
		Enabled:                 rec.Enabled,
		Threshold:               rec.Threshold,
		CurrencySymbol:          rec.CurrencySymbol,
		CurrencyCode:            rec.CurrencyCode,
		ProductSuggestionMethod: string(rec.ProductSuggestionMethod),
		BarStyle:                string(rec.BarStyle),
		Position:                string(rec.Position),
		TextAlignment:           string(rec.TextAlignment),
		TextDirection:           string(rec.TextDirection),
	}

	groups := []struct {
		dst *string
		v   any
	}{
		{&item.Colors, rec.Colors},
		{&item.Border, rec.Border},
		{&item.Text, rec.Text},
		{&item.Icon, rec.Icon},
		{&item.Visibility, rec.Visibility},
		{&item.RecommendedProducts, rec.RecommendedProducts},
		{&item.Analytics, rec.Analytics},
	}
	for _, g := range groups {
		b, err := json.Marshal(g.v)
		if err != nil {
			return nil, err
		}
		*g.dst = string(b)
	}
	return item, nil
}

// SyncSettings pushes a settings snapshot to the Wix Data collection,
// updating the instance's item when one exists and creating it otherwise.
func (c *Client) SyncSettings(ctx context.Context, creds Credentials, rec *model.SettingsRecord) error {
	if creds.AccessToken == "" {
		return ErrMissingCredentials
	}
	item, err := newDataItem(rec)
	if err != nil {
		return fmt.Errorf("sync_settings: %w", err)
	}

	itemID, err := c.findDataItem(ctx, creds)
	if err != nil {
		return err
	}

	if itemID == "" {
		_, err = c.CallAPI(ctx, "create_data_item", http.MethodPost, "/wix-data/v2/items", creds.AccessToken, map[string]any{
			"dataCollectionId": c.cfg.DataCollectionID,
			"dataItem":         map[string]any{"data": item},
		})
		return err
	}

	_, err = c.CallAPI(ctx, "update_data_item", http.MethodPut, "/wix-data/v2/items/"+url.PathEscape(itemID), creds.AccessToken, map[string]any{
		"dataCollectionId": c.cfg.DataCollectionID,
		"dataItem":         map[string]any{"id": itemID, "data": item},
	})
	return err
}

func (c *Client) findDataItem(ctx context.Context, creds Credentials) (string, error) {
	body, err := c.CallAPI(ctx, "query_data_items", http.MethodPost, "/wix-data/v2/items/query", creds.AccessToken, map[string]any{
		"dataCollectionId": c.cfg.DataCollectionID,
		"query": map[string]any{
			"filter": map[string]any{"instanceId": map[string]string{"$eq": creds.InstanceID}},
		},
	})
	if err != nil {
		return "", err
	}

	var resp struct {
		DataItems []struct {
			ID string `json:"id"`
		} `json:"dataItems"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("query_data_items: invalid response: %w", err)
	}
	if len(resp.DataItems) == 0 {
		return "", nil
	}
	return resp.DataItems[0].ID, nil
}

// EmbedScript installs the storefront script that renders the bar
func (c *Client) EmbedScript(ctx context.Context, creds Credentials) error {
	_, err := c.CallAPI(ctx, "embed_script", http.MethodPost, "/apps/v1/scripts", creds.AccessToken, map[string]any{
		"properties": map[string]any{
			"parameters": map[string]string{"instanceId": creds.InstanceID},
		},
	})
	return err
}
