// Package catalog serves product search for the recommendation picker.
package catalog

import (
	"context"
	"strings"
	"time"

	"shippingbar-service/internal/model"
	"shippingbar-service/pkg/wix"
	"shippingbar-service/prometheus"

	"github.com/dgraph-io/ristretto/v2"
	"go.uber.org/zap"
)

// Source tells the client where a product list came from
type Source string

const (
	SourceSample Source = "sample"
	SourceWix    Source = "wix"
)

// Result is a product search answer
type Result struct {
	Products []model.Product `json:"products"`
	Source   Source          `json:"source"`
}

// ProductQuerier searches a tenant's Wix store
type ProductQuerier interface {
	QueryProducts(ctx context.Context, creds wix.Credentials, query string, limit int) ([]model.Product, error)
}

// SettingsSource resolves the tenant record and runs credentialed calls
type SettingsSource interface {
	ResolveSettings(ctx context.Context, instanceID string) (*model.SettingsRecord, error)
	WithCredentials(ctx context.Context, rec *model.SettingsRecord, call func(wix.Credentials) error) error
}

// Options configures a Catalog
type Options struct {
	Querier  ProductQuerier
	Settings SettingsSource
	TTL      time.Duration
	MaxCost  int64 // counted in products
	Limit    int
	Logger   *zap.Logger
}

// Catalog searches the tenant's Wix store and degrades to the sample catalog
type Catalog struct {
	querier  ProductQuerier
	settings SettingsSource
	cache    *ristretto.Cache[string, []model.Product]
	ttl      time.Duration
	limit    int
	log      *zap.Logger
}

// New creates a catalog with its TTL cache
func New(opts Options) (*Catalog, error) {
	if opts.MaxCost <= 0 {
		opts.MaxCost = 10000
	}
	if opts.Limit <= 0 {
		opts.Limit = 50
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	cache, err := ristretto.NewCache(&ristretto.Config[string, []model.Product]{
		NumCounters: opts.MaxCost * 10,
		MaxCost:     opts.MaxCost,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}

	return &Catalog{
		querier:  opts.Querier,
		settings: opts.Settings,
		cache:    cache,
		ttl:      opts.TTL,
		limit:    opts.Limit,
		log:      opts.Logger,
	}, nil
}

// Close releases the cache
func (c *Catalog) Close() {
	c.cache.Close()
}

func cacheKey(instanceID, query string) string {
	return instanceID + "\x00" + strings.ToLower(strings.TrimSpace(query))
}

// Search queries the instance's Wix store. Any gateway failure, or an instance
// without credentials, falls back to the sample catalog; only a failure to
// load the settings record itself is returned.
func (c *Catalog) Search(ctx context.Context, instanceID, query string) (Result, error) {
	key := cacheKey(instanceID, query)
	if products, ok := c.cache.Get(key); ok {
		return Result{Products: cloneProducts(products), Source: SourceWix}, nil
	}

	if c.querier == nil || c.settings == nil {
		return c.fallback(query), nil
	}

	rec, err := c.settings.ResolveSettings(ctx, instanceID)
	if err != nil {
		return Result{}, err
	}
	if !rec.HasCredentials() {
		return c.fallback(query), nil
	}

	var products []model.Product
	err = c.settings.WithCredentials(ctx, rec, func(creds wix.Credentials) error {
		var qerr error
		products, qerr = c.querier.QueryProducts(ctx, creds, query, c.limit)
		return qerr
	})
	if err != nil {
		prometheus.RecordBestEffortFailure("query_products")
		c.log.Warn("Wix product query failed, serving sample catalog",
			zap.String("instance_id", instanceID),
			zap.String("operation", "query_products"),
			zap.Error(err))
		return c.fallback(query), nil
	}

	if c.ttl > 0 {
		cost := int64(len(products))
		if cost == 0 {
			cost = 1
		}
		c.cache.SetWithTTL(key, cloneProducts(products), cost, c.ttl)
	}
	return Result{Products: products, Source: SourceWix}, nil
}

func (c *Catalog) fallback(query string) Result {
	return Result{Products: SampleProducts(query), Source: SourceSample}
}

func cloneProducts(in []model.Product) []model.Product {
	out := make([]model.Product, len(in))
	copy(out, in)
	return out
}
