package catalog

import (
	"context"
	"errors"
	"testing"
	"time"

	"shippingbar-service/internal/model"
	"shippingbar-service/pkg/wix"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeQuerier struct {
	products []model.Product
	err      error
	calls    int
	lastCred wix.Credentials
	lastLim  int
}

func (f *fakeQuerier) QueryProducts(_ context.Context, creds wix.Credentials, _ string, limit int) ([]model.Product, error) {
	f.calls++
	f.lastCred = creds
	f.lastLim = limit
	return f.products, f.err
}

type fakeSettings struct {
	rec        *model.SettingsRecord
	resolveErr error
}

func (f *fakeSettings) ResolveSettings(context.Context, string) (*model.SettingsRecord, error) {
	if f.resolveErr != nil {
		return nil, f.resolveErr
	}
	return f.rec.Clone(), nil
}

func (f *fakeSettings) WithCredentials(_ context.Context, rec *model.SettingsRecord, call func(wix.Credentials) error) error {
	return call(wix.Credentials{InstanceID: rec.InstanceID, AccessToken: rec.AccessToken, RefreshToken: rec.RefreshToken})
}

func withTokens(id string) *model.SettingsRecord {
	rec := model.DefaultSettings(id)
	rec.AccessToken = "acc"
	rec.RefreshToken = "ref"
	return rec
}

func newCatalog(t *testing.T, q ProductQuerier, s SettingsSource) *Catalog {
	t.Helper()
	c, err := New(Options{Querier: q, Settings: s, TTL: time.Minute, MaxCost: 100, Limit: 7})
	require.NoError(t, err)
	t.Cleanup(c.Close)
	return c
}

func TestSampleProducts_Filter(t *testing.T) {
	assert.Len(t, SampleProducts(""), 5)

	got := SampleProducts("  SHIRT ")
	require.Len(t, got, 1)
	assert.Equal(t, "Cotton T-Shirt", got[0].Name)
	assert.Equal(t, int64(1499), got[0].Price)

	assert.Len(t, SampleProducts("a"), 4)
	assert.Empty(t, SampleProducts("zebra"))
}

func TestSampleProducts_ReturnsCopy(t *testing.T) {
	got := SampleProducts("")
	got[0].Name = "mutated"
	assert.Equal(t, "Leather Wallet", SampleProducts("")[0].Name)
}

func TestSearch_UsesWixWhenCredentialed(t *testing.T) {
	q := &fakeQuerier{products: []model.Product{{ID: "w1", Name: "Wix Mug", Price: 1200}}}
	c := newCatalog(t, q, &fakeSettings{rec: withTokens("t-1")})

	res, err := c.Search(context.Background(), "t-1", "mug")
	require.NoError(t, err)
	assert.Equal(t, SourceWix, res.Source)
	assert.Equal(t, q.products, res.Products)
	assert.Equal(t, "acc", q.lastCred.AccessToken)
	assert.Equal(t, 7, q.lastLim)
}

func TestSearch_FallsBackWithoutCredentials(t *testing.T) {
	q := &fakeQuerier{}
	c := newCatalog(t, q, &fakeSettings{rec: model.DefaultSettings("t-1")})

	res, err := c.Search(context.Background(), "t-1", "soap")
	require.NoError(t, err)
	assert.Equal(t, SourceSample, res.Source)
	require.Len(t, res.Products, 1)
	assert.Equal(t, "Handmade Soap", res.Products[0].Name)
	assert.Zero(t, q.calls)
}

func TestSearch_FallsBackOnGatewayFailure(t *testing.T) {
	q := &fakeQuerier{err: &wix.APIError{Operation: "query_products", StatusCode: 503, Body: "unavailable"}}
	c := newCatalog(t, q, &fakeSettings{rec: withTokens("t-1")})

	res, err := c.Search(context.Background(), "t-1", "")
	require.NoError(t, err)
	assert.Equal(t, SourceSample, res.Source)
	assert.Len(t, res.Products, 5)
}

func TestSearch_NoGatewayMeansSample(t *testing.T) {
	c := newCatalog(t, nil, nil)
	res, err := c.Search(context.Background(), "t-1", "case")
	require.NoError(t, err)
	assert.Equal(t, SourceSample, res.Source)
	assert.Len(t, res.Products, 1)
}

func TestSearch_ResolveFailureIsReturned(t *testing.T) {
	boom := errors.New("store down")
	c := newCatalog(t, &fakeQuerier{}, &fakeSettings{resolveErr: boom})

	_, err := c.Search(context.Background(), "t-1", "")
	assert.ErrorIs(t, err, boom)
}

func TestCacheKey_NormalizesQuery(t *testing.T) {
	assert.Equal(t, cacheKey("t-1", " Mug "), cacheKey("t-1", "mug"))
	assert.NotEqual(t, cacheKey("t-1", "mug"), cacheKey("t-2", "mug"))
}
