package scrape

import (
	"context"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abelujo/bookscout/internal/cache"
	"github.com/abelujo/bookscout/pkg/dilicom"
)

type fakeDilicomClient struct {
	products []dilicom.Product
	err      error
	calls    int
}

func (c *fakeDilicomClient) FetchProducts(_ context.Context, eans []string) ([]dilicom.Product, error) {
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	return c.products, nil
}

func habiterLeMonde() dilicom.Product {
	return dilicom.Product{
		EAN:             "9782732486819",
		Title:           "HABITER LE MONDE",
		Author:          "JONAS/RIHN",
		Publisher:       "MARTINIERE J",
		Price:           16.5,
		DatePublication: time.Date(2019, 9, 18, 0, 0, 0, 0, time.UTC),
		Availability:    1,
		Thickness:       15,
		Height:          320,
		Width:           250,
		Weight:          692,
	}
}

func TestDilicomSearch_MapsSheetToRecord(t *testing.T) {
	t.Parallel()

	client := &fakeDilicomClient{products: []dilicom.Product{habiterLeMonde()}}
	s := NewDilicom(client, cache.New(), "")

	records, errs := s.Search(context.Background(), []string{"9782732486819"}, Options{})
	require.Empty(t, errs)
	require.Len(t, records, 1)

	rec := records[0]
	assert.Equal(t, "Habiter le monde", rec.Title)
	assert.Equal(t, "JONAS/RIHN", rec.AuthorsRepr)
	assert.Equal(t, []string{"Martiniere j"}, rec.Publishers)
	require.NotNil(t, rec.Price)
	assert.InDelta(t, 16.5, *rec.Price, 0.001)
	assert.Equal(t, "16.50 €", rec.PriceFmt)
	assert.Equal(t, "9782732486819", rec.ISBN)
	assert.Equal(t,
		"https://dilicom-prod.centprod.com/catalogue/detail_article_consultation.html?ean=9782732486819&emet=",
		rec.DetailsURL)
	assert.Equal(t, "2019-09-18", rec.DatePublication)
	assert.Equal(t, "Disponible", rec.Availability)
	assert.Equal(t, 15, rec.Thickness)
	assert.Equal(t, 320, rec.Height)
	assert.Equal(t, 250, rec.Width)
	assert.Equal(t, 692, rec.Weight)
	assert.Equal(t, "dilicom", rec.DataSource)
}

func TestDilicomSearch_RejectsKeywords(t *testing.T) {
	t.Parallel()

	client := &fakeDilicomClient{}
	s := NewDilicom(client, cache.New(), "")

	records, errs := s.Search(context.Background(), []string{"antigone", "sophocle"}, Options{})
	assert.Empty(t, records)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "only search ISBNs")
	assert.Equal(t, 0, client.calls)
}

func TestDilicomSearch_LookupErrorIsSoleOutput(t *testing.T) {
	t.Parallel()

	client := &fakeDilicomClient{err: eris.New("no user or password configured")}
	s := NewDilicom(client, cache.New(), "")

	records, errs := s.Search(context.Background(), []string{"9782732486819"}, Options{})
	assert.Empty(t, records)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "no user or password")
}

func TestDilicomSearch_CachesResults(t *testing.T) {
	t.Parallel()

	client := &fakeDilicomClient{products: []dilicom.Product{habiterLeMonde()}}
	s := NewDilicom(client, cache.New(), "")

	first, _ := s.Search(context.Background(), []string{"9782732486819"}, Options{})
	second, _ := s.Search(context.Background(), []string{"9782732486819"}, Options{})
	assert.Equal(t, 1, client.calls)
	assert.Equal(t, first, second)
}
