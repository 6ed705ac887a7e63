package report

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/abelujo/bookscout/internal/model"
	"github.com/abelujo/bookscout/internal/reviews"
)

func testRecord() model.Record {
	price := 16.5
	rec := model.Record{
		Title:           "Habiter le monde",
		Price:           &price,
		PriceFmt:        "16.50 €",
		ISBN:            "9782732486819",
		DatePublication: "2019-09-18",
		Availability:    "Disponible",
		Thickness:       15,
		Height:          320,
		Width:           250,
		Weight:          692,
	}
	rec.SetAuthors([]string{"JONAS/RIHN"})
	rec.SetPublishers([]string{"Martiniere j"})
	return rec
}

func TestCard(t *testing.T) {
	t.Parallel()

	var b strings.Builder
	Card(&b, testRecord(), false)
	out := b.String()

	assert.Contains(t, out, "Habiter le monde")
	assert.Contains(t, out, "JONAS/RIHN")
	assert.Contains(t, out, "16.50 €")
	assert.Contains(t, out, "9782732486819")
	assert.NotContains(t, out, "Date publication")
}

func TestCard_Details(t *testing.T) {
	t.Parallel()

	var b strings.Builder
	Card(&b, testRecord(), true)
	out := b.String()

	assert.Contains(t, out, "Date publication: 2019-09-18")
	assert.Contains(t, out, "Disponible")
	assert.Contains(t, out, "320 x 250 x 15 mm, 692 g")
}

func TestSummary(t *testing.T) {
	t.Parallel()

	var b strings.Builder
	Summary(&b, 3, 1500*time.Millisecond, true)
	out := b.String()

	assert.Contains(t, out, "Nb results: 3")
	assert.Contains(t, out, "Took 1.50 s")

	b.Reset()
	Summary(&b, 0, time.Second, false)
	assert.NotContains(t, b.String(), "Took")
}

func TestReviews(t *testing.T) {
	t.Parallel()

	var b strings.Builder
	Reviews(&b, []reviews.Review{
		{ShortSummary: "Une lecture remarquable.", URL: "http://lmda.net/a"},
	})
	out := b.String()

	assert.Contains(t, out, "We got 1 reviews")
	assert.Contains(t, out, "Une lecture remarquable.")
	assert.Contains(t, out, "http://lmda.net/a")

	b.Reset()
	Reviews(&b, nil)
	assert.Empty(t, b.String())
}

func TestJSON(t *testing.T) {
	t.Parallel()

	var b strings.Builder
	assert.NoError(t, JSON(&b, []model.Record{testRecord()}))
	assert.Contains(t, b.String(), `"isbn": "9782732486819"`)
	assert.Contains(t, b.String(), `"authors_repr": "JONAS/RIHN"`)
}

func TestYAML(t *testing.T) {
	t.Parallel()

	var b strings.Builder
	assert.NoError(t, YAML(&b, []model.Record{testRecord()}))
	assert.Contains(t, b.String(), "isbn: \"9782732486819\"")
	assert.Contains(t, b.String(), "title: Habiter le monde")
}

func TestSources(t *testing.T) {
	t.Parallel()

	var b strings.Builder
	Sources(&b, []string{"dilicom", "discogs"})
	out := b.String()

	assert.Contains(t, out, "dilicom")
	assert.Contains(t, out, "discogs")
}
