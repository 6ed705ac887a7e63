package scrape

import (
	"github.com/abelujo/bookscout/internal/cache"
	"github.com/abelujo/bookscout/internal/fetch"
)

// NewDefaultRegistry registers every built-in website source. The Dilicom
// catalog source is registered separately: it needs credentials.
func NewDefaultRegistry(client *fetch.Client, rc *cache.Results) *Registry {
	r := NewRegistry()
	r.Register(NewLibrairieDeParis(client, rc))
	r.Register(NewBuchLentner(client, rc))
	r.Register(NewCasaDelLibro(client, rc))
	r.Register(NewLeLivre(client, rc))
	r.Register(NewMomox(client, rc))
	r.Register(NewDiscogs(client, rc))
	return r
}
