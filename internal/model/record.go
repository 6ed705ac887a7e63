// Package model defines the normalized record shape shared by every source.
package model

import "strings"

// CardType classifies what kind of product a record describes.
type CardType string

const (
	CardTypeBook CardType = "book"
	CardTypeDVD  CardType = "dvd"
	CardTypeCD   CardType = "cd"
)

// Record is the normalized result for one book, CD or DVD. Fields left at
// their zero value mean the source did not provide them; Authors and
// Publishers are never nil.
type Record struct {
	Title           string   `json:"title" yaml:"title"`
	Authors         []string `json:"authors" yaml:"authors"`
	AuthorsRepr     string   `json:"authors_repr" yaml:"authors_repr"`
	Publishers      []string `json:"publishers" yaml:"publishers"`
	PubsRepr        string   `json:"pubs_repr" yaml:"pubs_repr"`
	Price           *float64 `json:"price" yaml:"price"`
	PriceFmt        string   `json:"price_fmt" yaml:"price_fmt"`
	Currency        string   `json:"currency" yaml:"currency"`
	ISBN            string   `json:"isbn" yaml:"isbn"`
	Img             string   `json:"img" yaml:"img"`
	DetailsURL      string   `json:"details_url" yaml:"details_url"`
	SearchURL       string   `json:"search_url" yaml:"search_url"`
	SearchTerms     string   `json:"search_terms" yaml:"search_terms"`
	DatePublication string   `json:"date_publication" yaml:"date_publication"`
	Summary         string   `json:"summary" yaml:"summary"`
	Format          string   `json:"format" yaml:"format"`
	Availability    string   `json:"availability" yaml:"availability"`
	CardType        CardType `json:"card_type" yaml:"card_type"`
	DataSource      string   `json:"data_source" yaml:"data_source"`

	// Physical dimensions, only filled by the Dilicom catalog.
	Thickness int `json:"thickness,omitempty" yaml:"thickness,omitempty"`
	Height    int `json:"height,omitempty" yaml:"height,omitempty"`
	Width     int `json:"width,omitempty" yaml:"width,omitempty"`
	Weight    int `json:"weight,omitempty" yaml:"weight,omitempty"`
}

// SetAuthors assigns the author list and its comma-joined representation.
func (r *Record) SetAuthors(authors []string) {
	if authors == nil {
		authors = []string{}
	}
	r.Authors = authors
	r.AuthorsRepr = strings.Join(authors, ", ")
}

// SetPublishers assigns the publisher list and its comma-joined representation.
func (r *Record) SetPublishers(publishers []string) {
	if publishers == nil {
		publishers = []string{}
	}
	r.Publishers = publishers
	r.PubsRepr = strings.Join(publishers, ", ")
}

// Clone returns a copy of the record with its own slices, so enrichment can
// fill fields without mutating the original.
func (r Record) Clone() Record {
	out := r
	out.Authors = append([]string(nil), r.Authors...)
	out.Publishers = append([]string(nil), r.Publishers...)
	if r.Price != nil {
		p := *r.Price
		out.Price = &p
	}
	return out
}
