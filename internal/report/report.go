// Package report renders records for the console.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/abelujo/bookscout/internal/model"
	"github.com/abelujo/bookscout/internal/reviews"
)

// Card prints one record: a colored title line, then authors, publisher,
// price and identifier in aligned columns.
func Card(w io.Writer, rec model.Record, details bool) {
	fmt.Fprintln(w, text.FgBlue.Sprint(" "+rec.Title))
	fmt.Fprintf(w, "   %-30.19s %30.19s %-10s %s\n",
		rec.AuthorsRepr, rec.PubsRepr, rec.PriceFmt, rec.ISBN)

	if !details {
		return
	}
	if rec.DatePublication != "" {
		fmt.Fprintf(w, "   Date publication: %s\n", rec.DatePublication)
	}
	if rec.Availability != "" {
		fmt.Fprintf(w, "   %s\n", rec.Availability)
	}
	if rec.Weight != 0 || rec.Height != 0 {
		fmt.Fprintf(w, "   %d x %d x %d mm, %d g\n",
			rec.Height, rec.Width, rec.Thickness, rec.Weight)
	}
}

// Cards prints every record.
func Cards(w io.Writer, records []model.Record, details bool) {
	for _, rec := range records {
		Card(w, rec, details)
	}
}

// Summary prints the result count and, when asked, the elapsed time.
func Summary(w io.Writer, count int, elapsed time.Duration, timing bool) {
	fmt.Fprintf(w, " Nb results: %d\n", count)
	if timing {
		fmt.Fprintf(w, " Took %.2f s\n", elapsed.Seconds())
	}
}

// Errors prints the search error strings, dimmed.
func Errors(w io.Writer, errs []string) {
	for _, e := range errs {
		fmt.Fprintln(w, text.FgHiBlack.Sprint(e))
	}
}

// Reviews prints press article excerpts with their source link.
func Reviews(w io.Writer, revs []reviews.Review) {
	if len(revs) == 0 {
		return
	}
	fmt.Fprintf(w, " We got %d reviews:\n", len(revs))
	for _, rev := range revs {
		fmt.Fprintln(w, rev.ShortSummary)
		fmt.Fprintln(w, text.FgHiBlack.Sprint(rev.URL))
	}
}

// JSON writes the records as an indented JSON array, for piping into other
// tools.
func JSON(w io.Writer, records []model.Record) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return eris.Wrap(enc.Encode(records), "report: encode json")
}

// YAML writes the records as a YAML document.
func YAML(w io.Writer, records []model.Record) error {
	enc := yaml.NewEncoder(w)
	defer func() { _ = enc.Close() }()
	return eris.Wrap(enc.Encode(records), "report: encode yaml")
}

// Sources prints the registered source names as a table.
func Sources(w io.Writer, names []string) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Source"})
	for _, name := range names {
		t.AppendRow(table.Row{name})
	}
	t.SetStyle(table.StyleRounded)
	t.Render()
}
