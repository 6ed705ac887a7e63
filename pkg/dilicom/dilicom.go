// Package dilicom talks to the Dilicom "FEL à la demande" SOAP service, the
// French book trade's product sheet catalog. The service only answers EAN13
// lookups; free keyword search does not exist there.
package dilicom

import (
	"context"
	"encoding/xml"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/text/encoding/htmlindex"
)

const (
	defaultEndpoint = "http://websfel.centprod.com/v2/DemandeFicheProduit"

	// maxBatchSize is the service's hard cap on EANs per request.
	maxBatchSize = 100
)

// Product is one product sheet from the catalog. Numeric fields the sheet
// leaves empty stay at zero.
type Product struct {
	EAN             string
	Title           string
	Author          string
	Publisher       string
	// Price is in euros; the wire format is thousandths.
	Price           float64
	DatePublication time.Time
	// Availability is the raw availability code (1 means available).
	Availability int
	// Dimensions in millimeters, weight in grams.
	Thickness int
	Height    int
	Width     int
	Weight    int
}

// Client performs product sheet lookups.
type Client interface {
	FetchProducts(ctx context.Context, eans []string) ([]Product, error)
}

// Option configures the client.
type Option func(*httpClient)

// WithEndpoint overrides the default service URL.
func WithEndpoint(url string) Option {
	return func(c *httpClient) {
		c.endpoint = url
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

type httpClient struct {
	user     string
	password string
	endpoint string
	http     *http.Client
}

// NewClient creates a FEL à la demande client authenticated by the given GLN
// and password.
func NewClient(user, password string, opts ...Option) Client {
	c := &httpClient{
		user:     user,
		password: password,
		endpoint: defaultEndpoint,
		http: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 4,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchProducts looks up product sheets, splitting the lookups into batches
// of one hundred. Configuration problems surface before any request goes out.
func (c *httpClient) FetchProducts(ctx context.Context, eans []string) ([]Product, error) {
	if c.user == "" || c.password == "" {
		return nil, eris.New("dilicom: no user or password configured")
	}
	if len(eans) == 0 {
		return nil, eris.New("dilicom: no EANs to look up")
	}

	var products []Product
	for start := 0; start < len(eans); start += maxBatchSize {
		end := start + maxBatchSize
		if end > len(eans) {
			end = len(eans)
		}
		batch, err := c.fetchBatch(ctx, eans[start:end])
		if err != nil {
			return products, err
		}
		products = append(products, batch...)
	}
	return products, nil
}

func (c *httpClient) fetchBatch(ctx context.Context, eans []string) ([]Product, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint,
		strings.NewReader(buildEnvelope(c.user, c.password, eans)))
	if err != nil {
		return nil, eris.Wrap(err, "dilicom: build request")
	}
	req.Header.Set("SOAPAction", `""`)
	req.Header.Set("Content-Type", "text/xml; charset=utf-8")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "dilicom: post request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("dilicom: service answered status %d", resp.StatusCode)
	}

	return parseResponse(resp.Body)
}

// buildEnvelope serializes the demandeFicheProduit SOAP body. multiple=false
// requests one sheet per EAN.
func buildEnvelope(user, password string, eans []string) string {
	var b strings.Builder
	b.WriteString(`<?xml version='1.0' encoding='utf-8'?>`)
	b.WriteString(`<soap-env:Envelope xmlns:soap-env="http://schemas.xmlsoap.org/soap/envelope/">`)
	b.WriteString(`<soap-env:Body>`)
	b.WriteString(`<ns0:demandeFicheProduit xmlns:ns0="http://fel.ws.accelya.com/">`)
	b.WriteString("<demandeur>")
	_ = xml.EscapeText(&b, []byte(user))
	b.WriteString("</demandeur><motDePasse>")
	_ = xml.EscapeText(&b, []byte(password))
	b.WriteString("</motDePasse>")
	for _, ean := range eans {
		b.WriteString("<ean13s>")
		_ = xml.EscapeText(&b, []byte(ean))
		b.WriteString("</ean13s>")
	}
	b.WriteString("<multiple>false</multiple>")
	b.WriteString(`</ns0:demandeFicheProduit>`)
	b.WriteString(`</soap-env:Body></soap-env:Envelope>`)
	return b.String()
}

// parseResponse walks the SOAP response tokens. Tag names are matched
// case-insensitively: the service has been seen answering with varying
// casings. A non-OK execution code on the whole response is logged and the
// sheets it still carries are kept; a non-OK code on one sheet drops that
// sheet only.
func parseResponse(r io.Reader) ([]Product, error) {
	decoder := xml.NewDecoder(r)
	decoder.CharsetReader = func(charset string, input io.Reader) (io.Reader, error) {
		enc, err := htmlindex.Get(charset)
		if err != nil {
			return nil, eris.Wrapf(err, "dilicom: unsupported charset %q", charset)
		}
		return enc.NewDecoder().Reader(input), nil
	}

	products := []Product{}
	sawOverallCode := false
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			return products, nil
		}
		if err != nil {
			return products, eris.Wrap(err, "dilicom: read response token")
		}

		se, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}

		switch {
		case strings.EqualFold(se.Name.Local, "codeExecution") && !sawOverallCode:
			sawOverallCode = true
			code, err := readText(decoder)
			if err != nil {
				return products, err
			}
			if code != "OK" {
				zap.L().Warn("dilicom: response execution code not OK",
					zap.String("code", code),
				)
			}
		case strings.EqualFold(se.Name.Local, "elemReponse"):
			product, ok, err := parseProduct(decoder, se)
			if err != nil {
				return products, err
			}
			if ok {
				products = append(products, product)
			}
		}
	}
}

// parseProduct consumes one elemReponse subtree. ok is false when the sheet's
// own execution code is not OK.
func parseProduct(decoder *xml.Decoder, start xml.StartElement) (Product, bool, error) {
	var p Product
	ok := true
	for {
		tok, err := decoder.Token()
		if err != nil {
			return p, false, eris.Wrap(err, "dilicom: read product token")
		}

		switch t := tok.(type) {
		case xml.EndElement:
			if strings.EqualFold(t.Name.Local, start.Name.Local) {
				return p, ok, nil
			}
		case xml.StartElement:
			text, err := readText(decoder)
			if err != nil {
				return p, false, err
			}
			if err := setField(&p, &ok, t.Name.Local, text); err != nil {
				zap.L().Debug("dilicom: unreadable product field",
					zap.String("field", t.Name.Local),
					zap.Error(err),
				)
			}
		}
	}
}

func setField(p *Product, ok *bool, name, text string) error {
	switch {
	case strings.EqualFold(name, "codeExecution"):
		if text != "OK" {
			*ok = false
		}
	case strings.EqualFold(name, "ean13"):
		p.EAN = text
	case strings.EqualFold(name, "libetd"):
		p.Title = text
	case strings.EqualFold(name, "auteur"):
		p.Author = text
	case strings.EqualFold(name, "edit"):
		p.Publisher = text
	case strings.EqualFold(name, "prix"):
		if text == "" {
			return nil
		}
		milli, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return eris.Wrapf(err, "dilicom: price %q", text)
		}
		p.Price = milli / 1000.0
	case strings.EqualFold(name, "dtparu"):
		if text == "" {
			return nil
		}
		date, err := time.Parse("20060102", text)
		if err != nil {
			return eris.Wrapf(err, "dilicom: publication date %q", text)
		}
		p.DatePublication = date
	case strings.EqualFold(name, "codedispo"):
		return setInt(&p.Availability, text)
	case strings.EqualFold(name, "epaiss"):
		return setInt(&p.Thickness, text)
	case strings.EqualFold(name, "haut"):
		return setInt(&p.Height, text)
	case strings.EqualFold(name, "larg"):
		return setInt(&p.Width, text)
	case strings.EqualFold(name, "poids"):
		return setInt(&p.Weight, text)
	}
	return nil
}

func setInt(dst *int, text string) error {
	if text == "" {
		return nil
	}
	n, err := strconv.Atoi(text)
	if err != nil {
		return eris.Wrapf(err, "dilicom: integer field %q", text)
	}
	*dst = n
	return nil
}

// readText consumes the just-opened element and returns its trimmed
// character data. Nested elements contribute their text too.
func readText(decoder *xml.Decoder) (string, error) {
	var b strings.Builder
	depth := 1
	for depth > 0 {
		tok, err := decoder.Token()
		if err != nil {
			return "", eris.Wrap(err, "dilicom: read element text")
		}
		switch t := tok.(type) {
		case xml.StartElement:
			depth++
		case xml.EndElement:
			depth--
		case xml.CharData:
			b.Write(t)
		}
	}
	return strings.TrimSpace(b.String()), nil
}
