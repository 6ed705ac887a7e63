package dilicom

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The service answers with lowercased tags; parsing must not care.
const fixtureResponse = `<?xml version='1.0' encoding='utf-8'?>
<soap-env:Envelope xmlns:soap-env="http://schemas.xmlsoap.org/soap/envelope/">
<soap-env:Body>
<demandeficheproduitrs>
<codeexecution>OK</codeexecution>
<elemreponse>
<codeexecution>OK</codeexecution>
<ean13>9782732486819</ean13>
<libetd>HABITER LE MONDE</libetd>
<auteur>JONAS/RIHN</auteur>
<edit>MARTINIERE J</edit>
<prix>00016500</prix>
<dtparu>20190918</dtparu>
<codedispo>1</codedispo>
<epaiss>15</epaiss>
<haut>320</haut>
<larg>250</larg>
<poids>692</poids>
</elemreponse>
</demandeficheproduitrs>
</soap-env:Body>
</soap-env:Envelope>`

func TestFetchProducts(t *testing.T) {
	t.Parallel()

	var gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, `""`, r.Header.Get("SOAPAction"))
		assert.Contains(t, r.Header.Get("Content-Type"), "text/xml")
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		_, _ = w.Write([]byte(fixtureResponse))
	}))
	defer srv.Close()

	c := NewClient("3012345678901", "secret", WithEndpoint(srv.URL))
	products, err := c.FetchProducts(context.Background(), []string{"9782732486819"})
	require.NoError(t, err)
	require.Len(t, products, 1)

	assert.Contains(t, gotBody, "<demandeur>3012345678901</demandeur>")
	assert.Contains(t, gotBody, "<ean13s>9782732486819</ean13s>")
	assert.Contains(t, gotBody, "<multiple>false</multiple>")

	p := products[0]
	assert.Equal(t, "9782732486819", p.EAN)
	assert.Equal(t, "HABITER LE MONDE", p.Title)
	assert.Equal(t, "JONAS/RIHN", p.Author)
	assert.Equal(t, "MARTINIERE J", p.Publisher)
	assert.InDelta(t, 16.5, p.Price, 0.001)
	assert.Equal(t, "2019-09-18", p.DatePublication.Format("2006-01-02"))
	assert.Equal(t, 1, p.Availability)
	assert.Equal(t, 15, p.Thickness)
	assert.Equal(t, 320, p.Height)
	assert.Equal(t, 250, p.Width)
	assert.Equal(t, 692, p.Weight)
}

func TestFetchProducts_SkipsFailedSheets(t *testing.T) {
	t.Parallel()

	response := strings.Replace(fixtureResponse, "<elemreponse>\n<codeexecution>OK</codeexecution>",
		"<elemreponse>\n<codeexecution>UNKNOWN_EAN</codeexecution>", 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(response))
	}))
	defer srv.Close()

	c := NewClient("user", "pass", WithEndpoint(srv.URL))
	products, err := c.FetchProducts(context.Background(), []string{"9780000000000"})
	require.NoError(t, err)
	assert.Empty(t, products)
}

func TestFetchProducts_BatchesOfOneHundred(t *testing.T) {
	t.Parallel()

	var requests int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		body, _ := io.ReadAll(r.Body)
		assert.LessOrEqual(t, strings.Count(string(body), "<ean13s>"), 100)
		_, _ = w.Write([]byte(fixtureResponse))
	}))
	defer srv.Close()

	eans := make([]string, 250)
	for i := range eans {
		eans[i] = fmt.Sprintf("978%010d", i)
	}

	c := NewClient("user", "pass", WithEndpoint(srv.URL))
	products, err := c.FetchProducts(context.Background(), eans)
	require.NoError(t, err)
	assert.Equal(t, 3, requests)
	assert.Len(t, products, 3)
}

func TestFetchProducts_ConfigErrorsBeforeNetwork(t *testing.T) {
	t.Parallel()

	var requests int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
	}))
	defer srv.Close()

	c := NewClient("", "", WithEndpoint(srv.URL))
	_, err := c.FetchProducts(context.Background(), []string{"9782732486819"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no user or password")

	c = NewClient("user", "pass", WithEndpoint(srv.URL))
	_, err = c.FetchProducts(context.Background(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no EANs")

	assert.Equal(t, 0, requests)
}

func TestFetchProducts_ServerErrorStatus(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient("user", "pass", WithEndpoint(srv.URL))
	_, err := c.FetchProducts(context.Background(), []string{"9782732486819"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}
