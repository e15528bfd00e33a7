package scraper

import (
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/google/go-cmp/cmp"
)

const amazonPage = `<!DOCTYPE html>
<html><body>
	<span id="productTitle">  Café   Espresso Machine  </span>
	<div id="corePriceDisplay_desktop_feature_div">
		<span class="a-price apexPriceToPay"><span class="a-offscreen">$1,299.99</span></span>
	</div>
	<div id="sidebar"><span class="a-price"><span class="a-offscreen">$9.99</span></span></div>
</body></html>`

const mercadoLivrePage = `<!DOCTYPE html>
<html><body>
	<h1 class="ui-pdp-title">Fone Bluetooth</h1>
	<div class="andes-money-amount--previous-price">
		<span class="andes-money-amount__fraction">399</span>
	</div>
	<div class="ui-pdp-price__second-line">
		<span class="andes-money-amount__fraction">1.234</span>
		<span class="andes-money-amount__cents">56</span>
	</div>
</body></html>`

func newTestFetcher(respectRobots bool) *Fetcher {
	cfg := DefaultFetchConfig()
	cfg.Timeout = 5 * time.Second
	cfg.RespectRobots = respectRobots
	return NewFetcher(cfg, nil)
}

func newAmazonTest(t *testing.T, handler http.HandlerFunc) *AmazonScraper {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)

	a := NewAmazonScraper(newTestFetcher(false))
	a.BaseURL = ts.URL
	return a
}

func htmlHandler(page string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(page))
	}
}

func TestAmazonFetchProductDetails(t *testing.T) {
	var gotPath, gotUA string
	a := newAmazonTest(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.RequestURI()
		gotUA = r.Header.Get("User-Agent")
		htmlHandler(amazonPage)(w, r)
	})

	details, err := a.FetchProductDetails(context.Background(), a.BaseURL+"/Espresso/dp/B0TESTASIN?tag=abc&ref=x")
	if err != nil {
		t.Fatalf("FetchProductDetails: %v", err)
	}

	want := &Details{
		Name:         "Cafe Espresso Machine",
		Category:     "Amazon Import",
		Price:        1299.99,
		CanonicalURL: a.BaseURL + "/dp/B0TESTASIN",
		Seller:       "Amazon",
	}
	if diff := cmp.Diff(want, details); diff != "" {
		t.Errorf("details mismatch (-want +got):\n%s", diff)
	}
	if gotPath != "/dp/B0TESTASIN" {
		t.Errorf("requested %q, want canonical path", gotPath)
	}
	if gotUA == "" {
		t.Error("User-Agent header not sent")
	}
}

func TestAmazonWithoutTitleUsesASIN(t *testing.T) {
	a := newAmazonTest(t, htmlHandler(`<html><body><span class="a-price"><span class="a-offscreen">$45.00</span></span></body></html>`))

	details, err := a.FetchProductDetails(context.Background(), a.BaseURL+"/dp/B0TESTASIN")
	if err != nil {
		t.Fatalf("FetchProductDetails: %v", err)
	}
	if details.Name != "Amazon Item (B0TESTASIN)" {
		t.Errorf("Name = %q", details.Name)
	}
	if details.Price != 45 {
		t.Errorf("Price = %v, want 45", details.Price)
	}
}

func TestAmazonWithoutPrice(t *testing.T) {
	a := newAmazonTest(t, htmlHandler(`<html><body><span id="productTitle">Desk Lamp</span></body></html>`))

	details, err := a.FetchProductDetails(context.Background(), a.BaseURL+"/dp/B0TESTASIN")
	if err != nil {
		t.Fatalf("FetchProductDetails: %v", err)
	}
	if details.Price != 0 {
		t.Errorf("Price = %v, want 0", details.Price)
	}
}

func TestAmazonCaptchaIsBlocked(t *testing.T) {
	a := newAmazonTest(t, htmlHandler(`<html><body><form action="/errors/validateCaptcha"><p>Enter the characters you see</p></form></body></html>`))

	_, err := a.FetchProductDetails(context.Background(), a.BaseURL+"/dp/B0TESTASIN")
	if !errors.Is(err, ErrBlocked) {
		t.Fatalf("err = %v, want ErrBlocked", err)
	}
}

func TestFetchStatusErrors(t *testing.T) {
	tests := []struct {
		status int
		want   error
	}{
		{http.StatusServiceUnavailable, ErrBlocked},
		{http.StatusTooManyRequests, ErrBlocked},
		{http.StatusForbidden, ErrBlocked},
		{http.StatusNotFound, ErrNotFound},
		{http.StatusInternalServerError, ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			a := newAmazonTest(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			})
			_, err := a.FetchProductDetails(context.Background(), a.BaseURL+"/dp/B0TESTASIN")
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestFetchDecodesCompressedBodies(t *testing.T) {
	var gz, br bytes.Buffer
	gw := gzip.NewWriter(&gz)
	gw.Write([]byte(amazonPage))
	gw.Close()
	bw := brotli.NewWriter(&br)
	bw.Write([]byte(amazonPage))
	bw.Close()

	bodies := map[string][]byte{"gzip": gz.Bytes(), "br": br.Bytes()}
	for encoding, body := range bodies {
		t.Run(encoding, func(t *testing.T) {
			a := newAmazonTest(t, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "text/html")
				w.Header().Set("Content-Encoding", encoding)
				w.Write(body)
			})
			details, err := a.FetchProductDetails(context.Background(), a.BaseURL+"/dp/B0TESTASIN")
			if err != nil {
				t.Fatalf("FetchProductDetails: %v", err)
			}
			if details.Price != 1299.99 {
				t.Errorf("Price = %v", details.Price)
			}
		})
	}
}

func TestFetchRespectsRobots(t *testing.T) {
	var productHits int
	mux := http.NewServeMux()
	mux.HandleFunc("/robots.txt", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("User-agent: *\nDisallow: /dp/\n"))
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		productHits++
		htmlHandler(amazonPage)(w, r)
	})
	ts := httptest.NewServer(mux)
	defer ts.Close()

	a := NewAmazonScraper(newTestFetcher(true))
	a.BaseURL = ts.URL

	_, err := a.FetchProductDetails(context.Background(), ts.URL+"/dp/B0TESTASIN")
	if !errors.Is(err, ErrBlocked) {
		t.Fatalf("err = %v, want ErrBlocked", err)
	}
	if productHits != 0 {
		t.Errorf("product page fetched %d times despite robots.txt", productHits)
	}

	if _, err := NewFetcher(DefaultFetchConfig(), nil).Document(context.Background(), ts.URL+"/dp/B0TESTASIN"); err != nil {
		t.Errorf("robots disabled: %v", err)
	}
}

func TestMercadoLivreFetchProductDetails(t *testing.T) {
	ts := httptest.NewServer(htmlHandler(mercadoLivrePage))
	defer ts.Close()

	m := NewMercadoLivreScraper(newTestFetcher(false))
	details, err := m.FetchProductDetails(context.Background(), ts.URL+"/MLB-123-fone?tracking_id=abc#reviews")
	if err != nil {
		t.Fatalf("FetchProductDetails: %v", err)
	}

	want := &Details{
		Name:         "Fone Bluetooth",
		Category:     "Mercado Livre Import",
		Price:        1234.56,
		CanonicalURL: ts.URL + "/MLB-123-fone",
		Seller:       "Mercado Livre",
	}
	if diff := cmp.Diff(want, details); diff != "" {
		t.Errorf("details mismatch (-want +got):\n%s", diff)
	}
}

func TestMercadoLivreJSONLDFallback(t *testing.T) {
	page := `<html><head><script type="application/ld+json">
		{"@type":"Product","name":"Cadeira Gamer","offers":{"@type":"Offer","price":"899.90","priceCurrency":"BRL"}}
	</script></head><body></body></html>`
	ts := httptest.NewServer(htmlHandler(page))
	defer ts.Close()

	details, err := NewMercadoLivreScraper(newTestFetcher(false)).FetchProductDetails(context.Background(), ts.URL+"/MLB-1")
	if err != nil {
		t.Fatalf("FetchProductDetails: %v", err)
	}
	if details.Name != "Cadeira Gamer" || details.Price != 899.90 {
		t.Errorf("got %q %.2f", details.Name, details.Price)
	}
}

func TestParsePrice(t *testing.T) {
	tests := []struct {
		in     string
		want   float64
		wantOK bool
	}{
		{"$45.00", 45, true},
		{"$1,299.99", 1299.99, true},
		{" $10.99 - $20.00 ", 10.99, true},
		{"10 to 20", 10, true},
		{"", 0, false},
		{"Currently unavailable", 0, false},
		{"$0.00", 0, false},
	}

	for _, tt := range tests {
		got, ok := ParsePrice(tt.in)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("ParsePrice(%q) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestParseBRL(t *testing.T) {
	tests := []struct {
		in     string
		want   float64
		wantOK bool
	}{
		{"R$ 1.234,56", 1234.56, true},
		{"199", 199, true},
		{"89,90", 89.90, true},
		{"grátis", 0, false},
	}

	for _, tt := range tests {
		got, ok := ParseBRL(tt.in)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("ParseBRL(%q) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestCanonicalURL(t *testing.T) {
	a := NewAmazonScraper(nil)
	m := NewMercadoLivreScraper(nil)

	tests := []struct {
		name    string
		scraper Scraper
		in      string
		want    string
	}{
		{"amazon dp", a, "https://www.amazon.com/Some-Name/dp/B08N5WRWNW/ref=sr_1_1?keywords=x", "https://www.amazon.com/dp/B08N5WRWNW"},
		{"amazon gp", a, "https://www.amazon.com/gp/product/B08N5WRWNW?psc=1", "https://www.amazon.com/dp/B08N5WRWNW"},
		{"amazon sem asin", a, "https://www.amazon.com/s?k=lamp", "https://www.amazon.com/s"},
		{"mercado livre", m, "https://produto.mercadolivre.com.br/MLB-123-fone?tracking_id=1", "https://produto.mercadolivre.com.br/MLB-123-fone"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.scraper.CanonicalURL(tt.in)
			if err != nil {
				t.Fatalf("CanonicalURL: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}

	if _, err := a.CanonicalURL("not a url"); !errors.Is(err, ErrUnsupported) {
		t.Errorf("relative URL: err = %v, want ErrUnsupported", err)
	}
}

func TestRegistryFindScraper(t *testing.T) {
	r := NewRegistry(newTestFetcher(false))

	tests := []struct {
		url  string
		want string
	}{
		{"https://www.amazon.com/dp/B08N5WRWNW", "Amazon"},
		{"https://www.amazon.com.br/dp/B08N5WRWNW", "Amazon"},
		{"https://amzn.to/3abc", "Amazon"},
		{"https://produto.mercadolivre.com.br/MLB-123", "Mercado Livre"},
		{"https://www.ebay.com/itm/123", ""},
	}

	for _, tt := range tests {
		s := r.FindScraper(tt.url)
		var got string
		if s != nil {
			got = s.Seller()
		}
		if got != tt.want {
			t.Errorf("FindScraper(%q) = %q, want %q", tt.url, got, tt.want)
		}
	}

	if n := len(r.Scrapers()); n != 2 {
		t.Errorf("Scrapers() = %d, want 2", n)
	}
}
