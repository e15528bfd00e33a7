package scraper

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"dealradar/internal/sanitize"

	"github.com/PuerkitoBio/goquery"
)

const amazonBaseURL = "https://www.amazon.com"

var asinPattern = regexp.MustCompile(`/(?:dp|gp/product)/([A-Z0-9]{10})`)

// AmazonScraper implementa o scraper para páginas de produto da Amazon
type AmazonScraper struct {
	fetcher *Fetcher
	// BaseURL é usado para montar a URL canônica /dp/<ASIN>
	BaseURL string
}

// NewAmazonScraper cria uma nova instância do scraper da Amazon
func NewAmazonScraper(fetcher *Fetcher) *AmazonScraper {
	return &AmazonScraper{fetcher: fetcher, BaseURL: amazonBaseURL}
}

func (a *AmazonScraper) Seller() string    { return "Amazon" }
func (a *AmazonScraper) SellerURL() string { return "https://amazon.com" }

// CanHandle aceita qualquer domínio amazon.* e links curtos amzn.*
func (a *AmazonScraper) CanHandle(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	host := strings.ToLower(u.Hostname())
	return strings.Contains(host, "amazon.") || strings.HasPrefix(host, "amzn.") ||
		(a.BaseURL != amazonBaseURL && strings.HasPrefix(rawURL, a.BaseURL))
}

// CanonicalURL reduz o link a /dp/<ASIN>, removendo parâmetros de rastreio
func (a *AmazonScraper) CanonicalURL(rawURL string) (string, error) {
	if asin := extractASIN(rawURL); asin != "" {
		return a.BaseURL + "/dp/" + asin, nil
	}
	return stripQuery(rawURL)
}

// FetchProductDetails lê título e preço da página do produto
func (a *AmazonScraper) FetchProductDetails(ctx context.Context, rawURL string) (*Details, error) {
	canonical, err := a.CanonicalURL(rawURL)
	if err != nil {
		return nil, err
	}
	asin := extractASIN(canonical)

	doc, err := a.fetcher.Document(ctx, canonical)
	if err != nil {
		return nil, err
	}

	rawTitle := firstText(doc, "#productTitle", "h1")
	if doc.Find("form[action*='validateCaptcha']").Length() > 0 ||
		(rawTitle == "" && strings.Contains(strings.ToLower(doc.Text()), "captcha")) {
		return nil, fmt.Errorf("captcha detectado em %s: %w", canonical, ErrBlocked)
	}

	title := sanitize.ASCII(rawTitle)
	if title == "" {
		if asin == "" {
			return nil, fmt.Errorf("página sem título nem ASIN: %w", ErrNotFound)
		}
		title = fmt.Sprintf("Amazon Item (%s)", asin)
	}

	// Prioriza o bloco central de preço para não pegar acessórios da lateral
	var price float64
	for _, selector := range []string{
		"#corePriceDisplay_desktop_feature_div .apexPriceToPay span.a-offscreen",
		"#corePriceDisplay_desktop_feature_div span.a-offscreen",
		"#corePrice_feature_div span.a-offscreen",
		"span.a-price span.a-offscreen",
		"#priceblock_ourprice",
		"#priceblock_dealprice",
	} {
		if p, ok := ParsePrice(doc.Find(selector).First().Text()); ok {
			price = p
			break
		}
	}

	return &Details{
		Name:         sanitize.Truncate(title, 200),
		Category:     "Amazon Import",
		Price:        price,
		CanonicalURL: canonical,
		Seller:       a.Seller(),
	}, nil
}

func extractASIN(rawURL string) string {
	m := asinPattern.FindStringSubmatch(rawURL)
	if len(m) < 2 {
		return ""
	}
	return m[1]
}

// firstText retorna o texto do primeiro seletor que tiver conteúdo
func firstText(doc *goquery.Document, selectors ...string) string {
	for _, selector := range selectors {
		if text := strings.TrimSpace(doc.Find(selector).First().Text()); text != "" {
			return text
		}
	}
	return ""
}

func stripQuery(rawURL string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", fmt.Errorf("URL inválida %q: %w", rawURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("URL inválida %q: %w", rawURL, ErrUnsupported)
	}
	u.RawQuery = ""
	u.Fragment = ""
	return u.String(), nil
}
