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

var (
	ldOffersPrice = regexp.MustCompile(`"offers"[^}]*"price"\s*:\s*"?([0-9.]+)"?`)
	ldAnyPrice    = regexp.MustCompile(`"price"\s*:\s*"?([0-9.]+)"?`)
	ldName        = regexp.MustCompile(`"name"\s*:\s*"([^"]+)"`)
)

// MercadoLivreScraper implementa o scraper para Mercado Livre
type MercadoLivreScraper struct {
	fetcher *Fetcher
}

// NewMercadoLivreScraper cria uma nova instância do scraper do Mercado Livre
func NewMercadoLivreScraper(fetcher *Fetcher) *MercadoLivreScraper {
	return &MercadoLivreScraper{fetcher: fetcher}
}

func (m *MercadoLivreScraper) Seller() string    { return "Mercado Livre" }
func (m *MercadoLivreScraper) SellerURL() string { return "https://www.mercadolivre.com.br" }

// CanHandle verifica se o scraper pode lidar com a URL fornecida
func (m *MercadoLivreScraper) CanHandle(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return strings.HasSuffix(strings.ToLower(u.Hostname()), "mercadolivre.com.br")
}

// CanonicalURL remove query string e fragmento (parâmetros de rastreio do anúncio)
func (m *MercadoLivreScraper) CanonicalURL(rawURL string) (string, error) {
	return stripQuery(rawURL)
}

// FetchProductDetails extrai nome e preço de um anúncio do Mercado Livre com uma única requisição
func (m *MercadoLivreScraper) FetchProductDetails(ctx context.Context, rawURL string) (*Details, error) {
	canonical, err := m.CanonicalURL(rawURL)
	if err != nil {
		return nil, err
	}

	doc, err := m.fetcher.Document(ctx, canonical)
	if err != nil {
		return nil, err
	}

	name := sanitize.ASCII(m.name(doc))
	if name == "" {
		return nil, fmt.Errorf("anúncio sem nome em %s: %w", canonical, ErrNotFound)
	}

	price, _ := m.price(doc)
	return &Details{
		Name:         sanitize.Truncate(name, 200),
		Category:     "Mercado Livre Import",
		Price:        price,
		CanonicalURL: canonical,
		Seller:       m.Seller(),
	}, nil
}

func (m *MercadoLivreScraper) name(doc *goquery.Document) string {
	if name := firstText(doc, "h1.ui-pdp-title", "h1[data-testid='title']", ".ui-pdp-title", "h1"); name != "" {
		return name
	}

	// Tentar buscar no JSON-LD
	var name string
	doc.Find("script[type='application/ld+json']").EachWithBreak(func(i int, s *goquery.Selection) bool {
		if matches := ldName.FindStringSubmatch(s.Text()); len(matches) > 1 {
			name = matches[1]
			return false
		}
		return true
	})
	return name
}

func (m *MercadoLivreScraper) price(doc *goquery.Document) (float64, bool) {
	// O preço promocional aparece na segunda linha do bloco de preço
	promotionalSelectors := []string{
		".ui-pdp-price__second-line .andes-money-amount__fraction",
		".ui-pdp-price--size-large .andes-money-amount__fraction",
	}
	for _, selector := range promotionalSelectors {
		if p, ok := brlAmount(doc.Find(selector).First()); ok {
			return p, true
		}
	}

	// Com vários preços na página, o menor geralmente é o promocional
	var lowest float64
	doc.Find("[data-testid='price'] .andes-money-amount__fraction, .andes-money-amount__fraction, .price-tag-fraction").
		Each(func(i int, s *goquery.Selection) {
			if s.ParentsFiltered(".andes-money-amount--previous-price").Length() > 0 {
				return
			}
			if p, ok := brlAmount(s); ok && (lowest == 0 || p < lowest) {
				lowest = p
			}
		})
	if lowest > 0 {
		return lowest, true
	}

	if content, ok := doc.Find("meta[itemprop='price'], meta[property='product:price:amount']").First().Attr("content"); ok {
		if p, ok := parsePositive(strings.TrimSpace(content)); ok {
			return p, true
		}
	}

	// JSON-LD: priorizar o preço dentro de "offers"
	var price float64
	doc.Find("script[type='application/ld+json']").EachWithBreak(func(i int, s *goquery.Selection) bool {
		text := s.Text()
		matches := ldOffersPrice.FindStringSubmatch(text)
		if len(matches) < 2 {
			matches = ldAnyPrice.FindStringSubmatch(text)
		}
		if len(matches) > 1 {
			if p, ok := parsePositive(matches[1]); ok {
				price = p
				return false
			}
		}
		return true
	})
	return price, price > 0
}

// brlAmount junta a parte inteira (".andes-money-amount__fraction") com os centavos do mesmo bloco
func brlAmount(fraction *goquery.Selection) (float64, bool) {
	text := strings.TrimSpace(fraction.Text())
	if text == "" {
		return 0, false
	}
	if cents := strings.TrimSpace(fraction.SiblingsFiltered(".andes-money-amount__cents").First().Text()); cents != "" {
		text += "," + cents
	}
	return ParseBRL(text)
}
