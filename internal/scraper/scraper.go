package scraper

import (
	"context"
	"errors"
)

var (
	// ErrNotFound indica página inexistente, resposta não-2xx ou página sem produto
	ErrNotFound = errors.New("produto não encontrado")
	// ErrBlocked indica captcha, bloqueio anti-automação ou robots.txt
	ErrBlocked = errors.New("acesso bloqueado pelo site")
	// ErrNoPrice indica que a página foi lida mas nenhum preço foi extraído
	ErrNoPrice = errors.New("preço não encontrado na página")
	// ErrUnsupported indica que nenhum scraper aceita a URL
	ErrUnsupported = errors.New("URL não suportada")
)

// Details são os dados extraídos de uma página de produto.
// Price 0 significa que o produto foi identificado mas o preço não foi encontrado.
type Details struct {
	Name         string
	Category     string
	Price        float64
	CanonicalURL string
	Seller       string
}

// Scraper define a interface para scrapers de diferentes lojas
type Scraper interface {
	// Seller é o nome do vendedor gravado na tabela sellers
	Seller() string
	SellerURL() string
	CanHandle(url string) bool
	// CanonicalURL remove parâmetros de rastreio; o resultado é a chave do produto
	CanonicalURL(url string) (string, error)
	FetchProductDetails(ctx context.Context, url string) (*Details, error)
}

// Registry mantém um registro de todos os scrapers disponíveis
type Registry struct {
	scrapers []Scraper
}

// NewRegistry cria um registro com os scrapers de Amazon e Mercado Livre
func NewRegistry(fetcher *Fetcher) *Registry {
	return NewRegistryWith(
		NewAmazonScraper(fetcher),
		NewMercadoLivreScraper(fetcher),
	)
}

// NewRegistryWith cria um registro com os scrapers informados
func NewRegistryWith(scrapers ...Scraper) *Registry {
	return &Registry{scrapers: scrapers}
}

// FindScraper encontra o scraper apropriado para uma URL
func (r *Registry) FindScraper(url string) Scraper {
	for _, scraper := range r.scrapers {
		if scraper.CanHandle(url) {
			return scraper
		}
	}
	return nil
}

// Scrapers retorna os scrapers registrados
func (r *Registry) Scrapers() []Scraper {
	return r.scrapers
}
