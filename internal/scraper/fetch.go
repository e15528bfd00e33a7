package scraper

import (
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/brotli"
)

const maxBodySize = 10 << 20

// FetchConfig são os cabeçalhos e limites usados em todas as requisições
type FetchConfig struct {
	UserAgent      string
	AcceptLanguage string
	Referer        string
	Timeout        time.Duration
	RespectRobots  bool
}

// DefaultFetchConfig retorna uma configuração de navegador desktop
func DefaultFetchConfig() FetchConfig {
	return FetchConfig{
		UserAgent:      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		AcceptLanguage: "en-US,en;q=0.9",
		Referer:        "https://www.google.com/",
		Timeout:        15 * time.Second,
	}
}

// Fetcher baixa páginas de produto e devolve o documento HTML
type Fetcher struct {
	cfg    FetchConfig
	client *http.Client
	robots *RobotsChecker
}

// NewFetcher cria um Fetcher. client pode ser nil.
func NewFetcher(cfg FetchConfig, client *http.Client) *Fetcher {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	return &Fetcher{
		cfg:    cfg,
		client: client,
		robots: NewRobotsChecker(client, cfg.RespectRobots),
	}
}

// Document baixa a URL e interpreta o HTML. Respostas 403/429/503 viram ErrBlocked e
// os demais status não-2xx viram ErrNotFound.
func (f *Fetcher) Document(ctx context.Context, url string) (*goquery.Document, error) {
	allowed, err := f.robots.IsAllowed(ctx, f.cfg.UserAgent, url)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, fmt.Errorf("robots.txt não permite %s: %w", url, ErrBlocked)
	}

	ctx, cancel := context.WithTimeout(ctx, f.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", f.cfg.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Encoding", "gzip, br")
	if f.cfg.AcceptLanguage != "" {
		req.Header.Set("Accept-Language", f.cfg.AcceptLanguage)
	}
	if f.cfg.Referer != "" {
		req.Header.Set("Referer", f.cfg.Referer)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusForbidden,
		resp.StatusCode == http.StatusTooManyRequests,
		resp.StatusCode == http.StatusServiceUnavailable:
		return nil, fmt.Errorf("status code: %d: %w", resp.StatusCode, ErrBlocked)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, fmt.Errorf("status code: %d: %w", resp.StatusCode, ErrNotFound)
	}

	body, err := decodeBody(resp)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	return goquery.NewDocumentFromReader(io.LimitReader(body, maxBodySize))
}

// decodeBody trata Content-Encoding, já que pedimos gzip/br explicitamente
func decodeBody(resp *http.Response) (io.ReadCloser, error) {
	switch resp.Header.Get("Content-Encoding") {
	case "gzip":
		r, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("gzip reader: %w", err)
		}
		return r, nil
	case "br":
		return io.NopCloser(brotli.NewReader(resp.Body)), nil
	default:
		return io.NopCloser(resp.Body), nil
	}
}
