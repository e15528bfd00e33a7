// Package news busca manchetes em feeds RSS e grava as novas no banco.
// As notícias exibidas ao usuário são filtradas pelas categorias dos produtos
// que ele acompanha.
package news

import (
	"context"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"dealradar/internal/database"
	"dealradar/internal/models"
	"dealradar/internal/sanitize"
	logx "dealradar/pkg/logger"

	"github.com/mmcdole/gofeed"
	"golang.org/x/sync/errgroup"
)

// PerSource é o número de manchetes aproveitadas de cada feed
const PerSource = 3

// DefaultSources são os feeds usados quando nenhum é configurado
var DefaultSources = map[string]string{
	"Electronics": "https://www.theverge.com/rss/index.xml",
	"Home":        "https://www.apartmenttherapy.com/main.xml",
	"Fashion":     "https://www.gq.com/feed/style/rss",
}

// Result resume uma ingestão
type Result struct {
	Fetched  int
	Inserted int
	Failed   []string
}

// Ingester busca os feeds e grava as manchetes
type Ingester struct {
	db      *database.DB
	sources map[string]string
	client  *http.Client
}

// NewIngester cria o ingestor. sources vazio usa DefaultSources; client pode ser nil.
func NewIngester(db *database.DB, sources map[string]string, client *http.Client) *Ingester {
	if len(sources) == 0 {
		sources = DefaultSources
	}
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &Ingester{db: db, sources: sources, client: client}
}

// Ingest busca todos os feeds em paralelo. Um feed com erro é registrado no log e não
// impede os demais; só erros do banco interrompem a ingestão.
func (in *Ingester) Ingest(ctx context.Context) (*Result, error) {
	categories := make([]string, 0, len(in.sources))
	for c := range in.sources {
		categories = append(categories, c)
	}
	sort.Strings(categories)

	var (
		mu     sync.Mutex
		items  []models.NewsItem
		result Result
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for _, category := range categories {
		category, url := category, in.sources[category]
		g.Go(func() error {
			fetched, err := in.fetch(gctx, category, url)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				logx.Warn().Err(err).Str("category", category).Str("url", url).Msg("Erro ao buscar feed")
				result.Failed = append(result.Failed, category)
				return nil
			}
			items = append(items, fetched...)
			return nil
		})
	}
	g.Wait()

	sort.Strings(result.Failed)
	result.Fetched = len(items)
	for _, item := range items {
		inserted, err := in.db.InsertNews(ctx, item)
		if err != nil {
			return &result, err
		}
		if inserted {
			result.Inserted++
		}
	}

	logx.Info().Int("fetched", result.Fetched).Int("inserted", result.Inserted).
		Strs("failed", result.Failed).Msg("Notícias atualizadas")
	return &result, nil
}

func (in *Ingester) fetch(ctx context.Context, category, url string) ([]models.NewsItem, error) {
	fp := gofeed.NewParser()
	fp.Client = in.client

	feed, err := fp.ParseURLWithContext(url, ctx)
	if err != nil {
		return nil, err
	}

	var items []models.NewsItem
	for _, entry := range feed.Items {
		if len(items) == PerSource {
			break
		}
		link := strings.TrimSpace(entry.Link)
		title := sanitize.ASCII(entry.Title)
		if link == "" || title == "" {
			continue
		}
		item := models.NewsItem{Category: category, Title: title, URL: link}
		if entry.PublishedParsed != nil {
			item.PublishedAt = entry.PublishedParsed.UTC()
		}
		items = append(items, item)
	}
	return items, nil
}
