package monitor

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"dealradar/internal/database"
	"dealradar/internal/models"
	logx "dealradar/pkg/logger"
)

// Discovery é o resultado de adicionar um produto a partir de um link
type Discovery struct {
	ProductID int64
	Created   bool
	Watch     *models.WatchEntry
	Name      string
	Price     float64
}

// Discover lê a página do link, cria (ou reutiliza) o produto pela URL canônica,
// registra o preço encontrado e adiciona o produto ao carrinho do usuário com alvo 0.
// Se a página não puder ser lida nada é gravado e o erro envolve ErrDiscoveryFailed.
func (m *Monitor) Discover(ctx context.Context, userID int64, rawURL string) (*Discovery, error) {
	rawURL = strings.TrimSpace(rawURL)
	if _, err := m.db.GetUser(ctx, userID); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, database.ErrUnknownUser
		}
		return nil, err
	}

	s := m.registry.FindScraper(rawURL)
	if s == nil {
		return nil, fmt.Errorf("%w: nenhum scraper para %q", ErrDiscoveryFailed, rawURL)
	}

	details, err := s.FetchProductDetails(ctx, rawURL)
	if err != nil {
		logx.Warn().Err(err).Str("url", rawURL).Msg("Falha ao ler link")
		return nil, fmt.Errorf("%w: %v", ErrDiscoveryFailed, err)
	}

	// O vendedor precisa existir antes de qualquer escrita
	sellerID, err := m.db.EnsureSeller(ctx, s.Seller(), s.SellerURL())
	if err != nil {
		return nil, err
	}

	productID, created, err := m.db.GetOrCreateProduct(ctx, models.Product{
		Name:        details.Name,
		Description: s.Seller() + " Import",
		Category:    details.Category,
		MSRP:        details.Price,
		TrackingURL: details.CanonicalURL,
	})
	if err != nil {
		return nil, err
	}

	if details.Price > 0 {
		_, alerts, err := m.db.RecordObservation(ctx, productID, sellerID, details.Price, details.CanonicalURL)
		if err != nil {
			return nil, err
		}
		observationsRecorded.WithLabelValues(s.Seller()).Inc()
		alertsCreated.Add(float64(len(alerts)))
		m.notify(ctx, alerts)
	}

	watch, err := m.db.AddToCart(ctx, userID, productID, 0)
	if err != nil {
		return nil, err
	}

	logx.Info().Int64("product_id", productID).Bool("created", created).Str("url", details.CanonicalURL).
		Float64("price", details.Price).Msg("Produto adicionado")
	return &Discovery{
		ProductID: productID,
		Created:   created,
		Watch:     watch,
		Name:      details.Name,
		Price:     details.Price,
	}, nil
}
