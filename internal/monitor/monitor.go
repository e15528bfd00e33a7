package monitor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"dealradar/internal/database"
	"dealradar/internal/models"
	"dealradar/internal/scraper"
	logx "dealradar/pkg/logger"

	"github.com/google/uuid"
)

// DefaultDelay é o intervalo entre requisições de uma varredura
const DefaultDelay = 2 * time.Second

// Notifier recebe os alertas criados durante uma varredura
type Notifier interface {
	NotifyAlert(ctx context.Context, alert models.AlertEntry) error
}

// Monitor gerencia a varredura de preços dos produtos rastreados
type Monitor struct {
	db       *database.DB
	registry *scraper.Registry
	notifier Notifier
	delay    time.Duration
	sleep    func(ctx context.Context, d time.Duration) error
}

// Summary é o resultado de uma varredura
type Summary struct {
	RunID   string
	Scanned int
	Updated int
	Failed  int
	Alerts  int
}

// Message é o texto exibido ao usuário ao final da varredura
func (s Summary) Message() string {
	if s.Scanned == 0 {
		return "No tracked links."
	}
	return fmt.Sprintf("Scanned %d links. Updated %d prices.", s.Scanned, s.Updated)
}

// New cria uma nova instância do monitor. notifier pode ser nil.
func New(db *database.DB, registry *scraper.Registry, notifier Notifier, delay time.Duration) *Monitor {
	if delay < 0 {
		delay = 0
	}
	return &Monitor{
		db:       db,
		registry: registry,
		notifier: notifier,
		delay:    delay,
		sleep:    sleepContext,
	}
}

// ScanAll percorre os produtos rastreados um por vez, com um intervalo fixo entre as
// requisições. Falhas de leitura da página são contadas e a varredura continua;
// erros do banco interrompem o restante do lote.
func (m *Monitor) ScanAll(ctx context.Context) (*Summary, error) {
	summary := &Summary{RunID: uuid.NewString()}
	start := time.Now()
	defer func() {
		scanDuration.Observe(time.Since(start).Seconds())
	}()

	products, err := m.db.ListTrackedProducts(ctx)
	if err != nil {
		scansTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("erro ao buscar produtos: %w", err)
	}
	logx.Info().Str("run_id", summary.RunID).Int("products", len(products)).Msg("Varredura iniciada")

	for i, product := range products {
		if i > 0 {
			if err := m.sleep(ctx, m.delay); err != nil {
				scansTotal.WithLabelValues("error").Inc()
				return summary, err
			}
		}

		summary.Scanned++
		alerts, err := m.CheckProduct(ctx, product)
		if err != nil {
			if isFetchFailure(err) {
				summary.Failed++
				fetchFailures.WithLabelValues(failureReason(err)).Inc()
				logx.Warn().Err(err).Str("run_id", summary.RunID).Int64("product_id", product.ID).
					Str("url", product.TrackingURL).Msg("Falha ao ler preço")
				continue
			}
			scansTotal.WithLabelValues("error").Inc()
			return summary, fmt.Errorf("produto %d: %w", product.ID, err)
		}

		summary.Updated++
		summary.Alerts += len(alerts)
		m.notify(ctx, alerts)
	}

	scansTotal.WithLabelValues("ok").Inc()
	logx.Info().Str("run_id", summary.RunID).Int("scanned", summary.Scanned).Int("updated", summary.Updated).
		Int("failed", summary.Failed).Int("alerts", summary.Alerts).Msg("Varredura concluída")
	return summary, nil
}

// CheckProduct busca o preço atual de um produto e registra a observação
func (m *Monitor) CheckProduct(ctx context.Context, product models.Product) ([]models.Alert, error) {
	s := m.registry.FindScraper(product.TrackingURL)
	if s == nil {
		return nil, fmt.Errorf("nenhum scraper encontrado para URL %s: %w", product.TrackingURL, scraper.ErrUnsupported)
	}

	details, err := s.FetchProductDetails(ctx, product.TrackingURL)
	if err != nil {
		return nil, err
	}
	if details.Price <= 0 {
		return nil, fmt.Errorf("%s: %w", product.TrackingURL, scraper.ErrNoPrice)
	}

	seller, err := m.db.SellerByName(ctx, s.Seller())
	if err != nil {
		return nil, fmt.Errorf("vendedor %q: %w", s.Seller(), err)
	}

	obs, alerts, err := m.db.RecordObservation(ctx, product.ID, seller.ID, details.Price, product.TrackingURL)
	if err != nil {
		return nil, err
	}
	observationsRecorded.WithLabelValues(seller.Name).Inc()
	alertsCreated.Add(float64(len(alerts)))

	logx.Debug().Int64("product_id", product.ID).Float64("price", obs.Price).Int("alerts", len(alerts)).
		Msg("Preço registrado")
	return alerts, nil
}

func (m *Monitor) notify(ctx context.Context, alerts []models.Alert) {
	if m.notifier == nil {
		return
	}
	for _, a := range alerts {
		entry, err := m.db.GetAlertEntry(ctx, a.ID)
		if err != nil {
			logx.Error().Err(err).Int64("alert_id", a.ID).Msg("Erro ao carregar alerta")
			continue
		}
		if err := m.notifier.NotifyAlert(ctx, *entry); err != nil {
			logx.Error().Err(err).Int64("alert_id", a.ID).Msg("Erro ao enviar notificação")
		}
	}
}

func isFetchFailure(err error) bool {
	return errors.Is(err, scraper.ErrNotFound) ||
		errors.Is(err, scraper.ErrBlocked) ||
		errors.Is(err, scraper.ErrNoPrice) ||
		errors.Is(err, scraper.ErrUnsupported) ||
		errors.Is(err, context.DeadlineExceeded) ||
		isTransportError(err)
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, scraper.ErrBlocked):
		return "blocked"
	case errors.Is(err, scraper.ErrNotFound):
		return "not_found"
	case errors.Is(err, scraper.ErrNoPrice):
		return "no_price"
	case errors.Is(err, scraper.ErrUnsupported):
		return "unsupported"
	default:
		return "transport"
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
