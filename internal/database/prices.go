package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"

	"dealradar/internal/models"

	"github.com/shopspring/decimal"
)

const observationColumns = "id, product_id, seller_id, price, observed_at, source_url"

// RecordObservation adiciona um preço observado e, na mesma transação, avalia os alertas
// de todos os usuários que acompanham o produto. Observações existentes nunca são alteradas.
func (db *DB) RecordObservation(ctx context.Context, productID, sellerID int64, price float64, sourceURL string) (*models.Observation, []models.Alert, error) {
	if err := checkAmount(price); err != nil || price == 0 {
		return nil, nil, fmt.Errorf("preço %v: %w", price, ErrInvalidAmount)
	}

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, nil, err
	}
	defer tx.Rollback()

	obs := models.Observation{
		ProductID:  productID,
		SellerID:   sellerID,
		Price:      roundCents(price),
		ObservedAt: db.timestamp(),
		SourceURL:  sourceURL,
	}
	err = tx.QueryRowContext(ctx,
		db.q("INSERT INTO seller_prices (product_id, seller_id, price, observed_at, source_url) VALUES (?, ?, ?, ?, ?) RETURNING id"),
		obs.ProductID, obs.SellerID, obs.Price, obs.ObservedAt, obs.SourceURL,
	).Scan(&obs.ID)
	if err != nil {
		if classify(err) == foreignKeyViolation {
			return nil, nil, fmt.Errorf("produto %d ou vendedor %d inexistente: %w", productID, sellerID, ErrNotFound)
		}
		return nil, nil, err
	}

	alerts, err := db.evaluateWatchers(ctx, tx, obs, 0)
	if err != nil {
		return nil, nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, err
	}
	return &obs, alerts, nil
}

// LatestPrice retorna a observação mais recente do produto (empate: maior ID).
// Retorna nil quando o produto ainda não tem observações.
func (db *DB) LatestPrice(ctx context.Context, productID int64) (*models.Observation, error) {
	return latestObservation(ctx, db.conn, db.q, productID)
}

func latestObservation(ctx context.Context, q querier, rebind func(string) string, productID int64) (*models.Observation, error) {
	var o models.Observation
	err := q.QueryRowContext(ctx,
		rebind("SELECT "+observationColumns+" FROM seller_prices WHERE product_id = ? ORDER BY observed_at DESC, id DESC LIMIT 1"),
		productID,
	).Scan(&o.ID, &o.ProductID, &o.SellerID, &o.Price, &o.ObservedAt, &o.SourceURL)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// FirstPrice retorna o preço base usado na variação percentual: a primeira observação,
// depois o preço sugerido (MSRP), depois o preço atual. Zero se nada existir.
func (db *DB) FirstPrice(ctx context.Context, productID int64) (float64, error) {
	var first sql.NullFloat64
	err := db.conn.QueryRowContext(ctx,
		db.q("SELECT price FROM seller_prices WHERE product_id = ? ORDER BY observed_at ASC, id ASC LIMIT 1"),
		productID,
	).Scan(&first)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return 0, err
	}

	p, err := db.GetProduct(ctx, productID)
	if err != nil {
		return 0, err
	}

	var current float64
	if latest, err := db.LatestPrice(ctx, productID); err != nil {
		return 0, err
	} else if latest != nil {
		current = latest.Price
	}
	return baselinePrice(first.Float64, p.MSRP, current), nil
}

// MinPrice retorna o menor preço já observado. O booleano é falso sem observações.
func (db *DB) MinPrice(ctx context.Context, productID int64) (float64, bool, error) {
	var lowest sql.NullFloat64
	err := db.conn.QueryRowContext(ctx,
		db.q("SELECT MIN(price) FROM seller_prices WHERE product_id = ?"), productID).Scan(&lowest)
	if err != nil {
		return 0, false, err
	}
	return lowest.Float64, lowest.Valid, nil
}

// PriceHistory retorna as observações do produto, mais recentes primeiro
func (db *DB) PriceHistory(ctx context.Context, productID int64, limit int) ([]models.Observation, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := db.conn.QueryContext(ctx,
		db.q("SELECT "+observationColumns+" FROM seller_prices WHERE product_id = ? ORDER BY observed_at DESC, id DESC LIMIT ?"),
		productID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var history []models.Observation
	for rows.Next() {
		var o models.Observation
		if err := rows.Scan(&o.ID, &o.ProductID, &o.SellerID, &o.Price, &o.ObservedAt, &o.SourceURL); err != nil {
			return nil, err
		}
		history = append(history, o)
	}
	return history, rows.Err()
}

func baselinePrice(first, msrp, current float64) float64 {
	switch {
	case first > 0:
		return first
	case msrp > 0:
		return msrp
	default:
		return current
	}
}

// checkAmount rejeita valores que não podem ser gravados como dinheiro
func checkAmount(v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return fmt.Errorf("%v: %w", v, ErrInvalidAmount)
	}
	return nil
}

func roundCents(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return f
}
