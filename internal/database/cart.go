package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"dealradar/internal/models"
)

// AddToCart inscreve o usuário no produto. Inscrição repetida não altera nada.
func (db *DB) AddToCart(ctx context.Context, userID, productID int64, cutoff float64) (*models.WatchEntry, error) {
	if err := checkAmount(cutoff); err != nil {
		return nil, fmt.Errorf("preço alvo %w", err)
	}
	entry := models.WatchEntry{UserID: userID, ProductID: productID, TargetPrice: roundCents(cutoff)}
	err := db.conn.QueryRowContext(ctx,
		db.q("INSERT INTO cart (user_id, product_id, cutoff) VALUES (?, ?, ?) ON CONFLICT (user_id, product_id) DO NOTHING RETURNING id"),
		userID, productID, entry.TargetPrice,
	).Scan(&entry.ID)

	switch {
	case err == nil:
		return &entry, nil
	case errors.Is(err, sql.ErrNoRows):
		return db.cartEntry(ctx, userID, productID)
	case classify(err) == foreignKeyViolation:
		return nil, db.missingReference(ctx, userID, fmt.Errorf("produto %d: %w", productID, ErrNotFound))
	default:
		return nil, err
	}
}

func (db *DB) cartEntry(ctx context.Context, userID, productID int64) (*models.WatchEntry, error) {
	var e models.WatchEntry
	err := db.conn.QueryRowContext(ctx,
		db.q("SELECT id, user_id, product_id, cutoff FROM cart WHERE user_id = ? AND product_id = ?"),
		userID, productID,
	).Scan(&e.ID, &e.UserID, &e.ProductID, &e.TargetPrice)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// UpdateTarget altera o preço alvo de um item do carrinho do usuário. Se o preço atual
// já estiver no alvo, avalia o alerta na hora; o booleano indica se um alerta foi criado.
func (db *DB) UpdateTarget(ctx context.Context, userID, cartID int64, cutoff float64) (bool, error) {
	if err := checkAmount(cutoff); err != nil {
		return false, fmt.Errorf("preço alvo %w", err)
	}

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	var productID int64
	err = tx.QueryRowContext(ctx,
		db.q("UPDATE cart SET cutoff = ? WHERE id = ? AND user_id = ? RETURNING product_id"),
		roundCents(cutoff), cartID, userID,
	).Scan(&productID)
	if errors.Is(err, sql.ErrNoRows) {
		exists, uerr := userExists(ctx, tx, db.q, userID)
		if uerr != nil {
			return false, uerr
		}
		if !exists {
			return false, ErrUnknownUser
		}
		return false, ErrNotFound
	}
	if err != nil {
		return false, err
	}

	latest, err := latestObservation(ctx, tx, db.q, productID)
	if err != nil {
		return false, err
	}

	var alerted bool
	if latest != nil {
		alerts, err := db.evaluateWatchers(ctx, tx, *latest, userID)
		if err != nil {
			return false, err
		}
		alerted = len(alerts) > 0
	}
	return alerted, tx.Commit()
}

// DeleteFromCart remove um item do carrinho do usuário
func (db *DB) DeleteFromCart(ctx context.Context, userID, cartID int64) error {
	res, err := db.conn.ExecContext(ctx, db.q("DELETE FROM cart WHERE id = ? AND user_id = ?"), cartID, userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Watchlist retorna os itens acompanhados pelo usuário com preço atual, data da última
// verificação e preço base. Itens sem observação têm CurrentPrice 0.
func (db *DB) Watchlist(ctx context.Context, userID int64) ([]models.WatchItem, error) {
	if _, err := db.GetUser(ctx, userID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrUnknownUser
		}
		return nil, err
	}

	rows, err := db.conn.QueryContext(ctx, db.q(`SELECT c.id, p.id, p.name, p.description, p.category, p.tracking_url,
			p.msrp, c.cutoff, lp.price, lp.observed_at, fp.price
		FROM cart c
		JOIN products p ON p.id = c.product_id
		LEFT JOIN seller_prices lp ON lp.id = (
			SELECT id FROM seller_prices WHERE product_id = p.id ORDER BY observed_at DESC, id DESC LIMIT 1)
		LEFT JOIN seller_prices fp ON fp.id = (
			SELECT id FROM seller_prices WHERE product_id = p.id ORDER BY observed_at ASC, id ASC LIMIT 1)
		WHERE c.user_id = ?
		ORDER BY p.name, c.id`), userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []models.WatchItem
	for rows.Next() {
		var (
			it          models.WatchItem
			msrp        float64
			current     sql.NullFloat64
			lastChecked sql.NullTime
			first       sql.NullFloat64
		)
		err := rows.Scan(&it.CartID, &it.ProductID, &it.Name, &it.Description, &it.Category, &it.TrackingURL,
			&msrp, &it.TargetPrice, &current, &lastChecked, &first)
		if err != nil {
			return nil, err
		}
		it.CurrentPrice = current.Float64
		if lastChecked.Valid {
			it.LastChecked = lastChecked.Time
		}
		it.FirstPrice = baselinePrice(first.Float64, msrp, it.CurrentPrice)
		items = append(items, it)
	}
	return items, rows.Err()
}

// missingReference decide se uma violação de chave estrangeira veio do usuário
// (sessão antiga) ou de outra referência
func (db *DB) missingReference(ctx context.Context, userID int64, other error) error {
	exists, err := userExists(ctx, db.conn, db.q, userID)
	if err != nil {
		return err
	}
	if !exists {
		return ErrUnknownUser
	}
	return other
}
