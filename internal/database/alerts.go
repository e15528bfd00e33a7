package database

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"dealradar/internal/models"
)

// DedupWindow é o período em que um novo alerta com o mesmo preço é suprimido
const DedupWindow = 24 * time.Hour

const alertEntryQuery = `SELECT a.id, a.user_id, u.email, p.name, sp.price, s.name, sp.source_url, a.created_at
	FROM alerts a
	JOIN users u ON u.id = a.user_id
	JOIN products p ON p.id = a.product_id
	JOIN seller_prices sp ON sp.id = a.observation_id
	JOIN sellers s ON s.id = sp.seller_id`

type watcher struct {
	userID int64
	cutoff float64
}

// evaluateWatchers cria alertas para quem acompanha o produto com alvo >= preço observado,
// exceto quando já existe alerta do mesmo usuário/produto/preço dentro de DedupWindow
// (ou para a mesma observação). onlyUser > 0 restringe a avaliação a um usuário.
// Precisa rodar dentro da transação que inseriu (ou leu) a observação.
func (db *DB) evaluateWatchers(ctx context.Context, tx *sql.Tx, obs models.Observation, onlyUser int64) ([]models.Alert, error) {
	// cutoff 0 significa "sem alvo"; preços gravados são sempre > 0
	query := "SELECT user_id, cutoff FROM cart WHERE product_id = ? AND cutoff > 0 AND cutoff >= ?"
	args := []any{obs.ProductID, obs.Price}
	if onlyUser > 0 {
		query += " AND user_id = ?"
		args = append(args, onlyUser)
	}
	query += " ORDER BY user_id" + db.dialect.lockRows

	rows, err := tx.QueryContext(ctx, db.q(query), args...)
	if err != nil {
		return nil, err
	}
	var watchers []watcher
	for rows.Next() {
		var w watcher
		if err := rows.Scan(&w.userID, &w.cutoff); err != nil {
			rows.Close()
			return nil, err
		}
		watchers = append(watchers, w)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	now := db.timestamp()
	windowStart := now.Add(-DedupWindow)

	var created []models.Alert
	for _, w := range watchers {
		var dup int
		err := tx.QueryRowContext(ctx, db.q(`SELECT COUNT(*) FROM alerts a
			JOIN seller_prices sp ON sp.id = a.observation_id
			WHERE a.user_id = ? AND a.product_id = ?
			AND (a.observation_id = ? OR (sp.price = ? AND a.created_at > ?))`),
			w.userID, obs.ProductID, obs.ID, obs.Price, windowStart,
		).Scan(&dup)
		if err != nil {
			return nil, err
		}
		if dup > 0 {
			continue
		}

		a := models.Alert{
			ProductID:     obs.ProductID,
			ObservationID: obs.ID,
			UserID:        w.userID,
			CreatedAt:     now,
			Active:        true,
		}
		err = tx.QueryRowContext(ctx,
			db.q("INSERT INTO alerts (product_id, observation_id, user_id, created_at, active) VALUES (?, ?, ?, ?, ?) RETURNING id"),
			a.ProductID, a.ObservationID, a.UserID, a.CreatedAt, a.Active,
		).Scan(&a.ID)
		if err != nil {
			if classify(err) == foreignKeyViolation {
				return nil, ErrUnknownUser
			}
			return nil, err
		}
		created = append(created, a)
	}
	return created, nil
}

// AlertHistory retorna os alertas do usuário, mais recentes primeiro
func (db *DB) AlertHistory(ctx context.Context, userID int64, limit int) ([]models.AlertEntry, error) {
	if limit <= 0 {
		limit = 30
	}
	return db.queryAlertEntries(ctx, alertEntryQuery+" WHERE a.user_id = ? ORDER BY a.created_at DESC, a.id DESC LIMIT ?", userID, limit)
}

// RecentAlerts retorna os alertas mais recentes de todos os usuários
func (db *DB) RecentAlerts(ctx context.Context, limit int) ([]models.AlertEntry, error) {
	if limit <= 0 {
		limit = 30
	}
	return db.queryAlertEntries(ctx, alertEntryQuery+" ORDER BY a.created_at DESC, a.id DESC LIMIT ?", limit)
}

// GetAlertEntry retorna um alerta pronto para notificação
func (db *DB) GetAlertEntry(ctx context.Context, alertID int64) (*models.AlertEntry, error) {
	entries, err := db.queryAlertEntries(ctx, alertEntryQuery+" WHERE a.id = ?", alertID)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, ErrNotFound
	}
	return &entries[0], nil
}

func (db *DB) queryAlertEntries(ctx context.Context, query string, args ...any) ([]models.AlertEntry, error) {
	rows, err := db.conn.QueryContext(ctx, db.q(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.AlertEntry
	for rows.Next() {
		var e models.AlertEntry
		if err := rows.Scan(&e.AlertID, &e.UserID, &e.UserEmail, &e.ProductName, &e.Price, &e.Seller, &e.SourceURL, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// CountAlerts conta os alertas do usuário para o produto
func (db *DB) CountAlerts(ctx context.Context, userID, productID int64) (int, error) {
	var n int
	err := db.conn.QueryRowContext(ctx,
		db.q("SELECT COUNT(*) FROM alerts WHERE user_id = ? AND product_id = ?"), userID, productID).Scan(&n)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return 0, err
	}
	return n, nil
}
