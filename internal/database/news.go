package database

import (
	"context"

	"dealradar/internal/models"
)

// InsertNews grava a notícia se a URL ainda não existir. Retorna true se inseriu.
func (db *DB) InsertNews(ctx context.Context, item models.NewsItem) (bool, error) {
	published := item.PublishedAt
	if published.IsZero() {
		published = db.timestamp()
	}
	res, err := db.conn.ExecContext(ctx,
		db.q("INSERT INTO news (category, title, url, published_at) VALUES (?, ?, ?, ?) ON CONFLICT (url) DO NOTHING"),
		item.Category, item.Title, item.URL, published.UTC(),
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// RelevantNews retorna notícias das categorias dos produtos que o usuário acompanha.
// Sem nenhuma notícia dessas categorias (produtos importados por link têm categoria
// própria), retorna as mais recentes de qualquer categoria.
func (db *DB) RelevantNews(ctx context.Context, userID int64, limit int) ([]models.NewsItem, error) {
	if limit <= 0 {
		limit = 10
	}
	items, err := db.queryNews(ctx, `SELECT n.id, n.category, n.title, n.url, n.published_at
		FROM news n
		WHERE n.category IN (
			SELECT p.category FROM products p JOIN cart c ON c.product_id = p.id WHERE c.user_id = ?)
		ORDER BY n.published_at DESC, n.id DESC
		LIMIT ?`, userID, limit)
	if err != nil || len(items) > 0 {
		return items, err
	}
	return db.queryNews(ctx, `SELECT id, category, title, url, published_at
		FROM news
		ORDER BY published_at DESC, id DESC
		LIMIT ?`, limit)
}

func (db *DB) queryNews(ctx context.Context, query string, args ...any) ([]models.NewsItem, error) {
	rows, err := db.conn.QueryContext(ctx, db.q(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []models.NewsItem
	for rows.Next() {
		var n models.NewsItem
		if err := rows.Scan(&n.ID, &n.Category, &n.Title, &n.URL, &n.PublishedAt); err != nil {
			return nil, err
		}
		items = append(items, n)
	}
	return items, rows.Err()
}
