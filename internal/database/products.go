package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"dealradar/internal/models"
)

const productColumns = "id, name, description, category, msrp, tracking_url"

// CreateProduct adiciona um produto (cadastro manual do admin, sem URL de rastreio)
func (db *DB) CreateProduct(ctx context.Context, p models.Product) (int64, error) {
	return insertProduct(ctx, db.conn, db.q, p)
}

// GetOrCreateProduct reutiliza o produto com a mesma URL canônica ou cria um novo.
// O booleano indica se o produto foi criado.
func (db *DB) GetOrCreateProduct(ctx context.Context, p models.Product) (int64, bool, error) {
	if p.TrackingURL == "" {
		id, err := db.CreateProduct(ctx, p)
		return id, err == nil, err
	}

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, false, err
	}
	defer tx.Rollback()

	var id int64
	err = tx.QueryRowContext(ctx, db.q("SELECT id FROM products WHERE tracking_url = ?"), p.TrackingURL).Scan(&id)
	switch {
	case err == nil:
		return id, false, tx.Commit()
	case !errors.Is(err, sql.ErrNoRows):
		return 0, false, err
	}

	id, err = insertProduct(ctx, tx, db.q, p)
	if classify(err) == uniqueViolation {
		// Outro escritor criou o mesmo produto entre a busca e a inserção
		tx.Rollback()
		return db.productIDByURL(ctx, p.TrackingURL)
	}
	if err != nil {
		return 0, false, err
	}
	return id, true, tx.Commit()
}

func (db *DB) productIDByURL(ctx context.Context, url string) (int64, bool, error) {
	var id int64
	err := db.conn.QueryRowContext(ctx, db.q("SELECT id FROM products WHERE tracking_url = ?"), url).Scan(&id)
	return id, false, err
}

func insertProduct(ctx context.Context, q querier, rebind func(string) string, p models.Product) (int64, error) {
	if p.Name == "" {
		return 0, fmt.Errorf("nome do produto é obrigatório")
	}
	if err := checkAmount(p.MSRP); err != nil {
		return 0, fmt.Errorf("msrp %w", err)
	}
	var id int64
	err := q.QueryRowContext(ctx,
		rebind("INSERT INTO products (name, description, category, msrp, tracking_url) VALUES (?, ?, ?, ?, ?) RETURNING id"),
		p.Name, p.Description, p.Category, roundCents(p.MSRP), p.TrackingURL,
	).Scan(&id)
	return id, err
}

// GetProduct retorna um produto pelo ID
func (db *DB) GetProduct(ctx context.Context, id int64) (*models.Product, error) {
	var p models.Product
	err := db.conn.QueryRowContext(ctx, db.q("SELECT "+productColumns+" FROM products WHERE id = ?"), id).
		Scan(&p.ID, &p.Name, &p.Description, &p.Category, &p.MSRP, &p.TrackingURL)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ListProducts retorna todos os produtos
func (db *DB) ListProducts(ctx context.Context) ([]models.Product, error) {
	return db.queryProducts(ctx, "SELECT "+productColumns+" FROM products ORDER BY id")
}

// ListTrackedProducts retorna os produtos com URL de rastreio (alvo da varredura)
func (db *DB) ListTrackedProducts(ctx context.Context) ([]models.Product, error) {
	return db.queryProducts(ctx, "SELECT "+productColumns+" FROM products WHERE tracking_url <> '' ORDER BY id")
}

func (db *DB) queryProducts(ctx context.Context, query string, args ...any) ([]models.Product, error) {
	rows, err := db.conn.QueryContext(ctx, db.q(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []models.Product
	for rows.Next() {
		var p models.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Category, &p.MSRP, &p.TrackingURL); err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// DeleteProduct remove um produto e, em cascata, preços, carrinhos e alertas
func (db *DB) DeleteProduct(ctx context.Context, id int64) error {
	res, err := db.conn.ExecContext(ctx, db.q("DELETE FROM products WHERE id = ?"), id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// EnsureSeller cria o vendedor se ainda não existir e retorna seu ID
func (db *DB) EnsureSeller(ctx context.Context, name, url string) (int64, error) {
	s, err := db.SellerByName(ctx, name)
	if err == nil {
		return s.ID, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return 0, err
	}

	var id int64
	err = db.conn.QueryRowContext(ctx,
		db.q("INSERT INTO sellers (name, url) VALUES (?, ?) RETURNING id"), name, url).Scan(&id)
	if classify(err) == uniqueViolation {
		s, err := db.SellerByName(ctx, name)
		if err != nil {
			return 0, err
		}
		return s.ID, nil
	}
	return id, err
}

// SellerByName busca um vendedor pelo nome
func (db *DB) SellerByName(ctx context.Context, name string) (*models.Seller, error) {
	var s models.Seller
	err := db.conn.QueryRowContext(ctx, db.q("SELECT id, name, url FROM sellers WHERE name = ?"), name).
		Scan(&s.ID, &s.Name, &s.URL)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}
