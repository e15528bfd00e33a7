package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"dealradar/internal/models"

	"golang.org/x/crypto/bcrypt"
)

// CreateUser cadastra um usuário com a senha armazenada como hash bcrypt
func (db *DB) CreateUser(ctx context.Context, firstName, lastName, email, password string) (*models.User, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, fmt.Errorf("email e senha são obrigatórios")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("erro ao gerar hash da senha: %w", err)
	}

	u := models.User{FirstName: firstName, LastName: lastName, Email: email, PasswordHash: string(hash)}
	err = db.conn.QueryRowContext(ctx,
		db.q("INSERT INTO users (fname, lname, email, pswd) VALUES (?, ?, ?, ?) RETURNING id"),
		u.FirstName, u.LastName, u.Email, u.PasswordHash,
	).Scan(&u.ID)
	if err != nil {
		if classify(err) == uniqueViolation {
			return nil, ErrDuplicateEmail
		}
		return nil, err
	}
	return &u, nil
}

// Authenticate verifica email e senha
func (db *DB) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	u, err := db.UserByEmail(ctx, email)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

// UserByEmail busca um usuário pelo email
func (db *DB) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	return db.scanUser(db.conn.QueryRowContext(ctx,
		db.q("SELECT id, fname, lname, email, pswd FROM users WHERE email = ?"), normalizeEmail(email)))
}

// GetUser busca um usuário pelo ID
func (db *DB) GetUser(ctx context.Context, id int64) (*models.User, error) {
	return db.scanUser(db.conn.QueryRowContext(ctx,
		db.q("SELECT id, fname, lname, email, pswd FROM users WHERE id = ?"), id))
}

// ListUserEmails retorna os emails cadastrados (tela de login)
func (db *DB) ListUserEmails(ctx context.Context) ([]string, error) {
	rows, err := db.conn.QueryContext(ctx, "SELECT email FROM users ORDER BY email")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var emails []string
	for rows.Next() {
		var e string
		if err := rows.Scan(&e); err != nil {
			return nil, err
		}
		emails = append(emails, e)
	}
	return emails, rows.Err()
}

func (db *DB) scanUser(row *sql.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.PasswordHash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// userExists é usado para diferenciar violações de chave estrangeira
func userExists(ctx context.Context, q querier, rebind func(string) string, id int64) (bool, error) {
	var n int
	if err := q.QueryRowContext(ctx, rebind("SELECT COUNT(*) FROM users WHERE id = ?"), id).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
