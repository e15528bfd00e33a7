package database

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	logx "dealradar/pkg/logger"
)

// DB encapsula a conexão com o banco de dados
type DB struct {
	conn    *sql.DB
	dialect dialect
	now     func() time.Time
}

// Option altera a configuração do DB
type Option func(*DB)

// WithClock substitui o relógio usado para carimbar observações e alertas
func WithClock(now func() time.Time) Option {
	return func(db *DB) {
		db.now = now
	}
}

// New abre o banco de dados e cria as tabelas necessárias.
// driver pode ser "sqlite3" (dsn é o caminho do arquivo) ou "postgres".
func New(driver, dsn string, opts ...Option) (*DB, error) {
	d, err := dialectFor(driver)
	if err != nil {
		return nil, err
	}

	conn, err := sql.Open(driver, d.dsn(dsn))
	if err != nil {
		return nil, err
	}
	d.configure(conn)

	db := &DB{conn: conn, dialect: d, now: time.Now}
	for _, opt := range opts {
		opt(db)
	}

	if err := db.init(context.Background()); err != nil {
		conn.Close()
		return nil, err
	}

	logx.Info().Str("driver", driver).Msg("Banco de dados inicializado com sucesso")
	return db, nil
}

// Close fecha a conexão com o banco de dados
func (db *DB) Close() error {
	return db.conn.Close()
}

// Ping verifica se o banco responde
func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

// init cria as tabelas necessárias
func (db *DB) init(ctx context.Context) error {
	for _, stmt := range db.dialect.schema {
		if _, err := db.conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("erro ao criar schema: %w", err)
		}
	}
	return nil
}

// Reset apaga todas as tabelas e recria o schema vazio
func (db *DB) Reset(ctx context.Context) error {
	for _, table := range dropOrder {
		if _, err := db.conn.ExecContext(ctx, "DROP TABLE IF EXISTS "+table+db.dialect.dropSuffix); err != nil {
			return fmt.Errorf("erro ao remover tabela %s: %w", table, err)
		}
	}
	logx.Warn().Msg("Tabelas removidas, recriando schema")
	return db.init(ctx)
}

func (db *DB) timestamp() time.Time {
	return db.now().UTC()
}

// q adapta os placeholders "?" para o dialeto em uso
func (db *DB) q(query string) string {
	return db.dialect.rebind(query)
}

// querier é satisfeito por *sql.DB e *sql.Tx
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type dialect struct {
	name       string
	schema     []string
	dropSuffix string
	// lockRows é anexado às consultas que precisam travar as linhas lidas dentro da transação
	lockRows  string
	numbered  bool
	dsn       func(string) string
	configure func(*sql.DB)
}

func dialectFor(driver string) (dialect, error) {
	switch driver {
	case "sqlite3":
		return dialect{
			name:   driver,
			schema: sqliteSchema,
			dsn:    sqliteDSN,
			// Uma única conexão: escritas são serializadas e as transações são IMMEDIATE
			configure: func(conn *sql.DB) { conn.SetMaxOpenConns(1) },
		}, nil
	case "postgres":
		return dialect{
			name:       driver,
			schema:     postgresSchema,
			dropSuffix: " CASCADE",
			lockRows:   " FOR UPDATE",
			numbered:   true,
			dsn:        func(dsn string) string { return dsn },
			configure: func(conn *sql.DB) {
				conn.SetMaxOpenConns(25)
				conn.SetMaxIdleConns(5)
				conn.SetConnMaxLifetime(5 * time.Minute)
			},
		}, nil
	default:
		return dialect{}, fmt.Errorf("driver de banco não suportado: %s", driver)
	}
}

func sqliteDSN(dsn string) string {
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_foreign_keys=on&_txlock=immediate&_busy_timeout=5000"
}

func (d dialect) rebind(query string) string {
	if !d.numbered {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
