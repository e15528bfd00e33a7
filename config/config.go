package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const envPrefix = "DEALRADAR"

// Config contém as configurações da aplicação.
// Cada campo pode ser definido como DEALRADAR_<NOME> ou apenas <NOME>.
type Config struct {
	Env string `envconfig:"APP_ENV" default:"development"`

	DatabaseDriver string `envconfig:"DB_DRIVER" default:"sqlite3"`
	DatabaseDSN    string `envconfig:"DB_DSN" default:"./dealradar.db"`

	HTTPAddr   string        `envconfig:"HTTP_ADDR" default:":5000"`
	RedisURL   string        `envconfig:"REDIS_URL"`
	SessionTTL time.Duration `envconfig:"SESSION_TTL" default:"24h"`

	AdminEmail    string `envconfig:"ADMIN_EMAIL" default:"admin@dealradar.com"`
	AdminPassword string `envconfig:"ADMIN_PASSWORD"`

	ScanDelay      time.Duration `envconfig:"SCAN_DELAY" default:"2s"`
	FetchTimeout   time.Duration `envconfig:"FETCH_TIMEOUT" default:"15s"`
	UserAgent      string        `envconfig:"USER_AGENT" default:"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"`
	AcceptLanguage string        `envconfig:"ACCEPT_LANGUAGE" default:"en-US,en;q=0.9"`
	Referer        string        `envconfig:"REFERER" default:"https://www.google.com/"`
	RespectRobots  bool          `envconfig:"RESPECT_ROBOTS" default:"false"`

	// Fontes RSS no formato Categoria=URL,Categoria=URL
	NewsSources NewsSources `envconfig:"NEWS_SOURCES"`

	TelegramBotToken string `envconfig:"TELEGRAM_BOT_TOKEN"`
	TelegramChatID   int64  `envconfig:"TELEGRAM_CHAT_ID"`
}

// Load carrega o arquivo .env (se existir) e as variáveis de ambiente
func Load() (*Config, error) {
	// .env é opcional
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("erro ao ler variáveis de ambiente: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate verifica combinações inválidas de configuração
func (c *Config) Validate() error {
	switch c.DatabaseDriver {
	case "sqlite3", "postgres":
	default:
		return fmt.Errorf("DB_DRIVER inválido: %q (use sqlite3 ou postgres)", c.DatabaseDriver)
	}
	if c.DatabaseDSN == "" {
		return fmt.Errorf("DB_DSN não configurado")
	}
	if c.ScanDelay < 0 {
		return fmt.Errorf("SCAN_DELAY não pode ser negativo")
	}
	if c.FetchTimeout <= 0 {
		return fmt.Errorf("FETCH_TIMEOUT deve ser positivo")
	}
	return nil
}

// Environment retorna o ambiente de execução normalizado
func (c *Config) Environment() Environment {
	return ParseEnvironment(c.Env)
}

// RequireTelegram garante que o bot do Telegram pode ser iniciado
func (c *Config) RequireTelegram() error {
	if c.TelegramBotToken == "" {
		return fmt.Errorf("TELEGRAM_BOT_TOKEN não configurado")
	}
	return nil
}

// NewsSources mapeia categoria para URL do feed RSS
type NewsSources map[string]string

// Decode implementa envconfig.Decoder. O separador é "=" porque URLs contêm ":".
func (n *NewsSources) Decode(value string) error {
	sources := NewsSources{}
	for _, pair := range strings.Split(value, ",") {
		if strings.TrimSpace(pair) == "" {
			continue
		}
		category, url, ok := strings.Cut(pair, "=")
		category, url = strings.TrimSpace(category), strings.TrimSpace(url)
		if !ok || category == "" || url == "" {
			return fmt.Errorf("fonte de notícias inválida: %q", pair)
		}
		sources[category] = url
	}
	*n = sources
	return nil
}
