package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.DatabaseDriver != "sqlite3" {
		t.Errorf("DatabaseDriver = %q, want sqlite3", cfg.DatabaseDriver)
	}
	if cfg.ScanDelay != 2*time.Second {
		t.Errorf("ScanDelay = %v, want 2s", cfg.ScanDelay)
	}
	if cfg.FetchTimeout != 15*time.Second {
		t.Errorf("FetchTimeout = %v, want 15s", cfg.FetchTimeout)
	}
	if cfg.AdminEmail != "admin@dealradar.com" {
		t.Errorf("AdminEmail = %q", cfg.AdminEmail)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DEALRADAR_SCAN_DELAY", "500ms")
	t.Setenv("TELEGRAM_CHAT_ID", "42")
	t.Setenv("NEWS_SOURCES", "Electronics=https://example.com/rss, Home=https://example.com/home.xml")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.ScanDelay != 500*time.Millisecond {
		t.Errorf("ScanDelay = %v, want 500ms", cfg.ScanDelay)
	}
	if cfg.TelegramChatID != 42 {
		t.Errorf("TelegramChatID = %d, want 42", cfg.TelegramChatID)
	}
	if got := cfg.NewsSources["Electronics"]; got != "https://example.com/rss" {
		t.Errorf("NewsSources[Electronics] = %q", got)
	}
	if got := cfg.NewsSources["Home"]; got != "https://example.com/home.xml" {
		t.Errorf("NewsSources[Home] = %q", got)
	}
	if err := cfg.RequireTelegram(); err == nil {
		t.Error("RequireTelegram sem token deveria falhar")
	}
}

func TestValidateRejectsUnknownDriver(t *testing.T) {
	t.Setenv("DB_DRIVER", "mysql")

	if _, err := Load(); err == nil {
		t.Fatal("esperava erro para driver desconhecido")
	}
}

func TestParseEnvironment(t *testing.T) {
	if !ParseEnvironment("production").IsProduction() {
		t.Error("production deveria ser produção")
	}
	if ParseEnvironment("qualquer") != Development {
		t.Error("valor desconhecido deveria virar development")
	}
}

func TestNewsSourcesDecodeRejectsMissingURL(t *testing.T) {
	var n NewsSources
	if err := n.Decode("Electronics"); err == nil {
		t.Error("esperava erro para fonte sem URL")
	}
}
