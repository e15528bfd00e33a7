package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"dealradar/config"
	"dealradar/internal/database"
	"dealradar/internal/scraper"
	logx "dealradar/pkg/logger"

	"github.com/spf13/cobra"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:           "dealradar",
	Short:         "DealRadar - rastreador de preços com alertas",
	Long:          "Rastreia links de produtos, registra os preços encontrados e alerta quando o preço chega ao alvo de cada usuário.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute roda o comando escolhido; SIGINT/SIGTERM cancelam o contexto
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// atribuído aqui para evitar ciclo de inicialização (rootCmd -> initConfig -> rootCmd)
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return initConfig()
	}
	rootCmd.PersistentFlags().String("db", "", "DSN do banco (sobrescreve DB_DSN)")
	rootCmd.PersistentFlags().String("driver", "", "Driver do banco: sqlite3 ou postgres (sobrescreve DB_DRIVER)")
	rootCmd.PersistentFlags().String("env", "", "Ambiente: development, testing ou production (sobrescreve APP_ENV)")
}

func initConfig() error {
	var err error
	cfg, err = config.Load()
	if err != nil {
		return err
	}

	// Override from flags
	if v, _ := rootCmd.PersistentFlags().GetString("db"); v != "" {
		cfg.DatabaseDSN = v
	}
	if v, _ := rootCmd.PersistentFlags().GetString("driver"); v != "" {
		cfg.DatabaseDriver = v
	}
	if v, _ := rootCmd.PersistentFlags().GetString("env"); v != "" {
		cfg.Env = v
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logx.Init(logx.LoggerOpts{Environment: cfg.Environment()})
	return nil
}

func openDB() (*database.DB, error) {
	db, err := database.New(cfg.DatabaseDriver, cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("erro ao inicializar banco de dados: %w", err)
	}
	logx.Debug().Str("driver", cfg.DatabaseDriver).Msg("Banco de dados aberto")
	return db, nil
}

func newRegistry() *scraper.Registry {
	fetcher := scraper.NewFetcher(scraper.FetchConfig{
		UserAgent:      cfg.UserAgent,
		AcceptLanguage: cfg.AcceptLanguage,
		Referer:        cfg.Referer,
		Timeout:        cfg.FetchTimeout,
		RespectRobots:  cfg.RespectRobots,
	}, nil)
	return scraper.NewRegistry(fetcher)
}
