package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"dealradar/internal/monitor"
	"dealradar/internal/web"
	logx "dealradar/pkg/logger"
	"dealradar/pkg/redis"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Iniciar o servidor web",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "Endereço HTTP (sobrescreve HTTP_ADDR)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if v, _ := cmd.Flags().GetString("addr"); v != "" {
		cfg.HTTPAddr = v
	}

	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	var sessions web.SessionStore
	if cfg.RedisURL != "" {
		rc := redis.Config{URL: cfg.RedisURL, ReadTimeout: 3 * time.Second, WriteTimeout: 3 * time.Second, DialTimeout: 5 * time.Second}
		client, err := rc.New(ctx)
		if err != nil {
			return err
		}
		defer client.Close()
		sessions = web.NewRedisStore(client)
		logx.Info().Msg("Sessões no Redis")
	}

	notifier, err := optionalNotifier(db)
	if err != nil {
		return err
	}

	if cfg.Environment().IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	srv := web.New(db, monitor.New(db, newRegistry(), notifier, cfg.ScanDelay), sessions, web.Options{
		AdminEmail:   cfg.AdminEmail,
		SessionTTL:   cfg.SessionTTL,
		SecureCookie: cfg.Environment().IsProduction(),
	})

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logx.Info().Str("addr", cfg.HTTPAddr).Msg("Servidor web iniciado")
		errc <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logx.Info().Msg("Encerrando servidor web...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}
