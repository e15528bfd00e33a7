package main

import (
	"errors"
	"fmt"

	"dealradar/internal/database"
	logx "dealradar/pkg/logger"

	"github.com/spf13/cobra"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Criar as tabelas, os vendedores e o usuário admin",
	RunE:  runSetup,
}

func init() {
	setupCmd.Flags().Bool("reset", false, "Apagar todos os dados antes de criar as tabelas")
	rootCmd.AddCommand(setupCmd)
}

func runSetup(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	if reset, _ := cmd.Flags().GetBool("reset"); reset {
		if err := db.Reset(ctx); err != nil {
			return fmt.Errorf("erro ao reiniciar banco: %w", err)
		}
		logx.Warn().Msg("Banco de dados reiniciado")
	}

	for _, s := range newRegistry().Scrapers() {
		if _, err := db.EnsureSeller(ctx, s.Seller(), s.SellerURL()); err != nil {
			return fmt.Errorf("erro ao criar vendedor %s: %w", s.Seller(), err)
		}
	}

	if cfg.AdminPassword == "" {
		logx.Warn().Msg("ADMIN_PASSWORD não configurado, usuário admin não criado")
	} else {
		_, err := db.CreateUser(ctx, "Admin", "", cfg.AdminEmail, cfg.AdminPassword)
		switch {
		case errors.Is(err, database.ErrDuplicateEmail):
			logx.Info().Str("email", cfg.AdminEmail).Msg("Usuário admin já existe")
		case err != nil:
			return fmt.Errorf("erro ao criar admin: %w", err)
		default:
			logx.Info().Str("email", cfg.AdminEmail).Msg("Usuário admin criado")
		}
	}

	fmt.Fprintln(cmd.OutOrStdout(), "Banco de dados pronto.")
	return nil
}
