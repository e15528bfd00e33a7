package main

import (
	"fmt"

	"dealradar/internal/monitor"

	"github.com/spf13/cobra"
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Verificar uma vez o preço de todos os produtos rastreados",
	RunE:  runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, args []string) error {
	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	notifier, err := optionalNotifier(db)
	if err != nil {
		return err
	}

	mon := monitor.New(db, newRegistry(), notifier, cfg.ScanDelay)
	summary, err := mon.ScanAll(cmd.Context())
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), summary.Message())
	if summary.Failed > 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "%d links não puderam ser lidos.\n", summary.Failed)
	}
	if summary.Alerts > 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "%d novos alertas.\n", summary.Alerts)
	}
	return nil
}
