package main

import (
	"fmt"

	"dealradar/internal/news"

	"github.com/spf13/cobra"
)

var newsCmd = &cobra.Command{
	Use:   "news",
	Short: "Buscar as manchetes dos feeds RSS",
	RunE:  runNews,
}

func init() {
	rootCmd.AddCommand(newsCmd)
}

func runNews(cmd *cobra.Command, args []string) error {
	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	result, err := news.NewIngester(db, cfg.NewsSources, nil).Ingest(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%d notícias lidas, %d novas.\n", result.Fetched, result.Inserted)
	for _, category := range result.Failed {
		fmt.Fprintf(cmd.OutOrStdout(), "Falha no feed %s\n", category)
	}
	return nil
}
