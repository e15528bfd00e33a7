package main

import (
	"dealradar/internal/bot"
	"dealradar/internal/database"
	"dealradar/internal/monitor"
	logx "dealradar/pkg/logger"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/spf13/cobra"
)

var botCmd = &cobra.Command{
	Use:   "bot",
	Short: "Iniciar o bot do Telegram",
	RunE:  runBot,
}

func init() {
	rootCmd.AddCommand(botCmd)
}

func runBot(cmd *cobra.Command, args []string) error {
	if err := cfg.RequireTelegram(); err != nil {
		return err
	}

	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	api, err := bot.Init(cfg.TelegramBotToken)
	if err != nil {
		return err
	}
	if cfg.TelegramChatID == 0 {
		logx.Warn().Msg("TELEGRAM_CHAT_ID não configurado: qualquer chat pode usar o bot e alertas não serão enviados")
	}

	b := bot.New(api, db, nil, cfg.TelegramChatID)
	b.SetMonitor(monitor.New(db, newRegistry(), b, cfg.ScanDelay))

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := api.GetUpdatesChan(u)
	defer api.StopReceivingUpdates()

	logx.Info().Msg("Bot iniciado")
	b.Run(cmd.Context(), updates)
	logx.Info().Msg("Encerrando bot...")
	return nil
}

// optionalNotifier retorna o notificador do Telegram quando o token e o chat estão
// configurados. Sem eles os alertas ficam só no banco.
func optionalNotifier(db *database.DB) (monitor.Notifier, error) {
	if cfg.TelegramBotToken == "" || cfg.TelegramChatID == 0 {
		return nil, nil
	}
	api, err := bot.Init(cfg.TelegramBotToken)
	if err != nil {
		return nil, err
	}
	return bot.New(api, db, nil, cfg.TelegramChatID), nil
}
