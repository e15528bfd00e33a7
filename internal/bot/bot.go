package bot

import (
	"context"
	"fmt"
	"strings"

	"dealradar/internal/database"
	"dealradar/internal/models"
	"dealradar/internal/monitor"
	logx "dealradar/pkg/logger"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Sender é a parte da API do Telegram usada pelo bot (*tgbotapi.BotAPI)
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Bot atende comandos do Telegram e envia os alertas de preço
type Bot struct {
	api     Sender
	db      *database.DB
	monitor *monitor.Monitor
	// chatID é o único chat autorizado e o destino dos alertas. Zero libera todos os chats.
	chatID int64
}

// Init inicializa o bot do Telegram
func Init(token string) (*tgbotapi.BotAPI, error) {
	if token == "" {
		return nil, fmt.Errorf("TELEGRAM_BOT_TOKEN não configurado. Verifique o arquivo .env")
	}

	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		if err.Error() == "Unauthorized" {
			return nil, fmt.Errorf("token do Telegram inválido ou expirado. Verifique o TELEGRAM_BOT_TOKEN no arquivo .env. Para obter um token, fale com @BotFather no Telegram")
		}
		return nil, fmt.Errorf("erro ao conectar com Telegram: %w", err)
	}

	api.Debug = false
	logx.Info().Str("username", api.Self.UserName).Msg("Bot autorizado")
	return api, nil
}

// New cria o bot. monitor pode ser nil quando só as notificações são usadas.
func New(api Sender, db *database.DB, mon *monitor.Monitor, chatID int64) *Bot {
	return &Bot{api: api, db: db, monitor: mon, chatID: chatID}
}

// SetMonitor define o monitor usado pelos comandos /scan, /check e /add
func (b *Bot) SetMonitor(mon *monitor.Monitor) {
	b.monitor = mon
}

// NotifyAlert envia o alerta para o chat configurado
func (b *Bot) NotifyAlert(ctx context.Context, alert models.AlertEntry) error {
	if b.chatID == 0 {
		logx.Debug().Int64("alert_id", alert.AlertID).Msg("TELEGRAM_CHAT_ID não configurado, alerta não enviado")
		return nil
	}

	text := fmt.Sprintf(
		"🎉 <b>PROMOÇÃO DETECTADA!</b>\n\n"+
			"Produto: %s\n"+
			"Preço atual: %s (%s)\n"+
			"Usuário: %s\n"+
			"\nLink: %s",
		escapeHTML(alert.ProductName),
		formatPrice(alert.Seller, alert.Price),
		escapeHTML(alert.Seller),
		escapeHTML(alert.UserEmail),
		alert.SourceURL,
	)
	if err := b.sendHTML(b.chatID, text); err != nil {
		return fmt.Errorf("erro ao enviar alerta %d: %w", alert.AlertID, err)
	}
	logx.Info().Int64("alert_id", alert.AlertID).Msg("Notificação enviada")
	return nil
}

// sendHTML envia a mensagem em HTML e, se o Telegram recusar, sem formatação
func (b *Bot) sendHTML(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true
	if _, err := b.api.Send(msg); err != nil {
		logx.Warn().Err(err).Msg("Erro ao enviar mensagem com HTML")
		msg.ParseMode = ""
		_, err = b.api.Send(msg)
		return err
	}
	return nil
}

func (b *Bot) send(chatID int64, text string) {
	if _, err := b.api.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		logx.Error().Err(err).Int64("chat_id", chatID).Msg("Erro ao enviar mensagem")
	}
}

// escapeHTML escapa caracteres especiais do HTML
func escapeHTML(text string) string {
	text = strings.ReplaceAll(text, "&", "&amp;")
	text = strings.ReplaceAll(text, "<", "&lt;")
	text = strings.ReplaceAll(text, ">", "&gt;")
	return text
}

func formatPrice(seller string, price float64) string {
	if seller == "Mercado Livre" {
		return fmt.Sprintf("R$ %.2f", price)
	}
	return fmt.Sprintf("$%.2f", price)
}
