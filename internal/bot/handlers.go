package bot

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"dealradar/internal/database"
	"dealradar/internal/monitor"
	logx "dealradar/pkg/logger"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const helpText = `🤖 <b>DealRadar</b>

<b>Comandos disponíveis:</b>

<b>/list</b> - Listar os produtos rastreados com o último preço

<b>/alerts</b> - Mostrar os alertas mais recentes

<b>/scan</b> - Verificar o preço de todos os produtos agora

<b>/check &lt;id&gt;</b> - Verificar o preço de um produto agora
Exemplo: /check 1

<b>/history &lt;id&gt;</b> - Mostrar o histórico de preços de um produto
Exemplo: /history 1

<b>/add &lt;email&gt; &lt;URL&gt; [preço_alvo]</b> - Adicionar produto ao carrinho de um usuário
Exemplo: /add ana@example.com https://www.amazon.com/dp/B08N5WRWNW 45

<b>/remove &lt;id&gt;</b> - Remover produto do rastreamento
Exemplo: /remove 1

<b>/help</b> - Mostrar esta mensagem de ajuda
`

const historyLimit = 10

// Run atende as atualizações até o canal fechar ou o contexto terminar
func (b *Bot) Run(ctx context.Context, updates tgbotapi.UpdatesChannel) {
	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if update.Message != nil {
				b.HandleMessage(ctx, update.Message)
			}
		}
	}
}

// HandleMessage interpreta e executa um comando
func (b *Bot) HandleMessage(ctx context.Context, message *tgbotapi.Message) {
	parts := strings.Fields(message.Text)
	if len(parts) == 0 {
		return
	}
	chatID := message.Chat.ID

	// Remover @botname se presente
	command := strings.ToLower(parts[0])
	if idx := strings.Index(command, "@"); idx > 0 {
		command = command[:idx]
	}

	// Comandos públicos (não precisam de autorização)
	isPublicCommand := command == "/start" || command == "/help"
	if !isPublicCommand && b.chatID != 0 && chatID != b.chatID {
		b.send(chatID, "Você não está autorizado a usar este bot.")
		return
	}

	switch command {
	case "/start", "/help":
		if err := b.sendHTML(chatID, helpText); err != nil {
			logx.Error().Err(err).Msg("Erro ao enviar mensagem de ajuda")
		}
	case "/list":
		b.handleList(ctx, chatID)
	case "/alerts":
		b.handleAlerts(ctx, chatID)
	case "/scan":
		b.handleScan(ctx, chatID)
	case "/check":
		b.handleCheck(ctx, chatID, parts[1:])
	case "/history":
		b.handleHistory(ctx, chatID, parts[1:])
	case "/add":
		b.handleAdd(ctx, chatID, parts[1:])
	case "/remove":
		b.handleRemove(ctx, chatID, parts[1:])
	default:
		b.send(chatID, "Comando não reconhecido. Use /help para ver os comandos disponíveis.")
	}
}

func (b *Bot) handleList(ctx context.Context, chatID int64) {
	products, err := b.db.ListTrackedProducts(ctx)
	if err != nil {
		b.send(chatID, fmt.Sprintf("❌ Erro ao listar produtos: %v", err))
		return
	}
	if len(products) == 0 {
		b.send(chatID, "📋 Nenhum produto sendo rastreado no momento.")
		return
	}

	var response strings.Builder
	response.WriteString("📋 <b>Produtos rastreados:</b>\n\n")
	for _, p := range products {
		fmt.Fprintf(&response, "🆔 <b>ID: %d</b>\n", p.ID)
		fmt.Fprintf(&response, "📦 %s\n", escapeHTML(p.Name))

		latest, err := b.db.LatestPrice(ctx, p.ID)
		if err != nil {
			b.send(chatID, fmt.Sprintf("❌ Erro ao buscar preço: %v", err))
			return
		}
		if latest != nil {
			fmt.Fprintf(&response, "💰 <b>Preço atual: %.2f</b>\n", latest.Price)
			if lowest, ok, err := b.db.MinPrice(ctx, p.ID); err == nil && ok && lowest < latest.Price {
				fmt.Fprintf(&response, "📉 Menor preço: %.2f\n", lowest)
			}
			fmt.Fprintf(&response, "🕐 Última verificação: %s\n", latest.ObservedAt.Format("02/01/2006 15:04"))
		} else {
			response.WriteString("💰 <b>Preço atual: Não verificado ainda</b>\n")
		}
		fmt.Fprintf(&response, "🔗 %s\n\n", p.TrackingURL)
	}

	if err := b.sendHTML(chatID, response.String()); err != nil {
		logx.Error().Err(err).Msg("Erro ao enviar lista de produtos")
	}
}

func (b *Bot) handleAlerts(ctx context.Context, chatID int64) {
	alerts, err := b.db.RecentAlerts(ctx, 10)
	if err != nil {
		b.send(chatID, fmt.Sprintf("❌ Erro ao buscar alertas: %v", err))
		return
	}
	if len(alerts) == 0 {
		b.send(chatID, "🔕 Nenhum alerta registrado.")
		return
	}

	var response strings.Builder
	response.WriteString("🔔 <b>Alertas recentes:</b>\n\n")
	for _, a := range alerts {
		fmt.Fprintf(&response, "%s · %s · %s · %s\n",
			a.CreatedAt.Format("02/01 15:04"),
			escapeHTML(a.ProductName),
			formatPrice(a.Seller, a.Price),
			escapeHTML(a.UserEmail),
		)
	}
	if err := b.sendHTML(chatID, response.String()); err != nil {
		logx.Error().Err(err).Msg("Erro ao enviar alertas")
	}
}

func (b *Bot) handleScan(ctx context.Context, chatID int64) {
	if b.monitor == nil {
		b.send(chatID, "❌ Monitor não configurado.")
		return
	}
	b.send(chatID, "⏳ Verificando preços...")

	summary, err := b.monitor.ScanAll(ctx)
	if err != nil {
		logx.Error().Err(err).Msg("Erro na varredura")
		b.send(chatID, fmt.Sprintf("❌ Erro na varredura: %v", err))
		return
	}
	text := fmt.Sprintf("✅ %s", summary.Message())
	if summary.Failed > 0 {
		text += fmt.Sprintf("\n⚠️ %d links não puderam ser lidos.", summary.Failed)
	}
	if summary.Alerts > 0 {
		text += fmt.Sprintf("\n🎉 %d novos alertas.", summary.Alerts)
	}
	b.send(chatID, text)
}

func (b *Bot) handleCheck(ctx context.Context, chatID int64, args []string) {
	if len(args) < 1 {
		b.send(chatID, "❌ Formato incorreto.\n\nUso: /check <id>\n\nExemplo: /check 1")
		return
	}
	if b.monitor == nil {
		b.send(chatID, "❌ Monitor não configurado.")
		return
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		b.send(chatID, "❌ ID inválido.")
		return
	}

	product, err := b.db.GetProduct(ctx, id)
	if err != nil {
		b.send(chatID, "❌ Produto não encontrado.")
		return
	}
	if product.TrackingURL == "" {
		b.send(chatID, "❌ Produto sem link de rastreio.")
		return
	}

	previous, err := b.db.LatestPrice(ctx, id)
	if err != nil {
		b.send(chatID, fmt.Sprintf("❌ Erro ao buscar preço: %v", err))
		return
	}

	alerts, err := b.monitor.CheckProduct(ctx, *product)
	if err != nil {
		b.send(chatID, fmt.Sprintf("❌ Erro ao verificar preço: %v", err))
		return
	}
	current, err := b.db.LatestPrice(ctx, id)
	if err != nil || current == nil {
		b.send(chatID, fmt.Sprintf("❌ Erro ao buscar produto atualizado: %v", err))
		return
	}

	response := fmt.Sprintf("📊 <b>Produto: %s</b>\n\nPreço atual: %.2f", escapeHTML(product.Name), current.Price)
	if previous != nil {
		response += fmt.Sprintf("\nPreço anterior: %.2f", previous.Price)
		if current.Price < previous.Price {
			response += fmt.Sprintf("\n\n🎉 Desconto de %.1f%%!", (previous.Price-current.Price)/previous.Price*100)
		}
	}
	if len(alerts) > 0 {
		response += fmt.Sprintf("\n\n✅ %d usuários atingiram o preço alvo.", len(alerts))
	}
	response += fmt.Sprintf("\nLink: %s", product.TrackingURL)

	if err := b.sendHTML(chatID, response); err != nil {
		logx.Error().Err(err).Msg("Erro ao enviar mensagem de resposta")
	}
}

func (b *Bot) handleHistory(ctx context.Context, chatID int64, args []string) {
	if len(args) < 1 {
		b.send(chatID, "❌ Formato incorreto.\n\nUso: /history <id>\n\nExemplo: /history 1")
		return
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		b.send(chatID, "❌ ID inválido.")
		return
	}

	product, err := b.db.GetProduct(ctx, id)
	if err != nil {
		b.send(chatID, "❌ Produto não encontrado.")
		return
	}
	history, err := b.db.PriceHistory(ctx, id, historyLimit)
	if err != nil {
		b.send(chatID, fmt.Sprintf("❌ Erro ao buscar histórico: %v", err))
		return
	}
	if len(history) == 0 {
		b.send(chatID, "📈 Nenhum preço registrado para este produto.")
		return
	}

	var response strings.Builder
	fmt.Fprintf(&response, "📈 <b>Histórico: %s</b>\n\n", escapeHTML(product.Name))
	for _, o := range history {
		fmt.Fprintf(&response, "%s  %.2f\n", o.ObservedAt.Format("02/01/2006 15:04"), o.Price)
	}
	if err := b.sendHTML(chatID, response.String()); err != nil {
		logx.Error().Err(err).Msg("Erro ao enviar histórico")
	}
}

func (b *Bot) handleAdd(ctx context.Context, chatID int64, args []string) {
	if len(args) < 2 {
		b.send(chatID, "❌ Formato incorreto.\n\nUso: /add <email> <URL> [preço_alvo]\n\nExemplo: /add ana@example.com https://www.amazon.com/dp/B08N5WRWNW 45")
		return
	}
	if b.monitor == nil {
		b.send(chatID, "❌ Monitor não configurado.")
		return
	}

	var target float64
	if len(args) > 2 {
		price, err := strconv.ParseFloat(strings.Replace(args[2], ",", ".", 1), 64)
		if err != nil || math.IsNaN(price) || math.IsInf(price, 0) || price <= 0 {
			b.send(chatID, "❌ Preço inválido. Use um valor numérico positivo.")
			return
		}
		target = price
	}

	user, err := b.db.UserByEmail(ctx, args[0])
	if errors.Is(err, database.ErrNotFound) {
		b.send(chatID, "❌ Usuário não encontrado.")
		return
	}
	if err != nil {
		b.send(chatID, fmt.Sprintf("❌ Erro ao buscar usuário: %v", err))
		return
	}

	d, err := b.monitor.Discover(ctx, user.ID, args[1])
	if errors.Is(err, monitor.ErrDiscoveryFailed) {
		b.send(chatID, "❌ Não foi possível ler o link. Verifique se é a página de um produto.")
		return
	}
	if err != nil {
		b.send(chatID, fmt.Sprintf("❌ Erro ao adicionar produto: %v", err))
		return
	}

	response := fmt.Sprintf("✅ Produto adicionado com sucesso!\n\nNome: %s\nID: %d", d.Name, d.ProductID)
	if d.Price > 0 {
		response += fmt.Sprintf("\nPreço atual: %.2f", d.Price)
	}
	if target > 0 {
		alerted, err := b.db.UpdateTarget(ctx, user.ID, d.Watch.ID, target)
		if err != nil {
			b.send(chatID, fmt.Sprintf("❌ Erro ao definir preço alvo: %v", err))
			return
		}
		response += fmt.Sprintf("\nPreço alvo: %.2f", target)
		if alerted {
			response += "\n🎉 Produto já está abaixo do preço alvo!"
		}
	}
	b.send(chatID, response)
}

func (b *Bot) handleRemove(ctx context.Context, chatID int64, args []string) {
	if len(args) < 1 {
		b.send(chatID, "❌ Formato incorreto.\n\nUso: /remove <id>\n\nExemplo: /remove 1")
		return
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		b.send(chatID, "❌ ID inválido.")
		return
	}

	product, err := b.db.GetProduct(ctx, id)
	if err != nil {
		b.send(chatID, "❌ Produto não encontrado.")
		return
	}
	if err := b.db.DeleteProduct(ctx, id); err != nil {
		b.send(chatID, fmt.Sprintf("❌ Erro ao remover produto: %v", err))
		return
	}
	b.send(chatID, fmt.Sprintf("✅ Produto removido: %s", product.Name))
}
