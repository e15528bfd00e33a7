// Package deals separa a lista de acompanhamento de um usuário entre ofertas ativas
// e itens ainda em observação.
package deals

import (
	"sort"

	"dealradar/internal/models"

	"github.com/shopspring/decimal"
)

// Item é um produto acompanhado com as métricas de exibição
type Item struct {
	models.WatchItem
	IsDeal        bool
	ChangePercent float64
}

// Board é a lista classificada para o dashboard
type Board struct {
	All      []Item // ofertas primeiro, depois por nome
	Deals    []Item
	Watching []Item
}

// IsDeal informa se o preço atual atingiu o alvo. Preço 0 significa "desconhecido" e
// alvo 0 significa "não configurado"; nenhum dos dois conta como oferta.
func IsDeal(current, target float64) bool {
	return current > 0 && target > 0 && current <= target
}

// ChangePercent calcula a variação em relação ao preço base, arredondada a uma casa.
// Sem preço base ou sem preço atual a variação é 0.
func ChangePercent(first, current float64) float64 {
	if first <= 0 || current <= 0 {
		return 0
	}
	f := decimal.NewFromFloat(first)
	pct := decimal.NewFromFloat(current).Sub(f).Mul(decimal.NewFromInt(100)).Div(f).Round(1)
	v, _ := pct.Float64()
	return v
}

// Classify calcula as métricas de cada item e separa ofertas de itens em observação
func Classify(items []models.WatchItem) Board {
	all := make([]Item, 0, len(items))
	for _, it := range items {
		all = append(all, Item{
			WatchItem:     it,
			IsDeal:        IsDeal(it.CurrentPrice, it.TargetPrice),
			ChangePercent: ChangePercent(it.FirstPrice, it.CurrentPrice),
		})
	}

	sort.SliceStable(all, func(i, j int) bool {
		if all[i].IsDeal != all[j].IsDeal {
			return all[i].IsDeal
		}
		return all[i].Name < all[j].Name
	})

	board := Board{All: all}
	for _, it := range all {
		if it.IsDeal {
			board.Deals = append(board.Deals, it)
		} else {
			board.Watching = append(board.Watching, it)
		}
	}
	return board
}
