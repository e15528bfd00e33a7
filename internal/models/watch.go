package models

import "time"

// WatchEntry é a inscrição de um usuário em um produto (tabela cart).
// TargetPrice 0 significa "ainda não configurado".
type WatchEntry struct {
	ID          int64
	UserID      int64
	ProductID   int64
	TargetPrice float64
}

// WatchItem é uma linha da lista de acompanhamento já combinada com os preços do produto
type WatchItem struct {
	CartID       int64
	ProductID    int64
	Name         string
	Description  string
	Category     string
	TrackingURL  string
	TargetPrice  float64
	CurrentPrice float64 // 0 quando não há observações
	FirstPrice   float64 // Preço base para a variação percentual
	LastChecked  time.Time
}
