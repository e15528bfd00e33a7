package models

import "time"

// Product representa um item que pode ser monitorado
type Product struct {
	ID          int64
	Name        string
	Description string
	Category    string
	MSRP        float64 // Preço sugerido pelo fabricante
	TrackingURL string  // URL canônica (chave de deduplicação para produtos descobertos)
}

// Seller representa uma fonte de preços (ex: Amazon)
type Seller struct {
	ID   int64
	Name string
	URL  string
}

// Observation representa um preço observado para um produto em um vendedor.
// Observações são imutáveis: novas linhas são adicionadas, nunca atualizadas.
type Observation struct {
	ID         int64
	ProductID  int64
	SellerID   int64
	Price      float64
	ObservedAt time.Time
	SourceURL  string
}
