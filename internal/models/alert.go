package models

import "time"

// Alert registra que um preço caiu até o alvo de um usuário
type Alert struct {
	ID            int64
	ProductID     int64
	ObservationID int64
	UserID        int64
	CreatedAt     time.Time
	Active        bool
}

// AlertEntry é um alerta pronto para exibição (histórico do dashboard e notificações)
type AlertEntry struct {
	AlertID     int64
	UserID      int64
	UserEmail   string
	ProductName string
	Price       float64
	Seller      string
	SourceURL   string
	CreatedAt   time.Time
}
