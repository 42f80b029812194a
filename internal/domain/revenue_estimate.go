package domain

import "time"

type RevenueEstimate struct {
	Date      Date      `json:"date"`
	Amount    int64     `json:"amount"`
	IsActual  bool      `json:"isActual"`
	Notes     string    `json:"notes"`
	UpdatedAt time.Time `json:"updatedAt"`
}
