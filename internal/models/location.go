package models

import "time"

// Location сохранённая пользователем локация.
// IsDefault вычисляется при чтении из defaultLocationId пользователя.
type Location struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	IsDefault bool      `json:"isDefault"`
	CreatedAt time.Time `json:"createdAt"`
}
