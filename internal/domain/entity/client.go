package entity

import "time"

// Client es un cliente administrado fuera de este servicio; aquí solo se lee.
type Client struct {
	ID        string
	Name      string
	Address   string
	Phone     string
	CreatedAt time.Time
}
