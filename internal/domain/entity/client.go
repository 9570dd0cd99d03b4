package entity

import "time"

// Client representa un cliente registrado (tabla clients), independiente del bloque
// de cliente copiado en cada factura.
type Client struct {
	ID            string
	Name          string
	ContactPerson string
	Email         string
	Phone         string
	Address       string
	City          string
	State         string
	PostalCode    string
	Country       string
	GSTNumber     string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
