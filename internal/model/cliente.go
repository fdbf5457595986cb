package model

import "time"

// Cliente is a retail partner (consignment) or direct customer (orders).
type Cliente struct {
	ID        uint   `gorm:"primaryKey"`
	Nombre    string `gorm:"index;not null"`
	Telefono  *string
	Email     *string
	Direccion *string
	Activo    bool `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Cliente) TableName() string { return "clientes" }
