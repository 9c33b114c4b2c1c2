package models

import "time"

// Category tree untuk katalog. ParentID null = kategori akar.
type Category struct {
	ID       uint    `gorm:"primaryKey" json:"id"`
	ParentID *uint   `gorm:"index" json:"parent_id"`
	Name     string  `gorm:"not null" json:"name"`
	Path     *string `gorm:"type:varchar(255)" json:"path"`
	Position int     `gorm:"default:0" json:"position"`
	IsActive bool    `gorm:"default:true" json:"is_active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Brand struct {
	ID       uint    `gorm:"primaryKey" json:"id"`
	Name     string  `gorm:"uniqueIndex;not null" json:"name"`
	LogoURL  *string `gorm:"type:text" json:"logo_url"`
	IsActive bool    `gorm:"default:true" json:"is_active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
