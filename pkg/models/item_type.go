package models

import "time"

type ItemType struct {
	ID            string    `json:"id" db:"id"`
	NameLocalized string    `json:"name_localized" db:"name_localized"`
	NameCanonical string    `json:"name_canonical" db:"name_canonical"`
	Category      string    `json:"category" db:"category"`
	UnitsPerBox   int       `json:"units_per_box" db:"units_per_box"`
	IsActive      bool      `json:"is_active" db:"is_active"`
	IsVisible     bool      `json:"is_visible" db:"is_visible"`
	SortOrder     int       `json:"sort_order" db:"sort_order"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}

type CreateItemTypeRequest struct {
	ID            string `json:"id" binding:"required,alphanum,max=64"`
	NameLocalized string `json:"name_localized" binding:"required"`
	NameCanonical string `json:"name_canonical" binding:"required"`
	Category      string `json:"category" binding:"required"`
	UnitsPerBox   int    `json:"units_per_box" binding:"gte=0"`
	IsVisible     *bool  `json:"is_visible"`
	SortOrder     int    `json:"sort_order"`
}
