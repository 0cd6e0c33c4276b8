package models

import "time"

// Asset is one declared piece of infrastructure. Vendor/product/version are
// what the correlator matches threats against; everything else is inventory
// metadata. OwnerID is nil for shared (unscoped) assets.
type Asset struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	Name    string  `gorm:"size:255;not null" json:"name"`
	Type    string  `gorm:"size:50;not null;default:'server'" json:"type"`
	Vendor  *string `gorm:"size:255" json:"vendor"`
	Product *string `gorm:"size:255" json:"product"`
	Version *string `gorm:"size:100" json:"version"`
	Port    *int    `json:"port"`
	Network *string `gorm:"size:255" json:"network"`

	OwnerID *uint `gorm:"index" json:"owner_id"`
	Owner   *User `json:"-"`

	Briefings []Briefing `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}
