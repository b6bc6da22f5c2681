package models

import "time"

// Menu domain models. Prices are integers in minor currency units (cents);
// floating point never touches money.
type MenuCategory struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"not null;unique" json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type MenuItem struct {
	ID          uint          `gorm:"primaryKey" json:"id"`
	CategoryID  *uint         `gorm:"index" json:"category_id,omitempty"` // nullable: item may be uncategorized
	Category    *MenuCategory `gorm:"foreignKey:CategoryID" json:"-"`
	Name        string        `gorm:"not null" json:"name"`
	Description string        `json:"description,omitempty"`
	Price       int64         `gorm:"not null" json:"price"`
	ImageURL    string        `json:"image_url,omitempty"`
	// No gorm default tag: with one, Create would skip the zero value and an
	// item inserted as unavailable would come back available. The create
	// handler owns the true default instead.
	IsAvailable bool          `gorm:"not null" json:"is_available"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}
