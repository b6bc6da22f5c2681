package models

import "time"

// Staff account (kitchen/admin). Password holds a bcrypt hash.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"not null" json:"name"`
	Email     string    `gorm:"not null;unique;index" json:"email"`
	Password  string    `gorm:"not null" json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

// All returns every model in AutoMigrate order (referenced tables first).
func All() []any {
	return []any{&User{}, &Table{}, &MenuCategory{}, &MenuItem{}, &Order{}, &OrderItem{}}
}
