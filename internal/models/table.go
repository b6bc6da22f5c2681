package models

import (
	"time"

	"github.com/google/uuid"
)

// Dining table. The tracking code is the opaque string printed in the QR
// sticker customers scan; it is unique and never reassigned.
type Table struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Number       string    `gorm:"not null;unique" json:"number"`
	TrackingCode string    `gorm:"not null;unique" json:"tracking_code"`
	CreatedAt    time.Time `json:"created_at"`
}

// NewTrackingCode returns a URL/QR friendly opaque identifier. Prefixes keep
// table and order codes distinguishable when they show up in logs or URLs.
func NewTrackingCode(prefix string) string {
	return prefix + "_" + uuid.NewString()
}
