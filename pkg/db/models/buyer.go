package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Buyer is a lead record in storage vocabulary (upper-case enum identifiers).
// Conversion to and from the display vocabulary used by forms and CSV lives in
// pkg/buyers.
type Buyer struct {
	ID           uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey"`
	FullName     string         `json:"full_name" gorm:"not null"`
	Email        *string        `json:"email,omitempty"`
	Phone        string         `json:"phone" gorm:"not null;index"`
	City         string         `json:"city" gorm:"not null"`
	PropertyType string         `json:"property_type" gorm:"not null"`
	BHK          *string        `json:"bhk,omitempty"`
	Purpose      string         `json:"purpose" gorm:"not null"`
	BudgetMin    *int64         `json:"budget_min,omitempty"`
	BudgetMax    *int64         `json:"budget_max,omitempty"`
	Timeline     string         `json:"timeline" gorm:"not null"`
	Source       string         `json:"source" gorm:"not null"`
	Status       string         `json:"status" gorm:"not null;default:NEW"`
	Notes        *string        `json:"notes,omitempty"`
	Tags         pq.StringArray `json:"tags" gorm:"type:text[]"`
	OwnerID      uuid.UUID      `json:"owner_id" gorm:"type:uuid;not null;index"`
	CreatedAt    time.Time      `json:"created_at"`

	// UpdatedAt doubles as the optimistic concurrency token: every accepted
	// write is conditioned on the caller's last-observed value and stores a
	// fresh one. Managed explicitly, not by gorm's auto-update hook.
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime:false"`
}

func (b *Buyer) BeforeCreate(*gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	if b.UpdatedAt.IsZero() {
		b.UpdatedAt = time.Now().UTC()
	}
	return nil
}
