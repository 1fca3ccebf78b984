package models

import (
	"time"

	"github.com/google/uuid"
)

// BuyerHistory is an append-only audit record for one change event against a
// buyer. Diff holds either a lifecycle marker ({"created":true},
// {"imported":true}, {"deleted":true}) or a field -> {from,to} mapping in
// display vocabulary so the history reads the way the user typed it. Rows are
// written in the same transaction as the buyer mutation they describe and are
// never updated or deleted afterward.
type BuyerHistory struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	BuyerID   uuid.UUID `json:"buyer_id" gorm:"type:uuid;not null;index"`
	ChangedBy uuid.UUID `json:"changed_by" gorm:"type:uuid;not null"`
	ChangedAt time.Time `json:"changed_at" gorm:"autoCreateTime"`
	Diff      []byte    `json:"diff" gorm:"type:jsonb;not null"`
}
