package model

import (
	"time"

	"github.com/google/uuid"
)

// Audit contains the creation fields shared by every document
type Audit struct {
	CreatedBy string    `bson:"created_by" json:"created_by"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

// Stamp fills the audit fields.
func (a *Audit) Stamp(actor string, at time.Time) {
	a.CreatedBy = actor
	a.CreatedAt = at.UTC()
}

// NewID returns a fresh document id.
func NewID() string {
	return uuid.NewString()
}

// MessageResponse is returned by operations that only report an outcome.
type MessageResponse struct {
	Message string `json:"message"`
}
