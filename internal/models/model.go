package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DefaultModel is the base model for all models in Firefly III.
type DefaultModel struct {
	ID uuid.UUID `json:"id"` // UUID for the resource
	Timestamps
}

// Timestamps holds the timestamps gorm maintains automatically, separate
// from DefaultModel so models with other primary keys can embed them alone.
type Timestamps struct {
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
	DeletedAt *gorm.DeletedAt `json:"deletedAt" gorm:"index"`
}

// AfterFind normalizes the timestamps to the UTC location. They are
// stored in UTC, but sqlite returns them with a +0000 offset, which is
// not the same thing to time.Equal and friends.
func (m *DefaultModel) AfterFind(_ *gorm.DB) (err error) {
	m.CreatedAt = m.CreatedAt.In(time.UTC)
	m.UpdatedAt = m.UpdatedAt.In(time.UTC)

	if m.DeletedAt != nil {
		m.DeletedAt.Time = m.DeletedAt.Time.In(time.UTC)
	}

	return nil
}

// BeforeCreate generates the UUID if the caller did not set one.
func (m *DefaultModel) BeforeCreate(_ *gorm.DB) (err error) {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
