package models

import (
	"time"

	"github.com/google/uuid"
)

// Comment is append-only; IsInternal cannot change after insert.
type Comment struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ProjectID  uuid.UUID `gorm:"type:uuid;not null;index" json:"projectId"`
	UserID     uuid.UUID `gorm:"type:uuid;not null;index" json:"userId"`
	Message    string    `gorm:"type:text;not null" json:"message"`
	IsInternal bool      `gorm:"not null;default:false;<-:create" json:"isInternal"`
	CreatedAt  time.Time `gorm:"index" json:"createdAt"`

	Project Project `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE" json:"-"`
	Author  User    `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}
