package models

import (
	"time"

	"github.com/google/uuid"
)

type InvoiceStatus string

const (
	InvoiceDraft InvoiceStatus = "draft"
	InvoiceSent  InvoiceStatus = "sent"
	InvoicePaid  InvoiceStatus = "paid"
)

func (s InvoiceStatus) Valid() bool {
	switch s {
	case InvoiceDraft, InvoiceSent, InvoicePaid:
		return true
	default:
		return false
	}
}

type Invoice struct {
	ID        uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	ProjectID uuid.UUID     `gorm:"type:uuid;not null;index" json:"projectId"`
	Amount    float64       `gorm:"type:numeric(12,2);not null" json:"amount"`
	Status    InvoiceStatus `gorm:"size:10;not null;default:'draft'" json:"status"`
	FileURL   *string       `gorm:"type:text" json:"fileUrl"`
	Notes     string        `gorm:"type:text" json:"notes"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`

	Project Project `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE" json:"-"`
}
