package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type ProjectStatus string

const (
	StatusBrief     ProjectStatus = "brief"
	StatusConcept   ProjectStatus = "concept"
	StatusIteration ProjectStatus = "iteration"
	StatusFeedback  ProjectStatus = "feedback"
	StatusDelivered ProjectStatus = "delivered"
	StatusArchived  ProjectStatus = "archived"
)

// ProjectStatuses is the closed lifecycle set. Any member may follow any other.
var ProjectStatuses = []ProjectStatus{
	StatusBrief,
	StatusConcept,
	StatusIteration,
	StatusFeedback,
	StatusDelivered,
	StatusArchived,
}

func (s ProjectStatus) Valid() bool {
	for _, v := range ProjectStatuses {
		if s == v {
			return true
		}
	}
	return false
}

type ServiceType string

const (
	ServiceBrand ServiceType = "brand"
	ServiceWeb   ServiceType = "web"
	ServicePrint ServiceType = "print"
)

type ClientType string

const (
	ClientNew      ClientType = "new"
	ClientExisting ClientType = "existing"
)

type Project struct {
	ID         uuid.UUID                   `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     uuid.UUID                   `gorm:"type:uuid;not null;index" json:"userId"`
	Status     ProjectStatus               `gorm:"size:20;not null;default:'brief';index" json:"status"`
	Service    ServiceType                 `gorm:"size:20" json:"service"`
	ClientType ClientType                  `gorm:"size:20" json:"clientType"`
	StyleTags  datatypes.JSONSlice[string] `json:"styleTags"`
	Colors     datatypes.JSONSlice[string] `json:"colors"`
	Items      datatypes.JSONSlice[string] `json:"items"`
	Links      datatypes.JSONSlice[string] `json:"links"`
	Notes      string                      `gorm:"type:text" json:"notes"`

	ContactName  string `gorm:"size:255" json:"contactName"`
	ContactEmail string `gorm:"size:255" json:"contactEmail"`
	ContactPhone string `gorm:"size:64" json:"contactPhone"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// ProjectStatusHistory is an append-only audit row. Columns are write-once.
type ProjectStatusHistory struct {
	ID         uuid.UUID      `gorm:"type:uuid;primaryKey;<-:create" json:"id"`
	ProjectID  uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_history_project_seq;<-:create" json:"projectId"`
	Sequence   int            `gorm:"not null;uniqueIndex:idx_history_project_seq;<-:create" json:"sequence"`
	FromStatus *ProjectStatus `gorm:"size:20;<-:create" json:"fromStatus"`
	ToStatus   ProjectStatus  `gorm:"size:20;not null;<-:create" json:"toStatus"`
	ChangedBy  uuid.UUID      `gorm:"type:uuid;not null;index;<-:create" json:"changedBy"`
	CreatedAt  time.Time      `gorm:"<-:create" json:"createdAt"`

	Project Project `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE" json:"-"`
	Changer User    `gorm:"foreignKey:ChangedBy" json:"-"`
}

func (ProjectStatusHistory) TableName() string { return "project_status_history" }
