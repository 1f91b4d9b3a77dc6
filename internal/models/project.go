package models

import "time"

// LegacyStakeholder is the embedded person shape older clients wrote straight
// into the project row. It survives only as input to the people backfill
// migration; new writes never touch it.
type LegacyStakeholder struct {
	ID    string `json:"id,omitempty"`
	Name  string `json:"name"`
	Team  string `json:"team,omitempty"`
	Email string `json:"email,omitempty"`
}

// Project is the aggregate root. It owns its tasks, subtasks, and activities:
// deleting a project removes all of them.
type Project struct {
	ID              string              `gorm:"primarykey;type:varchar(64)" json:"id"`
	Name            string              `gorm:"type:varchar(255);not null;index" json:"name"`
	Status          string              `gorm:"type:varchar(50);not null;default:'planning'" json:"status"`
	Priority        string              `gorm:"type:varchar(50);not null;default:'medium'" json:"priority"`
	Progress        int                 `json:"progress"`
	LastUpdate      *string             `gorm:"type:text" json:"lastUpdate"`
	Description     string              `gorm:"type:text" json:"description"`
	ExecutiveUpdate *string             `gorm:"type:text" json:"executiveUpdate"`
	StartDate       *string             `gorm:"type:varchar(50)" json:"startDate"`
	TargetDate      *string             `gorm:"type:varchar(50)" json:"targetDate"`
	Legacy          []LegacyStakeholder `gorm:"serializer:json;column:stakeholders_legacy" json:"-"`
	CreatedAt       time.Time           `json:"-"`
	UpdatedAt       time.Time           `json:"-"`

	// Relations
	Plan           []Task     `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE" json:"plan"`
	RecentActivity []Activity `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE" json:"recentActivity"`
	Stakeholders   []Person   `gorm:"many2many:project_people;constraint:OnDelete:CASCADE" json:"stakeholders"`
}
