package models

import "time"

// Activity is a dated log entry on a project. Author keeps the denormalized
// display name for rendering; AuthorID links the canonical person when one
// could be resolved. TaskContext optionally records which task or subtask the
// note comments on, as a small JSON blob the core treats as opaque.
type Activity struct {
	ID          string    `gorm:"primarykey;type:varchar(64)" json:"id"`
	ProjectID   string    `gorm:"type:varchar(64);not null;index" json:"-"`
	Date        string    `gorm:"type:varchar(50);not null" json:"date"`
	Note        string    `gorm:"type:text;not null" json:"note"`
	Author      string    `gorm:"type:varchar(255)" json:"author"`
	AuthorID    *string   `gorm:"type:varchar(64);index" json:"authorId"`
	TaskContext *string   `gorm:"type:text" json:"taskContext,omitempty"`
	CreatedAt   time.Time `json:"-"`

	// Relations
	AuthorPerson *Person `gorm:"foreignKey:AuthorID;constraint:OnDelete:SET NULL" json:"-"`
}
