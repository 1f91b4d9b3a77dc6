package models

import "time"

// Subtask has the same shape as Task minus nested children. Owned by exactly
// one task.
type Subtask struct {
	ID            string    `gorm:"primarykey;type:varchar(64)" json:"id"`
	TaskID        string    `gorm:"type:varchar(64);not null;index" json:"-"`
	Title         string    `gorm:"not null" json:"title"`
	Status        string    `gorm:"type:varchar(50);not null;default:'todo'" json:"status"`
	DueDate       *string   `gorm:"type:varchar(50)" json:"dueDate"`
	CompletedDate *string   `gorm:"type:varchar(50)" json:"completedDate"`
	AssigneeID    *string   `gorm:"type:varchar(64);index" json:"assigneeId"`
	Position      int       `gorm:"not null;default:0" json:"-"`
	CreatedAt     time.Time `json:"-"`
	UpdatedAt     time.Time `json:"-"`

	// Relations
	Assignee *Person `gorm:"foreignKey:AssigneeID;constraint:OnDelete:SET NULL" json:"assignee,omitempty"`
}
