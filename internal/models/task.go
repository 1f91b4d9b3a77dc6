package models

import "time"

// Task is a work item owned by exactly one project. Position preserves the
// order the client submitted; dates are opaque sortable strings.
type Task struct {
	ID            string    `gorm:"primarykey;type:varchar(64)" json:"id"`
	ProjectID     string    `gorm:"type:varchar(64);not null;index" json:"-"`
	Title         string    `gorm:"not null" json:"title"`
	Status        string    `gorm:"type:varchar(50);not null;default:'todo'" json:"status"`
	DueDate       *string   `gorm:"type:varchar(50)" json:"dueDate"`
	CompletedDate *string   `gorm:"type:varchar(50)" json:"completedDate"`
	AssigneeID    *string   `gorm:"type:varchar(64);index" json:"assigneeId"`
	Position      int       `gorm:"not null;default:0" json:"-"`
	CreatedAt     time.Time `json:"-"`
	UpdatedAt     time.Time `json:"-"`

	// Relations
	Assignee *Person   `gorm:"foreignKey:AssigneeID;constraint:OnDelete:SET NULL" json:"assignee,omitempty"`
	Subtasks []Subtask `gorm:"foreignKey:TaskID;constraint:OnDelete:CASCADE" json:"subtasks"`
}
