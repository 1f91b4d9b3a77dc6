package models

import "time"

// DefaultTeam is assigned to people created from a bare name reference.
const DefaultTeam = "Contributor"

// Person is the canonical record for a human referenced anywhere in the
// portfolio: stakeholder, task assignee, or activity author. Case-insensitive
// uniqueness of name and email is enforced by functional indexes created in
// the people-dedup-constrain data migration, not by column tags, because the
// constraint can only be added after historical duplicates are collapsed.
type Person struct {
	ID        string    `gorm:"primarykey;type:varchar(64)" json:"id"`
	Name      string    `gorm:"type:varchar(255);not null;index" json:"name"`
	Team      string    `gorm:"type:varchar(255)" json:"team"`
	Email     *string   `gorm:"type:varchar(255)" json:"email"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`

	// Relations
	Projects []Project `gorm:"many2many:project_people" json:"-"`
}

// EmailValue returns the email or "" when unset.
func (p *Person) EmailValue() string {
	if p.Email == nil {
		return ""
	}
	return *p.Email
}
