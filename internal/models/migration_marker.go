package models

import "time"

// MigrationMarker records that a one-shot data migration has run to
// completion. A marker, once written, is never revisited by its migration.
type MigrationMarker struct {
	Key       string    `gorm:"primarykey;type:varchar(100)" json:"key"`
	AppliedAt time.Time `json:"applied_at"`
}
