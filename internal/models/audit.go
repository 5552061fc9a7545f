package models

import "time"

// Audit is an append-only log entry describing a mutating action, written in
// the same transaction as the mutation it describes.
type Audit struct {
	ID string `gorm:"primaryKey;type:varchar(10)" json:"id"`
	// Auditor is the acting membership's id, not a user id.
	Auditor   string    `gorm:"type:varchar(10);not null" json:"auditor"`
	ProjectID string    `gorm:"type:varchar(8);index;not null" json:"project_id"`
	Body      string    `gorm:"type:text;not null" json:"body"`
	Timestamp time.Time `gorm:"not null" json:"timestamp"`
}

func (Audit) TableName() string {
	return "audit_log"
}
