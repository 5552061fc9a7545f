package models

import "time"

type SubTask struct {
	ID        string `gorm:"primaryKey;type:varchar(10)" json:"id"`
	TaskID    string `gorm:"type:varchar(10);index;not null" json:"task_id"`
	ProjectID string `gorm:"type:varchar(8);index;not null" json:"project_id"`
	// Assignee is a ProjectMember id, not a user id. Nulled out when the
	// member leaves or is removed.
	Assignee  *string   `gorm:"type:varchar(10)" json:"assignee"`
	Body      string    `gorm:"type:text;not null" json:"body"`
	Weight    int       `gorm:"not null;default:0" json:"weight"`
	Completed bool      `gorm:"not null;default:false" json:"completed"`
	Position  int       `gorm:"not null" json:"position"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
