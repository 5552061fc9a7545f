package models

import "time"

type Task struct {
	ID            string     `gorm:"primaryKey;type:varchar(10)" json:"id"`
	ProjectID     string     `gorm:"type:varchar(8);index;not null" json:"project_id"`
	TaskGroupID   string     `gorm:"type:varchar(10);index;not null" json:"task_group_id"`
	Name          string     `gorm:"type:varchar(30);not null" json:"name"`
	Information   string     `gorm:"type:text" json:"information"`
	Creator       string     `gorm:"type:varchar(8);not null" json:"creator"`
	Due           *time.Time `json:"due"`
	PrimaryColour string     `gorm:"type:varchar(7)" json:"primary_colour"`
	AccentColour  string     `gorm:"type:varchar(7)" json:"accent_colour"`
	Position      int        `gorm:"not null" json:"position"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`

	// Relations
	SubTasks []SubTask `gorm:"foreignKey:TaskID" json:"sub_tasks,omitempty"`
}
