package models

import "time"

type TaskGroup struct {
	ID        string    `gorm:"primaryKey;type:varchar(10)" json:"id"`
	ProjectID string    `gorm:"type:varchar(8);index;not null" json:"project_id"`
	Name      string    `gorm:"type:varchar(30);not null" json:"name"`
	Position  int       `gorm:"not null" json:"position"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Tasks []Task `gorm:"foreignKey:TaskGroupID" json:"tasks,omitempty"`
}
