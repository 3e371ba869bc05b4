package models

import "time"

// Subject is an academic subject that tests and questions are grouped under.
type Subject struct {
	ID          int64     `json:"subId" gorm:"primaryKey;autoIncrement"`
	Name        string    `json:"name" gorm:"uniqueIndex;size:100;not null" binding:"required,min=2,max=100"`
	Description string    `json:"description,omitempty" gorm:"size:1000" binding:"max=1000"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// GetID returns the store assigned identifier, zero until the subject is persisted.
func (s Subject) GetID() int64 {
	return s.ID
}
