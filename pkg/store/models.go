package store

import (
	"time"

	"gorm.io/datatypes"
)

// GORM models used for persistence.
type UserModel struct {
	ID           string `gorm:"primaryKey"`
	Email        string `gorm:"uniqueIndex;not null"`
	PasswordHash string `gorm:"not null"`
	CreatedAt    time.Time `gorm:"not null"`
	UpdatedAt    time.Time
}

type PlantModel struct {
	ID      string `gorm:"primaryKey"`
	OwnerID string `gorm:"not null;index"`

	Name     string `gorm:"not null"`
	Species  string `gorm:"not null"`
	Room     string
	Exposure string
	Note     string `gorm:"type:text"`

	RoomAdvice  string `gorm:"type:text"`
	LightAdvice string `gorm:"type:text"`
	CareNotes   string `gorm:"type:text"`

	LastWateredAt         time.Time      `gorm:"not null"`
	WateringFrequencyDays int            `gorm:"not null"`
	SnoozeDays            int            `gorm:"not null;default:0"`
	WateringHistory       datatypes.JSON `gorm:"type:jsonb"`

	ImageURL string `gorm:"not null"`
	ImageKey string `gorm:"not null"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}
