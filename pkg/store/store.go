package store

import (
	"time"

	"studioplantes/pkg/domain"
)

// Store defines persistence operations for users and plants.
type Store interface {
	// users
	SaveUser(domain.User) error
	HasUserEmail(email string) (bool, error)
	GetUserByEmail(email string) (domain.User, bool, error)
	GetUserByID(id string) (domain.User, bool, error)

	// plants
	CreatePlant(domain.Plant) error
	GetPlant(id, ownerID string) (domain.Plant, bool, error)
	ListPlantsByOwner(ownerID string) ([]domain.Plant, error)
	// SetWatering updates the scheduling fields after a watering event and
	// resets the snooze offset to zero.
	SetWatering(id, ownerID string, wateredAt time.Time, history []time.Time) error
	SetSnooze(id, ownerID string, snoozeDays int) error
	// DeletePlant removes the row scoped to its owner.
	DeletePlant(id, ownerID string) error
}

// SessionStore persists session tokens.
type SessionStore interface {
	NewSession(userID string) (string, error)
	GetUserIDByToken(token string) (string, bool, error)
	DeleteSession(token string) error
}
