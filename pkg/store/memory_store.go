package store

import (
	"sort"
	"sync"
	"time"

	"studioplantes/pkg/domain"
)

// MemoryStore keeps users and plants in-process. Used by tests and local
// development without Postgres.
type MemoryStore struct {
	mu     sync.RWMutex
	users  map[string]domain.User
	email  map[string]string // email -> user ID
	plants map[string]domain.Plant
}

// NewMemoryStore initializes an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:  make(map[string]domain.User),
		email:  make(map[string]string),
		plants: make(map[string]domain.Plant),
	}
}

// SaveUser registers or replaces a user.
func (m *MemoryStore) SaveUser(u domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[u.ID] = u
	m.email[u.Email] = u.ID
	return nil
}

// HasUserEmail checks if email exists.
func (m *MemoryStore) HasUserEmail(email string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.email[email]
	return ok, nil
}

// GetUserByEmail looks up a user by email.
func (m *MemoryStore) GetUserByEmail(email string) (domain.User, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if id, ok := m.email[email]; ok {
		u, exists := m.users[id]
		return u, exists, nil
	}
	return domain.User{}, false, nil
}

// GetUserByID returns a user by ID.
func (m *MemoryStore) GetUserByID(id string) (domain.User, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	return u, ok, nil
}

// CreatePlant stores a new plant.
func (m *MemoryStore) CreatePlant(p domain.Plant) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.plants[p.ID] = p
	return nil
}

// GetPlant retrieves a plant scoped to its owner.
func (m *MemoryStore) GetPlant(id, ownerID string) (domain.Plant, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.plants[id]
	if !ok || p.OwnerID != ownerID {
		return domain.Plant{}, false, nil
	}
	return p, true, nil
}

// ListPlantsByOwner returns plants for a user, newest first.
func (m *MemoryStore) ListPlantsByOwner(ownerID string) ([]domain.Plant, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := make([]domain.Plant, 0)
	for _, p := range m.plants {
		if p.OwnerID == ownerID {
			res = append(res, p)
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].CreatedAt.After(res[j].CreatedAt) })
	return res, nil
}

// SetWatering records a watering event and resets the snooze offset.
func (m *MemoryStore) SetWatering(id, ownerID string, wateredAt time.Time, history []time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.plants[id]
	if !ok || p.OwnerID != ownerID {
		return nil
	}
	p.LastWateredAt = wateredAt
	p.WateringHistory = history
	p.SnoozeDays = 0
	p.UpdatedAt = time.Now().UTC()
	m.plants[id] = p
	return nil
}

// SetSnooze updates the snooze offset.
func (m *MemoryStore) SetSnooze(id, ownerID string, snoozeDays int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.plants[id]
	if !ok || p.OwnerID != ownerID {
		return nil
	}
	p.SnoozeDays = snoozeDays
	p.UpdatedAt = time.Now().UTC()
	m.plants[id] = p
	return nil
}

// DeletePlant removes a plant scoped to its owner.
func (m *MemoryStore) DeletePlant(id, ownerID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.plants[id]; ok && p.OwnerID == ownerID {
		delete(m.plants, id)
	}
	return nil
}
