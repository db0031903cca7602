package domain

import "time"

// DueState classifies how close a plant is to its next watering.
type DueState string

const (
	DueLate  DueState = "late"
	DueToday DueState = "today"
	DueOK    DueState = "ok"
)

// DueStatus is the render-time watering status derived from a plant's
// scheduling fields. Urgent and Days are the load-bearing parts; Text is
// presentation only.
type DueStatus struct {
	State   DueState  `json:"state"`
	Urgent  bool      `json:"urgent"`
	Days    int       `json:"days"`
	Text    string    `json:"text"`
	NextDue time.Time `json:"nextDue"`
}

// Plant is one tracked plant owned by a single user.
type Plant struct {
	ID      string `json:"id"`
	OwnerID string `json:"ownerId"`

	Name     string `json:"name"`
	Species  string `json:"species"`
	Room     string `json:"room,omitempty"`
	Exposure string `json:"exposure,omitempty"`
	Note     string `json:"note,omitempty"`

	RoomAdvice  string `json:"roomAdvice,omitempty"`
	LightAdvice string `json:"lightAdvice,omitempty"`
	CareNotes   string `json:"careNotes,omitempty"`

	LastWateredAt         time.Time   `json:"lastWateredAt"`
	WateringFrequencyDays int         `json:"wateringFrequencyDays"`
	SnoozeDays            int         `json:"snoozeDays"`
	WateringHistory       []time.Time `json:"wateringHistory"`

	ImageURL string `json:"imageUrl"`
	ImageKey string `json:"-"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
