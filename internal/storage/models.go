package storage

import (
	"time"

	"github.com/google/uuid"
)

// Room archives one Banqi room. Live game state never round-trips
// through here; rows exist for the stats endpoint and post-hoc records.
type Room struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	Status       string
	Winner       string
	Active       bool `gorm:"index"`
	CompletedAt  *time.Time
	LastSeen     time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
	Participants []Participant
	Actions      []Action
}

// Participant links a client identity to a room seat.
type Participant struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	RoomID    uuid.UUID `gorm:"type:uuid;index;uniqueIndex:idx_room_client"`
	Room      Room      `gorm:"constraint:OnDelete:CASCADE;"`
	ClientID  string    `gorm:"uniqueIndex:idx_room_client"`
	Role      string
	Active    bool
	LastSeen  time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Action stores a single accepted reveal, move or reset.
type Action struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	RoomID    uuid.UUID `gorm:"type:uuid;index"`
	ClientID  string
	Number    int
	Kind      string
	FromRow   int
	FromCol   int
	ToRow     int
	ToCol     int
	Captured  string
	CreatedAt time.Time
}
