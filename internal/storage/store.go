package storage

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store wraps a gorm DB and provides write-only archival helpers. A nil
// Store is valid and no-ops every call, so callers never branch on
// whether archiving is configured.
type Store struct {
	db *gorm.DB
}

// NewStore creates a new store helper from a gorm DB.
func NewStore(db *gorm.DB) *Store {
	if db == nil {
		return nil
	}
	return &Store{db: db}
}

// DB exposes the underlying gorm DB instance.
func (s *Store) DB() *gorm.DB {
	if s == nil {
		return nil
	}
	return s.db
}

// ErrNotFound is returned when a record is not found.
var ErrNotFound = gorm.ErrRecordNotFound

// ErrMissingRoom is returned when operating on a non-existing room.
var ErrMissingRoom = errors.New("room not found")

// RoomUpdate represents a partial update to a room row.
type RoomUpdate struct {
	Status      *string
	Winner      *string
	Active      *bool
	LastSeen    *time.Time
	CompletedAt *time.Time
}

// CreateRoom inserts a new room row.
func (s *Store) CreateRoom(ctx context.Context, id uuid.UUID, lastSeen time.Time) error {
	if s == nil {
		return nil
	}
	room := Room{
		ID:       id,
		Status:   "awaiting_first_reveal",
		Active:   true,
		LastSeen: lastSeen,
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&room).Error
}

// SaveRoomState applies partial updates to the room row.
func (s *Store) SaveRoomState(ctx context.Context, id uuid.UUID, upd RoomUpdate) error {
	if s == nil {
		return nil
	}
	updates := make(map[string]any)
	if upd.Status != nil {
		updates["status"] = *upd.Status
	}
	if upd.Winner != nil {
		updates["winner"] = *upd.Winner
	}
	if upd.Active != nil {
		updates["active"] = *upd.Active
	}
	if upd.LastSeen != nil {
		updates["last_seen"] = *upd.LastSeen
	}
	if upd.CompletedAt != nil {
		updates["completed_at"] = *upd.CompletedAt
	}
	if len(updates) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).Model(&Room{}).Where("id = ?", id).Updates(updates).Error
}

// EnsureParticipant upserts a participant record for a room.
func (s *Store) EnsureParticipant(ctx context.Context, roomID uuid.UUID, clientID, role string, lastSeen time.Time) error {
	if s == nil {
		return nil
	}
	participant := Participant{
		RoomID:   roomID,
		ClientID: clientID,
		Role:     role,
		Active:   true,
		LastSeen: lastSeen,
	}
	return s.db.WithContext(ctx).
		Where("room_id = ? AND client_id = ?", roomID, clientID).
		Assign(map[string]any{
			"role":      role,
			"active":    true,
			"last_seen": lastSeen,
		}).
		FirstOrCreate(&participant).Error
}

// DeactivateParticipant marks the given participant as inactive.
func (s *Store) DeactivateParticipant(ctx context.Context, roomID uuid.UUID, clientID string) error {
	if s == nil {
		return nil
	}
	return s.db.WithContext(ctx).
		Model(&Participant{}).
		Where("room_id = ? AND client_id = ?", roomID, clientID).
		Updates(map[string]any{"active": false}).Error
}

// RecordAction inserts an accepted action row for the given room.
func (s *Store) RecordAction(ctx context.Context, roomID uuid.UUID, clientID string, number int, kind string, fromRow, fromCol, toRow, toCol int, captured string) error {
	if s == nil {
		return nil
	}
	action := Action{
		RoomID:   roomID,
		ClientID: clientID,
		Number:   number,
		Kind:     kind,
		FromRow:  fromRow,
		FromCol:  fromCol,
		ToRow:    toRow,
		ToCol:    toCol,
		Captured: captured,
	}
	return s.db.WithContext(ctx).Create(&action).Error
}

// CompleteRoom marks a room as finished with the given status/winner.
func (s *Store) CompleteRoom(ctx context.Context, id uuid.UUID, status, winner string, completedAt time.Time) error {
	if s == nil {
		return nil
	}
	active := false
	return s.SaveRoomState(ctx, id, RoomUpdate{
		Status:      &status,
		Winner:      &winner,
		Active:      &active,
		CompletedAt: &completedAt,
	})
}

// ResetRoom reopens an archived room after an in-memory reset.
func (s *Store) ResetRoom(ctx context.Context, id uuid.UUID, when time.Time) error {
	if s == nil {
		return nil
	}
	status := "awaiting_first_reveal"
	winner := ""
	active := true
	if err := s.SaveRoomState(ctx, id, RoomUpdate{
		Status:   &status,
		Winner:   &winner,
		Active:   &active,
		LastSeen: &when,
	}); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Model(&Room{}).Where("id = ?", id).Update("completed_at", nil).Error
}

// UpdateLastSeen updates the last seen timestamp for a room.
func (s *Store) UpdateLastSeen(ctx context.Context, id uuid.UUID, lastSeen time.Time) error {
	if s == nil {
		return nil
	}
	return s.SaveRoomState(ctx, id, RoomUpdate{LastSeen: &lastSeen})
}

// Stats represents aggregate room counts.
type Stats struct {
	Started   int64 `json:"started"`
	Completed int64 `json:"completed"`
	Active    int64 `json:"active"`
}

// FetchStats aggregates counts for the stats endpoint.
func (s *Store) FetchStats(ctx context.Context) (Stats, error) {
	var stats Stats
	if s == nil {
		return stats, nil
	}
	if err := s.db.WithContext(ctx).Model(&Room{}).Count(&stats.Started).Error; err != nil {
		return stats, err
	}
	if err := s.db.WithContext(ctx).Model(&Room{}).Where("active = ?", true).Count(&stats.Active).Error; err != nil {
		return stats, err
	}
	if err := s.db.WithContext(ctx).Model(&Room{}).Where("completed_at IS NOT NULL").Count(&stats.Completed).Error; err != nil {
		return stats, err
	}
	return stats, nil
}
