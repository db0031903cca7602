package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"gorm.io/datatypes"

	"studioplantes/pkg/domain"
)

const migrateLockID int64 = 81428142

// GormStore implements Store using GORM + Postgres.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore opens the DB and runs auto-migrations.
func NewGormStore(dsn string) (*GormStore, error) {
	gormLog := gormlogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormlogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: gormLog})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := withMigrationLock(db, func(tx *gorm.DB) error {
		if err := tx.AutoMigrate(&UserModel{}, &PlantModel{}); err != nil {
			return fmt.Errorf("auto migrate: %w", err)
		}
		return nil
	}); err != nil {
		return nil, err
	}
	return &GormStore{db: db}, nil
}

func withMigrationLock(db *gorm.DB, fn func(*gorm.DB) error) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("get sql db: %w", err)
	}
	conn, err := sqlDB.Conn(ctx)
	if err != nil {
		return fmt.Errorf("open sql conn: %w", err)
	}
	defer conn.Close()
	if err := execAdvisory(ctx, conn, "SELECT pg_advisory_lock($1)", migrateLockID); err != nil {
		return fmt.Errorf("acquire migrate lock: %w", err)
	}
	defer func() {
		_ = execAdvisory(ctx, conn, "SELECT pg_advisory_unlock($1)", migrateLockID)
	}()
	return fn(db)
}

func execAdvisory(ctx context.Context, conn *sql.Conn, query string, lockID int64) error {
	_, err := conn.ExecContext(ctx, query, lockID)
	return err
}

// SaveUser registers or updates a user.
func (s *GormStore) SaveUser(u domain.User) error {
	model := userToModel(u)
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"email", "password_hash", "updated_at"}),
	}).Create(&model).Error
}

// HasUserEmail checks if email exists.
func (s *GormStore) HasUserEmail(email string) (bool, error) {
	var count int64
	if err := s.db.Model(&UserModel{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// GetUserByEmail looks up a user by email.
func (s *GormStore) GetUserByEmail(email string) (domain.User, bool, error) {
	var model UserModel
	if err := s.db.Where("email = ?", email).First(&model).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.User{}, false, nil
		}
		return domain.User{}, false, err
	}
	return userFromModel(model), true, nil
}

// GetUserByID returns a user by ID.
func (s *GormStore) GetUserByID(id string) (domain.User, bool, error) {
	var model UserModel
	if err := s.db.First(&model, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.User{}, false, nil
		}
		return domain.User{}, false, err
	}
	return userFromModel(model), true, nil
}

// CreatePlant inserts a new plant row. This is the single point where a
// plant becomes visible to readers.
func (s *GormStore) CreatePlant(p domain.Plant) error {
	model, err := plantToModel(p)
	if err != nil {
		return err
	}
	return s.db.Create(&model).Error
}

// GetPlant retrieves one plant scoped to its owner.
func (s *GormStore) GetPlant(id, ownerID string) (domain.Plant, bool, error) {
	var model PlantModel
	if err := s.db.First(&model, "id = ? AND owner_id = ?", id, ownerID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.Plant{}, false, nil
		}
		return domain.Plant{}, false, err
	}
	return plantFromModel(model), true, nil
}

// ListPlantsByOwner returns all plants belonging to a user.
func (s *GormStore) ListPlantsByOwner(ownerID string) ([]domain.Plant, error) {
	var models []PlantModel
	if err := s.db.Where("owner_id = ?", ownerID).Order("created_at DESC").Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]domain.Plant, 0, len(models))
	for _, m := range models {
		res = append(res, plantFromModel(m))
	}
	return res, nil
}

// SetWatering records a watering event: last-watered timestamp, bounded
// history, and a snooze reset. Concurrent updates resolve last-write-wins.
func (s *GormStore) SetWatering(id, ownerID string, wateredAt time.Time, history []time.Time) error {
	raw, err := json.Marshal(history)
	if err != nil {
		return fmt.Errorf("encode history: %w", err)
	}
	return s.db.Model(&PlantModel{}).
		Where("id = ? AND owner_id = ?", id, ownerID).
		Updates(map[string]any{
			"last_watered_at":  wateredAt.UTC(),
			"watering_history": datatypes.JSON(raw),
			"snooze_days":      0,
			"updated_at":       time.Now().UTC(),
		}).Error
}

// SetSnooze updates the snooze offset.
func (s *GormStore) SetSnooze(id, ownerID string, snoozeDays int) error {
	return s.db.Model(&PlantModel{}).
		Where("id = ? AND owner_id = ?", id, ownerID).
		Updates(map[string]any{
			"snooze_days": snoozeDays,
			"updated_at":  time.Now().UTC(),
		}).Error
}

// DeletePlant removes the row scoped to the owning user.
func (s *GormStore) DeletePlant(id, ownerID string) error {
	return s.db.Delete(&PlantModel{}, "id = ? AND owner_id = ?", id, ownerID).Error
}

func userToModel(u domain.User) UserModel {
	return UserModel{
		ID:           u.ID,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func userFromModel(m UserModel) domain.User {
	return domain.User{
		ID:           m.ID,
		Email:        m.Email,
		PasswordHash: m.PasswordHash,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

func plantToModel(p domain.Plant) (PlantModel, error) {
	history, err := json.Marshal(p.WateringHistory)
	if err != nil {
		return PlantModel{}, fmt.Errorf("encode history: %w", err)
	}
	return PlantModel{
		ID:                    p.ID,
		OwnerID:               p.OwnerID,
		Name:                  p.Name,
		Species:               p.Species,
		Room:                  p.Room,
		Exposure:              p.Exposure,
		Note:                  p.Note,
		RoomAdvice:            p.RoomAdvice,
		LightAdvice:           p.LightAdvice,
		CareNotes:             p.CareNotes,
		LastWateredAt:         p.LastWateredAt.UTC(),
		WateringFrequencyDays: p.WateringFrequencyDays,
		SnoozeDays:            p.SnoozeDays,
		WateringHistory:       history,
		ImageURL:              p.ImageURL,
		ImageKey:              p.ImageKey,
		CreatedAt:             p.CreatedAt,
		UpdatedAt:             p.UpdatedAt,
	}, nil
}

func plantFromModel(m PlantModel) domain.Plant {
	var history []time.Time
	if len(m.WateringHistory) > 0 {
		_ = json.Unmarshal(m.WateringHistory, &history)
	}
	return domain.Plant{
		ID:                    m.ID,
		OwnerID:               m.OwnerID,
		Name:                  m.Name,
		Species:               m.Species,
		Room:                  m.Room,
		Exposure:              m.Exposure,
		Note:                  m.Note,
		RoomAdvice:            m.RoomAdvice,
		LightAdvice:           m.LightAdvice,
		CareNotes:             m.CareNotes,
		LastWateredAt:         m.LastWateredAt,
		WateringFrequencyDays: m.WateringFrequencyDays,
		SnoozeDays:            m.SnoozeDays,
		WateringHistory:       history,
		ImageURL:              m.ImageURL,
		ImageKey:              m.ImageKey,
		CreatedAt:             m.CreatedAt,
		UpdatedAt:             m.UpdatedAt,
	}
}
