package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/coachbook/service-scheduling/internal/domain/schedule"
	"github.com/coachbook/service-scheduling/internal/platform/domain"
)

// BlackoutModel is the GORM model for the blackouts table.
type BlackoutModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	CoachID   uuid.UUID `gorm:"type:uuid;index;not null"`
	StartTime time.Time `gorm:"not null;index"`
	EndTime   time.Time `gorm:"not null"`
	Note      string    `gorm:"size:500"`
	Version   int64     `gorm:"not null;default:1"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (BlackoutModel) TableName() string {
	return "blackouts"
}

// GormBlackoutRepository is the GORM-based implementation of BlackoutRepository.
type GormBlackoutRepository struct {
	db *gorm.DB
}

// NewGormBlackoutRepository creates a new GormBlackoutRepository.
func NewGormBlackoutRepository(db *gorm.DB) *GormBlackoutRepository {
	return &GormBlackoutRepository{db: db}
}

// FindByID retrieves a blackout by its unique identifier.
func (r *GormBlackoutRepository) FindByID(ctx context.Context, id uuid.UUID) (*schedule.Blackout, error) {
	var model BlackoutModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Blackout", id.String())
		}
		return nil, fmt.Errorf("failed to find blackout by ID: %w", err)
	}
	return toDomainBlackout(&model), nil
}

// FindByCoachID retrieves a coach's blackouts with pagination.
func (r *GormBlackoutRepository) FindByCoachID(ctx context.Context, coachID uuid.UUID, page, limit int) ([]*schedule.Blackout, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&BlackoutModel{}).Where("coach_id = ?", coachID).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count blackouts: %w", err)
	}

	var models []BlackoutModel
	offset := (page - 1) * limit
	if err := r.db.WithContext(ctx).
		Where("coach_id = ?", coachID).
		Order("start_time DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to find blackouts: %w", err)
	}

	blackouts := make([]*schedule.Blackout, len(models))
	for i, m := range models {
		blackouts[i] = toDomainBlackout(&m)
	}
	return blackouts, total, nil
}

// FindByCoachInRange retrieves a coach's blackouts overlapping [start, end).
func (r *GormBlackoutRepository) FindByCoachInRange(ctx context.Context, coachID uuid.UUID, start, end time.Time) ([]*schedule.Blackout, error) {
	var models []BlackoutModel
	if err := r.db.WithContext(ctx).
		Where("coach_id = ?", coachID).
		Where("start_time < ? AND end_time > ?", end, start).
		Order("start_time ASC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find blackouts in range: %w", err)
	}

	blackouts := make([]*schedule.Blackout, len(models))
	for i, m := range models {
		blackouts[i] = toDomainBlackout(&m)
	}
	return blackouts, nil
}

// Save persists a new blackout.
func (r *GormBlackoutRepository) Save(ctx context.Context, bo *schedule.Blackout) error {
	model := &BlackoutModel{
		ID:        bo.ID(),
		CoachID:   bo.CoachID(),
		StartTime: bo.Range().Start,
		EndTime:   bo.Range().End,
		Note:      bo.Note(),
		Version:   bo.Version(),
		CreatedAt: bo.CreatedAt(),
		UpdatedAt: bo.UpdatedAt(),
	}
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to save blackout: %w", err)
	}
	return nil
}

// Delete removes a blackout.
func (r *GormBlackoutRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&BlackoutModel{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete blackout: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("Blackout", id.String())
	}
	return nil
}

func toDomainBlackout(m *BlackoutModel) *schedule.Blackout {
	return schedule.ReconstructBlackout(
		m.ID,
		m.CoachID,
		schedule.TimeRange{Start: m.StartTime, End: m.EndTime},
		m.Note,
		m.Version,
		m.CreatedAt,
		m.UpdatedAt,
	)
}
