package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	bookingDomain "github.com/coachbook/service-scheduling/internal/domain/booking"
	"github.com/coachbook/service-scheduling/internal/domain/schedule"
	"github.com/coachbook/service-scheduling/internal/platform/domain"
)

// BookingModel is the GORM model for the bookings table. Party ID sets and
// the acceptance/confirmation maps are stored as jsonb; coach_ids gets a GIN
// index so containment lookups stay cheap.
type BookingModel struct {
	ID                  uuid.UUID       `gorm:"type:uuid;primaryKey"`
	CoachIDs            json.RawMessage `gorm:"type:jsonb;not null;index:idx_bookings_coach_ids,type:gin"`
	ClientIDs           json.RawMessage `gorm:"type:jsonb;not null;index:idx_bookings_client_ids,type:gin"`
	StartTime           time.Time       `gorm:"not null;index"`
	EndTime             time.Time       `gorm:"not null;index"`
	Status              string          `gorm:"not null;size:40;index"`
	CoachAcceptances    json.RawMessage `gorm:"type:jsonb;not null"`
	ClientConfirmations json.RawMessage `gorm:"type:jsonb;not null"`
	RejectedBy          *uuid.UUID      `gorm:"type:uuid"`
	RejectNote          string          `gorm:"size:500"`
	Location            string          `gorm:"size:255"`
	Notes               string          `gorm:"size:1000"`
	PaymentStatus       string          `gorm:"not null;size:20;default:'unpaid'"`
	Version             int64           `gorm:"not null;default:1"`
	CreatedAt           time.Time       `gorm:"not null"`
	UpdatedAt           time.Time       `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (BookingModel) TableName() string {
	return "bookings"
}

// GormBookingRepository is the GORM-based implementation of BookingRepository.
type GormBookingRepository struct {
	db *gorm.DB
}

// NewGormBookingRepository creates a new GormBookingRepository.
func NewGormBookingRepository(db *gorm.DB) *GormBookingRepository {
	return &GormBookingRepository{db: db}
}

// FindByID retrieves a booking by its unique identifier.
func (r *GormBookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*bookingDomain.Booking, error) {
	var model BookingModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Booking", id.String())
		}
		return nil, fmt.Errorf("failed to find booking by ID: %w", err)
	}
	return toDomainBooking(&model)
}

// FindByCoachID retrieves bookings naming a specific coach with pagination.
func (r *GormBookingRepository) FindByCoachID(ctx context.Context, coachID uuid.UUID, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	return r.findByParty(ctx, "coach_ids", coachID, page, limit)
}

// FindByClientID retrieves bookings naming a specific client with pagination.
func (r *GormBookingRepository) FindByClientID(ctx context.Context, clientID uuid.UUID, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	return r.findByParty(ctx, "client_ids", clientID, page, limit)
}

func (r *GormBookingRepository) findByParty(ctx context.Context, column string, partyID uuid.UUID, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	member, err := jsonIDList(partyID)
	if err != nil {
		return nil, 0, err
	}
	containment := column + " @> ?"

	var total int64
	if err := r.db.WithContext(ctx).Model(&BookingModel{}).Where(containment, member).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count bookings: %w", err)
	}

	var models []BookingModel
	offset := (page - 1) * limit
	if err := r.db.WithContext(ctx).
		Where(containment, member).
		Order("start_time DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to find bookings: %w", err)
	}

	return toDomainBookings(models, total)
}

// FindActiveInRange retrieves a coach's active bookings overlapping the
// half-open interval [start, end). The overlap test is strict, so bookings
// that merely touch the boundary are excluded.
func (r *GormBookingRepository) FindActiveInRange(ctx context.Context, coachID uuid.UUID, start, end time.Time) ([]*bookingDomain.Booking, error) {
	member, err := jsonIDList(coachID)
	if err != nil {
		return nil, err
	}

	var models []BookingModel
	if err := r.db.WithContext(ctx).
		Where("coach_ids @> ?", member).
		Where("status IN ?", activeStatusStrings()).
		Where("start_time < ? AND end_time > ?", end, start).
		Order("start_time ASC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find active bookings in range: %w", err)
	}

	bookings, _, err := toDomainBookings(models, int64(len(models)))
	return bookings, err
}

// Save persists a new booking.
func (r *GormBookingRepository) Save(ctx context.Context, bk *bookingDomain.Booking) error {
	model, err := toBookingModel(bk)
	if err != nil {
		return fmt.Errorf("failed to convert booking to model: %w", err)
	}

	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to save booking: %w", err)
	}
	return nil
}

// Update persists changes to an existing booking with optimistic locking.
func (r *GormBookingRepository) Update(ctx context.Context, bk *bookingDomain.Booking) error {
	model, err := toBookingModel(bk)
	if err != nil {
		return fmt.Errorf("failed to convert booking to model: %w", err)
	}

	// Only update if the version matches (current version - 1, since
	// IncrementVersion was called before Update).
	expectedVersion := bk.Version() - 1
	result := r.db.WithContext(ctx).
		Model(&BookingModel{}).
		Where("id = ? AND version = ?", model.ID, expectedVersion).
		Updates(map[string]interface{}{
			"status":               model.Status,
			"coach_acceptances":    model.CoachAcceptances,
			"client_confirmations": model.ClientConfirmations,
			"rejected_by":          model.RejectedBy,
			"reject_note":          model.RejectNote,
			"location":             model.Location,
			"notes":                model.Notes,
			"payment_status":       model.PaymentStatus,
			"version":              model.Version,
			"updated_at":           model.UpdatedAt,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update booking: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewConflictError("booking was modified by another transaction")
	}
	return nil
}

// ListAll retrieves all bookings with pagination (admin).
func (r *GormBookingRepository) ListAll(ctx context.Context, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&BookingModel{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count bookings: %w", err)
	}

	var models []BookingModel
	offset := (page - 1) * limit
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list bookings: %w", err)
	}

	return toDomainBookings(models, total)
}

// CountByStatus returns booking counts grouped by status (admin).
func (r *GormBookingRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	type statusCount struct {
		Status string
		Count  int64
	}
	var results []statusCount
	if err := r.db.WithContext(ctx).Model(&BookingModel{}).
		Select("status, count(*) as count").
		Group("status").
		Find(&results).Error; err != nil {
		return nil, fmt.Errorf("failed to count by status: %w", err)
	}

	counts := make(map[string]int64)
	for _, sc := range results {
		counts[sc.Status] = sc.Count
	}
	return counts, nil
}

// --- Conversion Helpers ---

func activeStatusStrings() []string {
	statuses := bookingDomain.ActiveStatuses()
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}

// jsonIDList renders a single ID as a jsonb array literal for @> containment.
func jsonIDList(id uuid.UUID) (string, error) {
	data, err := json.Marshal([]uuid.UUID{id})
	if err != nil {
		return "", fmt.Errorf("failed to marshal ID list: %w", err)
	}
	return string(data), nil
}

func toBookingModel(bk *bookingDomain.Booking) (*BookingModel, error) {
	coachIDs, err := json.Marshal(bk.CoachIDs())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal coach IDs: %w", err)
	}
	clientIDs, err := json.Marshal(bk.ClientIDs())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal client IDs: %w", err)
	}
	acceptances, err := json.Marshal(bk.CoachAcceptances())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal coach acceptances: %w", err)
	}
	confirmations, err := json.Marshal(bk.ClientConfirmations())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal client confirmations: %w", err)
	}

	return &BookingModel{
		ID:                  bk.ID(),
		CoachIDs:            coachIDs,
		ClientIDs:           clientIDs,
		StartTime:           bk.Range().Start,
		EndTime:             bk.Range().End,
		Status:              string(bk.Status()),
		CoachAcceptances:    acceptances,
		ClientConfirmations: confirmations,
		RejectedBy:          bk.RejectedBy(),
		RejectNote:          bk.RejectNote(),
		Location:            bk.Location(),
		Notes:               bk.Notes(),
		PaymentStatus:       string(bk.PaymentStatus()),
		Version:             bk.Version(),
		CreatedAt:           bk.CreatedAt(),
		UpdatedAt:           bk.UpdatedAt(),
	}, nil
}

func toDomainBooking(m *BookingModel) (*bookingDomain.Booking, error) {
	var coachIDs []uuid.UUID
	if err := json.Unmarshal(m.CoachIDs, &coachIDs); err != nil {
		return nil, fmt.Errorf("failed to unmarshal coach IDs: %w", err)
	}
	var clientIDs []uuid.UUID
	if err := json.Unmarshal(m.ClientIDs, &clientIDs); err != nil {
		return nil, fmt.Errorf("failed to unmarshal client IDs: %w", err)
	}

	// Legacy rows may carry null maps; an empty map means implicitly accepted.
	acceptances := map[uuid.UUID]bool{}
	if len(m.CoachAcceptances) > 0 {
		if err := json.Unmarshal(m.CoachAcceptances, &acceptances); err != nil {
			return nil, fmt.Errorf("failed to unmarshal coach acceptances: %w", err)
		}
	}
	confirmations := map[uuid.UUID]bool{}
	if len(m.ClientConfirmations) > 0 {
		if err := json.Unmarshal(m.ClientConfirmations, &confirmations); err != nil {
			return nil, fmt.Errorf("failed to unmarshal client confirmations: %w", err)
		}
	}

	status, err := bookingDomain.ParseBookingStatus(m.Status)
	if err != nil {
		return nil, err
	}

	return bookingDomain.ReconstructBooking(
		m.ID,
		coachIDs,
		clientIDs,
		schedule.TimeRange{Start: m.StartTime, End: m.EndTime},
		status,
		acceptances,
		confirmations,
		m.RejectedBy,
		m.RejectNote,
		m.Location,
		m.Notes,
		bookingDomain.PaymentStatus(m.PaymentStatus),
		m.Version,
		m.CreatedAt,
		m.UpdatedAt,
	), nil
}

func toDomainBookings(models []BookingModel, total int64) ([]*bookingDomain.Booking, int64, error) {
	bookings := make([]*bookingDomain.Booking, len(models))
	for i, m := range models {
		bk, err := toDomainBooking(&m)
		if err != nil {
			return nil, 0, err
		}
		bookings[i] = bk
	}
	return bookings, total, nil
}
