package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/developmentHC/conectaBemBack/internal/apperrors"
	"github.com/developmentHC/conectaBemBack/internal/models"
	"gorm.io/gorm"
)

// AppointmentStore persists appointments through gorm.
type AppointmentStore struct {
	db  *gorm.DB
	now func() time.Time
}

// NewAppointmentStore creates a new AppointmentStore.
func NewAppointmentStore(db *gorm.DB) *AppointmentStore {
	return &AppointmentStore{db: db, now: func() time.Time { return time.Now().UTC() }}
}

// Create inserts a new appointment. A second active booking for the same
// professional and instant is rejected by idx_professional_active_slot.
func (s *AppointmentStore) Create(ctx context.Context, appt *models.Appointment) error {
	appt.SyncActiveSlot()
	if err := s.db.WithContext(ctx).Create(appt).Error; err != nil {
		return translate(err, "create appointment")
	}
	return nil
}

// FindByID loads one appointment.
func (s *AppointmentStore) FindByID(ctx context.Context, id string) (*models.Appointment, error) {
	var appt models.Appointment
	if err := s.db.WithContext(ctx).First(&appt, "id = ?", id).Error; err != nil {
		return nil, translate(err, "find appointment")
	}
	return &appt, nil
}

// HasActiveConflict reports whether another pending or confirmed appointment
// holds the professional's slot at the given instant.
func (s *AppointmentStore) HasActiveConflict(ctx context.Context, professionalID string, at time.Time, excludeID string) (bool, error) {
	q := s.db.WithContext(ctx).Model(&models.Appointment{}).
		Where("professional_id = ? AND date_time = ? AND status IN ?",
			professionalID, at, []models.AppointmentStatus{models.StatusPending, models.StatusConfirmed})
	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}

	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, fmt.Errorf("check slot conflict: %w", err)
	}
	return count > 0, nil
}

// UpdateFrom writes the mutable fields of appt only if the stored status is
// still from. It reports false when another writer changed the row first.
func (s *AppointmentStore) UpdateFrom(ctx context.Context, appt *models.Appointment, from models.AppointmentStatus) (bool, error) {
	appt.SyncActiveSlot()
	appt.UpdatedAt = s.now()

	res := s.db.WithContext(ctx).Model(&models.Appointment{}).
		Where("id = ? AND status = ?", appt.ID, from).
		Updates(map[string]interface{}{
			"status":              appt.Status,
			"date_time":           appt.DateTime,
			"active_slot":         appt.ActiveSlot,
			"cancellation_reason": appt.CancellationReason,
			"updated_at":          appt.UpdatedAt,
		})
	if res.Error != nil {
		return false, translate(res.Error, "update appointment")
	}
	return res.RowsAffected == 1, nil
}

// List returns one page of appointments matching the filter and the total
// number of matches.
func (s *AppointmentStore) List(ctx context.Context, filter models.AppointmentFilter) ([]models.Appointment, int64, error) {
	q := s.db.WithContext(ctx).Model(&models.Appointment{})

	switch filter.Side {
	case models.SidePatient:
		q = q.Where("patient_id = ?", filter.UserID)
	case models.SideProfessional:
		q = q.Where("professional_id = ?", filter.UserID)
	default:
		q = q.Where("(patient_id = ? OR professional_id = ?)", filter.UserID, filter.UserID)
	}
	if len(filter.Statuses) > 0 {
		q = q.Where("status IN ?", filter.Statuses)
	}
	if filter.From != nil {
		q = q.Where("date_time >= ?", *filter.From)
	}
	if filter.To != nil {
		q = q.Where("date_time <= ?", *filter.To)
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count appointments: %w", err)
	}

	order := "date_time ASC, id ASC"
	if filter.Descending {
		order = "date_time DESC, id DESC"
	}

	var appts []models.Appointment
	if err := q.Order(order).Offset(filter.Offset).Limit(filter.Limit).Find(&appts).Error; err != nil {
		return nil, 0, fmt.Errorf("list appointments: %w", err)
	}
	return appts, total, nil
}

func translate(err error, op string) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apperrors.NewNotFoundError(notFoundMessage(op))
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return apperrors.NewScheduleConflictError("professional already has an appointment at this time", err)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

func notFoundMessage(op string) string {
	switch op {
	case "find appointment":
		return "appointment not found"
	case "find clinic":
		return "clinic not found"
	default:
		return "user not found"
	}
}
