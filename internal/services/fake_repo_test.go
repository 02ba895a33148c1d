package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/developmentHC/conectaBemBack/internal/apperrors"
	"github.com/developmentHC/conectaBemBack/internal/models"
)

// memoryRepo behaves like the gorm store, including the unique index on
// (professional_id, active_slot).
type memoryRepo struct {
	mu    sync.Mutex
	rows  map[string]models.Appointment
	delay time.Duration
	err   error
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{rows: make(map[string]models.Appointment)}
}

func (r *memoryRepo) put(appt models.Appointment) {
	r.mu.Lock()
	defer r.mu.Unlock()
	appt.SyncActiveSlot()
	r.rows[appt.ID] = appt
}

func (r *memoryRepo) get(id string) models.Appointment {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rows[id]
}

func (r *memoryRepo) slotTakenLocked(professionalID string, slot *time.Time, excludeID string) bool {
	if slot == nil {
		return false
	}
	for id, row := range r.rows {
		if id == excludeID || row.ProfessionalID != professionalID || row.ActiveSlot == nil {
			continue
		}
		if row.ActiveSlot.Equal(*slot) {
			return true
		}
	}
	return false
}

func (r *memoryRepo) Create(_ context.Context, appt *models.Appointment) error {
	if r.err != nil {
		return r.err
	}
	if r.delay > 0 {
		time.Sleep(r.delay)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	appt.SyncActiveSlot()
	if r.slotTakenLocked(appt.ProfessionalID, appt.ActiveSlot, "") {
		return apperrors.NewScheduleConflictError("duplicate", gorm.ErrDuplicatedKey)
	}
	if appt.ID == "" {
		appt.ID = uuid.NewString()
	}
	appt.CreatedAt = time.Now()
	appt.UpdatedAt = appt.CreatedAt
	r.rows[appt.ID] = *appt
	return nil
}

func (r *memoryRepo) FindByID(_ context.Context, id string) (*models.Appointment, error) {
	if r.err != nil {
		return nil, r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("appointment not found")
	}
	return &row, nil
}

func (r *memoryRepo) HasActiveConflict(_ context.Context, professionalID string, at time.Time, excludeID string) (bool, error) {
	if r.err != nil {
		return false, r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.slotTakenLocked(professionalID, &at, excludeID), nil
}

func (r *memoryRepo) UpdateFrom(_ context.Context, appt *models.Appointment, from models.AppointmentStatus) (bool, error) {
	if r.err != nil {
		return false, r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[appt.ID]
	if !ok || row.Status != from {
		return false, nil
	}
	appt.SyncActiveSlot()
	if r.slotTakenLocked(appt.ProfessionalID, appt.ActiveSlot, appt.ID) {
		return false, apperrors.NewScheduleConflictError("duplicate", gorm.ErrDuplicatedKey)
	}
	appt.UpdatedAt = time.Now()
	r.rows[appt.ID] = *appt
	return true, nil
}

func (r *memoryRepo) List(_ context.Context, f models.AppointmentFilter) ([]models.Appointment, int64, error) {
	if r.err != nil {
		return nil, 0, r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	var matched []models.Appointment
	for _, row := range r.rows {
		switch f.Side {
		case models.SidePatient:
			if row.PatientID != f.UserID {
				continue
			}
		case models.SideProfessional:
			if row.ProfessionalID != f.UserID {
				continue
			}
		default:
			if !row.IsParty(f.UserID) {
				continue
			}
		}
		if len(f.Statuses) > 0 && !containsStatus(f.Statuses, row.Status) {
			continue
		}
		if f.From != nil && row.DateTime.Before(*f.From) {
			continue
		}
		if f.To != nil && row.DateTime.After(*f.To) {
			continue
		}
		matched = append(matched, row)
	}

	sort.Slice(matched, func(i, j int) bool {
		if f.Descending {
			return matched[i].DateTime.After(matched[j].DateTime)
		}
		return matched[i].DateTime.Before(matched[j].DateTime)
	})

	total := int64(len(matched))
	if f.Offset >= len(matched) {
		return []models.Appointment{}, total, nil
	}
	end := f.Offset + f.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[f.Offset:end], total, nil
}

func containsStatus(list []models.AppointmentStatus, st models.AppointmentStatus) bool {
	for _, s := range list {
		if s == st {
			return true
		}
	}
	return false
}
