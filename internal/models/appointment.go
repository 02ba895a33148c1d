package models

import (
	"time"
)

// AppointmentStatus represents the status of an appointment
type AppointmentStatus string

const (
	StatusPending   AppointmentStatus = "pending"
	StatusConfirmed AppointmentStatus = "confirmed"
	StatusCanceled  AppointmentStatus = "canceled"
	StatusCompleted AppointmentStatus = "completed"
)

// AllStatuses lists every persisted status.
var AllStatuses = []AppointmentStatus{StatusPending, StatusConfirmed, StatusCanceled, StatusCompleted}

// ParseAppointmentStatus accepts only persisted status values.
func ParseAppointmentStatus(s string) (AppointmentStatus, bool) {
	for _, st := range AllStatuses {
		if string(st) == s {
			return st, true
		}
	}
	return "", false
}

// Occupies reports whether an appointment in this status holds its slot.
func (s AppointmentStatus) Occupies() bool {
	return s == StatusPending || s == StatusConfirmed
}

// IsTerminal reports whether no further transitions are allowed.
func (s AppointmentStatus) IsTerminal() bool {
	return s == StatusCanceled || s == StatusCompleted
}

// Appointment represents a booking between a patient and a professional.
//
// ActiveSlot mirrors DateTime while the appointment occupies its slot and is
// NULL otherwise, so the unique index on (professional_id, active_slot) only
// constrains pending and confirmed rows.
type Appointment struct {
	BaseModel
	PatientID          string            `gorm:"size:36;not null;index" json:"patientId"`
	ProfessionalID     string            `gorm:"size:36;not null;uniqueIndex:idx_professional_active_slot,priority:1;index:idx_appointments_professional_status_time,priority:1" json:"professionalId"`
	DateTime           time.Time         `gorm:"not null;index:idx_appointments_professional_status_time,priority:3" json:"dateTime"`
	Status             AppointmentStatus `gorm:"size:20;not null;default:'pending';index:idx_appointments_professional_status_time,priority:2" json:"status"`
	ClinicID           string            `gorm:"size:36;not null" json:"clinicId"`
	Notes              string            `gorm:"type:text" json:"notes,omitempty"`
	CancellationReason *string           `gorm:"type:text" json:"cancellationReason,omitempty"`
	ActiveSlot         *time.Time        `gorm:"uniqueIndex:idx_professional_active_slot,priority:2" json:"-"`
}

// SyncActiveSlot recomputes ActiveSlot from Status and DateTime. Call it
// before every write.
func (a *Appointment) SyncActiveSlot() {
	if a.Status.Occupies() {
		slot := a.DateTime
		a.ActiveSlot = &slot
		return
	}
	a.ActiveSlot = nil
}

// IsParty reports whether userID is the patient or the professional.
func (a *Appointment) IsParty(userID string) bool {
	return userID != "" && (userID == a.PatientID || userID == a.ProfessionalID)
}

// PartySide selects which side of an appointment a listing matches.
type PartySide string

const (
	SideEither       PartySide = ""
	SidePatient      PartySide = "patient"
	SideProfessional PartySide = "professional"
)

// AppointmentFilter narrows a listing for one user.
type AppointmentFilter struct {
	UserID     string
	Side       PartySide
	Statuses   []AppointmentStatus
	From       *time.Time
	To         *time.Time
	Offset     int
	Limit      int
	Descending bool
}
