package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/developmentHC/conectaBemBack/internal/apperrors"
	"github.com/developmentHC/conectaBemBack/internal/locking"
	"github.com/developmentHC/conectaBemBack/internal/logging"
	"github.com/developmentHC/conectaBemBack/internal/models"
)

const (
	msgUnauthorized    = "Unauthorized"
	msgNotFound        = "Agendamento não encontrado."
	msgSlotTaken       = "Este horário já está agendado."
	msgSlotBusy        = "Este horário está sendo reservado por outra solicitação. Tente novamente."
	msgConfirmClash    = "Conflito de agenda para este horário."
	msgRescheduleClash = "Conflito de agenda para a nova data/hora."
	msgStaleWrite      = "O agendamento foi alterado por outra solicitação. Recarregue e tente novamente."
)

// CallerContext identifies who is calling. An empty ID means unauthenticated.
type CallerContext struct {
	ID   string
	Role models.Role
}

// AppointmentRepository is the persistence the manager depends on.
type AppointmentRepository interface {
	Create(ctx context.Context, appt *models.Appointment) error
	FindByID(ctx context.Context, id string) (*models.Appointment, error)
	HasActiveConflict(ctx context.Context, professionalID string, at time.Time, excludeID string) (bool, error)
	UpdateFrom(ctx context.Context, appt *models.Appointment, from models.AppointmentStatus) (bool, error)
	List(ctx context.Context, filter models.AppointmentFilter) ([]models.Appointment, int64, error)
}

// AppointmentManager owns the appointment lifecycle: booking, transitions,
// retrieval and listing.
type AppointmentManager struct {
	repo   AppointmentRepository
	locker locking.Locker
	now    func() time.Time
}

// ManagerOption customizes an AppointmentManager.
type ManagerOption func(*AppointmentManager)

// WithClock replaces the wall clock, mostly for tests.
func WithClock(now func() time.Time) ManagerOption {
	return func(m *AppointmentManager) { m.now = now }
}

// NewAppointmentManager creates a new AppointmentManager.
func NewAppointmentManager(repo AppointmentRepository, locker locking.Locker, opts ...ManagerOption) *AppointmentManager {
	m := &AppointmentManager{
		repo:   repo,
		locker: locker,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// AddressRef points at the clinic where the appointment happens.
type AddressRef struct {
	ClinicID string `json:"clinicId"`
}

// CreateInput is the booking request as received from the patient.
type CreateInput struct {
	ProfessionalID string      `json:"professionalId"`
	DateTime       string      `json:"dateTime"`
	Address        *AddressRef `json:"address"`
	Notes          string      `json:"notes"`
}

// Create books a pending appointment for the caller, who must hold the
// patient role. Accounts still completing their profile cannot book.
func (m *AppointmentManager) Create(ctx context.Context, caller CallerContext, in CreateInput) (*models.Appointment, error) {
	if caller.ID == "" {
		return nil, apperrors.NewUnauthorizedError(msgUnauthorized)
	}
	if caller.Role != models.RolePatient {
		return nil, apperrors.NewForbiddenError("Apenas pacientes podem solicitar agendamentos.")
	}
	professionalID := strings.TrimSpace(in.ProfessionalID)
	if professionalID == "" || strings.TrimSpace(in.DateTime) == "" || in.Address == nil {
		return nil, apperrors.NewValidationError("Campos professionalId, dateTime e address são obrigatórios.")
	}
	clinicID := strings.TrimSpace(in.Address.ClinicID)
	if clinicID == "" {
		return nil, apperrors.NewValidationError("É obrigatório informar clinicId no address.")
	}
	at, err := ParseDateTime(in.DateTime)
	if err != nil {
		return nil, apperrors.NewValidationError("dateTime inválido. Use ISO 8601.")
	}
	if !at.After(m.now()) {
		return nil, apperrors.NewInvalidScheduleError("Não é possível agendar no passado.")
	}
	if professionalID == caller.ID {
		return nil, apperrors.NewInvalidScheduleError("Não é possível se agendar como seu próprio paciente.")
	}

	appt := &models.Appointment{
		PatientID:      caller.ID,
		ProfessionalID: professionalID,
		DateTime:       at,
		Status:         models.StatusPending,
		ClinicID:       clinicID,
		Notes:          strings.TrimSpace(in.Notes),
	}

	err = m.withSlot(ctx, professionalID, at, func(ctx context.Context) error {
		taken, err := m.repo.HasActiveConflict(ctx, professionalID, at, "")
		if err != nil {
			return err
		}
		if taken {
			return apperrors.NewScheduleConflictError(msgSlotTaken, nil)
		}
		return m.repo.Create(ctx, appt)
	})
	if err != nil {
		return nil, m.fail(ctx, "create appointment", err, msgSlotTaken)
	}

	logging.FromContext(ctx).Info().
		Str("appointment_id", appt.ID).
		Str("professional_id", professionalID).
		Time("date_time", at).
		Msg("appointment requested")
	return appt, nil
}

// Act applies a lifecycle transition to the appointment with the given id.
// Authorization is checked before the current state, so a caller without
// rights always gets Forbidden regardless of status.
func (m *AppointmentManager) Act(ctx context.Context, caller CallerContext, id string, t Transition) (*models.Appointment, error) {
	if caller.ID == "" {
		return nil, apperrors.NewUnauthorizedError(msgUnauthorized)
	}
	if err := ValidateID(id); err != nil {
		return nil, err
	}
	if t == nil {
		return nil, apperrors.NewValidationError(`Campo "action" é obrigatório.`)
	}

	appt, err := m.repo.FindByID(ctx, id)
	if err != nil {
		return nil, m.fail(ctx, "load appointment", err, msgNotFound)
	}
	from := appt.Status

	switch t := t.(type) {
	case Confirm:
		if caller.ID != appt.ProfessionalID {
			return nil, apperrors.NewForbiddenError("Somente o profissional pode confirmar.")
		}
		if from != models.StatusPending {
			return nil, apperrors.NewInvalidTransitionError("Não é possível confirmar um agendamento " + string(from) + ".")
		}
		appt.Status = models.StatusConfirmed
		err = m.withSlot(ctx, appt.ProfessionalID, appt.DateTime, func(ctx context.Context) error {
			return m.writeChecked(ctx, appt, from, appt.DateTime, msgConfirmClash)
		})
		if err != nil {
			return nil, m.fail(ctx, "confirm appointment", err, msgConfirmClash)
		}

	case Cancel:
		if !appt.IsParty(caller.ID) {
			return nil, apperrors.NewForbiddenError("Somente o paciente ou o profissional podem cancelar.")
		}
		if !from.Occupies() {
			return nil, apperrors.NewInvalidTransitionError("Não é possível cancelar um agendamento " + string(from) + ".")
		}
		appt.Status = models.StatusCanceled
		if t.Reason != "" {
			reason := t.Reason
			appt.CancellationReason = &reason
		}
		if err := m.write(ctx, appt, from); err != nil {
			return nil, m.fail(ctx, "cancel appointment", err, msgNotFound)
		}

	case Reschedule:
		if caller.ID != appt.ProfessionalID {
			return nil, apperrors.NewForbiddenError("Somente o profissional pode remarcar.")
		}
		if !from.Occupies() {
			return nil, apperrors.NewInvalidTransitionError("Não é possível remarcar um agendamento " + string(from) + ".")
		}
		at := NormalizeTime(t.DateTime)
		if !at.After(m.now()) {
			return nil, apperrors.NewInvalidScheduleError("Não é possível remarcar para o passado.")
		}
		appt.DateTime = at
		err = m.withSlot(ctx, appt.ProfessionalID, at, func(ctx context.Context) error {
			return m.writeChecked(ctx, appt, from, at, msgRescheduleClash)
		})
		if err != nil {
			return nil, m.fail(ctx, "reschedule appointment", err, msgRescheduleClash)
		}

	case Complete:
		if caller.ID != appt.ProfessionalID {
			return nil, apperrors.NewForbiddenError("Somente o profissional pode concluir.")
		}
		if from != models.StatusConfirmed {
			return nil, apperrors.NewInvalidTransitionError("Não é possível concluir um agendamento " + string(from) + ".")
		}
		appt.Status = models.StatusCompleted
		if err := m.write(ctx, appt, from); err != nil {
			return nil, m.fail(ctx, "complete appointment", err, msgNotFound)
		}

	default:
		return nil, apperrors.NewUnknownActionError("Ação desconhecida.")
	}

	logging.FromContext(ctx).Info().
		Str("appointment_id", appt.ID).
		Str("action", string(t.Action())).
		Str("from", string(from)).
		Str("to", string(appt.Status)).
		Msg("appointment transition")
	return appt, nil
}

// Get returns an appointment visible to the caller. Canceled appointments are
// hidden from both parties.
func (m *AppointmentManager) Get(ctx context.Context, caller CallerContext, id string) (*models.Appointment, error) {
	if caller.ID == "" {
		return nil, apperrors.NewUnauthorizedError(msgUnauthorized)
	}
	if err := ValidateID(id); err != nil {
		return nil, err
	}

	appt, err := m.repo.FindByID(ctx, id)
	if err != nil {
		return nil, m.fail(ctx, "get appointment", err, msgNotFound)
	}
	if !appt.IsParty(caller.ID) {
		return nil, apperrors.NewForbiddenError("Acesso negado.")
	}
	if appt.Status == models.StatusCanceled {
		return nil, apperrors.NewNotFoundError(msgNotFound)
	}
	return appt, nil
}

// ValidateID rejects ids that cannot name an appointment.
func ValidateID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return apperrors.NewValidationError("ID inválido.")
	}
	return nil
}

func (m *AppointmentManager) withSlot(ctx context.Context, professionalID string, at time.Time, fn func(ctx context.Context) error) error {
	err := m.locker.WithLock(ctx, locking.SlotKey(professionalID, at), fn)
	if errors.Is(err, locking.ErrLockNotAcquired) {
		return apperrors.NewScheduleConflictError(msgSlotBusy, err)
	}
	return err
}

// writeChecked verifies that no sibling holds the slot at `at` and then
// persists appt. Must run under the slot lock.
func (m *AppointmentManager) writeChecked(ctx context.Context, appt *models.Appointment, from models.AppointmentStatus, at time.Time, clash string) error {
	taken, err := m.repo.HasActiveConflict(ctx, appt.ProfessionalID, at, appt.ID)
	if err != nil {
		return err
	}
	if taken {
		return apperrors.NewScheduleConflictError(clash, nil)
	}
	return m.write(ctx, appt, from)
}

func (m *AppointmentManager) write(ctx context.Context, appt *models.Appointment, from models.AppointmentStatus) error {
	applied, err := m.repo.UpdateFrom(ctx, appt, from)
	if err != nil {
		return err
	}
	if !applied {
		return apperrors.NewInvalidTransitionError(msgStaleWrite)
	}
	return nil
}

// fail normalizes repository and lock errors. Application errors pass
// through, except that a unique-index conflict gets the caller-facing
// message for this operation; anything else becomes an internal error.
func (m *AppointmentManager) fail(ctx context.Context, op string, err error, conflictMsg string) error {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		if appErr.Kind == apperrors.KindScheduleConflict && appErr.Err != nil && !errors.Is(appErr.Err, locking.ErrLockNotAcquired) {
			return apperrors.NewScheduleConflictError(conflictMsg, appErr.Err)
		}
		if appErr.Kind == apperrors.KindNotFound {
			return apperrors.NewNotFoundError(msgNotFound)
		}
		return appErr
	}
	logging.FromContext(ctx).Error().Err(err).Str("op", op).Msg("appointment operation failed")
	return apperrors.NewInternalError("Internal server error.", err)
}
