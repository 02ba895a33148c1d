package services

import (
	"context"
	"math"
	"strings"

	"github.com/developmentHC/conectaBemBack/internal/apperrors"
	"github.com/developmentHC/conectaBemBack/internal/models"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// ListQuery holds the raw listing parameters of GET /appointments/me.
type ListQuery struct {
	Role   string `form:"role"`
	Status string `form:"status"`
	From   string `form:"from"`
	To     string `form:"to"`
	Page   int    `form:"page"`
	Limit  int    `form:"limit"`
	Sort   string `form:"sort"`
}

// Page is one page of a listing.
type Page struct {
	Items       []models.Appointment
	Page        int
	Limit       int
	Total       int64
	HasNextPage bool
}

// List returns the caller's appointments. Canceled appointments are left out
// unless the status filter asks for them.
func (m *AppointmentManager) List(ctx context.Context, caller CallerContext, q ListQuery) (*Page, error) {
	if caller.ID == "" {
		return nil, apperrors.NewUnauthorizedError(msgUnauthorized)
	}

	filter, err := buildFilter(caller, q)
	if err != nil {
		return nil, err
	}

	items, total, err := m.repo.List(ctx, filter)
	if err != nil {
		return nil, m.fail(ctx, "list appointments", err, msgSlotTaken)
	}

	page := filter.Offset/filter.Limit + 1
	return &Page{
		Items:       items,
		Page:        page,
		Limit:       filter.Limit,
		Total:       total,
		HasNextPage: int64(filter.Offset+len(items)) < total,
	}, nil
}

func buildFilter(caller CallerContext, q ListQuery) (models.AppointmentFilter, error) {
	filter := models.AppointmentFilter{UserID: caller.ID}

	role := strings.ToLower(strings.TrimSpace(q.Role))
	if role == "" {
		role = string(caller.Role)
	}
	switch role {
	case string(models.RolePatient):
		filter.Side = models.SidePatient
	case string(models.RoleProfessional):
		filter.Side = models.SideProfessional
	case string(models.RoleUser), "":
		filter.Side = models.SideEither
	default:
		return filter, apperrors.NewValidationError("role inválido. Use patient ou professional.")
	}

	statuses, err := parseStatuses(q.Status)
	if err != nil {
		return filter, err
	}
	filter.Statuses = statuses

	if q.From != "" {
		from, err := ParseDateTime(q.From)
		if err != nil {
			return filter, apperrors.NewValidationError("from inválido. Use ISO 8601.")
		}
		filter.From = &from
	}
	if q.To != "" {
		to, err := ParseDateTime(q.To)
		if err != nil {
			return filter, apperrors.NewValidationError("to inválido. Use ISO 8601.")
		}
		filter.To = &to
	}
	if filter.From != nil && filter.To != nil && filter.To.Before(*filter.From) {
		return filter, apperrors.NewValidationError("to deve ser posterior a from.")
	}

	switch strings.ToLower(strings.TrimSpace(q.Sort)) {
	case "", "asc":
	case "desc":
		filter.Descending = true
	default:
		return filter, apperrors.NewValidationError("sort inválido. Use asc ou desc.")
	}

	page := q.Page
	if page < 1 {
		page = 1
	}
	limit := q.Limit
	if limit < 1 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	// offsets past int32 are rejected by both drivers
	if page-1 > math.MaxInt32/limit {
		return filter, apperrors.NewValidationError("page fora do intervalo.")
	}
	filter.Limit = limit
	filter.Offset = (page - 1) * limit

	return filter, nil
}

// parseStatuses reads a comma separated status list. Empty means every
// status except canceled and "all" means no filter.
func parseStatuses(raw string) ([]models.AppointmentStatus, error) {
	raw = strings.TrimSpace(raw)
	switch raw {
	case "":
		return []models.AppointmentStatus{models.StatusPending, models.StatusConfirmed, models.StatusCompleted}, nil
	case "all":
		return nil, nil
	}

	var out []models.AppointmentStatus
	seen := make(map[models.AppointmentStatus]bool)
	for _, part := range strings.Split(raw, ",") {
		st, ok := models.ParseAppointmentStatus(strings.ToLower(strings.TrimSpace(part)))
		if !ok {
			return nil, apperrors.NewValidationError("status inválido: " + strings.TrimSpace(part) + ".")
		}
		if !seen[st] {
			seen[st] = true
			out = append(out, st)
		}
	}
	return out, nil
}
