package views

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/developmentHC/conectaBemBack/internal/apperrors"
	"github.com/developmentHC/conectaBemBack/internal/models"
)

// TimeLayout renders instants as ISO-8601 UTC with millisecond precision.
const TimeLayout = "2006-01-02T15:04:05.000Z07:00"

// FormatTime renders t in TimeLayout.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

// DerivedStatus is the status shown to clients: a confirmed appointment whose
// time has passed reads as completed. It is never persisted.
func DerivedStatus(appt *models.Appointment, now time.Time) models.AppointmentStatus {
	if appt.Status == models.StatusConfirmed && !appt.DateTime.After(now) {
		return models.StatusCompleted
	}
	return appt.Status
}

// FormatClinicAddress renders a clinic as a single display line.
func FormatClinicAddress(c *models.Clinic) string {
	if c == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString(c.Street)
	if c.Number != "" {
		b.WriteString(", " + c.Number)
	}
	if c.Addition != "" {
		b.WriteString(" - " + c.Addition)
	}
	if c.Neighborhood != "" {
		b.WriteString(" - " + c.Neighborhood)
	}
	fmt.Fprintf(&b, ", %s/%s", c.City, c.State)
	if c.CEP != "" {
		b.WriteString(" - CEP " + c.CEP)
	}
	return b.String()
}

// Directory resolves the people and places an appointment refers to.
type Directory interface {
	FindByIDs(ctx context.Context, ids []string) (map[string]models.User, error)
	FindClinic(ctx context.Context, id string) (*models.Clinic, error)
}

// PersonSummary is the short form of a patient or professional.
type PersonSummary struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	ImageURL    string   `json:"imageUrl,omitempty"`
	Specialties []string `json:"specialties,omitempty"`
}

// Brief is the short body returned after booking or a transition.
type Brief struct {
	ID       string                   `json:"id"`
	Status   models.AppointmentStatus `json:"status"`
	DateTime string                   `json:"dateTime"`
}

// Summary is one entry of a listing.
type Summary struct {
	ID                 string                   `json:"id"`
	Status             models.AppointmentStatus `json:"status"`
	DerivedStatus      models.AppointmentStatus `json:"derivedStatus,omitempty"`
	DateTime           string                   `json:"dateTime"`
	ClinicID           string                   `json:"clinicId"`
	Patient            PersonSummary            `json:"patient"`
	Professional       PersonSummary            `json:"professional"`
	CancellationReason *string                  `json:"cancellationReason,omitempty"`
	CreatedAt          string                   `json:"createdAt"`
	UpdatedAt          string                   `json:"updatedAt"`
}

// Detail is the body of GET /appointments/:id.
type Detail struct {
	Summary
	Observation     string `json:"observation,omitempty"`
	SelectedAddress string `json:"selectedAddress,omitempty"`
}

// Presenter builds response bodies from appointments.
type Presenter struct {
	dir    Directory
	appURL string
	now    func() time.Time
}

// NewPresenter creates a Presenter. appURL prefixes profile photo links.
func NewPresenter(dir Directory, appURL string, now func() time.Time) *Presenter {
	if now == nil {
		now = time.Now
	}
	return &Presenter{dir: dir, appURL: strings.TrimRight(appURL, "/"), now: now}
}

// NewBrief renders id, status and time of an appointment.
func NewBrief(appt *models.Appointment) Brief {
	return Brief{ID: appt.ID, Status: appt.Status, DateTime: FormatTime(appt.DateTime)}
}

// Summaries renders a listing, resolving every person with one lookup.
func (p *Presenter) Summaries(ctx context.Context, appts []models.Appointment) ([]Summary, error) {
	ids := make([]string, 0, len(appts)*2)
	seen := make(map[string]bool)
	for _, a := range appts {
		for _, id := range []string{a.PatientID, a.ProfessionalID} {
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}

	users, err := p.dir.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	now := p.now()
	out := make([]Summary, 0, len(appts))
	for i := range appts {
		out = append(out, p.summary(&appts[i], users, now))
	}
	return out, nil
}

// Detail renders one appointment with the professional's public profile and
// the clinic address. A clinic that no longer exists leaves the address empty.
func (p *Presenter) Detail(ctx context.Context, appt *models.Appointment) (*Detail, error) {
	users, err := p.dir.FindByIDs(ctx, []string{appt.PatientID, appt.ProfessionalID})
	if err != nil {
		return nil, err
	}

	d := &Detail{
		Summary:     p.summary(appt, users, p.now()),
		Observation: appt.Notes,
	}
	clinic, err := p.dir.FindClinic(ctx, appt.ClinicID)
	switch {
	case err == nil:
		d.SelectedAddress = FormatClinicAddress(clinic)
	case !apperrors.Is(err, apperrors.KindNotFound):
		return nil, err
	}
	return d, nil
}

func (p *Presenter) summary(appt *models.Appointment, users map[string]models.User, now time.Time) Summary {
	s := Summary{
		ID:                 appt.ID,
		Status:             appt.Status,
		DateTime:           FormatTime(appt.DateTime),
		ClinicID:           appt.ClinicID,
		Patient:            p.person(appt.PatientID, users, false),
		Professional:       p.person(appt.ProfessionalID, users, true),
		CancellationReason: appt.CancellationReason,
		CreatedAt:          FormatTime(appt.CreatedAt),
		UpdatedAt:          FormatTime(appt.UpdatedAt),
	}
	if derived := DerivedStatus(appt, now); derived != appt.Status {
		s.DerivedStatus = derived
	}
	return s
}

func (p *Presenter) person(id string, users map[string]models.User, public bool) PersonSummary {
	ps := PersonSummary{ID: id}
	u, ok := users[id]
	if !ok {
		return ps
	}
	ps.Name = u.Name
	if u.PhotoID != "" {
		ps.ImageURL = p.appURL + "/users/" + u.ID + "/photo"
	}
	if public {
		ps.Specialties = u.Specialties
	}
	return ps
}
