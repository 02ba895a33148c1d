package views

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/developmentHC/conectaBemBack/internal/apperrors"
	"github.com/developmentHC/conectaBemBack/internal/models"
)

type MockDirectory struct {
	mock.Mock
}

func (m *MockDirectory) FindByIDs(ctx context.Context, ids []string) (map[string]models.User, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]models.User), args.Error(1)
}

func (m *MockDirectory) FindClinic(ctx context.Context, id string) (*models.Clinic, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Clinic), args.Error(1)
}

var now = time.Date(2030, 3, 1, 12, 0, 0, 0, time.UTC)

func TestFormatTime(t *testing.T) {
	at := time.Date(2030, 3, 1, 9, 30, 0, 123000000, time.FixedZone("BRT", -3*3600))
	assert.Equal(t, "2030-03-01T12:30:00.123Z", FormatTime(at))
}

func TestDerivedStatus(t *testing.T) {
	past := &models.Appointment{Status: models.StatusConfirmed, DateTime: now.Add(-time.Minute)}
	assert.Equal(t, models.StatusCompleted, DerivedStatus(past, now))

	atNow := &models.Appointment{Status: models.StatusConfirmed, DateTime: now}
	assert.Equal(t, models.StatusCompleted, DerivedStatus(atNow, now))

	future := &models.Appointment{Status: models.StatusConfirmed, DateTime: now.Add(time.Minute)}
	assert.Equal(t, models.StatusConfirmed, DerivedStatus(future, now))

	pendingPast := &models.Appointment{Status: models.StatusPending, DateTime: now.Add(-time.Hour)}
	assert.Equal(t, models.StatusPending, DerivedStatus(pendingPast, now))
}

func TestFormatClinicAddress(t *testing.T) {
	clinic := &models.Clinic{
		Street:       "Rua das Flores",
		Number:       "120",
		Addition:     "Sala 3",
		Neighborhood: "Centro",
		City:         "Recife",
		State:        "PE",
		CEP:          "50010-000",
	}
	assert.Equal(t, "Rua das Flores, 120 - Sala 3 - Centro, Recife/PE - CEP 50010-000", FormatClinicAddress(clinic))

	clinic.Addition = ""
	clinic.Number = ""
	assert.Equal(t, "Rua das Flores - Centro, Recife/PE - CEP 50010-000", FormatClinicAddress(clinic))
	assert.Empty(t, FormatClinicAddress(nil))
}

func TestPresenterDetail(t *testing.T) {
	dir := new(MockDirectory)
	p := NewPresenter(dir, "https://api.conectabem.com.br/", func() time.Time { return now })

	appt := &models.Appointment{
		BaseModel:      models.BaseModel{ID: "appt-1"},
		PatientID:      "patient-1",
		ProfessionalID: "pro-1",
		DateTime:       now.Add(-time.Hour),
		Status:         models.StatusConfirmed,
		ClinicID:       "clinic-1",
		Notes:          "Trazer exames",
	}

	dir.On("FindByIDs", mock.Anything, []string{"patient-1", "pro-1"}).Return(map[string]models.User{
		"patient-1": {BaseModel: models.BaseModel{ID: "patient-1"}, Name: "Ana"},
		"pro-1": {
			BaseModel:   models.BaseModel{ID: "pro-1"},
			Name:        "Dra. Carla",
			Specialties: []string{"Fisioterapia"},
			PhotoID:     "photo-1",
		},
	}, nil)
	dir.On("FindClinic", mock.Anything, "clinic-1").Return(&models.Clinic{
		Street: "Av. Boa Viagem", Number: "5000", Neighborhood: "Boa Viagem", City: "Recife", State: "PE",
	}, nil)

	d, err := p.Detail(context.Background(), appt)
	require.NoError(t, err)

	assert.Equal(t, models.StatusConfirmed, d.Status)
	assert.Equal(t, models.StatusCompleted, d.DerivedStatus)
	assert.Equal(t, "Trazer exames", d.Observation)
	assert.Equal(t, "Av. Boa Viagem, 5000 - Boa Viagem, Recife/PE", d.SelectedAddress)
	assert.Equal(t, "Dra. Carla", d.Professional.Name)
	assert.Equal(t, []string{"Fisioterapia"}, d.Professional.Specialties)
	assert.Equal(t, "https://api.conectabem.com.br/users/pro-1/photo", d.Professional.ImageURL)
	assert.Empty(t, d.Patient.Specialties)
	dir.AssertExpectations(t)
}

func TestPresenterDetailMissingClinic(t *testing.T) {
	dir := new(MockDirectory)
	p := NewPresenter(dir, "", func() time.Time { return now })

	dir.On("FindByIDs", mock.Anything, mock.Anything).Return(map[string]models.User{}, nil)
	dir.On("FindClinic", mock.Anything, "gone").Return(nil, apperrors.NewNotFoundError("clinic not found"))

	d, err := p.Detail(context.Background(), &models.Appointment{ClinicID: "gone", Status: models.StatusPending, DateTime: now.Add(time.Hour)})
	require.NoError(t, err)
	assert.Empty(t, d.SelectedAddress)
	assert.Empty(t, d.DerivedStatus)
}

func TestPresenterDetailClinicLookupFails(t *testing.T) {
	dir := new(MockDirectory)
	p := NewPresenter(dir, "", func() time.Time { return now })

	dir.On("FindByIDs", mock.Anything, mock.Anything).Return(map[string]models.User{}, nil)
	dir.On("FindClinic", mock.Anything, "clinic-1").Return(nil, errors.New("find clinic: connection refused"))

	d, err := p.Detail(context.Background(), &models.Appointment{ClinicID: "clinic-1", Status: models.StatusPending, DateTime: now.Add(time.Hour)})
	require.Error(t, err)
	assert.Nil(t, d)
	assert.Equal(t, apperrors.KindInternal, apperrors.KindOf(err))
}

func TestPresenterSummaries(t *testing.T) {
	dir := new(MockDirectory)
	p := NewPresenter(dir, "", func() time.Time { return now })

	appts := []models.Appointment{
		{BaseModel: models.BaseModel{ID: "a1"}, PatientID: "p1", ProfessionalID: "d1", DateTime: now.Add(time.Hour), Status: models.StatusPending},
		{BaseModel: models.BaseModel{ID: "a2"}, PatientID: "p1", ProfessionalID: "d2", DateTime: now.Add(2 * time.Hour), Status: models.StatusConfirmed},
	}
	dir.On("FindByIDs", mock.Anything, []string{"p1", "d1", "d2"}).Return(map[string]models.User{
		"d1": {BaseModel: models.BaseModel{ID: "d1"}, Name: "Dr. Davi"},
	}, nil)

	out, err := p.Summaries(context.Background(), appts)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "Dr. Davi", out[0].Professional.Name)
	assert.Equal(t, "d2", out[1].Professional.ID)
	assert.Empty(t, out[1].Professional.Name)

	failing := new(MockDirectory)
	failing.On("FindByIDs", mock.Anything, mock.Anything).Return(nil, errors.New("db down"))
	_, err = NewPresenter(failing, "", nil).Summaries(context.Background(), appts)
	assert.Error(t, err)
}
