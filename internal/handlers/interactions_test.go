package handlers

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/developmentHC/conectaBemBack/internal/apperrors"
	"github.com/developmentHC/conectaBemBack/internal/middleware"
	"github.com/developmentHC/conectaBemBack/internal/models"
	"github.com/developmentHC/conectaBemBack/internal/services"
)

func newInteractionRouter(t *testing.T) (*gin.Engine, *MockAppointmentService, sqlmock.Sqlmock) {
	t.Helper()
	db, dbMock := newMockDB(t)
	svc := new(MockAppointmentService)
	h := NewInteractionHandler(db, svc)

	router := gin.New()
	group := router.Group("/appointments", middleware.AuthMiddleware(testConfig()))
	group.GET("/:id/interactions", h.ListInteractions)
	group.POST("/:id/interactions", h.CreateInteraction)
	return router, svc, dbMock
}

func partyAppointment() *models.Appointment {
	return &models.Appointment{
		BaseModel:      models.BaseModel{ID: apptID},
		PatientID:      patientID,
		ProfessionalID: proID,
		DateTime:       slot,
		Status:         models.StatusConfirmed,
	}
}

func TestCreateInteraction(t *testing.T) {
	auth := bearer(t, testConfig(), patientID, models.RolePatient)
	caller := services.CallerContext{ID: patientID, Role: models.RolePatient}
	path := "/appointments/" + apptID + "/interactions"

	t.Run("party writes a note", func(t *testing.T) {
		router, svc, dbMock := newInteractionRouter(t)
		svc.On("Get", mock.Anything, caller, apptID).Return(partyAppointment(), nil)
		dbMock.ExpectExec("INSERT INTO `appointment_interactions`").WillReturnResult(sqlmock.NewResult(0, 1))

		w := doJSON(router, http.MethodPost, path, auth, `{"type":"note","content":"  Dor lombar após a sessão. "}`)

		require.Equal(t, http.StatusCreated, w.Code)
		var body struct {
			Data InteractionView `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, apptID, body.Data.AppointmentID)
		assert.Equal(t, patientID, body.Data.User.ID)
		assert.Equal(t, models.InteractionNote, body.Data.Type)
		assert.Equal(t, "Dor lombar após a sessão.", body.Data.Content)
		svc.AssertExpectations(t)
		assert.NoError(t, dbMock.ExpectationsWereMet())
	})

	t.Run("outsider is forbidden", func(t *testing.T) {
		router, svc, dbMock := newInteractionRouter(t)
		outsider := uuid.NewString()
		svc.On("Get", mock.Anything, services.CallerContext{ID: outsider, Role: models.RolePatient}, apptID).
			Return(nil, apperrors.NewForbiddenError("Acesso negado."))

		w := doJSON(router, http.MethodPost, path, bearer(t, testConfig(), outsider, models.RolePatient), `{"type":"note","content":"oi"}`)

		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.NoError(t, dbMock.ExpectationsWereMet())
	})

	t.Run("unknown appointment", func(t *testing.T) {
		router, svc, _ := newInteractionRouter(t)
		svc.On("Get", mock.Anything, caller, apptID).Return(nil, apperrors.NewNotFoundError("Agendamento não encontrado."))

		w := doJSON(router, http.MethodPost, path, auth, `{"type":"note","content":"oi"}`)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	tests := []struct {
		name string
		body string
	}{
		{"unknown type", `{"type":"observação","content":"oi"}`},
		{"missing content", `{"type":"message"}`},
		{"blank content", `{"type":"message","content":"   "}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, svc, dbMock := newInteractionRouter(t)
			svc.On("Get", mock.Anything, caller, apptID).Return(partyAppointment(), nil)

			w := doJSON(router, http.MethodPost, path, auth, tt.body)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.NoError(t, dbMock.ExpectationsWereMet())
		})
	}

	t.Run("unauthenticated", func(t *testing.T) {
		router, svc, _ := newInteractionRouter(t)
		w := doJSON(router, http.MethodPost, path, "", `{"type":"note","content":"oi"}`)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		svc.AssertNotCalled(t, "Get", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestListInteractions(t *testing.T) {
	auth := bearer(t, testConfig(), proID, models.RoleProfessional)
	caller := services.CallerContext{ID: proID, Role: models.RoleProfessional}
	path := "/appointments/" + apptID + "/interactions"

	t.Run("oldest first with authors", func(t *testing.T) {
		router, svc, dbMock := newInteractionRouter(t)
		svc.On("Get", mock.Anything, caller, apptID).Return(partyAppointment(), nil)

		first, second := uuid.NewString(), uuid.NewString()
		dbMock.ExpectQuery("SELECT \\* FROM `appointment_interactions` WHERE appointment_id = \\? ORDER BY created_at ASC").
			WillReturnRows(sqlmock.NewRows([]string{"id", "appointment_id", "user_id", "type", "content", "created_at", "updated_at"}).
				AddRow(first, apptID, patientID, "message", "Posso chegar 10 min antes?", slot, slot).
				AddRow(second, apptID, proID, "response", "Pode sim.", slot.Add(time.Minute), slot.Add(time.Minute)))
		dbMock.ExpectQuery("FROM `users`").
			WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email"}).
				AddRow(patientID, "Ana", "ana@example.com").
				AddRow(proID, "Dra. Bia", "bia@example.com"))

		w := doJSON(router, http.MethodGet, path, auth, "")

		require.Equal(t, http.StatusOK, w.Code)
		var body struct {
			Data []InteractionView `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		require.Len(t, body.Data, 2)
		assert.Equal(t, first, body.Data[0].ID)
		assert.Equal(t, "Ana", body.Data[0].User.Name)
		assert.Equal(t, models.InteractionResponse, body.Data[1].Type)
		assert.Equal(t, "bia@example.com", body.Data[1].User.Email)
		assert.NoError(t, dbMock.ExpectationsWereMet())
	})

	t.Run("empty list", func(t *testing.T) {
		router, svc, dbMock := newInteractionRouter(t)
		svc.On("Get", mock.Anything, caller, apptID).Return(partyAppointment(), nil)
		dbMock.ExpectQuery("SELECT \\* FROM `appointment_interactions`").
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		w := doJSON(router, http.MethodGet, path, auth, "")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"data":[]`)
	})

	t.Run("invalid id", func(t *testing.T) {
		router, svc, _ := newInteractionRouter(t)
		svc.On("Get", mock.Anything, caller, "123").Return(nil, apperrors.NewValidationError("ID inválido."))

		w := doJSON(router, http.MethodGet, "/appointments/123/interactions", auth, "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
