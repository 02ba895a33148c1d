package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/developmentHC/conectaBemBack/internal/apperrors"
	"github.com/developmentHC/conectaBemBack/internal/middleware"
	"github.com/developmentHC/conectaBemBack/internal/models"
	"github.com/developmentHC/conectaBemBack/internal/services"
	"github.com/developmentHC/conectaBemBack/internal/utils"
	"github.com/developmentHC/conectaBemBack/internal/views"
)

const msgInvalidBody = "Corpo da requisição inválido."

// AppointmentService is the lifecycle API the handler drives.
type AppointmentService interface {
	Create(ctx context.Context, caller services.CallerContext, in services.CreateInput) (*models.Appointment, error)
	Act(ctx context.Context, caller services.CallerContext, id string, t services.Transition) (*models.Appointment, error)
	Get(ctx context.Context, caller services.CallerContext, id string) (*models.Appointment, error)
	List(ctx context.Context, caller services.CallerContext, q services.ListQuery) (*services.Page, error)
}

// AppointmentPresenter renders appointments for responses.
type AppointmentPresenter interface {
	Summaries(ctx context.Context, appts []models.Appointment) ([]views.Summary, error)
	Detail(ctx context.Context, appt *models.Appointment) (*views.Detail, error)
}

// AppointmentHandler handles appointment-related requests.
type AppointmentHandler struct {
	Service   AppointmentService
	Presenter AppointmentPresenter
}

// NewAppointmentHandler creates a new AppointmentHandler.
func NewAppointmentHandler(service AppointmentService, presenter AppointmentPresenter) *AppointmentHandler {
	return &AppointmentHandler{Service: service, Presenter: presenter}
}

// ActionRequest is the body of POST /appointments/:id/actions.
type ActionRequest struct {
	Action  string                 `json:"action"`
	Payload services.ActionPayload `json:"payload"`
}

// ListMeta is the pagination block of a listing.
type ListMeta struct {
	Page        int   `json:"page"`
	Limit       int   `json:"limit"`
	Total       int64 `json:"total"`
	HasNextPage bool  `json:"hasNextPage"`
}

var actionMessages = map[services.Action]string{
	services.ActionConfirm:    "Agendamento confirmado.",
	services.ActionCancel:     "Agendamento cancelado.",
	services.ActionReschedule: "Agendamento remarcado.",
	services.ActionComplete:   "Agendamento concluído.",
}

// CreateAppointment books a pending appointment for the authenticated patient.
func (h *AppointmentHandler) CreateAppointment(c *gin.Context) {
	var in services.CreateInput
	if !bindOptionalJSON(c, &in) {
		return
	}

	appt, err := h.Service.Create(c.Request.Context(), middleware.Caller(c), in)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	c.Header("Location", "/appointments/"+appt.ID)
	utils.Created(c, "Solicitação enviada.", views.NewBrief(appt))
}

// ApplyAction runs confirm, cancel, reschedule or complete on an appointment.
func (h *AppointmentHandler) ApplyAction(c *gin.Context) {
	caller := middleware.Caller(c)
	if caller.ID == "" {
		utils.Unauthorized(c, "Unauthorized")
		return
	}
	id := c.Param("id")
	if err := services.ValidateID(id); err != nil {
		utils.RespondError(c, err)
		return
	}

	var req ActionRequest
	if !bindOptionalJSON(c, &req) {
		return
	}
	transition, err := services.ParseTransition(req.Action, req.Payload)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	appt, err := h.Service.Act(c.Request.Context(), caller, id, transition)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.Success(c, actionMessages[transition.Action()], views.NewBrief(appt))
}

// GetAppointmentByID returns one appointment to either of its parties.
func (h *AppointmentHandler) GetAppointmentByID(c *gin.Context) {
	ctx := c.Request.Context()
	appt, err := h.Service.Get(ctx, middleware.Caller(c), c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	detail, err := h.Presenter.Detail(ctx, appt)
	if err != nil {
		utils.InternalServerError(c, err)
		return
	}
	utils.Success(c, "Agendamento encontrado.", detail)
}

// GetMyAppointments lists the caller's appointments with filters and paging.
func (h *AppointmentHandler) GetMyAppointments(c *gin.Context) {
	var q services.ListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		utils.RespondError(c, apperrors.NewValidationError("Parâmetros de consulta inválidos."))
		return
	}

	ctx := c.Request.Context()
	page, err := h.Service.List(ctx, middleware.Caller(c), q)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	items, err := h.Presenter.Summaries(ctx, page.Items)
	if err != nil {
		utils.InternalServerError(c, err)
		return
	}
	utils.SuccessWithMeta(c, "Agendamentos encontrados.", items, ListMeta{
		Page:        page.Page,
		Limit:       page.Limit,
		Total:       page.Total,
		HasNextPage: page.HasNextPage,
	})
}

// bindOptionalJSON decodes the body into obj. An empty body leaves obj zeroed
// so that field validation reports the missing fields.
func bindOptionalJSON(c *gin.Context, obj interface{}) bool {
	if c.Request.Body == nil || c.Request.Body == http.NoBody {
		return true
	}
	if err := c.ShouldBindJSON(obj); err != nil && !errors.Is(err, io.EOF) {
		utils.RespondError(c, apperrors.NewValidationError(msgInvalidBody))
		return false
	}
	return true
}
