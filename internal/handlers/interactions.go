package handlers

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/developmentHC/conectaBemBack/internal/apperrors"
	"github.com/developmentHC/conectaBemBack/internal/middleware"
	"github.com/developmentHC/conectaBemBack/internal/models"
	"github.com/developmentHC/conectaBemBack/internal/services"
	"github.com/developmentHC/conectaBemBack/internal/utils"
	"github.com/developmentHC/conectaBemBack/internal/views"
)

// AppointmentReader resolves an appointment the caller is a party to.
type AppointmentReader interface {
	Get(ctx context.Context, caller services.CallerContext, id string) (*models.Appointment, error)
}

// InteractionHandler handles notes exchanged on an appointment.
type InteractionHandler struct {
	DB           *gorm.DB
	Appointments AppointmentReader
}

// NewInteractionHandler creates a new InteractionHandler.
func NewInteractionHandler(db *gorm.DB, appointments AppointmentReader) *InteractionHandler {
	return &InteractionHandler{DB: db, Appointments: appointments}
}

// InteractionRequest represents the body of a new interaction.
type InteractionRequest struct {
	Type    models.InteractionType `json:"type" binding:"required,oneof=message response note"`
	Content string                 `json:"content" binding:"required,max=2000"`
}

// InteractionAuthor is the public part of the writer's profile.
type InteractionAuthor struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// InteractionView is one interaction as returned to clients.
type InteractionView struct {
	ID            string                 `json:"id"`
	AppointmentID string                 `json:"appointmentId"`
	Type          models.InteractionType `json:"type"`
	Content       string                 `json:"content"`
	CreatedAt     string                 `json:"createdAt"`
	User          InteractionAuthor      `json:"user"`
}

func newInteractionView(i *models.AppointmentInteraction) InteractionView {
	view := InteractionView{
		ID:            i.ID,
		AppointmentID: i.AppointmentID,
		Type:          i.Type,
		Content:       i.Content,
		CreatedAt:     views.FormatTime(i.CreatedAt),
		User:          InteractionAuthor{ID: i.UserID},
	}
	if i.User != nil {
		view.User.Name = i.User.Name
		view.User.Email = i.User.Email
	}
	return view
}

// CreateInteraction attaches a note to an appointment of the caller.
func (h *InteractionHandler) CreateInteraction(c *gin.Context) {
	caller := middleware.Caller(c)
	ctx := c.Request.Context()

	appt, err := h.Appointments.Get(ctx, caller, c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	var req InteractionRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	content := strings.TrimSpace(req.Content)
	if content == "" {
		utils.RespondError(c, apperrors.NewValidationError("Conteúdo obrigatório."))
		return
	}

	interaction := models.AppointmentInteraction{
		AppointmentID: appt.ID,
		UserID:        caller.ID,
		Type:          req.Type,
		Content:       content,
	}
	if err := h.DB.WithContext(ctx).Create(&interaction).Error; err != nil {
		utils.InternalServerError(c, err)
		return
	}
	utils.Created(c, "Interação registrada.", newInteractionView(&interaction))
}

// ListInteractions returns the notes of an appointment, oldest first.
func (h *InteractionHandler) ListInteractions(c *gin.Context) {
	ctx := c.Request.Context()

	appt, err := h.Appointments.Get(ctx, middleware.Caller(c), c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	var interactions []models.AppointmentInteraction
	err = h.DB.WithContext(ctx).
		Preload("User", func(db *gorm.DB) *gorm.DB { return db.Select("id", "name", "email") }).
		Where("appointment_id = ?", appt.ID).
		Order("created_at ASC").
		Find(&interactions).Error
	if err != nil {
		utils.InternalServerError(c, err)
		return
	}

	out := make([]InteractionView, 0, len(interactions))
	for i := range interactions {
		out = append(out, newInteractionView(&interactions[i]))
	}
	utils.Success(c, "Interações encontradas.", out)
}
