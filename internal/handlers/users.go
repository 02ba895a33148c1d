package handlers

import (
	"errors"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/developmentHC/conectaBemBack/internal/apperrors"
	"github.com/developmentHC/conectaBemBack/internal/config"
	"github.com/developmentHC/conectaBemBack/internal/middleware"
	"github.com/developmentHC/conectaBemBack/internal/models"
	"github.com/developmentHC/conectaBemBack/internal/utils"
)

const birthdayLayout = "2006-01-02"

// UserHandler handles profile requests of the authenticated user.
type UserHandler struct {
	DB  *gorm.DB
	Cfg *config.Config
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(db *gorm.DB, cfg *config.Config) *UserHandler {
	return &UserHandler{DB: db, Cfg: cfg}
}

// CompletePatientRequest finishes a patient profile.
type CompletePatientRequest struct {
	Name                     string   `json:"name" binding:"required"`
	BirthdayDate             string   `json:"birthdayDate" binding:"required"`
	ResidentialCEP           string   `json:"userCEP" binding:"required"`
	ServicePreferences       []string `json:"userServicePreferences"`
	AccessibilityPreferences []string `json:"userAcessibilityPreferences"`
}

// CompleteProfessionalRequest finishes a professional profile and registers
// the first clinic.
type CompleteProfessionalRequest struct {
	Name               string        `json:"name" binding:"required"`
	BirthdayDate       string        `json:"birthdayDate" binding:"required"`
	Document           string        `json:"CPF_CNPJ" binding:"required,min=11,max=18"`
	Specialties        []string      `json:"professionalSpecialties" binding:"required,min=1"`
	OtherSpecialties   []string      `json:"otherProfessionalSpecialties"`
	ServicePreferences []string      `json:"professionalServicePreferences"`
	Clinic             ClinicRequest `json:"clinic" binding:"required"`
}

// ProfileCompletedResponse carries the user and new tokens, since the role in
// the old access token is stale after completion.
type ProfileCompletedResponse struct {
	AccessToken  string               `json:"accessToken"`
	RefreshToken string               `json:"refreshToken"`
	User         models.UserSanitized `json:"user"`
}

// GetProfile handles fetching the currently authenticated user's profile.
func (h *UserHandler) GetProfile(c *gin.Context) {
	user, ok := h.loadCaller(c)
	if !ok {
		return
	}
	utils.Success(c, "Perfil encontrado.", user.Sanitize())
}

// CompletePatient turns a pending account into a patient.
func (h *UserHandler) CompletePatient(c *gin.Context) {
	var req CompletePatientRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	birthday, err := time.Parse(birthdayLayout, req.BirthdayDate)
	if err != nil {
		utils.BadRequest(c, "birthdayDate inválido. Use AAAA-MM-DD.")
		return
	}

	user, ok := h.loadPending(c)
	if !ok {
		return
	}
	user.Name = strings.TrimSpace(req.Name)
	user.BirthdayDate = &birthday
	user.ResidentialCEP = req.ResidentialCEP
	user.ServicePreferences = req.ServicePreferences
	user.AccessibilityPreferences = req.AccessibilityPreferences
	user.Role = models.RolePatient
	user.Status = models.AccountCompleted

	if err := h.DB.WithContext(c.Request.Context()).Save(user).Error; err != nil {
		utils.InternalServerError(c, err)
		return
	}
	h.respondCompleted(c, user)
}

// CompleteProfessional turns a pending account into a professional and
// creates its first clinic in the same transaction.
func (h *UserHandler) CompleteProfessional(c *gin.Context) {
	var req CompleteProfessionalRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	birthday, err := time.Parse(birthdayLayout, req.BirthdayDate)
	if err != nil {
		utils.BadRequest(c, "birthdayDate inválido. Use AAAA-MM-DD.")
		return
	}

	user, ok := h.loadPending(c)
	if !ok {
		return
	}
	user.Name = strings.TrimSpace(req.Name)
	user.BirthdayDate = &birthday
	user.Document = req.Document
	user.Specialties = req.Specialties
	user.OtherSpecialties = req.OtherSpecialties
	user.ServicePreferences = req.ServicePreferences
	user.Role = models.RoleProfessional
	user.Status = models.AccountCompleted

	err = h.DB.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(user).Error; err != nil {
			return err
		}
		clinic := req.Clinic.toModel(user.ID)
		return tx.Create(&clinic).Error
	})
	if err != nil {
		utils.InternalServerError(c, err)
		return
	}
	h.respondCompleted(c, user)
}

func (h *UserHandler) respondCompleted(c *gin.Context, user *models.User) {
	access, refresh, err := utils.GenerateTokens(user, h.Cfg)
	if err != nil {
		utils.InternalServerError(c, err)
		return
	}
	stored := models.RefreshToken{
		UserID:    user.ID,
		Token:     refresh,
		ExpiresAt: time.Now().Add(utils.RefreshTTL(h.Cfg)),
	}
	if err := h.DB.WithContext(c.Request.Context()).Create(&stored).Error; err != nil {
		utils.InternalServerError(c, err)
		return
	}
	utils.Success(c, "Cadastro concluído.", ProfileCompletedResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		User:         user.Sanitize(),
	})
}

// loadCaller loads the authenticated user, writing the error response itself.
func (h *UserHandler) loadCaller(c *gin.Context) (*models.User, bool) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		utils.Unauthorized(c, "Unauthorized")
		return nil, false
	}

	var user models.User
	if err := h.DB.WithContext(c.Request.Context()).First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "Usuário não encontrado.")
		} else {
			utils.InternalServerError(c, err)
		}
		return nil, false
	}
	return &user, true
}

// loadPending loads the caller and rejects accounts already completed.
func (h *UserHandler) loadPending(c *gin.Context) (*models.User, bool) {
	user, ok := h.loadCaller(c)
	if !ok {
		return nil, false
	}
	if user.Status == models.AccountCompleted {
		utils.RespondError(c, apperrors.NewInvalidTransitionError("Cadastro já concluído."))
		return nil, false
	}
	return user, true
}
