package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/developmentHC/conectaBemBack/internal/middleware"
	"github.com/developmentHC/conectaBemBack/internal/models"
	"github.com/developmentHC/conectaBemBack/internal/utils"
)

// ClinicHandler manages the clinics of the authenticated professional.
type ClinicHandler struct {
	DB *gorm.DB
}

// NewClinicHandler creates a new ClinicHandler.
func NewClinicHandler(db *gorm.DB) *ClinicHandler {
	return &ClinicHandler{DB: db}
}

// ClinicRequest is the clinic body shared by profile completion and clinic creation.
type ClinicRequest struct {
	Name         string `json:"name" binding:"required"`
	CEP          string `json:"cep" binding:"required,min=8,max=9"`
	Street       string `json:"address" binding:"required"`
	Number       string `json:"number"`
	Neighborhood string `json:"neighborhood"`
	City         string `json:"city" binding:"required"`
	State        string `json:"state" binding:"required,len=2"`
	Addition     string `json:"addition"`
}

func (r ClinicRequest) toModel(professionalID string) models.Clinic {
	return models.Clinic{
		ProfessionalID: professionalID,
		Name:           strings.TrimSpace(r.Name),
		CEP:            r.CEP,
		Street:         strings.TrimSpace(r.Street),
		Number:         r.Number,
		Neighborhood:   r.Neighborhood,
		City:           strings.TrimSpace(r.City),
		State:          strings.ToUpper(r.State),
		Addition:       r.Addition,
	}
}

// ListClinics returns the caller's clinics, oldest first.
func (h *ClinicHandler) ListClinics(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		utils.Unauthorized(c, "Unauthorized")
		return
	}

	var clinics []models.Clinic
	if err := h.DB.WithContext(c.Request.Context()).
		Where("professional_id = ?", userID).
		Order("created_at ASC").
		Find(&clinics).Error; err != nil {
		utils.InternalServerError(c, err)
		return
	}
	utils.Success(c, "Clínicas encontradas.", clinics)
}

// CreateClinic registers another clinic for the calling professional.
func (h *ClinicHandler) CreateClinic(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		utils.Unauthorized(c, "Unauthorized")
		return
	}

	var req ClinicRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	clinic := req.toModel(userID)
	if err := h.DB.WithContext(c.Request.Context()).Create(&clinic).Error; err != nil {
		utils.InternalServerError(c, err)
		return
	}
	utils.Created(c, "Clínica cadastrada.", clinic)
}
