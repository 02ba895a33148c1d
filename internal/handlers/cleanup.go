package handlers

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/developmentHC/conectaBemBack/internal/config"
	"github.com/developmentHC/conectaBemBack/internal/logging"
	"github.com/developmentHC/conectaBemBack/internal/models"
	"github.com/developmentHC/conectaBemBack/internal/utils"
)

// CleanupHandler wipes the database for local development and end-to-end runs.
type CleanupHandler struct {
	DB  *gorm.DB
	Cfg *config.Config
}

// NewCleanupHandler creates a new CleanupHandler.
func NewCleanupHandler(db *gorm.DB, cfg *config.Config) *CleanupHandler {
	return &CleanupHandler{DB: db, Cfg: cfg}
}

// children before parents
var cleanupOrder = []interface{}{
	&models.AppointmentInteraction{},
	&models.Appointment{},
	&models.ProfilePhoto{},
	&models.Address{},
	&models.Clinic{},
	&models.RefreshToken{},
	&models.User{},
}

// Clear deletes every row of every table. Refused in production and unless
// ENABLE_CLEANUP is set.
func (h *CleanupHandler) Clear(c *gin.Context) {
	if h.Cfg.IsProduction() || !h.Cfg.EnableCleanup {
		utils.Forbidden(c, "Acesso negado.")
		return
	}

	ctx := c.Request.Context()
	err := h.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, model := range cleanupOrder {
			if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Unscoped().Delete(model).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		utils.InternalServerError(c, err)
		return
	}

	logging.FromContext(ctx).Warn().Msg("database cleared")
	utils.Success(c, "Banco de dados limpo.", nil)
}
