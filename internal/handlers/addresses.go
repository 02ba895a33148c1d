package handlers

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/developmentHC/conectaBemBack/internal/middleware"
	"github.com/developmentHC/conectaBemBack/internal/models"
	"github.com/developmentHC/conectaBemBack/internal/services"
	"github.com/developmentHC/conectaBemBack/internal/utils"
)

const msgAddressNotFound = "Endereço não encontrado."

// AddressHandler manages the saved addresses of the authenticated user.
type AddressHandler struct {
	DB *gorm.DB
}

// NewAddressHandler creates a new AddressHandler.
func NewAddressHandler(db *gorm.DB) *AddressHandler {
	return &AddressHandler{DB: db}
}

// AddressRequest is the body for creating or replacing an address.
type AddressRequest struct {
	Name         string `json:"name"`
	CEP          string `json:"cep" binding:"required,min=8,max=9"`
	Street       string `json:"address" binding:"required"`
	Number       string `json:"number"`
	Neighborhood string `json:"neighborhood"`
	City         string `json:"city" binding:"required"`
	State        string `json:"state" binding:"required,len=2"`
	Addition     string `json:"addition"`
	Primary      bool   `json:"primary"`
}

func (r AddressRequest) apply(a *models.Address) {
	a.Name = strings.TrimSpace(r.Name)
	a.CEP = r.CEP
	a.Street = strings.TrimSpace(r.Street)
	a.Number = r.Number
	a.Neighborhood = r.Neighborhood
	a.City = strings.TrimSpace(r.City)
	a.State = strings.ToUpper(r.State)
	a.Addition = r.Addition
	a.Primary = r.Primary
}

// ListAddresses returns the caller's addresses, primary first.
func (h *AddressHandler) ListAddresses(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		utils.Unauthorized(c, "Unauthorized")
		return
	}

	var addresses []models.Address
	if err := h.DB.WithContext(c.Request.Context()).
		Where("user_id = ?", userID).
		Order("is_primary DESC, created_at ASC").
		Find(&addresses).Error; err != nil {
		utils.InternalServerError(c, err)
		return
	}
	utils.Success(c, "Endereços encontrados.", addresses)
}

// CreateAddress saves a new address. The first address becomes primary.
func (h *AddressHandler) CreateAddress(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		utils.Unauthorized(c, "Unauthorized")
		return
	}

	var req AddressRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	address := models.Address{UserID: userID}
	req.apply(&address)

	err := h.DB.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Address{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			address.Primary = true
		}
		if address.Primary {
			if err := clearPrimary(tx, userID, ""); err != nil {
				return err
			}
		}
		return tx.Create(&address).Error
	})
	if err != nil {
		utils.InternalServerError(c, err)
		return
	}
	utils.Created(c, "Endereço cadastrado.", address)
}

// UpdateAddress replaces one of the caller's addresses.
func (h *AddressHandler) UpdateAddress(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		utils.Unauthorized(c, "Unauthorized")
		return
	}
	addressID := c.Param("addressId")
	if err := services.ValidateID(addressID); err != nil {
		utils.RespondError(c, err)
		return
	}

	var req AddressRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	var address models.Address
	err := h.DB.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ? AND user_id = ?", addressID, userID).First(&address).Error; err != nil {
			return err
		}
		wasPrimary := address.Primary
		req.apply(&address)
		// the only primary address cannot be demoted
		if wasPrimary {
			address.Primary = true
		}
		if address.Primary && !wasPrimary {
			if err := clearPrimary(tx, userID, address.ID); err != nil {
				return err
			}
		}
		return tx.Save(&address).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		utils.NotFound(c, msgAddressNotFound)
		return
	}
	if err != nil {
		utils.InternalServerError(c, err)
		return
	}
	utils.Success(c, "Endereço atualizado.", address)
}

// DeleteAddress removes one of the caller's addresses. When the primary
// address goes, the oldest remaining one is promoted.
func (h *AddressHandler) DeleteAddress(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		utils.Unauthorized(c, "Unauthorized")
		return
	}
	addressID := c.Param("addressId")
	if err := services.ValidateID(addressID); err != nil {
		utils.RespondError(c, err)
		return
	}

	err := h.DB.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		var address models.Address
		if err := tx.Where("id = ? AND user_id = ?", addressID, userID).First(&address).Error; err != nil {
			return err
		}
		if err := tx.Delete(&address).Error; err != nil {
			return err
		}
		if !address.Primary {
			return nil
		}

		var next models.Address
		err := tx.Where("user_id = ?", userID).Order("created_at ASC").First(&next).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		return tx.Model(&next).Update("is_primary", true).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		utils.NotFound(c, msgAddressNotFound)
		return
	}
	if err != nil {
		utils.InternalServerError(c, err)
		return
	}
	utils.Success(c, "Endereço removido.", nil)
}

func clearPrimary(tx *gorm.DB, userID, exceptID string) error {
	q := tx.Model(&models.Address{}).Where("user_id = ? AND is_primary = ?", userID, true)
	if exceptID != "" {
		q = q.Where("id <> ?", exceptID)
	}
	return q.Update("is_primary", false).Error
}
