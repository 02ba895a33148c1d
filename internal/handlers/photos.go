package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/developmentHC/conectaBemBack/internal/apperrors"
	"github.com/developmentHC/conectaBemBack/internal/middleware"
	"github.com/developmentHC/conectaBemBack/internal/models"
	"github.com/developmentHC/conectaBemBack/internal/services"
	"github.com/developmentHC/conectaBemBack/internal/utils"
)

// multipart framing allowance on top of the file itself
const multipartOverhead = 64 << 10

var allowedPhotoTypes = []string{"image/jpeg", "image/png", "image/webp"}

// PhotoHandler stores and serves profile photos.
type PhotoHandler struct {
	DB       *gorm.DB
	MaxBytes int64
}

// NewPhotoHandler creates a new PhotoHandler.
func NewPhotoHandler(db *gorm.DB, maxBytes int64) *PhotoHandler {
	return &PhotoHandler{DB: db, MaxBytes: maxBytes}
}

// PhotoResponse describes a stored photo without its bytes.
type PhotoResponse struct {
	ID       string `json:"id"`
	FileName string `json:"fileName"`
	FileType string `json:"fileType"`
	Size     int    `json:"size"`
}

// UploadPhoto replaces the caller's profile photo. The content type is sniffed
// from the bytes; the client supplied header is ignored.
func (h *PhotoHandler) UploadPhoto(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		utils.Unauthorized(c, "Unauthorized")
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.MaxBytes+multipartOverhead)
	file, header, err := c.Request.FormFile("photo")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.tooLarge(c)
			return
		}
		utils.BadRequest(c, `Campo "photo" é obrigatório.`)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, h.MaxBytes+1))
	if err != nil {
		utils.InternalServerError(c, err)
		return
	}
	if int64(len(data)) > h.MaxBytes {
		h.tooLarge(c)
		return
	}

	mtype := mimetype.Detect(data)
	if !mimetype.EqualsAny(mtype.String(), allowedPhotoTypes...) {
		utils.Error(c, http.StatusUnsupportedMediaType, apperrors.KindValidation, "Formato de imagem não suportado. Use JPEG, PNG ou WEBP.")
		return
	}

	photo := models.ProfilePhoto{
		UserID:   userID,
		FileName: filepath.Base(header.Filename),
		FileType: mtype.String(),
		FileData: data,
		Size:     len(data),
	}
	err = h.DB.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&models.ProfilePhoto{}).Error; err != nil {
			return err
		}
		if err := tx.Create(&photo).Error; err != nil {
			return err
		}
		return tx.Model(&models.User{}).Where("id = ?", userID).Update("photo_id", photo.ID).Error
	})
	if err != nil {
		utils.InternalServerError(c, err)
		return
	}

	utils.Created(c, "Foto atualizada.", PhotoResponse{
		ID:       photo.ID,
		FileName: photo.FileName,
		FileType: photo.FileType,
		Size:     photo.Size,
	})
}

// GetPhoto serves a user's profile photo.
func (h *PhotoHandler) GetPhoto(c *gin.Context) {
	userID := c.Param("id")
	if err := services.ValidateID(userID); err != nil {
		utils.RespondError(c, err)
		return
	}

	var photo models.ProfilePhoto
	if err := h.DB.WithContext(c.Request.Context()).First(&photo, "user_id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "Foto não encontrada.")
		} else {
			utils.InternalServerError(c, err)
		}
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("inline; filename=%q", photo.FileName))
	c.Header("Cache-Control", "private, max-age=300")
	c.Data(http.StatusOK, photo.FileType, photo.FileData)
}

func (h *PhotoHandler) tooLarge(c *gin.Context) {
	utils.Error(c, http.StatusRequestEntityTooLarge, apperrors.KindValidation,
		fmt.Sprintf("A foto deve ter no máximo %d MB.", h.MaxBytes>>20))
}
