package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/developmentHC/conectaBemBack/internal/config"
	"github.com/developmentHC/conectaBemBack/internal/logging"
	"github.com/developmentHC/conectaBemBack/internal/middleware"
	"github.com/developmentHC/conectaBemBack/internal/models"
	"github.com/developmentHC/conectaBemBack/internal/otp"
	"github.com/developmentHC/conectaBemBack/internal/utils"
)

const refreshCookie = "refresh_token"

// AuthHandler handles authentication-related requests.
type AuthHandler struct {
	DB     *gorm.DB
	Cfg    *config.Config
	Sender otp.Sender
	Now    func() time.Time
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(db *gorm.DB, cfg *config.Config, sender otp.Sender) *AuthHandler {
	return &AuthHandler{DB: db, Cfg: cfg, Sender: sender, Now: time.Now}
}

// SendOTPRequest represents the request body for requesting a login code.
type SendOTPRequest struct {
	Email string `json:"email" binding:"required"`
}

// SendOTPResponse tells the client whether the account was just created.
type SendOTPResponse struct {
	Email     string `json:"email"`
	IsNewUser bool   `json:"isNewUser"`
}

// VerifyOTPRequest represents the request body for exchanging a code for tokens.
type VerifyOTPRequest struct {
	Email string `json:"email" binding:"required"`
	OTP   string `json:"otp" binding:"required"`
}

// LoginResponse represents the response body for a successful login.
type LoginResponse struct {
	AccessToken  string               `json:"accessToken"`
	RefreshToken string               `json:"refreshToken"`
	User         models.UserSanitized `json:"user"`
}

// RefreshTokenRequest represents the request body for token refresh.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// RefreshTokenResponse represents the response body for successful token refresh.
type RefreshTokenResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// LogoutRequest represents the request body for user logout.
type LogoutRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// SendOTP issues a login code, creating a pending account on first contact.
func (h *AuthHandler) SendOTP(c *gin.Context) {
	var req SendOTPRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	email, ok := normalizeEmail(c, req.Email)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	code, err := otp.Generate(h.Cfg.OTP.Length)
	if err != nil {
		utils.InternalServerError(c, err)
		return
	}

	var user models.User
	created := false
	err = h.DB.WithContext(ctx).Where("email = ?", email).First(&user).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		user = models.User{Email: email, Status: models.AccountPending, Role: models.RoleUser}
		created = true
	case err != nil:
		utils.InternalServerError(c, err)
		return
	}

	if err := user.SetOTP(code, h.Cfg.OTP.TTL, h.Now()); err != nil {
		utils.InternalServerError(c, err)
		return
	}
	if err := h.DB.WithContext(ctx).Save(&user).Error; err != nil {
		utils.InternalServerError(c, err)
		return
	}

	if err := h.Sender.Send(ctx, email, code); err != nil {
		utils.InternalServerError(c, err)
		return
	}

	body := SendOTPResponse{Email: email, IsNewUser: created}
	if created {
		utils.Created(c, "Usuário criado. Código enviado para o email.", body)
		return
	}
	utils.Success(c, "Código enviado para o email.", body)
}

// VerifyOTP exchanges a valid code for an access and a refresh token.
func (h *AuthHandler) VerifyOTP(c *gin.Context) {
	var req VerifyOTPRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	email, ok := normalizeEmail(c, req.Email)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	var user models.User
	err := h.DB.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		utils.InternalServerError(c, err)
		return
	}
	if err != nil || !user.CheckOTP(strings.TrimSpace(req.OTP), h.Now()) {
		utils.Unauthorized(c, "Código inválido ou expirado.")
		return
	}

	user.ClearOTP()
	if err := h.DB.WithContext(ctx).Save(&user).Error; err != nil {
		utils.InternalServerError(c, err)
		return
	}

	access, refresh, err := h.issueTokens(c, h.DB, &user)
	if err != nil {
		utils.InternalServerError(c, err)
		return
	}

	logging.FromContext(ctx).Info().Str("user_id", user.ID).Msg("user logged in")
	utils.Success(c, "Login realizado com sucesso.", LoginResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		User:         user.Sanitize(),
	})
}

// RefreshToken rotates a refresh token. The presented token is revoked with a
// conditional update so that it can be exchanged only once.
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	presented, err := c.Cookie(refreshCookie)
	if err != nil || presented == "" {
		var req RefreshTokenRequest
		if !utils.BindAndValidate(c, &req) {
			return
		}
		presented = req.RefreshToken
	}

	claims, err := utils.ValidateToken(presented, h.Cfg.JWTRefreshSecret)
	if err != nil {
		utils.Unauthorized(c, "Refresh token inválido.")
		return
	}

	ctx := c.Request.Context()
	var resp RefreshTokenResponse
	err = h.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var stored models.RefreshToken
		if err := tx.Where("token = ? AND user_id = ?", presented, claims.UserID).First(&stored).Error; err != nil {
			return err
		}
		if !stored.Usable(h.Now()) {
			return errRefreshRejected
		}

		res := tx.Model(&models.RefreshToken{}).
			Where("id = ? AND is_revoked = ?", stored.ID, false).
			Update("is_revoked", true)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errRefreshRejected
		}

		var user models.User
		if err := tx.First(&user, "id = ?", claims.UserID).Error; err != nil {
			return err
		}
		resp.AccessToken, resp.RefreshToken, err = h.issueTokens(c, tx, &user)
		return err
	})
	switch {
	case errors.Is(err, errRefreshRejected), errors.Is(err, gorm.ErrRecordNotFound):
		utils.Unauthorized(c, "Refresh token expirado ou revogado.")
		return
	case err != nil:
		utils.InternalServerError(c, err)
		return
	}

	utils.Success(c, "Token atualizado com sucesso.", resp)
}

// Logout revokes the caller's refresh token and clears the cookie. An unknown
// or already revoked token still logs out.
func (h *AuthHandler) Logout(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		utils.Unauthorized(c, "Unauthorized")
		return
	}

	token, _ := c.Cookie(refreshCookie)
	if token == "" {
		var req LogoutRequest
		if !bindOptionalJSON(c, &req) {
			return
		}
		token = req.RefreshToken
	}

	if token != "" {
		err := h.DB.WithContext(c.Request.Context()).
			Model(&models.RefreshToken{}).
			Where("token = ? AND user_id = ? AND is_revoked = ?", token, userID, false).
			Updates(map[string]interface{}{"is_revoked": true, "expires_at": h.Now()}).Error
		if err != nil {
			utils.InternalServerError(c, err)
			return
		}
	}

	h.setRefreshCookie(c, "", -1)
	utils.Success(c, "Logout realizado com sucesso.", nil)
}

var errRefreshRejected = errors.New("refresh token rejected")

// issueTokens signs a token pair, stores the refresh token through db and sets
// the refresh cookie.
func (h *AuthHandler) issueTokens(c *gin.Context, db *gorm.DB, user *models.User) (string, string, error) {
	access, refresh, err := utils.GenerateTokens(user, h.Cfg)
	if err != nil {
		return "", "", err
	}

	stored := models.RefreshToken{
		UserID:    user.ID,
		Token:     refresh,
		ExpiresAt: h.Now().Add(utils.RefreshTTL(h.Cfg)),
	}
	if err := db.WithContext(c.Request.Context()).Create(&stored).Error; err != nil {
		return "", "", err
	}

	h.setRefreshCookie(c, refresh, int(utils.RefreshTTL(h.Cfg).Seconds()))
	return access, refresh, nil
}

func (h *AuthHandler) setRefreshCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(refreshCookie, value, maxAge, "/", "", h.Cfg.IsProduction(), true)
}

// normalizeEmail trims and lowercases raw before validating it.
func normalizeEmail(c *gin.Context, raw string) (string, bool) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if err := utils.ValidateVar(email, "required,email"); err != nil {
		utils.BadRequest(c, "Email inválido.")
		return "", false
	}
	return email, true
}
