package handlers

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/developmentHC/conectaBemBack/internal/config"
	"github.com/developmentHC/conectaBemBack/internal/models"
	"github.com/developmentHC/conectaBemBack/internal/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testConfig() *config.Config {
	return &config.Config{
		Environment:               "test",
		JWTSecret:                 "access-secret",
		JWTRefreshSecret:          "refresh-secret",
		JWTExpirationMinutes:      15,
		JWTRefreshExpirationHours: 24,
		OTP:                       config.OTPConfig{TTL: 10 * time.Minute, Length: 6},
		MaxPhotoBytes:             1 << 20,
	}
}

func bearer(t *testing.T, cfg *config.Config, id string, role models.Role) string {
	t.Helper()
	access, _, err := utils.GenerateTokens(&models.User{BaseModel: models.BaseModel{ID: id}, Role: role}, cfg)
	require.NoError(t, err)
	return "Bearer " + access
}

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{
		TranslateError:         true,
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return db, mock
}
