package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/developmentHC/conectaBemBack/internal/config"
	"github.com/developmentHC/conectaBemBack/internal/handlers"
	"github.com/developmentHC/conectaBemBack/internal/middleware"
	"github.com/developmentHC/conectaBemBack/internal/models"
	"github.com/developmentHC/conectaBemBack/internal/otp"
)

// Dependencies is everything the handlers are built from.
type Dependencies struct {
	Cfg          *config.Config
	DB           *gorm.DB
	Pinger       handlers.DBPinger
	Redis        redis.UniversalClient
	Appointments handlers.AppointmentService
	Presenter    handlers.AppointmentPresenter
	OTPSender    otp.Sender
}

// SetupRoutes configures the application routes.
func SetupRoutes(router *gin.Engine, deps Dependencies) {
	cfg := deps.Cfg

	healthHandler := handlers.NewHealthHandler(deps.Pinger, deps.Redis, cfg.Environment)
	authHandler := handlers.NewAuthHandler(deps.DB, cfg, deps.OTPSender)
	userHandler := handlers.NewUserHandler(deps.DB, cfg)
	addressHandler := handlers.NewAddressHandler(deps.DB)
	clinicHandler := handlers.NewClinicHandler(deps.DB)
	photoHandler := handlers.NewPhotoHandler(deps.DB, cfg.MaxPhotoBytes)
	appointmentHandler := handlers.NewAppointmentHandler(deps.Appointments, deps.Presenter)
	interactionHandler := handlers.NewInteractionHandler(deps.DB, deps.Appointments)
	cleanupHandler := handlers.NewCleanupHandler(deps.DB, cfg)

	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Liveness)
		health.GET("/ready", healthHandler.Readiness)
	}

	auth := router.Group("/auth")
	{
		auth.POST("/otp/send", authHandler.SendOTP)
		auth.POST("/otp/verify", authHandler.VerifyOTP)
		auth.POST("/refresh-token", authHandler.RefreshToken)
		auth.POST("/logout", middleware.AuthMiddleware(cfg), authHandler.Logout)
	}

	router.GET("/users/:id/photo", photoHandler.GetPhoto)

	me := router.Group("/users/me")
	me.Use(middleware.AuthMiddleware(cfg))
	{
		me.GET("", userHandler.GetProfile)
		me.PUT("/patient", userHandler.CompletePatient)
		me.PUT("/professional", userHandler.CompleteProfessional)

		me.GET("/addresses", addressHandler.ListAddresses)
		me.POST("/addresses", addressHandler.CreateAddress)
		me.PUT("/addresses/:addressId", addressHandler.UpdateAddress)
		me.DELETE("/addresses/:addressId", addressHandler.DeleteAddress)

		me.GET("/clinics", clinicHandler.ListClinics)
		me.POST("/clinics", middleware.RoleAuthMiddleware(models.RoleProfessional), clinicHandler.CreateClinic)

		me.POST("/photo", photoHandler.UploadPhoto)
	}

	// role checks live in the appointment manager, which orders them against
	// the other validations
	appointments := router.Group("/appointments")
	appointments.Use(middleware.AuthMiddleware(cfg))
	{
		appointments.POST("", appointmentHandler.CreateAppointment)
		appointments.GET("/me", appointmentHandler.GetMyAppointments)
		appointments.GET("/:id", appointmentHandler.GetAppointmentByID)
		appointments.POST("/:id/actions", appointmentHandler.ApplyAction)
		appointments.GET("/:id/interactions", interactionHandler.ListInteractions)
		appointments.POST("/:id/interactions", interactionHandler.CreateInteraction)
	}

	router.DELETE("/dev/cleanup", cleanupHandler.Clear)
}
