package main

import (
	"context"
	"flag"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/developmentHC/conectaBemBack/internal/apperrors"
	"github.com/developmentHC/conectaBemBack/internal/config"
	"github.com/developmentHC/conectaBemBack/internal/locking"
	"github.com/developmentHC/conectaBemBack/internal/logging"
	"github.com/developmentHC/conectaBemBack/internal/models"
	"github.com/developmentHC/conectaBemBack/internal/services"
	"github.com/developmentHC/conectaBemBack/internal/store"
)

var specialties = []string{
	"Fisioterapia",
	"Psicologia",
	"Nutrição",
	"Fonoaudiologia",
	"Terapia Ocupacional",
	"Acupuntura",
	"Quiropraxia",
	"Pilates",
}

func main() {
	professionals := flag.Int("professionals", 20, "number of professionals to create")
	patients := flag.Int("patients", 200, "number of patients to create")
	bookings := flag.Int("appointments", 300, "number of booking attempts")
	flag.Parse()

	_ = godotenv.Load()
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("config load error")
	}
	logging.Init(cfg.ServiceName+"-seed", cfg.Environment)
	if cfg.IsProduction() {
		log.Fatal().Msg("refusing to seed a production database")
	}

	db, err := models.InitDB(models.DatabaseConfig{Driver: cfg.Database.Driver, DSN: cfg.Database.DSN, PingAttempts: 3, PingDelay: time.Second})
	if err != nil {
		log.Fatal().Err(err).Msg("database connection error")
	}

	gofakeit.Seed(time.Now().UnixNano())
	ctx := context.Background()

	clinics, err := seedProfessionals(ctx, db, *professionals)
	if err != nil {
		log.Fatal().Err(err).Msg("seed professionals")
	}
	patientIDs, err := seedPatients(ctx, db, *patients)
	if err != nil {
		log.Fatal().Err(err).Msg("seed patients")
	}
	if err := seedAppointments(ctx, db, clinics, patientIDs, *bookings); err != nil {
		log.Fatal().Err(err).Msg("seed appointments")
	}

	log.Info().Msg("seed complete")
}

func seedProfessionals(ctx context.Context, db *gorm.DB, count int) ([]models.Clinic, error) {
	log.Info().Int("count", count).Msg("seeding professionals")

	clinics := make([]models.Clinic, 0, count)
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := 0; i < count; i++ {
			pro := models.User{
				Email:       gofakeit.Email(),
				Name:        gofakeit.Name(),
				Role:        models.RoleProfessional,
				Status:      models.AccountCompleted,
				Document:    gofakeit.Numerify("###########"),
				Specialties: []string{specialties[gofakeit.Number(0, len(specialties)-1)]},
			}
			if err := tx.Create(&pro).Error; err != nil {
				return err
			}

			clinic := models.Clinic{
				ProfessionalID: pro.ID,
				Name:           gofakeit.Company(),
				CEP:            gofakeit.Numerify("#####-###"),
				Street:         gofakeit.Street(),
				Number:         gofakeit.StreetNumber(),
				Neighborhood:   gofakeit.City(),
				City:           gofakeit.City(),
				State:          gofakeit.StateAbr(),
			}
			if err := tx.Create(&clinic).Error; err != nil {
				return err
			}
			clinics = append(clinics, clinic)
		}
		return nil
	})
	return clinics, err
}

func seedPatients(ctx context.Context, db *gorm.DB, count int) ([]string, error) {
	log.Info().Int("count", count).Msg("seeding patients")

	const batchSize = 100
	ids := make([]string, 0, count)
	for offset := 0; offset < count; offset += batchSize {
		end := min(offset+batchSize, count)

		batch := make([]models.User, 0, end-offset)
		for i := offset; i < end; i++ {
			batch = append(batch, models.User{
				Email:          gofakeit.Email(),
				Name:           gofakeit.Name(),
				Role:           models.RolePatient,
				Status:         models.AccountCompleted,
				ResidentialCEP: gofakeit.Numerify("#####-###"),
			})
		}
		if err := db.WithContext(ctx).Create(&batch).Error; err != nil {
			return nil, err
		}
		for _, u := range batch {
			ids = append(ids, u.ID)
		}
	}
	return ids, nil
}

// seedAppointments books through the appointment manager, so collisions on a
// slot are rejected exactly as they would be over HTTP.
func seedAppointments(ctx context.Context, db *gorm.DB, clinics []models.Clinic, patientIDs []string, attempts int) error {
	if len(clinics) == 0 || len(patientIDs) == 0 {
		return nil
	}
	log.Info().Int("attempts", attempts).Msg("seeding appointments")

	manager := services.NewAppointmentManager(store.NewAppointmentStore(db), locking.NewLocalLocker())
	start := time.Now().Add(24 * time.Hour).Truncate(time.Hour)

	booked, conflicts := 0, 0
	for i := 0; i < attempts; i++ {
		clinic := clinics[gofakeit.Number(0, len(clinics)-1)]
		at := start.Add(time.Duration(gofakeit.Number(0, 30*10)) * time.Hour)
		caller := services.CallerContext{ID: patientIDs[gofakeit.Number(0, len(patientIDs)-1)], Role: models.RolePatient}

		_, err := manager.Create(ctx, caller, services.CreateInput{
			ProfessionalID: clinic.ProfessionalID,
			DateTime:       at.UTC().Format(time.RFC3339),
			Address:        &services.AddressRef{ClinicID: clinic.ID},
			Notes:          gofakeit.Sentence(8),
		})
		switch {
		case apperrors.Is(err, apperrors.KindScheduleConflict):
			conflicts++
		case err != nil:
			return err
		default:
			booked++
		}
	}

	log.Info().Int("booked", booked).Int("conflicts", conflicts).Msg("appointments seeded")
	return nil
}
