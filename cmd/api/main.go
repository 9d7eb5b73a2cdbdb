package main

import (
	"os"

	"github.com/rmagtibay/clinic-api/config"
	"github.com/rmagtibay/clinic-api/internal/email"
	"github.com/rmagtibay/clinic-api/internal/handler"
	authhandler "github.com/rmagtibay/clinic-api/internal/handler/auth"
	billinghandler "github.com/rmagtibay/clinic-api/internal/handler/billing"
	bookinghandler "github.com/rmagtibay/clinic-api/internal/handler/booking"
	cataloghandler "github.com/rmagtibay/clinic-api/internal/handler/catalog"
	inventoryhandler "github.com/rmagtibay/clinic-api/internal/handler/inventory"
	medicalhandler "github.com/rmagtibay/clinic-api/internal/handler/medical"
	patienthandler "github.com/rmagtibay/clinic-api/internal/handler/patient"
	poshandler "github.com/rmagtibay/clinic-api/internal/handler/pos"
	"github.com/rmagtibay/clinic-api/internal/middleware"
	"github.com/rmagtibay/clinic-api/internal/repository/postgres"
	"github.com/rmagtibay/clinic-api/internal/router"
	authservice "github.com/rmagtibay/clinic-api/internal/service/auth"
	billingservice "github.com/rmagtibay/clinic-api/internal/service/billing"
	bookingservice "github.com/rmagtibay/clinic-api/internal/service/booking"
	catalogservice "github.com/rmagtibay/clinic-api/internal/service/catalog"
	inventoryservice "github.com/rmagtibay/clinic-api/internal/service/inventory"
	medicalservice "github.com/rmagtibay/clinic-api/internal/service/medical"
	patientservice "github.com/rmagtibay/clinic-api/internal/service/patient"
	posservice "github.com/rmagtibay/clinic-api/internal/service/pos"
	"github.com/rmagtibay/clinic-api/pkg/auth"
	"github.com/rmagtibay/clinic-api/pkg/logger"
	"github.com/rmagtibay/clinic-api/pkg/metrics"
	"github.com/rmagtibay/clinic-api/pkg/security"
	"github.com/rmagtibay/clinic-api/pkg/validator"
)

func main() {
	log := logger.NewLogger(nil)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err, "failed to load config")
	}

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal(err, "failed to connect to database")
	}
	defer db.Close()

	if err := validator.RegisterCustom(); err != nil {
		log.Fatal(err, "failed to register validators")
	}

	appMetrics := metrics.NewMetrics("clinic", "api")
	hasher := security.NewBcryptHasher(0)
	jwtSvc := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.RefreshSecret, cfg.JWT.ExpiryHours)

	var emailSvc email.Service = email.NoopService{}
	if cfg.SMTP.Host != "" {
		emailSvc = email.NewSMTPService(cfg.SMTP)
	}

	// Repositories
	bookingRepo := postgres.NewBookingRepository(db)
	appointmentRepo := postgres.NewAppointmentRepository(db)
	userRepo := postgres.NewUserRepository(db)
	tokenRepo := postgres.NewTokenRepository(db)
	patientRepo := postgres.NewPatientRepository(db)
	recordRepo := postgres.NewMedicalRecordRepository(db)
	billingRepo := postgres.NewBillingRepository(db)
	inventoryRepo := postgres.NewInventoryRepository(db)
	prescriptionRepo := postgres.NewPrescriptionRepository(db)
	posRepo := postgres.NewPOSRepository(db)
	serviceRepo := postgres.NewServiceRepository(db)

	// Services
	catalogSvc := catalogservice.NewService(serviceRepo)
	bookingSvc := bookingservice.NewService(
		bookingRepo, appointmentRepo, catalogSvc, hasher, emailSvc,
		log, appMetrics, cfg.Billing.DefaultServiceFee,
	)
	billingSvc := billingservice.NewService(billingRepo, log, appMetrics)
	inventorySvc := inventoryservice.NewService(inventoryRepo, log, appMetrics)
	medicalSvc := medicalservice.NewService(recordRepo, prescriptionRepo, inventoryRepo, log, appMetrics)
	patientSvc := patientservice.NewService(patientRepo, userRepo, hasher, log)
	posSvc := posservice.NewService(posRepo, patientRepo, userRepo, emailSvc, log, appMetrics)
	authSvc := authservice.NewService(userRepo, tokenRepo, jwtSvc, hasher, emailSvc, log)

	// Handlers
	authMw := middleware.NewAuthMiddleware(jwtSvc)
	bookingH := bookinghandler.NewHandler(bookingSvc)
	catalogH := cataloghandler.NewHandler(catalogSvc)
	r := router.NewRouter(
		authMw,
		authhandler.NewHandler(authSvc),
		handler.NewHealthHandler(db),
		[]router.Handler{
			router.HandlerFunc(bookingH.RegisterPublicRoutes),
			router.HandlerFunc(catalogH.RegisterPublicRoutes),
		},
		[]router.Handler{
			bookingH,
			billinghandler.NewHandler(billingSvc),
			inventoryhandler.NewHandler(inventorySvc),
			medicalhandler.NewHandler(medicalSvc),
			patienthandler.NewHandler(patientSvc),
			poshandler.NewHandler(posSvc),
			catalogH,
		},
		router.Config{
			RateLimitEnabled: cfg.RateLimit.Enabled,
			RateLimitRPS:     cfg.RateLimit.RequestsPerSecond,
			RateLimitBurst:   cfg.RateLimit.Burst,
		},
	)
	r.Setup()

	log.Info("starting API server", "port", cfg.Server.Port)
	if err := r.Run(cfg.Server.Port); err != nil {
		log.Error(err, "server stopped")
		os.Exit(1)
	}
}
