package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/parkhive/parkhive-api/internal/config"
	"github.com/parkhive/parkhive-api/internal/domain/auth"
	"github.com/parkhive/parkhive-api/internal/domain/billing"
	"github.com/parkhive/parkhive-api/internal/domain/dashboard"
	"github.com/parkhive/parkhive-api/internal/domain/employee"
	"github.com/parkhive/parkhive-api/internal/domain/garage"
	"github.com/parkhive/parkhive-api/internal/domain/recommendation"
	"github.com/parkhive/parkhive-api/internal/domain/reservation"
	"github.com/parkhive/parkhive-api/internal/domain/review"
	"github.com/parkhive/parkhive-api/internal/domain/user"
	"github.com/parkhive/parkhive-api/internal/middleware"
	"github.com/parkhive/parkhive-api/internal/pkg/database"
	"github.com/parkhive/parkhive-api/internal/pkg/email"
	"github.com/parkhive/parkhive-api/internal/pkg/imaging"
	"github.com/parkhive/parkhive-api/internal/pkg/jwt"
	pkgresponse "github.com/parkhive/parkhive-api/internal/pkg/response"
	"github.com/parkhive/parkhive-api/internal/pkg/storage"
)

func main() {
	cfg := config.Load()
	setupLogger(cfg)

	log.Info().
		Str("env", cfg.Env).
		Str("port", cfg.Port).
		Msg("Starting ParkHive API")

	db, err := database.NewPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer database.ClosePostgres(db)

	redis, err := database.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer database.CloseRedis(redis)

	jwtService := jwt.NewService(cfg.JWTSecret, cfg.JWTAccessTTL, cfg.JWTRefreshTTL)

	// ---------- Repositories ----------
	userRepo := user.NewRepository(db)
	garageRepo := garage.NewRepository(db)
	reservationRepo := reservation.NewRepository(db)
	billingRepo := billing.NewRepository(db)
	reviewRepo := review.NewRepository(db)
	employeeRepo := employee.NewRepository(db)

	// ---------- Photo storage ----------
	var photoStore garage.PhotoStore
	if cfg.StorageAccountID != "" {
		bucket, err := storage.NewBucket(storage.Config{
			AccountID:       cfg.StorageAccountID,
			AccessKeyID:     cfg.StorageAccessKeyID,
			AccessKeySecret: cfg.StorageAccessKeySecret,
			BucketName:      cfg.StorageBucketName,
			PublicURL:       cfg.StoragePublicURL,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create photo storage")
		}
		photoStore = storage.NewPhotoService(bucket, imaging.NewProcessor(imaging.DefaultConfig()))
	} else {
		log.Warn().Msg("Photo storage not configured, uploads disabled")
	}

	// ---------- Live availability hub ----------
	hub := garage.NewHub(redis)
	hubCtx, stopHub := context.WithCancel(context.Background())
	defer stopHub()
	go hub.Run(hubCtx)

	// ---------- Reservation core ----------
	garageDir := &garageDirectoryAdapter{repo: garageRepo}
	ledger := reservation.NewLedger(garageDir, reservationRepo, cfg.AdmitWait, cfg.AdmissionHoldTTL)

	policy := reservation.Policy{
		GracePeriod: cfg.BookingGracePeriod,
		MinDuration: cfg.MinBookingDuration,
		MaxDuration: cfg.MaxBookingDuration,
	}

	billingService := billing.NewService(billingRepo)

	reservationService := reservation.NewService(reservationRepo, garageDir, ledger, &managerAuthz{users: userRepo}, policy).
		WithBilling(billingService).
		WithPublisher(hub)

	if cfg.SendGridAPIKey != "" {
		mailer := email.NewMailer(cfg.SendGridAPIKey, cfg.SendGridFromName, cfg.SendGridFromEmail)
		reservationService = reservationService.WithNotifier(email.NewBookingNotifier(mailer, userRepo))
	} else {
		log.Warn().Msg("SendGrid not configured, booking emails disabled")
	}

	// ---------- Services ----------
	authService := auth.NewService(userRepo, jwtService, redis)
	reviewService := review.NewService(reviewRepo, garageRepo)
	dashboardService := dashboard.NewService(db)

	recommendationService := recommendation.NewService(garageRepo, reservationRepo, reservationService).
		WithPreferences(&userPreferenceAdapter{users: userRepo})
	if redis != nil {
		recommendationService = recommendationService.WithCache(redis)
	}

	// ---------- Background jobs ----------
	scheduler := cron.New()
	if _, err := scheduler.AddFunc("@every 1m", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := reservationService.CompleteFinished(ctx); err != nil {
			log.Error().Err(err).Msg("reservation completion sweep failed")
		}
	}); err != nil {
		log.Fatal().Err(err).Msg("Failed to schedule completion sweep")
	}
	scheduler.Start()
	defer scheduler.Stop()

	// ---------- Handlers ----------
	authHandler := auth.NewHandler(authService)
	garageHandler := garage.NewHandler(garageRepo, reservationService, hub, photoStore)
	reservationHandler := reservation.NewHandler(reservationService)
	recommendationHandler := recommendation.NewHandler(recommendationService)
	billingHandler := billing.NewHandler(billingService)
	reviewHandler := review.NewHandler(reviewService)
	employeeHandler := employee.NewHandler(employeeRepo)
	dashboardHandler := dashboard.NewHandler(dashboardService)

	authMiddleware := middleware.Auth(jwtService)
	managerOnly := func(next http.Handler) http.Handler {
		return authMiddleware(middleware.RequireManager()(next))
	}
	adminOnly := func(next http.Handler) http.Handler {
		return authMiddleware(middleware.RequireAdmin()(next))
	}

	// ---------- Router ----------
	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recover)
	r.Use(middleware.CORSHandler(cfg.AllowedOrigins))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		pkgresponse.OK(w, map[string]string{
			"status":  "ok",
			"version": "1.0.0",
		})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Mount("/auth", authHandler.Routes(authMiddleware))
		r.Mount("/garages", garageHandler.Routes(managerOnly))
		r.Mount("/garages/{garageID}/reviews", reviewHandler.Routes(authMiddleware))
		r.Mount("/reservations", reservationHandler.Routes(authMiddleware))
		r.Mount("/recommendations", recommendationHandler.Routes(authMiddleware))
		r.Mount("/billing", billingHandler.Routes(authMiddleware))
		r.Mount("/employees", employeeHandler.Routes(managerOnly))
		r.Mount("/dashboard", dashboardHandler.Routes(adminOnly))
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited properly")
}

func setupLogger(cfg *config.Config) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.IsDevelopment() {
		log.Logger = log.Output(zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: "15:04:05",
		})
	}
}

// Adapter implementations to bridge interface mismatches

// garageDirectoryAdapter exposes the garage repository as the reservation
// core's read-only directory and capacity source.
type garageDirectoryAdapter struct {
	repo *garage.Repository
}

func (a *garageDirectoryAdapter) GetByID(ctx context.Context, id uuid.UUID) (*reservation.GarageInfo, error) {
	g, err := a.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if g == nil {
		return nil, nil
	}
	return &reservation.GarageInfo{
		ID:              g.ID,
		TotalSpaces:     g.TotalSpaces,
		HourlyRatePence: g.HourlyRatePence,
	}, nil
}

func (a *garageDirectoryAdapter) TotalSpaces(ctx context.Context, garageID uuid.UUID) (int, error) {
	g, err := a.repo.GetByID(ctx, garageID)
	if err != nil {
		return 0, err
	}
	if g == nil {
		return 0, reservation.ErrGarageNotFound
	}
	return g.TotalSpaces, nil
}

// userPreferenceAdapter reads the saved amenity tags off the user row.
type userPreferenceAdapter struct {
	users user.Repository
}

func (a *userPreferenceAdapter) PreferredAmenities(ctx context.Context, userID uuid.UUID) ([]string, error) {
	u, err := a.users.GetByID(ctx, userID)
	if err != nil || u == nil {
		return nil, err
	}
	return u.PreferredAmenities, nil
}

// managerAuthz lets managers and admins act on other users' reservations.
type managerAuthz struct {
	users user.Repository
}

func (m *managerAuthz) CanManage(ctx context.Context, actingUserID, _ uuid.UUID) (bool, error) {
	acting, err := m.users.GetByID(ctx, actingUserID)
	if err != nil {
		return false, err
	}
	if acting == nil {
		return false, nil
	}
	return acting.IsManager(), nil
}
