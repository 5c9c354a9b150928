package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/lshigami/learning-insight/config"
	"github.com/lshigami/learning-insight/database"
	_ "github.com/lshigami/learning-insight/docs" // Swagger docs
	adminctrl "github.com/lshigami/learning-insight/internal/controller/admin"
	userctrl "github.com/lshigami/learning-insight/internal/controller/user"
	"github.com/lshigami/learning-insight/internal/logger"
	"github.com/lshigami/learning-insight/internal/middleware"
	"github.com/lshigami/learning-insight/internal/model"
	"github.com/lshigami/learning-insight/internal/repository"
	"github.com/lshigami/learning-insight/internal/service"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

// @title Learning Journey Exam & Insight API
// @version 1.0
// @description Final exam sessions, tutorial tracking, progress summaries and learning insights for learning journeys.
// @host localhost:8080
// @BasePath /api/v1
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	logger.Init()

	app := fx.New(
		fx.Provide(
			config.NewConfig,
			database.NewDatabase,
			NewGinEngine,
		),

		// Repositories Layer
		fx.Provide(
			repository.NewExamRepository,
			repository.NewRegistrationRepository,
			repository.NewSubmissionRepository,
			repository.NewTrackingRepository,
			repository.NewSummaryRepository,
		),

		// Services Layer
		fx.Provide(
			service.NewPrerequisiteOracle,
			service.NewProgressSummaryService,
			// The exam service only needs the refresh half of the summary service.
			func(pss service.ProgressSummaryService) service.SummaryRefresher { return pss },
			service.NewExamSessionService,
			service.NewTrackingService,
			service.NewInsightProvider,
			service.NewInsightService,
			service.NewExamAdminService,
		),

		// API Controllers Layer
		fx.Provide(
			adminctrl.NewAdminExamController,
			userctrl.NewExamSessionController,
			userctrl.NewTrackingController,
			userctrl.NewInsightController,
		),

		fx.Invoke(AutoMigrateDB),
		fx.Invoke(RegisterInsightProviderShutdown),
		fx.Invoke(RegisterRoutesAndStartServer),
	)

	if err := app.Start(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Failed to start application")
	}

	<-app.Done()
	log.Info().Msg("Application shutting down gracefully...")
	stopCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := app.Stop(stopCtx); err != nil {
		log.Error().Err(err).Msg("Application stop failed")
	}
}

func NewGinEngine(cfg *config.Config) *gin.Engine {
	logger.SetLevel(cfg.LogLevel)
	switch cfg.Server.GinMode {
	case gin.ReleaseMode, gin.TestMode:
		gin.SetMode(cfg.Server.GinMode)
	default:
		gin.SetMode(gin.DebugMode)
	}

	r := gin.New()
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger())
	r.Use(gin.Recovery())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.UserIDHeader, middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// URL: http://localhost:PORT/swagger/index.html
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}

// RegisterRoutesAndStartServer configures API routes and manages server lifecycle.
func RegisterRoutesAndStartServer(
	lc fx.Lifecycle,
	router *gin.Engine,
	cfg *config.Config,
	adminExamCtrl *adminctrl.AdminExamController,
	examCtrl *userctrl.ExamSessionController,
	trackingCtrl *userctrl.TrackingController,
	insightCtrl *userctrl.InsightController,
) {
	api := router.Group("/api/v1")
	api.Use(middleware.Identity(cfg))

	adminAPIGroup := api.Group("/admin")
	{
		adminAPIGroup.POST("/exams", adminExamCtrl.CreateExam)
	}

	{
		api.GET("/exams/:exam_id/start", examCtrl.StartSession)
		api.POST("/exams/:exam_id/submit", examCtrl.SubmitSession)
		api.GET("/exams/:exam_id/my-submissions", examCtrl.GetMySubmissions)
		api.GET("/journeys/:journey_id/exam", examCtrl.GetJourneyExam)
	}

	trackingGroup := api.Group("/tracking")
	{
		trackingGroup.POST("/tutorials/:tutorial_id/track", trackingCtrl.TrackTutorial)
		trackingGroup.POST("/heartbeat", trackingCtrl.Heartbeat)
		trackingGroup.GET("/summary", trackingCtrl.GetSummary)
		trackingGroup.GET("/activities", trackingCtrl.GetActivities)
		trackingGroup.POST("/update-summary", trackingCtrl.UpdateSummary)
	}

	insightGroup := api.Group("/insights")
	{
		insightGroup.POST("", insightCtrl.GenerateInsights)
		insightGroup.GET("/health", insightCtrl.Health)
	}

	server := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info().Msgf("Learning insight API server starting on port %s", cfg.Server.Port)
			log.Info().Msgf("Swagger UI available at http://localhost:%s/swagger/index.html", cfg.Server.Port)
			go func() {
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal().Err(err).Msg("Server ListenAndServe failed")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info().Msg("Server shutting down...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		},
	})
}

// RegisterInsightProviderShutdown closes the insight provider's client when the app stops.
func RegisterInsightProviderShutdown(lc fx.Lifecycle, provider service.InsightProvider) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			log.Info().Str("provider", provider.Name()).Msg("Closing insight provider")
			return provider.Close()
		},
	})
}

func AutoMigrateDB(db *gorm.DB) error {
	log.Info().Msg("Running database migrations...")
	err := db.AutoMigrate(
		&model.Tutorial{},
		&model.Exam{},
		&model.ExamQuestion{},
		&model.ExamRegistration{},
		&model.ExamSubmission{},
		&model.ExamAnswer{},
		&model.UserActivityTracking{},
		&model.UserProgressSummary{},
	)
	if err != nil {
		log.Error().Err(err).Msg("Database migration failed")
		return err
	}
	log.Info().Msg("Database migration completed successfully.")
	return nil
}
