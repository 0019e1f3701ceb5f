package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/lshigami/Caracal/config"
	"github.com/lshigami/Caracal/database"
	_ "github.com/lshigami/Caracal/docs" // Swagger docs - auto-generated
	"github.com/lshigami/Caracal/internal/bot"
	adminctrl "github.com/lshigami/Caracal/internal/controller/admin"
	userctrl "github.com/lshigami/Caracal/internal/controller/user"
	"github.com/lshigami/Caracal/internal/logger"
	"github.com/lshigami/Caracal/internal/model"
	"github.com/lshigami/Caracal/internal/repository"
	"github.com/lshigami/Caracal/internal/service"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

// @title Exam Attempt Engine API
// @version 1.0
// @description Candidate registration, single-use tokened exam links, timed attempts and at-most-once grading.
// @contact.name API Support
// @contact.email support@example.com
// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html
// @host localhost:8080
// @BasePath /
// @schemes http https
func main() {
	logger.Init()

	app := fx.New(
		// Core Application Components
		fx.Provide(
			config.NewConfig,
			database.NewDatabase,
			NewGinEngine,
			NewTelegramDispatcher,
		),

		// Repositories Layer
		fx.Provide(
			repository.NewExamRepository,
			repository.NewCandidateRepository,
			repository.NewAttemptRepository,
			repository.NewAnswerRepository,
			repository.NewBotRepository,
		),

		// Services Layer
		fx.Provide(
			service.NewScoringService,
			service.NewAttemptService,
			service.NewRegistrationService,
			service.NewAdminExamService,
			service.NewReportService,
		),

		// API Controllers Layer
		fx.Provide(
			adminctrl.NewAdminExamController,
			userctrl.NewExamController,
		),

		fx.Invoke(RegisterRoutesAndStartServer),
		fx.Invoke(AutoMigrateDB),
	)

	if err := app.Start(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Failed to start application")
	}

	<-app.Done()
	log.Info().Msg("Application shutting down gracefully...")
}

func NewGinEngine() *gin.Engine {
	r := gin.New()

	r.Use(gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
		log.Info().
			Str("client_ip", param.ClientIP).
			Str("method", param.Method).
			Str("path", param.Path).
			Int("status_code", param.StatusCode).
			Dur("latency", param.Latency).
			Str("user_agent", param.Request.UserAgent()).
			Str("error_message", param.ErrorMessage).
			Msg("gin_request")
		return ""
	}))
	r.Use(gin.Recovery())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Swagger UI: http://localhost:PORT/swagger/index.html
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}

// NewTelegramDispatcher wires the recruitment bot when a token is configured.
// Without a token the webhook route is simply not registered; the exam engine
// runs on its own.
func NewTelegramDispatcher(cfg *config.Config, botRepo repository.BotRepository) *bot.Dispatcher {
	if cfg.TelegramBotToken == "" {
		log.Info().Msg("TELEGRAM_BOT_TOKEN not set, telegram bot disabled")
		return nil
	}

	api, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		log.Error().Err(err).Msg("Failed to connect to telegram, bot disabled")
		return nil
	}

	webhook, err := tgbotapi.NewWebhook(cfg.SiteURL + "/webhook")
	if err != nil {
		log.Error().Err(err).Msg("Failed to build telegram webhook config, bot disabled")
		return nil
	}
	if _, err := api.Request(webhook); err != nil {
		log.Error().Err(err).Msg("Failed to set telegram webhook, bot disabled")
		return nil
	}

	log.Info().Str("bot", api.Self.UserName).Msg("Telegram bot connected")
	return bot.NewDispatcher(api, botRepo)
}

// RegisterRoutesAndStartServer configures routes and manages the server lifecycle.
func RegisterRoutesAndStartServer(
	lc fx.Lifecycle,
	router *gin.Engine,
	cfg *config.Config,
	adminExamCtrl *adminctrl.AdminExamController,
	examCtrl *userctrl.ExamController,
	dispatcher *bot.Dispatcher,
) {
	// Admin Routes (prefixed with /api/v1/admin)
	adminAPIGroup := router.Group("/api/v1/admin")
	{
		adminAPIGroup.POST("/exams", adminExamCtrl.CreateExam)
		adminAPIGroup.GET("/exams", adminExamCtrl.ListExams)
		adminAPIGroup.GET("/exams/:exam_id/attempts", adminExamCtrl.ListAttempts)
		adminAPIGroup.GET("/attempts/export", adminExamCtrl.ExportAttempts)
		adminAPIGroup.GET("/attempt/:token/answers", adminExamCtrl.ListAnswers)
	}

	// Candidate Routes
	userAPIGroup := router.Group("/api/v1")
	{
		userAPIGroup.POST("/exams/:exam_id/register", examCtrl.Register)
	}

	// Attempt links live at the site root so the emailed URL stays short.
	examGroup := router.Group("/exam/:token")
	{
		examGroup.GET("", examCtrl.Open)
		examGroup.GET("/submit", examCtrl.Submit)
		examGroup.POST("/submit", examCtrl.Submit)
		examGroup.GET("/result", examCtrl.Result)
	}

	if dispatcher != nil {
		router.POST("/webhook", dispatcher.WebhookHandler())
	}

	server := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info().Msgf("Exam engine server starting on port %s", cfg.Server.Port)
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

func AutoMigrateDB(db *gorm.DB) error {
	log.Info().Msg("Running database migrations...")
	err := db.AutoMigrate(
		&model.Exam{},
		&model.Question{},
		&model.Choice{},
		&model.Candidate{},
		&model.Attempt{},
		&model.Answer{},
		&model.TgUser{},
		&model.Menu{},
		&model.JobCategory{},
		&model.Location{},
		&model.Position{},
		&model.JobApplication{},
		&model.PageContent{},
		&model.DialogSession{},
	)
	if err != nil {
		log.Error().Err(err).Msg("Database migration failed")
		return err
	}
	log.Info().Msg("Database migration completed successfully.")
	return nil
}
