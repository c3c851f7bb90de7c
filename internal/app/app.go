package app

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"zplus_counselling_backend/internal/config"
	"zplus_counselling_backend/internal/controller"
	"zplus_counselling_backend/internal/repository"
	"zplus_counselling_backend/internal/service"
	"zplus_counselling_backend/pkg/database"
	"zplus_counselling_backend/pkg/logger"
	"zplus_counselling_backend/pkg/monitoring"
	"zplus_counselling_backend/pkg/security"
	"zplus_counselling_backend/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config   *config.Config
	Router   *gin.Engine
	DB       *gorm.DB
	Redis    *redis.Client
	services *services

	cfgMu     sync.RWMutex
	sweepStop chan struct{}
}

// ReloadConfig applies runtime-tunable settings from a freshly loaded config
// file. Only the assessment section takes effect without a restart; server
// port, database and middleware settings need one.
func (a *App) ReloadConfig(cfg *config.Config) {
	a.cfgMu.Lock()
	a.Config.Assessment = cfg.Assessment
	a.cfgMu.Unlock()
	logger.Log.Info("configuration reloaded",
		zap.Int("sessionTTLMinutes", cfg.Assessment.SessionTTLMinutes),
		zap.Bool("sweepEnabled", cfg.Assessment.SweepEnabled))
}

type repositories struct {
	user       *repository.UserRepository
	template   *repository.TemplateRepository
	session    *repository.SessionRepository
	answer     *repository.AnswerRepository
	result     *repository.ResultRepository
	counseling *repository.CounselingRepository
}

type services struct {
	auth       *service.AuthService
	user       *service.UserService
	assessment *service.AssessmentService
	template   *service.TemplateService
	counseling *service.CounselingService
}

type controllers struct {
	auth          *controller.AuthController
	user          *controller.UserController
	assessment    *controller.AssessmentController
	result        *controller.ResultController
	counseling    *controller.CounselingController
	adminTemplate *controller.AdminTemplateController
	health        *controller.HealthController
}

func (a *App) initRepositories(db *gorm.DB, rdb *redis.Client, cfg *config.Config) *repositories {
	cacheTTL := time.Duration(cfg.Assessment.CacheTTLMinutes) * time.Minute
	return &repositories{
		user:       repository.NewUserRepository(db),
		template:   repository.NewTemplateRepository(db, rdb, cacheTTL),
		session:    repository.NewSessionRepository(db),
		answer:     repository.NewAnswerRepository(db),
		result:     repository.NewResultRepository(db),
		counseling: repository.NewCounselingRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config) *services {
	return &services{
		auth:       service.NewAuthService(repos.user, cfg),
		user:       service.NewUserService(repos.user),
		assessment: service.NewAssessmentService(repos.template, repos.session, repos.answer, repos.result, repos.user),
		template:   service.NewTemplateService(repos.template),
		counseling: service.NewCounselingService(repos.counseling, repos.user),
	}
}

func (a *App) initControllers(s *services, db *gorm.DB, rdb *redis.Client) *controllers {
	return &controllers{
		auth:          controller.NewAuthController(s.auth),
		user:          controller.NewUserController(s.user),
		assessment:    controller.NewAssessmentController(s.assessment),
		result:        controller.NewResultController(s.assessment),
		counseling:    controller.NewCounselingController(s.counseling, s.user),
		adminTemplate: controller.NewAdminTemplateController(s.template),
		health:        controller.NewHealthController(db, rdb),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	maxRequests := cfg.RateLimit.MaxRequests
	if maxRequests <= 0 {
		maxRequests = 1000
	}
	window := time.Duration(cfg.RateLimit.WindowMinutes) * time.Minute
	if window <= 0 {
		window = time.Minute
	}
	router.Use(security.RateLimiter(maxRequests, window))

	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

// startBackgroundTasks runs the stale-session sweep on its interval until
// the app shuts down.
func (a *App) startBackgroundTasks(s *services, cfg *config.Config) {
	if !cfg.Assessment.SweepEnabled {
		return
	}

	interval := time.Duration(cfg.Assessment.SweepIntervalMinutes) * time.Minute

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				// TTL and the enabled flag are re-read so config reloads
				// apply without a restart.
				a.cfgMu.RLock()
				enabled := a.Config.Assessment.SweepEnabled
				ttl := time.Duration(a.Config.Assessment.SessionTTLMinutes) * time.Minute
				a.cfgMu.RUnlock()
				if !enabled {
					continue
				}
				if _, err := s.assessment.ExpireStaleSessions(ttl); err != nil {
					logger.Log.Error("session expiry sweep failed", zap.Error(err))
				}
			case <-a.sweepStop:
				return
			}
		}
	}()
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg.Server.Mode)

	logger.Log.Info("logger initialized")

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal("failed to initialize database", zap.Error(err))
	}

	// Debug mode migrates on every boot; release mode only with -migrate.
	if cfg.Server.Mode != "release" || cfg.ForceMigrate {
		if err := database.Migrate(db); err != nil {
			logger.Log.Fatal("migration failed", zap.Error(err))
		}
		logger.Log.Info("database migration completed")
	}
	if cfg.MigrateOnly {
		logger.Log.Info("migration complete, exiting")
		os.Exit(0)
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		// The template cache degrades to DB reads without Redis.
		logger.Log.Warn("redis unavailable, template caching disabled", zap.Error(err))
		rdb = nil
	}

	app := &App{
		Config:    cfg,
		DB:        db,
		Redis:     rdb,
		sweepStop: make(chan struct{}),
	}

	repos := app.initRepositories(db, rdb, cfg)
	svcs := app.initServices(repos, cfg)
	app.services = svcs
	ctrls := app.initControllers(svcs, db, rdb)

	if err := svcs.template.SeedDefaultTemplates(); err != nil {
		logger.Log.Error("template seeding failed", zap.Error(err))
	}

	monitoring.Init()

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		if _, err := tracing.InitTracer("counselling-platform", cfg.Tracing.CollectorEndpoint); err != nil {
			logger.Log.Fatal("failed to initialize tracing", zap.Error(err))
		}
	}

	app.registerRoutes(router, ctrls, cfg)

	app.startBackgroundTasks(svcs, cfg)

	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	go func() {
		log.Printf("Server running on port %s", a.Config.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	close(a.sweepStop)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	logger.Log.Sync()
	log.Println("Server exiting")
}
