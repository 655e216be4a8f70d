package apiapp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/minio/minio-go/v7"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/harborexpo/backend/internal/config"
	"github.com/harborexpo/backend/internal/infra/mailer"
	s3infra "github.com/harborexpo/backend/internal/infra/s3"
	"github.com/harborexpo/backend/internal/jobs/reminders"
	pgrepo "github.com/harborexpo/backend/internal/repo/postgres"
	redrepo "github.com/harborexpo/backend/internal/repo/redis"
	accountssvc "github.com/harborexpo/backend/internal/services/accounts"
	authsvc "github.com/harborexpo/backend/internal/services/auth"
	moderationsvc "github.com/harborexpo/backend/internal/services/moderation"
	ratesvc "github.com/harborexpo/backend/internal/services/rate"
	statssvc "github.com/harborexpo/backend/internal/services/stats"
)

type App struct {
	cfg         config.Config
	logger      *zap.Logger
	server      *http.Server
	postgres    *pgxpool.Pool
	redis       *goredis.Client
	s3          *minio.Client
	httpRouter  http.Handler
	reminderJob *reminders.Job
}

func New(ctx context.Context, cfg config.Config, log *zap.Logger) (*App, error) {
	if log == nil {
		return nil, fmt.Errorf("logger is nil")
	}

	r := chi.NewRouter()
	ApplyMiddlewares(r, log)

	var pool *pgxpool.Pool
	if p, err := pgrepo.NewPool(ctx, cfg.Postgres.DSN); err != nil {
		log.Warn("postgres init failed, continuing in degraded mode", zap.Error(err))
	} else {
		pool = p
	}

	redisClient := redrepo.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	sessionRepo := redrepo.NewSessionRepo(redisClient)
	rateRepo := redrepo.NewRateRepo(redisClient)
	cacheRepo := redrepo.NewCacheRepo(redisClient)

	registrantRepo := pgrepo.NewRegistrantRepo(pool)
	reportRepo := pgrepo.NewReportRepo(pool)
	adminAccountRepo := pgrepo.NewAdminAccountRepo(pool)

	var s3Client *minio.Client
	if c, err := s3infra.NewClient(s3infra.Config{
		Endpoint:  cfg.S3.Endpoint,
		AccessKey: cfg.S3.AccessKey,
		SecretKey: cfg.S3.SecretKey,
		UseSSL:    cfg.S3.UseSSL,
	}); err != nil {
		log.Warn("s3 init failed, continuing in degraded mode", zap.Error(err))
	} else {
		s3Client = c
	}
	documentStore := accountssvc.NewDocumentStore(s3Client, cfg.S3.Bucket)
	if s3Client != nil {
		if err := documentStore.EnsureBucket(ctx); err != nil {
			log.Warn("s3 bucket check failed", zap.Error(err))
		}
	}

	notifier := mailer.NewSender(cfg.SMTP, log)

	jwtManager := authsvc.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTAccessTTL)
	authService := authsvc.NewService(jwtManager, sessionRepo, adminAccountRepo, cfg.Auth.RefreshTTL)
	loginLimiter := ratesvc.NewLimiter(rateRepo, cfg.Auth.LoginPerMinute, cfg.Auth.LoginPer10Sec)
	accountsService := accountssvc.NewService(registrantRepo, documentStore, notifier, cfg.Admin.ManagementPageSize, cfg.Admin.MaxPageSize)
	moderationService := moderationsvc.NewService(reportRepo, notifier, cfg.Admin.ManagementPageSize, cfg.Admin.MaxPageSize)
	statsService := statssvc.NewService(registrantRepo, reportRepo, cacheRepo)
	reminderJob := reminders.New(registrantRepo, notifier, cfg.Reminders.PendingAge, cfg.Reminders.ResendCooldown, log)

	RegisterRoutes(r, Dependencies{
		AuthService:       authService,
		AccountsService:   accountsService,
		ModerationService: moderationService,
		StatsService:      statsService,
		LoginLimiter:      loginLimiter,
		Logger:            log,
		Config:            cfg,
	})

	server := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      r,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	return &App{
		cfg:         cfg,
		logger:      log,
		server:      server,
		postgres:    pool,
		redis:       redisClient,
		s3:          s3Client,
		httpRouter:  r,
		reminderJob: reminderJob,
	}, nil
}

func (a *App) Run() error {
	a.logger.Info("api server started", zap.String("addr", a.cfg.HTTP.Addr))
	err := a.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// RunReminderLoop drives the pending-registrant reminder sweep until the
// context is cancelled.
func (a *App) RunReminderLoop(ctx context.Context) error {
	if a.reminderJob == nil {
		return nil
	}

	interval := a.cfg.Reminders.Interval
	if interval <= 0 {
		interval = 6 * time.Hour
	}

	if err := a.reminderJob.Run(ctx); err != nil {
		return err
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := a.reminderJob.Run(ctx); err != nil {
				return err
			}
		}
	}
}

func (a *App) Shutdown(ctx context.Context) error {
	var shutdownErr error

	if err := a.server.Shutdown(ctx); err != nil {
		shutdownErr = err
	}
	if a.postgres != nil {
		a.postgres.Close()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil && shutdownErr == nil {
			shutdownErr = err
		}
	}

	return shutdownErr
}

func (a *App) Handler() http.Handler {
	return a.httpRouter
}
