package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/simp-lee/logger"
	"gorm.io/gorm"

	"github.com/simp-lee/pension/internal/config"
	"github.com/simp-lee/pension/internal/domain"
	"github.com/simp-lee/pension/internal/jobs"
	"github.com/simp-lee/pension/internal/metrics"
	"github.com/simp-lee/pension/internal/middleware"
	"github.com/simp-lee/pension/internal/module/account"
	"github.com/simp-lee/pension/internal/module/auth"
	"github.com/simp-lee/pension/internal/module/member"
	"github.com/simp-lee/pension/internal/module/transaction"
	"github.com/simp-lee/pension/internal/notify"
	"github.com/simp-lee/pension/internal/pkg"
)

const shutdownTimeout = 10 * time.Second

// App holds the core application dependencies and the HTTP server.
type App struct {
	engine    *gin.Engine
	db        *gorm.DB
	logger    *logger.Logger
	cfg       *config.Config
	scheduler *jobs.Scheduler
	closeOnce sync.Once
}

type httpServer interface {
	ListenAndServe() error
	Shutdown(ctx context.Context) error
}

var newHTTPServer = func(addr string, handler http.Handler, timeout time.Duration) httpServer {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       timeout,
		WriteTimeout:      2 * timeout,
		IdleTimeout:       120 * time.Second,
	}
}

var notifyContext = func(parent context.Context, signals ...os.Signal) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, signals...)
}

// New creates and wires a fully configured App from a validated Config.
func New(cfg *config.Config) (*App, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}

	success := false

	log, err := config.SetupLogger(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("setup logger: %w", err)
	}
	defer func() {
		if !success {
			_ = log.Close()
		}
	}()
	if cfg.Server.Mode == gin.DebugMode && cfg.Server.Host == "0.0.0.0" {
		log.Warn("debug mode is listening on all interfaces")
	}

	db, err := config.SetupDatabase(&cfg.Database, log.Logger)
	if err != nil {
		return nil, fmt.Errorf("setup database: %w", err)
	}
	defer func() {
		if success {
			return
		}
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}()

	// Schema changes in production go through reviewed migrations.
	if cfg.Server.Mode != gin.ReleaseMode {
		if err := db.AutoMigrate(&domain.Member{}, &domain.Account{}, &domain.Transaction{}); err != nil {
			return nil, fmt.Errorf("auto migrate: %w", err)
		}
		log.Info("auto migration completed")
	}

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
	}

	// Repository → service → handler.
	pages := pkg.PageOptions{
		DefaultPageSize: cfg.Pagination.DefaultPageSize,
		MaxPageSize:     cfg.Pagination.MaxPageSize,
	}
	memberRepo := member.NewMemberRepository(db)
	accountRepo := account.NewAccountRepository(db)
	txnRepo := transaction.NewTransactionRepository(db)

	memberSvc := member.NewMemberService(memberRepo)
	accountSvc := account.NewAccountService(accountRepo, memberRepo, txnRepo)
	txnSvc := transaction.NewTransactionService(txnRepo, accountRepo, m)

	modules := []Module{
		member.NewModule(member.NewMemberHandler(memberSvc, pages)),
		account.NewModule(account.NewAccountHandler(accountSvc, memberSvc, pages)),
		transaction.NewModule(transaction.NewTransactionHandler(txnSvc, pages)),
	}

	var verifier middleware.TokenVerifier
	if cfg.Auth.Enabled {
		authSvc, err := auth.NewService(authOptions(&cfg.Auth))
		if err != nil {
			return nil, fmt.Errorf("setup auth: %w", err)
		}
		modules = append(modules, auth.NewModule(auth.NewHandler(authSvc)))
		verifier = authSvc
	}

	gin.SetMode(cfg.Server.Mode)
	engine := gin.New()
	engine.Use(
		middleware.Recovery(log.Logger),
		middleware.RequestID(),
		middleware.LoggerWithConfig(log.Logger, middleware.LoggerConfig{
			SkipPaths: []string{"/health", cfg.Metrics.Path},
		}),
	)
	if m != nil {
		engine.Use(middleware.Metrics(m))
	}
	if h, ok := middleware.CORS(cfg.Server.CORS, cfg.Server.Mode); ok {
		engine.Use(h)
	} else {
		log.Info("cors disabled: no allowed origins configured")
	}

	if err := RegisterRoutes(engine, &RouteDeps{
		Modules:     modules,
		DB:          db,
		Metrics:     m,
		MetricsPath: cfg.Metrics.Path,
		Verifier:    verifier,
		PublicPaths: cfg.Auth.PublicPaths,
	}); err != nil {
		return nil, fmt.Errorf("register routes: %w", err)
	}

	scheduler, err := setupScheduler(cfg, log.Logger, m, memberRepo)
	if err != nil {
		return nil, fmt.Errorf("setup jobs: %w", err)
	}

	success = true
	return &App{
		engine:    engine,
		db:        db,
		logger:    log,
		cfg:       cfg,
		scheduler: scheduler,
	}, nil
}

// Handler returns the HTTP handler serving the application routes.
func (a *App) Handler() http.Handler { return a.engine }

func authOptions(cfg *config.AuthConfig) auth.Options {
	ops := make(map[string]string, len(cfg.Operators))
	for _, op := range cfg.Operators {
		ops[op.Username] = op.PasswordHash
	}
	return auth.Options{
		Secret:    cfg.JWTSecret,
		Issuer:    cfg.Issuer,
		Expiry:    config.Duration(cfg.TokenExpiry, time.Hour),
		Operators: ops,
	}
}

// setupScheduler returns nil when jobs are disabled.
func setupScheduler(cfg *config.Config, log *slog.Logger, m *metrics.Metrics, members domain.MemberRepository) (*jobs.Scheduler, error) {
	if !cfg.Jobs.Enabled {
		return nil, nil
	}
	loc := time.UTC
	if cfg.Jobs.Timezone != "" {
		var err error
		if loc, err = time.LoadLocation(cfg.Jobs.Timezone); err != nil {
			return nil, err
		}
	}

	s := jobs.NewScheduler(log, m, loc)
	reminder := jobs.NewContributionReminder(members, notify.NewLogNotifier(log, cfg.Notification), cfg.Jobs.ContributionReminder, log, m)
	if err := s.Add(cfg.Jobs.ContributionReminder.Schedule, reminder); err != nil {
		return nil, err
	}
	return s, nil
}

// Run starts the HTTP server and the job scheduler and blocks until a
// shutdown signal is received or the server fails. Resources are released
// before it returns.
func (a *App) Run() error {
	if a == nil || a.cfg == nil || a.engine == nil {
		return errors.New("app is not initialized")
	}

	addr := fmt.Sprintf("%s:%d", a.cfg.Server.Host, a.cfg.Server.Port)
	srv := newHTTPServer(addr, a.engine, config.Duration(a.cfg.Server.Timeout, 30*time.Second))

	ctx, stop := notifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if a.scheduler != nil {
		a.scheduler.Start()
	}

	errCh := make(chan error, 1)
	go func() {
		a.log().Info("server started", slog.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
		a.log().Info("shutdown signal received")
	case err := <-errCh:
		runErr = fmt.Errorf("server error: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if runErr == nil {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			a.log().Error("server shutdown error", slog.Any("error", err))
		}
	}
	if a.scheduler != nil {
		if err := a.scheduler.Stop(shutdownCtx); err != nil {
			a.log().Error("scheduler stop error", slog.Any("error", err))
		}
	}
	a.Close()
	return runErr
}

// Close releases the database connection and the logger. It is safe to call
// more than once.
func (a *App) Close() {
	a.closeOnce.Do(a.close)
}

func (a *App) close() {
	if a.db != nil {
		if sqlDB, err := a.db.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				a.log().Error("database close error", slog.Any("error", err))
			} else {
				a.log().Info("database connection closed")
			}
		}
	}
	a.log().Info("server stopped")
	if a.logger != nil {
		if err := a.logger.Close(); err != nil {
			slog.Error("logger close error", slog.Any("error", err))
		}
	}
}

func (a *App) log() *slog.Logger {
	if a.logger != nil {
		return a.logger.Logger
	}
	return slog.Default()
}
