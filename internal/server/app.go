// Package server initializes and runs the TaskHub backend. It wires config,
// database, repositories, services, and the HTTP transport together, and
// handles graceful shutdown.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/dmitrijs2005/taskhub/internal/logging"
	"github.com/dmitrijs2005/taskhub/internal/server/config"
	"github.com/dmitrijs2005/taskhub/internal/server/httpapi"
	"github.com/dmitrijs2005/taskhub/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/taskhub/internal/server/services"
)

// dueSoonWindow is how far ahead the periodic sweep looks for tasks about to
// reach their due date. dueSoonInterval is how often it runs.
const (
	dueSoonWindow   = 24 * time.Hour
	dueSoonInterval = time.Hour
)

type App struct {
	config       *config.Config
	logger       logging.Logger
	db           *sql.DB
	userService  *services.UserService
	taskService  *services.TaskService
	notifService *services.NotificationService
	httpServer   *httpapi.Server
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	m := repomanager.NewPostgresRepositoryManager()
	if err := m.RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migration error: %w", err)
	}

	var mailer services.Mailer
	if cfg.EmailSender != "" {
		mailer, err = services.NewSESMailer(ctx, cfg.S3Region, cfg.EmailSender)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("mailer init error: %w", err)
		}
	} else {
		mailer = services.NewLogMailer(logger)
	}

	ns := services.NewNotificationService(db, m, mailer, logger)
	us := services.NewUserService(db, m, cfg, ns)
	ts := services.NewTaskService(db, m, cfg, ns)

	return &App{
		config:       cfg,
		logger:       logger,
		db:           db,
		userService:  us,
		taskService:  ts,
		notifService: ns,
		httpServer:   httpapi.NewServer(cfg, logger, us, ts, ns),
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// runDueSoonSweep periodically notifies owners about tasks approaching their
// due dates. Sweep failures are logged and the loop keeps going.
func (app *App) runDueSoonSweep(ctx context.Context) {
	ticker := time.NewTicker(dueSoonInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := app.taskService.NotifyDueSoon(ctx, dueSoonWindow); err != nil {
				app.logger.Error(ctx, "due-soon sweep failed", "error", err.Error())
			}
		}
	}
}

func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.runDueSoonSweep(ctx)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := app.httpServer.Run(ctx); err != nil {
			app.logger.Error(ctx, err.Error())
			cancelFunc()
		}
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close error", "error", err.Error())
	}

	app.logger.Info(ctx, "App stopped")
}
