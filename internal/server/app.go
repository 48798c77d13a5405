// Package server initializes and runs the application processes: the HTTP
// API serving the admin frontend and the pipeline worker consuming the
// store and status queues. Both share the same wiring: config, structured
// logging, Postgres repositories, S3 blob store, AMQP queues and graceful
// signal-driven shutdown.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/instashare/instashare/internal/filex"
	"github.com/instashare/instashare/internal/logging"
	"github.com/instashare/instashare/internal/server/blob"
	"github.com/instashare/instashare/internal/server/config"
	"github.com/instashare/instashare/internal/server/files"
	"github.com/instashare/instashare/internal/server/httpapi"
	"github.com/instashare/instashare/internal/server/notify"
	"github.com/instashare/instashare/internal/server/pipeline"
	"github.com/instashare/instashare/internal/server/queue"
	"github.com/instashare/instashare/internal/server/shared/db"
)

// Mode selects which processes an App runs.
type Mode int

const (
	// ModeAPI runs the HTTP API only.
	ModeAPI Mode = iota
	// ModeWorker runs the queue consumers only.
	ModeWorker
	// ModeAll runs both in one process.
	ModeAll
)

type App struct {
	config *config.Config
	logger logging.Logger
	mode   Mode

	amqp     *queue.AMQPQueue
	pipeline *pipeline.Pipeline
	worker   *pipeline.Worker
	handler  http.Handler
}

func NewApp(ctx context.Context, cfg *config.Config, mode Mode) (*App, error) {

	logger := logging.NewJSON(os.Stdout)

	spoolDir, err := filex.EnsureDir(cfg.SpoolDir)
	if err != nil {
		return nil, fmt.Errorf("spool dir init error: %w", err)
	}
	cfg.SpoolDir = spoolDir

	rm, err := db.NewPostgresRepositoryManager(cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	blobs, err := blob.NewS3Store(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("blob store init error: %w", err)
	}

	amqp, err := queue.DialAMQP(cfg.AMQPURL, logger)
	if err != nil {
		return nil, fmt.Errorf("amqp init error: %w", err)
	}

	sender := notify.NewSMTPSender(cfg.SMTPAddr, cfg.SMTPFrom)

	p := pipeline.New(rm.Files(), rm.Users(), blobs, amqp, sender, cfg, logger)
	w := pipeline.NewWorker(p, amqp, cfg, logger)

	fs := files.NewService(rm.Files(), blobs, logger)
	fh := httpapi.NewFilesHandler(fs, p, cfg.MaxUploadBytes, logger)
	handler := httpapi.NewRouter(cfg, fh)

	return &App{
		config:   cfg,
		logger:   logger,
		mode:     mode,
		amqp:     amqp,
		pipeline: p,
		worker:   w,
		handler:  handler,
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {

	srv := &http.Server{
		Addr:    app.config.EndpointAddr,
		Handler: app.handler,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			app.logger.Error(ctx, "HTTP server shutdown error", "error", err)
		}
	}()

	app.logger.Info(ctx, "HTTP server listening", "addr", app.config.EndpointAddr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startWorker(ctx context.Context, cancelFunc context.CancelFunc) {

	app.logger.Info(ctx, "Pipeline worker starting",
		"store_queue", app.config.StoreQueue, "status_queue", app.config.StatusQueue)
	if err := app.worker.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	if app.mode == ModeAPI || app.mode == ModeAll {
		wg.Add(1)
		go func() {
			defer wg.Done()
			app.startHTTPServer(ctx, cancelFunc)
		}()
	}

	if app.mode == ModeWorker || app.mode == ModeAll {
		wg.Add(1)
		go func() {
			defer wg.Done()
			app.startWorker(ctx, cancelFunc)
		}()
	}

	wg.Wait()

	if err := app.amqp.Close(); err != nil {
		app.logger.Error(ctx, "AMQP close error", "error", err)
	}
}
