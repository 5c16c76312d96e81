package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/fx"

	"picsema/internal/archive"
	"picsema/internal/caption"
	"picsema/internal/embedding"
	"picsema/internal/events"
	"picsema/internal/geocode"
	"picsema/internal/history"
	"picsema/internal/ingest"
	"picsema/internal/logger"
	"picsema/internal/metrics"
	"picsema/internal/search"
	"picsema/internal/tracer"
	"picsema/internal/vectorstore"
)

const (
	startTimeout = 30 * time.Second
	stopTimeout  = 15 * time.Second
)

// withApp boots the full dependency graph, populates the requested targets,
// runs the work function, and tears the application down again. The work
// context is cancelled on SIGINT/SIGTERM so batch runs can be interrupted.
func withApp(targets []interface{}, work func(ctx context.Context) error) error {
	options := []fx.Option{
		fx.NopLogger,
		fx.Provide(
			logger.NewConfig,
			caption.NewConfig,
			embedding.NewConfig,
			vectorstore.NewConfig,
			ingest.NewConfig,
			metrics.NewConfig,
			tracer.NewConfig,
			archive.NewConfig,
			history.NewConfig,
			events.NewConfig,
			geocode.DefaultConfig,
			geocode.NewClient,
			caption.NewClient,
			embedding.NewClient,
		),
		logger.FXModule,
		metrics.FXModule,
		tracer.FXModule,
		vectorstore.FXModule,
		archive.FXModule,
		history.FXModule,
		events.FXModule,
		ingest.FXModule,
		search.FXModule,
		fx.Populate(targets...),
	}

	app := fx.New(options...)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	startCtx, cancelStart := context.WithTimeout(ctx, startTimeout)
	defer cancelStart()
	if err := app.Start(startCtx); err != nil {
		return err
	}

	workErr := work(ctx)

	stopCtx, cancelStop := context.WithTimeout(context.Background(), stopTimeout)
	defer cancelStop()
	if err := app.Stop(stopCtx); err != nil && workErr == nil {
		workErr = err
	}
	return workErr
}
