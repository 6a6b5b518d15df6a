package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"cloud.google.com/go/firestore"
	gcsstorage "cloud.google.com/go/storage"
	"github.com/sirupsen/logrus"
	"google.golang.org/api/option"

	"github.com/castlemilk/savetrack/internal/config"
	"github.com/castlemilk/savetrack/internal/export"
	"github.com/castlemilk/savetrack/internal/forecast"
	"github.com/castlemilk/savetrack/internal/logging"
	"github.com/castlemilk/savetrack/internal/metrics"
	"github.com/castlemilk/savetrack/internal/service"
	"github.com/castlemilk/savetrack/internal/store"
)

// app holds everything a command needs, built from config.
type app struct {
	cfg     config.Config
	log     *logrus.Logger
	store   store.Store
	metrics *metrics.Metrics
	svc     *service.FinanceService

	closers []func() error
}

type appOptions struct {
	// fallbackSink receives exports when no bucket is configured.
	fallbackSink export.Sink
}

func loadConfig() (config.Config, error) {
	path := flagConfig
	if path == "" {
		path = config.Path()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, err
	}
	if flagLogLevel != "" {
		cfg.Log.Level = flagLogLevel
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func newApp(ctx context.Context, opts appOptions) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	a := &app{
		cfg:     cfg,
		log:     logging.New(cfg.Log.Level, cfg.Log.Format),
		metrics: metrics.New(),
	}

	st, closeStore, err := openStore(ctx, cfg.Store, a.log)
	if err != nil {
		return nil, err
	}
	a.store = st
	a.closers = append(a.closers, closeStore)

	sink, err := a.openSink(ctx)
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	if sink == nil {
		sink = opts.fallbackSink
	}

	svcOpts := []service.Option{
		service.WithLogger(a.log),
		service.WithMetrics(a.metrics),
		service.WithPredictor(forecast.NewPredictor(cfg.Forecast.Predictor())),
		service.WithCurrency(cfg.Forecast.CurrencySymbol),
	}
	if sink != nil {
		svcOpts = append(svcOpts, service.WithExportSink(sink))
	}
	a.svc = service.NewFinanceService(st, svcOpts...)
	return a, nil
}

// Close releases clients in reverse order of creation.
func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (a *app) clientOptions() []option.ClientOption {
	var opts []option.ClientOption
	if a.cfg.Store.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(a.cfg.Store.CredentialsFile))
	}
	return opts
}

func (a *app) openSink(ctx context.Context) (export.Sink, error) {
	if a.cfg.Export.Bucket == "" {
		return nil, nil
	}
	client, err := gcsstorage.NewClient(ctx, a.clientOptions()...)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	a.closers = append(a.closers, client.Close)
	a.log.WithFields(logrus.Fields{
		"bucket": a.cfg.Export.Bucket,
		"prefix": a.cfg.Export.Prefix,
	}).Info("exporting predictions to Cloud Storage")
	return export.NewGCSSink(client, a.cfg.Export.Bucket, a.cfg.Export.Prefix), nil
}

func openStore(ctx context.Context, cfg config.StoreConfig, log logrus.FieldLogger) (store.Store, func() error, error) {
	log = log.WithField("backend", cfg.Backend)
	switch cfg.Backend {
	case config.BackendMemory:
		log.Info("using in-memory store")
		return store.NewMemoryStore(), func() error { return nil }, nil

	case config.BackendFirestore:
		var opts []option.ClientOption
		if cfg.CredentialsFile != "" {
			opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
		}
		client, err := firestore.NewClient(ctx, cfg.ProjectID, opts...)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create Firestore client: %w", err)
		}
		log.WithField("project_id", cfg.ProjectID).Info("using Firestore store")
		return store.NewFirestoreStore(client), client.Close, nil

	case config.BackendSQLite, config.BackendPostgres:
		st, err := store.OpenSQL(ctx, cfg.Backend, cfg.DSN)
		if err != nil {
			return nil, nil, err
		}
		log.Info("using SQL store")
		return st, st.Close, nil

	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}

func writeLine(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, format+"\n", args...)
}
