package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	catalogapp "github.com/zantech/instantorder/internal/application/catalog"
	invoiceapp "github.com/zantech/instantorder/internal/application/invoice"
	"github.com/zantech/instantorder/internal/domain/invoice"
	domainprinting "github.com/zantech/instantorder/internal/domain/printing"
	"github.com/zantech/instantorder/internal/infrastructure/capture"
	"github.com/zantech/instantorder/internal/infrastructure/config"
	"github.com/zantech/instantorder/internal/infrastructure/event"
	"github.com/zantech/instantorder/internal/infrastructure/logger"
	"github.com/zantech/instantorder/internal/infrastructure/printing"
	"github.com/zantech/instantorder/internal/infrastructure/scheduler"
	"github.com/zantech/instantorder/internal/infrastructure/snapshot"
	"github.com/zantech/instantorder/internal/infrastructure/storage"
	"github.com/zantech/instantorder/internal/infrastructure/telemetry"
	"github.com/zantech/instantorder/internal/interfaces/http/handler"
	"github.com/zantech/instantorder/internal/interfaces/http/middleware"
	"github.com/zantech/instantorder/internal/interfaces/http/router"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	_ "github.com/zantech/instantorder/docs"
)

//	@title			Instant Order API
//	@version		1.0
//	@description	Product catalog, image capture and invoice export for the order kiosk.

//	@host		localhost:8080
//	@BasePath	/api/v1

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
		Compress:   cfg.Log.Compress,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tel, log := setupTelemetry(ctx, cfg, log)
	defer tel.shutdown(log)

	log.Info("Starting Instant Order",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("catalog_store", cfg.Catalog.Store),
		zap.String("export_storage", cfg.Export.Storage),
	)

	// Event bus with an audit trail of every domain event
	bus := event.NewInMemoryEventBus(log.Named("events"))
	bus.Subscribe(event.NewAuditLogHandler(log))
	if err := bus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		_ = bus.Stop(context.Background())
	}()

	// Catalog
	store, storeCloser, err := snapshot.NewFactory(cfg, snapshot.WithLogger(log)).Create()
	if err != nil {
		log.Fatal("Failed to open catalog store", zap.Error(err))
	}
	defer closeQuietly(log, "catalog store", storeCloser)

	catalogService := catalogapp.NewService(store, log.Named("catalog"),
		catalogapp.WithStoreName(cfg.Catalog.Store),
		catalogapp.WithStrictCategories(cfg.Catalog.StrictCategories),
		catalogapp.WithEventPublisher(bus),
		catalogapp.WithMetrics(tel.metrics),
	)
	if err := catalogService.Load(ctx); err != nil {
		log.Fatal("Failed to load catalog", zap.Error(err))
	}

	// Invoice export pipeline
	numbers, err := invoice.NewSnowflakeNumbers(cfg.Invoice.SnowflakeNode)
	if err != nil {
		log.Fatal("Failed to create invoice number generator", zap.Error(err))
	}
	tmpl, err := printing.NewTemplateEngine(printing.TemplateConfig{})
	if err != nil {
		log.Fatal("Failed to parse invoice template", zap.Error(err))
	}
	rasterizer := printing.NewChromedpRasterizer(&printing.ChromedpConfig{
		ExecPath:      cfg.Render.ExecPath,
		RemoteURL:     cfg.Render.RemoteURL,
		Timeout:       cfg.Render.Timeout,
		DeviceScale:   cfg.Render.DeviceScale,
		ViewportWidth: cfg.Render.ViewportPx,
		NoSandbox:     os.Geteuid() == 0,
		Logger:        log.Named("render"),
	})
	defer closeQuietly(log, "rasterizer", rasterizer)

	exportStorage, sweeper, checks := newExportStorage(ctx, cfg, log)
	checks["catalog_store"] = storeCheck(storeCloser)

	invoiceService := invoiceapp.NewService(catalogService, numbers, invoiceapp.ExportPipeline{
		Template:   tmpl,
		Rasterizer: rasterizer,
		Writer:     printing.NewPDFWriter(log.Named("pdf")),
		Storage:    exportStorage,
	}, invoiceapp.Config{
		RegistrySize: cfg.Invoice.RegistrySize,
		MaxDrafts:    cfg.Invoice.MaxDrafts,
		PaperSize:    domainprinting.PaperSize(cfg.Invoice.PaperSize),
	}, log.Named("invoice"),
		invoiceapp.WithEventPublisher(bus),
		invoiceapp.WithMetrics(tel.metrics),
	)

	// HTTP
	engine := newEngine(cfg, log, tel.meter)
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.RegisterRoot(handler.NewHealthHandler(checks))
	r.Register(handler.NewCatalogHandler(catalogService))
	r.Register(handler.NewCaptureHandler(capture.NewDecoder(capture.DefaultMaxBytes, log.Named("capture"))))
	r.Register(handler.NewInvoiceHandler(invoiceService))
	r.Register(handler.NewDraftHandler(invoiceService))
	r.Setup()
	engine.GET("/swagger/*any",
		middleware.SwaggerProtection(middleware.SwaggerConfig{
			Enabled:    cfg.HTTP.SwaggerEnabled,
			AllowedIPs: cfg.HTTP.SwaggerAllowedIPs,
		}),
		ginSwagger.WrapHandler(swaggerFiles.Handler),
	)

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("Server starting", zap.String("addr", srv.Addr), zap.Int("routes", len(r.Routes())))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	var retention *scheduler.RetentionScheduler
	if sweeper != nil {
		retention, err = scheduler.NewRetentionScheduler(scheduler.RetentionConfig{
			Schedule:     cfg.Export.SweepSchedule,
			Retention:    cfg.Export.Retention,
			RunOnStartup: cfg.Export.SweepOnStartup,
		}, sweeper, log.Named("retention"))
		if err != nil {
			log.Fatal("Failed to create retention scheduler", zap.Error(err))
		}
		if err := retention.Start(gctx); err != nil {
			log.Fatal("Failed to start retention scheduler", zap.Error(err))
		}
	}

	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()
		if retention != nil {
			if err := retention.Stop(shutdownCtx); err != nil {
				log.Warn("Retention scheduler did not stop cleanly", zap.Error(err))
			}
		}
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("Server stopped with error", zap.Error(err))
		return
	}
	log.Info("Server exited gracefully")
}

// newEngine builds the gin engine with the middleware stack in order:
// request id, recovery, tracing, access log, HTTP metrics, profiling labels,
// security headers, CORS, body limit and rate limit.
func newEngine(cfg *config.Config, log *zap.Logger, meters *telemetry.MeterProvider) *gin.Engine {
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
		ServiceName: cfg.Telemetry.ServiceName,
		Enabled:     cfg.Telemetry.Enabled,
	}))
	engine.Use(middleware.SpanEnricher())
	engine.Use(logger.GinMiddleware(log))
	if meters != nil && meters.IsEnabled() {
		engine.Use(middleware.HTTPMetrics(meters.Meter("http.server")))
	}
	engine.Use(middleware.ProfilingWithConfig(middleware.ProfilingConfig{
		Enabled:   cfg.Telemetry.ProfilerEnabled,
		SkipPaths: []string{"/health"},
	}))
	engine.Use(middleware.Secure())

	cors := middleware.DefaultCORSConfig()
	cors.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		cors.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		cors.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}
	engine.Use(middleware.CORSWithConfig(cors))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	if cfg.HTTP.RateLimitEnabled {
		limiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		engine.Use(middleware.RateLimit(limiter))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}
	return engine
}

// newExportStorage opens the configured document storage. The sweeper is
// only set for local storage; S3 retention is left to bucket lifecycle rules.
func newExportStorage(ctx context.Context, cfg *config.Config, log *zap.Logger) (printing.DocumentStorage, scheduler.Sweeper, map[string]handler.HealthCheck) {
	checks := map[string]handler.HealthCheck{}

	switch cfg.Export.Storage {
	case "s3":
		s3Storage, err := storage.NewS3DocumentStorage(ctx, &cfg.S3, storage.WithLogger(log.Named("s3")))
		if err != nil {
			log.Fatal("Failed to create S3 document storage", zap.Error(err))
		}
		if err := s3Storage.EnsureBucket(ctx); err != nil {
			log.Fatal("Failed to prepare S3 bucket", zap.Error(err), zap.String("bucket", s3Storage.Bucket()))
		}
		checks["export_storage"] = s3Storage.EnsureBucket
		return s3Storage, nil, checks

	default:
		fsStorage, err := printing.NewFileSystemStorage(&printing.FileSystemStorageConfig{
			BasePath: cfg.Export.Dir,
			Logger:   log.Named("exports"),
		})
		if err != nil {
			log.Fatal("Failed to create export directory", zap.Error(err))
		}
		checks["export_storage"] = func(context.Context) error {
			_, err := os.Stat(fsStorage.BasePath())
			return err
		}
		return fsStorage, fsStorage, checks
	}
}

// storeCheck pings database backed snapshot stores; other stores always
// report healthy
func storeCheck(closer io.Closer) handler.HealthCheck {
	pinger, ok := closer.(interface{ Ping() error })
	if !ok {
		return func(context.Context) error { return nil }
	}
	return func(context.Context) error { return pinger.Ping() }
}

func closeQuietly(log *zap.Logger, name string, c io.Closer) {
	if err := c.Close(); err != nil {
		log.Warn("Error closing "+name, zap.Error(err))
	}
}

type telemetryStack struct {
	tracer   *telemetry.TracerProvider
	meter    *telemetry.MeterProvider
	logs     *telemetry.LoggerProvider
	profiler *telemetry.Profiler
	metrics  *telemetry.BusinessMetrics
}

// setupTelemetry starts tracing, metrics, log export and profiling. The
// returned logger also ships records to the OTLP collector when enabled.
// Failures are logged and the affected signal stays disabled.
func setupTelemetry(ctx context.Context, cfg *config.Config, log *zap.Logger) (*telemetryStack, *zap.Logger) {
	tc := cfg.Telemetry
	tel := &telemetryStack{}

	var err error
	tel.tracer, err = telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           tc.Enabled,
		CollectorEndpoint: tc.CollectorEndpoint,
		SamplingRatio:     tc.SamplingRatio,
		ServiceName:       tc.ServiceName,
		Insecure:          tc.Insecure,
	}, log)
	if err != nil {
		log.Warn("Tracing unavailable", zap.Error(err))
	}

	tel.meter, err = telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           tc.MetricsEnabled,
		CollectorEndpoint: tc.CollectorEndpoint,
		ExportInterval:    tc.MetricsInterval,
		ServiceName:       tc.ServiceName,
		Insecure:          tc.Insecure,
	}, log)
	if err != nil {
		log.Warn("Metrics unavailable", zap.Error(err))
	} else if tel.metrics, err = telemetry.NewBusinessMetrics(tel.meter.Meter("instantorder")); err != nil {
		log.Warn("Business metrics unavailable", zap.Error(err))
	}

	tel.logs, err = telemetry.NewLoggerProvider(ctx, telemetry.LogsConfig{
		Enabled:           tc.LogsEnabled,
		CollectorEndpoint: tc.CollectorEndpoint,
		ServiceName:       tc.ServiceName,
		Insecure:          tc.Insecure,
	}, log)
	if err != nil {
		log.Warn("Log export unavailable", zap.Error(err))
	} else {
		log = tel.logs.Bridge(log, logger.ParseLevel(tc.LogsLevel))
	}

	tel.profiler, err = telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled:         tc.ProfilerEnabled,
		ServerAddress:   tc.ProfilerAddress,
		ApplicationName: tc.ServiceName,
	}, log)
	if err != nil {
		log.Warn("Profiler unavailable", zap.Error(err))
	} else if tel.profiler.IsEnabled() && tel.tracer != nil {
		tel.tracer.EnableSpanProfiles()
	}

	return tel, log
}

func (t *telemetryStack) shutdown(log *zap.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if t.profiler != nil {
		if err := t.profiler.Stop(); err != nil {
			log.Warn("Profiler shutdown failed", zap.Error(err))
		}
	}
	if t.logs != nil {
		if err := t.logs.Shutdown(ctx); err != nil {
			log.Warn("Log provider shutdown failed", zap.Error(err))
		}
	}
	if t.meter != nil {
		if err := t.meter.Shutdown(ctx); err != nil {
			log.Warn("Meter provider shutdown failed", zap.Error(err))
		}
	}
	if t.tracer != nil {
		if err := t.tracer.Shutdown(ctx); err != nil {
			log.Warn("Tracer provider shutdown failed", zap.Error(err))
		}
	}
}
