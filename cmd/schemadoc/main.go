package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/schemadoc/schemadoc/internal/analytics"
	"github.com/schemadoc/schemadoc/internal/api"
	"github.com/schemadoc/schemadoc/internal/config"
	"github.com/schemadoc/schemadoc/internal/docgen"
	"github.com/schemadoc/schemadoc/internal/extract/mssql"
	"github.com/schemadoc/schemadoc/internal/metrics"
	"github.com/schemadoc/schemadoc/internal/monitor"
	"github.com/schemadoc/schemadoc/internal/notify"
	"github.com/schemadoc/schemadoc/internal/registry"
	"github.com/schemadoc/schemadoc/internal/render"
	"github.com/schemadoc/schemadoc/internal/scheduler"
	"github.com/schemadoc/schemadoc/internal/store/postgres"
	"github.com/schemadoc/schemadoc/internal/store/sqlite"
)

// Build-time variables set via -ldflags
var (
	version = "dev"
	commit  = "unknown"
)

const (
	exitSuccess       = 0
	exitRuntimeError  = 1
	exitInvalidConfig = 2
)

// store is the surface both backends share: the three consumer
// interfaces plus lifecycle.
type store interface {
	scheduler.Store
	monitor.Store
	api.Store
	api.HealthChecker
	Migrate(ctx context.Context) error
	Close() error
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(exitRuntimeError)
	}

	cmd := os.Args[1]

	switch cmd {
	case "serve":
		os.Exit(runServe())
	case "validate":
		os.Exit(runValidate())
	case "config":
		os.Exit(runConfig())
	case "version":
		os.Exit(runVersion())
	case "--help", "-h", "help":
		printUsage()
		os.Exit(exitSuccess)
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", cmd)
		printUsage()
		os.Exit(exitRuntimeError)
	}
}

func printUsage() {
	fmt.Println(`schemadoc - SQL Server schema documentation and drift monitoring daemon

Usage:
  schemadoc <command>

Commands:
  serve      Start the scheduler, monitor and admin API
  validate   Validate configuration (no connections made)
  config     Print effective configuration as JSON (secrets masked)
  version    Print version information

Environment Variables:
  SCHEMADOC_STORE_DRIVER    Store backend: sqlite or postgres (default: "sqlite")
  SCHEMADOC_STORE_DSN       sqlite file path or postgres DSN (default: "schemadoc.db")
  SCHEMADOC_HTTP_ADDR       Admin API address (default: ":8080"; PORT is honored)
  SCHEMADOC_CONFIG_FILE     Settings file path (default: "schemadoc.json")
  SCHEMADOC_DOCS_DIR        Documentation output directory (default: "docs-output")
  SCHEMADOC_SCHEDULER_TICK  Scheduler tick interval (default: "1m")
  SCHEMADOC_HTTP_TIMEOUT    Graceful HTTP shutdown timeout (default: "15s")
  SCHEMADOC_METRICS_ADDR    Prometheus /metrics listen address (optional)
  SCHEMADOC_REDIS_ADDR      Redis address for execution analytics (optional)`)
}

func runServe() int {
	cfg := config.Load()

	if err := config.Validate(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		return exitInvalidConfig
	}

	settingsFile, err := config.OpenSettingsFile(cfg.ConfigFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "settings error: %v\n", err)
		return exitInvalidConfig
	}
	settings := settingsFile.Settings()

	logConfigNotes(cfg, settings)

	st, err := openStore(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open store: %v\n", err)
		return exitRuntimeError
	}
	defer st.Close()

	migrateCtx, cancelMigrate := context.WithTimeout(context.Background(), 30*time.Second)
	err = st.Migrate(migrateCtx)
	cancelMigrate()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to migrate store: %v\n", err)
		return exitRuntimeError
	}
	log.Printf("schemadoc: store ready (driver=%s)", cfg.StoreDriver)

	// Metrics sink and its own listener (optional)
	var metricsSink *metrics.PrometheusSink
	var metricsServer *http.Server

	if cfg.MetricsAddr != "" {
		metricsSink = metrics.NewPrometheusSink(prometheus.DefaultRegisterer)

		metricsMux := http.NewServeMux()
		metricsMux.Handle("/metrics", promhttp.Handler())
		metricsServer = &http.Server{
			Addr:    cfg.MetricsAddr,
			Handler: metricsMux,
		}
		go func() {
			log.Printf("schemadoc: metrics server listening on %s", cfg.MetricsAddr)
			if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("schemadoc: metrics server error: %v", err)
			}
		}()
	}

	// Notification dispatcher with optional metrics and analytics
	disp := notify.New(settings.Notifications(), notify.NewSMTPEmailSender(), notify.NewHTTPWebhookSender())
	if metricsSink != nil {
		disp = disp.WithMetrics(metricsSink)
	}
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr: cfg.RedisAddr,
		})
		disp = disp.WithAnalytics(analytics.NewRedisSink(redisClient))
		log.Printf("schemadoc: analytics enabled (redis=%s)", cfg.RedisAddr)
	}

	// Extraction targets come from the settings file; the same extractor
	// serves the monitor and the documentation job type.
	extractor := mssql.NewExtractor(extractionTargets(settings))
	renderer := render.New(cfg.DocsDir)

	reg := registry.New()
	reg.Register(docgen.JobType, docgen.NewHandler(extractor, renderer))
	log.Printf("schemadoc: registered job types: %s", strings.Join(reg.Types(), ", "))

	sched := scheduler.New(
		scheduler.Config{TickInterval: cfg.SchedulerTick},
		st,
		reg,
		disp,
	)
	if metricsSink != nil {
		sched = sched.WithMetrics(metricsSink)
	}

	var mon *monitor.Monitor
	if settings.Monitoring.Enabled && len(settings.Monitoring.Targets) > 0 {
		mon = monitor.New(
			monitor.Config{
				Interval: time.Duration(settings.Monitoring.IntervalMinutes) * time.Minute,
				Targets:  monitorTargets(settings),
			},
			st,
			extractor,
			disp,
		)
		if metricsSink != nil {
			mon = mon.WithMetrics(metricsSink)
		}
		log.Printf("schemadoc: monitoring enabled (interval=%dm, targets=%d)",
			settings.Monitoring.IntervalMinutes, len(settings.Monitoring.Targets))
	}

	apiHandler := api.NewHandler(st, sched).
		WithNotifications(disp, settingsFile).
		WithHealthChecker(st)

	httpServer := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: apiHandler,
	}

	go func() {
		log.Printf("schemadoc: http server listening on %s", cfg.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("schemadoc: http server error: %v", err)
		}
	}()

	// Separate contexts per loop enable ordered shutdown.
	schedulerCtx, cancelScheduler := context.WithCancel(context.Background())
	var schedulerWg sync.WaitGroup

	schedulerWg.Add(1)
	go func() {
		defer schedulerWg.Done()
		if err := sched.Run(schedulerCtx); err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("schemadoc: scheduler exited: %v", err)
		}
	}()

	var monitorWg sync.WaitGroup
	var cancelMonitor context.CancelFunc
	if mon != nil {
		var monitorCtx context.Context
		monitorCtx, cancelMonitor = context.WithCancel(context.Background())
		monitorWg.Add(1)
		go func() {
			defer monitorWg.Done()
			if err := mon.Run(monitorCtx); err != nil && !errors.Is(err, context.Canceled) {
				log.Printf("schemadoc: monitor exited: %v", err)
			}
		}()
	}

	log.Printf("schemadoc: started (tick=%s, http=%s)", cfg.SchedulerTickStr, cfg.HTTPAddr)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	received := <-sig

	log.Printf("schemadoc: received signal %v, shutting down", received)

	// Phase 1: Stop the scheduler (no new executions start)
	log.Println("schemadoc: stopping scheduler...")
	cancelScheduler()
	schedulerWg.Wait()
	log.Println("schemadoc: scheduler stopped")

	// Phase 2: Stop the monitor (no new checks start)
	if cancelMonitor != nil {
		log.Println("schemadoc: stopping monitor...")
		cancelMonitor()
		monitorWg.Wait()
		log.Println("schemadoc: monitor stopped")
	}

	// Phase 3: Stop the HTTP server gracefully
	log.Println("schemadoc: stopping http server...")
	httpShutdownCtx, httpShutdownCancel := context.WithTimeout(context.Background(), cfg.HTTPTimeout)
	defer httpShutdownCancel()
	if err := httpServer.Shutdown(httpShutdownCtx); err != nil {
		log.Printf("schemadoc: http server shutdown error: %v", err)
	}
	log.Println("schemadoc: http server stopped")

	// Phase 4: Stop the metrics server if running
	if metricsServer != nil {
		log.Println("schemadoc: stopping metrics server...")
		metricsShutdownCtx, metricsShutdownCancel := context.WithTimeout(context.Background(), cfg.HTTPTimeout)
		defer metricsShutdownCancel()
		if err := metricsServer.Shutdown(metricsShutdownCtx); err != nil {
			log.Printf("schemadoc: metrics server shutdown error: %v", err)
		}
		log.Println("schemadoc: metrics server stopped")
	}

	log.Println("schemadoc: stopped")
	return exitSuccess
}

func openStore(cfg config.Config) (store, error) {
	switch cfg.StoreDriver {
	case config.DriverSQLite:
		return sqlite.Open(cfg.StoreDSN)
	case config.DriverPostgres:
		return postgres.Open(cfg.StoreDSN)
	default:
		return nil, fmt.Errorf("unsupported store driver %q", cfg.StoreDriver)
	}
}

// extractionTargets converts the settings file's target list to
// extractor configs.
func extractionTargets(settings config.Settings) []mssql.Config {
	targets := make([]mssql.Config, 0, len(settings.Monitoring.Targets))
	for _, t := range settings.Monitoring.Targets {
		targets = append(targets, mssql.Config{
			Database:               t.Database,
			ConnectionID:           t.ConnectionID,
			Auth:                   t.Auth,
			Server:                 t.Server,
			Port:                   t.Port,
			Username:               t.Username,
			Password:               t.Password,
			ClientID:               t.ClientID,
			ClientSecret:           t.ClientSecret,
			TenantID:               t.TenantID,
			TrustServerCertificate: t.TrustServerCertificate,
		})
	}
	return targets
}

func monitorTargets(settings config.Settings) []monitor.Target {
	targets := make([]monitor.Target, 0, len(settings.Monitoring.Targets))
	for _, t := range settings.Monitoring.Targets {
		targets = append(targets, monitor.Target{
			Database:     t.Database,
			ConnectionID: t.ConnectionID,
		})
	}
	return targets
}

// logConfigNotes flags configuration combinations worth operator
// attention. None of them block startup.
func logConfigNotes(cfg config.Config, settings config.Settings) {
	if settings.Email.Enabled && len(settings.Email.To) == 0 {
		log.Println("schemadoc: WARNING: email notifications enabled but no recipients configured")
	}
	if settings.Webhooks.Enabled && len(settings.Webhooks.URLs) == 0 {
		log.Println("schemadoc: WARNING: webhook notifications enabled but no URLs configured")
	}
	if settings.Webhooks.Enabled && len(settings.Webhooks.URLs) > 0 && settings.Webhooks.Secret == "" {
		log.Println("schemadoc: WARNING: webhook notifications are unsigned; set webhooks.secret to sign deliveries")
	}
	if settings.Monitoring.Enabled && len(settings.Monitoring.Targets) == 0 {
		log.Println("schemadoc: WARNING: monitoring enabled but no targets configured; the monitor will not start")
	}
	if !settings.Monitoring.Enabled {
		log.Println("schemadoc: INFO: monitoring disabled")
	}
	if cfg.MetricsAddr == "" {
		log.Println("schemadoc: INFO: SCHEMADOC_METRICS_ADDR not set; metrics disabled")
	}
	if cfg.RedisAddr == "" {
		log.Println("schemadoc: INFO: SCHEMADOC_REDIS_ADDR not set; analytics disabled")
	}
}

func runValidate() int {
	cfg := config.Load()

	if err := config.Validate(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return exitInvalidConfig
	}

	// The settings file is part of the effective configuration; a file
	// that exists but does not parse fails validation too.
	if _, err := config.LoadSettings(cfg.ConfigFile); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return exitInvalidConfig
	}

	fmt.Println("configuration valid")
	return exitSuccess
}

func runConfig() int {
	cfg := config.Load()

	data, err := cfg.MaskedJSON()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to marshal config: %v\n", err)
		return exitRuntimeError
	}

	fmt.Println(string(data))
	return exitSuccess
}

func runVersion() int {
	fmt.Printf("schemadoc version %s (commit: %s)\n", version, commit)
	return exitSuccess
}
