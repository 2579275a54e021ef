package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"

	"github.com/vinodismyname/hrpulse/config"
	"github.com/vinodismyname/hrpulse/internal/analytics"
	"github.com/vinodismyname/hrpulse/internal/datasets"
	"github.com/vinodismyname/hrpulse/internal/registry"
	"github.com/vinodismyname/hrpulse/internal/runtime"
	"github.com/vinodismyname/hrpulse/internal/security"
	"github.com/vinodismyname/hrpulse/internal/telemetry"
	"github.com/vinodismyname/hrpulse/pkg/version"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	var (
		useStdio        bool
		shutdownTimeout time.Duration
		envFile         string
	)

	flag.BoolVar(&useStdio, "stdio", false, "Run server over stdio transport")
	flag.DurationVar(&shutdownTimeout, "shutdown-timeout", 5*time.Second, "Graceful shutdown timeout")
	flag.StringVar(&envFile, "env", "", "Optional .env file (defaults to ./.env)")
	flag.Parse()

	var envFiles []string
	if envFile != "" {
		envFiles = append(envFiles, envFile)
	}
	cfg, err := config.Load(envFiles...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	logger := zlog.With().Str("service", "hrpulse-server").Logger().Level(level)
	// Request contexts created by the transport fall back to the root logger.
	zerolog.DefaultContextLogger = &logger
	ctx := logger.WithContext(context.Background())

	// Security: validate allow-list directories on startup (fail-safe on error)
	secMgr, err := security.NewManager(cfg.AllowedDirs, []string{".xlsx"})
	if err != nil {
		logger.Error().Err(err).Msg("security: failed to initialize manager")
		fmt.Fprintln(os.Stderr, "invalid security configuration; check HRPULSE_ALLOWED_DIRS")
		os.Exit(1)
	}
	if err := secMgr.ValidateConfig(); err != nil {
		logger.Error().Err(err).Msg("security: invalid allow-list configuration")
		fmt.Fprintln(os.Stderr, "no allowed directories configured; set HRPULSE_ALLOWED_DIRS or HRPULSE_DATA_DIR")
		os.Exit(1)
	}
	logger.Info().Strs("allowed_dirs", secMgr.AllowedDirectories()).Msg("security allow-list configured")
	gate := security.NewGate(cfg.Passphrase)

	tuning, err := analytics.LoadTuning(cfg.ThresholdsFile)
	if err != nil {
		logger.Error().Err(err).Str("path", cfg.ThresholdsFile).Msg("failed to load thresholds file")
		os.Exit(1)
	}

	limits := runtime.NewLimits(cfg.MaxConcurrentRequests, cfg.MaxOpenDatasets)
	limits.OperationTimeout = cfg.OperationTimeout
	runtimeController := runtime.NewController(limits)
	runtimeMW := runtime.NewMiddleware(runtimeController)

	datasetMgr := datasets.NewManager(cfg.DatasetIdleTTL, 0, runtimeController, nil)
	datasetMgr.SetValidator(secMgr)
	datasetMgr.Start()
	defer func() {
		closeCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
		defer cancel()
		if err := datasetMgr.Close(closeCtx); err != nil {
			logger.Warn().Err(err).Msg("dataset cache shutdown incomplete")
		}
	}()

	toolRegistry := registry.New()
	toolRegistry.WithTokenModel(cfg.TokenModel)

	recorder := telemetry.NewRecorder(logger)
	exportFilter := registry.NewExportToolFilter(cfg.EnableExports)

	srv := server.NewMCPServer(
		"HR Pulse Analytics Server",
		version.Version(),
		server.WithToolCapabilities(true),
		server.WithRecovery(),
		server.WithHooks(recorder.Hooks()),
		server.WithToolHandlerMiddleware(runtimeMW.ToolMiddleware),
		server.WithToolFilter(func(ctx context.Context, tools []mcp.Tool) []mcp.Tool { return exportFilter.FilterTools(ctx, tools) }),
	)

	registry.RegisterHRTools(srv, toolRegistry, registry.Deps{
		Datasets:       datasetMgr,
		Paths:          secMgr,
		Gate:           gate,
		Limits:         runtimeController.LimitsSnapshot(),
		Tuning:         tuning,
		Transcripts:    analytics.NewTranscriptStore(cfg.TranscriptMaxExchanges),
		Stats:          recorder.Stats,
		ExportsEnabled: cfg.EnableExports,
		Version:        version.Version(),
	})

	if cfg.DataDir != "" {
		id, err := datasetMgr.Open(ctx, cfg.DataDir)
		if err != nil {
			logger.Warn().Err(err).Str("data_dir", cfg.DataDir).Msg("preload failed; clients can still call load_dataset")
		} else {
			logger.Info().Str("dataset_id", id).Str("data_dir", cfg.DataDir).Msg("dataset preloaded")
		}
	}

	logger.Info().
		Ctx(ctx).
		Str("version", version.Version()).
		Int("max_concurrent_requests", limits.MaxConcurrentRequests).
		Int("max_open_datasets", limits.MaxOpenDatasets).
		Int("model_context_size", toolRegistry.ModelContextSize()).
		Bool("access_gate", gate.Enabled()).
		Bool("exports", cfg.EnableExports).
		Bool("stdio", useStdio).
		Msg("server bootstrap configured")

	if useStdio {
		if err := server.ServeStdio(srv); err != nil {
			// Use stderr for transport errors so clients don't misinterpret output
			fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	// If no transport flags provided, print usage and exit non-zero
	fmt.Fprintln(os.Stderr, "no transport selected; use --stdio to run over stdio")
	os.Exit(2)
}
