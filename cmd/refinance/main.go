package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/mortgagepulse/refinance-engine/internal/cache"
	"github.com/mortgagepulse/refinance-engine/internal/config"
	"github.com/mortgagepulse/refinance-engine/internal/recorder"
	"github.com/mortgagepulse/refinance-engine/internal/scheduler"
	"github.com/mortgagepulse/refinance-engine/internal/server"
	"github.com/mortgagepulse/refinance-engine/pkg/constants"
	"github.com/mortgagepulse/refinance-engine/pkg/output"
	"github.com/mortgagepulse/refinance-engine/pkg/rates"
	"github.com/mortgagepulse/refinance-engine/pkg/scenarios"
)

// version is stamped at build time via -ldflags.
var version = "dev"

// initializeLogger creates a zap logger based on configuration and CLI override
func initializeLogger(loggingConfig config.LoggingConfig, logLevelOverride string) (*zap.Logger, error) {
	// Determine log level (CLI override takes precedence)
	level := loggingConfig.Level
	if logLevelOverride != "" {
		level = logLevelOverride
	}
	if level == "" {
		level = "info"
	}

	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn", "warning":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		return nil, fmt.Errorf("invalid log level: %s", level)
	}

	format := loggingConfig.Format
	if format == "" {
		format = "json"
	}

	var zapConfig zap.Config
	switch format {
	case "console":
		zapConfig = zap.NewDevelopmentConfig()
		zapConfig.Level = zap.NewAtomicLevelAt(zapLevel)
	case "json":
		zapConfig = zap.NewProductionConfig()
		zapConfig.Level = zap.NewAtomicLevelAt(zapLevel)
	default:
		return nil, fmt.Errorf("invalid log format: %s", format)
	}

	if loggingConfig.OutputFile != "" {
		if dir := filepath.Dir(loggingConfig.OutputFile); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create log directory %s: %v", dir, err)
			}
		}
		if file, err := os.OpenFile(loggingConfig.OutputFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644); err != nil {
			return nil, fmt.Errorf("failed to open log file %s: %v", loggingConfig.OutputFile, err)
		} else {
			_ = file.Close()
		}

		zapConfig.OutputPaths = []string{loggingConfig.OutputFile}
		zapConfig.ErrorOutputPaths = []string{loggingConfig.OutputFile}
	}

	return zapConfig.Build()
}

func main() {
	configLocation := flag.String("config", constants.DefaultConfigFile, "path to configuration file")
	outputFormatFlag := flag.String("output-format", "", "type of output override: pretty, csv, json")
	logLevel := flag.String("log-level", "", "log level override (debug, info, warn, error)")
	serve := flag.Bool("serve", false, "run the HTTP API instead of a one-shot calculation")
	printRates := flag.Bool("print-rates", false, "print the active rate table as YAML and exit")
	mortgageBalance := flag.Float64("mortgage-balance", 0, "outstanding mortgage balance")
	otherLoansBalance := flag.Float64("other-loans-balance", 0, "outstanding non-mortgage loan balance")
	mortgagePayment := flag.Float64("mortgage-payment", 0, "current monthly mortgage payment")
	otherLoansPayment := flag.Float64("other-loans-payment", 0, "current monthly payment on other loans")
	age := flag.Int("age", 0, "borrower age in years (0 if unknown)")
	propertyValue := flag.Float64("property-value", 0, "appraised property value (0 if unknown)")
	flag.Parse()

	conf, err := config.LoadConfiguration(*configLocation)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load configuration at %s\", \"error\": \"%v\"}\n", *configLocation, err)
		os.Exit(1)
	}

	logger, err := initializeLogger(conf.Logging, *logLevel)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to initialize logger\", \"error\": \"%v\"}\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()

	model, err := rates.NewModel(conf.Rates)
	if err != nil {
		logger.Fatal("invalid rate table",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}
	calc := scenarios.NewCalculator(model, conf.Scenario, logger)

	if *printRates {
		data, err := yaml.Marshal(conf.Rates)
		if err != nil {
			logger.Fatal("failed to encode rate table",
				zap.String("op", "main"),
				zap.Error(err),
			)
		}
		fmt.Print(string(data))
		return
	}

	if *serve {
		runServer(logger, conf, *configLocation, calc)
		return
	}

	// Determine output format (CLI override takes precedence over config)
	outputFormat := conf.Output.Format
	if *outputFormatFlag != "" {
		outputFormat = *outputFormatFlag
	}
	if outputFormat == "" {
		outputFormat = constants.OutputFormatPretty
	}
	if err := output.ValidateFormat(outputFormat); err != nil {
		logger.Fatal(err.Error(),
			zap.String("op", "main"),
		)
	}

	input := scenarios.LoanInput{
		MortgageBalance:          *mortgageBalance,
		OtherLoansBalance:        *otherLoansBalance,
		CurrentMortgagePayment:   *mortgagePayment,
		CurrentOtherLoansPayment: *otherLoansPayment,
		Age:                      *age,
		PropertyValue:            *propertyValue,
	}
	result := calc.Calculate(input)

	if err := output.Write(os.Stdout, outputFormat, result, calc.BlendedRate(input)); err != nil {
		logger.Fatal("failed to write output",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}
}

func runServer(logger *zap.Logger, conf *config.Configuration, configLocation string, calc *scenarios.Calculator) {
	var responseCache cache.Cache
	if conf.Storage.RedisAddr != "" {
		redisCache := cache.NewRedisCache(conf.Storage.RedisAddr)
		defer func() {
			_ = redisCache.Close()
		}()
		responseCache = redisCache
		logger.Info("using redis response cache",
			zap.String("op", "main.runServer"),
			zap.String("addr", conf.Storage.RedisAddr),
		)
	} else {
		responseCache = cache.NewMemoryCache()
	}

	var rec recorder.Recorder
	if conf.Storage.SQLitePath != "" {
		sqliteRec, err := recorder.NewSQLiteRecorder(conf.Storage.SQLitePath, logger)
		if err != nil {
			logger.Fatal("failed to open submissions database",
				zap.String("op", "main.runServer"),
				zap.String("path", conf.Storage.SQLitePath),
				zap.Error(err),
			)
		}
		defer func() {
			_ = sqliteRec.Close()
		}()
		rec = sqliteRec
	} else {
		rec = recorder.NewNoopRecorder()
	}

	srv := server.New(logger, calc, responseCache, rec, version, conf.Server.MaxRequestSize)

	if conf.Schedule.RatesReloadCron != "" {
		sched, err := scheduler.New(logger, configLocation, conf.Schedule.RatesReloadCron, srv.UpdateCalculator)
		if err != nil {
			logger.Fatal("failed to schedule rate reloads",
				zap.String("op", "main.runServer"),
				zap.String("cron", conf.Schedule.RatesReloadCron),
				zap.Error(err),
			)
		}
		sched.Start()
		defer sched.Stop()
	}

	httpServer := &http.Server{
		Addr:         conf.Server.Address,
		Handler:      srv,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("http server listening",
			zap.String("op", "main.runServer"),
			zap.String("addr", conf.Server.Address),
			zap.String("version", version),
		)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("http server failed",
				zap.String("op", "main.runServer"),
				zap.Error(err),
			)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down",
		zap.String("op", "main.runServer"),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("graceful shutdown failed",
			zap.String("op", "main.runServer"),
			zap.Error(err),
		)
	}
}
