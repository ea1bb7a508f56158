// Package cmdutil contains setup shared by the cli commands.
package cmdutil

import (
	"context"
	"os"
	"time"

	"github.com/mpapenbr/simlap-service-go/log"
	"github.com/mpapenbr/simlap-service-go/pkg/config"
	"github.com/mpapenbr/simlap-service-go/pkg/utils"
)

func parseLogLevel(l string, defaultVal log.Level) log.Level {
	level, err := log.ParseLevel(l)
	if err != nil {
		return defaultVal
	}
	return level
}

// SetupLogger creates the application and the sql logger from the log flags
// and installs the application logger as default.
func SetupLogger() (logger, sqlLogger *log.Logger) {
	opts := []log.Option{log.WithCaller(true), log.AddCallerSkip(1)}
	if config.LogFilter != "" {
		if filter, err := log.WithFilterRules(config.LogFilter); err == nil {
			opts = append(opts, filter)
		} else {
			log.Warn("ignoring log filter", log.ErrorField(err))
		}
	}

	switch {
	case config.LogConfig != "":
		var err error
		if logger, err = log.FromConfigFile(config.LogConfig, opts...); err != nil {
			log.Fatal("could not create logger", log.ErrorField(err))
		}
		sqlLogger = logger.Named("sql")
	case config.LogFormat == "json":
		logger = log.New(os.Stderr, parseLogLevel(config.LogLevel, log.InfoLevel), opts...)
		sqlLogger = log.New(os.Stderr, parseLogLevel(config.SQLLogLevel, log.InfoLevel), opts...)
	default:
		logger = log.DevLogger(os.Stderr, parseLogLevel(config.LogLevel, log.DebugLevel), opts...)
		sqlLogger = log.DevLogger(os.Stderr,
			parseLogLevel(config.SQLLogLevel, log.InfoLevel), opts...)
	}
	log.ResetDefault(logger)
	return logger, sqlLogger
}

// WaitForDB blocks until the database accepts tcp connections. Exits the
// program when it does not within the configured wait duration.
func WaitForDB(ctx context.Context) {
	timeout, err := time.ParseDuration(config.WaitForServices)
	if err != nil {
		log.Warn("Invalid duration value. Setting default 60s", log.ErrorField(err))
		timeout = 60 * time.Second
	}
	addr := utils.ExtractFromDBURL(config.DB)
	if addr == "" {
		return
	}
	log.Debug("Waiting for database", log.String("addr", addr))
	if err := utils.WaitForTCP(ctx, addr, timeout); err != nil {
		log.Fatal("database not ready", log.ErrorField(err))
	}
}
