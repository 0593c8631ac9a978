package logger

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/opsdeck/opsdeck/internal/config"
)

// New builds the application logger and replaces the zap globals.
// Production gets JSON output; any other environment gets the console
// encoder for readable local logs.
func New(cfg config.Config) (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	if cfg.Environment != "production" {
		zcfg = zap.NewDevelopmentConfig()
	}
	zcfg.EncoderConfig.TimeKey = "ts"
	zcfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	level := cfg.Logger.Level
	if level == "" {
		level = "info"
	}
	if err := zcfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	log, err := zcfg.Build()
	if err != nil {
		return nil, err
	}
	log = log.With(zap.String("app", cfg.AppName))

	zap.ReplaceGlobals(log)
	return log, nil
}
