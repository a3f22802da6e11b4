package main

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/aidantay/TranscriptCoder/internal/config"
)

// newLogger builds the run logger: JSON lines appended to the log file
// when one is configured, human-readable console output on stderr otherwise.
func newLogger(cfg *config.Config) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(cfg.ZapLevel())
	zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zc.Sampling = nil

	if cfg.LogFile != "" {
		zc.OutputPaths = []string{cfg.LogFile}
		zc.ErrorOutputPaths = []string{cfg.LogFile, "stderr"}
	} else {
		zc.Encoding = "console"
		zc.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
		zc.OutputPaths = []string{"stderr"}
		zc.DisableStacktrace = true
	}

	return zc.Build()
}
