package logger

import "go.uber.org/zap"

// Log is package logger, no-op until Initialize is called
var Log *zap.Logger = zap.NewNop()

// Initialize creates logger with log level and replaces Log
func Initialize(level string) error {
	l, err := New(level)
	if err != nil {
		return err
	}
	Log = l
	return nil
}

// New creates logger with log level
func New(level string) (*zap.Logger, error) {
	loggerLvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, err
	}
	loggerCfg := zap.NewProductionConfig()
	loggerCfg.Level = loggerLvl

	return loggerCfg.Build()
}
