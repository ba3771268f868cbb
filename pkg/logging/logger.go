package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds the process-wide logger. level is one of DEBUG, INFO, WARNING,
// ERROR (case-insensitive); an empty string defaults to INFO. If logFile is
// non-empty, output is appended to that file instead of stderr.
func New(level string, logFile string) (*zap.Logger, error) {
	var sink io.Writer = os.Stderr
	if logFile != "" {
		handle, err := os.OpenFile(logFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("unable to open log file %s: %w", logFile, err)
		}
		sink = handle
	}

	var encCfg zapcore.EncoderConfig
	var lvl zapcore.Level
	switch strings.ToUpper(level) {
	case "DEBUG":
		encCfg = zap.NewDevelopmentEncoderConfig()
		lvl = zap.DebugLevel
	case "WARNING":
		encCfg = zap.NewProductionEncoderConfig()
		lvl = zap.WarnLevel
	case "ERROR":
		encCfg = zap.NewProductionEncoderConfig()
		lvl = zap.ErrorLevel
	case "INFO", "":
		fallthrough
	default:
		encCfg = zap.NewProductionEncoderConfig()
		lvl = zap.InfoLevel
	}

	core := zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), zapcore.AddSync(sink), zap.NewAtomicLevelAt(lvl))
	return zap.New(core, zap.AddCaller()), nil
}
