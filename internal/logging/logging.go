// Package logging builds the zap logger shared by every command.
package logging

import (
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/rcliao/spaced-review/internal/config"
)

// New returns a logger for cfg writing to stderr, leaving stdout for
// command output.
func New(cfg config.LogConfig) *zap.Logger {
	return NewWithWriters(cfg, os.Stderr)
}

// NewWithWriters returns a logger for cfg that writes to every writer.
// Debug mode lowers the level and adds caller annotations; the json format
// drops colour so the output can be piped into log tooling.
func NewWithWriters(cfg config.LogConfig, writers ...io.Writer) *zap.Logger {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "time"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	var encoder zapcore.Encoder
	if cfg.Format == config.LogFormatJSON {
		encoderConfig.EncodeLevel = zapcore.LowercaseLevelEncoder
		encoder = zapcore.NewJSONEncoder(encoderConfig)
	} else {
		encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	}

	level := zap.InfoLevel
	var opts []zap.Option
	if cfg.Debug {
		level = zap.DebugLevel
		opts = append(opts, zap.AddCaller())
	}

	if len(writers) == 0 {
		writers = []io.Writer{os.Stderr}
	}
	syncers := make([]zapcore.WriteSyncer, 0, len(writers))
	for _, writer := range writers {
		syncers = append(syncers, zapcore.AddSync(writer))
	}

	core := zapcore.NewCore(encoder, zapcore.NewMultiWriteSyncer(syncers...), level)
	return zap.New(core, opts...).Named("spaced-review")
}
