package logging

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// A Logger writes structured logs with key/value context
type Logger interface {
	// Error logs an error level message
	Error(msg string, ctx ...interface{})
	// Warn logs a warning level message
	Warn(msg string, ctx ...interface{})
	// Info logs an information level message
	Info(msg string, ctx ...interface{})
	// Debug logs a debug level message. This may be very verbose
	Debug(msg string, ctx ...interface{})
	// New returns a child logger with the given context
	New(ctx ...interface{}) Logger
	// Sync flushes buffered entries
	Sync() error
}

// Options controls how the base logger is built
type Options struct {
	Level       string   // debug, info, warn or error
	Debug       bool     // Human readable development output
	OutputPaths []string // Defaults to stderr
}

// zapLogger is an implementation of Logger backed by a zap sugared logger
type zapLogger struct {
	zap *zap.SugaredLogger
}

// NewLogger builds the base logger of the service
func NewLogger(opts Options) (Logger, error) {
	cfg := zap.NewProductionConfig()
	if opts.Debug {
		cfg = zap.NewDevelopmentConfig()
	}

	level := zap.NewAtomicLevelAt(zapcore.InfoLevel)
	if opts.Level != "" {
		if err := level.UnmarshalText([]byte(opts.Level)); err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", opts.Level, err)
		}
	}
	cfg.Level = level

	if len(opts.OutputPaths) > 0 {
		cfg.OutputPaths = opts.OutputPaths
	}

	plain, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return &zapLogger{zap: plain.Sugar()}, nil
}

// FromZap wraps an existing zap logger
func FromZap(l *zap.Logger) Logger {
	return &zapLogger{zap: l.Sugar()}
}

// Nop returns a logger that discards everything
func Nop() Logger {
	return FromZap(zap.NewNop())
}

func (l *zapLogger) Error(msg string, ctx ...interface{}) {
	l.zap.Errorw(msg, ctx...)
}

func (l *zapLogger) Warn(msg string, ctx ...interface{}) {
	l.zap.Warnw(msg, ctx...)
}

func (l *zapLogger) Info(msg string, ctx ...interface{}) {
	l.zap.Infow(msg, ctx...)
}

func (l *zapLogger) Debug(msg string, ctx ...interface{}) {
	l.zap.Debugw(msg, ctx...)
}

func (l *zapLogger) New(ctx ...interface{}) Logger {
	return &zapLogger{zap: l.zap.With(ctx...)}
}

func (l *zapLogger) Sync() error {
	return l.zap.Sync()
}

// LogForGin returns a gin middleware that logs every request.
//
// Requests with errors are logged at error level, 4xx and 5xx statuses at warn level,
// everything else at info level.
func LogForGin(logger Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		// handlers may rewrite the URL
		path := c.Request.URL.Path
		c.Next()

		ctxLogger := logger.New(
			"status", c.Writer.Status(),
			"method", c.Request.Method,
			"path", path,
			"ip", c.ClientIP(),
			"latency", time.Since(start),
		)

		switch {
		case len(c.Errors) > 0:
			ctxLogger.Error(c.Errors.String())
		case c.Writer.Status() >= 400:
			ctxLogger.Warn("HTTP error")
		default:
			ctxLogger.Info("HTTP request")
		}
	}
}
