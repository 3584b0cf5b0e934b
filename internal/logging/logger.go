package logging

import (
	"context"
	"flag"
	"fmt"

	"github.com/bombsimon/logrusr/v4"
	"github.com/go-logr/logr"
	"github.com/kelseyhightower/envconfig"
	"github.com/sirupsen/logrus"
	"k8s.io/klog/v2"
	runtimelog "sigs.k8s.io/controller-runtime/pkg/log"
)

// Level is a log verbosity level. Only levels with a logr equivalent are
// supported.
type Level uint32

const (
	ErrorLevel = Level(logrus.ErrorLevel)
	InfoLevel  = Level(logrus.InfoLevel)
	DebugLevel = Level(logrus.DebugLevel)
)

type config struct {
	LogLevel  string `envconfig:"LOG_LEVEL" default:"INFO"`
	KlogLevel string `envconfig:"KLOG_LEVEL" default:"0"`
}

type loggerContextKey struct{}

var globalLogger *Logger

func init() {
	var cfg config
	envconfig.MustProcess("", &cfg)

	level, err := parseLevel(cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	logrusLogger := logrus.New()
	logrusLogger.SetLevel(logrus.Level(level))
	globalLogger = wrap(logrusr.New(logrusLogger))

	// client-go logs through klog. Route that output into the same sink so
	// nothing escapes the configured level.
	klog.InitFlags(nil)
	klog.SetOutput(logrusLogger.Writer())
	if err = flag.Set("v", cfg.KlogLevel); err != nil {
		panic(err)
	}

	runtimelog.SetLogger(globalLogger.logger)
}

// parseLevel maps a level name to the subset of logrus levels that exist on
// both sides of the logr bridge.
func parseLevel(name string) (Level, error) {
	level, err := logrus.ParseLevel(name)
	if err != nil {
		return 0, err
	}
	switch level {
	case logrus.ErrorLevel, logrus.InfoLevel, logrus.DebugLevel:
		return Level(level), nil
	default:
		return 0, fmt.Errorf("unsupported log level %q", name)
	}
}

// Logger wraps logr.Logger with a keysAndValues API and a call stack helper
// so logged file/line information points at the caller.
type Logger struct {
	callStackHelper func()
	logger          logr.Logger
}

func wrap(logrLogger logr.Logger) *Logger {
	logger := &Logger{}
	logger.callStackHelper, logger.logger = logrLogger.WithCallStackHelper()
	return logger
}

// NewLogger returns a *Logger that writes at the provided level.
func NewLogger(level Level) *Logger {
	logrusLogger := logrus.New()
	logrusLogger.SetLevel(logrus.Level(level))
	return wrap(logrusr.New(logrusLogger))
}

// ContextWithLogger returns a context.Context carrying the provided *Logger.
func ContextWithLogger(ctx context.Context, logger *Logger) context.Context {
	return context.WithValue(ctx, loggerContextKey{}, logger)
}

// LoggerFromContext returns the *Logger carried by the context, or the
// global *Logger when the context carries none.
func LoggerFromContext(ctx context.Context) *Logger {
	if logger, ok := ctx.Value(loggerContextKey{}).(*Logger); ok {
		return logger
	}
	return globalLogger
}

// Error logs a message at the error level.
func (l *Logger) Error(err error, msg string, keysAndValues ...any) {
	l.callStackHelper()
	l.logger.Error(err, msg, keysAndValues...)
}

// Info logs a message at the info level.
func (l *Logger) Info(msg string, keysAndValues ...any) {
	l.callStackHelper()
	l.logger.Info(msg, keysAndValues...)
}

// Debug logs a message at the debug level.
func (l *Logger) Debug(msg string, keysAndValues ...any) {
	l.callStackHelper()
	l.logger.V(1).Info(msg, keysAndValues...)
}

// WithValues returns a derived *Logger with additional key-value context.
func (l *Logger) WithValues(keysAndValues ...any) *Logger {
	return &Logger{
		callStackHelper: l.callStackHelper,
		logger:          l.logger.WithValues(keysAndValues...),
	}
}
