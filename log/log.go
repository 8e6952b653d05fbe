package log

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	level  zap.AtomicLevel
	global *zap.SugaredLogger

	// Global is the catch-all sublogger for anything without a better home
	Global *SubLogger
	// Engine covers the per-day lifecycle and the clock loop
	Engine *SubLogger
	// Strategy covers the state machine, fills and closes
	Strategy *SubLogger
	// Data covers the day cache and data source fetches
	Data *SubLogger
	// Config covers configuration loading and validation
	Config *SubLogger
	// Statistics covers the end of run report
	Statistics *SubLogger
)

// SubLogger is a named logger for one subsystem
type SubLogger struct {
	name   string
	logger *zap.SugaredLogger
}

func init() {
	level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = level
	l, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		l = zap.NewNop()
	}
	global = l.Sugar()

	Global = newSubLogger("BACKTESTER")
	Engine = newSubLogger("ENGINE")
	Strategy = newSubLogger("STRATEGY")
	Data = newSubLogger("DATA")
	Config = newSubLogger("CONFIG")
	Statistics = newSubLogger("STATISTICS")
}

func newSubLogger(name string) *SubLogger {
	return &SubLogger{
		name:   name,
		logger: global.Named(name),
	}
}

// SetVerbose lowers the global level to debug
func SetVerbose(verbose bool) {
	if verbose {
		level.SetLevel(zapcore.DebugLevel)
		return
	}
	level.SetLevel(zapcore.InfoLevel)
}

// Info logs at info level to the provided sublogger
func Info(sl *SubLogger, a ...any) {
	sl.logger.Info(a...)
}

// Infof logs a formatted message at info level to the provided sublogger
func Infof(sl *SubLogger, format string, a ...any) {
	sl.logger.Infof(format, a...)
}

// Debug logs at debug level to the provided sublogger
func Debug(sl *SubLogger, a ...any) {
	sl.logger.Debug(a...)
}

// Debugf logs a formatted message at debug level to the provided sublogger
func Debugf(sl *SubLogger, format string, a ...any) {
	sl.logger.Debugf(format, a...)
}

// Warn logs at warn level to the provided sublogger
func Warn(sl *SubLogger, a ...any) {
	sl.logger.Warn(a...)
}

// Warnf logs a formatted message at warn level to the provided sublogger
func Warnf(sl *SubLogger, format string, a ...any) {
	sl.logger.Warnf(format, a...)
}

// Error logs at error level to the provided sublogger
func Error(sl *SubLogger, a ...any) {
	sl.logger.Error(a...)
}

// Errorf logs a formatted message at error level to the provided sublogger
func Errorf(sl *SubLogger, format string, a ...any) {
	sl.logger.Errorf(format, a...)
}
