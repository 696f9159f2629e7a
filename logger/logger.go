package logger

import (
	"fmt"
	"io"
	"os"
	"runtime/debug"
	"strings"

	"github.com/mattn/go-isatty"
	log "github.com/sirupsen/logrus"
)

// EnvVarLogFormat overrides the formatter chosen from the terminal type.
const EnvVarLogFormat = "SDW_LOG_FORMAT"

// Logger type is interface for available logging methods.
type Logger interface {
	Trace(...interface{})
	Debug(...interface{})
	Info(...interface{})
	Warn(...interface{})
	Error(...interface{})
	Panic(...interface{})
	Fatal(...interface{})
	WithField(key string, value interface{}) Logger
}

// LoggerImpl is a struct that extends sirupsen/logrus.
type LoggerImpl struct {
	Logger         *log.Entry
	Service        string
	LogLevelStr    string
	PrintStackDump bool
}

// NewLogger will create a new logger implementation.
// Output goes to stderr: text when stderr is a terminal, else JSON so lines can be shipped as-is.
func NewLogger(serviceName string, level string, stackDumpOnPanic bool) *LoggerImpl {
	l := log.New()
	l.SetOutput(os.Stderr)
	l.SetFormatter(chooseFormatter(os.Getenv(EnvVarLogFormat), isatty.IsTerminal(os.Stderr.Fd())))
	logLevel, err := log.ParseLevel(level)
	if err != nil {
		fmt.Println("Error setting up logging: ", err)
		os.Exit(1)
	}
	l.SetLevel(logLevel)
	entry := l.WithFields(log.Fields{
		"service": serviceName,
	})
	return &LoggerImpl{Logger: entry, Service: serviceName, LogLevelStr: level, PrintStackDump: stackDumpOnPanic}
}

func chooseFormatter(format string, terminal bool) log.Formatter {
	switch strings.ToLower(format) {
	case "json":
		return &log.JSONFormatter{}
	case "text":
		return &log.TextFormatter{FullTimestamp: true}
	}
	if terminal {
		return &log.TextFormatter{FullTimestamp: true}
	}
	return &log.JSONFormatter{}
}

// WithField returns a child logger that adds key=value to every line.
func (l *LoggerImpl) WithField(key string, value interface{}) Logger {
	return &LoggerImpl{
		Logger:         l.Logger.WithField(key, value),
		Service:        l.Service,
		LogLevelStr:    l.LogLevelStr,
		PrintStackDump: l.PrintStackDump,
	}
}

func (l *LoggerImpl) Trace(message ...interface{}) {
	l.Logger.Trace(message...)
}

func (l *LoggerImpl) Debug(message ...interface{}) {
	l.Logger.Debug(message...)
}

func (l *LoggerImpl) Info(message ...interface{}) {
	l.Logger.Info(message...)
}

func (l *LoggerImpl) Warn(message ...interface{}) {
	l.Logger.Warn(message...)
}

// Error (with stack trace in trace mode or if the user asked for stack dumps).
func (l *LoggerImpl) Error(message ...interface{}) {
	if l.LogLevelStr == "trace" || l.PrintStackDump {
		l.Logger.WithField("stackTrace", string(debug.Stack())).Error(message...)
		return
	}
	l.Logger.Error(message...)
}

// Panic logs and panics when a stack dump is wanted, else it logs and exits without one.
func (l *LoggerImpl) Panic(message ...interface{}) {
	if l.PrintStackDump {
		l.Logger.WithField("stackTrace", string(debug.Stack())).Panic(message...)
	}
	l.Logger.Fatal(message...)
}

// Fatal (with stack trace in debug mode).
// This causes exit(1) without a stack dump by default.
// Call Panic() to get a stack dump instead.
func (l *LoggerImpl) Fatal(message ...interface{}) {
	if l.LogLevelStr == "debug" || l.LogLevelStr == "trace" {
		l.Logger.WithField("stackTrace", string(debug.Stack())).Fatal(message...)
	}
	l.Logger.Fatal(message...)
}

// SetOutput will set the log output to the Writer supplied.
func (l *LoggerImpl) SetOutput(writer io.Writer) {
	l.Logger.Logger.SetOutput(writer)
}

// SetFormatter replaces the formatter chosen at construction.
func (l *LoggerImpl) SetFormatter(f log.Formatter) {
	l.Logger.Logger.SetFormatter(f)
}
