package logging

import (
	"fmt"
	"log"
	"os"
	"strings"
	"sync"

	"github.com/lni/dragonboat/v4/logger"
)

// catalogLogger implements logger.ILogger with "LEVEL | name | message"
// formatting.
type catalogLogger struct {
	name   string
	level  logger.LogLevel
	logger *log.Logger
}

func (l *catalogLogger) SetLevel(level logger.LogLevel) { l.level = level }

func (l *catalogLogger) Debugf(format string, args ...interface{}) {
	if l.level >= logger.DEBUG {
		l.log("DEBUG", format, args...)
	}
}

func (l *catalogLogger) Infof(format string, args ...interface{}) {
	if l.level >= logger.INFO {
		l.log("INFO", format, args...)
	}
}

func (l *catalogLogger) Warningf(format string, args ...interface{}) {
	if l.level >= logger.WARNING {
		l.log("WARN", format, args...)
	}
}

func (l *catalogLogger) Errorf(format string, args ...interface{}) {
	if l.level >= logger.ERROR {
		l.log("ERROR", format, args...)
	}
}

func (l *catalogLogger) Panicf(format string, args ...interface{}) {
	if l.level >= logger.CRITICAL {
		panic(fmt.Sprintf(format, args...))
	}
}

func (l *catalogLogger) log(levelStr, format string, args ...interface{}) {
	l.logger.Printf("%-5s | %-20s | %s", levelStr, l.name, fmt.Sprintf(format, args...))
}

// CreateLogger is a logger.Factory: it builds one catalogLogger per
// requested package name, defaulting to INFO.
func CreateLogger(pkgName string) logger.ILogger {
	return &catalogLogger{
		name:   pkgName,
		level:  logger.INFO,
		logger: log.New(os.Stdout, "", log.Ldate|log.Ltime),
	}
}

var installOnce sync.Once

// Install registers CreateLogger as dragonboat's global logger factory. It
// is safe to call more than once; only the first call takes effect.
func Install() {
	installOnce.Do(func() {
		logger.SetLoggerFactory(CreateLogger)
	})
}

// ParseLevel converts a string level name to logger.LogLevel, defaulting to
// INFO for an unrecognized value.
func ParseLevel(level string) logger.LogLevel {
	switch strings.ToLower(level) {
	case "debug":
		return logger.DEBUG
	case "info":
		return logger.INFO
	case "warning", "warn":
		return logger.WARNING
	case "error":
		return logger.ERROR
	case "critical":
		return logger.CRITICAL
	default:
		return logger.INFO
	}
}

// Get returns the named logger, installing the factory first if needed.
func Get(pkgName string) logger.ILogger {
	Install()
	l := logger.GetLogger(pkgName)
	return l
}
