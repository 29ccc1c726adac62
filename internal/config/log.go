// Package config provides logging setup shared by every package.
package config

import (
	"fmt"
	"os"
	"path"
	"strings"

	"github.com/sirupsen/logrus"
)

var availableLogLevels = []string{"panic", "fatal", "error", "warn", "info", "debug"}

// level is applied to every logger created after SetLevel.
var level = logrus.InfoLevel

// NamedLogger creates a package logger tagged with the package name.
func NamedLogger(name string) *logrus.Entry {
	logger := &logrus.Logger{
		Out: os.Stderr,
		Formatter: &CallerTextFormatter{
			TextFormatter: logrus.TextFormatter{
				FullTimestamp: true,
			},
		},
		Hooks:        make(logrus.LevelHooks),
		Level:        level,
		ReportCaller: true,
	}
	return logger.WithField("pkg", name)
}

// SetLevel changes the level for loggers created afterwards.
func SetLevel(l logrus.Level) {
	level = l
}

// ParseLevel validates a level name against the supported set.
func ParseLevel(name string) (logrus.Level, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, l := range availableLogLevels {
		if l == name {
			return logrus.ParseLevel(name)
		}
	}
	return logrus.InfoLevel, fmt.Errorf("invalid log level %q, expected one of: %s",
		name, strings.Join(availableLogLevels, ", "))
}

// CallerTextFormatter prefixes messages with the calling file and line.
type CallerTextFormatter struct {
	logrus.TextFormatter
}

// Format renders a single log entry. The caller is folded into the message,
// so the text formatter does not repeat it as func and file fields.
func (f *CallerTextFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	if !entry.HasCaller() {
		return f.TextFormatter.Format(entry)
	}
	e := *entry
	e.Message = fmt.Sprintf("[%-12s:%03d] %s", path.Base(entry.Caller.File), entry.Caller.Line, entry.Message)
	e.Caller = nil
	return f.TextFormatter.Format(&e)
}
