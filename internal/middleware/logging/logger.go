package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

type Config struct {
	Enabled bool   // Включено ли логирование
	Level   string // DEBUG, INFO, WARN, ERROR
}

// Logger — тонкая обертка над logrus с префиксом компонента и парами
// ключ-значение в аргументах.
type Logger struct {
	entry  *logrus.Entry
	prefix string
}

func NewLogger(cfg *Config, prefix string) *Logger {
	base := logrus.New()

	if cfg == nil || !cfg.Enabled {
		base.SetOutput(io.Discard)
	} else {
		base.SetOutput(os.Stdout)
		level, err := logrus.ParseLevel(strings.ToLower(cfg.Level))
		if err != nil {
			level = logrus.InfoLevel
		}
		base.SetLevel(level)
	}

	// Настраиваем форматтер с понятным форматом времени
	base.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})

	return &Logger{
		entry:  logrus.NewEntry(base),
		prefix: prefix,
	}
}

// WithPrefix возвращает логгер-потомок с дополненным префиксом компонента.
func (l *Logger) WithPrefix(prefix string) *Logger {
	newPrefix := l.prefix
	if newPrefix != "" {
		newPrefix += " "
	}
	newPrefix += "[" + prefix + "]"

	return &Logger{
		entry:  l.entry,
		prefix: newPrefix,
	}
}

func (l *Logger) withFields(fields ...interface{}) *logrus.Entry {
	entry := l.entry
	for i := 0; i < len(fields); i += 2 {
		key := fmt.Sprint(fields[i])
		var val interface{} = "?"
		if i+1 < len(fields) {
			val = fields[i+1]
		}
		entry = entry.WithField(key, val)
	}
	return entry
}

func (l *Logger) message(msg string) string {
	if l.prefix == "" {
		return msg
	}
	return l.prefix + " " + msg
}

func (l *Logger) Debug(msg string, fields ...interface{}) {
	l.withFields(fields...).Debug(l.message(msg))
}

func (l *Logger) Info(msg string, fields ...interface{}) {
	l.withFields(fields...).Info(l.message(msg))
}

func (l *Logger) Warn(msg string, fields ...interface{}) {
	l.withFields(fields...).Warn(l.message(msg))
}

func (l *Logger) Error(msg string, fields ...interface{}) {
	l.withFields(fields...).Error(l.message(msg))
}
