package logger

import (
	"fmt"

	"github.com/go-co-op/gocron/v2"
)

type gocronLogger struct {
	logger Logger
}

// NewGocronLogger lets the scheduler log through l. Key/value pairs become fields.
func NewGocronLogger(l Logger) gocron.Logger {
	return &gocronLogger{logger: l.WithField("component", "scheduler")}
}

func (l *gocronLogger) Debug(msg string, args ...any) {
	l.logger.WithFields(pairsToFields(args)).Debug(msg)
}

func (l *gocronLogger) Info(msg string, args ...any) {
	l.logger.WithFields(pairsToFields(args)).Info(msg)
}

func (l *gocronLogger) Warn(msg string, args ...any) {
	l.logger.WithFields(pairsToFields(args)).Warn(msg)
}

func (l *gocronLogger) Error(msg string, args ...any) {
	l.logger.WithFields(pairsToFields(args)).Error(msg)
}

func pairsToFields(args []any) Fields {
	fields := make(Fields, len(args)/2)
	for i := 0; i < len(args); i += 2 {
		if i+1 >= len(args) {
			fields["extra"] = args[i]
			break
		}
		fields[fmt.Sprint(args[i])] = args[i+1]
	}
	return fields
}
