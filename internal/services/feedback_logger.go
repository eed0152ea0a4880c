package services

import (
	"context"

	"go.uber.org/zap"
)

// NopFeedbackLogger drops feedback. Used when no learning subsystem is
// wired.
type NopFeedbackLogger struct{}

func (NopFeedbackLogger) LogFeedback(context.Context, FeedbackRecord) error { return nil }

// LogFeedbackLogger writes feedback records to the structured log, which is
// where the learning pipeline picks them up.
type LogFeedbackLogger struct {
	log *zap.SugaredLogger
}

func NewLogFeedbackLogger(log *zap.SugaredLogger) *LogFeedbackLogger {
	return &LogFeedbackLogger{log: log}
}

func (l *LogFeedbackLogger) LogFeedback(_ context.Context, record FeedbackRecord) error {
	l.log.Infow("slide feedback",
		"session", record.SessionID,
		"slide", record.SlideID,
		"action", record.Action,
		"classification", record.Classification,
		"originalTitle", record.OriginalTitle,
		"fixedTitle", record.FixedTitle,
	)
	return nil
}
