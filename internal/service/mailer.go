package service

import (
	"context"

	"beststore/internal/domain"

	"go.uber.org/zap"
)

// Mailer delivers account emails
type Mailer interface {
	SendPasswordReset(ctx context.Context, user *domain.User, resetLink string) error
}

// LogMailer writes outgoing mail to the log instead of sending it
type LogMailer struct {
	logger *zap.Logger
}

func NewLogMailer(logger *zap.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

func (m *LogMailer) SendPasswordReset(_ context.Context, user *domain.User, resetLink string) error {
	m.logger.Info("Password reset link",
		zap.String("email", user.Email),
		zap.String("link", resetLink),
	)
	return nil
}
