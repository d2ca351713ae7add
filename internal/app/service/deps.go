package service

import (
	"context"
	"log/slog"

	"sahaya_api/internal/domain/model"
)

type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) bool
}

type TokenIssuer interface {
	Issue(userID string) (string, error)
}

// MailDispatcher sends one plain-text email.
type MailDispatcher interface {
	Send(ctx context.Context, to, subject, body string) error
}

// EventPublisher feeds the real-time notification channel.
type EventPublisher interface {
	Publish(ctx context.Context, event model.Event) error
}

// publish is best-effort: a broken feed never fails the request.
func publish(ctx context.Context, events EventPublisher, logger *slog.Logger, event model.Event) {
	if events == nil {
		return
	}
	if err := events.Publish(ctx, event); err != nil {
		logger.WarnContext(ctx, "Event publish failed",
			slog.String("type", string(event.Type)),
			slog.String("user_id", event.UserID),
			slog.Any("error", err),
		)
	}
}
