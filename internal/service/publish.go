package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/jaekwang-park/vici/internal/events"
	"github.com/jaekwang-park/vici/internal/model"
)

// publisher pushes events best-effort. A nil events.Publisher disables it.
type publisher struct {
	events events.Publisher
	logger *slog.Logger
	now    func() time.Time
}

func newPublisher(p events.Publisher, logger *slog.Logger) publisher {
	if logger == nil {
		logger = slog.Default()
	}
	return publisher{events: p, logger: logger, now: time.Now}
}

func (p publisher) publish(ctx context.Context, userID string, typ model.EventType, payload any) {
	if p.events == nil {
		return
	}
	ev, err := model.NewEvent(typ, payload, p.now())
	if err != nil {
		p.logger.ErrorContext(ctx, "failed to encode event", "type", typ, "error", err)
		return
	}
	if err := p.events.Publish(ctx, userID, ev); err != nil {
		p.logger.WarnContext(ctx, "failed to publish event", "type", typ, "user_id", userID, "error", err)
	}
}
