package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jaekwang-park/vici/internal/model"
)

// Watch applies push events until ctx is done or the stream closes.
func (s *Store) Watch(ctx context.Context) error {
	events, err := s.backend.Events(ctx)
	if err != nil {
		s.failed(ctx, "events", err, "")
		return fmt.Errorf("subscribing to events: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			s.handleEvent(ctx, ev)
		}
	}
}

func (s *Store) handleEvent(ctx context.Context, ev model.Event) {
	s.logger.DebugContext(ctx, "event received", "type", ev.Type)

	switch ev.Type {
	case model.EventTaskUpdated:
		_ = s.Refresh(ctx)
	case model.EventNotification, model.EventAccountabilityCheck:
		var n model.Notification
		if err := json.Unmarshal(ev.Payload, &n); err != nil || n.Message == "" {
			s.logger.WarnContext(ctx, "malformed notification event", "type", ev.Type)
			return
		}
		s.notifier.Info(n.Message)
		s.notifications.Invalidate()
	case model.EventCommunicationUpdate:
		var acts []model.CommunicationActivity
		if len(ev.Payload) > 0 && json.Unmarshal(ev.Payload, &acts) == nil {
			s.cache.Set(commsCacheKey, acts, defaultReadCacheTTL)
			return
		}
		s.comms.Invalidate()
	default:
		s.logger.DebugContext(ctx, "ignoring event", "type", ev.Type)
	}
}
