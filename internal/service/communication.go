package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/jaekwang-park/vici/internal/communication"
	"github.com/jaekwang-park/vici/internal/events"
	"github.com/jaekwang-park/vici/internal/metrics"
	"github.com/jaekwang-park/vici/internal/model"
)

// CommunicationSources reports activity for every configured service and
// explains how to connect one.
type CommunicationSources interface {
	Status(ctx context.Context) []model.CommunicationActivity
	Connect(service string) (string, error)
}

var _ CommunicationSources = (*communication.Manager)(nil)

type CommunicationService struct {
	source CommunicationSources
	pub    publisher

	mu   sync.Mutex
	last map[string]string
}

// NewCommunicationService creates a CommunicationService. pub may be nil.
func NewCommunicationService(source CommunicationSources, pub events.Publisher, logger *slog.Logger) *CommunicationService {
	return &CommunicationService{
		source: source,
		pub:    newPublisher(pub, logger),
		last:   make(map[string]string),
	}
}

func (s *CommunicationService) Status(ctx context.Context) []model.CommunicationActivity {
	acts := s.source.Status(ctx)
	for _, a := range acts {
		metrics.SetCommunicationUnread(a.Service, a.UnreadCount)
	}
	return acts
}

// Sync reads the current status and publishes communication_update to
// userID when it differs from what that user last received. It reports
// whether an event was published.
func (s *CommunicationService) Sync(ctx context.Context, userID string) bool {
	acts := s.Status(ctx)
	sig := signature(acts)

	s.mu.Lock()
	changed := s.last[userID] != sig
	s.last[userID] = sig
	s.mu.Unlock()

	if changed {
		s.pub.publish(ctx, userID, model.EventCommunicationUpdate, acts)
	}
	return changed
}

func signature(acts []model.CommunicationActivity) string {
	var b strings.Builder
	for _, a := range acts {
		fmt.Fprintf(&b, "%s:%t:%d:%d:%d;", a.Service, a.Connected, a.MessageCount, a.UnreadCount, a.Mentions)
	}
	return b.String()
}

// Connect returns the instructions for connecting service.
func (s *CommunicationService) Connect(service string) (string, error) {
	msg, err := s.source.Connect(service)
	if err != nil {
		if errors.Is(err, communication.ErrUnknownService) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("failed to connect %s: %w", service, err)
	}
	return msg, nil
}
