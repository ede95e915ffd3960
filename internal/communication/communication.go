// Package communication reports message activity from the user's
// communication services.
package communication

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jaekwang-park/vici/internal/model"
)

var ErrUnknownService = errors.New("communication: unknown service")

// Source reports activity for one service.
type Source interface {
	Name() string
	Enabled() bool
	Activity(ctx context.Context) (model.CommunicationActivity, error)
	// ConnectMessage tells the user how to connect the service.
	ConnectMessage() string
}

type Manager struct {
	sources []Source
	logger  *slog.Logger
}

func NewManager(logger *slog.Logger, sources ...Source) *Manager {
	for _, s := range sources {
		if !s.Enabled() {
			logger.Warn("communication service disabled", "service", s.Name())
		}
	}
	return &Manager{sources: sources, logger: logger}
}

// Status returns one activity entry per source, in registration order. A
// source that is disabled or fails is reported as disconnected with zero
// counts.
func (m *Manager) Status(ctx context.Context) []model.CommunicationActivity {
	out := make([]model.CommunicationActivity, 0, len(m.sources))
	for _, s := range m.sources {
		if !s.Enabled() {
			out = append(out, disconnected(s.Name()))
			continue
		}
		act, err := s.Activity(ctx)
		if err != nil {
			m.logger.ErrorContext(ctx, "communication sync failed", "service", s.Name(), "error", err)
			out = append(out, disconnected(s.Name()))
			continue
		}
		out = append(out, act)
	}
	return out
}

func (m *Manager) Connect(service string) (string, error) {
	s, err := m.source(service)
	if err != nil {
		return "", err
	}
	m.logger.Info("communication connection requested", "service", s.Name())
	return s.ConnectMessage(), nil
}

func (m *Manager) Enabled(service string) bool {
	s, err := m.source(service)
	return err == nil && s.Enabled()
}

func (m *Manager) source(name string) (Source, error) {
	for _, s := range m.sources {
		if strings.EqualFold(s.Name(), name) {
			return s, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownService, name)
}

func disconnected(service string) model.CommunicationActivity {
	return model.CommunicationActivity{Service: service, KeywordsDetected: []string{}}
}

// Placeholder is a service without an integration. When enabled it reports
// itself connected with no activity.
type Placeholder struct {
	Service string
	On      bool
	Message string
}

func (p Placeholder) Name() string {
	return p.Service
}

func (p Placeholder) Enabled() bool {
	return p.On
}

func (p Placeholder) ConnectMessage() string {
	return p.Message
}

func (p Placeholder) Activity(ctx context.Context) (model.CommunicationActivity, error) {
	return model.CommunicationActivity{Service: p.Service, Connected: p.On, KeywordsDetected: []string{}}, nil
}

func Discord(botToken string) Placeholder {
	p := Placeholder{Service: "discord", On: botToken != ""}
	if p.On {
		p.Message = "Discord bot connection initiated."
	} else {
		p.Message = "Discord bot token not configured. Please add DISCORD_BOT_TOKEN to your environment."
	}
	return p
}

func Messenger() Placeholder {
	return Placeholder{Service: "messenger", Message: "Messenger integration coming soon!"}
}

// DetectKeywords returns the keywords found in texts, in keyword order.
func DetectKeywords(texts []string, keywords []string) []string {
	found := []string{}
	for _, kw := range keywords {
		for _, t := range texts {
			if strings.Contains(strings.ToLower(t), strings.ToLower(kw)) {
				found = append(found, kw)
				break
			}
		}
	}
	return found
}
