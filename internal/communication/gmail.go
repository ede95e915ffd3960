package communication

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/jaekwang-park/vici/internal/model"
)

// DefaultKeywords are looked for in recent unread subjects.
var DefaultKeywords = []string{"meeting", "deadline", "urgent", "asap"}

const recentUnreadQuery = "is:unread newer_than:1d"

type GmailConfig struct {
	ClientID     string
	ClientSecret string
	RefreshToken string
	Keywords     []string
	// Options are passed to gmail.NewService after the OAuth client.
	Options []option.ClientOption
}

// Gmail reads INBOX counts and recent unread subjects through the Gmail API.
type Gmail struct {
	cfg     GmailConfig
	service *gmail.Service
}

var _ Source = (*Gmail)(nil)

// NewGmail builds a Gmail source. Without client credentials and a refresh
// token the source is disabled and makes no API calls.
func NewGmail(ctx context.Context, cfg GmailConfig) (*Gmail, error) {
	g := &Gmail{cfg: cfg}
	if len(g.cfg.Keywords) == 0 {
		g.cfg.Keywords = DefaultKeywords
	}
	if !g.Enabled() {
		return g, nil
	}

	oc := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Endpoint:     google.Endpoint,
		Scopes:       []string{gmail.GmailReadonlyScope},
	}
	client := oc.Client(ctx, &oauth2.Token{RefreshToken: cfg.RefreshToken})

	opts := append([]option.ClientOption{option.WithHTTPClient(client)}, cfg.Options...)
	svc, err := gmail.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to create gmail service: %w", err)
	}
	g.service = svc
	return g, nil
}

func (g *Gmail) Name() string { return "gmail" }

func (g *Gmail) Enabled() bool {
	return g.cfg.ClientID != "" && g.cfg.ClientSecret != "" && g.cfg.RefreshToken != ""
}

func (g *Gmail) ConnectMessage() string {
	if g.Enabled() {
		return "Gmail is connected."
	}
	return "Gmail credentials not configured. Please add GMAIL_CLIENT_ID, GMAIL_CLIENT_SECRET and GMAIL_REFRESH_TOKEN to your environment."
}

func (g *Gmail) Activity(ctx context.Context) (model.CommunicationActivity, error) {
	if g.service == nil {
		return disconnected(g.Name()), nil
	}

	inbox, err := g.service.Users.Labels.Get("me", "INBOX").Context(ctx).Do()
	if err != nil {
		return model.CommunicationActivity{}, fmt.Errorf("reading inbox label: %w", err)
	}

	list, err := g.service.Users.Messages.List("me").Q(recentUnreadQuery).MaxResults(20).Context(ctx).Do()
	if err != nil {
		return model.CommunicationActivity{}, fmt.Errorf("listing unread messages: %w", err)
	}

	var (
		subjects []string
		latest   int64
	)
	for _, m := range list.Messages {
		msg, err := g.service.Users.Messages.Get("me", m.Id).Format("metadata").MetadataHeaders("Subject").Context(ctx).Do()
		if err != nil {
			return model.CommunicationActivity{}, fmt.Errorf("reading message %s: %w", m.Id, err)
		}
		if msg.InternalDate > latest {
			latest = msg.InternalDate
		}
		if msg.Payload == nil {
			continue
		}
		for _, h := range msg.Payload.Headers {
			if h.Name == "Subject" {
				subjects = append(subjects, h.Value)
			}
		}
	}

	act := model.CommunicationActivity{
		Service:          g.Name(),
		Connected:        true,
		MessageCount:     int(inbox.MessagesTotal),
		UnreadCount:      int(inbox.MessagesUnread),
		KeywordsDetected: DetectKeywords(subjects, g.cfg.Keywords),
	}
	if latest > 0 {
		t := time.UnixMilli(latest).UTC()
		act.LastActivity = &t
	}
	return act, nil
}
