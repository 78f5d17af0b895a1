package discord

import (
	"context"
	"fmt"

	"github.com/zachyzissou/stanton-times/internal/credentials"
	"github.com/zachyzissou/stanton-times/internal/logger"
)

// WebhookSpec describes the webhook to create and where its URL goes.
type WebhookSpec struct {
	ChannelID string
	Name      string
	Reason    string
	Path      string
}

// Provisioner creates a webhook through a bot session and stores its URL.
// Every run creates a new webhook; existing ones are never reused.
type Provisioner struct {
	session Session
	spec    WebhookSpec
	logger  *logger.Logger
}

func NewProvisioner(session Session, spec WebhookSpec, log *logger.Logger) *Provisioner {
	if log == nil {
		log = logger.Discard()
	}
	return &Provisioner{
		session: session,
		spec:    spec,
		logger:  log,
	}
}

// Provision connects, creates the webhook, writes its URL to the credential
// file and disconnects. It returns the stored URL.
func (p *Provisioner) Provision(ctx context.Context) (string, error) {
	defer func() {
		if closeErr := p.session.Close(); closeErr != nil {
			p.logger.Debug("Closing gateway session failed", "error", closeErr)
		}
	}()
	if err := p.session.Open(ctx); err != nil {
		return "", err
	}

	channel, err := p.session.Channel(p.spec.ChannelID)
	if err != nil {
		return "", err
	}
	p.logger.Debug("Found channel", "channel_id", channel.ID, "name", channel.Name, "guild_id", channel.GuildID)

	hook, err := p.session.CreateWebhook(ctx, channel.ID, p.spec.Name, p.spec.Reason)
	if err != nil {
		return "", err
	}
	if hook.Token == "" {
		return "", fmt.Errorf("webhook %s was created without a token", hook.ID)
	}

	url := WebhookURL(hook.ID, hook.Token)
	if err := credentials.WriteSecret(p.spec.Path, url); err != nil {
		return "", err
	}

	p.logger.Info("Webhook created",
		"webhook_id", hook.ID,
		"channel_id", channel.ID,
		"path", p.spec.Path,
	)
	return url, nil
}
