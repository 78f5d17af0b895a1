package cli

import (
	"context"

	"github.com/zachyzissou/stanton-times/internal/config"
	"github.com/zachyzissou/stanton-times/internal/discord"
	"github.com/zachyzissou/stanton-times/internal/logger"
)

// CreateWebhook registers a webhook on the configured channel and stores its
// URL in the webhook credential file.
//
// Exit codes: 0 created, 1 any runtime failure, 2 bot token missing.
func CreateWebhook(ctx context.Context, args []string, env Env) int {
	cfg, err := config.LoadProvision(args, env.Resolver, env.stderr())
	if err != nil {
		return loadExitCode(logger.NewLogger(env.stderr(), false), err)
	}

	log := logger.NewLogger(env.stderr(), cfg.Verbose)

	if cfg.Token == "" {
		log.Error("Missing Discord bot token. Set " + config.EnvBotToken + " or " + config.EnvBotTokenFile + ".")
		return ExitNotConfigured
	}
	if err := cfg.Validate(); err != nil {
		log.Error("Invalid configuration", "error", err)
		return ExitFailure
	}

	ctx, stop := withShutdown(ctx, log)
	defer stop()

	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	newSession := env.NewSession
	if newSession == nil {
		newSession = gatewaySession
	}
	session, err := newSession(cfg.Token, cfg.GuildReadyTimeout, log)
	if err != nil {
		log.Error("Error creating webhook", "error", err)
		return ExitFailure
	}

	log.Debug("Provisioning webhook", "channel_id", cfg.ChannelID, "path", cfg.WebhookFile)

	provisioner := discord.NewProvisioner(session, discord.WebhookSpec{
		ChannelID: cfg.ChannelID,
		Name:      cfg.WebhookName,
		Reason:    cfg.WebhookReason,
		Path:      cfg.WebhookFile,
	}, log)
	if _, err := provisioner.Provision(ctx); err != nil {
		log.Error("Error creating webhook", "error", err, "channel_id", cfg.ChannelID)
		return ExitFailure
	}

	return ExitOK
}
