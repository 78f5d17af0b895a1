package cli

import (
	"context"
	"errors"

	"github.com/zachyzissou/stanton-times/internal/config"
	"github.com/zachyzissou/stanton-times/internal/discord"
	"github.com/zachyzissou/stanton-times/internal/logger"
)

// SendEmbed posts one embed message to the configured webhook.
//
// Exit codes: 0 sent, 1 HTTP or network failure, 2 webhook URL missing.
func SendEmbed(ctx context.Context, args []string, env Env) int {
	cfg, err := config.LoadSend(args, env.Resolver, env.stderr())
	if err != nil {
		return loadExitCode(logger.NewLogger(env.stderr(), false), err)
	}

	log := logger.NewLogger(env.stderr(), cfg.Verbose)

	if cfg.WebhookURL == "" {
		log.Error("Discord webhook URL not configured. Set " + config.EnvWebhookURL + " or " + config.EnvWebhookFile + ".")
		return ExitNotConfigured
	}
	if err := cfg.Validate(); err != nil {
		log.Error("Invalid configuration", "error", err)
		return ExitFailure
	}

	if cfg.Description == "-" {
		cfg.Description, err = readPiped(env.Stdin)
		if err != nil {
			log.Error("Failed to read description from stdin", "error", err)
			return ExitFailure
		}
	}

	ctx, stop := withShutdown(ctx, log)
	defer stop()

	client := discord.NewWebhookClient(cfg.WebhookURL, env.httpClient(cfg.Timeout), log)
	if err := client.Send(ctx, discord.NewEmbedPayload(cfg.Title, cfg.Description)); err != nil {
		var statusErr *discord.StatusError
		if errors.As(err, &statusErr) {
			log.Error("Error sending embed", "error", err, "status", statusErr.StatusCode, "body", statusErr.Body)
		} else {
			log.Error("Error sending embed", "error", err)
		}
		return ExitFailure
	}

	log.Info("Embed sent successfully")
	return ExitOK
}
