// Command create-webhook registers a Discord webhook on the Stanton Times
// channel using the bot token and stores the webhook URL in the credential
// file read by send-embed.
package main

import (
	"context"
	"os"

	"github.com/zachyzissou/stanton-times/internal/cli"
)

func main() {
	os.Exit(cli.CreateWebhook(context.Background(), os.Args[1:], cli.DefaultEnv()))
}
