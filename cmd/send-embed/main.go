// Command send-embed posts a single embed message through the registered
// Stanton Times webhook.
//
//	send-embed --title "Hello" --description "World"
//	git log -1 --format=%B | send-embed --description -
package main

import (
	"context"
	"os"

	"github.com/zachyzissou/stanton-times/internal/cli"
)

func main() {
	os.Exit(cli.SendEmbed(context.Background(), os.Args[1:], cli.DefaultEnv()))
}
