// Package config assembles the settings of the provisioning and sending
// tools from flags, the environment, credential files and an optional YAML
// file.
//
// Precedence: environment variable > YAML file > built-in default. The YAML
// file only ever replaces built-in defaults.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"

	"github.com/zachyzissou/stanton-times/internal/credentials"
)

// ErrUsage wraps command-line parsing failures. flag.ErrHelp is returned
// unwrapped.
var ErrUsage = errors.New("usage error")

const (
	EnvBotToken              = "STANTON_TIMES_DISCORD_BOT_TOKEN"
	EnvBotTokenFile          = "STANTON_TIMES_DISCORD_BOT_TOKEN_FILE"
	EnvWebhookURL            = "STANTON_TIMES_DISCORD_WEBHOOK_URL"
	EnvWebhookFile           = "STANTON_TIMES_DISCORD_WEBHOOK_FILE"
	EnvChannelID             = "STANTON_TIMES_DISCORD_CHANNEL_ID"
	EnvVerificationChannelID = "STANTON_TIMES_DISCORD_VERIFICATION_CHANNEL_ID"
)

const (
	DefaultChannelID         = "1207388252411453480"
	DefaultTokenFileName     = "stanton_times_discord_bot_token"
	DefaultWebhookFileName   = "stanton_times_discord_webhook"
	DefaultWebhookName       = "Stanton Times Webhook"
	DefaultWebhookReason     = "Automated webhook for Stanton Times content"
	DefaultGuildReadyTimeout = 15 * time.Second
	DefaultEnvFile           = ".env"
)

type ConfigFile struct {
	TokenFile         string `yaml:"token_file"`
	WebhookFile       string `yaml:"webhook_file"`
	ChannelID         string `yaml:"channel_id"`
	WebhookName       string `yaml:"webhook_name"`
	WebhookReason     string `yaml:"webhook_reason"`
	Timeout           int    `yaml:"timeout"`
	GuildReadyTimeout int    `yaml:"guild_ready_timeout"`
}

// Provision holds the settings of the webhook provisioner.
type Provision struct {
	Token             string
	WebhookFile       string        `validate:"required"`
	ChannelID         string        `validate:"required,number"`
	WebhookName       string        `validate:"required,max=80"`
	WebhookReason     string        `validate:"max=512"`
	Timeout           time.Duration `validate:"min=0"`
	GuildReadyTimeout time.Duration `validate:"min=0"`
	Verbose           bool
}

// Send holds the settings of the embed sender.
type Send struct {
	WebhookURL  string        `validate:"omitempty,http_url"`
	Title       string
	Description string
	Timeout     time.Duration `validate:"min=0"`
	Verbose     bool
}

// Validate checks field constraints. Missing credentials are not reported
// here; callers check those first.
func (c *Provision) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

func (c *Send) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

type commonFlags struct {
	verbose    bool
	configFile string
	envFile    string
}

func (f *commonFlags) register(flags *flag.FlagSet) {
	flags.BoolVar(&f.verbose, "v", false, "Verbose mode")
	flags.StringVar(&f.configFile, "c", "", "Config file path")
	flags.StringVar(&f.envFile, "env", DefaultEnvFile, "Dotenv file path (ignored when missing)")
}

// prepare loads the dotenv and YAML files named by the flags and returns the
// resolver to use for the remaining lookups.
func (f *commonFlags) prepare(r credentials.Resolver) (credentials.Resolver, *ConfigFile, error) {
	getenv, err := withDotenv(r.Getenv, f.envFile)
	if err != nil {
		return r, nil, err
	}
	r.Getenv = getenv

	fileConfig := &ConfigFile{}
	if f.configFile != "" {
		fileConfig, err = loadConfigFile(f.configFile)
		if err != nil {
			return r, nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}
	return r, fileConfig, nil
}

// LoadProvision parses the provisioner's arguments and resolves its settings.
// A resolved empty Token means no token is configured.
func LoadProvision(args []string, r credentials.Resolver, output io.Writer) (*Provision, error) {
	var common commonFlags
	flags := flag.NewFlagSet("create-webhook", flag.ContinueOnError)
	flags.SetOutput(output)
	common.register(flags)
	if err := parseFlags(flags, args); err != nil {
		return nil, err
	}
	if flags.NArg() > 0 {
		return nil, fmt.Errorf("%w: unexpected arguments: %s", ErrUsage, strings.Join(flags.Args(), " "))
	}

	r, fileConfig, err := common.prepare(r)
	if err != nil {
		return nil, err
	}

	config := &Provision{
		ChannelID:         DefaultChannelID,
		WebhookName:       DefaultWebhookName,
		WebhookReason:     DefaultWebhookReason,
		GuildReadyTimeout: DefaultGuildReadyTimeout,
		Verbose:           common.verbose,
	}
	if fileConfig.WebhookName != "" {
		config.WebhookName = fileConfig.WebhookName
	}
	if fileConfig.WebhookReason != "" {
		config.WebhookReason = fileConfig.WebhookReason
	}
	if fileConfig.Timeout > 0 {
		config.Timeout = time.Duration(fileConfig.Timeout) * time.Second
	}
	if fileConfig.GuildReadyTimeout > 0 {
		config.GuildReadyTimeout = time.Duration(fileConfig.GuildReadyTimeout) * time.Second
	}

	tokenPath := orDefault(fileConfig.TokenFile, credentials.DefaultPath(DefaultTokenFileName))
	config.Token = r.Resolve(
		credentials.Env(EnvBotToken),
		credentials.File(EnvBotTokenFile, tokenPath),
	)

	webhookPath := orDefault(fileConfig.WebhookFile, credentials.DefaultPath(DefaultWebhookFileName))
	config.WebhookFile = r.Path(EnvWebhookFile, webhookPath)

	config.ChannelID = r.Resolve(
		credentials.Env(EnvChannelID),
		credentials.Env(EnvVerificationChannelID),
		credentials.Literal(fileConfig.ChannelID),
		credentials.Literal(DefaultChannelID),
	)

	return config, nil
}

// LoadSend parses the sender's arguments and resolves its settings. A
// resolved empty WebhookURL means no webhook is configured.
func LoadSend(args []string, r credentials.Resolver, output io.Writer) (*Send, error) {
	var common commonFlags
	config := &Send{}

	flags := flag.NewFlagSet("send-embed", flag.ContinueOnError)
	flags.SetOutput(output)
	common.register(flags)
	flags.StringVar(&config.Title, "title", "", "Message content shown above the embed")
	flags.StringVar(&config.Description, "description", "", "Embed description (\"-\" reads piped stdin)")
	if err := parseFlags(flags, args); err != nil {
		return nil, err
	}
	config.Verbose = common.verbose

	r, fileConfig, err := common.prepare(r)
	if err != nil {
		return nil, err
	}

	if fileConfig.Timeout > 0 {
		config.Timeout = time.Duration(fileConfig.Timeout) * time.Second
	}

	webhookPath := orDefault(fileConfig.WebhookFile, credentials.DefaultPath(DefaultWebhookFileName))
	config.WebhookURL = r.Resolve(
		credentials.Env(EnvWebhookURL),
		credentials.File(EnvWebhookFile, webhookPath),
	)

	return config, nil
}

func parseFlags(flags *flag.FlagSet, args []string) error {
	err := flags.Parse(args)
	if err == nil || errors.Is(err, flag.ErrHelp) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrUsage, err)
}

func loadConfigFile(path string) (*ConfigFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var config ConfigFile
	err = yaml.Unmarshal(data, &config)
	return &config, err
}

// withDotenv layers the variables of a dotenv file under getenv. Variables
// already present in the environment always win.
func withDotenv(getenv func(string) string, path string) (func(string) string, error) {
	if getenv == nil {
		getenv = os.Getenv
	}
	if path == "" {
		return getenv, nil
	}

	vars, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return getenv, nil
		}
		return nil, fmt.Errorf("failed to read env file %s: %w", path, err)
	}

	return func(name string) string {
		if v := getenv(name); strings.TrimSpace(v) != "" {
			return v
		}
		return vars[name]
	}, nil
}

func orDefault(v, def string) string {
	if v = strings.TrimSpace(v); v != "" {
		return expandHome(v)
	}
	return def
}

// expandHome resolves a leading "~/" against the user's home directory.
func expandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}
