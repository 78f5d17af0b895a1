package discord

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/zachyzissou/stanton-times/internal/logger"
)

// ErrChannelNotFound means the channel is not in the session's guild cache.
var ErrChannelNotFound = errors.New("channel not found")

// Session is the slice of a bot gateway session the provisioner needs.
type Session interface {
	// Open connects and blocks until the guild cache is populated. Close
	// must be called whether or not Open succeeds.
	Open(ctx context.Context) error
	Channel(id string) (*discordgo.Channel, error)
	CreateWebhook(ctx context.Context, channelID, name, reason string) (*discordgo.Webhook, error)
	Close() error
}

// GatewaySession is a Session backed by a discordgo websocket connection
// identified with the Guilds intent only.
type GatewaySession struct {
	session *discordgo.Session
	ready   *readyTracker
	logger  *logger.Logger
}

// NewGatewaySession prepares a bot session for token. Nothing is dialed
// until Open. guildReadyTimeout bounds the wait for guilds listed in READY
// to arrive; zero waits for all of them.
func NewGatewaySession(token string, guildReadyTimeout time.Duration, log *logger.Logger) (*GatewaySession, error) {
	s, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("create discord session: %w", err)
	}
	s.Identify.Intents = discordgo.IntentsGuilds
	s.StateEnabled = true
	s.ShouldReconnectOnError = false

	if log == nil {
		log = logger.Discard()
	}

	gs := &GatewaySession{
		session: s,
		ready:   newReadyTracker(guildReadyTimeout),
		logger:  log,
	}
	s.AddHandlerOnce(gs.ready.onReady)
	s.AddHandler(gs.ready.onGuildCreate)
	return gs, nil
}

// Open dials the gateway and waits for the guild cache. The caller must
// Close the session even when Open fails, since the websocket may already
// be connected.
func (gs *GatewaySession) Open(ctx context.Context) error {
	if err := gs.session.Open(); err != nil {
		return fmt.Errorf("open gateway: %w", err)
	}
	gs.logger.Debug("Gateway connected, waiting for guilds")

	if err := gs.ready.wait(ctx); err != nil {
		return fmt.Errorf("wait for ready: %w", err)
	}
	if missing := gs.ready.missing(); missing > 0 {
		gs.logger.Warn("Guilds still unavailable after ready timeout", "count", missing)
	}
	gs.logger.Debug("Gateway ready", "guilds", len(gs.session.State.Guilds))
	return nil
}

// Channel looks id up in the local state cache only.
func (gs *GatewaySession) Channel(id string) (*discordgo.Channel, error) {
	ch, err := gs.session.State.Channel(id)
	if err != nil {
		if errors.Is(err, discordgo.ErrStateNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrChannelNotFound, id)
		}
		return nil, err
	}
	return ch, nil
}

func (gs *GatewaySession) CreateWebhook(ctx context.Context, channelID, name, reason string) (*discordgo.Webhook, error) {
	opts := []discordgo.RequestOption{discordgo.WithContext(ctx)}
	if reason != "" {
		opts = append(opts, discordgo.WithAuditLogReason(reason))
	}
	hook, err := gs.session.WebhookCreate(channelID, name, "", opts...)
	if err != nil {
		return nil, fmt.Errorf("create webhook: %w", err)
	}
	return hook, nil
}

func (gs *GatewaySession) Close() error {
	gs.ready.stop()
	return gs.session.Close()
}

// readyTracker fires once after READY and a GUILD_CREATE for every guild
// READY announced, or when the guild timeout elapses after READY. Handlers
// run on separate goroutines, so a GUILD_CREATE may be seen before READY.
type readyTracker struct {
	timeout time.Duration

	mu      sync.Mutex
	seen    bool
	pending map[string]struct{}
	arrived map[string]struct{}
	timer   *time.Timer

	done chan struct{}
	once sync.Once
}

func newReadyTracker(timeout time.Duration) *readyTracker {
	return &readyTracker{
		timeout: timeout,
		pending: make(map[string]struct{}),
		arrived: make(map[string]struct{}),
		done:    make(chan struct{}),
	}
}

func (t *readyTracker) onReady(_ *discordgo.Session, r *discordgo.Ready) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.seen = true
	for _, g := range r.Guilds {
		if _, ok := t.arrived[g.ID]; g.Unavailable && !ok {
			t.pending[g.ID] = struct{}{}
		}
	}
	if len(t.pending) == 0 {
		t.finish()
		return
	}
	if t.timeout > 0 {
		t.timer = time.AfterFunc(t.timeout, t.finish)
	}
}

func (t *readyTracker) onGuildCreate(_ *discordgo.Session, g *discordgo.GuildCreate) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.arrived[g.ID] = struct{}{}
	delete(t.pending, g.ID)
	if t.seen && len(t.pending) == 0 {
		t.finish()
	}
}

func (t *readyTracker) finish() {
	t.once.Do(func() { close(t.done) })
}

func (t *readyTracker) wait(ctx context.Context) error {
	select {
	case <-t.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (t *readyTracker) missing() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.pending)
}

func (t *readyTracker) stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.timer != nil {
		t.timer.Stop()
	}
}
