package discord

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
)

func readyEvent(guildIDs ...string) *discordgo.Ready {
	r := &discordgo.Ready{}
	for _, id := range guildIDs {
		r.Guilds = append(r.Guilds, &discordgo.Guild{ID: id, Unavailable: true})
	}
	return r
}

func isDone(t *readyTracker) bool {
	select {
	case <-t.done:
		return true
	default:
		return false
	}
}

func TestReadyTrackerWaitsForGuilds(t *testing.T) {
	tr := newReadyTracker(0)

	tr.onReady(nil, readyEvent("1", "2"))
	if isDone(tr) {
		t.Fatal("ready before guilds arrived")
	}

	tr.onGuildCreate(nil, &discordgo.GuildCreate{Guild: &discordgo.Guild{ID: "1"}})
	if isDone(tr) {
		t.Fatal("ready with a guild still pending")
	}

	tr.onGuildCreate(nil, &discordgo.GuildCreate{Guild: &discordgo.Guild{ID: "2"}})
	if !isDone(tr) {
		t.Fatal("not ready after all guilds arrived")
	}
	if err := tr.wait(context.Background()); err != nil {
		t.Errorf("wait() error = %v", err)
	}

	// Later guild events must not close the channel twice.
	tr.onGuildCreate(nil, &discordgo.GuildCreate{Guild: &discordgo.Guild{ID: "3"}})
}

func TestReadyTrackerGuildBeforeReady(t *testing.T) {
	tr := newReadyTracker(0)

	tr.onGuildCreate(nil, &discordgo.GuildCreate{Guild: &discordgo.Guild{ID: "1"}})
	if isDone(tr) {
		t.Fatal("ready before READY was seen")
	}

	tr.onReady(nil, readyEvent("1", "2"))
	if got := tr.missing(); got != 1 {
		t.Fatalf("missing() = %d, want 1", got)
	}

	tr.onGuildCreate(nil, &discordgo.GuildCreate{Guild: &discordgo.Guild{ID: "2"}})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := tr.wait(ctx); err != nil {
		t.Fatalf("wait() error = %v (missing=%d)", err, tr.missing())
	}
}

func TestReadyTrackerAllGuildsBeforeReady(t *testing.T) {
	tr := newReadyTracker(0)
	tr.onGuildCreate(nil, &discordgo.GuildCreate{Guild: &discordgo.Guild{ID: "1"}})
	tr.onReady(nil, readyEvent("1"))
	if !isDone(tr) {
		t.Errorf("not ready although every guild arrived (missing=%d)", tr.missing())
	}
}

func TestReadyTrackerNoGuilds(t *testing.T) {
	tr := newReadyTracker(time.Hour)
	tr.onReady(nil, readyEvent())
	if !isDone(tr) {
		t.Error("ready with no guilds should fire immediately")
	}
}

func TestReadyTrackerTimeout(t *testing.T) {
	tr := newReadyTracker(10 * time.Millisecond)
	tr.onReady(nil, readyEvent("1"))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := tr.wait(ctx); err != nil {
		t.Fatalf("wait() error = %v", err)
	}
	if got := tr.missing(); got != 1 {
		t.Errorf("missing() = %d, want 1", got)
	}
}

func TestReadyTrackerContextCancel(t *testing.T) {
	tr := newReadyTracker(0)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := tr.wait(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("wait() error = %v, want context.Canceled", err)
	}
}

func TestGatewaySessionChannelFromState(t *testing.T) {
	gs, err := NewGatewaySession("token", 0, nil)
	if err != nil {
		t.Fatalf("NewGatewaySession() error = %v", err)
	}
	if gs.session.Identify.Intents != discordgo.IntentsGuilds {
		t.Errorf("intents = %v, want IntentsGuilds", gs.session.Identify.Intents)
	}

	guild := &discordgo.Guild{
		ID:       "7",
		Channels: []*discordgo.Channel{{ID: "42", GuildID: "7", Name: "news"}},
	}
	if err := gs.session.State.GuildAdd(guild); err != nil {
		t.Fatalf("GuildAdd() error = %v", err)
	}

	ch, err := gs.Channel("42")
	if err != nil {
		t.Fatalf("Channel(42) error = %v", err)
	}
	if ch.Name != "news" {
		t.Errorf("Channel(42).Name = %q, want news", ch.Name)
	}

	if _, err := gs.Channel("43"); !errors.Is(err, ErrChannelNotFound) {
		t.Errorf("Channel(43) error = %v, want ErrChannelNotFound", err)
	}
}
