// internal/bot/bot.go
package bot

import (
	"context"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/osu-tryouts/tryoutsbot/internal/beatmap"
	"github.com/osu-tryouts/tryoutsbot/internal/config"
	"github.com/osu-tryouts/tryoutsbot/internal/irc"
	"github.com/osu-tryouts/tryoutsbot/internal/session"
	"github.com/osu-tryouts/tryoutsbot/internal/sheets"
)

// BanchoNick is the authoritative game-server account. Only messages from
// this sender drive session state; everything else is player chat.
const BanchoNick = "BanchoBot"

const storeTimeout = 10 * time.Second

// Sender delivers one outbound chat message to a player or channel.
// The transport serializes and rate-limits; callers can assume queued
// messages are delivered in order.
type Sender interface {
	Send(target, text string)
}

// TryoutStore is the slice of spreadsheet persistence the bot consumes.
type TryoutStore interface {
	GetPlayedLobbies(ctx context.Context) (map[string][]sheets.PlayedLobby, error)
	AppendLobby(ctx context.Context, player, url string) error
	GetPlayers(ctx context.Context) ([]string, error)
	AddPlayer(ctx context.Context, playerID, playerName string) error
	AppendScore(ctx context.Context, player string, score int64, beatmapID string) error
}

// Bot drives one tryout lobby per player: it interprets Bancho events and
// player commands, walks each session through the map rotation, and records
// lobbies and scores to the spreadsheet store.
type Bot struct {
	cfg      config.Config
	settings config.Settings
	mappool  beatmap.Mappool

	store    TryoutStore
	sender   Sender
	sessions *session.Store
	logger   *logrus.Logger

	allowedPlayers []string
	playedLobbies  map[string][]sheets.PlayedLobby

	// lastRequester holds the most recent player whose !mp make is still
	// unconfirmed. A single slot: concurrent requests from different
	// players can relay a "no more matches" refusal to the wrong one.
	lastRequester string

	privRules []banchoRule
	chanRules []banchoRule

	now func() time.Time
}

// New wires a Bot. The sender is attached separately because the transport
// needs the bot as its event handler before it can exist.
func New(cfg config.Config, settings config.Settings, mappool beatmap.Mappool, store TryoutStore, logger *logrus.Logger) *Bot {
	b := &Bot{
		cfg:           cfg,
		settings:      settings,
		mappool:       mappool,
		store:         store,
		sessions:      session.NewStore(),
		logger:        logger,
		playedLobbies: make(map[string][]sheets.PlayedLobby),
		now:           time.Now,
	}
	b.privRules = privateRules()
	b.chanRules = channelRules()
	return b
}

// AttachSender sets the outbound transport. Must be called before Run.
func (b *Bot) AttachSender(s Sender) {
	b.sender = s
}

// Sessions exposes the registry for the shutdown path.
func (b *Bot) Sessions() *session.Store {
	return b.sessions
}

func (b *Bot) send(target, text string) {
	b.sender.Send(target, text)
}

// HandlePrivateMessage routes a private message: Bancho replies go through
// the classification rules, player messages through the command set.
func (b *Bot) HandlePrivateMessage(ev irc.Event) {
	if ev.Sender == BanchoNick {
		b.applyRules(b.privRules, ev)
		return
	}

	switch ev.Text {
	case "!play":
		b.makeLobby(ev.Sender)
	case "!invite":
		b.inviteLobby(ev.Sender)
	}
}

// HandleChannelMessage routes a channel message the same way; player
// commands here are scoped to the lobby the channel belongs to.
func (b *Bot) HandleChannelMessage(ev irc.Event) {
	if ev.Sender == BanchoNick {
		b.applyRules(b.chanRules, ev)
		return
	}

	switch ev.Text {
	case "!abort":
		b.abortMap(ev.Sender)
	case "!skip":
		b.skipMap(ev.Sender)
	case "!quit":
		b.closeMatch(ev.Sender)
	case "!play":
		b.startMatch(ev.Target)
	}
}

// HandleRemoved fires when Bancho kicks the bot out of a match channel.
// The channel is already gone, so the session is dropped without sending
// anything further.
func (b *Bot) HandleRemoved(channel string) {
	s, ok := b.sessions.GetByChannel(channel)
	if !ok {
		b.logger.Warnf("Kicked from %s but no active session is bound to it", channel)
		return
	}
	b.logger.WithFields(logrus.Fields{
		"player":  s.Player,
		"channel": channel,
	}).Info("Removed from channel, dropping session")
	b.sessions.Remove(s.Player)
}

// Shutdown force-closes every active session so no lobby is left dangling.
func (b *Bot) Shutdown() {
	for _, player := range b.sessions.Players() {
		b.closeMatch(player)
	}
}

func (b *Bot) applyRules(rules []banchoRule, ev irc.Event) {
	for _, r := range rules {
		if arg, ok := r.match(ev.Text); ok {
			r.handle(b, ev, arg)
			return
		}
	}
	// Unrecognized Bancho text is a no-op.
}

// normalizeName collapses a display name with spaces into the underscore
// form Bancho uses for message targets, so it can serve as a registry key.
func normalizeName(name string) string {
	return strings.ReplaceAll(name, " ", "_")
}

func storeContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), storeTimeout)
}
