// internal/bot/rules.go
package bot

import (
	"strings"

	"github.com/osu-tryouts/tryoutsbot/internal/irc"
)

// banchoRule classifies one shape of Bancho message. Rules are evaluated in
// order and the first match wins; text matching no rule is dropped.
type banchoRule struct {
	match  func(text string) (arg string, ok bool)
	handle func(b *Bot, ev irc.Event, arg string)
}

// prefixRule matches text starting with prefix and passes the full text on.
func prefixRule(prefix string, handle func(b *Bot, ev irc.Event, arg string)) banchoRule {
	return banchoRule{
		match: func(text string) (string, bool) {
			if strings.HasPrefix(text, prefix) {
				return text, true
			}
			return "", false
		},
		handle: handle,
	}
}

// exactRule matches the whole message literally.
func exactRule(text string, handle func(b *Bot, ev irc.Event, arg string)) banchoRule {
	return banchoRule{
		match: func(t string) (string, bool) {
			return "", t == text
		},
		handle: handle,
	}
}

// playerRule matches text containing marker and extracts the player name
// preceding it, normalized to the underscore form.
func playerRule(marker string, handle func(b *Bot, ev irc.Event, arg string)) banchoRule {
	return banchoRule{
		match: func(text string) (string, bool) {
			idx := strings.Index(text, marker)
			if idx < 0 {
				return "", false
			}
			return normalizeName(text[:idx]), true
		},
		handle: handle,
	}
}

// privateRules classifies Bancho private messages.
func privateRules() []banchoRule {
	return []banchoRule{
		prefixRule("Created the tournament", func(b *Bot, ev irc.Event, arg string) {
			b.handleMatchCreated(arg)
		}),
		prefixRule("You cannot create any more tournament matches.", func(b *Bot, ev irc.Event, arg string) {
			b.relayLobbyFull()
		}),
		prefixRule("Stats for", func(b *Bot, ev irc.Event, arg string) {
			b.handleStatsReply(arg)
		}),
	}
}

// channelRules classifies Bancho match-channel messages.
func channelRules() []banchoRule {
	return []banchoRule{
		exactRule("All players are ready", func(b *Bot, ev irc.Event, arg string) {
			b.startMatch(ev.Target)
		}),
		exactRule("Countdown finished", func(b *Bot, ev irc.Event, arg string) {
			b.resolveCountdown(ev.Target)
		}),
		exactRule("The match has started!", func(b *Bot, ev irc.Event, arg string) {
			b.markMatchStarted(ev.Target)
		}),
		playerRule(" finished playing", func(b *Bot, ev irc.Event, arg string) {
			b.playerFinished(arg, ev.Text)
		}),
		playerRule(" joined in slot 1", func(b *Bot, ev irc.Event, arg string) {
			b.greetPlayer(arg)
		}),
		playerRule(" left the game.", func(b *Bot, ev irc.Event, arg string) {
			b.resolvePlayerLeave(arg)
		}),
	}
}
