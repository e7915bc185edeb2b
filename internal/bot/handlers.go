// internal/bot/handlers.go
package bot

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/osu-tryouts/tryoutsbot/internal/session"
)

// withSession runs fn on the player's active session. A missing session is
// logged and the action dropped; session-scoped handlers never error out.
func (b *Bot) withSession(player, op string, fn func(s *session.Session)) {
	s, ok := b.sessions.Get(player)
	if !ok {
		b.logger.WithFields(logrus.Fields{
			"player": player,
			"op":     op,
		}).Warn("No active session for action, dropping")
		return
	}
	fn(s)
	b.logger.WithFields(logrus.Fields{
		"player": player,
		"op":     op,
		"state":  s.State.String(),
		"map":    s.MapIndex,
	}).Debug("Session after action")
}

// withChannelSession is withSession keyed by match channel, for Bancho
// events that carry no player name.
func (b *Bot) withChannelSession(channel, op string, fn func(s *session.Session)) {
	s, ok := b.sessions.GetByChannel(channel)
	if !ok {
		b.logger.WithFields(logrus.Fields{
			"channel": channel,
			"op":      op,
		}).Warn("No active session for channel, dropping")
		return
	}
	fn(s)
}

// handleMatchCreated processes Bancho's match-creation confirmation:
// "Created the tournament match https://osu.ppy.sh/mp/12345 Foo".
// This is the moment the session actually comes into existence.
func (b *Bot) handleMatchCreated(text string) {
	fields := strings.Fields(text)
	if len(fields) < 2 {
		b.logger.Warnf("Unparseable match creation message: %q", text)
		return
	}
	player := fields[len(fields)-1]

	slash := strings.LastIndex(text, "/")
	if slash < 0 {
		b.logger.Warnf("Match creation message carries no URL: %q", text)
		return
	}
	matchID := strings.SplitN(text[slash+1:], " ", 2)[0]

	url := fmt.Sprintf("https://osu.ppy.sh/community/matches/%s", matchID)
	s := session.New(player, fmt.Sprintf("#mp_%s", matchID), url)
	b.sessions.Add(s)
	if b.lastRequester == player {
		b.lastRequester = ""
	}
	b.logger.WithFields(logrus.Fields{
		"player":  player,
		"channel": s.Channel,
	}).Info("Started an active lobby")

	ctx, cancel := storeContext()
	defer cancel()
	if err := b.store.AppendLobby(ctx, player, url); err != nil {
		b.logger.WithError(err).Error("Failed to record lobby, continuing")
	}

	// Ask Bancho for the player's stats; the reply feeds the players sheet.
	b.send(BanchoNick, fmt.Sprintf("!stats %s", player))

	b.setupLobby(player)
}

// setupLobby applies slot and team settings, invites the player, and queues
// the first map of the rotation.
func (b *Bot) setupLobby(player string) {
	b.withSession(player, "setupLobby", func(s *session.Session) {
		first := b.mappool[s.MapIndex]
		mapCmd, modCmd := first.Commands()

		b.send(s.Channel, "!mp set 0 3 1")
		b.send(s.Channel, fmt.Sprintf("!mp invite %s", s.Player))
		b.send(s.Channel, mapCmd)
		b.send(s.Channel, modCmd)

		s.MapIndex++
		s.State = session.StateInitialized
	})
}

// greetPlayer handles the join-slot-1 event: first join gets the greetings
// and a readiness timer, a rejoin after a disconnect gets the leave notice.
func (b *Bot) greetPlayer(player string) {
	b.withSession(player, "greetPlayer", func(s *session.Session) {
		switch s.State {
		case session.StateInitialized:
			for _, greeting := range b.settings.Greetings {
				b.send(s.Channel, greeting)
			}
			b.runDefaultTimer(s)
		case session.StateDisconnected:
			left := b.cfg.MaxLeaves - s.LeaveCount
			b.send(s.Channel, fmt.Sprintf(b.settings.LobbyLeaveDetected,
				left, s.LeaveCount, b.cfg.MaxLeaves))
			b.runDefaultTimer(s)
		}
	})
}

// runDefaultTimer starts the readiness countdown in the lobby.
func (b *Bot) runDefaultTimer(s *session.Session) {
	b.send(s.Channel, fmt.Sprintf("!mp timer %d", b.cfg.ReadyWaitSeconds))
	s.State = session.StateWaiting
}

// startMatch fires the short start countdown. State flips to playing only
// when Bancho confirms with "The match has started!".
func (b *Bot) startMatch(channel string) {
	b.send(channel, "!mp start 5")
}

// markMatchStarted records Bancho's start confirmation. Idempotent.
func (b *Bot) markMatchStarted(channel string) {
	b.withChannelSession(channel, "markMatchStarted", func(s *session.Session) {
		s.State = session.StatePlaying
	})
}

// resolveCountdown disambiguates "Countdown finished": in a waiting lobby
// it means the ready grace period ran out, so start; in a disconnected
// lobby it means the player never came back, so close.
func (b *Bot) resolveCountdown(channel string) {
	b.withChannelSession(channel, "resolveCountdown", func(s *session.Session) {
		switch s.State {
		case session.StateDisconnected:
			b.logger.Warnf("%s left the game and the countdown ended, terminating", s.Player)
			b.closeMatch(s.Player)
		case session.StateWaiting:
			b.startMatch(channel)
		}
	})
}

// playerFinished captures the score and rotates to the next map.
func (b *Bot) playerFinished(player, text string) {
	b.withSession(player, "playerFinished", func(s *session.Session) {
		if s.State != session.StatePlaying {
			return
		}
		b.recordScore(s, text)
		b.nextMap(s)
	})
}

// recordScore parses the score out of a finished-playing message, e.g.
// "Foo finished playing (Score: 113372, PASSED)." and appends it for the
// map that was just played. A malformed message skips the score silently.
func (b *Bot) recordScore(s *session.Session, text string) {
	const marker = "(Score: "
	start := strings.Index(text, marker)
	if start < 0 || s.MapIndex == 0 {
		return
	}
	rest := text[start+len(marker):]
	end := strings.IndexAny(rest, ",)")
	if end < 0 {
		return
	}
	value, err := strconv.ParseInt(strings.TrimSpace(rest[:end]), 10, 64)
	if err != nil {
		return
	}

	played := b.mappool[s.MapIndex-1]
	ctx, cancel := storeContext()
	defer cancel()
	if err := b.store.AppendScore(ctx, s.Player, value, played.ID); err != nil {
		b.logger.WithError(err).Error("Failed to record score, continuing")
	}
}

// nextMap advances the rotation, closing the session once the pool is
// exhausted.
func (b *Bot) nextMap(s *session.Session) {
	if s.Exhausted(len(b.mappool)) {
		b.logger.Infof("Exhausted the mappool, ending the lobby for %s", s.Player)
		s.State = session.StateEnding
		b.closeMatch(s.Player)
		return
	}

	next := b.mappool[s.MapIndex]
	b.logger.WithFields(logrus.Fields{
		"player":  s.Player,
		"beatmap": next.ID,
	}).Info("Changing the map")

	mapCmd, modCmd := next.Commands()
	b.send(s.Channel, mapCmd)
	b.send(s.Channel, modCmd)
	s.MapIndex++
	b.runDefaultTimer(s)
}

// abortMap handles !abort: one abort per tryout, only while playing.
func (b *Bot) abortMap(player string) {
	b.withSession(player, "abortMap", func(s *session.Session) {
		if s.AbortCount >= b.cfg.MaxAborts {
			b.send(s.Channel, b.settings.NoAbortsLeft)
			return
		}
		if s.State != session.StatePlaying {
			return
		}
		s.AbortCount++
		b.send(s.Channel, "!mp abort")
		b.runDefaultTimer(s)
	})
}

// skipMap handles !skip: abort the current map if one is running, then
// move the rotation forward.
func (b *Bot) skipMap(player string) {
	b.withSession(player, "skipMap", func(s *session.Session) {
		switch s.State {
		case session.StatePlaying:
			b.send(s.Channel, "!mp abort")
			b.nextMap(s)
		case session.StateWaiting, session.StateInitialized:
			b.nextMap(s)
		}
	})
}

// resolvePlayerLeave tolerates disconnects up to the configured strike
// count with an extended timer; past that the session is forfeited.
func (b *Bot) resolvePlayerLeave(player string) {
	b.withSession(player, "resolvePlayerLeave", func(s *session.Session) {
		if s.LeaveCount < b.cfg.MaxLeaves {
			b.send(s.Channel, fmt.Sprintf("!mp timer %d", b.cfg.DisconnectWaitSeconds))
			s.State = session.StateDisconnected
			s.LeaveCount++
			return
		}
		b.closeMatch(player)
	})
}

// inviteLobby re-sends the lobby invite.
func (b *Bot) inviteLobby(player string) {
	b.withSession(player, "inviteLobby", func(s *session.Session) {
		b.send(s.Channel, fmt.Sprintf("!mp invite %s", s.Player))
	})
}

// closeMatch closes the lobby and removes the session from the registry.
func (b *Bot) closeMatch(player string) {
	b.withSession(player, "closeMatch", func(s *session.Session) {
		b.send(s.Channel, "!mp close")
		b.sessions.Remove(player)
	})
}

// handleStatsReply parses "Stats for (Foo)[https://osu.ppy.sh/u/1234] ..."
// and records the player on the players sheet.
func (b *Bot) handleStatsReply(text string) {
	open := strings.Index(text, "(")
	closing := strings.Index(text, ")")
	if open < 0 || closing < open {
		return
	}
	name := text[open+1 : closing]

	lbr := strings.Index(text, "[")
	rbr := strings.Index(text, "]")
	if lbr < 0 || rbr < lbr {
		return
	}
	url := text[lbr+1 : rbr]
	id := url[strings.LastIndex(url, "/")+1:]

	ctx, cancel := storeContext()
	defer cancel()
	if err := b.store.AddPlayer(ctx, id, name); err != nil {
		b.logger.WithError(err).Error("Failed to record player, continuing")
	}
}
