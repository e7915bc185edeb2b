// internal/bot/policy.go
package bot

import (
	"fmt"
	"strings"

	"github.com/osu-tryouts/tryoutsbot/internal/sheets"
)

// makeLobby is the gate in front of every lobby request. It refreshes the
// tournament state from the store, then checks, in order: the tournament
// time window, the allow-list, an already-active session, and the play
// count. Only a request passing all four reaches Bancho.
func (b *Bot) makeLobby(author string) {
	if !b.refreshTournamentState(author) {
		return
	}

	now := b.now()
	if now.Before(b.settings.TournamentStart) {
		b.send(author, fmt.Sprintf(b.settings.TournamentNotStartedYet,
			b.settings.TournamentStart.Format("2006-01-02 15:04")))
		return
	}
	if now.After(b.settings.TournamentEnd) {
		b.send(author, fmt.Sprintf(b.settings.TournamentEnded,
			b.settings.TournamentEnd.Format("2006-01-02 15:04")))
		if lobbies, ok := b.lookupPlayed(author); ok {
			b.reportPlayedLobbies(author, lobbies)
		}
		return
	}

	if len(b.allowedPlayers) > 0 && !b.isAllowed(author) {
		b.send(author, b.settings.AllowedPlayersOnly)
		return
	}

	if _, ok := b.sessions.Get(author); ok {
		b.send(author, b.settings.PlayerAlreadyInLobby)
		b.inviteLobby(author)
		return
	}

	if lobbies, ok := b.lookupPlayed(author); ok && len(lobbies) >= b.cfg.MaxPlays {
		b.reportPlayedLobbies(author, lobbies)
		return
	}

	b.lastRequester = author
	b.send(BanchoNick, fmt.Sprintf("!mp make %s - %s", b.settings.TournamentName, author))
}

// refreshTournamentState pulls the allow-list and played-lobby history.
// A failed history read aborts the request without touching session state;
// a failed allow-list read keeps the previous list.
func (b *Bot) refreshTournamentState(author string) bool {
	ctx, cancel := storeContext()
	defer cancel()

	if players, err := b.store.GetPlayers(ctx); err != nil {
		b.logger.WithError(err).Error("Failed to refresh allowed players, keeping previous list")
	} else {
		b.allowedPlayers = players
	}

	lobbies, err := b.store.GetPlayedLobbies(ctx)
	if err != nil {
		b.logger.WithError(err).Error("Failed to read played lobbies")
		b.send(author, b.settings.TryAgainLater)
		return false
	}
	b.playedLobbies = lobbies
	return true
}

// isAllowed checks the allow-list against both the literal nickname and its
// spaced display-name variant.
func (b *Bot) isAllowed(author string) bool {
	spaced := strings.ReplaceAll(author, "_", " ")
	for _, p := range b.allowedPlayers {
		if p == author || p == spaced {
			return true
		}
	}
	return false
}

// lookupPlayed finds the player's lobby history under either name form.
func (b *Bot) lookupPlayed(author string) ([]sheets.PlayedLobby, bool) {
	if lobbies, ok := b.playedLobbies[author]; ok {
		return lobbies, true
	}
	lobbies, ok := b.playedLobbies[strings.ReplaceAll(author, "_", " ")]
	return lobbies, ok
}

func (b *Bot) reportPlayedLobbies(author string, lobbies []sheets.PlayedLobby) {
	urls := make([]string, 0, len(lobbies))
	for _, l := range lobbies {
		urls = append(urls, l.URL)
	}
	b.send(author, fmt.Sprintf(b.settings.PlayerPlayedLobbies, strings.Join(urls, " - ")))
}

// relayLobbyFull forwards Bancho's match-limit refusal to whoever asked
// last. With concurrent requesters the reply can reach the wrong player;
// the single slot is a known limitation.
func (b *Bot) relayLobbyFull() {
	if b.lastRequester == "" {
		b.logger.Warn("Bancho refused a match but no requester is pending")
		return
	}
	b.send(b.lastRequester, b.settings.LobbyFull)
}
