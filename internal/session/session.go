// internal/session/session.go
package session

import "fmt"

// State tracks where a tryout lobby is in its lifecycle.
type State int

const (
	// StateCreated: Bancho confirmed the match container, not yet configured.
	StateCreated State = iota
	// StateInitialized: slots, first map and invite applied; waiting for the player to join.
	StateInitialized
	// StateWaiting: readiness timer running (or about to run).
	StateWaiting
	// StatePlaying: match in progress.
	StatePlaying
	// StateDisconnected: player left mid-session, extended timer running.
	StateDisconnected
	// StateEnding: rotation exhausted or forced end; session is being closed.
	StateEnding
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateInitialized:
		return "initialized"
	case StateWaiting:
		return "waiting"
	case StatePlaying:
		return "playing"
	case StateDisconnected:
		return "disconnected"
	case StateEnding:
		return "ending"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Session is one player's tryout lobby, from match creation to closure.
// The channel is assigned once by Bancho and never changes; MapIndex points
// at the next mappool entry and only ever moves forward.
type Session struct {
	Player  string
	Channel string
	URL     string

	State    State
	MapIndex int

	LeaveCount int
	AbortCount int
}

// New builds a fresh session for player in the given Bancho match channel.
func New(player, channel, url string) *Session {
	return &Session{
		Player:  player,
		Channel: channel,
		URL:     url,
		State:   StateCreated,
	}
}

// Exhausted reports whether the rotation has run through a pool of the
// given length.
func (s *Session) Exhausted(poolLen int) bool {
	return s.MapIndex >= poolLen
}
