// internal/session/store.go
package session

import "sync"

// Store holds every active session, keyed by player. A channel index is kept
// alongside because Bancho channel events carry only the channel name.
// All event handling runs on one goroutine; the mutex exists for the shutdown
// path, which walks the store from the main goroutine.
type Store struct {
	mu        sync.Mutex
	byPlayer  map[string]*Session
	byChannel map[string]*Session
}

// NewStore initializes an empty Store.
func NewStore() *Store {
	return &Store{
		byPlayer:  make(map[string]*Session),
		byChannel: make(map[string]*Session),
	}
}

// Add registers a session under both its player and its channel.
// An existing session for the same player is overwritten; the policy layer
// prevents that from happening in practice.
func (st *Store) Add(s *Session) {
	st.mu.Lock()
	defer st.mu.Unlock()
	if old, ok := st.byPlayer[s.Player]; ok {
		delete(st.byChannel, old.Channel)
	}
	st.byPlayer[s.Player] = s
	st.byChannel[s.Channel] = s
}

// Get returns the active session for player, if any.
func (st *Store) Get(player string) (*Session, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	s, ok := st.byPlayer[player]
	return s, ok
}

// GetByChannel returns the active session bound to channel, if any.
func (st *Store) GetByChannel(channel string) (*Session, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	s, ok := st.byChannel[channel]
	return s, ok
}

// Remove drops the session for player from both indexes.
func (st *Store) Remove(player string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	if s, ok := st.byPlayer[player]; ok {
		delete(st.byChannel, s.Channel)
		delete(st.byPlayer, player)
	}
}

// Players returns a snapshot of the players with an active session.
// Used by the shutdown path so it can close sessions while handlers mutate.
func (st *Store) Players() []string {
	st.mu.Lock()
	defer st.mu.Unlock()
	players := make([]string, 0, len(st.byPlayer))
	for p := range st.byPlayer {
		players = append(players, p)
	}
	return players
}

// Len reports the number of active sessions.
func (st *Store) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.byPlayer)
}
