// internal/config/config.go
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config carries everything read from the environment at startup.
// Spreadsheet coordinates mirror the sheet layout: one spreadsheet holding
// the mappool, another holding the tryout stats tabs (lobbies, players, scores).
type Config struct {
	MappoolSpreadsheetID string
	MappoolRange         string

	StatsSpreadsheetID string
	LobbiesRange       string
	PlayersRange       string
	ScoresRange        string

	// TokenJSON is the full contents of a Google authorized-user token file.
	TokenJSON string

	IRCNick     string
	IRCPassword string
	IRCAddr     string

	LogLevel    string
	Environment string

	SettingsPath string

	// Tournament rule knobs. Exceeding MaxLeaves closes the session,
	// exceeding MaxAborts blocks further aborts, MaxPlays gates new lobbies.
	MaxLeaves int
	MaxAborts int
	MaxPlays  int

	ReadyWaitSeconds      int
	DisconnectWaitSeconds int

	// SendInterval is the minimum gap between outbound IRC messages.
	SendInterval time.Duration
}

// Load builds a Config from environment variables, applying defaults
// where the variable is unset.
func Load() Config {
	return Config{
		MappoolSpreadsheetID: os.Getenv("MAPPOOL_SPREADSHEET_ID"),
		MappoolRange:         os.Getenv("MAPPOOL_SPREADSHEET_RANGE"),

		StatsSpreadsheetID: os.Getenv("STATS_SPREADSHEET_ID"),
		LobbiesRange:       os.Getenv("STATS_SPREADSHEET_LOBBIES_RANGE"),
		PlayersRange:       os.Getenv("STATS_SPREADSHEET_PLAYERS_RANGE"),
		ScoresRange:        os.Getenv("STATS_SPREADSHEET_SCORES_RANGE"),

		TokenJSON: os.Getenv("TOKEN_JSON"),

		IRCNick:     os.Getenv("IRC_NICKNAME"),
		IRCPassword: os.Getenv("IRC_PASSWORD"),
		IRCAddr:     getEnv("IRC_ADDR", "irc.ppy.sh:6667"),

		LogLevel:    getEnv("LOG_LEVEL", "debug"),
		Environment: getEnv("ENVIRONMENT", "prod"),

		SettingsPath: getEnv("SETTINGS_PATH", "settings.json"),

		MaxLeaves: getEnvInt("MAX_ALLOWED_LEAVES", 1),
		MaxAborts: getEnvInt("MAX_ALLOWED_ABORTS", 1),
		MaxPlays:  getEnvInt("MAX_ALLOWED_PLAYS", 1),

		ReadyWaitSeconds:      getEnvInt("BEFORE_READY_WAIT_SECONDS", 120),
		DisconnectWaitSeconds: getEnvInt("DISCONNECT_WAIT_TIMEOUT", 300),

		SendInterval: time.Duration(getEnvInt("SEND_INTERVAL_MS", 1000)) * time.Millisecond,
	}
}

// Settings holds the tournament definition and every user-visible message,
// decoded from a JSON settings file so wording can change without a rebuild.
//
// Message fields that carry data are fmt format strings; the expected verbs
// are documented per field.
type Settings struct {
	TournamentName  string    `json:"tournamentName"`
	TournamentStart time.Time `json:"tournamentStart"`
	TournamentEnd   time.Time `json:"tournamentEnd"`

	// Greetings are sent to the lobby channel when the player first joins.
	Greetings []string `json:"greetings"`

	// LobbyFull is relayed when Bancho refuses to create another match.
	LobbyFull string `json:"lobbyFull"`

	NoAbortsLeft string `json:"noAbortsLeft"`

	// LobbyLeaveDetected expects (%d disconnects left, %d used, %d max).
	LobbyLeaveDetected string `json:"lobbyLeaveDetected"`

	// TournamentNotStartedYet expects (%s start time).
	TournamentNotStartedYet string `json:"tournamentNotStartedYet"`

	// TournamentEnded expects (%s end time).
	TournamentEnded string `json:"tournamentEnded"`

	// PlayerPlayedLobbies expects (%s " - "-joined lobby URL list).
	PlayerPlayedLobbies string `json:"playerPlayedLobbies"`

	AllowedPlayersOnly   string `json:"allowedPlayers"`
	PlayerAlreadyInLobby string `json:"playerAlreadyInLobby"`

	// TryAgainLater is sent when the spreadsheet store is unreachable.
	TryAgainLater string `json:"tryAgainLater"`
}

// LoadSettings reads and decodes the settings file at path.
func LoadSettings(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("failed to read settings file %s: %w", path, err)
	}
	var s Settings
	if err := json.Unmarshal(data, &s); err != nil {
		return Settings{}, fmt.Errorf("failed to decode settings file %s: %w", path, err)
	}
	return s, nil
}

// getEnv is a helper to read an environment variable or return a default value.
func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

// getEnvInt is a helper to parse an environment variable as integer, else a default value.
func getEnvInt(key string, def int) int {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}
