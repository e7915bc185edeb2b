// internal/sheets/sheets.go
package sheets

import (
	"context"
	"fmt"
	"strconv"

	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	gsheets "google.golang.org/api/sheets/v4"

	"github.com/osu-tryouts/tryoutsbot/internal/beatmap"
	"github.com/osu-tryouts/tryoutsbot/internal/config"
)

// PlayedLobby is one row of the tryout lobbies sheet: a lobby a player has
// already been through.
type PlayedLobby struct {
	URL string
}

// ScoreRow is one row of the tryout scores sheet.
type ScoreRow struct {
	Player    string
	BeatmapID string
	Score     int64
}

// Store wraps the Google Sheets API for every sheet this bot touches:
// the mappool definition, played-lobby history, registered players, and
// per-map scores. All persistence the bot does goes through here.
type Store struct {
	svc    *gsheets.Service
	cfg    config.Config
	logger *logrus.Logger
}

// Connect builds a Sheets client from the authorized-user token JSON in cfg.
func Connect(ctx context.Context, cfg config.Config, logger *logrus.Logger) (*Store, error) {
	creds, err := google.CredentialsFromJSON(ctx, []byte(cfg.TokenJSON), gsheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("failed to parse sheets credentials: %w", err)
	}
	svc, err := gsheets.NewService(ctx, option.WithCredentials(creds))
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}
	return &Store{svc: svc, cfg: cfg, logger: logger}, nil
}

// GetMappool reads the mappool sheet. The mod lives in column F and the
// beatmap ID in the last column of each row; shorter rows are skipped.
func (s *Store) GetMappool(ctx context.Context) (beatmap.Mappool, error) {
	s.logger.Info("Getting the mappool from sheets")
	resp, err := s.svc.Spreadsheets.Values.
		Get(s.cfg.MappoolSpreadsheetID, s.cfg.MappoolRange).
		Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to read mappool sheet: %w", err)
	}

	var pool beatmap.Mappool
	for _, row := range resp.Values {
		if len(row) < 6 {
			continue
		}
		pool = append(pool, beatmap.Beatmap{
			ID:  fmt.Sprint(row[len(row)-1]),
			Mod: fmt.Sprint(row[5]),
		})
	}
	s.logger.Infof("Collected the mappool: %v", pool)
	return pool, nil
}

// GetPlayedLobbies reads the lobbies sheet into a player -> lobbies mapping.
func (s *Store) GetPlayedLobbies(ctx context.Context) (map[string][]PlayedLobby, error) {
	s.logger.Info("Getting the tryout lobbies from sheets")
	resp, err := s.svc.Spreadsheets.Values.
		Get(s.cfg.StatsSpreadsheetID, s.cfg.LobbiesRange).
		Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to read lobbies sheet: %w", err)
	}

	lobbies := make(map[string][]PlayedLobby)
	for _, row := range resp.Values {
		if len(row) < 2 {
			continue
		}
		player := fmt.Sprint(row[0])
		lobbies[player] = append(lobbies[player], PlayedLobby{URL: fmt.Sprint(row[1])})
	}
	return lobbies, nil
}

// AppendLobby records that player was given the lobby at url.
func (s *Store) AppendLobby(ctx context.Context, player, url string) error {
	return s.appendRow(ctx, s.cfg.LobbiesRange, []interface{}{player, url})
}

// GetPlayers reads the registered player names from the players sheet.
// An empty result means the tournament has no allow-list.
func (s *Store) GetPlayers(ctx context.Context) ([]string, error) {
	resp, err := s.svc.Spreadsheets.Values.
		Get(s.cfg.StatsSpreadsheetID, s.cfg.PlayersRange).
		Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to read players sheet: %w", err)
	}

	var players []string
	for _, row := range resp.Values {
		if len(row) < 1 {
			continue
		}
		players = append(players, fmt.Sprint(row[len(row)-1]))
	}
	return players, nil
}

// AddPlayer appends a (player id, player name) row to the players sheet,
// filled in from Bancho !stats replies.
func (s *Store) AddPlayer(ctx context.Context, playerID, playerName string) error {
	return s.appendRow(ctx, s.cfg.PlayersRange, []interface{}{playerID, playerName})
}

// AppendScore records one result row (player, beatmap, score).
func (s *Store) AppendScore(ctx context.Context, player string, score int64, beatmapID string) error {
	return s.appendRow(ctx, s.cfg.ScoresRange, []interface{}{player, beatmapID, score})
}

// GetScores reads every score row. Rows with a non-numeric score cell are
// skipped.
func (s *Store) GetScores(ctx context.Context) ([]ScoreRow, error) {
	resp, err := s.svc.Spreadsheets.Values.
		Get(s.cfg.StatsSpreadsheetID, s.cfg.ScoresRange).
		Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to read scores sheet: %w", err)
	}

	var rows []ScoreRow
	for _, row := range resp.Values {
		if len(row) < 3 {
			continue
		}
		score, err := strconv.ParseInt(fmt.Sprint(row[2]), 10, 64)
		if err != nil {
			continue
		}
		rows = append(rows, ScoreRow{
			Player:    fmt.Sprint(row[0]),
			BeatmapID: fmt.Sprint(row[1]),
			Score:     score,
		})
	}
	return rows, nil
}

func (s *Store) appendRow(ctx context.Context, readRange string, row []interface{}) error {
	s.logger.Infof("Appending %v to range %s", row, readRange)
	_, err := s.svc.Spreadsheets.Values.
		Append(s.cfg.StatsSpreadsheetID, readRange, &gsheets.ValueRange{
			Values: [][]interface{}{row},
		}).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to append to range %s: %w", readRange, err)
	}
	return nil
}
