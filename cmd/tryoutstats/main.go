// cmd/tryoutstats/main.go prints per-beatmap z-scores from the tryout
// scores sheet, optionally restricted to the registered players.
package main

import (
	"context"
	"fmt"
	"log"
	"sort"

	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"

	"github.com/osu-tryouts/tryoutsbot/internal/config"
	"github.com/osu-tryouts/tryoutsbot/internal/score"
	"github.com/osu-tryouts/tryoutsbot/internal/sheets"
)

func main() {
	cfg := config.Load()

	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)

	ctx := context.Background()
	store, err := sheets.Connect(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("failed to connect to sheets: %v", err)
	}

	rows, err := store.GetScores(ctx)
	if err != nil {
		log.Fatalf("failed to read scores: %v", err)
	}

	players, err := store.GetPlayers(ctx)
	if err != nil {
		log.Fatalf("failed to read players: %v", err)
	}

	scores := make([]score.Score, 0, len(rows))
	for _, r := range rows {
		scores = append(scores, score.Score{
			Player:    r.Player,
			BeatmapID: r.BeatmapID,
			Value:     r.Score,
		})
	}

	groups := score.GroupByBeatmap(scores)
	beatmaps := make([]string, 0, len(groups))
	for id := range groups {
		beatmaps = append(beatmaps, id)
	}
	sort.Strings(beatmaps)

	for _, id := range beatmaps {
		standardized := score.Standardize(groups[id], players)
		if standardized == nil {
			fmt.Printf("%s: not enough scores\n", id)
			continue
		}
		fmt.Printf("%s:\n", id)
		for _, s := range standardized {
			fmt.Printf("  %-20s %10d  z=%+.3f\n", s.Player, s.Value, s.Z)
		}
	}
}
