// internal/score/score.go
package score

import (
	"math"
	"sort"
)

// Unscored marks a score whose z-score has not been (or cannot be) computed.
const Unscored = -10

// Score is one recorded result.
type Score struct {
	Player    string
	BeatmapID string
	Value     int64
	Z         float64
}

// GroupByBeatmap splits scores by map, each group sorted by score descending.
func GroupByBeatmap(scores []Score) map[string][]Score {
	groups := make(map[string][]Score)
	for _, s := range scores {
		groups[s.BeatmapID] = append(groups[s.BeatmapID], s)
	}
	for _, group := range groups {
		sort.Slice(group, func(i, j int) bool {
			return group[i].Value > group[j].Value
		})
	}
	return groups
}

// Standardize computes z-scores for one map's scores against their mean and
// sample standard deviation. When allowed is non-empty, only scores from
// those players are considered. Fewer than two qualifying scores cannot be
// standardized and yield nil.
func Standardize(scores []Score, allowed []string) []Score {
	var qualifying []Score
	for _, s := range scores {
		if len(allowed) > 0 && !contains(allowed, s.Player) {
			continue
		}
		s.Z = Unscored
		qualifying = append(qualifying, s)
	}

	if len(qualifying) < 2 {
		return nil
	}

	var sum int64
	for _, s := range qualifying {
		sum += s.Value
	}
	mean := float64(sum) / float64(len(qualifying))

	var sqSum float64
	for _, s := range qualifying {
		d := float64(s.Value) - mean
		sqSum += d * d
	}
	stddev := math.Sqrt(sqSum / float64(len(qualifying)-1))
	if stddev == 0 {
		return nil
	}

	for i := range qualifying {
		qualifying[i].Z = (float64(qualifying[i].Value) - mean) / stddev
	}
	return qualifying
}

func contains(players []string, player string) bool {
	for _, p := range players {
		if p == player {
			return true
		}
	}
	return false
}
