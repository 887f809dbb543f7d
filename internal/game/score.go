package game

import (
	"math"
	"sort"

	"quiquiz-server/internal/domain"
)

const (
	basePoints = 100
	maxBonus   = 50
)

// Points converts correctness and response latency into a point value in
// [0, 150]. A correct answer earns 100 plus a speed bonus that decays
// linearly to zero as the response time approaches the limit.
func Points(correct bool, responseTimeMs, timeLimitMs int64) int {
	if !correct {
		return 0
	}
	if timeLimitMs <= 0 {
		return basePoints
	}
	ratio := float64(responseTimeMs) / float64(timeLimitMs)
	if ratio > 1 {
		ratio = 1
	}
	if ratio < 0 {
		ratio = 0
	}
	return basePoints + int(math.Round(maxBonus*(1-ratio)))
}

// Rankings orders players by score descending and assigns 1-based ranks.
// Tied scores keep distinct consecutive ranks; the stable sort preserves the
// incoming (join) order among ties rather than inventing a tie-break.
func Rankings(players []*domain.Player) []domain.RankingEntry {
	sorted := make([]*domain.Player, len(players))
	copy(sorted, players)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Score > sorted[j].Score
	})

	entries := make([]domain.RankingEntry, len(sorted))
	for i, p := range sorted {
		entries[i] = domain.RankingEntry{
			PlayerID:   p.ID,
			PlayerName: p.Name,
			Score:      p.Score,
			Rank:       i + 1,
		}
	}
	return entries
}
