package game

import (
	"testing"

	"quiquiz-server/internal/domain"
)

func TestPointsSpeedBonus(t *testing.T) {
	// 2s into a 10s question leaves 80% of the bonus: 100 + 40.
	if got := Points(true, 2000, 10000); got != 140 {
		t.Fatalf("expected 140 points, got %d", got)
	}
}

func TestPointsBounds(t *testing.T) {
	if got := Points(true, 0, 10000); got != 150 {
		t.Fatalf("instant answer should score 150, got %d", got)
	}
	if got := Points(true, 10000, 10000); got != 100 {
		t.Fatalf("deadline answer should score 100, got %d", got)
	}
	// Response times past the limit are clamped, never negative bonus.
	if got := Points(true, 25000, 10000); got != 100 {
		t.Fatalf("late answer should clamp to 100, got %d", got)
	}
	if got := Points(false, 0, 10000); got != 0 {
		t.Fatalf("incorrect answer should score 0, got %d", got)
	}
}

func TestRankingsOrderAndTies(t *testing.T) {
	players := []*domain.Player{
		{ID: "p1", Name: "Anna", Score: 30},
		{ID: "p2", Name: "Ben", Score: 80},
		{ID: "p3", Name: "Chloe", Score: 80},
		{ID: "p4", Name: "Dan", Score: 10},
	}

	entries := Rankings(players)

	wantOrder := []string{"p2", "p3", "p1", "p4"}
	for i, want := range wantOrder {
		if entries[i].PlayerID != want {
			t.Fatalf("position %d: expected %s, got %s", i, want, entries[i].PlayerID)
		}
		if entries[i].Rank != i+1 {
			t.Fatalf("position %d: expected rank %d, got %d", i, i+1, entries[i].Rank)
		}
	}
	// Tied players keep distinct consecutive ranks.
	if entries[0].Score != 80 || entries[1].Score != 80 {
		t.Fatalf("expected the two 80s first, got %+v", entries[:2])
	}
}

func TestRoomCodeFormat(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		code := newRoomCode()
		if len(code) != codeLength {
			t.Fatalf("expected %d characters, got %q", codeLength, code)
		}
		for _, ch := range code {
			switch ch {
			case '0', 'O', '1', 'I':
				t.Fatalf("ambiguous character %q in code %q", ch, code)
			}
		}
		seen[code] = struct{}{}
	}
	if len(seen) < 90 {
		t.Fatalf("expected mostly unique codes, got %d unique of 100", len(seen))
	}
}
