package redis

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"

	"quiquiz-server/internal/domain"
)

type countingLoader struct {
	mu    sync.Mutex
	calls int
	banks map[string][]domain.Question
}

func (l *countingLoader) LoadTheme(_ context.Context, themeID string) ([]domain.Question, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls++
	bank, ok := l.banks[themeID]
	if !ok {
		return nil, domain.ErrThemeNotFound
	}
	return bank, nil
}

func (l *countingLoader) Catalog(_ context.Context) ([]domain.ThemeCategory, error) {
	return []domain.ThemeCategory{{Category: "Test"}}, nil
}

func (l *countingLoader) callCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.calls
}

func newTestClient(t *testing.T) *goredis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	return goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
}

func TestGetThemeCachesInRedis(t *testing.T) {
	loader := &countingLoader{banks: map[string][]domain.Question{
		"capitals": {
			{Prompt: "Capitale de la France ?", Answer: "Paris"},
			{Prompt: "Capitale de l'Italie ?", Answer: "Rome"},
		},
	}}
	repo := NewQuestionRepository(newTestClient(t), loader, time.Minute)
	ctx := context.Background()

	first, err := repo.GetTheme(ctx, "capitals")
	if err != nil {
		t.Fatalf("GetTheme: %v", err)
	}
	second, err := repo.GetTheme(ctx, "capitals")
	if err != nil {
		t.Fatalf("GetTheme (cached): %v", err)
	}
	if len(first) != 2 || len(second) != 2 {
		t.Fatalf("expected 2 questions on both reads, got %d and %d", len(first), len(second))
	}
	if got := loader.callCount(); got != 1 {
		t.Fatalf("expected a single loader call, got %d", got)
	}
}

func TestGetThemeUnknownTheme(t *testing.T) {
	loader := &countingLoader{banks: map[string][]domain.Question{}}
	repo := NewQuestionRepository(newTestClient(t), loader, time.Minute)

	if _, err := repo.GetTheme(context.Background(), "nope"); err != domain.ErrThemeNotFound {
		t.Fatalf("expected ErrThemeNotFound, got %v", err)
	}
}

func TestDrawFromCachedThemes(t *testing.T) {
	loader := &countingLoader{banks: map[string][]domain.Question{
		"capitals": {
			{Prompt: "Capitale de la France ?", Answer: "Paris"},
			{Prompt: "Capitale de l'Italie ?", Answer: "Rome"},
			{Prompt: "Capitale de l'Espagne ?", Answer: "Madrid"},
		},
	}}
	repo := NewQuestionRepository(newTestClient(t), loader, time.Minute)

	questions, err := repo.Draw(context.Background(), []string{"capitals", "missing"}, 2)
	if err != nil {
		t.Fatalf("Draw: %v", err)
	}
	if len(questions) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(questions))
	}
	for _, q := range questions {
		if q.Theme != "capitals" {
			t.Fatalf("expected theme tag 'capitals', got %q", q.Theme)
		}
	}

	if _, err := repo.Draw(context.Background(), []string{"missing"}, 2); err != domain.ErrNoQuestions {
		t.Fatalf("expected ErrNoQuestions, got %v", err)
	}
}
