package memory

import (
	"context"
	"strconv"
	"sync"
	"testing"
	"time"

	"quiquiz-server/internal/domain"
)

type countingLoader struct {
	mu    sync.Mutex
	calls map[string]int
	banks map[string][]domain.Question
}

func newCountingLoader(banks map[string][]domain.Question) *countingLoader {
	return &countingLoader{calls: make(map[string]int), banks: banks}
}

func (l *countingLoader) LoadTheme(_ context.Context, themeID string) ([]domain.Question, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls[themeID]++
	bank, ok := l.banks[themeID]
	if !ok {
		return nil, domain.ErrThemeNotFound
	}
	return bank, nil
}

func (l *countingLoader) Catalog(_ context.Context) ([]domain.ThemeCategory, error) {
	return []domain.ThemeCategory{{Category: "Test"}}, nil
}

func (l *countingLoader) callCount(themeID string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.calls[themeID]
}

func questionBank(prefix string, n int) []domain.Question {
	bank := make([]domain.Question, n)
	for i := range bank {
		bank[i] = domain.Question{
			Prompt: prefix + " question " + strconv.Itoa(i),
			Answer: strconv.Itoa(i),
		}
	}
	return bank
}

func TestGetThemeCachesBank(t *testing.T) {
	loader := newCountingLoader(map[string][]domain.Question{
		"capitals": questionBank("capitals", 5),
	})
	repo := NewQuestionRepository(loader, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		questions, err := repo.GetTheme(ctx, "capitals")
		if err != nil {
			t.Fatalf("GetTheme: %v", err)
		}
		if len(questions) != 5 {
			t.Fatalf("expected 5 questions, got %d", len(questions))
		}
	}
	if got := loader.callCount("capitals"); got != 1 {
		t.Fatalf("expected a single load, got %d", got)
	}
}

func TestGetThemeReloadsAfterTTL(t *testing.T) {
	loader := newCountingLoader(map[string][]domain.Question{
		"capitals": questionBank("capitals", 2),
	})
	repo := NewQuestionRepository(loader, time.Minute)
	now := time.Now()
	repo.clock = func() time.Time { return now }
	ctx := context.Background()

	if _, err := repo.GetTheme(ctx, "capitals"); err != nil {
		t.Fatalf("GetTheme: %v", err)
	}
	// jitter adds at most 10%, so 2x TTL is always past expiry
	now = now.Add(2 * time.Minute)
	if _, err := repo.GetTheme(ctx, "capitals"); err != nil {
		t.Fatalf("GetTheme after expiry: %v", err)
	}
	if got := loader.callCount("capitals"); got != 2 {
		t.Fatalf("expected reload after TTL, got %d loads", got)
	}
}

func TestDrawMixesThemesAndTruncates(t *testing.T) {
	loader := newCountingLoader(map[string][]domain.Question{
		"capitals":    questionBank("capitals", 4),
		"departments": questionBank("departments", 4),
	})
	repo := NewQuestionRepository(loader, time.Minute)

	questions, err := repo.Draw(context.Background(), []string{"capitals", "departments"}, 5)
	if err != nil {
		t.Fatalf("Draw: %v", err)
	}
	if len(questions) != 5 {
		t.Fatalf("expected 5 questions, got %d", len(questions))
	}
	themes := make(map[string]bool)
	for _, q := range questions {
		themes[q.Theme] = true
	}
	if len(themes) == 0 {
		t.Fatalf("expected questions tagged with their theme")
	}
}

func TestDrawSkipsUnknownThemes(t *testing.T) {
	loader := newCountingLoader(map[string][]domain.Question{
		"capitals": questionBank("capitals", 3),
	})
	repo := NewQuestionRepository(loader, time.Minute)

	questions, err := repo.Draw(context.Background(), []string{"nope", "capitals"}, 10)
	if err != nil {
		t.Fatalf("Draw: %v", err)
	}
	if len(questions) != 3 {
		t.Fatalf("expected the known theme's 3 questions, got %d", len(questions))
	}

	if _, err := repo.Draw(context.Background(), []string{"nope"}, 10); err != domain.ErrNoQuestions {
		t.Fatalf("expected ErrNoQuestions, got %v", err)
	}
}

func TestStaticBankCatalog(t *testing.T) {
	bank := NewStaticBank([]Category{
		{
			Name: "Géographie",
			Icon: "🌍",
			Themes: []ThemeSet{
				{ID: "capitals", Name: "Capitales", Questions: questionBank("capitals", 2)},
				{ID: "departments-map", Name: "Départements (carte)", IsMap: true, Questions: questionBank("map", 1)},
			},
		},
	})

	catalog, err := bank.Catalog(context.Background())
	if err != nil {
		t.Fatalf("Catalog: %v", err)
	}
	if len(catalog) != 1 || len(catalog[0].Themes) != 2 {
		t.Fatalf("unexpected catalogue shape: %+v", catalog)
	}
	if catalog[0].Themes[0].Count != 2 {
		t.Fatalf("expected question count 2, got %d", catalog[0].Themes[0].Count)
	}
	if !catalog[0].Themes[1].IsMap {
		t.Fatalf("expected map flag to carry through")
	}

	if _, err := bank.LoadTheme(context.Background(), "missing"); err != domain.ErrThemeNotFound {
		t.Fatalf("expected ErrThemeNotFound, got %v", err)
	}
}
