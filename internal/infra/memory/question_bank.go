package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"quiquiz-server/internal/domain"
	"golang.org/x/sync/singleflight"
)

// ThemeLoader fetches a theme's question bank and the theme catalogue from a
// backing store (static data, document DB).
type ThemeLoader interface {
	LoadTheme(ctx context.Context, themeID string) ([]domain.Question, error)
	Catalog(ctx context.Context) ([]domain.ThemeCategory, error)
}

// QuestionRepository caches theme banks with TTL to avoid repeated loads, and
// draws shuffled question batches from them.
type QuestionRepository struct {
	loader ThemeLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand

	mu    sync.Mutex
	cache map[string]cachedTheme
}

type cachedTheme struct {
	questions []domain.Question
	expiresAt time.Time
}

func NewQuestionRepository(loader ThemeLoader, ttl time.Duration) *QuestionRepository {
	return &QuestionRepository{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[string]cachedTheme),
	}
}

// Draw concatenates the banks of the selected themes, tags each question with
// its source theme, shuffles and takes count. Unknown themes are skipped; an
// empty result is an error so a game never starts without questions.
func (r *QuestionRepository) Draw(ctx context.Context, themes []string, count int) ([]domain.Question, error) {
	var pool []domain.Question
	for _, theme := range themes {
		questions, err := r.GetTheme(ctx, theme)
		if err != nil {
			continue
		}
		for _, q := range questions {
			q.Theme = theme
			pool = append(pool, q)
		}
	}
	if len(pool) == 0 {
		return nil, domain.ErrNoQuestions
	}

	r.mu.Lock()
	r.rnd.Shuffle(len(pool), func(i, j int) {
		pool[i], pool[j] = pool[j], pool[i]
	})
	r.mu.Unlock()

	if count > 0 && count < len(pool) {
		pool = pool[:count]
	}
	return pool, nil
}

// Questions returns a shuffled batch from a single theme, for the solo flow.
func (r *QuestionRepository) Questions(ctx context.Context, themeID string, count int) ([]domain.Question, error) {
	questions, err := r.GetTheme(ctx, themeID)
	if err != nil {
		return nil, err
	}
	return r.Draw(ctx, []string{themeID}, min(count, len(questions)))
}

// GetTheme returns the cached bank for a theme, loading it on miss.
func (r *QuestionRepository) GetTheme(ctx context.Context, themeID string) ([]domain.Question, error) {
	now := r.clock()

	r.mu.Lock()
	if entry, ok := r.cache[themeID]; ok && entry.expiresAt.After(now) {
		r.mu.Unlock()
		return entry.questions, nil
	}
	r.mu.Unlock()

	result, err, _ := r.sf.Do(themeID, func() (interface{}, error) {
		now := r.clock()
		r.mu.Lock()
		if entry, ok := r.cache[themeID]; ok && entry.expiresAt.After(now) {
			r.mu.Unlock()
			return entry.questions, nil
		}
		r.mu.Unlock()

		questions, err := r.loader.LoadTheme(ctx, themeID)
		if err != nil {
			return nil, err
		}

		r.mu.Lock()
		r.cache[themeID] = cachedTheme{
			questions: questions,
			expiresAt: now.Add(r.ttlWithJitter()),
		}
		r.mu.Unlock()
		return questions, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Question), nil
}

// Catalog passes the catalogue listing through to the loader.
func (r *QuestionRepository) Catalog(ctx context.Context) ([]domain.ThemeCategory, error) {
	return r.loader.Catalog(ctx)
}

func (r *QuestionRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}

// ThemeSet is one static question bank.
type ThemeSet struct {
	ID        string
	Name      string
	IsMap     bool
	Questions []domain.Question
}

// Category groups static banks for the catalogue.
type Category struct {
	Name   string
	Icon   string
	Themes []ThemeSet
}

// StaticBank is a ThemeLoader backed by in-memory data (useful for tests and
// for running without a database).
type StaticBank struct {
	categories []Category
	themes     map[string]ThemeSet
}

func NewStaticBank(categories []Category) *StaticBank {
	themes := make(map[string]ThemeSet)
	for _, c := range categories {
		for _, t := range c.Themes {
			themes[t.ID] = t
		}
	}
	return &StaticBank{categories: categories, themes: themes}
}

func (b *StaticBank) LoadTheme(_ context.Context, themeID string) ([]domain.Question, error) {
	theme, ok := b.themes[themeID]
	if !ok {
		return nil, domain.ErrThemeNotFound
	}
	return theme.Questions, nil
}

func (b *StaticBank) Catalog(_ context.Context) ([]domain.ThemeCategory, error) {
	catalog := make([]domain.ThemeCategory, 0, len(b.categories))
	for _, c := range b.categories {
		themes := make([]domain.Theme, 0, len(c.Themes))
		for _, t := range c.Themes {
			themes = append(themes, domain.Theme{
				ID:    t.ID,
				Name:  t.Name,
				Count: len(t.Questions),
				IsMap: t.IsMap,
			})
		}
		catalog = append(catalog, domain.ThemeCategory{
			Category: c.Name,
			Icon:     c.Icon,
			Themes:   themes,
		})
	}
	return catalog, nil
}
