package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"sync"
	"time"

	"quiquiz-server/internal/domain"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// ThemeLoader fetches a theme's question bank and the catalogue from a
// backing store (e.g. Postgres).
type ThemeLoader interface {
	LoadTheme(ctx context.Context, themeID string) ([]domain.Question, error)
	Catalog(ctx context.Context) ([]domain.ThemeCategory, error)
}

// QuestionRepository caches theme banks in Redis as JSON and falls back to a
// loader on cache miss. Banks are stored as: SET theme:{themeID}:questions {json}
type QuestionRepository struct {
	client *redis.Client
	loader ThemeLoader
	ttl    time.Duration
	sf     singleflight.Group

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewQuestionRepository(client *redis.Client, loader ThemeLoader, ttl time.Duration) *QuestionRepository {
	return &QuestionRepository{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Draw concatenates the banks of the selected themes, tags each question with
// its source theme, shuffles and takes count. Unknown themes are skipped.
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

// GetTheme returns a theme's bank from Redis, loading and caching it on miss.
func (r *QuestionRepository) GetTheme(ctx context.Context, themeID string) ([]domain.Question, error) {
	key := r.themeKey(themeID)

	if raw, err := r.client.Get(ctx, key).Bytes(); err == nil {
		var questions []domain.Question
		if err := json.Unmarshal(raw, &questions); err == nil {
			return questions, nil
		}
	}

	result, err, _ := r.sf.Do(themeID, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if raw, err := r.client.Get(ctx, key).Bytes(); err == nil {
			var questions []domain.Question
			if err := json.Unmarshal(raw, &questions); err == nil {
				return questions, nil
			}
		}

		questions, err := r.loader.LoadTheme(ctx, themeID)
		if err != nil {
			return nil, err
		}

		if raw, err := json.Marshal(questions); err == nil {
			_ = r.client.Set(ctx, key, raw, r.ttlWithJitter()).Err()
		}
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

func (r *QuestionRepository) themeKey(themeID string) string {
	return "theme:" + themeID + ":questions"
}

func (r *QuestionRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	jitterMax := int64(r.ttl) / 10
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
