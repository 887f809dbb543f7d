package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"quiquiz-server/internal/domain"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// ThemeLoader loads theme JSONB from Postgres.
type ThemeLoader struct {
	pool *pgxpool.Pool
}

func NewThemeLoader(pool *pgxpool.Pool) *ThemeLoader {
	return &ThemeLoader{pool: pool}
}

// themeRecord is the JSONB document stored per theme.
type themeRecord struct {
	Name      string            `json:"name"`
	IsMap     bool              `json:"isMap,omitempty"`
	Questions []domain.Question `json:"questions"`
}

func (l *ThemeLoader) LoadTheme(ctx context.Context, themeID string) ([]domain.Question, error) {
	var raw []byte
	err := l.pool.QueryRow(ctx, `SELECT data FROM themes WHERE id=$1`, themeID).Scan(&raw)
	if err == pgx.ErrNoRows {
		return nil, domain.ErrThemeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load theme: %w", err)
	}
	var record themeRecord
	if err := json.Unmarshal(raw, &record); err != nil {
		return nil, fmt.Errorf("unmarshal theme: %w", err)
	}
	return record.Questions, nil
}

func (l *ThemeLoader) Catalog(ctx context.Context) ([]domain.ThemeCategory, error) {
	rows, err := l.pool.Query(ctx, `SELECT id, category, icon, data FROM themes ORDER BY category, id`)
	if err != nil {
		return nil, fmt.Errorf("list themes: %w", err)
	}
	defer rows.Close()

	var catalog []domain.ThemeCategory
	index := make(map[string]int)
	for rows.Next() {
		var id, category, icon string
		var raw []byte
		if err := rows.Scan(&id, &category, &icon, &raw); err != nil {
			return nil, fmt.Errorf("scan theme: %w", err)
		}
		var record themeRecord
		if err := json.Unmarshal(raw, &record); err != nil {
			return nil, fmt.Errorf("unmarshal theme %s: %w", id, err)
		}

		i, ok := index[category]
		if !ok {
			i = len(catalog)
			index[category] = i
			catalog = append(catalog, domain.ThemeCategory{Category: category, Icon: icon})
		}
		catalog[i].Themes = append(catalog[i].Themes, domain.Theme{
			ID:    id,
			Name:  record.Name,
			Count: len(record.Questions),
			IsMap: record.IsMap,
		})
	}
	return catalog, rows.Err()
}
