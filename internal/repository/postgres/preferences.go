// internal/repository/postgres/preferences.go
package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"marketplace-search/internal/models"
)

const defaultRecentSearches = 20

const categoryViewsQuery = `
SELECT category, view_count FROM user_category_views WHERE user_id = $1`

const recentSearchesQuery = `
SELECT query FROM user_search_history
WHERE user_id = $1
ORDER BY searched_at DESC
LIMIT $2`

type PreferenceStore struct {
	db             *sql.DB
	recentSearches int
}

func NewPreferenceStore(db *sql.DB, recentSearches int) *PreferenceStore {
	if recentSearches <= 0 {
		recentSearches = defaultRecentSearches
	}
	return &PreferenceStore{db: db, recentSearches: recentSearches}
}

// FetchPreferences returns nil for users with no recorded history.
func (s *PreferenceStore) FetchPreferences(ctx context.Context, userID string) (*models.UserPreferences, error) {
	counts := map[string]int{}
	rows, err := s.db.QueryContext(ctx, categoryViewsQuery, userID)
	if err != nil {
		return nil, fmt.Errorf("query category views: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			category string
			views    int
		)
		if err := rows.Scan(&category, &views); err != nil {
			return nil, fmt.Errorf("scan category views: %w", err)
		}
		counts[category] = views
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read category views: %w", err)
	}

	searchRows, err := s.db.QueryContext(ctx, recentSearchesQuery, userID, s.recentSearches)
	if err != nil {
		return nil, fmt.Errorf("query recent searches: %w", err)
	}
	defer searchRows.Close()

	var searches []string
	for searchRows.Next() {
		var q string
		if err := searchRows.Scan(&q); err != nil {
			return nil, fmt.Errorf("scan recent searches: %w", err)
		}
		searches = append(searches, q)
	}
	if err := searchRows.Err(); err != nil {
		return nil, fmt.Errorf("read recent searches: %w", err)
	}

	if len(counts) == 0 && len(searches) == 0 {
		return nil, nil
	}
	return &models.UserPreferences{UserID: userID, CategoryCounts: counts, RecentSearches: searches}, nil
}
