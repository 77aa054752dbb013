// internal/repository/postgres/counters.go
package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"marketplace-search/internal/common/logger"
	"marketplace-search/internal/models"
)

const countersQuery = `
SELECT listing_id, listing_type, kind, COUNT(*)
FROM listing_interactions
WHERE listing_type || ':' || listing_id = ANY($1::text[])
  AND occurred_at >= $2 AND occurred_at < $3
GROUP BY listing_id, listing_type, kind`

// CounterStore aggregates interaction events per listing.
type CounterStore struct {
	db     *sql.DB
	logger logger.Logger
}

func NewCounterStore(db *sql.DB, log logger.Logger) *CounterStore {
	return &CounterStore{
		db:     db,
		logger: log.WithFields(map[string]interface{}{"repository": "interaction-counters"}),
	}
}

// FetchCounters aggregates every key in a single grouped query. Every
// requested key is present in the result, with zero counts when it has no
// events in the window.
func (s *CounterStore) FetchCounters(ctx context.Context, keys []models.ListingKey, window models.CounterWindow) (map[models.ListingKey]models.InteractionCounts, error) {
	out := make(map[models.ListingKey]models.InteractionCounts, len(keys))
	if len(keys) == 0 {
		return out, nil
	}
	for _, k := range keys {
		out[k] = models.InteractionCounts{}
	}

	rows, err := s.db.QueryContext(ctx, countersQuery, pq.Array(keyStrings(keys)), window.Since, window.Until)
	if err != nil {
		return nil, fmt.Errorf("query interaction counters: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id, listingType, rawKind string
			count                    int
		)
		if err := rows.Scan(&id, &listingType, &rawKind, &count); err != nil {
			return nil, fmt.Errorf("scan interaction counters: %w", err)
		}

		kind, err := models.ParseInteractionKind(rawKind)
		if err != nil {
			s.logger.Warn("skipping unknown interaction kind", map[string]interface{}{
				"listingId": id,
				"kind":      rawKind,
			})
			continue
		}

		key := models.ListingKey{ID: id, Type: models.ListingType(listingType)}
		c := out[key]
		c.Add(kind, count)
		out[key] = c
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read interaction counters: %w", err)
	}
	return out, nil
}
