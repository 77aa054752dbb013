// internal/repository/postgres/history.go
package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"marketplace-search/internal/models"
)

const latestRanksQuery = `
SELECT DISTINCT ON (query) query, rank
FROM listing_rank_history
WHERE entity_id = $1 AND entity_type = $2 AND query = ANY($3::text[])
ORDER BY query, observed_at DESC`

const insertRankQuery = `
INSERT INTO listing_rank_history (id, query, entity_id, entity_type, rank, observed_at)
VALUES ($1, $2, $3, $4, $5, $6)`

// RankHistory is the append-only store of rank observations.
type RankHistory struct {
	db *sql.DB
}

func NewRankHistory(db *sql.DB) *RankHistory {
	return &RankHistory{db: db}
}

// LatestRanks returns the most recent rank per query. Queries never tracked
// before are absent from the map.
func (h *RankHistory) LatestRanks(ctx context.Context, key models.ListingKey, queries []string) (map[string]int, error) {
	out := make(map[string]int, len(queries))
	if len(queries) == 0 {
		return out, nil
	}

	rows, err := h.db.QueryContext(ctx, latestRanksQuery, key.ID, string(key.Type), pq.Array(queries))
	if err != nil {
		return nil, fmt.Errorf("query latest ranks: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			query string
			rank  int
		)
		if err := rows.Scan(&query, &rank); err != nil {
			return nil, fmt.Errorf("scan latest ranks: %w", err)
		}
		out[query] = rank
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read latest ranks: %w", err)
	}
	return out, nil
}

// AppendRanks inserts all records in one transaction.
func (h *RankHistory) AppendRanks(ctx context.Context, records []models.RankRecord) (err error) {
	if len(records) == 0 {
		return nil
	}

	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin rank history tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	stmt, err := tx.PrepareContext(ctx, insertRankQuery)
	if err != nil {
		return fmt.Errorf("prepare rank insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range records {
		id := r.ID
		if id == "" {
			id = uuid.NewString()
		}
		if _, err = stmt.ExecContext(ctx, id, r.Query, r.EntityID, string(r.EntityType), r.Rank, r.ObservedAt); err != nil {
			return fmt.Errorf("insert rank record for %q: %w", r.Query, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit rank history: %w", err)
	}
	return nil
}
