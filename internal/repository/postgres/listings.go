// internal/repository/postgres/listings.go

// Package postgres implements the listing, counter, rank history and
// preference collaborators on the marketplace database.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/lib/pq"

	"marketplace-search/internal/models"
)

const defaultPageSize = 1000

// listingColumns is the projection shared by the three listing tables.
const listingColumns = `title, description, category, brand, tags, colors, price,
	image_count, created_at, view_count, favorite_count, is_boosted, boosted_until, status,
	latitude, longitude, audience, segment, label_uz`

// unifiedListings exposes products, store products and services as one
// relation with a listing_type discriminator.
var unifiedListings = fmt.Sprintf(`(
	SELECT id, 'product' AS listing_type, NULL::text AS store_id, %[1]s FROM products
	UNION ALL
	SELECT id, 'store_product' AS listing_type, store_id, %[1]s FROM store_products
	UNION ALL
	SELECT id, 'service' AS listing_type, NULL::text AS store_id, %[1]s FROM services
) AS listings`, listingColumns)

var selectListings = "SELECT id, listing_type, store_id, " + listingColumns + " FROM " + unifiedListings

// poolQuery reads one page of the pool. Pages are keyed on (listing_type,
// id) so consecutive pages never overlap or skip rows.
var poolQuery = selectListings + `
WHERE status = 'active'
  AND ($1 = '' OR lower(btrim(category)) = lower(btrim($1)))
  AND (cardinality($2::text[]) = 0 OR listing_type = ANY($2::text[]))
  AND ($3::float8 IS NULL OR price >= $3)
  AND ($4::float8 IS NULL OR price <= $4)
  AND ($5 = '' OR (listing_type, id::text) > ($5::text, $6::text))
ORDER BY listing_type, id::text
LIMIT $7`

var byKeysQuery = selectListings + `
WHERE listing_type || ':' || id = ANY($1::text[])`

// ListingStore reads listing projections from the marketplace tables.
type ListingStore struct {
	db       *sql.DB
	pageSize int
}

// NewListingStore reads the pool in pages of pageSize rows.
func NewListingStore(db *sql.DB, pageSize int) *ListingStore {
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	return &ListingStore{db: db, pageSize: pageSize}
}

// FetchPool returns every active listing matching filter, ordered by type
// and id. Terms are ignored: textual matching happens in the scoring core.
// Category is compared case- and whitespace-insensitively.
func (s *ListingStore) FetchPool(ctx context.Context, filter models.PoolFilter) ([]*models.Listing, error) {
	types := make([]string, len(filter.ListingTypes))
	for i, t := range filter.ListingTypes {
		types[i] = string(t)
	}

	var (
		pool               []*models.Listing
		afterType, afterID string
	)
	for {
		page, err := s.fetchPage(ctx, filter, types, afterType, afterID)
		if err != nil {
			return nil, err
		}
		pool = append(pool, page...)
		if len(page) < s.pageSize {
			break
		}
		last := page[len(page)-1]
		afterType, afterID = string(last.Type), last.ID
	}
	return models.ApplyOrigin(pool, filter), nil
}

func (s *ListingStore) fetchPage(ctx context.Context, filter models.PoolFilter, types []string, afterType, afterID string) ([]*models.Listing, error) {
	rows, err := s.db.QueryContext(ctx, poolQuery,
		filter.Category,
		pq.Array(types),
		nullFloat(filter.PriceMin),
		nullFloat(filter.PriceMax),
		afterType,
		afterID,
		s.pageSize,
	)
	if err != nil {
		return nil, fmt.Errorf("query listing pool: %w", err)
	}
	defer rows.Close()

	page, err := scanListings(rows)
	if err != nil {
		return nil, fmt.Errorf("scan listing pool: %w", err)
	}
	return page, nil
}

// FetchListings looks listings up by key in one round trip.
func (s *ListingStore) FetchListings(ctx context.Context, keys []models.ListingKey) ([]*models.Listing, error) {
	if len(keys) == 0 {
		return nil, nil
	}

	rows, err := s.db.QueryContext(ctx, byKeysQuery, pq.Array(keyStrings(keys)))
	if err != nil {
		return nil, fmt.Errorf("query listings by key: %w", err)
	}
	defer rows.Close()

	listings, err := scanListings(rows)
	if err != nil {
		return nil, fmt.Errorf("scan listings by key: %w", err)
	}
	return listings, nil
}

func scanListings(rows *sql.Rows) ([]*models.Listing, error) {
	var out []*models.Listing
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func scanListing(rows *sql.Rows) (*models.Listing, error) {
	var (
		l                        models.Listing
		listingType, status      string
		storeID, brand           sql.NullString
		audience, segment, label sql.NullString
		tags                     []byte
		colors                   []string
		price, lat, lon          sql.NullFloat64
		boostedUntil             sql.NullTime
	)

	err := rows.Scan(
		&l.ID, &listingType, &storeID,
		&l.Title, &l.Description, &l.Category, &brand, &tags, pq.Array(&colors), &price,
		&l.ImageCount, &l.CreatedAt, &l.ViewCount, &l.FavoriteCount, &l.IsBoosted, &boostedUntil, &status,
		&lat, &lon, &audience, &segment, &label,
	)
	if err != nil {
		return nil, err
	}

	lt, err := models.ParseListingType(listingType)
	if err != nil {
		return nil, err
	}
	l.Type = lt
	l.StoreID = storeID.String
	l.Brand = brand.String
	l.Colors = colors
	l.Status = models.Status(status)

	if len(tags) > 0 {
		if err := json.Unmarshal(tags, &l.Tags); err != nil {
			return nil, fmt.Errorf("decode tags of %s: %w", l.ID, err)
		}
	}
	if price.Valid {
		p := price.Float64
		l.Price = &p
	}
	if boostedUntil.Valid {
		t := boostedUntil.Time
		l.BoostedUntil = &t
	}
	if lat.Valid && lon.Valid {
		l.Location = &models.GeoPoint{Lat: lat.Float64, Lon: lon.Float64}
	}
	if audience.Valid || segment.Valid || label.Valid {
		l.Taxonomy = &models.Taxonomy{Audience: audience.String, Segment: segment.String, LabelUz: label.String}
	}
	return &l, nil
}

func keyStrings(keys []models.ListingKey) []string {
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = k.String()
	}
	return out
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}
