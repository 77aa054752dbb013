// internal/repository/elasticsearch/listings.go

// Package elasticsearch is the full-text listing pool source. Listings are
// indexed with their JSON projection under the document id "<type>:<id>".
package elasticsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"marketplace-search/internal/models"
)

const defaultPageSize = 1000

var searchFields = []string{"title^3", "tags.value^2", "brand^2", "description"}

type ListingIndex struct {
	client   *elasticsearch.Client
	index    string
	pageSize int
}

// NewListingIndex reads the pool in pages of pageSize hits.
func NewListingIndex(client *elasticsearch.Client, index string, pageSize int) *ListingIndex {
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	return &ListingIndex{client: client, index: index, pageSize: pageSize}
}

// FetchPool narrows the pool to documents matching at least one of the
// filter's terms. Without terms every active listing passing the filters is
// returned. Pages are chained with search_after until a short page.
func (x *ListingIndex) FetchPool(ctx context.Context, filter models.PoolFilter) ([]*models.Listing, error) {
	var (
		pool  []*models.Listing
		after []interface{}
	)
	for {
		query := BuildPoolQuery(filter, x.pageSize)
		if after != nil {
			query["search_after"] = after
		}
		body, err := json.Marshal(query)
		if err != nil {
			return nil, fmt.Errorf("encode pool query: %w", err)
		}

		page, last, err := x.search(ctx, body)
		if err != nil {
			return nil, err
		}
		pool = append(pool, page...)
		if len(page) < x.pageSize || last == nil {
			break
		}
		after = last
	}
	return models.ApplyOrigin(pool, filter), nil
}

// FetchListings resolves keys with an ids query.
func (x *ListingIndex) FetchListings(ctx context.Context, keys []models.ListingKey) ([]*models.Listing, error) {
	if len(keys) == 0 {
		return nil, nil
	}

	ids := make([]string, len(keys))
	for i, k := range keys {
		ids[i] = k.String()
	}
	body, err := json.Marshal(map[string]interface{}{
		"size":  len(ids),
		"query": map[string]interface{}{"ids": map[string]interface{}{"values": ids}},
	})
	if err != nil {
		return nil, fmt.Errorf("encode ids query: %w", err)
	}
	listings, _, err := x.search(ctx, body)
	return listings, err
}

// BuildPoolQuery builds the search body for a pool fetch.
func BuildPoolQuery(filter models.PoolFilter, size int) map[string]interface{} {
	filters := []interface{}{
		map[string]interface{}{"term": map[string]interface{}{"status": string(models.StatusActive)}},
	}
	if filter.Category != "" {
		filters = append(filters, map[string]interface{}{
			"term": map[string]interface{}{"category": map[string]interface{}{
				"value":            strings.TrimSpace(filter.Category),
				"case_insensitive": true,
			}},
		})
	}
	if len(filter.ListingTypes) > 0 {
		types := make([]string, len(filter.ListingTypes))
		for i, t := range filter.ListingTypes {
			types[i] = string(t)
		}
		filters = append(filters, map[string]interface{}{
			"terms": map[string]interface{}{"type": types},
		})
	}
	if filter.PriceMin != nil || filter.PriceMax != nil {
		bounds := map[string]interface{}{}
		if filter.PriceMin != nil {
			bounds["gte"] = *filter.PriceMin
		}
		if filter.PriceMax != nil {
			bounds["lte"] = *filter.PriceMax
		}
		filters = append(filters, map[string]interface{}{
			"range": map[string]interface{}{"price": bounds},
		})
	}

	boolQuery := map[string]interface{}{"filter": filters}
	if len(filter.Terms) > 0 {
		should := make([]interface{}, len(filter.Terms))
		for i, term := range filter.Terms {
			should[i] = map[string]interface{}{
				"multi_match": map[string]interface{}{
					"query":  term,
					"fields": searchFields,
					"type":   "best_fields",
				},
			}
		}
		boolQuery["should"] = should
		boolQuery["minimum_should_match"] = 1
	}

	return map[string]interface{}{
		"size":  size,
		"query": map[string]interface{}{"bool": boolQuery},
		"sort": []interface{}{
			map[string]interface{}{"_score": "desc"},
			map[string]interface{}{"type": "asc"},
			map[string]interface{}{"id": "asc"},
		},
	}
}

type searchResponse struct {
	Hits struct {
		Hits []struct {
			Source models.Listing `json:"_source"`
			Sort   []interface{}  `json:"sort"`
		} `json:"hits"`
	} `json:"hits"`
}

// search runs one request and returns its listings plus the sort values of
// the last hit.
func (x *ListingIndex) search(ctx context.Context, body []byte) ([]*models.Listing, []interface{}, error) {
	req := esapi.SearchRequest{
		Index: []string{x.index},
		Body:  bytes.NewReader(body),
	}
	res, err := req.Do(ctx, x.client)
	if err != nil {
		return nil, nil, fmt.Errorf("search %s: %w", x.index, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, nil, fmt.Errorf("search %s: %s", x.index, res.Status())
	}

	var r searchResponse
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return nil, nil, fmt.Errorf("decode %s response: %w", x.index, err)
	}

	out := make([]*models.Listing, 0, len(r.Hits.Hits))
	for i := range r.Hits.Hits {
		l := r.Hits.Hits[i].Source
		if _, err := models.ParseListingType(string(l.Type)); err != nil {
			return nil, nil, fmt.Errorf("document %s: %w", l.ID, err)
		}
		out = append(out, &l)
	}

	var last []interface{}
	if n := len(r.Hits.Hits); n > 0 {
		last = r.Hits.Hits[n-1].Sort
	}
	return out, last, nil
}
