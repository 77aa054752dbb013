// internal/repository/elasticsearch/listings_test.go
package elasticsearch

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketplace-search/internal/models"
)

// ==========================
// Test Helper Functions
// ==========================

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func esResponse(status int, body string) *http.Response {
	h := http.Header{}
	h.Set("X-Elastic-Product", "Elasticsearch")
	h.Set("Content-Type", "application/json")
	return &http.Response{
		StatusCode: status,
		Header:     h,
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

// newTestIndex returns an index whose requests are answered by respond. The
// decoded request body of the last search is stored in *captured.
func newTestIndex(t *testing.T, captured *map[string]interface{}, status int, body string) *ListingIndex {
	t.Helper()
	transport := roundTripFunc(func(r *http.Request) (*http.Response, error) {
		if captured != nil && r.Body != nil {
			raw, err := io.ReadAll(r.Body)
			require.NoError(t, err)
			require.NoError(t, json.Unmarshal(raw, captured))
		}
		assert.Contains(t, r.URL.Path, "/listings/_search")
		return esResponse(status, body), nil
	})
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{"http://es.test:9200"},
		Transport: transport,
	})
	require.NoError(t, err)
	return NewListingIndex(client, "listings", 200)
}

const twoHits = `{
  "hits": {
    "total": {"value": 2},
    "hits": [
      {"_id": "product:p1", "_source": {"id": "p1", "type": "product", "title": "Telefon Samsung",
        "category": "electronics", "status": "active", "price": 1200,
        "tags": [{"value": "telefon", "weight": 0.9}],
        "location": {"lat": 41.31, "lon": 69.25}}},
      {"_id": "service:s1", "_source": {"id": "s1", "type": "service", "title": "Telefon ta'miri",
        "category": "repair", "status": "active"}}
    ]
  }
}`

// ==========================
// Query Builder Tests
// ==========================

func TestBuildPoolQuery(t *testing.T) {
	lo, hi := 100.0, 900.0
	q := BuildPoolQuery(models.PoolFilter{
		Category:     "electronics",
		ListingTypes: []models.ListingType{models.ListingTypeProduct},
		PriceMin:     &lo,
		PriceMax:     &hi,
		Terms:        []string{"telefon", "smartfon"},
	}, 50)

	assert.Equal(t, 50, q["size"])
	boolQuery := q["query"].(map[string]interface{})["bool"].(map[string]interface{})

	filters := boolQuery["filter"].([]interface{})
	require.Len(t, filters, 4)
	assert.Equal(t, map[string]interface{}{"term": map[string]interface{}{"status": "active"}}, filters[0])
	assert.Equal(t, map[string]interface{}{"gte": 100.0, "lte": 900.0},
		filters[3].(map[string]interface{})["range"].(map[string]interface{})["price"])

	assert.Equal(t, map[string]interface{}{"term": map[string]interface{}{"category": map[string]interface{}{
		"value": "electronics", "case_insensitive": true,
	}}}, filters[1])
	assert.Equal(t, []interface{}{
		map[string]interface{}{"_score": "desc"},
		map[string]interface{}{"type": "asc"},
		map[string]interface{}{"id": "asc"},
	}, q["sort"])
	assert.NotContains(t, q, "search_after")

	should := boolQuery["should"].([]interface{})
	require.Len(t, should, 2)
	mm := should[1].(map[string]interface{})["multi_match"].(map[string]interface{})
	assert.Equal(t, "smartfon", mm["query"])
	assert.Equal(t, 1, boolQuery["minimum_should_match"])
}

func TestBuildPoolQuery_NoTerms(t *testing.T) {
	q := BuildPoolQuery(models.PoolFilter{}, 10)
	boolQuery := q["query"].(map[string]interface{})["bool"].(map[string]interface{})

	assert.NotContains(t, boolQuery, "should")
	assert.NotContains(t, boolQuery, "minimum_should_match")
	assert.Len(t, boolQuery["filter"], 1)
}

// ==========================
// Search Tests
// ==========================

func TestListingIndex_FetchPool(t *testing.T) {
	var body map[string]interface{}
	index := newTestIndex(t, &body, http.StatusOK, twoHits)

	origin := models.GeoPoint{Lat: 41.2995, Lon: 69.2401}
	pool, err := index.FetchPool(context.Background(), models.PoolFilter{
		Terms:  []string{"telefon"},
		Origin: &origin,
	})
	require.NoError(t, err)
	require.Len(t, pool, 2)

	assert.Equal(t, models.ListingKey{ID: "p1", Type: models.ListingTypeProduct}, pool[0].Key())
	assert.Equal(t, []models.Tag{{Value: "telefon", Weight: 0.9}}, pool[0].Tags)
	require.NotNil(t, pool[0].Distance)
	assert.Less(t, *pool[0].Distance, 5.0)
	assert.Nil(t, pool[1].Distance)

	assert.EqualValues(t, 200, body["size"])
}

func TestListingIndex_FetchPool_FollowsSearchAfter(t *testing.T) {
	pages := []string{
		`{"hits":{"hits":[
		  {"_source":{"id":"p1","type":"product","status":"active"},"sort":[2.5,"product","p1"]},
		  {"_source":{"id":"p2","type":"product","status":"active"},"sort":[2.5,"product","p2"]}]}}`,
		`{"hits":{"hits":[
		  {"_source":{"id":"s1","type":"service","status":"active"},"sort":[1.0,"service","s1"]}]}}`,
	}

	var bodies []map[string]interface{}
	transport := roundTripFunc(func(r *http.Request) (*http.Response, error) {
		raw, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		var body map[string]interface{}
		require.NoError(t, json.Unmarshal(raw, &body))
		bodies = append(bodies, body)
		require.LessOrEqual(t, len(bodies), len(pages))
		return esResponse(http.StatusOK, pages[len(bodies)-1]), nil
	})
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{"http://es.test:9200"},
		Transport: transport,
	})
	require.NoError(t, err)

	pool, err := NewListingIndex(client, "listings", 2).FetchPool(context.Background(), models.PoolFilter{})
	require.NoError(t, err)

	ids := make([]string, len(pool))
	for i, l := range pool {
		ids[i] = l.ID
	}
	assert.Equal(t, []string{"p1", "p2", "s1"}, ids)

	require.Len(t, bodies, 2)
	assert.NotContains(t, bodies[0], "search_after")
	assert.Equal(t, []interface{}{2.5, "product", "p2"}, bodies[1]["search_after"])
}

func TestListingIndex_FetchPool_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr string
	}{
		{name: "index missing", status: http.StatusNotFound, body: `{"error":{"type":"index_not_found_exception"}}`, wantErr: "404"},
		{name: "malformed body", status: http.StatusOK, body: `{"hits":`, wantErr: "decode listings response"},
		{name: "unknown type", status: http.StatusOK, body: `{"hits":{"hits":[{"_source":{"id":"x","type":"franchise"}}]}}`, wantErr: "unknown listing type"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			index := newTestIndex(t, nil, tt.status, tt.body)
			pool, err := index.FetchPool(context.Background(), models.PoolFilter{})
			assert.Nil(t, pool)
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestListingIndex_FetchListings(t *testing.T) {
	var body map[string]interface{}
	index := newTestIndex(t, &body, http.StatusOK, twoHits)

	got, err := index.FetchListings(context.Background(), []models.ListingKey{
		{ID: "p1", Type: models.ListingTypeProduct},
		{ID: "s1", Type: models.ListingTypeService},
	})
	require.NoError(t, err)
	assert.Len(t, got, 2)

	ids := body["query"].(map[string]interface{})["ids"].(map[string]interface{})["values"]
	assert.Equal(t, []interface{}{"product:p1", "service:s1"}, ids)

	none, err := index.FetchListings(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, none)
}
