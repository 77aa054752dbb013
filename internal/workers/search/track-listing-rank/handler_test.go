// internal/workers/search/track-listing-rank/handler_test.go
package tracklistingrank

import (
	"context"
	"errors"
	"testing"

	"marketplace-search/internal/common/camunda"
	"marketplace-search/internal/common/config"
	apperrors "marketplace-search/internal/common/errors"
	"marketplace-search/internal/common/logger"
	"marketplace-search/internal/models"
	"marketplace-search/internal/search/ranktrack"
	"marketplace-search/internal/search/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

type mockTracker struct {
	mock.Mock
}

func (m *mockTracker) TrackRank(ctx context.Context, req service.TrackRequest) (*service.TrackResponse, error) {
	args := m.Called(ctx, req)
	if resp := args.Get(0); resp != nil {
		return resp.(*service.TrackResponse), args.Error(1)
	}
	return nil, args.Error(1)
}

func createTestHandler(t *testing.T, engine RankTracker) *Handler {
	log := logger.NewTestLogger(t)
	return NewHandler(LoadConfig(config.WorkerConfig{Timeout: 5000}), engine, camunda.NewReporter(log, nil), log)
}

func intPtr(v int) *int { return &v }

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_Drops(t *testing.T) {
	engine := new(mockTracker)
	engine.On("TrackRank", mock.Anything, service.TrackRequest{
		Key:     models.ListingKey{ID: "p1", Type: models.ListingTypeProduct},
		Queries: []string{"telefon", "samsung", "arzon"},
	}).Return(&service.TrackResponse{
		ListingID:   "p1",
		ListingType: models.ListingTypeProduct,
		TopN:        50,
		Observations: []ranktrack.Observation{
			{Query: "telefon", PreviousRank: intPtr(3), CurrentRank: 15, RankChange: -12, InTopN: true, IsDrop: true, Severity: ranktrack.SeverityMajor},
			{Query: "samsung", PreviousRank: intPtr(2), CurrentRank: 9, RankChange: -7, InTopN: true, IsDrop: true, Severity: ranktrack.SeverityMinor},
			{Query: "arzon", CurrentRank: 51},
		},
		Drops:      2,
		AlertsSent: 1,
	}, nil)

	handler := createTestHandler(t, engine)
	output, err := handler.Execute(context.Background(), &Input{
		ListingID:   "p1",
		ListingType: models.ListingTypeProduct,
		Queries:     []string{"telefon", " samsung ", "", "arzon"},
	})

	require.NoError(t, err)
	assert.Equal(t, 2, output.Drops)
	assert.Equal(t, 1, output.AlertsSent)
	assert.Equal(t, ranktrack.SeverityMajor, output.WorstSeverity)
	require.Len(t, output.Ranks, 3)
	assert.Equal(t, 3, *output.Ranks[0].PreviousRank)
	assert.Nil(t, output.Ranks[2].PreviousRank)
	assert.False(t, output.Ranks[2].InTopN)
	engine.AssertExpectations(t)
}

func TestHandler_Execute_DefaultQueries(t *testing.T) {
	engine := new(mockTracker)
	engine.On("TrackRank", mock.Anything, service.TrackRequest{
		Key: models.ListingKey{ID: "sv1", Type: models.ListingTypeService},
	}).Return(&service.TrackResponse{
		ListingID:    "sv1",
		ListingType:  models.ListingTypeService,
		Observations: []ranktrack.Observation{},
	}, nil)

	handler := createTestHandler(t, engine)
	output, err := handler.Execute(context.Background(), &Input{ListingID: "sv1", ListingType: "service"})

	require.NoError(t, err)
	assert.Empty(t, output.Ranks)
	assert.Equal(t, ranktrack.SeverityNone, output.WorstSeverity)
	engine.AssertExpectations(t)
}

func TestHandler_Execute_QueriesCapped(t *testing.T) {
	engine := new(mockTracker)
	engine.On("TrackRank", mock.Anything, mock.MatchedBy(func(req service.TrackRequest) bool {
		return len(req.Queries) == 10
	})).Return(&service.TrackResponse{ListingID: "p1", Observations: []ranktrack.Observation{}}, nil)

	queries := make([]string, 15)
	for i := range queries {
		queries[i] = "q"
	}
	_, err := createTestHandler(t, engine).Execute(context.Background(), &Input{
		ListingID: "p1", ListingType: models.ListingTypeProduct, Queries: queries,
	})

	require.NoError(t, err)
	engine.AssertExpectations(t)
}

// ==========================
// Error Handling Tests
// ==========================

func TestHandler_Execute_Errors(t *testing.T) {
	tests := []struct {
		name      string
		input     *Input
		engineErr error
		wantCode  apperrors.ErrorCode
	}{
		{
			name:     "unknown type",
			input:    &Input{ListingID: "p1", ListingType: "auction"},
			wantCode: apperrors.ErrCodeInvalidSearchRequest,
		},
		{
			name:      "history unavailable",
			input:     &Input{ListingID: "p1", ListingType: models.ListingTypeProduct},
			engineErr: apperrors.NewDataUnavailableError(apperrors.SourceRankHistory, errors.New("deadlock")),
			wantCode:  apperrors.ErrCodeHistoryFetchFailed,
		},
		{
			name:      "listing not found",
			input:     &Input{ListingID: "gone", ListingType: models.ListingTypeStoreProduct},
			engineErr: apperrors.NewListingNotFoundError("store_product", "gone"),
			wantCode:  apperrors.ErrCodeListingNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := new(mockTracker)
			if tt.engineErr != nil {
				engine.On("TrackRank", mock.Anything, mock.Anything).Return(nil, tt.engineErr)
			}

			output, err := createTestHandler(t, engine).Execute(context.Background(), tt.input)

			assert.Nil(t, output)
			stdErr, ok := apperrors.AsStandardError(err)
			require.True(t, ok)
			assert.Equal(t, tt.wantCode, stdErr.Code)
			engine.AssertExpectations(t)
		})
	}
}

func TestWorse(t *testing.T) {
	assert.Equal(t, ranktrack.SeverityCritical, worse(ranktrack.SeverityMajor, ranktrack.SeverityCritical))
	assert.Equal(t, ranktrack.SeverityMajor, worse(ranktrack.SeverityMajor, ranktrack.SeverityMinor))
	assert.Equal(t, ranktrack.SeverityMinor, worse(ranktrack.SeverityNone, ranktrack.SeverityMinor))
}
