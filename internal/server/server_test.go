package server

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/at-ishikawa/revisit/internal/auth"
	"github.com/at-ishikawa/revisit/internal/config"
	"github.com/at-ishikawa/revisit/internal/database"
	mock_catalog "github.com/at-ishikawa/revisit/internal/mocks/catalog"
	"github.com/at-ishikawa/revisit/internal/repetition"
	"github.com/at-ishikawa/revisit/internal/scheduler"
)

type testServer struct {
	*httptest.Server
	metrics *Metrics
	now     *time.Time
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	db, err := database.Open(config.DatabaseConfig{Driver: config.DriverSQLite, Path: filepath.Join(t.TempDir(), "revisit.db")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, database.Migrate(db))

	cat := mock_catalog.NewMockCatalog(gomock.NewController(t))
	cat.EXPECT().CompletedItems(gomock.Any(), gomock.Any()).Return([]repetition.ReviewableRef{
		{ItemID: 1, Slug: "two-sum", Name: "Two Sum", Difficulty: "easy", Topic: "arrays"},
		{ItemID: 146, Slug: "lru-cache", Name: "LRU Cache", Difficulty: "medium", Topic: "design"},
	}, nil).AnyTimes()

	now := testNow
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	service := scheduler.NewService(repetition.NewDBRepository(db), cat,
		scheduler.WithClock(func() time.Time { return now }),
		scheduler.WithLogger(logger),
	)

	metrics := NewMetrics()
	handler, err := NewScheduleHandler(service, metrics, logger)
	require.NoError(t, err)
	path, h := NewScheduleServiceHandler(handler, connect.WithInterceptors(
		metrics.Interceptor(),
		auth.NewInterceptor("X-User-Id"),
	))

	mux := http.NewServeMux()
	mux.Handle(path, h)
	mux.Handle("/metrics", metrics.Handler())
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return &testServer{Server: server, metrics: metrics, now: &now}
}

func call[Req, Res any](t *testing.T, server *testServer, procedure, userID string, msg *Req) (*Res, error) {
	t.Helper()
	client := connect.NewClient[Req, Res](server.Client(), server.URL+procedure, connect.WithCodec(JSONCodec))
	req := connect.NewRequest(msg)
	if userID != "" {
		req.Header().Set("X-User-Id", userID)
	}
	resp, err := client.CallUnary(context.Background(), req)
	if err != nil {
		return nil, err
	}
	return resp.Msg, nil
}

func TestScheduleService_EndToEnd(t *testing.T) {
	server := newTestServer(t)

	available, err := call[ListAvailableItemsRequest, ListAvailableItemsResponse](t, server, ScheduleServiceListAvailableItemsProcedure, "alice", &ListAvailableItemsRequest{})
	require.NoError(t, err)
	assert.Len(t, available.Items, 2)

	added, err := call[AddItemRequest, AddItemResponse](t, server, ScheduleServiceAddItemProcedure, "alice", &AddItemRequest{Identifier: "two-sum"})
	require.NoError(t, err)
	assert.Equal(t, 0, added.Item.ReviewLevel)

	_, err = call[AddItemRequest, AddItemResponse](t, server, ScheduleServiceAddItemProcedure, "alice", &AddItemRequest{Identifier: "1"})
	assert.Equal(t, connect.CodeAlreadyExists, connect.CodeOf(err))

	available, err = call[ListAvailableItemsRequest, ListAvailableItemsResponse](t, server, ScheduleServiceListAvailableItemsProcedure, "alice", &ListAvailableItemsRequest{})
	require.NoError(t, err)
	require.Len(t, available.Items, 1)
	assert.Equal(t, "lru-cache", available.Items[0].Slug)

	due, err := call[GetDueReviewsRequest, GetDueReviewsResponse](t, server, ScheduleServiceGetDueReviewsProcedure, "alice", &GetDueReviewsRequest{})
	require.NoError(t, err)
	require.Len(t, due.Items, 1)

	preview, err := call[PreviewReviewRequest, PreviewReviewResponse](t, server, ScheduleServicePreviewReviewProcedure, "alice", &PreviewReviewRequest{Identifier: "two-sum", WasSuccessful: boolPtr(true)})
	require.NoError(t, err)

	reviewed, err := call[SubmitReviewRequest, SubmitReviewResponse](t, server, ScheduleServiceSubmitReviewProcedure, "alice", &SubmitReviewRequest{Identifier: "two-sum", WasSuccessful: boolPtr(true)})
	require.NoError(t, err)
	assert.Equal(t, 1, reviewed.Item.ReviewLevel)
	assert.Equal(t, preview.LevelAfter, reviewed.Item.ReviewLevel)
	require.NotNil(t, reviewed.Item.DueDate)
	assert.True(t, preview.DueDate.Equal(*reviewed.Item.DueDate))
	assert.True(t, testNow.AddDate(0, 0, 1).Equal(*reviewed.Item.DueDate))

	scheduled, err := call[GetAllScheduledRequest, GetAllScheduledResponse](t, server, ScheduleServiceGetAllScheduledProcedure, "alice", &GetAllScheduledRequest{})
	require.NoError(t, err)
	assert.Empty(t, scheduled.DueToday)
	assert.Len(t, scheduled.DueThisWeek, 1)
	assert.Len(t, scheduled.All, 1)

	history, err := call[GetHistoryRequest, GetHistoryResponse](t, server, ScheduleServiceGetHistoryProcedure, "alice", &GetHistoryRequest{Identifier: added.Item.ID})
	require.NoError(t, err)
	require.Len(t, history.Entries, 1)
	assert.Equal(t, 0, history.Entries[0].LevelBefore)
	assert.Equal(t, 1, history.Entries[0].LevelAfter)

	_, err = call[GetHistoryRequest, GetHistoryResponse](t, server, ScheduleServiceGetHistoryProcedure, "bob", &GetHistoryRequest{Identifier: added.Item.ID})
	assert.Equal(t, connect.CodePermissionDenied, connect.CodeOf(err))

	stats, err := call[GetStatsRequest, GetStatsResponse](t, server, ScheduleServiceGetStatsProcedure, "alice", &GetStatsRequest{})
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalItems)
	assert.Equal(t, 1, stats.TotalReviews)
	assert.Equal(t, 1, stats.CompletedToday)
	assert.Equal(t, 1, stats.ByLevel[1])

	removed, err := call[RemoveItemRequest, RemoveItemResponse](t, server, ScheduleServiceRemoveItemProcedure, "alice", &RemoveItemRequest{Identifier: "two-sum"})
	require.NoError(t, err)
	assert.Equal(t, added.Item.ID, removed.Item.ID)

	_, err = call[SubmitReviewRequest, SubmitReviewResponse](t, server, ScheduleServiceSubmitReviewProcedure, "alice", &SubmitReviewRequest{Identifier: "two-sum", WasSuccessful: boolPtr(true)})
	assert.Equal(t, connect.CodeNotFound, connect.CodeOf(err))
}

func TestScheduleService_MissingUserHeader(t *testing.T) {
	server := newTestServer(t)

	_, err := call[GetDueReviewsRequest, GetDueReviewsResponse](t, server, ScheduleServiceGetDueReviewsProcedure, "", &GetDueReviewsRequest{})
	assert.Equal(t, connect.CodeUnauthenticated, connect.CodeOf(err))
}

func TestScheduleService_PlainJSONRequest(t *testing.T) {
	server := newTestServer(t)

	req, err := http.NewRequest(http.MethodPost, server.URL+ScheduleServiceAddItemProcedure, strings.NewReader(`{"identifier":"lru-cache"}`))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-Id", "alice")

	resp, err := server.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "lru-cache", body["item"]["slug"])
	assert.Equal(t, float64(146), body["item"]["item_id"])
	assert.Equal(t, float64(25), body["item"]["retention_percent"])
}

func TestScheduleService_Metrics(t *testing.T) {
	server := newTestServer(t)

	_, err := call[GetLadderRequest, GetLadderResponse](t, server, ScheduleServiceGetLadderProcedure, "alice", &GetLadderRequest{})
	require.NoError(t, err)
	_, err = call[GetLadderRequest, GetLadderResponse](t, server, ScheduleServiceGetLadderProcedure, "", &GetLadderRequest{})
	require.Error(t, err)

	resp, err := server.Client().Get(server.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Contains(t, string(body), `revisit_rpc_requests_total{code="ok",procedure="/revisit.v1.ScheduleService/GetLadder"} 1`)
	assert.Contains(t, string(body), `revisit_rpc_requests_total{code="unauthenticated",procedure="/revisit.v1.ScheduleService/GetLadder"} 1`)
}
