package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"google.golang.org/genproto/googleapis/rpc/errdetails"

	"github.com/at-ishikawa/revisit/internal/auth"
	mock_server "github.com/at-ishikawa/revisit/internal/mocks/server"
	"github.com/at-ishikawa/revisit/internal/repetition"
	"github.com/at-ishikawa/revisit/internal/scheduler"
	"github.com/at-ishikawa/revisit/internal/statistics"
)

var testNow = time.Date(2025, 3, 20, 15, 0, 0, 0, time.UTC)

func newTestHandler(t *testing.T) (*ScheduleHandler, *mock_server.MockScheduleService, *Metrics) {
	t.Helper()
	service := mock_server.NewMockScheduleService(gomock.NewController(t))
	metrics := NewMetrics()
	handler, err := NewScheduleHandler(service, metrics, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	return handler, service, metrics
}

func aliceContext() context.Context {
	return auth.WithUserID(context.Background(), "alice")
}

func boolPtr(b bool) *bool {
	return &b
}

func testScheduleItem(level int) repetition.ScheduleItem {
	due := testNow.AddDate(0, 0, repetition.IntervalDays(level))
	return repetition.ScheduleItem{
		ID:            "5d8f2b1e-6a7c-4e3d-9b2a-1c0f4e5d6a7b",
		UserID:        "alice",
		ReviewableRef: repetition.ReviewableRef{ItemID: 1, Slug: "two-sum", Name: "Two Sum", Difficulty: "easy", Topic: "arrays"},
		ReviewLevel:   level,
		DueDate:       &due,
		CreatedAt:     testNow,
		UpdatedAt:     testNow,
	}
}

func requireCode(t *testing.T, err error, want connect.Code) *connect.Error {
	t.Helper()
	require.Error(t, err)
	var connectErr *connect.Error
	require.True(t, errors.As(err, &connectErr))
	assert.Equal(t, want, connectErr.Code())
	return connectErr
}

func TestScheduleHandler_AddItem(t *testing.T) {
	tests := []struct {
		name       string
		ctx        context.Context
		identifier string
		setup      func(service *mock_server.MockScheduleService)
		wantCode   connect.Code
	}{
		{
			name:       "adds an item",
			ctx:        aliceContext(),
			identifier: "two-sum",
			setup: func(service *mock_server.MockScheduleService) {
				service.EXPECT().Add(gomock.Any(), "alice", "two-sum").Return(testScheduleItem(0), nil)
			},
		},
		{
			name:       "returns INVALID_ARGUMENT without an identifier",
			ctx:        aliceContext(),
			identifier: "",
			setup:      func(service *mock_server.MockScheduleService) {},
			wantCode:   connect.CodeInvalidArgument,
		},
		{
			name:       "returns UNAUTHENTICATED without a user",
			ctx:        context.Background(),
			identifier: "two-sum",
			setup:      func(service *mock_server.MockScheduleService) {},
			wantCode:   connect.CodeUnauthenticated,
		},
		{
			name:       "returns NOT_FOUND for an item that is not completed",
			ctx:        aliceContext(),
			identifier: "lru-cache",
			setup: func(service *mock_server.MockScheduleService) {
				service.EXPECT().Add(gomock.Any(), "alice", "lru-cache").
					Return(repetition.ScheduleItem{}, fmt.Errorf("completed item: %w", repetition.ErrNotFound))
			},
			wantCode: connect.CodeNotFound,
		},
		{
			name:       "returns ALREADY_EXISTS for a scheduled item",
			ctx:        aliceContext(),
			identifier: "two-sum",
			setup: func(service *mock_server.MockScheduleService) {
				service.EXPECT().Add(gomock.Any(), "alice", "two-sum").
					Return(repetition.ScheduleItem{}, repetition.ErrAlreadyExists)
			},
			wantCode: connect.CodeAlreadyExists,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, service, _ := newTestHandler(t)
			tt.setup(service)

			resp, err := handler.AddItem(tt.ctx, connect.NewRequest(&AddItemRequest{Identifier: tt.identifier}))
			if tt.wantCode != 0 {
				requireCode(t, err, tt.wantCode)
				assert.Nil(t, resp)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "two-sum", resp.Msg.Item.Slug)
			assert.Equal(t, 0, resp.Msg.Item.ReviewLevel)
			assert.Equal(t, 25, resp.Msg.Item.RetentionPercent)
		})
	}
}

func TestScheduleHandler_RemoveItem(t *testing.T) {
	handler, service, _ := newTestHandler(t)
	service.EXPECT().Remove(gomock.Any(), "alice", "1").Return(testScheduleItem(2), nil)

	resp, err := handler.RemoveItem(aliceContext(), connect.NewRequest(&RemoveItemRequest{Identifier: "1"}))
	require.NoError(t, err)
	assert.Equal(t, int64(1), resp.Msg.Item.ItemID)

	service.EXPECT().Remove(gomock.Any(), "bob", "5d8f2b1e-6a7c-4e3d-9b2a-1c0f4e5d6a7b").
		Return(repetition.ScheduleItem{}, repetition.ErrUnauthorized)
	_, err = handler.RemoveItem(
		auth.WithUserID(context.Background(), "bob"),
		connect.NewRequest(&RemoveItemRequest{Identifier: "5d8f2b1e-6a7c-4e3d-9b2a-1c0f4e5d6a7b"}),
	)
	requireCode(t, err, connect.CodePermissionDenied)
}

func TestScheduleHandler_ListAvailableItems(t *testing.T) {
	handler, service, _ := newTestHandler(t)
	service.EXPECT().ListAvailable(gomock.Any(), "alice").Return([]repetition.ReviewableRef{
		{ItemID: 146, Slug: "lru-cache", Name: "LRU Cache", Difficulty: "medium", Topic: "design"},
	}, nil)

	resp, err := handler.ListAvailableItems(aliceContext(), connect.NewRequest(&ListAvailableItemsRequest{}))
	require.NoError(t, err)
	assert.Equal(t, []ReviewableItem{
		{ItemID: 146, Slug: "lru-cache", Name: "LRU Cache", Difficulty: "medium", Topic: "design"},
	}, resp.Msg.Items)
}

func TestScheduleHandler_GetDueReviews(t *testing.T) {
	handler, service, _ := newTestHandler(t)
	service.EXPECT().DueReviews(gomock.Any(), "alice").Return(nil, nil)

	resp, err := handler.GetDueReviews(aliceContext(), connect.NewRequest(&GetDueReviewsRequest{}))
	require.NoError(t, err)
	assert.NotNil(t, resp.Msg.Items)
	assert.Empty(t, resp.Msg.Items)

	service.EXPECT().DueReviews(gomock.Any(), "alice").Return(nil, errors.New("connection refused"))
	_, err = handler.GetDueReviews(aliceContext(), connect.NewRequest(&GetDueReviewsRequest{}))
	requireCode(t, err, connect.CodeInternal)
}

func TestScheduleHandler_GetAllScheduled(t *testing.T) {
	handler, service, _ := newTestHandler(t)
	today := testScheduleItem(0)
	later := testScheduleItem(7)
	later.ID = "later"
	service.EXPECT().AllScheduled(gomock.Any(), "alice").Return(repetition.Buckets{
		DueToday:     []repetition.ScheduleItem{today},
		DueThisWeek:  []repetition.ScheduleItem{},
		DueThisMonth: []repetition.ScheduleItem{later},
		DueLater:     []repetition.ScheduleItem{},
		All:          []repetition.ScheduleItem{today, later},
	}, nil)

	resp, err := handler.GetAllScheduled(aliceContext(), connect.NewRequest(&GetAllScheduledRequest{}))
	require.NoError(t, err)
	assert.Len(t, resp.Msg.DueToday, 1)
	assert.Empty(t, resp.Msg.DueThisWeek)
	require.Len(t, resp.Msg.DueThisMonth, 1)
	assert.Equal(t, "later", resp.Msg.DueThisMonth[0].ID)
	assert.Empty(t, resp.Msg.DueLater)
	assert.Len(t, resp.Msg.All, 2)
}

func TestScheduleHandler_SubmitReview(t *testing.T) {
	tests := []struct {
		name     string
		req      *SubmitReviewRequest
		setup    func(service *mock_server.MockScheduleService)
		wantCode connect.Code
		wantViol []string
	}{
		{
			name: "records a successful review",
			req:  &SubmitReviewRequest{Identifier: "two-sum", WasSuccessful: boolPtr(true), ReviewOption: "easy"},
			setup: func(service *mock_server.MockScheduleService) {
				service.EXPECT().
					SubmitReview(gomock.Any(), "alice", "two-sum", repetition.Review{Successful: true, Option: repetition.ReviewOptionEasy}).
					Return(scheduler.ReviewResult{
						Item:  testScheduleItem(4),
						Entry: repetition.ReviewHistoryEntry{ID: 9, ScheduleItemID: testScheduleItem(4).ID, ReviewedAt: testNow, WasSuccessful: true, LevelBefore: 3, LevelAfter: 4, ReviewOption: repetition.ReviewOptionEasy},
					}, nil)
			},
		},
		{
			name:     "returns INVALID_ARGUMENT without an outcome",
			req:      &SubmitReviewRequest{Identifier: "two-sum"},
			setup:    func(service *mock_server.MockScheduleService) {},
			wantCode: connect.CodeInvalidArgument,
			wantViol: []string{"was_successful"},
		},
		{
			name:     "returns INVALID_ARGUMENT for an unknown option",
			req:      &SubmitReviewRequest{WasSuccessful: boolPtr(true), ReviewOption: "trivial"},
			setup:    func(service *mock_server.MockScheduleService) {},
			wantCode: connect.CodeInvalidArgument,
			wantViol: []string{"identifier", "review_option"},
		},
		{
			name: "returns INVALID_ARGUMENT for an option contradicting the outcome",
			req:  &SubmitReviewRequest{Identifier: "two-sum", WasSuccessful: boolPtr(true), ReviewOption: "forgot"},
			setup: func(service *mock_server.MockScheduleService) {
				service.EXPECT().SubmitReview(gomock.Any(), "alice", "two-sum", gomock.Any()).
					Return(scheduler.ReviewResult{}, repetition.ErrInvalidArgument)
			},
			wantCode: connect.CodeInvalidArgument,
		},
		{
			name: "returns INTERNAL for an inconsistent item",
			req:  &SubmitReviewRequest{Identifier: "two-sum", WasSuccessful: boolPtr(false)},
			setup: func(service *mock_server.MockScheduleService) {
				service.EXPECT().SubmitReview(gomock.Any(), "alice", "two-sum", repetition.Review{Successful: false}).
					Return(scheduler.ReviewResult{}, repetition.ErrInvalidState)
			},
			wantCode: connect.CodeInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, service, metrics := newTestHandler(t)
			tt.setup(service)

			resp, err := handler.SubmitReview(aliceContext(), connect.NewRequest(tt.req))
			if tt.wantCode != 0 {
				connectErr := requireCode(t, err, tt.wantCode)
				if len(tt.wantViol) > 0 {
					require.Len(t, connectErr.Details(), 1)
					value, err := connectErr.Details()[0].Value()
					require.NoError(t, err)
					badRequest, ok := value.(*errdetails.BadRequest)
					require.True(t, ok)
					var fields []string
					for _, v := range badRequest.GetFieldViolations() {
						fields = append(fields, v.GetField())
						assert.NotEmpty(t, v.GetDescription())
					}
					assert.ElementsMatch(t, tt.wantViol, fields)
				}
				assert.Equal(t, 0.0, testutil.ToFloat64(metrics.ReviewsTotal.WithLabelValues("success")))
				return
			}

			require.NoError(t, err)
			assert.Equal(t, 4, resp.Msg.Item.ReviewLevel)
			assert.Equal(t, 80, resp.Msg.Item.RetentionPercent)
			assert.Equal(t, 3, resp.Msg.Entry.LevelBefore)
			assert.Equal(t, 4, resp.Msg.Entry.LevelAfter)
			assert.Equal(t, "easy", resp.Msg.Entry.ReviewOption)
			assert.Equal(t, 1.0, testutil.ToFloat64(metrics.ReviewsTotal.WithLabelValues("success")))
		})
	}
}

func TestScheduleHandler_PreviewReview(t *testing.T) {
	handler, service, _ := newTestHandler(t)
	service.EXPECT().PreviewReview(gomock.Any(), "alice", "two-sum", false).Return(scheduler.Preview{
		Item:             testScheduleItem(5),
		LevelBefore:      5,
		LevelAfter:       4,
		DueDate:          testNow.AddDate(0, 0, 5),
		RetentionPercent: 80,
	}, nil)

	resp, err := handler.PreviewReview(aliceContext(), connect.NewRequest(&PreviewReviewRequest{Identifier: "two-sum", WasSuccessful: boolPtr(false)}))
	require.NoError(t, err)
	assert.Equal(t, 5, resp.Msg.LevelBefore)
	assert.Equal(t, 4, resp.Msg.LevelAfter)
	assert.Equal(t, testNow.AddDate(0, 0, 5), resp.Msg.DueDate)
	assert.Equal(t, 80, resp.Msg.RetentionPercent)

	_, err = handler.PreviewReview(aliceContext(), connect.NewRequest(&PreviewReviewRequest{Identifier: "two-sum"}))
	requireCode(t, err, connect.CodeInvalidArgument)
}

func TestScheduleHandler_GetHistory(t *testing.T) {
	handler, service, _ := newTestHandler(t)
	item := testScheduleItem(1)
	service.EXPECT().History(gomock.Any(), "alice", "two-sum").Return(item, []repetition.ReviewHistoryEntry{
		{ID: 1, ScheduleItemID: item.ID, ReviewedAt: testNow, WasSuccessful: true, LevelBefore: 0, LevelAfter: 1},
	}, nil)

	resp, err := handler.GetHistory(aliceContext(), connect.NewRequest(&GetHistoryRequest{Identifier: "two-sum"}))
	require.NoError(t, err)
	assert.Equal(t, item.ID, resp.Msg.Item.ID)
	assert.Equal(t, []HistoryEntry{
		{ID: 1, ScheduleItemID: item.ID, ReviewedAt: testNow, WasSuccessful: true, LevelBefore: 0, LevelAfter: 1},
	}, resp.Msg.Entries)
}

func TestScheduleHandler_GetStats(t *testing.T) {
	handler, service, _ := newTestHandler(t)
	service.EXPECT().Stats(gomock.Any(), "alice").Return(statistics.Stats{
		ByLevel:        map[int]int{0: 1, 1: 0, 2: 0, 3: 0, 4: 0, 5: 0, 6: 0, 7: 0},
		DueNow:         1,
		TotalItems:     1,
		CompletedToday: 0,
	}, nil)

	resp, err := handler.GetStats(aliceContext(), connect.NewRequest(&GetStatsRequest{}))
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Msg.DueNow)
	assert.Equal(t, 1, resp.Msg.TotalItems)
	assert.Len(t, resp.Msg.ByLevel, 8)
}

func TestScheduleHandler_GetLadder(t *testing.T) {
	handler, _, _ := newTestHandler(t)

	resp, err := handler.GetLadder(context.Background(), connect.NewRequest(&GetLadderRequest{}))
	require.NoError(t, err)
	require.Len(t, resp.Msg.Rungs, 8)
	assert.Equal(t, LadderRung{Level: 0, IntervalDays: 1, RetentionPercent: 25}, resp.Msg.Rungs[0])
	assert.Equal(t, LadderRung{Level: 7, IntervalDays: 21, RetentionPercent: 95}, resp.Msg.Rungs[7])
}
