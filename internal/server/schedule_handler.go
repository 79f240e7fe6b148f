// Package server provides the Connect RPC handlers of the schedule service.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"connectrpc.com/connect"

	"github.com/at-ishikawa/revisit/internal/auth"
	"github.com/at-ishikawa/revisit/internal/repetition"
	"github.com/at-ishikawa/revisit/internal/scheduler"
	"github.com/at-ishikawa/revisit/internal/statistics"
)

//go:generate mockgen -source=schedule_handler.go -destination=../mocks/server/mock_schedule_service.go -package=mock_server

// ScheduleService is implemented by *scheduler.Service.
type ScheduleService interface {
	Add(ctx context.Context, userID, identifier string) (repetition.ScheduleItem, error)
	Remove(ctx context.Context, userID, identifier string) (repetition.ScheduleItem, error)
	ListAvailable(ctx context.Context, userID string) ([]repetition.ReviewableRef, error)
	DueReviews(ctx context.Context, userID string) ([]repetition.ScheduleItem, error)
	AllScheduled(ctx context.Context, userID string) (repetition.Buckets, error)
	SubmitReview(ctx context.Context, userID, identifier string, review repetition.Review) (scheduler.ReviewResult, error)
	PreviewReview(ctx context.Context, userID, identifier string, successful bool) (scheduler.Preview, error)
	History(ctx context.Context, userID, identifier string) (repetition.ScheduleItem, []repetition.ReviewHistoryEntry, error)
	Stats(ctx context.Context, userID string) (statistics.Stats, error)
}

const ScheduleServiceName = "revisit.v1.ScheduleService"

const (
	ScheduleServiceAddItemProcedure            = "/" + ScheduleServiceName + "/AddItem"
	ScheduleServiceRemoveItemProcedure         = "/" + ScheduleServiceName + "/RemoveItem"
	ScheduleServiceListAvailableItemsProcedure = "/" + ScheduleServiceName + "/ListAvailableItems"
	ScheduleServiceGetDueReviewsProcedure      = "/" + ScheduleServiceName + "/GetDueReviews"
	ScheduleServiceGetAllScheduledProcedure    = "/" + ScheduleServiceName + "/GetAllScheduled"
	ScheduleServiceSubmitReviewProcedure       = "/" + ScheduleServiceName + "/SubmitReview"
	ScheduleServicePreviewReviewProcedure      = "/" + ScheduleServiceName + "/PreviewReview"
	ScheduleServiceGetHistoryProcedure         = "/" + ScheduleServiceName + "/GetHistory"
	ScheduleServiceGetStatsProcedure           = "/" + ScheduleServiceName + "/GetStats"
	ScheduleServiceGetLadderProcedure          = "/" + ScheduleServiceName + "/GetLadder"
)

// ScheduleHandler serves the schedule service procedures. The caller's user
// id comes from the auth interceptor.
type ScheduleHandler struct {
	service   ScheduleService
	metrics   *Metrics
	validator *requestValidator
	logger    *slog.Logger
}

// NewScheduleHandler creates a ScheduleHandler. metrics may be nil.
func NewScheduleHandler(service ScheduleService, metrics *Metrics, logger *slog.Logger) (*ScheduleHandler, error) {
	v, err := newRequestValidator()
	if err != nil {
		return nil, fmt.Errorf("newRequestValidator() > %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ScheduleHandler{
		service:   service,
		metrics:   metrics,
		validator: v,
		logger:    logger,
	}, nil
}

// NewScheduleServiceHandler builds an http.Handler that serves every
// procedure of the schedule service, and returns the path to mount it on.
func NewScheduleServiceHandler(h *ScheduleHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{
		connect.WithCodec(JSONCodec),
		connect.WithCodec(jsonCharsetCodec),
	}, opts...)

	mux := http.NewServeMux()
	mux.Handle(ScheduleServiceAddItemProcedure, connect.NewUnaryHandler(ScheduleServiceAddItemProcedure, h.AddItem, opts...))
	mux.Handle(ScheduleServiceRemoveItemProcedure, connect.NewUnaryHandler(ScheduleServiceRemoveItemProcedure, h.RemoveItem, opts...))
	mux.Handle(ScheduleServiceListAvailableItemsProcedure, connect.NewUnaryHandler(ScheduleServiceListAvailableItemsProcedure, h.ListAvailableItems, opts...))
	mux.Handle(ScheduleServiceGetDueReviewsProcedure, connect.NewUnaryHandler(ScheduleServiceGetDueReviewsProcedure, h.GetDueReviews, opts...))
	mux.Handle(ScheduleServiceGetAllScheduledProcedure, connect.NewUnaryHandler(ScheduleServiceGetAllScheduledProcedure, h.GetAllScheduled, opts...))
	mux.Handle(ScheduleServiceSubmitReviewProcedure, connect.NewUnaryHandler(ScheduleServiceSubmitReviewProcedure, h.SubmitReview, opts...))
	mux.Handle(ScheduleServicePreviewReviewProcedure, connect.NewUnaryHandler(ScheduleServicePreviewReviewProcedure, h.PreviewReview, opts...))
	mux.Handle(ScheduleServiceGetHistoryProcedure, connect.NewUnaryHandler(ScheduleServiceGetHistoryProcedure, h.GetHistory, opts...))
	mux.Handle(ScheduleServiceGetStatsProcedure, connect.NewUnaryHandler(ScheduleServiceGetStatsProcedure, h.GetStats, opts...))
	mux.Handle(ScheduleServiceGetLadderProcedure, connect.NewUnaryHandler(ScheduleServiceGetLadderProcedure, h.GetLadder, opts...))
	return "/" + ScheduleServiceName + "/", mux
}

// AddItem schedules one of the caller's completed items.
func (h *ScheduleHandler) AddItem(
	ctx context.Context,
	req *connect.Request[AddItemRequest],
) (*connect.Response[AddItemResponse], error) {
	if err := h.validator.validateRequest(req.Msg); err != nil {
		return nil, err
	}
	userID, err := auth.RequireUserID(ctx)
	if err != nil {
		return nil, err
	}

	item, err := h.service.Add(ctx, userID, req.Msg.Identifier)
	if err != nil {
		return nil, h.fail(ctx, "add item", err)
	}
	return connect.NewResponse(&AddItemResponse{Item: toScheduleItem(item)}), nil
}

// RemoveItem unschedules an item and deletes its history.
func (h *ScheduleHandler) RemoveItem(
	ctx context.Context,
	req *connect.Request[RemoveItemRequest],
) (*connect.Response[RemoveItemResponse], error) {
	if err := h.validator.validateRequest(req.Msg); err != nil {
		return nil, err
	}
	userID, err := auth.RequireUserID(ctx)
	if err != nil {
		return nil, err
	}

	item, err := h.service.Remove(ctx, userID, req.Msg.Identifier)
	if err != nil {
		return nil, h.fail(ctx, "remove item", err)
	}
	return connect.NewResponse(&RemoveItemResponse{Item: toScheduleItem(item)}), nil
}

// ListAvailableItems returns completed items that are not scheduled yet.
func (h *ScheduleHandler) ListAvailableItems(
	ctx context.Context,
	req *connect.Request[ListAvailableItemsRequest],
) (*connect.Response[ListAvailableItemsResponse], error) {
	userID, err := auth.RequireUserID(ctx)
	if err != nil {
		return nil, err
	}

	refs, err := h.service.ListAvailable(ctx, userID)
	if err != nil {
		return nil, h.fail(ctx, "list available items", err)
	}
	return connect.NewResponse(&ListAvailableItemsResponse{Items: toReviewableItems(refs)}), nil
}

// GetDueReviews returns the items due now.
func (h *ScheduleHandler) GetDueReviews(
	ctx context.Context,
	req *connect.Request[GetDueReviewsRequest],
) (*connect.Response[GetDueReviewsResponse], error) {
	userID, err := auth.RequireUserID(ctx)
	if err != nil {
		return nil, err
	}

	items, err := h.service.DueReviews(ctx, userID)
	if err != nil {
		return nil, h.fail(ctx, "get due reviews", err)
	}
	return connect.NewResponse(&GetDueReviewsResponse{Items: toScheduleItems(items)}), nil
}

// GetAllScheduled returns every scheduled item grouped by due date.
func (h *ScheduleHandler) GetAllScheduled(
	ctx context.Context,
	req *connect.Request[GetAllScheduledRequest],
) (*connect.Response[GetAllScheduledResponse], error) {
	userID, err := auth.RequireUserID(ctx)
	if err != nil {
		return nil, err
	}

	buckets, err := h.service.AllScheduled(ctx, userID)
	if err != nil {
		return nil, h.fail(ctx, "get all scheduled", err)
	}
	return connect.NewResponse(&GetAllScheduledResponse{
		DueToday:     toScheduleItems(buckets.DueToday),
		DueThisWeek:  toScheduleItems(buckets.DueThisWeek),
		DueThisMonth: toScheduleItems(buckets.DueThisMonth),
		DueLater:     toScheduleItems(buckets.DueLater),
		All:          toScheduleItems(buckets.All),
	}), nil
}

// SubmitReview records a review and returns the rescheduled item.
func (h *ScheduleHandler) SubmitReview(
	ctx context.Context,
	req *connect.Request[SubmitReviewRequest],
) (*connect.Response[SubmitReviewResponse], error) {
	if err := h.validator.validateRequest(req.Msg); err != nil {
		return nil, err
	}
	userID, err := auth.RequireUserID(ctx)
	if err != nil {
		return nil, err
	}
	option, err := repetition.ParseReviewOption(req.Msg.ReviewOption)
	if err != nil {
		return nil, toConnectError(err)
	}

	review := repetition.Review{Successful: *req.Msg.WasSuccessful, Option: option}
	result, err := h.service.SubmitReview(ctx, userID, req.Msg.Identifier, review)
	if err != nil {
		return nil, h.fail(ctx, "submit review", err)
	}
	h.metrics.ObserveReview(review.Successful)

	return connect.NewResponse(&SubmitReviewResponse{
		Item:  toScheduleItem(result.Item),
		Entry: toHistoryEntry(result.Entry),
	}), nil
}

// PreviewReview returns the level and due date a review would produce.
func (h *ScheduleHandler) PreviewReview(
	ctx context.Context,
	req *connect.Request[PreviewReviewRequest],
) (*connect.Response[PreviewReviewResponse], error) {
	if err := h.validator.validateRequest(req.Msg); err != nil {
		return nil, err
	}
	userID, err := auth.RequireUserID(ctx)
	if err != nil {
		return nil, err
	}

	preview, err := h.service.PreviewReview(ctx, userID, req.Msg.Identifier, *req.Msg.WasSuccessful)
	if err != nil {
		return nil, h.fail(ctx, "preview review", err)
	}
	return connect.NewResponse(toPreviewResponse(preview)), nil
}

// GetHistory returns the reviews of one item, oldest first.
func (h *ScheduleHandler) GetHistory(
	ctx context.Context,
	req *connect.Request[GetHistoryRequest],
) (*connect.Response[GetHistoryResponse], error) {
	if err := h.validator.validateRequest(req.Msg); err != nil {
		return nil, err
	}
	userID, err := auth.RequireUserID(ctx)
	if err != nil {
		return nil, err
	}

	item, entries, err := h.service.History(ctx, userID, req.Msg.Identifier)
	if err != nil {
		return nil, h.fail(ctx, "get history", err)
	}
	return connect.NewResponse(&GetHistoryResponse{
		Item:    toScheduleItem(item),
		Entries: toHistoryEntries(entries),
	}), nil
}

// GetStats returns the caller's review statistics.
func (h *ScheduleHandler) GetStats(
	ctx context.Context,
	req *connect.Request[GetStatsRequest],
) (*connect.Response[GetStatsResponse], error) {
	userID, err := auth.RequireUserID(ctx)
	if err != nil {
		return nil, err
	}

	stats, err := h.service.Stats(ctx, userID)
	if err != nil {
		return nil, h.fail(ctx, "get stats", err)
	}
	return connect.NewResponse(toStatsResponse(stats)), nil
}

// GetLadder returns the interval and retention of every level.
func (h *ScheduleHandler) GetLadder(
	ctx context.Context,
	req *connect.Request[GetLadderRequest],
) (*connect.Response[GetLadderResponse], error) {
	return connect.NewResponse(toLadderResponse(repetition.Ladder())), nil
}

func (h *ScheduleHandler) fail(ctx context.Context, operation string, err error) error {
	connectErr := toConnectError(err)
	if connect.CodeOf(connectErr) == connect.CodeInternal {
		h.logger.ErrorContext(ctx, operation+" failed", "error", err)
	} else {
		h.logger.DebugContext(ctx, operation+" rejected", "error", err)
	}
	return connectErr
}
