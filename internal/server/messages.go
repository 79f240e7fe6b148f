package server

import (
	"time"

	"github.com/at-ishikawa/revisit/internal/repetition"
	"github.com/at-ishikawa/revisit/internal/scheduler"
	"github.com/at-ishikawa/revisit/internal/statistics"
)

// ScheduleItem is the wire form of a schedule item.
type ScheduleItem struct {
	ID               string     `json:"id"`
	ItemID           int64      `json:"item_id"`
	Slug             string     `json:"slug"`
	Name             string     `json:"name"`
	Difficulty       string     `json:"difficulty,omitempty"`
	Topic            string     `json:"topic,omitempty"`
	ReviewLevel      int        `json:"review_level"`
	RetentionPercent int        `json:"retention_percent"`
	LastReviewedAt   *time.Time `json:"last_reviewed_at,omitempty"`
	DueDate          *time.Time `json:"due_date,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

type ReviewableItem struct {
	ItemID     int64  `json:"item_id"`
	Slug       string `json:"slug"`
	Name       string `json:"name"`
	Difficulty string `json:"difficulty,omitempty"`
	Topic      string `json:"topic,omitempty"`
}

type HistoryEntry struct {
	ID             int64     `json:"id"`
	ScheduleItemID string    `json:"schedule_item_id"`
	ReviewedAt     time.Time `json:"reviewed_at"`
	WasSuccessful  bool      `json:"was_successful"`
	LevelBefore    int       `json:"level_before"`
	LevelAfter     int       `json:"level_after"`
	ReviewOption   string    `json:"review_option,omitempty"`
}

type LadderRung struct {
	Level            int `json:"level"`
	IntervalDays     int `json:"interval_days"`
	RetentionPercent int `json:"retention_percent"`
}

type AddItemRequest struct {
	Identifier string `json:"identifier" validate:"required"`
}

type AddItemResponse struct {
	Item ScheduleItem `json:"item"`
}

type RemoveItemRequest struct {
	Identifier string `json:"identifier" validate:"required"`
}

type RemoveItemResponse struct {
	Item ScheduleItem `json:"item"`
}

type ListAvailableItemsRequest struct{}

type ListAvailableItemsResponse struct {
	Items []ReviewableItem `json:"items"`
}

type GetDueReviewsRequest struct{}

type GetDueReviewsResponse struct {
	Items []ScheduleItem `json:"items"`
}

type GetAllScheduledRequest struct{}

type GetAllScheduledResponse struct {
	DueToday     []ScheduleItem `json:"due_today"`
	DueThisWeek  []ScheduleItem `json:"due_this_week"`
	DueThisMonth []ScheduleItem `json:"due_this_month"`
	DueLater     []ScheduleItem `json:"due_later"`
	All          []ScheduleItem `json:"all"`
}

type SubmitReviewRequest struct {
	Identifier    string `json:"identifier" validate:"required"`
	WasSuccessful *bool  `json:"was_successful" validate:"required"`
	ReviewOption  string `json:"review_option" validate:"omitempty,oneof=easy difficult forgot"`
}

type SubmitReviewResponse struct {
	Item  ScheduleItem `json:"item"`
	Entry HistoryEntry `json:"entry"`
}

type PreviewReviewRequest struct {
	Identifier    string `json:"identifier" validate:"required"`
	WasSuccessful *bool  `json:"was_successful" validate:"required"`
}

type PreviewReviewResponse struct {
	Item             ScheduleItem `json:"item"`
	LevelBefore      int          `json:"level_before"`
	LevelAfter       int          `json:"level_after"`
	DueDate          time.Time    `json:"due_date"`
	RetentionPercent int          `json:"retention_percent"`
}

type GetHistoryRequest struct {
	Identifier string `json:"identifier" validate:"required"`
}

type GetHistoryResponse struct {
	Item    ScheduleItem   `json:"item"`
	Entries []HistoryEntry `json:"entries"`
}

type GetStatsRequest struct{}

type GetStatsResponse struct {
	ByLevel            map[int]int `json:"by_level"`
	DueNow             int         `json:"due_now"`
	DueThisWeek        int         `json:"due_this_week"`
	TotalItems         int         `json:"total_items"`
	TotalReviewed      int         `json:"total_reviewed"`
	TotalReviews       int         `json:"total_reviews"`
	CompletedToday     int         `json:"completed_today"`
	CompletedThisWeek  int         `json:"completed_this_week"`
	CompletedThisMonth int         `json:"completed_this_month"`
}

type GetLadderRequest struct{}

type GetLadderResponse struct {
	Rungs []LadderRung `json:"rungs"`
}

func toScheduleItem(item repetition.ScheduleItem) ScheduleItem {
	return ScheduleItem{
		ID:               item.ID,
		ItemID:           item.ItemID,
		Slug:             item.Slug,
		Name:             item.Name,
		Difficulty:       item.Difficulty,
		Topic:            item.Topic,
		ReviewLevel:      item.ReviewLevel,
		RetentionPercent: repetition.RetentionEstimate(item.ReviewLevel),
		LastReviewedAt:   item.LastReviewedAt,
		DueDate:          item.DueDate,
		CreatedAt:        item.CreatedAt,
		UpdatedAt:        item.UpdatedAt,
	}
}

func toScheduleItems(items []repetition.ScheduleItem) []ScheduleItem {
	result := make([]ScheduleItem, 0, len(items))
	for _, item := range items {
		result = append(result, toScheduleItem(item))
	}
	return result
}

func toReviewableItems(refs []repetition.ReviewableRef) []ReviewableItem {
	result := make([]ReviewableItem, 0, len(refs))
	for _, ref := range refs {
		result = append(result, ReviewableItem{
			ItemID:     ref.ItemID,
			Slug:       ref.Slug,
			Name:       ref.Name,
			Difficulty: ref.Difficulty,
			Topic:      ref.Topic,
		})
	}
	return result
}

func toHistoryEntry(entry repetition.ReviewHistoryEntry) HistoryEntry {
	return HistoryEntry{
		ID:             entry.ID,
		ScheduleItemID: entry.ScheduleItemID,
		ReviewedAt:     entry.ReviewedAt,
		WasSuccessful:  entry.WasSuccessful,
		LevelBefore:    entry.LevelBefore,
		LevelAfter:     entry.LevelAfter,
		ReviewOption:   string(entry.ReviewOption),
	}
}

func toHistoryEntries(entries []repetition.ReviewHistoryEntry) []HistoryEntry {
	result := make([]HistoryEntry, 0, len(entries))
	for _, entry := range entries {
		result = append(result, toHistoryEntry(entry))
	}
	return result
}

func toPreviewResponse(preview scheduler.Preview) *PreviewReviewResponse {
	return &PreviewReviewResponse{
		Item:             toScheduleItem(preview.Item),
		LevelBefore:      preview.LevelBefore,
		LevelAfter:       preview.LevelAfter,
		DueDate:          preview.DueDate,
		RetentionPercent: preview.RetentionPercent,
	}
}

func toStatsResponse(stats statistics.Stats) *GetStatsResponse {
	return &GetStatsResponse{
		ByLevel:            stats.ByLevel,
		DueNow:             stats.DueNow,
		DueThisWeek:        stats.DueThisWeek,
		TotalItems:         stats.TotalItems,
		TotalReviewed:      stats.TotalReviewed,
		TotalReviews:       stats.TotalReviews,
		CompletedToday:     stats.CompletedToday,
		CompletedThisWeek:  stats.CompletedThisWeek,
		CompletedThisMonth: stats.CompletedThisMonth,
	}
}

func toLadderResponse(rungs []repetition.Rung) *GetLadderResponse {
	result := make([]LadderRung, 0, len(rungs))
	for _, rung := range rungs {
		result = append(result, LadderRung{
			Level:            rung.Level,
			IntervalDays:     rung.IntervalDays,
			RetentionPercent: rung.RetentionPercent,
		})
	}
	return &GetLadderResponse{Rungs: result}
}
