// Package scheduler implements the review scheduling operations on top of
// the schedule repository and the catalog.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/at-ishikawa/revisit/internal/catalog"
	"github.com/at-ishikawa/revisit/internal/repetition"
	"github.com/at-ishikawa/revisit/internal/statistics"
)

// Service is safe for concurrent use. Reviews of the same item are
// serialized by the repository.
type Service struct {
	repo     repetition.Repository
	catalog  catalog.Catalog
	now      func() time.Time
	location *time.Location
	logger   *slog.Logger
	newID    func() string
}

type Option func(*Service)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithLocation sets the time zone that calendar-day windows are computed in.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) { s.location = loc }
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// WithIDGenerator replaces the UUID generator for new schedule items.
func WithIDGenerator(newID func() string) Option {
	return func(s *Service) { s.newID = newID }
}

func NewService(repo repetition.Repository, cat catalog.Catalog, opts ...Option) *Service {
	s := &Service{
		repo:     repo,
		catalog:  cat,
		now:      time.Now,
		location: time.UTC,
		logger:   slog.Default(),
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ReviewResult is the outcome of SubmitReview.
type ReviewResult struct {
	Item  repetition.ScheduleItem
	Entry repetition.ReviewHistoryEntry
}

// Preview is what a review would change without recording it.
type Preview struct {
	Item             repetition.ScheduleItem
	LevelBefore      int
	LevelAfter       int
	DueDate          time.Time
	RetentionPercent int
}

// Add schedules a completed catalog item for the user. The identifier is an
// item id or a slug. The new item starts at level 0 and is due immediately.
func (s *Service) Add(ctx context.Context, userID, identifier string) (repetition.ScheduleItem, error) {
	if err := requireUser(userID); err != nil {
		return repetition.ScheduleItem{}, err
	}
	id, err := repetition.ParseIdentifier(identifier)
	if err != nil {
		return repetition.ScheduleItem{}, err
	}
	if id.Kind == repetition.ByScheduleItemID {
		return repetition.ScheduleItem{}, fmt.Errorf("add by schedule item id %s: %w", id, repetition.ErrInvalidArgument)
	}

	completed, err := s.catalog.CompletedItems(ctx, userID)
	if err != nil {
		return repetition.ScheduleItem{}, fmt.Errorf("catalog.CompletedItems() > %w", err)
	}
	var (
		ref   repetition.ReviewableRef
		found bool
	)
	for _, candidate := range completed {
		if id.Matches(candidate) {
			ref, found = candidate, true
			break
		}
	}
	if !found {
		return repetition.ScheduleItem{}, fmt.Errorf("completed item %s %s: %w", id.Kind, id, repetition.ErrNotFound)
	}

	now := s.clock()
	item := repetition.ScheduleItem{
		ID:            s.newID(),
		UserID:        userID,
		ReviewableRef: ref,
		ReviewLevel:   repetition.MinLevel,
		DueDate:       &now,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.repo.Create(ctx, item); err != nil {
		return repetition.ScheduleItem{}, err
	}

	s.logger.InfoContext(ctx, "scheduled item", "user_id", userID, "schedule_item_id", item.ID, "item_id", ref.ItemID, "slug", ref.Slug)
	return item, nil
}

// Remove unschedules an item and drops its history. The identifier may be a
// schedule item id, an item id or a slug.
func (s *Service) Remove(ctx context.Context, userID, identifier string) (repetition.ScheduleItem, error) {
	if err := requireUser(userID); err != nil {
		return repetition.ScheduleItem{}, err
	}
	id, err := repetition.ParseIdentifier(identifier)
	if err != nil {
		return repetition.ScheduleItem{}, err
	}

	item, err := s.repo.Delete(ctx, userID, id)
	if err != nil {
		return repetition.ScheduleItem{}, err
	}
	s.logger.InfoContext(ctx, "removed item", "user_id", userID, "schedule_item_id", item.ID, "slug", item.Slug)
	return item, nil
}

// ListAvailable returns the user's completed items that are not scheduled yet.
func (s *Service) ListAvailable(ctx context.Context, userID string) ([]repetition.ReviewableRef, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	completed, err := s.catalog.CompletedItems(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("catalog.CompletedItems() > %w", err)
	}
	scheduled, err := s.repo.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	scheduledIDs := make(map[int64]struct{}, len(scheduled))
	for _, item := range scheduled {
		scheduledIDs[item.ItemID] = struct{}{}
	}
	available := make([]repetition.ReviewableRef, 0, len(completed))
	for _, ref := range completed {
		if _, ok := scheduledIDs[ref.ItemID]; !ok {
			available = append(available, ref)
		}
	}
	return available, nil
}

// DueReviews returns the items due now, most overdue first.
func (s *Service) DueReviews(ctx context.Context, userID string) ([]repetition.ScheduleItem, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	now := s.clock()
	items, err := s.repo.FindDue(ctx, userID, now)
	if err != nil {
		return nil, err
	}
	return repetition.DueNow(items, now), nil
}

// AllScheduled returns every scheduled item of the user grouped into buckets.
func (s *Service) AllScheduled(ctx context.Context, userID string) (repetition.Buckets, error) {
	if err := requireUser(userID); err != nil {
		return repetition.Buckets{}, err
	}
	items, err := s.repo.FindByUser(ctx, userID)
	if err != nil {
		return repetition.Buckets{}, err
	}
	return repetition.Partition(items, s.clock(), s.location), nil
}

// SubmitReview records a review outcome and reschedules the item.
func (s *Service) SubmitReview(ctx context.Context, userID, identifier string, review repetition.Review) (ReviewResult, error) {
	if err := requireUser(userID); err != nil {
		return ReviewResult{}, err
	}
	if err := review.Validate(); err != nil {
		return ReviewResult{}, err
	}
	id, err := repetition.ParseIdentifier(identifier)
	if err != nil {
		return ReviewResult{}, err
	}

	now := s.clock()
	item, entry, err := s.repo.RecordReview(ctx, userID, id, func(current repetition.ScheduleItem) (repetition.ScheduleItem, repetition.ReviewHistoryEntry) {
		return repetition.ApplyReview(current, review, now)
	})
	if err != nil {
		if errors.Is(err, repetition.ErrInvalidState) {
			s.logger.ErrorContext(ctx, "schedule item is in an invalid state", "user_id", userID, "identifier", identifier, "error", err)
		}
		return ReviewResult{}, err
	}

	s.logger.InfoContext(ctx, "recorded review",
		"user_id", userID,
		"schedule_item_id", item.ID,
		"successful", review.Successful,
		"level_before", entry.LevelBefore,
		"level_after", entry.LevelAfter,
	)
	return ReviewResult{Item: item, Entry: entry}, nil
}

// PreviewReview returns what SubmitReview would store for the same outcome at
// the current time, without storing anything.
func (s *Service) PreviewReview(ctx context.Context, userID, identifier string, successful bool) (Preview, error) {
	if err := requireUser(userID); err != nil {
		return Preview{}, err
	}
	id, err := repetition.ParseIdentifier(identifier)
	if err != nil {
		return Preview{}, err
	}
	current, err := s.repo.FindOne(ctx, userID, id)
	if err != nil {
		return Preview{}, err
	}

	next, entry := repetition.ApplyReview(current, repetition.Review{Successful: successful}, s.clock())
	return Preview{
		Item:             current,
		LevelBefore:      entry.LevelBefore,
		LevelAfter:       entry.LevelAfter,
		DueDate:          *next.DueDate,
		RetentionPercent: repetition.RetentionEstimate(entry.LevelAfter),
	}, nil
}

// History returns the reviews of one schedule item, oldest first.
func (s *Service) History(ctx context.Context, userID, identifier string) (repetition.ScheduleItem, []repetition.ReviewHistoryEntry, error) {
	if err := requireUser(userID); err != nil {
		return repetition.ScheduleItem{}, nil, err
	}
	id, err := repetition.ParseIdentifier(identifier)
	if err != nil {
		return repetition.ScheduleItem{}, nil, err
	}
	item, err := s.repo.FindOne(ctx, userID, id)
	if err != nil {
		return repetition.ScheduleItem{}, nil, err
	}
	entries, err := s.repo.FindHistory(ctx, item.ID)
	if err != nil {
		return repetition.ScheduleItem{}, nil, err
	}
	return item, entries, nil
}

// Stats summarizes the user's schedule and review activity.
func (s *Service) Stats(ctx context.Context, userID string) (statistics.Stats, error) {
	if err := requireUser(userID); err != nil {
		return statistics.Stats{}, err
	}
	items, err := s.repo.FindByUser(ctx, userID)
	if err != nil {
		return statistics.Stats{}, err
	}
	history, err := s.repo.FindHistoryByUser(ctx, userID)
	if err != nil {
		return statistics.Stats{}, err
	}
	return statistics.Calculate(items, history, s.clock(), s.location), nil
}

// clock returns the current time in UTC so stored timestamps compare as text in SQLite.
func (s *Service) clock() time.Time {
	return s.now().UTC()
}

func requireUser(userID string) error {
	if userID == "" {
		return fmt.Errorf("missing user id: %w", repetition.ErrUnauthorized)
	}
	return nil
}
