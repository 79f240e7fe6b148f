package repetition

import (
	"fmt"
	"time"
)

// Review is the outcome a user submits for one schedule item.
type Review struct {
	Successful bool
	Option     ReviewOption
}

// Validate rejects an option that contradicts the outcome, such as a
// successful review marked as forgot.
func (r Review) Validate() error {
	if r.Option == ReviewOptionNone {
		return nil
	}
	if _, err := ParseReviewOption(string(r.Option)); err != nil {
		return err
	}
	if r.Option.Successful() != r.Successful {
		return fmt.Errorf("review option %q with successful=%t: %w", r.Option, r.Successful, ErrInvalidArgument)
	}
	return nil
}

// NextLevel moves one rung up on success and one rung down on failure.
// A lapse never resets the item to level 0.
func NextLevel(level int, successful bool) int {
	level = ClampLevel(level)
	if successful {
		return ClampLevel(level + 1)
	}
	return ClampLevel(level - 1)
}

// ApplyReview returns item as it is after the review at now, together with
// the history entry that records it. The input item is left untouched.
func ApplyReview(item ScheduleItem, review Review, now time.Time) (ScheduleItem, ReviewHistoryEntry) {
	levelBefore := ClampLevel(item.ReviewLevel)
	levelAfter := NextLevel(levelBefore, review.Successful)
	dueDate := NextDueDate(now, levelAfter)
	reviewedAt := now

	item.ReviewLevel = levelAfter
	item.LastReviewedAt = &reviewedAt
	item.DueDate = &dueDate
	item.UpdatedAt = now

	entry := ReviewHistoryEntry{
		ScheduleItemID: item.ID,
		UserID:         item.UserID,
		ReviewedAt:     now,
		WasSuccessful:  review.Successful,
		LevelBefore:    levelBefore,
		LevelAfter:     levelAfter,
		ReviewOption:   review.Option,
	}
	return item, entry
}
