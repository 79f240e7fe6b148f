package repetition

import (
	"database/sql/driver"
	"fmt"
	"time"
)

// ReviewableRef identifies a problem or topic owned by the catalog.
// The scheduler stores a copy of it but never changes it.
type ReviewableRef struct {
	ItemID     int64  `db:"item_id"`
	Slug       string `db:"slug"`
	Name       string `db:"name"`
	Difficulty string `db:"difficulty"`
	Topic      string `db:"topic"`
}

// ScheduleItem is the per-user review state of one reviewable item.
type ScheduleItem struct {
	ID     string `db:"id"`
	UserID string `db:"user_id"`
	ReviewableRef
	ReviewLevel    int        `db:"review_level"`
	LastReviewedAt *time.Time `db:"last_reviewed_at"`
	DueDate        *time.Time `db:"due_date"`
	CreatedAt      time.Time  `db:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at"`
}

// Reviewed reports whether the item has been reviewed at least once.
func (item ScheduleItem) Reviewed() bool {
	return item.LastReviewedAt != nil
}

// DueBy reports whether the item is due at or before t.
func (item ScheduleItem) DueBy(t time.Time) bool {
	return item.DueDate != nil && !item.DueDate.After(t)
}

// ReviewOption is the optional self-assessment attached to a review.
type ReviewOption string

const (
	ReviewOptionNone      ReviewOption = ""
	ReviewOptionEasy      ReviewOption = "easy"
	ReviewOptionDifficult ReviewOption = "difficult"
	ReviewOptionForgot    ReviewOption = "forgot"
)

// ParseReviewOption accepts an empty string as ReviewOptionNone.
func ParseReviewOption(s string) (ReviewOption, error) {
	switch option := ReviewOption(s); option {
	case ReviewOptionNone, ReviewOptionEasy, ReviewOptionDifficult, ReviewOptionForgot:
		return option, nil
	default:
		return ReviewOptionNone, fmt.Errorf("review option %q: %w", s, ErrInvalidArgument)
	}
}

// Successful reports the outcome implied by the option. Forgot is the only failing option.
func (o ReviewOption) Successful() bool {
	return o != ReviewOptionForgot
}

// Value stores ReviewOptionNone as NULL.
func (o ReviewOption) Value() (driver.Value, error) {
	if o == ReviewOptionNone {
		return nil, nil
	}
	return string(o), nil
}

// Scan reads a nullable review_option column.
func (o *ReviewOption) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*o = ReviewOptionNone
	case string:
		*o = ReviewOption(v)
	case []byte:
		*o = ReviewOption(v)
	default:
		return fmt.Errorf("scan review option from %T", src)
	}
	return nil
}

// ReviewHistoryEntry is an immutable record of one submitted review.
type ReviewHistoryEntry struct {
	ID             int64        `db:"id"`
	ScheduleItemID string       `db:"schedule_item_id"`
	UserID         string       `db:"user_id"`
	ReviewedAt     time.Time    `db:"reviewed_at"`
	WasSuccessful  bool         `db:"was_successful"`
	LevelBefore    int          `db:"level_before"`
	LevelAfter     int          `db:"level_after"`
	ReviewOption   ReviewOption `db:"review_option"`
}
