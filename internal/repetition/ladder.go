// Package repetition holds the review schedule model: the level ladder, the
// review transition rule, due-date bucketing and schedule persistence.
package repetition

import "time"

const (
	MinLevel = 0
	MaxLevel = 7
)

// Rung is one row of the level ladder.
type Rung struct {
	Level            int
	IntervalDays     int
	RetentionPercent int
}

var ladder = [MaxLevel + 1]Rung{
	{Level: 0, IntervalDays: 1, RetentionPercent: 25},
	{Level: 1, IntervalDays: 1, RetentionPercent: 40},
	{Level: 2, IntervalDays: 2, RetentionPercent: 60},
	{Level: 3, IntervalDays: 3, RetentionPercent: 70},
	{Level: 4, IntervalDays: 5, RetentionPercent: 80},
	{Level: 5, IntervalDays: 8, RetentionPercent: 85},
	{Level: 6, IntervalDays: 13, RetentionPercent: 90},
	{Level: 7, IntervalDays: 21, RetentionPercent: 95},
}

// ClampLevel saturates level into [MinLevel, MaxLevel].
func ClampLevel(level int) int {
	if level < MinLevel {
		return MinLevel
	}
	if level > MaxLevel {
		return MaxLevel
	}
	return level
}

// IntervalDays returns the number of days until the next review at the given level.
func IntervalDays(level int) int {
	return ladder[ClampLevel(level)].IntervalDays
}

// RetentionEstimate returns the estimated recall percentage at the given level.
// It is for display only and never feeds back into scheduling.
func RetentionEstimate(level int) int {
	return ladder[ClampLevel(level)].RetentionPercent
}

// Ladder returns a copy of every rung, lowest level first.
func Ladder() []Rung {
	rungs := make([]Rung, len(ladder))
	copy(rungs, ladder[:])
	return rungs
}

// NextDueDate returns the due date of an item reviewed at reviewedAt that ended on level.
// Intervals are calendar days, so a review at 18:00 is due again at 18:00.
func NextDueDate(reviewedAt time.Time, level int) time.Time {
	return reviewedAt.AddDate(0, 0, IntervalDays(level))
}
