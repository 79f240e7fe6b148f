// Package statistics summarizes a user's review schedule and history.
package statistics

import (
	"time"

	"github.com/at-ishikawa/revisit/internal/repetition"
)

// Stats holds the counts shown on a user's dashboard.
type Stats struct {
	ByLevel       map[int]int // number of items per level; every level is present
	DueNow        int         // items with a due date at or before now
	DueThisWeek   int         // size of the due-this-week bucket
	TotalItems    int
	TotalReviewed int // items reviewed at least once
	TotalReviews  int // history entries

	// Review counts over rolling windows of calendar days ending today
	CompletedToday     int
	CompletedThisWeek  int
	CompletedThisMonth int
}

const (
	weekDays  = 7
	monthDays = 30
)

// Calculate derives the stats at now. Calendar days start at midnight in loc.
func Calculate(items []repetition.ScheduleItem, history []repetition.ReviewHistoryEntry, now time.Time, loc *time.Location) Stats {
	stats := Stats{
		ByLevel:      make(map[int]int, repetition.MaxLevel+1),
		TotalItems:   len(items),
		TotalReviews: len(history),
	}
	for level := repetition.MinLevel; level <= repetition.MaxLevel; level++ {
		stats.ByLevel[level] = 0
	}

	for _, item := range items {
		stats.ByLevel[repetition.ClampLevel(item.ReviewLevel)]++
		if item.Reviewed() {
			stats.TotalReviewed++
		}
		if item.DueBy(now) {
			stats.DueNow++
		}
	}
	stats.DueThisWeek = len(repetition.Partition(items, now, loc).DueThisWeek)

	today := repetition.StartOfDay(now, loc)
	tomorrow := today.AddDate(0, 0, 1)
	weekStart := today.AddDate(0, 0, 1-weekDays)
	monthStart := today.AddDate(0, 0, 1-monthDays)
	for _, entry := range history {
		if !entry.ReviewedAt.Before(tomorrow) {
			continue
		}
		if !entry.ReviewedAt.Before(today) {
			stats.CompletedToday++
		}
		if !entry.ReviewedAt.Before(weekStart) {
			stats.CompletedThisWeek++
		}
		if !entry.ReviewedAt.Before(monthStart) {
			stats.CompletedThisMonth++
		}
	}

	return stats
}
