package repetition

import (
	"sort"
	"time"
)

// Buckets groups scheduled items by how soon they are due.
// DueToday, DueThisWeek, DueThisMonth and DueLater never share an item, and
// All is their concatenation in that order.
type Buckets struct {
	DueToday     []ScheduleItem
	DueThisWeek  []ScheduleItem
	DueThisMonth []ScheduleItem
	DueLater     []ScheduleItem
	All          []ScheduleItem
}

const (
	weekWindowDays  = 7
	monthWindowDays = 31
)

// StartOfDay returns midnight of t's calendar day in loc.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// Partition buckets items relative to the calendar day of now in loc.
// Overdue items are due today. Items without a due date are due later.
func Partition(items []ScheduleItem, now time.Time, loc *time.Location) Buckets {
	today := StartOfDay(now, loc)
	tomorrow := today.AddDate(0, 0, 1)
	weekEnd := today.AddDate(0, 0, weekWindowDays)
	monthEnd := today.AddDate(0, 0, monthWindowDays)

	sorted := make([]ScheduleItem, len(items))
	copy(sorted, items)
	SortByDueDate(sorted)

	buckets := Buckets{
		DueToday:     []ScheduleItem{},
		DueThisWeek:  []ScheduleItem{},
		DueThisMonth: []ScheduleItem{},
		DueLater:     []ScheduleItem{},
	}
	for _, item := range sorted {
		switch {
		case item.DueDate == nil:
			buckets.DueLater = append(buckets.DueLater, item)
		case item.DueDate.Before(tomorrow):
			buckets.DueToday = append(buckets.DueToday, item)
		case item.DueDate.Before(weekEnd):
			buckets.DueThisWeek = append(buckets.DueThisWeek, item)
		case item.DueDate.Before(monthEnd):
			buckets.DueThisMonth = append(buckets.DueThisMonth, item)
		default:
			buckets.DueLater = append(buckets.DueLater, item)
		}
	}

	buckets.All = make([]ScheduleItem, 0, len(sorted))
	buckets.All = append(buckets.All, buckets.DueToday...)
	buckets.All = append(buckets.All, buckets.DueThisWeek...)
	buckets.All = append(buckets.All, buckets.DueThisMonth...)
	buckets.All = append(buckets.All, buckets.DueLater...)
	return buckets
}

// DueNow returns the items whose due date is at or before now, earliest first.
func DueNow(items []ScheduleItem, now time.Time) []ScheduleItem {
	due := make([]ScheduleItem, 0, len(items))
	for _, item := range items {
		if item.DueBy(now) {
			due = append(due, item)
		}
	}
	SortByDueDate(due)
	return due
}

// SortByDueDate orders items by due date, then by id. Items without a due
// date go last.
func SortByDueDate(items []ScheduleItem) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i].DueDate, items[j].DueDate
		switch {
		case a == nil && b == nil:
			return items[i].ID < items[j].ID
		case a == nil:
			return false
		case b == nil:
			return true
		case !a.Equal(*b):
			return a.Before(*b)
		default:
			return items[i].ID < items[j].ID
		}
	})
}
