// Package cli renders schedules and reviews on a terminal and runs the
// interactive review session.
package cli

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/at-ishikawa/revisit/internal/datasync"
	"github.com/at-ishikawa/revisit/internal/repetition"
	"github.com/at-ishikawa/revisit/internal/scheduler"
	"github.com/at-ishikawa/revisit/internal/statistics"
)

const dateLayout = "2006-01-02 15:04"

// Presenter writes human readable output. Times are shown in its location.
type Presenter struct {
	w        io.Writer
	location *time.Location
	err      error

	bold   *color.Color
	italic *color.Color
	faint  *color.Color
	green  *color.Color
	red    *color.Color
	yellow *color.Color
}

func NewPresenter(w io.Writer, location *time.Location) *Presenter {
	if location == nil {
		location = time.UTC
	}
	return &Presenter{
		w:        w,
		location: location,
		bold:     color.New(color.Bold),
		italic:   color.New(color.Italic),
		faint:    color.New(color.Faint),
		green:    color.New(color.FgGreen),
		red:      color.New(color.FgRed),
		yellow:   color.New(color.FgYellow),
	}
}

// printf keeps the first write error; later writes become no-ops.
func (p *Presenter) printf(c *color.Color, format string, args ...any) {
	if p.err != nil {
		return
	}
	var err error
	if c == nil {
		_, err = fmt.Fprintf(p.w, format, args...)
	} else {
		_, err = c.Fprintf(p.w, format, args...)
	}
	if err != nil {
		p.err = fmt.Errorf("failed to write to stdout: %w", err)
	}
}

func (p *Presenter) flush() error {
	err := p.err
	p.err = nil
	return err
}

func (p *Presenter) formatTime(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.In(p.location).Format(dateLayout)
}

func (p *Presenter) item(item repetition.ScheduleItem) {
	p.printf(p.bold, "%s", item.Name)
	p.printf(nil, " (%s, #%d)", item.Slug, item.ItemID)
	p.printf(p.faint, "  level %d, %d%% retention, due %s\n",
		item.ReviewLevel, repetition.RetentionEstimate(item.ReviewLevel), p.formatTime(item.DueDate))
}

// PrintScheduled reports a newly scheduled item.
func (p *Presenter) PrintScheduled(item repetition.ScheduleItem) error {
	p.printf(p.green, "Scheduled ")
	p.item(item)
	return p.flush()
}

// PrintAlreadyScheduled reports an add that found the item on the schedule.
func (p *Presenter) PrintAlreadyScheduled(identifier string) error {
	p.printf(p.yellow, "Already scheduled ")
	p.printf(nil, "%s\n", identifier)
	return p.flush()
}

// PrintRemoved reports an unscheduled item.
func (p *Presenter) PrintRemoved(item repetition.ScheduleItem) error {
	p.printf(p.yellow, "Removed ")
	p.item(item)
	return p.flush()
}

// PrintItems lists items under a title.
func (p *Presenter) PrintItems(title string, items []repetition.ScheduleItem) error {
	p.printf(p.bold, "%s (%d)\n", title, len(items))
	if len(items) == 0 {
		p.printf(p.faint, "  nothing to review\n")
	}
	for _, item := range items {
		p.printf(nil, "  ")
		p.item(item)
	}
	return p.flush()
}

// PrintBuckets lists every bucket of a schedule.
func (p *Presenter) PrintBuckets(buckets repetition.Buckets) error {
	sections := []struct {
		title string
		items []repetition.ScheduleItem
	}{
		{"Due today", buckets.DueToday},
		{"Due this week", buckets.DueThisWeek},
		{"Due this month", buckets.DueThisMonth},
		{"Due later", buckets.DueLater},
	}
	for i, section := range sections {
		if i > 0 {
			p.printf(nil, "\n")
		}
		if err := p.PrintItems(section.title, section.items); err != nil {
			return err
		}
	}
	return nil
}

// PrintAvailable lists completed items that can be scheduled.
func (p *Presenter) PrintAvailable(refs []repetition.ReviewableRef) error {
	p.printf(p.bold, "Available to add (%d)\n", len(refs))
	for _, ref := range refs {
		p.printf(nil, "  %d\t%s\t%s", ref.ItemID, ref.Slug, ref.Name)
		if ref.Difficulty != "" || ref.Topic != "" {
			p.printf(p.faint, "\t%s", strings.Trim(ref.Difficulty+" / "+ref.Topic, " /"))
		}
		p.printf(nil, "\n")
	}
	return p.flush()
}

// PrintReviewResult shows the outcome of a submitted review.
func (p *Presenter) PrintReviewResult(result scheduler.ReviewResult) error {
	if result.Entry.WasSuccessful {
		p.printf(nil, "✅ ")
		p.printf(p.green, "Level %d -> %d", result.Entry.LevelBefore, result.Entry.LevelAfter)
	} else {
		p.printf(nil, "❌ ")
		p.printf(p.red, "Level %d -> %d", result.Entry.LevelBefore, result.Entry.LevelAfter)
	}
	p.printf(nil, ", next review %s\n", p.formatTime(result.Item.DueDate))
	return p.flush()
}

// PrintPreview shows what a review would do.
func (p *Presenter) PrintPreview(preview scheduler.Preview, successful bool) error {
	outcome := "success"
	if !successful {
		outcome = "failure"
	}
	p.printf(p.bold, "%s", preview.Item.Name)
	p.printf(nil, " on %s: level %d -> %d, due %s, %d%% retention\n",
		outcome, preview.LevelBefore, preview.LevelAfter, p.formatTime(&preview.DueDate), preview.RetentionPercent)
	return p.flush()
}

// PrintHistory lists the reviews of one item.
func (p *Presenter) PrintHistory(item repetition.ScheduleItem, entries []repetition.ReviewHistoryEntry) error {
	p.item(item)
	if len(entries) == 0 {
		p.printf(p.faint, "  not reviewed yet\n")
	}
	for _, entry := range entries {
		mark, c := "✅", p.green
		if !entry.WasSuccessful {
			mark, c = "❌", p.red
		}
		p.printf(nil, "  %s %s ", mark, p.formatTime(&entry.ReviewedAt))
		p.printf(c, "%d -> %d", entry.LevelBefore, entry.LevelAfter)
		if entry.ReviewOption != repetition.ReviewOptionNone {
			p.printf(p.italic, " (%s)", entry.ReviewOption)
		}
		p.printf(nil, "\n")
	}
	return p.flush()
}

// PrintStats shows the review statistics.
func (p *Presenter) PrintStats(stats statistics.Stats) error {
	p.printf(p.bold, "Statistics\n")
	p.printf(nil, "  Scheduled items:        %d\n", stats.TotalItems)
	p.printf(nil, "  Reviewed at least once: %d\n", stats.TotalReviewed)
	p.printf(nil, "  Due now:                %d\n", stats.DueNow)
	p.printf(nil, "  Due this week:          %d\n", stats.DueThisWeek)
	p.printf(nil, "  Reviews today:          %d\n", stats.CompletedToday)
	p.printf(nil, "  Reviews (7 days):       %d\n", stats.CompletedThisWeek)
	p.printf(nil, "  Reviews (30 days):      %d\n", stats.CompletedThisMonth)
	p.printf(nil, "  Reviews (all time):     %d\n", stats.TotalReviews)

	levels := make([]int, 0, len(stats.ByLevel))
	for level := range stats.ByLevel {
		levels = append(levels, level)
	}
	sort.Ints(levels)
	p.printf(p.bold, "Items by level\n")
	for _, level := range levels {
		p.printf(nil, "  %d: %s %d\n", level, strings.Repeat("■", stats.ByLevel[level]), stats.ByLevel[level])
	}
	return p.flush()
}

// PrintLadder shows the interval and retention of every level.
func (p *Presenter) PrintLadder(rungs []repetition.Rung) error {
	p.printf(p.bold, "Level\tInterval\tRetention\n")
	for _, rung := range rungs {
		p.printf(nil, "%d\t%d days\t%d%%\n", rung.Level, rung.IntervalDays, rung.RetentionPercent)
	}
	return p.flush()
}

// PrintExport reports the files of an export.
func (p *Presenter) PrintExport(result *datasync.ExportResult) error {
	p.printf(p.green, "Exported %d schedule items and %d reviews to %s\n",
		result.ScheduleItems, result.ReviewHistory, result.Directory)
	return p.flush()
}
