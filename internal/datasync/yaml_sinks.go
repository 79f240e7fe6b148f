package datasync

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/at-ishikawa/revisit/internal/repetition"
)

const exportTimeFormat = time.RFC3339

type exportScheduleItem struct {
	ID             string `yaml:"id"`
	ItemID         int64  `yaml:"item_id"`
	Slug           string `yaml:"slug"`
	Name           string `yaml:"name"`
	Difficulty     string `yaml:"difficulty,omitempty"`
	Topic          string `yaml:"topic,omitempty"`
	ReviewLevel    int    `yaml:"review_level"`
	LastReviewedAt string `yaml:"last_reviewed_at,omitempty"`
	DueDate        string `yaml:"due_date,omitempty"`
	CreatedAt      string `yaml:"created_at"`
}

// YAMLScheduleSink writes schedule items to schedule_items.yml.
type YAMLScheduleSink struct {
	outputDir string
}

func NewYAMLScheduleSink(outputDir string) *YAMLScheduleSink {
	return &YAMLScheduleSink{outputDir: outputDir}
}

func (s *YAMLScheduleSink) WriteAll(items []repetition.ScheduleItem) error {
	if err := os.MkdirAll(s.outputDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	out := make([]exportScheduleItem, len(items))
	for i, item := range items {
		out[i] = exportScheduleItem{
			ID:             item.ID,
			ItemID:         item.ItemID,
			Slug:           item.Slug,
			Name:           item.Name,
			Difficulty:     item.Difficulty,
			Topic:          item.Topic,
			ReviewLevel:    item.ReviewLevel,
			LastReviewedAt: formatOptionalTime(item.LastReviewedAt),
			DueDate:        formatOptionalTime(item.DueDate),
			CreatedAt:      item.CreatedAt.UTC().Format(exportTimeFormat),
		}
	}

	if err := writeYAML(filepath.Join(s.outputDir, scheduleItemsFile), out); err != nil {
		return fmt.Errorf("write %s: %w", scheduleItemsFile, err)
	}
	return nil
}

type exportReviewHistory struct {
	ID             int64  `yaml:"id"`
	ScheduleItemID string `yaml:"schedule_item_id"`
	ReviewedAt     string `yaml:"reviewed_at"`
	WasSuccessful  bool   `yaml:"was_successful"`
	LevelBefore    int    `yaml:"level_before"`
	LevelAfter     int    `yaml:"level_after"`
	ReviewOption   string `yaml:"review_option,omitempty"`
}

// YAMLHistorySink writes review history entries to review_history.yml.
type YAMLHistorySink struct {
	outputDir string
}

func NewYAMLHistorySink(outputDir string) *YAMLHistorySink {
	return &YAMLHistorySink{outputDir: outputDir}
}

func (s *YAMLHistorySink) WriteAll(entries []repetition.ReviewHistoryEntry) error {
	if err := os.MkdirAll(s.outputDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	out := make([]exportReviewHistory, len(entries))
	for i, entry := range entries {
		out[i] = exportReviewHistory{
			ID:             entry.ID,
			ScheduleItemID: entry.ScheduleItemID,
			ReviewedAt:     entry.ReviewedAt.UTC().Format(exportTimeFormat),
			WasSuccessful:  entry.WasSuccessful,
			LevelBefore:    entry.LevelBefore,
			LevelAfter:     entry.LevelAfter,
			ReviewOption:   string(entry.ReviewOption),
		}
	}

	if err := writeYAML(filepath.Join(s.outputDir, reviewHistoryFile), out); err != nil {
		return fmt.Errorf("write %s: %w", reviewHistoryFile, err)
	}
	return nil
}

func formatOptionalTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(exportTimeFormat)
}
