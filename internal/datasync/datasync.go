// Package datasync exports a user's schedule and review history to YAML files.
package datasync

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/at-ishikawa/revisit/internal/repetition"
)

const (
	scheduleItemsFile = "schedule_items.yml"
	reviewHistoryFile = "review_history.yml"
)

// Source is the subset of repetition.Repository an export reads from.
type Source interface {
	FindByUser(ctx context.Context, userID string) ([]repetition.ScheduleItem, error)
	FindHistoryByUser(ctx context.Context, userID string) ([]repetition.ReviewHistoryEntry, error)
}

// ExportResult tracks what an export wrote.
type ExportResult struct {
	Directory     string
	ScheduleItems int
	ReviewHistory int
}

// Exporter writes one directory per user under outputDir.
type Exporter struct {
	source    Source
	outputDir string
}

func NewExporter(source Source, outputDir string) *Exporter {
	return &Exporter{source: source, outputDir: outputDir}
}

// Export writes the user's schedule items and review history.
func (e *Exporter) Export(ctx context.Context, userID string) (*ExportResult, error) {
	if userID == "" {
		return nil, fmt.Errorf("missing user id: %w", repetition.ErrUnauthorized)
	}

	items, err := e.source.FindByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load schedule items: %w", err)
	}
	history, err := e.source.FindHistoryByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load review history: %w", err)
	}

	dir := filepath.Join(e.outputDir, userID)
	if err := NewYAMLScheduleSink(dir).WriteAll(items); err != nil {
		return nil, err
	}
	if err := NewYAMLHistorySink(dir).WriteAll(history); err != nil {
		return nil, err
	}

	return &ExportResult{
		Directory:     dir,
		ScheduleItems: len(items),
		ReviewHistory: len(history),
	}, nil
}

func writeYAML(path string, data interface{}) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	enc := yaml.NewEncoder(f)
	defer func() { _ = enc.Close() }()
	return enc.Encode(data)
}
