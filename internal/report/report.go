// Package report renders a user's review schedule as markdown and PDF.
package report

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"text/template"
	"time"

	"github.com/at-ishikawa/revisit/internal/repetition"
	"github.com/at-ishikawa/revisit/internal/statistics"
)

const dateLayout = "2006-01-02 15:04"

// ScheduleReader is the part of the scheduler a report needs.
type ScheduleReader interface {
	AllScheduled(ctx context.Context, userID string) (repetition.Buckets, error)
	Stats(ctx context.Context, userID string) (statistics.Stats, error)
}

// Data is what the report template renders.
type Data struct {
	UserID      string
	GeneratedAt string
	Timezone    string
	Stats       statistics.Stats
	Levels      []LevelRow
	Sections    []Section
}

type LevelRow struct {
	repetition.Rung
	Items int
}

type Section struct {
	Title string
	Rows  []ItemRow
}

type ItemRow struct {
	Name  string
	Slug  string
	Topic string
	Level int
	Due   string
}

// NewData arranges buckets and stats for the template. Times are shown in loc.
func NewData(userID string, buckets repetition.Buckets, stats statistics.Stats, now time.Time, loc *time.Location) Data {
	if loc == nil {
		loc = time.UTC
	}

	ladder := repetition.Ladder()
	levels := make([]LevelRow, 0, len(ladder))
	for _, rung := range ladder {
		levels = append(levels, LevelRow{Rung: rung, Items: stats.ByLevel[rung.Level]})
	}

	return Data{
		UserID:      userID,
		GeneratedAt: now.In(loc).Format(dateLayout),
		Timezone:    loc.String(),
		Stats:       stats,
		Levels:      levels,
		Sections: []Section{
			newSection("Due today", buckets.DueToday, loc),
			newSection("Due this week", buckets.DueThisWeek, loc),
			newSection("Due this month", buckets.DueThisMonth, loc),
			newSection("Due later", buckets.DueLater, loc),
		},
	}
}

func newSection(title string, items []repetition.ScheduleItem, loc *time.Location) Section {
	rows := make([]ItemRow, 0, len(items))
	for _, item := range items {
		due := "-"
		if item.DueDate != nil {
			due = item.DueDate.In(loc).Format(dateLayout)
		}
		rows = append(rows, ItemRow{
			Name:  item.Name,
			Slug:  item.Slug,
			Topic: item.Topic,
			Level: item.ReviewLevel,
			Due:   due,
		})
	}
	return Section{Title: title, Rows: rows}
}

// Render writes the report as markdown.
func Render(w io.Writer, tmpl *template.Template, data Data) error {
	if err := tmpl.Execute(w, data); err != nil {
		return fmt.Errorf("tmpl.Execute() > %w", err)
	}
	return nil
}

// Result lists the files a Generator wrote.
type Result struct {
	MarkdownPath string
	PDFPath      string
}

// Generator writes <outputDir>/<userID>.md and optionally a PDF of it.
type Generator struct {
	reader       ScheduleReader
	templatePath string
	outputDir    string
	now          func() time.Time
	location     *time.Location
	logger       *slog.Logger
}

func NewGenerator(reader ScheduleReader, templatePath, outputDir string, location *time.Location, logger *slog.Logger) *Generator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{
		reader:       reader,
		templatePath: templatePath,
		outputDir:    outputDir,
		now:          time.Now,
		location:     location,
		logger:       logger,
	}
}

func (g *Generator) Generate(ctx context.Context, userID string, generatePDF bool) (Result, error) {
	buckets, err := g.reader.AllScheduled(ctx, userID)
	if err != nil {
		return Result{}, fmt.Errorf("AllScheduled() > %w", err)
	}
	stats, err := g.reader.Stats(ctx, userID)
	if err != nil {
		return Result{}, fmt.Errorf("Stats() > %w", err)
	}

	tmpl, err := ParseTemplate(g.templatePath, g.logger)
	if err != nil {
		return Result{}, err
	}

	if err := os.MkdirAll(g.outputDir, 0o755); err != nil {
		return Result{}, fmt.Errorf("os.MkdirAll(%s) > %w", g.outputDir, err)
	}
	markdownPath := filepath.Join(g.outputDir, userID+".md")
	output, err := os.Create(markdownPath)
	if err != nil {
		return Result{}, fmt.Errorf("os.Create(%s) > %w", markdownPath, err)
	}
	defer func() {
		_ = output.Close()
	}()

	data := NewData(userID, buckets, stats, g.now(), g.location)
	if err := Render(output, tmpl, data); err != nil {
		return Result{}, err
	}
	if err := output.Close(); err != nil {
		return Result{}, fmt.Errorf("close %s: %w", markdownPath, err)
	}

	result := Result{MarkdownPath: markdownPath}
	if generatePDF {
		pdfPath, err := ConvertMarkdownToPDF(markdownPath)
		if err != nil {
			return Result{}, fmt.Errorf("ConvertMarkdownToPDF(%s) > %w", markdownPath, err)
		}
		result.PDFPath = pdfPath
	}
	g.logger.InfoContext(ctx, "wrote review report", "user_id", userID, "markdown", result.MarkdownPath, "pdf", result.PDFPath)
	return result, nil
}
