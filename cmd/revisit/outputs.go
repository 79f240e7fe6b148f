package main

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/at-ishikawa/revisit/internal/datasync"
	"github.com/at-ishikawa/revisit/internal/report"
)

func newExportCommand() *cobra.Command {
	var outputDir string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the schedule and review history as YAML files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnvironment(cmd, func(env *environment, userID string) error {
				if outputDir == "" {
					outputDir = env.cfg.Outputs.ExportDirectory
				}
				if outputDir == "" {
					return errors.New("no export directory: pass --output or set outputs.export_directory")
				}

				result, err := datasync.NewExporter(env.repo, outputDir).Export(cmd.Context(), userID)
				if err != nil {
					return fmt.Errorf("exporter.Export() > %w", err)
				}
				return env.presenter.PrintExport(result)
			})
		},
	}
	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "output directory (defaults to outputs.export_directory)")
	return cmd
}

func newReportCommand() *cobra.Command {
	var generatePDF bool

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Write a markdown review report, optionally converted to PDF",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnvironment(cmd, func(env *environment, userID string) error {
				outputDir := env.cfg.Outputs.ReportDirectory
				if outputDir == "" {
					return errors.New("outputs.report_directory is not configured")
				}

				generator := report.NewGenerator(env.service, env.cfg.Outputs.ReportTemplate, outputDir, env.location, slog.Default())
				result, err := generator.Generate(cmd.Context(), userID, generatePDF)
				if err != nil {
					return fmt.Errorf("generator.Generate() > %w", err)
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Markdown: %s\n", result.MarkdownPath)
				if result.PDFPath != "" {
					fmt.Fprintf(out, "PDF: %s\n", result.PDFPath)
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&generatePDF, "pdf", false, "also convert the report to PDF")
	return cmd
}
