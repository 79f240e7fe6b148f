package report

import (
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"text/template"
)

const embeddedTemplateName = "review-report.md.go.tmpl"

//go:embed templates/review-report.md.go.tmpl
var fallbackReportTemplate string

var templateFuncs = template.FuncMap{
	"join": strings.Join,
	"cell": markdownCell,
}

// ParseTemplate parses the template at templatePath, falling back to the
// embedded one when the path is empty, missing or unparsable.
func ParseTemplate(templatePath string, logger *slog.Logger) (*template.Template, error) {
	if templatePath != "" {
		if _, err := os.Stat(templatePath); err == nil {
			tmpl, err := template.New(filepath.Base(templatePath)).
				Funcs(templateFuncs).
				ParseFiles(templatePath)
			if err == nil {
				return tmpl, nil
			}
			logger.Warn("failed to parse a report template, using the embedded one",
				slog.String("templatePath", templatePath),
				slog.Any("error", err),
			)
		}
	}

	tmpl, err := template.New(embeddedTemplateName).
		Funcs(templateFuncs).
		Parse(fallbackReportTemplate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse embedded template: %w", err)
	}
	return tmpl, nil
}

// markdownCell keeps a value inside one table cell.
func markdownCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.Join(strings.Fields(s), " ")
}
