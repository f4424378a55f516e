package process

import (
	_ "embed"
	"fmt"
	"html/template"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/lepinkainen/orpheus/internal/report"
)

//go:embed template.html
var reportTemplateText string

var reportTemplate = template.Must(template.New("report").Parse(reportTemplateText))

// reportPage is the template context for one HTML page.
type reportPage struct {
	Title      string
	PageIndex  int
	TotalPages int
	PrevFile   string
	NextFile   string
	Albums     []Album
}

// writeHTMLReport renders the paginated album grid into the report
// directory. A single page keeps the bare name; additional pages get a
// _page_N suffix.
func writeHTMLReport(albums []Album, pageSize int) error {
	pages := report.Paginate(albums, pageSize)
	if len(pages) == 0 {
		slog.Info("No albums to render, skipping HTML report")
		return nil
	}

	for _, page := range pages {
		data := reportPage{
			Title:      outputName,
			PageIndex:  page.Index,
			TotalPages: page.TotalPages,
			Albums:     page.Records,
		}
		if page.Index > 1 {
			data.PrevFile = pageFileName(outputName, page.Index-1, page.TotalPages)
		}
		if page.Index < page.TotalPages {
			data.NextFile = pageFileName(outputName, page.Index+1, page.TotalPages)
		}

		path := filepath.Join(reportDir, pageFileName(outputName, page.Index, page.TotalPages))
		if err := renderReportPage(path, data); err != nil {
			return err
		}
		slog.Debug("Wrote report page", "path", path, "albums", len(page.Records))
	}

	slog.Info("Wrote HTML report", "pages", len(pages), "dir", reportDir)
	return nil
}

func renderReportPage(path string, data reportPage) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report page: %w", err)
	}
	defer func() { _ = file.Close() }()

	if err := reportTemplate.Execute(file, data); err != nil {
		return fmt.Errorf("failed to render report page: %w", err)
	}
	return nil
}

// pageFileName follows the report naming convention: a single page is
// "name.html", multiple pages are "name_page_N.html".
func pageFileName(base string, index, total int) string {
	if total <= 1 {
		return base + ".html"
	}
	return fmt.Sprintf("%s_page_%d.html", base, index)
}
