package report

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"
)

// RenderPreview renders the first limit records as a table. Numeric columns
// are right-aligned. Rounded box characters are used on terminals and plain
// ASCII elsewhere.
func RenderPreview(w io.Writer, header []string, records [][]string, limit int) string {
	if len(header) == 0 || limit <= 0 || len(records) == 0 {
		return ""
	}
	if limit > len(records) {
		limit = len(records)
	}
	shown := records[:limit]

	tw := table.NewWriter()
	if isTerminal(w) {
		tw.SetStyle(table.StyleRounded)
	} else {
		tw.SetStyle(table.StyleDefault)
	}

	headerRow := make(table.Row, len(header))
	for i, h := range header {
		headerRow[i] = h
	}
	tw.AppendHeader(headerRow)
	for _, record := range shown {
		row := make(table.Row, len(header))
		for i := range header {
			if i < len(record) {
				row[i] = record[i]
			} else {
				row[i] = ""
			}
		}
		tw.AppendRow(row)
	}

	configs := make([]table.ColumnConfig, 0, len(header))
	for i := range header {
		align := text.AlignLeft
		if numericColumn(shown, i) {
			align = text.AlignRight
		}
		configs = append(configs, table.ColumnConfig{Number: i + 1, Align: align, AlignHeader: text.AlignLeft})
	}
	tw.SetColumnConfigs(configs)
	return tw.Render()
}

// Summary formats the closing line of a job.
func Summary(rows int, noun, path string) string {
	return fmt.Sprintf("Wrote %d %s to %s", rows, noun, path)
}

func numericColumn(records [][]string, col int) bool {
	seen := false
	for _, record := range records {
		if col >= len(record) || record[col] == "" {
			continue
		}
		if _, err := strconv.ParseFloat(record[col], 64); err != nil {
			return false
		}
		seen = true
	}
	return seen
}

func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
