// Package formatter renders run reports as markdown with aligned tables.
package formatter

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/mattn/go-runewidth"

	"reshape/internal/integrity"
	"reshape/pkg/utils"
)

const (
	minColumnWidth = 3
	// maxFindingLength caps one listed error or warning
	maxFindingLength = 300
)

// Align re-aligns every markdown table in content; other lines are kept as is.
func Align(content string) string {
	lines := strings.Split(content, "\n")

	var formattedLines []string

	var tableBuffer []string

	for i := 0; i < len(lines); i++ {
		line := lines[i]
		trimmedLine := strings.TrimSpace(line)

		// Simple heuristic: starts and ends with |
		if strings.HasPrefix(trimmedLine, "|") && strings.HasSuffix(trimmedLine, "|") {
			tableBuffer = append(tableBuffer, line)

			continue
		}

		if len(tableBuffer) > 0 {
			formattedLines = append(formattedLines, processTable(tableBuffer)...)
			tableBuffer = nil
		}

		formattedLines = append(formattedLines, line)
	}

	if len(tableBuffer) > 0 {
		formattedLines = append(formattedLines, processTable(tableBuffer)...)
	}

	return strings.Join(formattedLines, "\n")
}

// Table renders header and rows as an aligned markdown table. Pipes inside cells are
// escaped.
func Table(header []string, rows [][]string) string {
	table := make([][]string, 0, len(rows)+2)
	table = append(table, escapeCells(header), nil)

	for _, row := range rows {
		table = append(table, escapeCells(row))
	}

	return strings.Join(render(table, 1), "\n")
}

func escapeCells(cells []string) []string {
	out := make([]string, len(cells))
	for i, c := range cells {
		out[i] = strings.ReplaceAll(c, "|", `\|`)
	}

	return out
}

func processTable(rows []string) []string {
	// A single line cannot be a table (needs header and separator)
	if len(rows) < 2 {
		return rows
	}

	table := make([][]string, 0, len(rows))

	for _, row := range rows {
		parts := strings.Split(row, "|")

		// Leading and trailing pipes leave empty parts
		if len(parts) > 0 && strings.TrimSpace(parts[0]) == "" {
			parts = parts[1:]
		}

		if len(parts) > 0 && strings.TrimSpace(parts[len(parts)-1]) == "" {
			parts = parts[:len(parts)-1]
		}

		cells := make([]string, 0, len(parts))
		for _, p := range parts {
			cells = append(cells, strings.TrimSpace(p))
		}

		table = append(table, cells)
	}

	separatorRowIdx := -1
	if isSeparator(table[1]) {
		separatorRowIdx = 1
	}

	return render(table, separatorRowIdx)
}

func isSeparator(cells []string) bool {
	for _, cell := range cells {
		trim := strings.TrimSpace(cell)
		trim = strings.ReplaceAll(trim, "-", "")
		trim = strings.ReplaceAll(trim, ":", "") // alignment :--- or ---:
		trim = strings.ReplaceAll(trim, " ", "")

		if trim != "" {
			return false
		}
	}

	return true
}

// render pads every cell to its column's display width. The separator row is
// rebuilt from dashes.
func render(table [][]string, separatorRowIdx int) []string {
	colCount := 0
	for _, row := range table {
		colCount = max(colCount, len(row))
	}

	colWidths := make([]int, colCount)

	for rIdx, row := range table {
		if rIdx == separatorRowIdx {
			continue
		}

		for i, cell := range row {
			colWidths[i] = max(colWidths[i], runewidth.StringWidth(cell))
		}
	}

	for i := range colWidths {
		colWidths[i] = max(colWidths[i], minColumnWidth)
	}

	result := make([]string, 0, len(table))

	for i, row := range table {
		var sb strings.Builder

		sb.WriteString("|")

		for j := 0; j < colCount; j++ {
			sb.WriteString(" ")

			if i == separatorRowIdx {
				sb.WriteString(strings.Repeat("-", colWidths[j]))
			} else {
				content := ""
				if j < len(row) {
					content = row[j]
				}

				sb.WriteString(content)

				if padding := colWidths[j] - runewidth.StringWidth(content); padding > 0 {
					sb.WriteString(strings.Repeat(" ", padding))
				}
			}

			sb.WriteString(" |")
		}

		result = append(result, sb.String())
	}

	return result
}

// Report renders integrity reports: per layout its status, the row counts and the first
// maxReported errors and warnings. maxReported <= 0 lists everything.
func Report(reports []*integrity.Report, maxReported int) string {
	var sb strings.Builder

	sb.WriteString("# Integrity report\n")

	for _, r := range reports {
		status := "PASSED"
		if !r.Passed() {
			status = "FAILED"
		}

		fmt.Fprintf(&sb, "\n## %s: %s\n\n", r.Layout, status)

		rows := make([][]string, 0, len(r.Counts))
		for _, table := range slices.Sorted(maps.Keys(r.Counts)) {
			rows = append(rows, []string{table, fmt.Sprint(r.Counts[table])})
		}

		sb.WriteString(Table([]string{"Table", "Rows"}, rows))
		sb.WriteString("\n")

		writeFindings(&sb, "Errors", r.Errors, maxReported)
		writeFindings(&sb, "Warnings", r.Warnings, maxReported)
	}

	return sb.String()
}

func writeFindings(sb *strings.Builder, title string, errs []error, limit int) {
	if len(errs) == 0 {
		return
	}

	fmt.Fprintf(sb, "\n### %s (%d)\n\n", title, len(errs))

	shown := errs
	if limit > 0 && len(errs) > limit {
		shown = errs[:limit]
	}

	for _, err := range shown {
		fmt.Fprintf(sb, "- [%s] %s\n", integrity.KindOf(err), utils.TruncateString(utils.NormalizeWhitespace(err.Error()), maxFindingLength))
	}

	if rest := len(errs) - len(shown); rest > 0 {
		fmt.Fprintf(sb, "- ... and %d more\n", rest)
	}
}

// Loads renders the rows written per store and table, sorted.
func Loads(loads map[string]map[string]int) string {
	var rows [][]string

	for _, store := range slices.Sorted(maps.Keys(loads)) {
		for _, table := range slices.Sorted(maps.Keys(loads[store])) {
			rows = append(rows, []string{store, table, fmt.Sprint(loads[store][table])})
		}
	}

	return Table([]string{"Store", "Table", "Rows"}, rows)
}
