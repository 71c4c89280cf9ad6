package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Column defines a table column. Cells are plain text; colour comes from
// the column so padding is measured on what the terminal shows.
type Column struct {
	Title string
	Width int
	// Style picks the style of one cell. Nil renders cells as values.
	Style func(cell string) lipgloss.Style
	// Empty is shown dimmed in place of an empty cell.
	Empty string
}

// Styled returns a Column.Style that applies s to every cell.
func Styled(s lipgloss.Style) func(string) lipgloss.Style {
	return func(string) lipgloss.Style { return s }
}

type tableRow struct {
	cells   []string
	current bool
}

// Table renders lists of networks, wallets and faucets. One row may be
// marked as the current one (connected wallet, selected network); it gets
// a ▸ in the gutter and is highlighted.
type Table struct {
	columns []Column
	rows    []tableRow
}

// NewTable creates a table with the given columns.
func NewTable(cols ...Column) *Table {
	return &Table{columns: cols}
}

// AddRow appends a row. Missing trailing cells render as empty.
func (t *Table) AddRow(cells ...string) {
	t.rows = append(t.rows, tableRow{cells: cells})
}

// AddCurrentRow appends the row marked as current.
func (t *Table) AddCurrentRow(cells ...string) {
	t.rows = append(t.rows, tableRow{cells: cells, current: true})
}

// Render returns the table: header, divider, then rows.
func (t *Table) Render() string {
	header := lipgloss.NewStyle().Foreground(ColorHighlight).Bold(true)

	var sb strings.Builder
	line := func(gutter string, cells []string) {
		sb.WriteString(gutter)
		sb.WriteString(strings.Join(cells, " "))
		sb.WriteString("\n")
	}

	var cells []string
	for _, col := range t.columns {
		cells = append(cells, header.Render(fit(col.Title, col.Width)))
	}
	line("  ", cells)

	cells = cells[:0]
	for _, col := range t.columns {
		cells = append(cells, StyleDim.Render(strings.Repeat("-", col.Width)))
	}
	line("  ", cells)

	for _, row := range t.rows {
		cells = cells[:0]
		for j, col := range t.columns {
			var val string
			if j < len(row.cells) {
				val = row.cells[j]
			}
			style := StyleValue
			switch {
			case row.current:
				style = StyleSelected
			case val == "" && col.Empty != "":
				val, style = col.Empty, StyleDim
			case col.Style != nil:
				style = col.Style(val)
			}
			cells = append(cells, style.Render(fit(val, col.Width)))
		}
		gutter := "  "
		if row.current {
			gutter = StyleChain.Render("▸") + " "
		}
		line(gutter, cells)
	}
	return sb.String()
}

// fit pads s to exactly width terminal cells, cutting it with an ellipsis
// when it is too wide.
func fit(s string, width int) string {
	if w := lipgloss.Width(s); w <= width {
		return s + strings.Repeat(" ", width-w)
	}
	if width <= 0 {
		return ""
	}
	r := []rune(s)
	for len(r) > 0 && lipgloss.Width(string(r))+1 > width {
		r = r[:len(r)-1]
	}
	out := string(r) + "…"
	return out + strings.Repeat(" ", width-lipgloss.Width(out))
}

// KeyValueBlock renders a set of key-value pairs in a bordered box.
func KeyValueBlock(title string, pairs [][2]string) string {
	var sb strings.Builder
	if title != "" {
		sb.WriteString(StyleTitle.Render(title))
		sb.WriteString("\n")
	}
	for _, p := range pairs {
		key := StyleMeta.Render(fmt.Sprintf("%-20s", p[0]+":"))
		sb.WriteString("  " + key + " " + StyleValue.Render(p[1]) + "\n")
	}
	return StyleBorder.Render(sb.String())
}
