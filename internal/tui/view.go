package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	ltable "github.com/charmbracelet/lipgloss/table"

	"github.com/roach88/fxrelay/internal/table"
)

// chromeLines is the height taken by everything except table rows: title,
// table top border, header, header separator, bottom border, status, help.
const chromeLines = 7

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder
	b.WriteString(m.titleLine())
	b.WriteString("\n")
	b.WriteString(m.renderTable())
	b.WriteString("\n")
	if m.modal != nil {
		b.WriteString(m.modal.view())
		b.WriteString("\n")
	}
	b.WriteString(m.statusLine())
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m Model) titleLine() string {
	parts := []string{titleStyle.Render("fxrelay")}
	if m.dryRun {
		parts = append(parts, dryRunBadge.Render("DRY RUN"))
	}
	parts = append(parts, mutedStyle.Render(fmt.Sprintf("%d aliases", m.ctl.Len())))
	if m.sortCol != "" {
		dir := "↑"
		if m.sortDsc {
			dir = "↓"
		}
		if col, ok := m.ctl.Column(m.sortCol); ok {
			parts = append(parts, mutedStyle.Render(fmt.Sprintf("sorted by %s %s", col.Label, dir)))
		}
	}
	return strings.Join(parts, "  ")
}

func (m Model) statusLine() string {
	var parts []string
	if m.ctl.Busy() {
		parts = append(parts, m.spinner.View()+" working")
	}
	if m.notice.text != "" {
		if m.notice.err {
			parts = append(parts, errorStyle.Render(m.notice.text))
		} else {
			parts = append(parts, noticeStyle.Render(m.notice.text))
		}
	}
	return strings.Join(parts, "  ")
}

// visibleRange returns the slice of rows that fits the window with the
// cursor row on screen.
func (m Model) visibleRange(total, cursor int) (start, end int) {
	if m.height <= 0 {
		return 0, total
	}
	room := m.height - chromeLines
	if room < 1 {
		room = 1
	}
	if cursor >= room {
		start = cursor - room + 1
	}
	end = start + room
	if end > total {
		end = total
	}
	return start, end
}

func (m Model) renderTable() string {
	cols := m.ctl.Columns()
	rows := m.ctl.Rows()
	cur := m.ctl.Cursor()

	headers := make([]string, len(cols))
	for i, c := range cols {
		headers[i] = c.Label
	}

	start, end := m.visibleRange(len(rows), cur.Row)
	visible := rows[start:end]

	t := ltable.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Headers(headers...)
	for _, r := range visible {
		cells := make([]string, len(cols))
		for i, c := range cols {
			if c.Kind == table.KindBlocking {
				cells[i] = BlockingLabel(r.Alias.Blocking())
			} else {
				cells[i] = r.Cells[i]
			}
		}
		t.Row(cells...)
	}

	t.StyleFunc(func(row, col int) lipgloss.Style {
		if row == ltable.HeaderRow {
			return headerStyle
		}
		s := cellStyle
		if row < 0 || row >= len(visible) || col < 0 || col >= len(cols) {
			return s
		}
		if cols[col].Kind == table.KindBlocking {
			s = blockingStyle(visible[row].Alias.Blocking()).Padding(0, 1)
		}
		if start+row == cur.Row && col == cur.Col {
			s = s.Reverse(true)
		}
		return s
	})

	if len(rows) == 0 {
		return t.String() + "\n" + mutedStyle.Render("no aliases; ctrl+n creates one")
	}
	return t.String()
}
