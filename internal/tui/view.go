package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/donaldgifford/catalog-browser/internal/filter"
)

func (m Model) View() string {
	st := m.browser.Store().Snapshot()

	var sb strings.Builder
	sb.WriteString(m.styles.Title.Render("Catalog Browser"))
	sb.WriteString("\n\n")

	sb.WriteString(m.label("Search", focusSearch))
	sb.WriteString(m.search.View())
	sb.WriteString("\n")

	sb.WriteString(m.label("Price", focusMin))
	sb.WriteString(m.minPrice.View())
	sb.WriteString(m.styles.Muted.Render(" to "))
	sb.WriteString(m.maxPrice.View())
	sb.WriteString(m.styles.Label.Render("   Sort: "))
	sb.WriteString(string(st.Sort()))
	sb.WriteString(m.styles.Label.Render("   In stock only: "))
	if st.InStockOnly() {
		sb.WriteString("yes")
	} else {
		sb.WriteString("no")
	}
	sb.WriteString("\n")

	body := lipgloss.JoinHorizontal(lipgloss.Top,
		m.styles.Panel.Render(m.categoryList(st)),
		m.styles.Panel.Render(m.table.View()),
	)
	sb.WriteString(body)
	sb.WriteString("\n")

	sb.WriteString(m.statusLine())
	sb.WriteString(m.styles.Footer.Render(m.help.View(m.keys)))
	return sb.String()
}

func (m Model) label(text string, f focus) string {
	style := m.styles.Label
	if m.focus == f || (f == focusMin && m.focus == focusMax) {
		style = m.styles.Focused
	}
	return style.Render(fmt.Sprintf("%-8s", text+":"))
}

func (m Model) categoryList(st filter.State) string {
	var sb strings.Builder
	title := m.styles.Label
	if m.focus == focusCategories {
		title = m.styles.Focused
	}
	sb.WriteString(title.Render("Categories"))
	sb.WriteString("\n")

	if len(m.categories) == 0 {
		sb.WriteString(m.styles.Muted.Render("none"))
		return sb.String()
	}

	for i, name := range m.categories {
		cursor := "  "
		if m.focus == focusCategories && i == m.cursor {
			cursor = "> "
		}
		box := "[ ] "
		line := name
		if st.HasCategory(name) {
			box = "[x] "
			line = m.styles.Selected.Render(name)
		}
		sb.WriteString(cursor + box + line + "\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}

func (m Model) statusLine() string {
	switch {
	case m.errText != "":
		return m.styles.Error.Render(m.errText)
	case m.loading:
		return m.spinner.View() + m.styles.Status.Render(" loading...")
	case len(m.products) == 0 && m.status != "":
		return m.styles.Status.Render("no products match the current filters")
	default:
		return m.styles.Status.Render(m.status)
	}
}
