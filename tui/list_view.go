// ABOUTME: Tabbed list screens for the sales console
// ABOUTME: Renders contact, case, course, webinar, and messaging rule tables
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
)

func (m Model) renderListView() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render("SALESDESK"))
	s.WriteString("\n\n")

	s.WriteString(m.renderTabs())
	s.WriteString("\n\n")

	if m.searching {
		s.WriteString("/" + m.searchInput.View())
		s.WriteString("\n\n")
	}

	s.WriteString(m.renderTable())
	s.WriteString("\n")

	if m.err != nil {
		s.WriteString(errorStyle.Render(m.err.Error()))
		s.WriteString("\n")
	}

	s.WriteString(m.renderListHelp())

	return s.String()
}

func (m Model) renderTabs() string {
	tabs := []string{"Contacts", "Cases", "Courses", "Webinars", "Rules"}
	var rendered []string

	for i, tab := range tabs {
		if EntityType(i) == m.entityType {
			rendered = append(rendered, tabActiveStyle.Render(tab))
		} else {
			rendered = append(rendered, tabInactiveStyle.Render(tab))
		}
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

func (m Model) renderTable() string {
	switch m.entityType {
	case EntityContacts:
		return m.renderContactsTable()
	case EntityCases:
		return m.renderCasesTable()
	case EntityCourses:
		return m.renderCoursesTable()
	case EntityWebinars:
		return m.renderWebinarsTable()
	case EntityRules:
		return m.renderRulesTable()
	}
	return ""
}

func (m Model) renderContactsTable() string {
	columns := []table.Column{
		{Title: "Name", Width: 28},
		{Title: "Email", Width: 28},
		{Title: "Company", Width: 20},
		{Title: "Stage", Width: 6},
	}

	var rows []table.Row
	for i := range m.contacts {
		contact := &m.contacts[i]
		stage := ""
		if contact.LifecycleStage > 0 {
			stage = fmt.Sprintf("%d", contact.LifecycleStage)
		}
		rows = append(rows, table.Row{
			contact.DisplayName(),
			contact.Email,
			contact.CompanyName,
			stage,
		})
	}

	return m.buildTable(columns, rows)
}

func (m Model) renderCasesTable() string {
	columns := []table.Column{
		{Title: "Title", Width: 32},
		{Title: "Stage", Width: 15},
		{Title: "Amount", Width: 12},
	}

	var rows []table.Row
	for _, c := range m.cases {
		amount := ""
		if c.Amount > 0 {
			amount = fmt.Sprintf("%s %d", c.Currency, c.Amount/100)
		}
		rows = append(rows, table.Row{c.Title, c.Stage, amount})
	}

	return m.buildTable(columns, rows)
}

func (m Model) renderCoursesTable() string {
	if m.selectedID == uuid.Nil {
		return helpStyle.Render("Open a contact first to see course enrollments.")
	}

	columns := []table.Column{
		{Title: "Title", Width: 40},
		{Title: "Status", Width: 15},
		{Title: "Enrolled", Width: 12},
	}

	var rows []table.Row
	for _, course := range m.courses {
		enrolled := ""
		if course.EnrolledAt != nil {
			enrolled = course.EnrolledAt.Format("2006-01-02")
		}
		rows = append(rows, table.Row{course.Title, course.Status, enrolled})
	}

	return m.buildTable(columns, rows)
}

func (m Model) renderWebinarsTable() string {
	if m.selectedID == uuid.Nil {
		return helpStyle.Render("Open a contact first to see webinar attendance.")
	}

	columns := []table.Column{
		{Title: "Title", Width: 40},
		{Title: "Starts", Width: 16},
		{Title: "Attended", Width: 8},
	}

	var rows []table.Row
	for _, w := range m.webinars {
		attended := "no"
		if w.Attended {
			attended = "yes"
		}
		rows = append(rows, table.Row{w.Title, w.StartsAt.Format("2006-01-02 15:04"), attended})
	}

	return m.buildTable(columns, rows)
}

func (m Model) renderRulesTable() string {
	columns := []table.Column{
		{Title: "Name", Width: 30},
		{Title: "Channel", Width: 10},
		{Title: "Audience", Width: 20},
		{Title: "Active", Width: 6},
	}

	var rows []table.Row
	for _, rule := range m.rules {
		active := "no"
		if rule.Active {
			active = "yes"
		}
		rows = append(rows, table.Row{rule.Name, rule.Channel, rule.Audience, active})
	}

	return m.buildTable(columns, rows)
}

func (m Model) buildTable(columns []table.Column, rows []table.Row) string {
	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(m.height-10),
	)

	if m.selectedRow < len(rows) {
		t.SetCursor(m.selectedRow)
	}

	return t.View()
}

func (m Model) renderListHelp() string {
	help := []string{
		"↑/↓: Navigate",
		"Tab: Switch tabs",
		"Enter: View details",
		"/: Search",
		"n: New contact",
		"e: Edit",
		"r: Refresh",
		"q: Quit",
	}
	return helpStyle.Render(strings.Join(help, " • "))
}

func (m Model) handleListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.searching {
		return m.handleSearchKeys(msg)
	}

	switch msg.String() {
	case "up", "k":
		if m.selectedRow > 0 {
			m.selectedRow--
		}
	case "down", "j":
		m.selectedRow++
	case "tab":
		m.entityType = (m.entityType + 1) % entityTabCount
		m.selectedRow = 0
		m.err = nil
		return m, m.loadTab()
	case "enter":
		if m.entityType == EntityContacts {
			if id := m.selectedContactID(); id != uuid.Nil {
				m.selectedID = id
				m.viewMode = ViewDetail
				m.detail = nil
				return m, m.loadDetail(id)
			}
		}
	case "e":
		if m.entityType == EntityContacts {
			if id := m.selectedContactID(); id != uuid.Nil {
				return m.openEditor(id)
			}
		}
	case "n":
		if m.entityType == EntityContacts {
			return m.openEditor(uuid.Nil)
		}
	case "/":
		m.searching = true
		m.searchInput.SetValue(m.searchQuery)
		m.searchInput.Focus()
	case "r":
		return m, m.loadTab()
	}

	return m, nil
}

func (m Model) handleSearchKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.searching = false
		m.searchQuery = m.searchInput.Value()
		m.searchInput.Blur()
		m.selectedRow = 0
		return m, m.loadContacts()
	case "esc":
		m.searching = false
		m.searchInput.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	return m, cmd
}

func (m Model) loadTab() tea.Cmd {
	switch m.entityType {
	case EntityContacts:
		return m.loadContacts()
	case EntityCases:
		return m.loadCases()
	case EntityCourses:
		return m.loadCourses()
	case EntityWebinars:
		return m.loadWebinars()
	case EntityRules:
		return m.loadRules()
	}
	return nil
}

func (m Model) selectedContactID() uuid.UUID {
	if m.selectedRow < len(m.contacts) {
		return m.contacts[m.selectedRow].ID
	}
	return uuid.Nil
}
