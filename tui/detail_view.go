// ABOUTME: Contact detail screen for the sales console
// ABOUTME: Shows profile fields, contact points, case history with roles, courses, and webinars
package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"salesdesk/editor"
)

var (
	fieldLabelStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170")).
			Width(20)

	fieldValueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	sectionStyle = lipgloss.NewStyle().Bold(true)
)

func (m Model) renderDetailView() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render("CONTACT"))
	s.WriteString("\n\n")

	if m.err != nil {
		s.WriteString(errorStyle.Render(m.err.Error()))
		s.WriteString("\n\n")
		s.WriteString(m.renderDetailHelp())
		return s.String()
	}
	if m.detail == nil {
		s.WriteString("Loading...\n\n")
		s.WriteString(m.renderDetailHelp())
		return s.String()
	}

	contact := m.detail

	s.WriteString(m.renderField("Name", contact.DisplayName()))
	s.WriteString(m.renderField("Title", contact.Title))
	s.WriteString(m.renderField("Job Title", contact.JobTitle))
	s.WriteString(m.renderField("Location", contact.Location))
	s.WriteString(m.renderField("Classification", contact.Classification))
	if contact.LifecycleStage > 0 {
		s.WriteString(m.renderField("Lifecycle Stage", fmt.Sprintf("%d", contact.LifecycleStage)))
	}
	s.WriteString(m.renderField("Persona", contact.Persona))
	if len(contact.Roles) > 0 {
		s.WriteString(m.renderField("Roles", strings.Join(contact.Roles, ", ")))
	}
	s.WriteString(m.renderField("Notes", contact.Notes))

	s.WriteString("\n")
	s.WriteString(sectionStyle.Render("CONTACT POINTS"))
	s.WriteString("\n")
	for _, e := range contact.Emails {
		s.WriteString(renderEntryLine(e.Address, e.Primary))
	}
	for _, p := range contact.Phones {
		s.WriteString(renderEntryLine(editor.FormatPhone(p.Number), p.Primary))
	}
	for _, c := range contact.Companies {
		s.WriteString(renderEntryLine(c.Name, c.Primary))
	}

	if len(m.detailCases) > 0 {
		s.WriteString("\n")
		s.WriteString(sectionStyle.Render("CASES"))
		s.WriteString("\n")
		for _, c := range m.detailCases {
			line := fmt.Sprintf("  • %s (%s)", c.Title, c.Stage)
			if len(c.Roles) > 0 {
				line += " — " + strings.Join(c.Roles, ", ")
			}
			s.WriteString(line)
			s.WriteString("\n")
		}
	}

	if len(m.detailCourses) > 0 {
		s.WriteString("\n")
		s.WriteString(sectionStyle.Render("COURSES"))
		s.WriteString("\n")
		for _, course := range m.detailCourses {
			s.WriteString(fmt.Sprintf("  • %s (%s)\n", course.Title, course.Status))
		}
	}

	if len(m.detailWeb) > 0 {
		s.WriteString("\n")
		s.WriteString(sectionStyle.Render("WEBINARS"))
		s.WriteString("\n")
		for _, w := range m.detailWeb {
			attended := ""
			if w.Attended {
				attended = " ✓"
			}
			s.WriteString(fmt.Sprintf("  • %s (%s)%s\n", w.Title, w.StartsAt.Format("2006-01-02"), attended))
		}
	}

	s.WriteString("\n")
	s.WriteString(m.renderDetailHelp())

	return s.String()
}

func renderEntryLine(value string, primary bool) string {
	if value == "" {
		return ""
	}
	marker := " "
	if primary {
		marker = "★"
	}
	return fmt.Sprintf("  %s %s\n", marker, value)
}

func (m Model) renderField(label, value string) string {
	if value == "" {
		value = "-"
	}
	return fmt.Sprintf("%s %s\n",
		fieldLabelStyle.Render(label+":"),
		fieldValueStyle.Render(value))
}

func (m Model) renderDetailHelp() string {
	help := []string{
		"Esc: Back",
		"e: Edit",
		"r: Refresh",
		"q: Quit",
	}
	return helpStyle.Render(strings.Join(help, " • "))
}

func (m Model) handleDetailKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.viewMode = ViewList
		m.err = nil
	case "e":
		return m.openEditor(m.selectedID)
	case "r":
		return m, m.loadDetail(m.selectedID)
	case "q":
		return m, tea.Quit
	}

	return m, nil
}
