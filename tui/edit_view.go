// ABOUTME: Contact editor view driving the aggregate edit session
// ABOUTME: Renders scalar form fields, multi-value rows with primary markers, duplicate warnings, and case role toggles
package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"salesdesk/editor"
	"salesdesk/models"
)

// Scalar profile fields, in form order.
const (
	fieldFirstName = iota
	fieldLastName
	fieldTitle
	fieldJobTitle
	fieldLocation
	fieldClassification
	fieldLifecycle
	fieldPersona
	fieldNotes
	scalarFieldCount
)

var scalarPlaceholders = [scalarFieldCount]string{
	"First name",
	"Last name",
	"Title",
	"Job title",
	"Location",
	"Classification",
	"Lifecycle stage (1-5)",
	"Persona",
	"Notes",
}

func (m Model) openEditor(id uuid.UUID) (tea.Model, tea.Cmd) {
	m.closeSession()

	m.session = editor.NewSession(editor.Config{
		Store:    m.client,
		OnChange: m.notifyEditorChange,
	})
	m.viewMode = ViewEdit
	m.focusIndex = 0
	m.roleCursor = -1
	m.statusMsg = ""
	m.err = nil

	if id != uuid.Nil {
		m.session.BeginLoad(id)
	}
	m.rebuildForm()

	return m, nil
}

// onEditorEvent reacts to asynchronous session transitions. A completed load
// replaces the form contents; everything else just repaints.
func (m *Model) onEditorEvent() tea.Cmd {
	if m.session == nil {
		return nil
	}
	if m.session.State() == models.LoadStateLoaded && !m.formMatchesSession() {
		m.rebuildForm()
	}
	return nil
}

// formMatchesSession reports whether the form rows still line up with the
// session's collections. A fresh hydration changes the counts.
func (m *Model) formMatchesSession() bool {
	want := scalarFieldCount + m.session.Emails().Len() + m.session.Phones().Len() + m.session.Companies().Len()
	return len(m.formInputs) == want
}

// rebuildForm regenerates every textinput from session state, keeping focus
// where possible.
func (m *Model) rebuildForm() {
	contact := m.session.Contact()

	inputs := make([]textinput.Model, 0, scalarFieldCount)
	scalars := [scalarFieldCount]string{
		contact.FirstName,
		contact.LastName,
		contact.Title,
		contact.JobTitle,
		contact.Location,
		contact.Classification,
		lifecycleString(contact.LifecycleStage),
		contact.Persona,
		contact.Notes,
	}
	for i := 0; i < scalarFieldCount; i++ {
		in := textinput.New()
		in.Placeholder = scalarPlaceholders[i]
		in.CharLimit = 200
		in.SetValue(scalars[i])
		inputs = append(inputs, in)
	}

	for _, e := range m.session.Emails().Entries() {
		in := textinput.New()
		in.Placeholder = "Email"
		in.CharLimit = 100
		in.SetValue(e.Address)
		inputs = append(inputs, in)
	}
	for _, p := range m.session.Phones().Entries() {
		in := textinput.New()
		in.Placeholder = "Phone"
		in.CharLimit = 20
		in.SetValue(p.Number)
		inputs = append(inputs, in)
	}
	for _, c := range m.session.Companies().Entries() {
		in := textinput.New()
		in.Placeholder = "Company"
		in.CharLimit = 100
		in.SetValue(c.Name)
		inputs = append(inputs, in)
	}

	m.formInputs = inputs
	if m.focusIndex >= len(inputs) {
		m.focusIndex = len(inputs) - 1
	}
	m.updateFormFocus()
}

func lifecycleString(stage int) string {
	if stage == 0 {
		return ""
	}
	return strconv.Itoa(stage)
}

// Section boundaries within formInputs.
func (m Model) emailStart() int   { return scalarFieldCount }
func (m Model) phoneStart() int   { return m.emailStart() + m.session.Emails().Len() }
func (m Model) companyStart() int { return m.phoneStart() + m.session.Phones().Len() }

func (m Model) renderEditView() string {
	if m.session == nil {
		return ""
	}

	var s strings.Builder

	if m.session.EditMode() {
		s.WriteString(titleStyle.Render("EDIT CONTACT"))
	} else {
		s.WriteString(titleStyle.Render("NEW CONTACT"))
	}
	s.WriteString("\n\n")

	switch m.session.State() {
	case models.LoadStateLoading:
		s.WriteString("Loading contact...\n\n")
		s.WriteString(helpStyle.Render("Esc: Cancel"))
		return s.String()
	case models.LoadStateError:
		s.WriteString(errorStyle.Render(m.session.Err()))
		s.WriteString("\n\n")
		s.WriteString(helpStyle.Render("r: Retry • Esc: Cancel"))
		return s.String()
	}

	m.renderFormSections(&s)

	s.WriteString("\n")
	m.renderRolesPane(&s)

	if m.statusMsg != "" {
		s.WriteString("\n")
		s.WriteString(warnStyle.Render(m.statusMsg))
		s.WriteString("\n")
	}
	if m.session.Saving() {
		s.WriteString("\nSaving...\n")
	}

	s.WriteString("\n")
	s.WriteString(m.renderEditHelp())

	return s.String()
}

func (m Model) renderFormSections(s *strings.Builder) {
	for i := 0; i < scalarFieldCount; i++ {
		m.renderFormRow(s, i, "")
	}

	s.WriteString("\nEmails\n")
	for i, e := range m.session.Emails().Entries() {
		m.renderCollectionRow(s, m.emailStart()+i, e.IsPrimary())
		m.renderConflicts(s, m.session.EmailConflicts(), i)
	}

	s.WriteString("\nPhones\n")
	for i, p := range m.session.Phones().Entries() {
		m.renderCollectionRow(s, m.phoneStart()+i, p.IsPrimary())
		m.renderConflicts(s, m.session.PhoneConflicts(), i)
	}

	s.WriteString("\nCompanies\n")
	for i, c := range m.session.Companies().Entries() {
		m.renderCollectionRow(s, m.companyStart()+i, c.IsPrimary())
	}
}

func (m Model) renderFormRow(s *strings.Builder, index int, suffix string) {
	if index == m.focusIndex && m.roleCursor < 0 {
		s.WriteString("> ")
	} else {
		s.WriteString("  ")
	}
	s.WriteString(m.formInputs[index].View())
	s.WriteString(suffix)
	s.WriteString("\n")
}

func (m Model) renderCollectionRow(s *strings.Builder, index int, primary bool) {
	suffix := ""
	if primary {
		suffix = "  ★ primary"
	}
	m.renderFormRow(s, index, suffix)
}

func (m Model) renderConflicts(s *strings.Builder, d *editor.ConflictDetector, index int) {
	for _, match := range d.Result(index) {
		s.WriteString(warnStyle.Render(fmt.Sprintf("    ⚠ possible duplicate: %s", match.DisplayName())))
		s.WriteString("\n")
	}
}

func (m Model) renderRolesPane(s *strings.Builder) {
	cases := m.session.Roles().Cases()
	if len(cases) == 0 {
		return
	}

	s.WriteString("Cases\n")
	for i, c := range cases {
		cursor := "  "
		if m.roleCursor == i {
			cursor = "> "
		}
		line := fmt.Sprintf("%s%s (%s)", cursor, c.Title, c.Stage)
		if m.session.Roles().IsDirty(c.ID) {
			line += dirtyStyle.Render("  * unsaved roles")
		}
		s.WriteString(line)
		s.WriteString("\n")

		var roles []string
		for j, role := range models.CaseRoles {
			marker := " "
			if m.session.Roles().Has(c.ID, role) {
				marker = "x"
			}
			roles = append(roles, fmt.Sprintf("%d:[%s] %s", j+1, marker, role))
		}
		s.WriteString("    " + strings.Join(roles, "  "))
		s.WriteString("\n")
	}
}

func (m Model) renderEditHelp() string {
	if m.roleCursor >= 0 {
		help := []string{
			"↑/↓: Select case",
			"1-6: Toggle role",
			"Enter: Save roles",
			"Tab: Back to form",
			"Esc: Cancel",
		}
		return helpStyle.Render(strings.Join(help, " • "))
	}
	help := []string{
		"Tab: Next field",
		"ctrl+n: Add row",
		"ctrl+d: Remove row",
		"ctrl+p: Set primary",
		"ctrl+r: Cases",
		"ctrl+s: Save",
		"Esc: Cancel",
	}
	return helpStyle.Render(strings.Join(help, " • "))
}

func (m Model) handleEditKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.session == nil {
		m.viewMode = ViewList
		return m, nil
	}

	switch m.session.State() {
	case models.LoadStateLoading:
		if msg.String() == "esc" {
			return m.cancelEditor()
		}
		return m, nil
	case models.LoadStateError:
		switch msg.String() {
		case "esc":
			return m.cancelEditor()
		case "r":
			m.session.Retry()
		}
		return m, nil
	}

	if m.roleCursor >= 0 {
		return m.handleRoleKeys(msg)
	}

	switch msg.String() {
	case "esc":
		return m.cancelEditor()
	case "tab", "down":
		m.focusIndex = (m.focusIndex + 1) % len(m.formInputs)
		m.updateFormFocus()
		return m, nil
	case "shift+tab", "up":
		m.focusIndex = (m.focusIndex - 1 + len(m.formInputs)) % len(m.formInputs)
		m.updateFormFocus()
		return m, nil
	case "ctrl+n":
		return m.addCollectionRow()
	case "ctrl+d":
		return m.removeCollectionRow()
	case "ctrl+p":
		return m.setPrimaryRow()
	case "ctrl+r":
		if len(m.session.Roles().Cases()) > 0 {
			m.roleCursor = 0
			m.updateFormFocus()
		}
		return m, nil
	case "ctrl+s":
		return m, m.saveCmd()
	}

	var cmd tea.Cmd
	m.formInputs[m.focusIndex], cmd = m.formInputs[m.focusIndex].Update(msg)
	m.syncFocusedField()
	return m, cmd
}

func (m Model) handleRoleKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	cases := m.session.Roles().Cases()

	switch msg.String() {
	case "esc":
		return m.cancelEditor()
	case "tab":
		m.roleCursor = -1
		m.updateFormFocus()
		return m, nil
	case "up", "k":
		if m.roleCursor > 0 {
			m.roleCursor--
		}
		return m, nil
	case "down", "j":
		if m.roleCursor < len(cases)-1 {
			m.roleCursor++
		}
		return m, nil
	case "enter":
		if m.roleCursor < len(cases) {
			return m, m.saveRolesCmd(cases[m.roleCursor].ID)
		}
		return m, nil
	}

	// Number keys toggle roles on the selected case.
	if n, err := strconv.Atoi(msg.String()); err == nil && n >= 1 && n <= len(models.CaseRoles) {
		if m.roleCursor < len(cases) {
			m.session.Roles().Toggle(cases[m.roleCursor].ID, models.CaseRoles[n-1])
		}
	}
	return m, nil
}

func (m Model) cancelEditor() (tea.Model, tea.Cmd) {
	m.closeSession()
	m.viewMode = ViewList
	m.formInputs = nil
	m.roleCursor = -1
	return m, nil
}

// syncFocusedField writes the focused input's value back into the session so
// collection state and duplicate detection track every keystroke.
func (m *Model) syncFocusedField() {
	i := m.focusIndex
	value := m.formInputs[i].Value()

	switch {
	case i >= m.companyStart():
		row := i - m.companyStart()
		m.session.Companies().Update(row, &models.CompanyLink{Name: value})
	case i >= m.phoneStart():
		row := i - m.phoneStart()
		m.session.Phones().Update(row, &models.PhoneEntry{Number: value})
		m.session.PhoneConflicts().ValueChanged(row, value)
	case i >= m.emailStart():
		row := i - m.emailStart()
		m.session.Emails().Update(row, &models.EmailEntry{Address: value})
		m.session.EmailConflicts().ValueChanged(row, value)
	}
}

func (m Model) addCollectionRow() (tea.Model, tea.Cmd) {
	switch {
	case m.focusIndex >= m.companyStart():
		m.session.Companies().Add()
	case m.focusIndex >= m.phoneStart():
		m.session.Phones().Add()
	case m.focusIndex >= m.emailStart():
		m.session.Emails().Add()
	default:
		return m, nil
	}
	m.rebuildForm()
	return m, nil
}

func (m Model) removeCollectionRow() (tea.Model, tea.Cmd) {
	switch {
	case m.focusIndex >= m.companyStart():
		m.session.Companies().Remove(m.focusIndex - m.companyStart())
	case m.focusIndex >= m.phoneStart():
		row := m.focusIndex - m.phoneStart()
		m.session.Phones().Remove(row)
		m.session.PhoneConflicts().ValueChanged(row, "")
	case m.focusIndex >= m.emailStart():
		row := m.focusIndex - m.emailStart()
		m.session.Emails().Remove(row)
		m.session.EmailConflicts().ValueChanged(row, "")
	default:
		return m, nil
	}
	m.rebuildForm()
	return m, nil
}

func (m Model) setPrimaryRow() (tea.Model, tea.Cmd) {
	switch {
	case m.focusIndex >= m.companyStart():
		m.session.Companies().SetPrimary(m.focusIndex - m.companyStart())
	case m.focusIndex >= m.phoneStart():
		m.session.Phones().SetPrimary(m.focusIndex - m.phoneStart())
	case m.focusIndex >= m.emailStart():
		m.session.Emails().SetPrimary(m.focusIndex - m.emailStart())
	}
	return m, nil
}

func (m *Model) updateFormFocus() {
	for i := range m.formInputs {
		if i == m.focusIndex && m.roleCursor < 0 {
			m.formInputs[i].Focus()
		} else {
			m.formInputs[i].Blur()
		}
	}
}

// applyScalars copies the scalar form fields into the aggregate before a save.
func (m *Model) applyScalars() {
	stage, _ := strconv.Atoi(m.formInputs[fieldLifecycle].Value())
	if stage < 0 {
		stage = 0
	}
	if stage > models.LifecycleStageMax {
		stage = models.LifecycleStageMax
	}
	values := m.formInputs
	m.session.Apply(func(c *models.Contact) {
		c.FirstName = values[fieldFirstName].Value()
		c.LastName = values[fieldLastName].Value()
		c.Title = values[fieldTitle].Value()
		c.JobTitle = values[fieldJobTitle].Value()
		c.Location = values[fieldLocation].Value()
		c.Classification = values[fieldClassification].Value()
		c.LifecycleStage = stage
		c.Persona = values[fieldPersona].Value()
		c.Notes = values[fieldNotes].Value()
	})
}

func (m *Model) saveCmd() tea.Cmd {
	m.applyScalars()
	session := m.session
	return func() tea.Msg {
		contact, err := session.Save(context.Background())
		return saveDoneMsg{contact: contact, err: err}
	}
}

func (m Model) saveRolesCmd(caseID uuid.UUID) tea.Cmd {
	tracker := m.session.Roles()
	return func() tea.Msg {
		return roleSaveDoneMsg{err: tracker.Save(context.Background(), caseID)}
	}
}

// onSaveDone closes the editor on success and surfaces the failure message
// otherwise, leaving the form intact for another attempt.
func (m Model) onSaveDone(msg saveDoneMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.statusMsg = msg.err.Error()
		return m, nil
	}

	if msg.contact != nil {
		m.cacheContacts([]models.Contact{*msg.contact})
	}
	m.closeSession()
	m.viewMode = ViewList
	m.formInputs = nil
	m.statusMsg = ""
	return m, m.loadContacts()
}
