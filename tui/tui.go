// ABOUTME: Terminal User Interface using bubbletea framework
// ABOUTME: Provides the full-screen sales console with tabbed lists, detail, and editor views
package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"salesdesk/cache"
	"salesdesk/editor"
	"salesdesk/models"
	"salesdesk/store"
)

// ViewMode represents the current TUI view
type ViewMode int

const (
	ViewList ViewMode = iota
	ViewDetail
	ViewEdit
)

// EntityType represents the tab being viewed
type EntityType int

const (
	EntityContacts EntityType = iota
	EntityCases
	EntityCourses
	EntityWebinars
	EntityRules
)

const entityTabCount = 5

// Model is the main bubbletea model
type Model struct {
	client  *store.Client
	recents *cache.Cache

	viewMode   ViewMode
	entityType EntityType

	// List view state
	selectedRow int
	searchQuery string
	searching   bool
	searchInput textinput.Model

	contacts []models.Contact
	cases    []models.Case
	courses  []models.Course
	webinars []models.Webinar
	rules    []models.MessagingRule

	// Detail view state
	selectedID    uuid.UUID
	detail        *models.Contact
	detailCases   []models.Case
	detailCourses []models.Course
	detailWeb     []models.Webinar

	// Edit view state (form layout lives in edit_view.go)
	session    *editor.Session
	events     chan struct{}
	formInputs []textinput.Model
	focusIndex int
	roleCursor int // -1 while the form has focus; otherwise index into the case list
	statusMsg  string

	// UI state
	width  int
	height int
	err    error
}

// NewModel creates a new TUI model backed by the record store and the local
// recents cache. The cache may be nil when opening it failed.
func NewModel(client *store.Client, recents *cache.Cache) Model {
	search := textinput.New()
	search.Placeholder = "Search"
	search.CharLimit = 100

	return Model{
		client:      client,
		recents:     recents,
		viewMode:    ViewList,
		entityType:  EntityContacts,
		searchInput: search,
		events:      make(chan struct{}, 1),
		roleCursor:  -1,
		width:       80,
		height:      24,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.loadContacts(), m.waitForEditorEvent())
}

// Async completion messages.
type (
	contactsLoadedMsg struct {
		contacts  []models.Contact
		fromCache bool
		err       error
	}
	casesLoadedMsg struct {
		cases []models.Case
		err   error
	}
	coursesLoadedMsg struct {
		courses []models.Course
		err     error
	}
	webinarsLoadedMsg struct {
		webinars []models.Webinar
		err      error
	}
	rulesLoadedMsg struct {
		rules []models.MessagingRule
		err   error
	}
	detailLoadedMsg struct {
		contact  *models.Contact
		cases    []models.Case
		courses  []models.Course
		webinars []models.Webinar
		err      error
	}
	// editorEventMsg is delivered whenever the editor session transitions
	// asynchronously (load resolution, timeout, conflict result).
	editorEventMsg struct{}
	saveDoneMsg    struct {
		contact *models.Contact
		err     error
	}
	roleSaveDoneMsg struct{ err error }
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case contactsLoadedMsg:
		if msg.err == nil {
			m.contacts = msg.contacts
			if !msg.fromCache {
				m.cacheContacts(msg.contacts)
			}
		} else if !msg.fromCache {
			m.err = msg.err
		}
		return m, nil
	case casesLoadedMsg:
		m.cases, m.err = msg.cases, msg.err
		return m, nil
	case coursesLoadedMsg:
		m.courses, m.err = msg.courses, msg.err
		return m, nil
	case webinarsLoadedMsg:
		m.webinars, m.err = msg.webinars, msg.err
		return m, nil
	case rulesLoadedMsg:
		m.rules, m.err = msg.rules, msg.err
		return m, nil
	case detailLoadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.detail = msg.contact
		m.detailCases = msg.cases
		m.detailCourses = msg.courses
		m.detailWeb = msg.webinars
		return m, nil

	case editorEventMsg:
		cmd := m.onEditorEvent()
		return m, tea.Batch(cmd, m.waitForEditorEvent())
	case saveDoneMsg:
		return m.onSaveDone(msg)
	case roleSaveDoneMsg:
		if msg.err != nil {
			m.statusMsg = msg.err.Error()
		} else {
			m.statusMsg = "roles saved"
		}
		return m, nil
	}
	return m, nil
}

func (m Model) View() string {
	switch m.viewMode {
	case ViewList:
		return m.renderListView()
	case ViewDetail:
		return m.renderDetailView()
	case ViewEdit:
		return m.renderEditView()
	}
	return ""
}

func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// While a form input is live, only global quit stays intercepted.
	if msg.String() == "ctrl+c" {
		m.closeSession()
		return m, tea.Quit
	}
	if m.viewMode == ViewList && !m.searching && msg.String() == "q" {
		return m, tea.Quit
	}

	switch m.viewMode {
	case ViewList:
		return m.handleListKeys(msg)
	case ViewDetail:
		return m.handleDetailKeys(msg)
	case ViewEdit:
		return m.handleEditKeys(msg)
	}

	return m, nil
}

// waitForEditorEvent blocks on the session's change channel and converts the
// wakeup into a bubbletea message.
func (m Model) waitForEditorEvent() tea.Cmd {
	events := m.events
	return func() tea.Msg {
		<-events
		return editorEventMsg{}
	}
}

func (m *Model) notifyEditorChange() {
	select {
	case m.events <- struct{}{}:
	default:
	}
}

func (m *Model) closeSession() {
	if m.session != nil {
		m.session.Close()
		m.session = nil
	}
}

// cacheContacts refreshes the recents cache after a successful store list.
// Cache failures are advisory only.
func (m Model) cacheContacts(contacts []models.Contact) {
	if m.recents == nil {
		return
	}
	_ = m.recents.Put(contacts)
}

func (m Model) loadContacts() tea.Cmd {
	client, recents, query := m.client, m.recents, m.searchQuery
	fetch := func() tea.Msg {
		var (
			contacts []models.Contact
			err      error
		)
		if query == "" {
			contacts, err = client.ListContacts(context.Background(), 100)
		} else {
			contacts, err = client.SearchContacts(context.Background(), query, uuid.Nil, 100)
		}
		return contactsLoadedMsg{contacts: contacts, err: err}
	}
	if recents == nil {
		return fetch
	}
	// Cache-first: paint whatever is local, then refresh from the store.
	cached := func() tea.Msg {
		var (
			contacts []models.Contact
			err      error
		)
		if query == "" {
			contacts, err = recents.Recent(100)
		} else {
			contacts, err = recents.Search(query, 100)
		}
		return contactsLoadedMsg{contacts: contacts, fromCache: true, err: err}
	}
	return tea.Batch(cached, fetch)
}

func (m Model) loadCases() tea.Cmd {
	client := m.client
	return func() tea.Msg {
		cases, err := client.ListCases(context.Background(), 100)
		return casesLoadedMsg{cases: cases, err: err}
	}
}

func (m Model) loadCourses() tea.Cmd {
	client, id := m.client, m.selectedID
	return func() tea.Msg {
		if id == uuid.Nil {
			return coursesLoadedMsg{}
		}
		courses, err := client.ListCourses(context.Background(), id)
		return coursesLoadedMsg{courses: courses, err: err}
	}
}

func (m Model) loadWebinars() tea.Cmd {
	client, id := m.client, m.selectedID
	return func() tea.Msg {
		if id == uuid.Nil {
			return webinarsLoadedMsg{}
		}
		webinars, err := client.ListWebinars(context.Background(), id)
		return webinarsLoadedMsg{webinars: webinars, err: err}
	}
}

func (m Model) loadRules() tea.Cmd {
	client := m.client
	return func() tea.Msg {
		rules, err := client.ListMessagingRules(context.Background())
		return rulesLoadedMsg{rules: rules, err: err}
	}
}

func (m Model) loadDetail(id uuid.UUID) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		contact, err := client.FetchContact(context.Background(), id)
		if err != nil {
			return detailLoadedMsg{err: err}
		}
		cases, _ := client.FetchCaseHistory(context.Background(), id)
		courses, _ := client.ListCourses(context.Background(), id)
		webinars, _ := client.ListWebinars(context.Background(), id)
		return detailLoadedMsg{contact: contact, cases: cases, courses: courses, webinars: webinars}
	}
}

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170")).
			MarginBottom(1)

	tabActiveStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170")).
			Background(lipgloss.Color("235")).
			Padding(0, 2)

	tabInactiveStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("240")).
				Padding(0, 2)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			MarginTop(1)

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("11"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9"))

	dirtyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("11")).
			Bold(true)
)
