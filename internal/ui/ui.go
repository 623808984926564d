package ui

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/nytevibe/nyte/internal/models"
	"github.com/nytevibe/nyte/internal/services"
	"github.com/nytevibe/nyte/internal/session"
	"github.com/nytevibe/nyte/internal/shared"
	"github.com/nytevibe/nyte/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	LoginView ViewState = iota
	VenueListView
	VenueDetailView
	SyncView
)

// venueItem wraps [models.Venue] to implement list.Item.
type venueItem struct {
	venue models.Venue
}

func (i venueItem) FilterValue() string { return i.venue.Name }

func (i venueItem) Title() string {
	if i.venue.Followed {
		return "★ " + i.venue.Name
	}
	return i.venue.Name
}

func (i venueItem) Description() string {
	desc := i.venue.VenueType
	if i.venue.CrowdLevel != "" {
		desc = fmt.Sprintf("%s • %s, %d min wait", desc, i.venue.CrowdLevel, i.venue.WaitMinutes)
	}
	if i.venue.RatingCount > 0 {
		desc = fmt.Sprintf("%s • %.1f (%d ratings)", desc, i.venue.Rating, i.venue.RatingCount)
	}
	return desc
}

type loginDoneMsg struct {
	user *models.UserRecord
	err  error
}

type sessionCheckedMsg struct {
	err error
}

type venuesFetchedMsg struct {
	venues []models.Venue
	err    error
}

type followToggledMsg struct {
	venueID  string
	followed bool
	err      error
}

type progressUpdateMsg tasks.ProgressUpdate

type syncCompleteMsg struct {
	result *tasks.VenueSyncResult
	err    error
}

// Model represents the TUI application state.
type Model struct {
	ctx     context.Context
	view    ViewState
	manager *session.Manager
	venues  services.VenueAPI
	engine  *tasks.VenueEngine
	width   int
	height  int

	identifier textinput.Model
	password   textinput.Model
	rememberMe bool
	focusField int
	loggingIn  bool

	venueList list.Model
	selected  *models.Venue

	progressChan chan tasks.ProgressUpdate
	syncDone     chan syncCompleteMsg
	progress     tasks.ProgressUpdate
	syncResult   *tasks.VenueSyncResult

	err  error
	help help.Model
	keys keyMap
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, manager *session.Manager, venues services.VenueAPI, engine *tasks.VenueEngine) *Model {
	identifier := textinput.New()
	identifier.Placeholder = "email or username"
	identifier.Focus()

	password := textinput.New()
	password.Placeholder = "password"
	password.EchoMode = textinput.EchoPassword

	view := LoginView
	if manager.Authenticated() {
		view = VenueListView
	}

	return &Model{
		ctx:        ctx,
		view:       view,
		manager:    manager,
		venues:     venues,
		engine:     engine,
		identifier: identifier,
		password:   password,
		help:       help.New(),
		keys:       newKeyMap(),
	}
}

// Init starts by fetching venues when a session already exists. The restored
// token is confirmed with the server in the background at the same time.
func (m *Model) Init() tea.Cmd {
	if m.view == VenueListView {
		return tea.Batch(m.revalidateSession(), m.fetchVenues())
	}
	return textinput.Blink
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.venueList.Width() == 0 {
			m.venueList.SetSize(msg.Width-4, msg.Height-8)
		}
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case LoginView:
			return m.handleLoginKeys(msg)
		case VenueListView:
			return m.handleVenueListKeys(msg)
		case VenueDetailView:
			return m.handleDetailKeys(msg)
		case SyncView:
			if msg.String() == "ctrl+c" {
				return m, tea.Quit
			}
			return m, nil
		}

	case sessionCheckedMsg:
		if errors.Is(msg.err, shared.ErrUnauthorized) {
			m.err = errors.New("session expired, sign in again")
			m.view = LoginView
			m.focusField = 0
			m.identifier.Focus()
			m.password.Blur()
			return m, textinput.Blink
		}
		// Inconclusive checks keep the session; venues already loading.
		return m, nil

	case loginDoneMsg:
		m.loggingIn = false
		if msg.err != nil {
			m.err = msg.err
			m.password.SetValue("")
			return m, nil
		}
		m.err = nil
		m.view = VenueListView
		return m, m.fetchVenues()

	case venuesFetchedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		items := make([]list.Item, len(msg.venues))
		for i, venue := range msg.venues {
			items[i] = venueItem{venue: venue}
		}
		m.venueList = list.New(items, list.NewDefaultDelegate(), 0, 0)
		m.venueList.Title = "nYtevibe Venues"
		m.venueList.SetSize(m.width-4, m.height-8)
		return m, nil

	case followToggledMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		return m, m.fetchVenues()

	case progressUpdateMsg:
		m.progress = tasks.ProgressUpdate(msg)
		return m, m.waitForProgress()

	case syncCompleteMsg:
		m.syncResult = msg.result
		m.err = msg.err
		m.progressChan = nil
		m.view = VenueListView
		return m, m.fetchVenues()
	}

	return m.updateActive(msg)
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	switch m.view {
	case LoginView:
		return m.renderLogin()
	case VenueListView:
		return m.renderVenueList()
	case VenueDetailView:
		return m.renderDetail()
	case SyncView:
		return m.renderSync()
	default:
		return ""
	}
}

func (m *Model) handleLoginKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "tab", "shift+tab":
		m.focusField = (m.focusField + 1) % 2
		if m.focusField == 0 {
			m.identifier.Focus()
			m.password.Blur()
		} else {
			m.password.Focus()
			m.identifier.Blur()
		}
		return m, textinput.Blink
	case "ctrl+r":
		m.rememberMe = !m.rememberMe
		return m, nil
	case "enter":
		if m.loggingIn {
			return m, nil
		}
		if m.identifier.Value() == "" || m.password.Value() == "" {
			m.err = fmt.Errorf("identifier and password are required")
			return m, nil
		}
		m.loggingIn = true
		return m, m.login()
	}

	var cmd tea.Cmd
	if m.focusField == 0 {
		m.identifier, cmd = m.identifier.Update(msg)
	} else {
		m.password, cmd = m.password.Update(msg)
	}
	return m, cmd
}

func (m *Model) handleVenueListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "enter":
		if selected, ok := m.venueList.SelectedItem().(venueItem); ok {
			venue := selected.venue
			m.selected = &venue
			m.view = VenueDetailView
		}
		return m, nil
	case "f":
		if selected, ok := m.venueList.SelectedItem().(venueItem); ok {
			return m, m.toggleFollow(selected.venue)
		}
		return m, nil
	case "s":
		m.view = SyncView
		m.syncResult = nil
		m.progress = tasks.ProgressUpdate{}
		return m, m.startSync()
	}

	var cmd tea.Cmd
	m.venueList, cmd = m.venueList.Update(msg)
	return m, cmd
}

func (m *Model) handleDetailKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.view = VenueListView
		m.selected = nil
		return m, nil
	case "f":
		if m.selected != nil {
			venue := *m.selected
			m.view = VenueListView
			m.selected = nil
			return m, m.toggleFollow(venue)
		}
	}
	return m, nil
}

func (m *Model) updateActive(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case LoginView:
		if m.focusField == 0 {
			m.identifier, cmd = m.identifier.Update(msg)
		} else {
			m.password, cmd = m.password.Update(msg)
		}
	case VenueListView:
		m.venueList, cmd = m.venueList.Update(msg)
	}
	return m, cmd
}

func (m *Model) login() tea.Cmd {
	identifier := m.identifier.Value()
	password := m.password.Value()
	rememberMe := m.rememberMe

	return func() tea.Msg {
		user, err := m.manager.Login(m.ctx, identifier, password, rememberMe)
		return loginDoneMsg{user: user, err: err}
	}
}

// revalidateSession confirms the restored token in the background. A revoked
// token drops the user back to the login form instead of a wall of errors.
func (m *Model) revalidateSession() tea.Cmd {
	return func() tea.Msg {
		return sessionCheckedMsg{err: m.manager.Revalidate(m.ctx)}
	}
}

func (m *Model) fetchVenues() tea.Cmd {
	return func() tea.Msg {
		venues, err := m.venues.List(m.ctx)
		return venuesFetchedMsg{venues: venues, err: err}
	}
}

func (m *Model) toggleFollow(venue models.Venue) tea.Cmd {
	return func() tea.Msg {
		var err error
		if venue.Followed {
			err = m.venues.Unfollow(m.ctx, venue.ID)
		} else {
			err = m.venues.Follow(m.ctx, venue.ID)
		}
		return followToggledMsg{venueID: venue.ID, followed: !venue.Followed, err: err}
	}
}

func (m *Model) startSync() tea.Cmd {
	m.progressChan = make(chan tasks.ProgressUpdate, 50)
	prog := m.progressChan

	done := make(chan syncCompleteMsg, 1)
	go func() {
		result, err := m.engine.Sync(m.ctx, prog, tasks.VenueSyncOpts{})
		done <- syncCompleteMsg{result: result, err: err}
		close(prog)
	}()
	m.syncDone = done

	return m.waitForProgress()
}

func (m *Model) waitForProgress() tea.Cmd {
	prog := m.progressChan
	done := m.syncDone

	return func() tea.Msg {
		if prog == nil {
			return syncCompleteMsg{}
		}

		update, ok := <-prog
		if !ok {
			return <-done
		}
		return progressUpdateMsg(update)
	}
}

func (m *Model) renderLogin() string {
	title := styles.title.Render("Sign in to nYtevibe")

	remember := "[ ] remember me for 30 days"
	if m.rememberMe {
		remember = "[x] remember me for 30 days"
	}

	var status string
	if m.loggingIn {
		status = "\nSigning in..."
	} else if m.err != nil {
		status = "\n" + styles.err.Render(fmt.Sprintf("Error: %v", m.err))
	}

	helpKeys := []key.Binding{m.keys.tab, m.keys.toggle, m.keys.enter, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	return fmt.Sprintf("%s\n\n%s\n%s\n\n%s%s\n\n%s",
		title,
		m.identifier.View(),
		m.password.View(),
		styles.help.Render(remember),
		status,
		helpView,
	)
}

func (m *Model) renderVenueList() string {
	var status string
	if m.err != nil {
		status = "\n" + styles.err.Render(fmt.Sprintf("Error: %v", m.err))
	} else if m.syncResult != nil {
		status = "\n" + styles.ok.Render(fmt.Sprintf(
			"Synced %d/%d venues", m.syncResult.SyncedVenues, m.syncResult.TotalVenues))
	}

	helpKeys := []key.Binding{m.keys.enter, m.keys.follow, m.keys.sync, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)
	return fmt.Sprintf("%s%s\n\n%s", m.venueList.View(), status, helpView)
}

func (m *Model) renderDetail() string {
	if m.selected == nil {
		return styles.err.Render("No venue selected\n\nPress esc to go back")
	}

	venue := m.selected
	title := styles.title.Render(venue.Name)

	crowd := venue.CrowdLevel
	if crowd == "" {
		crowd = "unknown"
	}

	followed := "no"
	if venue.Followed {
		followed = "yes"
	}

	info := fmt.Sprintf(
		"\nType: %s\nAddress: %s\nRating: %.1f (%d ratings)\nCrowd: %s\nWait: %d min\nFollowed: %s\n",
		venue.VenueType,
		venue.Address,
		venue.Rating,
		venue.RatingCount,
		crowd,
		venue.WaitMinutes,
		followed,
	)

	helpKeys := []key.Binding{m.keys.follow, m.keys.back, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	return fmt.Sprintf("%s%s\n%s", title, info, helpView)
}

func (m *Model) renderSync() string {
	title := styles.title.Render("Refreshing Venue Cache")

	var phase string
	switch m.progress.Phase {
	case tasks.FetchListing:
		phase = "Fetching venue listing..."
	case tasks.FetchFollowed:
		phase = "Fetching followed venues..."
	case tasks.SyncVenue:
		phase = fmt.Sprintf("Syncing venues (%d/%d)", m.progress.Step, m.progress.Total)
	default:
		phase = "Starting..."
	}

	return fmt.Sprintf("%s\n\n%s\n%s", title, phase, m.progress.Message)
}
