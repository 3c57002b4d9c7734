package ui

import (
	"context"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"qnotes/pkg/api"
	"qnotes/pkg/config"
	"qnotes/pkg/keymaps"
	"qnotes/pkg/validation"
	"qnotes/pkg/viewmodel"
)

// InputMode represents the current input mode
type InputMode int

const (
	LoginMode InputMode = iota
	RegisterMode
	NormalMode
	AddMode
	EditMode
	DeleteConfirmMode
	StatsMode
	HelpViewMode
)

// Form fields in tab order
const (
	titleField = iota
	contentField
	priorityField
	formFieldCount
)

// Auth form fields in tab order
const (
	usernameField = iota
	passwordField
)

// NotesService is the REST gateway as seen by the UI
type NotesService interface {
	viewmodel.NotesGateway
	Login(ctx context.Context, creds api.Credentials) (string, error)
	Register(ctx context.Context, creds api.Credentials) (string, error)
	GetNote(ctx context.Context, id string) (api.Note, error)
	CreateNote(ctx context.Context, req api.NoteRequest) (api.Note, error)
	UpdateNote(ctx context.Context, id string, req api.NoteRequest) (api.Note, error)
	Statistics(ctx context.Context) (api.Statistics, error)
}

// Session persists login and list preferences
type Session interface {
	SaveToken(token string) error
	ClearToken() error
	SaveUsername(username string) error
	SavePreferences(prefs viewmodel.Preferences) error
}

// Options wires a Model
type Options struct {
	Notes       NotesService
	Session     Session
	Preferences viewmodel.Preferences
	LoggedIn    bool
	Username    string
	Config      config.Config
	Styles      config.Styles
}

// Model represents the application state
type Model struct {
	table         table.Model
	items         []api.Note
	vm            *viewmodel.NotesViewModel
	notes         NotesService
	session       Session
	width, height int
	err           error
	status        string
	loading       bool

	// Configuration
	config config.Config
	styles config.Styles
	keyMap keymaps.KeyMap

	// Note form state
	mode         InputMode
	titleInput   textinput.Model
	contentInput textarea.Model
	priority     api.Priority
	activeInput  int
	formErrors   validation.Errors

	// Auth form state
	usernameInput textinput.Model
	passwordInput textinput.Model
	username      string

	// Edit/delete state
	editingNote *api.Note

	stats *api.Statistics
}

// NewModel creates a new UI model with the provided configuration
func NewModel(opts Options) Model {
	columns := []table.Column{
		{Title: "Priority", Width: 9},
		{Title: "Title", Width: 32},
		{Title: "Content", Width: previewWidth},
		{Title: "Created", Width: 16},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(10),
	)

	styles := opts.Styles
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color(styles.BorderColor)).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color(styles.SelectedTextColor)).
		Background(lipgloss.Color(styles.SelectedBgColor)).
		Bold(true)
	t.SetStyles(s)

	// Letters used by our own bindings must not also page the table
	t.KeyMap.PageDown.SetKeys("pgdown")
	t.KeyMap.HalfPageDown.SetKeys("ctrl+d")

	titleInput := textinput.New()
	titleInput.Placeholder = "Title"
	titleInput.CharLimit = 255
	titleInput.Width = 50

	contentInput := textarea.New()
	contentInput.Placeholder = "Content"
	contentInput.SetWidth(60)
	contentInput.SetHeight(6)
	contentInput.ShowLineNumbers = false

	usernameInput := textinput.New()
	usernameInput.Placeholder = "you@example.com"
	usernameInput.Width = 40
	usernameInput.SetValue(opts.Username)

	passwordInput := textinput.New()
	passwordInput.Placeholder = "Password"
	passwordInput.EchoMode = textinput.EchoPassword
	passwordInput.EchoCharacter = '•'
	passwordInput.Width = 40

	m := Model{
		table:         t,
		vm:            viewmodel.New(opts.Notes, opts.Preferences),
		notes:         opts.Notes,
		session:       opts.Session,
		config:        opts.Config,
		styles:        styles,
		keyMap:        keymaps.BuildKeyMap(opts.Config.KeyMap),
		titleInput:    titleInput,
		contentInput:  contentInput,
		priority:      api.DefaultPriority,
		usernameInput: usernameInput,
		passwordInput: passwordInput,
		username:      opts.Username,
	}

	if opts.LoggedIn {
		m.mode = NormalMode
		m.loading = true
	} else {
		m.enterAuthMode(LoginMode)
	}
	return m
}

// Init loads the first page when a session already exists
func (m Model) Init() tea.Cmd {
	if m.mode == NormalMode {
		return m.loadPageCmd(0)
	}
	return textinput.Blink
}

// resetInputs clears the note form
func (m *Model) resetInputs() {
	m.titleInput.Reset()
	m.contentInput.Reset()
	m.priority = api.DefaultPriority
	m.formErrors = nil
	m.focusInput(titleField)
}

// enterAuthMode shows the login or register form, keeping the typed username
func (m *Model) enterAuthMode(mode InputMode) {
	m.mode = mode
	m.formErrors = nil
	m.passwordInput.Reset()
	if m.usernameInput.Value() == "" {
		m.focusAuthInput(usernameField)
	} else {
		m.focusAuthInput(passwordField)
	}
}
