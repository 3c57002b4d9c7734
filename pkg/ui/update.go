package ui

import (
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"qnotes/pkg/api"
	"qnotes/pkg/gateway"
	"qnotes/pkg/utils"
	"qnotes/pkg/validation"
	"qnotes/pkg/viewmodel"
)

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.table.SetWidth(msg.Width - 4)
		m.table.SetHeight(max(msg.Height-8, 3))
		return m, nil

	case pageLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.handleError(msg.err)
			return m, nil
		}
		m.refreshRows()
		return m, nil

	case noteLoadedMsg:
		m.loading = false
		if msg.err != nil {
			return m, m.handleNoteError(msg.err)
		}
		note := msg.note
		m.resetInputs()
		m.editingNote = &note
		m.titleInput.SetValue(note.Title)
		m.contentInput.SetValue(note.Content)
		m.priority = note.Priority
		m.mode = EditMode
		m.err = nil
		return m, nil

	case noteSavedMsg:
		m.loading = false
		if msg.err != nil {
			// Stay in the form so the input isn't lost
			return m, m.handleNoteError(msg.err)
		}
		utils.Log("Saved note %s", msg.note.ID)
		m.mode = NormalMode
		m.editingNote = nil
		m.resetInputs()
		m.err = nil
		m.status = "Note saved"
		m.loading = true
		if msg.created {
			return m, m.loadPageCmd(0)
		}
		return m, m.reloadCmd()

	case noteDeletedMsg:
		m.loading = false
		if msg.err != nil {
			m.handleError(msg.err)
			m.refreshRows()
			return m, nil
		}
		m.err = nil
		m.status = "Note deleted"
		m.refreshRows()
		return m, nil

	case statsLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.handleError(msg.err)
			return m, nil
		}
		stats := msg.stats
		m.stats = &stats
		return m, nil

	case authDoneMsg:
		m.loading = false
		if msg.err != nil {
			utils.Log("Authentication failed: %v", msg.err)
			m.err = msg.err
			return m, nil
		}
		if err := m.session.SaveToken(msg.token); err != nil {
			m.err = err
			return m, nil
		}
		if err := m.session.SaveUsername(msg.username); err != nil {
			utils.Log("Error saving username: %v", err)
		}
		m.username = msg.username
		m.passwordInput.Reset()
		m.formErrors = nil
		m.err = nil
		m.status = ""
		m.mode = NormalMode
		m.loading = true
		return m, m.loadPageCmd(0)

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		switch m.mode {
		case LoginMode, RegisterMode:
			return m.updateAuth(msg)
		case NormalMode:
			return m.updateNormal(msg)
		case AddMode, EditMode:
			return m.updateForm(msg)
		case DeleteConfirmMode:
			return m.updateDeleteConfirm(msg)
		case StatsMode, HelpViewMode:
			return m.updateOverlay(msg)
		}
	}

	// Cursor blinks and other component messages
	var cmd tea.Cmd
	switch m.mode {
	case LoginMode, RegisterMode:
		m.usernameInput, cmd = m.usernameInput.Update(msg)
		var pwCmd tea.Cmd
		m.passwordInput, pwCmd = m.passwordInput.Update(msg)
		cmd = tea.Batch(cmd, pwCmd)
	case AddMode, EditMode:
		m.titleInput, cmd = m.titleInput.Update(msg)
		var contentCmd tea.Cmd
		m.contentInput, contentCmd = m.contentInput.Update(msg)
		cmd = tea.Batch(cmd, contentCmd)
	}
	return m, cmd
}

func (m Model) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keyMap.ShowHelp):
		m.mode = HelpViewMode
		return m, nil

	case key.Matches(msg, m.keyMap.QuitApp):
		return m, tea.Quit

	case key.Matches(msg, m.keyMap.AddNote):
		m.mode = AddMode
		m.editingNote = nil
		m.err = nil
		m.status = ""
		m.resetInputs()
		return m, nil

	case key.Matches(msg, m.keyMap.EditNote):
		if note, ok := m.selectedNote(); ok {
			m.loading = true
			m.status = ""
			m.err = nil
			return m, m.getNoteCmd(note.ID)
		}
		return m, nil

	case key.Matches(msg, m.keyMap.DeleteNote):
		if note, ok := m.selectedNote(); ok {
			m.editingNote = &note
			m.mode = DeleteConfirmMode
		}
		return m, nil

	case key.Matches(msg, m.keyMap.CycleFilter):
		m.vm.CyclePriorityFilter()
		m.preferencesChanged()
		return m, nil

	case key.Matches(msg, m.keyMap.CycleSort):
		m.vm.CycleSortOption()
		m.preferencesChanged()
		return m, nil

	case key.Matches(msg, m.keyMap.NextPage):
		if m.vm.Page().HasNext() {
			m.loading = true
			m.err = nil
			return m, m.nextPageCmd()
		}
		return m, nil

	case key.Matches(msg, m.keyMap.PrevPage):
		if m.vm.Page().HasPrev() {
			m.loading = true
			m.err = nil
			return m, m.prevPageCmd()
		}
		return m, nil

	case key.Matches(msg, m.keyMap.ShowStats):
		m.mode = StatsMode
		m.stats = nil
		m.err = nil
		m.loading = true
		return m, m.statsCmd()

	case key.Matches(msg, m.keyMap.Refresh):
		m.loading = true
		m.status = ""
		m.err = nil
		return m, m.reloadCmd()

	case key.Matches(msg, m.keyMap.Logout):
		m.logout()
		m.status = "Logged out"
		return m, nil
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m Model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.Type == tea.KeyEsc:
		m.mode = NormalMode
		m.editingNote = nil
		m.resetInputs()
		return m, nil

	case msg.Type == tea.KeyTab:
		m.focusInput((m.activeInput + 1) % formFieldCount)
		return m, nil

	case msg.Type == tea.KeyShiftTab:
		m.focusInput((m.activeInput + formFieldCount - 1) % formFieldCount)
		return m, nil

	case msg.Type == tea.KeyCtrlS:
		return m.submitForm()

	case key.Matches(msg, m.keyMap.CyclePriority):
		m.priority = m.priority.Next()
		return m, nil

	case msg.Type == tea.KeyEnter && m.activeInput == titleField:
		m.focusInput(contentField)
		return m, nil

	case msg.Type == tea.KeyEnter && m.activeInput == priorityField:
		return m.submitForm()
	}

	var cmd tea.Cmd
	switch m.activeInput {
	case titleField:
		m.titleInput, cmd = m.titleInput.Update(msg)
	case contentField:
		m.contentInput, cmd = m.contentInput.Update(msg)
	case priorityField:
		switch msg.String() {
		case "right", "l", " ":
			m.priority = m.priority.Next()
		case "left", "h":
			m.priority = prevPriority(m.priority)
		}
	}
	return m, cmd
}

// submitForm validates the note form and sends it
func (m Model) submitForm() (tea.Model, tea.Cmd) {
	if m.loading {
		return m, nil
	}
	title := m.titleInput.Value()
	content := m.contentInput.Value()

	m.formErrors = validation.Note(title, content, string(m.priority))
	if !m.formErrors.OK() {
		return m, nil
	}

	req := api.NoteRequest{
		Title:    strings.TrimSpace(title),
		Content:  content,
		Priority: m.priority,
	}
	m.loading = true
	m.err = nil
	if m.mode == EditMode && m.editingNote != nil {
		return m, m.updateNoteCmd(m.editingNote.ID, req)
	}
	return m, m.createNoteCmd(req)
}

func (m Model) updateDeleteConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		note := m.editingNote
		m.mode = NormalMode
		m.editingNote = nil
		if note == nil {
			return m, nil
		}
		utils.Log("Deleting note ID: %s", note.ID)
		m.loading = true
		m.err = nil
		return m, m.deleteNoteCmd(note.ID)

	case "n", "N", "esc":
		m.mode = NormalMode
		m.editingNote = nil
	}
	return m, nil
}

// updateOverlay handles the statistics and help screens
func (m Model) updateOverlay(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keyMap.QuitApp):
		return m, tea.Quit
	case msg.Type == tea.KeyEsc,
		m.mode == HelpViewMode && key.Matches(msg, m.keyMap.ShowHelp),
		m.mode == StatsMode && key.Matches(msg, m.keyMap.ShowStats):
		m.mode = NormalMode
	}
	return m, nil
}

func (m Model) updateAuth(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keyMap.SwitchAuthForm):
		if m.mode == LoginMode {
			m.enterAuthMode(RegisterMode)
		} else {
			m.enterAuthMode(LoginMode)
		}
		m.err = nil
		return m, nil

	case msg.Type == tea.KeyTab, msg.Type == tea.KeyShiftTab, msg.Type == tea.KeyUp, msg.Type == tea.KeyDown:
		m.focusAuthInput(1 - m.activeInput)
		return m, nil

	case msg.Type == tea.KeyEnter:
		if m.activeInput == usernameField {
			m.focusAuthInput(passwordField)
			return m, nil
		}
		return m.submitAuth()
	}

	var cmd tea.Cmd
	if m.activeInput == usernameField {
		m.usernameInput, cmd = m.usernameInput.Update(msg)
	} else {
		m.passwordInput, cmd = m.passwordInput.Update(msg)
	}
	return m, cmd
}

func (m Model) submitAuth() (tea.Model, tea.Cmd) {
	if m.loading {
		return m, nil
	}
	username := strings.TrimSpace(m.usernameInput.Value())
	password := m.passwordInput.Value()

	register := m.mode == RegisterMode
	if register {
		m.formErrors = validation.Register(username, password)
	} else {
		m.formErrors = validation.Login(username, password)
	}
	if !m.formErrors.OK() {
		return m, nil
	}

	m.loading = true
	m.err = nil
	return m, m.authCmd(api.Credentials{Username: username, Password: password}, register)
}

// handleError records err for display. An expired session sends the user
// back to the login form.
func (m *Model) handleError(err error) {
	utils.Log("Operation failed: %v", err)
	if errors.Is(err, gateway.ErrUnauthorized) {
		m.logout()
		m.err = errSessionExpired
		return
	}
	m.err = err
}

// handleNoteError leaves the form when the note no longer exists
func (m *Model) handleNoteError(err error) tea.Cmd {
	if !errors.Is(err, gateway.ErrNotFound) {
		m.handleError(err)
		return nil
	}
	utils.Log("Note disappeared: %v", err)
	m.mode = NormalMode
	m.editingNote = nil
	m.resetInputs()
	m.err = errNoteGone
	m.loading = true
	return m.reloadCmd()
}

func (m *Model) logout() {
	if err := m.session.ClearToken(); err != nil {
		utils.Log("Error clearing session: %v", err)
	}
	m.vm = viewmodel.New(m.notes, m.vm.Preferences())
	m.items = nil
	m.stats = nil
	m.table.SetRows(nil)
	m.enterAuthMode(LoginMode)
}

func (m *Model) preferencesChanged() {
	m.refreshRows()
	if err := m.session.SavePreferences(m.vm.Preferences()); err != nil {
		utils.Log("Error saving preferences: %v", err)
	}
}
