package ui

import (
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"qnotes/pkg/api"
	"qnotes/pkg/config"
	"qnotes/pkg/gateway"
)

const (
	createdLayout = "2006-01-02 15:04"
	previewWidth  = 36
	previewLines  = 3
	genericError  = "Something went wrong. Contact administrator."
)

var (
	errSessionExpired = errors.New("session expired, please log in again")
	errNoteGone       = errors.New("note not found, it may have been deleted")
)

// refreshRows rebuilds the table from the view-model's derived list. Cells
// hold plain text: the table truncates by width and escape codes would be cut.
func (m *Model) refreshRows() {
	m.items = m.vm.Displayed()

	rows := make([]table.Row, 0, len(m.items))
	for _, n := range m.items {
		rows = append(rows, table.Row{
			string(n.Priority),
			n.Title,
			contentPreview(n.Content, previewWidth),
			n.CreatedAt.Local().Format(createdLayout),
		})
	}
	m.table.SetRows(rows)

	if m.table.Cursor() >= len(rows) {
		m.table.SetCursor(max(len(rows)-1, 0))
	}
}

func (m Model) selectedNote() (api.Note, bool) {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.items) {
		return api.Note{}, false
	}
	return m.items[idx], true
}

// focusInput moves focus within the note form
func (m *Model) focusInput(field int) {
	m.activeInput = field
	m.titleInput.Blur()
	m.contentInput.Blur()
	switch field {
	case titleField:
		m.titleInput.Focus()
	case contentField:
		m.contentInput.Focus()
	}
}

// focusAuthInput moves focus within the login/register form
func (m *Model) focusAuthInput(field int) {
	m.activeInput = field
	if field == usernameField {
		m.usernameInput.Focus()
		m.passwordInput.Blur()
	} else {
		m.usernameInput.Blur()
		m.passwordInput.Focus()
	}
}

func prevPriority(p api.Priority) api.Priority {
	n := len(api.Priorities)
	return api.Priorities[(p.Rank()+n-1)%n]
}

// priorityLabel colors a priority name with its configured color
func priorityLabel(p api.Priority, styles config.Styles) string {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color(styles.PriorityColor(p))).
		Bold(true).
		Render(string(p))
}

// errorText turns an error into the line shown to the user. Server-side and
// network failures get the generic message; the details go to the log.
func errorText(err error) string {
	var opErr *gateway.OperationError
	if errors.As(err, &opErr) {
		if opErr.Status == 0 || opErr.Status >= 500 || opErr.Message == "" {
			return genericError
		}
		return opErr.Message
	}
	return err.Error()
}

// contentPreview flattens content onto one line of at most width runes
func contentPreview(content string, width int) string {
	flat := []rune(strings.Join(strings.Fields(content), " "))
	if len(flat) <= width {
		return string(flat)
	}
	return string(flat[:width-1]) + "…"
}
