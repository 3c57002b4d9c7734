package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"qnotes/pkg/api"
	"qnotes/pkg/utils"
	"qnotes/pkg/validation"
)

// View renders the UI based on the current mode
func (m Model) View() string {
	var sb strings.Builder

	switch m.mode {
	case LoginMode:
		sb.WriteString(m.header(" Log in ", m.styles.AccentColor))
		sb.WriteString("\n\n")
		sb.WriteString(m.renderAuthForm())

	case RegisterMode:
		sb.WriteString(m.header(" Register ", m.styles.AccentColor))
		sb.WriteString("\n\n")
		sb.WriteString(m.renderAuthForm())

	case NormalMode:
		title := " QNotes "
		if m.username != "" {
			title = fmt.Sprintf(" QNotes - %s ", m.username)
		}
		sb.WriteString(m.header(title, m.styles.AccentColor))
		sb.WriteString("\n\n")

		if len(m.items) == 0 && !m.loading {
			sb.WriteString(m.muted().Render("No notes found."))
			sb.WriteString("\n")
		} else {
			sb.WriteString(m.table.View())
			sb.WriteString("\n")
			sb.WriteString(m.renderPreview())
		}
		sb.WriteString(m.statusLine())
		sb.WriteString("\n")

	case AddMode:
		sb.WriteString(m.header(" Add New Note ", m.styles.AccentColor))
		sb.WriteString("\n\n")
		sb.WriteString(m.renderForm())

	case EditMode:
		sb.WriteString(m.header(" Edit Note ", m.styles.AccentColor))
		sb.WriteString("\n\n")
		sb.WriteString(m.renderForm())

	case DeleteConfirmMode:
		sb.WriteString(m.header(" Delete Note ", m.styles.ErrorColor))
		sb.WriteString("\n\n")

		if m.editingNote != nil {
			sb.WriteString("Are you sure you want to delete this note?\n\n")
			sb.WriteString(fmt.Sprintf("Title: %s\n", m.editingNote.Title))
			sb.WriteString(fmt.Sprintf("Priority: %s\n", priorityLabel(m.editingNote.Priority, m.styles)))
			sb.WriteString("\n")
			sb.WriteString(lipgloss.NewStyle().Bold(true).Render("Press Y to confirm, N to cancel"))
		}

	case StatsMode:
		sb.WriteString(m.header(" Statistics ", m.styles.AccentColor))
		sb.WriteString("\n\n")
		sb.WriteString(m.renderStats())

	case HelpViewMode:
		sb.WriteString(lipgloss.NewStyle().Bold(true).Render("Available Commands"))
		sb.WriteString("\n\n")

		keyStyle := lipgloss.NewStyle().
			Foreground(lipgloss.Color(m.styles.AccentColor)).
			Bold(true)
		descStyle := lipgloss.NewStyle().
			Foreground(lipgloss.Color(m.styles.NormalTextColor))

		addCommand := func(binding key.Binding) {
			sb.WriteString(fmt.Sprintf("%s: %s\n",
				descStyle.Render(binding.Help().Desc),
				keyStyle.Render(binding.Help().Key)))
		}

		addCommand(m.keyMap.QuitApp)
		addCommand(m.keyMap.ShowHelp)
		addCommand(m.keyMap.AddNote)
		addCommand(m.keyMap.EditNote)
		addCommand(m.keyMap.DeleteNote)
		addCommand(m.keyMap.CycleFilter)
		addCommand(m.keyMap.CycleSort)
		addCommand(m.keyMap.ShowStats)
		addCommand(m.keyMap.Refresh)
		addCommand(m.keyMap.Logout)

		sb.WriteString("\n")
		sb.WriteString(lipgloss.NewStyle().Bold(true).Render("Navigation Commands"))
		sb.WriteString("\n\n")
		addCommand(m.keyMap.PrevPage)
		addCommand(m.keyMap.NextPage)

		sb.WriteString("\n")
		sb.WriteString(lipgloss.NewStyle().Bold(true).Render("Form Commands"))
		sb.WriteString("\n\n")
		addCommand(m.keyMap.CyclePriority)
		addCommand(m.keyMap.SwitchAuthForm)
	}

	if m.err != nil {
		sb.WriteString("\n\n")
		sb.WriteString(lipgloss.NewStyle().
			Foreground(lipgloss.Color(m.styles.ErrorColor)).
			Render("Error: " + errorText(m.err)))
	}

	sb.WriteString("\n")
	sb.WriteString(m.helpBar())

	return sb.String()
}

func (m Model) header(text, bg string) string {
	return lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(m.styles.SelectedTextColor)).
		Background(lipgloss.Color(bg)).
		Padding(0, 1).
		Render(text)
}

func (m Model) muted() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(m.styles.MutedColor))
}

// statusLine shows filter, sort and page position under the table
func (m Model) statusLine() string {
	prefs := m.vm.Preferences()
	parts := []string{
		fmt.Sprintf("Showing %s", filterDescription(prefs.FilterLabel())),
		fmt.Sprintf("sorted by %s", prefs.Sort.Label()),
	}
	if m.vm.NeedsPagination() {
		parts = append(parts, fmt.Sprintf("Page %d of %d", m.vm.CurrentPage()+1, m.vm.TotalPages()))
	}
	if m.loading {
		parts = append(parts, "loading...")
	} else if m.status != "" {
		parts = append(parts, m.status)
	}
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color(m.styles.NormalTextColor)).
		Render(strings.Join(parts, " | "))
}

func filterDescription(label string) string {
	if label == "all" {
		return "all notes"
	}
	return label + " notes"
}

// helpBar renders a sleek status bar with available actions
func (m Model) helpBar() string {
	var actions []string

	keyStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(m.styles.AccentColor)).
		Bold(true)
	descStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(m.styles.NormalTextColor))
	separatorStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(m.styles.BorderColor))

	separator := separatorStyle.Render(" • ")

	addAction := func(k, desc string) {
		actions = append(actions, fmt.Sprintf("%s %s", keyStyle.Render(k), descStyle.Render(desc)))
	}
	addBinding := func(b key.Binding, desc string) {
		addAction(b.Help().Key, desc)
	}

	switch m.mode {
	case LoginMode:
		addAction("tab", "next field")
		addAction("enter", "log in")
		addBinding(m.keyMap.SwitchAuthForm, "register")
		addAction("ctrl+c", "quit")

	case RegisterMode:
		addAction("tab", "next field")
		addAction("enter", "register")
		addBinding(m.keyMap.SwitchAuthForm, "log in")
		addAction("ctrl+c", "quit")

	case NormalMode:
		addBinding(m.keyMap.AddNote, "add")
		addBinding(m.keyMap.EditNote, "edit")
		addBinding(m.keyMap.DeleteNote, "del")
		addBinding(m.keyMap.CycleFilter, "filter")
		addBinding(m.keyMap.CycleSort, "sort")
		if m.vm.NeedsPagination() {
			addAction(m.keyMap.PrevPage.Help().Key+" "+m.keyMap.NextPage.Help().Key, "page")
		}
		addBinding(m.keyMap.ShowStats, "stats")
		addBinding(m.keyMap.ShowHelp, "help")
		addBinding(m.keyMap.QuitApp, "quit")

	case AddMode, EditMode:
		addAction("tab", "next field")
		addBinding(m.keyMap.CyclePriority, "priority")
		addAction("ctrl+s", "save")
		addAction("esc", "cancel")

	case DeleteConfirmMode:
		addAction("y", "confirm")
		addAction("n", "cancel")

	case StatsMode, HelpViewMode:
		addAction("esc", "back")
		addBinding(m.keyMap.QuitApp, "quit")
	}

	return strings.Join(actions, separator)
}

// renderForm renders the input form for adding/editing notes
func (m Model) renderForm() string {
	var sb strings.Builder

	sb.WriteString(m.label("Title", m.activeInput == titleField))
	sb.WriteString(m.titleInput.View())
	sb.WriteString(m.fieldError(validation.FieldTitle))
	sb.WriteString("\n\n")

	sb.WriteString(m.label("Content", m.activeInput == contentField))
	sb.WriteString(m.contentInput.View())
	sb.WriteString(m.fieldError(validation.FieldContent))
	sb.WriteString("\n\n")

	sb.WriteString(m.label("Priority", m.activeInput == priorityField))
	var choices []string
	for _, p := range api.Priorities {
		if p == m.priority {
			choices = append(choices, "["+priorityLabel(p, m.styles)+"]")
		} else {
			choices = append(choices, " "+m.muted().Render(string(p))+" ")
		}
	}
	sb.WriteString(strings.Join(choices, " "))
	sb.WriteString(m.fieldError(validation.FieldPriority))

	if m.loading {
		sb.WriteString("\n\n")
		sb.WriteString(m.muted().Render("Saving..."))
	}
	return sb.String()
}

// renderPreview shows the selected note's priority and the start of its content
func (m Model) renderPreview() string {
	note, ok := m.selectedNote()
	if !ok {
		return ""
	}
	lines := strings.Split(strings.TrimSpace(note.Content), "\n")
	if len(lines) > previewLines {
		lines = append(lines[:previewLines], "…")
	}

	var sb strings.Builder
	sb.WriteString(priorityLabel(note.Priority, m.styles))
	sb.WriteString(" ")
	sb.WriteString(lipgloss.NewStyle().Bold(true).Render(note.Title))
	sb.WriteString("\n")
	sb.WriteString(m.muted().Render(strings.Join(lines, "\n")))
	sb.WriteString("\n\n")
	return sb.String()
}

func (m Model) renderAuthForm() string {
	var sb strings.Builder

	sb.WriteString(m.label("Email", m.activeInput == usernameField))
	sb.WriteString(m.usernameInput.View())
	sb.WriteString(m.fieldError(validation.FieldUsername))
	sb.WriteString("\n\n")

	sb.WriteString(m.label("Password", m.activeInput == passwordField))
	sb.WriteString(m.passwordInput.View())
	sb.WriteString(m.fieldError(validation.FieldPassword))

	if m.loading {
		sb.WriteString("\n\n")
		sb.WriteString(m.muted().Render("Contacting server..."))
	}
	return sb.String()
}

func (m Model) renderStats() string {
	if m.stats == nil {
		if m.loading {
			return m.muted().Render("Loading statistics...")
		}
		return ""
	}

	valueStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(m.styles.AccentColor)).
		Bold(true).
		Width(10).
		Align(lipgloss.Right)
	nameStyle := lipgloss.NewStyle().Width(26)

	rows := []struct{ name, value, desc string }{
		{"Stale notes", fmt.Sprint(m.stats.StaleNotesCount), "Notes not updated in more than 2 days"},
		{"High priority notes", fmt.Sprint(m.stats.HighPriorityNotesCount), "Number of NOW priority notes"},
		{"Average completion time", utils.FormatHours(m.stats.AverageCompletionTimeHours), "Average time to mark note as DONE"},
		{"Average deletion time", utils.FormatHours(m.stats.AverageDeletionTimeHours), "Average time to deletion"},
	}

	var sb strings.Builder
	for _, r := range rows {
		sb.WriteString(nameStyle.Render(r.name))
		sb.WriteString(valueStyle.Render(r.value))
		sb.WriteString("   ")
		sb.WriteString(m.muted().Render(r.desc))
		sb.WriteString("\n")
	}
	return sb.String()
}

func (m Model) label(text string, focused bool) string {
	style := lipgloss.NewStyle()
	if focused {
		style = style.Foreground(lipgloss.Color(m.styles.AccentColor)).Bold(true)
	}
	return style.Render(text+":") + "\n"
}

func (m Model) fieldError(field string) string {
	msg := m.formErrors.Field(field)
	if msg == "" {
		return ""
	}
	return "\n" + lipgloss.NewStyle().Foreground(lipgloss.Color(m.styles.ErrorColor)).Render(msg)
}
