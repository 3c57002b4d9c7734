package ui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"qnotes/pkg/api"
)

// Network work runs inside tea.Cmds; results come back as these messages.

type pageLoadedMsg struct{ err error }

type noteLoadedMsg struct {
	note api.Note
	err  error
}

type noteSavedMsg struct {
	note    api.Note
	created bool
	err     error
}

type noteDeletedMsg struct{ err error }

type statsLoadedMsg struct {
	stats api.Statistics
	err   error
}

type authDoneMsg struct {
	username string
	token    string
	err      error
}

func (m Model) loadPageCmd(page int) tea.Cmd {
	vm := m.vm
	return func() tea.Msg {
		return pageLoadedMsg{err: vm.LoadPage(context.Background(), page)}
	}
}

func (m Model) reloadCmd() tea.Cmd {
	vm := m.vm
	return func() tea.Msg {
		return pageLoadedMsg{err: vm.Reload(context.Background())}
	}
}

func (m Model) nextPageCmd() tea.Cmd {
	vm := m.vm
	return func() tea.Msg {
		return pageLoadedMsg{err: vm.NextPage(context.Background())}
	}
}

func (m Model) prevPageCmd() tea.Cmd {
	vm := m.vm
	return func() tea.Msg {
		return pageLoadedMsg{err: vm.PrevPage(context.Background())}
	}
}

func (m Model) getNoteCmd(id string) tea.Cmd {
	notes := m.notes
	return func() tea.Msg {
		note, err := notes.GetNote(context.Background(), id)
		return noteLoadedMsg{note: note, err: err}
	}
}

func (m Model) createNoteCmd(req api.NoteRequest) tea.Cmd {
	notes := m.notes
	return func() tea.Msg {
		note, err := notes.CreateNote(context.Background(), req)
		return noteSavedMsg{note: note, created: true, err: err}
	}
}

func (m Model) updateNoteCmd(id string, req api.NoteRequest) tea.Cmd {
	notes := m.notes
	return func() tea.Msg {
		note, err := notes.UpdateNote(context.Background(), id, req)
		return noteSavedMsg{note: note, err: err}
	}
}

func (m Model) deleteNoteCmd(id string) tea.Cmd {
	vm := m.vm
	return func() tea.Msg {
		return noteDeletedMsg{err: vm.DeleteNote(context.Background(), id)}
	}
}

func (m Model) statsCmd() tea.Cmd {
	notes := m.notes
	return func() tea.Msg {
		stats, err := notes.Statistics(context.Background())
		return statsLoadedMsg{stats: stats, err: err}
	}
}

func (m Model) authCmd(creds api.Credentials, register bool) tea.Cmd {
	notes := m.notes
	return func() tea.Msg {
		var token string
		var err error
		if register {
			token, err = notes.Register(context.Background(), creds)
		} else {
			token, err = notes.Login(context.Background(), creds)
		}
		return authDoneMsg{username: creds.Username, token: token, err: err}
	}
}
