package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"qnotes/pkg/api"
	"qnotes/pkg/gateway"
	"qnotes/pkg/viewmodel"
)

// NotesService is the part of the REST gateway the commands use
type NotesService interface {
	viewmodel.NotesGateway
	ListNotesQuery(ctx context.Context, q gateway.ListQuery) (api.Page, error)
	Login(ctx context.Context, creds api.Credentials) (string, error)
	Register(ctx context.Context, creds api.Credentials) (string, error)
	GetNote(ctx context.Context, id string) (api.Note, error)
	CreateNote(ctx context.Context, req api.NoteRequest) (api.Note, error)
	UpdateNote(ctx context.Context, id string, req api.NoteRequest) (api.Note, error)
	Statistics(ctx context.Context) (api.Statistics, error)
}

// Session persists the login between runs
type Session interface {
	SaveToken(token string) error
	ClearToken() error
	SaveUsername(username string) error
}

// Env carries what every command needs
type Env struct {
	Notes   NotesService
	Session Session
	Out     io.Writer
}

func (e *Env) printf(format string, args ...interface{}) {
	out := e.Out
	if out == nil {
		out = os.Stdout
	}
	fmt.Fprintf(out, format, args...)
}

// fetchAll walks every page of the listing, newest first
func fetchAll(ctx context.Context, notes NotesService) ([]api.Note, error) {
	var all []api.Note
	for page := 0; ; page++ {
		p, err := notes.ListNotes(ctx, page)
		if err != nil {
			return nil, err
		}
		all = append(all, p.Notes...)
		if page >= p.TotalPages-1 {
			return all, nil
		}
	}
}
