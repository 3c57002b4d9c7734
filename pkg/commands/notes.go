package commands

import (
	"context"
	"fmt"
	"strings"

	"qnotes/pkg/api"
	"qnotes/pkg/gateway"
	"qnotes/pkg/utils"
	"qnotes/pkg/validation"
	"qnotes/pkg/viewmodel"
)

const dateLayout = "2006-01-02 15:04"

// HandleList prints one page of notes, filtered and sorted by prefs. A date
// range other than ALL is applied by the server before paging.
func HandleList(ctx context.Context, env *Env, page int, prefs viewmodel.Preferences, dateRange gateway.DateRange) error {
	var source viewmodel.NotesGateway = env.Notes
	if dateRange != "" && dateRange != gateway.DateRangeAll {
		source = gateway.Filtered{Querier: env.Notes, Query: gateway.ListQuery{DateRange: dateRange}}
	}

	vm := viewmodel.New(source, prefs)
	if err := vm.LoadPage(ctx, page); err != nil {
		return fmt.Errorf("listing notes: %w", err)
	}

	notes := vm.Displayed()
	if len(notes) == 0 {
		env.printf("No notes found.\n")
	}
	for _, n := range notes {
		env.printf("%-36s  %-7s  %s  %s\n", n.ID, n.Priority, n.CreatedAt.Local().Format(dateLayout), n.Title)
	}

	if vm.NeedsPagination() {
		env.printf("\nPage %d of %d\n", vm.CurrentPage()+1, vm.TotalPages())
	}
	return nil
}

// HandleAddNote processes --add
func HandleAddNote(ctx context.Context, env *Env, title, content, priority string) error {
	if priority == "" {
		priority = string(api.DefaultPriority)
	}
	req, err := buildRequest(title, content, priority)
	if err != nil {
		return fmt.Errorf("adding note: %w", err)
	}

	note, err := env.Notes.CreateNote(ctx, req)
	if err != nil {
		return fmt.Errorf("adding note: %w", err)
	}
	utils.Log("Added note: %s", note.ID)
	env.printf("Note added: %s\n", note.ID)
	return nil
}

// HandleEditNote processes --edit. Empty arguments keep the stored values.
func HandleEditNote(ctx context.Context, env *Env, id, title, content, priority string) error {
	current, err := env.Notes.GetNote(ctx, id)
	if err != nil {
		return fmt.Errorf("loading note %s: %w", id, err)
	}

	if title == "" {
		title = current.Title
	}
	if content == "" {
		content = current.Content
	}
	if priority == "" {
		priority = string(current.Priority)
	}
	req, err := buildRequest(title, content, priority)
	if err != nil {
		return fmt.Errorf("updating note: %w", err)
	}

	if _, err := env.Notes.UpdateNote(ctx, id, req); err != nil {
		return fmt.Errorf("updating note: %w", err)
	}
	utils.Log("Updated note: %s", id)
	env.printf("Note updated: %s\n", id)
	return nil
}

// HandleDeleteNote processes --delete
func HandleDeleteNote(ctx context.Context, env *Env, id string) error {
	if err := env.Notes.DeleteNote(ctx, id); err != nil {
		return fmt.Errorf("deleting note: %w", err)
	}
	utils.Log("Deleted note: %s", id)
	env.printf("Note deleted: %s\n", id)
	return nil
}

func buildRequest(title, content, priority string) (api.NoteRequest, error) {
	if err := validation.Note(title, content, priority).Err(); err != nil {
		return api.NoteRequest{}, err
	}
	p, _ := api.ParsePriority(priority)
	return api.NoteRequest{
		Title:    strings.TrimSpace(title),
		Content:  content,
		Priority: p,
	}, nil
}
