package commands

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
	"time"

	"qnotes/pkg/api"
	"qnotes/pkg/gateway"
	"qnotes/pkg/viewmodel"
)

var t0 = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

// stubNotes keeps notes in memory and pages them like the server does
type stubNotes struct {
	notes    []api.Note
	pageSize int
	token    string
	err      error
	created  []api.NoteRequest
	updated  map[string]api.NoteRequest
	deleted  []string
	queries  []gateway.ListQuery
}

func newStub(notes ...api.Note) *stubNotes {
	return &stubNotes{notes: notes, pageSize: 10, token: "tok", updated: map[string]api.NoteRequest{}}
}

func (s *stubNotes) ListNotes(ctx context.Context, page int) (api.Page, error) {
	if s.err != nil {
		return api.Page{}, s.err
	}
	total := (len(s.notes) + s.pageSize - 1) / s.pageSize
	start := page * s.pageSize
	out := []api.Note{}
	if start < len(s.notes) {
		end := start + s.pageSize
		if end > len(s.notes) {
			end = len(s.notes)
		}
		out = s.notes[start:end]
	}
	return api.Page{Notes: out, TotalPages: total, CurrentPage: page}, nil
}

func (s *stubNotes) ListNotesQuery(ctx context.Context, q gateway.ListQuery) (api.Page, error) {
	s.queries = append(s.queries, q)
	return s.ListNotes(ctx, q.Page)
}

func (s *stubNotes) DeleteNote(ctx context.Context, id string) error {
	if s.err != nil {
		return s.err
	}
	s.deleted = append(s.deleted, id)
	return nil
}

func (s *stubNotes) Login(ctx context.Context, creds api.Credentials) (string, error) {
	return s.token, s.err
}

func (s *stubNotes) Register(ctx context.Context, creds api.Credentials) (string, error) {
	return s.token, s.err
}

func (s *stubNotes) GetNote(ctx context.Context, id string) (api.Note, error) {
	for _, n := range s.notes {
		if n.ID == id {
			return n, nil
		}
	}
	return api.Note{}, &gateway.OperationError{Op: "get note", Status: 404, Message: "Note not found"}
}

func (s *stubNotes) CreateNote(ctx context.Context, req api.NoteRequest) (api.Note, error) {
	if s.err != nil {
		return api.Note{}, s.err
	}
	s.created = append(s.created, req)
	return api.Note{ID: fmt.Sprintf("new-%d", len(s.created)), Title: req.Title, Content: req.Content, Priority: req.Priority}, nil
}

func (s *stubNotes) UpdateNote(ctx context.Context, id string, req api.NoteRequest) (api.Note, error) {
	s.updated[id] = req
	return api.Note{ID: id, Title: req.Title, Content: req.Content, Priority: req.Priority}, nil
}

func (s *stubNotes) Statistics(ctx context.Context) (api.Statistics, error) {
	return api.Statistics{StaleNotesCount: 2, HighPriorityNotesCount: 1, AverageCompletionTimeHours: 12.5}, s.err
}

type stubSession struct {
	token, username string
}

func (s *stubSession) SaveToken(token string) error { s.token = token; return nil }
func (s *stubSession) ClearToken() error { s.token = ""; return nil }
func (s *stubSession) SaveUsername(name string) error { s.username = name; return nil }

func newEnv(notes *stubNotes) (*Env, *stubSession, *bytes.Buffer) {
	var out bytes.Buffer
	session := &stubSession{}
	return &Env{Notes: notes, Session: session, Out: &out}, session, &out
}

func mkNote(id string, p api.Priority, created time.Time, title, content string) api.Note {
	return api.Note{ID: id, Title: title, Content: content, Priority: p, CreatedAt: created, UpdatedAt: created}
}

func TestLoginStoresSession(t *testing.T) {
	env, session, out := newEnv(newStub())

	if err := HandleLogin(context.Background(), env, " ada@example.com ", "pw", false); err != nil {
		t.Fatalf("HandleLogin: %v", err)
	}
	if session.token != "tok" || session.username != "ada@example.com" {
		t.Errorf("session = %+v", session)
	}
	if !strings.Contains(out.String(), "Logged in as ada@example.com") {
		t.Errorf("output = %q", out.String())
	}

	if err := HandleLogout(env); err != nil {
		t.Fatalf("HandleLogout: %v", err)
	}
	if session.token != "" {
		t.Error("token kept after logout")
	}
}

func TestRegisterValidatesFirst(t *testing.T) {
	notes := newStub()
	env, session, _ := newEnv(notes)

	err := HandleLogin(context.Background(), env, "ada@example.com", "short", true)
	if err == nil || !strings.Contains(err.Error(), "Password must be at least 8 characters") {
		t.Fatalf("expected validation error, got %v", err)
	}
	if session.token != "" {
		t.Error("token saved despite validation failure")
	}
}

func TestLoginFailureIsReported(t *testing.T) {
	notes := newStub()
	notes.err = &gateway.OperationError{Op: "login", Status: 401, Message: "bad credentials"}
	env, _, _ := newEnv(notes)

	err := HandleLogin(context.Background(), env, "ada@example.com", "pw", false)
	if !errors.Is(err, gateway.ErrUnauthorized) {
		t.Errorf("want ErrUnauthorized in chain, got %v", err)
	}
}

func TestListUsesPreferencesAndFooter(t *testing.T) {
	var notes []api.Note
	for i := 0; i < 12; i++ {
		p := api.PriorityLater
		if i == 3 {
			p = api.PriorityNow
		}
		notes = append(notes, mkNote(fmt.Sprintf("n%02d", i), p, t0.Add(-time.Duration(i)*time.Hour), fmt.Sprintf("title %d", i), "c"))
	}
	env, _, out := newEnv(newStub(notes...))

	prefs := viewmodel.Preferences{Sort: viewmodel.SortPriority}
	if err := HandleList(context.Background(), env, 0, prefs, gateway.DateRangeAll); err != nil {
		t.Fatalf("HandleList: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if !strings.HasPrefix(lines[0], "n03") {
		t.Errorf("NOW note should be first, got %q", lines[0])
	}
	if lines[len(lines)-1] != "Page 1 of 2" {
		t.Errorf("footer = %q", lines[len(lines)-1])
	}
}

func TestListSinglePageHasNoFooter(t *testing.T) {
	env, _, out := newEnv(newStub(mkNote("a", api.PriorityNow, t0, "only", "c")))
	if err := HandleList(context.Background(), env, 0, viewmodel.DefaultPreferences(), ""); err != nil {
		t.Fatalf("HandleList: %v", err)
	}
	if strings.Contains(out.String(), "Page ") {
		t.Errorf("unexpected footer in %q", out.String())
	}
}

func TestListEmptyFilter(t *testing.T) {
	env, _, out := newEnv(newStub(mkNote("a", api.PriorityNow, t0, "only", "c")))
	prefs := viewmodel.Preferences{Priority: viewmodel.Filter(api.PrioritySomeday), Sort: viewmodel.DefaultSort}
	if err := HandleList(context.Background(), env, 0, prefs, gateway.DateRangeAll); err != nil {
		t.Fatalf("HandleList: %v", err)
	}
	if strings.TrimSpace(out.String()) != "No notes found." {
		t.Errorf("output = %q", out.String())
	}
}

func TestListDateRangeGoesToServer(t *testing.T) {
	notes := newStub(mkNote("a", api.PriorityNow, t0, "only", "c"))
	env, _, out := newEnv(notes)

	if err := HandleList(context.Background(), env, 0, viewmodel.DefaultPreferences(), gateway.DateRangeToday); err != nil {
		t.Fatalf("HandleList: %v", err)
	}
	if len(notes.queries) != 1 || notes.queries[0].DateRange != gateway.DateRangeToday || notes.queries[0].Page != 0 {
		t.Errorf("queries = %+v", notes.queries)
	}
	if !strings.Contains(out.String(), "only") {
		t.Errorf("output = %q", out.String())
	}

	notes.queries = nil
	if err := HandleList(context.Background(), env, 0, viewmodel.DefaultPreferences(), gateway.DateRangeAll); err != nil {
		t.Fatalf("HandleList: %v", err)
	}
	if len(notes.queries) != 0 {
		t.Errorf("ALL should use the plain listing, queries = %+v", notes.queries)
	}
}

func TestAddNote(t *testing.T) {
	notes := newStub()
	env, _, _ := newEnv(notes)

	if err := HandleAddNote(context.Background(), env, "milk", "2 litres", ""); err != nil {
		t.Fatalf("HandleAddNote: %v", err)
	}
	if len(notes.created) != 1 || notes.created[0].Priority != api.PriorityLater {
		t.Errorf("created = %+v", notes.created)
	}

	err := HandleAddNote(context.Background(), env, "milk", "", "now")
	if err == nil || !strings.Contains(err.Error(), "Content is required") {
		t.Errorf("expected content error, got %v", err)
	}
	if len(notes.created) != 1 {
		t.Error("invalid note reached the server")
	}
}

func TestEditNoteKeepsUnsetFields(t *testing.T) {
	notes := newStub(mkNote("a", api.PriorityNow, t0, "milk", "2 litres"))
	env, _, _ := newEnv(notes)

	if err := HandleEditNote(context.Background(), env, "a", "", "", "done"); err != nil {
		t.Fatalf("HandleEditNote: %v", err)
	}
	got := notes.updated["a"]
	want := api.NoteRequest{Title: "milk", Content: "2 litres", Priority: api.PriorityDone}
	if got != want {
		t.Errorf("update = %+v, want %+v", got, want)
	}

	err := HandleEditNote(context.Background(), env, "missing", "x", "", "")
	if !errors.Is(err, gateway.ErrNotFound) {
		t.Errorf("want ErrNotFound, got %v", err)
	}
}

func TestDeleteNote(t *testing.T) {
	notes := newStub()
	env, _, out := newEnv(notes)
	if err := HandleDeleteNote(context.Background(), env, "a"); err != nil {
		t.Fatalf("HandleDeleteNote: %v", err)
	}
	if len(notes.deleted) != 1 || notes.deleted[0] != "a" {
		t.Errorf("deleted = %v", notes.deleted)
	}
	if !strings.Contains(out.String(), "Note deleted: a") {
		t.Errorf("output = %q", out.String())
	}
}

func TestStats(t *testing.T) {
	env, _, out := newEnv(newStub())
	if err := HandleStats(context.Background(), env); err != nil {
		t.Fatalf("HandleStats: %v", err)
	}
	for _, want := range []string{"Notes not updated in more than 2 days", "12.5 h", "Average time to deletion"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %q:\n%s", want, out.String())
		}
	}
}

func TestExportImportText(t *testing.T) {
	source := newStub(
		mkNote("a", api.PriorityNow, t0.Add(time.Hour), "milk", "2 litres\nsemi skimmed"),
		mkNote("b", api.PrioritySomeday, t0, "paint", "the fence"),
		mkNote("c", api.PriorityNow, t0, "Re: standup", "move to 10am"),
		mkNote("d", api.PriorityLater, t0, `"quoted" title`, "kept: as is"),
	)
	env, _, _ := newEnv(source)
	path := filepath.Join(t.TempDir(), "out", "notes.txt")

	if err := HandleExportCommand(context.Background(), env, path, "txt"); err != nil {
		t.Fatalf("export: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "- [NOW] milk: 2 litres semi skimmed") {
		t.Errorf("unexpected text export:\n%s", data)
	}

	target := newStub()
	env, _, _ = newEnv(target)
	if err := HandleImportCommand(context.Background(), env, path); err != nil {
		t.Fatalf("import: %v", err)
	}
	want := []api.NoteRequest{
		{Title: "milk", Content: "2 litres semi skimmed", Priority: api.PriorityNow},
		{Title: "paint", Content: "the fence", Priority: api.PrioritySomeday},
		{Title: "Re: standup", Content: "move to 10am", Priority: api.PriorityNow},
		{Title: `"quoted" title`, Content: "kept: as is", Priority: api.PriorityLater},
	}
	if len(target.created) != len(want) {
		t.Fatalf("created %+v", target.created)
	}
	for i := range want {
		if target.created[i] != want[i] {
			t.Errorf("note %d = %+v, want %+v", i, target.created[i], want[i])
		}
	}
}

func TestExportImportMarkdown(t *testing.T) {
	source := newStub(
		mkNote("a", api.PriorityNow, t0, "milk", "line one\n\nline two"),
		mkNote("b", api.PriorityDone, t0, "paint", "fence"),
	)
	env, _, _ := newEnv(source)
	dir := filepath.Join(t.TempDir(), "md")

	if err := HandleExportCommand(context.Background(), env, dir, "md"); err != nil {
		t.Fatalf("export: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(dir, "a.md"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "---\nid: a\ntitle: milk\npriority: NOW\n") {
		t.Errorf("unexpected front matter:\n%s", data)
	}

	target := newStub()
	env, _, _ = newEnv(target)
	if err := HandleImportCommand(context.Background(), env, dir); err != nil {
		t.Fatalf("import: %v", err)
	}
	sort.Slice(target.created, func(i, j int) bool { return target.created[i].Title < target.created[j].Title })
	if len(target.created) != 2 || target.created[0].Content != "line one\n\nline two" || target.created[1].Priority != api.PriorityDone {
		t.Errorf("imported %+v", target.created)
	}
}

func TestExportImportJSON(t *testing.T) {
	source := newStub(mkNote("a", api.PriorityLater, t0, "milk", "2 litres"))
	env, _, _ := newEnv(source)
	path := filepath.Join(t.TempDir(), "notes.json")

	if err := HandleExportCommand(context.Background(), env, path, "json"); err != nil {
		t.Fatalf("export: %v", err)
	}
	target := newStub()
	env, _, out := newEnv(target)
	if err := HandleImportCommand(context.Background(), env, path); err != nil {
		t.Fatalf("import: %v", err)
	}
	if len(target.created) != 1 || target.created[0] != source.notes[0].Request() {
		t.Errorf("imported %+v", target.created)
	}
	if !strings.Contains(out.String(), "Successfully imported 1 note(s)") {
		t.Errorf("output = %q", out.String())
	}
}

func TestImportSkipsInvalidLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	body := "01.03.2024:\n- [NOW] ok: fine\n- [URGENT] bad: priority\n- [LATER] no content\nrandom line\n"
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	target := newStub()
	env, _, out := newEnv(target)

	if err := HandleImportCommand(context.Background(), env, path); err != nil {
		t.Fatalf("import: %v", err)
	}
	if len(target.created) != 1 || target.created[0].Title != "ok" {
		t.Errorf("created = %+v", target.created)
	}
	if strings.Count(out.String(), "Skipping note") != 2 {
		t.Errorf("output = %q", out.String())
	}
}

func TestUnknownExportType(t *testing.T) {
	env, _, _ := newEnv(newStub())
	if err := HandleExportCommand(context.Background(), env, filepath.Join(t.TempDir(), "x"), "csv"); err == nil {
		t.Error("expected error for csv")
	}
}

func TestImportJSONSkipsDeletedNotes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.json")
	body := `[
  {"id": "a", "title": "keep", "content": "c", "priority": "NOW"},
  {"id": "b", "title": "gone", "content": "c", "priority": "LATER", "deletedAt": "2024-03-01T09:00:00Z"}
]`
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	target := newStub()
	env, _, _ := newEnv(target)

	if err := HandleImportCommand(context.Background(), env, path); err != nil {
		t.Fatalf("import: %v", err)
	}
	if len(target.created) != 1 || target.created[0].Title != "keep" {
		t.Errorf("created = %+v", target.created)
	}
}
