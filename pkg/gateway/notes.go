package gateway

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"qnotes/pkg/api"
)

const notesPath = "/api/notes"

// DateRange narrows a listing to recently created notes
type DateRange string

const (
	DateRangeAll          DateRange = "ALL"
	DateRangeToday        DateRange = "TODAY"
	DateRangePastSevenDay DateRange = "PAST_SEVEN_DAYS"
)

// ParseDateRange accepts ALL, TODAY or PAST_SEVEN_DAYS, ignoring case and
// allowing dashes for underscores
func ParseDateRange(s string) (DateRange, error) {
	r := DateRange(strings.ReplaceAll(strings.ToUpper(strings.TrimSpace(s)), "-", "_"))
	switch r {
	case DateRangeAll, DateRangeToday, DateRangePastSevenDay:
		return r, nil
	}
	return "", fmt.Errorf("unknown date range %q (want ALL, TODAY or PAST_SEVEN_DAYS)", s)
}

// ListQuery selects one page of notes. Priority and DateRange are optional
// server-side filters; the zero value asks for the first unfiltered page.
type ListQuery struct {
	Page      int
	Priority  *api.Priority
	DateRange DateRange
}

func (q ListQuery) values() url.Values {
	v := url.Values{}
	v.Set("page", strconv.Itoa(q.Page))
	if q.Priority != nil {
		v.Set("priority", string(*q.Priority))
	}
	if q.DateRange != "" && q.DateRange != DateRangeAll {
		v.Set("dateRange", string(q.DateRange))
	}
	return v
}

// ListNotes fetches page (0-based) of the caller's notes
func (c *Client) ListNotes(ctx context.Context, page int) (api.Page, error) {
	return c.ListNotesQuery(ctx, ListQuery{Page: page})
}

// ListNotesQuery fetches one page using the optional server-side filters
func (c *Client) ListNotesQuery(ctx context.Context, q ListQuery) (api.Page, error) {
	var page api.Page
	if err := c.do(ctx, "list notes", http.MethodGet, notesPath, q.values(), nil, &page); err != nil {
		return api.Page{}, err
	}
	if page.Notes == nil {
		page.Notes = []api.Note{}
	}
	return page, nil
}

// Querier lists notes with server-side filters
type Querier interface {
	ListNotesQuery(ctx context.Context, q ListQuery) (api.Page, error)
	DeleteNote(ctx context.Context, id string) error
}

// Filtered pages through a listing with Query's filters applied by the
// server. Query.Page is replaced by the page asked for.
type Filtered struct {
	Querier
	Query ListQuery
}

func (f Filtered) ListNotes(ctx context.Context, page int) (api.Page, error) {
	q := f.Query
	q.Page = page
	return f.Querier.ListNotesQuery(ctx, q)
}

func (c *Client) GetNote(ctx context.Context, id string) (api.Note, error) {
	var note api.Note
	if err := c.do(ctx, "get note", http.MethodGet, notePath(id), nil, nil, &note); err != nil {
		return api.Note{}, err
	}
	return note, nil
}

func (c *Client) CreateNote(ctx context.Context, req api.NoteRequest) (api.Note, error) {
	var note api.Note
	if err := c.do(ctx, "create note", http.MethodPost, notesPath, nil, req, &note); err != nil {
		return api.Note{}, err
	}
	return note, nil
}

func (c *Client) UpdateNote(ctx context.Context, id string, req api.NoteRequest) (api.Note, error) {
	var note api.Note
	if err := c.do(ctx, "update note", http.MethodPut, notePath(id), nil, req, &note); err != nil {
		return api.Note{}, err
	}
	return note, nil
}

func (c *Client) DeleteNote(ctx context.Context, id string) error {
	return c.do(ctx, "delete note", http.MethodDelete, notePath(id), nil, nil, nil)
}

// Statistics fetches the lifecycle summary computed by the server
func (c *Client) Statistics(ctx context.Context) (api.Statistics, error) {
	var stats api.Statistics
	if err := c.do(ctx, "load statistics", http.MethodGet, notesPath+"/statistics", nil, nil, &stats); err != nil {
		return api.Statistics{}, err
	}
	return stats, nil
}

func notePath(id string) string {
	return notesPath + "/" + url.PathEscape(id)
}
