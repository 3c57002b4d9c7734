package api

import "time"

// Note is a user-authored text item as returned by the notes API
type Note struct {
	ID        string     `json:"id" yaml:"id"`
	Title     string     `json:"title" yaml:"title"`
	Content   string     `json:"content" yaml:"-"`
	Priority  Priority   `json:"priority" yaml:"priority"`
	CreatedAt time.Time  `json:"createdAt" yaml:"created_at"`
	UpdatedAt time.Time  `json:"updatedAt" yaml:"updated_at"`
	DeletedAt *time.Time `json:"deletedAt,omitempty" yaml:"deleted_at,omitempty"`
}

// Deleted reports whether the note was soft-deleted on the server
func (n Note) Deleted() bool {
	return n.DeletedAt != nil
}

// Request returns the editable fields of n as a create/update payload
func (n Note) Request() NoteRequest {
	return NoteRequest{Title: n.Title, Content: n.Content, Priority: n.Priority}
}

// NoteRequest is the body of create and update calls
type NoteRequest struct {
	Title    string   `json:"title"`
	Content  string   `json:"content"`
	Priority Priority `json:"priority"`
}

// Page is one server-paginated slice of the notes collection
type Page struct {
	Notes       []Note `json:"notes"`
	TotalPages  int    `json:"totalPages"`
	CurrentPage int    `json:"currentPage"`
}

// NeedsPagination is false when everything fits on a single page (or there is nothing at all)
func (p Page) NeedsPagination() bool {
	return p.TotalPages > 1
}

func (p Page) HasPrev() bool {
	return p.CurrentPage > 0
}

func (p Page) HasNext() bool {
	return p.CurrentPage < p.TotalPages-1
}

// Statistics summarises note lifecycle for the logged-in user
type Statistics struct {
	StaleNotesCount            int     `json:"staleNotesCount"`
	HighPriorityNotesCount     int     `json:"highPriorityNotesCount"`
	AverageCompletionTimeHours float64 `json:"averageCompletionTimeHours"`
	AverageDeletionTimeHours   float64 `json:"averageDeletionTimeHours"`
}

// Credentials is the body of login and register calls
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AuthResponse carries the bearer token issued by login or register
type AuthResponse struct {
	Token string `json:"token"`
}
