package viewmodel

import (
	"context"
	"sync"

	"qnotes/pkg/api"
)

// NotesGateway is the part of the notes API the list needs
type NotesGateway interface {
	ListNotes(ctx context.Context, page int) (api.Page, error)
	DeleteNote(ctx context.Context, id string) error
}

// NotesViewModel keeps the last fetched page and the user's preferences and
// derives the visible list from them. Callers re-render after each call.
//
// One owner drives an instance, but UIs run network calls on other goroutines,
// so state is guarded; the lock is never held across a gateway call. When two
// loads overlap, whichever finishes last wins.
type NotesViewModel struct {
	gw NotesGateway

	mu        sync.RWMutex
	page      api.Page
	prefs     Preferences
	displayed []api.Note
}

// New creates a view-model with no page loaded yet
func New(gw NotesGateway, prefs Preferences) *NotesViewModel {
	if prefs.Sort == "" {
		prefs.Sort = DefaultSort
	}
	if prefs.Priority != nil {
		prefs.Priority = Filter(*prefs.Priority)
	}
	return &NotesViewModel{
		gw:        gw,
		prefs:     prefs,
		page:      api.Page{Notes: []api.Note{}},
		displayed: []api.Note{},
	}
}

// LoadPage fetches pageIndex and replaces the stored page. On error nothing
// changes. The index is not clamped; the gateway reports out-of-range pages.
func (vm *NotesViewModel) LoadPage(ctx context.Context, pageIndex int) error {
	page, err := vm.gw.ListNotes(ctx, pageIndex)
	if err != nil {
		return err
	}
	if page.Notes == nil {
		page.Notes = []api.Note{}
	}

	vm.mu.Lock()
	vm.page = page
	vm.displayed = Derive(vm.page, vm.prefs)
	vm.mu.Unlock()
	return nil
}

// Reload fetches the current page again
func (vm *NotesViewModel) Reload(ctx context.Context) error {
	return vm.LoadPage(ctx, vm.CurrentPage())
}

// NextPage loads the following page; a no-op on the last page
func (vm *NotesViewModel) NextPage(ctx context.Context) error {
	page := vm.Page()
	if !page.HasNext() {
		return nil
	}
	return vm.LoadPage(ctx, page.CurrentPage+1)
}

// PrevPage loads the preceding page; a no-op on the first page
func (vm *NotesViewModel) PrevPage(ctx context.Context) error {
	page := vm.Page()
	if !page.HasPrev() {
		return nil
	}
	return vm.LoadPage(ctx, page.CurrentPage-1)
}

// DeleteNote deletes id and then reloads the current page so pagination
// matches the server. A failed delete leaves everything as it was.
func (vm *NotesViewModel) DeleteNote(ctx context.Context, id string) error {
	if err := vm.gw.DeleteNote(ctx, id); err != nil {
		return err
	}
	return vm.LoadPage(ctx, vm.CurrentPage())
}

// SetPriorityFilter filters the list to p, or shows everything when p is nil
func (vm *NotesViewModel) SetPriorityFilter(p *api.Priority) {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	if p == nil {
		vm.prefs.Priority = nil
	} else {
		vm.prefs.Priority = Filter(*p)
	}
	vm.displayed = Derive(vm.page, vm.prefs)
}

// SetSortOption changes the ordering of the list
func (vm *NotesViewModel) SetSortOption(opt SortOption) {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	vm.prefs.Sort = opt
	vm.displayed = Derive(vm.page, vm.prefs)
}

// CyclePriorityFilter steps all -> NOW -> LATER -> SOMEDAY -> DONE -> all
func (vm *NotesViewModel) CyclePriorityFilter() {
	current := vm.Preferences().Priority
	switch {
	case current == nil:
		vm.SetPriorityFilter(&api.Priorities[0])
	case current.Rank() >= len(api.Priorities)-1:
		vm.SetPriorityFilter(nil)
	default:
		next := current.Next()
		vm.SetPriorityFilter(&next)
	}
}

// CycleSortOption steps through SortOptions
func (vm *NotesViewModel) CycleSortOption() {
	current := vm.Preferences().Sort
	next := SortOptions[0]
	for i, opt := range SortOptions {
		if opt == current {
			next = SortOptions[(i+1)%len(SortOptions)]
			break
		}
	}
	vm.SetSortOption(next)
}

// Displayed returns a copy of the filtered, sorted notes
func (vm *NotesViewModel) Displayed() []api.Note {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	out := make([]api.Note, len(vm.displayed))
	copy(out, vm.displayed)
	return out
}

// Page returns the last fetched page
func (vm *NotesViewModel) Page() api.Page {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	page := vm.page
	page.Notes = make([]api.Note, len(vm.page.Notes))
	copy(page.Notes, vm.page.Notes)
	return page
}

func (vm *NotesViewModel) CurrentPage() int {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return vm.page.CurrentPage
}

func (vm *NotesViewModel) TotalPages() int {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return vm.page.TotalPages
}

// NeedsPagination is false for zero or one page
func (vm *NotesViewModel) NeedsPagination() bool {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return vm.page.NeedsPagination()
}

// Preferences returns the current filter and sort
func (vm *NotesViewModel) Preferences() Preferences {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	prefs := vm.prefs
	if prefs.Priority != nil {
		prefs.Priority = Filter(*prefs.Priority)
	}
	return prefs
}
