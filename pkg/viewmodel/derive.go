package viewmodel

import (
	"fmt"
	"sort"
	"strings"

	"qnotes/pkg/api"
)

// SortOption selects the ordering of the displayed notes
type SortOption string

const (
	SortCreatedDesc SortOption = "date-desc"
	SortCreatedAsc  SortOption = "date-asc"
	SortPriority    SortOption = "priority"
)

// DefaultSort matches what the list shows before the user picks anything
const DefaultSort = SortCreatedDesc

// SortOptions lists the options in the order a UI cycles through them
var SortOptions = []SortOption{SortCreatedDesc, SortCreatedAsc, SortPriority}

// ParseSortOption accepts the string forms used in config files and flags
func ParseSortOption(s string) (SortOption, error) {
	opt := SortOption(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range SortOptions {
		if known == opt {
			return opt, nil
		}
	}
	return "", fmt.Errorf("unknown sort option %q (want date-desc, date-asc or priority)", s)
}

// Label is the human-readable name shown in UIs
func (o SortOption) Label() string {
	switch o {
	case SortCreatedAsc:
		return "date (oldest first)"
	case SortCreatedDesc:
		return "date (newest first)"
	case SortPriority:
		return "priority"
	}
	return string(o)
}

// Preferences are the user-selected filter and sort. A nil Priority means no filter.
type Preferences struct {
	Priority *api.Priority
	Sort     SortOption
}

// DefaultPreferences shows every note, newest first
func DefaultPreferences() Preferences {
	return Preferences{Sort: DefaultSort}
}

// Filter returns a pointer to a copy of p, for use as Preferences.Priority
func Filter(p api.Priority) *api.Priority {
	return &p
}

// FilterLabel describes the priority filter for display
func (p Preferences) FilterLabel() string {
	if p.Priority == nil {
		return "all"
	}
	return string(*p.Priority)
}

// Derive computes the displayed list for one fetched page. It is a pure
// function: page.Notes is never modified and equal inputs give equal output.
func Derive(page api.Page, prefs Preferences) []api.Note {
	out := make([]api.Note, 0, len(page.Notes))
	for _, n := range page.Notes {
		if prefs.Priority != nil && n.Priority != *prefs.Priority {
			continue
		}
		out = append(out, n)
	}

	less := comparator(prefs.Sort, out)
	if less != nil {
		sort.SliceStable(out, less)
	}
	return out
}

func comparator(opt SortOption, notes []api.Note) func(i, j int) bool {
	switch opt {
	case SortCreatedAsc:
		return func(i, j int) bool {
			return notes[i].CreatedAt.Before(notes[j].CreatedAt)
		}
	case SortCreatedDesc:
		return func(i, j int) bool {
			return notes[i].CreatedAt.After(notes[j].CreatedAt)
		}
	case SortPriority:
		return func(i, j int) bool {
			return notes[i].Priority.Rank() < notes[j].Priority.Rank()
		}
	}
	// unknown option: keep page order
	return nil
}
