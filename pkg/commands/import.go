package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"qnotes/pkg/api"
)

const frontMatterDelim = "---"

var (
	textNoteRegex = regexp.MustCompile(`^-\s*\[(\w+)\]\s*(.*)$`)
	dateLineRegex = regexp.MustCompile(`^(?:\d{2}\.\d{2}\.\d{4}|\d{4}-\d{2}-\d{2}):?$`)
)

// HandleImportCommand processes --import. filename may be a JSON export, a
// text listing, a single Markdown note or a directory of Markdown notes.
// Notes are always created anew; ids and timestamps in the input are ignored.
func HandleImportCommand(ctx context.Context, env *Env, filename string) error {
	requests, err := readImport(filename)
	if err != nil {
		return err
	}

	var added int
	for _, req := range requests {
		valid, err := buildRequest(req.Title, req.Content, string(req.Priority))
		if err != nil {
			env.printf("Skipping note '%s': %v\n", req.Title, err)
			continue
		}
		if _, err := env.Notes.CreateNote(ctx, valid); err != nil {
			env.printf("Error adding note '%s': %v\n", req.Title, err)
			continue
		}
		added++
	}

	env.printf("Successfully imported %d note(s) from %s\n", added, filename)
	return nil
}

func readImport(filename string) ([]api.NoteRequest, error) {
	info, err := os.Stat(filename)
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}
	if info.IsDir() {
		return readMarkdownDir(filename)
	}

	content, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".json":
		var notes []api.Note
		if err := json.Unmarshal(content, &notes); err != nil {
			return nil, fmt.Errorf("parsing JSON: %w", err)
		}
		requests := make([]api.NoteRequest, 0, len(notes))
		for _, n := range notes {
			if n.Deleted() {
				continue
			}
			requests = append(requests, n.Request())
		}
		return requests, nil
	case ".md":
		req, err := parseMarkdown(content)
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", filename, err)
		}
		return []api.NoteRequest{req}, nil
	default:
		return parseText(string(content)), nil
	}
}

func readMarkdownDir(dir string) ([]api.NoteRequest, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.md"))
	if err != nil {
		return nil, err
	}
	var requests []api.NoteRequest
	for _, path := range paths {
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading file: %w", err)
		}
		req, err := parseMarkdown(content)
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
		requests = append(requests, req)
	}
	return requests, nil
}

// parseMarkdown reads a note written by exportMarkdown
func parseMarkdown(content []byte) (api.NoteRequest, error) {
	text := strings.ReplaceAll(string(content), "\r\n", "\n")
	if !strings.HasPrefix(text, frontMatterDelim+"\n") {
		return api.NoteRequest{}, errors.New("missing front matter")
	}
	rest := text[len(frontMatterDelim)+1:]
	end := strings.Index(rest, "\n"+frontMatterDelim+"\n")
	if end < 0 {
		return api.NoteRequest{}, errors.New("unterminated front matter")
	}

	var meta api.Note
	if err := yaml.Unmarshal([]byte(rest[:end]), &meta); err != nil {
		return api.NoteRequest{}, err
	}
	body := rest[end+len(frontMatterDelim)+2:]
	meta.Content = strings.TrimSpace(body)
	return meta.Request(), nil
}

// parseText reads the listing written by formatText. Date headers are
// skipped since the server assigns creation times.
func parseText(content string) []api.NoteRequest {
	var requests []api.NoteRequest
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || dateLineRegex.MatchString(line) {
			continue
		}

		match := textNoteRegex.FindStringSubmatch(line)
		if match == nil {
			continue
		}
		title, body := splitTextNote(match[2])
		requests = append(requests, api.NoteRequest{
			Title:    strings.TrimSpace(title),
			Content:  strings.TrimSpace(body),
			Priority: api.Priority(strings.ToUpper(match[1])),
		})
	}
	return requests
}

// splitTextNote separates "title: content", unquoting a quoted title
func splitTextNote(s string) (title, body string) {
	if strings.HasPrefix(s, `"`) {
		if quoted, err := strconv.QuotedPrefix(s); err == nil {
			if title, err := strconv.Unquote(quoted); err == nil {
				rest := strings.TrimPrefix(s[len(quoted):], ":")
				return title, rest
			}
		}
	}
	title, body, _ = strings.Cut(s, ": ")
	return title, body
}
