package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"qnotes/pkg/api"
)

// HandleExportCommand processes --export. For the md type filename is a
// directory that receives one Markdown file per note.
func HandleExportCommand(ctx context.Context, env *Env, filename, exportType string) error {
	notes, err := fetchAll(ctx, env.Notes)
	if err != nil {
		return fmt.Errorf("loading notes: %w", err)
	}

	if exportType == "md" {
		if err := exportMarkdown(filename, notes); err != nil {
			return err
		}
		env.printf("Successfully exported %d note(s) to %s\n", len(notes), filename)
		return nil
	}

	var content []byte
	switch exportType {
	case "json":
		content, err = json.MarshalIndent(notes, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling notes to JSON: %w", err)
		}
	case "txt":
		content = []byte(formatText(notes))
	default:
		return fmt.Errorf("unknown export type: %s", exportType)
	}

	if err := os.MkdirAll(filepath.Dir(filename), 0755); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}
	if err := os.WriteFile(filename, content, 0644); err != nil {
		return fmt.Errorf("writing file: %w", err)
	}

	env.printf("Successfully exported %d note(s) to %s\n", len(notes), filename)
	return nil
}

// formatText groups notes under their creation day:
//
//	01.03.2024:
//	- [NOW] title: content
//	- [LATER] "Re: standup": content
//
// Titles that would be ambiguous are written as Go-quoted strings.
func formatText(notes []api.Note) string {
	var lines []string
	var lastDate string
	for _, n := range notes {
		dateStr := n.CreatedAt.Local().Format("02.01.2006")
		if dateStr != lastDate {
			lines = append(lines, fmt.Sprintf("\n%s:", dateStr))
			lastDate = dateStr
		}
		content := strings.Join(strings.Fields(n.Content), " ")
		lines = append(lines, fmt.Sprintf("- [%s] %s: %s", n.Priority, textTitle(n.Title), content))
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

func textTitle(title string) string {
	if strings.Contains(title, ": ") || strings.HasPrefix(title, `"`) || strings.ContainsAny(title, "\r\n") {
		return strconv.Quote(title)
	}
	return title
}

func exportMarkdown(dir string, notes []api.Note) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}
	for _, n := range notes {
		data, err := markdownNote(n)
		if err != nil {
			return fmt.Errorf("encoding note %s: %w", n.ID, err)
		}
		if err := os.WriteFile(filepath.Join(dir, n.ID+".md"), data, 0644); err != nil {
			return fmt.Errorf("writing file: %w", err)
		}
	}
	return nil
}

// markdownNote renders the note's metadata as YAML front matter followed by
// the content
func markdownNote(n api.Note) ([]byte, error) {
	meta, err := yaml.Marshal(n)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	buf.WriteString(frontMatterDelim + "\n")
	buf.Write(meta)
	buf.WriteString(frontMatterDelim + "\n\n")
	buf.WriteString(n.Content)
	if !strings.HasSuffix(n.Content, "\n") {
		buf.WriteString("\n")
	}
	return buf.Bytes(), nil
}
