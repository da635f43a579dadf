package search

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/edspark/coach/src/content"
)

// Column headers of the lesson-content CSV export.
const (
	colID    = "Content.id"
	colTitle = "Content.title"
	colURL   = "Content.Link"
	colType  = "Content.type"
	colGoal  = "Goal (from Goal content)"
	colAge   = "Age"
	colLevel = "Current Level"
	colSkill = "SCC Unit Title"
)

// LoadCSV reads the content export and returns one Item per usable row.
// Rows without a title are skipped: the title is the document text the index
// embeds, so a blank one has nothing to match against.
func LoadCSV(path string) ([]content.Item, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open content csv: %w", err)
	}
	defer f.Close()
	return ReadItems(f)
}

// ReadItems parses CSV content with a header row into items.
func ReadItems(r io.Reader) ([]content.Item, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(name)] = i
	}
	if _, ok := index[colTitle]; !ok {
		return nil, fmt.Errorf("content csv is missing column %q", colTitle)
	}

	field := func(row []string, name string) string {
		i, ok := index[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var items []content.Item
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row: %w", err)
		}
		item := content.Item{
			ID:    field(row, colID),
			Title: field(row, colTitle),
			URL:   field(row, colURL),
			Type:  field(row, colType),
			Goal:  field(row, colGoal),
			Age:   field(row, colAge),
			Level: field(row, colLevel),
			Skill: field(row, colSkill),
		}
		if item.Title == "" {
			continue
		}
		items = append(items, item)
	}
	return items, nil
}
