package search

import (
	"strings"
	"testing"
)

const sampleCSV = `Content.id,Content.title,Content.Link,Content.type,"Goal (from Goal content)",Age,Current Level,SCC Unit Title
rec1,Taking Turns Together,https://example.com/1,Video,turn-taking,Kindergarten,Beginner,Communication
rec2,,https://example.com/2,Video,counting,Kindergarten,Beginner,Numeracy
rec3,Story Circle,https://example.com/3,Activity,listening,Grade 1,Intermediate,Communication
`

func TestReadItems(t *testing.T) {
	items, err := ReadItems(strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatalf("ReadItems: %v", err)
	}
	// rec2 has no title and is skipped.
	if len(items) != 2 {
		t.Fatalf("want 2 items, got %d", len(items))
	}

	first := items[0]
	if first.ID != "rec1" || first.Title != "Taking Turns Together" {
		t.Fatalf("unexpected first item: %+v", first)
	}
	if first.URL != "https://example.com/1" || first.Type != "Video" {
		t.Fatalf("link columns not mapped: %+v", first)
	}
	if first.Goal != "turn-taking" || first.Age != "Kindergarten" || first.Level != "Beginner" || first.Skill != "Communication" {
		t.Fatalf("descriptive columns not mapped: %+v", first)
	}
	if items[1].ID != "rec3" {
		t.Fatalf("row order not preserved: %+v", items[1])
	}
}

func TestReadItemsShuffledColumns(t *testing.T) {
	csv := "SCC Unit Title,Content.title,Content.id\nCommunication,Story Circle,rec9\n"
	items, err := ReadItems(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("ReadItems: %v", err)
	}
	if len(items) != 1 || items[0].ID != "rec9" || items[0].Skill != "Communication" {
		t.Fatalf("columns should be resolved by header name: %+v", items)
	}
}

func TestReadItemsRaggedRow(t *testing.T) {
	csv := "Content.id,Content.title,Content.Link\nrec1,Short Row\n"
	items, err := ReadItems(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("ReadItems: %v", err)
	}
	if len(items) != 1 || items[0].URL != "" {
		t.Fatalf("missing trailing fields should read as empty: %+v", items)
	}
}

func TestReadItemsMissingTitleColumn(t *testing.T) {
	csv := "Content.id,Content.Link\nrec1,https://example.com/1\n"
	if _, err := ReadItems(strings.NewReader(csv)); err == nil {
		t.Fatal("missing title column should be rejected")
	}
}

func TestReadItemsEmptyInput(t *testing.T) {
	if _, err := ReadItems(strings.NewReader("")); err == nil {
		t.Fatal("empty input has no header and should fail")
	}
}
