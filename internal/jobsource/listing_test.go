package jobsource

import (
	"encoding/json"
	"os"
	"testing"
)

func TestDescriptionText(t *testing.T) {
	l := &Listing{Snippet: "short", FullDescription: "long and complete"}
	if got := l.DescriptionText(); got != "long and complete" {
		t.Fatalf("expected full description to win, got %q", got)
	}

	l = &Listing{Snippet: "short"}
	if got := l.DescriptionText(); got != "short" {
		t.Fatalf("expected snippet fallback, got %q", got)
	}

	l = &Listing{}
	if got := l.DescriptionText(); got != "" {
		t.Fatalf("expected empty text, got %q", got)
	}
}

func TestDumpToTmpFile(t *testing.T) {
	listings := []*Listing{
		{Title: "Go Developer", Company: "Acme", Location: "Remote"},
	}

	filename, err := DumpToTmpFile(listings)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer os.Remove(filename)

	data, err := os.ReadFile(filename)
	if err != nil {
		t.Fatalf("reading dump: %v", err)
	}

	var decoded []*Listing
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("dump is not valid JSON: %v", err)
	}
	if len(decoded) != 1 || decoded[0].Title != "Go Developer" {
		t.Fatalf("unexpected dump content: %+v", decoded)
	}
}
