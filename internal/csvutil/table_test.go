package csvutil

import (
	"testing"

	"github.com/lepinkainen/orpheus/internal/testutil"
)

func TestReadTable(t *testing.T) {
	// Create a sandboxed test environment
	env := testutil.NewTestEnv(t)

	csvContent := `Artist,Title,Year
Pink Floyd,The Dark Side of the Moon,1973
Kraftwerk,Trans-Europe Express,1977
Nirvana,Nevermind,1991
`
	env.WriteFileString("collection.csv", csvContent)

	table, err := ReadTable(env.Path("collection.csv"))
	if err != nil {
		t.Fatalf("ReadTable() error = %v", err)
	}

	if len(table.Headers) != 3 {
		t.Errorf("expected 3 headers, got %d", len(table.Headers))
	}
	if len(table.Rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(table.Rows))
	}

	if table.Rows[0]["Artist"] != "Pink Floyd" {
		t.Errorf("Rows[0][Artist] = %q, want %q", table.Rows[0]["Artist"], "Pink Floyd")
	}
	if table.Rows[2]["Title"] != "Nevermind" {
		t.Errorf("Rows[2][Title] = %q, want %q", table.Rows[2]["Title"], "Nevermind")
	}
}

func TestReadTableShortRecordKeepsRow(t *testing.T) {
	env := testutil.NewTestEnv(t)

	csvContent := "Artist,Title,Year\nOrbital\n"
	env.WriteFileString("short.csv", csvContent)

	table, err := ReadTable(env.Path("short.csv"))
	if err != nil {
		t.Fatalf("ReadTable() error = %v", err)
	}

	if len(table.Rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(table.Rows))
	}
	if table.Rows[0]["Artist"] != "Orbital" {
		t.Errorf("Artist = %q, want %q", table.Rows[0]["Artist"], "Orbital")
	}
	if table.Rows[0]["Title"] != "" {
		t.Errorf("missing Title cell should read as empty, got %q", table.Rows[0]["Title"])
	}
}

func TestReadTableLatin1Fallback(t *testing.T) {
	env := testutil.NewTestEnv(t)

	// "Björk" with a Latin-1 encoded ö (0xF6), invalid as UTF-8.
	content := append([]byte("Artist,Title\nBj"), 0xF6)
	content = append(content, []byte("rk,Debut\n")...)
	env.WriteFile("latin1.csv", content)

	table, err := ReadTable(env.Path("latin1.csv"))
	if err != nil {
		t.Fatalf("ReadTable() error = %v", err)
	}

	if got := table.Rows[0]["Artist"]; got != "Björk" {
		t.Errorf("Artist = %q, want %q", got, "Björk")
	}
}

func TestReadTableEmptyFile(t *testing.T) {
	env := testutil.NewTestEnv(t)

	env.WriteFileString("empty.csv", "")

	_, err := ReadTable(env.Path("empty.csv"))
	if err == nil {
		t.Error("expected error for empty file, got nil")
	}
}

func TestReadTableFileNotFound(t *testing.T) {
	_, err := ReadTable("/nonexistent/file.csv")
	if err == nil {
		t.Error("expected error for missing file, got nil")
	}
}
