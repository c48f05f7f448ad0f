package testsupport

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFixture(t *testing.T) {
	testFile := filepath.Join(t.TempDir(), "fixture.txt")
	content := []byte("fixture content")
	if err := os.WriteFile(testFile, content, 0644); err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}

	got := LoadFixture(t, testFile)
	if string(got) != string(content) {
		t.Errorf("expected %q, got %q", content, got)
	}
}

func TestLoadFixtureJSON(t *testing.T) {
	testFile := filepath.Join(t.TempDir(), "fixture.json")
	if err := os.WriteFile(testFile, []byte(`{"entity":"product","fields":["Name"]}`), 0644); err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}

	var dest struct {
		Entity string   `json:"entity"`
		Fields []string `json:"fields"`
	}
	LoadFixtureJSON(t, testFile, &dest)

	if dest.Entity != "product" {
		t.Errorf("expected entity %q, got %q", "product", dest.Entity)
	}
	if len(dest.Fields) != 1 || dest.Fields[0] != "Name" {
		t.Errorf("expected fields [Name], got %v", dest.Fields)
	}
}

func TestCompareWithGolden(t *testing.T) {
	golden := filepath.Join(t.TempDir(), "golden", "out.txt")

	// First comparison creates the golden file.
	CompareWithGolden(t, golden, []byte("expected output"))
	if _, err := os.Stat(golden); err != nil {
		t.Fatalf("expected golden file to be created: %v", err)
	}

	// Matching content passes against the stored golden.
	CompareWithGolden(t, golden, []byte("expected output"))
}
