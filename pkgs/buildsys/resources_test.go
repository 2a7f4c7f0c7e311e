package buildsys

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestProcessResources(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a")
	b := filepath.Join(dir, "b")
	writeFile(t, filepath.Join(a, "conf", "app.properties"), "a")
	writeFile(t, filepath.Join(a, "shared.txt"), "from a")
	writeFile(t, filepath.Join(b, "shared.txt"), "from b")

	dest := filepath.Join(dir, "out")
	writeFile(t, filepath.Join(dest, "stale.txt"), "stale")

	if err := ProcessResources([]string{a, b, filepath.Join(dir, "missing")}, dest); err != nil {
		t.Fatalf("ProcessResources() error = %v", err)
	}

	for path, want := range map[string]string{
		filepath.Join("conf", "app.properties"): "a",
		"shared.txt":                            "from b",
	} {
		got, err := os.ReadFile(filepath.Join(dest, path))
		if err != nil {
			t.Fatalf("read %s: %v", path, err)
		}
		if string(got) != want {
			t.Errorf("%s = %q, want %q", path, got, want)
		}
	}
	if _, err := os.Stat(filepath.Join(dest, "stale.txt")); !os.IsNotExist(err) {
		t.Errorf("stale resource survived: %v", err)
	}
}

func TestSourceFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "java", "pkg", "B.java"), "")
	writeFile(t, filepath.Join(dir, "java", "pkg", "A.java"), "")
	writeFile(t, filepath.Join(dir, "java", "pkg", "notes.txt"), "")

	got, err := SourceFiles([]string{filepath.Join(dir, "java"), filepath.Join(dir, "java17")}, ".java")
	if err != nil {
		t.Fatalf("SourceFiles() error = %v", err)
	}
	want := []string{
		filepath.Join(dir, "java", "pkg", "A.java"),
		filepath.Join(dir, "java", "pkg", "B.java"),
	}
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Errorf("SourceFiles() = %v, want %v", got, want)
	}
}

func TestCompileError(t *testing.T) {
	cause := errors.New("exit status 1")
	err := fmt.Errorf("build: %w", &CompileError{Unit: "java11", Release: 11, Err: cause})
	if !errors.Is(err, ErrCompileFailure) || !errors.Is(err, cause) {
		t.Errorf("errors.Is(%v) failed for sentinel or cause", err)
	}
	if want := "failed to compile java11 (release 11): exit status 1"; err.Error() != "build: "+want {
		t.Errorf("Error() = %q", err.Error())
	}
}
